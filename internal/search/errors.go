package search

import "errors"

var (
	// ErrNoOrigin is returned when a request has no origin location
	ErrNoOrigin = errors.New("search: request has no origin")

	// ErrNilPolicy is returned when a request has no dominance policy
	ErrNilPolicy = errors.New("search: request has no dominance policy")

	// ErrInvalidBound is returned for negative or NaN resource bounds
	ErrInvalidBound = errors.New("search: invalid resource bound")

	// ErrWeightDecreased aborts a search whose network produced a successor
	// cheaper than its parent. Results of such a search are meaningless.
	ErrWeightDecreased = errors.New("search: edge traversal decreased weight")

	// ErrUnknownPolicy is returned by PolicyByName
	ErrUnknownPolicy = errors.New("search: unknown dominance policy")

	// ErrFrontierFrozen is the panic value of Offer after the driver terminated
	ErrFrontierFrozen = errors.New("search: offer on frozen frontier")
)
