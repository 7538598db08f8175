package models

// TransitMode represents the type of transit service
type TransitMode string

const (
	ModeBus   TransitMode = "BUS"
	ModeBRT   TransitMode = "BRT"
	ModeTER   TransitMode = "TER"
	ModeFerry TransitMode = "FERRY"
	ModeTram  TransitMode = "TRAM"
)

// EdgeType represents the type of connection between nodes
type EdgeType string

const (
	EdgeWalk     EdgeType = "WALK"
	EdgeRide     EdgeType = "RIDE"
	EdgeTransfer EdgeType = "TRANSFER"
)

// Node represents a (stop, route) pair in the routing graph
// Each node is a unique combination of a stop and a route serving that stop
type Node struct {
	ID        int64
	StopID    string
	StopName  string
	RouteID   string
	RouteName string
	Mode      TransitMode
	Lat       float64
	Lon       float64
}

// Edge represents a connection between two nodes in the routing graph
type Edge struct {
	ID           int64
	FromNodeID   int64
	ToNodeID     int64
	Type         EdgeType
	CostTime     int // seconds
	CostWalk     int // meters
	CostTransfer int // count (0 or 1)
	TripID       string
	Sequence     int
}

// Itinerary is one planned journey from origin to destination
type Itinerary struct {
	Nodes         []Node  `json:"-"`
	Edges         []Edge  `json:"-"`
	Mode          string  `json:"mode"`
	Weight        float64 `json:"weight"`
	DurationSecs  int     `json:"duration_seconds"`
	DurationMins  int     `json:"duration_minutes"`
	WalkDistanceM int     `json:"walk_distance_meters"`
	Transfers     int     `json:"transfers"`
	Steps         []Step  `json:"steps"`
}

// StopInfo represents a stop in a journey step
type StopInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Step represents one segment of a journey
type Step struct {
	Type         EdgeType    `json:"type"`
	FromStop     string      `json:"from_stop"`
	ToStop       string      `json:"to_stop"`
	FromStopName string      `json:"from_stop_name"`
	ToStopName   string      `json:"to_stop_name"`
	Route        string      `json:"route,omitempty"`
	RouteName    string      `json:"route_name,omitempty"`
	Mode         TransitMode `json:"mode,omitempty"`
	Duration     int         `json:"duration_seconds"`
	Distance     int         `json:"distance_meters,omitempty"`
	NumStops     int         `json:"num_stops,omitempty"`
	Stops        []StopInfo  `json:"stops,omitempty"` // Intermediate stops for RIDE steps
}
