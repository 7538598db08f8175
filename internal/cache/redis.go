package cache

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/passbi/passbi_planner/internal/config"
	"github.com/passbi/passbi_planner/internal/planner"
	"github.com/passbi/passbi_planner/internal/search"
	"github.com/redis/go-redis/v9"
)

// pollInterval is how often waiting requests look for a finished plan
const pollInterval = 100 * time.Millisecond

// ErrWaitTimeout is returned when a locked plan did not show up in time
var ErrWaitTimeout = errors.New("timed out waiting for plan")

// releaseScript deletes a lock only while it still holds the caller's token,
// so an expired holder cannot free a lock taken over by another request
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Options builds client options from the environment. REDIS_URL wins over
// the individual REDIS_* variables.
func Options() (*redis.Options, error) {
	if url := os.Getenv("REDIS_URL"); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return opts, nil
	}

	port, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), port),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}
	// managed Redis (Upstash) only accepts TLS
	if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}

// Connect opens a client from the environment and checks it answers
func Connect(ctx context.Context) (*redis.Client, error) {
	opts, err := Options()
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// PlanKey generates a cache key for a plan query. variant distinguishes
// request options that change the answer (mode, arrive-by, bans).
func PlanKey(fromLat, fromLon, toLat, toLon float64, variant string) string {
	data := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", fromLat, fromLon, toLat, toLon)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("plan:%x:%s", hash[:8], variant)
}

// RequestKey generates the cache key for a planner request
func RequestKey(req planner.PlanRequest) string {
	banned := slices.Clone(req.BannedRoutes)
	slices.Sort(banned)
	variant := fmt.Sprintf("%s:arrive=%t:batch=%t:xfers=%d:ban=%s",
		req.Mode, req.ArriveBy, req.Batch, req.MaxTransfers, strings.Join(banned, ","))
	return PlanKey(req.FromLat, req.FromLon, req.ToLat, req.ToLon, variant)
}

// LockKey generates the key guarding a plan's computation
func LockKey(planKey string) string {
	return "lock:" + planKey
}

// PlanStore shares computed plans between requests and makes concurrent
// requests for the same plan wait for a single computation
type PlanStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
	wait    time.Duration
}

// NewPlanStore creates a store over rdb using the cache settings
func NewPlanStore(rdb *redis.Client, cfg config.CacheConfig) *PlanStore {
	return &PlanStore{
		rdb:     rdb,
		ttl:     cfg.TTL,
		lockTTL: cfg.LockTTL,
		wait:    cfg.Wait,
	}
}

// Get returns a cached plan; a miss is (nil, nil)
func (s *PlanStore) Get(ctx context.Context, key string) (*planner.Plan, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var plan planner.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached plan: %w", err)
	}
	return &plan, nil
}

// Put caches a plan for the store's TTL
func (s *PlanStore) Put(ctx context.Context, key string, plan *planner.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	return s.rdb.Set(ctx, key, data, s.ttl).Err()
}

// Lock takes the computation lock for key. release is nil unless ok.
func (s *PlanStore) Lock(ctx context.Context, key string) (release func(), ok bool, err error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}
	lockKey := LockKey(key)
	ok, err = s.rdb.SetNX(ctx, lockKey, token, s.lockTTL).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	release = func() {
		// the request context may be gone by now
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, s.rdb, []string{lockKey}, token).Err(); err != nil {
			log.Printf("Failed to release plan lock %s: %v", lockKey, err)
		}
	}
	return release, true, nil
}

// Await polls until the lock on key is gone, then returns the cached plan.
// It gives up with ErrWaitTimeout after the store's wait period.
func (s *PlanStore) Await(ctx context.Context, key string) (*planner.Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lockKey := LockKey(key)
	for {
		held, err := s.rdb.Exists(ctx, lockKey).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrWaitTimeout
			}
			return nil, err
		}
		if held == 0 {
			return s.Get(ctx, key)
		}

		select {
		case <-ctx.Done():
			return nil, ErrWaitTimeout
		case <-ticker.C:
		}
	}
}

// Compute returns the cached plan for key or computes it with plan. Only one
// request computes a given key at a time; the others wait for its result and
// compute it themselves if it does not arrive. Redis failures degrade to
// computing without the cache. Bounded plans are best effort and not stored.
func (s *PlanStore) Compute(ctx context.Context, key string, plan func(context.Context) (*planner.Plan, error)) (*planner.Plan, error) {
	if cached, err := s.Get(ctx, key); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Plan cache read failed: %v", err)
	}

	release, locked, err := s.Lock(ctx, key)
	switch {
	case err != nil:
		log.Printf("Failed to acquire plan lock: %v", err)
	case locked:
		defer release()
	default:
		// another request is computing this plan
		if cached, err := s.Await(ctx, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	p, err := plan(ctx)
	if err != nil {
		return nil, err
	}
	if p.Status != search.Bounded.String() {
		if err := s.Put(ctx, key, p); err != nil {
			log.Printf("Failed to cache plan: %v", err)
		}
	}
	return p, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
