package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// RoutingConfig bounds every search the planner runs
type RoutingConfig struct {
	MaxExplored    int           `yaml:"maxExplored" validate:"gte=0"`
	Timeout        time.Duration `yaml:"timeout" validate:"gte=0"`
	MaxWeight      float64       `yaml:"maxWeight" validate:"gte=0"`
	MaxItineraries int           `yaml:"maxItineraries" validate:"gte=1"`
	NearestNodes   int           `yaml:"nearestNodes" validate:"gte=1"`
	HeuristicSpeed float64       `yaml:"heuristicSpeed" validate:"gte=0"` // m/s, 0 disables the heuristic
	DumpFrontier   bool          `yaml:"dumpFrontier"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`

	// LockTTL bounds how long one request may hold a plan's computation lock;
	// Wait is how long other requests poll for its result
	LockTTL time.Duration `yaml:"lockTTL" validate:"gt=0"`
	Wait    time.Duration `yaml:"wait" validate:"gte=0"`
}

type RateLimitConfig struct {
	Enabled   bool `yaml:"enabled"`
	PerSecond int  `yaml:"perSecond" validate:"gte=0"`
	PerDay    int  `yaml:"perDay" validate:"gte=0"`
}

type AppConfig struct {
	Server    ServerConfig    `yaml:"server" validate:"required"`
	Routing   RoutingConfig   `yaml:"routing" validate:"required"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

// Default returns the settings used when no file is present
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8080},
		Routing: RoutingConfig{
			MaxExplored:    10000,
			Timeout:        5 * time.Second,
			MaxWeight:      4 * 3600,
			MaxItineraries: 3,
			NearestNodes:   10,
			HeuristicSpeed: 30, // faster than anything in the network
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
			LockTTL: 5 * time.Second,
			Wait:    3 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:   true,
			PerSecond: 10,
			PerDay:    10000,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by PLANNER_CONFIG (config.yml by default),
// falling back to the defaults when it does not exist
func LoadFromEnv() (AppConfig, error) {
	path := os.Getenv("PLANNER_CONFIG")
	if path == "" {
		path = "config.yml"
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
