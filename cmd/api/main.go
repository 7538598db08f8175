package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/passbi/passbi_planner/internal/api"
	"github.com/passbi/passbi_planner/internal/cache"
	"github.com/passbi/passbi_planner/internal/config"
	"github.com/passbi/passbi_planner/internal/db"
	"github.com/passbi/passbi_planner/internal/graph"
	"github.com/passbi/passbi_planner/internal/middleware"
	"github.com/passbi/passbi_planner/internal/planner"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting PassBi planner...")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database connection
	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✓ Database connection established")

	checks := map[string]api.HealthCheck{"database": db.HealthCheck}

	// Redis backs both the plan cache and rate limiting
	var (
		rdb   *redis.Client
		plans *cache.PlanStore
	)
	if cfg.Cache.Enabled || cfg.RateLimit.Enabled {
		rdb, err = cache.Connect(context.Background())
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Println("✓ Redis connection established")
	}
	if cfg.Cache.Enabled {
		plans = cache.NewPlanStore(rdb, cfg.Cache)
	}

	// Load routing graph into memory
	g := graph.GetGraph()
	if err := g.LoadFromDB(context.Background(), pool); err != nil {
		log.Fatalf("Failed to load routing graph: %v", err)
	}
	log.Println("✓ Routing graph loaded into memory")

	api.Init(planner.New(g, cfg.Routing), g, plans, checks)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PassBi Planner",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Routing.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", api.Health)

	v2 := app.Group("/v2")
	if cfg.RateLimit.Enabled {
		v2.Use(middleware.RateLimit(rdb, middleware.Limits{
			PerSecond: cfg.RateLimit.PerSecond,
			PerDay:    cfg.RateLimit.PerDay,
		}))
	}
	v2.Get("/plan", api.Plan)
	v2.Get("/route-search", api.RouteSearch)
	v2.Get("/stops/nearby", api.StopsNearby)
	v2.Get("/debug/search", api.DebugSearch)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	// Start server
	log.Printf("🚀 Server listening on http://localhost%s", addr)
	log.Printf("📍 Plan: http://localhost%s/v2/plan?from=LAT,LON&to=LAT,LON&mode=pareto", addr)
	log.Printf("❤️  Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// customErrorHandler handles errors returned from handlers
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
