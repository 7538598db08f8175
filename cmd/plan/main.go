package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/passbi/passbi_planner/internal/config"
	"github.com/passbi/passbi_planner/internal/db"
	"github.com/passbi/passbi_planner/internal/graph"
	"github.com/passbi/passbi_planner/internal/planner"
)

func main() {
	fromLat := flag.Float64("from-lat", 0, "Origin latitude (required)")
	fromLon := flag.Float64("from-lon", 0, "Origin longitude (required)")
	toLat := flag.Float64("to-lat", 0, "Destination latitude (required)")
	toLon := flag.Float64("to-lon", 0, "Destination longitude (required)")
	mode := flag.String("mode", "pareto", "Mode: no_transfer, direct, simple, fast or pareto")
	arriveBy := flag.Bool("arrive-by", false, "Search backwards from the destination")
	batch := flag.Bool("batch", false, "Explore until exhaustion")
	maxTransfers := flag.Int("max-transfers", 0, "Reject itineraries with more transfers (0 = no limit)")
	banned := flag.String("banned", "", "Comma separated route IDs to avoid")
	diagnose := flag.Bool("diagnose", false, "Print search diagnostics instead of itineraries")

	flag.Parse()

	if *fromLat == 0 || *fromLon == 0 || *toLat == 0 || *toLon == 0 {
		log.Println("❌ Error: origin and destination coordinates are required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Println("📡 Connecting to database...")
	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	g := graph.GetGraph()
	if err := g.LoadFromDB(ctx, pool); err != nil {
		log.Fatalf("❌ Failed to load graph: %v", err)
	}

	req := planner.PlanRequest{
		FromLat:      *fromLat,
		FromLon:      *fromLon,
		ToLat:        *toLat,
		ToLon:        *toLon,
		Mode:         *mode,
		ArriveBy:     *arriveBy,
		Batch:        *batch,
		MaxTransfers: *maxTransfers,
	}
	if *banned != "" {
		req.BannedRoutes = strings.Split(*banned, ",")
	}

	p := planner.New(g, cfg.Routing)
	var out any
	if *diagnose {
		out, err = p.Diagnose(ctx, req)
	} else {
		out, err = p.Plan(ctx, req)
	}
	if err != nil {
		log.Fatalf("❌ Planning failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("❌ Failed to write result: %v", err)
	}
}
