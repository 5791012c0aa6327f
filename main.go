package main

import (
	"flag"
	"log"
	"math"

	"StarCharts/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	navConfigPath := flag.String("nav-config", "configs/world.json", "path to navigation tuning JSON")
	catalogPath := flag.String("catalog", "configs/catalog.json", "path to the object catalog JSON")
	redisURL := flag.String("redis-url", "", "redis URL for discovery snapshots (empty = in-memory)")
	logJSON := flag.Bool("log-json", false, "emit JSON logs")
	gridCellSize := flag.Float64("grid-cell-size", math.NaN(), "override spatial grid cell size (km)")
	discoveryRadius := flag.Float64("discovery-radius", math.NaN(), "override discovery radius (km)")
	revealAll := flag.Bool("reveal-all", false, "mark the whole catalog discovered (QA only)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg := server.DefaultAppConfig()
	cfg.NavConfigPath = *navConfigPath
	cfg.CatalogPath = *catalogPath
	cfg.RedisURL = *redisURL
	cfg.LogJSON = *logJSON

	var overrides server.NavParamOverrides

	if !math.IsNaN(*gridCellSize) {
		val := *gridCellSize
		overrides.GridCellSize = &val
	}
	if !math.IsNaN(*discoveryRadius) {
		val := *discoveryRadius
		overrides.DiscoveryRadius = &val
	}
	if *revealAll {
		val := true
		overrides.RevealAll = &val
	}

	cfg.NavOverrides = overrides

	server.StartApp(*addr, cfg)
}
