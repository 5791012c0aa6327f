package server

import (
	"log"
	"log/slog"
	"os"
	"time"

	"StarCharts/internal/nav"
	"StarCharts/internal/store"
)

type AppConfig struct {
	NavConfigPath string
	CatalogPath   string
	NavOverrides  NavParamOverrides
	RedisURL      string
	LogJSON       bool
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		NavConfigPath: "configs/world.json",
		CatalogPath:   "configs/catalog.json",
	}
}

func initLogger(jsonFormat bool) {
	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

func resolveNavParams(cfg AppConfig) NavParams {
	params := DefaultNavParams()
	loaded, err := loadNavParamsFromFile(cfg.NavConfigPath, params)
	if err != nil {
		log.Printf("nav config: %v (using defaults)", err)
	} else {
		params = loaded
	}
	params = envNavOverrides().apply(params)
	return cfg.NavOverrides.apply(params)
}

func openSnapshotStore(cfg AppConfig) store.SnapshotStore {
	url := cfg.RedisURL
	if url == "" {
		url = os.Getenv("STARCHARTS_REDIS_URL")
	}
	if url == "" {
		slog.Info("redis disabled, using in-memory snapshot store")
		return store.NewMemoryStore()
	}
	s, err := store.OpenRedis(url, 0)
	if err != nil {
		slog.Warn("redis unavailable, falling back to in-memory snapshots", "error", err)
		return store.NewMemoryStore()
	}
	return s
}

func StartApp(addr string, cfg AppConfig) {
	initLogger(cfg.LogJSON)
	params := resolveNavParams(cfg)

	catalog, err := nav.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load object catalog: %v", err)
	}
	if upgraded := catalog.Upgraded2D(); len(upgraded) > 0 {
		slog.Info("upgraded legacy 2D positions", "count", len(upgraded))
	}

	hub := nav.NewHub(catalog, nav.SessionConfig{
		CellSize:        params.GridCellSize,
		DiscoveryRadius: params.DiscoveryRadius,
		RevealAll:       params.RevealAll,
	})

	snapshots := openSnapshotStore(cfg)
	defer snapshots.Close()

	idle := time.Duration(params.SessionIdleSeconds * float64(time.Second))
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if removed := hub.CleanupIdleSessions(idle); removed > 0 {
				slog.Debug("cleaned up idle sessions", "count", removed)
			}
		}
	}()

	slog.Info("starting star charts server",
		"addr", addr,
		"objects", catalog.Len(),
		"grid_cell_size", params.GridCellSize,
		"discovery_radius", params.DiscoveryRadius,
		"reveal_all", params.RevealAll,
	)
	startServer(hub, catalog, snapshots, addr, rateLimitConfig{
		RequestsPerSecond: 5,
		BurstSize:         10,
		Enabled:           true,
	})
}
