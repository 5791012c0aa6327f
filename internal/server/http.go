package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"StarCharts/internal/nav"
	"StarCharts/internal/store"

	"github.com/rs/cors"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Objects   int    `json:"objects"`
	Sessions  int    `json:"sessions"`
}

func startServer(hub *nav.Hub, catalog *nav.Catalog, snapshots store.SnapshotStore, addr string, limits rateLimitConfig) {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		hub.Mu.Lock()
		sessions := len(hub.Sessions)
		hub.Mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Objects:   catalog.Len(),
			Sessions:  sessions,
		})
	})

	limiter := newRateLimiter(limits)
	mux.Handle("/ws", limiter.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, snapshots, w, r)
	})))

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet},
		AllowCredentials: false,
	}).Handler(mux)

	log.Fatal(http.ListenAndServe(addr, handler))
}
