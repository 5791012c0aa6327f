package nav

import (
	"fmt"
	"sync"
	"time"
)

// SessionConfig carries the externally supplied tuning for one
// navigation session. Zero values fall back to the documented defaults.
type SessionConfig struct {
	CellSize        float64
	DiscoveryRadius float64
	RevealAll       bool
	Scene           SceneRegistry
}

// Session is one player's navigation state: the spatial index over the
// shared catalog, the discovery ledger, the resolver and the target
// computer. All access goes through Mu; the core types themselves are
// single-goroutine.
type Session struct {
	ID  string
	Mu  sync.Mutex
	Now float64

	Catalog   *Catalog
	Grid      *SpatialGrid
	Ledger    *DiscoveryLedger
	Resolver  *TargetResolver
	Targets   *TargetComputer
	Waypoints *WaypointStore
	Engine    *DiscoveryEngine

	PlayerPos Vec3
	lastSeen  time.Time
	stars     []*CelestialObject
}

func NewSession(id string, catalog *Catalog, cfg SessionConfig) (*Session, error) {
	grid := NewSpatialGrid(cfg.CellSize)
	if err := catalog.PopulateGrid(grid); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	ledger := NewDiscoveryLedger()
	resolver := NewTargetResolver(catalog, cfg.Scene)
	engine := NewDiscoveryEngine(grid, ledger, catalog, cfg.DiscoveryRadius)
	engine.RevealAll = cfg.RevealAll
	var stars []*CelestialObject
	for _, obj := range catalog.All() {
		if obj.Type == ObjectStar {
			stars = append(stars, obj)
		}
	}
	return &Session{
		ID:        id,
		Catalog:   catalog,
		Grid:      grid,
		Ledger:    ledger,
		Resolver:  resolver,
		Targets:   NewTargetComputer(ledger, catalog),
		Waypoints: NewWaypointStore(),
		Engine:    engine,
		lastSeen:  time.Now(),
		stars:     stars,
	}, nil
}

// Tick advances session time with the player's current position and
// runs one discovery sweep, returning any fresh records.
func (s *Session) Tick(playerPos Vec3, dt float64) ([]*DiscoveryRecord, error) {
	if !playerPos.IsFinite() {
		return nil, &InvalidPositionError{Reason: "non-finite player position"}
	}
	s.Now += dt
	s.PlayerPos = playerPos
	s.lastSeen = time.Now()
	s.Engine.Sector = s.currentSector(playerPos)
	return s.Engine.Tick(playerPos)
}

// currentSector attributes discoveries to the sector of the nearest
// star, defaulting to empty (object's own sector) when the catalog has
// no stars.
func (s *Session) currentSector(pos Vec3) string {
	best := ""
	bestDist := 0.0
	for _, star := range s.stars {
		d := star.Pos.Dist(pos)
		if best == "" || d < bestDist {
			best = star.Sector
			bestDist = d
		}
	}
	return best
}

// SetTargetByID selects a catalog object as the physical target. An
// explicit selection of an undiscovered object records a manual
// discovery first, so the target list and the ledger stay consistent.
func (s *Session) SetTargetByID(raw string) (*Target, error) {
	obj, ok := s.Catalog.Lookup(raw)
	if !ok {
		if _, err := NormalizeID(raw); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unknown object %q", raw)
	}
	if !s.Ledger.IsDiscovered(string(obj.ID)) {
		if _, err := s.Ledger.Record(string(obj.ID), DiscoveryManual, obj.Sector); err != nil {
			return nil, err
		}
	}
	t := PhysicalTarget(&ObjectRef{ID: obj.ID, Name: obj.Name, Object: obj})
	s.Targets.SetTarget(t)
	return t, nil
}

// SetWaypointTarget selects one of the session's waypoints as the
// active virtual target.
func (s *Session) SetWaypointTarget(waypointID string) (*Target, bool) {
	wp, ok := s.Waypoints.Get(waypointID)
	if !ok {
		return nil, false
	}
	t := VirtualTarget(wp)
	s.Targets.SetTarget(t)
	return t, true
}

func (s *Session) CreateWaypoint(name string, pos Vec3) (*Waypoint, error) {
	return s.Waypoints.Create(name, pos)
}

// RemoveWaypoint deletes a waypoint and clears any active or
// interrupted target that referenced it.
func (s *Session) RemoveWaypoint(waypointID string) bool {
	if !s.Waypoints.Remove(waypointID) {
		return false
	}
	s.Targets.WaypointRemoved(waypointID)
	return true
}

// IdleFor reports how long ago the session last saw a position update.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.lastSeen)
}

// Hub owns all live navigation sessions.
type Hub struct {
	Sessions map[string]*Session
	Mu       sync.Mutex

	catalog *Catalog
	cfg     SessionConfig
}

func NewHub(catalog *Catalog, cfg SessionConfig) *Hub {
	return &Hub{
		Sessions: map[string]*Session{},
		catalog:  catalog,
		cfg:      cfg,
	}
}

// GetSession returns the session with the given id, creating it on
// first use.
func (h *Hub) GetSession(id string) (*Session, error) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if s, ok := h.Sessions[id]; ok {
		return s, nil
	}
	s, err := NewSession(id, h.catalog, h.cfg)
	if err != nil {
		return nil, err
	}
	h.Sessions[id] = s
	return s, nil
}

// CleanupIdleSessions drops sessions without a position update for
// maxIdle, returning how many were removed.
func (h *Hub) CleanupIdleSessions(maxIdle time.Duration) int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	now := time.Now()
	removed := 0
	for id, s := range h.Sessions {
		if s.IdleFor(now) > maxIdle {
			delete(h.Sessions, id)
			removed++
		}
	}
	return removed
}
