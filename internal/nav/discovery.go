package nav

// DiscoveryEngine runs the per-tick proximity sweep: query the grid
// around the player, commit anything new into the ledger. Collaborators
// are injected; the engine owns no state beyond its tuning.
type DiscoveryEngine struct {
	grid    *SpatialGrid
	ledger  *DiscoveryLedger
	catalog *Catalog

	Radius    float64 // km
	RevealAll bool    // QA-only; must be explicitly toggled
	Sector    string  // sector credited on proximity discoveries
}

func NewDiscoveryEngine(grid *SpatialGrid, ledger *DiscoveryLedger, catalog *Catalog, radius float64) *DiscoveryEngine {
	if radius <= 0 {
		radius = DefaultDiscoveryRadius
	}
	return &DiscoveryEngine{
		grid:    grid,
		ledger:  ledger,
		catalog: catalog,
		Radius:  radius,
	}
}

// Tick runs one discovery sweep from playerPos and returns the records
// created this tick (empty when nothing new came into range). With
// RevealAll set it marks the entire catalog discovered instead; the
// sweep and the reveal path are both idempotent, so already-discovered
// ids never produce a second record.
func (e *DiscoveryEngine) Tick(playerPos Vec3) ([]*DiscoveryRecord, error) {
	if e.RevealAll {
		return e.revealAll()
	}
	ids, err := e.grid.QueryRadius(playerPos, e.Radius)
	if err != nil {
		return nil, err
	}
	var fresh []*DiscoveryRecord
	for _, id := range ids {
		if e.ledger.IsDiscovered(string(id)) {
			continue
		}
		rec, err := e.ledger.Record(string(id), DiscoveryProximity, e.sectorFor(id))
		if err != nil {
			return fresh, err
		}
		if rec != nil {
			fresh = append(fresh, rec)
		}
	}
	return fresh, nil
}

func (e *DiscoveryEngine) revealAll() ([]*DiscoveryRecord, error) {
	var fresh []*DiscoveryRecord
	for _, obj := range e.catalog.All() {
		if e.ledger.IsDiscovered(string(obj.ID)) {
			continue
		}
		rec, err := e.ledger.Record(string(obj.ID), DiscoveryTestMode, obj.Sector)
		if err != nil {
			return fresh, err
		}
		if rec != nil {
			fresh = append(fresh, rec)
		}
	}
	return fresh, nil
}

func (e *DiscoveryEngine) sectorFor(id ObjectID) string {
	if e.Sector != "" {
		return e.Sector
	}
	if obj, ok := e.catalog.Lookup(string(id)); ok {
		return obj.Sector
	}
	return SectorOf(string(id))
}
