package nav

import "sort"

type TargetState int

const (
	StateNoTarget TargetState = iota
	StatePhysicalTarget
	StateVirtualTarget
)

// TargetComputer tracks the currently selected target and the
// interruption slot for a displaced waypoint. At most one interrupted
// waypoint is held; a second interruption overwrites the first, since
// only one "previous" virtual target is meaningful to resume. The slot
// never holds a physical target.
type TargetComputer struct {
	ledger      *DiscoveryLedger
	catalog     *Catalog
	current     *Target
	interrupted *Target
}

func NewTargetComputer(ledger *DiscoveryLedger, catalog *Catalog) *TargetComputer {
	return &TargetComputer{ledger: ledger, catalog: catalog}
}

func (tc *TargetComputer) CurrentTarget() *Target { return tc.current }

func (tc *TargetComputer) State() TargetState {
	switch {
	case tc.current == nil:
		return StateNoTarget
	case tc.current.isWaypoint():
		return StateVirtualTarget
	default:
		return StatePhysicalTarget
	}
}

// SetTarget switches the active target. If the active target is a
// waypoint and the new selection is a different, non-virtual target, the
// waypoint is saved for later resumption. Switching from one waypoint to
// another records no interruption. SetTarget(nil) clears the active
// target without touching the interruption slot and never auto-resumes.
func (tc *TargetComputer) SetTarget(t *Target) {
	cur := tc.current
	if cur.isWaypoint() && t != nil && !t.isWaypoint() && !cur.Same(t) {
		tc.interrupted = cur
	}
	tc.current = t
}

// ResumeInterruptedWaypoint restores the saved waypoint as the active
// target. Returns false, mutating nothing, when no waypoint is pending.
func (tc *TargetComputer) ResumeInterruptedWaypoint() bool {
	if tc.interrupted == nil {
		return false
	}
	tc.current = tc.interrupted
	tc.interrupted = nil
	return true
}

func (tc *TargetComputer) HasInterruptedWaypoint() bool {
	return tc.interrupted != nil
}

// IsCurrentTargetWaypoint requires both the virtual kind and the
// explicit IsVirtual flag, guarding against partially-constructed
// targets handed over by upstream callers.
func (tc *TargetComputer) IsCurrentTargetWaypoint() bool {
	return tc.current.isWaypoint()
}

// WaypointRemoved drops any reference to a deleted waypoint: a pending
// interruption of it is cleared, and if it is the active target the
// computer falls back to no target.
func (tc *TargetComputer) WaypointRemoved(waypointID string) {
	if tc.interrupted.isWaypoint() && tc.interrupted.Waypoint.ID == waypointID {
		tc.interrupted = nil
	}
	if tc.current.isWaypoint() && tc.current.Waypoint.ID == waypointID {
		tc.current = nil
	}
}

// CycleTarget selects the next discovered object by distance from the
// given position, wrapping around after the farthest. With no current
// physical target it picks the nearest. Returns nil, leaving the current
// target untouched, when nothing has been discovered yet.
func (tc *TargetComputer) CycleTarget(from Vec3) *Target {
	type candidate struct {
		obj  *CelestialObject
		dist float64
	}
	var candidates []candidate
	for _, id := range tc.ledger.DiscoveredIDs() {
		obj, ok := tc.catalog.Lookup(string(id))
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{obj: obj, dist: obj.Pos.Dist(from)})
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].obj.ID < candidates[j].obj.ID
	})

	next := 0
	if tc.current != nil && tc.current.Kind == TargetPhysical && tc.current.Ref != nil {
		for i, c := range candidates {
			if IDsEqual(string(c.obj.ID), string(tc.current.Ref.ID)) {
				next = (i + 1) % len(candidates)
				break
			}
		}
	}
	obj := candidates[next].obj
	t := PhysicalTarget(&ObjectRef{ID: obj.ID, Name: obj.Name, Object: obj})
	tc.SetTarget(t)
	return t
}
