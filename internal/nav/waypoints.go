package nav

import "fmt"

// WaypointStore owns the player's waypoints for one navigation session.
type WaypointStore struct {
	byID    map[string]*Waypoint
	order   []string
	ordinal int
}

func NewWaypointStore() *WaypointStore {
	return &WaypointStore{byID: make(map[string]*Waypoint)}
}

// Create adds a waypoint at pos. An empty name gets a numbered default.
func (s *WaypointStore) Create(name string, pos Vec3) (*Waypoint, error) {
	if !pos.IsFinite() {
		return nil, &InvalidPositionError{Reason: "non-finite waypoint position"}
	}
	s.ordinal++
	if name == "" {
		name = fmt.Sprintf("Waypoint %d", s.ordinal)
	}
	wp := &Waypoint{ID: RandID("wp-"), Name: name, Pos: pos}
	s.byID[wp.ID] = wp
	s.order = append(s.order, wp.ID)
	return wp, nil
}

func (s *WaypointStore) Get(id string) (*Waypoint, bool) {
	wp, ok := s.byID[id]
	return wp, ok
}

// Remove deletes a waypoint, reporting whether it existed.
func (s *WaypointStore) Remove(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns waypoints in creation order.
func (s *WaypointStore) All() []*Waypoint {
	out := make([]*Waypoint, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *WaypointStore) Len() int { return len(s.byID) }
