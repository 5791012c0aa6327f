package server

import (
	"StarCharts/internal/nav"
)

type positionDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toPositionDTO(v nav.Vec3) positionDTO {
	return positionDTO{X: v.X, Y: v.Y, Z: v.Z}
}

func (p positionDTO) vec() nav.Vec3 {
	return nav.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

type waypointDTO struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Pos  positionDTO `json:"pos"`
}

func toWaypointDTO(wp *nav.Waypoint) waypointDTO {
	return waypointDTO{ID: wp.ID, Name: wp.Name, Pos: toPositionDTO(wp.Pos)}
}

type discoveryDTO struct {
	ID        string `json:"id"`
	Method    string `json:"method"`
	Timestamp int64  `json:"timestamp"`
	Sector    string `json:"sector"`
}

func toDiscoveryDTO(rec *nav.DiscoveryRecord) discoveryDTO {
	return discoveryDTO{
		ID:        string(rec.ID),
		Method:    string(rec.Method),
		Timestamp: rec.Timestamp,
		Sector:    rec.Sector,
	}
}

type targetDTO struct {
	Kind      string       `json:"kind"` // "physical" | "virtual"
	ID        string       `json:"id,omitempty"`
	Name      string       `json:"name,omitempty"`
	IsVirtual bool         `json:"is_virtual"`
	Pos       *positionDTO `json:"pos,omitempty"`
	Distance  string       `json:"distance,omitempty"`
	Lost      bool         `json:"lost,omitempty"`
}

// toTargetDTO resolves the target's position through the session's
// resolver; a lost target is reported, not dropped, so the client can
// show "target lost" instead of silently clearing.
func toTargetDTO(s *nav.Session, t *nav.Target) *targetDTO {
	if t == nil {
		return nil
	}
	dto := &targetDTO{IsVirtual: t.IsVirtual}
	switch t.Kind {
	case nav.TargetVirtual:
		dto.Kind = "virtual"
		if t.Waypoint != nil {
			dto.ID = t.Waypoint.ID
			dto.Name = t.Waypoint.Name
		}
	default:
		dto.Kind = "physical"
		if t.Ref != nil {
			dto.ID = string(t.Ref.ID)
			dto.Name = t.Ref.Name
		}
	}
	pos, ok := s.Resolver.ResolvePosition(t)
	if !ok {
		dto.Lost = true
		return dto
	}
	p := toPositionDTO(pos)
	dto.Pos = &p
	dto.Distance = nav.FormatDistance(pos.Dist(s.PlayerPos))
	return dto
}

type stateDTO struct {
	SessionID       string     `json:"session_id"`
	Now             float64    `json:"now"`
	Target          *targetDTO `json:"target"`
	HasInterrupted  bool       `json:"has_interrupted_waypoint"`
	DiscoveredCount int        `json:"discovered_count"`
	RevealAll       bool       `json:"reveal_all"`
}

func toStateDTO(s *nav.Session) stateDTO {
	return stateDTO{
		SessionID:       s.ID,
		Now:             s.Now,
		Target:          toTargetDTO(s, s.Targets.CurrentTarget()),
		HasInterrupted:  s.Targets.HasInterruptedWaypoint(),
		DiscoveredCount: s.Ledger.Len(),
		RevealAll:       s.Engine.RevealAll,
	}
}
