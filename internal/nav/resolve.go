package nav

import (
	"fmt"
	"math"
	"strconv"
)

type TargetKind int

const (
	TargetPhysical TargetKind = iota
	TargetVirtual
)

// Waypoint is a player-placed virtual target. It always carries its own
// position and never depends on a live scene object.
type Waypoint struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Pos  Vec3   `json:"pos"`
}

// ObjectRef is the physical side of a target: a possibly-stale bundle of
// whatever the caller knew about the object at selection time. Any field
// other than ID may be missing; the resolver walks them in order.
type ObjectRef struct {
	ID     ObjectID
	Name   string
	Object *CelestialObject // cached catalog/scene object, may be stale
	Pos    *Vec3            // cached position from selection time
	RawPos any              // legacy producer shape, normalized on use
}

// Target is the discriminated union the acquisition machine tracks.
// Virtual targets are additionally marked with IsVirtual so that a
// partially-constructed target from an upstream caller is never
// mistaken for a waypoint.
type Target struct {
	Kind      TargetKind
	IsVirtual bool
	Waypoint  *Waypoint  // set iff Kind == TargetVirtual
	Ref       *ObjectRef // set iff Kind == TargetPhysical
}

func PhysicalTarget(ref *ObjectRef) *Target {
	return &Target{Kind: TargetPhysical, Ref: ref}
}

func VirtualTarget(wp *Waypoint) *Target {
	return &Target{Kind: TargetVirtual, IsVirtual: true, Waypoint: wp}
}

// isWaypoint requires both the kind and the explicit flag.
func (t *Target) isWaypoint() bool {
	return t != nil && t.Kind == TargetVirtual && t.IsVirtual && t.Waypoint != nil
}

// Same reports whether two targets refer to the same waypoint or object.
func (t *Target) Same(other *Target) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind == TargetVirtual {
		return t.Waypoint != nil && other.Waypoint != nil && t.Waypoint.ID == other.Waypoint.ID
	}
	return t.Ref != nil && other.Ref != nil && IDsEqual(string(t.Ref.ID), string(other.Ref.ID))
}

// SceneRegistry is the live-object lookup used as the resolver's last
// fallback, covering references gone stale after a respawn or reload.
type SceneRegistry interface {
	ObjectByID(id ObjectID) (Vec3, bool)
	ObjectByName(name string) (Vec3, bool)
}

// TargetResolver recovers a concrete position from a target reference.
// It is strictly read-only: stale caller-owned references are never
// repaired in place, the caller decides what to do with the result.
type TargetResolver struct {
	catalog *Catalog
	scene   SceneRegistry // optional
}

func NewTargetResolver(catalog *Catalog, scene SceneRegistry) *TargetResolver {
	return &TargetResolver{catalog: catalog, scene: scene}
}

// ResolvePosition returns the target's position and true, or a zero
// vector and false when the target is lost. "Lost" is an expected,
// recoverable condition, so there is no error return here.
//
// Virtual targets read their waypoint's stored position directly.
// Physical targets try, in order: the cached object, the cached
// position, the legacy raw position, the catalog, then the live scene
// registry by id and by name.
func (r *TargetResolver) ResolvePosition(t *Target) (Vec3, bool) {
	if t == nil {
		return Vec3{}, false
	}
	if t.Kind == TargetVirtual {
		if t.Waypoint == nil || !t.Waypoint.Pos.IsFinite() {
			return Vec3{}, false
		}
		return t.Waypoint.Pos, true
	}
	ref := t.Ref
	if ref == nil {
		return Vec3{}, false
	}
	if ref.Object != nil && ref.Object.Pos.IsFinite() {
		return ref.Object.Pos, true
	}
	if ref.Pos != nil && ref.Pos.IsFinite() {
		return *ref.Pos, true
	}
	if ref.RawPos != nil {
		if pos, _, err := NormalizePosition(ref.RawPos); err == nil {
			return pos, true
		}
	}
	if r.catalog != nil {
		if obj, ok := r.catalog.Lookup(string(ref.ID)); ok {
			return obj.Pos, true
		}
	}
	if r.scene != nil {
		if pos, ok := r.scene.ObjectByID(ref.ID); ok {
			return pos, true
		}
		if ref.Name != "" {
			if pos, ok := r.scene.ObjectByName(ref.Name); ok {
				return pos, true
			}
		}
	}
	return Vec3{}, false
}

// FormatDistance renders a distance in km for HUD display: whole meters
// below 1km, one-decimal km up to 999km, thousands-separated whole km
// beyond that.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	if km < 1000 {
		return fmt.Sprintf("%.1fkm", km)
	}
	return groupThousands(int64(math.Round(km))) + "km"
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
