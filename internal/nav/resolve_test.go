package nav

import "testing"

type fakeScene struct {
	byID   map[ObjectID]Vec3
	byName map[string]Vec3
}

func (f *fakeScene) ObjectByID(id ObjectID) (Vec3, bool) {
	pos, ok := f.byID[id]
	return pos, ok
}

func (f *fakeScene) ObjectByName(name string) (Vec3, bool) {
	pos, ok := f.byName[name]
	return pos, ok
}

func TestResolveVirtualTargetSelfContained(t *testing.T) {
	// A waypoint never needs a scene object or catalog entry.
	r := NewTargetResolver(nil, nil)
	wp := &Waypoint{ID: "wp-1", Name: "Rally", Pos: Vec3{X: 1, Y: 2, Z: 3}}
	pos, ok := r.ResolvePosition(VirtualTarget(wp))
	if !ok {
		t.Fatal("virtual target should always resolve")
	}
	if pos != wp.Pos {
		t.Fatalf("expected %+v, got %+v", wp.Pos, pos)
	}
}

func TestResolvePhysicalFallbackChain(t *testing.T) {
	cat := testCatalog(t)
	scene := &fakeScene{
		byID:   map[ObjectID]Vec3{"Z9_ghost": {X: 9, Y: 9, Z: 9}},
		byName: map[string]Vec3{"Wanderer": {X: 5, Y: 5, Z: 5}},
	}
	r := NewTargetResolver(cat, scene)

	// (a) live cached object wins.
	obj, _ := cat.Lookup("a0_inner_planet")
	pos, ok := r.ResolvePosition(PhysicalTarget(&ObjectRef{ID: obj.ID, Object: obj}))
	if !ok || pos != obj.Pos {
		t.Fatalf("cached object resolution failed: ok=%v pos=%+v", ok, pos)
	}

	// (b) cached position when object is gone.
	cached := Vec3{X: 100, Y: 200, Z: 300}
	pos, ok = r.ResolvePosition(PhysicalTarget(&ObjectRef{ID: "Q1_missing", Pos: &cached}))
	if !ok || pos != cached {
		t.Fatalf("cached position resolution failed: ok=%v pos=%+v", ok, pos)
	}

	// (c) legacy raw position shapes.
	pos, ok = r.ResolvePosition(PhysicalTarget(&ObjectRef{ID: "Q1_missing", RawPos: []float64{4, 5}}))
	if !ok || pos != (Vec3{X: 4, Y: 5, Z: 0}) {
		t.Fatalf("raw position resolution failed: ok=%v pos=%+v", ok, pos)
	}

	// (d) catalog lookup for a stale reference carrying only an id.
	pos, ok = r.ResolvePosition(PhysicalTarget(&ObjectRef{ID: "a0_outer_planet"}))
	if !ok || pos != (Vec3{X: 15, Y: 0, Z: 0}) {
		t.Fatalf("catalog fallback failed: ok=%v pos=%+v", ok, pos)
	}

	// (e) live scene registry by id, then by name.
	pos, ok = r.ResolvePosition(PhysicalTarget(&ObjectRef{ID: "Z9_ghost"}))
	if !ok || pos != (Vec3{X: 9, Y: 9, Z: 9}) {
		t.Fatalf("scene-by-id fallback failed: ok=%v pos=%+v", ok, pos)
	}
	pos, ok = r.ResolvePosition(PhysicalTarget(&ObjectRef{ID: "Z9_unlisted", Name: "Wanderer"}))
	if !ok || pos != (Vec3{X: 5, Y: 5, Z: 5}) {
		t.Fatalf("scene-by-name fallback failed: ok=%v pos=%+v", ok, pos)
	}
}

func TestResolveLostTargetReturnsFalse(t *testing.T) {
	r := NewTargetResolver(testCatalog(t), &fakeScene{})
	if _, ok := r.ResolvePosition(PhysicalTarget(&ObjectRef{ID: "Z9_nowhere"})); ok {
		t.Fatal("unresolvable target must return false, not a position")
	}
	if _, ok := r.ResolvePosition(nil); ok {
		t.Fatal("nil target must not resolve")
	}
	if _, ok := r.ResolvePosition(&Target{Kind: TargetVirtual, IsVirtual: true}); ok {
		t.Fatal("virtual target without waypoint must not resolve")
	}
}

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		km   float64
		want string
	}{
		{0.0, "0m"},
		{0.65, "650m"},
		{0.9994, "999m"},
		{1.0, "1.0km"},
		{12.34, "12.3km"},
		{999.0, "999.0km"},
		{1000.0, "1,000km"},
		{1234567.0, "1,234,567km"},
	}
	for _, c := range cases {
		if got := FormatDistance(c.km); got != c.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", c.km, got, c.want)
		}
	}
}
