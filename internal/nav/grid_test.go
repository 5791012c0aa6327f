package nav

import (
	"errors"
	"math"
	"testing"
)

func TestQueryRadiusFindsInsertedObjectAtOwnPosition(t *testing.T) {
	g := NewSpatialGrid(50)
	positions := []Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: -299.38, Y: -0.77, Z: 19.23},
		{X: 1024, Y: -512, Z: 7},
		{X: 49.999, Y: 49.999, Z: 49.999},
		{X: -50, Y: -50, Z: -50},
	}
	for i, pos := range positions {
		id := ObjectID(string(rune('A'+i)) + "0_obj")
		if err := g.Insert(id, pos); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
		hits, err := g.QueryRadius(pos, 0.001)
		if err != nil {
			t.Fatalf("query at %v: %v", pos, err)
		}
		if !containsID(hits, id) {
			t.Fatalf("query at own position missed %s (hits %v)", id, hits)
		}
	}
}

func TestQueryRadiusMonotonic(t *testing.T) {
	g := NewSpatialGrid(50)
	objects := map[ObjectID]Vec3{
		"A0_near":    {X: 3, Y: 0, Z: 0},
		"A0_mid":     {X: 40, Y: 0, Z: 0},
		"A0_far":     {X: 120, Y: 30, Z: -10},
		"A0_distant": {X: 500, Y: 500, Z: 500},
	}
	for id, pos := range objects {
		if err := g.Insert(id, pos); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	center := Vec3{}
	radii := []float64{1, 10, 50, 200, 1000}
	var prev []ObjectID
	for _, r := range radii {
		hits, err := g.QueryRadius(center, r)
		if err != nil {
			t.Fatalf("query r=%.1f: %v", r, err)
		}
		for _, id := range prev {
			if !containsID(hits, id) {
				t.Fatalf("r=%.1f dropped %s found at smaller radius", r, id)
			}
		}
		prev = hits
	}
}

func TestQueryRadiusExactFilter(t *testing.T) {
	// Object near a cell border: coarse enumeration must reach it, exact
	// filter must still respect the true distance.
	g := NewSpatialGrid(50)
	obj := ObjectID("A0_helios_solar_array")
	pos := Vec3{X: -299.38, Y: -0.77, Z: 19.23}
	if err := g.Insert(obj, pos); err != nil {
		t.Fatalf("insert: %v", err)
	}
	center := Vec3{X: -300, Y: 0, Z: 19}

	hits, err := g.QueryRadius(center, 5)
	if err != nil {
		t.Fatalf("query r=5: %v", err)
	}
	if !containsID(hits, obj) {
		t.Fatalf("r=5 should include object at distance %.3f", pos.Dist(center))
	}

	hits, err = g.QueryRadius(center, 0.0001)
	if err != nil {
		t.Fatalf("query r=0.0001: %v", err)
	}
	if containsID(hits, obj) {
		t.Fatalf("r=0.0001 must exclude object at distance %.3f", pos.Dist(center))
	}
}

func TestQueryRadiusSpansCellBoundaries(t *testing.T) {
	g := NewSpatialGrid(50)
	// Two objects in different cells, both within radius of a center
	// sitting on the boundary between them.
	if err := g.Insert("A0_west", Vec3{X: 49, Y: 0, Z: 0}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := g.Insert("A0_east", Vec3{X: 51, Y: 0, Z: 0}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	hits, err := g.QueryRadius(Vec3{X: 50, Y: 0, Z: 0}, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected both border objects, got %v", hits)
	}
}

func TestQueryRadiusDegenerateInputs(t *testing.T) {
	g := NewSpatialGrid(50)
	if err := g.Insert("A0_obj", Vec3{}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	hits, err := g.QueryRadius(Vec3{}, 0)
	if err != nil {
		t.Fatalf("r=0 should not error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("r=0 must return empty, got %v", hits)
	}
	if hits, _ := g.QueryRadius(Vec3{}, -3); len(hits) != 0 {
		t.Fatalf("negative radius must return empty, got %v", hits)
	}

	_, err = g.QueryRadius(Vec3{X: math.NaN()}, 10)
	var posErr *InvalidPositionError
	if !errors.As(err, &posErr) {
		t.Fatalf("expected InvalidPositionError for NaN center, got %v", err)
	}
}

func TestInsertRejectsNonFinite(t *testing.T) {
	g := NewSpatialGrid(50)
	err := g.Insert("A0_obj", Vec3{X: math.Inf(1)})
	var posErr *InvalidPositionError
	if !errors.As(err, &posErr) {
		t.Fatalf("expected InvalidPositionError, got %v", err)
	}
	if g.Len() != 0 {
		t.Fatal("failed insert must not index the object")
	}
}

func TestInsertRebucketsOnPositionChange(t *testing.T) {
	g := NewSpatialGrid(50)
	id := ObjectID("A0_drifting_station")
	if err := g.Insert(id, Vec3{X: 10, Y: 10, Z: 10}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := g.Insert(id, Vec3{X: 510, Y: 10, Z: 10}); err != nil {
		t.Fatalf("re-insert: %v", err)
	}
	if g.Len() != 1 {
		t.Fatalf("expected one indexed object, got %d", g.Len())
	}
	if hits, _ := g.QueryRadius(Vec3{X: 10, Y: 10, Z: 10}, 5); containsID(hits, id) {
		t.Fatal("object still found in old cell after re-bucketing")
	}
	hits, _ := g.QueryRadius(Vec3{X: 510, Y: 10, Z: 10}, 5)
	if !containsID(hits, id) {
		t.Fatal("object not found in new cell after re-bucketing")
	}
}

func TestRemove(t *testing.T) {
	g := NewSpatialGrid(50)
	if err := g.Insert("A0_obj", Vec3{X: 1, Y: 2, Z: 3}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	g.Remove("A0_obj")
	if g.Len() != 0 {
		t.Fatalf("expected empty grid, got %d", g.Len())
	}
	if hits, _ := g.QueryRadius(Vec3{X: 1, Y: 2, Z: 3}, 1); len(hits) != 0 {
		t.Fatalf("removed object still returned: %v", hits)
	}
	// Removing twice is a no-op.
	g.Remove("A0_obj")
}

func containsID(ids []ObjectID, want ObjectID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
