package nav

import "math"

// CellKey addresses one fixed-size cube of space.
type CellKey struct{ X, Y, Z int }

// SpatialGrid buckets object ids into fixed-size cubic cells so that
// radius queries touch only the cells a sphere can intersect instead of
// scanning every loaded object. Objects in this system are static, but
// Insert re-buckets correctly if a position ever changes.
type SpatialGrid struct {
	cellSize  float64
	cells     map[CellKey][]ObjectID
	located   map[ObjectID]CellKey
	positions map[ObjectID]Vec3
}

func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &SpatialGrid{
		cellSize:  cellSize,
		cells:     make(map[CellKey][]ObjectID),
		located:   make(map[ObjectID]CellKey),
		positions: make(map[ObjectID]Vec3),
	}
}

func (g *SpatialGrid) CellSize() float64 { return g.cellSize }

func (g *SpatialGrid) Len() int { return len(g.located) }

func (g *SpatialGrid) cellFor(pos Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X / g.cellSize)),
		Y: int(math.Floor(pos.Y / g.cellSize)),
		Z: int(math.Floor(pos.Z / g.cellSize)),
	}
}

// Insert places id into the cell matching pos. If the id is already
// bucketed elsewhere it is removed from its old cell first, keeping the
// one-cell-per-object invariant.
func (g *SpatialGrid) Insert(id ObjectID, pos Vec3) error {
	if !pos.IsFinite() {
		return &InvalidPositionError{Reason: "non-finite coordinate"}
	}
	key := g.cellFor(pos)
	if old, ok := g.located[id]; ok {
		if old == key {
			g.positions[id] = pos
			return nil
		}
		g.removeFromCell(id, old)
	}
	g.cells[key] = append(g.cells[key], id)
	g.located[id] = key
	g.positions[id] = pos
	return nil
}

// Remove drops id from the index. Unknown ids are a no-op.
func (g *SpatialGrid) Remove(id ObjectID) {
	key, ok := g.located[id]
	if !ok {
		return
	}
	g.removeFromCell(id, key)
	delete(g.located, id)
	delete(g.positions, id)
}

func (g *SpatialGrid) removeFromCell(id ObjectID, key CellKey) {
	bucket := g.cells[key]
	for i, other := range bucket {
		if other == id {
			g.cells[key] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(g.cells[key]) == 0 {
		delete(g.cells, key)
	}
}

// Position returns the stored position for id.
func (g *SpatialGrid) Position(id ObjectID) (Vec3, bool) {
	pos, ok := g.positions[id]
	return pos, ok
}

// QueryRadius returns every id whose stored position lies within radius
// of center. Two phases: enumerate all cells within ceil(radius/cellSize)
// cell-steps of the center cell (an over-approximation of the sphere, so
// no qualifying cell is ever skipped), then filter candidates by exact
// Euclidean distance. Cost scales with cells touched plus candidates
// found, never with total object count.
func (g *SpatialGrid) QueryRadius(center Vec3, radius float64) ([]ObjectID, error) {
	if !center.IsFinite() {
		return nil, &InvalidPositionError{Reason: "non-finite query center"}
	}
	if radius <= 0 {
		return nil, nil
	}
	steps := int(math.Ceil(radius / g.cellSize))
	origin := g.cellFor(center)

	var hits []ObjectID
	for dx := -steps; dx <= steps; dx++ {
		for dy := -steps; dy <= steps; dy++ {
			for dz := -steps; dz <= steps; dz++ {
				key := CellKey{X: origin.X + dx, Y: origin.Y + dy, Z: origin.Z + dz}
				for _, id := range g.cells[key] {
					if g.positions[id].Dist(center) <= radius {
						hits = append(hits, id)
					}
				}
			}
		}
	}
	return hits, nil
}
