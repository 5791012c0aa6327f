package nav

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ObjectType string

const (
	ObjectStar    ObjectType = "star"
	ObjectPlanet  ObjectType = "planet"
	ObjectMoon    ObjectType = "moon"
	ObjectStation ObjectType = "station"
	ObjectBeacon  ObjectType = "beacon"
	ObjectShip    ObjectType = "ship"
)

// CelestialObject is one entry of the static object database. Immutable
// once loaded.
type CelestialObject struct {
	ID     ObjectID
	Name   string
	Type   ObjectType
	Pos    Vec3
	Sector string
}

// Raw file shapes. Positions arrive as arrays (2 or 3 elements) or
// {x,y,z} objects depending on which tool produced the sector file, so
// they decode as `any` and go through NormalizePosition.
type catalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Pos  any    `json:"pos"`
}

type catalogInfrastructure struct {
	Stations []catalogEntry `json:"stations"`
	Beacons  []catalogEntry `json:"beacons"`
}

type catalogSector struct {
	Star           *catalogEntry         `json:"star"`
	Objects        []catalogEntry        `json:"objects"`
	Infrastructure catalogInfrastructure `json:"infrastructure"`
}

type catalogFile struct {
	Sectors map[string]catalogSector `json:"sectors"`
}

// Catalog is the loaded object database: id-keyed, with a display-name
// index for resolver fallbacks. Read-only after load.
type Catalog struct {
	objects  map[ObjectID]*CelestialObject
	byName   map[string]ObjectID
	order    []ObjectID
	upgraded []ObjectID // ids whose stored position was legacy 2D
}

// LoadCatalog reads a sector-keyed object database file.
func LoadCatalog(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", cleanPath, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %q: %w", cleanPath, err)
	}
	return cat, nil
}

// ParseCatalog builds a Catalog from raw JSON. Every entry's id and
// position are normalized at this boundary; a malformed entry fails the
// whole load rather than being silently skipped.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	cat := &Catalog{
		objects: make(map[ObjectID]*CelestialObject),
		byName:  make(map[string]ObjectID),
	}
	for sector, sec := range file.Sectors {
		if sec.Star != nil {
			if err := cat.add(sector, *sec.Star, ObjectStar); err != nil {
				return nil, err
			}
		}
		for _, entry := range sec.Objects {
			if err := cat.add(sector, entry, ""); err != nil {
				return nil, err
			}
		}
		for _, entry := range sec.Infrastructure.Stations {
			if err := cat.add(sector, entry, ObjectStation); err != nil {
				return nil, err
			}
		}
		for _, entry := range sec.Infrastructure.Beacons {
			if err := cat.add(sector, entry, ObjectBeacon); err != nil {
				return nil, err
			}
		}
	}
	return cat, nil
}

func (c *Catalog) add(sector string, entry catalogEntry, fallbackType ObjectType) error {
	id, err := NormalizeID(entry.ID)
	if err != nil {
		return err
	}
	pos, wasUpgraded, err := NormalizePosition(entry.Pos)
	if err != nil {
		return fmt.Errorf("object %s: %w", id, err)
	}
	typ := ObjectType(entry.Type)
	if typ == "" {
		typ = fallbackType
	}
	obj := &CelestialObject{
		ID:     id,
		Name:   entry.Name,
		Type:   typ,
		Pos:    pos,
		Sector: strings.ToUpper(sector),
	}
	if _, dup := c.objects[id]; dup {
		return fmt.Errorf("duplicate object id %s", id)
	}
	c.objects[id] = obj
	c.order = append(c.order, id)
	if entry.Name != "" {
		c.byName[strings.ToLower(entry.Name)] = id
	}
	if wasUpgraded {
		c.upgraded = append(c.upgraded, id)
	}
	return nil
}

// Lookup finds an object by raw id, normalizing first.
func (c *Catalog) Lookup(raw string) (*CelestialObject, bool) {
	id, err := NormalizeID(raw)
	if err != nil {
		return nil, false
	}
	obj, ok := c.objects[id]
	return obj, ok
}

// LookupName finds an object by display name, case-insensitively.
func (c *Catalog) LookupName(name string) (*CelestialObject, bool) {
	id, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return c.objects[id], true
}

// All returns every object in load order.
func (c *Catalog) All() []*CelestialObject {
	out := make([]*CelestialObject, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.objects[id])
	}
	return out
}

func (c *Catalog) Len() int { return len(c.order) }

// Upgraded2D lists the ids whose stored position was a legacy 2D array,
// kept for backward-compat assertions in tests and load-time logging.
func (c *Catalog) Upgraded2D() []ObjectID {
	out := make([]ObjectID, len(c.upgraded))
	copy(out, c.upgraded)
	return out
}

// PopulateGrid inserts every catalog object into the grid.
func (c *Catalog) PopulateGrid(g *SpatialGrid) error {
	for _, id := range c.order {
		if err := g.Insert(id, c.objects[id].Pos); err != nil {
			return fmt.Errorf("index object %s: %w", id, err)
		}
	}
	return nil
}
