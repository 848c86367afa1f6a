package zone

import (
	"sort"

	"github.com/paulmach/orb"
)

// Zone is a raw input zone as supplied by an I/O adapter: an identifier,
// polygon or multi-polygon geometry in the working planar coordinate system,
// and an optional numeric attribute (e.g. population) used by attribute
// weighting.
type Zone struct {
	ID       string
	Geometry orb.Geometry

	// Attribute is the quantity redistributed in attribute mode.
	// HasAttribute distinguishes "no attribute supplied" from a zero value.
	Attribute    float64
	HasAttribute bool
}

// Record is a validated zone: repaired canonical geometry plus precomputed
// area and bounding box. Records are immutable after creation and safe to
// share across overlay workers without locking.
type Record struct {
	ID    string
	Geom  orb.MultiPolygon
	Area  float64
	Bound orb.Bound

	Attribute    float64
	HasAttribute bool
}

// Collection is a set of zones keyed by ID, preserving insertion order for
// deterministic iteration.
type Collection struct {
	order []string
	zones map[string]Zone
}

// NewCollection creates an empty zone collection.
func NewCollection() *Collection {
	return &Collection{zones: make(map[string]Zone)}
}

// Add appends a zone to the collection. It fails on empty or duplicate IDs.
func (c *Collection) Add(z Zone) error {
	if z.ID == "" {
		return ErrEmptyZoneID
	}
	if _, ok := c.zones[z.ID]; ok {
		return ErrDuplicateZoneID
	}
	c.zones[z.ID] = z
	c.order = append(c.order, z.ID)
	return nil
}

// Get returns the zone with the given ID.
func (c *Collection) Get(id string) (Zone, bool) {
	z, ok := c.zones[id]
	return z, ok
}

// Len returns the number of zones in the collection.
func (c *Collection) Len() int { return len(c.order) }

// IDs returns the zone IDs in insertion order.
func (c *Collection) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// SortedIDs returns the zone IDs in lexicographic order.
func (c *Collection) SortedIDs() []string {
	ids := c.IDs()
	sort.Strings(ids)
	return ids
}

// Zones returns the zones in insertion order.
func (c *Collection) Zones() []Zone {
	out := make([]Zone, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.zones[id])
	}
	return out
}
