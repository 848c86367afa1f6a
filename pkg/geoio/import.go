package geoio

import (
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/transportlab/zonelink/pkg/zone"
)

// DefaultIDProperty is the feature property used as the zone identifier when
// none is configured.
const DefaultIDProperty = "id"

// ReadOptions configures GeoJSON import.
type ReadOptions struct {
	// IDProperty names the feature property holding the zone identifier.
	// When the property is absent the feature's top-level "id" member is
	// used instead. Defaults to DefaultIDProperty.
	IDProperty string

	// AttributeProperty optionally names a numeric property used as the
	// zone attribute for attribute weighting. Features without it simply
	// have no attribute.
	AttributeProperty string
}

// ReadZones parses a GeoJSON feature collection into a zone collection.
// Features with missing or duplicate identifiers fail the import: silently
// dropping or renaming zones would corrupt the correspondence downstream.
func ReadZones(r io.Reader, opts ReadOptions) (*zone.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	idProp := opts.IDProperty
	if idProp == "" {
		idProp = DefaultIDProperty
	}

	zones := zone.NewCollection()
	for i, f := range fc.Features {
		id, ok := featureID(f, idProp)
		if !ok {
			return nil, fmt.Errorf("feature %d: missing identifier property %q", i, idProp)
		}
		z := zone.Zone{ID: id, Geometry: f.Geometry}
		if opts.AttributeProperty != "" {
			if v, ok := numericProperty(f, opts.AttributeProperty); ok {
				z.Attribute = v
				z.HasAttribute = true
			}
		}
		if err := zones.Add(z); err != nil {
			return nil, fmt.Errorf("feature %d (%s): %w", i, id, err)
		}
	}
	return zones, nil
}

// ImportZones reads a zone collection from a GeoJSON file at path.
func ImportZones(path string, opts ReadOptions) (*zone.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	zones, err := ReadZones(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return zones, nil
}

// featureID extracts the zone identifier from a feature: the configured
// property first, then the feature's top-level ID member.
func featureID(f *geojson.Feature, prop string) (string, bool) {
	if v, ok := f.Properties[prop]; ok {
		if s := stringify(v); s != "" {
			return s, true
		}
	}
	if s := stringify(f.ID); s != "" {
		return s, true
	}
	return "", false
}

// numericProperty reads a property as a float64, accepting the numeric types
// JSON decoding can produce.
func numericProperty(f *geojson.Feature, prop string) (float64, bool) {
	switch v := f.Properties[prop].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	case int:
		return fmt.Sprintf("%d", s)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}
