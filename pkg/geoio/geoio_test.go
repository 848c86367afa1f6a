package geoio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/transportlab/zonelink/pkg/zone"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"zone_id": "A01", "population": 1200},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,2],[0,2],[0,0]]]}
    },
    {
      "type": "Feature",
      "properties": {"zone_id": "A02"},
      "geometry": {"type": "Polygon", "coordinates": [[[2,0],[4,0],[4,2],[2,2],[2,0]]]}
    }
  ]
}`

func TestReadZones(t *testing.T) {
	zones, err := ReadZones(strings.NewReader(sampleGeoJSON), ReadOptions{
		IDProperty:        "zone_id",
		AttributeProperty: "population",
	})
	if err != nil {
		t.Fatalf("ReadZones() = %v", err)
	}
	if zones.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", zones.Len())
	}

	a, ok := zones.Get("A01")
	if !ok {
		t.Fatal("zone A01 missing")
	}
	if !a.HasAttribute || a.Attribute != 1200 {
		t.Errorf("A01 attribute = (%v, %v), want (1200, true)", a.Attribute, a.HasAttribute)
	}
	if _, ok := a.Geometry.(orb.Polygon); !ok {
		t.Errorf("A01 geometry type = %T, want orb.Polygon", a.Geometry)
	}

	b, _ := zones.Get("A02")
	if b.HasAttribute {
		t.Error("A02 should have no attribute")
	}
}

func TestReadZonesMissingID(t *testing.T) {
	_, err := ReadZones(strings.NewReader(sampleGeoJSON), ReadOptions{IDProperty: "code"})
	if err == nil || !strings.Contains(err.Error(), "missing identifier") {
		t.Errorf("ReadZones() error = %v, want missing identifier", err)
	}
}

func TestReadZonesDuplicateID(t *testing.T) {
	dup := strings.Replace(sampleGeoJSON, "A02", "A01", 1)
	_, err := ReadZones(strings.NewReader(dup), ReadOptions{IDProperty: "zone_id"})
	if err == nil {
		t.Error("ReadZones() should reject duplicate zone IDs")
	}
}

func TestReadZonesBadJSON(t *testing.T) {
	if _, err := ReadZones(strings.NewReader("{not geojson"), ReadOptions{}); err == nil {
		t.Error("ReadZones() should fail on malformed input")
	}
}

func TestWriteTableCSV(t *testing.T) {
	table := zone.Table{
		{Source: "a", Target: "x", Weight: 0.25},
		{Source: "a", Target: "y", Weight: 0.75},
	}

	var buf bytes.Buffer
	if err := WriteTableCSV(&buf, table); err != nil {
		t.Fatalf("WriteTableCSV() = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "source,target,weight" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "a,x,0.25" {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestTableJSONRoundTrip(t *testing.T) {
	table := zone.Table{
		{Source: "a", Target: "x", Weight: 1.0 / 3.0},
		{Source: "a", Target: "y", Weight: 2.0 / 3.0},
	}

	var buf bytes.Buffer
	if err := WriteTableJSON(&buf, table); err != nil {
		t.Fatal(err)
	}
	got, err := ReadTableJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != table[0] || got[1] != table[1] {
		t.Errorf("round trip = %+v, want %+v", got, table)
	}
}

func TestWriteDiagnosticsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDiagnosticsJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("nil diagnostics = %q, want []", buf.String())
	}
}
