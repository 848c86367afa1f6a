package weights

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/transportlab/zonelink/pkg/geometry"
	"github.com/transportlab/zonelink/pkg/overlay"
	"github.com/transportlab/zonelink/pkg/zone"
)

func srcRecord(id string, area float64) zone.Record {
	geom := orb.MultiPolygon{{orb.Ring{
		{0, 0}, {area, 0}, {area, 1}, {0, 1}, {0, 0},
	}}}
	return zone.Record{ID: id, Geom: geom, Area: geometry.Area(geom), Bound: geom.Bound()}
}

func TestValidateMode(t *testing.T) {
	tests := []struct {
		mode    Mode
		wantErr bool
	}{
		{ModeArea, false},
		{ModeAttribute, false},
		{"population", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := ValidateMode(tt.mode); (err != nil) != tt.wantErr {
			t.Errorf("ValidateMode(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
		}
	}
}

func TestRaw(t *testing.T) {
	src := srcRecord("s", 4)
	frag := overlay.Fragment{Source: "s", Target: "t", Area: 1}

	w, err := Raw(frag, src, ModeArea)
	if err != nil {
		t.Fatalf("Raw() = %v", err)
	}
	if math.Abs(w-0.25) > 1e-12 {
		t.Errorf("Raw() = %v, want 0.25", w)
	}
}

func TestRawAttributeMode(t *testing.T) {
	src := srcRecord("s", 4)
	src.Attribute = 1000
	src.HasAttribute = true
	frag := overlay.Fragment{Source: "s", Target: "t", Area: 2}

	w, err := Raw(frag, src, ModeAttribute)
	if err != nil {
		t.Fatalf("Raw() = %v", err)
	}
	if math.Abs(w-500) > 1e-9 {
		t.Errorf("Raw() = %v, want 500", w)
	}

	// Without an attribute, attribute mode degrades to the plain area share.
	src.HasAttribute = false
	w, err = Raw(frag, src, ModeAttribute)
	if err != nil {
		t.Fatalf("Raw() = %v", err)
	}
	if math.Abs(w-0.5) > 1e-12 {
		t.Errorf("Raw() without attribute = %v, want 0.5", w)
	}
}

func TestRawDegenerateZone(t *testing.T) {
	src := zone.Record{ID: "flat", Area: 0}
	_, err := Raw(overlay.Fragment{Area: 1}, src, ModeArea)
	if !errors.Is(err, zone.ErrDegenerateZone) {
		t.Errorf("Raw() error = %v, want ErrDegenerateZone", err)
	}
}

func TestNormalizePartition(t *testing.T) {
	// Source of area 4 split into 1 and 3: weights 0.25 and 0.75.
	src := srcRecord("s", 4)
	frags := []overlay.Fragment{
		{Source: "s", Target: "b", Area: 3},
		{Source: "s", Target: "a", Area: 1},
	}

	entries, err := Normalize(frags, src, ModeArea)
	if err != nil {
		t.Fatalf("Normalize() = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Target != "a" || entries[1].Target != "b" {
		t.Error("entries should be sorted by target")
	}
	if math.Abs(entries[0].Weight-0.25) > Tolerance || math.Abs(entries[1].Weight-0.75) > Tolerance {
		t.Errorf("weights = %v, %v, want 0.25, 0.75", entries[0].Weight, entries[1].Weight)
	}
}

// After sliver filtering removed part of the source's coverage, the surviving
// fragments still renormalize to 1.0, not to the raw covered fraction.
func TestNormalizeRenormalizesAfterFiltering(t *testing.T) {
	src := srcRecord("s", 10)
	frags := []overlay.Fragment{
		{Source: "s", Target: "x", Area: 6},
		{Source: "s", Target: "y", Area: 3},
		// A 1-unit fragment was dropped as a sliver upstream.
	}

	entries, err := Normalize(frags, src, ModeArea)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, e := range entries {
		sum += e.Weight
	}
	if math.Abs(sum-1.0) > Tolerance {
		t.Errorf("weights sum to %v, want exactly 1.0", sum)
	}
	if math.Abs(entries[0].Weight-2.0/3.0) > Tolerance {
		t.Errorf("weight x = %v, want 2/3", entries[0].Weight)
	}
}

// Attribute scaling applies uniformly within a zone, so per-zone
// normalization must cancel it: the normalized weights match area mode.
func TestNormalizeAttributeCancels(t *testing.T) {
	src := srcRecord("s", 4)
	src.Attribute = 987
	src.HasAttribute = true
	frags := []overlay.Fragment{
		{Source: "s", Target: "a", Area: 1},
		{Source: "s", Target: "b", Area: 3},
	}

	entries, err := Normalize(frags, src, ModeAttribute)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(entries[0].Weight-0.25) > Tolerance {
		t.Errorf("weight = %v, want 0.25", entries[0].Weight)
	}
}

func TestNormalizeZeroAttribute(t *testing.T) {
	// The zone overlaps targets, so "no overlap" would be the wrong story;
	// the zero attribute is what leaves nothing to distribute.
	src := srcRecord("s", 4)
	src.Attribute = 0
	src.HasAttribute = true
	frags := []overlay.Fragment{{Source: "s", Target: "a", Area: 2}}

	_, err := Normalize(frags, src, ModeAttribute)
	if !errors.Is(err, zone.ErrZeroAttribute) {
		t.Errorf("Normalize() error = %v, want ErrZeroAttribute", err)
	}
	if errors.Is(err, zone.ErrNoOverlap) {
		t.Error("zero attribute must not be reported as missing overlap")
	}
}

func TestNormalizeEmpty(t *testing.T) {
	_, err := Normalize(nil, srcRecord("s", 1), ModeArea)
	if !errors.Is(err, zone.ErrNoOverlap) {
		t.Errorf("Normalize(nil) error = %v, want ErrNoOverlap", err)
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	b.Add([]zone.Entry{{Source: "b", Target: "y", Weight: 1}})
	b.Add([]zone.Entry{
		{Source: "a", Target: "y", Weight: 0.5},
		{Source: "a", Target: "x", Weight: 0.5},
	})
	b.Skip("c", "no overlap with target zones")

	table, diags, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("table size = %d, want 3", len(table))
	}
	if table[0].Source != "a" || table[0].Target != "x" {
		t.Errorf("first entry = %+v, want a/x", table[0])
	}
	if len(diags) != 1 || diags[0].ZoneID != "c" {
		t.Errorf("diags = %v", diags)
	}
}

func TestBuilderConservationViolation(t *testing.T) {
	b := NewBuilder()
	b.Add([]zone.Entry{
		{Source: "a", Target: "x", Weight: 0.5},
		{Source: "a", Target: "y", Weight: 0.4},
	})

	if _, _, err := b.Finish(); err == nil {
		t.Error("Finish() should reject weights that do not sum to 1.0")
	}
}

func TestVerifyConservationEmptyTable(t *testing.T) {
	if err := VerifyConservation(nil); err != nil {
		t.Errorf("empty table should pass: %v", err)
	}
}
