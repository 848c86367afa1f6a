package index

import (
	"errors"
	"sort"
	"testing"

	"github.com/paulmach/orb"

	"github.com/transportlab/zonelink/pkg/zone"
)

func record(id string, minX, minY, maxX, maxY float64) zone.Record {
	geom := orb.MultiPolygon{{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}}
	return zone.Record{
		ID:    id,
		Geom:  geom,
		Area:  (maxX - minX) * (maxY - minY),
		Bound: geom.Bound(),
	}
}

func TestNewEmpty(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, zone.ErrEmptyTargets) {
		t.Errorf("New(nil) error = %v, want ErrEmptyTargets", err)
	}
}

func TestCandidates(t *testing.T) {
	idx, err := New([]zone.Record{
		record("a", 0, 0, 1, 1),
		record("b", 2, 0, 3, 1),
		record("c", 0.5, 0.5, 1.5, 1.5),
	})
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}

	tests := []struct {
		name  string
		query orb.Bound
		want  []string
	}{
		{"HitsTwo", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, []string{"a", "c"}},
		{"HitsOne", orb.Bound{Min: orb.Point{2.5, 0.5}, Max: orb.Point{2.6, 0.6}}, []string{"b"}},
		{"HitsAll", orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{5, 5}}, []string{"a", "b", "c"}},
		{"Misses", orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{11, 11}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Candidates(tt.query)
			sort.Strings(got)
			if len(got) != len(tt.want) {
				t.Fatalf("Candidates() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Candidates() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// Touching bounds must still be candidates: bounding-box lookup guarantees
// no false negatives, and shared edges are the usual case for adjacent zones.
func TestCandidatesTouchingBounds(t *testing.T) {
	idx, err := New([]zone.Record{record("left", 0, 0, 1, 1)})
	if err != nil {
		t.Fatal(err)
	}
	got := idx.Candidates(orb.Bound{Min: orb.Point{1, 0}, Max: orb.Point{2, 1}})
	if len(got) != 1 || got[0] != "left" {
		t.Errorf("Candidates(touching) = %v, want [left]", got)
	}
}
