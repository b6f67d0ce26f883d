package density

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/heatfall/heatfall/internal/core/model"
	"github.com/heatfall/heatfall/internal/tess"
)

func newTess(t *testing.T, kind tess.Kind, precision int) tess.Tessellation {
	t.Helper()
	ts, err := tess.New(kind, precision)
	if err != nil {
		t.Fatalf("tess.New(%v,%d): %v", kind, precision, err)
	}
	return ts
}

func TestAggregate_CountsSumToInputSize(t *testing.T) {
	lats := []float64{27.88, 27.92, 27.94, 27.88, 59.33, -33.87}
	lons := []float64{-82.49, -82.49, -82.46, -82.49, 18.07, 151.21}
	for _, kind := range []tess.Kind{tess.Rectangular, tess.Hexagonal} {
		g, err := Aggregate(lats, lons, newTess(t, kind, 6))
		if err != nil {
			t.Fatalf("Aggregate(%v): %v", kind, err)
		}
		sum := 0
		for id, c := range g.Counts {
			if c < 1 {
				t.Fatalf("cell %q has count %d, want >= 1", id, c)
			}
			sum += c
		}
		if sum != len(lats) {
			t.Fatalf("%v: counts sum to %d, want %d", kind, sum, len(lats))
		}
	}
}

func TestAggregate_TwoCells(t *testing.T) {
	// Two points share a precision-4 geohash cell; the third sits one
	// longitude band east.
	lats := []float64{27.88, 27.88, 27.92}
	lons := []float64{-82.49, -82.49, -81.00}

	g, err := Aggregate(lats, lons, newTess(t, tess.Rectangular, 4))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(g.Counts) != 2 {
		t.Fatalf("got %d occupied cells, want 2 (%v)", len(g.Counts), g.Counts)
	}
	if !reflect.DeepEqual(g.Levels, []int{1, 2}) {
		t.Fatalf("Levels = %v, want [1 2]", g.Levels)
	}
}

func TestAggregate_EmptyAndMismatch(t *testing.T) {
	ts := newTess(t, tess.Rectangular, 4)

	if _, err := Aggregate(nil, nil, ts); !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("empty: %v, want ErrEmptyInput", err)
	}
	if _, err := Aggregate([]float64{1, 2, 3}, []float64{1, 2}, ts); !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("mismatch: %v, want ErrEmptyInput", err)
	}
}

func TestRankOf_Monotonic(t *testing.T) {
	g := &Grid{Levels: []int{1, 3, 7}}

	prev := -1
	for _, c := range g.Levels {
		r := g.RankOf(c)
		if r <= prev {
			t.Fatalf("RankOf(%d) = %d, not strictly increasing after %d", c, r, prev)
		}
		prev = r
	}
	if r := g.RankOf(2); r != -1 {
		t.Fatalf("RankOf(2) = %d, want -1 for absent count", r)
	}
	if r := g.RankOf(7); r != len(g.Levels)-1 {
		t.Fatalf("highest count rank = %d, want %d", r, len(g.Levels)-1)
	}
}

func TestCells_SortedAndComplete(t *testing.T) {
	lats := []float64{27.88, 27.92, 27.94, 59.33}
	lons := []float64{-82.49, -82.49, -82.46, 18.07}
	g, err := Aggregate(lats, lons, newTess(t, tess.Hexagonal, 7))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	cells := g.Cells()
	if len(cells) != len(g.Counts) {
		t.Fatalf("Cells() has %d entries, Counts has %d", len(cells), len(g.Counts))
	}
	if !sort.SliceIsSorted(cells, func(i, j int) bool { return cells[i] < cells[j] }) {
		t.Fatalf("Cells() not sorted: %v", cells)
	}
	for _, id := range cells {
		if _, ok := g.Counts[id]; !ok {
			t.Fatalf("Cells() returned id %q missing from Counts", id)
		}
	}
}

// Replaying one representative point per cell, count times, reproduces the
// same per-cell counts.
func TestAggregate_ReplayRoundTrip(t *testing.T) {
	lats := []float64{27.88, 27.88, 27.92, 27.94, 27.94, 27.94}
	lons := []float64{-82.49, -82.49, -81.00, -80.10, -80.10, -80.10}
	ts := newTess(t, tess.Rectangular, 4)

	first, err := Aggregate(lats, lons, ts)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	var rlats, rlons []float64
	for id, count := range first.Counts {
		ring, err := ts.Boundary(id)
		if err != nil {
			t.Fatalf("Boundary(%q): %v", id, err)
		}
		// cell center as the representative point
		lat := (ring[0].Lat + ring[2].Lat) / 2
		lon := (ring[0].Lon + ring[2].Lon) / 2
		for i := 0; i < count; i++ {
			rlats = append(rlats, lat)
			rlons = append(rlons, lon)
		}
	}

	second, err := Aggregate(rlats, rlons, ts)
	if err != nil {
		t.Fatalf("Aggregate(replay): %v", err)
	}
	if !reflect.DeepEqual(first.Counts, second.Counts) {
		t.Fatalf("replayed counts differ:\n first=%v\nsecond=%v", first.Counts, second.Counts)
	}
	if !reflect.DeepEqual(first.Levels, second.Levels) {
		t.Fatalf("replayed levels differ: %v vs %v", first.Levels, second.Levels)
	}
}
