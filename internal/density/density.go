// Package density bins point batches into tessellation cells and ranks the
// occupied cells by how many points each one holds.
package density

import (
	"sort"

	"github.com/heatfall/heatfall/internal/core/model"
	"github.com/heatfall/heatfall/internal/tess"
)

// Grid holds the density aggregation for one point batch: per-cell counts
// plus the ascending list of distinct count values. The position of a
// cell's count within Levels is its density rank, which drives color
// selection independent of absolute count magnitude.
type Grid struct {
	// Counts maps every occupied cell to its point count (always >= 1).
	Counts map[model.CellID]int
	// Levels are the distinct count values observed, sorted ascending.
	Levels []int
}

// Aggregate bins every point through the tessellation and counts per cell.
// It fails with ErrEmptyInput on an empty or length-mismatched batch and
// with ErrInvalidCoordinate on out-of-range points; validation happens
// before any binning.
func Aggregate(lats, lons []float64, t tess.Tessellation) (*Grid, error) {
	if err := model.ValidateBatch(lats, lons); err != nil {
		return nil, err
	}

	counts := make(map[model.CellID]int, len(lats))
	for i := range lats {
		id, err := t.Cell(lats[i], lons[i])
		if err != nil {
			return nil, err
		}
		counts[id]++
	}

	seen := make(map[int]struct{})
	levels := make([]int, 0, len(counts))
	for _, c := range counts {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		levels = append(levels, c)
	}
	sort.Ints(levels)

	return &Grid{Counts: counts, Levels: levels}, nil
}

// RankOf returns the density rank of a count: its index in Levels.
// Counts not present in the grid return -1.
func (g *Grid) RankOf(count int) int {
	i := sort.SearchInts(g.Levels, count)
	if i < len(g.Levels) && g.Levels[i] == count {
		return i
	}
	return -1
}

// Cells returns the occupied cell ids sorted lexicographically, so callers
// iterate the grid in the same order on every run.
func (g *Grid) Cells() []model.CellID {
	out := make([]model.CellID, 0, len(g.Counts))
	for id := range g.Counts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
