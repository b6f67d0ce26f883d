// Package tess implements the spatial tessellation schemes used for binning
// points into cells and resolving cell boundaries.
package tess

import (
	"fmt"
	"strings"

	"github.com/heatfall/heatfall/internal/core/model"
)

// Kind selects one of the supported tessellation schemes.
type Kind int

const (
	// Rectangular bins points into geohash cells (precision 1..12).
	Rectangular Kind = iota
	// Hexagonal bins points into H3 cells (resolution 0..15).
	Hexagonal
)

func (k Kind) String() string {
	switch k {
	case Rectangular:
		return "geohash"
	case Hexagonal:
		return "h3"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a scheme name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geohash", "rectangular":
		return Rectangular, nil
	case "h3", "hexagonal", "hex":
		return Hexagonal, nil
	default:
		return 0, fmt.Errorf("unsupported tessellation %q (want geohash or h3)", s)
	}
}

// Tessellation assigns points to cells and resolves cell boundaries. Both
// operations are pure: identical inputs always produce identical outputs,
// and Boundary(Cell(p)) always contains p.
type Tessellation interface {
	Kind() Kind
	Precision() int
	// Cell returns the id of the cell containing the point.
	Cell(lat, lon float64) (model.CellID, error)
	// Boundary returns the closed polygon ring of a cell (the first vertex
	// implicitly connects to the last). Rectangular cells have 4 vertices;
	// hexagonal cells have 6, or 5 at the twelve global pentagon cells.
	Boundary(id model.CellID) ([]model.Point, error)
}

// New constructs a Tessellation, validating precision for the kind.
func New(kind Kind, precision int) (Tessellation, error) {
	switch kind {
	case Rectangular:
		return newRectangular(precision)
	case Hexagonal:
		return newHexagonal(precision)
	default:
		return nil, fmt.Errorf("unsupported tessellation kind %d", int(kind))
	}
}
