// Package model defines core domain types shared across the library.
package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the plotting pipeline. Components wrap these with
// fmt.Errorf("%w: ...") so callers can match with errors.Is.
var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidPrecision  = errors.New("invalid precision")
	ErrEmptyInput        = errors.New("empty input")
	ErrInvalidScheme     = errors.New("invalid color scheme")
	ErrUnknownCell       = errors.New("unknown cell")
)

// Point is a geographic position in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

// CellID identifies one tessellation cell. Opaque and stable: two points
// falling in the same cell at the same precision produce identical ids.
type CellID string

// ValidateCoordinate checks lat/lon against the valid geographic ranges.
func ValidateCoordinate(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, lon)
	}
	return nil
}

// ValidateBatch checks a parallel lat/lon batch: lengths must match, the
// batch must be non-empty, and every coordinate must be in range.
func ValidateBatch(lats, lons []float64) error {
	if len(lats) != len(lons) {
		return fmt.Errorf("%w: lats and lons must have same length (got %d and %d)",
			ErrEmptyInput, len(lats), len(lons))
	}
	if len(lats) == 0 {
		return fmt.Errorf("%w: lats and lons cannot be empty", ErrEmptyInput)
	}
	for i := range lats {
		if err := ValidateCoordinate(lats[i], lons[i]); err != nil {
			return err
		}
	}
	return nil
}

// BBox is a geographic bounding box in degrees.
type BBox struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// NewBBox returns a box primed so that the first Extend sets all four edges.
func NewBBox() BBox {
	return BBox{MinLat: 90, MinLon: 180, MaxLat: -90, MaxLon: -180}
}

func (b BBox) Extend(p Point) BBox {
	if p.Lat < b.MinLat {
		b.MinLat = p.Lat
	}
	if p.Lat > b.MaxLat {
		b.MaxLat = p.Lat
	}
	if p.Lon < b.MinLon {
		b.MinLon = p.Lon
	}
	if p.Lon > b.MaxLon {
		b.MaxLon = p.Lon
	}
	return b
}

func (b BBox) Empty() bool {
	return b.MinLat > b.MaxLat || b.MinLon > b.MaxLon
}
