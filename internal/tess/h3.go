package tess

import (
	"fmt"

	h3 "github.com/uber/h3-go/v4"

	"github.com/heatfall/heatfall/internal/core/model"
)

const (
	h3MinResolution = 0
	h3MaxResolution = 15
)

type hexagonal struct {
	res int
}

func newHexagonal(res int) (hexagonal, error) {
	if res < h3MinResolution || res > h3MaxResolution {
		return hexagonal{}, fmt.Errorf("%w: H3 resolution %d (must be %d..%d)",
			model.ErrInvalidPrecision, res, h3MinResolution, h3MaxResolution)
	}
	return hexagonal{res: res}, nil
}

func (h hexagonal) Kind() Kind     { return Hexagonal }
func (h hexagonal) Precision() int { return h.res }

func (h hexagonal) Cell(lat, lon float64) (model.CellID, error) {
	if err := model.ValidateCoordinate(lat, lon); err != nil {
		return "", err
	}
	c, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, h.res)
	if err != nil {
		return "", fmt.Errorf("h3 cell: %w", err)
	}
	return model.CellID(c.String()), nil
}

// Boundary returns the cell ring from H3. Most cells yield 6 vertices;
// pentagon cells yield 5.
func (h hexagonal) Boundary(id model.CellID) ([]model.Point, error) {
	var c h3.Cell
	if err := c.UnmarshalText([]byte(id)); err != nil {
		return nil, fmt.Errorf("%w: parse h3 cell %q: %v", model.ErrUnknownCell, id, err)
	}
	if !c.IsValid() {
		return nil, fmt.Errorf("%w: invalid h3 cell %q", model.ErrUnknownCell, id)
	}
	ring, err := c.Boundary()
	if err != nil {
		return nil, fmt.Errorf("h3 boundary: %w", err)
	}
	out := make([]model.Point, 0, len(ring))
	for _, ll := range ring {
		out = append(out, model.Point{Lat: ll.Lat, Lon: ll.Lng})
	}
	return out, nil
}
