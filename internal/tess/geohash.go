package tess

import (
	"fmt"
	"strings"

	"github.com/mmcloughlin/geohash"

	"github.com/heatfall/heatfall/internal/core/model"
)

const (
	geohashMinPrecision = 1
	geohashMaxPrecision = 12

	// geohash base32 alphabet (no a, i, l, o)
	geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"
)

type rectangular struct {
	precision int
}

func newRectangular(precision int) (rectangular, error) {
	if precision < geohashMinPrecision || precision > geohashMaxPrecision {
		return rectangular{}, fmt.Errorf("%w: geohash precision %d (must be %d..%d)",
			model.ErrInvalidPrecision, precision, geohashMinPrecision, geohashMaxPrecision)
	}
	return rectangular{precision: precision}, nil
}

func (r rectangular) Kind() Kind     { return Rectangular }
func (r rectangular) Precision() int { return r.precision }

func (r rectangular) Cell(lat, lon float64) (model.CellID, error) {
	if err := model.ValidateCoordinate(lat, lon); err != nil {
		return "", err
	}
	return model.CellID(geohash.EncodeWithPrecision(lat, lon, uint(r.precision))), nil
}

// Boundary returns the cell box corners in sw, nw, ne, se order.
func (r rectangular) Boundary(id model.CellID) ([]model.Point, error) {
	if err := validateGeohash(string(id)); err != nil {
		return nil, err
	}
	box := geohash.BoundingBox(string(id))
	return []model.Point{
		{Lat: box.MinLat, Lon: box.MinLng},
		{Lat: box.MaxLat, Lon: box.MinLng},
		{Lat: box.MaxLat, Lon: box.MaxLng},
		{Lat: box.MinLat, Lon: box.MaxLng},
	}, nil
}

func validateGeohash(h string) error {
	if len(h) < geohashMinPrecision || len(h) > geohashMaxPrecision {
		return fmt.Errorf("%w: geohash %q has invalid length %d", model.ErrUnknownCell, h, len(h))
	}
	for _, c := range h {
		if !strings.ContainsRune(geohashAlphabet, c) {
			return fmt.Errorf("%w: geohash %q contains invalid character %q", model.ErrUnknownCell, h, c)
		}
	}
	return nil
}
