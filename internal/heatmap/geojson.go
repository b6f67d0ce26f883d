package heatmap

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"github.com/heatfall/heatfall/internal/palette"
)

// FeatureCollection exports the overlay as GeoJSON: one closed polygon
// feature per occupied cell, carrying cell id, count, rank and fill.
func (o *Overlay) FeatureCollection() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, id := range o.Grid.Cells() {
		ring, err := o.Tess.Boundary(id)
		if err != nil {
			return nil, err
		}
		coords := make([][]float64, 0, len(ring)+1)
		for _, p := range ring {
			coords = append(coords, []float64{p.Lon, p.Lat})
		}
		coords = append(coords, coords[0])

		count := o.Grid.Counts[id]
		rank := o.Grid.RankOf(count)
		fill := o.Colors[rank]

		f := geojson.NewPolygonFeature([][][]float64{coords})
		f.SetProperty("cell", string(id))
		f.SetProperty("count", count)
		f.SetProperty("rank", rank)
		f.SetProperty("fill", palette.Hex(fill))
		f.SetProperty("fill-opacity", float64(fill.A)/255)
		fc.AddFeature(f)
	}
	return fc, nil
}

// PointsFromGeoJSON extracts point coordinates from a GeoJSON document: a
// FeatureCollection, a single Feature, or a bare geometry, with Point and
// MultiPoint geometries contributing coordinates.
func PointsFromGeoJSON(data []byte) (lats, lons []float64, err error) {
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && len(fc.Features) > 0 {
		for _, f := range fc.Features {
			lats, lons = appendGeometry(lats, lons, f.Geometry)
		}
		return lats, lons, nil
	}
	if f, err := geojson.UnmarshalFeature(data); err == nil && f.Geometry != nil {
		lats, lons = appendGeometry(lats, lons, f.Geometry)
		return lats, lons, nil
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse geojson: %w", err)
	}
	lats, lons = appendGeometry(lats, lons, g)
	return lats, lons, nil
}

func appendGeometry(lats, lons []float64, g *geojson.Geometry) ([]float64, []float64) {
	if g == nil {
		return lats, lons
	}
	switch {
	case g.IsPoint():
		if len(g.Point) >= 2 {
			lons = append(lons, g.Point[0])
			lats = append(lats, g.Point[1])
		}
	case g.IsMultiPoint():
		for _, c := range g.MultiPoint {
			if len(c) >= 2 {
				lons = append(lons, c[0])
				lats = append(lats, c[1])
			}
		}
	}
	return lats, lons
}
