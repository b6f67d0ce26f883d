package heatmap

import (
	"encoding/json"
	"errors"
	"image/color"
	"reflect"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/heatfall/heatfall/internal/core/model"
	"github.com/heatfall/heatfall/internal/palette"
	"github.com/heatfall/heatfall/internal/tess"
)

// recorder captures submitted polygons instead of producing pixels.
type recorder struct {
	polys []recordedPoly
}

type recordedPoly struct {
	verts []model.Point
	fill  color.NRGBA
}

func (r *recorder) AddFilledPolygon(vertices []model.Point, fill color.NRGBA) {
	r.polys = append(r.polys, recordedPoly{verts: vertices, fill: fill})
}

func newTess(t *testing.T, kind tess.Kind, precision int) tess.Tessellation {
	t.Helper()
	ts, err := tess.New(kind, precision)
	if err != nil {
		t.Fatalf("tess.New: %v", err)
	}
	return ts
}

func TestPlot_TwoCellsTwoColors(t *testing.T) {
	// Two points share one precision-4 geohash cell, the third falls one
	// longitude band east: two occupied cells with counts {2, 1}.
	lats := []float64{27.88, 27.88, 27.92}
	lons := []float64{-82.49, -82.49, -81.00}
	ts := newTess(t, tess.Rectangular, 4)

	rec := &recorder{}
	if err := Plot(rec, ts, lats, lons, palette.Distinct); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if len(rec.polys) != 2 {
		t.Fatalf("submitted %d polygons, want 2", len(rec.polys))
	}
	if rec.polys[0].fill == rec.polys[1].fill {
		t.Fatalf("both cells got the same color %v", rec.polys[0].fill)
	}
	for _, p := range rec.polys {
		if len(p.verts) != 4 {
			t.Fatalf("geohash cell polygon has %d vertices, want 4", len(p.verts))
		}
	}

	// The lower-density cell must carry the lower-rank color.
	o, err := Build(ts, lats, lons, palette.Distinct)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, id := range o.Grid.Cells() {
		want := o.Colors[o.Grid.RankOf(o.Grid.Counts[id])]
		if rec.polys[i].fill != want {
			t.Fatalf("cell %q fill %v, want rank color %v", id, rec.polys[i].fill, want)
		}
	}
	if low := o.Colors[0]; o.Grid.RankOf(1) != 0 || low != rec.fillOfCount(t, o, 1) {
		t.Fatalf("count 1 did not receive the rank-0 color")
	}
}

func (r *recorder) fillOfCount(t *testing.T, o *Overlay, count int) color.NRGBA {
	t.Helper()
	for i, id := range o.Grid.Cells() {
		if o.Grid.Counts[id] == count {
			return r.polys[i].fill
		}
	}
	t.Fatalf("no cell with count %d", count)
	return color.NRGBA{}
}

func TestPlot_EmptyInput(t *testing.T) {
	ts := newTess(t, tess.Hexagonal, 8)
	rec := &recorder{}
	err := Plot(rec, ts, nil, nil, palette.Wheel)
	if !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("Plot(empty) = %v, want ErrEmptyInput", err)
	}
	if len(rec.polys) != 0 {
		t.Fatalf("polygons submitted despite empty input")
	}
}

func TestPlot_MismatchedLengths(t *testing.T) {
	ts := newTess(t, tess.Rectangular, 4)
	rec := &recorder{}
	err := Plot(rec, ts, []float64{27.88, 27.92, 27.94}, []float64{-82.49, -82.49}, palette.Distinct)
	if !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("Plot(mismatch) = %v, want ErrEmptyInput", err)
	}
	if len(rec.polys) != 0 {
		t.Fatalf("polygons submitted despite mismatched input")
	}
}

func TestPlot_InvalidCoordinateAborts(t *testing.T) {
	ts := newTess(t, tess.Rectangular, 4)
	rec := &recorder{}
	err := Plot(rec, ts, []float64{27.88, 95}, []float64{-82.49, 0}, palette.Distinct)
	if !errors.Is(err, model.ErrInvalidCoordinate) {
		t.Fatalf("Plot = %v, want ErrInvalidCoordinate", err)
	}
	if len(rec.polys) != 0 {
		t.Fatalf("polygons submitted despite invalid input")
	}
}

func TestPlot_DeterministicAcrossRuns(t *testing.T) {
	lats := []float64{27.88, 27.92, 27.94, 27.88, 59.33}
	lons := []float64{-82.49, -82.49, -82.46, -82.49, 18.07}
	ts := newTess(t, tess.Hexagonal, 7)

	a, b := &recorder{}, &recorder{}
	if err := Plot(a, ts, lats, lons, palette.Distinct); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if err := Plot(b, ts, lats, lons, palette.Distinct); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if !reflect.DeepEqual(a.polys, b.polys) {
		t.Fatalf("two runs produced different overlays")
	}
}

func TestPlot_SeededRandomReproducible(t *testing.T) {
	lats := []float64{27.88, 27.92, 27.94}
	lons := []float64{-82.49, -82.49, -82.46}
	ts := newTess(t, tess.Hexagonal, 9)

	a, b := &recorder{}, &recorder{}
	if err := Plot(a, ts, lats, lons, palette.Random, WithSeed(7)); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if err := Plot(b, ts, lats, lons, palette.Random, WithSeed(7)); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if !reflect.DeepEqual(a.polys, b.polys) {
		t.Fatalf("seeded random runs differ")
	}
}

func TestBuild_AlphaDefaultAndOverride(t *testing.T) {
	lats := []float64{27.88}
	lons := []float64{-82.49}
	ts := newTess(t, tess.Rectangular, 4)

	o, err := Build(ts, lats, lons, palette.Wheel)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if o.Colors[0].A != DefaultAlpha {
		t.Fatalf("default alpha = %#x, want %#x", o.Colors[0].A, DefaultAlpha)
	}

	o, err = Build(ts, lats, lons, palette.Wheel, WithAlpha(0xff))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if o.Colors[0].A != 0xff {
		t.Fatalf("override alpha = %#x, want 0xff", o.Colors[0].A)
	}
}

func TestFeatureCollection(t *testing.T) {
	lats := []float64{27.88, 27.88, 27.92}
	lons := []float64{-82.49, -82.49, -81.00}
	ts := newTess(t, tess.Rectangular, 4)

	o, err := Build(ts, lats, lons, palette.Distinct)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fc, err := o.FeatureCollection()
	if err != nil {
		t.Fatalf("FeatureCollection: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("got %d features, want 2", len(fc.Features))
	}
	for _, f := range fc.Features {
		if !f.Geometry.IsPolygon() {
			t.Fatalf("feature geometry is %v, want polygon", f.Geometry.Type)
		}
		ring := f.Geometry.Polygon[0]
		if len(ring) != 5 {
			t.Fatalf("ring has %d coords, want 5 (closed quad)", len(ring))
		}
		if !reflect.DeepEqual(ring[0], ring[len(ring)-1]) {
			t.Fatalf("ring not closed: %v vs %v", ring[0], ring[len(ring)-1])
		}
		for _, key := range []string{"cell", "count", "rank", "fill", "fill-opacity"} {
			if _, ok := f.Properties[key]; !ok {
				t.Fatalf("feature missing property %q", key)
			}
		}
	}

	if _, err := json.Marshal(fc); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestPointsFromGeoJSON(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.AddFeature(geojson.NewPointFeature([]float64{-82.49, 27.88}))
	fc.AddFeature(geojson.NewMultiPointFeature([]float64{-82.49, 27.92}, []float64{-82.46, 27.94}))
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	lats, lons, err := PointsFromGeoJSON(data)
	if err != nil {
		t.Fatalf("PointsFromGeoJSON: %v", err)
	}
	if !reflect.DeepEqual(lats, []float64{27.88, 27.92, 27.94}) {
		t.Fatalf("lats = %v", lats)
	}
	if !reflect.DeepEqual(lons, []float64{-82.49, -82.49, -82.46}) {
		t.Fatalf("lons = %v", lons)
	}

	if _, _, err := PointsFromGeoJSON([]byte(`{"bogus"`)); err == nil {
		t.Fatalf("expected error for malformed geojson")
	}
}
