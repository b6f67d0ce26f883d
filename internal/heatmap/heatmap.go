// Package heatmap turns a batch of geographic points into a colored density
// overlay: bin points into cells, rank cells by count, color cells by rank,
// hand the cell polygons to a canvas.
package heatmap

import (
	"image/color"

	"github.com/heatfall/heatfall/internal/core/model"
	"github.com/heatfall/heatfall/internal/density"
	"github.com/heatfall/heatfall/internal/palette"
	"github.com/heatfall/heatfall/internal/tess"
)

// DefaultAlpha keeps the base map visible through the overlay.
const DefaultAlpha = 0xa0

// Canvas receives the overlay geometry. The real implementation composites
// onto fetched map tiles (render/staticmap); tests use an in-memory
// recorder.
type Canvas interface {
	AddFilledPolygon(vertices []model.Point, fill color.NRGBA)
}

type options struct {
	paletteOpts []palette.Option
}

// Option adjusts overlay construction.
type Option func(*options)

// WithSeed seeds the Random color scheme; see palette.WithSeed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.paletteOpts = append(o.paletteOpts, palette.WithSeed(seed))
	}
}

// WithAlpha overrides DefaultAlpha for every cell fill.
func WithAlpha(a uint8) Option {
	return func(o *options) {
		o.paletteOpts = append(o.paletteOpts, palette.WithAlpha(a))
	}
}

// Overlay is a computed heatmap: the density grid plus one fill color per
// density rank. It is derived, immutable and cheap to re-create; nothing
// is retained between plotting calls.
type Overlay struct {
	Tess   tess.Tessellation
	Grid   *density.Grid
	Colors []color.NRGBA // indexed by density rank
}

// Build validates the batch, aggregates densities and assigns rank colors.
// Any failure aborts the whole build with the originating error.
func Build(t tess.Tessellation, lats, lons []float64, scheme palette.Scheme, opts ...Option) (*Overlay, error) {
	o := options{paletteOpts: []palette.Option{palette.WithAlpha(DefaultAlpha)}}
	for _, f := range opts {
		f(&o)
	}

	grid, err := density.Aggregate(lats, lons, t)
	if err != nil {
		return nil, err
	}

	return &Overlay{
		Tess:   t,
		Grid:   grid,
		Colors: scheme.Colors(len(grid.Levels), o.paletteOpts...),
	}, nil
}

// Draw resolves each occupied cell's boundary and submits it with its rank
// color, iterating cells in sorted order so runs are reproducible.
func (o *Overlay) Draw(canvas Canvas) error {
	for _, id := range o.Grid.Cells() {
		ring, err := o.Tess.Boundary(id)
		if err != nil {
			return err
		}
		rank := o.Grid.RankOf(o.Grid.Counts[id])
		canvas.AddFilledPolygon(ring, o.Colors[rank])
	}
	return nil
}

// Plot is Build followed by Draw: the single synchronous pass from point
// batch to overlay submissions.
func Plot(canvas Canvas, t tess.Tessellation, lats, lons []float64, scheme palette.Scheme, opts ...Option) error {
	o, err := Build(t, lats, lons, scheme, opts...)
	if err != nil {
		return err
	}
	return o.Draw(canvas)
}
