package staticmap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/fogleman/gg"

	"github.com/heatfall/heatfall/internal/core/model"
)

// Context collects colored geometry and composites it over base-map tiles.
// One Context serves one render; it is not safe for concurrent use.
type Context struct {
	source TileSource

	polygons []filledPolygon
	markers  []marker

	// padding in pixels kept between the geometry and the image edge
	// when choosing the zoom level
	padding int
	minZoom int
	maxZoom int
}

type filledPolygon struct {
	verts []model.Point
	fill  color.NRGBA
}

type marker struct {
	at     model.Point
	fill   color.NRGBA
	radius float64
}

type ContextOption func(*Context)

func WithPadding(px int) ContextOption {
	return func(c *Context) { c.padding = px }
}

func WithZoomRange(minZoom, maxZoom int) ContextOption {
	return func(c *Context) {
		c.minZoom = minZoom
		c.maxZoom = maxZoom
	}
}

func NewContext(source TileSource, opts ...ContextOption) *Context {
	c := &Context{
		source:  source,
		padding: 32,
		minZoom: 1,
		maxZoom: source.Provider().MaxZoom,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// AddFilledPolygon queues a closed polygon; the heatmap overlay submits
// cell boundaries through this.
func (c *Context) AddFilledPolygon(vertices []model.Point, fill color.NRGBA) {
	if len(vertices) < 3 {
		return
	}
	verts := make([]model.Point, len(vertices))
	copy(verts, vertices)
	c.polygons = append(c.polygons, filledPolygon{verts: verts, fill: fill})
}

// AddMarker queues a filled circle at a point.
func (c *Context) AddMarker(at model.Point, fill color.NRGBA, radius float64) {
	if radius <= 0 {
		radius = 5
	}
	c.markers = append(c.markers, marker{at: at, fill: fill, radius: radius})
}

func (c *Context) bounds() (model.BBox, error) {
	b := model.NewBBox()
	for _, p := range c.polygons {
		for _, v := range p.verts {
			b = b.Extend(v)
		}
	}
	for _, m := range c.markers {
		b = b.Extend(m.at)
	}
	if b.Empty() {
		return b, errors.New("nothing to render: no geometry added")
	}
	return b, nil
}

// fitZoom picks the deepest zoom whose projected geometry span fits the
// viewport minus padding.
func (c *Context) fitZoom(b model.BBox, width, height int) int {
	maxW := float64(width - 2*c.padding)
	maxH := float64(height - 2*c.padding)
	if maxW < 1 {
		maxW = float64(width)
	}
	if maxH < 1 {
		maxH = float64(height)
	}
	for z := c.maxZoom; z > c.minZoom; z-- {
		w := lonToX(b.MaxLon, z) - lonToX(b.MinLon, z)
		h := latToY(b.MinLat, z) - latToY(b.MaxLat, z)
		if w <= maxW && h <= maxH {
			return z
		}
	}
	return c.minZoom
}

// Render composites tiles and geometry into a width x height image.
func (c *Context) Render(ctx context.Context, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	b, err := c.bounds()
	if err != nil {
		return nil, err
	}
	zoom := c.fitZoom(b, width, height)

	// viewport origin in world pixels, centered on the geometry
	centerX := (lonToX(b.MinLon, zoom) + lonToX(b.MaxLon, zoom)) / 2
	centerY := (latToY(b.MinLat, zoom) + latToY(b.MaxLat, zoom)) / 2
	originX := centerX - float64(width)/2
	originY := centerY - float64(height)/2

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := c.drawTiles(ctx, dst, zoom, originX, originY); err != nil {
		return nil, err
	}

	dc := gg.NewContextForRGBA(dst)
	for _, p := range c.polygons {
		dc.NewSubPath()
		for i, v := range p.verts {
			x := lonToX(v.Lon, zoom) - originX
			y := latToY(v.Lat, zoom) - originY
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.SetColor(p.fill)
		dc.FillPreserve()
		dc.SetLineWidth(1)
		dc.Stroke()
	}
	for _, m := range c.markers {
		dc.NewSubPath()
		dc.DrawCircle(lonToX(m.at.Lon, zoom)-originX, latToY(m.at.Lat, zoom)-originY, m.radius)
		dc.ClosePath()
		dc.SetColor(m.fill)
		dc.Fill()
	}
	return dst, nil
}

func (c *Context) drawTiles(ctx context.Context, dst *image.RGBA, zoom int, originX, originY float64) error {
	width := dst.Bounds().Dx()
	height := dst.Bounds().Dy()
	tiles := int(math.Exp2(float64(zoom)))

	tx0 := int(math.Floor(originX / tileSize))
	ty0 := int(math.Floor(originY / tileSize))
	tx1 := int(math.Floor((originX + float64(width)) / tileSize))
	ty1 := int(math.Floor((originY + float64(height)) / tileSize))

	for ty := ty0; ty <= ty1; ty++ {
		if ty < 0 || ty >= tiles {
			continue // above/below the mercator square stays blank
		}
		for tx := tx0; tx <= tx1; tx++ {
			// wrap longitude so viewports straddling the antimeridian work
			wx := ((tx % tiles) + tiles) % tiles
			img, err := c.source.Tile(ctx, zoom, wx, ty)
			if err != nil {
				return fmt.Errorf("tile %d/%d/%d: %w", zoom, wx, ty, err)
			}
			// floor, not truncate: negative origins must round the same
			// way as the tile index range above
			offX := tx*tileSize - int(math.Floor(originX))
			offY := ty*tileSize - int(math.Floor(originY))
			r := image.Rect(offX, offY, offX+tileSize, offY+tileSize)
			draw.Draw(dst, r, img, image.Point{}, draw.Src)
		}
	}
	return nil
}

// RenderPNG renders and encodes in one step.
func (c *Context) RenderPNG(ctx context.Context, width, height int) ([]byte, error) {
	img, err := c.Render(ctx, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
