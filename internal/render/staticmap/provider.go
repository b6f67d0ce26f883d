// Package staticmap renders colored overlays on top of fetched slippy-map
// tiles and encodes the result as a raster image.
package staticmap

import (
	"fmt"
	"strings"
)

const tileSize = 256

// TileProvider describes one slippy-tile source.
type TileProvider struct {
	Name        string
	URLTemplate string // {z}/{x}/{y} placeholders
	Attribution string
	MaxZoom     int
}

// URL expands the template for one tile.
func (p TileProvider) URL(z, x, y int) string {
	r := strings.NewReplacer(
		"{z}", fmt.Sprintf("%d", z),
		"{x}", fmt.Sprintf("%d", x),
		"{y}", fmt.Sprintf("%d", y),
	)
	return r.Replace(p.URLTemplate)
}

var providers = map[string]TileProvider{
	"osm": {
		Name:        "osm",
		URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
		MaxZoom:     19,
	},
	"carto-light": {
		Name:        "carto-light",
		URLTemplate: "https://basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, © CARTO",
		MaxZoom:     20,
	},
	"carto-dark": {
		Name:        "carto-dark",
		URLTemplate: "https://basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, © CARTO",
		MaxZoom:     20,
	},
}

// Provider resolves a provider by name; the empty name means OSM.
func Provider(name string) (TileProvider, error) {
	if strings.TrimSpace(name) == "" {
		name = "osm"
	}
	p, ok := providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return TileProvider{}, fmt.Errorf("unknown tile provider %q", name)
	}
	return p, nil
}
