package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/heatfall/heatfall/internal/core/config"
	"github.com/heatfall/heatfall/internal/heatmap"
	"github.com/heatfall/heatfall/internal/logger"
	"github.com/heatfall/heatfall/internal/palette"
	"github.com/heatfall/heatfall/internal/tess"
)

// Renderer produces the final raster; implemented by staticmap.Service.
type Renderer interface {
	RenderPNG(ctx context.Context, o *heatmap.Overlay, provider string, width, height int) ([]byte, error)
}

type heatmapRequest struct {
	Lats         []float64 `json:"lats"`
	Lons         []float64 `json:"lons"`
	Tessellation string    `json:"tessellation"`
	Precision    int       `json:"precision"`
	Scheme       string    `json:"scheme"`
	Seed         *int64    `json:"seed,omitempty"`
	Alpha        *uint8    `json:"alpha,omitempty"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	Provider     string    `json:"provider,omitempty"`
}

// buildOverlay turns a request body into a computed overlay, with all
// input validation happening before any work.
func buildOverlay(req heatmapRequest) (*heatmap.Overlay, error) {
	kindName := req.Tessellation
	if kindName == "" {
		kindName = "geohash"
	}
	kind, err := tess.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	ts, err := tess.New(kind, req.Precision)
	if err != nil {
		return nil, err
	}
	schemeName := req.Scheme
	if schemeName == "" {
		schemeName = "distinct"
	}
	scheme, err := palette.ParseScheme(schemeName)
	if err != nil {
		return nil, err
	}

	var opts []heatmap.Option
	if req.Seed != nil {
		opts = append(opts, heatmap.WithSeed(*req.Seed))
	}
	if req.Alpha != nil {
		opts = append(opts, heatmap.WithAlpha(*req.Alpha))
	}
	return heatmap.Build(ts, req.Lats, req.Lons, scheme, opts...)
}

// HandleHeatmap renders a heatmap per request: PNG by default, GeoJSON
// when the client asks for application/geo+json.
func HandleHeatmap(log zerolog.Logger, cfg config.Config, renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req heatmapRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("parse request: %v", err), http.StatusBadRequest)
			return
		}

		// buildOverlay only fails on request data: bad names, bad
		// precision, bad coordinates, empty batch.
		overlay, err := buildOverlay(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if wantsGeoJSON(r) {
			fc, err := overlay.FeatureCollection()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/geo+json")
			_ = json.NewEncoder(w).Encode(fc)
			return
		}

		width, height := req.Width, req.Height
		if width <= 0 {
			width = cfg.DefaultWidth
		}
		if height <= 0 {
			height = cfg.DefaultHeight
		}
		if cfg.MaxPixels > 0 && width*height > cfg.MaxPixels {
			http.Error(w, fmt.Sprintf("requested %dx%d exceeds the size limit", width, height), http.StatusBadRequest)
			return
		}

		provider := req.Provider
		if provider == "" {
			provider = cfg.TileProvider
		}

		body, err := renderer.RenderPNG(r.Context(), overlay, provider, width, height)
		if err != nil {
			logger.FromContext(r.Context(), &log).Error().Err(err).Msg("render failed")
			if strings.Contains(err.Error(), "unknown tile provider") {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "render failed", http.StatusBadGateway)
			return
		}

		etag := fmt.Sprintf("%q", fmt.Sprintf("%016x", xxhash.Sum64(body)))
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("ETag", etag)
		_, _ = w.Write(body)
	}
}

func wantsGeoJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/geo+json")
}
