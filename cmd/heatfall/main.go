// Command heatfall renders a density heatmap of geographic points onto a
// static base map.
//
// Input is a CSV of lat,lon rows or a GeoJSON file of Point/MultiPoint
// features; output is a PNG, or a GeoJSON FeatureCollection of colored
// cells with -geojson.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/heatfall/heatfall/internal/heatmap"
	"github.com/heatfall/heatfall/internal/logger"
	"github.com/heatfall/heatfall/internal/palette"
	"github.com/heatfall/heatfall/internal/render/staticmap"
	"github.com/heatfall/heatfall/internal/render/tilecache"
	"github.com/heatfall/heatfall/internal/tess"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		inFlag       = flag.String("in", "", "input file: CSV (lat,lon per row) or GeoJSON points")
		outFlag      = flag.String("out", "heatmap.png", "output file")
		tessFlag     = flag.String("tessellation", "geohash", "tessellation: geohash or h3")
		precFlag     = flag.Int("precision", 5, "cell precision (geohash 1-12, h3 0-15)")
		schemeFlag   = flag.String("scheme", "distinct", "color scheme: distinct, random or wheel")
		seedFlag     = flag.Int64("seed", 0, "seed for the random scheme (reproducible output)")
		alphaFlag    = flag.Int("alpha", heatmap.DefaultAlpha, "cell fill alpha 0-255")
		sizeFlag     = flag.String("size", "800x500", "output size WxH in pixels")
		providerFlag = flag.String("provider", "osm", "tile provider: osm, carto-light or carto-dark")
		geojsonFlag  = flag.Bool("geojson", false, "write the colored cells as GeoJSON instead of PNG")
		logLevel     = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	log := logger.Build(logger.Config{Level: *logLevel, Console: true, Component: "heatfall"}, os.Stderr)

	if *inFlag == "" {
		log.Error().Msg("-in is required")
		flag.Usage()
		return 2
	}

	lats, lons, err := readPoints(*inFlag)
	if err != nil {
		log.Error().Err(err).Str("file", *inFlag).Msg("read points")
		return 1
	}

	kind, err := tess.ParseKind(*tessFlag)
	if err != nil {
		log.Error().Err(err).Msg("bad tessellation")
		return 2
	}
	ts, err := tess.New(kind, *precFlag)
	if err != nil {
		log.Error().Err(err).Msg("bad precision")
		return 2
	}
	scheme, err := palette.ParseScheme(*schemeFlag)
	if err != nil {
		log.Error().Err(err).Msg("bad scheme")
		return 2
	}

	opts := []heatmap.Option{heatmap.WithAlpha(uint8(*alphaFlag))}
	if flagWasSet(flag.CommandLine, "seed") {
		opts = append(opts, heatmap.WithSeed(*seedFlag))
	}
	overlay, err := heatmap.Build(ts, lats, lons, scheme, opts...)
	if err != nil {
		log.Error().Err(err).Msg("build heatmap")
		return 1
	}

	if *geojsonFlag {
		fc, err := overlay.FeatureCollection()
		if err != nil {
			log.Error().Err(err).Msg("export geojson")
			return 1
		}
		raw, err := json.MarshalIndent(fc, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("encode geojson")
			return 1
		}
		if err := os.WriteFile(*outFlag, raw, 0o644); err != nil {
			log.Error().Err(err).Msg("write output")
			return 1
		}
		return 0
	}

	width, height, err := parseSize(*sizeFlag)
	if err != nil {
		log.Error().Err(err).Msg("bad size")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := tilecache.NewLRU(256)
	if err != nil {
		log.Error().Err(err).Msg("tile cache")
		return 1
	}
	svc := staticmap.NewService(cache, staticmap.WithLogger(log))
	raw, err := svc.RenderPNG(ctx, overlay, *providerFlag, width, height)
	if err != nil {
		log.Error().Err(err).Msg("render")
		return 1
	}
	if err := os.WriteFile(*outFlag, raw, 0o644); err != nil {
		log.Error().Err(err).Msg("write output")
		return 1
	}
	log.Info().Str("out", *outFlag).Int("cells", len(overlay.Grid.Counts)).Msg("done")
	return 0
}

// flagWasSet reports whether the flag was passed explicitly, so -seed 0
// is distinguishable from no -seed at all.
func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func readPoints(path string) (lats, lons []float64, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".geojson":
		return heatmap.PointsFromGeoJSON(raw)
	default:
		return pointsFromCSV(raw)
	}
}

func pointsFromCSV(raw []byte) (lats, lons []float64, err error) {
	r := csv.NewReader(strings.NewReader(string(raw)))
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	for i, row := range rows {
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("row %d: want lat,lon, got %d fields", i+1, len(row))
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, nil, fmt.Errorf("row %d: parse latitude: %w", i+1, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: parse longitude: %w", i+1, err)
		}
		lats = append(lats, lat)
		lons = append(lons, lon)
	}
	return lats, lons, nil
}

func parseSize(s string) (w, h int, err error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	w, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	h, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size %q: dimensions must be positive", s)
	}
	return w, h, nil
}
