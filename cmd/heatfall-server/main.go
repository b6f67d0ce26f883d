package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/heatfall/heatfall/internal/core/config"
	"github.com/heatfall/heatfall/internal/core/observability"
	"github.com/heatfall/heatfall/internal/core/server"
	"github.com/heatfall/heatfall/internal/logger"
	"github.com/heatfall/heatfall/internal/render/staticmap"
	"github.com/heatfall/heatfall/internal/render/tilecache"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	addrFlag := flag.String("addr", "", "listen address (overrides ADDR)")
	flag.Parse()

	cfg := config.FromEnv()
	if *addrFlag != "" {
		cfg.Addr = strings.TrimSpace(*addrFlag)
	}

	log := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "heatfall-server",
	}, os.Stdout)
	observability.SetBuildInfo(Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, cleanup, err := buildTileCache(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("tile cache init failed")
		return 1
	}
	defer cleanup()

	svcOpts := []staticmap.ServiceOption{staticmap.WithLogger(log)}
	if cfg.TileUserAgent != "" {
		svcOpts = append(svcOpts, staticmap.WithServiceUserAgent(cfg.TileUserAgent))
	}
	svcOpts = append(svcOpts,
		staticmap.WithServiceHTTPClient(staticmap.NewHTTPClient(cfg.TileTimeout)),
		staticmap.WithServiceCacheTTL(cfg.TileCacheTTL),
	)
	renderer := staticmap.NewService(cache, svcOpts...)

	log.Info().Str("version", Version).Str("tile_cache", cfg.TileCache).Msg("starting")
	if err := server.Run(ctx, cfg, log, renderer); err != nil {
		log.Error().Err(err).Msg("server failed")
		return 1
	}
	return 0
}

func buildTileCache(ctx context.Context, cfg config.Config) (tilecache.Interface, func(), error) {
	switch cfg.TileCache {
	case "none":
		return tilecache.Nop{}, func() {}, nil
	case "redis":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := tilecache.NewRedis(dialCtx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return rc, func() { _ = rc.Close() }, nil
	default: // memory
		c, err := tilecache.NewLRU(cfg.TileCacheSize)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}
}
