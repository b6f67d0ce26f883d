// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr     string
	LogLevel string

	TileProvider  string
	TileUserAgent string
	TileTimeout   time.Duration

	// TileCache selects the cache backend: memory, redis or none.
	TileCache     string
	TileCacheSize int
	TileCacheTTL  time.Duration
	RedisAddr     string

	DefaultWidth  int
	DefaultHeight int
	// MaxPixels caps width*height per render request.
	MaxPixels int
}

func FromEnv() Config {
	return Config{
		Addr:     getenv("ADDR", ":8090"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		TileProvider:  getenv("TILE_PROVIDER", "osm"),
		TileUserAgent: getenv("TILE_USER_AGENT", ""),
		TileTimeout:   getduration("TILE_TIMEOUT", 15*time.Second),

		TileCache:     strings.ToLower(getenv("TILE_CACHE", "memory")),
		TileCacheSize: getint("TILE_CACHE_SIZE", 512),
		TileCacheTTL:  getduration("TILE_CACHE_TTL", 24*time.Hour),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),

		DefaultWidth:  getint("DEFAULT_WIDTH", 800),
		DefaultHeight: getint("DEFAULT_HEIGHT", 500),
		MaxPixels:     getint("RENDER_MAX_PIXELS", 4096*4096),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
