package staticmap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net"
	"net/http"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/heatfall/heatfall/internal/core/observability"
	"github.com/heatfall/heatfall/internal/render/tilecache"
)

const DefaultUserAgent = "heatfall/1.0 (+https://github.com/heatfall/heatfall)"

// TileSource yields decoded tile images. Fetcher is the real
// implementation; tests substitute a stub.
type TileSource interface {
	Provider() TileProvider
	Tile(ctx context.Context, z, x, y int) (image.Image, error)
}

// Fetcher downloads tiles over HTTP with a shared tuned client and a
// pluggable byte cache in front of the network.
type Fetcher struct {
	provider  TileProvider
	client    *http.Client
	cache     tilecache.Interface
	userAgent string
	cacheTTL  time.Duration
}

type FetcherOption func(*Fetcher)

func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) { f.userAgent = ua }
}

func WithCacheTTL(ttl time.Duration) FetcherOption {
	return func(f *Fetcher) { f.cacheTTL = ttl }
}

// NewHTTPClient returns the tuned client used for tile traffic.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

func NewFetcher(provider TileProvider, cache tilecache.Interface, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		provider:  provider,
		client:    NewHTTPClient(15 * time.Second),
		cache:     cache,
		userAgent: DefaultUserAgent,
		cacheTTL:  24 * time.Hour,
	}
	if f.cache == nil {
		f.cache = tilecache.Nop{}
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Fetcher) Provider() TileProvider { return f.provider }

// Tile returns the decoded tile, consulting the cache first.
func (f *Fetcher) Tile(ctx context.Context, z, x, y int) (image.Image, error) {
	key := tilecache.Key(f.provider.Name, z, x, y)
	if raw, ok, err := f.cache.Get(ctx, key); err == nil && ok {
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err == nil {
			return img, nil
		}
		// corrupt cache entry: fall through to the network
	}

	raw, err := f.fetch(ctx, z, x, y)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode tile %d/%d/%d: %w", z, x, y, err)
	}
	_ = f.cache.Set(ctx, key, raw, f.cacheTTL)
	return img, nil
}

func (f *Fetcher) fetch(ctx context.Context, z, x, y int) ([]byte, error) {
	url := f.provider.URL(z, x, y)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	observability.ObserveTileFetch(f.provider.Name, err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tile %s: %s", url, resp.Status)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read tile %s: %w", url, err)
	}
	return raw, nil
}
