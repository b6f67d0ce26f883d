package staticmap

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/heatfall/heatfall/internal/core/observability"
	"github.com/heatfall/heatfall/internal/heatmap"
	"github.com/heatfall/heatfall/internal/render/tilecache"
)

// Service renders heatmap overlays to PNG. It owns the shared HTTP client
// and tile cache; each render gets its own Context, so concurrent renders
// are safe as long as they do not share a Context.
type Service struct {
	client    *http.Client
	cache     tilecache.Interface
	cacheTTL  time.Duration
	userAgent string
	log       zerolog.Logger
}

type ServiceOption func(*Service)

func WithServiceUserAgent(ua string) ServiceOption {
	return func(s *Service) { s.userAgent = ua }
}

func WithServiceHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) { s.client = c }
}

func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithServiceCacheTTL sets the TTL stored with cached tiles.
func WithServiceCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.cacheTTL = ttl }
}

func NewService(cache tilecache.Interface, opts ...ServiceOption) *Service {
	s := &Service{
		client:    NewHTTPClient(15 * time.Second),
		cache:     cache,
		cacheTTL:  24 * time.Hour,
		userAgent: DefaultUserAgent,
		log:       zerolog.Nop(),
	}
	if s.cache == nil {
		s.cache = tilecache.Nop{}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RenderPNG draws the overlay onto a fresh canvas backed by the named tile
// provider and returns the encoded image.
func (s *Service) RenderPNG(ctx context.Context, o *heatmap.Overlay, provider string, width, height int) ([]byte, error) {
	p, err := Provider(provider)
	if err != nil {
		return nil, err
	}
	fetcher := NewFetcher(p, s.cache,
		WithHTTPClient(s.client),
		WithUserAgent(s.userAgent),
		WithCacheTTL(s.cacheTTL),
	)
	canvas := NewContext(fetcher)
	if err := o.Draw(canvas); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := canvas.RenderPNG(ctx, width, height)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	observability.ObserveRender(o.Tess.Kind().String(), len(o.Grid.Counts), elapsed.Seconds())
	s.log.Debug().
		Str("provider", p.Name).
		Str("tessellation", o.Tess.Kind().String()).
		Int("cells", len(o.Grid.Counts)).
		Dur("elapsed", elapsed).
		Msg("heatmap rendered")
	return out, nil
}
