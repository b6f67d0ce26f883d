// Package palette maps density ranks to colors under the three supported
// color schemes.
package palette

import (
	"fmt"
	"image/color"
	"math/rand"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/heatfall/heatfall/internal/core/model"
)

// Scheme is a color-assignment policy. The name string coming in from the
// API is resolved here, once, into a closed variant.
type Scheme int

const (
	// Distinct picks high-contrast colors from a curated palette,
	// respacing evenly around the hue circle when ranks outnumber it.
	Distinct Scheme = iota
	// Random draws colors from a pseudo-random generator. Seeded calls
	// are reproducible; unseeded calls may differ between runs.
	Random
	// Wheel maps rank i of n to hue (i/n)*360 starting at red, a smooth
	// low-to-high density gradient.
	Wheel
)

func (s Scheme) String() string {
	switch s {
	case Distinct:
		return "distinct"
	case Random:
		return "random"
	case Wheel:
		return "wheel"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

// ParseScheme resolves a scheme name, failing with ErrInvalidScheme for
// anything but "distinct", "random" or "wheel".
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "distinct":
		return Distinct, nil
	case "random":
		return Random, nil
	case "wheel":
		return Wheel, nil
	default:
		return 0, fmt.Errorf("%w: %q (want distinct, random or wheel)", model.ErrInvalidScheme, name)
	}
}

type options struct {
	seed   int64
	seeded bool
	alpha  uint8
}

// Option adjusts color generation.
type Option func(*options)

// WithSeed makes the Random scheme a pure function of (seed, n). The other
// schemes are deterministic regardless.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithAlpha applies a uniform alpha to every generated color.
func WithAlpha(a uint8) Option {
	return func(o *options) { o.alpha = a }
}

// Curated high-contrast fill colors, low rank first.
var distinctBase = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231", "#911eb4",
	"#42d4f4", "#f032e6", "#bfef45", "#fabed4", "#469990", "#9a6324",
}

// Colors returns one color per density rank, low rank first.
func (s Scheme) Colors(n int, opts ...Option) []color.NRGBA {
	if n <= 0 {
		return nil
	}
	o := options{alpha: 0xff}
	for _, f := range opts {
		f(&o)
	}

	out := make([]color.NRGBA, 0, n)
	switch s {
	case Wheel:
		for i := 0; i < n; i++ {
			hue := float64(i) / float64(n) * 360
			out = append(out, toNRGBA(colorful.Hsv(hue, 0.9, 0.9), o.alpha))
		}
	case Random:
		rng := randSource(o)
		for i := 0; i < n; i++ {
			c := colorful.Hsv(rng.Float64()*360, 0.5+0.5*rng.Float64(), 0.6+0.4*rng.Float64())
			out = append(out, toNRGBA(c, o.alpha))
		}
	default: // Distinct
		for i := 0; i < n; i++ {
			out = append(out, toNRGBA(distinctColor(i, n), o.alpha))
		}
	}
	return out
}

// distinctColor returns the i-th of n maximally separated colors: the
// curated palette while it lasts, then one hue per rank spaced evenly
// around the wheel, alternating the value band so neighboring hues stay
// tellable apart. Every rank gets its own hue, so no two ranks repeat.
func distinctColor(i, n int) colorful.Color {
	if n <= len(distinctBase) {
		c, _ := colorful.Hex(distinctBase[i])
		return c
	}
	hue := float64(i) / float64(n) * 360
	v := 0.95 - 0.25*float64(i%2)
	return colorful.Hsv(hue, 0.85, v)
}

func randSource(o options) *rand.Rand {
	if o.seeded {
		return rand.New(rand.NewSource(o.seed))
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

func toNRGBA(c colorful.Color, alpha uint8) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

// Hex formats a color as #rrggbb, the form used in GeoJSON fill properties.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
