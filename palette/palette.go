// Package palette maps similarity scores to point colors. With no active
// query every point gets an index-derived rainbow hue; with an active query
// each point's score drives a two-stage gradient from a neutral base through
// a mid tone to the active highlight.
package palette

import (
	"fmt"
	"math"
)

// Color is an RGB triple with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Hex renders the color as a #rrggbb string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// Default gradient stops. Base is a muted slate, Mid a warming amber,
// Active the full highlight.
var (
	Base   = Color{R: 0.35, G: 0.38, B: 0.48}
	Mid    = Color{R: 0.85, G: 0.62, B: 0.25}
	Active = Color{R: 1.0, G: 0.32, B: 0.2}
)

const (
	idleSaturation = 0.65
	idleLightness  = 0.60
)

// Engine holds the gradient stops. The zero value is unusable; use New.
type Engine struct {
	base, mid, active Color
}

// New returns an Engine with the default stops.
func New() *Engine {
	return &Engine{base: Base, mid: Mid, active: Active}
}

// NewWithStops returns an Engine with custom gradient stops.
func NewWithStops(base, mid, active Color) *Engine {
	return &Engine{base: base, mid: mid, active: active}
}

// ForScore maps a similarity score to a color. Scores at or below zero yield
// exactly the base stop and a score of one yields exactly the active stop.
// The first half of the range blends base to mid, the second half mid to
// active.
func (e *Engine) ForScore(score float64) Color {
	s := score
	if s <= 0 || math.IsNaN(s) {
		return e.base
	}
	if s >= 1 {
		return e.active
	}
	if s <= 0.5 {
		return lerp(e.base, e.mid, s*2)
	}
	return lerp(e.mid, e.active, (s-0.5)*2)
}

// MapScores applies ForScore to every score, preserving order.
func (e *Engine) MapScores(scores []float64) []Color {
	out := make([]Color, len(scores))
	for i, s := range scores {
		out[i] = e.ForScore(s)
	}
	return out
}

// BaseColors returns n copies of the neutral base stop, the shared color of
// every point while no query is active.
func (e *Engine) BaseColors(n int) []Color {
	out := make([]Color, n)
	for i := range out {
		out[i] = e.base
	}
	return out
}

// IdleColor returns the rainbow color for point index out of total. The hue
// walks the full wheel so neighboring indices stay visually distinct.
func (e *Engine) IdleColor(index, total int) Color {
	if total <= 0 {
		return e.base
	}
	hue := math.Mod(float64(index)/float64(total), 1)
	if hue < 0 {
		hue += 1
	}
	return hsl(hue, idleSaturation, idleLightness)
}

// IdleColors returns the full idle rainbow for n points.
func (e *Engine) IdleColors(n int) []Color {
	out := make([]Color, n)
	for i := range out {
		out[i] = e.IdleColor(i, n)
	}
	return out
}

// lerp interpolates in the a*(1-t) + b*t form so t=1 reproduces b exactly.
func lerp(a, b Color, t float64) Color {
	return Color{
		R: a.R*(1-t) + b.R*t,
		G: a.G*(1-t) + b.G*t,
		B: a.B*(1-t) + b.B*t,
	}
}

func hsl(h, s, l float64) Color {
	if s == 0 {
		return Color{R: l, G: l, B: l}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return Color{
		R: hueToChannel(p, q, h+1.0/3),
		G: hueToChannel(p, q, h),
		B: hueToChannel(p, q, h-1.0/3),
	}
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
