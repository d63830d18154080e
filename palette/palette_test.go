package palette

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreEndpointsAreExact(t *testing.T) {
	e := New()
	assert.Equal(t, Base, e.ForScore(0))
	assert.Equal(t, Active, e.ForScore(1))
	// Out-of-range and NaN scores clamp rather than extrapolate.
	assert.Equal(t, Base, e.ForScore(-0.3))
	assert.Equal(t, Active, e.ForScore(1.7))
	assert.Equal(t, Base, e.ForScore(math.NaN()))
}

func TestMidpointHitsMidStop(t *testing.T) {
	e := New()
	got := e.ForScore(0.5)
	assert.InDelta(t, Mid.R, got.R, 1e-12)
	assert.InDelta(t, Mid.G, got.G, 1e-12)
	assert.InDelta(t, Mid.B, got.B, 1e-12)
}

func TestGradientIsMonotonicTowardActive(t *testing.T) {
	e := New()
	// Red rises monotonically across the whole default gradient.
	prev := e.ForScore(0).R
	for s := 0.05; s <= 1.0; s += 0.05 {
		r := e.ForScore(s).R
		assert.GreaterOrEqual(t, r, prev, "red channel regressed at score %v", s)
		prev = r
	}
}

func TestMapScoresPreservesOrder(t *testing.T) {
	e := New()
	scores := []float64{0, 0.25, 0.5, 0.75, 1}
	colors := e.MapScores(scores)
	assert.Len(t, colors, len(scores))
	assert.Equal(t, e.ForScore(0.25), colors[1])
	assert.Equal(t, e.ForScore(0.75), colors[3])
}

func TestBaseColorsAreUniform(t *testing.T) {
	e := New()
	colors := e.BaseColors(5)
	assert.Len(t, colors, 5)
	for _, c := range colors {
		assert.Equal(t, Base, c)
	}
}

func TestIdleColorsAreDistinct(t *testing.T) {
	e := New()
	colors := e.IdleColors(12)
	seen := map[string]bool{}
	for _, c := range colors {
		hex := c.Hex()
		assert.False(t, seen[hex], "duplicate idle color %s", hex)
		seen[hex] = true
	}
}

func TestIdleColorZeroTotalFallsBack(t *testing.T) {
	e := New()
	assert.Equal(t, Base, e.IdleColor(0, 0))
}

func TestHexFormatting(t *testing.T) {
	assert.Equal(t, "#000000", Color{}.Hex())
	assert.Equal(t, "#ffffff", Color{R: 1, G: 1, B: 1}.Hex())
	assert.Equal(t, "#ff0000", Color{R: 1.4, G: -0.2, B: 0}.Hex())
}
