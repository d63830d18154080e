package camera

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viant/neuromap/geom"
)

func newDesktopController() *Controller {
	return NewController(geom.DefaultContainer(), geom.DesktopProfile())
}

func settle(c *Controller, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		c.Tick(1.0 / 60)
		if c.Mode() != ModeTransitioning {
			return i + 1
		}
	}
	return maxTicks
}

func TestStartsIdleRotating(t *testing.T) {
	c := newDesktopController()
	assert.Equal(t, ModeIdleRotate, c.Mode())
	assert.True(t, c.ManualControlEnabled())
}

func TestIdleRotateOrbitsAtConstantDistance(t *testing.T) {
	c := newDesktopController()
	center := geom.DefaultContainer().Center
	want := r3.Norm(r3.Sub(c.DefaultPose().Position, center))
	for i := 0; i < 200; i++ {
		c.Tick(1.0 / 60)
		got := r3.Norm(r3.Sub(c.Pose().Position, center))
		require.InDelta(t, want, got, 1e-9, "orbit radius drifted at tick %d", i)
	}
	assert.Equal(t, ModeIdleRotate, c.Mode())
}

func TestPointsLeaveIdleRotate(t *testing.T) {
	c := newDesktopController()
	c.SetPointCount(12)
	assert.Equal(t, ModeDefault, c.Mode())
	assert.Equal(t, c.DefaultPose(), c.Pose())

	c.SetPointCount(0)
	assert.Equal(t, ModeIdleRotate, c.Mode())
}

func TestFocusTransitionSettlesWithinBounds(t *testing.T) {
	c := newDesktopController()
	c.SetPointCount(5)

	focus := r3.Vec{X: 2, Y: -1, Z: 0.5}
	c.FocusOn(focus, 0.8, 10)
	assert.Equal(t, ModeTransitioning, c.Mode())
	assert.False(t, c.ManualControlEnabled())

	ticks := settle(c, 500)
	require.Equal(t, ModeFocused, c.Mode(), "transition did not settle in %d ticks", ticks)
	assert.True(t, c.ManualControlEnabled())

	// Snap must be exact, not within epsilon.
	assert.Equal(t, focus, c.Pose().Target)

	dist := r3.Norm(r3.Sub(c.Pose().Position, focus))
	assert.GreaterOrEqual(t, dist, NearBound-1e-9)
	assert.LessOrEqual(t, dist, FarBound+1e-9)
}

func TestHigherScoreFocusesCloser(t *testing.T) {
	focus := r3.Vec{X: 1, Y: 1, Z: 1}

	distanceFor := func(score float64) float64 {
		c := newDesktopController()
		c.SetPointCount(5)
		c.FocusOn(focus, score, 10)
		settle(c, 500)
		return r3.Norm(r3.Sub(c.Pose().Position, focus))
	}

	weak := distanceFor(0.1)
	strong := distanceFor(0.95)
	assert.Less(t, strong, weak)

	assert.InDelta(t, FarBound, distanceFor(0), 1e-9)
	assert.InDelta(t, NearBound, distanceFor(1), 1e-9)
}

func TestTransitionCoversFixedFractionPerTick(t *testing.T) {
	c := newDesktopController()
	c.SetPointCount(5)
	focus := r3.Vec{X: 3, Y: 0, Z: -2}
	c.FocusOn(focus, 0.5, 10)

	before := c.Pose().Position
	c.Tick(1.0 / 60)
	after := c.Pose().Position

	targetPos := c.target.Position
	remBefore := r3.Norm(r3.Sub(targetPos, before))
	remAfter := r3.Norm(r3.Sub(targetPos, after))
	assert.InDelta(t, remBefore*(1-lerpFraction), remAfter, 1e-9)
}

func TestClearFocusSnapsToDefaultPose(t *testing.T) {
	c := newDesktopController()
	c.SetPointCount(5)
	c.FocusOn(r3.Vec{X: 2, Y: 2, Z: 2}, 0.7, 10)
	for i := 0; i < 10; i++ {
		c.Tick(1.0 / 60)
	}
	require.Equal(t, ModeTransitioning, c.Mode())

	c.ClearFocus()
	assert.Equal(t, ModeDefault, c.Mode())
	assert.Equal(t, c.DefaultPose(), c.Pose())
	assert.True(t, c.ManualControlEnabled())
}

func TestSmallViewportLongLabelBacksOff(t *testing.T) {
	focus := r3.Vec{}
	long := len(strings.Repeat("x", longLabelChars))

	desktop := NewController(geom.DefaultContainer(), geom.DesktopProfile())
	desktop.SetPointCount(3)
	desktop.FocusOn(focus, 0.5, long)
	settle(desktop, 500)
	desktopDist := r3.Norm(r3.Sub(desktop.Pose().Position, focus))

	mobile := NewController(geom.DefaultContainer(), geom.MobileProfile())
	mobile.SetPointCount(3)
	mobile.FocusOn(focus, 0.5, long)
	settle(mobile, 500)
	mobileDist := r3.Norm(r3.Sub(mobile.Pose().Position, focus))

	assert.Greater(t, mobileDist, desktopDist)

	mobileShort := NewController(geom.DefaultContainer(), geom.MobileProfile())
	mobileShort.SetPointCount(3)
	mobileShort.FocusOn(focus, 0.5, 5)
	settle(mobileShort, 500)
	shortDist := r3.Norm(r3.Sub(mobileShort.Pose().Position, focus))
	assert.Greater(t, mobileDist, shortDist, "long label must back off further than short on small viewports")
}

func TestManualControlMatrix(t *testing.T) {
	c := newDesktopController()
	require.Equal(t, ModeIdleRotate, c.Mode())
	assert.True(t, c.ManualControlEnabled())

	c.SetPointCount(4)
	require.Equal(t, ModeDefault, c.Mode())
	assert.True(t, c.ManualControlEnabled())

	c.FocusOn(r3.Vec{X: 1}, 0.5, 3)
	require.Equal(t, ModeTransitioning, c.Mode())
	assert.False(t, c.ManualControlEnabled())

	settle(c, 500)
	require.Equal(t, ModeFocused, c.Mode())
	assert.True(t, c.ManualControlEnabled())
}

func TestFocusFromCoincidentCameraUsesDefaultDirection(t *testing.T) {
	c := newDesktopController()
	c.SetPointCount(2)
	// Focus on the camera's own position: the view direction is degenerate
	// and must fall back to the default orientation instead of producing NaN.
	c.FocusOn(c.Pose().Position, 0.5, 3)
	settle(c, 500)
	p := c.Pose().Position
	assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z))
}
