// Package camera implements the focus state machine: a default overview pose
// derived from the container, an idle rotation while no points exist, and
// smooth exponential-ease transitions onto matched points. Manual camera
// control is enabled in every mode except Transitioning.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viant/neuromap/geom"
)

// Mode enumerates the focus states.
type Mode int

const (
	// ModeDefault follows the precomputed overview pose.
	ModeDefault Mode = iota
	// ModeIdleRotate slowly orbits the container while no points exist.
	ModeIdleRotate
	// ModeTransitioning interpolates toward a focus target; manual control
	// is disabled for the duration.
	ModeTransitioning
	// ModeFocused has reached its target; manual control is re-enabled.
	ModeFocused
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeIdleRotate:
		return "idle-rotate"
	case ModeTransitioning:
		return "transitioning"
	case ModeFocused:
		return "focused"
	}
	return "unknown"
}

// Pose is a camera position plus look target.
type Pose struct {
	Position r3.Vec
	Target   r3.Vec
}

const (
	// NearBound and FarBound clamp the focus distance mapped from the
	// similarity score.
	NearBound = 6.0
	FarBound  = 20.0

	// lerpFraction is the share of remaining distance covered per tick
	// (exponential ease, not linear time).
	lerpFraction = 0.08
	// arriveEpsilon is the remaining distance below which the camera snaps
	// exactly onto the target.
	arriveEpsilon = 0.01

	// frameDistance scales the container's largest semi-axis into an
	// overview distance that fills the frame.
	frameDistance = 2.6
	// idleRotateRate is the idle orbit speed in radians per second.
	idleRotateRate = 0.15

	// longLabelChars marks matched texts long enough to need readability
	// compensation on small viewports.
	longLabelChars = 64
	// longLabelBoost pulls the camera further back in that case.
	longLabelBoost = 1.25
)

// Controller owns the session's single FocusState. It is not safe for
// concurrent use; the session serializes access.
type Controller struct {
	container   geom.Container
	device      geom.DeviceProfile
	defaultPose Pose

	mode      Mode
	pose      Pose
	target    Pose
	idleAngle float64
}

// NewController computes the default overview pose from the container and
// device profile and starts in IdleRotate (no points yet).
func NewController(container geom.Container, device geom.DeviceProfile) *Controller {
	if device.DistanceScale <= 0 {
		device = geom.DesktopProfile()
	}
	dist := container.MaxHalfExtent() * frameDistance * device.DistanceScale
	dir := r3.Unit(r3.Vec{X: 0, Y: 0.35, Z: 1})
	pose := Pose{
		Position: r3.Add(container.Center, r3.Scale(dist, dir)),
		Target:   container.Center,
	}
	return &Controller{
		container:   container,
		device:      device,
		defaultPose: pose,
		mode:        ModeIdleRotate,
		pose:        pose,
	}
}

// Mode returns the current focus mode.
func (c *Controller) Mode() Mode { return c.mode }

// Pose returns the current camera pose.
func (c *Controller) Pose() Pose { return c.pose }

// DefaultPose returns the stored overview pose.
func (c *Controller) DefaultPose() Pose { return c.defaultPose }

// ManualControlEnabled reports whether user orbit/pan is allowed. It is true
// in exactly {Default, IdleRotate, Focused} and false in Transitioning.
func (c *Controller) ManualControlEnabled() bool {
	return c.mode != ModeTransitioning
}

// SetPointCount informs the controller of the current point set size. Zero
// points enters the idle rotation; the first non-empty set leaves it for the
// default overview.
func (c *Controller) SetPointCount(n int) {
	if n == 0 {
		if c.mode != ModeIdleRotate {
			c.mode = ModeIdleRotate
			c.pose = c.defaultPose
		}
		return
	}
	if c.mode == ModeIdleRotate {
		c.mode = ModeDefault
		c.pose = c.defaultPose
	}
}

// FocusOn begins a transition toward the point at position. The focus
// distance maps linearly from the similarity score (closer for higher
// similarity) clamped to [NearBound, FarBound], then scaled by the device
// profile and boosted for long matched text on small viewports.
func (c *Controller) FocusOn(position r3.Vec, score float64, labelLen int) {
	s := score
	if s < 0 {
		s = 0
	} else if s > 1 {
		s = 1
	}
	dist := FarBound - s*(FarBound-NearBound)
	if dist < NearBound {
		dist = NearBound
	} else if dist > FarBound {
		dist = FarBound
	}
	dist *= c.device.DistanceScale
	if c.device.SmallViewport && labelLen >= longLabelChars {
		dist *= longLabelBoost
	}

	viewDir := r3.Sub(c.pose.Position, position)
	if r3.Norm(viewDir) < 1e-9 {
		viewDir = r3.Sub(c.defaultPose.Position, c.defaultPose.Target)
	}
	viewDir = r3.Unit(viewDir)

	c.target = Pose{
		Position: r3.Add(position, r3.Scale(dist, viewDir)),
		Target:   position,
	}
	c.mode = ModeTransitioning
}

// ClearFocus aborts any transition and returns the camera exactly to the
// stored default pose, re-enabling manual control.
func (c *Controller) ClearFocus() {
	c.mode = ModeDefault
	c.pose = c.defaultPose
}

// Tick advances the state machine by dt seconds. While Transitioning the
// camera covers a fixed fraction of the remaining distance per tick; below
// arriveEpsilon it snaps exactly onto the target and enters Focused. While
// IdleRotate the camera orbits the container center.
func (c *Controller) Tick(dt float64) {
	switch c.mode {
	case ModeTransitioning:
		c.pose.Position = lerpToward(c.pose.Position, c.target.Position)
		c.pose.Target = lerpToward(c.pose.Target, c.target.Target)
		remaining := r3.Norm(r3.Sub(c.target.Position, c.pose.Position)) +
			r3.Norm(r3.Sub(c.target.Target, c.pose.Target))
		if remaining < arriveEpsilon {
			c.pose = c.target
			c.mode = ModeFocused
		}
	case ModeIdleRotate:
		c.idleAngle += idleRotateRate * dt
		offset := r3.Sub(c.defaultPose.Position, c.container.Center)
		radius := math.Hypot(offset.X, offset.Z)
		c.pose.Position = r3.Vec{
			X: c.container.Center.X + radius*math.Sin(c.idleAngle),
			Y: c.defaultPose.Position.Y,
			Z: c.container.Center.Z + radius*math.Cos(c.idleAngle),
		}
		c.pose.Target = c.container.Center
	}
}

func lerpToward(from, to r3.Vec) r3.Vec {
	return r3.Add(from, r3.Scale(lerpFraction, r3.Sub(to, from)))
}
