// Package geom defines the container geometry points must fit inside and the
// device capability profile threaded through camera and layout math.
package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Container is the bounded ellipsoidal region that represents the anatomical
// volume. It is derived once from a container mesh (or a fixed default when
// none is loaded) and is read-only for the lifetime of a session.
type Container struct {
	Center      r3.Vec
	HalfExtents r3.Vec
	Scale       float64
}

// MaxHalfExtent returns the largest semi-axis, used for camera framing.
func (c Container) MaxHalfExtent() float64 {
	m := c.HalfExtents.X
	if c.HalfExtents.Y > m {
		m = c.HalfExtents.Y
	}
	if c.HalfExtents.Z > m {
		m = c.HalfExtents.Z
	}
	return m
}

// DefaultContainer returns the symmetric fallback ellipsoid substituted when
// no container mesh is available, so the layout pipeline never blocks on a
// missing visual asset.
func DefaultContainer() Container {
	return Container{
		Center:      r3.Vec{},
		HalfExtents: r3.Vec{X: 5, Y: 5, Z: 5},
		Scale:       1,
	}
}

// FitContainer derives a Container from mesh vertices: the axis-aligned
// bounding box of the vertices defines center and half extents, uniformly
// scaled. Empty input falls back to DefaultContainer.
func FitContainer(vertices []r3.Vec, scale float64) Container {
	if len(vertices) == 0 {
		return DefaultContainer()
	}
	if scale <= 0 {
		scale = 1
	}
	min, max := vertices[0], vertices[0]
	for _, v := range vertices[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	center := r3.Scale(0.5, r3.Add(min, max))
	half := r3.Scale(0.5*scale, r3.Sub(max, min))
	return Container{Center: r3.Scale(scale, center), HalfExtents: half, Scale: scale}
}

// DeviceProfile captures the device class read once at startup. It is passed
// explicitly into geometry and camera computations rather than queried from a
// global runtime flag.
type DeviceProfile struct {
	// SmallViewport marks mobile or otherwise constrained displays.
	SmallViewport bool
	// DistanceScale multiplies camera framing distances; >1 pulls the camera
	// further back so the whole container stays legible.
	DistanceScale float64
}

// DesktopProfile is the neutral default profile.
func DesktopProfile() DeviceProfile {
	return DeviceProfile{SmallViewport: false, DistanceScale: 1}
}

// MobileProfile pulls the camera back for small viewports.
func MobileProfile() DeviceProfile {
	return DeviceProfile{SmallViewport: true, DistanceScale: 1.35}
}
