package warp

import (
	"hash/fnv"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viant/neuromap/geom"
)

const (
	// maxUnitRadius is the hard cap on a normalized point's distance from the
	// cloud center; anything beyond is radially clamped back onto this sphere.
	maxUnitRadius = 0.95
	// minUnitRadius marks near-degenerate clustering at the origin; points
	// below it are displaced outward deterministically.
	minUnitRadius = 0.05
	// displaceRadiusSpan is the width of the [minUnitRadius,
	// minUnitRadius+span] band displaced points land in.
	displaceRadiusSpan = 0.10
	// fitMargin keeps every point strictly inside the container surface.
	fitMargin = 0.97
)

// Anisotropic shape adjustment matching the container's proportions: widest
// laterally, flattest vertically, depth in between. All factors stay <= 1 so
// the containment invariant survives the per-axis mapping.
const (
	lateralShape  = 1.0
	verticalShape = 0.8
	depthShape    = 0.92
)

// FitEllipsoid normalizes warped points into the container: the point cloud's
// bounding box is centered and scaled to approximately [-1, 1], outliers are
// radially clamped to maxUnitRadius, near-origin points are displaced outward
// by an index-keyed deterministic direction, and the result is mapped through
// the container's half extents and center with the anisotropic shape
// adjustment. An empty input yields an empty output.
func FitEllipsoid(points []r3.Vec, c geom.Container) []r3.Vec {
	if len(points) == 0 {
		return nil
	}

	unit := normalizeUnit(points)
	out := make([]r3.Vec, len(unit))
	for i, v := range unit {
		v = r3.Scale(fitMargin, v)
		out[i] = r3.Vec{
			X: c.Center.X + v.X*lateralShape*c.HalfExtents.X,
			Y: c.Center.Y + v.Y*verticalShape*c.HalfExtents.Y,
			Z: c.Center.Z + v.Z*depthShape*c.HalfExtents.Z,
		}
	}
	return out
}

// normalizeUnit centers the cloud on its bounding box, scales by half the
// largest box dimension, clamps outliers to maxUnitRadius and displaces
// near-origin points into [minUnitRadius, minUnitRadius+displaceRadiusSpan].
func normalizeUnit(points []r3.Vec) []r3.Vec {
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	center := r3.Scale(0.5, r3.Add(min, max))
	span := r3.Sub(max, min)
	halfMax := math.Max(span.X, math.Max(span.Y, span.Z)) / 2
	if halfMax == 0 {
		// Fully degenerate cloud; every point collapses to the origin and is
		// displaced below.
		halfMax = 1
	}

	out := make([]r3.Vec, len(points))
	for i, p := range points {
		v := r3.Scale(1/halfMax, r3.Sub(p, center))
		n := r3.Norm(v)
		switch {
		case n > maxUnitRadius:
			v = r3.Scale(maxUnitRadius/n, v)
		case n < minUnitRadius:
			v = displaced(i)
		}
		out[i] = v
	}
	return out
}

// displaced returns the deterministic outward displacement for the point at
// the given index. It is a pure function of the index (an FNV-keyed hash, not
// a stateful RNG), so repeated runs with identical input order reproduce the
// same layout.
func displaced(index int) r3.Vec {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.Itoa(index)))
	bits := h.Sum64()

	u1 := float64(bits&0x1FFFFF) / float64(0x1FFFFF)
	u2 := float64((bits>>21)&0x1FFFFF) / float64(0x1FFFFF)
	u3 := float64((bits>>42)&0x1FFFFF) / float64(0x1FFFFF)

	theta := 2 * math.Pi * u1
	cosPhi := 2*u2 - 1
	sinPhi := math.Sqrt(math.Max(0, 1-cosPhi*cosPhi))
	radius := minUnitRadius + displaceRadiusSpan*u3

	return r3.Scale(radius, r3.Vec{
		X: sinPhi * math.Cos(theta),
		Y: sinPhi * math.Sin(theta),
		Z: cosPhi,
	})
}
