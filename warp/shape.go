package warp

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// verticalStretch elongates the vertical axis.
	verticalStretch = 1.4
	// depthCompress flattens the depth axis.
	depthCompress = 0.7
	// lobeStrength scales the lateral push that splits the cloud into two
	// hemispheric lobes.
	lobeStrength = 0.3
	// lobeExponent shapes how quickly the push grows with depth.
	lobeExponent = 0.3
	// bulgeAmplitude is the maximum vertical bulge for points on the central
	// axis.
	bulgeAmplitude = 0.3
	// bulgeSigma is the Gaussian falloff of the bulge with distance from the
	// vertical axis.
	bulgeSigma = 0.45
)

// Engine applies the bilateral shape warp. It is deterministic except for the
// hemisphere tie-break of points lying exactly on the sagittal plane (x == 0),
// which draws from the engine's rand source to avoid a degenerate split.
type Engine struct {
	rng *rand.Rand
}

// New creates a shape-warp engine with the given tie-break seed.
func New(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// Shape warps a single raw projection: vertical stretch, depth compression,
// a lateral push away from the sagittal plane proportional to |z|^0.3, and a
// Gaussian vertical bulge near the central axis.
func (e *Engine) Shape(p r3.Vec) r3.Vec {
	out := r3.Vec{
		X: p.X,
		Y: p.Y * verticalStretch,
		Z: p.Z * depthCompress,
	}

	side := math.Copysign(1, out.X)
	if out.X == 0 {
		side = 1
		if e.rng.Intn(2) == 0 {
			side = -1
		}
	}
	out.X += side * lobeStrength * math.Pow(math.Abs(out.Z), lobeExponent)

	// Distance from the vertical axis controls the bulge.
	axisDist := math.Hypot(out.X, out.Z)
	bulge := 1 + bulgeAmplitude*math.Exp(-(axisDist*axisDist)/(2*bulgeSigma*bulgeSigma))
	out.Y *= bulge

	return out
}

// ShapeAll warps every point in order.
func (e *Engine) ShapeAll(points []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = e.Shape(p)
	}
	return out
}
