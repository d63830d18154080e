// Package layout composes projection and warp into generation runs: each run
// turns labeled embedding vectors into an immutable set of spatial points
// positioned inside the container.
package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viant/neuromap/embedding"
	"github.com/viant/neuromap/geom"
	"github.com/viant/neuromap/projection"
	"github.com/viant/neuromap/warp"
)

// Point is one positioned item of a generation run. Points are created once
// per run and immutable thereafter; a refresh requires a full new run.
type Point struct {
	// Label is the source text, unique within a run.
	Label string
	// Position lies inside the container ellipsoid by construction.
	Position r3.Vec
	// Vector is the embedding the point was generated from.
	Vector embedding.Vector
}

// Run is the wholesale output of one generation. Prior runs are replaced, not
// patched.
type Run struct {
	ID     uuid.UUID
	Points []Point
}

// Generator owns the projection adapter and warp engine for a session.
type Generator struct {
	adapter *projection.Adapter
	engine  *warp.Engine
	logger  logrus.FieldLogger
}

// NewGenerator creates a Generator. A nil adapter selects the default t-SNE
// reducer; the warp engine's tie-break seed is taken from the clock.
func NewGenerator(adapter *projection.Adapter, logger logrus.FieldLogger) *Generator {
	if adapter == nil {
		adapter = projection.NewAdapter(nil, logger)
	}
	return &Generator{
		adapter: adapter,
		engine:  warp.New(time.Now().UnixNano()),
		logger:  logger,
	}
}

// Generate produces a new Run from labeled vectors: project to 3D, apply the
// bilateral shape warp, and fit the cloud into the container. Labels must be
// unique and match vectors one-to-one. A failed run produces no partial
// output.
func (g *Generator) Generate(ctx context.Context, labels []string, vectors []embedding.Vector, container geom.Container) (*Run, error) {
	if len(labels) != len(vectors) {
		return nil, fmt.Errorf("layout: labels and vectors length mismatch: %d != %d", len(labels), len(vectors))
	}
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("layout: duplicate label %q", label)
		}
		seen[label] = struct{}{}
	}

	raw, err := g.adapter.Project(ctx, vectors, projection.Params{})
	if err != nil {
		return nil, errors.Wrap(err, "project vectors")
	}

	positions := warp.FitEllipsoid(g.engine.ShapeAll(raw), container)

	run := &Run{ID: uuid.New(), Points: make([]Point, len(labels))}
	for i := range labels {
		run.Points[i] = Point{Label: labels[i], Position: positions[i], Vector: vectors[i]}
	}

	g.logger.WithFields(logrus.Fields{
		"action": "generate_layout",
		"run_id": run.ID,
		"points": len(run.Points),
	}).Info("generation run complete")
	return run, nil
}
