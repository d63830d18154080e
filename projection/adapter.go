package projection

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viant/neuromap/embedding"
)

// Reducer is the black-box dimensionality-reduction contract. Reduce maps
// each row of data to a row of the returned matrix with TargetDimensions
// columns, preserving row order. Implementations are assumed deterministic
// given their seed; this package does not attempt to stabilize a stochastic
// reducer.
type Reducer interface {
	Reduce(ctx context.Context, data *mat.Dense, params Params) (*mat.Dense, error)
}

// Adapter wraps a Reducer and converts between embedding vectors and 3D
// coordinates.
type Adapter struct {
	reducer Reducer
	logger  logrus.FieldLogger
}

// NewAdapter creates an Adapter. A nil reducer selects the default t-SNE
// implementation.
func NewAdapter(reducer Reducer, logger logrus.FieldLogger) *Adapter {
	if reducer == nil {
		reducer = NewTSNE()
	}
	return &Adapter{reducer: reducer, logger: logger}
}

// Project reduces vectors to one 3D coordinate each, preserving input order.
// It requires at least MinimumInputs vectors of equal dimensionality and
// performs no work when validation fails.
func (a *Adapter) Project(ctx context.Context, vectors []embedding.Vector, params Params) ([]r3.Vec, error) {
	if len(vectors) < MinimumInputs {
		return nil, fmt.Errorf("projection: at least %d vectors required, got %d", MinimumInputs, len(vectors))
	}
	if err := params.SetDefaultsAndValidate(len(vectors)); err != nil {
		return nil, errors.Wrap(err, "invalid params")
	}

	dims := len(vectors[0])
	merged := make([]float64, len(vectors)*dims)
	for i, vec := range vectors {
		if len(vec) != dims {
			return nil, fmt.Errorf("projection: inconsistent vector lengths found: %d and %d", dims, len(vec))
		}
		for j, component := range vec {
			merged[i*dims+j] = float64(component)
		}
	}

	a.logger.WithFields(logrus.Fields{
		"action":    "project",
		"inputs":    len(vectors),
		"dims":      dims,
		"neighbors": *params.Neighbors,
	}).Debug("reducing vectors to 3D")

	reduced, err := a.reducer.Reduce(ctx, mat.NewDense(len(vectors), dims, merged), params)
	if err != nil {
		return nil, errors.Wrap(err, "reduce vectors")
	}
	rows, cols := reduced.Dims()
	if rows != len(vectors) || cols != TargetDimensions {
		return nil, fmt.Errorf("projection: reducer returned %dx%d matrix for %d inputs", rows, cols, len(vectors))
	}

	out := make([]r3.Vec, rows)
	for i := 0; i < rows; i++ {
		out[i] = r3.Vec{X: reduced.At(i, 0), Y: reduced.At(i, 1), Z: reduced.At(i, 2)}
	}
	return out, nil
}
