package projection

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/danaugrs/go-tsne/tsne"
	"gonum.org/v1/gonum/mat"
)

// TSNE is the default Reducer: Barnes-Hut-free t-SNE to TargetDimensions.
// The neighborhood parameter maps onto perplexity; MinDist has no t-SNE
// equivalent and is ignored here (it is honored by reducers that support
// one).
//
// A TSNE instance carries a fixed seed chosen at construction, so repeated
// runs through the same instance produce the same layout for identical
// input. Different instances produce different layouts.
//
// The underlying library draws from the package-level math/rand source, and
// Reduce seeds that global source on every call. Concurrent Reduce calls are
// therefore not isolated from each other: reproducibility holds only for
// serialized runs, which is how the layout generator invokes it.
type TSNE struct {
	fixedSeed int64
}

// NewTSNE creates a t-SNE reducer seeded from the current time.
func NewTSNE() *TSNE {
	return &TSNE{fixedSeed: time.Now().UnixNano()}
}

// NewTSNEWithSeed creates a t-SNE reducer with an explicit seed, for
// reproducible layouts across instances.
func NewTSNEWithSeed(seed int64) *TSNE {
	return &TSNE{fixedSeed: seed}
}

// Reduce embeds the rows of data into TargetDimensions dimensions.
func (t *TSNE) Reduce(ctx context.Context, data *mat.Dense, params Params) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, _ := data.Dims()

	// The library reads the global rand source; seeding it here is the only
	// handle on its randomness. See the type comment for the concurrency
	// constraint this imposes.
	rand.Seed(t.fixedSeed)
	e := tsne.NewTSNE(TargetDimensions, float64(*params.Neighbors),
		float64(*params.LearningRate), *params.Iterations, false)
	e.EmbedData(data, nil)

	outRows, outCols := e.Y.Dims()
	if outRows != rows || outCols != TargetDimensions {
		return nil, fmt.Errorf("projection: unexpected embedding dimensions %dx%d for %d inputs", outRows, outCols, rows)
	}
	return e.Y, nil
}

var _ Reducer = (*TSNE)(nil)
