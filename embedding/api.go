package embedding

import (
	"context"
)

// Vector is a fixed-length float32 embedding of one text item. The
// dimensionality is determined by the embedding subsystem; this layer attaches
// no semantic meaning to individual components. Vectors are treated as
// immutable once produced.
type Vector []float32

// Embedder is the contract with the external embedding subsystem. Embed is
// batched and order-preserving: it returns exactly one Vector per input text,
// in input order, or an error. Ready reports whether the subsystem can serve
// requests; callers use it to degrade gracefully (a not-ready subsystem is a
// handled state, not an error).
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]Vector, error)
	Ready() bool
}
