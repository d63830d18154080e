package catalog

import (
	"context"
	"database/sql/driver"
	"fmt"

	sqlite "modernc.org/sqlite"

	"github.com/viant/neuromap/embedding"
)

func init() {
	// Registration is driver-global and idempotent; duplicates are rejected
	// by the driver and safely ignored.
	_ = sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosineImpl)
}

// vecCosineImpl exposes cosine similarity over encoded vector BLOBs as a SQL
// scalar function, so related-point queries run inside the database.
func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_cosine: expected 2 arguments, got %d", len(args))
	}
	a, err := asVector(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asVector(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	sim, err := embedding.CosineSimilarity(a, b)
	if err != nil {
		return nil, err
	}
	return sim, nil
}

func asVector(arg driver.Value) (embedding.Vector, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return embedding.DecodeVector(v)
	default:
		return nil, fmt.Errorf("vec_cosine: unsupported argument type %T; want BLOB", arg)
	}
}

// Related is one neighbor of a catalog point.
type Related struct {
	Label      string
	Similarity float64
}

// Neighbors returns the k points most similar to the labeled point by
// embedding, excluding the point itself, in descending similarity order.
// The similarity runs in SQL through the vec_cosine scalar function.
func (c *Catalog) Neighbors(ctx context.Context, label string, k int) ([]Related, error) {
	if k <= 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := c.db.QueryContext(ctx, `
SELECT p.label, vec_cosine(p.embedding, q.embedding) AS sim
FROM points p, points q
WHERE q.label = ? AND p.label != q.label
ORDER BY sim DESC
LIMIT ?`, label, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Related
	for rows.Next() {
		var r Related
		if err := rows.Scan(&r.Label, &r.Similarity); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
