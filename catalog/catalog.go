// Package catalog keeps the current layout run in an in-memory SQLite
// database. The catalog is ephemeral by design: it lives for one session,
// is replaced wholesale whenever a new layout is generated, and is never
// written to disk.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver

	"github.com/viant/neuromap/embedding"
	"github.com/viant/neuromap/layout"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS points (
    label     TEXT NOT NULL UNIQUE,
    x         REAL NOT NULL,
    y         REAL NOT NULL,
    z         REAL NOT NULL,
    embedding BLOB NOT NULL
);`

// Catalog stores labeled points with their warped positions and embedding
// vectors. Safe for concurrent use through database/sql.
type Catalog struct {
	db *sql.DB
}

// Open creates a fresh in-memory catalog. Each SQLite :memory: DSN is
// per-connection, so the pool is pinned to a single connection to keep every
// statement on the same database.
func Open() (*Catalog, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("catalog: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: ensure schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }

// Replace swaps the catalog content for the points of run in one
// transaction. On error the previous content is left untouched.
func (c *Catalog) Replace(ctx context.Context, run *layout.Run) error {
	if run == nil {
		return fmt.Errorf("catalog: nil run")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM points`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO points(label, x, y, z, embedding) VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range run.Points {
		if p.Label == "" {
			return fmt.Errorf("catalog: point with empty label")
		}
		blob, err := embedding.EncodeVector(p.Vector)
		if err != nil {
			return fmt.Errorf("catalog: encode %q: %w", p.Label, err)
		}
		if _, err := stmt.ExecContext(ctx, p.Label, p.Position.X, p.Position.Y, p.Position.Z, blob); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Points returns every point in insertion order.
func (c *Catalog) Points(ctx context.Context) ([]layout.Point, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := c.db.QueryContext(ctx, `SELECT label, x, y, z, embedding FROM points ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []layout.Point
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get looks a point up by label. ok is false when the label is absent.
func (c *Catalog) Get(ctx context.Context, label string) (layout.Point, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := c.db.QueryContext(ctx, `SELECT label, x, y, z, embedding FROM points WHERE label = ?`, label)
	if err != nil {
		return layout.Point{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return layout.Point{}, false, rows.Err()
	}
	p, err := scanPoint(rows)
	if err != nil {
		return layout.Point{}, false, err
	}
	return p, true, nil
}

// Count returns the number of stored points.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM points`).Scan(&n)
	return n, err
}

func scanPoint(rows *sql.Rows) (layout.Point, error) {
	var (
		p       layout.Point
		x, y, z float64
		blob    []byte
	)
	if err := rows.Scan(&p.Label, &x, &y, &z, &blob); err != nil {
		return layout.Point{}, err
	}
	vec, err := embedding.DecodeVector(blob)
	if err != nil {
		return layout.Point{}, fmt.Errorf("catalog: decode %q: %w", p.Label, err)
	}
	p.Position = r3.Vec{X: x, Y: y, Z: z}
	p.Vector = vec
	return p, nil
}
