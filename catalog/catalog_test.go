package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viant/neuromap/embedding"
	"github.com/viant/neuromap/layout"
)

func testRun(labels ...string) *layout.Run {
	run := &layout.Run{ID: uuid.New()}
	for i, label := range labels {
		run.Points = append(run.Points, layout.Point{
			Label:    label,
			Position: r3.Vec{X: float64(i), Y: float64(i) * 2, Z: -float64(i)},
			Vector:   embedding.Vector{float32(i), 1, 0.5},
		})
	}
	return run
}

func TestReplaceAndPoints(t *testing.T) {
	c, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Replace(ctx, testRun("alpha", "beta", "gamma")); err != nil {
		t.Fatal(err)
	}

	points, err := c.Points(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if points[i].Label != want {
			t.Fatalf("point %d: expected %q, got %q", i, want, points[i].Label)
		}
	}
	if points[1].Position != (r3.Vec{X: 1, Y: 2, Z: -1}) {
		t.Fatalf("unexpected position: %+v", points[1].Position)
	}
	if len(points[1].Vector) != 3 || points[1].Vector[0] != 1 {
		t.Fatalf("unexpected vector: %v", points[1].Vector)
	}
}

func TestReplaceIsWholesale(t *testing.T) {
	c, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Replace(ctx, testRun("old1", "old2")); err != nil {
		t.Fatal(err)
	}
	if err := c.Replace(ctx, testRun("new1")); err != nil {
		t.Fatal(err)
	}

	points, err := c.Points(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 || points[0].Label != "new1" {
		t.Fatalf("expected only new1 to remain, got %+v", points)
	}
}

func TestReplaceFailureKeepsPriorContent(t *testing.T) {
	c, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Replace(ctx, testRun("keep")); err != nil {
		t.Fatal(err)
	}

	bad := testRun("ok")
	bad.Points = append(bad.Points, layout.Point{Label: "", Vector: embedding.Vector{1}})
	if err := c.Replace(ctx, bad); err == nil {
		t.Fatal("expected error for empty label")
	}

	points, err := c.Points(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 || points[0].Label != "keep" {
		t.Fatalf("prior content not preserved: %+v", points)
	}
}

func TestGet(t *testing.T) {
	c, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Replace(ctx, testRun("alpha", "beta")); err != nil {
		t.Fatal(err)
	}

	p, ok, err := c.Get(ctx, "beta")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || p.Label != "beta" {
		t.Fatalf("expected beta, got %+v ok=%v", p, ok)
	}

	_, ok, err = c.Get(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected miss for unknown label")
	}
}

func TestCount(t *testing.T) {
	c, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	n, err := c.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected empty catalog, got %d", n)
	}
	if err := c.Replace(ctx, testRun("a", "b", "c", "d")); err != nil {
		t.Fatal(err)
	}
	if n, err = c.Count(ctx); err != nil || n != 4 {
		t.Fatalf("expected 4 points, got %d (err %v)", n, err)
	}
}
