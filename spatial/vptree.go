// Package spatial provides nearest-point lookup over 3D positions so a
// pick (click) location can be resolved to a point without a linear scan. It
// uses a VP-tree with euclidean pruning.
package spatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/viant/vec/search"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tree is a vantage-point tree over labeled 3D positions.
type Tree struct {
	labels []string
	pos    [][]float32
	root   *node
}

type node struct {
	idx   int
	thr   float32
	left  *node
	right *node
}

// Build constructs the tree, replacing any prior content. Labels and
// positions must match one-to-one.
func (t *Tree) Build(labels []string, positions []r3.Vec) error {
	if len(labels) != len(positions) {
		return fmt.Errorf("spatial: labels and positions length mismatch: %d != %d", len(labels), len(positions))
	}
	t.labels = append([]string(nil), labels...)
	t.pos = make([][]float32, len(positions))
	for i, p := range positions {
		t.pos[i] = []float32{float32(p.X), float32(p.Y), float32(p.Z)}
	}
	if len(positions) == 0 {
		t.root = nil
		return nil
	}
	idxs := make([]int, len(positions))
	for i := range idxs {
		idxs[i] = i
	}
	t.root = t.buildVP(idxs)
	return nil
}

func (t *Tree) buildVP(idxs []int) *node {
	if len(idxs) == 0 {
		return nil
	}
	// pick last as vantage point to avoid extra randomness
	vp := idxs[len(idxs)-1]
	idxs = idxs[:len(idxs)-1]
	if len(idxs) == 0 {
		return &node{idx: vp}
	}
	dists := make([]float32, len(idxs))
	for k, j := range idxs {
		dists[k] = t.distance(vp, j)
	}
	mid := len(dists) / 2
	order := make([]int, len(idxs))
	for k := range order {
		order[k] = k
	}
	sort.Slice(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })
	thr := dists[order[mid]]
	leftIdxs := make([]int, 0, mid+1)
	rightIdxs := make([]int, 0, len(idxs)-(mid+1))
	for rank, k := range order {
		if rank <= mid {
			leftIdxs = append(leftIdxs, idxs[k])
		} else {
			rightIdxs = append(rightIdxs, idxs[k])
		}
	}
	return &node{
		idx:   vp,
		thr:   thr,
		left:  t.buildVP(leftIdxs),
		right: t.buildVP(rightIdxs),
	}
}

func (t *Tree) distance(a, b int) float32 {
	return search.Float32s(t.pos[a]).EuclideanDistance(t.pos[b])
}

// Nearest returns the label of the position closest to q and its distance.
// ok is false when the tree is empty.
func (t *Tree) Nearest(q r3.Vec) (label string, dist float64, ok bool) {
	if t.root == nil {
		return "", 0, false
	}
	query := []float32{float32(q.X), float32(q.Y), float32(q.Z)}
	best := -1
	bestDist := float32(math.Inf(1))

	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		d := search.Float32s(query).EuclideanDistance(t.pos[n.idx])
		if d < bestDist {
			best, bestDist = n.idx, d
		}
		// Euclidean distance satisfies the triangle inequality, so the
		// threshold prunes whole subtrees.
		if d < n.thr {
			walk(n.left)
			if d+bestDist >= n.thr {
				walk(n.right)
			}
		} else {
			walk(n.right)
			if d-bestDist <= n.thr {
				walk(n.left)
			}
		}
	}
	walk(t.root)
	return t.labels[best], float64(bestDist), true
}
