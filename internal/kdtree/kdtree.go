// Package kdtree implements a static, balanced 3D k-d tree.
//
// A Tree is built once from a snapshot of points and never changes afterwards.
// Callers that need a different point set build a new tree.
package kdtree

import (
	"starnav.teamgannon.org/internal/geom"
)

// Entry is an indexed point and the value stored with it.
type Entry[T any] struct {
	Point geom.Point3
	Value T
}

type node[T any] struct {
	entry Entry[T]
	axis  int
	left  *node[T]
	right *node[T]
}

// Tree is an immutable k-d tree. The zero value is an empty tree.
// Queries may run concurrently.
type Tree[T any] struct {
	root *node[T]
	size int
}

// New builds a balanced tree. Each level splits on the median of axis depth%3
// (x, y, z, x, ...). The input slice is not modified.
func New[T any](entries []Entry[T]) *Tree[T] {
	t := &Tree[T]{size: len(entries)}
	if len(entries) == 0 {
		return t
	}
	work := make([]Entry[T], len(entries))
	copy(work, entries)
	t.root = build(work, 0)
	return t
}

func build[T any](entries []Entry[T], depth int) *node[T] {
	if len(entries) == 0 {
		return nil
	}
	axis := depth % geom.Dimensions
	median := len(entries) / 2
	selectNth(entries, median, axis)

	return &node[T]{
		entry: entries[median],
		axis:  axis,
		left:  build(entries[:median], depth+1),
		right: build(entries[median+1:], depth+1),
	}
}

// selectNth partially orders a so that a[n] holds the element that would be there
// if a were sorted on axis, with nothing greater before it and nothing smaller after.
func selectNth[T any](a []Entry[T], n, axis int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, lo+(hi-lo)/2, axis)
		switch {
		case p == n:
			return
		case n < p:
			hi = p - 1
		default:
			lo = p + 1
		}
	}
}

func partition[T any](a []Entry[T], lo, hi, pivot, axis int) int {
	pv := a[pivot].Point.Coord(axis)
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if a[j].Point.Coord(axis) < pv {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

// Len returns the number of indexed points.
func (t *Tree[T]) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// IsEmpty reports whether the tree holds no points.
func (t *Tree[T]) IsEmpty() bool {
	return t.Len() == 0
}

// RangeSearch returns every entry whose distance to center is at most radius.
// Results are in no particular order.
func (t *Tree[T]) RangeSearch(center geom.Point3, radius float64) []Entry[T] {
	var results []Entry[T]
	if t.IsEmpty() {
		return results
	}
	rangeSearch(t.root, center, radius*radius, &results)
	return results
}

func rangeSearch[T any](n *node[T], q geom.Point3, r2 float64, results *[]Entry[T]) {
	if n.entry.Point.DistanceSquared(q) <= r2 {
		*results = append(*results, n.entry)
	}

	axisDist := q.Coord(n.axis) - n.entry.Point.Coord(n.axis)
	near, far := n.right, n.left
	if axisDist < 0 {
		near, far = n.left, n.right
	}

	if near != nil {
		rangeSearch(near, q, r2, results)
	}
	// The far side can only hold matches if the splitting plane is inside the sphere.
	if far != nil && axisDist*axisDist <= r2 {
		rangeSearch(far, q, r2, results)
	}
}

// Nearest returns the entry closest to query. ok is false for an empty tree.
// When several entries are equally close, which one is returned is unspecified.
func (t *Tree[T]) Nearest(query geom.Point3) (entry Entry[T], ok bool) {
	if t.IsEmpty() {
		return entry, false
	}
	best := &nearestState[T]{bestDist2: -1}
	nearest(t.root, query, best)
	return best.best, true
}

type nearestState[T any] struct {
	best      Entry[T]
	bestDist2 float64
}

func nearest[T any](n *node[T], q geom.Point3, s *nearestState[T]) {
	d2 := n.entry.Point.DistanceSquared(q)
	if s.bestDist2 < 0 || d2 < s.bestDist2 {
		s.best = n.entry
		s.bestDist2 = d2
	}

	axisDist := q.Coord(n.axis) - n.entry.Point.Coord(n.axis)
	near, far := n.right, n.left
	if axisDist < 0 {
		near, far = n.left, n.right
	}

	if near != nil {
		nearest(near, q, s)
	}
	if far != nil && axisDist*axisDist < s.bestDist2 {
		nearest(far, q, s)
	}
}
