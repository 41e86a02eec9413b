package kdtree

import (
	"sort"

	"starnav.teamgannon.org/internal/geom"
)

type candidate[T any] struct {
	entry Entry[T]
	dist2 float64
}

// NearestN returns up to n entries closest to query, nearest first.
func (t *Tree[T]) NearestN(query geom.Point3, n int) []Entry[T] {
	if t.IsEmpty() || n <= 0 {
		return nil
	}
	var best []candidate[T]
	nearestN(t.root, query, n, &best)

	results := make([]Entry[T], len(best))
	for i, c := range best {
		results[i] = c.entry
	}
	return results
}

// best is kept sorted by ascending distance and never grows past n.
func nearestN[T any](nd *node[T], q geom.Point3, n int, best *[]candidate[T]) {
	d2 := nd.entry.Point.DistanceSquared(q)
	if len(*best) < n || d2 < (*best)[len(*best)-1].dist2 {
		i := sort.Search(len(*best), func(i int) bool { return (*best)[i].dist2 > d2 })
		*best = append(*best, candidate[T]{})
		copy((*best)[i+1:], (*best)[i:])
		(*best)[i] = candidate[T]{entry: nd.entry, dist2: d2}
		if len(*best) > n {
			*best = (*best)[:n]
		}
	}

	axisDist := q.Coord(nd.axis) - nd.entry.Point.Coord(nd.axis)
	near, far := nd.right, nd.left
	if axisDist < 0 {
		near, far = nd.left, nd.right
	}

	if near != nil {
		nearestN(near, q, n, best)
	}
	if far != nil && (len(*best) < n || axisDist*axisDist < (*best)[len(*best)-1].dist2) {
		nearestN(far, q, n, best)
	}
}
