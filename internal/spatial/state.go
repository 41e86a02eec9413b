package spatial

import (
	"sync"

	"github.com/tidwall/rtree"

	"starnav.teamgannon.org/internal/geom"
	"starnav.teamgannon.org/internal/kdtree"
)

// treeState is either fresh (a snapshot matching the segment map) or stale
// (the map changed since the snapshot was built). The snapshot is only
// reachable through fresh, so a stale tree cannot be queried.
type treeState interface {
	isTreeState()
}

type fresh[K comparable] struct {
	snap *snapshot[K]
}

type stale struct{}

func (fresh[K]) isTreeState() {}
func (stale) isTreeState()    {}

// snapshot is the immutable query structure built from one version of the
// segment map. It is replaced wholesale, never updated.
type snapshot[K comparable] struct {
	tree      *kdtree.Tree[Segment[K]]
	maxRadius float64
	segments  []Segment[K]

	boxesOnce sync.Once
	boxes     *rtree.RTreeG[Segment[K]]
}

func newSnapshot[K comparable](segments []Segment[K]) *snapshot[K] {
	entries := make([]kdtree.Entry[Segment[K]], len(segments))
	maxRadius := 0.0
	for i, s := range segments {
		entries[i] = kdtree.Entry[Segment[K]]{Point: s.Midpoint(), Value: s}
		maxRadius = max(maxRadius, s.BoundingRadius())
	}
	return &snapshot[K]{
		tree:      kdtree.New(entries),
		maxRadius: maxRadius,
		segments:  segments,
	}
}

// boxIndex lazily builds an R-tree over the XY extent of each segment.
// Box queries are rare compared to sphere queries, so it is only built on demand.
func (s *snapshot[K]) boxIndex() *rtree.RTreeG[Segment[K]] {
	s.boxesOnce.Do(func() {
		tr := &rtree.RTreeG[Segment[K]]{}
		for _, seg := range s.segments {
			b := seg.Bounds()
			tr.Insert(
				[2]float64{b.Min.X, b.Min.Y},
				[2]float64{b.Max.X, b.Max.Y},
				seg,
			)
		}
		s.boxes = tr
	})
	return s.boxes
}

func (s *snapshot[K]) searchBox(box geom.Box3) []Segment[K] {
	results := []Segment[K]{}
	if len(s.segments) == 0 {
		return results
	}
	s.boxIndex().Search(
		[2]float64{box.Min.X, box.Min.Y},
		[2]float64{box.Max.X, box.Max.Y},
		func(_, _ [2]float64, seg Segment[K]) bool {
			if seg.Bounds().Intersects(box) {
				results = append(results, seg)
			}
			return true
		},
	)
	return results
}
