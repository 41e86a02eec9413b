// Package spatial indexes 3D line segments grouped by owner so that only the
// segments near a query point are retrieved.
//
// Segments are indexed by their midpoint in a k-d tree and carry a bounding
// radius for exact intersection tests. Mutations only touch the owner map and
// mark the tree stale; the tree is rebuilt once, on the first query after a
// batch of mutations.
package spatial

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"starnav.teamgannon.org/internal/geom"
	"starnav.teamgannon.org/internal/metrics"
)

// Index is a segment spatial index keyed by owner id. It is safe for concurrent use.
type Index[K comparable] struct {
	name   string
	logger *slog.Logger

	mu       sync.RWMutex
	segments map[K][]Segment[K]
	total    int
	state    treeState

	queries  atomic.Int64
	checked  atomic.Int64
	returned atomic.Int64
	rebuilds atomic.Int64
}

// Option configures an Index.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug output. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewIndex creates an empty index. name labels log lines, statistics and metrics.
func NewIndex[K comparable](name string, opts ...Option) *Index[K] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Index[K]{
		name:     name,
		logger:   o.logger.With(slog.String("component", "spatial_index"), slog.String("index", name)),
		segments: make(map[K][]Segment[K]),
		state:    fresh[K]{snap: newSnapshot[K](nil)},
	}
}

// Name returns the label given at construction.
func (ix *Index[K]) Name() string {
	return ix.name
}

// AddOwner indexes the polyline through coords as consecutive segments and
// replaces anything previously indexed for owner. Pairs with a nil coordinate
// are skipped; the segments after the gap keep their original positions.
// Fewer than two coordinates leaves the owner with no segments.
// Returns the number of segments indexed.
func (ix *Index[K]) AddOwner(owner K, coords []*geom.Point3) int {
	if len(coords) < 2 {
		ix.logger.Debug("owner has insufficient coordinates for indexing",
			slog.Any("owner", owner),
			slog.Int("coordinates", len(coords)))
		ix.replace(owner, nil)
		return 0
	}

	segments := make([]Segment[K], 0, len(coords)-1)
	for i := 0; i < len(coords)-1; i++ {
		start, end := coords[i], coords[i+1]
		if start == nil || end == nil {
			ix.logger.Warn("null coordinate in owner path",
				slog.Any("owner", owner),
				slog.Int("position", i))
			continue
		}
		segments = append(segments, NewSegment(owner, i, *start, *end))
	}

	ix.replace(owner, segments)
	return len(segments)
}

// AddPath is AddOwner for a path without gaps.
func (ix *Index[K]) AddPath(owner K, coords []geom.Point3) int {
	ptrs := make([]*geom.Point3, len(coords))
	for i := range coords {
		ptrs[i] = &coords[i]
	}
	return ix.AddOwner(owner, ptrs)
}

// AddLegs indexes one segment per leg and replaces anything previously indexed
// for owner. Legs missing an endpoint are skipped.
func (ix *Index[K]) AddLegs(owner K, legs []Leg) int {
	segments := make([]Segment[K], 0, len(legs))
	for i, leg := range legs {
		if leg.Start == nil || leg.End == nil {
			ix.logger.Warn("leg with missing endpoint skipped",
				slog.Any("owner", owner),
				slog.Int("position", i))
			continue
		}
		segments = append(segments, NewSegment(owner, i, *leg.Start, *leg.End))
	}

	ix.replace(owner, segments)
	return len(segments)
}

func (ix *Index[K]) replace(owner K, segments []Segment[K]) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	previous, existed := ix.segments[owner]
	if !existed && len(segments) == 0 {
		return
	}

	if len(segments) == 0 {
		delete(ix.segments, owner)
	} else {
		ix.segments[owner] = segments
	}
	ix.total += len(segments) - len(previous)
	ix.state = stale{}

	ix.logger.Debug("indexed owner segments",
		slog.Any("owner", owner),
		slog.Int("segments", len(segments)),
		slog.Int("replaced", len(previous)))
}

// RemoveOwner drops every segment of owner. It is a no-op for unknown owners.
func (ix *Index[K]) RemoveOwner(owner K) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	removed, ok := ix.segments[owner]
	if !ok {
		return
	}
	delete(ix.segments, owner)
	ix.total -= len(removed)
	ix.state = stale{}

	ix.logger.Debug("removed owner segments",
		slog.Any("owner", owner),
		slog.Int("segments", len(removed)))
}

// Clear empties the index and resets its statistics. An empty index needs no rebuild.
func (ix *Index[K]) Clear() {
	ix.mu.Lock()
	ix.segments = make(map[K][]Segment[K])
	ix.total = 0
	ix.state = fresh[K]{snap: newSnapshot[K](nil)}
	ix.mu.Unlock()

	ix.ResetStatistics()
	ix.logger.Debug("cleared spatial index")
}

// fresh returns a snapshot that reflects every mutation made before the call,
// rebuilding it first if the index is stale.
func (ix *Index[K]) fresh() *snapshot[K] {
	ix.mu.RLock()
	if f, ok := ix.state.(fresh[K]); ok {
		ix.mu.RUnlock()
		return f.snap
	}
	ix.mu.RUnlock()

	ix.mu.Lock()
	defer ix.mu.Unlock()
	// Another query may have rebuilt while we waited for the write lock.
	if f, ok := ix.state.(fresh[K]); ok {
		return f.snap
	}

	start := time.Now()
	segments := make([]Segment[K], 0, ix.total)
	for _, owned := range ix.segments {
		segments = append(segments, owned...)
	}
	snap := newSnapshot(segments)
	ix.state = fresh[K]{snap: snap}

	elapsed := time.Since(start)
	ix.rebuilds.Add(1)
	metrics.IndexRebuildsTotal.WithLabelValues(ix.name).Inc()
	metrics.IndexRebuildDurationMs.WithLabelValues(ix.name).Observe(float64(elapsed.Microseconds()) / 1000)
	ix.logger.Debug("rebuilt k-d tree",
		slog.Int("segments", len(segments)),
		slog.Duration("elapsed", elapsed))

	return snap
}

// FindWithinRadius returns the segments whose bounding sphere intersects the
// query sphere. Results are in no particular order.
func (ix *Index[K]) FindWithinRadius(center geom.Point3, radius float64) []Segment[K] {
	snap := ix.fresh()
	ix.queries.Add(1)
	metrics.IndexQueriesTotal.WithLabelValues(ix.name).Inc()

	results := []Segment[K]{}
	if snap.tree.IsEmpty() {
		return results
	}

	// The tree is keyed on midpoints, so a segment whose midpoint lies outside
	// radius can still reach into the sphere by up to its own bounding radius.
	candidates := snap.tree.RangeSearch(center, radius+snap.maxRadius)
	for _, c := range candidates {
		if c.Value.IntersectsSphere(center, radius) {
			results = append(results, c.Value)
		}
	}

	ix.checked.Add(int64(len(candidates)))
	ix.returned.Add(int64(len(results)))
	metrics.IndexSegmentsCheckedTotal.WithLabelValues(ix.name).Add(float64(len(candidates)))
	metrics.IndexSegmentsReturnedTotal.WithLabelValues(ix.name).Add(float64(len(results)))
	return results
}

// FindForOwnerWithinRadius is FindWithinRadius restricted to one owner.
func (ix *Index[K]) FindForOwnerWithinRadius(owner K, center geom.Point3, radius float64) []Segment[K] {
	all := ix.FindWithinRadius(center, radius)
	results := make([]Segment[K], 0, len(all))
	for _, s := range all {
		if s.Owner() == owner {
			results = append(results, s)
		}
	}
	return results
}

// Nearest returns the segment whose midpoint is closest to p. ok is false when
// the index is empty.
func (ix *Index[K]) Nearest(p geom.Point3) (seg Segment[K], ok bool) {
	entry, ok := ix.fresh().tree.Nearest(p)
	if !ok {
		return seg, false
	}
	return entry.Value, true
}

// VisibleOwners returns the distinct owners with at least one segment inside the query sphere.
func (ix *Index[K]) VisibleOwners(center geom.Point3, radius float64) map[K]struct{} {
	owners := make(map[K]struct{})
	for _, s := range ix.FindWithinRadius(center, radius) {
		owners[s.Owner()] = struct{}{}
	}
	return owners
}

// FindWithinBox returns the segments whose axis-aligned extent overlaps box.
func (ix *Index[K]) FindWithinBox(box geom.Box3) []Segment[K] {
	return ix.fresh().searchBox(box)
}

// SegmentsForOwner returns a copy of the owner's segments in path order.
func (ix *Index[K]) SegmentsForOwner(owner K) []Segment[K] {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	owned := ix.segments[owner]
	out := make([]Segment[K], len(owned))
	copy(out, owned)
	return out
}

// HasOwner reports whether owner has at least one indexed segment.
func (ix *Index[K]) HasOwner(owner K) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.segments[owner]
	return ok
}

// Owners returns the indexed owner ids in no particular order.
func (ix *Index[K]) Owners() []K {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	owners := make([]K, 0, len(ix.segments))
	for owner := range ix.segments {
		owners = append(owners, owner)
	}
	return owners
}

func (ix *Index[K]) OwnerCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.segments)
}

func (ix *Index[K]) TotalSegments() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.total
}

func (ix *Index[K]) IsEmpty() bool {
	return ix.TotalSegments() == 0
}

// IsStale reports whether the next query will rebuild the tree.
func (ix *Index[K]) IsStale() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.state.(stale)
	return ok
}

// Stats is a point-in-time copy of the index counters.
type Stats struct {
	Owners           int   `json:"owners"`
	Segments         int   `json:"segments"`
	Queries          int64 `json:"queries"`
	SegmentsChecked  int64 `json:"segmentsChecked"`
	SegmentsReturned int64 `json:"segmentsReturned"`
	Rebuilds         int64 `json:"rebuilds"`
}

// AvgReturned is the mean number of segments returned per query.
func (s Stats) AvgReturned() float64 {
	if s.Queries == 0 {
		return 0
	}
	return float64(s.SegmentsReturned) / float64(s.Queries)
}

// CullRate is the percentage of tree candidates rejected by the exact test.
func (s Stats) CullRate() float64 {
	if s.SegmentsChecked == 0 {
		return 0
	}
	return (1 - float64(s.SegmentsReturned)/float64(s.SegmentsChecked)) * 100
}

func (ix *Index[K]) Stats() Stats {
	ix.mu.RLock()
	owners, total := len(ix.segments), ix.total
	ix.mu.RUnlock()

	return Stats{
		Owners:           owners,
		Segments:         total,
		Queries:          ix.queries.Load(),
		SegmentsChecked:  ix.checked.Load(),
		SegmentsReturned: ix.returned.Load(),
		Rebuilds:         ix.rebuilds.Load(),
	}
}

// ResetStatistics zeroes the query counters.
func (ix *Index[K]) ResetStatistics() {
	ix.queries.Store(0)
	ix.checked.Store(0)
	ix.returned.Store(0)
}

// Statistics returns a one-line summary for performance monitoring.
// The format is informational only.
func (ix *Index[K]) Statistics() string {
	s := ix.Stats()
	return fmt.Sprintf("%s[owners=%d, segments=%d, queries=%d, avgReturned=%.1f, cullRate=%.1f%%]",
		ix.name, s.Owners, s.Segments, s.Queries, s.AvgReturned(), s.CullRate())
}

// LogStatistics writes Statistics at debug level once the index has been queried.
func (ix *Index[K]) LogStatistics() {
	if ix.queries.Load() > 0 {
		ix.logger.Debug(ix.Statistics())
	}
}
