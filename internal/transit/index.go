package transit

import (
	"sync"

	"starnav.teamgannon.org/internal/geom"
	"starnav.teamgannon.org/internal/spatial"
)

// Transit is an indexed transit: the route it was built from and its segment geometry.
type Transit struct {
	Route
	Segment spatial.Segment[string]
}

// Index culls transits by band for rendering. Each band's transits are stored
// as one owner in a segment index.
type Index struct {
	mu       sync.RWMutex
	routes   map[string][]Route
	segments *spatial.Index[string]
}

func NewIndex(opts ...spatial.Option) *Index {
	return &Index{
		routes:   make(map[string][]Route),
		segments: spatial.NewIndex[string]("transits", opts...),
	}
}

// AddTransits replaces the transits of bandID and returns how many were indexed.
func (ix *Index) AddTransits(bandID string, routes []Route) int {
	legs := make([]spatial.Leg, len(routes))
	for i, r := range routes {
		legs[i] = r.Leg()
	}
	kept := make([]Route, len(routes))
	copy(kept, routes)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	n := ix.segments.AddLegs(bandID, legs)
	if n == 0 {
		delete(ix.routes, bandID)
	} else {
		ix.routes[bandID] = kept
	}
	return n
}

// AddRoutes groups routes by their band and replaces each band present.
func (ix *Index) AddRoutes(routes []Route) {
	byBand := make(map[string][]Route)
	for _, r := range routes {
		byBand[r.BandID] = append(byBand[r.BandID], r)
	}
	for band, rs := range byBand {
		ix.AddTransits(band, rs)
	}
}

func (ix *Index) RemoveBand(bandID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.routes, bandID)
	ix.segments.RemoveOwner(bandID)
}

func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.routes = make(map[string][]Route)
	ix.segments.Clear()
}

func (ix *Index) HasBand(bandID string) bool {
	return ix.segments.HasOwner(bandID)
}

func (ix *Index) BandCount() int {
	return ix.segments.OwnerCount()
}

func (ix *Index) TransitCountForBand(bandID string) int {
	return len(ix.segments.SegmentsForOwner(bandID))
}

func (ix *Index) TotalTransits() int {
	return ix.segments.TotalSegments()
}

func (ix *Index) IsEmpty() bool {
	return ix.segments.IsEmpty()
}

// TransitsForBand returns the band's transits in the order they were added.
func (ix *Index) TransitsForBand(bandID string) []Transit {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.resolve(ix.segments.SegmentsForOwner(bandID))
}

// FindWithinRadius returns the transits whose bounding sphere meets the query sphere.
func (ix *Index) FindWithinRadius(center geom.Point3, radius float64) []Transit {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.resolve(ix.segments.FindWithinRadius(center, radius))
}

func (ix *Index) FindForBandWithinRadius(bandID string, center geom.Point3, radius float64) []Transit {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.resolve(ix.segments.FindForOwnerWithinRadius(bandID, center, radius))
}

// Nearest returns the transit whose midpoint is closest to p.
func (ix *Index) Nearest(p geom.Point3) (Transit, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	seg, ok := ix.segments.Nearest(p)
	if !ok {
		return Transit{}, false
	}
	resolved := ix.resolve([]spatial.Segment[string]{seg})
	if len(resolved) == 0 {
		return Transit{}, false
	}
	return resolved[0], true
}

// VisibleBands returns the ids of bands with at least one transit in the query sphere.
func (ix *Index) VisibleBands(center geom.Point3, radius float64) map[string]struct{} {
	return ix.segments.VisibleOwners(center, radius)
}

func (ix *Index) Stats() spatial.Stats {
	return ix.segments.Stats()
}

func (ix *Index) Statistics() string {
	return ix.segments.Statistics()
}

func (ix *Index) LogStatistics() {
	ix.segments.LogStatistics()
}

func (ix *Index) ResetStatistics() {
	ix.segments.ResetStatistics()
}

// resolve pairs segments with their routes. Caller holds ix.mu.
func (ix *Index) resolve(segments []spatial.Segment[string]) []Transit {
	out := make([]Transit, 0, len(segments))
	for _, s := range segments {
		routes := ix.routes[s.Owner()]
		if s.Index() >= len(routes) {
			continue
		}
		out = append(out, Transit{Route: routes[s.Index()], Segment: s})
	}
	return out
}
