package starmap

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"starnav.teamgannon.org/internal/geom"
	"starnav.teamgannon.org/internal/spatial"
	"starnav.teamgannon.org/internal/transit"
)

// SavedRoute is a route plotted on the map. Coordinates follow Stars; a star
// missing from the catalog leaves a nil gap and no segment is drawn to it.
type SavedRoute struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Color       string         `json:"color,omitempty"`
	Stars       []string       `json:"stars"`
	Coordinates []*geom.Point3 `json:"coordinates"`
	TotalLength float64        `json:"totalLength"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type lookupFunc func(id string) (transit.Star, bool)

// routeStore keeps the saved routes and the spatial index of their segments.
type routeStore struct {
	mu     sync.RWMutex
	routes map[uuid.UUID]SavedRoute
	index  *spatial.Index[uuid.UUID]
	logger *slog.Logger
}

func newRouteStore(logger *slog.Logger) *routeStore {
	return &routeStore{
		routes: make(map[uuid.UUID]SavedRoute),
		index:  spatial.NewIndex[uuid.UUID]("routes", spatial.WithLogger(logger)),
		logger: logger.With(slog.String("component", "route_store")),
	}
}

// resolve fills in the coordinates of r from lookup. TotalLength is only
// computed when the caller did not supply one.
func resolve(r SavedRoute, lookup lookupFunc) SavedRoute {
	r.Coordinates = make([]*geom.Point3, len(r.Stars))
	length := 0.0
	for i, id := range r.Stars {
		s, ok := lookup(id)
		if !ok {
			continue
		}
		p := s.Position
		r.Coordinates[i] = &p
		if i > 0 && r.Coordinates[i-1] != nil {
			length += r.Coordinates[i-1].Distance(p)
		}
	}
	if r.TotalLength == 0 {
		r.TotalLength = length
	}
	return r
}

func missingStars(r SavedRoute) []string {
	var missing []string
	for i, c := range r.Coordinates {
		if c == nil {
			missing = append(missing, r.Stars[i])
		}
	}
	return missing
}

func (rs *routeStore) add(r SavedRoute, lookup lookupFunc) SavedRoute {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r = resolve(r, lookup)
	if missing := missingStars(r); len(missing) > 0 {
		rs.logger.Warn("route references unknown stars",
			slog.String("route", r.ID.String()),
			slog.Any("stars", missing))
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.routes[r.ID] = r
	rs.index.AddOwner(r.ID, r.Coordinates)
	return r
}

func (rs *routeStore) remove(id uuid.UUID) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if _, ok := rs.routes[id]; !ok {
		return false
	}
	delete(rs.routes, id)
	rs.index.RemoveOwner(id)
	return true
}

func (rs *routeStore) get(id uuid.UUID) (SavedRoute, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	r, ok := rs.routes[id]
	return r, ok
}

// list returns the routes oldest first.
func (rs *routeStore) list() []SavedRoute {
	rs.mu.RLock()
	out := make([]SavedRoute, 0, len(rs.routes))
	for _, r := range rs.routes {
		out = append(out, r)
	}
	rs.mu.RUnlock()

	sortRoutes(out)
	return out
}

func sortRoutes(routes []SavedRoute) {
	slices.SortFunc(routes, func(a, b SavedRoute) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

func (rs *routeStore) count() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.routes)
}

// reindex re-resolves every route against a new catalog. Lengths are
// recomputed from the new positions.
func (rs *routeStore) reindex(lookup lookupFunc) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.index.Clear()
	for id, r := range rs.routes {
		r.TotalLength = 0
		r = resolve(r, lookup)
		rs.routes[id] = r
		rs.index.AddOwner(id, r.Coordinates)
	}
}

// owners maps the owners of segments back to their routes, in list order.
func (rs *routeStore) owners(segments []spatial.Segment[uuid.UUID]) []SavedRoute {
	rs.mu.RLock()
	seen := make(map[uuid.UUID]struct{})
	out := make([]SavedRoute, 0)
	for _, seg := range segments {
		id := seg.Owner()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if r, ok := rs.routes[id]; ok {
			out = append(out, r)
		}
	}
	rs.mu.RUnlock()

	sortRoutes(out)
	return out
}

func (rs *routeStore) visible(center geom.Point3, radius float64) []SavedRoute {
	return rs.owners(rs.index.FindWithinRadius(center, radius))
}

func (rs *routeStore) inBox(box geom.Box3) []SavedRoute {
	return rs.owners(rs.index.FindWithinBox(box))
}

func (rs *routeStore) nearest(p geom.Point3) (SavedRoute, bool) {
	seg, ok := rs.index.Nearest(p)
	if !ok {
		return SavedRoute{}, false
	}
	return rs.get(seg.Owner())
}
