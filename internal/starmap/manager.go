// Package starmap owns the live state of the map: the star catalog, the
// transits between stars, the route graph built from them and the routes the
// user has plotted.
package starmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"starnav.teamgannon.org/internal/geom"
	"starnav.teamgannon.org/internal/kdtree"
	"starnav.teamgannon.org/internal/logging"
	"starnav.teamgannon.org/internal/routegraph"
	"starnav.teamgannon.org/internal/routing"
	"starnav.teamgannon.org/internal/spatial"
	"starnav.teamgannon.org/internal/transit"
)

var (
	ErrStarNotFound  = errors.New("star not found")
	ErrRouteNotFound = errors.New("route not found")
	ErrInvalidBands  = errors.New("invalid transit bands")
	ErrInvalidRoute  = errors.New("invalid route")
)

// network is one consistent version of the catalog and everything derived
// from it. It is replaced wholesale.
type network struct {
	catalog  *Catalog
	byID     map[string]int
	starTree *kdtree.Tree[int]
	bands    []transit.Band
	transits *transit.Index
	graph    *routegraph.Graph
	modTime  time.Time
	built    time.Time
}

// Manager is safe for concurrent use.
type Manager struct {
	config     Config
	base       *slog.Logger
	logger     *slog.Logger
	calculator *transit.Calculator
	finder     *routing.Finder

	rebuildMutex sync.Mutex   // serialises RecomputeTransits and Reload
	staticMutex  sync.RWMutex // protects current
	current      *network

	routes *routeStore

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// InitManager loads the catalog at config.CatalogPath, computes transits for
// the configured bands and starts the reload loop when enabled.
func InitManager(ctx context.Context, config Config, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	catalog, err := LoadCatalog(config.CatalogPath, logger)
	if err != nil {
		return nil, err
	}
	var modTime time.Time
	if info, err := os.Stat(config.CatalogPath); err == nil {
		modTime = info.ModTime()
	}

	manager, err := NewManager(ctx, config, catalog, logger)
	if err != nil {
		return nil, err
	}
	manager.current.modTime = modTime

	if config.ReloadInterval > 0 {
		manager.wg.Add(1)
		go manager.reloadPeriodically()
	}
	return manager, nil
}

// NewManager builds a manager over an in-memory catalog. It never reloads.
func NewManager(ctx context.Context, config Config, catalog *Catalog, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = &Catalog{}
	}
	if len(config.Bands) == 0 {
		config.Bands = DefaultBands()
	}

	calcOpts := []transit.CalculatorOption{transit.WithLogger(logger)}
	if config.ParallelThreshold > 0 {
		calcOpts = append(calcOpts, transit.WithParallelThreshold(config.ParallelThreshold))
	}
	calculator := transit.NewCalculator(calcOpts...)

	manager := &Manager{
		config:       config,
		base:         logger,
		logger:       logger.With(slog.String("component", "starmap_manager")),
		calculator:   calculator,
		finder:       routing.NewFinder(config.Finder, routing.WithLogger(logger), routing.WithCalculator(calculator)),
		routes:       newRouteStore(logger),
		shutdownChan: make(chan struct{}),
	}

	net, err := manager.buildNetwork(ctx, sanitizeCatalog(catalog, manager.logger), config.Bands)
	if err != nil {
		return nil, err
	}
	manager.current = net
	return manager, nil
}

// Shutdown stops the reload loop.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
	})
}

func (manager *Manager) snapshot() *network {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.current
}

func validateBands(bands []transit.Band) error {
	var errs []error
	seen := make(map[string]struct{}, len(bands))
	for _, b := range bands {
		if err := b.Validate(); err != nil {
			errs = append(errs, err)
		}
		if _, dup := seen[b.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate band id %q", b.ID))
		}
		seen[b.ID] = struct{}{}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBands, err)
	}
	return nil
}

func (manager *Manager) buildNetwork(ctx context.Context, catalog *Catalog, bands []transit.Band) (*network, error) {
	if err := validateBands(bands); err != nil {
		return nil, err
	}

	start := time.Now()
	routes, err := manager.calculator.CalculateBands(ctx, bands, catalog.Stars)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate transits: %w", err)
	}

	entries := make([]kdtree.Entry[int], len(catalog.Stars))
	byID := make(map[string]int, len(catalog.Stars))
	for i, s := range catalog.Stars {
		entries[i] = kdtree.Entry[int]{Point: s.Position, Value: i}
		byID[s.ID] = i
	}

	index := transit.NewIndex(spatial.WithLogger(manager.base))
	index.AddRoutes(routes)

	graph := routegraph.New(routegraph.WithLogger(manager.base))
	graph.BuildFromEdges(transit.Edges(routes))

	net := &network{
		catalog:  catalog,
		byID:     byID,
		starTree: kdtree.New(entries),
		bands:    append([]transit.Band(nil), bands...),
		transits: index,
		graph:    graph,
		built:    time.Now(),
	}

	logging.LogOperation(manager.logger, "starmap_network_built",
		slog.String("catalog", catalog.Name),
		slog.Int("stars", len(catalog.Stars)),
		slog.Int("transits", len(routes)),
		slog.Int("graph_vertices", graph.VertexCount()),
		slog.Int("graph_edges", graph.EdgeCount()),
		slog.Duration("elapsed", time.Since(start)))
	return net, nil
}

// swap installs net and re-resolves the saved routes against its stars.
func (manager *Manager) swap(net *network) {
	manager.staticMutex.Lock()
	manager.current = net
	manager.staticMutex.Unlock()

	manager.routes.reindex(net.lookup)
}

// RecomputeTransits recalculates transits for bands and swaps in the new
// transit index and route graph. Queries keep using the previous version
// until the swap.
func (manager *Manager) RecomputeTransits(ctx context.Context, bands []transit.Band) error {
	manager.rebuildMutex.Lock()
	defer manager.rebuildMutex.Unlock()

	current := manager.snapshot()
	net, err := manager.buildNetwork(ctx, current.catalog, bands)
	if err != nil {
		return err
	}
	net.modTime = current.modTime
	manager.swap(net)
	manager.finder.ClearCache()
	return nil
}

// Reload re-reads the catalog file and rebuilds everything derived from it.
func (manager *Manager) Reload(ctx context.Context) error {
	if manager.config.CatalogPath == "" {
		return errors.New("manager has no catalog file to reload")
	}
	manager.rebuildMutex.Lock()
	defer manager.rebuildMutex.Unlock()

	info, err := os.Stat(manager.config.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to stat star catalog: %w", err)
	}
	catalog, err := LoadCatalog(manager.config.CatalogPath, manager.logger)
	if err != nil {
		return err
	}

	net, err := manager.buildNetwork(ctx, catalog, manager.snapshot().bands)
	if err != nil {
		return err
	}
	net.modTime = info.ModTime()
	manager.swap(net)
	manager.finder.ClearCache()
	return nil
}

func (manager *Manager) reloadPeriodically() {
	defer manager.wg.Done()

	logger := manager.base.With(slog.String("component", "catalog_reloader"))
	ticker := time.NewTicker(manager.config.ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			info, err := os.Stat(manager.config.CatalogPath)
			if err != nil {
				logging.LogError(logger, "failed to stat star catalog", err,
					slog.String("path", manager.config.CatalogPath))
				continue
			}
			if !info.ModTime().After(manager.snapshot().modTime) {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			err = manager.Reload(ctx)
			cancel()
			if err != nil {
				logging.LogError(logger, "failed to reload star catalog", err,
					slog.String("path", manager.config.CatalogPath))
				continue
			}
			logging.LogOperation(logger, "star_catalog_reloaded",
				slog.String("path", manager.config.CatalogPath))
		case <-manager.shutdownChan:
			logging.LogOperation(logger, "shutting_down_catalog_reloads")
			return
		}
	}
}

func (n *network) lookup(id string) (transit.Star, bool) {
	i, ok := n.byID[id]
	if !ok {
		return transit.Star{}, false
	}
	return n.catalog.Stars[i], true
}

// Stars returns a copy of the catalog stars.
func (manager *Manager) Stars() []transit.Star {
	net := manager.snapshot()
	return append([]transit.Star(nil), net.catalog.Stars...)
}

func (manager *Manager) Star(id string) (transit.Star, error) {
	s, ok := manager.snapshot().lookup(id)
	if !ok {
		return transit.Star{}, fmt.Errorf("%w: %q", ErrStarNotFound, id)
	}
	return s, nil
}

// StarDistance is a star with its distance from a query point.
type StarDistance struct {
	Star     transit.Star `json:"star"`
	Distance float64      `json:"distance"`
}

// NearestStars returns up to n stars closest to p, nearest first.
func (manager *Manager) NearestStars(p geom.Point3, n int) []StarDistance {
	net := manager.snapshot()
	nearest := net.starTree.NearestN(p, n)
	out := make([]StarDistance, len(nearest))
	for i, e := range nearest {
		out[i] = StarDistance{Star: net.catalog.Stars[e.Value], Distance: e.Point.Distance(p)}
	}
	return out
}

// StarsWithinRadius returns the stars within radius of p in no particular order.
func (manager *Manager) StarsWithinRadius(p geom.Point3, radius float64) []transit.Star {
	net := manager.snapshot()
	found := net.starTree.RangeSearch(p, radius)
	out := make([]transit.Star, len(found))
	for i, e := range found {
		out[i] = net.catalog.Stars[e.Value]
	}
	return out
}

func (manager *Manager) Bands() []transit.Band {
	return append([]transit.Band(nil), manager.snapshot().bands...)
}

// VisibleTransits returns the transits near the viewpoint, optionally limited to one band.
func (manager *Manager) VisibleTransits(center geom.Point3, radius float64, bandID string) []transit.Transit {
	index := manager.snapshot().transits
	if bandID != "" {
		return index.FindForBandWithinRadius(bandID, center, radius)
	}
	return index.FindWithinRadius(center, radius)
}

func (manager *Manager) NearestTransit(p geom.Point3) (transit.Transit, bool) {
	return manager.snapshot().transits.Nearest(p)
}

func (manager *Manager) IsConnected(a, b string) bool {
	return manager.snapshot().graph.IsConnected(a, b)
}

func (manager *Manager) EdgeWeight(a, b string) (float64, bool) {
	return manager.snapshot().graph.EdgeWeight(a, b)
}

func (manager *Manager) KShortestPaths(source, target string, k int) ([]routegraph.Path, error) {
	return manager.snapshot().graph.KShortestPaths(source, target, k)
}

// FindRoutes plans routes over the whole catalog. When save is set the found
// routes are also added to the plotted routes.
func (manager *Manager) FindRoutes(ctx context.Context, opts routing.Options, save bool) ([]routing.Route, error) {
	net := manager.snapshot()
	found, err := manager.finder.FindRoutes(ctx, opts, net.catalog.Stars)
	if err != nil {
		return nil, err
	}
	if save {
		for _, r := range found {
			manager.routes.add(SavedRoute{
				ID:          r.ID,
				Name:        fmt.Sprintf("%s to %s #%d", r.Names[0], r.Names[len(r.Names)-1], r.Rank),
				Stars:       r.Path,
				TotalLength: r.TotalLength,
			}, net.lookup)
		}
	}
	return found, nil
}

// AddRoute plots a route through starIDs. Stars missing from the catalog are
// kept in the route but leave a gap in its drawn segments.
func (manager *Manager) AddRoute(name, color string, starIDs []string) (SavedRoute, error) {
	if len(starIDs) < 2 {
		return SavedRoute{}, fmt.Errorf("%w: a route needs at least two stars, got %d", ErrInvalidRoute, len(starIDs))
	}
	if name == "" {
		name = fmt.Sprintf("%s to %s", starIDs[0], starIDs[len(starIDs)-1])
	}
	r := manager.routes.add(SavedRoute{
		Name:  name,
		Color: color,
		Stars: append([]string(nil), starIDs...),
	}, manager.snapshot().lookup)

	logging.LogOperation(manager.logger, "route_added",
		slog.String("route", r.ID.String()),
		slog.Int("stars", len(r.Stars)))
	return r, nil
}

func (manager *Manager) RemoveRoute(id uuid.UUID) error {
	if !manager.routes.remove(id) {
		return fmt.Errorf("%w: %s", ErrRouteNotFound, id)
	}
	logging.LogOperation(manager.logger, "route_removed", slog.String("route", id.String()))
	return nil
}

func (manager *Manager) Route(id uuid.UUID) (SavedRoute, error) {
	r, ok := manager.routes.get(id)
	if !ok {
		return SavedRoute{}, fmt.Errorf("%w: %s", ErrRouteNotFound, id)
	}
	return r, nil
}

// Routes returns the plotted routes, oldest first.
func (manager *Manager) Routes() []SavedRoute {
	return manager.routes.list()
}

// VisibleRoutes returns the routes with at least one segment within radius of center.
func (manager *Manager) VisibleRoutes(center geom.Point3, radius float64) []SavedRoute {
	return manager.routes.visible(center, radius)
}

func (manager *Manager) RoutesInBox(box geom.Box3) []SavedRoute {
	return manager.routes.inBox(box)
}

// NearestRoute returns the route owning the segment whose midpoint is closest to p.
func (manager *Manager) NearestRoute(p geom.Point3) (SavedRoute, bool) {
	return manager.routes.nearest(p)
}

// Statistics summarises the manager state for the stats endpoint.
type Statistics struct {
	Catalog         string             `json:"catalog"`
	Stars           int                `json:"stars"`
	Bands           int                `json:"bands"`
	Transits        int                `json:"transits"`
	GraphVertices   int                `json:"graphVertices"`
	GraphEdges      int                `json:"graphEdges"`
	GraphComponents int                `json:"graphComponents"`
	Routes          int                `json:"routes"`
	RouteIndex      IndexStatistics    `json:"routeIndex"`
	TransitIndex    IndexStatistics    `json:"transitIndex"`
	RouteCache      routing.CacheStats `json:"routeCache"`
	BuiltAt         time.Time          `json:"builtAt"`
}

// IndexStatistics adds the derived rates to the raw index counters.
type IndexStatistics struct {
	Owners           int     `json:"owners"`
	Segments         int     `json:"segments"`
	Queries          int64   `json:"queries"`
	SegmentsChecked  int64   `json:"segmentsChecked"`
	SegmentsReturned int64   `json:"segmentsReturned"`
	Rebuilds         int64   `json:"rebuilds"`
	AvgReturned      float64 `json:"avgReturned"`
	CullRate         float64 `json:"cullRate"`
	Summary          string  `json:"summary"`
}

func indexStatistics(s spatial.Stats, summary string) IndexStatistics {
	return IndexStatistics{
		Owners:           s.Owners,
		Segments:         s.Segments,
		Queries:          s.Queries,
		SegmentsChecked:  s.SegmentsChecked,
		SegmentsReturned: s.SegmentsReturned,
		Rebuilds:         s.Rebuilds,
		AvgReturned:      s.AvgReturned(),
		CullRate:         s.CullRate(),
		Summary:          summary,
	}
}

func (manager *Manager) Statistics() Statistics {
	net := manager.snapshot()

	return Statistics{
		Catalog:         net.catalog.Name,
		Stars:           len(net.catalog.Stars),
		Bands:           len(net.bands),
		Transits:        net.transits.TotalTransits(),
		GraphVertices:   net.graph.VertexCount(),
		GraphEdges:      net.graph.EdgeCount(),
		GraphComponents: net.graph.ComponentCount(),
		Routes:          manager.routes.count(),
		RouteIndex:      indexStatistics(manager.routes.index.Stats(), manager.routes.index.Statistics()),
		TransitIndex:    indexStatistics(net.transits.Stats(), net.transits.Statistics()),
		RouteCache:      manager.finder.CacheStatistics(),
		BuiltAt:         net.built,
	}
}

// LogStatistics writes the index statistics at debug level.
func (manager *Manager) LogStatistics() {
	manager.routes.index.LogStatistics()
	manager.snapshot().transits.LogStatistics()
}
