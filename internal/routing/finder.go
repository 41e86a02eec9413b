package routing

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"starnav.teamgannon.org/internal/geom"
	"starnav.teamgannon.org/internal/metrics"
	"starnav.teamgannon.org/internal/routegraph"
	"starnav.teamgannon.org/internal/transit"
)

const (
	DefaultGraphThreshold      = 1500
	DefaultBruteForceThreshold = 100
	DefaultCacheSize           = 128
	DefaultCacheTTL            = 10 * time.Minute

	// routeBandID labels the transits computed for a route search.
	routeBandID = "route-search"
)

// Config tunes the finder.
type Config struct {
	// GraphThreshold is the largest pruned star set a search will accept.
	GraphThreshold int
	// BruteForceThreshold is the star count up to which transits are found by
	// comparing every pair instead of building a k-d tree.
	BruteForceThreshold int
	CacheSize           int
	CacheTTL            time.Duration
}

func DefaultConfig() Config {
	return Config{
		GraphThreshold:      DefaultGraphThreshold,
		BruteForceThreshold: DefaultBruteForceThreshold,
		CacheSize:           DefaultCacheSize,
		CacheTTL:            DefaultCacheTTL,
	}
}

// Finder answers route requests. It is safe for concurrent use.
type Finder struct {
	cfg        Config
	calculator *transit.Calculator
	cache      *expirable.LRU[string, []Route]
	logger     *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type Option func(*Finder)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

// WithCalculator replaces the default transit calculator.
func WithCalculator(c *transit.Calculator) Option {
	return func(f *Finder) {
		f.calculator = c
	}
}

func NewFinder(cfg Config, opts ...Option) *Finder {
	defaults := DefaultConfig()
	if cfg.GraphThreshold <= 0 {
		cfg.GraphThreshold = defaults.GraphThreshold
	}
	if cfg.BruteForceThreshold <= 0 {
		cfg.BruteForceThreshold = defaults.BruteForceThreshold
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaults.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}

	f := &Finder{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(slog.String("component", "route_finder"))
	if f.calculator == nil {
		f.calculator = transit.NewCalculator(transit.WithLogger(f.logger))
	}
	f.cache = expirable.NewLRU[string, []Route](cfg.CacheSize, nil, cfg.CacheTTL)
	return f
}

// FindRoutes finds up to opts.NumPaths routes from origin to destination over
// stars. Results are cached per request and star set; callers must not modify
// the returned routes.
func (f *Finder) FindRoutes(ctx context.Context, opts Options, stars []transit.Star) ([]Route, error) {
	routes, err := f.findRoutes(ctx, opts, stars)
	metrics.RouteFinderRequestsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		f.logger.Info("route search failed",
			slog.String("origin", opts.Origin),
			slog.String("destination", opts.Destination),
			slog.String("reason", err.Error()))
		return nil, err
	}
	return routes, nil
}

func (f *Finder) findRoutes(ctx context.Context, opts Options, stars []transit.Star) ([]Route, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.normalized()

	key := cacheKey(opts, stars)
	if cached, ok := f.cache.Get(key); ok {
		f.hits.Add(1)
		metrics.RouteCacheHitsTotal.Inc()
		return cached, nil
	}
	f.misses.Add(1)
	metrics.RouteCacheMissesTotal.Inc()

	pruned := Prune(stars, opts)
	if len(pruned) > f.cfg.GraphThreshold {
		return nil, fmt.Errorf("%w: %d stars after pruning, limit is %d", ErrTooManyStars, len(pruned), f.cfg.GraphThreshold)
	}

	byID := make(map[string]transit.Star, len(pruned))
	for _, s := range pruned {
		if _, dup := byID[s.ID]; !dup {
			byID[s.ID] = s
		}
	}
	if _, ok := byID[opts.Origin]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrOriginNotFound, opts.Origin)
	}
	if _, ok := byID[opts.Destination]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrDestinationNotFound, opts.Destination)
	}

	transits, err := f.transits(ctx, opts, pruned)
	if err != nil {
		return nil, err
	}
	if len(transits) == 0 {
		return nil, ErrNoTransits
	}

	graph := routegraph.New(routegraph.WithLogger(f.logger))
	graph.BuildFromEdges(transit.Edges(transits))
	if !graph.IsConnected(opts.Origin, opts.Destination) {
		return nil, fmt.Errorf("%w: %q and %q", ErrNotConnected, opts.Origin, opts.Destination)
	}

	paths, err := graph.KShortestPaths(opts.Origin, opts.Destination, opts.NumPaths)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoRoutes
	}

	routes := make([]Route, 0, len(paths))
	for i, p := range paths {
		routes = append(routes, buildRoute(i+1, opts, p, byID))
	}

	f.logger.Info("route search complete",
		slog.String("origin", opts.Origin),
		slog.String("destination", opts.Destination),
		slog.Int("stars", len(pruned)),
		slog.Int("transits", len(transits)),
		slog.Int("routes", len(routes)))

	f.cache.Add(key, routes)
	return routes, nil
}

func (f *Finder) transits(ctx context.Context, opts Options, stars []transit.Star) ([]transit.Route, error) {
	band := transit.Band{ID: routeBandID, Lower: opts.LowerBound, Upper: opts.UpperBound, Enabled: true}
	if len(stars) <= f.cfg.BruteForceThreshold {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return transit.BruteForce(band, stars), nil
	}
	return f.calculator.Calculate(ctx, band, stars)
}

// Prune drops stars whose spectral class letter or polity is excluded.
func Prune(stars []transit.Star, opts Options) []transit.Star {
	opts = opts.normalized()
	if len(opts.SpectralExclusions) == 0 && len(opts.PolityExclusions) == 0 {
		return stars
	}

	spectral := make(map[string]struct{}, len(opts.SpectralExclusions))
	for _, s := range opts.SpectralExclusions {
		spectral[s] = struct{}{}
	}
	polities := make(map[string]struct{}, len(opts.PolityExclusions))
	for _, p := range opts.PolityExclusions {
		polities[p] = struct{}{}
	}

	pruned := make([]transit.Star, 0, len(stars))
	for _, s := range stars {
		if _, excluded := spectral[s.SpectralLetter()]; excluded {
			continue
		}
		if _, excluded := polities[s.Polity]; excluded {
			continue
		}
		pruned = append(pruned, s)
	}
	return pruned
}

func buildRoute(rank int, opts Options, p routegraph.Path, byID map[string]transit.Star) Route {
	r := Route{
		ID:          uuid.New(),
		Rank:        rank,
		Origin:      opts.Origin,
		Destination: opts.Destination,
		Path:        p.Vertices,
		Names:       make([]string, len(p.Vertices)),
		Coordinates: make([]geom.Point3, len(p.Vertices)),
		Legs:        make([]Leg, 0, p.Hops()),
		TotalLength: p.Weight,
	}
	for i, id := range p.Vertices {
		s := byID[id]
		r.Names[i] = s.Name
		r.Coordinates[i] = s.Position
		if i > 0 {
			r.Legs = append(r.Legs, Leg{
				From:     p.Vertices[i-1],
				To:       id,
				Distance: r.Coordinates[i-1].Distance(s.Position),
			})
		}
	}
	return r
}

// cacheKey identifies a normalized request against a particular star set.
func cacheKey(opts Options, stars []transit.Star) string {
	h := xxhash.New()
	var buf [8]byte
	for _, s := range stars {
		for _, field := range [...]string{s.ID, s.SpectralClass, s.Polity} {
			_, _ = h.WriteString(field)
			_, _ = h.Write([]byte{0})
		}
		for _, c := range [...]float64{s.Position.X, s.Position.Y, s.Position.Z} {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c))
			_, _ = h.Write(buf[:])
		}
	}

	return strings.Join([]string{
		opts.Origin,
		opts.Destination,
		strconv.FormatFloat(opts.LowerBound, 'g', -1, 64),
		strconv.FormatFloat(opts.UpperBound, 'g', -1, 64),
		strconv.Itoa(opts.NumPaths),
		strings.Join(opts.SpectralExclusions, ","),
		strings.Join(opts.PolityExclusions, ","),
		strconv.FormatUint(h.Sum64(), 16),
	}, "|")
}

// CacheStats reports route cache usage.
type CacheStats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func (f *Finder) CacheStatistics() CacheStats {
	return CacheStats{
		Size:   f.cache.Len(),
		Hits:   f.hits.Load(),
		Misses: f.misses.Load(),
	}
}

// ClearCache drops every cached result. Counters are kept.
func (f *Finder) ClearCache() {
	f.cache.Purge()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidOptions):
		return "invalid_options"
	case errors.Is(err, ErrOriginNotFound), errors.Is(err, ErrDestinationNotFound):
		return "star_not_found"
	case errors.Is(err, ErrTooManyStars):
		return "too_many_stars"
	case errors.Is(err, ErrNoTransits), errors.Is(err, ErrNotConnected), errors.Is(err, ErrNoRoutes):
		return "no_route"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
