package transit

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"starnav.teamgannon.org/internal/kdtree"
	"starnav.teamgannon.org/internal/metrics"
)

// DefaultParallelThreshold is the star count from which the per-star range
// searches are spread across workers.
const DefaultParallelThreshold = 500

// Calculator finds transits with one k-d tree range search per star.
type Calculator struct {
	logger            *slog.Logger
	parallelThreshold int
	workers           int
}

type CalculatorOption func(*Calculator)

func WithLogger(logger *slog.Logger) CalculatorOption {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// WithParallelThreshold sets the star count from which work is parallelised.
// Zero or less disables parallel calculation.
func WithParallelThreshold(n int) CalculatorOption {
	return func(c *Calculator) {
		c.parallelThreshold = n
	}
}

// WithWorkers caps the number of concurrent workers. Defaults to GOMAXPROCS.
func WithWorkers(n int) CalculatorOption {
	return func(c *Calculator) {
		if n > 0 {
			c.workers = n
		}
	}
}

func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		logger:            slog.Default(),
		parallelThreshold: DefaultParallelThreshold,
		workers:           runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "transit_calculator"))
	return c
}

// classifier assigns a pair distance to a band, or rejects it.
type classifier func(distance float64) (Band, bool)

// Calculate returns every pair of stars whose distance falls inside band. The
// band's Enabled flag is not consulted. Each unordered pair appears once, with
// Source being the star that comes first in stars.
func (c *Calculator) Calculate(ctx context.Context, band Band, stars []Star) ([]Route, error) {
	if band.Upper <= 0 {
		return []Route{}, nil
	}
	return c.run(ctx, "kdtree", stars, band.Upper, func(d float64) (Band, bool) {
		return band, band.Contains(d)
	})
}

// CalculateBands computes transits for several bands with a single tree. A
// pair is assigned to the first enabled band that contains its distance.
func (c *Calculator) CalculateBands(ctx context.Context, bands []Band, stars []Star) ([]Route, error) {
	enabled := make([]Band, 0, len(bands))
	maxRange := 0.0
	for _, b := range bands {
		if b.Enabled {
			enabled = append(enabled, b)
			maxRange = max(maxRange, b.Upper)
		}
	}
	if maxRange <= 0 {
		return []Route{}, nil
	}

	return c.run(ctx, "multi_band", stars, maxRange, func(d float64) (Band, bool) {
		for _, b := range enabled {
			if b.Contains(d) {
				return b, true
			}
		}
		return Band{}, false
	})
}

func (c *Calculator) run(ctx context.Context, strategy string, stars []Star, radius float64, classify classifier) ([]Route, error) {
	stars = usableStars(c.logger, stars)
	if len(stars) == 0 {
		return []Route{}, nil
	}

	start := time.Now()
	entries := make([]kdtree.Entry[int], len(stars))
	for i, s := range stars {
		entries[i] = kdtree.Entry[int]{Point: s.Position, Value: i}
	}
	tree := kdtree.New(entries)

	var routes []Route
	var err error
	if c.parallelThreshold > 0 && len(stars) >= c.parallelThreshold && c.workers > 1 {
		strategy += "_parallel"
		routes, err = c.parallel(ctx, tree, stars, radius, classify)
	} else {
		routes, err = c.sequential(ctx, tree, stars, radius, classify)
	}
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.TransitCalculationsTotal.WithLabelValues(strategy).Inc()
	metrics.TransitCalculationDurationMs.Observe(float64(elapsed.Microseconds()) / 1000)
	c.logger.Debug("transits calculated",
		slog.String("strategy", strategy),
		slog.Int("stars", len(stars)),
		slog.Float64("radius", radius),
		slog.Int("routes", len(routes)),
		slog.Duration("elapsed", elapsed))

	return routes, nil
}

// transitsFrom returns the transits from star i to every later star in range.
func transitsFrom(tree *kdtree.Tree[int], stars []Star, i int, radius float64, classify classifier) []Route {
	origin := stars[i]
	neighbors := tree.RangeSearch(origin.Position, radius)
	sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].Value < neighbors[b].Value })

	var routes []Route
	for _, n := range neighbors {
		j := n.Value
		if j <= i {
			continue
		}
		distance := origin.Position.Distance(n.Point)
		band, ok := classify(distance)
		if !ok {
			continue
		}
		routes = append(routes, Route{
			BandID:   band.ID,
			Source:   origin,
			Target:   stars[j],
			Distance: distance,
		})
	}
	return routes
}

func (c *Calculator) sequential(ctx context.Context, tree *kdtree.Tree[int], stars []Star, radius float64, classify classifier) ([]Route, error) {
	routes := []Route{}
	for i := range stars {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		routes = append(routes, transitsFrom(tree, stars, i, radius, classify)...)
	}
	return routes, nil
}

// parallel splits the stars into contiguous chunks. Results are concatenated
// in chunk order, so the output matches the sequential calculation.
func (c *Calculator) parallel(ctx context.Context, tree *kdtree.Tree[int], stars []Star, radius float64, classify classifier) ([]Route, error) {
	chunks := c.workers * 4
	chunkSize := (len(stars) + chunks - 1) / chunks
	results := make([][]Route, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for chunk := 0; chunk < chunks; chunk++ {
		lo := chunk * chunkSize
		hi := min(lo+chunkSize, len(stars))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			var out []Route
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out = append(out, transitsFrom(tree, stars, i, radius, classify)...)
			}
			results[chunk] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	routes := make([]Route, 0, total)
	for _, r := range results {
		routes = append(routes, r...)
	}
	return routes, nil
}

// BruteForce compares every pair directly. It is faster than building a tree
// for small star sets and serves as the reference result.
func BruteForce(band Band, stars []Star) []Route {
	routes := []Route{}
	for i := range stars {
		for j := i + 1; j < len(stars); j++ {
			d := stars[i].Position.Distance(stars[j].Position)
			if band.Contains(d) {
				routes = append(routes, Route{
					BandID:   band.ID,
					Source:   stars[i],
					Target:   stars[j],
					Distance: d,
				})
			}
		}
	}
	metrics.TransitCalculationsTotal.WithLabelValues("brute_force").Inc()
	return routes
}

func usableStars(logger *slog.Logger, stars []Star) []Star {
	nonFinite := func(s Star) bool { return !s.Position.IsFinite() }
	if !slices.ContainsFunc(stars, nonFinite) {
		return stars
	}

	out := make([]Star, 0, len(stars))
	for _, s := range stars {
		if nonFinite(s) {
			logger.Warn("star with non-finite position skipped", slog.String("star", s.ID))
			continue
		}
		out = append(out, s)
	}
	return out
}
