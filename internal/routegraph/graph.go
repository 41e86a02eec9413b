// Package routegraph is a weighted undirected graph over star ids used for
// connectivity checks and k-shortest route discovery.
//
// The graph is only ever replaced wholesale by BuildFromEdges. Between builds it
// is read-only, so queries share one immutable snapshot.
package routegraph

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrVertexNotFound is returned when a path is requested to a star that is not in the graph.
var ErrVertexNotFound = errors.New("vertex not found in route graph")

// Edge is a weighted connection between two stars.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Path is a loopless walk through the graph with its total weight.
type Path struct {
	Vertices []string `json:"vertices"`
	Weight   float64  `json:"weight"`
}

// Hops is the number of edges in the path.
func (p Path) Hops() int {
	if len(p.Vertices) == 0 {
		return 0
	}
	return len(p.Vertices) - 1
}

func (p Path) String() string {
	return fmt.Sprintf("[%s] (%.2f)", strings.Join(p.Vertices, " : "), p.Weight)
}

type neighbor struct {
	to     int
	weight float64
}

// pair is an unordered vertex pair, lower index first.
type pair struct {
	a, b int
}

func makePair(u, v int) pair {
	if u > v {
		u, v = v, u
	}
	return pair{u, v}
}

// built is one immutable version of the graph.
type built struct {
	ids        map[string]int
	names      []string
	adjacency  [][]neighbor
	weights    map[pair]float64
	edges      []Edge
	components components
}

func emptyBuilt() *built {
	return &built{
		ids:        make(map[string]int),
		weights:    make(map[pair]float64),
		components: components{},
	}
}

func (b *built) vertex(id string) int {
	if i, ok := b.ids[id]; ok {
		return i
	}
	i := len(b.names)
	b.ids[id] = i
	b.names = append(b.names, id)
	b.adjacency = append(b.adjacency, nil)
	return i
}

// Graph is safe for concurrent use.
type Graph struct {
	logger *slog.Logger

	mu    sync.RWMutex
	state *built
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{logger: slog.Default(), state: emptyBuilt()}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(slog.String("component", "route_graph"))
	return g
}

func (g *Graph) snapshot() *built {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// BuildFromEdges replaces the whole graph. Self-loops are skipped and only the
// first edge seen for an unordered pair is kept.
func (g *Graph) BuildFromEdges(edges []Edge) {
	b := emptyBuilt()
	selfLoops, duplicates := 0, 0

	for _, e := range edges {
		if e.Source == e.Target {
			selfLoops++
			continue
		}
		u, v := b.vertex(e.Source), b.vertex(e.Target)
		key := makePair(u, v)
		if _, exists := b.weights[key]; exists {
			duplicates++
			continue
		}
		b.weights[key] = e.Weight
		b.adjacency[u] = append(b.adjacency[u], neighbor{to: v, weight: e.Weight})
		b.adjacency[v] = append(b.adjacency[v], neighbor{to: u, weight: e.Weight})
		b.edges = append(b.edges, e)
	}

	uf := newUnionFind(len(b.names))
	for key := range b.weights {
		uf.union(key.a, key.b)
	}
	b.components = uf.labels()

	g.mu.Lock()
	g.state = b
	g.mu.Unlock()

	g.logger.Debug("route graph built",
		slog.Int("vertices", len(b.names)),
		slog.Int("edges", len(b.edges)),
		slog.Int("self_loops_skipped", selfLoops),
		slog.Int("duplicates_skipped", duplicates))
}

// Clear returns the graph to the empty state.
func (g *Graph) Clear() {
	g.mu.Lock()
	g.state = emptyBuilt()
	g.mu.Unlock()
}

func (g *Graph) HasVertex(id string) bool {
	_, ok := g.snapshot().ids[id]
	return ok
}

func (g *Graph) VertexCount() int {
	return len(g.snapshot().names)
}

func (g *Graph) EdgeCount() int {
	return len(g.snapshot().edges)
}

func (g *Graph) IsEmpty() bool {
	return g.VertexCount() == 0
}

// Vertices returns the star ids in the order they were first seen.
func (g *Graph) Vertices() []string {
	b := g.snapshot()
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Edges returns the kept edges in insertion order.
func (g *Graph) Edges() []Edge {
	b := g.snapshot()
	out := make([]Edge, len(b.edges))
	copy(out, b.edges)
	return out
}

// IsConnected reports whether a and b lie in the same component. Unknown ids are never connected.
func (g *Graph) IsConnected(a, b string) bool {
	s := g.snapshot()
	u, ok := s.ids[a]
	if !ok {
		return false
	}
	v, ok := s.ids[b]
	if !ok {
		return false
	}
	return s.components.connected(u, v)
}

// EdgeWeight returns the weight of the edge between a and b. a is trimmed of
// surrounding whitespace, b is matched as given.
func (g *Graph) EdgeWeight(a, b string) (float64, bool) {
	s := g.snapshot()
	u, ok := s.ids[strings.TrimSpace(a)]
	if !ok {
		return 0, false
	}
	v, ok := s.ids[b]
	if !ok {
		return 0, false
	}
	w, ok := s.weights[makePair(u, v)]
	return w, ok
}

// ShortestPath returns the minimum-weight path between source and target.
// ok is false when either id is unknown or no path exists.
func (g *Graph) ShortestPath(source, target string) (Path, bool) {
	s := g.snapshot()
	u, ok := s.ids[source]
	if !ok {
		return Path{}, false
	}
	v, ok := s.ids[target]
	if !ok || !s.components.connected(u, v) {
		return Path{}, false
	}
	vertices, weight, ok := s.dijkstra(u, v, nil, nil)
	if !ok {
		return Path{}, false
	}
	return s.path(vertices, weight), true
}

// KShortestPaths returns up to k loopless paths from source to target in order
// of non-decreasing weight. An unknown target is an error wrapping
// ErrVertexNotFound. An unknown or disconnected source yields no paths.
func (g *Graph) KShortestPaths(source, target string, k int) ([]Path, error) {
	s := g.snapshot()
	v, ok := s.ids[target]
	if !ok {
		return nil, fmt.Errorf("k-shortest paths to %q: %w", target, ErrVertexNotFound)
	}

	paths := []Path{}
	u, ok := s.ids[source]
	if !ok || k <= 0 || !s.components.connected(u, v) {
		return paths, nil
	}
	if u == v {
		return append(paths, Path{Vertices: []string{source}}), nil
	}

	for _, c := range s.yen(u, v, k) {
		paths = append(paths, s.path(c.vertices, c.weight))
	}
	return paths, nil
}

func (b *built) path(vertices []int, weight float64) Path {
	names := make([]string, len(vertices))
	for i, v := range vertices {
		names[i] = b.names[v]
	}
	return Path{Vertices: names, Weight: weight}
}
