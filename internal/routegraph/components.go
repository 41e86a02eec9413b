package routegraph

import "sort"

// unionFind tracks connected components with path halving and union by rank.
// It is only used while building; queries read the frozen labels.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y int) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	switch {
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
}

// labels returns the component root of every element.
func (uf *unionFind) labels() []int {
	out := make([]int, len(uf.parent))
	for i := range out {
		out[i] = uf.find(i)
	}
	return out
}

// components maps each vertex to a component label. Read-only once built.
type components []int

func (c components) connected(u, v int) bool {
	return c[u] == c[v]
}

func (c components) count() int {
	seen := make(map[int]struct{})
	for _, label := range c {
		seen[label] = struct{}{}
	}
	return len(seen)
}

// Components groups the star ids by connected component. Each group is sorted
// and groups are ordered by their first member.
func (g *Graph) Components() [][]string {
	s := g.snapshot()

	byLabel := make(map[int][]string)
	for i, name := range s.names {
		byLabel[s.components[i]] = append(byLabel[s.components[i]], name)
	}

	groups := make([][]string, 0, len(byLabel))
	for _, members := range byLabel {
		sort.Strings(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

// ComponentCount is the number of connected components.
func (g *Graph) ComponentCount() int {
	return g.snapshot().components.count()
}
