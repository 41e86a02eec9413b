package routegraph

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

type candidate struct {
	vertices []int
	weight   float64
}

func (c candidate) key() string {
	var sb strings.Builder
	for i, v := range c.vertices {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// less orders candidates by weight, then hop count, then vertex sequence.
func (c candidate) less(o candidate) bool {
	if c.weight != o.weight {
		return c.weight < o.weight
	}
	if len(c.vertices) != len(o.vertices) {
		return len(c.vertices) < len(o.vertices)
	}
	return slices.Compare(c.vertices, o.vertices) < 0
}

func (b *built) weightOf(vertices []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(vertices); i++ {
		total += b.weights[makePair(vertices[i], vertices[i+1])]
	}
	return total
}

// yen enumerates up to k loopless paths from src to dst with Yen's algorithm.
// src and dst must be distinct and connected.
func (b *built) yen(src, dst, k int) []candidate {
	first, weight, ok := b.dijkstra(src, dst, nil, nil)
	if !ok {
		return nil
	}

	accepted := []candidate{{vertices: first, weight: weight}}
	seen := map[string]struct{}{accepted[0].key(): {}}
	var pending []candidate

	for len(accepted) < k {
		last := accepted[len(accepted)-1].vertices

		for i := 0; i < len(last)-1; i++ {
			spur := last[i]
			root := last[:i+1]

			blockedEdges := make(map[pair]struct{})
			for _, p := range accepted {
				if len(p.vertices) > i+1 && slices.Equal(p.vertices[:i+1], root) {
					blockedEdges[makePair(p.vertices[i], p.vertices[i+1])] = struct{}{}
				}
			}
			blockedVertices := make(map[int]struct{}, i)
			for _, v := range root[:i] {
				blockedVertices[v] = struct{}{}
			}

			spurPath, _, ok := b.dijkstra(spur, dst, blockedVertices, blockedEdges)
			if !ok {
				continue
			}

			vertices := make([]int, 0, len(root)+len(spurPath)-1)
			vertices = append(vertices, root[:i]...)
			vertices = append(vertices, spurPath...)
			c := candidate{vertices: vertices, weight: b.weightOf(vertices)}

			key := c.key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pending = append(pending, c)
		}

		if len(pending) == 0 {
			break
		}
		sort.Slice(pending, func(i, j int) bool { return pending[i].less(pending[j]) })
		accepted = append(accepted, pending[0])
		pending = pending[1:]
	}

	return accepted
}
