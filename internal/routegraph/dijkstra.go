package routegraph

import (
	"container/heap"
	"math"
)

type queueItem struct {
	vertex int
	dist   float64
}

// distanceQueue is a min-heap on distance, ties broken by vertex index so that
// equal-weight searches are deterministic.
type distanceQueue []queueItem

func (q distanceQueue) Len() int { return len(q) }
func (q distanceQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].vertex < q[j].vertex
}
func (q distanceQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *distanceQueue) Push(x any)   { *q = append(*q, x.(queueItem)) }
func (q *distanceQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// dijkstra finds the lightest path from src to dst, ignoring blocked vertices
// and edges. Either set may be nil.
func (b *built) dijkstra(src, dst int, blockedVertices map[int]struct{}, blockedEdges map[pair]struct{}) ([]int, float64, bool) {
	n := len(b.names)
	dist := make([]float64, n)
	prev := make([]int, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[src] = 0

	q := &distanceQueue{{vertex: src}}
	for q.Len() > 0 {
		item := heap.Pop(q).(queueItem)
		u := item.vertex
		if done[u] {
			continue
		}
		done[u] = true
		if u == dst {
			break
		}

		for _, nb := range b.adjacency[u] {
			if done[nb.to] {
				continue
			}
			if _, blocked := blockedVertices[nb.to]; blocked {
				continue
			}
			if _, blocked := blockedEdges[makePair(u, nb.to)]; blocked {
				continue
			}
			if d := dist[u] + nb.weight; d < dist[nb.to] {
				dist[nb.to] = d
				prev[nb.to] = u
				heap.Push(q, queueItem{vertex: nb.to, dist: d})
			}
		}
	}

	if !done[dst] {
		return nil, 0, false
	}

	var path []int
	for v := dst; v != -1; v = prev[v] {
		path = append(path, v)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist[dst], true
}
