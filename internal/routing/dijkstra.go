package routing

import (
	"container/heap"
	"math"

	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// ShortestPath runs Dijkstra from start to goal and returns the node sequence
// and its total cost. Equal-cost candidates are settled in push order.
func (g *Graph) ShortestPath(start, goal int64, weight WeightFunc) ([]int64, float64, error) {
	if _, ok := g.coords[start]; !ok {
		return nil, 0, apperrors.ErrMissingNode.WithDetail("node", start)
	}
	if _, ok := g.coords[goal]; !ok {
		return nil, 0, apperrors.ErrMissingNode.WithDetail("node", goal)
	}
	if start == goal {
		return []int64{start}, 0, nil
	}

	dist := map[int64]float64{start: 0}
	cameFrom := make(map[int64]int64)
	closed := make(map[int64]bool)

	pq := &priorityQueue{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &pqItem{node: start, priority: 0, seq: seq})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		current := item.node
		if current == goal {
			return reconstructPath(cameFrom, current), dist[current], nil
		}

		if closed[current] {
			continue
		}
		closed[current] = true

		for _, e := range g.edges[current] {
			if closed[e.To] {
				continue
			}
			w := weight(e)
			if w < 0 || math.IsNaN(w) {
				continue
			}

			tentative := dist[current] + w
			if old, ok := dist[e.To]; !ok || tentative < old {
				dist[e.To] = tentative
				cameFrom[e.To] = current
				seq++
				heap.Push(pq, &pqItem{node: e.To, priority: tentative, seq: seq})
			}
		}
	}

	return nil, 0, apperrors.ErrNoPath.
		WithMessage("no path found from %d to %d", start, goal).
		WithDetail("start_node", start).
		WithDetail("end_node", goal)
}

// PathCost sums the cheapest parallel edge between each consecutive pair
func (g *Graph) PathCost(nodes []int64, weight WeightFunc) (float64, error) {
	var total float64
	for i := 1; i < len(nodes); i++ {
		_, w, ok := g.cheapestEdge(nodes[i-1], nodes[i], weight)
		if !ok {
			return 0, apperrors.ErrNoPath.WithMessage("no edge from %d to %d", nodes[i-1], nodes[i])
		}
		total += w
	}
	return total, nil
}

func reconstructPath(cameFrom map[int64]int64, current int64) []int64 {
	path := []int64{current}
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pqItem struct {
	node     int64
	priority float64
	seq      int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}
