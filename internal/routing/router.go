package routing

import (
	"fmt"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// Path is one computed route variant
type Path struct {
	Nodes       []int64
	Coordinates [][2]float64
	SegmentIDs  []int64
	Length      float64
	SafetyCost  float64
}

// Router computes fastest and safest routes over a graph
type Router struct {
	graph *Graph
}

// NewRouter creates a router over an immutable graph
func NewRouter(graph *Graph) *Router {
	return &Router{graph: graph}
}

// Graph returns the underlying graph
func (r *Router) Graph() *Graph {
	return r.graph
}

// Route resolves both query points to their nearest nodes and computes the
// fastest and safest paths between them
func (r *Router) Route(q models.RouteQuery, scores map[int64]models.SegmentScore) (*models.RouteResult, error) {
	start, err := r.graph.NearestNode(q.StartLat, q.StartLng)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start node: %w", err)
	}
	end, err := r.graph.NearestNode(q.EndLat, q.EndLng)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve end node: %w", err)
	}

	return r.RouteBetween(start, end, scores)
}

// RouteBetween computes the fastest and safest paths between two nodes
func (r *Router) RouteBetween(start, end int64, scores map[int64]models.SegmentScore) (*models.RouteResult, error) {
	safest := Safest(scores)

	fast, err := r.Path(start, end, Fastest, safest)
	if err != nil {
		return nil, err
	}
	safe, err := r.Path(start, end, safest, safest)
	if err != nil {
		return nil, err
	}

	return &models.RouteResult{
		FastestRoute:      fast.Coordinates,
		SafestRoute:       safe.Coordinates,
		FastestSegmentIDs: fast.SegmentIDs,
		SafestSegmentIDs:  safe.SegmentIDs,
		FastestNodes:      fast.Nodes,
		SafestNodes:       safe.Nodes,
		FastestLength:     fast.Length,
		SafestLength:      safe.Length,
		FastestSafetyCost: fast.SafetyCost,
		SafestSafetyCost:  safe.SafetyCost,
		StartNode:         start,
		EndNode:           end,
	}, nil
}

// Path computes the route minimising weight and maps it to coordinates and
// segment ids. safety prices the result for comparison between variants.
func (r *Router) Path(start, end int64, weight, safety WeightFunc) (*Path, error) {
	nodes, _, err := r.graph.ShortestPath(start, end, weight)
	if err != nil {
		return nil, err
	}

	p := &Path{
		Nodes:       nodes,
		Coordinates: make([][2]float64, 0, len(nodes)),
		SegmentIDs:  make([]int64, 0, len(nodes)),
	}

	for i, n := range nodes {
		c, ok := r.graph.Coordinate(n)
		if !ok {
			return nil, apperrors.ErrMissingNode.WithDetail("node", n)
		}
		p.Coordinates = append(p.Coordinates, c)

		if i == 0 {
			continue
		}
		id, ok := r.graph.SegmentBetween(nodes[i-1], n)
		if !ok {
			return nil, apperrors.ErrNoPath.WithMessage("no edge from %d to %d", nodes[i-1], n)
		}
		p.SegmentIDs = append(p.SegmentIDs, id)
	}

	if p.Length, err = r.graph.PathCost(nodes, Fastest); err != nil {
		return nil, err
	}
	if p.SafetyCost, err = r.graph.PathCost(nodes, safety); err != nil {
		return nil, err
	}

	return p, nil
}
