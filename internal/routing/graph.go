package routing

import (
	"github.com/paulmach/orb"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/spatial"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// driftEpsilon is the tolerance (degrees) below which two endpoint
// coordinates of the same node are considered equal
const driftEpsilon = 1e-7

// Edge is one walking direction of a segment
type Edge struct {
	From      int64
	To        int64
	SegmentID int64
	Length    float64
}

// NodeDrift records a segment that disagrees with the first-seen coordinate
// of a shared node
type NodeDrift struct {
	NodeID    int64
	SegmentID int64
	Kept      [2]float64
	Seen      [2]float64
}

// Graph is a directed street graph built once from segment data. It is
// read-only after construction and safe for concurrent use.
type Graph struct {
	nodes  []int64 // first-seen order
	coords map[int64][2]float64
	edges  map[int64][]Edge
	drifts []NodeDrift
	count  int
}

// NewGraph adds edges u→v and v→u for every segment. A node's coordinate is
// fixed by the first segment that references it; later disagreements are
// recorded in Drifts but never corrected.
func NewGraph(segments []models.Segment) (*Graph, error) {
	if len(segments) == 0 {
		return nil, apperrors.ErrEmptySegmentSet
	}

	g := &Graph{
		coords: make(map[int64][2]float64),
		edges:  make(map[int64][]Edge),
	}

	for _, s := range segments {
		if len(s.Coordinates) < 2 {
			return nil, apperrors.ErrMalformedSegment.
				WithMessage("segment %d has no endpoint coordinates", s.SegmentID).
				WithDetail("segment_id", s.SegmentID)
		}

		g.addNode(s.U, s.Start(), s.SegmentID)
		g.addNode(s.V, s.End(), s.SegmentID)

		g.edges[s.U] = append(g.edges[s.U], Edge{From: s.U, To: s.V, SegmentID: s.SegmentID, Length: s.Length})
		g.edges[s.V] = append(g.edges[s.V], Edge{From: s.V, To: s.U, SegmentID: s.SegmentID, Length: s.Length})
		g.count += 2
	}

	return g, nil
}

func (g *Graph) addNode(id int64, coord [2]float64, segmentID int64) {
	kept, ok := g.coords[id]
	if !ok {
		g.coords[id] = coord
		g.nodes = append(g.nodes, id)
		return
	}
	if !spatial.SameCoordinate(kept, coord, driftEpsilon) {
		g.drifts = append(g.drifts, NodeDrift{NodeID: id, SegmentID: segmentID, Kept: kept, Seen: coord})
	}
}

// NodeCount returns the number of distinct nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges
func (g *Graph) EdgeCount() int {
	return g.count
}

// Drifts returns the shared-endpoint disagreements found while building
func (g *Graph) Drifts() []NodeDrift {
	return g.drifts
}

// Coordinate returns the [lng, lat] of a node
func (g *Graph) Coordinate(node int64) ([2]float64, bool) {
	c, ok := g.coords[node]
	return c, ok
}

// Edges returns the outgoing edges of a node in insertion order
func (g *Graph) Edges(node int64) []Edge {
	return g.edges[node]
}

// NearestNode returns the node closest to the point by planar distance.
// Ties resolve to the node seen first.
func (g *Graph) NearestNode(lat, lng float64) (int64, error) {
	if g == nil || len(g.nodes) == 0 {
		return 0, apperrors.ErrEmptySegmentSet
	}

	p := spatial.Point(lng, lat)
	best := g.nodes[0]
	bestDist := spatial.PlanarDistance(p, orb.Point(g.coords[best]))

	for _, id := range g.nodes[1:] {
		if d := spatial.PlanarDistance(p, orb.Point(g.coords[id])); d < bestDist {
			best = id
			bestDist = d
		}
	}

	return best, nil
}

// SegmentBetween returns the lowest segment id among the edges a→b
func (g *Graph) SegmentBetween(a, b int64) (int64, bool) {
	var (
		id    int64
		found bool
	)
	for _, e := range g.edges[a] {
		if e.To == b && (!found || e.SegmentID < id) {
			id = e.SegmentID
			found = true
		}
	}
	return id, found
}

// cheapestEdge returns the lowest-weight edge a→b
func (g *Graph) cheapestEdge(a, b int64, weight WeightFunc) (Edge, float64, bool) {
	var (
		best  Edge
		bestW float64
		found bool
	)
	for _, e := range g.edges[a] {
		if e.To != b {
			continue
		}
		if w := weight(e); !found || w < bestW {
			best, bestW, found = e, w, true
		}
	}
	return best, bestW, found
}
