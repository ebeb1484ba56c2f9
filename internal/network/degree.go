package network

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
)

// Marker sizes for the smallest and largest node in a rendered network.
const (
	MinMarkerSize = 4.0
	MaxMarkerSize = 14.0
)

// Degrees builds an undirected simple graph over the filtered edges and
// returns each node's degree. Isolated nodes get 0. Duplicate edges in the
// input collapse to one, so parallel correlations never double-count.
func Degrees(nodes []Node, edges []Edge) (map[string]int, error) {
	g := graph.New(graph.StringHash)
	for _, n := range nodes {
		if err := g.AddVertex(n.ID); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("adding vertex %s: %w", n.ID, err)
		}
	}
	for _, e := range edges {
		err := g.AddEdge(e.Source, e.Target)
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("adding edge %s-%s: %w", e.Source, e.Target, err)
		}
	}

	adj, err := g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("adjacency map: %w", err)
	}
	degrees := make(map[string]int, len(nodes))
	for _, n := range nodes {
		degrees[n.ID] = len(adj[n.ID])
	}
	return degrees, nil
}

// MarkerSizes converts degrees to marker sizes, linearly interpolated
// between MinMarkerSize at degree 0 and MaxMarkerSize at the maximum
// observed degree. When no edges survive filtering every node takes the
// minimum size.
func MarkerSizes(degrees map[string]int) map[string]float64 {
	maxDeg := 0
	for _, d := range degrees {
		if d > maxDeg {
			maxDeg = d
		}
	}
	sizes := make(map[string]float64, len(degrees))
	for id, d := range degrees {
		if maxDeg == 0 {
			sizes[id] = MinMarkerSize
			continue
		}
		sizes[id] = MinMarkerSize + (MaxMarkerSize-MinMarkerSize)*float64(d)/float64(maxDeg)
	}
	return sizes
}
