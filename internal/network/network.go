// Package network builds the correlation network of Figure 3: it loads the
// node and edge tables, orders nodes into the published circular sequence,
// filters edges by correlation strength and level visibility, computes
// degrees for node sizing and lays everything out on a circle.
package network

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"salttol/internal/params"
)

// Node is one measured parameter in the correlation network.
type Node struct {
	ID    string
	Level params.Level
}

// Edge is an undirected correlation between two parameters.
type Edge struct {
	Source      string
	Target      string
	Correlation float64
}

// Class is the display class of an edge: sign of the correlation crossed
// with whether it stays within one biological level.
type Class int

const (
	PositiveIntra Class = iota
	NegativeIntra
	PositiveCross
	NegativeCross
)

// Intra reports whether the class is intra-level.
func (c Class) Intra() bool { return c == PositiveIntra || c == NegativeIntra }

// Graph is the loaded, unfiltered network.
type Graph struct {
	Nodes []Node
	Edges []Edge

	levels map[string]params.Level
}

// NewGraph builds a Graph and its id -> level index.
func NewGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{Nodes: nodes, Edges: edges, levels: make(map[string]params.Level, len(nodes))}
	for _, n := range nodes {
		g.levels[n.ID] = n.Level
	}
	return g
}

// Has reports whether the node id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.levels[id]
	return ok
}

// Classify returns the display class of an edge. Both endpoints must exist.
func (g *Graph) Classify(e Edge) Class {
	intra := g.levels[e.Source] == g.levels[e.Target]
	switch {
	case e.Correlation >= 0 && intra:
		return PositiveIntra
	case e.Correlation < 0 && intra:
		return NegativeIntra
	case e.Correlation >= 0:
		return PositiveCross
	default:
		return NegativeCross
	}
}

// LoadNodes reads the node table (columns: id, level).
func LoadNodes(path string) ([]Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening nodes table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading nodes header: %w", err)
	}
	idx := map[string]int{}
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	ii, ok := idx["id"]
	li, ok2 := idx["level"]
	if !ok || !ok2 {
		return nil, fmt.Errorf("nodes table %s: need columns id and level", path)
	}

	var nodes []Node
	for rowNum := 2; ; rowNum++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("nodes row %d: %w", rowNum, err)
		}
		nodes = append(nodes, Node{
			ID:    strings.TrimSpace(rec[ii]),
			Level: params.Level(strings.TrimSpace(rec[li])),
		})
	}
	return nodes, nil
}

// LoadEdges reads the edge table (columns: source, target, correlation).
// A malformed correlation value is a hard error.
func LoadEdges(path string) ([]Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening edges table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading edges header: %w", err)
	}
	idx := map[string]int{}
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	si, ok := idx["source"]
	ti, ok2 := idx["target"]
	ci, ok3 := idx["correlation"]
	if !ok || !ok2 || !ok3 {
		return nil, fmt.Errorf("edges table %s: need columns source, target and correlation", path)
	}

	var edges []Edge
	for rowNum := 2; ; rowNum++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("edges row %d: %w", rowNum, err)
		}
		corr, err := strconv.ParseFloat(strings.TrimSpace(rec[ci]), 64)
		if err != nil {
			return nil, fmt.Errorf("edges row %d: malformed correlation %q", rowNum, rec[ci])
		}
		edges = append(edges, Edge{
			Source:      strings.TrimSpace(rec[si]),
			Target:      strings.TrimSpace(rec[ti]),
			Correlation: corr,
		})
	}
	return edges, nil
}
