package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salttol/internal/params"
)

func testGraph() *Graph {
	nodes := []Node{
		{ID: "A", Level: "level1"},
		{ID: "B", Level: "level1"},
		{ID: "C", Level: "level2"},
	}
	edges := []Edge{
		{Source: "A", Target: "B", Correlation: 0.5},
		{Source: "A", Target: "C", Correlation: -0.4},
		{Source: "B", Target: "C", Correlation: 0.1},
	}
	return NewGraph(nodes, edges)
}

func TestFilterScenario(t *testing.T) {
	g := testGraph()
	kept := g.Filter(DefaultFilter())

	require.Len(t, kept, 2)
	assert.Equal(t, Edge{Source: "A", Target: "B", Correlation: 0.5}, kept[0])
	assert.Equal(t, Edge{Source: "A", Target: "C", Correlation: -0.4}, kept[1])
	assert.Equal(t, PositiveIntra, g.Classify(kept[0]))
	assert.Equal(t, NegativeCross, g.Classify(kept[1]))

	degrees, err := Degrees(g.Nodes, kept)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2, "B": 1, "C": 1}, degrees)
}

func TestFilterInclusiveThresholds(t *testing.T) {
	g := NewGraph(
		[]Node{{ID: "A", Level: "l1"}, {ID: "B", Level: "l2"}, {ID: "C", Level: "l1"}},
		[]Edge{
			{Source: "A", Target: "B", Correlation: 0.35},  // exactly T_pos: kept
			{Source: "A", Target: "C", Correlation: -0.30}, // exactly T_neg: kept
			{Source: "B", Target: "C", Correlation: 0.349}, // strictly inside: dropped
		},
	)
	kept := g.Filter(DefaultFilter())
	require.Len(t, kept, 2)
	assert.Equal(t, 0.35, kept[0].Correlation)
	assert.Equal(t, -0.30, kept[1].Correlation)
}

func TestFilterUnknownEndpointsDroppedSilently(t *testing.T) {
	g := NewGraph(
		[]Node{{ID: "A", Level: "l1"}},
		[]Edge{{Source: "A", Target: "ghost", Correlation: 0.9}},
	)
	assert.Empty(t, g.Filter(DefaultFilter()))
}

func TestFilterClassToggles(t *testing.T) {
	g := testGraph()

	opts := DefaultFilter()
	opts.ShowIntra = false
	kept := g.Filter(opts)
	require.Len(t, kept, 1)
	assert.False(t, g.Classify(kept[0]).Intra())

	opts = DefaultFilter()
	opts.ShowCross = false
	kept = g.Filter(opts)
	require.Len(t, kept, 1)
	assert.True(t, g.Classify(kept[0]).Intra())

	// Weak edges stay dropped no matter the toggles.
	opts = DefaultFilter()
	opts.ShowIntra = true
	opts.ShowCross = true
	for _, e := range g.Filter(opts) {
		assert.True(t, e.Correlation >= 0.35 || e.Correlation <= -0.30)
	}
}

func TestCrossOnlyDegreeNeverExceedsFullDegree(t *testing.T) {
	g := testGraph()

	full, err := Degrees(g.Nodes, g.Filter(DefaultFilter()))
	require.NoError(t, err)

	opts := DefaultFilter()
	opts.ShowIntra = false
	cross, err := Degrees(g.Nodes, g.Filter(opts))
	require.NoError(t, err)

	for id, d := range cross {
		assert.LessOrEqual(t, d, full[id], "node %s", id)
	}
}

func TestOrderIsPermutation(t *testing.T) {
	nodes := []Node{
		{ID: "x"}, {ID: "b"}, {ID: "a"}, {ID: "y"},
	}
	ordered := Order(nodes, []string{"a", "b", "missing"}, nil)

	require.Len(t, ordered, len(nodes))
	ids := make([]string, len(ordered))
	seen := map[string]bool{}
	for i, n := range ordered {
		ids[i] = n.ID
		assert.False(t, seen[n.ID], "duplicate %s", n.ID)
		seen[n.ID] = true
	}
	// Reference entries first in reference order, rest in encounter order.
	assert.Equal(t, []string{"a", "b", "x", "y"}, ids)
}

func TestOrderExcluded(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	ordered := Order(nodes, []string{"a", "b", "c"}, []string{"b"})
	require.Len(t, ordered, 2)
	assert.Equal(t, "a", ordered[0].ID)
	assert.Equal(t, "c", ordered[1].ID)
}

func TestRadialLabel(t *testing.T) {
	cases := []struct {
		angle    float64
		rotation float64
		right    bool
	}{
		{0, 0, false},
		{180, 0, true},
		{95, 275, true},
		{90, 90, false},   // boundary: not flipped
		{270, 270, false}, // boundary: not flipped
		{-90, 270, false}, // normalized before the check
	}
	for _, c := range cases {
		rot, right := RadialLabel(c.angle)
		assert.InDelta(t, c.rotation, rot, 1e-12, "angle %v", c.angle)
		assert.Equal(t, c.right, right, "angle %v", c.angle)
	}
}

func TestCircularLayoutGeometry(t *testing.T) {
	pl := CircularLayout(4, StartAngle)
	require.Len(t, pl, 4)

	assert.InDelta(t, 120, pl[0].Angle, 1e-12)
	assert.InDelta(t, 30, pl[1].Angle, 1e-12) // clockwise
	assert.InDelta(t, -60, pl[2].Angle, 1e-12)

	for _, p := range pl {
		assert.InDelta(t, NodeRadius, p.X*p.X+p.Y*p.Y, 1e-9)
		// Label sits on the same ray, further out.
		assert.InDelta(t, LabelRadius*p.X, p.LabelX, 1e-9)
		assert.InDelta(t, LabelRadius*p.Y, p.LabelY, 1e-9)
	}
}

func TestMarkerSizes(t *testing.T) {
	sizes := MarkerSizes(map[string]int{"a": 0, "b": 2, "c": 4})
	assert.Equal(t, MinMarkerSize, sizes["a"])
	assert.Equal(t, (MinMarkerSize+MaxMarkerSize)/2, sizes["b"])
	assert.Equal(t, MaxMarkerSize, sizes["c"])

	// Degenerate: nothing survives filtering.
	sizes = MarkerSizes(map[string]int{"a": 0, "b": 0})
	assert.Equal(t, MinMarkerSize, sizes["a"])
	assert.Equal(t, MinMarkerSize, sizes["b"])
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "nodes.csv")
	edgesPath := filepath.Join(dir, "edges.csv")

	require.NoError(t, os.WriteFile(nodesPath, []byte("id,level\nABA (ng/mg),hormonal\nFv/Fm,leaf_functionality\n"), 0o644))
	require.NoError(t, os.WriteFile(edgesPath, []byte("source,target,correlation,p_value\nABA (ng/mg),Fv/Fm,-0.42,0.001\n"), 0o644))

	nodes, err := LoadNodes(nodesPath)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, params.Hormonal, nodes[0].Level)

	edges, err := LoadEdges(edgesPath)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, -0.42, edges[0].Correlation)
}

func TestLoadEdgesMalformedCorrelation(t *testing.T) {
	dir := t.TempDir()
	edgesPath := filepath.Join(dir, "edges.csv")
	require.NoError(t, os.WriteFile(edgesPath, []byte("source,target,correlation\na,b,strong\n"), 0o644))

	_, err := LoadEdges(edgesPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed correlation")
}
