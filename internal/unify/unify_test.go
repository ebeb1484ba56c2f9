package unify

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salttol/internal/dataset"
	"salttol/internal/params"
)

// table builds a minimal in-memory dataset: two parameters over two
// varieties and three treatments, three replicates each.
func table(values map[string]map[string][]float64) *dataset.Table {
	t := &dataset.Table{}
	for key, perParam := range values {
		parts := strings.SplitN(key, "/", 2)
		n := 0
		for _, vs := range perParam {
			if len(vs) > n {
				n = len(vs)
			}
		}
		for i := 0; i < n; i++ {
			row := dataset.Row{
				Variety:   parts[0],
				Treatment: parts[1],
				GDD:       math.NaN(),
				Values:    map[string]float64{},
			}
			for p, vs := range perParam {
				if i < len(vs) {
					row.Values[p] = vs[i]
				}
				if !contains(t.Parameters, p) {
					t.Parameters = append(t.Parameters, p)
				}
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func TestActivitiesControlPinnedAtOne(t *testing.T) {
	tbl := table(map[string]map[string][]float64{
		"CV/C":  {"Fv/Fm": {0.80, 0.82, 0.81}},
		"CV/S2": {"Fv/Fm": {0.60, 0.62, 0.61}},
	})
	cfg := params.DefaultConfig()

	acts := Activities(tbl, cfg)
	byKey := map[string]float64{}
	for _, a := range acts {
		byKey[a.Variety+"/"+a.Treatment+"/"+string(a.Level)] = a.Score
	}

	assert.InDelta(t, 1.0, byKey["CV/C/leaf_functionality"], 1e-12)
	assert.InDelta(t, 0.61/0.81, byKey["CV/S2/leaf_functionality"], 1e-9)
}

func TestRankingsScoresAndClamp(t *testing.T) {
	// Strong separation across treatments gives a huge F; the F score must
	// clamp at 100.
	tbl := table(map[string]map[string][]float64{
		"CV/C":  {"Fv/Fm": {0.80, 0.81, 0.82}},
		"CV/S1": {"Fv/Fm": {0.70, 0.71, 0.72}},
		"CV/S2": {"Fv/Fm": {0.50, 0.51, 0.52}},
	})
	cfg := params.DefaultConfig()

	rankings := Rankings(tbl, cfg)
	require.NotEmpty(t, rankings)

	var r *Ranking
	for i := range rankings {
		if rankings[i].Parameter == "Fv/Fm" && rankings[i].Variety == "CV" {
			r = &rankings[i]
		}
	}
	require.NotNil(t, r)

	assert.Equal(t, params.Stability, r.Category)
	assert.Equal(t, 100.0, r.FScore)
	assert.Greater(t, r.EtaSquared, 0.9)
	assert.InDelta(t, (0.51-0.81)/0.81*100, r.PctChange, 1e-9)
	assert.Equal(t, math.Abs(r.PctChange), r.PctScore)
	assert.InDelta(t, 0.4*r.FScore+0.4*r.EtaScore+0.2*r.PctScore, r.CombinedScore(), 1e-12)
}

func TestNetworkTablesThresholds(t *testing.T) {
	// Fv/Fm and stomatal conductance move together perfectly; ABA is pure
	// alternation with a tiny monotone trend against them but far too weak
	// and noisy to pass p < 0.05.
	fv := []float64{0.80, 0.78, 0.75, 0.70, 0.66, 0.60, 0.55, 0.52}
	sc := []float64{210, 200, 190, 170, 150, 130, 110, 100}
	aba := []float64{1.0, 3.0, 1.1, 2.9, 1.2, 3.1, 1.0, 2.8}

	tbl := &dataset.Table{Parameters: []string{"Fv/Fm", "Stomatal conductance (μmol/sec)", "ABA (ng/mg)"}}
	for i := range fv {
		tbl.Rows = append(tbl.Rows, dataset.Row{
			Variety:   "CV",
			Treatment: "C",
			GDD:       math.NaN(),
			Values: map[string]float64{
				"Fv/Fm":                           fv[i],
				"Stomatal conductance (μmol/sec)": sc[i],
				"ABA (ng/mg)":                     aba[i],
			},
		})
	}

	cfg := params.DefaultConfig()
	ids, edges, err := NetworkTables(tbl, cfg)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	require.Len(t, edges, 1)
	e := edges[0]
	assert.Equal(t, "Fv/Fm", e.Source)
	assert.Equal(t, "Stomatal conductance (μmol/sec)", e.Target)
	assert.InDelta(t, 1.0, e.Correlation, 1e-9)
	assert.True(t, e.Intra) // both parameters are leaf_functionality
}

func TestWriteNetworkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := params.DefaultConfig()

	ids := []string{"Fv/Fm", "ABA (ng/mg)"}
	edges := []NetworkEdge{{Source: "Fv/Fm", Target: "ABA (ng/mg)", Correlation: -0.42, P: 0.003, Intra: false}}

	nodesPath := filepath.Join(dir, "nodes.csv")
	edgesPath := filepath.Join(dir, "edges.csv")
	require.NoError(t, WriteNetwork(nodesPath, edgesPath, ids, edges, cfg))

	nodesRaw, err := os.ReadFile(nodesPath)
	require.NoError(t, err)
	assert.Contains(t, string(nodesRaw), "Fv/Fm,leaf_functionality")

	edgesRaw, err := os.ReadFile(edgesPath)
	require.NoError(t, err)
	assert.Contains(t, string(edgesRaw), "cross_level")
}
