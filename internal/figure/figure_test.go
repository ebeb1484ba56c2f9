package figure

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"salttol/internal/dataset"
	"salttol/internal/network"
	"salttol/internal/params"
)

// table builds an in-memory dataset keyed "variety/treatment".
func table(values map[string]map[string][]float64) *dataset.Table {
	t := &dataset.Table{}
	seen := map[string]bool{}
	for key, perParam := range values {
		var variety, treatment string
		for i, r := range key {
			if r == '/' {
				variety, treatment = key[:i], key[i+1:]
				break
			}
		}
		n := 0
		for _, vs := range perParam {
			if len(vs) > n {
				n = len(vs)
			}
		}
		for i := 0; i < n; i++ {
			row := dataset.Row{
				Variety:   variety,
				Treatment: treatment,
				GDD:       math.NaN(),
				Values:    map[string]float64{},
			}
			for p, vs := range perParam {
				if i < len(vs) {
					row.Values[p] = vs[i]
				}
				if !seen[p] {
					seen[p] = true
					t.Parameters = append(t.Parameters, p)
				}
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func TestPerformanceScoreRatio(t *testing.T) {
	// Stress keeps 80% of the control height: score 0.8.
	tbl := table(map[string]map[string][]float64{
		"CV/C":  {"Main shoot height (cm)": {100, 100, 100}},
		"CV/S1": {"Main shoot height (cm)": {80, 80, 80}},
		"CV/S2": {"Main shoot height (cm)": {80, 80, 80}},
	})
	cfg := params.DefaultConfig()
	assert.InDelta(t, 0.8, performanceScore(tbl, cfg, "CV"), 1e-9)
}

func TestPerformanceScoreInvertsDelays(t *testing.T) {
	// A 30% longer phase duration under stress is a penalty: 2 - 1.3 = 0.7.
	tbl := table(map[string]map[string][]float64{
		"CV/C":  {"Days_to_next_phase_from_time_0": {10, 10}},
		"CV/S2": {"Days_to_next_phase_from_time_0": {13, 13}},
	})
	cfg := params.DefaultConfig()
	assert.InDelta(t, 0.7, performanceScore(tbl, cfg, "CV"), 1e-9)
}

func TestStabilityScoreDefaultsToOne(t *testing.T) {
	cfg := params.DefaultConfig()
	assert.Equal(t, 1.0, stabilityScore(&dataset.Table{}, cfg, "CV"))
}

func TestStabilityScoreCapped(t *testing.T) {
	// Control spread far above stress spread: capped at 2.
	tbl := table(map[string]map[string][]float64{
		"CV/C":  {"Fv/Fm": {0.1, 0.9, 0.1, 0.9}},
		"CV/S2": {"Fv/Fm": {0.50, 0.51, 0.50, 0.51}},
	})
	cfg := params.DefaultConfig()
	assert.Equal(t, 2.0, stabilityScore(tbl, cfg, "CV"))
}

func TestRankVarietiesSortedByTotal(t *testing.T) {
	// WR10 holds performance under stress, CV collapses. Every other score
	// falls back to its default, so WR10 must outrank CV.
	tbl := table(map[string]map[string][]float64{
		"CV/C":    {"Total dry weight (g)": {10, 10, 10}},
		"CV/S2":   {"Total dry weight (g)": {2, 2, 2}},
		"WR10/C":  {"Total dry weight (g)": {10, 10, 10}},
		"WR10/S2": {"Total dry weight (g)": {9, 9, 9}},
	})
	cfg := params.DefaultConfig()
	scores := RankVarieties(tbl, cfg)
	require.Len(t, scores, len(params.Varieties))

	pos := map[string]int{}
	for i, s := range scores {
		pos[s.Variety] = i
	}
	assert.Less(t, pos["WR10"], pos["CV"])
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Total(), scores[i].Total())
	}
}

func TestPhaseDelays(t *testing.T) {
	tbl := &dataset.Table{Rows: []dataset.Row{
		{Variety: "CV", Treatment: "C", Phase: "bloom", GDD: 400},
		{Variety: "CV", Treatment: "C", Phase: "bloom", GDD: 420},
		{Variety: "CV", Treatment: "S2", Phase: "bloom", GDD: 500},
		{Variety: "CV", Treatment: "S2", Phase: "bloom", GDD: 520},
	}}
	delays := PhaseDelays(tbl)
	require.Len(t, delays, 1)
	d := delays[0]
	assert.Equal(t, "CV", d.Variety)
	assert.Equal(t, "S2", d.Treatment)
	assert.Equal(t, "bloom", d.Phase)
	assert.InDelta(t, 100, d.Delay, 1e-9)
	assert.InDelta(t, 100.0*100/410, d.Percent, 1e-9)
}

func TestAdaptiveStarsThresholds(t *testing.T) {
	assert.Equal(t, "", adaptiveStars(0.2))
	assert.Equal(t, "*", adaptiveStars(-0.4))
	assert.Equal(t, "**", adaptiveStars(0.7))
	assert.Equal(t, "***", adaptiveStars(-1.3))
}

func TestSigStars(t *testing.T) {
	assert.Equal(t, "***", sigStars(0.0005))
	assert.Equal(t, "**", sigStars(0.005))
	assert.Equal(t, "*", sigStars(0.04))
	assert.Equal(t, "", sigStars(0.2))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "na_k_l", slug("Na/K L"))
	assert.Equal(t, "fv_fm", slug("Fv/Fm"))
	assert.Equal(t, "msh", slug("MSH"))
}

func TestNetworkDropsEdgesOfExcludedNodes(t *testing.T) {
	// "C" stays in the loaded graph but is on the excluded list. Its edges
	// must vanish with it instead of failing the degree computation.
	g := network.NewGraph(
		[]network.Node{
			{ID: "A", Level: params.Hormonal},
			{ID: "B", Level: params.Hormonal},
			{ID: "C", Level: params.Metabolic},
		},
		[]network.Edge{
			{Source: "A", Target: "B", Correlation: 0.5},
			{Source: "A", Target: "C", Correlation: -0.4},
		},
	)
	cfg := params.DefaultConfig()
	cfg.Excluded = []string{"C"}

	dir := t.TempDir()
	s, err := NewSet(dir, cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, s.Network(g, network.DefaultFilter()))

	for _, name := range []string{"figure_03_network.png", "figure_03_network_cross_level.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}
}

func TestSaveAllWritesFourArtifacts(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSet(dir, params.DefaultConfig(), zap.NewNop().Sugar())
	require.NoError(t, err)

	p := plot.New()
	p.Title.Text = "smoke"
	require.NoError(t, s.saveAll(p, 4*vg.Centimeter, 4*vg.Centimeter, "smoke"))

	for _, name := range []string{"smoke.png", "smoke.svg", "smoke.pdf", "smoke_print.jpg"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}
