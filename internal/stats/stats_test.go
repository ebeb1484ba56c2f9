package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldChange(t *testing.T) {
	assert.InDelta(t, 0.5, FoldChange([]float64{2, 2}, []float64{3, 3}), 1e-12)
	assert.InDelta(t, -0.25, FoldChange([]float64{4}, []float64{3}), 1e-12)
	assert.True(t, math.IsNaN(FoldChange([]float64{0, 0}, []float64{1})))
	assert.True(t, math.IsNaN(FoldChange(nil, []float64{1})))
}

func TestWelchTTest(t *testing.T) {
	// Classic textbook example with unequal variances.
	a := []float64{27.5, 21.0, 19.0, 23.6, 17.0, 17.9, 16.9, 20.1, 21.9, 22.6, 23.1, 19.6, 19.0, 21.7, 21.4}
	b := []float64{27.1, 22.0, 20.8, 23.4, 23.4, 23.5, 25.8, 22.0, 24.8, 20.2, 21.9, 22.1, 22.9, 30.5, 24.9}

	res, err := WelchTTest(a, b)
	require.NoError(t, err)
	assert.InDelta(t, -2.8797, res.T, 0.001)
	assert.InDelta(t, 27.90, res.DF, 0.05)
	assert.Less(t, res.P, 0.01)
	assert.Greater(t, res.P, 0.001)
}

func TestWelchTTestIdenticalGroups(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	res, err := WelchTTest(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.T, 1e-12)
	assert.InDelta(t, 1, res.P, 1e-12)
}

func TestWelchTTestTooFew(t *testing.T) {
	_, err := WelchTTest([]float64{1}, []float64{2, 3})
	assert.Error(t, err)
}

func TestOneWayANOVA(t *testing.T) {
	// Three groups, hand-computed: grand mean 4, SS_between = 24,
	// SS_within = 6, F = (24/2)/(6/6) = 12.
	g1 := []float64{1, 2, 3}
	g2 := []float64{3, 4, 5}
	g3 := []float64{5, 6, 7}

	res, err := OneWayANOVA(g1, g2, g3)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, res.F, 1e-9)
	assert.InDelta(t, 24.0/30.0, res.EtaSquared, 1e-9)
	assert.InDelta(t, 2, res.DFBetween, 1e-12)
	assert.InDelta(t, 6, res.DFWithin, 1e-12)
	assert.Less(t, res.P, 0.01)
}

func TestOneWayANOVASkipsEmptyGroups(t *testing.T) {
	res, err := OneWayANOVA([]float64{1, 2, 3}, nil, []float64{4, 5, 6})
	require.NoError(t, err)
	assert.InDelta(t, 1, res.DFBetween, 1e-12)
	assert.Greater(t, res.F, 1.0)

	_, err = OneWayANOVA([]float64{1, 2}, nil)
	assert.Error(t, err)
}

func TestRanksWithTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, Ranks([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, Ranks([]float64{7, 1, 3}))
}

func TestSpearmanMonotonic(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{2, 4, 9, 16, 27, 38} // monotone but nonlinear

	res, err := Spearman(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.R, 1e-12)
	assert.InDelta(t, 0.0, res.P, 1e-12)
}

func TestSpearmanOmitsNaNPairs(t *testing.T) {
	x := []float64{1, 2, math.NaN(), 4, 5}
	y := []float64{5, 4, 3, 2, 1}

	res, err := Spearman(x, y)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, res.R, 1e-12)
}

func TestSpearmanEqualsPearsonOnRanks(t *testing.T) {
	x := []float64{3, 1, 4, 1.5, 5, 9, 2.6}
	y := []float64{2, 7, 1, 8, 2.8, 1.8, 2.9}

	res, err := Spearman(x, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.R, -1.0)
	assert.LessOrEqual(t, res.R, 1.0)
	assert.GreaterOrEqual(t, res.P, 0.0)
	assert.LessOrEqual(t, res.P, 1.0)
}

func TestLinearFitExact(t *testing.T) {
	xs := []float64{3.22, 11, 21}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2.5 - 0.8*x
	}

	fit, err := LinearFit(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, fit.Intercept, 1e-9)
	assert.InDelta(t, -0.8, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.R2, 1e-9)
	assert.InDelta(t, 2.5-0.8*15, fit.Predict(15), 1e-9)
}

func TestExpFit(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 1.5 * math.Exp(0.4*x)
	}

	fit, err := ExpFit(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(1.5), fit.Intercept, 1e-9)
	assert.InDelta(t, 0.4, fit.Slope, 1e-9)
	assert.InDelta(t, 1.5*math.Exp(0.4*2.5), fit.PredictExp(2.5), 1e-6)

	_, err = ExpFit([]float64{1, 2}, []float64{1, -1})
	assert.Error(t, err)
}

func TestSEM(t *testing.T) {
	assert.True(t, math.IsNaN(SEM([]float64{1})))
	// Sample variance of {1,2,3,2,1,2,3,2} is 4/7.
	want := math.Sqrt(4.0/7.0) / math.Sqrt(8)
	assert.InDelta(t, want, SEM([]float64{1, 2, 3, 2, 1, 2, 3, 2}), 1e-12)
}
