// Package stats wraps the statistical routines the figures rely on: fold
// change, Welch's t-test, one-way ANOVA with eta-squared, Spearman rank
// correlation and least-squares regression.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mean returns the arithmetic mean, or NaN for an empty sample.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// SEM returns the standard error of the mean, or NaN when n < 2.
func SEM(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil) / math.Sqrt(float64(len(xs)))
}

// FoldChange returns (treated - control) / control. NaN when either mean is
// undefined or the control mean is zero.
func FoldChange(control, treated []float64) float64 {
	c, t := Mean(control), Mean(treated)
	if math.IsNaN(c) || math.IsNaN(t) || c == 0 {
		return math.NaN()
	}
	return (t - c) / c
}

// TTestResult is the outcome of a two-sample Welch's t-test.
type TTestResult struct {
	T  float64
	DF float64
	P  float64 // two-sided
}

// WelchTTest compares two independent samples without assuming equal
// variances, using the Welch-Satterthwaite degrees of freedom.
func WelchTTest(a, b []float64) (TTestResult, error) {
	if len(a) < 2 || len(b) < 2 {
		return TTestResult{}, fmt.Errorf("welch t-test: need at least 2 observations per group, got %d and %d", len(a), len(b))
	}
	ma, mb := stat.Mean(a, nil), stat.Mean(b, nil)
	va, vb := stat.Variance(a, nil), stat.Variance(b, nil)
	na, nb := float64(len(a)), float64(len(b))

	se2 := va/na + vb/nb
	if se2 == 0 {
		return TTestResult{}, fmt.Errorf("welch t-test: zero variance in both groups")
	}
	t := (ma - mb) / math.Sqrt(se2)
	df := se2 * se2 / (va*va/(na*na*(na-1)) + vb*vb/(nb*nb*(nb-1)))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return TTestResult{T: t, DF: df, P: p}, nil
}

// ANOVAResult is the outcome of a one-way ANOVA.
type ANOVAResult struct {
	F          float64
	P          float64
	EtaSquared float64 // SS_between / SS_total
	DFBetween  float64
	DFWithin   float64
}

// OneWayANOVA tests whether the group means differ. Groups with no
// observations are ignored; at least two non-empty groups are required.
func OneWayANOVA(groups ...[]float64) (ANOVAResult, error) {
	var kept [][]float64
	for _, g := range groups {
		if len(g) > 0 {
			kept = append(kept, g)
		}
	}
	if len(kept) < 2 {
		return ANOVAResult{}, fmt.Errorf("anova: need at least 2 non-empty groups, got %d", len(kept))
	}

	var all []float64
	for _, g := range kept {
		all = append(all, g...)
	}
	grand := stat.Mean(all, nil)

	var ssBetween, ssTotal float64
	for _, g := range kept {
		gm := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (gm - grand) * (gm - grand)
	}
	for _, v := range all {
		ssTotal += (v - grand) * (v - grand)
	}
	ssWithin := ssTotal - ssBetween

	dfB := float64(len(kept) - 1)
	dfW := float64(len(all) - len(kept))
	if dfW <= 0 {
		return ANOVAResult{}, fmt.Errorf("anova: no within-group degrees of freedom")
	}

	res := ANOVAResult{DFBetween: dfB, DFWithin: dfW}
	if ssTotal > 0 {
		res.EtaSquared = ssBetween / ssTotal
	}
	if ssWithin == 0 {
		// Perfect separation: infinite F, p -> 0.
		res.F = math.Inf(1)
		res.P = 0
		return res, nil
	}
	res.F = (ssBetween / dfB) / (ssWithin / dfW)
	res.P = distuv.F{D1: dfB, D2: dfW}.Survival(res.F)
	return res, nil
}

// Ranks assigns 1-based ranks with ties replaced by their average rank, the
// convention Spearman correlation expects.
func Ranks(xs []float64) []float64 {
	n := len(xs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return xs[order[i]] < xs[order[j]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[order[j+1]] == xs[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// SpearmanResult is a rank correlation with its two-sided p-value from the
// t approximation.
type SpearmanResult struct {
	R float64
	P float64
}

// Spearman computes the rank correlation of two paired samples. Pairs where
// either value is NaN are omitted.
func Spearman(x, y []float64) (SpearmanResult, error) {
	if len(x) != len(y) {
		return SpearmanResult{}, fmt.Errorf("spearman: mismatched lengths %d and %d", len(x), len(y))
	}
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	n := len(xs)
	if n < 3 {
		return SpearmanResult{}, fmt.Errorf("spearman: need at least 3 complete pairs, got %d", n)
	}

	r := stat.Correlation(Ranks(xs), Ranks(ys), nil)
	res := SpearmanResult{R: r, P: 1}
	if math.Abs(r) >= 1 {
		res.P = 0
		return res, nil
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	res.P = 2 * dist.Survival(math.Abs(t))
	return res, nil
}

// Regression is a least-squares fit y = Intercept + Slope*x.
type Regression struct {
	Intercept float64
	Slope     float64
	R2        float64
}

// LinearFit fits a straight line through the points.
func LinearFit(xs, ys []float64) (Regression, error) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return Regression{}, fmt.Errorf("linear fit: need matched samples of at least 2 points")
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Regression{
		Intercept: alpha,
		Slope:     beta,
		R2:        stat.RSquared(xs, ys, nil, alpha, beta),
	}, nil
}

// Predict evaluates the fitted line at x.
func (r Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// ExpFit fits y = a*exp(b*x) by regressing log(y) on x. All y must be
// positive.
func ExpFit(xs, ys []float64) (Regression, error) {
	logs := make([]float64, len(ys))
	for i, y := range ys {
		if y <= 0 {
			return Regression{}, fmt.Errorf("exponential fit: non-positive value %g", y)
		}
		logs[i] = math.Log(y)
	}
	return LinearFit(xs, logs)
}

// PredictExp evaluates an ExpFit result at x on the original scale.
func (r Regression) PredictExp(x float64) float64 {
	return math.Exp(r.Intercept + r.Slope*x)
}
