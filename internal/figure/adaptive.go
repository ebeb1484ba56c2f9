package figure

import (
	"fmt"
	"math"

	"gonum.org/v1/plot/vg"

	"salttol/internal/dataset"
	"salttol/internal/params"
	"salttol/internal/stats"
)

// wrVarieties are the wild relatives pooled against the commercial cultivar
// in Figure 2.
var wrVarieties = []string{"WR2", "WR9", "WR10", "WR11", "WR14"}

// AdaptiveDifference is the standardized difference of one parameter:
// (WR_mean - CV_mean) / |CV_mean|, with a Welch's t-test over the pooled
// replicates.
type AdaptiveDifference struct {
	Parameter string
	Level     params.Level
	Value     float64
	P         float64 // NaN when either group is too small
}

// AdaptiveDifferences computes the Figure 2 table over every mapped
// parameter present in the dataset, in parameter-map order.
func AdaptiveDifferences(t *dataset.Table, cfg params.Config) []AdaptiveDifference {
	var out []AdaptiveDifference
	for _, p := range cfg.Parameters {
		if !t.HasParameter(p.ID) {
			continue
		}
		cv := t.Values(dataset.Filter{Variety: "CV"}, p.ID)
		wr := t.Values(dataset.Filter{Varieties: wrVarieties}, p.ID)

		cvMean, wrMean := stats.Mean(cv), stats.Mean(wr)
		d := AdaptiveDifference{Parameter: p.ID, Level: p.Level, Value: math.NaN(), P: math.NaN()}
		if !math.IsNaN(cvMean) && !math.IsNaN(wrMean) && cvMean != 0 {
			d.Value = (wrMean - cvMean) / math.Abs(cvMean)
		}
		if res, err := stats.WelchTTest(wr, cv); err == nil {
			d.P = res.P
		}
		out = append(out, d)
	}
	return out
}

// adaptiveStars grades the magnitude of an adaptive difference, matching
// the published annotation scheme (not a p-value scale).
func adaptiveStars(v float64) string {
	switch {
	case math.Abs(v) > 1.0:
		return "***"
	case math.Abs(v) > 0.5:
		return "**"
	case math.Abs(v) > 0.3:
		return "*"
	default:
		return ""
	}
}

// Adaptive renders Figure 2: one heatmap strip of standardized WR-vs-CV
// differences across all mapped parameters, grouped by biological level.
func (s *Set) Adaptive(t *dataset.Table) error {
	diffs := AdaptiveDifferences(t, s.Config)
	if len(diffs) == 0 {
		return fmt.Errorf("figure 2: no mapped parameters in dataset")
	}

	cols := make([]string, len(diffs))
	values := [][]float64{make([]float64, len(diffs))}
	ann := [][]string{make([]string, len(diffs))}
	for i, d := range diffs {
		cols[i] = s.Config.AcronymOf(d.Parameter)
		values[0][i] = d.Value
		if !math.IsNaN(d.Value) {
			ann[0][i] = fmt.Sprintf("%.2f%s", d.Value, adaptiveStars(d.Value))
		}
	}

	p, err := annotatedHeatmap([]string{"WR vs CV"}, cols, values, ann, -1, 1)
	if err != nil {
		return fmt.Errorf("figure 2: %w", err)
	}
	p.Title.Text = "Adaptive Difference (WR vs CV)"
	return s.saveAll(p, 40*vg.Centimeter, 8*vg.Centimeter, "figure_02_adaptive_differences")
}
