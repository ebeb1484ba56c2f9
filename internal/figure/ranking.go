package figure

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"salttol/internal/dataset"
	"salttol/internal/params"
	"salttol/internal/stats"
)

// VarietyScore is one variety's stress-tolerance score, split into the three
// weighted category contributions.
type VarietyScore struct {
	Variety     string
	Performance float64
	Stability   float64
	Marker      float64
}

// Total is the weighted sum of the category scores.
func (v VarietyScore) Total() float64 {
	return params.CategoryWeights[params.Performance]*v.Performance +
		params.CategoryWeights[params.Stability]*v.Stability +
		params.CategoryWeights[params.Marker]*v.Marker
}

// stressFilter selects the pooled stress treatments.
var stressFilter = dataset.Filter{Treatments: []string{"S1", "S2"}}

// performanceScore is the mean stress/control ratio over the performance
// parameters. Temporal (Days_*) parameters are inverted (2 - ratio) since a
// delay is a penalty. Ratios clamp at [0, 2].
func performanceScore(t *dataset.Table, cfg params.Config, variety string) float64 {
	var scores []float64
	for _, param := range cfg.CategoryParams(params.Performance) {
		if !t.HasParameter(param) {
			continue
		}
		control := stats.Mean(t.Values(dataset.Filter{Variety: variety, Treatment: "C"}, param))
		stress := stats.Mean(t.Values(dataset.Filter{Variety: variety, Treatments: stressFilter.Treatments}, param))
		if math.IsNaN(control) || math.IsNaN(stress) || control == 0 {
			continue
		}
		ratio := stress / control
		if strings.HasPrefix(param, "Days_") {
			ratio = math.Min(2.0, 2.0-ratio)
		}
		scores = append(scores, math.Max(0, ratio))
	}
	if len(scores) == 0 {
		return 0
	}
	return stats.Mean(scores)
}

// stabilityScore is the mean control/stress standard-deviation ratio over
// the physiological parameters, capped at 2. Defaults to 1 when nothing can
// be computed.
func stabilityScore(t *dataset.Table, cfg params.Config, variety string) float64 {
	var scores []float64
	for _, param := range cfg.CategoryParams(params.Stability) {
		if !t.HasParameter(param) {
			continue
		}
		control := t.Values(dataset.Filter{Variety: variety, Treatment: "C"}, param)
		stress := t.Values(dataset.Filter{Variety: variety, Treatments: stressFilter.Treatments}, param)
		if len(control) < 2 || len(stress) < 2 {
			continue
		}
		cs := stdDev(control)
		ss := stdDev(stress)
		if ss > 0 {
			scores = append(scores, math.Min(2.0, cs/ss))
		}
	}
	if len(scores) == 0 {
		return 1.0
	}
	return stats.Mean(scores)
}

// markerScore rewards moderate, significant stress-marker induction: a
// controlled response scores above an uncontrolled runaway increase.
func markerScore(t *dataset.Table, cfg params.Config, variety string) float64 {
	var scores []float64
	for _, param := range cfg.CategoryParams(params.Marker) {
		if !t.HasParameter(param) {
			continue
		}
		control := t.Values(dataset.Filter{Variety: variety, Treatment: "C"}, param)
		stress := t.Values(dataset.Filter{Variety: variety, Treatments: stressFilter.Treatments}, param)
		if len(control) < 2 || len(stress) < 2 {
			continue
		}
		cm, sm := stats.Mean(control), stats.Mean(stress)
		if cm == 0 {
			continue
		}
		fold := sm / cm
		var score float64
		switch {
		case fold <= 1:
			// No induction at all: muted response.
			score = fold
		case fold <= 2:
			// Moderate induction is the ideal.
			score = 2 - math.Abs(fold-1.5)/0.5*0.5
		default:
			// Runaway induction: decays with excess.
			score = math.Max(0, 1.5-0.25*(fold-2))
		}
		scores = append(scores, math.Min(2, score))
	}
	if len(scores) == 0 {
		return 1.0
	}
	return stats.Mean(scores)
}

func stdDev(xs []float64) float64 {
	m := stats.Mean(xs)
	var ss float64
	for _, v := range xs {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// RankVarieties scores every variety and sorts descending by total.
func RankVarieties(t *dataset.Table, cfg params.Config) []VarietyScore {
	scores := make([]VarietyScore, 0, len(params.Varieties))
	for _, v := range params.Varieties {
		scores = append(scores, VarietyScore{
			Variety:     v,
			Performance: performanceScore(t, cfg, v),
			Stability:   stabilityScore(t, cfg, v),
			Marker:      markerScore(t, cfg, v),
		})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Total() > scores[j].Total() })
	return scores
}

// Ranking renders Figure 6: the final tolerance ranking as horizontal bars
// and the weighted category contributions as stacked bars.
func (s *Set) Ranking(t *dataset.Table) error {
	scores := RankVarieties(t, s.Config)

	// Panel a: total score per variety, best at the top.
	totals := make(plotter.Values, len(scores))
	names := make([]string, len(scores))
	for i, sc := range scores {
		// Reverse so the highest total renders at the top of the axis.
		j := len(scores) - 1 - i
		totals[j] = sc.Total()
		names[j] = sc.Variety
	}
	pa := plot.New()
	bars, err := plotter.NewBarChart(totals, vg.Points(18))
	if err != nil {
		return fmt.Errorf("figure 6a: %w", err)
	}
	bars.Horizontal = true
	bars.Color = params.CategoryColors[params.Performance]
	pa.Add(bars)
	pa.NominalY(names...)
	pa.X.Label.Text = "Stress tolerance score"
	if err := s.saveAll(pa, 18*vg.Centimeter, 14*vg.Centimeter, "figure_06a_variety_ranking"); err != nil {
		return err
	}

	// Panel b: stacked weighted contributions in the same order.
	perf := make(plotter.Values, len(scores))
	stab := make(plotter.Values, len(scores))
	mark := make(plotter.Values, len(scores))
	for i, sc := range scores {
		j := len(scores) - 1 - i
		perf[j] = params.CategoryWeights[params.Performance] * sc.Performance
		stab[j] = params.CategoryWeights[params.Stability] * sc.Stability
		mark[j] = params.CategoryWeights[params.Marker] * sc.Marker
	}

	pb := plot.New()
	perfBars, err := plotter.NewBarChart(perf, vg.Points(18))
	if err != nil {
		return fmt.Errorf("figure 6b: %w", err)
	}
	stabBars, err := plotter.NewBarChart(stab, vg.Points(18))
	if err != nil {
		return fmt.Errorf("figure 6b: %w", err)
	}
	markBars, err := plotter.NewBarChart(mark, vg.Points(18))
	if err != nil {
		return fmt.Errorf("figure 6b: %w", err)
	}
	perfBars.Horizontal = true
	stabBars.Horizontal = true
	markBars.Horizontal = true
	perfBars.Color = params.CategoryColors[params.Performance]
	stabBars.Color = params.CategoryColors[params.Stability]
	markBars.Color = params.CategoryColors[params.Marker]
	stabBars.StackOn(perfBars)
	markBars.StackOn(stabBars)

	pb.Add(perfBars, stabBars, markBars)
	pb.NominalY(names...)
	pb.X.Label.Text = "Weighted contribution"
	pb.Legend.Add(params.Performance, perfBars)
	pb.Legend.Add(params.Stability, stabBars)
	pb.Legend.Add(params.Marker, markBars)
	pb.Legend.Top = true

	return s.saveAll(pb, 18*vg.Centimeter, 14*vg.Centimeter, "figure_06b_category_contribution")
}
