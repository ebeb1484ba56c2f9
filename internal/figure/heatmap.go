package figure

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"salttol/internal/dataset"
	"salttol/internal/params"
	"salttol/internal/stats"
	"salttol/internal/unify"
)

// annotatedHeatmap builds a diverging heatmap with per-cell text. Missing
// values are drawn as zero (white on the diverging scale), matching the
// published figures.
func annotatedHeatmap(rows, cols []string, values [][]float64, ann [][]string, min, max float64) (*plot.Plot, error) {
	filled := make([][]float64, len(values))
	for r, row := range values {
		filled[r] = make([]float64, len(row))
		for c, v := range row {
			if math.IsNaN(v) {
				v = 0
			}
			filled[r][c] = v
		}
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(min)
	cmap.SetMax(max)
	h := plotter.NewHeatMap(matrixGrid{values: filled}, cmap.Palette(255))
	h.Min, h.Max = min, max

	p := plot.New()
	p.Add(h)
	p.X.Tick.Marker = nominalTicks(cols)
	p.Y.Tick.Marker = nominalTicks(rows)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	if ann != nil {
		var xys plotter.XYs
		var labels []string
		for r := range rows {
			for c := range cols {
				if ann[r][c] == "" {
					continue
				}
				xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
				labels = append(labels, ann[r][c])
			}
		}
		lab, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, err
		}
		for i := range lab.TextStyle {
			lab.TextStyle[i].XAlign = text.XCenter
			lab.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(lab)
	}
	return p, nil
}

// Pathway renders Figure 1: per biological level and variety, the severe
// stress activity minus the control activity (fold change vs control).
func (s *Set) Pathway(activities []unify.Activity) error {
	score := map[string]float64{}
	for _, a := range activities {
		score[string(a.Level)+"/"+a.Variety+"/"+a.Treatment] = a.Score
	}

	rows := make([]string, 0, len(params.Levels))
	var levels []params.Level
	for _, level := range params.Levels {
		present := false
		for _, v := range params.Varieties {
			if _, ok := score[string(level)+"/"+v+"/S2"]; ok {
				present = true
				break
			}
		}
		if present {
			levels = append(levels, level)
			rows = append(rows, params.LevelNames[level])
		}
	}

	values := make([][]float64, len(levels))
	ann := make([][]string, len(levels))
	for r, level := range levels {
		values[r] = make([]float64, len(params.Varieties))
		ann[r] = make([]string, len(params.Varieties))
		for c, variety := range params.Varieties {
			s2, ok1 := score[string(level)+"/"+variety+"/S2"]
			ctl, ok2 := score[string(level)+"/"+variety+"/C"]
			if !ok1 || !ok2 {
				values[r][c] = math.NaN()
				continue
			}
			fold := s2 - ctl // control column is pinned at 1
			values[r][c] = fold
			ann[r][c] = fmt.Sprintf("%+.2f", fold)
			if math.Abs(fold) > 0.5 {
				ann[r][c] += "*"
			}
		}
	}

	p, err := annotatedHeatmap(rows, params.Varieties, values, ann, -1, 6)
	if err != nil {
		return fmt.Errorf("figure 1: %w", err)
	}
	p.X.Label.Text = ""
	p.Y.Label.Text = ""
	return s.saveAll(p, 30*vg.Centimeter, 20*vg.Centimeter, "figure_01_pathway_activity_heatmap")
}

// responsivenessOrder is the fixed 12-parameter layout of Figure 7, grouped
// by category.
var responsivenessOrder = []string{
	"Main shoot height (cm)",
	"Leaves surface (cm²)",
	"Total dry weight (g)",
	"Fruit set (trusses number)",
	"Stomatal conductance (μmol/sec)",
	"Relative water content (%)",
	"Total chlorophyll (μg/g FW)",
	"Fv/Fm",
	"Electrolytic leakage (μS/cm)",
	"Na/K ratio leaves",
	"ABA (ng/mg)",
	"Osmolytes (osm/kg)",
}

// Responsiveness renders Figure 7: the weighted combined responsiveness
// score (0.4 F + 0.4 eta^2 + 0.2 %change) per parameter and variety.
func (s *Set) Responsiveness(rankings []unify.Ranking) error {
	byKey := map[string]unify.Ranking{}
	for _, r := range rankings {
		byKey[r.Parameter+"/"+r.Variety] = r
	}

	rows := make([]string, len(responsivenessOrder))
	values := make([][]float64, len(responsivenessOrder))
	ann := make([][]string, len(responsivenessOrder))
	for r, param := range responsivenessOrder {
		rows[r] = s.Config.AcronymOf(param)
		values[r] = make([]float64, len(params.Varieties))
		ann[r] = make([]string, len(params.Varieties))
		for c, variety := range params.Varieties {
			rk, ok := byKey[param+"/"+variety]
			if !ok {
				values[r][c] = math.NaN()
				continue
			}
			score := rk.CombinedScore()
			values[r][c] = score
			ann[r][c] = fmt.Sprintf("%.0f", score)
		}
	}

	p, err := annotatedHeatmap(rows, params.Varieties, values, ann, 0, 100)
	if err != nil {
		return fmt.Errorf("figure 7: %w", err)
	}
	return s.saveAll(p, 24*vg.Centimeter, 28*vg.Centimeter, "figure_07_responsiveness")
}

// ionicParams are the osmotic-regulation parameters of Figure S1.
var ionicParams = []string{
	"Electrolytic leakage (μS/cm)",
	"Na/K ratio leaves",
	"Na/K ratio roots",
	"Relative water content (%)",
}

// Supplementary renders Figure S1: fold change of each ionic/osmotic
// parameter under severe stress with Welch's t-test significance stars.
func (s *Set) Supplementary(t *dataset.Table) error {
	var rows []string
	var kept []string
	for _, p := range ionicParams {
		if t.HasParameter(p) {
			kept = append(kept, p)
			rows = append(rows, s.Config.AcronymOf(p))
		}
	}

	values := make([][]float64, len(kept))
	ann := make([][]string, len(kept))
	for r, param := range kept {
		values[r] = make([]float64, len(params.Varieties))
		ann[r] = make([]string, len(params.Varieties))
		for c, variety := range params.Varieties {
			control := t.Values(dataset.Filter{Variety: variety, Treatment: "C"}, param)
			stress := t.Values(dataset.Filter{Variety: variety, Treatment: "S2"}, param)

			fold := stats.FoldChange(control, stress)
			values[r][c] = fold
			if math.IsNaN(fold) {
				continue
			}
			ann[r][c] = fmt.Sprintf("%+.2f", fold)
			if res, err := stats.WelchTTest(control, stress); err == nil {
				ann[r][c] += sigStars(res.P)
			}
		}
	}

	p, err := annotatedHeatmap(rows, params.Varieties, values, ann, -2, 2)
	if err != nil {
		return fmt.Errorf("figure S1: %w", err)
	}
	p.Title.Text = params.LevelNames[params.IonicOsmotic]
	return s.saveAll(p, 26*vg.Centimeter, 14*vg.Centimeter, "figure_S1_ionic_osmotic")
}

// sigStars maps a p-value to the conventional significance symbol.
func sigStars(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return ""
	}
}
