package figure

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"salttol/internal/dataset"
	"salttol/internal/params"
	"salttol/internal/stats"
)

// regressionVarieties are the two contrasted genotypes of Figure 8.
var regressionVarieties = []string{"CV", "WR10"}

// regressionParams get a linear salinity-response panel each.
var regressionParams = []string{
	"Main shoot height (cm)",
	"Total dry weight (g)",
	"Fv/Fm",
	"Stomatal conductance (μmol/sec)",
}

// expParam shows saturating damage accumulation, fitted log-linearly.
const expParam = "Electrolytic leakage (μS/cm)"

// salinityRange spans the fitted line slightly beyond the treatments
// (2.5 to 22 mS/cm).
const (
	salinityMin = 2.5
	salinityMax = 22.0
)

// salinityResponse is the per-treatment mean and SEM of one parameter for
// one variety, placed on the conductivity axis.
type salinityResponse struct {
	salinity []float64
	mean     []float64
	sem      []float64
}

func responseOf(t *dataset.Table, variety, param string) salinityResponse {
	var r salinityResponse
	for _, treatment := range params.Treatments {
		vals := t.Values(dataset.Filter{Variety: variety, Treatment: treatment}, param)
		if len(vals) == 0 {
			continue
		}
		r.salinity = append(r.salinity, params.TreatmentSalinity[treatment])
		r.mean = append(r.mean, stats.Mean(vals))
		r.sem = append(r.sem, stats.SEM(vals))
	}
	return r
}

// Regression renders Figure 8: linear salinity-response regressions for CV
// vs WR10 over the key parameters, plus one exponential panel.
func (s *Set) Regression(t *dataset.Table) error {
	for _, param := range regressionParams {
		if !t.HasParameter(param) {
			continue
		}
		base := fmt.Sprintf("figure_08_regression_%s", slug(s.Config.AcronymOf(param)))
		if err := s.regressionPanel(t, param, false, base); err != nil {
			return err
		}
	}
	if t.HasParameter(expParam) {
		base := fmt.Sprintf("figure_08_exponential_%s", slug(s.Config.AcronymOf(expParam)))
		if err := s.regressionPanel(t, expParam, true, base); err != nil {
			return err
		}
	}
	return nil
}

func (s *Set) regressionPanel(t *dataset.Table, param string, exponential bool, base string) error {
	p := plot.New()
	p.Title.Text = s.Config.AcronymOf(param)
	p.X.Label.Text = "Salinity (mS/cm)"
	p.Y.Label.Text = param
	p.X.Min, p.X.Max = salinityMin, salinityMax

	plotted := false
	for _, variety := range regressionVarieties {
		resp := responseOf(t, variety, param)
		if len(resp.salinity) < 2 {
			continue
		}
		c := params.VarietyColors[variety]

		var fit stats.Regression
		var err error
		if exponential {
			fit, err = stats.ExpFit(resp.salinity, resp.mean)
		} else {
			fit, err = stats.LinearFit(resp.salinity, resp.mean)
		}
		if err != nil {
			return fmt.Errorf("figure 8 %s/%s: %w", param, variety, err)
		}
		predict := fit.Predict
		if exponential {
			predict = fit.PredictExp
		}

		// Uncertainty band: fitted line shifted by the mean SEM of the
		// observed treatments.
		band := stats.Mean(resp.sem)
		if math.IsNaN(band) {
			band = 0
		}
		const steps = 60
		upper := make(plotter.XYs, 0, 2*(steps+1))
		fitted := make(plotter.XYs, 0, steps+1)
		for i := 0; i <= steps; i++ {
			x := salinityMin + (salinityMax-salinityMin)*float64(i)/steps
			y := predict(x)
			fitted = append(fitted, plotter.XY{X: x, Y: y})
			upper = append(upper, plotter.XY{X: x, Y: y + band})
		}
		for i := steps; i >= 0; i-- {
			upper = append(upper, plotter.XY{X: fitted[i].X, Y: fitted[i].Y - band})
		}
		poly, err := plotter.NewPolygon(upper)
		if err != nil {
			return fmt.Errorf("figure 8 %s/%s: %w", param, variety, err)
		}
		poly.Color = withAlpha(c, 40)
		poly.LineStyle.Width = 0
		p.Add(poly)

		line, err := plotter.NewLine(fitted)
		if err != nil {
			return fmt.Errorf("figure 8 %s/%s: %w", param, variety, err)
		}
		line.LineStyle = draw.LineStyle{Color: c, Width: vg.Points(1.5)}
		p.Add(line)

		// Observed treatment means with SEM error bars.
		points := make(plotter.XYs, len(resp.salinity))
		errs := make(yErrPoints, len(resp.salinity))
		for i := range resp.salinity {
			points[i] = plotter.XY{X: resp.salinity[i], Y: resp.mean[i]}
			errs[i] = yErrPoint{x: resp.salinity[i], y: resp.mean[i], e: resp.sem[i]}
		}
		sc, err := plotter.NewScatter(points)
		if err != nil {
			return fmt.Errorf("figure 8 %s/%s: %w", param, variety, err)
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: c, Radius: vg.Points(3.5), Shape: draw.CircleGlyph{}}
		p.Add(sc)

		bars, err := plotter.NewYErrorBars(errs)
		if err != nil {
			return fmt.Errorf("figure 8 %s/%s: %w", param, variety, err)
		}
		bars.LineStyle = draw.LineStyle{Color: c, Width: vg.Points(1)}
		p.Add(bars)

		p.Legend.Add(fmt.Sprintf("%s (R²=%.2f)", variety, fit.R2), line)
		plotted = true
	}
	if !plotted {
		return nil
	}

	p.Legend.Top = true
	return s.saveAll(p, 16*vg.Centimeter, 12*vg.Centimeter, base)
}

// yErrPoints feeds plotter.NewYErrorBars: XYer plus YErrorer with
// symmetric SEM errors.
type yErrPoint struct{ x, y, e float64 }

type yErrPoints []yErrPoint

func (p yErrPoints) Len() int                    { return len(p) }
func (p yErrPoints) XY(i int) (float64, float64) { return p[i].x, p[i].y }
func (p yErrPoints) YError(i int) (float64, float64) {
	return p[i].e, p[i].e
}
