package figure

import (
	"fmt"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"salttol/internal/dataset"
	"salttol/internal/params"
	"salttol/internal/stats"
)

// temporalParams are the repeatedly-sampled parameters shown in Figure 5.
var temporalParams = []string{
	"Main shoot height (cm)",
	"Stomatal conductance (μmol/sec)",
	"Fv/Fm",
	"Relative water content (%)",
	"Total chlorophyll (μg/g FW)",
	"Electrolytic leakage (μS/cm)",
}

// Temporal renders Figure 5: one time-series panel per parameter and
// treatment, with the per-DAT mean of every variety. Varieties that differ
// from CV at a sampling time (Welch's t, Bonferroni-corrected over all
// comparisons of the panel) are starred.
func (s *Set) Temporal(t *dataset.Table) error {
	for _, param := range temporalParams {
		if !t.HasParameter(param) {
			continue
		}
		for _, treatment := range params.Treatments {
			if err := s.temporalPanel(t, param, treatment); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Set) temporalPanel(t *dataset.Table, param, treatment string) error {
	dats := t.DATs(dataset.Filter{Treatment: treatment})
	if len(dats) < 2 {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", s.Config.AcronymOf(param), treatment)
	p.X.Label.Text = "Days after transplant"
	p.Y.Label.Text = param

	// One Bonferroni family per panel: every WR-vs-CV test at every DAT.
	comparisons := float64((len(params.Varieties) - 1) * len(dats))
	alpha := 0.05 / comparisons

	var starXYs plotter.XYs
	plotted := false
	for _, variety := range params.Varieties {
		var xys plotter.XYs
		for _, dat := range dats {
			vals := t.Values(dataset.Filter{
				Variety: variety, Treatment: treatment, DAT: dat, HasDAT: true,
			}, param)
			if len(vals) == 0 {
				continue
			}
			m := stats.Mean(vals)
			xys = append(xys, plotter.XY{X: dat, Y: m})

			if variety == "CV" {
				continue
			}
			cv := t.Values(dataset.Filter{
				Variety: "CV", Treatment: treatment, DAT: dat, HasDAT: true,
			}, param)
			if res, err := stats.WelchTTest(vals, cv); err == nil && res.P < alpha {
				starXYs = append(starXYs, plotter.XY{X: dat, Y: m})
			}
		}
		if len(xys) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("figure 5 %s/%s: %w", param, treatment, err)
		}
		line.LineStyle = draw.LineStyle{
			Color: params.VarietyColors[variety],
			Width: vg.Points(1.5),
		}
		points.GlyphStyle = draw.GlyphStyle{
			Color:  params.VarietyColors[variety],
			Radius: vg.Points(2.5),
			Shape:  draw.CircleGlyph{},
		}
		p.Add(line, points)
		p.Legend.Add(variety, line)
		plotted = true
	}
	if !plotted {
		return nil
	}

	if len(starXYs) > 0 {
		marks := make([]string, len(starXYs))
		for i := range marks {
			marks[i] = "*"
		}
		stars, err := plotter.NewLabels(plotter.XYLabels{XYs: starXYs, Labels: marks})
		if err != nil {
			return fmt.Errorf("figure 5 %s/%s: %w", param, treatment, err)
		}
		for i := range stars.TextStyle {
			stars.TextStyle[i].XAlign = text.XCenter
			stars.TextStyle[i].YAlign = text.YBottom
		}
		p.Add(stars)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	base := fmt.Sprintf("figure_05_%s_%s", slug(s.Config.AcronymOf(param)), treatment)
	return s.saveAll(p, 18*vg.Centimeter, 12*vg.Centimeter, base)
}

// slug turns an acronym into a filesystem-safe lowercase token.
func slug(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
