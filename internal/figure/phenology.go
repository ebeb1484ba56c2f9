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

// phaseOrder is the phenological progression as recorded in the dataset.
var phaseOrder = []string{"vegetative", "bloom", "bloom fruit set", "maturazione"}

var phaseLabels = map[string]string{
	"vegetative":      "Vegetative",
	"bloom":           "Bloom",
	"bloom fruit set": "Fruit set",
	"maturazione":     "Maturation",
}

// phaseGDD is the mean cumulative GDD at which one variety reached one
// phase under one treatment. NaN when the phase was never recorded.
func phaseGDD(t *dataset.Table, variety, treatment, phase string) float64 {
	gdds := t.GDDs(dataset.Filter{Variety: variety, Treatment: treatment, Phase: phase})
	if len(gdds) == 0 {
		return math.NaN()
	}
	return stats.Mean(gdds)
}

// PhaseDelay is the thermal-time delay of one phase under stress relative
// to the control.
type PhaseDelay struct {
	Variety   string
	Treatment string
	Phase     string
	Delay     float64 // treatment GDD - control GDD
	Percent   float64 // delay relative to the control GDD
}

// PhaseDelays computes the stress-induced phase delays for every variety
// and stress treatment. Phases missing under either condition are skipped.
func PhaseDelays(t *dataset.Table) []PhaseDelay {
	var out []PhaseDelay
	for _, variety := range params.Varieties {
		for _, treatment := range []string{"S1", "S2"} {
			for _, phase := range phaseOrder {
				control := phaseGDD(t, variety, "C", phase)
				stressed := phaseGDD(t, variety, treatment, phase)
				if math.IsNaN(control) || math.IsNaN(stressed) || control == 0 {
					continue
				}
				delay := stressed - control
				out = append(out, PhaseDelay{
					Variety:   variety,
					Treatment: treatment,
					Phase:     phase,
					Delay:     delay,
					Percent:   100 * delay / control,
				})
			}
		}
	}
	return out
}

// Phenology renders Figure 4: the cumulative GDD each variety needs to
// reach each phase under severe stress, and the S1/S2 delays vs control.
func (s *Set) Phenology(t *dataset.Table) error {
	// Panel a: GDD-per-phase heatmap under severe stress.
	rows := make([]string, len(params.Varieties))
	values := make([][]float64, len(params.Varieties))
	ann := make([][]string, len(params.Varieties))
	var gddMax float64
	for r, variety := range params.Varieties {
		rows[r] = variety
		values[r] = make([]float64, len(phaseOrder))
		ann[r] = make([]string, len(phaseOrder))
		for c, phase := range phaseOrder {
			g := phaseGDD(t, variety, "S2", phase)
			values[r][c] = g
			if !math.IsNaN(g) {
				ann[r][c] = fmt.Sprintf("%.0f", g)
				gddMax = math.Max(gddMax, g)
			}
		}
	}
	if gddMax == 0 {
		return fmt.Errorf("figure 4: no phenological phase data")
	}
	cols := make([]string, len(phaseOrder))
	for i, ph := range phaseOrder {
		cols[i] = phaseLabels[ph]
	}
	pa, err := annotatedHeatmap(rows, cols, values, ann, 0, gddMax)
	if err != nil {
		return fmt.Errorf("figure 4a: %w", err)
	}
	pa.Title.Text = "Cumulative GDD per phase (S2)"
	if err := s.saveAll(pa, 20*vg.Centimeter, 14*vg.Centimeter, "figure_04a_gdd_per_phase"); err != nil {
		return err
	}

	// Panel b: delay vs control, one point per variety/phase, S1 and S2 as
	// separate series along the phase axis.
	delays := PhaseDelays(t)
	pb := plot.New()
	pb.Title.Text = "Phenological delay vs control"
	pb.X.Label.Text = "Phenological phase"
	pb.Y.Label.Text = "Delay (GDD)"
	pb.X.Tick.Marker = nominalTicks(cols)
	pb.X.Min, pb.X.Max = -0.5, float64(len(phaseOrder))-0.5

	phaseIndex := map[string]int{}
	for i, ph := range phaseOrder {
		phaseIndex[ph] = i
	}
	treatmentOffset := map[string]float64{"S1": -0.12, "S2": 0.12}

	for _, treatment := range []string{"S1", "S2"} {
		var xys plotter.XYs
		varietyAt := []string{}
		for _, d := range delays {
			if d.Treatment != treatment {
				continue
			}
			xys = append(xys, plotter.XY{
				X: float64(phaseIndex[d.Phase]) + treatmentOffset[treatment],
				Y: d.Delay,
			})
			varietyAt = append(varietyAt, d.Variety)
		}
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("figure 4b: %w", err)
		}
		vs := varietyAt
		shape := markerShape(treatment)
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  params.VarietyColors[vs[i]],
				Radius: vg.Points(3.5),
				Shape:  shape,
			}
		}
		pb.Add(sc)
		pb.Legend.Add(treatment, &plotter.Scatter{GlyphStyle: draw.GlyphStyle{
			Color:  params.Hex("#666666"),
			Radius: vg.Points(3.5),
			Shape:  shape,
		}})
	}

	zero, err := plotter.NewLine(plotter.XYs{
		{X: -0.5, Y: 0},
		{X: float64(len(phaseOrder)) - 0.5, Y: 0},
	})
	if err != nil {
		return fmt.Errorf("figure 4b: %w", err)
	}
	zero.LineStyle = draw.LineStyle{
		Color:  params.Hex("#999999"),
		Width:  vg.Points(0.5),
		Dashes: []vg.Length{vg.Points(3), vg.Points(3)},
	}
	pb.Add(zero)

	for _, variety := range params.Varieties {
		pb.Legend.Add(variety, legendGlyph(params.VarietyColors[variety], vg.Points(3.5)))
	}
	pb.Legend.Top = true
	pb.Legend.Left = true

	return s.saveAll(pb, 20*vg.Centimeter, 14*vg.Centimeter, "figure_04b_phase_delay")
}

// markerShape distinguishes the two stress levels in the delay panel.
func markerShape(treatment string) draw.GlyphDrawer {
	if treatment == "S1" {
		return draw.RingGlyph{}
	}
	return draw.CircleGlyph{}
}
