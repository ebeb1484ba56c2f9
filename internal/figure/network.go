package figure

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"salttol/internal/network"
	"salttol/internal/params"
)

// Edge display colors: sign of the correlation crossed with intra/cross
// level, matching the published 4-category legend.
var classColors = map[network.Class]color.RGBA{
	network.PositiveCross: params.Hex("#D62728"),
	network.NegativeCross: params.Hex("#1F77B4"),
	network.PositiveIntra: params.Hex("#F4A6A3"),
	network.NegativeIntra: params.Hex("#A6CEE3"),
}

var classLabels = map[network.Class]string{
	network.PositiveCross: "Positive (cross-level)",
	network.NegativeCross: "Negative (cross-level)",
	network.PositiveIntra: "Positive (intra-level)",
	network.NegativeIntra: "Negative (intra-level)",
}

// Network renders Figure 3 twice: the full network and the cross-level-only
// variant. Degrees and marker sizes are recomputed per variant; dropping the
// intra-level edges changes node degrees, so the views must never share
// cached sizes.
func (s *Set) Network(g *network.Graph, opts network.FilterOptions) error {
	if err := s.networkVariant(g, opts, "figure_03_network"); err != nil {
		return err
	}
	crossOnly := opts
	crossOnly.ShowIntra = false
	crossOnly.ShowCross = true
	return s.networkVariant(g, crossOnly, "figure_03_network_cross_level")
}

func (s *Set) networkVariant(g *network.Graph, opts network.FilterOptions, base string) error {
	ordered := network.Order(g.Nodes, s.Config.ReferenceOrder(), s.Config.Excluded)
	if len(ordered) == 0 {
		return fmt.Errorf("network %s: no nodes to draw", base)
	}

	// Edges touching a node outside the drawn set (excluded ids) are
	// dropped silently, like edges with unknown endpoints.
	drawn := make(map[string]bool, len(ordered))
	for _, n := range ordered {
		drawn[n.ID] = true
	}
	var edges []network.Edge
	for _, e := range g.Filter(opts) {
		if drawn[e.Source] && drawn[e.Target] {
			edges = append(edges, e)
		}
	}

	degrees, err := network.Degrees(ordered, edges)
	if err != nil {
		return fmt.Errorf("network %s: %w", base, err)
	}
	sizes := network.MarkerSizes(degrees)

	placements := network.CircularLayout(len(ordered), network.StartAngle)
	pos := make(map[string]network.Placement, len(ordered))
	for i, n := range ordered {
		pos[n.ID] = placements[i]
	}

	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = -1.9, 1.9
	p.Y.Min, p.Y.Max = -1.9, 1.9

	// Edges underneath the nodes, stronger correlations drawn wider.
	classesSeen := map[network.Class]bool{}
	for _, e := range edges {
		a, b := pos[e.Source], pos[e.Target]
		line, err := plotter.NewLine(plotter.XYs{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}})
		if err != nil {
			return fmt.Errorf("network %s: %w", base, err)
		}
		class := g.Classify(e)
		classesSeen[class] = true
		line.LineStyle = draw.LineStyle{
			Color: classColors[class],
			Width: vg.Points(0.5 + 2*math.Abs(e.Correlation)),
		}
		p.Add(line)
	}

	// Nodes sized by degree, colored by biological level.
	nodeXYs := make(plotter.XYs, len(ordered))
	for i, n := range ordered {
		nodeXYs[i] = plotter.XY{X: pos[n.ID].X, Y: pos[n.ID].Y}
	}
	scatter, err := plotter.NewScatter(nodeXYs)
	if err != nil {
		return fmt.Errorf("network %s: %w", base, err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		n := ordered[i]
		return draw.GlyphStyle{
			Color:  params.LevelColors[n.Level],
			Radius: vg.Points(sizes[n.ID] / 2),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(scatter)

	// Radial labels: anchored outside the circle, flipped on the left half
	// so they always read upright.
	labelXYs := make(plotter.XYs, len(ordered))
	names := make([]string, len(ordered))
	for i, n := range ordered {
		labelXYs[i] = plotter.XY{X: pos[n.ID].LabelX, Y: pos[n.ID].LabelY}
		names[i] = s.Config.AcronymOf(n.ID)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: names})
	if err != nil {
		return fmt.Errorf("network %s: %w", base, err)
	}
	for i, n := range ordered {
		pl := pos[n.ID]
		labels.TextStyle[i].Rotation = pl.LabelRotation * math.Pi / 180
		labels.TextStyle[i].YAlign = text.YCenter
		if pl.AlignRight {
			labels.TextStyle[i].XAlign = text.XRight
		} else {
			labels.TextStyle[i].XAlign = text.XLeft
		}
	}
	p.Add(labels)

	// Correlation legend: 4 categories on the full view, 2 on the
	// cross-level-only view (only the classes actually enabled).
	for _, class := range []network.Class{
		network.PositiveCross, network.NegativeCross,
		network.PositiveIntra, network.NegativeIntra,
	} {
		if class.Intra() && !opts.ShowIntra {
			continue
		}
		if !class.Intra() && !opts.ShowCross {
			continue
		}
		p.Legend.Add(classLabels[class], legendLine(classColors[class], vg.Points(2)))
	}
	for _, level := range params.Levels {
		if levelPresent(ordered, level) {
			p.Legend.Add(params.LevelNames[level], legendGlyph(params.LevelColors[level], vg.Points(4)))
		}
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return s.saveAll(p, 26*vg.Centimeter, 26*vg.Centimeter, base)
}

func levelPresent(nodes []network.Node, level params.Level) bool {
	for _, n := range nodes {
		if n.Level == level {
			return true
		}
	}
	return false
}
