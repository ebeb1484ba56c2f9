// Package figure renders the manuscript figures with gonum/plot. Every
// figure is written as PNG, SVG and PDF plus a 300-dpi JPEG print raster
// under a fixed base name.
package figure

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"salttol/internal/params"
)

// Set renders figures into OutDir using one parameter configuration.
type Set struct {
	OutDir string
	Config params.Config
	Log    *zap.SugaredLogger
}

// NewSet creates a figure set, making sure the output directory exists.
func NewSet(outDir string, cfg params.Config, log *zap.SugaredLogger) (*Set, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &Set{OutDir: outDir, Config: cfg, Log: log}, nil
}

// saveAll writes the four artifacts of one figure: vector (SVG, PDF),
// screen raster (PNG) and a 300-dpi JPEG for print.
func (s *Set) saveAll(p *plot.Plot, w, h vg.Length, base string) error {
	for _, ext := range []string{".png", ".svg", ".pdf"} {
		path := filepath.Join(s.OutDir, base+ext)
		if err := p.Save(w, h, path); err != nil {
			return fmt.Errorf("saving %s: %w", path, err)
		}
		s.Log.Infow("wrote figure", "path", path)
	}

	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(300))
	p.Draw(draw.New(c))
	path := filepath.Join(s.OutDir, base+"_print.jpg")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if _, err := (vgimg.JpegCanvas{Canvas: c}).WriteTo(f); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	s.Log.Infow("wrote figure", "path", path)
	return nil
}

// legendLine builds a colored thumbnail entry for a legend.
func legendLine(c color.Color, w vg.Length) *plotter.Line {
	return &plotter.Line{LineStyle: draw.LineStyle{Color: c, Width: w}}
}

// legendGlyph builds a filled-circle thumbnail entry for a legend.
func legendGlyph(c color.Color, r vg.Length) *plotter.Scatter {
	return &plotter.Scatter{GlyphStyle: draw.GlyphStyle{Color: c, Radius: r, Shape: draw.CircleGlyph{}}}
}

// withAlpha returns the color with the given opacity.
func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// matrixGrid adapts a dense row-major matrix to plotter.GridXYZ. Row 0 is
// drawn at the bottom.
type matrixGrid struct {
	values [][]float64 // [row][col]
}

func (g matrixGrid) Dims() (c, r int) {
	if len(g.values) == 0 {
		return 0, 0
	}
	return len(g.values[0]), len(g.values)
}

func (g matrixGrid) Z(c, r int) float64 { return g.values[r][c] }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

// nominalTicks places one labeled tick per category position.
func nominalTicks(names []string) plot.ConstantTicks {
	ticks := make([]plot.Tick, len(names))
	for i, n := range names {
		ticks[i] = plot.Tick{Value: float64(i), Label: n}
	}
	return plot.ConstantTicks(ticks)
}
