// Package report bundles the rendered figures into one reviewable PDF.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// captions lists the report pages in manuscript order. Figures whose PNG is
// missing are skipped, so partial runs still produce a usable document.
var captions = []struct {
	Base    string
	Caption string
}{
	{"figure_01_pathway_activity_heatmap", "Figure 1. Pathway activity under severe salinity (S2) relative to control, per biological level and variety."},
	{"figure_02_adaptive_differences", "Figure 2. Standardized adaptive differences of the wild relatives against the commercial cultivar."},
	{"figure_03_network", "Figure 3. Correlation network of all mapped parameters. Node size reflects degree, color the biological level."},
	{"figure_03_network_cross_level", "Figure 3 (cross-level). Correlation network restricted to edges linking different biological levels."},
	{"figure_04a_gdd_per_phase", "Figure 4a. Cumulative growing degree days required to reach each phenological phase under severe salinity."},
	{"figure_04b_phase_delay", "Figure 4b. Thermal-time delay of each phenological phase under moderate (S1) and severe (S2) salinity."},
	{"figure_06a_variety_ranking", "Figure 6a. Overall salt-tolerance ranking of the six varieties."},
	{"figure_06b_category_contribution", "Figure 6b. Weighted category contributions behind the tolerance ranking."},
	{"figure_07_responsiveness", "Figure 7. Combined stress-responsiveness score per parameter and variety."},
	{"figure_S1_ionic_osmotic", "Figure S1. Ionic and osmotic fold changes under severe salinity with Welch's t-test significance."},
}

const (
	pageMargin   = 15.0 // mm
	captionSize  = 10.0
	headingSize  = 14.0
	imageMaxH    = 230.0 // mm, leaves room for the caption on A4 portrait
	captionGapMM = 6.0
)

type page struct {
	Base    string
	Caption string
}

// allPages resolves the fixed caption list against the rendered files and
// appends the per-parameter panels (Figures 5 and 8) discovered on disk.
func allPages(figDir string, log *zap.SugaredLogger) []page {
	var out []page
	for _, c := range captions {
		if _, err := os.Stat(filepath.Join(figDir, c.Base+".png")); err != nil {
			log.Warnw("figure missing, skipping report page", "base", c.Base)
			continue
		}
		out = append(out, page{Base: c.Base, Caption: c.Caption})
	}
	dynamic := []struct {
		glob, caption string
	}{
		{"figure_05_*.png", "Figure 5. Temporal dynamics: per-sampling-time means by variety. Stars mark varieties differing from CV (Welch's t, Bonferroni-corrected)."},
		{"figure_08_*.png", "Figure 8. Salinity-response regression of CV vs WR10 with R-squared and SEM band."},
	}
	for _, d := range dynamic {
		matches, _ := filepath.Glob(filepath.Join(figDir, d.glob))
		sort.Strings(matches)
		for _, m := range matches {
			base := strings.TrimSuffix(filepath.Base(m), ".png")
			out = append(out, page{Base: base, Caption: d.caption})
		}
	}
	return out
}

// Write assembles figures.pdf from the PNGs in figDir. It returns the path
// of the written report.
func Write(figDir, outPath string, log *zap.SugaredLogger) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, pageMargin)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", headingSize)
	pdf.SetXY(pageMargin, 40)
	pdf.MultiCell(210-2*pageMargin, 8,
		"Multi-level salt tolerance screening of tomato wild relatives", "", "C", false)
	pdf.SetFont("Helvetica", "", captionSize)
	pdf.SetX(pageMargin)
	pdf.MultiCell(210-2*pageMargin, 6, "Reproduced figure set", "", "C", false)

	pages := 0
	for _, c := range allPages(figDir, log) {
		path := filepath.Join(figDir, c.Base+".png")
		pdf.AddPage()
		pageW, pageH := pdf.GetPageSize()
		usableW := pageW - 2*pageMargin

		info := pdf.RegisterImageOptions(path, gofpdf.ImageOptions{ImageType: "PNG"})
		if pdf.Err() {
			return "", fmt.Errorf("report: registering %s: %w", path, pdf.Error())
		}
		w := usableW
		h := w * info.Height() / info.Width()
		if h > imageMaxH {
			h = imageMaxH
			w = h * info.Width() / info.Height()
		}
		x := (pageW - w) / 2
		pdf.ImageOptions(path, x, pageMargin, w, h, false,
			gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetFont("Helvetica", "", captionSize)
		captionY := pageMargin + h + captionGapMM
		if captionY > pageH-pageMargin-12 {
			captionY = pageH - pageMargin - 12
		}
		pdf.SetXY(pageMargin, captionY)
		pdf.MultiCell(usableW, 5, c.Caption, "", "L", false)
		pages++
	}
	if pages == 0 {
		return "", fmt.Errorf("report: no rendered figures found in %s", figDir)
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return "", fmt.Errorf("report: writing %s: %w", outPath, err)
	}
	log.Infow("wrote report", "path", outPath, "figures", pages)
	return outPath, nil
}
