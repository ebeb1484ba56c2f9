// Package unify derives the intermediate tables the figures consume from the
// master dataset: pathway fold-change activities, the ANOVA parameter
// ranking and the Spearman correlation network.
package unify

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"salttol/internal/dataset"
	"salttol/internal/params"
	"salttol/internal/stats"
)

// Activity is one pathway activity score: the mean treated/control ratio of
// a biological level's parameters for one variety and treatment.
type Activity struct {
	Level     params.Level
	Variety   string
	Treatment string
	Score     float64
}

// Activities computes the pathway activity table. Control rows score their
// own ratio against themselves, which pins the control column at 1.
func Activities(t *dataset.Table, cfg params.Config) []Activity {
	var out []Activity
	for _, variety := range params.Varieties {
		for _, treatment := range params.Treatments {
			for _, level := range params.Levels {
				var ratios []float64
				for _, p := range cfg.LevelParams(level) {
					if !t.HasParameter(p) {
						continue
					}
					c := stats.Mean(t.Values(dataset.Filter{Variety: variety, Treatment: "C"}, p))
					tr := stats.Mean(t.Values(dataset.Filter{Variety: variety, Treatment: treatment}, p))
					if math.IsNaN(c) || math.IsNaN(tr) || c == 0 {
						continue
					}
					ratios = append(ratios, tr/c)
				}
				if len(ratios) > 0 {
					out = append(out, Activity{
						Level:     level,
						Variety:   variety,
						Treatment: treatment,
						Score:     stats.Mean(ratios),
					})
				}
			}
		}
	}
	return out
}

// Ranking is one row of the parameter responsiveness ranking: a one-way
// ANOVA of a parameter across treatments within a variety plus the scores
// Figure 7 weighs.
type Ranking struct {
	Parameter  string
	Variety    string
	Category   string
	F          float64
	P          float64
	EtaSquared float64
	PctChange  float64 // mean % change C -> S2

	FScore    float64 // min(100, 10*F)
	EtaScore  float64 // 100 * eta^2
	PctScore  float64 // |PctChange|
}

// Rankings computes the ranking table over all categorized parameters.
func Rankings(t *dataset.Table, cfg params.Config) []Ranking {
	var out []Ranking
	for _, variety := range params.Varieties {
		for _, p := range cfg.Parameters {
			if p.Category == "" || !t.HasParameter(p.ID) {
				continue
			}
			groups := make([][]float64, 0, len(params.Treatments))
			for _, treatment := range params.Treatments {
				groups = append(groups, t.Values(dataset.Filter{Variety: variety, Treatment: treatment}, p.ID))
			}
			res, err := stats.OneWayANOVA(groups...)
			if err != nil {
				continue
			}

			meanC := stats.Mean(t.Values(dataset.Filter{Variety: variety, Treatment: "C"}, p.ID))
			meanS2 := stats.Mean(t.Values(dataset.Filter{Variety: variety, Treatment: "S2"}, p.ID))
			pct := 0.0
			if !math.IsNaN(meanC) && meanC != 0 && !math.IsNaN(meanS2) {
				pct = (meanS2 - meanC) / meanC * 100
			}

			r := Ranking{
				Parameter:  p.ID,
				Variety:    variety,
				Category:   p.Category,
				F:          res.F,
				P:          res.P,
				EtaSquared: res.EtaSquared,
				PctChange:  pct,
				FScore:     math.Min(100, res.F*10),
				EtaScore:   res.EtaSquared * 100,
				PctScore:   math.Abs(pct),
			}
			out = append(out, r)
		}
	}
	return out
}

// CombinedScore is the weighted responsiveness score used by Figure 7:
// 0.4*F_score + 0.4*eta_score + 0.2*pct_score.
func (r Ranking) CombinedScore() float64 {
	return 0.4*r.FScore + 0.4*r.EtaScore + 0.2*r.PctScore
}

// NetworkEdge is one row of the derived edge table.
type NetworkEdge struct {
	Source      string
	Target      string
	Correlation float64
	P           float64
	Intra       bool
}

// NetworkTables computes the Spearman correlation network over all
// replicates of the mapped parameters. Only edges with |r| > 0.3 and
// p < 0.05 are emitted; the renderer applies its own stricter thresholds.
func NetworkTables(t *dataset.Table, cfg params.Config) ([]string, []NetworkEdge, error) {
	var ids []string
	for _, p := range cfg.Parameters {
		if t.HasParameter(p.ID) {
			ids = append(ids, p.ID)
		}
	}

	// Column vectors aligned on rows, NaN for missing.
	cols := make(map[string][]float64, len(ids))
	for _, id := range ids {
		col := make([]float64, len(t.Rows))
		for i, row := range t.Rows {
			if v, ok := row.Values[id]; ok {
				col[i] = v
			} else {
				col[i] = math.NaN()
			}
		}
		cols[id] = col
	}

	var edges []NetworkEdge
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			res, err := stats.Spearman(cols[ids[i]], cols[ids[j]])
			if err != nil {
				// Not enough complete pairs for this parameter combination.
				continue
			}
			if math.Abs(res.R) <= 0.3 || res.P >= 0.05 {
				continue
			}
			edges = append(edges, NetworkEdge{
				Source:      ids[i],
				Target:      ids[j],
				Correlation: res.R,
				P:           res.P,
				Intra:       cfg.LevelOf(ids[i]) == cfg.LevelOf(ids[j]),
			})
		}
	}
	return ids, edges, nil
}

// WriteActivities writes the pathway activity CSV.
func WriteActivities(path string, activities []Activity) error {
	return writeCSV(path, [][]string{{"Pathway", "Variety", "Treatment", "Activity_Score"}}, func(w *csv.Writer) error {
		for _, a := range activities {
			if err := w.Write([]string{string(a.Level), a.Variety, a.Treatment, fmtFloat(a.Score)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteRankings writes the parameter ranking CSV.
func WriteRankings(path string, rankings []Ranking) error {
	header := [][]string{{
		"parameter", "variety", "category", "f_statistic", "p_value",
		"eta_squared", "pct_change_C_to_S2", "f_stat_score", "eta_sq_score", "pct_change_score",
	}}
	return writeCSV(path, header, func(w *csv.Writer) error {
		for _, r := range rankings {
			rec := []string{
				r.Parameter, r.Variety, r.Category,
				fmtFloat(r.F), fmtFloat(r.P), fmtFloat(r.EtaSquared), fmtFloat(r.PctChange),
				fmtFloat(r.FScore), fmtFloat(r.EtaScore), fmtFloat(r.PctScore),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteNetwork writes the node and edge CSVs consumed by the network figure.
func WriteNetwork(nodesPath, edgesPath string, ids []string, edges []NetworkEdge, cfg params.Config) error {
	err := writeCSV(nodesPath, [][]string{{"id", "level"}}, func(w *csv.Writer) error {
		for _, id := range ids {
			if err := w.Write([]string{id, string(cfg.LevelOf(id))}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return writeCSV(edgesPath, [][]string{{"source", "target", "correlation", "p_value", "connection_type"}}, func(w *csv.Writer) error {
		for _, e := range edges {
			kind := "cross_level"
			if e.Intra {
				kind = "intra_level"
			}
			rec := []string{e.Source, e.Target, fmtFloat(e.Correlation), fmtFloat(e.P), kind}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, header [][]string, body func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, rec := range header {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := body(w); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
