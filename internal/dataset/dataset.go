// Package dataset loads the master experimental table: one row per replicate
// with the variety, treatment, sampling time and every measured parameter.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Row is one replicate measurement. Parameters not measured on this row are
// absent from Values.
type Row struct {
	Variety   string
	Treatment string
	DAT       float64 // days after transplant
	Phase     string  // phenological phase, may be empty
	GDD       float64 // cumulative growing degree days, NaN when absent
	Values    map[string]float64
}

// Table is the loaded master dataset.
type Table struct {
	Rows       []Row
	Parameters []string // numeric columns in file order
}

// Columns treated as metadata rather than measured parameters.
var metaColumns = map[string]bool{
	"variety":            true,
	"treatment":          true,
	"dat":                true,
	"reply":              true,
	"replicate":          true,
	"phenological phase": true,
	"gdd cumulative":     true,
}

// Load reads the master dataset CSV. Empty cells are treated as missing;
// non-numeric content in a parameter column is a hard error, never coerced
// to zero.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	// name -> column index, preserving original casing for parameter ids
	idx := map[string]int{}
	var parameters []string
	for i, col := range header {
		col = strings.TrimSpace(col)
		idx[strings.ToLower(col)] = i
		if !metaColumns[strings.ToLower(col)] {
			parameters = append(parameters, col)
			idx[col] = i
		}
	}
	for _, required := range []string{"variety", "treatment"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("dataset %s: missing required column %q", path, required)
		}
	}

	t := &Table{Parameters: parameters}
	for rowNum := 2; ; rowNum++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		row := Row{
			Variety:   strings.TrimSpace(rec[idx["variety"]]),
			Treatment: strings.TrimSpace(rec[idx["treatment"]]),
			GDD:       math.NaN(),
			Values:    make(map[string]float64, len(parameters)),
		}
		if i, ok := idx["dat"]; ok {
			v, err := parseCell(rec[i])
			if err != nil {
				return nil, fmt.Errorf("row %d, column DAT: %w", rowNum, err)
			}
			row.DAT = v
		}
		if i, ok := idx["phenological phase"]; ok {
			row.Phase = strings.TrimSpace(rec[i])
		}
		if i, ok := idx["gdd cumulative"]; ok {
			v, err := parseCell(rec[i])
			if err != nil {
				return nil, fmt.Errorf("row %d, column GDD cumulative: %w", rowNum, err)
			}
			row.GDD = v
		}
		for _, p := range parameters {
			i := idx[p]
			if i >= len(rec) {
				continue
			}
			v, err := parseCell(rec[i])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", rowNum, p, err)
			}
			if !math.IsNaN(v) {
				row.Values[p] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// parseCell parses one numeric cell. Empty means missing (NaN); anything
// else must be a valid float.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed numeric value %q", s)
	}
	return v, nil
}

// Filter describes a row selection. Zero-valued fields match everything.
type Filter struct {
	Variety    string
	Varieties  []string
	Treatment  string
	Treatments []string
	DAT        float64
	HasDAT     bool
	Phase      string
}

func (f Filter) matches(r Row) bool {
	if f.Variety != "" && r.Variety != f.Variety {
		return false
	}
	if len(f.Varieties) > 0 && !contains(f.Varieties, r.Variety) {
		return false
	}
	if f.Treatment != "" && r.Treatment != f.Treatment {
		return false
	}
	if len(f.Treatments) > 0 && !contains(f.Treatments, r.Treatment) {
		return false
	}
	if f.HasDAT && r.DAT != f.DAT {
		return false
	}
	if f.Phase != "" && r.Phase != f.Phase {
		return false
	}
	return true
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Values returns the non-missing measurements of one parameter over the
// selected rows, in row order.
func (t *Table) Values(f Filter, param string) []float64 {
	var out []float64
	for _, r := range t.Rows {
		if !f.matches(r) {
			continue
		}
		if v, ok := r.Values[param]; ok {
			out = append(out, v)
		}
	}
	return out
}

// GDDs returns the non-missing cumulative GDD values over the selected rows.
func (t *Table) GDDs(f Filter) []float64 {
	var out []float64
	for _, r := range t.Rows {
		if f.matches(r) && !math.IsNaN(r.GDD) {
			out = append(out, r.GDD)
		}
	}
	return out
}

// DATs returns the distinct sampling times of the selected rows, ascending.
func (t *Table) DATs(f Filter) []float64 {
	seen := map[float64]bool{}
	for _, r := range t.Rows {
		if f.matches(r) {
			seen[r.DAT] = true
		}
	}
	out := make([]float64, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Float64s(out)
	return out
}

// HasParameter reports whether the dataset contains a column for the id.
func (t *Table) HasParameter(id string) bool {
	for _, p := range t.Parameters {
		if p == id {
			return true
		}
	}
	return false
}
