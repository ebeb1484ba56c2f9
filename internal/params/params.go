// Package params holds the curated parameter map of the experiment: which
// measured parameter belongs to which biological level and responsiveness
// category, the display acronyms, and the colors shared across figures. The
// built-in tables reproduce the published manuscript; a YAML config can
// override them for re-analysis.
package params

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"
)

// Level is a coarse biological category assigned to each measured parameter.
type Level string

const (
	Hormonal          Level = "hormonal"
	Metabolic         Level = "metabolic"
	IonicOsmotic      Level = "ionic_osmotic"
	LeafFunctionality Level = "leaf_functionality"
	Phenological      Level = "phenological"
	Morphological     Level = "morphological"
	Quality           Level = "quality"
)

// Levels lists all biological levels in display order.
var Levels = []Level{
	Hormonal, Metabolic, IonicOsmotic, LeafFunctionality,
	Phenological, Morphological, Quality,
}

// LevelNames maps levels to the English names used on figure legends.
var LevelNames = map[Level]string{
	Hormonal:          "Hormonal System",
	Metabolic:         "Primary/Secondary Metabolism",
	IonicOsmotic:      "Osmotic Regulation/Ionic Balance",
	LeafFunctionality: "Leaf functionality",
	Phenological:      "Temporal Phenological Traits",
	Morphological:     "Morphology and Growth",
	Quality:           "Fruit Quality",
}

// Responsiveness categories used by the variety ranking figures.
const (
	Performance = "Performance Maintenance"
	Stability   = "Physiological Stability"
	Marker      = "Stress Marker Response"
)

// CategoryWeights are the ranking weights of the three categories. They sum
// to 1.
var CategoryWeights = map[string]float64{
	Performance: 0.55,
	Stability:   0.25,
	Marker:      0.20,
}

// Parameter is one entry of the ordered parameter map. The order of the
// Default slice is the reference order for the correlation network: grouped
// by biological level, within a level in measurement-protocol order.
type Parameter struct {
	ID       string `yaml:"id"`
	Level    Level  `yaml:"level"`
	Acronym  string `yaml:"acronym,omitempty"`
	Category string `yaml:"category,omitempty"`
}

// Default is the curated parameter map of the published figures.
var Default = []Parameter{
	// Hormonal
	{ID: "ABA (ng/mg)", Level: Hormonal, Acronym: "ABA", Category: Marker},
	{ID: "IAA (ng/mg)", Level: Hormonal, Acronym: "IAA"},
	{ID: "GA4 (ng/mg)", Level: Hormonal, Acronym: "GA4"},
	{ID: "SA (ng/mg)", Level: Hormonal, Acronym: "SA"},
	{ID: "JA (ng/mg)", Level: Hormonal, Acronym: "JA"},
	{ID: "Z (ng/mg)", Level: Hormonal, Acronym: "Z"},
	{ID: "Melatonin (ng/mg)", Level: Hormonal, Acronym: "MEL"},
	{ID: "Metatopolin (ng/mg)", Level: Hormonal, Acronym: "MET"},

	// Metabolic
	{ID: "Osmolytes (osm/kg)", Level: Metabolic, Acronym: "OSM", Category: Marker},
	{ID: "Phenols (mg/g FW)", Level: Metabolic, Acronym: "PHE"},
	{ID: "Flavonoids (mg/g FW)", Level: Metabolic, Acronym: "FLA"},
	{ID: "Total chlorophyll (μg/g FW)", Level: Metabolic, Acronym: "CHL", Category: Stability},

	// Ionic / osmotic
	{ID: "Na/K ratio leaves", Level: IonicOsmotic, Acronym: "Na/K L", Category: Marker},
	{ID: "Na/K ratio roots", Level: IonicOsmotic, Acronym: "Na/K R", Category: Marker},
	{ID: "Electrolytic leakage (μS/cm)", Level: IonicOsmotic, Acronym: "EL", Category: Marker},
	{ID: "Relative water content (%)", Level: IonicOsmotic, Acronym: "RWC", Category: Stability},

	// Leaf functionality
	{ID: "Fv/Fm", Level: LeafFunctionality, Acronym: "Fv/Fm", Category: Stability},
	{ID: "Stomatal conductance (μmol/sec)", Level: LeafFunctionality, Acronym: "SC", Category: Stability},

	// Phenological
	{ID: "Flowering (trusses number)", Level: Phenological, Acronym: "FLW", Category: Performance},
	{ID: "Fruit set (trusses number)", Level: Phenological, Acronym: "FS", Category: Performance},
	{ID: "Trusses maturing (number)", Level: Phenological, Acronym: "TM"},
	{ID: "Cumulative floral truss length (cm)", Level: Phenological, Acronym: "CFTL"},
	{ID: "Days_to_next_phase_from_prev_start", Level: Phenological, Acronym: "DNP", Category: Performance},
	{ID: "Days_to_next_phase_from_time_0", Level: Phenological, Acronym: "DT0", Category: Performance},

	// Morphological
	{ID: "Main shoot height (cm)", Level: Morphological, Acronym: "MSH", Category: Performance},
	{ID: "Main shoot nodes (number)", Level: Morphological, Acronym: "MSN"},
	{ID: "Leaves surface (cm²)", Level: Morphological, Acronym: "LES", Category: Performance},
	{ID: "Total fresh weight (g)", Level: Morphological, Acronym: "FW"},
	{ID: "Total dry weight (g)", Level: Morphological, Acronym: "DW", Category: Performance},

	// Fruit quality
	{ID: "fresh weight 10 fruits (g)", Level: Quality, Acronym: "FFW", Category: Performance},
	{ID: "Fruits dry weight (g)", Level: Quality, Acronym: "FDW"},
	{ID: "Fruits soluble solids (°brix)", Level: Quality, Acronym: "SS"},
}

// Varieties in display order: the commercial cultivar first, then the wild
// relatives.
var Varieties = []string{"CV", "WR2", "WR9", "WR10", "WR11", "WR14"}

// Treatments in severity order: control, moderate and severe salinity.
var Treatments = []string{"C", "S1", "S2"}

// TreatmentSalinity maps treatments to the mean irrigation-water salinity in
// mS/cm measured during the trial. Used as the regression abscissa.
var TreatmentSalinity = map[string]float64{"C": 3.22, "S1": 11.0, "S2": 21.0}

// Config is the tunable part of the pipeline. Zero value means "use the
// published defaults".
type Config struct {
	PositiveThreshold float64     `yaml:"positive_threshold"`
	NegativeThreshold float64     `yaml:"negative_threshold"`
	Excluded          []string    `yaml:"excluded"`
	Parameters        []Parameter `yaml:"parameters"`
}

// DefaultConfig returns the configuration matching the published figures.
func DefaultConfig() Config {
	return Config{
		PositiveThreshold: 0.35,
		NegativeThreshold: -0.30,
		Parameters:        Default,
	}
}

// LoadConfig reads a YAML override file. Fields left empty fall back to the
// published defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	// Pointer fields distinguish "absent" from an explicit zero threshold.
	var over struct {
		PositiveThreshold *float64    `yaml:"positive_threshold"`
		NegativeThreshold *float64    `yaml:"negative_threshold"`
		Excluded          []string    `yaml:"excluded"`
		Parameters        []Parameter `yaml:"parameters"`
	}
	if err := yaml.Unmarshal(raw, &over); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if over.PositiveThreshold != nil {
		cfg.PositiveThreshold = *over.PositiveThreshold
	}
	if over.NegativeThreshold != nil {
		cfg.NegativeThreshold = *over.NegativeThreshold
	}
	if len(over.Excluded) > 0 {
		cfg.Excluded = over.Excluded
	}
	if len(over.Parameters) > 0 {
		cfg.Parameters = over.Parameters
	}
	return cfg, nil
}

// LevelOf returns the biological level of a parameter id, or "" if the id is
// not in the map.
func (c Config) LevelOf(id string) Level {
	for _, p := range c.Parameters {
		if p.ID == id {
			return p.Level
		}
	}
	return ""
}

// AcronymOf returns the display acronym for a parameter, falling back to the
// full id when none is defined.
func (c Config) AcronymOf(id string) string {
	for _, p := range c.Parameters {
		if p.ID == id && p.Acronym != "" {
			return p.Acronym
		}
	}
	return id
}

// CategoryOf returns the responsiveness category of a parameter, or "".
func (c Config) CategoryOf(id string) string {
	for _, p := range c.Parameters {
		if p.ID == id {
			return p.Category
		}
	}
	return ""
}

// ReferenceOrder is the curated node order for the correlation network:
// parameter ids grouped by level, in map order.
func (c Config) ReferenceOrder() []string {
	ids := make([]string, 0, len(c.Parameters))
	for _, p := range c.Parameters {
		ids = append(ids, p.ID)
	}
	return ids
}

// CategoryParams returns the mapped parameters of one responsiveness
// category, in map order.
func (c Config) CategoryParams(category string) []string {
	var ids []string
	for _, p := range c.Parameters {
		if p.Category == category {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// LevelParams returns the mapped parameters of one biological level, in map
// order.
func (c Config) LevelParams(level Level) []string {
	var ids []string
	for _, p := range c.Parameters {
		if p.Level == level {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Hex converts "#RRGGBB" to an opaque color. Panics on malformed input, so
// it is only used on the compile-time palettes below.
func Hex(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		panic(fmt.Sprintf("params: bad hex color %q: %v", s, err))
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// LevelColors assigns each biological level its node color in the network
// figure and the pathway heatmaps.
var LevelColors = map[Level]color.RGBA{
	Hormonal:          Hex("#E64B35"),
	Metabolic:         Hex("#4DBBD5"),
	IonicOsmotic:      Hex("#00A087"),
	LeafFunctionality: Hex("#3C5488"),
	Phenological:      Hex("#F39B7F"),
	Morphological:     Hex("#8491B4"),
	Quality:           Hex("#91D1C2"),
}

// VarietyColors match the line/bar colors used across Figures 5, 6 and 8.
var VarietyColors = map[string]color.RGBA{
	"CV":   Hex("#000000"),
	"WR2":  Hex("#FF0000"),
	"WR9":  Hex("#00BFFF"),
	"WR10": Hex("#2CA02C"),
	"WR11": Hex("#DAA520"),
	"WR14": Hex("#9370DB"),
}

// CategoryColors match the category labels of Figures 6, 7 and S1.
var CategoryColors = map[string]color.RGBA{
	Performance: Hex("#4ECDC4"),
	Stability:   Hex("#F38181"),
	Marker:      Hex("#FFA07A"),
}
