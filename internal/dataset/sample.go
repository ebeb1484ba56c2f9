package dataset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"salttol/internal/params"
)

// Sampling times of the synthetic trial and the phase reached at each.
var samplePhases = []struct {
	dat   float64
	phase string
	gdd   float64
}{
	{20, "vegetative", 260},
	{40, "bloom", 540},
	{60, "bloom fruit set", 830},
	{80, "maturazione", 1150},
}

// stressEffect is the multiplicative severe-stress response of a parameter
// category. Moderate stress applies half the deviation from 1.
var stressEffect = map[string]float64{
	params.Performance: 0.65, // growth and yield drop
	params.Stability:   0.85, // physiology holds up better
	params.Marker:      1.9,  // stress markers accumulate
}

// varietyTolerance scales how much of the stress effect a genotype escapes.
// 0 responds like the sensitive baseline, 1 is fully unaffected.
var varietyTolerance = map[string]float64{
	"CV": 0.0, "WR2": 0.35, "WR9": 0.25, "WR10": 0.7, "WR11": 0.45, "WR14": 0.3,
}

// GenerateSample writes a synthetic master table with the real column
// layout: plausible variety and treatment effects plus replicate noise, so
// the full pipeline can run without the trial data.
func GenerateSample(path string, seed int64, cfg params.Config) error {
	rng := rand.New(rand.NewSource(seed))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sample dataset: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)

	header := []string{"Variety", "Treatment", "DAT", "Reply", "Phenological phase", "GDD cumulative"}
	for _, p := range cfg.Parameters {
		header = append(header, p.ID)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, variety := range params.Varieties {
		for _, treatment := range params.Treatments {
			for _, sp := range samplePhases {
				for reply := 1; reply <= 3; reply++ {
					gdd := sp.gdd * (1 - 0.1*stressFraction(treatment, variety))
					rec := []string{
						variety,
						treatment,
						strconv.FormatFloat(sp.dat, 'f', 0, 64),
						strconv.Itoa(reply),
						sp.phase,
						strconv.FormatFloat(gdd+rng.NormFloat64()*15, 'f', 1, 64),
					}
					for i, p := range cfg.Parameters {
						base := 8.0 + 3.0*float64(i)
						v := base * response(p.Category, treatment, variety)
						v += rng.NormFloat64() * base * 0.06
						rec = append(rec, strconv.FormatFloat(v, 'f', 3, 64))
					}
					if err := w.Write(rec); err != nil {
						return err
					}
				}
			}
		}
	}
	w.Flush()
	return w.Error()
}

// stressFraction is the realized stress intensity after genotype tolerance:
// 0 for controls, up to 1 for severe stress on the sensitive cultivar.
func stressFraction(treatment, variety string) float64 {
	var intensity float64
	switch treatment {
	case "S1":
		intensity = 0.5
	case "S2":
		intensity = 1.0
	default:
		return 0
	}
	return intensity * (1 - varietyTolerance[variety])
}

func response(category, treatment, variety string) float64 {
	effect, ok := stressEffect[category]
	if !ok {
		effect = 1.0
	}
	return 1 + (effect-1)*stressFraction(treatment, variety)
}
