package network

// FilterOptions control which correlation edges are drawn.
type FilterOptions struct {
	PositiveThreshold float64 // keep corr >= this, default 0.35
	NegativeThreshold float64 // keep corr <= this, default -0.30
	ShowIntra         bool
	ShowCross         bool
}

// DefaultFilter matches the published figure.
func DefaultFilter() FilterOptions {
	return FilterOptions{
		PositiveThreshold: 0.35,
		NegativeThreshold: -0.30,
		ShowIntra:         true,
		ShowCross:         true,
	}
}

// Filter selects the edges to draw. An edge survives iff both endpoints are
// known nodes, its correlation reaches one of the (inclusive) thresholds and
// its intra/cross class is enabled. Edges strictly between the thresholds
// are always dropped; edges touching unknown nodes are dropped without
// error.
func (g *Graph) Filter(opts FilterOptions) []Edge {
	var kept []Edge
	for _, e := range g.Edges {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			continue
		}
		if e.Correlation < opts.PositiveThreshold && e.Correlation > opts.NegativeThreshold {
			continue
		}
		if g.Classify(e).Intra() {
			if !opts.ShowIntra {
				continue
			}
		} else if !opts.ShowCross {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
