package network

// Order arranges the graph's nodes into the published circular sequence:
// nodes named in the reference list come first, in reference order; nodes
// not in the list follow in their original encounter order. Reference
// entries absent from the graph are skipped silently. Ids in excluded are
// dropped entirely.
func Order(nodes []Node, reference []string, excluded []string) []Node {
	drop := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		drop[id] = true
	}

	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		if !drop[n.ID] {
			byID[n.ID] = n
		}
	}

	ordered := make([]Node, 0, len(byID))
	placed := make(map[string]bool, len(byID))
	for _, id := range reference {
		if n, ok := byID[id]; ok && !placed[id] {
			ordered = append(ordered, n)
			placed[id] = true
		}
	}
	for _, n := range nodes {
		if !drop[n.ID] && !placed[n.ID] {
			ordered = append(ordered, n)
			placed[n.ID] = true
		}
	}
	return ordered
}
