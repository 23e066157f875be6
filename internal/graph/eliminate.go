package graph

// RemoveCycles returns an acyclic graph over the same node set.
//
// If g is already acyclic it is returned unchanged (no copy). Otherwise the
// graph is rebuilt from an empty adjacency map: every original edge is
// replayed, node ids in ascending order and each node's dependencies in
// first-seen order, and an edge is kept only when adding it does not close a
// cycle in the graph under construction. Rejected edges are dropped
// silently.
//
// This is a greedy heuristic, not a minimum-feedback-arc-set solver: which
// edge of a cycle survives depends on the replay order, which is why that
// order is pinned down.
func RemoveCycles(g Graph) Graph {
	if !HasCycle(g) {
		return g
	}

	clean := make(Graph, len(g))
	for node := range g {
		clean[node] = []string{}
	}

	for _, node := range g.Nodes() {
		for _, dep := range g[node] {
			clean[node] = append(clean[node], dep)
			if HasCycle(clean) {
				clean[node] = clean[node][:len(clean[node])-1]
			}
		}
	}
	return clean
}
