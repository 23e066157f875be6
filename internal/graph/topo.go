package graph

import (
	"fmt"
	"sort"
)

// TopologicalOrder linearizes g so that every dependency precedes its
// dependents. Kahn's algorithm: in-degree counts plus a FIFO ready queue of
// zero-in-degree nodes, seeded in ascending id order for determinism.
//
// The input is expected to be acyclic (run RemoveCycles first). A residual
// cycle is a hard error, never silently reordered around.
func TopologicalOrder(g Graph) ([]string, error) {
	// Kahn would detect a cycle anyway by running out of ready nodes, but
	// the explicit check yields a clearer failure.
	if HasCycle(g) {
		return nil, fmt.Errorf("topological order: graph contains a cycle")
	}

	// In-degree of a node is the number of dependencies it waits on that
	// are themselves nodes of the graph.
	inDegree := make(map[string]int, len(g))
	dependents := make(map[string][]string, len(g))
	for node := range g {
		inDegree[node] = 0
	}
	for _, node := range g.Nodes() {
		for _, dep := range g[node] {
			if _, known := inDegree[dep]; !known {
				continue
			}
			inDegree[node]++
			dependents[dep] = append(dependents[dep], node)
		}
	}

	var queue []string
	for node, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, node)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dependent := range dependents[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(g) {
		return nil, fmt.Errorf("topological order: %d of %d nodes unreachable from ready queue", len(g)-len(order), len(g))
	}
	return order, nil
}
