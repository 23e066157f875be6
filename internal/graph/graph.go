// Package graph implements the dependency-graph algorithms of the analysis
// pipeline: cycle detection, greedy cycle elimination, and topological
// ordering.
//
// A Graph maps a node id to the ids it depends on ("must complete before").
// Every algorithm here iterates nodes in sorted-id order and dependencies in
// their stored (first-seen) order, so results are reproducible for the same
// input regardless of map iteration order.
package graph

import "sort"

// Graph maps a node id to its dependency ids.
type Graph map[string][]string

// Clone returns a deep copy of g.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for node, deps := range g {
		copied := make([]string, len(deps))
		copy(copied, deps)
		out[node] = copied
	}
	return out
}

// Nodes returns all node ids in ascending order.
func (g Graph) Nodes() []string {
	nodes := make([]string, 0, len(g))
	for node := range g {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

// EdgeCount returns the total number of dependency edges.
func (g Graph) EdgeCount() int {
	n := 0
	for _, deps := range g {
		n += len(deps)
	}
	return n
}

// HasCycle reports whether g contains a directed cycle.
//
// Depth-first traversal tracking the active path: a neighbor already on the
// active path closes a cycle; a node fully explored and removed from the
// active set is safe to revisit.
func HasCycle(g Graph) bool {
	visited := make(map[string]bool, len(g))

	for _, node := range g.Nodes() {
		if visited[node] {
			continue
		}
		if cycleFrom(g, node, visited, make(map[string]bool)) {
			return true
		}
	}
	return false
}

func cycleFrom(g Graph, node string, visited, onPath map[string]bool) bool {
	visited[node] = true
	onPath[node] = true

	for _, dep := range g[node] {
		if !visited[dep] {
			if cycleFrom(g, dep, visited, onPath) {
				return true
			}
		} else if onPath[dep] {
			return true
		}
	}

	delete(onPath, node)
	return false
}

// FindCycles returns every cycle discovered during a single DFS pass, each
// as the node path closing back on its first element. Used for diagnostics;
// the list is not guaranteed exhaustive for graphs with overlapping cycles.
func FindCycles(g Graph) [][]string {
	var cycles [][]string
	visited := make(map[string]bool, len(g))
	onPath := make(map[string]bool)
	var path []string

	var walk func(node string)
	walk = func(node string) {
		if onPath[node] {
			start := 0
			for i, p := range path {
				if p == node {
					start = i
					break
				}
			}
			cycle := append(append([]string{}, path[start:]...), node)
			cycles = append(cycles, cycle)
			return
		}
		if visited[node] {
			return
		}

		visited[node] = true
		onPath[node] = true
		path = append(path, node)

		for _, dep := range g[node] {
			walk(dep)
		}

		delete(onPath, node)
		path = path[:len(path)-1]
	}

	for _, node := range g.Nodes() {
		if !visited[node] {
			walk(node)
		}
	}
	return cycles
}
