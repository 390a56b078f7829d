// Package graph provides the dependency graph resolver used to compute boot
// order. Nodes are component names, edges are "depends on" relations, and the
// topological sort returns dependencies before their dependents. Node
// insertion order breaks ties so the resulting order is deterministic.
package graph

import (
	"fmt"
	"strings"

	"github.com/c360/bootsteps/errors"
)

// CycleError reports a dependency cycle. Path holds the participating nodes
// in traversal order, with the entry node repeated at the end.
type CycleError struct {
	Path []string
}

// Error implements the error interface
func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// Unwrap allows errors.Is checks against ErrDependencyCycle
func (e *CycleError) Unwrap() error {
	return errors.ErrDependencyCycle
}

// UnknownDependencyError reports an edge that references a node that was
// never added to the graph.
type UnknownDependencyError struct {
	Node     string
	Requires string
}

// Error implements the error interface
func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("%s requires unknown dependency %s", e.Node, e.Requires)
}

// Unwrap allows errors.Is checks against ErrUnknownDependency
func (e *UnknownDependencyError) Unwrap() error {
	return errors.ErrUnknownDependency
}

// DependencyGraph is a directed graph of component names. An edge (A, B)
// means A depends on B, so B sorts before A in the topological order.
type DependencyGraph struct {
	order   []string            // nodes in insertion order
	index   map[string]int      // node -> insertion index
	deps    map[string][]string // node -> nodes it depends on
}

// New creates an empty dependency graph
func New() *DependencyGraph {
	return &DependencyGraph{
		index: make(map[string]int),
		deps:  make(map[string][]string),
	}
}

// Add inserts a node and its dependencies. Adding an existing node appends
// to its dependency list. Dependencies are recorded as given; they are
// validated against the node set during Topsort.
func (g *DependencyGraph) Add(node string, requires ...string) {
	g.ensure(node)
	g.deps[node] = append(g.deps[node], requires...)
}

// AddEdge records that from depends on to. Both nodes must already be
// present in the graph.
func (g *DependencyGraph) AddEdge(from, to string) error {
	if _, ok := g.index[from]; !ok {
		return errors.WrapInvalid(errors.ErrUnknownNode, "DependencyGraph", "AddEdge", fmt.Sprintf("node %q", from))
	}
	if _, ok := g.index[to]; !ok {
		return errors.WrapInvalid(errors.ErrUnknownNode, "DependencyGraph", "AddEdge", fmt.Sprintf("node %q", to))
	}
	g.deps[from] = append(g.deps[from], to)
	return nil
}

// Nodes returns all nodes in insertion order
func (g *DependencyGraph) Nodes() []string {
	nodes := make([]string, len(g.order))
	copy(nodes, g.order)
	return nodes
}

// Len returns the number of nodes in the graph
func (g *DependencyGraph) Len() int {
	return len(g.order)
}

func (g *DependencyGraph) ensure(node string) {
	if _, ok := g.index[node]; ok {
		return
	}
	g.index[node] = len(g.order)
	g.order = append(g.order, node)
}

// Topsort returns a total order of all nodes with every node placed strictly
// after all nodes it depends on, using Kahn's algorithm. Nodes with no order
// relation between them keep their relative insertion order. Returns an
// UnknownDependencyError if an edge references a missing node, or a
// CycleError naming the participating nodes when no valid order exists.
func (g *DependencyGraph) Topsort() ([]string, error) {
	// Validate edges before sorting so a typo surfaces as a resolution
	// error naming both sides, not as an unexplained missing node.
	for _, node := range g.order {
		for _, dep := range g.deps[node] {
			if _, ok := g.index[dep]; !ok {
				return nil, &UnknownDependencyError{Node: node, Requires: dep}
			}
		}
	}

	indegree := make(map[string]int, len(g.order))
	dependents := make(map[string][]string, len(g.order))
	for _, node := range g.order {
		for _, dep := range g.deps[node] {
			indegree[node]++
			dependents[dep] = append(dependents[dep], node)
		}
	}

	var ready []string
	for _, node := range g.order {
		if indegree[node] == 0 {
			ready = append(ready, node)
		}
	}

	result := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		// Pick the ready node with the smallest insertion index to keep
		// the order deterministic.
		next := 0
		for i := 1; i < len(ready); i++ {
			if g.index[ready[i]] < g.index[ready[next]] {
				next = i
			}
		}
		node := ready[next]
		ready = append(ready[:next], ready[next+1:]...)

		result = append(result, node)
		for _, dependent := range dependents[node] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(result) != len(g.order) {
		return nil, &CycleError{Path: g.findCycle()}
	}
	return result, nil
}

// findCycle locates one dependency cycle using depth-first search with color
// marking: white (unvisited), gray (in progress), black (done). A back edge
// to a gray node closes the cycle.
func (g *DependencyGraph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.order))
	parent := make(map[string]string, len(g.order))

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, dep := range g.deps[node] {
			switch color[dep] {
			case white:
				parent[dep] = node
				if cycle := dfs(dep); cycle != nil {
					return cycle
				}
			case gray:
				// Reconstruct the cycle path back from node to dep. The
				// walk yields the chain in reverse, so flip it before
				// closing the loop.
				cycle := []string{dep}
				for current := node; current != dep; current = parent[current] {
					cycle = append(cycle, current)
				}
				for i, j := 1, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return append(cycle, dep)
			}
		}
		color[node] = black
		return nil
	}

	for _, node := range g.order {
		if color[node] == white {
			if cycle := dfs(node); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
