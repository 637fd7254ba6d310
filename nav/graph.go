package nav

import "fmt"

// Graph is a finite acyclic structure rooted at exactly one root node.
// Graph construction is a one-shot operation: NewGraph validates its
// invariants up front and returns an immutable value. There is no mutation
// after construction; Graph is the frozen result a declarative
// navigation builder would hand to a Choreographer.
//
// Invariants enforced by NewGraph:
//   - every node's RouteKey is unique,
//   - root.RouteKey is present in the lookup map,
//   - every menu child is also present in the lookup map,
//   - lookup by RouteKey is O(1).
type Graph struct {
	root  *Node
	byKey map[RouteKey]*Node
}

// NewGraph builds a Graph from every node reachable from root (root itself
// plus, transitively, its menu children) and any extra nodes supplied
// explicitly. It returns an error if a RouteKey collides.
func NewGraph(root *Node, extra ...*Node) (*Graph, error) {
	if root == nil {
		return nil, fmt.Errorf("nav: graph root must not be nil")
	}

	byKey := make(map[RouteKey]*Node)
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if n == nil {
			return nil
		}
		if existing, ok := byKey[n.RouteKey]; ok && existing != n {
			return fmt.Errorf("nav: duplicate route key %q in graph", n.RouteKey)
		}
		byKey[n.RouteKey] = n
		for _, child := range n.MenuChildren {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	for _, n := range extra {
		if err := walk(n); err != nil {
			return nil, err
		}
	}

	if _, ok := byKey[root.RouteKey]; !ok {
		return nil, fmt.Errorf("nav: root route key %q missing from lookup map", root.RouteKey)
	}

	return &Graph{root: root, byKey: byKey}, nil
}

// RootNode returns the graph's root node.
func (g *Graph) RootNode() *Node { return g.root }

// RootKey returns the graph's root route key.
func (g *Graph) RootKey() RouteKey { return g.root.RouteKey }

// Lookup resolves a RouteKey to its Node. The second return value is
// false if the key is not present in the graph.
func (g *Graph) Lookup(key RouteKey) (*Node, bool) {
	n, ok := g.byKey[key]
	return n, ok
}

// IterNodes calls fn for every node in the graph. Iteration order is the
// map's, and therefore unspecified; callers needing determinism should
// sort by RouteKey themselves.
func (g *Graph) IterNodes(fn func(*Node)) {
	for _, n := range g.byKey {
		fn(n)
	}
}

// MenuOf returns the node identified by key if it is a menu node.
func (g *Graph) MenuOf(key RouteKey) (*Node, error) {
	n, ok := g.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRouteNotInGraph, key)
	}
	if !n.IsMenu {
		return nil, fmt.Errorf("nav: route %q is not a menu node", key)
	}
	return n, nil
}

// Size returns the number of nodes in the graph.
func (g *Graph) Size() int { return len(g.byKey) }
