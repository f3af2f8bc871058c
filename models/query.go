package models

import (
	"fmt"
)

// NodeFilter is a function type used to filter nodes in queries
type NodeFilter func(node *Node) bool

// FindNodeByID returns a node by its ID
func (g *Graph) FindNodeByID(id string) (*Node, error) {
	for i, node := range g.Nodes {
		if node.ID == id {
			return &g.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}

// FindNodesByKind returns all nodes of a specific kind
func (g *Graph) FindNodesByKind(kind NodeKind) []Node {
	return g.FilterNodes(func(n *Node) bool { return n.Kind == kind })
}

// ConnectedNodes returns the IDs of all nodes sharing an edge with nodeID,
// in edge order
func (g *Graph) ConnectedNodes(nodeID string) []string {
	var connected []string
	for _, edge := range g.Edges {
		if edge.Source == nodeID {
			connected = append(connected, edge.Target)
		} else if edge.Target == nodeID {
			connected = append(connected, edge.Source)
		}
	}
	return connected
}

// FilterNodes returns nodes that match the provided filter function
func (g *Graph) FilterNodes(filter NodeFilter) []Node {
	var result []Node
	for i, node := range g.Nodes {
		if filter(&g.Nodes[i]) {
			result = append(result, node)
		}
	}
	return result
}

// FilterByCategory returns the subgraph made of one category, the
// communities attached to it, and the edges among those nodes. An empty
// categoryID returns the graph unchanged.
func (g *Graph) FilterByCategory(categoryID string) *Graph {
	if categoryID == "" {
		return g
	}

	kinds := make(map[string]NodeKind, len(g.Nodes))
	for _, n := range g.Nodes {
		kinds[n.ID] = n.Kind
	}

	keep := map[string]bool{categoryID: true}
	for _, edge := range g.Edges {
		var other string
		switch categoryID {
		case edge.Source:
			other = edge.Target
		case edge.Target:
			other = edge.Source
		default:
			continue
		}
		if kinds[other] == KindCommunity {
			keep[other] = true
		}
	}

	sub := &Graph{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
	sub.Nodes = g.FilterNodes(func(n *Node) bool { return keep[n.ID] })
	for _, edge := range g.Edges {
		if keep[edge.Source] && keep[edge.Target] {
			sub.Edges = append(sub.Edges, edge)
		}
	}
	return sub
}

// CommunityCounts returns the number of communities attached to each category
func (g *Graph) CommunityCounts() map[string]int {
	counts := make(map[string]int)
	for _, edge := range g.Edges {
		if edge.Kind == EdgeCategoryCommunity {
			counts[edge.Target]++
		}
	}
	return counts
}
