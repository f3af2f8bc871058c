package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewGraph creates a new empty graph with a unique ID and timestamps
func NewGraph(name string) *Graph {
	now := time.Now()
	return &Graph{
		ID:        uuid.New().String(),
		Name:      name,
		Nodes:     []Node{},
		Edges:     []Edge{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewCategoryNode creates the vertex for a category
func NewCategoryNode(c Category) *Node {
	return &Node{
		ID:    c.ID,
		Kind:  KindCategory,
		Label: c.Name,
		Size:  CategorySize,
		Color: c.Color,
		Data:  c,
	}
}

// NewCommunityNode creates the vertex for a community
func NewCommunityNode(c Community) *Node {
	return &Node{
		ID:    c.ID,
		Kind:  KindCommunity,
		Label: c.Name,
		Size:  CommunitySize,
		Color: CommunityColor,
		Data:  c,
	}
}

// NewEdge creates an edge with a deterministic "source-target" ID
func NewEdge(source, target string, kind EdgeKind, weight float64) *Edge {
	return &Edge{
		ID:     source + "-" + target,
		Source: source,
		Target: target,
		Kind:   kind,
		Weight: weight,
	}
}

// BuildGraph turns catalog records into a graph. Every community gets one
// edge per category it belongs to; the edge to its main category is marked
// IsMain and weighted double.
func BuildGraph(name string, categories []Category, communities []Community, links []Link) (*Graph, error) {
	g := NewGraph(name)
	colors := make(map[string]string, len(categories))

	for _, c := range categories {
		if err := g.AddNode(NewCategoryNode(c)); err != nil {
			return nil, err
		}
		colors[c.ID] = c.Color
	}

	for _, c := range communities {
		if err := g.AddCommunity(c, colors); err != nil {
			return nil, err
		}
	}

	for _, l := range links {
		weight := l.Weight
		if weight == 0 {
			weight = 1
		}
		if err := g.AddEdge(NewEdge(l.Source, l.Target, EdgeCommunityCommunity, weight)); err != nil {
			return nil, fmt.Errorf("link %s -> %s: %w", l.Source, l.Target, err)
		}
	}

	return g, nil
}

// AddCommunity adds a community node and its category edges. colors maps
// category IDs to edge colors and may be nil.
// Nothing is added when a category is unknown.
func (g *Graph) AddCommunity(c Community, colors map[string]string) error {
	for _, categoryID := range c.CategoryIDs {
		node, err := g.FindNodeByID(categoryID)
		if err != nil || node.Kind != KindCategory {
			return fmt.Errorf("community %s: unknown category %s", c.ID, categoryID)
		}
	}
	if err := g.AddNode(NewCommunityNode(c)); err != nil {
		return err
	}

	main := c.MainCategory()
	for _, categoryID := range c.CategoryIDs {
		isMain := categoryID == main
		weight := 1.0
		if isMain {
			weight = 2.0
		}
		edge := NewEdge(c.ID, categoryID, EdgeCategoryCommunity, weight)
		edge.IsMain = isMain
		edge.Color = colors[categoryID]

		if err := g.AddEdge(edge); err != nil {
			return fmt.Errorf("community %s: %w", c.ID, err)
		}
	}
	return nil
}

// AddNode adds a node to the graph, rejecting duplicate IDs
func (g *Graph) AddNode(node *Node) error {
	if node.ID == "" {
		return fmt.Errorf("node has an empty ID")
	}
	if _, err := g.FindNodeByID(node.ID); err == nil {
		return fmt.Errorf("duplicate node ID %s", node.ID)
	}
	g.Nodes = append(g.Nodes, *node)
	g.UpdatedAt = time.Now()
	return nil
}

// AddEdge adds an edge to the graph
func (g *Graph) AddEdge(edge *Edge) error {
	if edge.Source == edge.Target {
		return fmt.Errorf("self-loop on node %s", edge.Source)
	}

	// Check if source and target nodes exist
	sourceExists, targetExists := false, false
	for _, node := range g.Nodes {
		if node.ID == edge.Source {
			sourceExists = true
		}
		if node.ID == edge.Target {
			targetExists = true
		}
		if sourceExists && targetExists {
			break
		}
	}

	if !sourceExists {
		return fmt.Errorf("source node with ID %s does not exist in the graph", edge.Source)
	}

	if !targetExists {
		return fmt.Errorf("target node with ID %s does not exist in the graph", edge.Target)
	}

	g.Edges = append(g.Edges, *edge)
	g.UpdatedAt = time.Now()
	return nil
}

// RemoveNode removes a node and all connected edges from the graph
func (g *Graph) RemoveNode(nodeID string) {
	var newNodes []Node
	for _, node := range g.Nodes {
		if node.ID != nodeID {
			newNodes = append(newNodes, node)
		}
	}
	g.Nodes = newNodes

	var newEdges []Edge
	for _, edge := range g.Edges {
		if edge.Source != nodeID && edge.Target != nodeID {
			newEdges = append(newEdges, edge)
		}
	}
	g.Edges = newEdges

	g.UpdatedAt = time.Now()
}

// Clone returns a copy of the graph that shares no slices with the original
func (g *Graph) Clone() *Graph {
	c := *g
	c.Nodes = append([]Node(nil), g.Nodes...)
	c.Edges = append([]Edge(nil), g.Edges...)
	return &c
}
