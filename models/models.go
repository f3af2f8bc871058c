// Package models provides data structures for the community graph.
// It defines the catalog records (categories, communities) and the
// node/edge graph built from them for layout and rendering.
package models

import (
	"errors"
	"time"
)

// ErrNodeNotFound is returned by lookups for an unknown node ID
var ErrNodeNotFound = errors.New("node not found")

// NodeKind distinguishes the two kinds of graph vertices
type NodeKind string

const (
	KindCategory  NodeKind = "category"
	KindCommunity NodeKind = "community"
)

// EdgeKind tags the relation an edge represents
type EdgeKind string

const (
	EdgeCategoryCommunity  EdgeKind = "category-community"
	EdgeCommunityCommunity EdgeKind = "community-community"
)

// Default visual sizes. The physics uses Size for minimum separation.
const (
	CategorySize   = 20.0
	CommunitySize  = 12.0
	CommunityColor = "#666666"
)

// Category is a catalog category communities belong to
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Community is a student community listed in the catalog
type Community struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	CategoryIDs    []string `json:"categoryIds" yaml:"categoryIds"`
	MainCategoryID string   `json:"mainCategoryId,omitempty" yaml:"mainCategoryId,omitempty"`
	IsOfficial     bool     `json:"isOfficial,omitempty" yaml:"isOfficial,omitempty"`
}

// MainCategory returns the primary category ID, falling back to the first one
func (c *Community) MainCategory() string {
	if c.MainCategoryID != "" {
		return c.MainCategoryID
	}
	if len(c.CategoryIDs) > 0 {
		return c.CategoryIDs[0]
	}
	return ""
}

// Link relates two communities directly
type Link struct {
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Node represents a vertex in the graph
type Node struct {
	ID    string      `json:"id"`
	Kind  NodeKind    `json:"kind"`
	Label string      `json:"label"`
	Size  float64     `json:"size"`
	Color string      `json:"color"`
	X     float64     `json:"x"` // filled in by a layout's Apply
	Y     float64     `json:"y"`
	Data  interface{} `json:"data,omitempty"`
}

// IsCategory reports whether the node is a category vertex
func (n *Node) IsCategory() bool {
	return n.Kind == KindCategory
}

// IsCommunity reports whether the node is a community vertex
func (n *Node) IsCommunity() bool {
	return n.Kind == KindCommunity
}

// Edge represents a weighted relation between two nodes
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"` // ID of the source node
	Target string   `json:"target"` // ID of the target node
	Kind   EdgeKind `json:"kind"`
	Weight float64  `json:"weight"`
	IsMain bool     `json:"isMain"` // community to its primary category
	Color  string   `json:"color,omitempty"`
}

// Graph represents a collection of nodes and edges
type Graph struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
