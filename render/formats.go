package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/TFMV/communitygraph/models"
)

// JSONRenderer implements the Renderer interface for JSON output
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders the laid-out graph as JSON for custom visualizations"
}

// Render serializes nodes with their logical positions
func (r *JSONRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	type jsonNode struct {
		ID    string          `json:"id"`
		Kind  models.NodeKind `json:"kind"`
		Label string          `json:"label"`
		X     float64         `json:"x"`
		Y     float64         `json:"y"`
		Size  float64         `json:"size"`
		Color string          `json:"color"`
	}

	type jsonGraph struct {
		Nodes    []jsonNode             `json:"nodes"`
		Edges    []models.Edge          `json:"edges"`
		Metadata map[string]interface{} `json:"metadata"`
	}

	jsonData := jsonGraph{
		Nodes: make([]jsonNode, 0, len(graph.Nodes)),
		Edges: graph.Edges,
		Metadata: map[string]interface{}{
			"name":       graph.Name,
			"width":      options.Width,
			"height":     options.Height,
			"background": options.Background,
			"nodeCount":  len(graph.Nodes),
			"edgeCount":  len(graph.Edges),
		},
	}
	if jsonData.Edges == nil {
		jsonData.Edges = []models.Edge{}
	}
	if options.Timestamp {
		jsonData.Metadata["timestamp"] = time.Now().Format(time.RFC3339)
	}

	for _, node := range graph.Nodes {
		jsonData.Nodes = append(jsonData.Nodes, jsonNode{
			ID:    node.ID,
			Kind:  node.Kind,
			Label: node.Label,
			X:     node.X,
			Y:     node.Y,
			Size:  node.Size,
			Color: node.Color,
		})
	}

	return json.MarshalIndent(jsonData, "", "  ")
}

// DOTRenderer implements the Renderer interface for Graphviz output
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders the graph in Graphviz DOT format with pinned positions (neato -n)"
}

// Render writes an undirected DOT graph. Positions are in points with
// y flipped, since Graphviz grows y upward.
func (r *DOTRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	vp := NewViewport(graph.Nodes, options)

	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%s, size=\"%g,%g\"];\n",
		strconv.Quote(options.Background), options.Width/72.0, options.Height/72.0)
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fontname=\"Arial\", fontsize=%g];\n", options.FontSize)

	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		x, y := vp.ToScreen(node.X, node.Y)
		fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=%s, width=%g, pos=\"%.2f,%.2f!\"];\n",
			strconv.Quote(node.ID), strconv.Quote(labelOf(node)), strconv.Quote(nodeColor(node)),
			2*node.Size*vp.Scale/72.0, x, options.Height-y)
	}

	for i := range graph.Edges {
		edge := &graph.Edges[i]
		style := "dashed"
		if edge.IsMain || edge.Kind == models.EdgeCommunityCommunity {
			style = "solid"
		}
		fmt.Fprintf(&buf, "  %s -- %s [color=%s, penwidth=%g, weight=%g, style=%s];\n",
			strconv.Quote(edge.Source), strconv.Quote(edge.Target), strconv.Quote(edgeColor(edge)),
			edgeWidth(edge, options.EdgeWidth), edge.Weight, style)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
