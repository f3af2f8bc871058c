package render

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/TFMV/communitygraph/models"
)

// SVGRenderer implements the Renderer interface for SVG output
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders the catalog graph as Scalable Vector Graphics"
}

// Render creates an SVG visualization. Edges are drawn first so nodes sit
// on top; categories are drawn after communities.
func (r *SVGRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	vp := NewViewport(graph.Nodes, options)
	index := nodeIndex(graph)

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, options.Width, options.Height, options.Width, options.Height, options.Background)

	buf.WriteString("<g class=\"edges\">\n")
	for i := range graph.Edges {
		edge := &graph.Edges[i]
		source, target := index[edge.Source], index[edge.Target]
		if source == nil || target == nil {
			continue
		}
		x1, y1 := vp.ToScreen(source.X, source.Y)
		x2, y2 := vp.ToScreen(target.X, target.Y)

		opacity := 0.4
		if edge.IsMain {
			opacity = 0.8
		}
		fmt.Fprintf(&buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%g" stroke-opacity="%g"/>
`, x1, y1, x2, y2, edgeColor(edge), edgeWidth(edge, options.EdgeWidth), opacity)
	}
	buf.WriteString("</g>\n")

	buf.WriteString("<g class=\"nodes\">\n")
	for _, kind := range []models.NodeKind{models.KindCommunity, models.KindCategory} {
		for i := range graph.Nodes {
			node := &graph.Nodes[i]
			if node.Kind != kind {
				continue
			}
			cx, cy := vp.ToScreen(node.X, node.Y)
			radius := node.Size * vp.Scale

			fmt.Fprintf(&buf, `<circle id="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="rgba(0,0,0,0.3)" stroke-width="0.5"/>
`, html.EscapeString(node.ID), cx, cy, radius, nodeColor(node))

			if options.ShowLabels {
				fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%g" fill="#333333" text-anchor="middle">%s</text>
`, cx, cy+radius+options.FontSize+2, options.FontSize, html.EscapeString(labelOf(node)))
			}
		}
	}
	buf.WriteString("</g>\n")

	if options.Timestamp {
		fmt.Fprintf(&buf, `<text x="5" y="%g" font-family="sans-serif" font-size="8" fill="#808080">%s</text>
`, options.Height-5, time.Now().Format("2006-01-02 15:04:05"))
	}

	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}
