// Package render draws laid-out community graphs in several output formats.
// Renderers read node positions from the graph; they never run physics.
package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/TFMV/communitygraph/models"
	"github.com/TFMV/communitygraph/physics"
)

// DefaultTimeout bounds Generate when the context carries no deadline
const DefaultTimeout = 30 * time.Second

// ErrUnsupportedFormat is returned by GetRenderer for unknown formats
var ErrUnsupportedFormat = errors.New("unsupported output format")

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (svg, ascii, json, dot, echarts)
	Title      string  // Title drawn by formats that have one
	Width      float64 // Width of the output
	Height     float64 // Height of the output
	Padding    float64 // Margin kept free around the fitted graph
	Background string  // Background color
	Fit        bool    // Scale the graph to the output; otherwise origin at the center, 1:1
	Timestamp  bool    // Include timestamp in visualization
	EdgeWidth  float64 // Width of secondary edges; main edges are drawn heavier
	FontSize   float64 // Font size for labels
	ShowLabels bool    // Show node labels
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render creates a visualization of the graph using the provided options
	Render(graph *models.Graph, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Title:      "Community Graph",
		Width:      1200,
		Height:     900,
		Padding:    40,
		Background: "#f8f8f8",
		Fit:        true,
		Timestamp:  true,
		EdgeWidth:  1.0,
		FontSize:   10.0,
		ShowLabels: true,
	}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "ascii":
		return &ASCIIRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "echarts", "html":
		return &EChartsRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Generate lays the graph out with layout, stepping until it settles or
// steps run out, writes the positions onto graph and renders it
func Generate(ctx context.Context, graph *models.Graph, layout physics.LayoutAlgorithm, steps int, options *OutputOptions) ([]byte, error) {
	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	errChan := make(chan error, 1)
	resultChan := make(chan []byte, 1)

	go func() {
		layout.Initialize(graph)

		if steps <= 0 {
			steps = 500
		}
		for i := 0; i < steps; i++ {
			if ctx.Err() != nil {
				return
			}
			if layout.Step() {
				break
			}
		}

		layout.Apply(graph)

		output, err := renderer.Render(graph, options)
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- output
	}()

	select {
	case output := <-resultChan:
		return output, nil
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("rendering aborted: %w", ctx.Err())
	}
}

// Viewport maps logical layout coordinates onto the output surface
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewViewport computes the camera for the given nodes. With Fit set the
// node bounds, radii included, are scaled to fill the output inside the
// padding; otherwise the origin sits at the center at 1:1.
func NewViewport(nodes []models.Node, options *OutputOptions) Viewport {
	center := Viewport{Scale: 1, OffsetX: options.Width / 2, OffsetY: options.Height / 2}
	if !options.Fit || len(nodes) == 0 {
		return center
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X-n.Size)
		minY = math.Min(minY, n.Y-n.Size)
		maxX = math.Max(maxX, n.X+n.Size)
		maxY = math.Max(maxY, n.Y+n.Size)
	}

	availW := options.Width - 2*options.Padding
	availH := options.Height - 2*options.Padding
	spanX, spanY := maxX-minX, maxY-minY
	if availW <= 0 || availH <= 0 || spanX <= 0 || spanY <= 0 {
		return center
	}

	scale := math.Min(availW/spanX, availH/spanY)
	return Viewport{
		Scale:   scale,
		OffsetX: options.Width/2 - (minX+maxX)/2*scale,
		OffsetY: options.Height/2 - (minY+maxY)/2*scale,
	}
}

// ToScreen converts a logical point to output coordinates
func (v Viewport) ToScreen(x, y float64) (float64, float64) {
	return x*v.Scale + v.OffsetX, y*v.Scale + v.OffsetY
}

// ToWorld converts output coordinates back to logical space
func (v Viewport) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale
}

// nodeIndex maps node IDs to their position in graph.Nodes
func nodeIndex(graph *models.Graph) map[string]*models.Node {
	index := make(map[string]*models.Node, len(graph.Nodes))
	for i := range graph.Nodes {
		index[graph.Nodes[i].ID] = &graph.Nodes[i]
	}
	return index
}

// edgeWidth returns the stroke width for an edge; main edges are doubled
func edgeWidth(edge *models.Edge, base float64) float64 {
	if base <= 0 {
		base = 1
	}
	if edge.IsMain {
		return base * 2
	}
	return base
}

func edgeColor(edge *models.Edge) string {
	if edge.Color != "" {
		return edge.Color
	}
	return "#999999"
}

func nodeColor(node *models.Node) string {
	if node.Color != "" {
		return node.Color
	}
	return models.CommunityColor
}

func labelOf(node *models.Node) string {
	if node.Label != "" {
		return node.Label
	}
	return node.ID
}

// Clamp a value between lo and hi
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
