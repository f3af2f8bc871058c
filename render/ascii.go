package render

import (
	"strings"
	"time"

	"github.com/TFMV/communitygraph/models"
)

const (
	categorySymbol  = '@'
	communitySymbol = 'o'
	mainEdgeSymbol  = '*'
	edgeSymbol      = '.'
)

// ASCIIGrid is the character surface the ASCII renderer draws on. One
// cell covers 10x20 output units, roughly the aspect of a terminal cell.
type ASCIIGrid struct {
	Cols, Rows int
	vp         Viewport
	width      float64
	height     float64
}

// NewASCIIGrid sizes the grid for the options and fits it to the graph
func NewASCIIGrid(graph *models.Graph, options *OutputOptions) *ASCIIGrid {
	cols := max(int(options.Width/10), 20)
	rows := max(int(options.Height/20), 8)
	return &ASCIIGrid{
		Cols:   cols,
		Rows:   rows,
		vp:     NewViewport(graph.Nodes, options),
		width:  options.Width,
		height: options.Height,
	}
}

// Cell returns the grid cell for a logical point, kept inside the border
func (g *ASCIIGrid) Cell(x, y float64) (col, row int) {
	sx, sy := g.vp.ToScreen(x, y)
	col = int(sx*float64(g.Cols-2)/g.width) + 1
	row = int(sy*float64(g.Rows-2)/g.height) + 1
	return clamp(col, 1, g.Cols-2), clamp(row, 1, g.Rows-2)
}

// World returns the logical point at the center of a grid cell
func (g *ASCIIGrid) World(col, row int) (x, y float64) {
	sx := (float64(col-1) + 0.5) * g.width / float64(g.Cols-2)
	sy := (float64(row-1) + 0.5) * g.height / float64(g.Rows-2)
	return g.vp.ToWorld(sx, sy)
}

// ASCIIRenderer implements the Renderer interface for terminal output
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders the catalog graph as ASCII art for terminal output"
}

// Render draws the graph on a character grid
func (r *ASCIIRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	g := NewASCIIGrid(graph, options)
	width, height := g.Cols, g.Rows

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	// Border
	for i := 0; i < width; i++ {
		grid[0][i] = '-'
		grid[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		grid[i][0] = '|'
		grid[i][width-1] = '|'
	}
	grid[0][0] = '+'
	grid[0][width-1] = '+'
	grid[height-1][0] = '+'
	grid[height-1][width-1] = '+'

	index := nodeIndex(graph)
	// secondary edges first so main edges stay visible where they cross
	for _, main := range []bool{false, true} {
		symbol := edgeSymbol
		if main {
			symbol = mainEdgeSymbol
		}
		for i := range graph.Edges {
			edge := &graph.Edges[i]
			if edge.IsMain != main {
				continue
			}
			source, target := index[edge.Source], index[edge.Target]
			if source == nil || target == nil {
				continue
			}
			x1, y1 := g.Cell(source.X, source.Y)
			x2, y2 := g.Cell(target.X, target.Y)
			drawLine(grid, x1, y1, x2, y2, symbol)
		}
	}

	for _, kind := range []models.NodeKind{models.KindCommunity, models.KindCategory} {
		for i := range graph.Nodes {
			node := &graph.Nodes[i]
			if node.Kind != kind {
				continue
			}
			x, y := g.Cell(node.X, node.Y)
			symbol := communitySymbol
			if node.IsCategory() {
				symbol = categorySymbol
			}
			grid[y][x] = symbol

			if options.ShowLabels && node.IsCategory() && y+1 < height-1 {
				label := []rune(labelOf(node))
				for j := 0; j < len(label) && x+j < width-1; j++ {
					if isNodeSymbol(grid[y+1][x+j]) {
						break
					}
					grid[y+1][x+j] = label[j]
				}
			}
		}
	}

	if title := options.Title; title != "" && len(title) < width-4 && height > 3 {
		for i, c := range []rune(title) {
			grid[0][i+2] = c
		}
	}

	if options.Timestamp && height > 4 {
		timeStr := time.Now().Format("2006-01-02 15:04")
		if len(timeStr) < width-4 {
			for i, c := range timeStr {
				grid[height-1][i+2] = c
			}
		}
	}

	var result strings.Builder
	for i, row := range grid {
		result.WriteString(string(row))
		if i < len(grid)-1 {
			result.WriteRune('\n')
		}
	}
	return []byte(result.String()), nil
}

func isNodeSymbol(r rune) bool {
	return r == categorySymbol || r == communitySymbol
}

// Draw a line on the ASCII grid using Bresenham's algorithm
func drawLine(grid [][]rune, x1, y1, x2, y2 int, symbol rune) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if y1 > 0 && y1 < len(grid)-1 && x1 > 0 && x1 < len(grid[0])-1 {
			grid[y1][x1] = symbol
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}
