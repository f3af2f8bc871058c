// Package tui is a terminal viewer for a live layout. Every frame tick
// advances the engine, the view draws it with the ASCII renderer, and the
// mouse drags nodes around.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TFMV/communitygraph/models"
	"github.com/TFMV/communitygraph/physics"
	"github.com/TFMV/communitygraph/render"
)

// One terminal cell covers this many layout units, matching render.ASCIIGrid
const (
	unitsPerCol = 10
	unitsPerRow = 20
)

var (
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	dragStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

// frameMsg is one display frame
type frameMsg time.Time

// GraphMsg replaces the graph on screen; the engine keeps surviving nodes
type GraphMsg struct {
	Graph *models.Graph
}

// ErrorMsg shows an error in the status line without stopping the viewer
type ErrorMsg struct {
	Err error
}

// Model is the bubbletea model for the viewer
type Model struct {
	engine   *physics.Engine
	graph    *models.Graph
	options  render.OutputOptions
	interval time.Duration
	keys     KeyMap

	width  int
	height int

	dragging string
	// dragGrid is the mapping at press time, held until release
	dragGrid *render.ASCIIGrid
	err      error
}

// New creates a viewer for graph. The graph is loaded into engine.
func New(engine *physics.Engine, graph *models.Graph) Model {
	cfg := engine.Config()
	interval := cfg.TickInterval()

	options := render.NewDefaultOptions("ascii")
	options.Title = graph.Name
	options.Timestamp = false
	options.Fit = false

	engine.SetGraph(graph.Nodes, graph.Edges)

	m := Model{
		engine:   engine,
		graph:    graph,
		options:  *options,
		interval: interval,
		keys:     DefaultKeyMap,
	}
	m.resize(80, 24)
	return m
}

// Run shows the viewer until the user quits or ctx is cancelled. send, when
// not nil, receives a function that delivers messages such as GraphMsg to
// the running program.
func Run(ctx context.Context, m Model, send func(func(tea.Msg))) error {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if send != nil {
		send(p.Send)
	}
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.engine.Tick(time.Time(msg))
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Recenter):
			m.engine.UnpinAll()
			m.dragging, m.dragGrid = "", nil
		case key.Matches(msg, m.keys.Fit):
			m.options.Fit = !m.options.Fit
			m.regrid()
		case key.Matches(msg, m.keys.Labels):
			m.options.ShowLabels = !m.options.ShowLabels
		}
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case GraphMsg:
		m.graph = msg.Graph
		m.options.Title = msg.Graph.Name
		m.engine.SetGraph(msg.Graph.Nodes, msg.Graph.Edges)
		if m.dragging != "" && !m.engine.Pinned(m.dragging) {
			m.dragging, m.dragGrid = "", nil
		}
		m.err = nil
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		graph := m.positioned()
		grid := render.NewASCIIGrid(graph, &m.options)
		id, ok := nodeAt(graph, grid, msg.X, msg.Y)
		if !ok {
			return
		}
		m.dragging, m.dragGrid = id, grid
		m.engine.Pin(id)
		x, y := grid.World(msg.X, msg.Y)
		m.engine.SetPosition(id, x, y)

	case tea.MouseActionMotion:
		if m.dragging == "" {
			return
		}
		x, y := m.dragGrid.World(msg.X, msg.Y)
		m.engine.SetPosition(m.dragging, x, y)

	case tea.MouseActionRelease:
		if m.dragging != "" {
			m.engine.Unpin(m.dragging)
			m.dragging, m.dragGrid = "", nil
		}
	}
}

// resize maps the terminal onto the grid: all rows but the status line
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.options.Width = float64(width * unitsPerCol)
	m.options.Height = float64(max(height-1, 1) * unitsPerRow)
	m.regrid()
}

// regrid remaps an ongoing drag after the screen mapping changed
func (m *Model) regrid() {
	if m.dragging != "" {
		m.dragGrid = render.NewASCIIGrid(m.positioned(), &m.options)
	}
}

func (m Model) View() string {
	graph := m.positioned()
	out, err := (&render.ASCIIRenderer{}).Render(graph, &m.options)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	return graphStyle.Render(string(out)) + "\n" + m.status()
}

func (m Model) status() string {
	if m.err != nil {
		return errorStyle.Render("reload failed: " + m.err.Error())
	}

	parts := []string{
		fmt.Sprintf("%d nodes", len(m.graph.Nodes)),
		fmt.Sprintf("%d edges", len(m.graph.Edges)),
		fmt.Sprintf("step %d", m.engine.Iterations()),
	}
	if m.options.Fit {
		parts = append(parts, "fit")
	}
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	line := statusStyle.Render(strings.Join(parts, " · "))
	if m.dragging != "" {
		line = dragStyle.Render("dragging "+m.dragging) + "  " + line
	}
	return line
}

// positioned returns a copy of the graph with the latest positions
func (m Model) positioned() *models.Graph {
	graph := m.graph.Clone()
	m.engine.Snapshot().Apply(graph)
	return graph
}

// nodeAt finds the node drawn at a terminal cell, falling back to one in a
// neighbouring cell. Ties go to categories.
func nodeAt(graph *models.Graph, grid *render.ASCIIGrid, col, row int) (string, bool) {
	best, bestDist := "", 2
	for _, kind := range []models.NodeKind{models.KindCategory, models.KindCommunity} {
		for i := range graph.Nodes {
			node := &graph.Nodes[i]
			if node.Kind != kind {
				continue
			}
			c, r := grid.Cell(node.X, node.Y)
			dist := max(abs(c-col), abs(r-row))
			if dist < bestDist {
				best, bestDist = node.ID, dist
			}
		}
	}
	return best, best != ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
