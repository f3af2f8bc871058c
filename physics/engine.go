package physics

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TFMV/communitygraph/models"
)

// Engine is the live layout for one graph. A single mutex serializes
// ticks, graph swaps and drag calls, so there is exactly one simulation
// lane no matter how many goroutines talk to it. Readers take snapshots
// without locking.
type Engine struct {
	mu         sync.Mutex
	cfg        Config
	nodes      []models.Node
	index      map[string]int
	edges      []models.Edge
	state      *store
	acc        accumulator
	forces     map[string]force
	placer     Placer
	logger     *slog.Logger
	clock      func() time.Time
	last       time.Time
	seq        uint64
	iterations int
	meanSpeed  float64
	snapshot   atomic.Pointer[Snapshot]
}

var _ LayoutAlgorithm = (*Engine)(nil)

// Option configures an Engine
type Option func(*Engine)

// WithPlacer sets how new nodes are positioned
func WithPlacer(p Placer) Option {
	return func(e *Engine) { e.placer = p }
}

// WithLogger sets the engine's logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the clock used to timestamp snapshots
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

// NewEngine creates an engine with an empty graph
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		index:  make(map[string]int),
		state:  newStore(),
		forces: make(map[string]force),
		placer: NewNoisePlacer(DefaultRing, 1),
		logger: slog.New(slog.DiscardHandler),
		clock:  time.Now,
	}
	e.acc = accumulator{cfg: &e.cfg}
	for _, opt := range opts {
		opt(e)
	}
	e.publish(e.clock())
	return e
}

// Config returns the parameters the engine was built with
func (e *Engine) Config() Config {
	return e.cfg
}

// SetGraph replaces the node and edge lists. Nodes already in the layout
// keep their position, velocity and pin; new nodes are placed; state for
// vanished nodes is dropped. Self-loops are ignored.
func (e *Engine) SetGraph(nodes []models.Node, edges []models.Edge) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nodes = append([]models.Node(nil), nodes...)
	e.index = make(map[string]int, len(nodes))
	for i, node := range e.nodes {
		e.index[node.ID] = i
	}

	e.edges = make([]models.Edge, 0, len(edges))
	loops := 0
	for _, edge := range edges {
		if edge.Source == edge.Target {
			loops++
			continue
		}
		e.edges = append(e.edges, edge)
	}
	if loops > 0 {
		e.logger.Warn("ignoring self-loop edges", "count", loops)
	}

	added, removed := e.state.reconcile(e.nodes, e.placer)
	e.logger.Debug("graph reconciled",
		"nodes", len(e.nodes), "edges", len(e.edges), "added", added, "removed", removed)

	e.publish(e.clock())
}

// Tick is the frame callback. It applies a step only when at least one
// frame interval has passed since the last applied step; otherwise it does
// nothing. The step's delta time is capped at MaxStep. Tick reports whether
// a step was applied.
func (e *Engine) Tick(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.last.IsZero() {
		e.last = now
		return false
	}

	elapsed := now.Sub(e.last)
	if elapsed < 0 {
		e.last = now
		return false
	}
	if elapsed < e.cfg.FrameInterval() {
		return false
	}
	e.last = now

	if limit := e.cfg.MaxStep(); elapsed > limit {
		elapsed = limit
	}
	e.step(elapsed.Seconds(), now)
	return true
}

// Advance applies one step of length dt, capped at MaxStep, without
// throttling. It drives headless layouts.
func (e *Engine) Advance(dt time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if limit := e.cfg.MaxStep(); dt > limit {
		dt = limit
	}
	e.step(dt.Seconds(), e.clock())
}

// Snapshot returns the most recently published positions
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Nodes returns a copy of the current node list
func (e *Engine) Nodes() []models.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Node(nil), e.nodes...)
}

// Len returns the number of nodes with simulation state
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.state.positions)
}

// Position returns the live position of a node
func (e *Engine) Position(id string) (Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.state.positions[id]
	return Point{X: p.x, Y: p.y}, ok
}

// Velocity returns the live velocity of a node
func (e *Engine) Velocity(id string) (vx, vy float64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.state.velocities[id]
	return v.vx, v.vy, ok
}

// Iterations returns the number of applied steps
func (e *Engine) Iterations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.iterations
}

// GetName returns the name of the layout algorithm
func (e *Engine) GetName() string {
	return "Community Force Layout"
}

// Initialize loads the graph into the engine
func (e *Engine) Initialize(graph *models.Graph) {
	e.SetGraph(graph.Nodes, graph.Edges)
}

// Step advances one full-length step and reports whether the layout has
// settled: mean node speed under the stabilization threshold.
func (e *Engine) Step() bool {
	e.Advance(e.cfg.MaxStep())

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meanSpeed < e.cfg.StabilizationThreshold
}

// Apply updates node positions in the graph
func (e *Engine) Apply(graph *models.Graph) {
	e.Snapshot().Apply(graph)
}

// publish stores a fresh snapshot; callers hold mu or own e exclusively
func (e *Engine) publish(now time.Time) {
	e.seq++
	e.snapshot.Store(newSnapshot(e.seq, now, e.state.positions))
}
