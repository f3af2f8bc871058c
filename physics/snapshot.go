package physics

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/TFMV/communitygraph/models"
)

// Point is a position in logical layout space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot is an immutable view of all node positions at one instant.
// It is published whole after each applied step, so readers never see a
// half-updated layout.
type Snapshot struct {
	seq       uint64
	taken     time.Time
	positions map[string]Point
}

func newSnapshot(seq uint64, taken time.Time, positions map[string]position) *Snapshot {
	points := make(map[string]Point, len(positions))
	for id, p := range positions {
		points[id] = Point{X: p.x, Y: p.y}
	}
	return &Snapshot{seq: seq, taken: taken, positions: points}
}

// Seq increases by one with every published snapshot
func (s *Snapshot) Seq() uint64 { return s.seq }

// Time is when the snapshot was published
func (s *Snapshot) Time() time.Time { return s.taken }

// Len returns the number of positioned nodes
func (s *Snapshot) Len() int { return len(s.positions) }

// Position returns the position of a node
func (s *Snapshot) Position(id string) (Point, bool) {
	p, ok := s.positions[id]
	return p, ok
}

// IDs returns the positioned node IDs in sorted order
func (s *Snapshot) IDs() []string {
	ids := make([]string, 0, len(s.positions))
	for id := range s.positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Positions returns a copy of the position map
func (s *Snapshot) Positions() map[string]Point {
	out := make(map[string]Point, len(s.positions))
	for id, p := range s.positions {
		out[id] = p
	}
	return out
}

// Apply copies positions onto the graph's nodes
func (s *Snapshot) Apply(graph *models.Graph) {
	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		if p, ok := s.positions[node.ID]; ok {
			node.X = p.X
			node.Y = p.Y
		}
	}
}

// NodeAt returns the topmost node whose disc contains (x, y). Nodes drawn
// later sit on top, so the list is scanned from the end.
func (s *Snapshot) NodeAt(nodes []models.Node, x, y float64) (string, bool) {
	for i := len(nodes) - 1; i >= 0; i-- {
		p, ok := s.positions[nodes[i].ID]
		if !ok {
			continue
		}
		if math.Hypot(x-p.X, y-p.Y) <= nodes[i].Size {
			return nodes[i].ID, true
		}
	}
	return "", false
}

// MarshalJSON encodes the snapshot as {"seq":..,"positions":{id:{x,y}}}
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Seq       uint64           `json:"seq"`
		Time      time.Time        `json:"time"`
		Positions map[string]Point `json:"positions"`
	}{s.seq, s.taken, s.positions})
}
