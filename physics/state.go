package physics

import (
	"github.com/TFMV/communitygraph/models"
)

// store owns every piece of mutable simulation state. Each node in the
// current list has exactly one position and one velocity entry.
type store struct {
	positions  map[string]position
	velocities map[string]velocity
	pinned     map[string]struct{}
}

func newStore() *store {
	return &store{
		positions:  make(map[string]position),
		velocities: make(map[string]velocity),
		pinned:     make(map[string]struct{}),
	}
}

// reconcile brings the store in line with nodes: unseen IDs are placed,
// IDs no longer present are purged, survivors keep their state.
func (s *store) reconcile(nodes []models.Node, placer Placer) (added, removed int) {
	present := make(map[string]struct{}, len(nodes))
	for i, node := range nodes {
		present[node.ID] = struct{}{}
		if _, ok := s.positions[node.ID]; !ok {
			p := placer.Place(node.ID, i, len(nodes))
			s.positions[node.ID] = position{x: p.X, y: p.Y}
			added++
		}
		if _, ok := s.velocities[node.ID]; !ok {
			s.velocities[node.ID] = velocity{}
		}
	}

	for id := range s.positions {
		if _, ok := present[id]; !ok {
			delete(s.positions, id)
			delete(s.velocities, id)
			delete(s.pinned, id)
			removed++
		}
	}
	return added, removed
}

func (s *store) has(id string) bool {
	_, ok := s.positions[id]
	return ok
}

func (s *store) isPinned(id string) bool {
	_, ok := s.pinned[id]
	return ok
}
