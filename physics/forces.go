package physics

import (
	"math"

	"github.com/TFMV/communitygraph/models"
)

// accumulator computes the net force on every node for one step. It only
// reads positions; nothing is written until the integration pass.
type accumulator struct {
	cfg *Config
}

// accumulate fills out with the net force per node. out is reset first.
func (a *accumulator) accumulate(nodes []models.Node, index map[string]int, edges []models.Edge, s *store, out map[string]force) {
	for id := range out {
		delete(out, id)
	}
	for _, node := range nodes {
		out[node.ID] = force{}
	}

	add := func(id string, fx, fy float64) {
		if s.isPinned(id) {
			return
		}
		f := out[id]
		f.fx += fx
		f.fy += fy
		out[id] = f
	}

	// Pairwise repulsion
	for i := 0; i < len(nodes); i++ {
		nodeA := &nodes[i]
		posA, ok := s.positions[nodeA.ID]
		if !ok {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			nodeB := &nodes[j]
			posB, ok := s.positions[nodeB.ID]
			if !ok {
				continue
			}
			f, ok := a.repulsion(nodeA, nodeB, posA, posB)
			if !ok {
				continue
			}
			add(nodeA.ID, -f.fx, -f.fy)
			add(nodeB.ID, f.fx, f.fy)
		}
	}

	// Spring attraction along edges
	for i := range edges {
		edge := &edges[i]
		si, ok1 := index[edge.Source]
		ti, ok2 := index[edge.Target]
		if !ok1 || !ok2 || si == ti {
			continue
		}
		posS, ok1 := s.positions[edge.Source]
		posT, ok2 := s.positions[edge.Target]
		if !ok1 || !ok2 {
			continue
		}
		pinned := s.isPinned(edge.Source) || s.isPinned(edge.Target)
		f := a.spring(edge, &nodes[si], &nodes[ti], posS, posT, pinned)
		add(edge.Source, f.fx, f.fy)
		add(edge.Target, -f.fx, -f.fy)
	}

	// Centering gravity
	for i := range nodes {
		node := &nodes[i]
		pos, ok := s.positions[node.ID]
		if !ok {
			continue
		}
		f := a.gravity(node, pos)
		add(node.ID, f.fx, f.fy)
	}
}

// repulsion returns the force a exerts on b; b exerts the opposite on a.
// ok is false when the pair is beyond the cutoff radius for its kinds.
func (a *accumulator) repulsion(nodeA, nodeB *models.Node, posA, posB position) (force, bool) {
	cfg := a.cfg
	dx, dy, d := distance(posA, posB)

	bothCategories := nodeA.IsCategory() && nodeB.IsCategory()
	bothCommunities := nodeA.IsCommunity() && nodeB.IsCommunity()

	cutoff := cfg.MixedCutoff
	switch {
	case bothCategories:
		cutoff = cfg.CategoryCutoff
	case bothCommunities:
		cutoff = cfg.CommunityCutoff
	}
	if d > cutoff {
		return force{}, false
	}

	magnitude := cfg.Repulsion / (d * d)

	switch {
	case bothCategories:
		magnitude *= cfg.CategoryCloseness.factor(d, cfg.ClosenessFloor)
	case bothCommunities:
		magnitude *= cfg.CommunityCloseness.factor(d, cfg.ClosenessFloor)
	}

	minDistance := math.Max(cfg.MinSeparation, (nodeA.Size+nodeB.Size)/2)
	if d < minDistance {
		magnitude *= cfg.OverlapBoost
	}

	magnitude = math.Min(magnitude, cfg.Repulsion*cfg.MaxForceRatio)

	return force{fx: dx / d * magnitude, fy: dy / d * magnitude}, true
}

// spring returns the Hookean force on the edge's source; the target gets
// the opposite. Positive extension pulls the ends together.
func (a *accumulator) spring(edge *models.Edge, source, target *models.Node, posS, posT position, pinned bool) force {
	cfg := a.cfg
	dx, dy, d := distance(posS, posT)

	k := cfg.Attraction
	if source.Kind != target.Kind {
		k *= cfg.MixedSpringBoost
	}
	if edge.IsMain {
		k *= cfg.MainSpringBoost
	}
	if pinned {
		k *= cfg.DragSpringBoost
	}

	magnitude := k * (d - cfg.SpringLength)
	return force{fx: dx / d * magnitude, fy: dy / d * magnitude}
}

// gravity pulls communities that drifted past GravityRadius back toward
// the origin. Categories are anchors and never feel it.
func (a *accumulator) gravity(node *models.Node, pos position) force {
	if node.IsCategory() {
		return force{}
	}
	d := math.Hypot(pos.x, pos.y)
	if d <= a.cfg.GravityRadius {
		return force{}
	}
	strength := a.cfg.Gravity * (d - a.cfg.GravityRadius) / d
	return force{fx: -pos.x * strength, fy: -pos.y * strength}
}
