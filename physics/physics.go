// Package physics implements the live force-directed layout for the
// community graph: a state store of positions and velocities, a force
// accumulator, a throttled integrator, and drag interaction.
//
// All coordinates live in an untransformed logical space centered at the
// origin. Camera transforms belong to renderers.
package physics

import (
	"math"

	"github.com/TFMV/communitygraph/models"
)

// LayoutAlgorithm defines an interface for layout algorithms
type LayoutAlgorithm interface {
	Initialize(graph *models.Graph)
	Step() bool // Returns true if stable, false if needs more steps
	Apply(graph *models.Graph)
	GetName() string
}

// epsilon floors distances before any division
const epsilon = 0.0001

// Force vector components
type force struct {
	fx, fy float64
}

// Position coordinates
type position struct {
	x, y float64
}

// Velocity vector components
type velocity struct {
	vx, vy float64
}

func (v velocity) speed() float64 {
	return math.Hypot(v.vx, v.vy)
}

// distance returns the displacement from a to b and its length, floored
// at epsilon so coincident points never divide by zero
func distance(a, b position) (dx, dy, d float64) {
	dx = b.x - a.x
	dy = b.y - a.y
	d = math.Sqrt(dx*dx + dy*dy)
	if d < epsilon {
		d = epsilon
	}
	return dx, dy, d
}
