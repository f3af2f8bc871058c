package physics

import (
	"time"
)

// step runs one simulation step: forces from a consistent read of all
// positions, then integration, then publication of the whole map.
func (e *Engine) step(dt float64, now time.Time) {
	e.acc.accumulate(e.nodes, e.index, e.edges, e.state, e.forces)
	e.meanSpeed = e.integrate(dt)
	e.iterations++
	e.publish(now)
}

// integrate applies the accumulated forces to every unpinned node and
// returns their mean speed after the update
func (e *Engine) integrate(dt float64) float64 {
	cfg := &e.cfg
	total := 0.0
	moving := 0

	for _, node := range e.nodes {
		id := node.ID
		if e.state.isPinned(id) {
			continue
		}
		pos, ok := e.state.positions[id]
		if !ok {
			continue
		}
		f := e.forces[id]
		v := e.state.velocities[id]

		v.vx += f.fx * dt
		v.vy += f.fy * dt

		v.vx *= cfg.Damping
		v.vy *= cfg.Damping

		if speed := v.speed(); speed > cfg.MaxVelocity {
			scale := cfg.MaxVelocity / speed
			v.vx *= scale
			v.vy *= scale
		}

		pos.x += v.vx * dt
		pos.y += v.vy * dt

		e.state.velocities[id] = v
		e.state.positions[id] = pos

		total += v.speed()
		moving++
	}

	if moving == 0 {
		return 0
	}
	return total / float64(moving)
}
