package physics

// Pin freezes a node against forces. It still pushes and pulls its
// neighbors, and its edges get the drag spring boost. Pin reports false
// for a node that is not in the layout.
func (e *Engine) Pin(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.has(id) {
		return false
	}
	e.state.pinned[id] = struct{}{}
	return true
}

// Unpin hands a node back to the simulation, starting at rest from where
// it was left
func (e *Engine) Unpin(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.has(id) {
		return false
	}
	delete(e.state.pinned, id)
	e.state.velocities[id] = velocity{}
	return true
}

// UnpinAll releases every pinned node
func (e *Engine) UnpinAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id := range e.state.pinned {
		e.state.velocities[id] = velocity{}
	}
	clear(e.state.pinned)
}

// Pinned reports whether a node is pinned
func (e *Engine) Pinned(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.isPinned(id)
}

// SetPosition moves a node immediately and zeroes its velocity so it does
// not shoot off when released. The new position is published right away
// rather than on the next tick.
func (e *Engine) SetPosition(id string, x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.has(id) {
		return false
	}
	e.state.positions[id] = position{x: x, y: y}
	e.state.velocities[id] = velocity{}
	e.publish(e.clock())
	return true
}
