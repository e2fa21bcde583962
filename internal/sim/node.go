package sim

// Node is one simulated circle on the canvas: a task bubble or the synthetic
// center (add-button) node. Position and velocity are in world coordinates.
//
// FX/FY non-nil means the node is pinned: its position is driven externally
// (by a pointer) and the integrator only keeps velocity bookkeeping. At most
// one task node is pinned at a time; the center node is held at the viewport
// center by the engine itself and is never gesture-pinned.
type Node struct {
	ID     string
	Radius float64

	X, Y   float64
	VX, VY float64
	FX, FY *float64

	IsCenter  bool
	Completed bool
	Color     string
	Title     string
}

// Pinned reports whether the node's position is externally driven.
func (n *Node) Pinned() bool {
	return n.FX != nil && n.FY != nil
}

// Pin fixes the node at (x, y) until Unpin.
func (n *Node) Pin(x, y float64) {
	n.FX, n.FY = &x, &y
	n.X, n.Y = x, y
}

// Unpin releases the node back to the integrator.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// SetPinned moves an already-pinned node. No-op when the node is free.
func (n *Node) SetPinned(x, y float64) {
	if !n.Pinned() {
		return
	}
	*n.FX, *n.FY = x, y
	n.X, n.Y = x, y
}
