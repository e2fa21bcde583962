package sim

import "math"

// Config holds the force-layout tuning constants. Zero values are replaced by
// the defaults below, so callers can override just the knobs they care about.
type Config struct {
	// MinRadius/MaxRadius clamp node radii on SetNodes.
	MinRadius float64
	MaxRadius float64

	// CenterStrength pulls free nodes toward the viewport center each tick.
	// While a node is selected the pull is multiplied by SelectedDamping so
	// the layout does not fight a modal overlay.
	CenterStrength  float64
	SelectedDamping float64

	// RepulsionStrength scales many-body repulsion per unit of node radius.
	// The center node's repulsion is further multiplied by CenterBoost so it
	// keeps a clear halo.
	RepulsionStrength float64
	CenterBoost       float64

	// CollisionIterations is how many pairwise collision passes run per tick.
	// SelectedShrink/CenterExpand scale the effective collision radius of the
	// selected and center nodes respectively.
	CollisionIterations int
	CollisionPadding    float64
	SelectedShrink      float64
	CenterExpand        float64

	// HaloMargin is the extra clearance the post-force guard enforces between
	// every task node and the center node's circle.
	HaloMargin float64

	// VelocityDecay is the per-tick friction factor applied to velocities.
	VelocityDecay float64

	// AlphaDecay moves alpha geometrically toward alphaTarget; AlphaMin is the
	// rest threshold below which the layout is considered settled.
	AlphaDecay float64
	AlphaMin   float64
}

// DefaultConfig returns the tuning used by the app.
func DefaultConfig() Config {
	return Config{
		MinRadius:           30,
		MaxRadius:           120,
		CenterStrength:      0.03,
		SelectedDamping:     0.25,
		RepulsionStrength:   8,
		CenterBoost:         4,
		CollisionIterations: 40,
		CollisionPadding:    2,
		SelectedShrink:      0.6,
		CenterExpand:        1.25,
		HaloMargin:          10,
		VelocityDecay:       0.6,
		AlphaDecay:          0.08,
		AlphaMin:            0.005,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinRadius == 0 {
		c.MinRadius = d.MinRadius
	}
	if c.MaxRadius == 0 {
		c.MaxRadius = d.MaxRadius
	}
	if c.CenterStrength == 0 {
		c.CenterStrength = d.CenterStrength
	}
	if c.SelectedDamping == 0 {
		c.SelectedDamping = d.SelectedDamping
	}
	if c.RepulsionStrength == 0 {
		c.RepulsionStrength = d.RepulsionStrength
	}
	if c.CenterBoost == 0 {
		c.CenterBoost = d.CenterBoost
	}
	if c.CollisionIterations == 0 {
		c.CollisionIterations = d.CollisionIterations
	}
	if c.CollisionPadding == 0 {
		c.CollisionPadding = d.CollisionPadding
	}
	if c.SelectedShrink == 0 {
		c.SelectedShrink = d.SelectedShrink
	}
	if c.CenterExpand == 0 {
		c.CenterExpand = d.CenterExpand
	}
	if c.HaloMargin == 0 {
		c.HaloMargin = d.HaloMargin
	}
	if c.VelocityDecay == 0 {
		c.VelocityDecay = d.VelocityDecay
	}
	if c.AlphaDecay == 0 {
		c.AlphaDecay = d.AlphaDecay
	}
	if c.AlphaMin == 0 {
		c.AlphaMin = d.AlphaMin
	}
	return c
}

// Engine is the force-directed layout solver. It owns the node arena and is
// advanced one tick at a time by the frame loop. Not safe for concurrent use;
// the whole pipeline is single-threaded by design.
type Engine struct {
	cfg Config

	nodes []*Node
	byID  map[string]*Node

	width, height float64

	alpha       float64
	alphaTarget float64

	selectedID string
}

// New creates an engine with the given tuning.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:   cfg.withDefaults(),
		byID:  make(map[string]*Node),
		alpha: 1,
	}
}

// SetViewport updates the world dimensions. Must be called synchronously on
// resize, before the next Step.
func (e *Engine) SetViewport(w, h float64) {
	e.width, e.height = w, h
}

// SetNodes replaces the node arena. Position/velocity preservation decisions
// belong to the reconciler; the engine consumes the slice verbatim apart from
// clamping radii into [MinRadius, MaxRadius].
func (e *Engine) SetNodes(nodes []*Node) {
	e.nodes = nodes
	e.byID = make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		n.Radius = math.Max(e.cfg.MinRadius, math.Min(e.cfg.MaxRadius, n.Radius))
		e.byID[n.ID] = n
	}
}

// Nodes returns the arena in render order (last drawn on top).
func (e *Engine) Nodes() []*Node { return e.nodes }

// Get returns the node with the given id, or nil.
func (e *Engine) Get(id string) *Node { return e.byID[id] }

// Center returns the synthetic center node, or nil before the first reconcile.
func (e *Engine) Center() *Node {
	for _, n := range e.nodes {
		if n.IsCenter {
			return n
		}
	}
	return nil
}

// SetSelected marks the node in modal/edit mode ("" clears). The selected
// node is exempt from centering and collides with a shrunk radius.
func (e *Engine) SetSelected(id string) { e.selectedID = id }

// Pin fixes a node at (x, y); only one task node may be pinned at a time, so
// any previously pinned node is released first. The center node cannot be
// pinned.
func (e *Engine) Pin(id string, x, y float64) {
	n := e.byID[id]
	if n == nil || n.IsCenter {
		return
	}
	for _, o := range e.nodes {
		if o != n && !o.IsCenter {
			o.Unpin()
		}
	}
	n.Pin(x, y)
}

// MovePin updates a pinned node's driven position.
func (e *Engine) MovePin(id string, x, y float64) {
	if n := e.byID[id]; n != nil {
		n.SetPinned(x, y)
	}
}

// Unpin releases a node back to the solver.
func (e *Engine) Unpin(id string) {
	if n := e.byID[id]; n != nil {
		n.Unpin()
	}
}

// SetAlphaTarget raises or lowers the floor alpha decays toward. Raised while
// dragging so the layout keeps reacting under the pointer.
func (e *Engine) SetAlphaTarget(v float64) { e.alphaTarget = v }

// Kick reheats the simulation to at least the given alpha.
func (e *Engine) Kick(alpha float64) {
	if alpha > e.alpha {
		e.alpha = alpha
	}
}

// Alpha returns the current heat.
func (e *Engine) Alpha() float64 { return e.alpha }

// Settled reports whether the layout is at rest.
func (e *Engine) Settled() bool {
	return e.alpha < e.cfg.AlphaMin && e.alphaTarget == 0
}

// Step advances the solver one tick: alpha decay, forces, collision passes,
// Euler integration, and the center-halo guard, in that order.
func (e *Engine) Step() {
	e.alpha += (e.alphaTarget - e.alpha) * e.cfg.AlphaDecay
	if e.alpha < e.cfg.AlphaMin && e.alphaTarget == 0 {
		e.alpha = 0
	}

	cx, cy := e.width/2, e.height/2

	e.applyCentering(cx, cy)
	e.applyRepulsion()
	e.resolveCollisions()
	e.integrate()
	e.guardCenterHalo(cx, cy)
}

func (e *Engine) applyCentering(cx, cy float64) {
	strength := e.cfg.CenterStrength
	if e.selectedID != "" {
		strength *= e.cfg.SelectedDamping
	}
	k := strength * e.alpha
	for _, n := range e.nodes {
		if n.IsCenter || n.Pinned() || n.ID == e.selectedID {
			continue
		}
		n.VX += (cx - n.X) * k
		n.VY += (cy - n.Y) * k
	}
}

// applyRepulsion runs O(n²) many-body repulsion; node counts are UI-scale so
// no spatial index is needed. Strength scales with the source node's radius,
// with the center node boosted to keep its halo clear.
func (e *Engine) applyRepulsion() {
	for i, a := range e.nodes {
		for j := i + 1; j < len(e.nodes); j++ {
			b := e.nodes[j]
			dx, dy := b.X-a.X, b.Y-a.Y
			d2 := dx*dx + dy*dy
			if d2 < 1 {
				d2 = 1
			}
			d := math.Sqrt(d2)

			sa := e.cfg.RepulsionStrength * a.Radius
			sb := e.cfg.RepulsionStrength * b.Radius
			if a.IsCenter {
				sa *= e.cfg.CenterBoost
			}
			if b.IsCenter {
				sb *= e.cfg.CenterBoost
			}

			// a pushes b away with sa, b pushes a with sb.
			fb := sa * e.alpha / d2
			fa := sb * e.alpha / d2
			ux, uy := dx/d, dy/d
			if !b.Pinned() && !b.IsCenter {
				b.VX += ux * fb
				b.VY += uy * fb
			}
			if !a.Pinned() && !a.IsCenter {
				a.VX -= ux * fa
				a.VY -= uy * fa
			}
		}
	}
}

func (e *Engine) effectiveRadius(n *Node) float64 {
	r := n.Radius
	switch {
	case n.IsCenter:
		r *= e.cfg.CenterExpand
	case n.ID == e.selectedID:
		r *= e.cfg.SelectedShrink
	}
	return r + e.cfg.CollisionPadding
}

// resolveCollisions runs enough position-level passes that overlaps converge
// out within a single tick even on dense layouts.
func (e *Engine) resolveCollisions() {
	for iter := 0; iter < e.cfg.CollisionIterations; iter++ {
		moved := false
		for i, a := range e.nodes {
			for j := i + 1; j < len(e.nodes); j++ {
				b := e.nodes[j]
				ra, rb := e.effectiveRadius(a), e.effectiveRadius(b)
				dx, dy := b.X-a.X, b.Y-a.Y
				d2 := dx*dx + dy*dy
				minD := ra + rb
				if d2 >= minD*minD {
					continue
				}
				d := math.Sqrt(d2)
				if d == 0 {
					// Coincident nodes separate along a fixed axis.
					d, dx = 1e-3, 1e-3
				}
				overlap := minD - d
				ux, uy := dx/d, dy/d

				aFixed := a.Pinned() || a.IsCenter
				bFixed := b.Pinned() || b.IsCenter
				switch {
				case aFixed && bFixed:
					continue
				case aFixed:
					b.X += ux * overlap
					b.Y += uy * overlap
				case bFixed:
					a.X -= ux * overlap
					a.Y -= uy * overlap
				default:
					// Heavier (larger) node yields less.
					wa := rb / (ra + rb)
					wb := ra / (ra + rb)
					a.X -= ux * overlap * wa
					a.Y -= uy * overlap * wa
					b.X += ux * overlap * wb
					b.Y += uy * overlap * wb
				}
				moved = true
			}
		}
		if !moved {
			break
		}
	}
}

func (e *Engine) integrate() {
	cx, cy := e.width/2, e.height/2
	for _, n := range e.nodes {
		if n.IsCenter {
			// The add button is held at the viewport center.
			n.X, n.Y = cx, cy
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= e.cfg.VelocityDecay
		n.VY *= e.cfg.VelocityDecay
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			continue
		}
		n.X += n.VX
		n.Y += n.VY
	}
}

// guardCenterHalo snaps any task node that ended the tick inside the center
// clearance back out along its current angle, damping its velocity so it does
// not immediately dive back in. Keeps the add button unobstructed no matter
// what the forces did.
func (e *Engine) guardCenterHalo(cx, cy float64) {
	center := e.Center()
	if center == nil {
		return
	}
	for _, n := range e.nodes {
		if n.IsCenter || n.ID == e.selectedID {
			continue
		}
		minD := center.Radius + n.Radius + e.cfg.HaloMargin
		dx, dy := n.X-cx, n.Y-cy
		d := math.Hypot(dx, dy)
		if d >= minD {
			continue
		}
		angle := math.Atan2(dy, dx)
		if d == 0 {
			angle = 0
		}
		n.X = cx + math.Cos(angle)*minD
		n.Y = cy + math.Sin(angle)*minD
		n.VX *= 0.5
		n.VY *= 0.5
		if n.Pinned() {
			// Keep the pin coherent with the snapped position.
			*n.FX, *n.FY = n.X, n.Y
		}
	}
}
