// Package gesture turns raw pointer events into canvas intents: tap, add,
// drag, long-press pop, and drop-zone delete/restore. All timers are
// deadlines compared against the time handed to Tick, never free-running
// callbacks, so every abort path cancels them trivially and a stale firing is
// a guarded no-op.
package gesture

import (
	"math"
	"time"

	"github.com/jask/bubbleboard/internal/camera"
	"github.com/jask/bubbleboard/internal/sim"
)

// State is the primary gesture state.
type State int

const (
	Idle State = iota
	Pressing
	Dragging
	PoppingCommitted
	PanningCamera
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressing:
		return "pressing"
	case Dragging:
		return "dragging"
	case PoppingCommitted:
		return "popping"
	case PanningCamera:
		return "panning"
	}
	return "unknown"
}

// ZonePhase is the drag sub-state against a drop zone.
type ZonePhase int

const (
	ZoneNone ZonePhase = iota
	ZoneHovering
	ZoneActivated
)

// Config holds the gesture tuning constants.
type Config struct {
	// DragThreshold is the screen-space movement (px) that turns a press into
	// a drag.
	DragThreshold float64
	// PopThreshold is how long a press must hold still to commit a pop.
	PopThreshold time.Duration
	// DwellTime is the continuous hover needed to arm a drop zone.
	DwellTime time.Duration
	// MagneticBlend is how far the reported drag position is pulled toward a
	// hovered zone's center. Empirically tuned; do not derive.
	MagneticBlend float64
	// DragAlphaTarget keeps the simulation warm while dragging; ReleaseKick
	// is the one-off reheat on release.
	DragAlphaTarget float64
	ReleaseKick     float64
}

// DefaultConfig returns the tuning used by the app.
func DefaultConfig() Config {
	return Config{
		DragThreshold:   10,
		PopThreshold:    550 * time.Millisecond,
		DwellTime:       350 * time.Millisecond,
		MagneticBlend:   0.5,
		DragAlphaTarget: 0.3,
		ReleaseKick:     0.4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DragThreshold == 0 {
		c.DragThreshold = d.DragThreshold
	}
	if c.PopThreshold == 0 {
		c.PopThreshold = d.PopThreshold
	}
	if c.DwellTime == 0 {
		c.DwellTime = d.DwellTime
	}
	if c.MagneticBlend == 0 {
		c.MagneticBlend = d.MagneticBlend
	}
	if c.DragAlphaTarget == 0 {
		c.DragAlphaTarget = d.DragAlphaTarget
	}
	if c.ReleaseKick == 0 {
		c.ReleaseKick = d.ReleaseKick
	}
	return c
}

// Zone is a drop target in screen space. An unmounted zone (none registered)
// degrades a drag to plain move semantics.
type Zone struct {
	ID        string
	X, Y      float64 // screen center
	Radius    float64 // visual radius
	HitExpand float64 // extra hit slop around the visual circle
}

func (z Zone) contains(sx, sy float64) bool {
	return math.Hypot(sx-z.X, sy-z.Y) <= z.Radius+z.HitExpand
}

// Callbacks are fire-and-forget intent notifications. The controller never
// blocks on the data layer.
type Callbacks struct {
	OnTap              func(nodeID string, screenX, screenY float64)
	OnAddRequested     func()
	OnToggleComplete   func(nodeID string)
	OnDeleteRequested  func(nodeID string)
	OnRestoreRequested func(nodeID string)
	// OnZoneActivated fires feedback (haptic/visual) when a dwell arms.
	OnZoneActivated func(zoneID string)
	// OnReleaseToZone reports a release inside an armed zone so the render
	// layer can play the fly-to-target animation.
	OnReleaseToZone func(nodeID, zoneID string)
}

// Controller interprets pointer events. It reads the camera transform for
// hit testing and pins/unpins nodes in the engine; it owns every gesture
// timer and cancels them on all abort paths.
type Controller struct {
	cfg    Config
	cb     Callbacks
	engine *sim.Engine
	cam    *camera.Controller

	state          State
	nodeID         string
	nodeIsCenter   bool
	moved          bool
	pointerID      int
	startX, startY float64
	lastX, lastY   float64
	pressAt        time.Time

	zonePhase  ZonePhase
	zoneID     string
	dwellStart time.Time

	zones []Zone

	selectedID string
}

// New creates a controller bound to an engine and camera.
func New(cfg Config, engine *sim.Engine, cam *camera.Controller, cb Callbacks) *Controller {
	return &Controller{
		cfg:    cfg.withDefaults(),
		cb:     cb,
		engine: engine,
		cam:    cam,
	}
}

// SetZones replaces the registered drop zones.
func (g *Controller) SetZones(zones []Zone) { g.zones = zones }

// SetSelected tells the controller which node is in modal/edit mode.
func (g *Controller) SetSelected(id string) { g.selectedID = id }

// State returns the current primary state.
func (g *Controller) State() State { return g.state }

// ActiveNode returns the node owning the current gesture, or "".
func (g *Controller) ActiveNode() string {
	if g.state == Idle || g.state == PanningCamera {
		return ""
	}
	return g.nodeID
}

// ZoneState returns the drag sub-state and hovered zone id.
func (g *Controller) ZoneState() (ZonePhase, string) { return g.zonePhase, g.zoneID }

// ChargeProgress reports long-press progress in [0, 1] for the charge ring.
func (g *Controller) ChargeProgress(now time.Time) float64 {
	if g.state != Pressing || g.nodeIsCenter {
		return 0
	}
	return clamp01(float64(now.Sub(g.pressAt)) / float64(g.cfg.PopThreshold))
}

// DwellProgress reports zone-arming progress in [0, 1].
func (g *Controller) DwellProgress(now time.Time) float64 {
	if g.zonePhase == ZoneActivated {
		return 1
	}
	if g.zonePhase != ZoneHovering {
		return 0
	}
	return clamp01(float64(now.Sub(g.dwellStart)) / float64(g.cfg.DwellTime))
}

// hitTest resolves the topmost node whose circle contains the screen point.
// Render order breaks ties (later nodes are on top); the center node always
// wins.
func (g *Controller) hitTest(sx, sy float64) *sim.Node {
	wx, wy := g.cam.Transform().Invert(sx, sy)
	var hit *sim.Node
	for _, n := range g.engine.Nodes() {
		if math.Hypot(n.X-wx, n.Y-wy) > n.Radius {
			continue
		}
		if n.IsCenter {
			return n
		}
		hit = n // keep the last (topmost) match
	}
	return hit
}

// PointerDown starts a gesture for the given pointer id. A second pointer
// while a gesture is active aborts it so pinch-zoom never fights a drag.
func (g *Controller) PointerDown(pointerID int, sx, sy float64, now time.Time) {
	if g.state != Idle {
		// Second pointer, or a duplicate down for the active one: either way
		// the gesture is no longer trustworthy.
		g.Abort()
		return
	}

	n := g.hitTest(sx, sy)
	if n == nil {
		// Empty space owns the camera.
		g.state = PanningCamera
		g.pointerID = pointerID
		g.lastX, g.lastY = sx, sy
		g.cam.SetUserInteracting(true)
		return
	}

	g.state = Pressing
	g.pointerID = pointerID
	g.nodeID = n.ID
	g.nodeIsCenter = n.IsCenter
	g.moved = false
	g.startX, g.startY = sx, sy
	g.lastX, g.lastY = sx, sy
	g.pressAt = now
	g.zonePhase = ZoneNone
	g.zoneID = ""

	if !n.IsCenter {
		g.engine.Pin(n.ID, n.X, n.Y)
	}
}

// PointerMove advances the gesture with a new pointer position.
func (g *Controller) PointerMove(pointerID int, sx, sy float64, now time.Time) {
	if g.state == Idle || pointerID != g.pointerID {
		return
	}
	dx, dy := sx-g.lastX, sy-g.lastY
	g.lastX, g.lastY = sx, sy

	switch g.state {
	case PanningCamera:
		g.cam.PanBy(dx, dy)
	case Pressing:
		if math.Hypot(sx-g.startX, sy-g.startY) > g.cfg.DragThreshold {
			g.moved = true
			if g.nodeIsCenter {
				// The add button cannot be dragged; the press just goes
				// inert (it is not a camera pan either, since it started on
				// a node).
				return
			}
			// Movement beat the charge timer: cancel it and start dragging.
			g.state = Dragging
			g.engine.SetAlphaTarget(g.cfg.DragAlphaTarget)
			g.updateDrag(sx, sy, now)
		}
	case Dragging:
		g.updateDrag(sx, sy, now)
	case PoppingCommitted:
		// The pop already fired; the pointer is inert until release.
	}
}

// updateDrag moves the pin (through the camera inverse) and runs the zone
// sub-state machine, blending the reported position toward a hovered zone's
// center for the magnetic snap.
func (g *Controller) updateDrag(sx, sy float64, now time.Time) {
	zone := g.zoneAt(sx, sy)

	switch {
	case zone != nil && g.zonePhase == ZoneNone:
		g.zonePhase = ZoneHovering
		g.zoneID = zone.ID
		g.dwellStart = now
	case zone == nil && g.zonePhase != ZoneNone:
		// Left the zone before (or after) arming: cancel dwell and visuals.
		g.zonePhase = ZoneNone
		g.zoneID = ""
	case zone != nil && zone.ID != g.zoneID:
		// Hopped straight into a different zone; restart the dwell.
		g.zonePhase = ZoneHovering
		g.zoneID = zone.ID
		g.dwellStart = now
	}

	px, py := sx, sy
	if zone != nil {
		px += (zone.X - px) * g.cfg.MagneticBlend
		py += (zone.Y - py) * g.cfg.MagneticBlend
	}
	wx, wy := g.cam.Transform().Invert(px, py)
	g.engine.MovePin(g.nodeID, wx, wy)
}

func (g *Controller) zoneAt(sx, sy float64) *Zone {
	for i := range g.zones {
		if g.zones[i].contains(sx, sy) {
			return &g.zones[i]
		}
	}
	return nil
}

// Tick fires due deadlines. Must be called once per frame with the current
// time. A deadline armed under a finished gesture is already dead: every
// transition out of Pressing or Dragging rewrites the state these checks
// require.
func (g *Controller) Tick(now time.Time) {
	if g.state == Pressing && !g.nodeIsCenter && now.Sub(g.pressAt) >= g.cfg.PopThreshold {
		// Charge completed: commit the pop.
		id := g.nodeID
		g.engine.Unpin(id)
		g.state = PoppingCommitted
		if g.cb.OnToggleComplete != nil {
			g.cb.OnToggleComplete(id)
		}
		return
	}

	if g.state == Dragging && g.zonePhase == ZoneHovering && now.Sub(g.dwellStart) >= g.cfg.DwellTime {
		g.zonePhase = ZoneActivated
		if g.cb.OnZoneActivated != nil {
			g.cb.OnZoneActivated(g.zoneID)
		}
	}
}

// PointerUp ends the gesture and emits the release intent.
func (g *Controller) PointerUp(pointerID int, sx, sy float64, now time.Time) {
	if g.state == Idle || pointerID != g.pointerID {
		return
	}

	switch g.state {
	case PanningCamera:
		g.cam.SetUserInteracting(false)

	case Pressing:
		// Released before both thresholds: a tap.
		n := g.engine.Get(g.nodeID)
		if n != nil && !n.IsCenter {
			g.engine.Unpin(g.nodeID)
		}
		switch {
		case g.moved:
			// An inert center-node slide; not a tap.
		case n != nil && n.IsCenter:
			if g.selectedID == "" && g.cb.OnAddRequested != nil {
				g.cb.OnAddRequested()
			}
		case n != nil && g.cb.OnTap != nil:
			// Anchor the edit transition at the node's current screen
			// position so the detail view can grow from its origin.
			tx, ty := g.cam.Transform().Apply(n.X, n.Y)
			g.cb.OnTap(g.nodeID, tx, ty)
		}

	case Dragging:
		id := g.nodeID
		if g.zonePhase == ZoneActivated {
			zone := g.zoneID
			n := g.engine.Get(id)
			completed := n != nil && n.Completed
			g.engine.Unpin(id)
			if g.cb.OnReleaseToZone != nil {
				g.cb.OnReleaseToZone(id, zone)
			}
			if completed {
				if g.cb.OnRestoreRequested != nil {
					g.cb.OnRestoreRequested(id)
				}
			} else if g.cb.OnDeleteRequested != nil {
				g.cb.OnDeleteRequested(id)
			}
		} else {
			// Plain drag release mutates no task data.
			if id != g.selectedID {
				g.engine.Unpin(id)
			}
			g.engine.Kick(g.cfg.ReleaseKick)
		}
		g.engine.SetAlphaTarget(0)

	case PoppingCommitted:
		// Intent already emitted at commit time.
	}

	g.reset()
}

// Abort cancels the gesture on any interruption (second pointer, data change
// under the pointer, focus loss). Unpins, drops all deadlines, and returns to
// Idle without emitting intents.
func (g *Controller) Abort() {
	if g.state == Idle {
		return
	}
	if g.state == PanningCamera {
		g.cam.SetUserInteracting(false)
	} else if g.nodeID != "" && g.nodeID != g.selectedID {
		g.engine.Unpin(g.nodeID)
	}
	g.engine.SetAlphaTarget(0)
	g.reset()
}

func (g *Controller) reset() {
	g.state = Idle
	g.nodeID = ""
	g.zonePhase = ZoneNone
	g.zoneID = ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
