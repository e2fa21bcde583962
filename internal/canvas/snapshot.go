package canvas

import (
	"time"

	"github.com/jask/bubbleboard/internal/camera"
	"github.com/jask/bubbleboard/internal/gesture"
)

// Snapshot is the pure per-frame render state for one node. Any rendering
// target (terminal cells, GPU, SVG) consumes these; the canvas never draws.
type Snapshot struct {
	ID      string
	X, Y    float64 // world coordinates
	Radius  float64
	Scale   float64 // 1 at rest; exit/pop animations shrink or burst it
	Opacity float64

	// RingProgress in (0, 1] draws the charge ring; RingZone names the zone
	// coloring it ("" means the long-press pop charge).
	RingProgress float64
	RingZone     string

	// PopProgress in (0, 1] drives the burst played on a committed pop.
	PopProgress float64

	IsCenter  bool
	Completed bool
	Selected  bool
	Exiting   bool
	Color     string
	Title     string
}

// Frame is one tick's output.
type Frame struct {
	Nodes     []Snapshot // in render order, bottom first
	Transform camera.Transform
}

// Tick advances the whole pipeline one animation frame, in fixed order:
// gesture deadlines, simulation step, camera fit/lerp, snapshot assembly.
func (c *Canvas) Tick(now time.Time) Frame {
	c.now = now
	c.gest.Tick(now)
	c.engine.Step()
	tr := c.cam.Tick(c.engine.Nodes(), now)

	activeID := c.gest.ActiveNode()
	zonePhase, zoneID := c.gest.ZoneState()

	nodes := c.engine.Nodes()
	out := make([]Snapshot, 0, len(nodes)+len(c.exits))
	for _, n := range nodes {
		s := Snapshot{
			ID:        n.ID,
			X:         n.X,
			Y:         n.Y,
			Radius:    n.Radius,
			Scale:     1,
			Opacity:   1,
			IsCenter:  n.IsCenter,
			Completed: n.Completed,
			Selected:  n.ID == c.selectedID,
			Color:     n.Color,
			Title:     n.Title,
		}
		if n.ID == activeID {
			if zonePhase == gesture.ZoneNone {
				s.RingProgress = c.gest.ChargeProgress(now)
			} else {
				s.RingProgress = c.gest.DwellProgress(now)
				s.RingZone = zoneID
			}
		}
		if start, ok := c.pops[n.ID]; ok {
			p := float64(now.Sub(start)) / float64(c.cfg.PopDuration)
			if p >= 1 {
				delete(c.pops, n.ID)
			} else {
				s.PopProgress = p
				// Burst: brief swell before the data layer respawns it.
				s.Scale = 1 + 0.3*p
				s.Opacity = 1 - 0.6*p
			}
		}
		out = append(out, s)
	}

	// Exit transitions render on top, then expire.
	keep := c.exits[:0]
	for _, ex := range c.exits {
		p := float64(now.Sub(ex.start)) / float64(c.cfg.ExitDuration)
		if p >= 1 {
			continue
		}
		s := ex.node
		if ex.flying {
			s.X = ex.fromX + (ex.flyToX-ex.fromX)*p
			s.Y = ex.fromY + (ex.flyToY-ex.fromY)*p
		}
		s.Scale = 1 - p
		s.Opacity = 1 - p
		s.Exiting = true
		keep = append(keep, ex)
		out = append(out, s)
	}
	c.exits = keep

	return Frame{Nodes: out, Transform: tr}
}
