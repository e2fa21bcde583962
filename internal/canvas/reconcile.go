package canvas

import (
	"math"

	"github.com/jask/bubbleboard/internal/sim"
)

// reconcile diffs the task list into the engine's node set.
//
// A node keeps its position and velocity only when a previous node with the
// same id exists and its completed flag is unchanged; otherwise it respawns
// on a ring outside the viewport so entrances always fly in from off screen,
// uniformly for brand-new tasks and for completed-flag flips (including tasks
// moving through the completed-only filter). Nodes whose task disappeared
// play a shrink+fade exit. The synthetic center node is always present and
// excluded from task-driven diffing.
func (c *Canvas) reconcile() {
	prev := make(map[string]*sim.Node)
	var prevCenter *sim.Node
	for _, n := range c.engine.Nodes() {
		if n.IsCenter {
			prevCenter = n
			continue
		}
		prev[n.ID] = n
	}

	next := make([]*sim.Node, 0, len(c.tasks)+1)
	seen := make(map[string]bool, len(c.tasks))
	added := false

	for _, t := range c.tasks {
		if t.Completed && !c.showCompleted {
			continue
		}
		seen[t.ID] = true
		if p, ok := prev[t.ID]; ok && p.Completed == t.Completed {
			// Same identity, same state: position/velocity survive.
			p.Radius = t.Radius
			p.Color = t.Color
			p.Title = t.Title
			next = append(next, p)
			continue
		}
		x, y := c.spawnPoint(t.Radius)
		next = append(next, &sim.Node{
			ID:        t.ID,
			Radius:    t.Radius,
			X:         x,
			Y:         y,
			Completed: t.Completed,
			Color:     t.Color,
			Title:     t.Title,
		})
		added = true
	}

	// Departed nodes exit with a transition instead of vanishing.
	for id, p := range prev {
		if seen[id] {
			continue
		}
		c.startExit(p)
		if c.gest.ActiveNode() == id {
			// The gesture's node is gone; kill timers before they go stale.
			c.gest.Abort()
		}
	}

	// Center node last: topmost in render order.
	center := prevCenter
	if center == nil {
		center = &sim.Node{
			ID:       c.centerID,
			Radius:   c.cfg.CenterRadius,
			X:        c.width / 2,
			Y:        c.height / 2,
			IsCenter: true,
		}
	}
	next = append(next, center)

	c.engine.SetNodes(next)
	if added {
		c.engine.Kick(0.8)
		c.cam.NodeAdded()
	}
}

// spawnPoint picks a random point on a ring far enough out that the circle is
// fully off screen regardless of camera state.
func (c *Canvas) spawnPoint(radius float64) (float64, float64) {
	dist := math.Max(c.width, c.height) + radius + c.cfg.SpawnMargin
	angle := c.rng.Float64() * 2 * math.Pi
	return c.width/2 + math.Cos(angle)*dist, c.height/2 + math.Sin(angle)*dist
}

func (c *Canvas) startExit(n *sim.Node) {
	ex := &exitAnim{
		node: Snapshot{
			ID:        n.ID,
			X:         n.X,
			Y:         n.Y,
			Radius:    n.Radius,
			Scale:     1,
			Opacity:   1,
			Completed: n.Completed,
			Color:     n.Color,
			Title:     n.Title,
		},
		start: c.now,
		fromX: n.X,
		fromY: n.Y,
	}
	if target, ok := c.flyTo[n.ID]; ok {
		ex.flying = true
		ex.flyToX, ex.flyToY = target[0], target[1]
		delete(c.flyTo, n.ID)
	}
	c.exits = append(c.exits, ex)
}
