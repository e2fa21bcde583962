package sim

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sceneNodes() []*Node {
	radii := []float64{110, 95, 80, 70, 45}
	nodes := []*Node{{ID: "center", Radius: 50, IsCenter: true}}
	for i, r := range radii {
		// Spread starting positions around the viewport so the solver has
		// real work to do.
		angle := float64(i) * 2 * math.Pi / float64(len(radii))
		nodes = append(nodes, &Node{
			ID:     fmt.Sprintf("t%d", i),
			Radius: r,
			X:      400 + math.Cos(angle)*300,
			Y:      300 + math.Sin(angle)*220,
		})
	}
	return nodes
}

func maxOverlap(nodes []*Node) float64 {
	worst := 0.0
	for i, a := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			d := math.Hypot(b.X-a.X, b.Y-a.Y)
			if over := a.Radius + b.Radius - d; over > worst {
				worst = over
			}
		}
	}
	return worst
}

func TestSceneSettles(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	e.SetViewport(800, 600)
	e.SetNodes(sceneNodes())

	const maxTicks = 600
	ticks := 0
	for ; ticks < maxTicks && !e.Settled(); ticks++ {
		e.Step()
	}
	require.Less(t, ticks, maxTicks, "layout never settled")

	require.LessOrEqual(t, maxOverlap(e.Nodes()), 1.0,
		"settled layout has overlapping circles")
}

func TestCenterHaloHeldEveryFrame(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	e := New(cfg)
	e.SetViewport(800, 600)
	nodes := sceneNodes()
	// Start everything piled onto the center to stress the guard.
	for _, n := range nodes {
		n.X, n.Y = 400, 300
	}
	e.SetNodes(nodes)

	center := e.Center()
	require.NotNil(t, center)

	for tick := 0; tick < 200; tick++ {
		e.Step()
		for _, n := range e.Nodes() {
			if n.IsCenter {
				continue
			}
			d := math.Hypot(n.X-400, n.Y-300)
			minD := center.Radius + n.Radius + cfg.HaloMargin
			require.GreaterOrEqual(t, d, minD-1e-6,
				"tick %d: node %s inside the center halo", tick, n.ID)
		}
	}
}

func TestPinnedNodeIsDriverOwned(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	e.SetViewport(800, 600)
	e.SetNodes(sceneNodes())

	e.Pin("t1", 700, 500)
	for i := 0; i < 30; i++ {
		e.Step()
	}
	n := e.Get("t1")
	require.True(t, n.Pinned())
	require.InDelta(t, 700.0, n.X, 1e-9)
	require.InDelta(t, 500.0, n.Y, 1e-9)

	e.MovePin("t1", 650, 450)
	e.Step()
	require.InDelta(t, 650.0, n.X, 1e-9)
	require.InDelta(t, 450.0, n.Y, 1e-9)

	e.Unpin("t1")
	require.False(t, n.Pinned())
}

func TestOnlyOneNodePinned(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	e.SetViewport(800, 600)
	e.SetNodes(sceneNodes())

	e.Pin("t0", 100, 100)
	e.Pin("t1", 200, 200)

	pinned := 0
	for _, n := range e.Nodes() {
		if n.Pinned() {
			pinned++
			require.Equal(t, "t1", n.ID)
		}
	}
	require.Equal(t, 1, pinned)
}

func TestCenterNodeCannotBePinned(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	e.SetViewport(800, 600)
	e.SetNodes(sceneNodes())

	e.Pin("center", 10, 10)
	require.False(t, e.Get("center").Pinned())

	e.Step()
	c := e.Get("center")
	require.InDelta(t, 400.0, c.X, 1e-9)
	require.InDelta(t, 300.0, c.Y, 1e-9)
}

func TestKickAndAlphaTarget(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	e.SetViewport(800, 600)
	e.SetNodes(sceneNodes())

	for i := 0; i < 600 && !e.Settled(); i++ {
		e.Step()
	}
	require.True(t, e.Settled())

	// A raised target keeps the layout warm indefinitely.
	e.SetAlphaTarget(0.3)
	for i := 0; i < 100; i++ {
		e.Step()
	}
	require.False(t, e.Settled())
	require.Greater(t, e.Alpha(), 0.1)

	// Dropping the target plus a kick resettles.
	e.SetAlphaTarget(0)
	e.Kick(0.5)
	require.Greater(t, e.Alpha(), 0.3)
	for i := 0; i < 600 && !e.Settled(); i++ {
		e.Step()
	}
	require.True(t, e.Settled())
}

func TestRadiusClamp(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	e := New(cfg)
	e.SetNodes([]*Node{
		{ID: "tiny", Radius: 1},
		{ID: "huge", Radius: 900},
	})
	require.Equal(t, cfg.MinRadius, e.Get("tiny").Radius)
	require.Equal(t, cfg.MaxRadius, e.Get("huge").Radius)
}
