package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/bubbleboard/internal/sim"
)

func wideScene() []*sim.Node {
	return []*sim.Node{
		{ID: "center", Radius: 50, X: 400, Y: 300, IsCenter: true},
		{ID: "a", Radius: 110, X: -200, Y: 300},
		{ID: "b", Radius: 95, X: 1000, Y: 300},
		{ID: "c", Radius: 80, X: 400, Y: -100},
		{ID: "d", Radius: 70, X: 400, Y: 700},
	}
}

func settleCamera(c *Controller, nodes []*sim.Node, ticks int) Transform {
	now := time.Unix(0, 0)
	t := c.Transform()
	for i := 0; i < ticks; i++ {
		now = now.Add(16 * time.Millisecond)
		t = c.Tick(nodes, now)
	}
	return t
}

func TestAutoFitFramesAllNodes(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	c := New(cfg)
	c.SetViewport(800, 600)
	nodes := wideScene()

	tr := settleCamera(c, nodes, 300)

	require.GreaterOrEqual(t, tr.Scale, cfg.HardMinScale)
	require.LessOrEqual(t, tr.Scale, cfg.MaxScale)

	// Every circle ends inside the viewport after the fit converges.
	for _, n := range nodes {
		sx, sy := tr.Apply(n.X, n.Y)
		r := n.Radius * tr.Scale
		require.GreaterOrEqual(t, sx-r, -1.0, "node %s left edge", n.ID)
		require.LessOrEqual(t, sx+r, 801.0, "node %s right edge", n.ID)
		require.GreaterOrEqual(t, sy-r, -1.0, "node %s top edge", n.ID)
		require.LessOrEqual(t, sy+r, 601.0, "node %s bottom edge", n.ID)
	}
}

func TestScaleAlwaysWithinBounds(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	c := New(cfg)
	c.SetViewport(800, 600)
	nodes := wideScene()
	settleCamera(c, nodes, 100)

	c.ZoomAt(100, 400, 300)
	require.LessOrEqual(t, c.Transform().Scale, cfg.MaxScale)

	c.ZoomAt(0.0001, 400, 300)
	require.GreaterOrEqual(t, c.Transform().Scale, cfg.HardMinScale)
	// The effective floor is the fit scale, not just the hard minimum.
	require.GreaterOrEqual(t, c.Transform().Scale, c.FitScale()-1e-9)
}

func TestUserZoomDisablesAutoFitUntilReset(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig())
	c.SetViewport(800, 600)
	nodes := wideScene()

	var events []bool
	c.SetOnAutoFitChanged(func(v bool) { events = append(events, v) })

	settleCamera(c, nodes, 100)
	require.True(t, c.AutoFit())

	c.ZoomAt(1.5, 400, 300)
	require.False(t, c.AutoFit())
	require.Equal(t, []bool{false}, events)

	before := c.Transform()
	settleCamera(c, nodes, 20)
	require.Equal(t, before, c.Transform(), "camera drifted while auto-fit disabled")

	c.RequestReset()
	require.True(t, c.AutoFit())
	require.Equal(t, []bool{false, true}, events)
}

func TestZoomBackToFitReenablesAutoFit(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig())
	c.SetViewport(800, 600)
	nodes := wideScene()
	settleCamera(c, nodes, 100)

	c.ZoomAt(1.8, 400, 300)
	require.False(t, c.AutoFit())

	// Zoom all the way back out; the clamp lands on fitScale.
	c.ZoomAt(0.01, 400, 300)
	require.True(t, c.AutoFit())
}

func TestNodeAddedReenablesAutoFit(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig())
	c.SetViewport(800, 600)
	settleCamera(c, wideScene(), 50)

	c.PanBy(40, 0)
	require.False(t, c.AutoFit())

	c.NodeAdded()
	require.True(t, c.AutoFit())
}

func TestSelectionEasesToIdentityAndBlocksGestures(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	c := New(cfg)
	c.SetViewport(800, 600)
	nodes := wideScene()
	settleCamera(c, nodes, 100)
	require.NotEqual(t, Identity, c.Transform())

	now := time.Unix(10, 0)
	c.SetSelected(true, now)

	c.ZoomAt(2, 100, 100)
	c.PanBy(50, 50)

	end := now.Add(cfg.SelectEase + 50*time.Millisecond)
	tr := c.Tick(nodes, end)
	require.Equal(t, Identity, tr)

	c.SetSelected(false, end)
	require.False(t, c.Selected())
}

func TestZoomKeepsAnchorPointStationary(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig())
	c.SetViewport(800, 600)
	nodes := wideScene()
	settleCamera(c, nodes, 200)

	// Zoom in once so the content covers the screen, then verify an interior
	// anchor stays put on further zooms.
	c.ZoomAt(1.4, 400, 300)
	wx, wy := c.Transform().Invert(300, 250)
	c.ZoomAt(1.3, 300, 250)
	sx, sy := c.Transform().Apply(wx, wy)
	require.InDelta(t, 300.0, sx, 1e-6)
	require.InDelta(t, 250.0, sy, 1e-6)
}
