package canvas

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testTasks() []Task {
	return []Task{
		{ID: "a", Title: "water plants", Radius: 110, Color: "#e07a5f"},
		{ID: "b", Title: "tax return", Radius: 95, Color: "#3d405b"},
		{ID: "c", Title: "call dentist", Radius: 80, Color: "#81b29a"},
	}
}

func newTestCanvas(t *testing.T) *Canvas {
	t.Helper()
	c := NewSeeded(DefaultConfig(), Callbacks{}, 42)
	c.SetViewport(800, 600)
	return c
}

func distFromCenter(c *Canvas, id string) float64 {
	n := c.Engine().Get(id)
	return math.Hypot(n.X-400, n.Y-300)
}

func TestNewTasksSpawnOffscreen(t *testing.T) {
	t.Parallel()
	c := newTestCanvas(t)
	c.SetTasks(testTasks())

	for _, task := range testTasks() {
		require.GreaterOrEqual(t, distFromCenter(c, task.ID), 800.0,
			"task %s must spawn outside the viewport ring", task.ID)
	}
}

func TestUnchangedTasksKeepPosition(t *testing.T) {
	t.Parallel()
	c := newTestCanvas(t)
	c.SetTasks(testTasks())

	now := time.Unix(0, 0)
	for i := 0; i < 120; i++ {
		now = now.Add(16 * time.Millisecond)
		c.Tick(now)
	}
	n := c.Engine().Get("a")
	x, y := n.X, n.Y

	c.SetTasks(testTasks())
	n = c.Engine().Get("a")
	require.Equal(t, x, n.X)
	require.Equal(t, y, n.Y)
}

func TestCompletedFlipRespawnsOffscreen(t *testing.T) {
	t.Parallel()
	c := newTestCanvas(t)
	c.SetShowCompleted(true)
	c.SetTasks(testTasks())

	now := time.Unix(0, 0)
	for i := 0; i < 200; i++ {
		now = now.Add(16 * time.Millisecond)
		c.Tick(now)
	}
	require.Less(t, distFromCenter(c, "b"), 800.0, "node should be on screen by now")

	tasks := testTasks()
	tasks[1].Completed = true
	c.SetTasks(tasks)

	require.GreaterOrEqual(t, distFromCenter(c, "b"), 800.0,
		"a completed-flag flip must respawn off screen, never keep the on-screen position")
	require.True(t, c.Engine().Get("b").Completed)
}

func TestCompletedFilterRemovesAndExits(t *testing.T) {
	t.Parallel()
	c := newTestCanvas(t)
	c.SetTasks(testTasks())

	now := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		now = now.Add(16 * time.Millisecond)
		c.Tick(now)
	}

	tasks := testTasks()
	tasks[2].Completed = true
	c.SetTasks(tasks) // showCompleted defaults to false

	require.Nil(t, c.Engine().Get("c"), "completed task must leave the arena")

	frame := c.Tick(now.Add(16 * time.Millisecond))
	var sawExit bool
	for _, s := range frame.Nodes {
		if s.ID == "c" {
			require.True(t, s.Exiting)
			require.Less(t, s.Scale, 1.0)
			sawExit = true
		}
	}
	require.True(t, sawExit, "departed node must play an exit transition")

	// The exit expires after its duration.
	frame = c.Tick(now.Add(2 * time.Second))
	for _, s := range frame.Nodes {
		require.NotEqual(t, "c", s.ID)
	}
}

func TestCenterNodeAlwaysPresentAndTopmost(t *testing.T) {
	t.Parallel()
	c := newTestCanvas(t)
	c.SetTasks(nil)

	nodes := c.Engine().Nodes()
	require.Len(t, nodes, 1)
	require.True(t, nodes[0].IsCenter)

	c.SetTasks(testTasks())
	nodes = c.Engine().Nodes()
	require.Len(t, nodes, 4)
	require.True(t, nodes[len(nodes)-1].IsCenter, "center renders topmost")
}

func TestReconcileAbortsGestureOnVanishedNode(t *testing.T) {
	t.Parallel()
	c := newTestCanvas(t)
	c.SetTasks(testTasks())

	now := time.Unix(0, 0)
	for i := 0; i < 200; i++ {
		now = now.Add(16 * time.Millisecond)
		c.Tick(now)
	}

	n := c.Engine().Get("a")
	tr := c.Transform()
	sx, sy := tr.Apply(n.X, n.Y)
	c.PointerDown(1, sx, sy, now)
	require.Equal(t, "a", c.Gesture().ActiveNode())

	c.SetTasks(testTasks()[1:]) // "a" disappears mid-gesture
	require.Empty(t, c.Gesture().ActiveNode())
	require.False(t, n.Pinned())
}
