// Package canvas composes the simulation engine, camera, gesture controller
// and node reconciler into one frame-driven canvas. External code feeds it a
// task list and pointer events; it emits per-node render snapshots and intent
// callbacks. It persists nothing and owns no rendering.
package canvas

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jask/bubbleboard/internal/camera"
	"github.com/jask/bubbleboard/internal/gesture"
	"github.com/jask/bubbleboard/internal/sim"
)

// Task is the external task-like record the canvas lays out. The canvas never
// mutates tasks; it only emits intents for the data layer to apply.
type Task struct {
	ID        string
	Title     string
	Radius    float64
	Color     string
	Completed bool
	BoardID   string
}

// Callbacks are the canvas's outputs. All are fire-and-forget.
type Callbacks struct {
	// OnTap requests the edit view for a task, anchored at the node's screen
	// position for a grow-from-origin transition.
	OnTap              func(taskID string, screenX, screenY float64)
	OnAddRequested     func()
	OnToggleComplete   func(taskID string)
	OnDeleteRequested  func(taskID string)
	OnRestoreRequested func(taskID string)
	OnAutoFitChanged   func(bool)
	OnZoneActivated    func(zoneID string)
}

// Config aggregates the tuning of every component.
type Config struct {
	Sim     sim.Config
	Camera  camera.Config
	Gesture gesture.Config

	// CenterRadius is the synthetic add-button node's radius.
	CenterRadius float64
	// SpawnMargin is extra distance beyond max(width, height) for off-screen
	// respawns.
	SpawnMargin float64
	// ExitDuration is the shrink+fade played when a task disappears;
	// PopDuration is the burst played on a committed long-press.
	ExitDuration time.Duration
	PopDuration  time.Duration
}

// DefaultConfig returns the tuning used by the app.
func DefaultConfig() Config {
	return Config{
		Sim:          sim.DefaultConfig(),
		Camera:       camera.DefaultConfig(),
		Gesture:      gesture.DefaultConfig(),
		CenterRadius: 50,
		SpawnMargin:  60,
		ExitDuration: 300 * time.Millisecond,
		PopDuration:  350 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CenterRadius == 0 {
		c.CenterRadius = d.CenterRadius
	}
	if c.SpawnMargin == 0 {
		c.SpawnMargin = d.SpawnMargin
	}
	if c.ExitDuration == 0 {
		c.ExitDuration = d.ExitDuration
	}
	if c.PopDuration == 0 {
		c.PopDuration = d.PopDuration
	}
	return c
}

type exitAnim struct {
	node   Snapshot
	start  time.Time
	flyToX float64
	flyToY float64
	flying bool
	fromX  float64
	fromY  float64
}

// Canvas is the explicit, owned instance composing all components. Create on
// mount, Dispose-free: dropping the handle is enough.
type Canvas struct {
	cfg    Config
	engine *sim.Engine
	cam    *camera.Controller
	gest   *gesture.Controller
	cb     Callbacks

	centerID string

	width, height float64
	tasks         []Task
	selectedID    string
	showCompleted bool

	zones []gesture.Zone

	now   time.Time
	rng   *rand.Rand
	exits []*exitAnim
	pops  map[string]time.Time
	flyTo map[string][2]float64
}

// New builds a canvas. The rng seeds spawn angles; tests inject a fixed seed
// through NewSeeded.
func New(cfg Config, cb Callbacks) *Canvas {
	return NewSeeded(cfg, cb, time.Now().UnixNano())
}

// NewSeeded is New with a deterministic spawn-angle seed.
func NewSeeded(cfg Config, cb Callbacks, seed int64) *Canvas {
	cfg = cfg.withDefaults()
	c := &Canvas{
		cfg:      cfg,
		cb:       cb,
		centerID: uuid.NewString(),
		rng:      rand.New(rand.NewSource(seed)),
		pops:     make(map[string]time.Time),
		flyTo:    make(map[string][2]float64),
	}
	c.engine = sim.New(cfg.Sim)
	c.cam = camera.New(cfg.Camera)
	c.cam.SetOnAutoFitChanged(func(v bool) {
		if cb.OnAutoFitChanged != nil {
			cb.OnAutoFitChanged(v)
		}
	})
	c.gest = gesture.New(cfg.Gesture, c.engine, c.cam, gesture.Callbacks{
		OnTap: func(id string, x, y float64) {
			if cb.OnTap != nil {
				cb.OnTap(id, x, y)
			}
		},
		OnAddRequested: func() {
			if cb.OnAddRequested != nil {
				cb.OnAddRequested()
			}
		},
		OnToggleComplete: func(id string) {
			// Play the pop burst locally; the data layer flips the flag and
			// feeds the list back in.
			c.pops[id] = c.now
			if cb.OnToggleComplete != nil {
				cb.OnToggleComplete(id)
			}
		},
		OnDeleteRequested: func(id string) {
			if cb.OnDeleteRequested != nil {
				cb.OnDeleteRequested(id)
			}
		},
		OnRestoreRequested: func(id string) {
			if cb.OnRestoreRequested != nil {
				cb.OnRestoreRequested(id)
			}
		},
		OnZoneActivated: func(zoneID string) {
			if cb.OnZoneActivated != nil {
				cb.OnZoneActivated(zoneID)
			}
		},
		OnReleaseToZone: func(nodeID, zoneID string) {
			// Remember the target so the node's exit flies into the zone.
			for _, z := range c.zones {
				if z.ID == zoneID {
					wx, wy := c.cam.Transform().Invert(z.X, z.Y)
					c.flyTo[nodeID] = [2]float64{wx, wy}
				}
			}
		},
	})
	return c
}

// SetViewport must be called synchronously on resize, before the next Tick.
func (c *Canvas) SetViewport(w, h float64) {
	c.width, c.height = w, h
	c.engine.SetViewport(w, h)
	c.cam.SetViewport(w, h)
}

// Viewport returns the current dimensions.
func (c *Canvas) Viewport() (float64, float64) { return c.width, c.height }

// SetTasks replaces the task list and reconciles the node set.
func (c *Canvas) SetTasks(tasks []Task) {
	c.tasks = tasks
	c.reconcile()
}

// SetShowCompleted toggles the completed-only filter and reconciles.
func (c *Canvas) SetShowCompleted(v bool) {
	if c.showCompleted == v {
		return
	}
	c.showCompleted = v
	c.reconcile()
}

// ShowCompleted reports the current filter.
func (c *Canvas) ShowCompleted() bool { return c.showCompleted }

// SetSelected enters or leaves modal/edit mode for a task ("" clears).
func (c *Canvas) SetSelected(id string) {
	if c.selectedID == id {
		return
	}
	c.selectedID = id
	c.engine.SetSelected(id)
	c.gest.SetSelected(id)
	c.cam.SetSelected(id != "", c.now)
}

// Selected returns the task in modal mode, or "".
func (c *Canvas) Selected() string { return c.selectedID }

// SetZones registers the drop targets (screen space).
func (c *Canvas) SetZones(zones []gesture.Zone) {
	c.zones = zones
	c.gest.SetZones(zones)
}

// ResetView re-enables camera auto-fit.
func (c *Canvas) ResetView() { c.cam.RequestReset() }

// AutoFit reports camera auto-fit state.
func (c *Canvas) AutoFit() bool { return c.cam.AutoFit() }

// Transform returns the live camera transform without advancing it.
func (c *Canvas) Transform() camera.Transform { return c.cam.Transform() }

// Engine exposes the simulation for tests and diagnostics.
func (c *Canvas) Engine() *sim.Engine { return c.engine }

// Gesture exposes the controller state for render hints.
func (c *Canvas) Gesture() *gesture.Controller { return c.gest }

// Pointer event passthrough. Screen coordinates.

func (c *Canvas) PointerDown(id int, x, y float64, now time.Time) {
	c.now = now
	c.gest.PointerDown(id, x, y, now)
}

func (c *Canvas) PointerMove(id int, x, y float64, now time.Time) {
	c.now = now
	c.gest.PointerMove(id, x, y, now)
}

func (c *Canvas) PointerUp(id int, x, y float64, now time.Time) {
	c.now = now
	c.gest.PointerUp(id, x, y, now)
}

// AbortGesture cancels any in-flight gesture (pinch start, focus loss).
func (c *Canvas) AbortGesture() { c.gest.Abort() }

// Zoom scales the camera about a screen point. Two-finger and wheel input
// always own zoom; it never reaches the gesture state machine.
func (c *Canvas) Zoom(factor, sx, sy float64) { c.cam.ZoomAt(factor, sx, sy) }
