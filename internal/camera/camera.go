// Package camera owns the viewport transform: a continuously re-fitting
// "breathing" auto-frame over the node set, with user pan/zoom override and
// an ease-to-identity mode while a node is selected.
package camera

import (
	"math"
	"time"

	"github.com/jask/bubbleboard/internal/sim"
)

// Transform maps world coordinates to screen: screen = world*Scale + Translate.
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
}

// Identity is the untransformed view.
var Identity = Transform{Scale: 1}

// Apply converts a world point to screen.
func (t Transform) Apply(wx, wy float64) (float64, float64) {
	return wx*t.Scale + t.TranslateX, wy*t.Scale + t.TranslateY
}

// Invert converts a screen point to world.
func (t Transform) Invert(sx, sy float64) (float64, float64) {
	if t.Scale == 0 {
		return sx, sy
	}
	return (sx - t.TranslateX) / t.Scale, (sy - t.TranslateY) / t.Scale
}

// Config holds camera tuning.
type Config struct {
	// Padding is added around the node bounding box before fitting.
	Padding float64
	// HardMinScale/MaxScale bound the scale absolutely; the effective lower
	// bound is raised to the current fit scale so the user cannot zoom out
	// past the framed view.
	HardMinScale float64
	MaxScale     float64
	// LerpFactor is the fraction of the remaining distance covered per tick
	// while auto-fitting.
	LerpFactor float64
	// FitEpsilon is the fit-scale change below which bounds are not recomputed.
	FitEpsilon float64
	// SelectEase is how long the ease to identity takes when a node is
	// selected.
	SelectEase time.Duration
}

// DefaultConfig returns the tuning used by the app.
func DefaultConfig() Config {
	return Config{
		Padding:      48,
		HardMinScale: 0.25,
		MaxScale:     2.5,
		LerpFactor:   0.1,
		FitEpsilon:   0.005,
		SelectEase:   250 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Padding == 0 {
		c.Padding = d.Padding
	}
	if c.HardMinScale == 0 {
		c.HardMinScale = d.HardMinScale
	}
	if c.MaxScale == 0 {
		c.MaxScale = d.MaxScale
	}
	if c.LerpFactor == 0 {
		c.LerpFactor = d.LerpFactor
	}
	if c.FitEpsilon == 0 {
		c.FitEpsilon = d.FitEpsilon
	}
	if c.SelectEase == 0 {
		c.SelectEase = d.SelectEase
	}
	return c
}

// Controller is the single writer of the camera transform. GestureController
// reads the transform for hit testing; everything else consumes the value
// returned from Tick.
type Controller struct {
	cfg Config

	width, height float64

	t        Transform
	fitScale float64
	minScale float64

	autoFit         bool
	userInteracting bool

	selected  bool
	easing    bool
	easeFrom  Transform
	easeStart time.Time

	// Padded world bounding box from the last fit; pan clamping derives its
	// bounds from this rectangle at the live scale.
	boxMinX, boxMinY float64
	boxMaxX, boxMaxY float64
	hasBox           bool

	onAutoFitChanged func(bool)
}

// New creates a camera at identity with auto-fit enabled.
func New(cfg Config) *Controller {
	c := &Controller{
		cfg:      cfg.withDefaults(),
		t:        Identity,
		autoFit:  true,
		fitScale: 1,
	}
	c.minScale = c.cfg.HardMinScale
	return c
}

// SetOnAutoFitChanged registers the auto-fit state callback.
func (c *Controller) SetOnAutoFitChanged(fn func(bool)) { c.onAutoFitChanged = fn }

// SetViewport updates the screen dimensions.
func (c *Controller) SetViewport(w, h float64) { c.width, c.height = w, h }

// Transform returns the live transform without advancing it.
func (c *Controller) Transform() Transform { return c.t }

// AutoFit reports whether auto-framing is active.
func (c *Controller) AutoFit() bool { return c.autoFit }

// FitScale returns the most recently computed fit scale.
func (c *Controller) FitScale() float64 { return c.fitScale }

// SetUserInteracting marks the start/end of a user camera gesture; auto-fit
// stays suspended while true.
func (c *Controller) SetUserInteracting(v bool) { c.userInteracting = v }

// RequestReset re-enables auto-fit (the consumer-triggered resetView).
func (c *Controller) RequestReset() { c.setAutoFit(true) }

// NodeAdded re-enables auto-fit so a new bubble is brought into frame.
func (c *Controller) NodeAdded() { c.setAutoFit(true) }

// SetSelected enters or leaves modal mode. On entry the camera eases to the
// identity transform and ignores gesture input until deselection.
func (c *Controller) SetSelected(v bool, now time.Time) {
	if v == c.selected {
		return
	}
	c.selected = v
	if v {
		c.easing = true
		c.easeFrom = c.t
		c.easeStart = now
	} else {
		c.easing = false
	}
}

// Selected reports modal mode.
func (c *Controller) Selected() bool { return c.selected }

func (c *Controller) setAutoFit(v bool) {
	if c.autoFit == v {
		return
	}
	c.autoFit = v
	if c.onAutoFitChanged != nil {
		c.onAutoFitChanged(v)
	}
}

// PanBy shifts the view by a screen-space delta. A user pan disables
// auto-fit. Ignored in modal mode.
func (c *Controller) PanBy(dx, dy float64) {
	if c.selected {
		return
	}
	c.t.TranslateX += dx
	c.t.TranslateY += dy
	c.clampPan()
	c.setAutoFit(false)
}

// ZoomAt scales the view by factor about the given screen point, clamped to
// [max(fitScale, hardMin), maxScale]. Zooming back down to the fit scale
// hands control back to auto-fit.
func (c *Controller) ZoomAt(factor, sx, sy float64) {
	if c.selected || factor == 0 {
		return
	}
	newScale := c.t.Scale * factor
	low := math.Max(c.minScale, c.cfg.HardMinScale)
	newScale = math.Max(low, math.Min(c.cfg.MaxScale, newScale))

	// Keep the world point under (sx, sy) stationary.
	wx, wy := c.t.Invert(sx, sy)
	c.t.Scale = newScale
	c.t.TranslateX = sx - wx*newScale
	c.t.TranslateY = sy - wy*newScale
	c.clampPan()

	if newScale <= c.fitScale+c.cfg.FitEpsilon {
		c.setAutoFit(true)
	} else {
		c.setAutoFit(false)
	}
}

// Tick recomputes the fit from the node set and advances the transform one
// frame. The bounding-box scan is O(n); node counts are UI-scale.
func (c *Controller) Tick(nodes []*sim.Node, now time.Time) Transform {
	if c.selected {
		return c.tickSelected(now)
	}
	if c.width <= 0 || c.height <= 0 || len(nodes) == 0 {
		return c.t
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X-n.Radius)
		minY = math.Min(minY, n.Y-n.Radius)
		maxX = math.Max(maxX, n.X+n.Radius)
		maxY = math.Max(maxY, n.Y+n.Radius)
	}
	minX -= c.cfg.Padding
	minY -= c.cfg.Padding
	maxX += c.cfg.Padding
	maxY += c.cfg.Padding

	bw, bh := maxX-minX, maxY-minY
	fit := math.Min(c.width/bw, c.height/bh)
	fit = math.Max(c.cfg.HardMinScale, math.Min(c.cfg.MaxScale, fit))

	if math.Abs(fit-c.fitScale) > c.cfg.FitEpsilon {
		c.fitScale = fit
		c.minScale = fit
		c.boxMinX, c.boxMinY = minX, minY
		c.boxMaxX, c.boxMaxY = maxX, maxY
		c.hasBox = true
	}

	if c.autoFit && !c.userInteracting {
		cx, cy := (minX+maxX)/2, (minY+maxY)/2
		target := Transform{
			Scale:      c.fitScale,
			TranslateX: c.width/2 - cx*c.fitScale,
			TranslateY: c.height/2 - cy*c.fitScale,
		}
		c.t.Scale += (target.Scale - c.t.Scale) * c.cfg.LerpFactor
		c.t.TranslateX += (target.TranslateX - c.t.TranslateX) * c.cfg.LerpFactor
		c.t.TranslateY += (target.TranslateY - c.t.TranslateY) * c.cfg.LerpFactor
	}
	return c.t
}

func (c *Controller) tickSelected(now time.Time) Transform {
	if !c.easing {
		return c.t
	}
	p := float64(now.Sub(c.easeStart)) / float64(c.cfg.SelectEase)
	if p >= 1 {
		c.t = Identity
		c.easing = false
		return c.t
	}
	// Ease-out cubic.
	p = 1 - math.Pow(1-p, 3)
	c.t.Scale = c.easeFrom.Scale + (1-c.easeFrom.Scale)*p
	c.t.TranslateX = c.easeFrom.TranslateX * (1 - p)
	c.t.TranslateY = c.easeFrom.TranslateY * (1 - p)
	return c.t
}

// clampPan keeps the world bounding box covering the screen (or centered when
// it fits), so a pan can never strand every bubble off screen.
func (c *Controller) clampPan() {
	if !c.hasBox {
		return
	}
	s := c.t.Scale
	// Translate range that keeps the box edges at or beyond the screen edges.
	minX := c.width - c.boxMaxX*s
	maxX := -c.boxMinX * s
	minY := c.height - c.boxMaxY*s
	maxY := -c.boxMinY * s
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	c.t.TranslateX = math.Max(minX, math.Min(maxX, c.t.TranslateX))
	c.t.TranslateY = math.Max(minY, math.Min(maxY, c.t.TranslateY))
}
