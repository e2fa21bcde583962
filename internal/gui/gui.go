// Package gui renders the bubble board with ebiten. It is the windowed
// counterpart of the tui package: same canvas, same service wiring, pixels
// instead of cells.
package gui

import (
	"context"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/jask/bubbleboard/internal/canvas"
	"github.com/jask/bubbleboard/internal/config"
	"github.com/jask/bubbleboard/internal/database/repository"
	"github.com/jask/bubbleboard/internal/gesture"
	"github.com/jask/bubbleboard/internal/service"
	"github.com/jask/bubbleboard/internal/theme"
)

const (
	zoneMargin = 70
	zoneRadius = 28
	wheelZoom  = 1.1
)

type inputMode int

const (
	modeNone inputMode = iota
	modeAdd
	modeEdit
)

// Game implements ebiten.Game around one board.
type Game struct {
	ctx   context.Context
	cfg   config.Config
	th    theme.Theme
	board repository.Board

	svc   *service.BoardService
	maint *service.MaintenanceService

	cv    *canvas.Canvas
	frame canvas.Frame

	width, height int

	mode          inputMode
	buffer        []rune
	editingTaskID string
	status        string

	mouseDown bool
	pinching  bool
	pinchDist float64
}

// New builds the GUI around an already-opened board.
func New(ctx context.Context, cfg config.Config, th theme.Theme, board repository.Board, svc *service.BoardService, maint *service.MaintenanceService) *Game {
	g := &Game{
		ctx:   ctx,
		cfg:   cfg,
		th:    th,
		board: board,
		svc:   svc,
		maint: maint,
	}

	cvCfg := canvas.DefaultConfig()
	cvCfg.Sim.CenterStrength = cfg.Physics.CenterStrength
	cvCfg.Sim.RepulsionStrength = cfg.Physics.RepulsionStrength
	cvCfg.Sim.CenterBoost = cfg.Physics.CenterBoost
	cvCfg.Sim.CollisionIterations = cfg.Physics.CollisionIterations
	cvCfg.Sim.VelocityDecay = cfg.Physics.VelocityDecay
	cvCfg.Sim.AlphaDecay = cfg.Physics.AlphaDecay
	cvCfg.Sim.HaloMargin = cfg.Physics.HaloMargin
	cvCfg.Sim.MinRadius = cfg.Physics.MinRadius
	cvCfg.Sim.MaxRadius = cfg.Physics.MaxRadius
	cvCfg.Camera.Padding = cfg.Camera.Padding
	cvCfg.Camera.HardMinScale = cfg.Camera.HardMinScale
	cvCfg.Camera.MaxScale = cfg.Camera.MaxScale
	cvCfg.Camera.LerpFactor = cfg.Camera.LerpFactor
	cvCfg.Gesture.DragThreshold = cfg.Gesture.DragThresholdPx
	cvCfg.Gesture.PopThreshold = cfg.Gesture.PopThreshold()
	cvCfg.Gesture.DwellTime = cfg.Gesture.Dwell()
	cvCfg.Gesture.MagneticBlend = cfg.Gesture.MagneticBlend
	cvCfg.CenterRadius = cfg.UI.CenterRadius

	g.cv = canvas.New(cvCfg, canvas.Callbacks{
		OnTap: func(taskID string, _, _ float64) {
			g.openEdit(taskID)
		},
		OnAddRequested: func() {
			g.mode = modeAdd
			g.buffer = nil
		},
		OnToggleComplete: func(taskID string) {
			if err := g.svc.ToggleComplete(g.ctx, taskID); err != nil {
				g.status = "error: " + err.Error()
				return
			}
			g.reload()
		},
		OnDeleteRequested: func(taskID string) {
			if err := g.svc.Delete(g.ctx, taskID); err != nil {
				g.status = "error: " + err.Error()
				return
			}
			g.status = "deleted"
			g.reload()
		},
		OnRestoreRequested: func(taskID string) {
			if err := g.svc.Restore(g.ctx, taskID); err != nil {
				g.status = "error: " + err.Error()
				return
			}
			g.status = "restored"
			g.reload()
		},
	})

	g.cv.SetShowCompleted(cfg.UI.ShowCompleted)
	g.reload()
	return g
}

func (g *Game) reload() {
	tasks, err := g.svc.Feed(g.ctx, g.board.ID)
	if err != nil {
		g.status = "error: " + err.Error()
		return
	}
	g.cv.SetTasks(tasks)
}

func (g *Game) openEdit(taskID string) {
	n := g.cv.Engine().Get(taskID)
	if n == nil {
		return
	}
	g.cv.SetSelected(taskID)
	g.mode = modeEdit
	g.editingTaskID = taskID
	g.buffer = []rune(n.Title)
}

func (g *Game) closeInput() {
	if g.mode == modeEdit {
		g.cv.SetSelected("")
	}
	g.mode = modeNone
	g.editingTaskID = ""
	g.buffer = nil
}

func (g *Game) Update() error {
	now := time.Now()

	if g.mode != modeNone {
		g.updateTextInput()
	} else {
		g.updateKeys()
		g.updatePointer(now)
	}

	g.frame = g.cv.Tick(now)
	return nil
}

func (g *Game) updateKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.cv.SetShowCompleted(!g.cv.ShowCompleted())
		if g.cv.ShowCompleted() {
			g.status = "completed view (drag to the zone to restore)"
		} else {
			g.status = ""
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.cv.ResetView()
		g.status = ""
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		g.mode = modeAdd
		g.buffer = nil
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.cv.SetSelected("")
		g.status = ""
	}
}

func (g *Game) updateTextInput() {
	g.buffer = ebiten.AppendInputChars(g.buffer)
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(g.buffer) > 0 {
		g.buffer = g.buffer[:len(g.buffer)-1]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.closeInput()
		return
	}
	if !inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		return
	}
	text := string(g.buffer)
	mode, id := g.mode, g.editingTaskID
	g.closeInput()
	if text == "" {
		return
	}
	var err error
	switch mode {
	case modeAdd:
		_, err = g.svc.Add(g.ctx, g.board.ID, text, 2)
	case modeEdit:
		err = g.svc.Rename(g.ctx, id, text)
	}
	if err != nil {
		g.status = "error: " + err.Error()
		return
	}
	g.reload()
}

func (g *Game) updatePointer(now time.Time) {
	// Two-finger pinch owns zoom; it cancels any bubble gesture.
	touches := ebiten.AppendTouchIDs(nil)
	if len(touches) >= 2 {
		x0, y0 := ebiten.TouchPosition(touches[0])
		x1, y1 := ebiten.TouchPosition(touches[1])
		dist := math.Hypot(float64(x1-x0), float64(y1-y0))
		cx, cy := float64(x0+x1)/2, float64(y0+y1)/2
		if !g.pinching {
			g.pinching = true
			g.cv.AbortGesture()
		} else if g.pinchDist > 0 {
			g.cv.Zoom(dist/g.pinchDist, cx, cy)
		}
		g.pinchDist = dist
		return
	}
	g.pinching = false
	g.pinchDist = 0

	if len(touches) == 1 {
		x, y := ebiten.TouchPosition(touches[0])
		if inpututil.TouchPressDuration(touches[0]) == 1 {
			g.cv.PointerDown(int(touches[0]), float64(x), float64(y), now)
		} else {
			g.cv.PointerMove(int(touches[0]), float64(x), float64(y), now)
		}
		return
	}
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		g.cv.PointerUp(int(id), float64(x), float64(y), now)
	}

	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cv.Zoom(math.Pow(wheelZoom, wy), x, y)
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.mouseDown = true
		g.cv.PointerDown(0, x, y, now)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.mouseDown = false
		g.cv.PointerUp(0, x, y, now)
	case g.mouseDown && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.cv.PointerMove(0, x, y, now)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.cv.SetViewport(float64(outsideWidth), float64(outsideHeight))
		g.cv.SetZones([]gesture.Zone{{
			ID:        "trash",
			X:         float64(outsideWidth - zoneMargin),
			Y:         float64(outsideHeight - zoneMargin),
			Radius:    zoneRadius,
			HitExpand: 20,
		}})
	}
	return outsideWidth, outsideHeight
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(hexColor(g.th.Background))

	tr := g.frame.Transform
	for _, s := range g.frame.Nodes {
		sx, sy := tr.Apply(s.X, s.Y)
		sr := s.Radius * s.Scale * tr.Scale
		if sr <= 0 {
			continue
		}
		g.drawNode(screen, s, float32(sx), float32(sy), float32(sr))
	}

	g.drawZone(screen)
	g.drawOverlay(screen)
}

func (g *Game) drawNode(screen *ebiten.Image, s canvas.Snapshot, sx, sy, sr float32) {
	hex := s.Color
	if s.IsCenter || hex == "" {
		hex = g.th.Center
	}
	if s.RingProgress > 0 && s.RingZone == "" {
		// Brighten the body as the charge builds.
		hex = theme.Lighten(hex, 0.25*s.RingProgress)
	}
	fill := fadeColor(hex, s.Opacity)
	vector.DrawFilledCircle(screen, sx, sy, sr, fill, true)

	if s.IsCenter {
		glow := fadeColor(g.th.CenterGlow, 0.9)
		vector.StrokeCircle(screen, sx, sy, sr+3, 2, glow, true)
		// plus sign
		bg := hexColor(g.th.Background)
		arm := sr * 0.4
		vector.StrokeLine(screen, sx-arm, sy, sx+arm, sy, 3, bg, true)
		vector.StrokeLine(screen, sx, sy-arm, sx, sy+arm, 3, bg, true)
	}

	if s.Selected {
		vector.StrokeCircle(screen, sx, sy, sr+5, 2, hexColor(g.th.Ring), true)
	}

	if s.RingProgress > 0 {
		ringHex := g.th.Ring
		if s.RingZone != "" {
			ringHex = g.th.DeleteZone
		}
		strokeArc(screen, sx, sy, sr+6, s.RingProgress, 3, hexColor(ringHex))
	}

	if s.PopProgress > 0 {
		// Burst starts in the bubble's color and washes out into the ring tint.
		burst := fadeColor(theme.Blend(hex, g.th.Ring, s.PopProgress), 1-s.PopProgress)
		vector.StrokeCircle(screen, sx, sy, sr*float32(1+0.6*s.PopProgress), 2, burst, true)
	}

	if s.Title != "" && !s.IsCenter && s.Opacity > 0.5 {
		w := len(s.Title) * 6
		ebitenutil.DebugPrintAt(screen, s.Title, int(sx)-w/2, int(sy)-8)
	}
}

func (g *Game) drawZone(screen *ebiten.Image) {
	if g.width == 0 {
		return
	}
	cx := float32(g.width - zoneMargin)
	cy := float32(g.height - zoneMargin)
	phase, _ := g.cv.Gesture().ZoneState()

	clr := hexColor(g.th.DeleteZone)
	if phase == gesture.ZoneActivated {
		vector.DrawFilledCircle(screen, cx, cy, zoneRadius, hexColor(theme.Darken(g.th.DeleteZone, 0.35)), true)
	}
	vector.StrokeCircle(screen, cx, cy, zoneRadius, 2, clr, true)
	arm := float32(zoneRadius) * 0.35
	vector.StrokeLine(screen, cx-arm, cy-arm, cx+arm, cy+arm, 2, clr, true)
	vector.StrokeLine(screen, cx-arm, cy+arm, cx+arm, cy-arm, 2, clr, true)
}

func (g *Game) drawOverlay(screen *ebiten.Image) {
	if g.mode != modeNone {
		prompt := "new task: "
		if g.mode == modeEdit {
			prompt = "edit task: "
		}
		ebitenutil.DebugPrintAt(screen, prompt+string(g.buffer)+"_", 16, 16)
	} else if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 16, 16)
	}
}

// strokeArc draws progress (0..1) of a circle starting at twelve o'clock,
// clockwise, as short line segments.
func strokeArc(screen *ebiten.Image, cx, cy, r float32, progress float64, width float32, clr color.Color) {
	if progress <= 0 {
		return
	}
	if progress > 1 {
		progress = 1
	}
	const step = math.Pi / 24
	total := 2 * math.Pi * progress
	start := -math.Pi / 2
	prevX := cx + r*float32(math.Cos(start))
	prevY := cy + r*float32(math.Sin(start))
	for a := step; a <= total+1e-9; a += step {
		x := cx + r*float32(math.Cos(start+a))
		y := cy + r*float32(math.Sin(start+a))
		vector.StrokeLine(screen, prevX, prevY, x, y, width, clr, true)
		prevX, prevY = x, y
	}
}

func hexColor(hex string) color.RGBA {
	r, gr, b, a := theme.RGBA(hex)
	return color.RGBA{R: r, G: gr, B: b, A: a}
}

// fadeColor premultiplies the color toward the background alpha.
func fadeColor(hex string, opacity float64) color.RGBA {
	c := hexColor(hex)
	if opacity >= 1 {
		return c
	}
	if opacity < 0 {
		opacity = 0
	}
	return color.RGBA{
		R: uint8(float64(c.R) * opacity),
		G: uint8(float64(c.G) * opacity),
		B: uint8(float64(c.B) * opacity),
		A: uint8(float64(c.A) * opacity),
	}
}
