// Package tui renders the bubble board into terminal cells. It drives the
// canvas at a fixed frame rate and maps mouse events onto pointer gestures, so
// drag, long-press pop and drop-zone delete all work inside the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/bubbleboard/internal/canvas"
	"github.com/jask/bubbleboard/internal/config"
	"github.com/jask/bubbleboard/internal/database/repository"
	"github.com/jask/bubbleboard/internal/gesture"
	"github.com/jask/bubbleboard/internal/service"
	"github.com/jask/bubbleboard/internal/theme"
)

// frameInterval is the animation tick. 30fps is plenty for cell output.
const frameInterval = 33 * time.Millisecond

// cellAspect doubles the vertical pixel density so circles stay round in the
// terminal's tall cells.
const cellAspect = 2.0

type modalState string

const (
	modalNone        modalState = ""
	modalAdd         modalState = "add"
	modalEdit        modalState = "edit"
	modalSearch      modalState = "search"
	modalDeleted     modalState = "deleted"
	modalConfirmWipe modalState = "confirmWipe"
)

// App ties the canvas to the data layer.
type App struct {
	ctx   context.Context
	cfg   config.Config
	th    theme.Theme
	board repository.Board

	svc   *service.BoardService
	maint *service.MaintenanceService

	cv   *canvas.Canvas
	keys keyMap

	width, height int // cells
	frame         canvas.Frame

	modal         modalState
	input         textinput.Model
	editingTaskID string
	searchResults []service.SearchResult
	deleted       []repository.Task
	status        string

	// intents raised by canvas callbacks during the current Update call
	pending []tea.Cmd
}

// New builds the TUI around an already-opened board.
func New(ctx context.Context, cfg config.Config, th theme.Theme, board repository.Board, svc *service.BoardService, maint *service.MaintenanceService) *App {
	a := &App{
		ctx:   ctx,
		cfg:   cfg,
		th:    th,
		board: board,
		svc:   svc,
		maint: maint,
		keys:  defaultKeyMap(),
	}
	a.input = textinput.New()
	a.input.CharLimit = 80
	a.input.Width = 40

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

	a.cv = canvas.New(cvCfg, canvas.Callbacks{
		OnTap: func(taskID string, _, _ float64) {
			a.openEdit(taskID)
		},
		OnAddRequested: func() {
			a.openAdd()
		},
		OnToggleComplete: func(taskID string) {
			a.pending = append(a.pending, a.toggleCompleteCmd(taskID))
		},
		OnDeleteRequested: func(taskID string) {
			a.pending = append(a.pending, a.deleteCmd(taskID))
		},
		OnRestoreRequested: func(taskID string) {
			a.pending = append(a.pending, a.restoreCmd(taskID))
		},
		OnZoneActivated: func(string) {
			if a.cv.ShowCompleted() {
				a.status = "release to restore"
			} else {
				a.status = "release to delete"
			}
		},
	})
	a.cv.SetShowCompleted(cfg.UI.ShowCompleted)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadTasks(), a.tickCmd())
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) loadTasks() tea.Cmd {
	return func() tea.Msg {
		list, err := a.svc.Feed(a.ctx, a.board.ID)
		if err != nil {
			return errMsg{err}
		}
		return tasksMsg(list)
	}
}

func (a *App) loadDeleted() tea.Cmd {
	return func() tea.Msg {
		list, err := a.svc.Deleted(a.ctx, a.board.ID)
		if err != nil {
			return errMsg{err}
		}
		return deletedMsg(list)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tickMsg:
		a.frame = a.cv.Tick(time.Time(m))
		return a, tea.Batch(append(a.drain(), a.tickCmd())...)

	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		vw, vh := a.viewportPx()
		a.cv.SetViewport(vw, vh)
		a.cv.SetZones([]gesture.Zone{{
			ID:        "trash",
			X:         vw - 14,
			Y:         vh - 12,
			Radius:    9,
			HitExpand: 8,
		}})

	case tea.MouseMsg:
		return a, tea.Batch(a.handleMouse(m)...)

	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		return a.handleKey(m)

	case tasksMsg:
		a.cv.SetTasks([]canvas.Task(m))

	case boardResetMsg:
		a.board = m.board
		a.status = "board wiped"
		return a, a.loadTasks()

	case searchMsg:
		a.searchResults = []service.SearchResult(m)

	case deletedMsg:
		a.deleted = []repository.Task(m)
		a.modal = modalDeleted

	case statusMsg:
		a.status = string(m)

	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

// drain collects intents the canvas raised synchronously.
func (a *App) drain() []tea.Cmd {
	cmds := a.pending
	a.pending = nil
	return cmds
}

func (a *App) viewportPx() (float64, float64) {
	h := a.height - 1 // status bar
	if h < 1 {
		h = 1
	}
	return float64(a.width), float64(h) * cellAspect
}

func (a *App) handleMouse(m tea.MouseMsg) []tea.Cmd {
	now := time.Now()
	x, y := float64(m.X), float64(m.Y)*cellAspect
	switch m.Button {
	case tea.MouseButtonWheelUp:
		a.cv.Zoom(1.1, x, y)
	case tea.MouseButtonWheelDown:
		a.cv.Zoom(1/1.1, x, y)
	case tea.MouseButtonLeft, tea.MouseButtonNone:
		switch m.Action {
		case tea.MouseActionPress:
			a.cv.PointerDown(0, x, y, now)
		case tea.MouseActionMotion:
			a.cv.PointerMove(0, x, y, now)
		case tea.MouseActionRelease:
			a.cv.PointerUp(0, x, y, now)
		}
	}
	return a.drain()
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Add):
		a.openAdd()
	case key.Matches(m, a.keys.ToggleDone):
		a.cv.SetShowCompleted(!a.cv.ShowCompleted())
		if a.cv.ShowCompleted() {
			a.status = "completed view (drag to the zone to restore)"
		} else {
			a.status = ""
		}
	case key.Matches(m, a.keys.Search):
		a.modal = modalSearch
		a.searchResults = nil
		a.input.SetValue("")
		a.input.Placeholder = "find a task"
		a.input.Focus()
	case key.Matches(m, a.keys.ResetView):
		a.cv.ResetView()
		a.status = ""
	case key.Matches(m, a.keys.ZoomIn):
		vw, vh := a.viewportPx()
		a.cv.Zoom(1.2, vw/2, vh/2)
	case key.Matches(m, a.keys.ZoomOut):
		vw, vh := a.viewportPx()
		a.cv.Zoom(1/1.2, vw/2, vh/2)
	case key.Matches(m, a.keys.Back):
		if a.cv.Selected() != "" {
			a.cv.SetSelected("")
		}
		a.status = ""
	case key.Matches(m, a.keys.Deleted):
		return a, a.loadDeleted()
	case key.Matches(m, a.keys.ConfirmWipe):
		a.modal = modalConfirmWipe
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.modal == modalDeleted {
		switch s := m.String(); {
		case s == "esc" || s == "q" || s == "D":
			a.modal = modalNone
			a.deleted = nil
		case len(s) == 1 && s[0] >= '1' && s[0] <= '9':
			i := int(s[0] - '1')
			if i < len(a.deleted) {
				id := a.deleted[i].ID
				a.modal = modalNone
				a.deleted = nil
				return a, a.restoreCmd(id)
			}
		}
		return a, nil
	}

	if a.modal == modalConfirmWipe {
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			return a, a.wipeCmd()
		case "n", "N", "esc":
			a.modal = modalNone
		}
		return a, nil
	}

	switch m.Type {
	case tea.KeyEsc:
		a.closeModal()
		return a, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(a.input.Value())
		switch a.modal {
		case modalAdd:
			a.closeModal()
			if text == "" {
				return a, nil
			}
			return a, a.addCmd(text)
		case modalEdit:
			id := a.editingTaskID
			a.closeModal()
			if text == "" || id == "" {
				return a, nil
			}
			return a, a.renameCmd(id, text)
		case modalSearch:
			results := a.searchResults
			a.closeModal()
			if len(results) > 0 {
				a.openEdit(results[0].Task.ID)
			} else {
				a.status = "no match"
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	if a.modal == modalSearch {
		return a, tea.Batch(cmd, a.searchCmd(a.input.Value()))
	}
	return a, cmd
}

func (a *App) openAdd() {
	a.modal = modalAdd
	a.editingTaskID = ""
	a.input.SetValue("")
	a.input.Placeholder = "new task"
	a.input.Focus()
}

func (a *App) openEdit(taskID string) {
	n := a.cv.Engine().Get(taskID)
	if n == nil {
		return
	}
	a.cv.SetSelected(taskID)
	a.modal = modalEdit
	a.editingTaskID = taskID
	a.input.SetValue(n.Title)
	a.input.Placeholder = "task title"
	a.input.Focus()
	a.input.CursorEnd()
}

func (a *App) closeModal() {
	if a.modal == modalEdit {
		a.cv.SetSelected("")
	}
	a.modal = modalNone
	a.editingTaskID = ""
	a.input.Blur()
}

// commands

func (a *App) addCmd(title string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if _, err := a.svc.Add(a.ctx, a.board.ID, title, 2); err != nil {
				return errMsg{err}
			}
			return statusMsg("added: " + title)
		},
		a.loadTasks(),
	)
}

func (a *App) renameCmd(id, title string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.svc.Rename(a.ctx, id, title); err != nil {
				return errMsg{err}
			}
			return statusMsg("renamed")
		},
		a.loadTasks(),
	)
}

func (a *App) toggleCompleteCmd(id string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.svc.ToggleComplete(a.ctx, id); err != nil {
				return errMsg{err}
			}
			return statusMsg("")
		},
		a.loadTasks(),
	)
}

func (a *App) deleteCmd(id string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.svc.Delete(a.ctx, id); err != nil {
				return errMsg{err}
			}
			return statusMsg("deleted (press D to restore)")
		},
		a.loadTasks(),
	)
}

func (a *App) restoreCmd(id string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.svc.Restore(a.ctx, id); err != nil {
				return errMsg{err}
			}
			return statusMsg("restored")
		},
		a.loadTasks(),
	)
}

func (a *App) searchCmd(query string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.svc.Search(a.ctx, a.board.ID, query)
		if err != nil {
			return errMsg{err}
		}
		return searchMsg(res)
	}
}

// wipeCmd runs on a goroutine, so it only reads values captured up front and
// hands the fresh board back as a message for Update to apply.
func (a *App) wipeCmd() tea.Cmd {
	ctx, maint, svc, name := a.ctx, a.maint, a.svc, a.board.Name
	return func() tea.Msg {
		if maint == nil {
			return errMsg{fmt.Errorf("maintenance not configured")}
		}
		if err := maint.Reset(ctx); err != nil {
			return errMsg{err}
		}
		b, err := svc.EnsureBoard(ctx, name)
		if err != nil {
			return errMsg{err}
		}
		return boardResetMsg{board: b}
	}
}

// messages

type tickMsg time.Time

type tasksMsg []canvas.Task

type searchMsg []service.SearchResult

type deletedMsg []repository.Task

type statusMsg string

type boardResetMsg struct{ board repository.Board }

type errMsg struct{ error }
