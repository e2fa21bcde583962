package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/bubbleboard/internal/canvas"
	"github.com/jask/bubbleboard/internal/gesture"
	"github.com/jask/bubbleboard/internal/theme"
)

// cellGrid is a rune+color framebuffer, one entry per terminal cell.
type cellGrid struct {
	w, h  int
	runes []rune
	fg    []string // hex per cell, "" for default
}

func newCellGrid(w, h int) *cellGrid {
	g := &cellGrid{w: w, h: h, runes: make([]rune, w*h), fg: make([]string, w*h)}
	for i := range g.runes {
		g.runes[i] = ' '
	}
	return g
}

func (g *cellGrid) set(col, row int, r rune, color string) {
	if col < 0 || col >= g.w || row < 0 || row >= g.h {
		return
	}
	i := row*g.w + col
	g.runes[i] = r
	g.fg[i] = color
}

func (g *cellGrid) text(col, row int, s string, color string) {
	for i, r := range []rune(s) {
		g.set(col+i, row, r, color)
	}
}

// String renders the grid with one style per same-color run.
func (g *cellGrid) String() string {
	var b strings.Builder
	for row := 0; row < g.h; row++ {
		col := 0
		for col < g.w {
			i := row*g.w + col
			color := g.fg[i]
			end := col
			for end < g.w && g.fg[row*g.w+end] == color {
				end++
			}
			run := string(g.runes[i : row*g.w+end])
			if color == "" {
				b.WriteString(run)
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run))
			}
			col = end
		}
		if row < g.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// fillRune picks the circle body character by opacity.
func fillRune(opacity float64, completed bool) rune {
	switch {
	case opacity < 0.35:
		return '░'
	case opacity < 0.7:
		return '▒'
	case completed:
		return '▒'
	default:
		return '█'
	}
}

// drawBubble rasterizes one node snapshot into the grid. Coordinates are
// screen pixels with cellAspect vertical density.
func drawBubble(g *cellGrid, s canvas.Snapshot, sx, sy, sr float64, th theme.Theme) {
	color := s.Color
	if color == "" {
		color = th.Center
	}
	if s.IsCenter {
		color = th.Center
	}

	body := fillRune(s.Opacity, s.Completed)
	minCol := int(math.Floor((sx - sr)))
	maxCol := int(math.Ceil((sx + sr)))
	minRow := int(math.Floor((sy - sr) / cellAspect))
	maxRow := int(math.Ceil((sy + sr) / cellAspect))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			dx := float64(col) + 0.5 - sx
			dy := (float64(row)+0.5)*cellAspect - sy
			d := math.Hypot(dx, dy)
			if d > sr {
				continue
			}
			// Charge/dwell ring along the rim.
			if s.RingProgress > 0 && d > sr-cellAspect {
				frac := math.Mod(math.Atan2(dx, -dy)/(2*math.Pi)+1, 1)
				if frac <= s.RingProgress {
					ringColor := th.Ring
					if s.RingZone != "" {
						ringColor = th.DeleteZone
					}
					g.set(col, row, '▓', ringColor)
					continue
				}
			}
			g.set(col, row, body, color)
		}
	}

	if s.IsCenter {
		g.set(int(sx), int(sy/cellAspect), '+', th.Background)
		return
	}

	// Title label, truncated to the bubble's width.
	label := s.Title
	maxLen := int(sr*2) - 2
	if maxLen < 1 || s.Opacity < 0.7 {
		return
	}
	if len(label) > maxLen {
		label = label[:maxLen]
	}
	g.text(int(sx)-len(label)/2, int(sy/cellAspect), label, th.Text)
}

func drawZone(g *cellGrid, z gesture.Zone, active bool, th theme.Theme) {
	body := '·'
	if active {
		body = '▓'
	}
	minCol := int(math.Floor(z.X - z.Radius))
	maxCol := int(math.Ceil(z.X + z.Radius))
	minRow := int(math.Floor((z.Y - z.Radius) / cellAspect))
	maxRow := int(math.Ceil((z.Y + z.Radius) / cellAspect))
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			dx := float64(col) + 0.5 - z.X
			dy := (float64(row)+0.5)*cellAspect - z.Y
			if math.Hypot(dx, dy) > z.Radius {
				continue
			}
			g.set(col, row, body, th.DeleteZone)
		}
	}
	g.set(int(z.X), int(z.Y/cellAspect), '✕', th.DeleteZone)
}

var statusStyle = lipgloss.NewStyle().Bold(true)

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}
	rows := a.height - 1
	g := newCellGrid(a.width, rows)

	tr := a.frame.Transform
	for _, s := range a.frame.Nodes {
		sx, sy := tr.Apply(s.X, s.Y)
		sr := s.Radius * s.Scale * tr.Scale
		if sr < 0.5 {
			continue
		}
		drawBubble(g, s, sx, sy, sr, a.th)
	}

	phase, _ := a.cv.Gesture().ZoneState()
	vw, vh := a.viewportPx()
	drawZone(g, gesture.Zone{X: vw - 14, Y: vh - 12, Radius: 9}, phase == gesture.ZoneActivated, a.th)

	if a.modal != modalNone {
		a.drawModal(g)
	}

	return g.String() + "\n" + a.statusBar()
}

func (a *App) drawModal(g *cellGrid) {
	var title string
	switch a.modal {
	case modalAdd:
		title = "New task"
	case modalEdit:
		title = "Edit task"
	case modalSearch:
		title = "Search"
	case modalDeleted:
		title = "Deleted tasks (digit restores, esc closes)"
	case modalConfirmWipe:
		title = "Wipe board? [y/n]"
	}
	w := 46
	if w > g.w-2 {
		w = g.w - 2
	}
	col := (g.w - w) / 2
	row := g.h/2 - 2

	blank := strings.Repeat(" ", w)
	g.text(col, row, "┌"+strings.Repeat("─", w-2)+"┐", a.th.Ring)
	g.text(col, row+1, blank, "")
	g.text(col+2, row+1, title, a.th.Ring)
	g.text(col, row+2, blank, "")
	if a.modal != modalConfirmWipe && a.modal != modalDeleted {
		value := a.input.Value()
		if value == "" {
			value = a.input.Placeholder
		}
		if len(value) > w-4 {
			value = value[len(value)-(w-4):]
		}
		g.text(col+2, row+2, value+"▏", a.th.Text)
	}
	line := 3
	if a.modal == modalDeleted {
		line = 2
		if len(a.deleted) == 0 {
			g.text(col+2, row+line, "nothing deleted", a.th.Text)
			line++
		}
		for i, t := range a.deleted {
			if i >= 9 || row+line >= g.h {
				break
			}
			g.text(col, row+line, blank, "")
			label := fmt.Sprintf("%d  %s", i+1, t.Title)
			if len(label) > w-4 {
				label = label[:w-4]
			}
			g.text(col+2, row+line, label, a.th.Text)
			line++
		}
	}
	if a.modal == modalSearch {
		for i, r := range a.searchResults {
			if i >= 3 || row+line >= g.h {
				break
			}
			g.text(col, row+line, blank, "")
			label := r.Task.Title
			if len(label) > w-4 {
				label = label[:w-4]
			}
			g.text(col+2, row+line, label, a.th.Text)
			line++
		}
	}
	g.text(col, row+line, "└"+strings.Repeat("─", w-2)+"┘", a.th.Ring)
}

func (a *App) statusBar() string {
	hints := "[a]dd  [c]ompleted  [/]search  [r]eset view  [q]uit"
	mode := a.board.Name
	if a.cv.ShowCompleted() {
		mode += " · completed"
	}
	left := statusStyle.Render(mode)
	line := fmt.Sprintf("%s  %s", left, hints)
	if a.status != "" {
		line += "  · " + a.status
	}
	return line
}
