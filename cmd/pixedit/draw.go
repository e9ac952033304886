package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/pix-toolkit/pkg/editor"
	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleRect       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRectSel    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleTarget     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 162, 200)).Bold(true) // Lilac
	styleTab        = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleHandle     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleIndicator  = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleConn       = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleConnSel    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleLabel      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	styleRubber     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 162, 200))
	styleTitle      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleMenu       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMenuSel    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const menuWidth = 16

// boxRunes are the border glyphs of a rectangle: horizontal, vertical and
// the four corners.
type boxRunes struct {
	h, v           rune
	tl, tr, bl, br rune
}

var (
	solidBox  = boxRunes{'─', '│', '┌', '┐', '└', '┘'}
	dashedBox = boxRunes{'┄', '┆', '┌', '┐', '└', '┘'}
)

func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()
	canvasH := h - 2

	a.drawCanvas(w, canvasH)

	switch a.mode {
	case ModeInput:
		a.drawInputBox(w, h)
	case ModeContextMenu:
		a.drawContextMenu(w, canvasH)
	case ModeProperties:
		a.drawProperties(w, h)
	case ModeHelp:
		a.drawHelp(w, h)
	}

	a.drawStatusBar(w, h)
}

func (a *App) drawCanvas(w, h int) {
	doc := a.ed.Document()
	view := a.ed.View()
	preview := a.ed.Preview()

	for _, c := range doc.Connections() {
		a.drawConnection(c, w, h)
	}
	for _, r := range doc.Rectangles() {
		style := styleRect
		if r.Selected {
			style = styleRectSel
		} else if r.ID == preview.TargetID {
			style = styleTarget
		} else if r.Color != "" {
			style = style.Foreground(tcell.GetColor(r.Color))
		}
		a.drawRectangle(r, style, w, h)
	}
	for _, c := range doc.Connections() {
		a.drawConnectionLabel(c, w, h)
	}

	if preview.Draw != nil {
		b := *preview.Draw
		x0, y0 := a.cells.worldCell(view, pix.Point{X: b.X, Y: b.Y})
		x1, y1 := a.cells.worldCell(view, pix.Point{X: b.X + b.Width, Y: b.Y + b.Height})
		a.drawFrame(x0, y0, x1, y1, dashedBox, styleRubber, w, h)
	}
	if preview.Rubber != nil {
		a.plotCurve(*preview.Rubber, '∙', 1, styleRubber, w, h)
	}
}

func (a *App) drawRectangle(r *pix.Rectangle, style tcell.Style, w, h int) {
	view := a.ed.View()
	x0, y0 := a.cells.worldCell(view, pix.Point{X: r.X, Y: r.Y})
	x1, y1 := a.cells.worldCell(view, pix.Point{X: r.X + r.Width, Y: r.Y + r.Height})
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	runes := solidBox
	if r.Kind == pix.KindCollection {
		runes = dashedBox
	}

	// Opaque interior so connections pass behind.
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			a.setCell(x, y, ' ', styleDefault, w, h)
		}
	}
	a.drawFrame(x0, y0, x1, y1, runes, style, w, h)

	if tab, ok := r.NameTab(); ok {
		tx0, ty0 := a.cells.worldCell(view, pix.Point{X: tab.X, Y: tab.Y})
		tx1, _ := a.cells.worldCell(view, pix.Point{X: tab.X + tab.Width, Y: tab.Y})
		if ty0 >= y0 {
			ty0 = y0 - 1
		}
		for x := tx0; x <= tx1; x++ {
			a.setCell(x, ty0, ' ', styleTab, w, h)
		}
		a.drawClipped(tx0+1, ty0, truncate(r.Name, tx1-tx0-1), styleTab, w, h)
	} else if r.Name != "" && y1-y0 > 1 {
		name := truncate(r.Name, x1-x0-1)
		a.drawClipped(x0+(x1-x0-len([]rune(name)))/2+1, (y0+y1)/2, name, style, w, h)
	}

	if ind, ok := r.PayloadIndicator(); ok {
		ix, iy := a.cells.worldCell(view, ind.Center())
		a.setCell(ix, iy, '◆', styleIndicator, w, h)
	}

	if r.Selected {
		for _, handle := range pix.Handles {
			hx, hy := a.cells.worldCell(view, r.HandleAnchor(handle))
			a.setCell(hx, hy, '■', styleHandle, w, h)
		}
	}
}

func (a *App) drawFrame(x0, y0, x1, y1 int, b boxRunes, style tcell.Style, w, h int) {
	for x := x0 + 1; x < x1; x++ {
		a.setCell(x, y0, b.h, style, w, h)
		a.setCell(x, y1, b.h, style, w, h)
	}
	for y := y0 + 1; y < y1; y++ {
		a.setCell(x0, y, b.v, style, w, h)
		a.setCell(x1, y, b.v, style, w, h)
	}
	a.setCell(x0, y0, b.tl, style, w, h)
	a.setCell(x1, y0, b.tr, style, w, h)
	a.setCell(x0, y1, b.bl, style, w, h)
	a.setCell(x1, y1, b.br, style, w, h)
}

func (a *App) drawConnection(c *pix.Connection, w, h int) {
	route, ok := a.ed.Document().Route(c, a.ed.GridSize())
	if !ok {
		return
	}
	style := styleConn
	if c.Selected {
		style = styleConnSel
	} else if c.Color != "" {
		style = style.Foreground(tcell.GetColor(c.Color))
	}

	switch c.LineStyle {
	case pix.LineDashed:
		a.plotCurve(route, '╌', 2, style, w, h)
	case pix.LineThickDotted:
		a.plotCurve(route, '•', 2, style, w, h)
	default:
		a.plotCurve(route, '·', 1, style, w, h)
	}

	ex, ey := a.cells.worldCell(a.ed.View(), route.End)
	a.setCell(ex-1, ey, '▶', style, w, h)
}

func (a *App) drawConnectionLabel(c *pix.Connection, w, h int) {
	if c.Label == "" {
		return
	}
	anchor, ok := a.ed.Document().LabelAnchor(c, a.ed.GridSize())
	if !ok {
		return
	}
	style := styleLabel
	if c.Selected {
		style = styleLabel.Foreground(tcell.ColorYellow)
	}
	lx, ly := a.cells.worldCell(a.ed.View(), anchor)
	a.drawClipped(lx-len([]rune(c.Label))/2, ly, c.Label, style, w, h)
}

// plotCurve marks the cells a curve passes through. With every > 1 only
// every n-th distinct cell is marked, giving a dashed look.
func (a *App) plotCurve(curve pix.Curve, r rune, every int, style tcell.Style, w, h int) {
	view := a.ed.View()
	cellSize := math.Min(a.cells.W, a.cells.H)
	n := int(curve.Length()*view.Zoom/cellSize)*2 + pix.SampleCount

	lastX, lastY, count := math.MinInt, math.MinInt, 0
	for _, p := range curve.Sample(n) {
		x, y := a.cells.worldCell(view, p)
		if x == lastX && y == lastY {
			continue
		}
		lastX, lastY = x, y
		if count%every == 0 {
			a.setCell(x, y, r, style, w, h)
		}
		count++
	}
}

func (a *App) setCell(x, y int, r rune, style tcell.Style, w, h int) {
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	a.screen.SetContent(x, y, r, nil, style)
}

func (a *App) drawClipped(x, y int, s string, style tcell.Style, w, h int) {
	for i, r := range []rune(s) {
		a.setCell(x+i, y, r, style, w, h)
	}
}

func (a *App) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		a.screen.SetContent(x+i, y, r, nil, style)
	}
}

// drawTitledBox draws a bordered box with optional title
func (a *App) drawTitledBox(x, y, w, h int, title string) {
	a.screen.SetContent(x, y, '┌', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		a.screen.SetContent(x+i, y, '─', nil, styleBorder)
	}
	a.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)

	if title != "" {
		titleX := x + (w-len(title)-2)/2
		a.screen.SetContent(titleX, y, ' ', nil, styleBorder)
		a.drawString(titleX+1, y, title, styleTitle)
		a.screen.SetContent(titleX+1+len(title), y, ' ', nil, styleBorder)
	}

	for row := 1; row < h-1; row++ {
		a.screen.SetContent(x, y+row, '│', nil, styleBorder)
		for col := 1; col < w-1; col++ {
			a.screen.SetContent(x+col, y+row, ' ', nil, styleDefault)
		}
		a.screen.SetContent(x+w-1, y+row, '│', nil, styleBorder)
	}

	a.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		a.screen.SetContent(x+i, y+h-1, '─', nil, styleBorder)
	}
	a.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
}

func (a *App) drawContextMenu(w, h int) {
	x, y := a.menuX, a.menuY
	boxH := len(a.menuItems) + 2
	if x+menuWidth > w {
		x = w - menuWidth
	}
	if y+boxH > h {
		y = h - boxH
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	a.menuX, a.menuY = x, y

	a.drawTitledBox(x, y, menuWidth, boxH, "")
	for i, item := range a.menuItems {
		style := styleMenu
		if i == a.menuSelected {
			style = styleMenuSel
		}
		a.drawString(x+1, y+1+i, fmt.Sprintf(" %-*s", menuWidth-3, item), style)
	}
}

func (a *App) drawProperties(w, h int) {
	if a.edit == nil {
		return
	}
	rows := a.propertyRows()
	boxW := 60
	if boxW > w-4 {
		boxW = w - 4
	}
	boxH := len(rows) + 4
	x := (w - boxW) / 2
	y := (h - boxH) / 2

	title := "Rectangle"
	if a.edit.IsConnection() {
		title = "Connection"
	}
	a.drawTitledBox(x, y, boxW, boxH, title)
	for i, row := range rows {
		style := styleMenu
		if i == a.menuSelected {
			style = styleMenuSel
		}
		a.drawString(x+1, y+2+i, fmt.Sprintf(" %-*s", boxW-3, truncate(row, boxW-3)), style)
	}
}

func (a *App) drawInputBox(w, h int) {
	boxW := 60
	if boxW > w-2 {
		boxW = w - 2
	}
	boxX := (w - boxW) / 2
	boxY := (h - 3) / 2

	a.drawTitledBox(boxX, boxY, boxW, 3, "")
	for col := 1; col < boxW-1; col++ {
		a.screen.SetContent(boxX+col, boxY+1, ' ', nil, styleInput)
	}
	text := a.inputBuffer + "_"
	room := boxW - 4 - len(a.inputPrompt)
	if r := []rune(text); room > 0 && len(r) > room {
		text = string(r[len(r)-room:])
	}
	a.drawString(boxX+2, boxY+1, a.inputPrompt+text, styleInput)
}

var helpLines = []string{
	"Left drag on empty space   draw a rectangle",
	"Left drag on a rectangle   move it; drag a handle to resize",
	"Right drag from rectangle  connect (drop on empty space to create one)",
	"Right click                context menu",
	"Middle drag                pan",
	"Wheel, + / -               zoom;  0 resets the view",
	"Double click               edit properties",
	"Enter                      edit selection",
	"Delete                     delete selection",
	"Ctrl+C / Ctrl+V            copy / paste payload",
	"a                          arrange in layers",
	"Ctrl+S / Ctrl+O / Ctrl+N   save / open / new",
	"Ctrl+E                     export;  f cycles the format",
	"Ctrl+R                     reload from disk",
	"Esc                        cancel gesture",
	"Ctrl+Q                     quit",
}

func (a *App) drawHelp(w, h int) {
	boxW := 76
	if boxW > w-2 {
		boxW = w - 2
	}
	boxH := len(helpLines) + 4
	x := (w - boxW) / 2
	y := (h - boxH) / 2
	a.drawTitledBox(x, y, boxW, boxH, "pixedit")
	for i, line := range helpLines {
		a.drawString(x+2, y+2+i, truncate(line, boxW-4), styleMenu)
	}
}

func (a *App) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := "[New]"
	if a.filename != "" {
		fileInfo = filepath.Base(a.filename)
	}
	if a.modified {
		fileInfo += " *"
	}
	a.drawString(1, y, fileInfo, styleStatus)

	mid := fmt.Sprintf("%s  %d%%  %s", a.ed.State().Name(), int(math.Round(a.ed.View().Zoom*100)),
		strings.ToUpper(a.config.ExportFormat))
	a.drawString(w/2-len(mid)/2, y, mid, styleStatus)

	if a.message != "" {
		style := styleMsgInfo
		switch a.messageType {
		case MsgError:
			style = styleMsgError
		case MsgWarning:
			style = styleMsgWarning
		}
		a.drawString(w-len([]rune(a.message))-2, y, a.message, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	a.drawString(1, y, a.helpString(), styleHelp)
}

func (a *App) helpString() string {
	switch a.mode {
	case ModeInput:
		return "Type text  Enter:Confirm  Esc:Cancel"
	case ModeContextMenu:
		return "↑↓:Select  Enter:Confirm  Esc:Close"
	case ModeProperties:
		return "↑↓:Select  Enter:Edit/Toggle  Esc:Discard"
	case ModeHelp:
		return "Any key: close"
	}
	return cursorHint(a.ed.CursorAt(a.hover)) + "  ?:Help  Ctrl+S:Save  Ctrl+E:Export  Ctrl+Q:Quit"
}

// cursorHint describes what the pointer would do at its position, standing
// in for a pointer shape the terminal cannot show.
func cursorHint(c editor.Cursor) string {
	switch c {
	case editor.CursorMove:
		return "[move]"
	case editor.CursorPointer:
		return "[select]"
	case editor.CursorGrabbing:
		return "[pan]"
	case editor.CursorResizeNWSE, editor.CursorResizeNESW:
		return "[resize ⤡]"
	case editor.CursorResizeNS:
		return "[resize ↕]"
	case editor.CursorResizeEW:
		return "[resize ↔]"
	case editor.CursorCrosshair:
		return "[draw]"
	}
	return ""
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
