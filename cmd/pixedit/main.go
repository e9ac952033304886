// Command pixedit is a terminal editor for pix drawings.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ha1tch/pix-toolkit/pkg/editor"
	"github.com/ha1tch/pix-toolkit/pkg/pix"
	"github.com/ha1tch/pix-toolkit/pkg/pixfile"
)

// Mode is the active input focus of the terminal UI.
type Mode int

const (
	ModeCanvas      Mode = iota
	ModeInput            // single-line prompt
	ModeContextMenu      // delete menu for the selection
	ModeProperties       // property editor
	ModeHelp
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
	MsgWarning
)

// App is the terminal host around an editor.Editor.
type App struct {
	screen tcell.Screen
	ed     *editor.Editor
	log    *zap.Logger
	config Config
	cells  cellMap

	filename    string
	modified    bool
	mode        Mode
	message     string
	messageType MessageType

	// Mouse tracking
	buttons      tcell.ButtonMask
	lastX, lastY int
	clicks       clickTracker
	hover        pix.Point

	// Input prompt
	inputPrompt string
	inputBuffer string
	inputAction func(string)
	inputReturn Mode

	// Context menu and property editor
	menuItems    []string
	menuSelected int
	menuX, menuY int
	edit         *editor.EditBuffer

	// File watching
	watcher   *fileWatcher
	watching  string
	writtenAt time.Time
}

func newLogger(cfg Config) (*zap.Logger, func(), error) {
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if os.Getenv("DEBUG") != "" {
		level = zapcore.DebugLevel
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(f), level)
	log := zap.New(core, zap.AddCaller())
	return log, func() { _ = log.Sync(); f.Close() }, nil
}

func newApp(cfg Config, log *zap.Logger) *App {
	a := &App{
		log:    log,
		config: cfg,
		cells:  cellMap{W: cfg.CellWidth, H: cfg.CellHeight},
		clicks: clickTracker{window: cfg.DoubleClickWindow()},
	}
	opts := editor.DefaultOptions()
	opts.Logger = log.Named("editor")
	opts.GridSize = cfg.GridSize
	a.ed = editor.New(a, opts)
	return a
}

func main() {
	cfgPath := ConfigPath()
	cfg, cfgErr := LoadConfig(cfgPath)

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log %s: %v\n", cfg.LogPath(), err)
		os.Exit(1)
	}
	defer closeLog()
	if cfgErr != nil {
		log.Warn("config ignored", zap.String("path", cfgPath), zap.Error(cfgErr))
	}

	app := newApp(cfg, log)
	if cfgErr != nil {
		app.showMessage("Config ignored: "+cfgErr.Error(), MsgWarning)
	}

	if len(os.Args) > 1 {
		if err := app.loadFile(os.Args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()
	app.screen = screen
	app.watch()

	app.run()

	screen.Fini()
	app.watcher.Close()
	if err := SaveConfig(cfgPath, app.config); err != nil {
		log.Warn("save config", zap.Error(err))
	}
}

func (a *App) run() {
	for {
		a.draw()
		a.screen.Show()

		ev := a.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			if a.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			a.handleMouse(ev)
		case *fileChanged:
			a.fileChanged(ev.path)
		case *tcell.EventInterrupt:
			// redraw only
		}
	}
}

func (a *App) showMessage(msg string, msgType MessageType) {
	a.message = msg
	a.messageType = msgType
	if a.screen != nil {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// prompt opens the single-line input with an initial value.
func (a *App) prompt(label, initial string, action func(string)) {
	a.inputReturn = a.mode
	if a.inputReturn == ModeInput {
		a.inputReturn = ModeCanvas
	}
	a.inputPrompt = label
	a.inputBuffer = initial
	a.inputAction = action
	a.mode = ModeInput
}

// Keyboard

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true
	case tcell.KeyCtrlC:
		if a.ed.Copy(a.mode == ModeInput) {
			a.showMessage("Copied payload", MsgSuccess)
		}
		return false
	case tcell.KeyCtrlV:
		a.paste()
		return false
	}

	switch a.mode {
	case ModeCanvas:
		return a.handleCanvasKey(ev)
	case ModeInput:
		a.handleInputKey(ev)
	case ModeContextMenu:
		a.handleContextMenuKey(ev)
	case ModeProperties:
		a.handlePropertiesKey(ev)
	case ModeHelp:
		a.mode = ModeCanvas
	}
	return false
}

func (a *App) paste() {
	text, err := clipboard.ReadAll()
	if err != nil {
		a.showMessage("Clipboard error: "+err.Error(), MsgError)
		return
	}
	if a.mode == ModeInput {
		a.inputBuffer += strings.ReplaceAll(text, "\n", " ")
		return
	}
	if a.ed.Paste(text, false) {
		a.showMessage("Pasted payload", MsgSuccess)
	}
}

func (a *App) handleCanvasKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.ed.Cancel()
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		if a.ed.DeleteSelected() {
			a.showMessage("Deleted", MsgSuccess)
		}
	case tcell.KeyEnter:
		a.OpenPropertyEditor(a.ed.Selection())
	case tcell.KeyCtrlS:
		a.ed.Save()
	case tcell.KeyCtrlO:
		a.ed.Open()
	case tcell.KeyCtrlN:
		a.newDocument()
	case tcell.KeyCtrlE:
		a.export()
	case tcell.KeyCtrlR:
		if a.filename != "" {
			a.reload(a.filename)
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case '+', '=':
			a.ed.Wheel(a.canvasCentre(), -1)
		case '-':
			a.ed.Wheel(a.canvasCentre(), 1)
		case '0':
			a.ed.ResetView()
		case 'a':
			if a.ed.Arrange() {
				a.showMessage("Arranged", MsgSuccess)
			}
		case 'f':
			a.cycleExportFormat()
		case '?':
			a.mode = ModeHelp
		}
	}
	return false
}

func (a *App) canvasCentre() pix.Point {
	w, h := a.screen.Size()
	return a.cells.toPixel(w/2, (h-2)/2)
}

func (a *App) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.mode = a.inputReturn
	case tcell.KeyEnter:
		action, text := a.inputAction, a.inputBuffer
		a.mode = a.inputReturn
		a.inputBuffer = ""
		if action != nil {
			action(text)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(a.inputBuffer); len(r) > 0 {
			a.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		a.inputBuffer += string(ev.Rune())
	}
}

// Mouse

var mouseButtons = []struct {
	mask   tcell.ButtonMask
	button editor.Button
}{
	{tcell.Button1, editor.ButtonPrimary},
	{tcell.Button2, editor.ButtonSecondary},
	{tcell.Button3, editor.ButtonMiddle},
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	pt := a.cells.toPixel(x, y)
	a.hover = pt

	if buttons&tcell.WheelUp != 0 {
		a.ed.Wheel(pt, -1)
		return
	}
	if buttons&tcell.WheelDown != 0 {
		a.ed.Wheel(pt, 1)
		return
	}

	buttons &= tcell.Button1 | tcell.Button2 | tcell.Button3
	pressed := buttons &^ a.buttons
	released := a.buttons &^ buttons
	moved := x != a.lastX || y != a.lastY
	a.buttons, a.lastX, a.lastY = buttons, x, y

	switch a.mode {
	case ModeCanvas:
	case ModeContextMenu:
		if pressed&tcell.Button1 != 0 {
			a.clickContextMenu(x, y)
		}
		return
	default:
		return
	}

	for _, b := range mouseButtons {
		if pressed&b.mask != 0 {
			a.ed.PointerDown(editor.PointerEvent{Button: b.button, Screen: pt})
		}
	}
	if moved && pressed == 0 && buttons != 0 {
		a.ed.PointerMove(editor.PointerEvent{Screen: pt})
	}

	if released&tcell.Button2 != 0 {
		// A secondary click that never became a connection drag opens
		// the context menu.
		switch a.ed.State().(type) {
		case editor.PotentialConnect, editor.Idle:
			a.ed.ContextMenu(pt)
		}
	}
	if released != 0 {
		a.ed.PointerUp(editor.PointerEvent{Screen: pt})
	}
	if released&tcell.Button1 != 0 && a.clicks.click(time.Now(), x, y) {
		a.ed.DoubleClick(pt)
	}
}

// Context menu

func (a *App) handleContextMenuKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.mode = ModeCanvas
	case tcell.KeyUp:
		if a.menuSelected > 0 {
			a.menuSelected--
		}
	case tcell.KeyDown:
		if a.menuSelected < len(a.menuItems)-1 {
			a.menuSelected++
		}
	case tcell.KeyEnter:
		a.executeContextMenu()
	}
}

func (a *App) clickContextMenu(x, y int) {
	row := y - a.menuY - 1
	if x < a.menuX || x >= a.menuX+menuWidth || row < 0 || row >= len(a.menuItems) {
		a.mode = ModeCanvas
		return
	}
	a.menuSelected = row
	a.executeContextMenu()
}

func (a *App) executeContextMenu() {
	a.mode = ModeCanvas
	switch a.menuItems[a.menuSelected] {
	case "Delete":
		if a.ed.DeleteSelected() {
			a.showMessage("Deleted", MsgSuccess)
		}
	case "Properties":
		a.OpenPropertyEditor(a.ed.Selection())
	}
}

// Property editor

// propertyRows lists the editable fields of the buffer followed by the
// Apply and Cancel actions.
func (a *App) propertyRows() []string {
	b := a.edit
	name, kind := "Name", "Type: "+string(b.Kind)
	if b.IsConnection() {
		name, kind = "Label", "Style: "+string(b.LineStyle)
	}
	return []string{
		name + ": " + b.Name,
		"Description: " + b.Description,
		"Payload: " + b.Payload,
		"Color: " + b.Color,
		kind,
		"Apply",
		"Cancel",
	}
}

func (a *App) handlePropertiesKey(ev *tcell.EventKey) {
	rows := a.propertyRows()
	switch ev.Key() {
	case tcell.KeyEscape:
		a.edit = nil
		a.mode = ModeCanvas
	case tcell.KeyUp:
		if a.menuSelected > 0 {
			a.menuSelected--
		}
	case tcell.KeyDown, tcell.KeyTab:
		if a.menuSelected < len(rows)-1 {
			a.menuSelected++
		}
	case tcell.KeyEnter:
		a.editProperty(a.menuSelected)
	}
}

func (a *App) editProperty(row int) {
	b := a.edit
	field := func(label string, dst *string) {
		a.prompt(label+": ", *dst, func(s string) { *dst = s })
	}
	switch row {
	case 0:
		if b.IsConnection() {
			field("Label", &b.Name)
		} else {
			field("Name", &b.Name)
		}
	case 1:
		field("Description", &b.Description)
	case 2:
		field("Payload", &b.Payload)
	case 3:
		field("Color", &b.Color)
	case 4:
		if b.IsConnection() {
			b.LineStyle = nextLineStyle(b.LineStyle)
		} else if b.Kind == pix.KindCollection {
			b.Kind = pix.KindRegular
		} else {
			b.Kind = pix.KindCollection
		}
	case 5:
		err := b.Commit()
		a.edit = nil
		a.mode = ModeCanvas
		if err != nil {
			a.showMessage("Error: "+err.Error(), MsgError)
			return
		}
		a.showMessage("Properties updated", MsgSuccess)
	case 6:
		a.edit = nil
		a.mode = ModeCanvas
	}
}

func nextLineStyle(s pix.LineStyle) pix.LineStyle {
	switch s {
	case pix.LineSolid:
		return pix.LineDashed
	case pix.LineDashed:
		return pix.LineThickDotted
	}
	return pix.LineSolid
}

// Files

func (a *App) defaultDir() string {
	if a.filename != "" {
		return filepath.Dir(a.filename)
	}
	return a.config.LastDir
}

func (a *App) newDocument() {
	a.ed.LoadData(nil)
	a.filename = ""
	a.modified = false
	a.watch()
	a.showMessage("New drawing", MsgInfo)
}

func (a *App) loadFile(path string) error {
	doc, report, err := pixfile.ReadFile(path, a.config.GridSize)
	if err != nil {
		return err
	}
	a.ed.LoadData(doc)
	a.filename = path
	a.modified = false
	a.config.LastDir = filepath.Dir(path)
	a.logReport(path, report)
	a.watch()
	return nil
}

func (a *App) logReport(path string, report *pixfile.Report) {
	if !report.Repaired() {
		a.log.Info("loaded", zap.String("path", path))
		return
	}
	a.log.Info("loaded with repairs",
		zap.String("path", path),
		zap.Strings("dropped_connections", report.DroppedConnections),
		zap.Strings("clamped_rectangles", report.ClampedRectangles),
		zap.Strings("generated_ids", report.GeneratedIDs),
		zap.Strings("duplicate_ids", report.DuplicateIDs))
	a.showMessage(fmt.Sprintf("Repaired %s: %d dropped connections, %d resized",
		filepath.Base(path), len(report.DroppedConnections), len(report.ClampedRectangles)), MsgWarning)
}

func (a *App) saveTo(path string, doc *pix.Document) {
	if filepath.Ext(path) == "" {
		path += pixfile.Extension
	}
	if err := pixfile.WriteFile(path, doc); err != nil {
		a.log.Error("save", zap.String("path", path), zap.Error(err))
		a.showMessage("Error: "+err.Error(), MsgError)
		return
	}
	if info, err := os.Stat(path); err == nil {
		a.writtenAt = info.ModTime()
	}
	a.filename = path
	a.modified = false
	a.config.LastDir = filepath.Dir(path)
	a.watch()
	a.showMessage("Saved: "+path, MsgSuccess)
}

// watch follows the open file for outside edits.
func (a *App) watch() {
	if a.screen == nil || a.watching == a.filename {
		return
	}
	a.watcher.Close()
	a.watcher, a.watching = nil, ""
	if a.filename == "" || a.config.WatchInterval <= 0 {
		return
	}
	fw, err := watchFile(a.screen, a.filename, a.config.WatchInterval, a.log)
	if err != nil {
		a.log.Warn("watch", zap.Error(err))
		return
	}
	a.watcher, a.watching = fw, a.filename
}

func (a *App) fileChanged(path string) {
	if path != a.filename {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.ModTime().Equal(a.writtenAt) {
		return
	}
	if a.modified {
		a.showMessage("File changed on disk; Ctrl+R reloads and discards edits", MsgWarning)
		return
	}
	a.reload(path)
}

func (a *App) reload(path string) {
	if err := a.loadFile(path); err != nil {
		a.showMessage("Error: "+err.Error(), MsgError)
		return
	}
	a.showMessage("Reloaded: "+filepath.Base(path), MsgInfo)
}

func (a *App) cycleExportFormat() {
	for i, f := range pixfile.Formats {
		if f == a.config.ExportFormat {
			a.config.ExportFormat = pixfile.Formats[(i+1)%len(pixfile.Formats)]
			break
		}
	}
	a.showMessage("Export format: "+strings.ToUpper(a.config.ExportFormat), MsgInfo)
}

func (a *App) export() {
	base := filepath.Join(a.config.LastDir, "drawing")
	if a.filename != "" {
		base = strings.TrimSuffix(a.filename, filepath.Ext(a.filename))
	}
	path := base + "." + a.config.ExportFormat

	f, err := os.Create(path)
	if err != nil {
		a.showMessage("Error: "+err.Error(), MsgError)
		return
	}
	title := filepath.Base(base)
	err = pixfile.Export(f, a.ed.Document(), a.config.ExportFormat, pixfile.ExportOptions{
		Title:    title,
		GridSize: a.ed.GridSize(),
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		a.log.Error("export", zap.String("path", path), zap.Error(err))
		a.showMessage("Export failed: "+err.Error(), MsgError)
		return
	}
	a.log.Info("exported", zap.String("path", path), zap.String("format", a.config.ExportFormat))
	a.showMessage("Exported: "+path, MsgSuccess)
}
