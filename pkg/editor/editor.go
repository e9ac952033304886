// Package editor implements the pointer-driven diagram editing engine.
//
// An Editor owns one document and its view. Hosts feed it pointer and
// keyboard events and receive committed changes through the Host
// interface. An Editor is not safe for concurrent use; all calls must come
// from the host's UI goroutine.
package editor

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// Options configures an Editor.
type Options struct {
	Logger        *zap.Logger
	GridSize      float64
	Labels        pix.LabelMetrics
	HitTolerance  float64 // screen pixels around a connection that count as a hit
	DragThreshold float64 // screen pixels a secondary drag must travel to start connecting
	ZoomStep      float64 // wheel zoom factor per notch
}

// DefaultOptions returns the standard editor settings.
func DefaultOptions() Options {
	return Options{
		Logger:        zap.NewNop(),
		GridSize:      pix.DefaultGridSize,
		Labels:        pix.DefaultLabelMetrics(),
		HitTolerance:  8,
		DragThreshold: 10,
		ZoomStep:      1.1,
	}
}

// Editor is an editing session: a document, a view and the active gesture.
type Editor struct {
	host  Host
	log   *zap.Logger
	opts  Options
	doc   *pix.Document
	view  *pix.View
	state State
}

// New creates an editor with an empty document.
func New(host Host, opts Options) *Editor {
	def := DefaultOptions()
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}
	if opts.GridSize <= 0 {
		opts.GridSize = def.GridSize
	}
	if opts.Labels.FontSize <= 0 {
		opts.Labels = def.Labels
	}
	if opts.HitTolerance <= 0 {
		opts.HitTolerance = def.HitTolerance
	}
	if opts.DragThreshold <= 0 {
		opts.DragThreshold = def.DragThreshold
	}
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = def.ZoomStep
	}
	if host == nil {
		host = BaseHost{}
	}
	return &Editor{
		host:  host,
		log:   opts.Logger,
		opts:  opts,
		doc:   pix.New(),
		view:  pix.NewView(opts.GridSize),
		state: Idle{},
	}
}

// Document returns the live document. Callers must not mutate it directly.
func (e *Editor) Document() *pix.Document { return e.doc }

// View returns the live view transform.
func (e *Editor) View() *pix.View { return e.view }

// State returns the active interaction state.
func (e *Editor) State() State { return e.state }

// Selection returns the selected entity.
func (e *Editor) Selection() pix.Selection { return e.doc.Selection() }

// GridSize returns the snapping quantum.
func (e *Editor) GridSize() float64 { return e.opts.GridSize }

// Labels returns the label metrics used for hit-testing.
func (e *Editor) Labels() pix.LabelMetrics { return e.opts.Labels }

func (e *Editor) setState(s State) {
	if e.state.Name() != s.Name() {
		e.log.Debug("state transition",
			zap.String("from", e.state.Name()),
			zap.String("to", s.Name()))
	}
	e.state = s
}

// commit notifies the host of a committed mutation.
func (e *Editor) commit(what string, fields ...zap.Field) {
	e.log.Debug("commit", append([]zap.Field{zap.String("change", what)}, fields...)...)
	e.host.DataChanged(e.doc.Clone())
}

// abandon drops the active gesture, undoing anything it changed.
func (e *Editor) abandon() {
	switch s := e.state.(type) {
	case Dragging:
		s.undo.restore(e.doc)
	case Resizing:
		s.undo.restore(e.doc)
	case DraggingLabel:
		s.undo.restore(e.doc)
	}
	e.setState(Idle{})
}

// LoadData replaces the whole document. It may be called at any time; an
// in-progress gesture is abandoned. The selection is cleared and the host
// is not notified, since the document came from the host.
func (e *Editor) LoadData(doc *pix.Document) {
	if _, idle := e.state.(Idle); !idle {
		e.log.Debug("gesture abandoned by load", zap.String("state", e.state.Name()))
	}
	e.setState(Idle{})
	if doc == nil {
		doc = pix.New()
	}
	e.doc = doc
	e.doc.ClearSelection()
	e.log.Debug("document loaded",
		zap.Int("rectangles", len(doc.Rectangles())),
		zap.Int("connections", len(doc.Connections())))
}

// Cancel abandons the active gesture without committing it.
func (e *Editor) Cancel() {
	e.abandon()
}

// SetName names a rectangle, typically after NamePending.
func (e *Editor) SetName(rectID, name string) error {
	r, ok := e.doc.Rectangle(rectID)
	if !ok {
		return errors.Wrapf(pix.ErrRectangleNotFound, "set name %q", rectID)
	}
	r.Name = name
	e.commit("rename", zap.String("id", rectID))
	return nil
}

// DeleteSelected deletes the selected entity. Deleting a rectangle also
// deletes every connection attached to it. It reports whether anything was
// deleted.
func (e *Editor) DeleteSelected() bool {
	e.abandon()
	sel := e.doc.Selection()
	switch {
	case sel.RectangleID != "":
		removed, err := e.doc.DeleteRectangle(sel.RectangleID)
		if err != nil {
			return false
		}
		e.commit("delete rectangle", zap.String("id", sel.RectangleID), zap.Int("cascade", len(removed)))
		return true
	case sel.ConnectionID != "":
		if err := e.doc.DeleteConnection(sel.ConnectionID); err != nil {
			return false
		}
		e.commit("delete connection", zap.String("id", sel.ConnectionID))
		return true
	}
	return false
}

// Clear removes every entity.
func (e *Editor) Clear() {
	e.setState(Idle{})
	e.doc.Clear()
	e.commit("clear")
}

// Save asks the host to persist the current document.
func (e *Editor) Save() {
	e.doc.Stamp(time.Now())
	e.host.RequestSave(e.doc.Clone())
}

// Open asks the host to pick a document and call LoadData.
func (e *Editor) Open() {
	e.host.RequestLoad()
}

// Copy copies the selected entity's payload, with $$name$$ tokens
// expanded, to the clipboard. It does nothing while a text input has focus
// and reports whether a copy was requested.
func (e *Editor) Copy(inputFocused bool) bool {
	if inputFocused {
		return false
	}
	payload, ok := e.selectedPayload()
	if !ok {
		return false
	}
	e.host.RequestClipboardCopy(pix.Substitute(e.doc, payload))
	return true
}

// Paste replaces the selected entity's payload with text. It does nothing
// while a text input has focus and reports whether the payload changed.
func (e *Editor) Paste(text string, inputFocused bool) bool {
	if inputFocused {
		return false
	}
	sel := e.doc.Selection()
	switch {
	case sel.RectangleID != "":
		r, _ := e.doc.Rectangle(sel.RectangleID)
		r.Payload = text
	case sel.ConnectionID != "":
		c, _ := e.doc.Connection(sel.ConnectionID)
		c.Payload = text
	default:
		return false
	}
	e.commit("paste payload")
	return true
}

func (e *Editor) selectedPayload() (string, bool) {
	sel := e.doc.Selection()
	if r, ok := e.doc.Rectangle(sel.RectangleID); ok {
		return r.Payload, true
	}
	if c, ok := e.doc.Connection(sel.ConnectionID); ok {
		return c.Payload, true
	}
	return "", false
}

// Arrange lays the drawing out in layers following its connections and
// reports whether any rectangle moved. An in-progress gesture is abandoned.
func (e *Editor) Arrange() bool {
	e.abandon()
	moved := pix.Arrange(e.doc, pix.DefaultArrangeOptions(e.opts.GridSize))
	if len(moved) == 0 {
		return false
	}
	e.commit("arrange", zap.Int("moved", len(moved)))
	return true
}

// Wheel zooms around the pointer, independent of the active gesture.
// Negative deltas zoom in.
func (e *Editor) Wheel(screen pix.Point, delta float64) {
	switch {
	case delta < 0:
		e.view.ZoomAt(screen, e.opts.ZoomStep)
	case delta > 0:
		e.view.ZoomAt(screen, 1/e.opts.ZoomStep)
	}
}

// ResetView restores the default pan and zoom.
func (e *Editor) ResetView() {
	e.view.Reset()
}
