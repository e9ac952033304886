package editor

import (
	"math"

	"go.uber.org/zap"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// hit is what lies under the pointer, in precedence order.
type hit struct {
	indicator *pix.Rectangle // payload indicator of this rectangle
	label     *pix.Connection
	handle    pix.Handle
	rect      *pix.Rectangle
	conn      *pix.Connection
}

func (h hit) empty() bool {
	return h.indicator == nil && h.label == nil && h.rect == nil && h.conn == nil
}

// hitTest resolves a world point. Payload indicators win, then labels.
// The selected rectangle's handles come next because they overhang its
// edges; otherwise the topmost rectangle wins.
func (e *Editor) hitTest(p pix.Point) hit {
	var h hit
	zoom := e.view.Zoom
	grid := e.opts.GridSize

	top, onRect := e.doc.RectangleAt(p, "")
	if onRect && top.PayloadIndicatorAt(p) {
		h.rect, h.indicator = top, top
		return h
	}

	if c, ok := e.doc.LabelAt(p, e.opts.Labels, grid); ok {
		h.label = c
		return h
	}

	sel := e.doc.Selection()
	if r, ok := e.doc.Rectangle(sel.RectangleID); ok {
		if handle := r.HandleAt(p, zoom); handle != pix.HandleNone {
			h.rect, h.handle = r, handle
			return h
		}
	}

	if onRect {
		h.rect = top
		h.handle = top.HandleAt(p, zoom)
		return h
	}

	if c, ok := e.doc.ConnectionAt(p, e.view.Tolerance(e.opts.HitTolerance), grid); ok {
		h.conn = c
	}
	return h
}

// PointerDown handles a button press.
func (e *Editor) PointerDown(ev PointerEvent) {
	world := e.view.ToWorld(ev.Screen.X, ev.Screen.Y)

	if _, idle := e.state.(Idle); !idle {
		// A primary press on empty space ends whatever was going on.
		if ev.Button == ButtonPrimary && e.hitTest(world).empty() {
			e.abandon()
			e.doc.ClearSelection()
		}
		return
	}

	switch ev.Button {
	case ButtonPrimary:
		e.primaryDown(world)
	case ButtonSecondary:
		e.secondaryDown(ev.Screen, world)
	case ButtonMiddle:
		e.setState(Panning{Last: ev.Screen})
	}
}

func (e *Editor) primaryDown(world pix.Point) {
	h := e.hitTest(world)

	switch {
	case h.indicator != nil:
		e.doc.SelectRectangle(h.indicator.ID)
		e.host.RequestClipboardCopy(pix.Substitute(e.doc, h.indicator.Payload))
		e.log.Debug("payload copied", zap.String("id", h.indicator.ID))

	case h.label != nil:
		e.doc.SelectConnection(h.label.ID)
		e.setState(DraggingLabel{
			ConnID: h.label.ID,
			undo:   takeSnapshot(e.doc, "", []*pix.Connection{h.label}),
		})

	case h.rect != nil && h.handle != pix.HandleNone:
		e.doc.SelectRectangle(h.rect.ID)
		e.setState(Resizing{
			RectID: h.rect.ID,
			Handle: h.handle,
			Origin: world,
			Start:  h.rect.Bounds(),
			undo:   takeSnapshot(e.doc, h.rect.ID, e.doc.Incident(h.rect.ID)),
		})

	case h.rect != nil:
		e.doc.SelectRectangle(h.rect.ID)
		e.setState(Dragging{
			RectID: h.rect.ID,
			Offset: pix.Point{X: world.X - h.rect.X, Y: world.Y - h.rect.Y},
			undo:   takeSnapshot(e.doc, h.rect.ID, e.doc.Incident(h.rect.ID)),
		})

	case h.conn != nil:
		e.doc.SelectConnection(h.conn.ID)

	default:
		e.doc.ClearSelection()
		e.setState(Drawing{Origin: world, Start: e.view.SnapPoint(world), Current: world})
	}
}

func (e *Editor) secondaryDown(screen, world pix.Point) {
	tol := e.view.Tolerance(e.opts.HitTolerance)
	if _, ok := e.doc.ConnectionAt(world, tol, e.opts.GridSize); ok {
		return
	}
	if _, ok := e.doc.LabelAt(world, e.opts.Labels, e.opts.GridSize); ok {
		return
	}
	r, ok := e.doc.RectangleAt(world, "")
	if !ok {
		return
	}
	e.setState(PotentialConnect{SourceID: r.ID, StartScreen: screen})
}

// PointerMove handles pointer motion with any buttons held.
func (e *Editor) PointerMove(ev PointerEvent) {
	world := e.view.ToWorld(ev.Screen.X, ev.Screen.Y)

	switch s := e.state.(type) {
	case Drawing:
		s.Current = world
		e.state = s

	case PotentialConnect:
		if ev.Screen.Dist(s.StartScreen) > e.opts.DragThreshold {
			e.doc.ClearSelection()
			e.setState(e.connecting(s.SourceID, world))
		}

	case Connecting:
		e.state = e.connecting(s.SourceID, world)

	case Dragging:
		if err := e.doc.MoveRectangle(s.RectID, world.X-s.Offset.X, world.Y-s.Offset.Y); err != nil {
			e.abandon()
			return
		}
		s.Moved = true
		e.state = s

	case Resizing:
		b := pix.ApplyResize(s.Start, s.Handle, world.X-s.Origin.X, world.Y-s.Origin.Y, e.opts.GridSize)
		if err := e.doc.SetBounds(s.RectID, b); err != nil {
			e.abandon()
			return
		}
		s.Moved = true
		e.state = s

	case Panning:
		e.view.PanBy(ev.Screen.X-s.Last.X, ev.Screen.Y-s.Last.Y)
		s.Last = ev.Screen
		e.state = s

	case DraggingLabel:
		c, ok := e.doc.Connection(s.ConnID)
		if !ok {
			e.abandon()
			return
		}
		p := world
		c.LabelPosition = &p
		s.Moved = true
		e.state = s
	}
}

func (e *Editor) connecting(sourceID string, world pix.Point) Connecting {
	s := Connecting{SourceID: sourceID, Current: world}
	if r, ok := e.doc.RectangleAt(world, sourceID); ok {
		s.TargetID = r.ID
	}
	return s
}

// PointerUp handles a button release and commits the active gesture.
func (e *Editor) PointerUp(ev PointerEvent) {
	world := e.view.ToWorld(ev.Screen.X, ev.Screen.Y)

	switch s := e.state.(type) {
	case Drawing:
		s.Current = world
		e.finishDrawing(s)

	case Connecting:
		e.finishConnecting(e.connecting(s.SourceID, world))

	case Dragging:
		e.setState(Idle{})
		if s.Moved {
			e.finishGeometry(s.RectID, "move", func(b pix.Bounds) pix.Bounds {
				return pix.SnapPosition(b, e.opts.GridSize)
			})
		}

	case Resizing:
		e.setState(Idle{})
		if s.Moved {
			e.finishGeometry(s.RectID, "resize", func(b pix.Bounds) pix.Bounds {
				return pix.SnapResize(b, s.Handle, e.opts.GridSize)
			})
		}

	case DraggingLabel:
		e.setState(Idle{})
		if s.Moved {
			e.commit("move label", zap.String("id", s.ConnID))
		}

	case PotentialConnect, Panning:
		e.setState(Idle{})
	}
}

func (e *Editor) finishDrawing(s Drawing) {
	e.setState(Idle{})
	// The drag itself must span a grid cell; snapping alone never creates one.
	dx, dy := math.Abs(s.Current.X-s.Origin.X), math.Abs(s.Current.Y-s.Origin.Y)
	grid := e.opts.GridSize
	if dx < grid || dy < grid {
		e.log.Debug("drawing discarded", zap.Float64("width", dx), zap.Float64("height", dy))
		return
	}

	end := e.view.SnapPoint(s.Current)
	b := pix.Bounds{
		X:      math.Min(s.Start.X, end.X),
		Y:      math.Min(s.Start.Y, end.Y),
		Width:  math.Abs(end.X - s.Start.X),
		Height: math.Abs(end.Y - s.Start.Y),
	}

	r := &pix.Rectangle{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Kind: pix.KindRegular}
	if err := e.doc.AddRectangle(r); err != nil {
		e.log.Warn("add rectangle", zap.Error(err))
		return
	}
	e.doc.SelectRectangle(r.ID)
	e.host.NamePending(r.ID)
	e.commit("create rectangle", zap.String("id", r.ID))
}

func (e *Editor) finishConnecting(s Connecting) {
	e.setState(Idle{})
	source, ok := e.doc.Rectangle(s.SourceID)
	if !ok {
		return
	}

	if s.TargetID != "" {
		c, err := e.doc.Connect(s.SourceID, s.TargetID)
		if err != nil {
			e.log.Warn("connect", zap.Error(err))
			return
		}
		e.doc.SelectConnection(c.ID)
		e.commit("create connection", zap.String("id", c.ID))
		return
	}

	// Dropping back onto the source is not a connection.
	if source.Contains(s.Current) {
		return
	}

	grid := e.opts.GridSize
	r := &pix.Rectangle{
		X:      pix.Snap(s.Current.X-source.Width/2, grid),
		Y:      pix.Snap(s.Current.Y-source.Height/2, grid),
		Width:  source.Width,
		Height: source.Height,
		Kind:   pix.KindRegular,
	}
	if err := e.doc.AddRectangle(r); err != nil {
		e.log.Warn("add rectangle", zap.Error(err))
		return
	}
	c, err := e.doc.Connect(source.ID, r.ID)
	if err != nil {
		e.log.Warn("connect", zap.Error(err))
		return
	}
	e.doc.SelectRectangle(r.ID)
	e.host.NamePending(r.ID)
	e.commit("create connected rectangle", zap.String("id", r.ID), zap.String("connection", c.ID))
}

// finishGeometry snaps a moved or resized rectangle to the grid and commits it.
func (e *Editor) finishGeometry(rectID, what string, snap func(pix.Bounds) pix.Bounds) {
	r, ok := e.doc.Rectangle(rectID)
	if !ok {
		return
	}
	if err := e.doc.SetBounds(rectID, snap(r.Bounds())); err != nil {
		return
	}
	e.commit(what, zap.String("id", rectID))
}

// ContextMenu handles the host's context-menu gesture. Before a connection
// drag has started it selects the entity under the pointer and asks the
// host to show the delete menu for it.
func (e *Editor) ContextMenu(screen pix.Point) {
	switch e.state.(type) {
	case Idle, PotentialConnect:
	default:
		return
	}
	e.setState(Idle{})

	world := e.view.ToWorld(screen.X, screen.Y)
	h := e.hitTest(world)
	switch {
	case h.label != nil:
		e.doc.SelectConnection(h.label.ID)
	case h.rect != nil:
		e.doc.SelectRectangle(h.rect.ID)
	case h.conn != nil:
		e.doc.SelectConnection(h.conn.ID)
	default:
		return
	}
	e.host.ShowContextMenu(e.doc.Selection(), screen)
}

// DoubleClick opens the property editor for the entity under the pointer.
// Double-clicking a payload indicator does nothing.
func (e *Editor) DoubleClick(screen pix.Point) {
	e.abandon()

	world := e.view.ToWorld(screen.X, screen.Y)
	h := e.hitTest(world)
	switch {
	case h.indicator != nil:
		return
	case h.label != nil:
		e.doc.SelectConnection(h.label.ID)
	case h.rect != nil:
		e.doc.SelectRectangle(h.rect.ID)
	case h.conn != nil:
		e.doc.SelectConnection(h.conn.ID)
	default:
		return
	}
	e.host.OpenPropertyEditor(e.doc.Selection())
}

// CursorAt returns the pointer shape for a screen position.
func (e *Editor) CursorAt(screen pix.Point) Cursor {
	switch s := e.state.(type) {
	case Panning:
		return CursorGrabbing
	case Dragging:
		return CursorMove
	case Resizing:
		return HandleCursor(s.Handle)
	case DraggingLabel:
		return CursorMove
	case Drawing, Connecting, PotentialConnect:
		return CursorCrosshair
	}

	world := e.view.ToWorld(screen.X, screen.Y)
	h := e.hitTest(world)
	switch {
	case h.indicator != nil:
		return CursorPointer
	case h.label != nil:
		return CursorMove
	case h.rect != nil && h.handle != pix.HandleNone && h.rect.Selected:
		return HandleCursor(h.handle)
	case h.rect != nil && h.rect.Selected:
		return CursorMove
	case h.rect != nil, h.conn != nil:
		return CursorPointer
	}
	return CursorCrosshair
}

// Preview returns the feedback a host should draw for the active gesture.
func (e *Editor) Preview() Preview {
	switch s := e.state.(type) {
	case Drawing:
		end := e.view.SnapPoint(s.Current)
		b := pix.Bounds{
			X:      math.Min(s.Start.X, end.X),
			Y:      math.Min(s.Start.Y, end.Y),
			Width:  math.Abs(end.X - s.Start.X),
			Height: math.Abs(end.Y - s.Start.Y),
		}
		return Preview{Draw: &b}

	case Connecting:
		source, ok := e.doc.Rectangle(s.SourceID)
		if !ok {
			return Preview{}
		}
		from := e.view.SnapPoint(source.RightMid())
		to := s.Current
		if t, ok := e.doc.Rectangle(s.TargetID); ok {
			to = e.view.SnapPoint(t.LeftMid())
		}
		curve := pix.CubicRoute(from, to)
		return Preview{Rubber: &curve, TargetID: s.TargetID}
	}
	return Preview{}
}
