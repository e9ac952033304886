package editor

import "github.com/ha1tch/pix-toolkit/pkg/pix"

// Button identifies the pointer button of an event.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	case ButtonMiddle:
		return "middle"
	}
	return "unknown"
}

// PointerEvent is a pointer press, move or release in screen coordinates.
type PointerEvent struct {
	Button Button
	Screen pix.Point
}

// Cursor is the pointer shape a host should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorCrosshair
	CursorMove
	CursorPointer
	CursorGrabbing
	CursorResizeNWSE // top-left, bottom-right
	CursorResizeNESW // top-right, bottom-left
	CursorResizeNS
	CursorResizeEW
)

// HandleCursor returns the resize cursor for a handle.
func HandleCursor(h pix.Handle) Cursor {
	switch h {
	case pix.HandleTopLeft, pix.HandleBottomRight:
		return CursorResizeNWSE
	case pix.HandleTopRight, pix.HandleBottomLeft:
		return CursorResizeNESW
	case pix.HandleTop, pix.HandleBottom:
		return CursorResizeNS
	case pix.HandleLeft, pix.HandleRight:
		return CursorResizeEW
	}
	return CursorDefault
}

// Preview is the transient feedback of the active gesture, in world space.
type Preview struct {
	// Draw is the box being drawn.
	Draw *pix.Bounds
	// Rubber is the dashed route of a connection being dragged. When the
	// pointer is over a target rectangle it ends on that rectangle's
	// left-edge midpoint.
	Rubber   *pix.Curve
	TargetID string
}
