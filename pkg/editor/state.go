package editor

import "github.com/ha1tch/pix-toolkit/pkg/pix"

// State is the active interaction mode. Exactly one value is active at a
// time; each concrete type carries only the data its gesture needs.
type State interface {
	Name() string
	isState()
}

// Idle waits for the next gesture.
type Idle struct{}

// Drawing is a primary drag on empty space that will create a rectangle.
type Drawing struct {
	Origin  pix.Point // world press position
	Start   pix.Point // snapped world corner
	Current pix.Point // world pointer position
}

// PotentialConnect is a secondary press on a rectangle that has not yet
// moved far enough to become a connection drag.
type PotentialConnect struct {
	SourceID    string
	StartScreen pix.Point
}

// Connecting drags a rubber-band connection out of SourceID.
type Connecting struct {
	SourceID string
	Current  pix.Point // world pointer position
	TargetID string    // rectangle under the pointer, if any
}

// Dragging moves a rectangle with the pointer.
type Dragging struct {
	RectID string
	Offset pix.Point // pointer minus rectangle origin
	Moved  bool
	undo   snapshot
}

// Resizing drags one of a rectangle's handles.
type Resizing struct {
	RectID string
	Handle pix.Handle
	Origin pix.Point  // world point where the gesture started
	Start  pix.Bounds // rectangle geometry when the gesture started
	Moved  bool
	undo   snapshot
}

// Panning drags the view.
type Panning struct {
	Last pix.Point // previous screen position
}

// DraggingLabel moves a connection's label, bending its route.
type DraggingLabel struct {
	ConnID string
	Moved  bool
	undo   snapshot
}

func (Idle) Name() string { return "idle" }
func (Drawing) Name() string { return "drawing" }
func (PotentialConnect) Name() string { return "potential-connect" }
func (Connecting) Name() string { return "connecting" }
func (Dragging) Name() string { return "dragging" }
func (Resizing) Name() string { return "resizing" }
func (Panning) Name() string { return "panning" }
func (DraggingLabel) Name() string { return "dragging-label" }

func (Idle) isState() {}
func (Drawing) isState() {}
func (PotentialConnect) isState() {}
func (Connecting) isState() {}
func (Dragging) isState() {}
func (Resizing) isState() {}
func (Panning) isState() {}
func (DraggingLabel) isState() {}

// snapshot holds what a gesture may have changed so that abandoning it
// restores the document exactly.
type snapshot struct {
	rectID string
	bounds pix.Bounds
	labels map[string]*pix.Point // connection id -> label position
}

func takeSnapshot(d *pix.Document, rectID string, conns []*pix.Connection) snapshot {
	s := snapshot{rectID: rectID, labels: make(map[string]*pix.Point, len(conns))}
	if r, ok := d.Rectangle(rectID); ok {
		s.bounds = r.Bounds()
	}
	for _, c := range conns {
		if c.LabelPosition != nil {
			p := *c.LabelPosition
			s.labels[c.ID] = &p
		} else {
			s.labels[c.ID] = nil
		}
	}
	return s
}

func (s snapshot) restore(d *pix.Document) {
	if r, ok := d.Rectangle(s.rectID); ok {
		b := s.bounds
		r.X, r.Y, r.Width, r.Height = b.X, b.Y, b.Width, b.Height
	}
	for id, p := range s.labels {
		if c, ok := d.Connection(id); ok {
			c.LabelPosition = p
		}
	}
}
