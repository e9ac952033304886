// Package pix provides core diagram types and operations.
package pix

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// Kind distinguishes regular rectangles from collection containers.
type Kind string

const (
	KindRegular    Kind = "regular"
	KindCollection Kind = "collection"
)

// LineStyle is the stroke used to draw a connection.
type LineStyle string

const (
	LineSolid       LineStyle = "solid"
	LineThickDotted LineStyle = "thick-dotted"
	LineDashed      LineStyle = "dashed"
)

// ParseKind maps a persisted type string to a Kind, defaulting to regular.
func ParseKind(s string) Kind {
	if Kind(s) == KindCollection {
		return KindCollection
	}
	return KindRegular
}

// ParseLineStyle maps a persisted style string to a LineStyle, defaulting to solid.
func ParseLineStyle(s string) LineStyle {
	switch LineStyle(s) {
	case LineThickDotted, LineDashed:
		return LineStyle(s)
	}
	return LineSolid
}

var (
	ErrRectangleNotFound  = errors.New("rectangle not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrDuplicateID        = errors.New("duplicate id")
)

// Rectangle is a diagram node. Coordinates are world space, X/Y is the top-left corner.
type Rectangle struct {
	ID          string
	X, Y        float64
	Width       float64
	Height      float64
	Name        string
	Description string
	Payload     string // may contain $$name$$ tokens
	Color       string
	Kind        Kind

	Selected bool // transient, never persisted
}

// Connection is a diagram edge between two rectangles, referenced by id.
type Connection struct {
	ID          string
	FromID      string
	ToID        string
	Label       string
	Description string
	Payload     string
	Color       string
	LineStyle   LineStyle

	// LabelPosition overrides the auto-computed label anchor and bends the
	// route through it. nil means default routing.
	LabelPosition *Point

	Selected bool
}

// Document is the set of rectangles and connections being edited.
// Entities refer to each other by id, resolved through the document index.
type Document struct {
	// Created is the RFC 3339 creation time written when the document is
	// saved. It is empty until the first save.
	Created string

	rects []*Rectangle
	conns []*Connection
	index map[string]*Rectangle
}

// New creates an empty document.
func New() *Document {
	return &Document{
		rects: make([]*Rectangle, 0),
		conns: make([]*Connection, 0),
		index: make(map[string]*Rectangle),
	}
}

// NewID returns a fresh opaque entity id.
func NewID() string {
	return uuid.NewString()
}

// Rectangles returns the rectangles in drawing order (last is topmost).
func (d *Document) Rectangles() []*Rectangle {
	return d.rects
}

// Connections returns the connections in drawing order.
func (d *Document) Connections() []*Connection {
	return d.conns
}

// AddRectangle adds r to the document, assigning an id if it has none.
func (d *Document) AddRectangle(r *Rectangle) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	if _, ok := d.index[r.ID]; ok {
		return errors.Wrapf(ErrDuplicateID, "rectangle %s", r.ID)
	}
	if r.Kind == "" {
		r.Kind = KindRegular
	}
	d.rects = append(d.rects, r)
	d.index[r.ID] = r
	return nil
}

// AddConnection adds c to the document. Both endpoints must already exist.
func (d *Document) AddConnection(c *Connection) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	if _, ok := d.Connection(c.ID); ok {
		return errors.Wrapf(ErrDuplicateID, "connection %s", c.ID)
	}
	if _, ok := d.index[c.FromID]; !ok {
		return errors.Wrapf(ErrRectangleNotFound, "connection %s: from %q", c.ID, c.FromID)
	}
	if _, ok := d.index[c.ToID]; !ok {
		return errors.Wrapf(ErrRectangleNotFound, "connection %s: to %q", c.ID, c.ToID)
	}
	if c.LineStyle == "" {
		c.LineStyle = LineSolid
	}
	d.conns = append(d.conns, c)
	return nil
}

// Connect creates a solid connection between two existing rectangles.
func (d *Document) Connect(fromID, toID string) (*Connection, error) {
	c := &Connection{FromID: fromID, ToID: toID, LineStyle: LineSolid}
	if err := d.AddConnection(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Rectangle looks up a rectangle by id.
func (d *Document) Rectangle(id string) (*Rectangle, bool) {
	r, ok := d.index[id]
	return r, ok
}

// Connection looks up a connection by id.
func (d *Document) Connection(id string) (*Connection, bool) {
	for _, c := range d.conns {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// RectangleByName returns the first rectangle with the given name.
func (d *Document) RectangleByName(name string) (*Rectangle, bool) {
	for _, r := range d.rects {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// ConnectionByLabel returns the first connection with the given label.
func (d *Document) ConnectionByLabel(label string) (*Connection, bool) {
	for _, c := range d.conns {
		if c.Label == label {
			return c, true
		}
	}
	return nil, false
}

// Incident returns every connection that starts or ends at rectID.
func (d *Document) Incident(rectID string) []*Connection {
	var result []*Connection
	for _, c := range d.conns {
		if c.FromID == rectID || c.ToID == rectID {
			result = append(result, c)
		}
	}
	return result
}

// DeleteRectangle removes a rectangle and every connection referencing it.
// The removed connections are returned.
func (d *Document) DeleteRectangle(id string) ([]*Connection, error) {
	if _, ok := d.index[id]; !ok {
		return nil, errors.Wrapf(ErrRectangleNotFound, "delete %q", id)
	}
	var removed []*Connection
	kept := d.conns[:0]
	for _, c := range d.conns {
		if c.FromID == id || c.ToID == id {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	d.conns = kept

	for i, r := range d.rects {
		if r.ID == id {
			d.rects = append(d.rects[:i], d.rects[i+1:]...)
			break
		}
	}
	delete(d.index, id)
	return removed, nil
}

// DeleteConnection removes a single connection.
func (d *Document) DeleteConnection(id string) error {
	for i, c := range d.conns {
		if c.ID == id {
			d.conns = append(d.conns[:i], d.conns[i+1:]...)
			return nil
		}
	}
	return errors.Wrapf(ErrConnectionNotFound, "delete %q", id)
}

// Clear removes every entity.
func (d *Document) Clear() {
	d.rects = d.rects[:0]
	d.conns = d.conns[:0]
	d.index = make(map[string]*Rectangle)
}

// ClearLabelPositions resets the label override of every connection incident
// to rectID, reverting them to default routing.
func (d *Document) ClearLabelPositions(rectID string) {
	for _, c := range d.conns {
		if c.FromID == rectID || c.ToID == rectID {
			c.LabelPosition = nil
		}
	}
}

// MoveRectangle places a rectangle's top-left corner at (x, y).
func (d *Document) MoveRectangle(id string, x, y float64) error {
	r, ok := d.index[id]
	if !ok {
		return errors.Wrapf(ErrRectangleNotFound, "move %q", id)
	}
	r.X, r.Y = x, y
	d.ClearLabelPositions(id)
	return nil
}

// SetBounds replaces a rectangle's geometry.
func (d *Document) SetBounds(id string, b Bounds) error {
	r, ok := d.index[id]
	if !ok {
		return errors.Wrapf(ErrRectangleNotFound, "resize %q", id)
	}
	r.X, r.Y, r.Width, r.Height = b.X, b.Y, b.Width, b.Height
	d.ClearLabelPositions(id)
	return nil
}

// Stamp records t as the creation time unless one is already set.
func (d *Document) Stamp(t time.Time) {
	if d.Created == "" {
		d.Created = t.UTC().Format(time.RFC3339Nano)
	}
}

// Selection identifies the selected entity, if any. At most one of the
// fields is non-empty.
type Selection struct {
	RectangleID  string
	ConnectionID string
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.RectangleID == "" && s.ConnectionID == ""
}

// ClearSelection deselects every entity.
func (d *Document) ClearSelection() {
	for _, r := range d.rects {
		r.Selected = false
	}
	for _, c := range d.conns {
		c.Selected = false
	}
}

// SelectRectangle makes id the only selected entity.
func (d *Document) SelectRectangle(id string) bool {
	d.ClearSelection()
	r, ok := d.index[id]
	if ok {
		r.Selected = true
	}
	return ok
}

// SelectConnection makes id the only selected entity.
func (d *Document) SelectConnection(id string) bool {
	d.ClearSelection()
	c, ok := d.Connection(id)
	if ok {
		c.Selected = true
	}
	return ok
}

// Selection returns the currently selected entity.
func (d *Document) Selection() Selection {
	for _, r := range d.rects {
		if r.Selected {
			return Selection{RectangleID: r.ID}
		}
	}
	for _, c := range d.conns {
		if c.Selected {
			return Selection{ConnectionID: c.ID}
		}
	}
	return Selection{}
}

// Clone returns a deep copy of the document, including transient selection.
func (d *Document) Clone() *Document {
	out := New()
	out.Created = d.Created
	for _, r := range d.rects {
		var nr Rectangle
		if err := copier.CopyWithOption(&nr, r, copier.Option{DeepCopy: true}); err != nil {
			nr = *r
		}
		out.rects = append(out.rects, &nr)
		out.index[nr.ID] = &nr
	}
	for _, c := range d.conns {
		var nc Connection
		if err := copier.CopyWithOption(&nc, c, copier.Option{DeepCopy: true}); err != nil {
			nc = *c
			if c.LabelPosition != nil {
				p := *c.LabelPosition
				nc.LabelPosition = &p
			}
		}
		out.conns = append(out.conns, &nc)
	}
	return out
}

// Validate checks that the document is well-formed for the given grid size.
func (d *Document) Validate(gridSize float64) error {
	seen := make(map[string]bool)
	for i, r := range d.rects {
		if r.ID == "" {
			return errors.Errorf("rectangle %d has no id", i)
		}
		if seen[r.ID] {
			return errors.Wrapf(ErrDuplicateID, "rectangle %s", r.ID)
		}
		seen[r.ID] = true
		if r.Width < gridSize || r.Height < gridSize {
			return errors.Errorf("rectangle %s: size %gx%g below grid size %g", r.ID, r.Width, r.Height, gridSize)
		}
	}
	for i, c := range d.conns {
		if c.ID == "" {
			return errors.Errorf("connection %d has no id", i)
		}
		if seen[c.ID] {
			return errors.Wrapf(ErrDuplicateID, "connection %s", c.ID)
		}
		seen[c.ID] = true
		if _, ok := d.index[c.FromID]; !ok {
			return errors.Wrapf(ErrRectangleNotFound, "connection %s: from %q", c.ID, c.FromID)
		}
		if _, ok := d.index[c.ToID]; !ok {
			return errors.Wrapf(ErrRectangleNotFound, "connection %s: to %q", c.ID, c.ToID)
		}
	}
	return nil
}
