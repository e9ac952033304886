package editor

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// EditBuffer holds pending property edits for one entity. Nothing reaches
// the document until Commit; dropping the buffer cancels the edit.
//
// For connections Name edits the label and Kind is ignored. For rectangles
// LineStyle is ignored.
type EditBuffer struct {
	Name        string
	Description string
	Payload     string
	Color       string
	Kind        pix.Kind
	LineStyle   pix.LineStyle

	editor *Editor
	sel    pix.Selection
}

// Selection returns the entity being edited.
func (b *EditBuffer) Selection() pix.Selection { return b.sel }

// IsConnection reports whether the buffer edits a connection.
func (b *EditBuffer) IsConnection() bool { return b.sel.ConnectionID != "" }

// BeginEdit opens an edit buffer on the selected entity.
func (e *Editor) BeginEdit() (*EditBuffer, bool) {
	sel := e.doc.Selection()
	b := &EditBuffer{editor: e, sel: sel}
	if r, ok := e.doc.Rectangle(sel.RectangleID); ok {
		b.Name = r.Name
		b.Description = r.Description
		b.Payload = r.Payload
		b.Color = r.Color
		b.Kind = r.Kind
		return b, true
	}
	if c, ok := e.doc.Connection(sel.ConnectionID); ok {
		b.Name = c.Label
		b.Description = c.Description
		b.Payload = c.Payload
		b.Color = c.Color
		b.LineStyle = c.LineStyle
		return b, true
	}
	return nil, false
}

// Commit writes the buffer back to its entity in one step. It fails if the
// entity was deleted or the document replaced since BeginEdit.
func (b *EditBuffer) Commit() error {
	e := b.editor
	if b.sel.RectangleID != "" {
		r, ok := e.doc.Rectangle(b.sel.RectangleID)
		if !ok {
			return errors.Wrapf(pix.ErrRectangleNotFound, "commit edit %q", b.sel.RectangleID)
		}
		r.Name = b.Name
		r.Description = b.Description
		r.Payload = b.Payload
		r.Color = b.Color
		r.Kind = pix.ParseKind(string(b.Kind))
		e.commit("edit rectangle", zap.String("id", r.ID))
		return nil
	}

	c, ok := e.doc.Connection(b.sel.ConnectionID)
	if !ok {
		return errors.Wrapf(pix.ErrConnectionNotFound, "commit edit %q", b.sel.ConnectionID)
	}
	c.Label = b.Name
	c.Description = b.Description
	c.Payload = b.Payload
	c.Color = b.Color
	c.LineStyle = pix.ParseLineStyle(string(b.LineStyle))
	e.commit("edit connection", zap.String("id", c.ID))
	return nil
}
