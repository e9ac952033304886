// Package pixfile reads, writes and exports pix documents.
package pixfile

import (
	"bytes"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// FormatVersion is written into every saved document.
const FormatVersion = "1.0"

// now is replaced in tests.
var now = time.Now

// jsonDocument is the persisted JSON representation of a document.
type jsonDocument struct {
	Version     string           `json:"version"`
	Created     string           `json:"created"`
	Rectangles  []jsonRectangle  `json:"rectangles"`
	Connections []jsonConnection `json:"connections"`
}

type jsonRectangle struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Payload     string  `json:"payload"`
	Color       string  `json:"color"`
	Type        string  `json:"type"`
}

type jsonConnection struct {
	ID            string     `json:"id"`
	FromRectID    string     `json:"fromRectId"`
	ToRectID      string     `json:"toRectId"`
	Label         string     `json:"label"`
	Description   string     `json:"description"`
	Payload       string     `json:"payload"`
	Color         string     `json:"color"`
	LineStyle     string     `json:"lineStyle"`
	LabelPosition *pix.Point `json:"labelPosition"`
}

// Report lists the repairs made while loading a document. None of them is
// an error: the loaded document is always consistent.
type Report struct {
	Version string
	Created string

	// DroppedConnections holds ids of connections whose endpoints did not resolve.
	DroppedConnections []string
	// ClampedRectangles holds ids of rectangles enlarged to the grid size.
	ClampedRectangles []string
	// GeneratedIDs holds ids assigned to entities saved without one.
	GeneratedIDs []string
	// DuplicateIDs holds ids that appeared more than once; the first wins.
	DuplicateIDs []string
}

// Repaired reports whether anything in the input had to be fixed.
func (r *Report) Repaired() bool {
	return len(r.DroppedConnections)+len(r.ClampedRectangles)+len(r.GeneratedIDs)+len(r.DuplicateIDs) > 0
}

// ParseJSON parses a document. Rectangles are rebuilt first; connections
// whose fromRectId or toRectId do not name a loaded rectangle are dropped.
// Missing optional fields take their defaults and whitespace-only input is
// an empty document.
func ParseJSON(data []byte, gridSize float64) (*pix.Document, *Report, error) {
	report := &Report{}
	doc := pix.New()
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, report, nil
	}

	var j jsonDocument
	if err := sonic.ConfigStd.Unmarshal(data, &j); err != nil {
		return nil, nil, errors.Wrap(err, "parse document")
	}
	report.Version = j.Version
	report.Created = j.Created
	doc.Created = j.Created

	for _, jr := range j.Rectangles {
		r := &pix.Rectangle{
			ID:          jr.ID,
			X:           jr.X,
			Y:           jr.Y,
			Width:       jr.Width,
			Height:      jr.Height,
			Name:        jr.Name,
			Description: jr.Description,
			Payload:     jr.Payload,
			Color:       jr.Color,
			Kind:        pix.ParseKind(jr.Type),
		}
		if r.ID == "" {
			r.ID = pix.NewID()
			report.GeneratedIDs = append(report.GeneratedIDs, r.ID)
		}
		if r.Width < gridSize || r.Height < gridSize {
			r.Width = max(r.Width, gridSize)
			r.Height = max(r.Height, gridSize)
			report.ClampedRectangles = append(report.ClampedRectangles, r.ID)
		}
		if err := doc.AddRectangle(r); err != nil {
			report.DuplicateIDs = append(report.DuplicateIDs, r.ID)
		}
	}

	for _, jc := range j.Connections {
		c := &pix.Connection{
			ID:          jc.ID,
			FromID:      jc.FromRectID,
			ToID:        jc.ToRectID,
			Label:       jc.Label,
			Description: jc.Description,
			Payload:     jc.Payload,
			Color:       jc.Color,
			LineStyle:   pix.ParseLineStyle(jc.LineStyle),
		}
		if jc.LabelPosition != nil {
			p := *jc.LabelPosition
			c.LabelPosition = &p
		}
		_, fromOK := doc.Rectangle(c.FromID)
		_, toOK := doc.Rectangle(c.ToID)
		if !fromOK || !toOK {
			report.DroppedConnections = append(report.DroppedConnections, c.ID)
			continue
		}
		if c.ID == "" {
			c.ID = pix.NewID()
			report.GeneratedIDs = append(report.GeneratedIDs, c.ID)
		}
		if err := doc.AddConnection(c); err != nil {
			report.DuplicateIDs = append(report.DuplicateIDs, c.ID)
		}
	}

	return doc, report, nil
}

// ToJSON converts a document to its persisted form. Every field is written,
// including empty strings and a null labelPosition.
func ToJSON(d *pix.Document, pretty bool) ([]byte, error) {
	j := jsonDocument{
		Version:     FormatVersion,
		Created:     d.Created,
		Rectangles:  make([]jsonRectangle, 0, len(d.Rectangles())),
		Connections: make([]jsonConnection, 0, len(d.Connections())),
	}
	if j.Created == "" {
		j.Created = now().UTC().Format(time.RFC3339Nano)
	}

	for _, r := range d.Rectangles() {
		j.Rectangles = append(j.Rectangles, jsonRectangle{
			ID:          r.ID,
			X:           r.X,
			Y:           r.Y,
			Width:       r.Width,
			Height:      r.Height,
			Name:        r.Name,
			Description: r.Description,
			Payload:     r.Payload,
			Color:       r.Color,
			Type:        string(pix.ParseKind(string(r.Kind))),
		})
	}

	for _, c := range d.Connections() {
		jc := jsonConnection{
			ID:          c.ID,
			FromRectID:  c.FromID,
			ToRectID:    c.ToID,
			Label:       c.Label,
			Description: c.Description,
			Payload:     c.Payload,
			Color:       c.Color,
			LineStyle:   string(pix.ParseLineStyle(string(c.LineStyle))),
		}
		if c.LabelPosition != nil {
			p := *c.LabelPosition
			jc.LabelPosition = &p
		}
		j.Connections = append(j.Connections, jc)
	}

	var (
		out []byte
		err error
	)
	if pretty {
		out, err = sonic.ConfigStd.MarshalIndent(j, "", "  ")
	} else {
		out, err = sonic.ConfigStd.Marshal(j)
	}
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	return out, nil
}
