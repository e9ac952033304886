// Geometric utilities for diagram editing.
// Provides containment, resize-handle, curve-proximity and label hit tests.

package pix

import "math"

// Point represents a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Bounds is an axis-aligned box given by its top-left corner and size.
type Bounds struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// Center returns the middle of b.
func (b Bounds) Center() Point {
	return Point{b.X + b.Width/2, b.Y + b.Height/2}
}

// Rect converts b to a center-based Rect.
func (b Bounds) Rect() Rect {
	c := b.Center()
	return Rect{c.X, c.Y, b.Width, b.Height}
}

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X, Y float64 // Center
	W, H float64 // Full width and height
}

// RectOverlap returns the overlap area between two rectangles.
// Returns 0 if they don't overlap.
func RectOverlap(a, b Rect) float64 {
	overlapX := (a.W/2 + b.W/2) - math.Abs(a.X-b.X)
	overlapY := (a.H/2 + b.H/2) - math.Abs(a.Y-b.Y)
	if overlapX <= 0 || overlapY <= 0 {
		return 0
	}
	return overlapX * overlapY
}

// Collection name tab dimensions.
const (
	TabHeight    = 20.0
	TabMinWidth  = 40.0
	TabCharWidth = 8.0
)

// Bounds returns the rectangle's main box.
func (r *Rectangle) Bounds() Bounds {
	return Bounds{r.X, r.Y, r.Width, r.Height}
}

// NameTab returns the name tab box of a collection rectangle. The tab sits
// on top of the main box, flush with its top-left corner.
func (r *Rectangle) NameTab() (Bounds, bool) {
	if r.Kind != KindCollection {
		return Bounds{}, false
	}
	w := math.Max(TabCharWidth*float64(len(r.Name)), TabMinWidth)
	return Bounds{r.X, r.Y - TabHeight, w, TabHeight}, true
}

// Contains reports whether the world point p hits the rectangle. For
// collections the name tab counts as part of the rectangle.
func (r *Rectangle) Contains(p Point) bool {
	if r.Bounds().Contains(p) {
		return true
	}
	if tab, ok := r.NameTab(); ok {
		return tab.Contains(p)
	}
	return false
}

// LeftMid and RightMid are the edge midpoints used as connection anchors.
func (r *Rectangle) LeftMid() Point  { return Point{r.X, r.Y + r.Height/2} }
func (r *Rectangle) RightMid() Point { return Point{r.X + r.Width, r.Y + r.Height/2} }

// Handle names one of the eight resize handles.
type Handle string

const (
	HandleNone        Handle = ""
	HandleTopLeft     Handle = "top-left"
	HandleTopRight    Handle = "top-right"
	HandleBottomLeft  Handle = "bottom-left"
	HandleBottomRight Handle = "bottom-right"
	HandleTop         Handle = "top"
	HandleBottom      Handle = "bottom"
	HandleLeft        Handle = "left"
	HandleRight       Handle = "right"
)

// HandleSize is the on-screen edge length of a resize handle in pixels.
const HandleSize = 8.0

// Handles lists the handles in hit-test order.
var Handles = []Handle{
	HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight,
	HandleTop, HandleBottom, HandleLeft, HandleRight,
}

// HandleAnchor returns the world position a handle is centred on.
func (r *Rectangle) HandleAnchor(h Handle) Point {
	left, top := r.X, r.Y
	right, bottom := r.X+r.Width, r.Y+r.Height
	midX, midY := r.X+r.Width/2, r.Y+r.Height/2
	switch h {
	case HandleTopLeft:
		return Point{left, top}
	case HandleTopRight:
		return Point{right, top}
	case HandleBottomLeft:
		return Point{left, bottom}
	case HandleBottomRight:
		return Point{right, bottom}
	case HandleTop:
		return Point{midX, top}
	case HandleBottom:
		return Point{midX, bottom}
	case HandleLeft:
		return Point{left, midY}
	case HandleRight:
		return Point{right, midY}
	}
	return Point{midX, midY}
}

// HandleAt returns the first handle whose box contains p. Handle boxes are
// HandleSize pixels on screen, so HandleSize/zoom in world units.
func (r *Rectangle) HandleAt(p Point, zoom float64) Handle {
	if zoom <= 0 {
		zoom = 1
	}
	half := HandleSize / zoom / 2
	for _, h := range Handles {
		a := r.HandleAnchor(h)
		if math.Abs(p.X-a.X) <= half && math.Abs(p.Y-a.Y) <= half {
			return h
		}
	}
	return HandleNone
}

// PayloadIndicatorSize is the edge length of the payload marker in world units.
const PayloadIndicatorSize = 12.0

// PayloadIndicator returns the marker box drawn inside the top-right corner
// of rectangles that carry a payload.
func (r *Rectangle) PayloadIndicator() (Bounds, bool) {
	if r.Payload == "" {
		return Bounds{}, false
	}
	s := math.Min(PayloadIndicatorSize, math.Min(r.Width, r.Height)/2)
	return Bounds{r.X + r.Width - s - 2, r.Y + 2, s, s}, true
}

// LabelMetrics sizes connection labels for hit-testing and rendering.
type LabelMetrics struct {
	FontSize float64
	Padding  float64
	// TextWidth measures a label. nil uses an average glyph width of 0.6em.
	TextWidth func(text string, fontSize float64) float64
}

// DefaultLabelMetrics returns the metrics used by the editor and exporters.
func DefaultLabelMetrics() LabelMetrics {
	return LabelMetrics{FontSize: 12, Padding: 8}
}

func (m LabelMetrics) width(text string) float64 {
	if m.TextWidth != nil {
		return m.TextWidth(text, m.FontSize)
	}
	return float64(len([]rune(text))) * m.FontSize * 0.6
}

// LabelBox returns the label box centred on anchor.
func (m LabelMetrics) LabelBox(text string, anchor Point) Bounds {
	w := m.width(text) + m.Padding
	h := m.FontSize + m.Padding
	return Bounds{anchor.X - w/2, anchor.Y - h/2, w, h}
}

// SampleCount is the number of points tested along a connection route
// (t = 0, 0.05, ..., 1).
const SampleCount = 21

// ConnectionNear reports whether p is within tolerance of any of the
// SampleCount points sampled along the connection's route.
func (d *Document) ConnectionNear(c *Connection, p Point, tolerance, gridSize float64) bool {
	curve, ok := d.Route(c, gridSize)
	if !ok {
		return false
	}
	for _, pt := range curve.Sample(SampleCount) {
		if pt.Dist(p) <= tolerance {
			return true
		}
	}
	return false
}

// LabelAnchor returns where a connection's label is centred: the explicit
// label position, or the route midpoint.
func (d *Document) LabelAnchor(c *Connection, gridSize float64) (Point, bool) {
	if c.LabelPosition != nil {
		return *c.LabelPosition, true
	}
	curve, ok := d.Route(c, gridSize)
	if !ok {
		return Point{}, false
	}
	return curve.At(0.5), true
}

// LabelHit reports whether p lies inside the connection's label box.
// Connections without a label have no box.
func (d *Document) LabelHit(c *Connection, p Point, m LabelMetrics, gridSize float64) bool {
	if c.Label == "" {
		return false
	}
	anchor, ok := d.LabelAnchor(c, gridSize)
	if !ok {
		return false
	}
	return m.LabelBox(c.Label, anchor).Contains(p)
}

// RectangleAt returns the topmost rectangle containing p, skipping exclude.
func (d *Document) RectangleAt(p Point, exclude string) (*Rectangle, bool) {
	for i := len(d.rects) - 1; i >= 0; i-- {
		r := d.rects[i]
		if r.ID != exclude && r.Contains(p) {
			return r, true
		}
	}
	return nil, false
}

// ConnectionAt returns the first connection whose route passes within tolerance of p.
func (d *Document) ConnectionAt(p Point, tolerance, gridSize float64) (*Connection, bool) {
	for _, c := range d.conns {
		if d.ConnectionNear(c, p, tolerance, gridSize) {
			return c, true
		}
	}
	return nil, false
}

// LabelAt returns the topmost connection whose label box contains p.
func (d *Document) LabelAt(p Point, m LabelMetrics, gridSize float64) (*Connection, bool) {
	for i := len(d.conns) - 1; i >= 0; i-- {
		if d.LabelHit(d.conns[i], p, m, gridSize) {
			return d.conns[i], true
		}
	}
	return nil, false
}

// PayloadIndicatorAt reports whether p hits the rectangle's payload indicator.
func (r *Rectangle) PayloadIndicatorAt(p Point) bool {
	b, ok := r.PayloadIndicator()
	return ok && b.Contains(p)
}

// ApplyResize moves the edges that handle h controls by (dx, dy). Each
// dimension is soft-clamped to min: when a delta would shrink it further the
// opposite edge stays put and the dimension is set to min.
func ApplyResize(b Bounds, h Handle, dx, dy, min float64) Bounds {
	right, bottom := b.X+b.Width, b.Y+b.Height

	switch h {
	case HandleTopLeft, HandleBottomLeft, HandleLeft:
		b.X += dx
		b.Width -= dx
		if b.Width < min {
			b.Width = min
			b.X = right - min
		}
	case HandleTopRight, HandleBottomRight, HandleRight:
		b.Width += dx
		if b.Width < min {
			b.Width = min
		}
	}

	switch h {
	case HandleTopLeft, HandleTopRight, HandleTop:
		b.Y += dy
		b.Height -= dy
		if b.Height < min {
			b.Height = min
			b.Y = bottom - min
		}
	case HandleBottomLeft, HandleBottomRight, HandleBottom:
		b.Height += dy
		if b.Height < min {
			b.Height = min
		}
	}
	return b
}

// SnapBounds snaps the edges of b to the grid. A dimension that collapses
// below one grid cell grows to one cell from its left or top edge.
func SnapBounds(b Bounds, grid float64) Bounds {
	return snapEdges(b, grid, false, false)
}

// SnapResize snaps the edges of a rectangle resized from handle h. A
// dimension below one grid cell is restored by moving the edge h controls,
// so the opposite edge stays where it is.
func SnapResize(b Bounds, h Handle, grid float64) Bounds {
	var pinRight, pinBottom bool
	switch h {
	case HandleTopLeft, HandleBottomLeft, HandleLeft:
		pinRight = true
	}
	switch h {
	case HandleTopLeft, HandleTopRight, HandleTop:
		pinBottom = true
	}
	return snapEdges(b, grid, pinRight, pinBottom)
}

// SnapPosition snaps the top-left corner of b and keeps its size.
func SnapPosition(b Bounds, grid float64) Bounds {
	b.X = Snap(b.X, grid)
	b.Y = Snap(b.Y, grid)
	return b
}

func snapEdges(b Bounds, grid float64, pinRight, pinBottom bool) Bounds {
	left, right := Snap(b.X, grid), Snap(b.X+b.Width, grid)
	top, bottom := Snap(b.Y, grid), Snap(b.Y+b.Height, grid)
	if right-left < grid {
		if pinRight {
			left = right - grid
		} else {
			right = left + grid
		}
	}
	if bottom-top < grid {
		if pinBottom {
			top = bottom - grid
		} else {
			bottom = top + grid
		}
	}
	return Bounds{X: left, Y: top, Width: right - left, Height: bottom - top}
}
