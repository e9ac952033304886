package main

import (
	"math"
	"time"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// cellMap converts between terminal cells and the editor's screen pixels.
type cellMap struct {
	W, H float64 // pixels per cell
}

// toPixel returns the pixel at the centre of cell (cx, cy).
func (m cellMap) toPixel(cx, cy int) pix.Point {
	return pix.Point{
		X: (float64(cx) + 0.5) * m.W,
		Y: (float64(cy) + 0.5) * m.H,
	}
}

// toCell returns the cell containing pixel p.
func (m cellMap) toCell(p pix.Point) (int, int) {
	return int(math.Floor(p.X / m.W)), int(math.Floor(p.Y / m.H))
}

// worldCell projects a world point through the view onto a cell.
func (m cellMap) worldCell(v *pix.View, p pix.Point) (int, int) {
	return m.toCell(v.ToScreen(p.X, p.Y))
}

// clickTracker detects double-clicks: two primary releases on the same
// cell within the window.
type clickTracker struct {
	window time.Duration
	last   time.Time
	x, y   int
}

// click records a release and reports whether it completes a double-click.
// A completed double-click is consumed so a third click starts over.
func (c *clickTracker) click(now time.Time, x, y int) bool {
	if !c.last.IsZero() && now.Sub(c.last) <= c.window && x == c.x && y == c.y {
		c.last = time.Time{}
		return true
	}
	c.last, c.x, c.y = now, x, y
	return false
}
