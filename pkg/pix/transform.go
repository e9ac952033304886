package pix

import "math"

const (
	MinZoom         = 0.1
	MaxZoom         = 5.0
	DefaultGridSize = 10.0
)

// View maps between world space and screen space. It is never persisted.
type View struct {
	PanX, PanY float64
	Zoom       float64
	GridSize   float64
}

// NewView returns an identity view with the given grid size.
// A non-positive grid size falls back to DefaultGridSize.
func NewView(gridSize float64) *View {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	return &View{Zoom: 1, GridSize: gridSize}
}

// ToWorld converts a screen point to world coordinates.
func (v *View) ToWorld(sx, sy float64) Point {
	return Point{(sx - v.PanX) / v.Zoom, (sy - v.PanY) / v.Zoom}
}

// ToScreen converts a world point to screen coordinates.
func (v *View) ToScreen(wx, wy float64) Point {
	return Point{wx*v.Zoom + v.PanX, wy*v.Zoom + v.PanY}
}

// Snap rounds value to the nearest multiple of the grid size.
func (v *View) Snap(value float64) float64 {
	return Snap(value, v.GridSize)
}

// SnapPoint snaps both coordinates of p.
func (v *View) SnapPoint(p Point) Point {
	return Point{v.Snap(p.X), v.Snap(p.Y)}
}

// ZoomAt scales the view by factor around a screen point, keeping the world
// point under it fixed. The resulting zoom is clamped to [MinZoom, MaxZoom].
func (v *View) ZoomAt(screen Point, factor float64) {
	world := v.ToWorld(screen.X, screen.Y)
	v.Zoom = ClampZoom(v.Zoom * factor)
	v.PanX = screen.X - world.X*v.Zoom
	v.PanY = screen.Y - world.Y*v.Zoom
}

// PanBy shifts the view by a screen-space delta.
func (v *View) PanBy(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// Reset restores zero pan and unit zoom.
func (v *View) Reset() {
	v.PanX, v.PanY = 0, 0
	v.Zoom = 1
}

// Tolerance converts a screen-pixel distance to world units at the current zoom.
func (v *View) Tolerance(px float64) float64 {
	return px / v.Zoom
}

// Snap rounds value to the nearest multiple of grid. A non-positive grid
// disables snapping.
func Snap(value, grid float64) float64 {
	if grid <= 0 {
		return value
	}
	return math.Round(value/grid) * grid
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
