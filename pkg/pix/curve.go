// Connection routing.
// Connections leave the source's right edge and enter the target's left
// edge along a flat cubic "S", or bend through a user-placed label point.

package pix

import "math"

// MaxCurveOffset caps the horizontal control-point offset of the default route.
const MaxCurveOffset = 80.0

// Curve is a bezier segment. Quadratic curves use Ctrl1 only.
type Curve struct {
	Start, Ctrl1, Ctrl2, End Point
	Quadratic                bool
}

// CubicRoute returns the default route between two edge points: horizontal
// tangents with control points offset by min(|dx|*0.5, MaxCurveOffset).
func CubicRoute(from, to Point) Curve {
	offset := math.Min(math.Abs(to.X-from.X)*0.5, MaxCurveOffset)
	return Curve{
		Start: from,
		Ctrl1: Point{from.X + offset, from.Y},
		Ctrl2: Point{to.X - offset, to.Y},
		End:   to,
	}
}

// QuadraticThrough returns the quadratic bezier from start to end that passes
// through via at t = 0.5.
func QuadraticThrough(from, via, to Point) Curve {
	ctrl := Point{
		X: 2*via.X - (from.X+to.X)/2,
		Y: 2*via.Y - (from.Y+to.Y)/2,
	}
	return Curve{Start: from, Ctrl1: ctrl, End: to, Quadratic: true}
}

// At evaluates the curve at parameter t in [0,1].
func (c Curve) At(t float64) Point {
	mt := 1 - t
	if c.Quadratic {
		a, b, d := mt*mt, 2*mt*t, t*t
		return Point{
			X: a*c.Start.X + b*c.Ctrl1.X + d*c.End.X,
			Y: a*c.Start.Y + b*c.Ctrl1.Y + d*c.End.Y,
		}
	}
	a := mt * mt * mt
	b := 3 * mt * mt * t
	d := 3 * mt * t * t
	e := t * t * t
	return Point{
		X: a*c.Start.X + b*c.Ctrl1.X + d*c.Ctrl2.X + e*c.End.X,
		Y: a*c.Start.Y + b*c.Ctrl1.Y + d*c.Ctrl2.Y + e*c.End.Y,
	}
}

// Midpoint returns the point at t = 0.5.
func (c Curve) Midpoint() Point {
	return c.At(0.5)
}

// Sample returns n points at evenly spaced parameters from 0 to 1 inclusive.
func (c Curve) Sample(n int) []Point {
	if n < 2 {
		return []Point{c.Start}
	}
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = c.At(float64(i) / float64(n-1))
	}
	return pts
}

// Length approximates the arc length from the sampled polyline.
func (c Curve) Length() float64 {
	pts := c.Sample(SampleCount)
	var l float64
	for i := 1; i < len(pts); i++ {
		l += pts[i-1].Dist(pts[i])
	}
	return l
}

// ConnectionPoints returns the grid-snapped edge points of a connection
// between from and to: the right-edge midpoint of from and the left-edge
// midpoint of to.
func ConnectionPoints(from, to *Rectangle, gridSize float64) (Point, Point) {
	a, b := from.RightMid(), to.LeftMid()
	return Point{Snap(a.X, gridSize), Snap(a.Y, gridSize)},
		Point{Snap(b.X, gridSize), Snap(b.Y, gridSize)}
}

// Endpoints resolves a connection's edge points through the document index.
func (d *Document) Endpoints(c *Connection, gridSize float64) (Point, Point, bool) {
	from, ok := d.index[c.FromID]
	if !ok {
		return Point{}, Point{}, false
	}
	to, ok := d.index[c.ToID]
	if !ok {
		return Point{}, Point{}, false
	}
	a, b := ConnectionPoints(from, to, gridSize)
	return a, b, true
}

// Route returns the curve a connection is drawn and hit-tested along.
// It is false when either endpoint does not resolve.
func (d *Document) Route(c *Connection, gridSize float64) (Curve, bool) {
	from, to, ok := d.Endpoints(c, gridSize)
	if !ok {
		return Curve{}, false
	}
	if c.LabelPosition != nil {
		return QuadraticThrough(from, *c.LabelPosition, to), true
	}
	return CubicRoute(from, to), true
}
