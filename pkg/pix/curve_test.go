package pix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionPointsScenario(t *testing.T) {
	a := &Rectangle{X: 0, Y: 0, Width: 100, Height: 60}
	b := &Rectangle{X: 300, Y: 0, Width: 100, Height: 60}

	from, to := ConnectionPoints(a, b, 10)
	assert.Equal(t, Point{100, 30}, from)
	assert.Equal(t, Point{300, 30}, to)
}

func TestConnectionPointsSnapToGrid(t *testing.T) {
	a := &Rectangle{X: 3, Y: 0, Width: 100, Height: 50}
	b := &Rectangle{X: 297, Y: 10, Width: 100, Height: 50}

	from, to := ConnectionPoints(a, b, 10)
	assert.Equal(t, Point{100, 30}, from)
	assert.Equal(t, Point{300, 40}, to)
}

func TestCubicRouteControlOffset(t *testing.T) {
	c := CubicRoute(Point{0, 0}, Point{100, 50})
	assert.Equal(t, Point{50, 0}, c.Ctrl1)
	assert.Equal(t, Point{50, 50}, c.Ctrl2)

	// Long connections cap the offset.
	c = CubicRoute(Point{0, 0}, Point{1000, 0})
	assert.Equal(t, Point{80, 0}, c.Ctrl1)
	assert.Equal(t, Point{920, 0}, c.Ctrl2)

	// Backwards connections still exit to the right.
	c = CubicRoute(Point{200, 0}, Point{0, 100})
	assert.Equal(t, Point{280, 0}, c.Ctrl1)
	assert.Equal(t, Point{-80, 100}, c.Ctrl2)
}

func TestCurveEndpoints(t *testing.T) {
	for _, c := range []Curve{
		CubicRoute(Point{10, 20}, Point{200, 90}),
		QuadraticThrough(Point{10, 20}, Point{50, 300}, Point{200, 90}),
	} {
		assert.Equal(t, Point{10, 20}, c.At(0))
		assert.Equal(t, Point{200, 90}, c.At(1))
	}
}

func TestQuadraticPassesThroughLabel(t *testing.T) {
	c := QuadraticThrough(Point{0, 0}, Point{120, -70}, Point{200, 40})
	mid := c.Midpoint()
	assert.InDelta(t, 120, mid.X, 1e-9)
	assert.InDelta(t, -70, mid.Y, 1e-9)
}

func TestSample(t *testing.T) {
	c := CubicRoute(Point{0, 0}, Point{100, 0})
	pts := c.Sample(SampleCount)
	require.Len(t, pts, 21)
	assert.Equal(t, Point{0, 0}, pts[0])
	assert.Equal(t, Point{100, 0}, pts[20])
	assert.InDelta(t, 50, pts[10].X, 1e-9)

	assert.InDelta(t, 100, c.Length(), 1e-6)
}

func TestRouteModeSwitch(t *testing.T) {
	d := New()
	require.NoError(t, d.AddRectangle(&Rectangle{ID: "a", X: 0, Y: 0, Width: 100, Height: 60}))
	require.NoError(t, d.AddRectangle(&Rectangle{ID: "b", X: 300, Y: 100, Width: 100, Height: 60}))
	c, err := d.Connect("a", "b")
	require.NoError(t, err)

	cubic, ok := d.Route(c, 10)
	require.True(t, ok)
	assert.False(t, cubic.Quadratic)
	before := cubic.At(0.5)
	assert.InDelta(t, 200, before.X, 1e-9)
	assert.InDelta(t, 80, before.Y, 1e-9)

	c.LabelPosition = &Point{150, 250}
	quad, ok := d.Route(c, 10)
	require.True(t, ok)
	assert.True(t, quad.Quadratic)
	assert.InDelta(t, 150, quad.At(0.5).X, 1e-9)
	assert.InDelta(t, 250, quad.At(0.5).Y, 1e-9)

	// Moving an endpoint clears the override and restores the cubic route.
	require.NoError(t, d.MoveRectangle("b", 300, 100))
	assert.Nil(t, c.LabelPosition)
	again, _ := d.Route(c, 10)
	assert.False(t, again.Quadratic)
	assert.Equal(t, before, again.At(0.5))
}

func TestRouteUnresolved(t *testing.T) {
	d := New()
	_, ok := d.Route(&Connection{FromID: "x", ToID: "y"}, 10)
	assert.False(t, ok)
}

func TestLabelAnchor(t *testing.T) {
	d, c := twoBoxes(t)
	p, ok := d.LabelAnchor(c, 10)
	require.True(t, ok)
	assert.False(t, math.IsNaN(p.X))
	assert.InDelta(t, 200, p.X, 1e-9)

	c.LabelPosition = &Point{1, 2}
	p, _ = d.LabelAnchor(c, 10)
	assert.Equal(t, Point{1, 2}, p)
}
