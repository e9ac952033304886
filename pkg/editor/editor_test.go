package editor

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

type recorder struct {
	BaseHost
	changed []*pix.Document
	named   []string
	copied  []string
	opened  []pix.Selection
	menus   []pix.Selection
	saved   []*pix.Document
	loads   int
}

func (r *recorder) DataChanged(d *pix.Document)          { r.changed = append(r.changed, d) }
func (r *recorder) RequestSave(d *pix.Document)          { r.saved = append(r.saved, d) }
func (r *recorder) RequestLoad()                         { r.loads++ }
func (r *recorder) RequestClipboardCopy(text string)     { r.copied = append(r.copied, text) }
func (r *recorder) NamePending(id string)                { r.named = append(r.named, id) }
func (r *recorder) OpenPropertyEditor(sel pix.Selection) { r.opened = append(r.opened, sel) }
func (r *recorder) ShowContextMenu(sel pix.Selection, _ pix.Point) {
	r.menus = append(r.menus, sel)
}

// newFixture returns an editor at zoom 1 (screen == world) holding
// A (0,0,100,60) and B (300,0,100,60).
func newFixture(t *testing.T) (*Editor, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(rec, DefaultOptions())
	d := pix.New()
	require.NoError(t, d.AddRectangle(&pix.Rectangle{ID: "A", Name: "A", X: 0, Y: 0, Width: 100, Height: 60}))
	require.NoError(t, d.AddRectangle(&pix.Rectangle{ID: "B", Name: "B", X: 300, Y: 0, Width: 100, Height: 60}))
	e.LoadData(d)
	return e, rec
}

func connectAB(t *testing.T, e *Editor) *pix.Connection {
	t.Helper()
	c, err := e.Document().Connect("A", "B")
	require.NoError(t, err)
	return c
}

func down(e *Editor, b Button, x, y float64) {
	e.PointerDown(PointerEvent{Button: b, Screen: pix.Point{X: x, Y: y}})
}

func move(e *Editor, x, y float64) {
	e.PointerMove(PointerEvent{Screen: pix.Point{X: x, Y: y}})
}

func up(e *Editor, b Button, x, y float64) {
	e.PointerUp(PointerEvent{Button: b, Screen: pix.Point{X: x, Y: y}})
}

func bounds(t *testing.T, e *Editor, id string) pix.Bounds {
	t.Helper()
	r, ok := e.Document().Rectangle(id)
	require.True(t, ok, "rectangle %s", id)
	return r.Bounds()
}

func TestNewFillsDefaults(t *testing.T) {
	e := New(nil, Options{})
	assert.Equal(t, pix.DefaultGridSize, e.GridSize())
	assert.Equal(t, 12.0, e.Labels().FontSize)
	assert.IsType(t, Idle{}, e.State())
	assert.Empty(t, e.Document().Rectangles())
	assert.Equal(t, 1.0, e.View().Zoom)
}

func TestDrawCreatesRectangle(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonPrimary, 500, 200)
	require.IsType(t, Drawing{}, e.State())
	assert.Equal(t, pix.Point{X: 500, Y: 200}, e.State().(Drawing).Start)

	move(e, 583, 247)
	p := e.Preview()
	require.NotNil(t, p.Draw)
	assert.Equal(t, pix.Bounds{X: 500, Y: 200, Width: 80, Height: 50}, *p.Draw)

	up(e, ButtonPrimary, 583, 247)
	assert.IsType(t, Idle{}, e.State())

	rects := e.Document().Rectangles()
	require.Len(t, rects, 3)
	r := rects[2]
	assert.Equal(t, pix.Bounds{X: 500, Y: 200, Width: 80, Height: 50}, r.Bounds())
	assert.Equal(t, pix.KindRegular, r.Kind)
	assert.Equal(t, pix.Selection{RectangleID: r.ID}, e.Selection())
	assert.Equal(t, []string{r.ID}, rec.named)
	assert.Len(t, rec.changed, 1)
}

func TestDrawBackwardsNormalises(t *testing.T) {
	e, _ := newFixture(t)

	down(e, ButtonPrimary, 600, 300)
	move(e, 520, 240)
	up(e, ButtonPrimary, 520, 240)

	rects := e.Document().Rectangles()
	require.Len(t, rects, 3)
	assert.Equal(t, pix.Bounds{X: 520, Y: 240, Width: 80, Height: 60}, rects[2].Bounds())
}

func TestDrawTooSmallIsDiscarded(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonPrimary, 500, 200)
	move(e, 504, 204)
	up(e, ButtonPrimary, 504, 204)

	assert.IsType(t, Idle{}, e.State())
	assert.Len(t, e.Document().Rectangles(), 2)
	assert.Empty(t, rec.changed)
	assert.Empty(t, rec.named)
}

func TestDrawTooSmallAcrossGridLineIsDiscarded(t *testing.T) {
	e, rec := newFixture(t)

	// Both corners snap to different grid lines, but the drag is 4x4.
	down(e, ButtonPrimary, 503, 203)
	move(e, 507, 207)
	up(e, ButtonPrimary, 507, 207)

	assert.IsType(t, Idle{}, e.State())
	assert.Len(t, e.Document().Rectangles(), 2)
	assert.Empty(t, rec.changed)
	assert.Empty(t, rec.named)
}

func TestDrawClearsSelection(t *testing.T) {
	e, _ := newFixture(t)
	e.Document().SelectRectangle("A")

	down(e, ButtonPrimary, 500, 200)
	assert.True(t, e.Selection().Empty())
}

func TestConnectRectangles(t *testing.T) {
	e, rec := newFixture(t)
	e.Document().SelectRectangle("B")

	down(e, ButtonSecondary, 50, 30)
	require.IsType(t, PotentialConnect{}, e.State())

	// Below the drag threshold nothing happens yet.
	move(e, 55, 30)
	require.IsType(t, PotentialConnect{}, e.State())
	assert.Equal(t, "B", e.Selection().RectangleID)

	move(e, 200, 100)
	require.IsType(t, Connecting{}, e.State())
	assert.True(t, e.Selection().Empty())
	assert.Equal(t, "", e.State().(Connecting).TargetID)

	move(e, 350, 30)
	require.Equal(t, "B", e.State().(Connecting).TargetID)
	p := e.Preview()
	require.NotNil(t, p.Rubber)
	assert.Equal(t, "B", p.TargetID)
	assert.Equal(t, pix.Point{X: 100, Y: 30}, p.Rubber.Start)
	assert.Equal(t, pix.Point{X: 300, Y: 30}, p.Rubber.End)

	up(e, ButtonSecondary, 350, 30)
	assert.IsType(t, Idle{}, e.State())

	conns := e.Document().Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "A", conns[0].FromID)
	assert.Equal(t, "B", conns[0].ToID)
	assert.Equal(t, pix.LineSolid, conns[0].LineStyle)
	assert.Equal(t, pix.Selection{ConnectionID: conns[0].ID}, e.Selection())
	assert.Len(t, rec.changed, 1)
	assert.Empty(t, rec.named)
}

func TestConnectToEmptySpaceCreatesRectangle(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonSecondary, 50, 30)
	move(e, 600, 300)
	up(e, ButtonSecondary, 600, 300)

	rects := e.Document().Rectangles()
	require.Len(t, rects, 3)
	r := rects[2]
	assert.Equal(t, pix.Bounds{X: 550, Y: 270, Width: 100, Height: 60}, r.Bounds())

	conns := e.Document().Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "A", conns[0].FromID)
	assert.Equal(t, r.ID, conns[0].ToID)

	assert.Equal(t, []string{r.ID}, rec.named)
	assert.Equal(t, pix.Selection{RectangleID: r.ID}, e.Selection())
	assert.Len(t, rec.changed, 1)
}

func TestConnectDropOnSourceCancels(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonSecondary, 20, 20)
	move(e, 60, 40)
	require.IsType(t, Connecting{}, e.State())
	up(e, ButtonSecondary, 60, 40)

	assert.IsType(t, Idle{}, e.State())
	assert.Empty(t, e.Document().Connections())
	assert.Len(t, e.Document().Rectangles(), 2)
	assert.Empty(t, rec.changed)
}

func TestPotentialConnectReleaseReturnsToIdle(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonSecondary, 50, 30)
	up(e, ButtonSecondary, 52, 31)

	assert.IsType(t, Idle{}, e.State())
	assert.Empty(t, e.Document().Connections())
	assert.Empty(t, rec.changed)
}

func TestSecondaryOnEmptySpaceStaysIdle(t *testing.T) {
	e, _ := newFixture(t)
	down(e, ButtonSecondary, 500, 500)
	assert.IsType(t, Idle{}, e.State())
}

func TestSecondaryOnConnectionDoesNotConnect(t *testing.T) {
	e, _ := newFixture(t)
	connectAB(t, e)
	down(e, ButtonSecondary, 200, 30)
	assert.IsType(t, Idle{}, e.State())
}

func TestDragMovesAndSnaps(t *testing.T) {
	e, rec := newFixture(t)
	c := connectAB(t, e)
	c.LabelPosition = &pix.Point{X: 200, Y: 100}

	down(e, ButtonPrimary, 50, 30)
	require.IsType(t, Dragging{}, e.State())
	assert.Equal(t, "A", e.Selection().RectangleID)
	assert.Equal(t, pix.Point{X: 50, Y: 30}, e.State().(Dragging).Offset)

	move(e, 173, 88)
	assert.Equal(t, pix.Bounds{X: 123, Y: 58, Width: 100, Height: 60}, bounds(t, e, "A"))
	assert.Nil(t, c.LabelPosition, "moving an endpoint resets the label position")

	up(e, ButtonPrimary, 173, 88)
	assert.IsType(t, Idle{}, e.State())
	assert.Equal(t, pix.Bounds{X: 120, Y: 60, Width: 100, Height: 60}, bounds(t, e, "A"))
	assert.Len(t, rec.changed, 1)
}

func TestClickWithoutMoveOnlySelects(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonPrimary, 50, 30)
	up(e, ButtonPrimary, 50, 30)

	assert.Equal(t, "A", e.Selection().RectangleID)
	assert.Equal(t, pix.Bounds{X: 0, Y: 0, Width: 100, Height: 60}, bounds(t, e, "A"))
	assert.Empty(t, rec.changed)
}

func TestTopmostRectangleWins(t *testing.T) {
	e, _ := newFixture(t)
	require.NoError(t, e.Document().AddRectangle(&pix.Rectangle{ID: "C", X: 40, Y: 20, Width: 100, Height: 60}))

	down(e, ButtonPrimary, 70, 40)
	up(e, ButtonPrimary, 70, 40)
	assert.Equal(t, "C", e.Selection().RectangleID)
}

func TestResizeFromHandle(t *testing.T) {
	e, rec := newFixture(t)
	e.Document().SelectRectangle("A")

	down(e, ButtonPrimary, 100, 60)
	require.IsType(t, Resizing{}, e.State())
	assert.Equal(t, pix.HandleBottomRight, e.State().(Resizing).Handle)

	move(e, 120, 70)
	move(e, 133, 85)
	assert.Equal(t, pix.Bounds{X: 0, Y: 0, Width: 133, Height: 85}, bounds(t, e, "A"))

	up(e, ButtonPrimary, 133, 85)
	assert.IsType(t, Idle{}, e.State())
	assert.Equal(t, pix.Bounds{X: 0, Y: 0, Width: 130, Height: 90}, bounds(t, e, "A"))
	assert.Len(t, rec.changed, 1)
}

func TestResizeFromHandleOfUnselectedRectangle(t *testing.T) {
	e, _ := newFixture(t)

	down(e, ButtonPrimary, 300, 30)
	require.IsType(t, Resizing{}, e.State())
	assert.Equal(t, pix.HandleLeft, e.State().(Resizing).Handle)
	assert.Equal(t, "B", e.Selection().RectangleID)
}

func TestResizeKeepsMinimumSize(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("resizing never shrinks below one grid cell", prop.ForAll(
		func(handle int, dx, dy float64) bool {
			e := New(nil, DefaultOptions())
			d := pix.New()
			if err := d.AddRectangle(&pix.Rectangle{ID: "A", X: 0, Y: 0, Width: 100, Height: 60}); err != nil {
				return false
			}
			e.LoadData(d)
			d.SelectRectangle("A")

			r, _ := d.Rectangle("A")
			h := pix.Handles[handle]
			start := r.HandleAnchor(h)
			down(e, ButtonPrimary, start.X, start.Y)
			if _, ok := e.State().(Resizing); !ok {
				return false
			}
			move(e, start.X+dx, start.Y+dy)
			if r.Width < e.GridSize() || r.Height < e.GridSize() {
				return false
			}
			up(e, ButtonPrimary, start.X+dx, start.Y+dy)
			return r.Width >= e.GridSize() && r.Height >= e.GridSize()
		},
		gen.IntRange(0, len(pix.Handles)-1),
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
	))

	properties.TestingRun(t)
}

func TestResizePinsOppositeEdge(t *testing.T) {
	e, _ := newFixture(t)
	e.Document().SelectRectangle("A")

	down(e, ButtonPrimary, 0, 0)
	require.Equal(t, pix.HandleTopLeft, e.State().(Resizing).Handle)
	move(e, 400, 400)

	assert.Equal(t, pix.Bounds{X: 90, Y: 50, Width: 10, Height: 10}, bounds(t, e, "A"))

	up(e, ButtonPrimary, 400, 400)
	assert.Equal(t, pix.Bounds{X: 90, Y: 50, Width: 10, Height: 10}, bounds(t, e, "A"))
}

func TestResizeReleaseKeepsOppositeEdge(t *testing.T) {
	e, rec := newFixture(t)
	e.Document().SelectRectangle("A")

	down(e, ButtonPrimary, 0, 30)
	require.Equal(t, pix.HandleLeft, e.State().(Resizing).Handle)
	move(e, 35, 30)
	up(e, ButtonPrimary, 35, 30)

	b := bounds(t, e, "A")
	assert.Equal(t, pix.Bounds{X: 40, Y: 0, Width: 60, Height: 60}, b)
	assert.Equal(t, 100.0, b.X+b.Width, "right edge stays put")
	assert.Len(t, rec.changed, 1)
}

func TestDragKeepsUnalignedSize(t *testing.T) {
	e, _ := newFixture(t)
	require.NoError(t, e.Document().AddRectangle(&pix.Rectangle{ID: "C", X: 500, Y: 300, Width: 95, Height: 63}))

	down(e, ButtonPrimary, 540, 330)
	require.IsType(t, Dragging{}, e.State())
	move(e, 563, 338)
	up(e, ButtonPrimary, 563, 338)

	assert.Equal(t, pix.Bounds{X: 520, Y: 310, Width: 95, Height: 63}, bounds(t, e, "C"))
}

func TestPanning(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonMiddle, 10, 10)
	require.IsType(t, Panning{}, e.State())
	assert.Equal(t, CursorGrabbing, e.CursorAt(pix.Point{X: 10, Y: 10}))

	move(e, 30, 25)
	move(e, 40, 45)
	assert.Equal(t, 30.0, e.View().PanX)
	assert.Equal(t, 35.0, e.View().PanY)

	up(e, ButtonMiddle, 40, 45)
	assert.IsType(t, Idle{}, e.State())
	assert.Empty(t, rec.changed)
}

func TestDragLabel(t *testing.T) {
	e, rec := newFixture(t)
	c := connectAB(t, e)
	c.Label = "go"

	// The label is centred on the route midpoint (200, 30).
	down(e, ButtonPrimary, 200, 30)
	require.IsType(t, DraggingLabel{}, e.State())
	assert.Equal(t, c.ID, e.Selection().ConnectionID)

	move(e, 200, 100)
	require.NotNil(t, c.LabelPosition)
	assert.Equal(t, pix.Point{X: 200, Y: 100}, *c.LabelPosition)

	up(e, ButtonPrimary, 200, 100)
	assert.IsType(t, Idle{}, e.State())
	assert.Len(t, rec.changed, 1)

	// The route now bends through the label.
	route, ok := e.Document().Route(c, e.GridSize())
	require.True(t, ok)
	assert.True(t, route.Quadratic)
	mid := route.Midpoint()
	assert.InDelta(t, 200, mid.X, 1e-9)
	assert.InDelta(t, 100, mid.Y, 1e-9)
}

func TestClickConnectionSelects(t *testing.T) {
	e, rec := newFixture(t)
	c := connectAB(t, e)

	down(e, ButtonPrimary, 150, 32)
	assert.IsType(t, Idle{}, e.State())
	assert.Equal(t, pix.Selection{ConnectionID: c.ID}, e.Selection())
	up(e, ButtonPrimary, 150, 32)
	assert.Empty(t, rec.changed)
}

func TestCancelRestoresGeometry(t *testing.T) {
	e, rec := newFixture(t)
	c := connectAB(t, e)
	c.LabelPosition = &pix.Point{X: 200, Y: 90}

	down(e, ButtonPrimary, 50, 30)
	move(e, 250, 230)
	require.Nil(t, c.LabelPosition)

	e.Cancel()
	assert.IsType(t, Idle{}, e.State())
	assert.Equal(t, pix.Bounds{X: 0, Y: 0, Width: 100, Height: 60}, bounds(t, e, "A"))
	require.NotNil(t, c.LabelPosition)
	assert.Equal(t, pix.Point{X: 200, Y: 90}, *c.LabelPosition)
	assert.Empty(t, rec.changed)
}

func TestCancelResizeAndLabelDrag(t *testing.T) {
	e, _ := newFixture(t)
	c := connectAB(t, e)
	c.Label = "go"
	e.Document().SelectRectangle("A")

	down(e, ButtonPrimary, 100, 60)
	move(e, 180, 120)
	e.Cancel()
	assert.Equal(t, pix.Bounds{X: 0, Y: 0, Width: 100, Height: 60}, bounds(t, e, "A"))

	down(e, ButtonPrimary, 200, 30)
	move(e, 210, 150)
	require.NotNil(t, c.LabelPosition)
	e.Cancel()
	assert.Nil(t, c.LabelPosition)
}

func TestCancelDrawingAndConnecting(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonPrimary, 500, 200)
	move(e, 600, 300)
	e.Cancel()
	up(e, ButtonPrimary, 600, 300)
	assert.Len(t, e.Document().Rectangles(), 2)

	down(e, ButtonSecondary, 50, 30)
	move(e, 350, 30)
	e.Cancel()
	up(e, ButtonSecondary, 350, 30)
	assert.Empty(t, e.Document().Connections())
	assert.Empty(t, rec.changed)
}

func TestLoadDataMidGesture(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonPrimary, 50, 30)
	move(e, 150, 130)

	next := pix.New()
	require.NoError(t, next.AddRectangle(&pix.Rectangle{ID: "Z", X: 10, Y: 10, Width: 50, Height: 50, Selected: true}))
	e.LoadData(next)

	assert.IsType(t, Idle{}, e.State())
	assert.Same(t, next, e.Document())
	assert.True(t, e.Selection().Empty())
	assert.Empty(t, rec.changed)

	// The release of the abandoned drag is harmless.
	up(e, ButtonPrimary, 150, 130)
	assert.Equal(t, pix.Bounds{X: 10, Y: 10, Width: 50, Height: 50}, bounds(t, e, "Z"))

	e.LoadData(nil)
	assert.Empty(t, e.Document().Rectangles())
}

func TestPrimaryOnEmptySpaceAbandonsGesture(t *testing.T) {
	e, _ := newFixture(t)

	down(e, ButtonSecondary, 50, 30)
	require.IsType(t, PotentialConnect{}, e.State())

	// Pressing over a rectangle does not interrupt.
	down(e, ButtonPrimary, 350, 30)
	assert.IsType(t, PotentialConnect{}, e.State())

	e.Document().SelectRectangle("B")
	down(e, ButtonPrimary, 500, 500)
	assert.IsType(t, Idle{}, e.State())
	assert.True(t, e.Selection().Empty())
}

func TestOtherButtonsIgnoredDuringGesture(t *testing.T) {
	e, _ := newFixture(t)

	down(e, ButtonPrimary, 50, 30)
	down(e, ButtonMiddle, 500, 500)
	down(e, ButtonSecondary, 500, 500)
	assert.IsType(t, Dragging{}, e.State())
}

func TestWheelZoomsAroundPointer(t *testing.T) {
	e, _ := newFixture(t)
	at := pix.Point{X: 120, Y: 80}
	before := e.View().ToWorld(at.X, at.Y)

	e.Wheel(at, -1)
	assert.InDelta(t, 1.1, e.View().Zoom, 1e-12)
	after := e.View().ToWorld(at.X, at.Y)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	e.Wheel(at, 1)
	assert.InDelta(t, 1.0, e.View().Zoom, 1e-12)

	e.Wheel(at, 0)
	assert.InDelta(t, 1.0, e.View().Zoom, 1e-12)

	for i := 0; i < 100; i++ {
		e.Wheel(at, -1)
	}
	assert.Equal(t, pix.MaxZoom, e.View().Zoom)

	e.ResetView()
	assert.Equal(t, 1.0, e.View().Zoom)
	assert.Equal(t, 0.0, e.View().PanX)
}

func TestWheelDuringGestureKeepsState(t *testing.T) {
	e, _ := newFixture(t)
	down(e, ButtonPrimary, 50, 30)
	e.Wheel(pix.Point{X: 50, Y: 30}, -1)
	assert.IsType(t, Dragging{}, e.State())
}

func TestZoomedHitTesting(t *testing.T) {
	e, _ := newFixture(t)
	e.View().Zoom = 2
	e.View().PanX = 100

	// Screen (200, 60) is world (50, 30), inside A.
	down(e, ButtonPrimary, 200, 60)
	assert.Equal(t, "A", e.Selection().RectangleID)
	move(e, 240, 60)
	assert.Equal(t, 20.0, bounds(t, e, "A").X)
}

func TestCopyAndPaste(t *testing.T) {
	e, rec := newFixture(t)
	a, _ := e.Document().Rectangle("A")
	b, _ := e.Document().Rectangle("B")
	a.Payload = "call $$B$$ and $$nope$$"
	b.Payload = "bee"

	assert.False(t, e.Copy(false), "nothing selected")

	e.Document().SelectRectangle("A")
	assert.False(t, e.Copy(true), "text input has focus")
	assert.True(t, e.Copy(false))
	assert.Equal(t, []string{"call bee and $$nope$$"}, rec.copied)

	assert.False(t, e.Paste("typed", true))
	assert.Equal(t, "call $$B$$ and $$nope$$", a.Payload)
	assert.True(t, e.Paste("pasted", false))
	assert.Equal(t, "pasted", a.Payload)
	assert.Len(t, rec.changed, 1)

	c := connectAB(t, e)
	e.Document().SelectConnection(c.ID)
	assert.True(t, e.Paste("edge", false))
	assert.Equal(t, "edge", c.Payload)

	e.Document().ClearSelection()
	assert.False(t, e.Paste("x", false))
}

func TestPayloadIndicatorClickCopies(t *testing.T) {
	e, rec := newFixture(t)
	a, _ := e.Document().Rectangle("A")
	a.Payload = "see $$B$$"
	b, _ := e.Document().Rectangle("B")
	b.Payload = "B!"

	// The indicator occupies (86, 2)-(98, 14).
	assert.Equal(t, CursorPointer, e.CursorAt(pix.Point{X: 90, Y: 6}))
	down(e, ButtonPrimary, 90, 6)
	assert.IsType(t, Idle{}, e.State())
	assert.Equal(t, "A", e.Selection().RectangleID)
	assert.Equal(t, []string{"see B!"}, rec.copied)
	up(e, ButtonPrimary, 90, 6)

	e.DoubleClick(pix.Point{X: 90, Y: 6})
	assert.Empty(t, rec.opened)
	assert.Empty(t, rec.changed)
}

func TestDoubleClickOpensPropertyEditor(t *testing.T) {
	e, rec := newFixture(t)
	c := connectAB(t, e)

	e.DoubleClick(pix.Point{X: 350, Y: 30})
	e.DoubleClick(pix.Point{X: 200, Y: 30})
	e.DoubleClick(pix.Point{X: 600, Y: 600})

	assert.Equal(t, []pix.Selection{
		{RectangleID: "B"},
		{ConnectionID: c.ID},
	}, rec.opened)
}

func TestDoubleClickPrefersLabel(t *testing.T) {
	e, rec := newFixture(t)
	c := connectAB(t, e)
	c.Label = "go"
	c.LabelPosition = &pix.Point{X: 350, Y: 30}

	e.DoubleClick(pix.Point{X: 350, Y: 30})
	assert.Equal(t, []pix.Selection{{ConnectionID: c.ID}}, rec.opened)
}

func TestContextMenu(t *testing.T) {
	e, rec := newFixture(t)
	c := connectAB(t, e)

	e.ContextMenu(pix.Point{X: 50, Y: 30})
	e.ContextMenu(pix.Point{X: 200, Y: 30})
	e.ContextMenu(pix.Point{X: 600, Y: 600})
	assert.Equal(t, []pix.Selection{
		{RectangleID: "A"},
		{ConnectionID: c.ID},
	}, rec.menus)

	// Secondary press then context menu, as hosts deliver it.
	down(e, ButtonSecondary, 350, 30)
	e.ContextMenu(pix.Point{X: 350, Y: 30})
	assert.IsType(t, Idle{}, e.State())
	assert.Equal(t, pix.Selection{RectangleID: "B"}, rec.menus[2])

	// Ignored once a drag is under way.
	down(e, ButtonPrimary, 50, 30)
	e.ContextMenu(pix.Point{X: 50, Y: 30})
	assert.IsType(t, Dragging{}, e.State())
	assert.Len(t, rec.menus, 3)
}

func TestDeleteSelectedCascades(t *testing.T) {
	e, rec := newFixture(t)
	connectAB(t, e)

	assert.False(t, e.DeleteSelected())

	e.Document().SelectRectangle("A")
	assert.True(t, e.DeleteSelected())
	assert.Empty(t, e.Document().Connections())
	require.Len(t, e.Document().Rectangles(), 1)
	assert.Equal(t, "B", e.Document().Rectangles()[0].ID)
	assert.Len(t, rec.changed, 1)
}

func TestDeleteSelectedConnection(t *testing.T) {
	e, _ := newFixture(t)
	c := connectAB(t, e)
	e.Document().SelectConnection(c.ID)

	assert.True(t, e.DeleteSelected())
	assert.Empty(t, e.Document().Connections())
	assert.Len(t, e.Document().Rectangles(), 2)
}

func TestDataChangedReceivesCopy(t *testing.T) {
	e, rec := newFixture(t)
	e.Document().SelectRectangle("A")
	require.True(t, e.Paste("p", false))

	require.Len(t, rec.changed, 1)
	snap := rec.changed[0]
	assert.NotSame(t, e.Document(), snap)

	r, ok := snap.Rectangle("A")
	require.True(t, ok)
	r.Name = "mutated"
	live, _ := e.Document().Rectangle("A")
	assert.Equal(t, "A", live.Name)
}

func TestSetName(t *testing.T) {
	e, rec := newFixture(t)

	down(e, ButtonPrimary, 500, 200)
	move(e, 600, 300)
	up(e, ButtonPrimary, 600, 300)
	require.Len(t, rec.named, 1)

	require.NoError(t, e.SetName(rec.named[0], "Fresh"))
	r, _ := e.Document().Rectangle(rec.named[0])
	assert.Equal(t, "Fresh", r.Name)
	assert.Len(t, rec.changed, 2)

	err := e.SetName("missing", "x")
	assert.True(t, errors.Is(err, pix.ErrRectangleNotFound))
}

func TestClearSaveOpen(t *testing.T) {
	e, rec := newFixture(t)

	e.Save()
	require.Len(t, rec.saved, 1)
	assert.Len(t, rec.saved[0].Rectangles(), 2)
	assert.NotEmpty(t, rec.saved[0].Created)

	e.Save()
	require.Len(t, rec.saved, 2)
	assert.Equal(t, rec.saved[0].Created, rec.saved[1].Created, "creation time is set once")

	e.Open()
	assert.Equal(t, 1, rec.loads)

	e.Clear()
	assert.Empty(t, e.Document().Rectangles())
	assert.Len(t, rec.changed, 1)
	// The saved copy is unaffected.
	assert.Len(t, rec.saved[0].Rectangles(), 2)
}

func TestEditBufferRectangle(t *testing.T) {
	e, rec := newFixture(t)

	_, ok := e.BeginEdit()
	assert.False(t, ok, "nothing selected")

	e.Document().SelectRectangle("A")
	buf, ok := e.BeginEdit()
	require.True(t, ok)
	assert.False(t, buf.IsConnection())
	assert.Equal(t, "A", buf.Name)

	// Dropping the buffer is a cancel.
	buf.Name = "discarded"
	a, _ := e.Document().Rectangle("A")
	assert.Equal(t, "A", a.Name)

	buf, _ = e.BeginEdit()
	buf.Name = "Alpha"
	buf.Description = "first"
	buf.Payload = "p"
	buf.Color = "#ff0000"
	buf.Kind = pix.KindCollection
	require.NoError(t, buf.Commit())

	assert.Equal(t, "Alpha", a.Name)
	assert.Equal(t, "first", a.Description)
	assert.Equal(t, "p", a.Payload)
	assert.Equal(t, "#ff0000", a.Color)
	assert.Equal(t, pix.KindCollection, a.Kind)
	assert.Len(t, rec.changed, 1)
}

func TestEditBufferConnection(t *testing.T) {
	e, _ := newFixture(t)
	c := connectAB(t, e)
	e.Document().SelectConnection(c.ID)

	buf, ok := e.BeginEdit()
	require.True(t, ok)
	assert.True(t, buf.IsConnection())
	buf.Name = "next"
	buf.LineStyle = pix.LineDashed
	require.NoError(t, buf.Commit())

	assert.Equal(t, "next", c.Label)
	assert.Equal(t, pix.LineDashed, c.LineStyle)

	buf, _ = e.BeginEdit()
	buf.LineStyle = "zigzag"
	require.NoError(t, buf.Commit())
	assert.Equal(t, pix.LineSolid, c.LineStyle)
}

func TestEditBufferCommitAfterDelete(t *testing.T) {
	e, _ := newFixture(t)
	e.Document().SelectRectangle("A")
	buf, ok := e.BeginEdit()
	require.True(t, ok)

	require.True(t, e.DeleteSelected())
	err := buf.Commit()
	assert.True(t, errors.Is(err, pix.ErrRectangleNotFound))
}

func TestCursorAt(t *testing.T) {
	e, _ := newFixture(t)

	assert.Equal(t, CursorCrosshair, e.CursorAt(pix.Point{X: 600, Y: 600}))
	assert.Equal(t, CursorPointer, e.CursorAt(pix.Point{X: 50, Y: 30}))

	e.Document().SelectRectangle("A")
	assert.Equal(t, CursorMove, e.CursorAt(pix.Point{X: 50, Y: 30}))
	assert.Equal(t, CursorResizeNWSE, e.CursorAt(pix.Point{X: 0, Y: 0}))
	assert.Equal(t, CursorResizeNESW, e.CursorAt(pix.Point{X: 100, Y: 0}))
	assert.Equal(t, CursorResizeNS, e.CursorAt(pix.Point{X: 50, Y: 60}))
	assert.Equal(t, CursorResizeEW, e.CursorAt(pix.Point{X: 100, Y: 30}))

	down(e, ButtonPrimary, 100, 30)
	assert.Equal(t, CursorResizeEW, e.CursorAt(pix.Point{X: 300, Y: 300}))
}

func TestPreviewIdle(t *testing.T) {
	e, _ := newFixture(t)
	p := e.Preview()
	assert.Nil(t, p.Draw)
	assert.Nil(t, p.Rubber)
}

func TestStateNames(t *testing.T) {
	names := map[string]State{
		"idle":              Idle{},
		"drawing":           Drawing{},
		"potential-connect": PotentialConnect{},
		"connecting":        Connecting{},
		"dragging":          Dragging{},
		"resizing":          Resizing{},
		"panning":           Panning{},
		"dragging-label":    DraggingLabel{},
	}
	for want, s := range names {
		assert.Equal(t, want, s.Name())
	}
	assert.Equal(t, "secondary", ButtonSecondary.String())
}

func TestArrange(t *testing.T) {
	e, rec := newFixture(t)
	connectAB(t, e)

	require.True(t, e.Arrange())
	b, _ := e.Document().Rectangle("B")
	assert.Equal(t, 180.0, b.X)
	assert.Equal(t, 0.0, b.Y)
	require.Len(t, rec.changed, 1)

	assert.False(t, e.Arrange(), "an arranged drawing stays put")
	assert.Len(t, rec.changed, 1)
}
