package pixfile

import (
	"bytes"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// SVGOptions controls SVG rendering.
type SVGOptions struct {
	Padding    int     // margin around the drawing in pixels
	GridSize   float64 // grid the connection endpoints snap to
	Title      string  // optional heading above the drawing
	FontSize   int     // rectangle name size; labels use the label metrics
	Background string  // canvas fill, empty for transparent
	Labels     pix.LabelMetrics
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Padding:    40,
		GridSize:   pix.DefaultGridSize,
		FontSize:   14,
		Background: "#ffffff",
		Labels:     pix.DefaultLabelMetrics(),
	}
}

// Theme colors shared by the SVG and PNG renderers.
const (
	themeRectFill   = "#f5f7fa"
	themeRectStroke = "#333333"
	themeConnection = "#4ecdc4"
	themeText       = "#222222"
	themeLabelFill  = "#ffffff"
	themeIndicator  = "#ffb74d"
	themeTitle      = "#333333"
)

const titleHeight = 30

// lineDash returns the SVG stroke settings for a line style.
func lineDash(style pix.LineStyle) string {
	switch style {
	case pix.LineDashed:
		return "stroke-width:2;stroke-dasharray:8,4"
	case pix.LineThickDotted:
		return "stroke-width:4;stroke-dasharray:1,7;stroke-linecap:round"
	}
	return "stroke-width:2"
}

// curvePath formats a curve as SVG path data.
func curvePath(c pix.Curve) string {
	if c.Quadratic {
		return fmt.Sprintf("M%g,%g Q%g,%g %g,%g",
			c.Start.X, c.Start.Y, c.Ctrl1.X, c.Ctrl1.Y, c.End.X, c.End.Y)
	}
	return fmt.Sprintf("M%g,%g C%g,%g %g,%g %g,%g",
		c.Start.X, c.Start.Y, c.Ctrl1.X, c.Ctrl1.Y, c.Ctrl2.X, c.Ctrl2.Y, c.End.X, c.End.Y)
}

func round(v float64) int {
	return int(math.Round(v))
}

// GenerateSVG renders a document to SVG.
func GenerateSVG(d *pix.Document, opts SVGOptions) string {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = WriteSVG(&buf, d, opts)
	return buf.String()
}

// WriteSVG renders a document to w as a standalone SVG image. World
// coordinates are kept; the drawing is translated so that its extent
// starts at the padding.
func WriteSVG(w io.Writer, d *pix.Document, opts SVGOptions) error {
	if opts.GridSize <= 0 {
		opts.GridSize = pix.DefaultGridSize
	}
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	if opts.Labels.FontSize == 0 {
		opts.Labels = pix.DefaultLabelMetrics()
	}

	ext, ok := Extent(d, opts.GridSize, opts.Labels)
	if !ok {
		ext = pix.Bounds{Width: 200, Height: 100}
	}
	top := opts.Padding
	if opts.Title != "" {
		top += titleHeight
	}
	width := round(ext.Width) + 2*opts.Padding
	height := round(ext.Height) + top + opts.Padding

	cw := &countingWriter{w: w}
	canvas := svg.New(cw)
	canvas.Start(width, height)
	if opts.Background != "" {
		canvas.Rect(0, 0, width, height, "fill:"+cssColor(opts.Background, "#ffffff"))
	}
	if opts.Title != "" {
		canvas.Text(width/2, opts.Padding+opts.FontSize,
			opts.Title, fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-size:%dpx;font-weight:bold;fill:%s", opts.FontSize+4, themeTitle))
	}

	canvas.Gtransform(fmt.Sprintf("translate(%g,%g)", float64(opts.Padding)-ext.X, float64(top)-ext.Y))

	for _, c := range d.Connections() {
		writeConnectionSVG(canvas, d, c, opts)
	}
	for _, r := range d.Rectangles() {
		writeRectangleSVG(canvas, r, opts)
	}

	canvas.Gend()
	canvas.End()
	return cw.err
}

func writeConnectionSVG(canvas *svg.SVG, d *pix.Document, c *pix.Connection, opts SVGOptions) {
	curve, ok := d.Route(c, opts.GridSize)
	if !ok {
		return
	}
	stroke := cssColor(c.Color, themeConnection)

	canvas.Gid("conn-" + c.ID)
	if c.Description != "" {
		canvas.Title(c.Description)
	}
	canvas.Path(curvePath(curve), fmt.Sprintf("fill:none;stroke:%s;%s", stroke, lineDash(c.LineStyle)))
	for _, p := range []pix.Point{curve.Start, curve.End} {
		canvas.Circle(round(p.X), round(p.Y), 4, fmt.Sprintf("fill:%s;stroke:#ffffff;stroke-width:1", stroke))
	}

	if c.Label != "" {
		anchor, _ := d.LabelAnchor(c, opts.GridSize)
		box := opts.Labels.LabelBox(c.Label, anchor)
		canvas.Roundrect(round(box.X), round(box.Y), round(box.Width), round(box.Height), 3, 3,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", themeLabelFill, stroke))
		canvas.Text(round(anchor.X), round(anchor.Y+opts.Labels.FontSize/3), c.Label,
			fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-size:%gpx;fill:%s", opts.Labels.FontSize, themeText))
	}
	canvas.Gend()
}

func writeRectangleSVG(canvas *svg.SVG, r *pix.Rectangle, opts SVGOptions) {
	x, y, w, h := round(r.X), round(r.Y), round(r.Width), round(r.Height)
	stroke := cssColor(r.Color, themeRectStroke)
	textStyle := fmt.Sprintf("font-family:sans-serif;font-size:%dpx;fill:%s", opts.FontSize, themeText)

	canvas.Gid("rect-" + r.ID)
	if r.Description != "" {
		canvas.Title(r.Description)
	}

	if r.Kind == pix.KindCollection {
		canvas.Rect(x, y, w, h, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2;stroke-dasharray:6,4", stroke))
		if tab, ok := r.NameTab(); ok {
			canvas.Rect(round(tab.X), round(tab.Y), round(tab.Width), round(tab.Height),
				fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", themeRectFill, stroke))
			canvas.Text(round(tab.X)+4, round(tab.Y+tab.Height)-6, r.Name, textStyle)
		}
	} else {
		canvas.Rect(x, y, w, h, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.5", themeRectFill, stroke))
		if r.Name != "" {
			canvas.Text(x+w/2, y+h/2+opts.FontSize/3, r.Name, "text-anchor:middle;"+textStyle)
		}
	}

	if b, ok := r.PayloadIndicator(); ok {
		canvas.Rect(round(b.X), round(b.Y), round(b.Width), round(b.Height),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", themeIndicator, stroke))
	}
	canvas.Gend()
}

// countingWriter remembers the first write error, since svgo drops them.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
