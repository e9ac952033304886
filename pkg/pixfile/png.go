// Native PNG rendering for pix drawings.
// Mirrors the SVG renderer output using fogleman/gg.

package pixfile

import (
	"image/color"
	"io"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Padding  int
	Scale    float64 // output pixels per world unit
	GridSize float64
	FontSize float64
	Title    string
	Labels   pix.LabelMetrics
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Padding:  40,
		Scale:    1,
		GridSize: pix.DefaultGridSize,
		FontSize: 14,
		Labels:   pix.DefaultLabelMetrics(),
	}
}

// hexColor parses #rgb / #rrggbb colors, returning fallback for anything else.
func hexColor(s string, fallback color.Color) color.Color {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	parse := func(h string) (uint8, bool) {
		var v uint8
		for _, ch := range h {
			v <<= 4
			switch {
			case ch >= '0' && ch <= '9':
				v |= uint8(ch - '0')
			case ch >= 'a' && ch <= 'f':
				v |= uint8(ch-'a') + 10
			case ch >= 'A' && ch <= 'F':
				v |= uint8(ch-'A') + 10
			default:
				return 0, false
			}
		}
		return v, true
	}
	var ok1, ok2, ok3 bool
	switch len(s) {
	case 3:
		r, ok1 = parse(s[0:1] + s[0:1])
		g, ok2 = parse(s[1:2] + s[1:2])
		b, ok3 = parse(s[2:3] + s[2:3])
	case 6:
		r, ok1 = parse(s[0:2])
		g, ok2 = parse(s[2:4])
		b, ok3 = parse(s[4:6])
	default:
		return fallback
	}
	if !ok1 || !ok2 || !ok3 {
		return fallback
	}
	return color.RGBA{r, g, b, 255}
}

func mustHex(s string) color.Color {
	return hexColor(s, color.Black)
}

func newFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse font")
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// RenderPNG renders a document to w as a PNG image.
func RenderPNG(d *pix.Document, w io.Writer, opts PNGOptions) error {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.GridSize <= 0 {
		opts.GridSize = pix.DefaultGridSize
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 14
	}
	if opts.Labels.FontSize == 0 {
		opts.Labels = pix.DefaultLabelMetrics()
	}

	ext, ok := Extent(d, opts.GridSize, opts.Labels)
	if !ok {
		ext = pix.Bounds{Width: 200, Height: 100}
	}
	pad := float64(opts.Padding)
	top := pad
	if opts.Title != "" {
		top += titleHeight
	}
	width := int((ext.Width+2*pad)*opts.Scale + 0.5)
	height := int((ext.Height+top+pad)*opts.Scale + 0.5)

	nameFace, err := newFace(opts.FontSize)
	if err != nil {
		return err
	}
	labelFace, err := newFace(opts.Labels.FontSize)
	if err != nil {
		return err
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(opts.Scale, opts.Scale)

	if opts.Title != "" {
		titleFace, err := newFace(opts.FontSize + 4)
		if err != nil {
			return err
		}
		dc.SetFontFace(titleFace)
		dc.SetColor(mustHex(themeTitle))
		dc.DrawStringAnchored(opts.Title, (ext.Width+2*pad)/2, pad+opts.FontSize/2, 0.5, 0.5)
	}

	dc.Translate(pad-ext.X, top-ext.Y)

	// Connections first so rectangles draw over their endpoints.
	dc.SetFontFace(labelFace)
	for _, c := range d.Connections() {
		drawConnectionPNG(dc, d, c, opts)
	}
	dc.SetFontFace(nameFace)
	for _, r := range d.Rectangles() {
		drawRectanglePNG(dc, r)
	}

	if err := dc.EncodePNG(w); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}

func drawConnectionPNG(dc *gg.Context, d *pix.Document, c *pix.Connection, opts PNGOptions) {
	curve, ok := d.Route(c, opts.GridSize)
	if !ok {
		return
	}
	stroke := hexColor(c.Color, mustHex(themeConnection))

	dc.SetColor(stroke)
	switch c.LineStyle {
	case pix.LineDashed:
		dc.SetLineWidth(2)
		dc.SetDash(8, 4)
	case pix.LineThickDotted:
		dc.SetLineWidth(4)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetDash(1, 7)
	default:
		dc.SetLineWidth(2)
	}
	dc.MoveTo(curve.Start.X, curve.Start.Y)
	if curve.Quadratic {
		dc.QuadraticTo(curve.Ctrl1.X, curve.Ctrl1.Y, curve.End.X, curve.End.Y)
	} else {
		dc.CubicTo(curve.Ctrl1.X, curve.Ctrl1.Y, curve.Ctrl2.X, curve.Ctrl2.Y, curve.End.X, curve.End.Y)
	}
	dc.Stroke()
	dc.SetDash()
	dc.SetLineCap(gg.LineCapButt)

	for _, p := range []pix.Point{curve.Start, curve.End} {
		dc.DrawCircle(p.X, p.Y, 4)
		dc.SetColor(stroke)
		dc.FillPreserve()
		dc.SetColor(color.White)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	if c.Label == "" {
		return
	}
	anchor, _ := d.LabelAnchor(c, opts.GridSize)
	m := opts.Labels
	if m.TextWidth == nil {
		m.TextWidth = func(text string, _ float64) float64 {
			w, _ := dc.MeasureString(text)
			return w
		}
	}
	box := m.LabelBox(c.Label, anchor)
	dc.DrawRoundedRectangle(box.X, box.Y, box.Width, box.Height, 3)
	dc.SetColor(mustHex(themeLabelFill))
	dc.FillPreserve()
	dc.SetColor(stroke)
	dc.SetLineWidth(1)
	dc.Stroke()
	dc.SetColor(mustHex(themeText))
	dc.DrawStringAnchored(c.Label, anchor.X, anchor.Y, 0.5, 0.35)
}

func drawRectanglePNG(dc *gg.Context, r *pix.Rectangle) {
	stroke := hexColor(r.Color, mustHex(themeRectStroke))

	if r.Kind == pix.KindCollection {
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.SetColor(stroke)
		dc.SetLineWidth(2)
		dc.SetDash(6, 4)
		dc.Stroke()
		dc.SetDash()
		if tab, ok := r.NameTab(); ok {
			dc.DrawRectangle(tab.X, tab.Y, tab.Width, tab.Height)
			dc.SetColor(mustHex(themeRectFill))
			dc.FillPreserve()
			dc.SetColor(stroke)
			dc.SetLineWidth(1)
			dc.Stroke()
			dc.SetColor(mustHex(themeText))
			dc.DrawStringAnchored(r.Name, tab.X+4, tab.Y+tab.Height/2, 0, 0.35)
		}
	} else {
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.SetColor(mustHex(themeRectFill))
		dc.FillPreserve()
		dc.SetColor(stroke)
		dc.SetLineWidth(1.5)
		dc.Stroke()
		if r.Name != "" {
			dc.SetColor(mustHex(themeText))
			dc.DrawStringAnchored(r.Name, r.X+r.Width/2, r.Y+r.Height/2, 0.5, 0.35)
		}
	}

	if b, ok := r.PayloadIndicator(); ok {
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.SetColor(mustHex(themeIndicator))
		dc.FillPreserve()
		dc.SetColor(stroke)
		dc.SetLineWidth(1)
		dc.Stroke()
	}
}
