package pixfile

import (
	"math"
	"regexp"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// Extent returns the world-space box covering every rectangle, collection
// name tab, connection route and label of d. It is false for an empty document.
func Extent(d *pix.Document, gridSize float64, m pix.LabelMetrics) (pix.Bounds, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(b pix.Bounds) {
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.X+b.Width)
		maxY = math.Max(maxY, b.Y+b.Height)
	}

	for _, r := range d.Rectangles() {
		add(r.Bounds())
		if tab, ok := r.NameTab(); ok {
			add(tab)
		}
	}
	for _, c := range d.Connections() {
		curve, ok := d.Route(c, gridSize)
		if !ok {
			continue
		}
		for _, p := range curve.Sample(pix.SampleCount) {
			add(pix.Bounds{X: p.X, Y: p.Y})
		}
		if c.Label != "" {
			anchor, _ := d.LabelAnchor(c, gridSize)
			add(m.LabelBox(c.Label, anchor))
		}
	}

	if math.IsInf(minX, 1) {
		return pix.Bounds{}, false
	}
	return pix.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|(rgb|rgba|hsl|hsla)\([0-9.,% ]+\))$`)

// cssColor returns c if it is a plain CSS color value, otherwise fallback.
// Colors come from user documents and end up inside style attributes.
func cssColor(c, fallback string) string {
	if colorPattern.MatchString(c) {
		return c
	}
	return fallback
}
