package pixfile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// GenerateDOT converts a document to Graphviz DOT format. Rectangles keep
// their world positions as pinned node coordinates (neato -n) and
// collections are drawn dashed.
func GenerateDOT(d *pix.Document, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph pix {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	for _, r := range d.Rectangles() {
		attrs := []string{
			fmt.Sprintf("label=\"%s\"", escapeDOT(r.Name)),
			// DOT positions are in points with y pointing up.
			fmt.Sprintf("pos=\"%g,%g!\"", r.X+r.Width/2, -(r.Y + r.Height/2)),
			fmt.Sprintf("width=%g", r.Width/72),
			fmt.Sprintf("height=%g", r.Height/72),
		}
		if r.Kind == pix.KindCollection {
			attrs = append(attrs, "style=dashed")
		}
		if r.Color != "" {
			attrs = append(attrs, fmt.Sprintf("color=\"%s\"", escapeDOT(r.Color)))
		}
		if r.Description != "" {
			attrs = append(attrs, fmt.Sprintf("tooltip=\"%s\"", escapeDOT(r.Description)))
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" [%s];\n", escapeDOT(r.ID), strings.Join(attrs, ", ")))
	}
	sb.WriteString("\n")

	for _, c := range d.Connections() {
		var attrs []string
		if c.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=\"%s\"", escapeDOT(c.Label)))
		}
		switch c.LineStyle {
		case pix.LineDashed:
			attrs = append(attrs, "style=dashed")
		case pix.LineThickDotted:
			attrs = append(attrs, "style=dotted", "penwidth=2")
		}
		if c.Color != "" {
			attrs = append(attrs, fmt.Sprintf("color=\"%s\"", escapeDOT(c.Color)))
		}
		line := fmt.Sprintf("    \"%s\" -> \"%s\"", escapeDOT(c.FromID), escapeDOT(c.ToID))
		if len(attrs) > 0 {
			line += " [" + strings.Join(attrs, ", ") + "]"
		}
		sb.WriteString(line + ";\n")
	}

	sb.WriteString("}\n")

	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
