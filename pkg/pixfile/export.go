package pixfile

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// Export formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatHTML = "html"
	FormatDOT  = "dot"
)

// Formats lists the export formats in the order they are offered.
var Formats = []string{FormatSVG, FormatPNG, FormatHTML, FormatDOT}

// FormatFromPath picks an export format from a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case FormatSVG, FormatPNG, FormatDOT:
		return ext, nil
	case FormatHTML, "htm":
		return FormatHTML, nil
	case "gv":
		return FormatDOT, nil
	}
	return "", errors.Errorf("unknown export format %q", filepath.Ext(path))
}

// ExportOptions are the settings shared by every export format.
type ExportOptions struct {
	Title    string
	GridSize float64
}

// Export renders d to w in the given format.
func Export(w io.Writer, d *pix.Document, format string, opts ExportOptions) error {
	grid := opts.GridSize
	if grid <= 0 {
		grid = pix.DefaultGridSize
	}

	switch format {
	case FormatSVG:
		o := DefaultSVGOptions()
		o.Title, o.GridSize = opts.Title, grid
		return WriteSVG(w, d, o)
	case FormatPNG:
		o := DefaultPNGOptions()
		o.Title, o.GridSize = opts.Title, grid
		return RenderPNG(d, w, o)
	case FormatHTML:
		o := DefaultHTMLOptions()
		if opts.Title != "" {
			o.Title = opts.Title
		}
		o.SVG.GridSize = grid
		return WriteHTML(w, d, o)
	case FormatDOT:
		_, err := io.WriteString(w, GenerateDOT(d, opts.Title))
		return errors.Wrap(err, "write dot")
	}
	return errors.Errorf("unknown export format %q", format)
}
