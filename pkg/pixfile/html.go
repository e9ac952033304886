package pixfile

import (
	"html/template"
	"io"

	"github.com/pkg/errors"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// HTMLOptions controls HTML export.
type HTMLOptions struct {
	Title string
	SVG   SVGOptions
}

// DefaultHTMLOptions returns sensible defaults.
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{Title: "Pix Drawing", SVG: DefaultSVGOptions()}
}

type htmlEntity struct {
	Kind        string
	Name        string
	Description string
	Payload     string
}

var htmlPage = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; color: #222; }
.drawing { border: 1px solid #ccc; display: inline-block; }
table { border-collapse: collapse; margin-top: 20px; }
th, td { border: 1px solid #ddd; padding: 4px 8px; text-align: left; vertical-align: top; }
pre { margin: 0; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="drawing">{{.Drawing}}</div>
{{- if .Entities}}
<table>
<tr><th>Kind</th><th>Name</th><th>Description</th><th>Payload</th></tr>
{{- range .Entities}}
<tr><td>{{.Kind}}</td><td>{{.Name}}</td><td>{{.Description}}</td><td><pre>{{.Payload}}</pre></td></tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

// WriteHTML renders a document as an HTML page: the SVG drawing followed by
// a table of every named or annotated entity with its payload expanded.
func WriteHTML(w io.Writer, d *pix.Document, opts HTMLOptions) error {
	var entities []htmlEntity
	for _, r := range d.Rectangles() {
		if r.Name == "" && r.Description == "" && r.Payload == "" {
			continue
		}
		entities = append(entities, htmlEntity{
			Kind:        string(r.Kind),
			Name:        r.Name,
			Description: r.Description,
			Payload:     pix.Substitute(d, r.Payload),
		})
	}
	for _, c := range d.Connections() {
		if c.Label == "" && c.Description == "" && c.Payload == "" {
			continue
		}
		entities = append(entities, htmlEntity{
			Kind:        "connection",
			Name:        c.Label,
			Description: c.Description,
			Payload:     pix.Substitute(d, c.Payload),
		})
	}

	data := struct {
		Title    string
		Drawing  template.HTML
		Entities []htmlEntity
	}{
		Title: opts.Title,
		// GenerateSVG escapes every document string it emits.
		Drawing:  template.HTML(GenerateSVG(d, opts.SVG)),
		Entities: entities,
	}
	if err := htmlPage.Execute(w, data); err != nil {
		return errors.Wrap(err, "render html")
	}
	return nil
}
