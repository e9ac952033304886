package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
	"github.com/ha1tch/pix-toolkit/pkg/pixfile"
)

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show drawing information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, report, err := c.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var collections, payloads int
			for _, r := range doc.Rectangles() {
				if r.Kind == pix.KindCollection {
					collections++
				}
				if r.Payload != "" {
					payloads++
				}
			}
			styles := map[pix.LineStyle]int{}
			for _, conn := range doc.Connections() {
				styles[conn.LineStyle]++
			}

			fmt.Fprintf(out, "Version:     %s\n", report.Version)
			if report.Created != "" {
				fmt.Fprintf(out, "Created:     %s\n", report.Created)
			}
			fmt.Fprintf(out, "Rectangles:  %d (%d collections, %d with payload)\n",
				len(doc.Rectangles()), collections, payloads)
			fmt.Fprintf(out, "Connections: %d (solid %d, dashed %d, thick-dotted %d)\n",
				len(doc.Connections()), styles[pix.LineSolid], styles[pix.LineDashed], styles[pix.LineThickDotted])
			if b, ok := pixfile.Extent(doc, c.gridSize, pix.DefaultLabelMetrics()); ok {
				fmt.Fprintf(out, "Extent:      %g,%g %gx%g\n", b.X, b.Y, b.Width, b.Height)
			}
			if report.Repaired() {
				fmt.Fprintf(out, "Repairs:     %d dropped, %d clamped, %d ids generated, %d duplicates\n",
					len(report.DroppedConnections), len(report.ClampedRectangles),
					len(report.GeneratedIDs), len(report.DuplicateIDs))
			}

			var names []string
			for _, r := range doc.Rectangles() {
				if r.Name != "" {
					names = append(names, r.Name)
				}
			}
			if len(names) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Names:       %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func (c *cli) validateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a drawing and report suspicious structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, report, err := c.load(args[0])
			if err != nil {
				return err
			}
			if err := doc.Validate(c.gridSize); err != nil {
				return errors.Wrap(err, "validation failed")
			}

			out := cmd.OutOrStdout()
			warnings := doc.Analyse()
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s: %s\n", w.Type, w.Message)
			}
			if strict && (len(warnings) > 0 || report.Repaired()) {
				return errors.Errorf("%s: %d warnings", args[0], len(warnings))
			}

			fmt.Fprintf(out, "%s: valid drawing with %d rectangles, %d connections\n",
				args[0], len(doc.Rectangles()), len(doc.Connections()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings and load repairs as errors")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var output, format, title string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a drawing as SVG, PNG, HTML or Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				if output == "" {
					return errors.New("either --output or --format is required")
				}
				f, err := pixfile.FormatFromPath(output)
				if err != nil {
					return err
				}
				format = f
			}
			doc, _, err := c.load(args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			var buf bytes.Buffer
			opts := pixfile.ExportOptions{Title: title, GridSize: c.gridSize}
			if err := pixfile.Export(&buf, doc, format, opts); err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), output, buf.Bytes()); err != nil {
				return err
			}
			c.log.Debug("exported", zap.String("format", format), zap.String("output", output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format from extension); stdout if empty")
	cmd.Flags().StringVarP(&format, "format", "f", "", "export format: svg, png, html or dot")
	cmd.Flags().StringVarP(&title, "title", "t", "", "title shown above the drawing")
	return cmd
}

func (c *cli) normalizeCmd() *cobra.Command {
	var output string
	var inPlace bool
	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Rewrite a drawing with every field present and load repairs applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := c.load(args[0])
			if err != nil {
				return err
			}
			if inPlace {
				output = args[0]
			}
			var buf bytes.Buffer
			if err := pixfile.Write(&buf, doc); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; stdout if empty")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "overwrite the input file")
	return cmd
}

func (c *cli) arrangeCmd() *cobra.Command {
	var output string
	var inPlace bool
	cmd := &cobra.Command{
		Use:   "arrange <file>",
		Short: "Lay a drawing out in layers following its connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := c.load(args[0])
			if err != nil {
				return err
			}
			moved := pix.Arrange(doc, pix.DefaultArrangeOptions(c.gridSize))
			c.log.Info("arranged", zap.String("path", args[0]), zap.Int("moved", len(moved)))
			if inPlace {
				output = args[0]
			}
			var buf bytes.Buffer
			if err := pixfile.Write(&buf, doc); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; stdout if empty")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "overwrite the input file")
	return cmd
}

func (c *cli) payloadCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "payload <file> <name>",
		Short: "Print the payload of a named rectangle or connection label",
		Long: `Print the payload of the first rectangle with the given name, or
failing that the first connection with the given label. $$name$$ tokens
are expanded once, the same way the editor's copy does.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := c.load(args[0])
			if err != nil {
				return err
			}
			payload, ok := pix.Resolve(doc, args[1])
			if !ok {
				return errors.Errorf("no rectangle or connection named %q", args[1])
			}
			if !raw {
				for _, tok := range pix.UnresolvedTokens(doc, payload) {
					c.log.Warn("unresolved token", zap.String("token", tok))
				}
				payload = pix.Substitute(doc, payload)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), payload)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the payload without expanding tokens")
	return cmd
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
