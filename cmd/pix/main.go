// Command pix is a CLI tool for working with pix drawings.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
	"github.com/ha1tch/pix-toolkit/pkg/pixfile"
)

// newLogger writes human-readable logs to stderr, leaving stdout for
// command output. DEBUG in the environment lowers the level.
func newLogger() *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if os.Getenv("DEBUG") != "" {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

// cli carries what every subcommand shares.
type cli struct {
	log      *zap.Logger
	gridSize float64
}

func newRootCmd(log *zap.Logger) *cobra.Command {
	c := &cli{log: log}

	root := &cobra.Command{
		Use:   "pix",
		Short: "Inspect, check and export pix drawings",
		Example: `  pix info drawing.pix
  pix validate drawing.pix --strict
  pix export drawing.pix -o drawing.svg
  pix export drawing.pix -o drawing.png --title "Data flow"
  pix normalize drawing.pix --in-place
  pix arrange drawing.pix -o arranged.pix
  pix payload drawing.pix "Build step"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Float64Var(&c.gridSize, "grid", pix.DefaultGridSize, "grid size used for snapping and repairs")

	root.AddCommand(
		c.infoCmd(),
		c.validateCmd(),
		c.exportCmd(),
		c.normalizeCmd(),
		c.arrangeCmd(),
		c.payloadCmd(),
	)
	return root
}

// load reads a drawing and logs any repairs made on the way in.
func (c *cli) load(path string) (*pix.Document, *pixfile.Report, error) {
	doc, report, err := pixfile.ReadFile(path, c.gridSize)
	if err != nil {
		return nil, nil, err
	}
	if report.Repaired() {
		c.log.Warn("document repaired on load",
			zap.String("path", path),
			zap.Strings("dropped_connections", report.DroppedConnections),
			zap.Strings("clamped_rectangles", report.ClampedRectangles),
			zap.Strings("generated_ids", report.GeneratedIDs),
			zap.Strings("duplicate_ids", report.DuplicateIDs))
	}
	c.log.Debug("loaded", zap.String("path", path),
		zap.Int("rectangles", len(doc.Rectangles())),
		zap.Int("connections", len(doc.Connections())))
	return doc, report, nil
}

func main() {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	if err := newRootCmd(log).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
