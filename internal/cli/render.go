package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/graph"
	pkgio "github.com/matzehuels/gridder/pkg/io"
	"github.com/matzehuels/gridder/pkg/pipeline"
	"github.com/matzehuels/gridder/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output base path
	formats  string  // comma-separated render formats
	labels   bool    // label vertices with their IDs
	width    float64 // drawing width in points
	compress bool    // zstd-compress outputs
	noCache  bool    // disable the result cache
}

// renderCommand creates the render command for drawing a grid file.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [grid.json]",
		Short: "Render a grid file to DOT, SVG or PNG",
		Long: `Render a grid JSON file (plain or .zst) with Graphviz. Vertices are pinned
at their coordinates, scaled to --width.`,
		Example: `  gridder render grid.json
  gridder render out/grid.json.zst -f svg,png --labels -o out/drawing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input path without extension)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "label vertices with their IDs")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "drawing width in points (default 720)")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "zstd-compress written files (.zst)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	formats := parseFormats(opts.formats)
	if len(formats) == 0 {
		formats = []string{render.FormatSVG}
	}
	for _, f := range formats {
		if !render.IsFormat(f) {
			return gerrors.New(gerrors.ErrCodeInvalidFormat,
				"invalid format: %s (must be one of: %s)", f, strings.Join(render.Formats, ", "))
		}
	}

	doc, err := pkgio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	g, err := graph.ToGrid(doc)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	logger.Debug("loaded grid", "path", input, "vertices", g.VertexCount(), "edges", g.EdgeCount())

	runner, err := c.newRunner(ctx, opts.noCache, "")
	if err != nil {
		return err
	}
	defer runner.Close()

	base := opts.output
	if base == "" {
		base = inputBase(input)
	}

	prog := newProgress(logger)
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, g, doc, pipeline.Options{
		Formats: formats,
		Labels:  opts.labels,
		Width:   opts.width,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	prog.done("Rendered " + strings.Join(formats, ", "))

	paths, err := writeArtifacts(base, formats, artifacts, opts.compress)
	if err != nil {
		return err
	}

	printSuccess("Rendered grid %s", g.CRS)
	printStats(g.VertexCount(), g.EdgeCount(), g.TotalLength(), hit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// inputBase strips the .zst and .json extensions from a grid file path.
func inputBase(path string) string {
	path = strings.TrimSuffix(path, pkgio.CompressedExt)
	return strings.TrimSuffix(path, ".json")
}
