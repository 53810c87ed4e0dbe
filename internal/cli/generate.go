package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridder/pkg/config"
	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/graph"
	"github.com/matzehuels/gridder/pkg/grid"
	pkgio "github.com/matzehuels/gridder/pkg/io"
	"github.com/matzehuels/gridder/pkg/pipeline"
	"github.com/matzehuels/gridder/pkg/render"
)

// generateOpts holds the command-line flags for the generate command.
// Flags that were set explicitly override the values of a --config file.
type generateOpts struct {
	config    string
	origin    []float64
	nx, ny    int
	dx, dy    float64
	noise     float64
	epsg      int
	seed      int64
	tolerance float64
	output    string
	formats   string
	compress  bool
	labels    bool
	noCache   bool
	refresh   bool
	redis     string
	store     string
	storeDir  string
	mongoURI  string
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a square grid of vertices and edges",
		Long: `Generate a square lattice of vertices connected to their horizontal and
vertical neighbours, optionally perturbed by random noise.

Outputs are written next to the --output base path:
  json     <base>.json
  geojson  <base>.geojson
  csv      <base>.vertex.csv and <base>.edge.csv
  dot/svg/png  Graphviz drawings with vertices at their coordinates`,
		Example: `  gridder generate --nx 10 --dx 100
  gridder generate --origin 500000,5400000 --nx 20 --dx 250 --noise 0.2 --seed 7 -f geojson,svg -o out/grid
  gridder generate --config grid.toml --compress`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), f, opts.refresh)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.config, "config", "", "run file (.toml, .yaml, .json); flags override its values")
	fl.Float64SliceVar(&opts.origin, "origin", []float64{0, 0}, "lower-left corner as x,y")
	fl.IntVar(&opts.nx, "nx", defaultEdges, "number of edges along x")
	fl.IntVar(&opts.ny, "ny", 0, "number of edges along y (default: nx)")
	fl.Float64Var(&opts.dx, "dx", defaultSpacing, "spacing along x")
	fl.Float64Var(&opts.dy, "dy", 0, "spacing along y (default: dx)")
	fl.Float64Var(&opts.noise, "noise", 0, "noise as a proportion of spacing (clamped to 0.45)")
	fl.IntVar(&opts.epsg, "epsg", int(grid.DefaultCRS), "EPSG code tagged on the output")
	fl.Int64Var(&opts.seed, "seed", 0, "random seed for reproducible noise")
	fl.Float64Var(&opts.tolerance, "tolerance", 0, "coordinate tolerance when matching edges to vertices")
	fl.StringVarP(&opts.output, "output", "o", defaultBase, "output base path (extension is added per format)")
	fl.StringVarP(&opts.formats, "format", "f", "", "output format(s): json (default), geojson, csv, dot, svg, png (comma-separated)")
	fl.BoolVar(&opts.compress, "compress", false, "zstd-compress written files (.zst)")
	fl.BoolVar(&opts.labels, "labels", false, "label vertices in dot/svg/png output")
	fl.BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	fl.BoolVar(&opts.refresh, "refresh", false, "ignore cached results and regenerate")
	fl.StringVar(&opts.redis, "redis", "", "use a Redis cache at this address instead of the local cache")
	fl.StringVar(&opts.store, "store", "", "also store the grid: file or mongo")
	fl.StringVar(&opts.storeDir, "store-dir", "", "directory of the file store (default: XDG data dir)")
	fl.StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string for the mongo store")

	return cmd
}

// resolve merges the run file (if any) with the flags that were set.
func (o *generateOpts) resolve(cmd *cobra.Command) (*config.File, error) {
	f := &config.File{}
	if o.config != "" {
		var err error
		if f, err = config.Load(o.config); err != nil {
			return nil, err
		}
	}

	fl := cmd.Flags()
	set := fl.Changed

	if set("origin") || f.Grid.Origin == nil {
		f.Grid.Origin = o.origin
	}
	if set("nx") || f.Grid.NumEdgeX == 0 {
		f.Grid.NumEdgeX = o.nx
	}
	if set("ny") {
		f.Grid.NumEdgeY = o.ny
	}
	if set("dx") || f.Grid.Dx == 0 {
		f.Grid.Dx = o.dx
	}
	if set("dy") {
		f.Grid.Dy = o.dy
	}
	if set("noise") {
		f.Grid.NoiseProp = o.noise
	}
	if set("epsg") || f.Grid.CRS == 0 {
		f.Grid.CRS = grid.CRS(o.epsg)
	}
	if set("seed") {
		seed := o.seed
		f.Seed = &seed
	}
	if set("tolerance") {
		f.Tolerance = o.tolerance
	}
	if set("output") || f.Output.Base == "" {
		f.Output.Base = o.output
	}
	if set("format") {
		f.Output.Formats = parseFormats(o.formats)
	}
	if set("compress") {
		f.Output.Compress = o.compress
	}
	if set("labels") {
		f.Output.Labels = o.labels
	}
	if set("no-cache") {
		f.Cache.Disabled = o.noCache
	}
	if set("redis") {
		f.Cache.Redis = o.redis
	}
	if set("store") {
		f.Store.Backend = o.store
	}
	if set("store-dir") {
		f.Store.Dir = o.storeDir
	}
	if set("mongo-uri") {
		f.Store.MongoURI = o.mongoURI
	}

	if len(f.Output.Formats) == 0 {
		f.Output.Formats = []string{pipeline.DefaultFormat}
	}
	if err := validateOutputFormats(f.Output.Formats); err != nil {
		return nil, err
	}
	return f, f.Validate()
}

// validateOutputFormats accepts file exports and render formats.
func validateOutputFormats(formats []string) error {
	for _, f := range formats {
		if !pkgio.IsFormat(f) && !render.IsFormat(f) {
			all := append(append([]string{}, pkgio.Formats...), render.Formats...)
			return gerrors.New(gerrors.ErrCodeInvalidFormat,
				"invalid format: %s (must be one of: %s)", f, strings.Join(all, ", "))
		}
	}
	return nil
}

func (c *CLI) runGenerate(ctx context.Context, f *config.File, refresh bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, f.Cache.Disabled, f.Cache.Redis)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := pipeline.Options{
		Params:    f.Grid,
		Seed:      f.Seed,
		Tolerance: f.Tolerance,
		Refresh:   refresh,
		Labels:    f.Output.Labels,
		Logger:    logger,
	}
	if !opts.Deterministic() {
		printWarning("Noise without --seed is not reproducible; result is not cached")
	}

	prog := newProgress(logger)
	g, doc, hit, err := runner.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	prog.done(fmt.Sprintf("Generated %d vertices, %d edges", g.VertexCount(), g.EdgeCount()))

	store, err := newStore(ctx, f.Store.Backend, f.Store.Dir, f.Store.MongoURI)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		doc.ID = graph.NewID()
		if err := store.Save(ctx, doc); err != nil {
			return fmt.Errorf("store grid: %w", err)
		}
	}

	paths, err := writeOutputs(ctx, runner, g, doc, f.Output.Base, f.Output.Formats, f.Output.Compress, opts)
	if err != nil {
		return err
	}

	printSuccess("Grid %s", g.CRS)
	printStats(g.VertexCount(), g.EdgeCount(), g.TotalLength(), hit)
	if doc.ID != "" {
		printKeyValue("Stored", doc.ID)
	}
	for _, p := range paths {
		printFile(p)
	}
	if !containsAny(f.Output.Formats, render.Formats...) && containsAny(f.Output.Formats, pkgio.FormatJSON) {
		printNextStep("Render it", fmt.Sprintf("%s render %s -f svg", appName, pkgio.Paths(pkgio.FormatJSON, f.Output.Base, f.Output.Compress)[0]))
	}
	return nil
}

// writeOutputs writes file exports with pkg/io and renders the rest through
// the runner so renders are cached too.
func writeOutputs(ctx context.Context, runner *pipeline.Runner, g *grid.Grid, doc graph.Document, base string, formats []string, compress bool, opts pipeline.Options) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	var paths, renders []string
	for _, format := range formats {
		if render.IsFormat(format) {
			renders = append(renders, format)
			continue
		}
		written, err := pkgio.Export(doc, format, base, compress)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		paths = append(paths, written...)
	}
	if len(renders) == 0 {
		return paths, nil
	}

	spin := newSpinnerWithContext(ctx, "Rendering "+strings.Join(renders, ", "))
	spin.Start()
	opts.Formats = renders
	artifacts, err := runner.Render(ctx, g, doc, opts)
	if err != nil {
		spin.StopWithError("Rendering failed")
		return nil, fmt.Errorf("render: %w", err)
	}
	spin.Stop()
	written, err := writeArtifacts(base, renders, artifacts, compress)
	return append(paths, written...), err
}

// writeArtifacts writes in-memory artifacts to <base>.<format>, compressed
// to <base>.<format>.zst when compress is set.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte, compress bool) ([]string, error) {
	var paths []string
	for _, format := range formats {
		path := base + "." + format
		data := artifacts[format]
		if compress {
			var err error
			if data, err = pkgio.Compress(data); err != nil {
				return paths, err
			}
			path += pkgio.CompressedExt
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func containsAny(list []string, want ...string) bool {
	for _, w := range want {
		for _, l := range list {
			if l == w {
				return true
			}
		}
	}
	return false
}
