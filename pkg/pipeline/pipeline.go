// Package pipeline provides the generate → export pipeline for gridder.
//
// This package implements the pipeline used by both the CLI and the HTTP
// API. By centralizing this logic, both entry points validate, cache and
// render identically.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Generate: Validate parameters and build the grid ([grid.Generate])
//  2. Render: Produce output artifacts (JSON, GeoJSON, DOT, SVG, PNG)
//
// Both stages are cached when the result is deterministic, that is when no
// noise is applied or a seed is given.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Params:  grid.Params{Origin: []float64{0, 0}, NumEdgeX: 10, Dx: 100},
//	    Formats: []string{"geojson", "svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridder/pkg/cache"
	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/graph"
	"github.com/matzehuels/gridder/pkg/grid"
)

// Format constants for pipeline artifacts.
const (
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatPNG     = "png"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatJSON

// ValidFormats is the set of artifact formats the pipeline produces.
var ValidFormats = map[string]bool{
	FormatJSON:    true,
	FormatGeoJSON: true,
	FormatDOT:     true,
	FormatSVG:     true,
	FormatPNG:     true,
}

// ContentTypes maps artifact formats to MIME types.
var ContentTypes = map[string]string{
	FormatJSON:    "application/json",
	FormatGeoJSON: "application/geo+json",
	FormatDOT:     "text/vnd.graphviz",
	FormatSVG:     "image/svg+xml",
	FormatPNG:     "image/png",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Generate options
	Params    grid.Params `json:"params"`
	Seed      *int64      `json:"seed,omitempty"`
	Tolerance float64     `json:"tolerance,omitempty"`
	Refresh   bool        `json:"refresh,omitempty"` // Skip cache reads

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Width   float64  `json:"width,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Grid is the generated grid.
	Grid *grid.Grid

	// Document is the serialized grid, without an ID.
	Document graph.Document

	// GridHash is the content hash of Document.
	GridHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VertexCount  int
	EdgeCount    int
	TotalLength  float64
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool // Whether the grid came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return gerrors.New(gerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForGenerate resolves grid defaults and validates generation
// options. Invalid parameters are reported before any work happens.
func (o *Options) ValidateForGenerate() error {
	p, err := grid.Validate(o.Params)
	if err != nil {
		return err
	}
	o.Params = p
	if !nonNegative(o.Tolerance) {
		return gerrors.New(gerrors.ErrCodeInvalidRange, "tolerance = %v (must be a finite number >= 0)", o.Tolerance)
	}
	o.setLogger()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if !nonNegative(o.Width) {
		return gerrors.New(gerrors.ErrCodeInvalidRange, "width = %v (must be a finite number >= 0)", o.Width)
	}
	return ValidateFormats(o.Formats)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// ValidateAndSetDefaults checks the options for the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Deterministic reports whether the options always produce the same grid:
// either no noise is applied or a seed is given. Only deterministic runs are
// cached.
func (o *Options) Deterministic() bool {
	return grid.EffectiveNoise(o.Params.NoiseProp) == 0 || o.Seed != nil
}

// GridOptions returns the [grid.Option]s for these options.
func (o *Options) GridOptions() []grid.Option {
	var opts []grid.Option
	if o.Seed != nil {
		opts = append(opts, grid.WithSeed(uint64(*o.Seed)))
	}
	if o.Tolerance > 0 {
		opts = append(opts, grid.WithMatcher(grid.CoordMatcher{Tolerance: o.Tolerance}))
	}
	return opts
}

// GridKeyOpts returns the cache key inputs for the generate stage.
func (o *Options) GridKeyOpts() cache.GridKeyOpts {
	k := cache.GridKeyOpts{Params: o.Params, Tolerance: o.Tolerance}
	if o.Seed != nil && grid.EffectiveNoise(o.Params.NoiseProp) > 0 {
		k.Seed = *o.Seed
	}
	return k
}

// ArtifactKeyOpts returns the cache key inputs for one artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatDOT, FormatSVG, FormatPNG:
		k.Labels = o.Labels
		k.Width = o.Width
	}
	return k
}

// String describes the options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("%dx%d edges, dx=%g dy=%g noise=%g %s",
		o.Params.NumEdgeX, o.Params.NumEdgeY, o.Params.Dx, o.Params.Dy, o.Params.NoiseProp, o.Params.CRS)
}
