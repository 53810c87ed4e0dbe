package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gridder/pkg/cache"
	"github.com/matzehuels/gridder/pkg/graph"
	"github.com/matzehuels/gridder/pkg/grid"
	pkgio "github.com/matzehuels/gridder/pkg/io"
	"github.com/matzehuels/gridder/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeGrid     = "grid"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Generate
	start := time.Now()
	g, doc, hit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Grid = g
	result.Document = doc
	result.GridHash = documentHash(doc)
	result.Stats.GenerateTime = time.Since(start)
	result.Stats.VertexCount = g.VertexCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.TotalLength = g.TotalLength()
	result.CacheInfo.GenerateHit = hit

	r.Logger.Info("generated grid",
		"vertices", g.VertexCount(),
		"edges", g.EdgeCount(),
		"cached", hit,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo builds the grid, consulting the cache for
// deterministic options, and reports whether the cache was hit.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*grid.Grid, graph.Document, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, graph.Document{}, false, err
	}

	cacheKey := r.Keyer.GridKey(opts.GridKeyOpts())
	cacheable := opts.Deterministic() && cacheKey != ""

	if cacheable && !opts.Refresh {
		if doc, ok := r.cachedDocument(ctx, cacheKey); ok {
			if g, err := graph.ToGrid(doc); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeGrid)
				// Zero-noise keys ignore the seed, so report the caller's.
				doc.Seed = opts.Seed
				return g, doc, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeGrid)
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, opts.Params.NumEdgeX, opts.Params.NumEdgeY)
	start := time.Now()
	g, err := grid.Generate(opts.Params, opts.GridOptions()...)
	if err != nil {
		hooks.OnGenerateComplete(ctx, 0, 0, time.Since(start), err)
		return nil, graph.Document{}, false, err
	}
	hooks.OnGenerateComplete(ctx, g.VertexCount(), g.EdgeCount(), time.Since(start), nil)
	opts.Logger.Debug("generated lattice", "params", opts.String(), "duration", time.Since(start))

	doc := graph.FromGrid(g)
	params := opts.Params
	doc.Params = &params
	doc.Seed = opts.Seed

	if cacheable {
		r.storeDocument(ctx, cacheKey, doc)
	}
	return g, doc, false, nil
}

// Generate is a convenience wrapper that discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (*grid.Grid, graph.Document, error) {
	g, doc, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return g, doc, err
}

func (r *Runner) cachedDocument(ctx context.Context, key string) (graph.Document, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return graph.Document{}, false
	}
	if !hit {
		return graph.Document{}, false
	}
	raw, err := pkgio.Decompress(data)
	if err != nil {
		return graph.Document{}, false
	}
	doc, err := graph.UnmarshalDocument(raw)
	if err != nil {
		return graph.Document{}, false
	}
	return doc, true
}

func (r *Runner) storeDocument(ctx context.Context, key string, doc graph.Document) {
	raw, err := graph.MarshalDocument(doc)
	if err != nil {
		return
	}
	data, err := pkgio.Compress(raw)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLGrid); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeGrid, len(data))
}

// RenderWithCacheInfo produces all requested artifacts, rendering missing
// formats concurrently, and reports whether every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *grid.Grid, doc graph.Document, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	gridHash := documentHash(doc)
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string

	for _, format := range opts.Formats {
		if _, dup := artifacts[format]; dup {
			continue
		}
		key := r.artifactKey(gridHash, opts, format)
		if key == "" {
			missing = append(missing, format)
			continue
		}
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit && !opts.Refresh {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, missing)
	start := time.Now()

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for _, format := range missing {
		eg.Go(func() error {
			data, err := RenderArtifact(egCtx, g, doc, format, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	err := eg.Wait()
	hooks.OnExportComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for _, format := range missing {
		key := r.artifactKey(gridHash, opts, format)
		if key == "" {
			continue
		}
		if err := r.Cache.Set(ctx, key, artifacts[format], cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(artifacts[format]))
		}
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *grid.Grid, doc graph.Document, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, doc, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// artifactKey returns "" when doc or opts cannot be keyed.
func (r *Runner) artifactKey(gridHash string, opts Options, format string) string {
	if gridHash == "" {
		return ""
	}
	return r.Keyer.ArtifactKey(gridHash, opts.ArtifactKeyOpts(format))
}

// documentHash hashes the ID-less JSON form of doc.
func documentHash(doc graph.Document) string {
	doc.ID = ""
	data, err := graph.MarshalDocument(doc)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
