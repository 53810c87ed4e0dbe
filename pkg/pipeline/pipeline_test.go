package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gridder/pkg/cache"
	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/graph"
	"github.com/matzehuels/gridder/pkg/grid"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"geojson", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"csv", true}, // file export only
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}

	err := ValidateFormats([]string{"json", "pdf"})
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidFormat))
	assert.NoError(t, ValidateFormats(nil))
}

func TestOptionsDeterministic(t *testing.T) {
	seed := int64(1)
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"no noise", Options{Params: grid.Params{NoiseProp: 0}}, true},
		{"noise without seed", Options{Params: grid.Params{NoiseProp: 0.2}}, false},
		{"noise with seed", Options{Params: grid.Params{NoiseProp: 0.2}, Seed: &seed}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.opts.Deterministic(), tt.name)
	}
}

func TestGridKeyIgnoresSeedWithoutNoise(t *testing.T) {
	a, b := int64(1), int64(2)
	p := grid.Params{Origin: []float64{0, 0}, NumEdgeX: 1, Dx: 1}

	o1 := Options{Params: p, Seed: &a}
	o2 := Options{Params: p, Seed: &b}
	assert.Equal(t, o1.GridKeyOpts(), o2.GridKeyOpts())

	p.NoiseProp = 0.1
	o1.Params, o2.Params = p, p
	assert.NotEqual(t, o1.GridKeyOpts(), o2.GridKeyOpts())
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Labels: true, Width: 300}
	assert.Equal(t, "json", o.ArtifactKeyOpts(FormatJSON).Format)
	assert.False(t, o.ArtifactKeyOpts(FormatJSON).Labels, "labels do not affect data formats")
	assert.True(t, o.ArtifactKeyOpts(FormatSVG).Labels)
	assert.Equal(t, 300.0, o.ArtifactKeyOpts(FormatDOT).Width)
}

// memCache is an in-memory cache.Cache that counts operations.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(ctx, Options{
		Params:  grid.Params{Origin: []float64{0, 0}, NumEdgeX: 2, NumEdgeY: 2, Dx: 100, Dy: 100},
		Formats: []string{FormatJSON, FormatGeoJSON, FormatDOT},
	})
	require.NoError(t, err)

	assert.Equal(t, 9, res.Stats.VertexCount)
	assert.Equal(t, 12, res.Stats.EdgeCount)
	assert.InDelta(t, 1200.0, res.Stats.TotalLength, 1e-9)
	assert.Len(t, res.GridHash, 64)
	require.NotNil(t, res.Document.Params)
	assert.Equal(t, 2, res.Document.Params.NumEdgeY)

	var doc graph.Document
	require.NoError(t, json.Unmarshal(res.Artifacts[FormatJSON], &doc))
	assert.Equal(t, res.Document, doc)

	assert.Contains(t, string(res.Artifacts[FormatGeoJSON]), `"FeatureCollection"`)
	assert.True(t, strings.HasPrefix(string(res.Artifacts[FormatDOT]), "graph G {"))
}

func TestExecuteDefaultsToJSON(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Params: grid.Params{Origin: []float64{0, 0}, NumEdgeX: 1, Dx: 1},
	})
	require.NoError(t, err)
	assert.Len(t, res.Artifacts, 1)
	assert.Contains(t, res.Artifacts, FormatJSON)
}

func TestExecuteInvalid(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	_, err := r.Execute(context.Background(), Options{
		Params: grid.Params{Origin: []float64{0, 0}, NumEdgeX: 0, Dx: 1},
	})
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidRange))

	_, err = r.Execute(context.Background(), Options{
		Params: grid.Params{Origin: []float64{0}, NumEdgeX: 1, Dx: 1},
	})
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeMalformedInput))

	_, err = r.Execute(context.Background(), Options{
		Params:  grid.Params{Origin: []float64{0, 0}, NumEdgeX: 1, Dx: 1},
		Formats: []string{"pdf"},
	})
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidFormat))

	_, err = r.Execute(context.Background(), Options{
		Params: grid.Params{Origin: []float64{0, 0}, NumEdgeX: 2, Dx: 0},
	})
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeAmbiguousMatch))
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	opts := Options{
		Params:  grid.Params{Origin: []float64{0, 0}, NumEdgeX: 3, Dx: 10},
		Formats: []string{FormatJSON, FormatDOT},
	}

	first, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.GenerateHit)
	assert.False(t, first.CacheInfo.RenderHit)

	second, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.GenerateHit)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.Grid, second.Grid)
	assert.Equal(t, first.Artifacts, second.Artifacts)

	refresh := opts
	refresh.Refresh = true
	third, err := r.Execute(ctx, refresh)
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.GenerateHit)
	assert.False(t, third.CacheInfo.RenderHit)
}

func TestExecuteUnseededNoiseNotCached(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Params: grid.Params{Origin: []float64{0, 0}, NumEdgeX: 3, Dx: 10, NoiseProp: 0.3}}

	_, _, hit, err := r.GenerateWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, c.sets)

	seed := int64(4)
	opts.Seed = &seed
	a, _, hit, err := r.GenerateWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.False(t, hit)
	b, doc, hit, err := r.GenerateWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, a, b)
	require.NotNil(t, doc.Seed)
	assert.Equal(t, seed, *doc.Seed)
}

func TestRenderDeduplicatesFormats(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	g, doc, err := r.Generate(ctx, Options{Params: grid.Params{Origin: []float64{0, 0}, NumEdgeX: 1, Dx: 1}})
	require.NoError(t, err)

	out, err := r.Render(ctx, g, doc, Options{Formats: []string{FormatDOT, FormatDOT, FormatJSON}})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestNonFiniteOptionsRejected(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	params := grid.Params{Origin: []float64{0, 0}, NumEdgeX: 1, Dx: 10}

	tests := []struct {
		name string
		opts Options
	}{
		{"nan tolerance", Options{Params: params, Tolerance: math.NaN()}},
		{"inf tolerance", Options{Params: params, Tolerance: math.Inf(1)}},
		{"nan width", Options{Params: params, Formats: []string{FormatSVG}, Width: math.NaN()}},
		{"inf width", Options{Params: params, Formats: []string{FormatSVG}, Width: math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), tt.opts)
			require.Error(t, err)
			assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidRange), "got %v", err)
		})
	}
}

// unkeyable reports every input as impossible to key.
type unkeyable struct{}

func (unkeyable) GridKey(cache.GridKeyOpts) string                 { return "" }
func (unkeyable) ArtifactKey(string, cache.ArtifactKeyOpts) string { return "" }

func TestUnkeyableRunsBypassCache(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, unkeyable{}, nil)

	small := Options{Params: grid.Params{Origin: []float64{0, 0}, NumEdgeX: 1, Dx: 10}, Formats: []string{FormatJSON}}
	large := Options{Params: grid.Params{Origin: []float64{0, 0}, NumEdgeX: 5, Dx: 999}, Formats: []string{FormatJSON}}

	first, err := r.Execute(ctx, small)
	require.NoError(t, err)
	second, err := r.Execute(ctx, large)
	require.NoError(t, err)

	assert.Equal(t, 4, first.Stats.VertexCount)
	assert.Equal(t, 36, second.Stats.VertexCount)
	assert.False(t, second.CacheInfo.GenerateHit)
	assert.False(t, second.CacheInfo.RenderHit)
	assert.Zero(t, c.sets)
}

func TestCachedGridReportsCallerSeed(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, nil)
	params := grid.Params{Origin: []float64{0, 0}, NumEdgeX: 2, Dx: 10}

	seed := int64(9)
	_, _, err := r.Generate(ctx, Options{Params: params, Seed: &seed})
	require.NoError(t, err)

	_, doc, hit, err := r.GenerateWithCacheInfo(ctx, Options{Params: params})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Nil(t, doc.Seed)

	other := int64(1)
	_, doc, hit, err = r.GenerateWithCacheInfo(ctx, Options{Params: params, Seed: &other})
	require.NoError(t, err)
	assert.True(t, hit)
	require.NotNil(t, doc.Seed)
	assert.Equal(t, other, *doc.Seed)
}
