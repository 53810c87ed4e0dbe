package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/graph"
	pkgio "github.com/matzehuels/gridder/pkg/io"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"json", []string{"json"}},
		{"json, svg,,png", []string{"json", "svg", "png"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseFormats(tt.in), tt.in)
	}
}

func TestValidateOutputFormats(t *testing.T) {
	assert.NoError(t, validateOutputFormats([]string{"json", "geojson", "csv", "dot", "svg", "png"}))

	err := validateOutputFormats([]string{"json", "shp"})
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidFormat))
}

func TestInputBase(t *testing.T) {
	assert.Equal(t, "out/grid", inputBase("out/grid.json"))
	assert.Equal(t, "out/grid", inputBase("out/grid.json.zst"))
	assert.Equal(t, "grid.txt", inputBase("grid.txt"))
}

func TestDisplayURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", displayURL(":8080"))
	assert.Equal(t, "http://127.0.0.1:9000", displayURL("127.0.0.1:9000"))
}

func TestGenerateCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	base := filepath.Join(t.TempDir(), "out", "grid")

	err := execute(t, "generate", "--origin", "0,0", "--nx", "2", "--dx", "100",
		"-f", "json,csv,dot", "-o", base)
	require.NoError(t, err)

	doc, err := pkgio.ImportJSON(base + ".json")
	require.NoError(t, err)
	assert.Len(t, doc.Vertices, 9)
	assert.Len(t, doc.Edges, 12)

	edges, err := os.ReadFile(base + ".edge.csv")
	require.NoError(t, err)
	assert.Equal(t, 13, strings.Count(string(edges), "\n"), "header plus one row per edge")

	dot, err := os.ReadFile(base + ".dot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(dot), "graph G {"))
}

func TestGenerateCompressed(t *testing.T) {
	base := filepath.Join(t.TempDir(), "grid")

	err := execute(t, "generate", "--nx", "1", "--dx", "1", "-f", "geojson,dot", "-o", base,
		"--compress", "--no-cache")
	require.NoError(t, err)

	for _, p := range []string{base + ".geojson.zst", base + ".dot.zst"} {
		data, err := os.ReadFile(p)
		require.NoError(t, err, p)
		raw, err := pkgio.Decompress(data)
		require.NoError(t, err, p)
		assert.NotEmpty(t, raw)
	}
	assert.NoFileExists(t, base+".dot")
}

func TestGenerateWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "grid.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
seed = 3

[grid]
origin = [100.0, 200.0]
num_edge_x = 2
dx = 10.0
noise_prop = 0.2
`), 0o644))

	base := filepath.Join(dir, "grid")
	require.NoError(t, execute(t, "generate", "--config", cfg, "--nx", "3", "-o", base, "--no-cache"))

	doc, err := pkgio.ImportJSON(base + ".json")
	require.NoError(t, err)
	assert.Equal(t, graph.Shape{NumVertX: 4, NumVertY: 4}, doc.Shape, "flag overrides file")
	require.NotNil(t, doc.Seed)
	assert.Equal(t, int64(3), *doc.Seed)
	require.NotNil(t, doc.Params)
	assert.Equal(t, []float64{100, 200}, doc.Params.Origin)
}

func TestGenerateStoresGrid(t *testing.T) {
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "store")

	err := execute(t, "generate", "--nx", "1", "--dx", "1", "-o", filepath.Join(dir, "grid"),
		"--no-cache", "--store", "file", "--store-dir", storeDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(storeDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerateErrors(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "grid")

	err := execute(t, "generate", "--nx", "0", "--dx", "1", "-o", base, "--no-cache")
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidRange), "got %v", err)

	err = execute(t, "generate", "--origin", "1", "--nx", "1", "--dx", "1", "-o", base, "--no-cache")
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeMalformedInput), "got %v", err)

	err = execute(t, "generate", "--nx", "1", "--dx", "1", "-f", "shp", "-o", base, "--no-cache")
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidFormat), "got %v", err)

	err = execute(t, "generate", "--nx", "1", "--dx", "1", "--store", "mongo", "-o", base, "--no-cache")
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidConfig), "got %v", err)

	err = execute(t, "generate", "--tolerance", "NaN", "-o", base, "--no-cache")
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidConfig), "got %v", err)

	err = execute(t, "generate", "--nx", "3000000", "--ny", "3000000", "-o", base, "--no-cache")
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidRange), "got %v", err)

	assert.NoFileExists(t, base+".json", "nothing is written on failure")
}

func TestGenerateDefaults(t *testing.T) {
	base := filepath.Join(t.TempDir(), "grid")
	require.NoError(t, execute(t, "generate", "-o", base, "--no-cache"))

	doc, err := pkgio.ImportJSON(base + ".json")
	require.NoError(t, err)
	assert.Len(t, doc.Vertices, 4)
	require.NotNil(t, doc.Params)
	assert.Equal(t, []float64{0, 0}, doc.Params.Origin)
	assert.Equal(t, 1, doc.Params.NumEdgeX)
	assert.Equal(t, 100.0, doc.Params.Dx)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "grid")
	require.NoError(t, execute(t, "generate", "--nx", "2", "--dx", "5", "-o", base, "--compress", "--no-cache"))

	require.NoError(t, execute(t, "render", base+".json.zst", "-f", "dot", "--labels", "--no-cache"))

	dot, err := os.ReadFile(base + ".dot")
	require.NoError(t, err)
	assert.Contains(t, string(dot), `label="0"`)

	err = execute(t, "render", base+".json.zst", "-f", "json", "--no-cache")
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidFormat), "got %v", err)
}
