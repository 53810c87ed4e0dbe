package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/grid"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFormats(t *testing.T) {
	seed := int64(42)
	want := &File{
		Grid: grid.Params{
			Origin:    []float64{500000, 5400000},
			NumEdgeX:  10,
			Dx:        250,
			NoiseProp: 0.2,
			CRS:       25832,
		},
		Seed:   &seed,
		Output: Output{Base: "out/grid", Formats: []string{"geojson", "svg"}, Compress: true},
		Store:  Store{Backend: "file", Dir: "grids"},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "run.toml",
			content: `seed = 42

[grid]
origin = [500000.0, 5400000.0]
num_edge_x = 10
dx = 250.0
noise_prop = 0.2
epsg = 25832

[output]
base = "out/grid"
formats = ["geojson", "svg"]
compress = true

[store]
backend = "file"
dir = "grids"
`,
		},
		{
			name: "yaml",
			file: "run.yaml",
			content: `seed: 42
grid:
  origin: [500000, 5400000]
  num_edge_x: 10
  dx: 250
  noise_prop: 0.2
  epsg: 25832
output:
  base: out/grid
  formats: [geojson, svg]
  compress: true
store:
  backend: file
  dir: grids
`,
		},
		{
			name: "json",
			file: "run.json",
			content: `{"seed": 42,
"grid": {"origin": [500000, 5400000], "num_edge_x": 10, "dx": 250, "noise_prop": 0.2, "epsg": 25832},
"output": {"base": "out/grid", "formats": ["geojson", "svg"], "compress": true},
"store": {"backend": "file", "dir": "grids"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	got, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, &File{}, got)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode gerrors.Code
	}{
		{"unknown toml key", "a.toml", "[grid]\nnum_edges = 3\n", gerrors.ErrCodeInvalidConfig},
		{"unknown yaml key", "a.yaml", "grid:\n  nx: 3\n", gerrors.ErrCodeInvalidConfig},
		{"unknown json key", "a.json", `{"grid": {"nx": 3}}`, gerrors.ErrCodeInvalidConfig},
		{"bad toml", "a.toml", "seed = = 1", gerrors.ErrCodeInvalidConfig},
		{"unsupported extension", "a.ini", "seed=1", gerrors.ErrCodeInvalidConfig},
		{"unknown backend", "a.toml", "[store]\nbackend = \"s3\"\n", gerrors.ErrCodeInvalidConfig},
		{"mongo without uri", "a.toml", "[store]\nbackend = \"mongo\"\n", gerrors.ErrCodeInvalidConfig},
		{"negative tolerance", "a.yaml", "tolerance: -1\n", gerrors.ErrCodeInvalidConfig},
		{"nan tolerance", "a.toml", "tolerance = nan\n", gerrors.ErrCodeInvalidConfig},
		{"infinite tolerance", "a.yaml", "tolerance: .inf\n", gerrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, gerrors.GetCode(err), "got %v", err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Equal(t, gerrors.ErrCodeFileNotFound, gerrors.GetCode(err))

	_, err = Load("")
	assert.Equal(t, gerrors.ErrCodeInvalidPath, gerrors.GetCode(err))
}
