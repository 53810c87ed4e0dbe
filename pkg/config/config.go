// Package config loads gridder run files.
//
// A run file captures one generation run so it can be repeated or shared.
// TOML, YAML and JSON are accepted and picked by file extension:
//
//	# grid.toml
//	seed = 42
//
//	[grid]
//	origin = [500000.0, 5400000.0]
//	num_edge_x = 10
//	dx = 250.0
//	noise_prop = 0.2
//
//	[output]
//	base = "out/grid"
//	formats = ["geojson", "svg"]
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/grid"
)

// File is the content of a run file. Every field is optional; command line
// flags override what the file sets.
type File struct {
	Grid      grid.Params `toml:"grid" yaml:"grid" json:"grid"`
	Seed      *int64      `toml:"seed" yaml:"seed" json:"seed,omitempty"`
	Tolerance float64     `toml:"tolerance" yaml:"tolerance" json:"tolerance,omitempty"`
	Output    Output      `toml:"output" yaml:"output" json:"output"`
	Cache     Cache       `toml:"cache" yaml:"cache" json:"cache"`
	Store     Store       `toml:"store" yaml:"store" json:"store"`
	Server    Server      `toml:"server" yaml:"server" json:"server"`
}

// Output selects where and how results are written.
type Output struct {
	Base     string   `toml:"base" yaml:"base" json:"base,omitempty"`
	Formats  []string `toml:"formats" yaml:"formats" json:"formats,omitempty"`
	Compress bool     `toml:"compress" yaml:"compress" json:"compress,omitempty"`
	Labels   bool     `toml:"labels" yaml:"labels" json:"labels,omitempty"`
}

// Cache configures result caching.
type Cache struct {
	Disabled bool   `toml:"disabled" yaml:"disabled" json:"disabled,omitempty"`
	Redis    string `toml:"redis" yaml:"redis" json:"redis,omitempty"`
}

// Store configures persistence of generated grids.
type Store struct {
	Backend  string `toml:"backend" yaml:"backend" json:"backend,omitempty"` // "", "file" or "mongo"
	Dir      string `toml:"dir" yaml:"dir" json:"dir,omitempty"`
	MongoURI string `toml:"mongo_uri" yaml:"mongo_uri" json:"mongo_uri,omitempty"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr" yaml:"addr" json:"addr,omitempty"`
}

// Load reads a run file. The format follows the extension: .toml, .yaml,
// .yml or .json.
func Load(path string) (*File, error) {
	if err := gerrors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, gerrors.Wrap(gerrors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, &f)
	case ".yaml", ".yml":
		err = decodeYAML(data, &f)
	case ".json":
		err = decodeJSON(data, &f)
	default:
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func decodeTOML(data []byte, f *File) error {
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, f *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeJSON(data []byte, f *File) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(f)
}

// Validate checks the non-grid sections. Grid parameters are checked by
// [grid.Validate] once flags have been merged in.
func (f *File) Validate() error {
	switch f.Store.Backend {
	case "", "file", "mongo":
	default:
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "store.backend %q (want file or mongo)", f.Store.Backend)
	}
	if f.Store.Backend == "mongo" && f.Store.MongoURI == "" {
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
	}
	if !(f.Tolerance >= 0) || math.IsInf(f.Tolerance, 1) {
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "tolerance %v must be a finite number >= 0", f.Tolerance)
	}
	return nil
}
