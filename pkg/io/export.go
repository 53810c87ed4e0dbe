package io

import (
	"io"
	"slices"
	"strings"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/graph"
)

// Export formats handled by this package.
const (
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
	FormatCSV     = "csv"
)

// Formats lists the formats [Export] accepts.
var Formats = []string{FormatJSON, FormatGeoJSON, FormatCSV}

// IsFormat reports whether format is handled by [Export].
func IsFormat(format string) bool {
	return slices.Contains(Formats, format)
}

// Paths returns the files [Export] writes for base, without creating them.
func Paths(format, base string, compress bool) []string {
	var paths []string
	switch format {
	case FormatJSON:
		paths = []string{base + ".json"}
	case FormatGeoJSON:
		paths = []string{base + ".geojson"}
	case FormatCSV:
		paths = []string{base + ".vertex.csv", base + ".edge.csv"}
	}
	if compress {
		for i := range paths {
			paths[i] += CompressedExt
		}
	}
	return paths
}

// Export writes d in the given format next to base (a path without
// extension) and returns the written paths.
func Export(d graph.Document, format, base string, compress bool) ([]string, error) {
	if !IsFormat(format) {
		return nil, gerrors.New(gerrors.ErrCodeInvalidFormat,
			"unknown export format %q (want %s)", format, strings.Join(Formats, ", "))
	}
	if err := gerrors.ValidatePath(base); err != nil {
		return nil, err
	}

	paths := Paths(format, base, compress)
	var err error
	switch format {
	case FormatJSON:
		err = ExportJSON(d, paths[0])
	case FormatGeoJSON:
		err = ExportGeoJSON(d, paths[0])
	case FormatCSV:
		err = writeFile(paths[0], func(w io.Writer) error { return WriteVertexCSV(d, w) })
		if err == nil {
			err = writeFile(paths[1], func(w io.Writer) error { return WriteEdgeCSV(d, w) })
		}
	}
	if err != nil {
		return nil, err
	}
	return paths, nil
}
