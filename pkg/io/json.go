package io

import (
	"fmt"
	"io"

	"github.com/matzehuels/gridder/pkg/graph"
)

// WriteJSON encodes a document as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(d graph.Document, w io.Writer) error {
	return graph.WriteDocument(d, w)
}

// ExportJSON writes a document to a JSON file at path, zstd-compressed when
// path ends in .zst.
func ExportJSON(d graph.Document, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(d, w) })
}

// ReadJSON decodes a document from r and verifies that it describes a valid
// grid. ReadJSON does not close r.
func ReadJSON(r io.Reader) (graph.Document, error) {
	d, err := graph.ReadDocument(r)
	if err != nil {
		return graph.Document{}, err
	}
	if _, err := graph.ToGrid(d); err != nil {
		return graph.Document{}, err
	}
	return d, nil
}

// ImportJSON reads a JSON file (plain or .zst) at path and returns the
// decoded document. It returns the same validation errors as [ReadJSON].
func ImportJSON(path string) (graph.Document, error) {
	r, err := open(path)
	if err != nil {
		return graph.Document{}, err
	}
	defer r.Close()
	d, err := ReadJSON(r)
	if err != nil {
		return graph.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
