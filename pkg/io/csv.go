package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/gridder/pkg/graph"
)

// Column headers of the exported tables.
var (
	VertexHeader = []string{"Vertex", "x", "y"}
	EdgeHeader   = []string{"Edge", "Vertex1", "Vertex2", "length"}
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteVertexCSV writes the vertex table of d to w.
func WriteVertexCSV(d graph.Document, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(VertexHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, v := range d.Vertices {
		row := []string{strconv.Itoa(v.Vertex), formatFloat(v.Geometry[0]), formatFloat(v.Geometry[1])}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write vertex %d: %w", v.Vertex, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdgeCSV writes the edge table of d to w.
func WriteEdgeCSV(d graph.Document, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EdgeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range d.Edges {
		row := []string{
			strconv.Itoa(e.Edge),
			strconv.Itoa(e.Vertex1),
			strconv.Itoa(e.Vertex2),
			formatFloat(e.Length),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write edge %d: %w", e.Edge, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
