// Package pkg provides the core libraries for gridder.
//
// # Overview
//
// Gridder builds square lattices of vertices joined to their horizontal and
// vertical neighbours, optionally perturbed by bounded random noise, and
// exports them for network models and GIS tools. The pkg directory is
// organized as follows:
//
//  1. [grid] - Domain logic (validation, coordinates, edges, matching)
//  2. [graph] - The serialized document form of a grid
//  3. [io] and [render] - File exports and Graphviz drawings
//  4. [cache], [storage], [config], [observability] - Infrastructure
//  5. [pipeline] - Orchestration (generate → export) with caching
//
// # Architecture
//
// The typical data flow through gridder:
//
//	Params (flags, run file, HTTP body)
//	         ↓
//	    [grid] package (validate → coordinates → edges → match)
//	         ↓
//	    [graph] package (Document with IDs and lengths)
//	         ↓
//	    [io] / [render] packages
//	         ↓
//	    JSON/GeoJSON/CSV/DOT/SVG/PNG output
//
// # Quick Start
//
//	g, err := grid.Generate(grid.Params{
//	    Origin:   []float64{500000, 5400000},
//	    NumEdgeX: 10,
//	    Dx:       250,
//	}, grid.WithSeed(7))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := graph.FromGrid(g)
//	paths, err := io.Export(doc, io.FormatGeoJSON, "out/grid", false)
//
// [grid]: github.com/matzehuels/gridder/pkg/grid
// [graph]: github.com/matzehuels/gridder/pkg/graph
// [io]: github.com/matzehuels/gridder/pkg/io
// [render]: github.com/matzehuels/gridder/pkg/render
// [cache]: github.com/matzehuels/gridder/pkg/cache
// [storage]: github.com/matzehuels/gridder/pkg/storage
// [config]: github.com/matzehuels/gridder/pkg/config
// [observability]: github.com/matzehuels/gridder/pkg/observability
// [pipeline]: github.com/matzehuels/gridder/pkg/pipeline
package pkg
