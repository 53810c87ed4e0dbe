// Package graph provides the serialization format for generated grids.
//
// This package defines the canonical wire format for gridder's output, used
// for JSON files, API responses, caching and MongoDB storage.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory
// [grid.Grid] and external formats:
//
//   - [Document]: Serialization type (this package)
//   - pkg/grid.Grid: Internal representation
//
// Use [FromGrid]/[ToGrid] to convert between them.
//
// # Document Layout
//
// Records mirror the Vertex and Edge tables consumed by network
// optimization models:
//
//	{
//	  "id": "2f0c...",
//	  "epsg": 32632,
//	  "shape": {"num_vert_x": 2, "num_vert_y": 2},
//	  "vertices": [{"geometry": [0, 0], "Vertex": 0}, ...],
//	  "edges": [{"geometry": [[0, 0], [0, 50]], "Edge": 0, "Vertex1": 0, "Vertex2": 1, "length": 50}, ...]
//	}
//
// Common operations:
//
//	doc := graph.FromGrid(g)                 // Grid → Document
//	graph.WriteFile(doc, "grid.json")        // Document → File
//	doc, _ = graph.ReadFile("grid.json")     // File → Document
//	g, _ = graph.ToGrid(doc)                 // Document → Grid (verified)
//
// # Concurrency
//
// All functions are safe for concurrent use on distinct documents.
package graph
