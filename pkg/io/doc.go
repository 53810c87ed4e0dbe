// Package io exports generated grids to files and reads them back.
//
// # Formats
//
//   - json: the [graph.Document] wire format; the only format that can be
//     imported again with [ImportJSON].
//   - geojson: one FeatureCollection with a Point feature per vertex and a
//     LineString feature per edge. Every feature carries a "layer" property
//     ("vertex" or "edge") next to the Vertex/Edge table columns, and the
//     collection carries a "crs" member naming the EPSG code.
//   - csv: two tables, <base>.vertex.csv (Vertex,x,y) and
//     <base>.edge.csv (Edge,Vertex1,Vertex2,length), the sheets a network
//     optimization model reads.
//
// # Compression
//
// Any path ending in ".zst" is written and read through zstd. [Export] adds
// the suffix itself when compression is requested.
//
// # Usage
//
//	paths, err := io.Export(doc, io.FormatCSV, "out/grid", false)
//	// paths = [out/grid.vertex.csv out/grid.edge.csv]
//
//	doc, err := io.ImportJSON("out/grid.json.zst")
package io
