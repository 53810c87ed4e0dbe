package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/gridder/pkg/graph"
)

// Layer property values of GeoJSON features.
const (
	LayerVertex = "vertex"
	LayerEdge   = "edge"
)

// FeatureCollection converts a document to GeoJSON. Vertex features come
// first, in vertex ID order, followed by edge features in edge ID order.
func FeatureCollection(d graph.Document) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(d.Vertices)+len(d.Edges))

	for _, v := range d.Vertices {
		f := geojson.NewFeature(orb.Point{v.Geometry[0], v.Geometry[1]})
		f.Properties["layer"] = LayerVertex
		f.Properties["Vertex"] = v.Vertex
		fc.Append(f)
	}
	for _, e := range d.Edges {
		f := geojson.NewFeature(orb.LineString{
			{e.Geometry[0][0], e.Geometry[0][1]},
			{e.Geometry[1][0], e.Geometry[1][1]},
		})
		f.Properties["layer"] = LayerEdge
		f.Properties["Edge"] = e.Edge
		f.Properties["Vertex1"] = e.Vertex1
		f.Properties["Vertex2"] = e.Vertex2
		f.Properties["length"] = e.Length
		fc.Append(f)
	}

	fc.ExtraMembers = geojson.Properties{
		"crs": map[string]any{
			"type":       "name",
			"properties": map[string]any{"name": fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", d.EPSG)},
		},
	}
	return fc
}

// WriteGeoJSON writes a document as a GeoJSON FeatureCollection to w.
func WriteGeoJSON(d graph.Document, w io.Writer) error {
	data, err := json.Marshal(FeatureCollection(d))
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}

// ExportGeoJSON writes a document to a GeoJSON file at path.
func ExportGeoJSON(d graph.Document, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteGeoJSON(d, w) })
}
