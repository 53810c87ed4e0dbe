package graph

import (
	"github.com/google/uuid"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/grid"
)

// =============================================================================
// Document - Grid Serialization
// =============================================================================

// Document is the canonical serialization format for generated grids.
// Used for API responses, storage, caching, and file exchange.
//
// Documents round-trip: FromGrid → Marshal → Unmarshal → ToGrid yields a grid
// equal to the original.
type Document struct {
	ID       string         `json:"id,omitempty" bson:"_id,omitempty"`
	EPSG     int            `json:"epsg" bson:"epsg"`
	Shape    Shape          `json:"shape" bson:"shape"`
	Params   *grid.Params   `json:"params,omitempty" bson:"params,omitempty"`
	Seed     *int64         `json:"seed,omitempty" bson:"seed,omitempty"` // Only set for seeded noise
	Vertices []VertexRecord `json:"vertices" bson:"vertices"`
	Edges    []EdgeRecord   `json:"edges" bson:"edges"`
}

// Shape is the lattice size of a document.
type Shape struct {
	NumVertX int `json:"num_vert_x" bson:"num_vert_x"`
	NumVertY int `json:"num_vert_y" bson:"num_vert_y"`
}

// VertexRecord is one row of the vertex table.
type VertexRecord struct {
	Geometry [2]float64 `json:"geometry" bson:"geometry"`
	Vertex   int        `json:"Vertex" bson:"Vertex"`
}

// EdgeRecord is one row of the edge table.
type EdgeRecord struct {
	Geometry [2][2]float64 `json:"geometry" bson:"geometry"`
	Edge     int           `json:"Edge" bson:"Edge"`
	Vertex1  int           `json:"Vertex1" bson:"Vertex1"`
	Vertex2  int           `json:"Vertex2" bson:"Vertex2"`
	Length   float64       `json:"length" bson:"length"`
}

// NewID returns a fresh random document ID.
func NewID() string { return uuid.NewString() }

// CRS returns the document's reference system.
func (d *Document) CRS() grid.CRS { return grid.CRS(d.EPSG) }

// =============================================================================
// Grid ↔ Document Conversion
// =============================================================================

// FromGrid converts a grid to its serialization format. The result has no ID;
// callers that persist it assign one with [NewID].
func FromGrid(g *grid.Grid) Document {
	doc := Document{
		EPSG:     int(g.CRS),
		Shape:    Shape{NumVertX: g.Shape.NumVertX, NumVertY: g.Shape.NumVertY},
		Vertices: make([]VertexRecord, len(g.Vertices)),
		Edges:    make([]EdgeRecord, len(g.Edges)),
	}
	for i, v := range g.Vertices {
		doc.Vertices[i] = VertexRecord{
			Geometry: [2]float64{v.Geometry.X, v.Geometry.Y},
			Vertex:   v.ID,
		}
	}
	for i, e := range g.Edges {
		doc.Edges[i] = EdgeRecord{
			Geometry: [2][2]float64{
				{e.Geometry.A.X, e.Geometry.A.Y},
				{e.Geometry.B.X, e.Geometry.B.Y},
			},
			Edge:    e.ID,
			Vertex1: e.Vertex1,
			Vertex2: e.Vertex2,
			Length:  e.Length,
		}
	}
	return doc
}

// ToGrid converts a document back to a grid and verifies its structure.
// Documents that were edited by hand or truncated are rejected with
// ErrCodeInvalidFormat.
func ToGrid(d Document) (*grid.Grid, error) {
	g := &grid.Grid{
		CRS:      grid.CRS(d.EPSG),
		Shape:    grid.Shape{NumVertX: d.Shape.NumVertX, NumVertY: d.Shape.NumVertY},
		Vertices: make([]grid.Vertex, len(d.Vertices)),
		Edges:    make([]grid.Edge, len(d.Edges)),
	}
	if g.CRS == 0 {
		g.CRS = grid.DefaultCRS
	}
	for i, v := range d.Vertices {
		g.Vertices[i] = grid.Vertex{
			ID:       v.Vertex,
			Geometry: grid.Point{X: v.Geometry[0], Y: v.Geometry[1]},
		}
	}
	for i, e := range d.Edges {
		g.Edges[i] = grid.Edge{
			ID: e.Edge,
			Geometry: grid.Segment{
				A: grid.Point{X: e.Geometry[0][0], Y: e.Geometry[0][1]},
				B: grid.Point{X: e.Geometry[1][0], Y: e.Geometry[1][1]},
			},
			Vertex1: e.Vertex1,
			Vertex2: e.Vertex2,
			Length:  e.Length,
		}
	}
	if err := grid.Verify(g, 0); err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidFormat, err, "document %q", d.ID)
	}
	return g, nil
}
