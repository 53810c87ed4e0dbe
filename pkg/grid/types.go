package grid

import (
	"fmt"
	"math"
)

// =============================================================================
// Geometry
// =============================================================================

// Point is a planar coordinate in the grid's reference system.
type Point struct {
	X float64
	Y float64
}

// Segment is a straight line between two points.
type Segment struct {
	A Point
	B Point
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return math.Hypot(s.B.X-s.A.X, s.B.Y-s.A.Y)
}

// CRS is an EPSG-coded planar reference system. It only tags coordinates;
// nothing in this module transforms between systems.
type CRS int

// DefaultCRS is UTM zone 32N, the projection used when none is given.
const DefaultCRS CRS = 32632

// String returns the "EPSG:<code>" form.
func (c CRS) String() string {
	return fmt.Sprintf("EPSG:%d", int(c))
}

// =============================================================================
// Topology
// =============================================================================

// Unmatched marks an edge endpoint that has not been resolved to a vertex.
const Unmatched = -1

// Vertex is a connection point of the network.
type Vertex struct {
	ID       int
	Geometry Point
}

// Edge is a straight connection between two lattice-adjacent vertices.
// Vertex1 and Vertex2 are set by a [Matcher]; they hold [Unmatched] until then.
type Edge struct {
	ID       int
	Geometry Segment
	Vertex1  int
	Vertex2  int
	Length   float64
}

// Shape is the logical size of the vertex lattice.
type Shape struct {
	NumVertX int
	NumVertY int
}

// Len returns the number of lattice slots.
func (s Shape) Len() int { return s.NumVertX * s.NumVertY }

// EdgeCount returns the number of edges a lattice of this shape produces.
func (s Shape) EdgeCount() int {
	if s.NumVertX < 1 || s.NumVertY < 1 {
		return 0
	}
	return s.NumVertX*(s.NumVertY-1) + s.NumVertY*(s.NumVertX-1)
}

// Slot returns the lattice indices (i, j) of the vertex with the given ID.
func (s Shape) Slot(id int) (i, j int) {
	return id / s.NumVertY, id % s.NumVertY
}

// Index returns the vertex ID stored at lattice slot (i, j).
func (s Shape) Index(i, j int) int {
	return i*s.NumVertY + j
}

// Grid is the immutable result of one generation call.
type Grid struct {
	CRS      CRS
	Shape    Shape
	Vertices []Vertex
	Edges    []Edge
}

// VertexCount returns the number of vertices.
func (g *Grid) VertexCount() int { return len(g.Vertices) }

// EdgeCount returns the number of edges.
func (g *Grid) EdgeCount() int { return len(g.Edges) }

// Vertex returns the vertex with the given ID.
func (g *Grid) Vertex(id int) (Vertex, bool) {
	if id < 0 || id >= len(g.Vertices) {
		return Vertex{}, false
	}
	return g.Vertices[id], true
}

// Bounds returns the bounding box of all vertex coordinates.
// An empty grid returns zero points.
func (g *Grid) Bounds() (lo, hi Point) {
	if len(g.Vertices) == 0 {
		return Point{}, Point{}
	}
	lo = g.Vertices[0].Geometry
	hi = lo
	for _, v := range g.Vertices[1:] {
		lo.X = min(lo.X, v.Geometry.X)
		lo.Y = min(lo.Y, v.Geometry.Y)
		hi.X = max(hi.X, v.Geometry.X)
		hi.Y = max(hi.Y, v.Geometry.Y)
	}
	return lo, hi
}

// TotalLength returns the summed length of all edges.
func (g *Grid) TotalLength() float64 {
	var sum float64
	for _, e := range g.Edges {
		sum += e.Length
	}
	return sum
}
