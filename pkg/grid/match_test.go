package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
)

func rawEdge(id int, a, b Point) Edge {
	return Edge{ID: id, Geometry: Segment{A: a, B: b}, Vertex1: Unmatched, Vertex2: Unmatched}
}

func TestCoordMatcherExact(t *testing.T) {
	t.Parallel()

	vertices := []Vertex{{0, Point{0, 0}}, {1, Point{0, 1}}, {2, Point{1, 0}}}
	edges := []Edge{rawEdge(0, Point{0, 0}, Point{0, 1}), rawEdge(1, Point{1, 0}, Point{0, 0})}

	got, err := CoordMatcher{}.Match(vertices, edges)
	require.NoError(t, err)

	assert.Equal(t, 0, got[0].Vertex1)
	assert.Equal(t, 1, got[0].Vertex2)
	assert.Equal(t, 2, got[1].Vertex1)
	assert.Equal(t, 0, got[1].Vertex2)

	assert.Equal(t, Unmatched, edges[0].Vertex1, "input edges must not be modified")
	assert.Equal(t, Unmatched, edges[1].Vertex2, "input edges must not be modified")
}

func TestCoordMatcherNegativeZero(t *testing.T) {
	t.Parallel()

	negZero := math.Copysign(0, -1)
	vertices := []Vertex{{0, Point{0, 0}}, {1, Point{0, 1}}}
	edges := []Edge{rawEdge(0, Point{negZero, 0}, Point{0, 1})}

	got, err := CoordMatcher{}.Match(vertices, edges)
	require.NoError(t, err)
	assert.Equal(t, 0, got[0].Vertex1)
}

func TestCoordMatcherUnmatched(t *testing.T) {
	t.Parallel()

	vertices := []Vertex{{0, Point{0, 0}}, {1, Point{0, 1}}}
	edges := []Edge{rawEdge(0, Point{0, 0}, Point{0, 1.0000001})}

	_, err := CoordMatcher{}.Match(vertices, edges)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmatchedEndpoint))
	assert.Equal(t, gerrors.ErrCodeUnmatched, gerrors.GetCode(err))
	assert.Contains(t, err.Error(), "edge 0 end")
}

func TestCoordMatcherAmbiguous(t *testing.T) {
	t.Parallel()

	vertices := []Vertex{{0, Point{0, 0}}, {1, Point{0, 0}}, {2, Point{1, 0}}}
	edges := []Edge{rawEdge(0, Point{0, 0}, Point{1, 0})}

	_, err := CoordMatcher{}.Match(vertices, edges)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousMatch))
	assert.Equal(t, gerrors.ErrCodeAmbiguousMatch, gerrors.GetCode(err))
	assert.Contains(t, err.Error(), "edge 0 start")
}

func TestCoordMatcherTolerance(t *testing.T) {
	t.Parallel()

	vertices := []Vertex{{0, Point{0.99, 0}}, {1, Point{5, 5}}}

	tests := []struct {
		name    string
		tol     float64
		at      Point
		want    int
		wantErr error
	}{
		{"exact misses drift", 0, Point{0.99 + 1e-9, 0}, 0, ErrUnmatchedEndpoint},
		{"small tolerance absorbs drift", 1e-6, Point{0.99 + 1e-9, 0}, 0, nil},
		{"neighbouring bucket", 1, Point{1.5, 0}, 0, nil},
		{"outside tolerance", 0.1, Point{1.5, 0}, 0, ErrUnmatchedEndpoint},
		{"tolerance spans two vertices", 10, Point{2, 2}, 0, ErrAmbiguousMatch},
		{"drift around far vertex", 0.5, Point{4.7, 5.2}, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := []Edge{rawEdge(0, tt.at, tt.at)}
			got, err := CoordMatcher{Tolerance: tt.tol}.Match(vertices, edges)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got[0].Vertex1)
			assert.Equal(t, tt.want, got[0].Vertex2)
		})
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	g, err := Generate(Params{Origin: []float64{0, 0}, NumEdgeX: 3, NumEdgeY: 2, Dx: 10, Dy: 10})
	require.NoError(t, err)
	require.NoError(t, Verify(g, 0))

	corrupt := func(f func(*Grid)) *Grid {
		c := &Grid{CRS: g.CRS, Shape: g.Shape}
		c.Vertices = append([]Vertex(nil), g.Vertices...)
		c.Edges = append([]Edge(nil), g.Edges...)
		f(c)
		return c
	}

	tests := []struct {
		name string
		g    *Grid
	}{
		{"missing vertex", corrupt(func(c *Grid) { c.Vertices = c.Vertices[1:] })},
		{"sparse vertex id", corrupt(func(c *Grid) { c.Vertices[2].ID = 7 })},
		{"sparse edge id", corrupt(func(c *Grid) { c.Edges[1].ID = 0 })},
		{"unmatched endpoint", corrupt(func(c *Grid) { c.Edges[0].Vertex1 = Unmatched })},
		{"wrong vertex", corrupt(func(c *Grid) { c.Edges[0].Vertex2 = 4 })},
		{"diagonal edge", corrupt(func(c *Grid) {
			c.Edges[0].Vertex2 = 4
			c.Edges[0].Geometry.B = c.Vertices[4].Geometry
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Verify(tt.g, 0))
		})
	}
}
