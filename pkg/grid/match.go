package grid

import (
	"errors"
	"math"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
)

// Matcher resolves raw edge endpoints to vertex IDs.
//
// Implementations return a new edge slice with Vertex1 and Vertex2 set and
// must not modify their inputs. An endpoint that matches no vertex or more
// than one vertex is a hard failure.
type Matcher interface {
	Match(vertices []Vertex, edges []Edge) ([]Edge, error)
}

// CoordMatcher matches endpoints to vertices by coordinate equality.
//
// With Tolerance 0 coordinates must be bit-for-bit equal (±0 compare equal).
// With a positive Tolerance a vertex matches when both |Δx| and |Δy| are at
// most Tolerance.
type CoordMatcher struct {
	Tolerance float64
}

// Match implements [Matcher].
func (m CoordMatcher) Match(vertices []Vertex, edges []Edge) ([]Edge, error) {
	idx := newCoordIndex(vertices, m.Tolerance)

	out := make([]Edge, len(edges))
	for k, e := range edges {
		v1, err := idx.resolve(e.Geometry.A)
		if err != nil {
			return nil, gerrors.Wrap(gerrors.GetCode(err), errors.Unwrap(err),
				"edge %d start (%g, %g): %s", e.ID, e.Geometry.A.X, e.Geometry.A.Y, gerrors.UserMessage(err))
		}
		v2, err := idx.resolve(e.Geometry.B)
		if err != nil {
			return nil, gerrors.Wrap(gerrors.GetCode(err), errors.Unwrap(err),
				"edge %d end (%g, %g): %s", e.ID, e.Geometry.B.X, e.Geometry.B.Y, gerrors.UserMessage(err))
		}
		e.Vertex1, e.Vertex2 = v1, v2
		out[k] = e
	}
	return out, nil
}

// coordIndex is built once per Match call.
type coordIndex struct {
	tol     float64
	exact   map[Point][]int
	buckets map[[2]int64][]Vertex
}

func newCoordIndex(vertices []Vertex, tol float64) *coordIndex {
	idx := &coordIndex{tol: tol}
	if tol <= 0 {
		idx.exact = make(map[Point][]int, len(vertices))
		for _, v := range vertices {
			idx.exact[v.Geometry] = append(idx.exact[v.Geometry], v.ID)
		}
		return idx
	}
	idx.buckets = make(map[[2]int64][]Vertex, len(vertices))
	for _, v := range vertices {
		b := idx.bucket(v.Geometry)
		idx.buckets[b] = append(idx.buckets[b], v)
	}
	return idx
}

func (idx *coordIndex) bucket(p Point) [2]int64 {
	return [2]int64{int64(math.Floor(p.X / idx.tol)), int64(math.Floor(p.Y / idx.tol))}
}

func (idx *coordIndex) resolve(p Point) (int, error) {
	var ids []int
	if idx.exact != nil {
		ids = idx.exact[p]
	} else {
		b := idx.bucket(p)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for _, v := range idx.buckets[[2]int64{b[0] + dx, b[1] + dy}] {
					if math.Abs(v.Geometry.X-p.X) <= idx.tol && math.Abs(v.Geometry.Y-p.Y) <= idx.tol {
						ids = append(ids, v.ID)
					}
				}
			}
		}
	}

	switch len(ids) {
	case 1:
		return ids[0], nil
	case 0:
		return Unmatched, gerrors.Wrap(gerrors.ErrCodeUnmatched, ErrUnmatchedEndpoint, "no candidate vertex")
	default:
		return Unmatched, gerrors.Wrap(gerrors.ErrCodeAmbiguousMatch, ErrAmbiguousMatch,
			"%d candidate vertices %v", len(ids), ids)
	}
}

// Verify checks the structural invariants of g: dense IDs, edge endpoints that
// coincide with the referenced vertices within tol, and edges that only join
// lattice neighbours. It is used on grids read back from storage.
func Verify(g *Grid, tol float64) error {
	if len(g.Vertices) != g.Shape.Len() {
		return gerrors.New(gerrors.ErrCodeInvalidInput,
			"%d vertices for shape %dx%d", len(g.Vertices), g.Shape.NumVertX, g.Shape.NumVertY)
	}
	for k, v := range g.Vertices {
		if v.ID != k {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "vertex at position %d has id %d", k, v.ID)
		}
	}

	near := func(a, b Point) bool {
		return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
	}

	for k, e := range g.Edges {
		if e.ID != k {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "edge at position %d has id %d", k, e.ID)
		}
		v1, ok1 := g.Vertex(e.Vertex1)
		v2, ok2 := g.Vertex(e.Vertex2)
		if !ok1 || !ok2 {
			return gerrors.Wrap(gerrors.ErrCodeUnmatched, ErrUnmatchedEndpoint,
				"edge %d references vertices %d, %d", e.ID, e.Vertex1, e.Vertex2)
		}
		if !near(v1.Geometry, e.Geometry.A) || !near(v2.Geometry, e.Geometry.B) {
			return gerrors.New(gerrors.ErrCodeInvalidInput,
				"edge %d endpoints do not coincide with vertices %d, %d", e.ID, e.Vertex1, e.Vertex2)
		}
		i1, j1 := g.Shape.Slot(e.Vertex1)
		i2, j2 := g.Shape.Slot(e.Vertex2)
		if abs(i1-i2)+abs(j1-j2) != 1 {
			return gerrors.New(gerrors.ErrCodeInvalidInput,
				"edge %d joins non-adjacent slots (%d,%d) and (%d,%d)", e.ID, i1, j1, i2, j2)
		}
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
