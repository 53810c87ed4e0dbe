package grid

import (
	"fmt"
	"math/rand/v2"
)

// Option configures a [Generate] call.
type Option func(*config)

type config struct {
	rng     *rand.Rand
	matcher Matcher
}

// WithSeed makes noise reproducible: equal seeds and parameters yield equal
// coordinates.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.rng = newSeededRand(seed) }
}

// WithRand injects the random source used for noise. A nil source is ignored.
func WithRand(rng *rand.Rand) Option {
	return func(c *config) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithMatcher replaces the default exact [CoordMatcher]. A nil matcher is
// ignored.
func WithMatcher(m Matcher) Option {
	return func(c *config) {
		if m != nil {
			c.matcher = m
		}
	}
}

// Generate creates a square grid of vertices and edges.
//
// Parameters are validated before any work happens. Vertices get IDs in
// lattice order, edges get IDs in synthesis order, and every edge leaves with
// Vertex1 and Vertex2 resolved by the configured [Matcher].
func Generate(p Params, opts ...Option) (*Grid, error) {
	p, err := Validate(p)
	if err != nil {
		return nil, err
	}

	cfg := config{matcher: CoordMatcher{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	points, shape := Coordinates(p, cfg.rng)
	lattice, err := Reshape(points, shape)
	if err != nil {
		return nil, err
	}
	segs := Edges(lattice)

	vertices := make([]Vertex, len(points))
	for k, pt := range points {
		vertices[k] = Vertex{ID: k, Geometry: pt}
	}

	edges := make([]Edge, len(segs))
	for k, s := range segs {
		edges[k] = Edge{
			ID:       k,
			Geometry: s,
			Vertex1:  Unmatched,
			Vertex2:  Unmatched,
			Length:   s.Length(),
		}
	}

	matched, err := cfg.matcher.Match(vertices, edges)
	if err != nil {
		return nil, fmt.Errorf("match vertices and edges: %w", err)
	}

	return &Grid{
		CRS:      p.CRS,
		Shape:    shape,
		Vertices: vertices,
		Edges:    matched,
	}, nil
}
