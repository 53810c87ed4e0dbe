// Package grid synthesizes regular orthogonal network topologies.
//
// A grid is a chessboard-style lattice of vertices joined by straight edges
// between lattice neighbours. It is intended as seed input for network
// optimization models that consume vertex and edge identifiers as opaque
// graph keys.
//
// # Pipeline
//
// [Generate] runs four stages in order:
//
//  1. [Validate] rejects malformed parameters before any work is done
//  2. [Coordinates] lays out the lattice, optionally perturbed by noise
//  3. [Edges] connects consecutive lattice points along both axes
//  4. a [Matcher] stamps each edge with its endpoint vertex IDs
//
// # Lattice Order
//
// Vertices are generated with the x index varying slower than the y index.
// The vertex with ID k sits in lattice slot (k / NumVertY, k % NumVertY), so
// reshaping the flat vertex slice into NumVertX rows of NumVertY points
// recovers the lattice. Noise moves points but never changes their slot.
//
// # Noise
//
// With NoiseProp > 0 each coordinate is shifted uniformly within
// ±Dx·min(NoiseProp, [MaxNoise]) (resp. Dy). Values above MaxNoise are clamped,
// not rejected. The random source is injected with [WithSeed] or [WithRand]:
//
//	g, err := grid.Generate(grid.Params{
//	    Origin:    []float64{0, 0},
//	    NumEdgeX:  6,
//	    Dx:        100,
//	    NoiseProp: 0.2,
//	}, grid.WithSeed(42))
//
// # Concurrency
//
// Generate keeps no state between calls. Without an injected source each call
// creates its own generator, so concurrent calls never share draws. A
// *rand.Rand passed through [WithRand] must not be shared across goroutines.
package grid
