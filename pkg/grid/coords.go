package grid

import "math/rand/v2"

// MaxNoise is the largest effective noise proportion. Larger NoiseProp values
// are clamped to it so a perturbed point never leaves its lattice cell.
const MaxNoise = 0.45

// EffectiveNoise clamps a noise proportion to [0, MaxNoise].
func EffectiveNoise(noiseProp float64) float64 {
	return max(0, min(noiseProp, MaxNoise))
}

// FuzzRadius returns the maximum per-axis displacement for the given spacing.
func FuzzRadius(dx, dy, noiseProp float64) (rx, ry float64) {
	n := EffectiveNoise(noiseProp)
	return dx * n, dy * n
}

// Coordinates lays out the lattice described by p, which must already have
// passed [Validate]. Points are returned in row-major order with the x index
// varying slower.
//
// When the effective noise is positive each point's x then y are shifted by
// r·(2u−1), u drawn from rng. rng is not touched when the noise is zero; a nil
// rng with positive noise gets a freshly seeded generator.
func Coordinates(p Params, rng *rand.Rand) ([]Point, Shape) {
	shape := Shape{NumVertX: p.NumEdgeX + 1, NumVertY: p.NumEdgeY + 1}

	xs := axis(p.Origin[0], p.Dx, shape.NumVertX)
	ys := axis(p.Origin[1], p.Dy, shape.NumVertY)

	points := make([]Point, 0, shape.Len())
	for _, x := range xs {
		for _, y := range ys {
			points = append(points, Point{X: x, Y: y})
		}
	}

	rx, ry := FuzzRadius(p.Dx, p.Dy, p.NoiseProp)
	if EffectiveNoise(p.NoiseProp) > 0 {
		if rng == nil {
			rng = newRand()
		}
		for k := range points {
			points[k].X += rx * (2*rng.Float64() - 1)
			points[k].Y += ry * (2*rng.Float64() - 1)
		}
	}

	return points, shape
}

// axis returns n values start, start+step, ... computed by multiplication so
// unperturbed coordinates carry no accumulated rounding.
func axis(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for k := range out {
		out[k] = start + float64(k)*step
	}
	return out
}

// newSeededRand returns the PCG generator used for a given seed.
func newSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
