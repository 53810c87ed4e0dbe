package grid

import (
	"math"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
)

// MinEdges is the smallest number of edges allowed along either axis.
const MinEdges = 1

// MaxVertices bounds the number of vertices in one grid.
const MaxVertices = 1 << 22

// Params are the generation parameters of a grid.
//
// Zero values select defaults: NumEdgeY falls back to NumEdgeX, Dy falls back
// to Dx and CRS falls back to [DefaultCRS].
type Params struct {
	Origin    []float64 `json:"origin" bson:"origin" toml:"origin" yaml:"origin"`
	NumEdgeX  int       `json:"num_edge_x" bson:"num_edge_x" toml:"num_edge_x" yaml:"num_edge_x"`
	NumEdgeY  int       `json:"num_edge_y,omitempty" bson:"num_edge_y" toml:"num_edge_y" yaml:"num_edge_y"`
	Dx        float64   `json:"dx" bson:"dx" toml:"dx" yaml:"dx"`
	Dy        float64   `json:"dy,omitempty" bson:"dy" toml:"dy" yaml:"dy"`
	NoiseProp float64   `json:"noise_prop,omitempty" bson:"noise_prop" toml:"noise_prop" yaml:"noise_prop"`
	CRS       CRS       `json:"epsg,omitempty" bson:"epsg" toml:"epsg" yaml:"epsg"`
}

// WithDefaults returns a copy of p with zero-valued optional fields resolved.
// The origin slice is copied so callers may reuse theirs.
func (p Params) WithDefaults() Params {
	if p.NumEdgeY == 0 {
		p.NumEdgeY = p.NumEdgeX
	}
	if p.Dy == 0 {
		p.Dy = p.Dx
	}
	if p.CRS == 0 {
		p.CRS = DefaultCRS
	}
	if p.Origin != nil {
		p.Origin = append([]float64(nil), p.Origin...)
	}
	return p
}

// Validate resolves defaults and checks p. It returns the resolved
// parameters, or an error before any generation work happens.
//
// The origin check comes first and reports ErrCodeMalformedInput; range
// checks report ErrCodeInvalidRange.
func Validate(p Params) (Params, error) {
	p = p.WithDefaults()

	if len(p.Origin) != 2 {
		return Params{}, gerrors.Wrap(gerrors.ErrCodeMalformedInput, ErrMalformedOrigin,
			"origin has %d components", len(p.Origin))
	}
	for i, c := range p.Origin {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return Params{}, gerrors.Wrap(gerrors.ErrCodeMalformedInput, ErrMalformedOrigin,
				"origin[%d] = %v", i, c)
		}
	}

	if p.NumEdgeX < MinEdges || p.NumEdgeY < MinEdges {
		return Params{}, gerrors.Wrap(gerrors.ErrCodeInvalidRange, ErrInvalidRange,
			"num_edge_x=%d, num_edge_y=%d (each must be >= %d)", p.NumEdgeX, p.NumEdgeY, MinEdges)
	}

	if p.NumEdgeX >= MaxVertices || p.NumEdgeY >= MaxVertices ||
		p.NumEdgeX+1 > MaxVertices/(p.NumEdgeY+1) {
		return Params{}, gerrors.Wrap(gerrors.ErrCodeInvalidRange, ErrInvalidRange,
			"num_edge_x=%d, num_edge_y=%d exceeds %d vertices", p.NumEdgeX, p.NumEdgeY, MaxVertices)
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"dx", p.Dx},
		{"dy", p.Dy},
		{"noise_prop", p.NoiseProp},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return Params{}, gerrors.Wrap(gerrors.ErrCodeInvalidRange, ErrInvalidRange,
				"%s = %v (must be a finite number >= 0)", f.name, f.v)
		}
	}

	if math.IsInf(extent(p.Origin[0], p.NumEdgeX, p.Dx), 0) ||
		math.IsInf(extent(p.Origin[1], p.NumEdgeY, p.Dy), 0) {
		return Params{}, gerrors.Wrap(gerrors.ErrCodeInvalidRange, ErrInvalidRange,
			"coordinates overflow float64 (origin=%v, dx=%v, dy=%v)", p.Origin, p.Dx, p.Dy)
	}

	if p.CRS < 0 {
		return Params{}, gerrors.Wrap(gerrors.ErrCodeInvalidRange, ErrInvalidRange,
			"epsg = %d (must be positive)", int(p.CRS))
	}

	return p, nil
}

// extent is the farthest coordinate reachable along one axis, noise included.
func extent(origin float64, edges int, step float64) float64 {
	return math.Abs(origin) + float64(edges)*step*(1+MaxNoise)
}
