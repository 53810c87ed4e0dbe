package grid

import "errors"

// Sentinel errors. Returned errors are *errors.Error values from
// github.com/matzehuels/gridder/pkg/errors whose cause is one of these,
// so both errors.Is and code checks work.
var (
	// ErrMalformedOrigin is returned when the origin is not exactly two
	// finite numbers.
	ErrMalformedOrigin = errors.New("origin must have exactly two finite numeric components")

	// ErrInvalidRange is returned for edge counts below 1, lattices over
	// MaxVertices, negative spacing or noise and coordinates that overflow.
	ErrInvalidRange = errors.New("parameter out of range")

	// ErrUnmatchedEndpoint is returned when an edge endpoint matches no vertex.
	ErrUnmatchedEndpoint = errors.New("edge endpoint matches no vertex")

	// ErrAmbiguousMatch is returned when an edge endpoint matches more than
	// one vertex.
	ErrAmbiguousMatch = errors.New("edge endpoint matches more than one vertex")

	// ErrShapeMismatch is returned when a point slice does not fill its shape.
	ErrShapeMismatch = errors.New("points do not fill lattice shape")
)
