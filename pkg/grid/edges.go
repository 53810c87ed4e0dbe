package grid

import gerrors "github.com/matzehuels/gridder/pkg/errors"

// Reshape arranges a flat point slice into shape.NumVertX rows of
// shape.NumVertY points. Rows alias the input slice.
func Reshape(points []Point, shape Shape) ([][]Point, error) {
	if shape.NumVertX < 1 || shape.NumVertY < 1 || len(points) != shape.Len() {
		return nil, gerrors.Wrap(gerrors.ErrCodeInternal, ErrShapeMismatch,
			"%d points for shape %dx%d", len(points), shape.NumVertX, shape.NumVertY)
	}
	rows := make([][]Point, shape.NumVertX)
	for i := range rows {
		rows[i] = points[i*shape.NumVertY : (i+1)*shape.NumVertY : (i+1)*shape.NumVertY]
	}
	return rows, nil
}

// Edges connects lattice neighbours in a chessboard manner.
//
// The first pass walks every row of the lattice and joins consecutive points;
// the second pass does the same on the transposed lattice. Segments carry
// their endpoints by value.
func Edges(lattice [][]Point) []Segment {
	segs := consecutivePairs(nil, lattice)
	return consecutivePairs(segs, transpose(lattice))
}

func consecutivePairs(dst []Segment, rows [][]Point) []Segment {
	for _, row := range rows {
		for k := 1; k < len(row); k++ {
			dst = append(dst, Segment{A: row[k-1], B: row[k]})
		}
	}
	return dst
}

func transpose(m [][]Point) [][]Point {
	if len(m) == 0 {
		return nil
	}
	out := make([][]Point, len(m[0]))
	for j := range out {
		out[j] = make([]Point, len(m))
		for i := range m {
			out[j][i] = m[i][j]
		}
	}
	return out
}
