package stream

import "fmt"

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns End-Start.
func (r Range) Len() int {
	return r.End - r.Start
}

// String formats the range as [start,end).
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Arrays groups the four stream arrays of one run or one private worker.
// All four have the same length.
type Arrays struct {
	A []float64
	B []float64
	C []float64
	D []float64
}

// AllocArrays allocates four aligned arrays of n elements each.
func AllocArrays(n, vectorWidth int) (Arrays, error) {
	var (
		arr Arrays
		err error
	)
	for _, dst := range []*[]float64{&arr.A, &arr.B, &arr.C, &arr.D} {
		if *dst, err = Alloc(n, vectorWidth); err != nil {
			return Arrays{}, err
		}
	}
	return arr, nil
}

// Len returns the common length of the arrays.
func (a Arrays) Len() int {
	return len(a.D)
}

// Slice returns non-owning views of r in every array.
// The views share memory with a; capacity is clipped to the range so a
// kernel cannot append into a neighbour's elements.
func (a Arrays) Slice(r Range) Arrays {
	return Arrays{
		A: a.A[r.Start:r.End:r.End],
		B: a.B[r.Start:r.End:r.End],
		C: a.C[r.Start:r.End:r.End],
		D: a.D[r.Start:r.End:r.End],
	}
}

// Bytes returns the memory held by the four arrays.
func (a Arrays) Bytes() int64 {
	return 4 * Bytes(a.Len())
}
