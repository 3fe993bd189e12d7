package stream

import (
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// ElementSize is the size in bytes of one stream element.
const ElementSize = int(unsafe.Sizeof(float64(0)))

// DefaultVectorWidth is the number of elements kernels process per vector.
// Eight float64 values fill one 64-byte cache line, so ranges that start on a
// multiple of it never share a line with a neighbouring worker.
const DefaultVectorWidth = 8

var (
	// ErrSize reports a negative length or a non-positive vector width.
	ErrSize = errors.New("stream: invalid array size")

	// ErrTooLarge reports a length whose byte size overflows int.
	ErrTooLarge = errors.New("stream: array too large")
)

// Alloc returns a zeroed slice of n elements whose first element is aligned
// to vectorWidth*ElementSize bytes.
func Alloc(n, vectorWidth int) ([]float64, error) {
	if n < 0 || vectorWidth <= 0 {
		return nil, fmt.Errorf("%w: n=%d vector width=%d", ErrSize, n, vectorWidth)
	}
	if n > math.MaxInt/ElementSize-vectorWidth {
		return nil, fmt.Errorf("%w: %d elements", ErrTooLarge, n)
	}

	align := uintptr(vectorWidth * ElementSize)
	buf := make([]float64, n+vectorWidth)

	off := 0
	if rem := uintptr(unsafe.Pointer(unsafe.SliceData(buf))) % align; rem != 0 {
		off = int(align-rem) / ElementSize
	}
	return buf[off : off+n : off+n], nil
}

// Aligned reports whether s starts on a vectorWidth*ElementSize boundary.
// Empty slices are considered aligned.
func Aligned(s []float64, vectorWidth int) bool {
	if len(s) == 0 {
		return true
	}
	align := uintptr(vectorWidth * ElementSize)
	return uintptr(unsafe.Pointer(unsafe.SliceData(s)))%align == 0
}

// Bytes returns the byte size of n elements.
func Bytes(n int) int64 {
	return int64(n) * int64(ElementSize)
}
