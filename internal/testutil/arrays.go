package testutil

import (
	"testing"

	"github.com/cwbudde/mystream/stream"
)

// SeededArrays allocates n-element stream arrays and seeds them from the
// initial generator state.
func SeededArrays(t testing.TB, n int) stream.Arrays {
	t.Helper()
	arr, err := stream.AllocArrays(n, stream.DefaultVectorWidth)
	if err != nil {
		t.Fatalf("alloc %d elements: %v", n, err)
	}
	stream.Seed(arr, stream.InitialSeed)
	return arr
}

// Clone returns deep copies of the four arrays.
func Clone(arr stream.Arrays) stream.Arrays {
	return stream.Arrays{
		A: append([]float64(nil), arr.A...),
		B: append([]float64(nil), arr.B...),
		C: append([]float64(nil), arr.C...),
		D: append([]float64(nil), arr.D...),
	}
}

// Fill sets every element of s to v.
func Fill(s []float64, v float64) {
	for i := range s {
		s[i] = v
	}
}
