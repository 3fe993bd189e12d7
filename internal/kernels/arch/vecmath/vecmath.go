// Package vecmath backs the stream kernels with the SIMD block routines of
// github.com/cwbudde/algo-vecmath.
//
// Only the kernels that map onto a single pass of a vecmath routine are
// provided. Axpy and AddMul would need two passes over memory, which
// changes the traffic the bandwidth formula assumes, so those stay with
// the generic backend.
package vecmath

import (
	algovecmath "github.com/cwbudde/algo-vecmath"
)

// Copy performs dst[i] = src[i] with the runtime's vectorised memmove.
func Copy(dst, src []float64) {
	if len(src) != len(dst) {
		panic("kernel: slice length mismatch")
	}
	copy(dst, src)
}

// MulAdd performs dst[i] = a[i]*b[i] + c[i].
func MulAdd(dst, a, b, c []float64) {
	algovecmath.MulAddBlock(dst, a, b, c)
}
