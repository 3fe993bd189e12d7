// Package generic implements the stream kernels as plain Go loops.
//
// Each loop reslices its inputs to the destination length up front so the
// compiler can drop bounds checks; the bodies never branch on element values.
package generic

const errLength = "kernel: slice length mismatch"

// Copy performs dst[i] = src[i].
func Copy(dst, src []float64) {
	if len(src) != len(dst) {
		panic(errLength)
	}
	src = src[:len(dst)]
	for i := range dst {
		dst[i] = src[i]
	}
}

// Axpy performs dst[i] = alpha*x[i] + y[i].
func Axpy(dst, x, y []float64, alpha float64) {
	if len(x) != len(dst) || len(y) != len(dst) {
		panic(errLength)
	}
	x = x[:len(dst)]
	y = y[:len(dst)]
	for i := range dst {
		dst[i] = alpha*x[i] + y[i]
	}
}

// MulAdd performs dst[i] = a[i]*b[i] + c[i].
func MulAdd(dst, a, b, c []float64) {
	if len(a) != len(dst) || len(b) != len(dst) || len(c) != len(dst) {
		panic(errLength)
	}
	a = a[:len(dst)]
	b = b[:len(dst)]
	c = c[:len(dst)]
	for i := range dst {
		dst[i] = a[i]*b[i] + c[i]
	}
}

// AddMul performs sum[i] = a[i] + b[i] and prod[i] = a[i] * b[i] in one pass.
func AddMul(sum, prod, a, b []float64) {
	if len(prod) != len(sum) || len(a) != len(sum) || len(b) != len(sum) {
		panic(errLength)
	}
	prod = prod[:len(sum)]
	a = a[:len(sum)]
	b = b[:len(sum)]
	for i := range sum {
		x, y := a[i], b[i]
		sum[i] = x + y
		prod[i] = x * y
	}
}
