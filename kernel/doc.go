// Package kernel defines the four memory-bound stream kernels and selects an
// implementation for each.
//
//	copy    d[i] = a[i]                          2 streams
//	axpy    d[i] = alpha*a[i] + b[i]             3 streams
//	fma     d[i] = a[i]*b[i] + c[i]              4 streams
//	addmul  d[i] = a[i] + b[i]; c[i] = a[i]*b[i] 4 streams
//
// Kernels process the whole view they are given, never allocate and never
// branch on element values. Apart from addmul writing c, inputs are read
// only.
package kernel
