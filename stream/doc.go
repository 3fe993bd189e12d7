// Package stream owns the float64 arrays a bandwidth run streams through.
//
// A run works on four equal-length arrays: A, B and C are inputs seeded
// from a deterministic generator, D is the output and starts at zero.
// Arrays are allocated aligned to the kernel vector width. Workers never own
// arrays in shared mode; they receive Range views produced by Arrays.Slice.
package stream
