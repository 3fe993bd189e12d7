// Package engine runs stream kernels on a pool of OS-thread-locked workers
// and turns their per-repetition timings into bandwidth results.
//
// A Driver executes the configured kernels strictly one after another. For
// every kernel it starts one goroutine per worker, and every repetition is
// bracketed by two waits on a cyclic Barrier so that all workers start and
// stop their timed region together:
//
//	Await -> clock -> kernel -> clock -> Await -> record -> consume
//
// In shared mode the driver owns four arrays and hands each worker a
// disjoint, contiguous range of them; in private mode each worker allocates
// and seeds its own arrays.
package engine
