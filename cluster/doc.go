// Package cluster runs the benchmark as a group of cooperating processes
// ("ranks") and combines their results.
//
// Every rank measures its own shard of the arrays with a single worker. A
// Communicator fences all ranks before and after every timed repetition and
// gathers the per-kernel records at rank 0, where Aggregate sums bandwidth
// across ranks and averages their clock times.
package cluster
