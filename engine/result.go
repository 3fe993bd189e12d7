package engine

import (
	"github.com/cwbudde/mystream/config"
	"github.com/cwbudde/mystream/internal/cpu"
	"github.com/cwbudde/mystream/kernel"
	"github.com/cwbudde/mystream/stats"
	"github.com/cwbudde/mystream/stream"
)

// Result is the measurement of one kernel.
type Result struct {
	Kernel  kernel.Kind
	Backend string // implementation that ran, e.g. "generic"
	Streams int

	// Samples holds, per repetition, the mean elapsed time of all workers
	// in milliseconds. Summary describes Samples.
	Samples []float64
	Summary stats.Summary

	MeanMS        float64
	Bandwidth     float64 // bytes per second
	Consume       float64
	StreamedBytes float64 // over all repetitions
}

// Report is the outcome of a Driver run.
type Report struct {
	Mode        config.Mode
	Workers     int
	Requested   int // elements per array before rounding
	Elements    int // elements per array after rounding
	VectorWidth int
	Repetitions int

	SIMD           cpu.SIMDLevel
	Backend        kernel.Backend
	LogicalCPUs    int
	AllocatedBytes int64

	Results []Result
}

// Consume returns the checksum summed over all kernels.
func (r *Report) Consume() float64 {
	var sum float64
	for _, res := range r.Results {
		sum += res.Consume
	}
	return sum
}

// Result returns the result of k, if it ran.
func (r *Report) Result(k kernel.Kind) (Result, bool) {
	for _, res := range r.Results {
		if res.Kernel == k {
			return res, true
		}
	}
	return Result{}, false
}

// collect aggregates the worker samples of one kernel. The sample of a
// repetition is the mean over workers.
func collect(impl kernel.Impl, tasks []*task, elements, repetitions int) Result {
	samples := make([]float64, repetitions)
	perWorker := make([]float64, len(tasks))
	var sum float64
	for r := range samples {
		for w, t := range tasks {
			perWorker[w] = t.samples[r]
		}
		samples[r] = stats.Average(perWorker)
	}
	for _, t := range tasks {
		sum += t.consume
	}

	summary := stats.Calculate(samples)
	streams := impl.Kind.Streams()
	workers := len(tasks)
	return Result{
		Kernel:        impl.Kind,
		Backend:       impl.Backend,
		Streams:       streams,
		Samples:       samples,
		Summary:       summary,
		MeanMS:        summary.Mean,
		Bandwidth:     stats.Bandwidth(workers, streams, elements/workers, summary.Mean, stream.ElementSize),
		Consume:       sum,
		StreamedBytes: stats.StreamedBytes(streams, elements, stream.ElementSize, repetitions),
	}
}
