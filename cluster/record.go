package cluster

import (
	"errors"
	"fmt"

	"github.com/cwbudde/mystream/engine"
	"github.com/cwbudde/mystream/kernel"
	"github.com/cwbudde/mystream/stats"
)

var (
	// ErrIncomplete reports a rank that did not deliver its records or a
	// connection that failed before the run finished.
	ErrIncomplete = errors.New("cluster: incomplete results")

	// ErrProtocol reports a malformed, duplicated or unexpected message.
	ErrProtocol = errors.New("cluster: protocol violation")
)

// Record is the result of one kernel on one rank.
type Record struct {
	Rank          int
	Kernel        kernel.Kind
	ClockMS       float64 // mean repetition time
	Bandwidth     float64 // bytes per second
	Consume       float64
	StreamedBytes float64
}

// Records converts a local engine report into records of rank.
func Records(rank int, report *engine.Report) []Record {
	out := make([]Record, len(report.Results))
	for i, res := range report.Results {
		out[i] = Record{
			Rank:          rank,
			Kernel:        res.Kernel,
			ClockMS:       res.MeanMS,
			Bandwidth:     res.Bandwidth,
			Consume:       res.Consume,
			StreamedBytes: res.StreamedBytes,
		}
	}
	return out
}

// Total is the combined result of one kernel over all ranks.
type Total struct {
	Kernel         kernel.Kind
	Ranks          int
	TotalBandwidth float64 // sum over ranks
	MeanClockMS    float64 // mean over ranks
	StdDevClockMS  float64 // population std dev over ranks
	MinClockMS     float64
	MaxClockMS     float64
	Consume        float64
	StreamedBytes  float64
}

// Aggregate combines the records gathered from every rank. perRank[r] must
// hold the records of rank r, and every rank must report the same kernels
// in the same order.
//
// Bandwidth is summed because the ranks move disjoint memory concurrently.
// Clock time is averaged because the ranks run the same repetitions side by
// side.
func Aggregate(perRank [][]Record) ([]Total, error) {
	if len(perRank) == 0 || len(perRank[0]) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrIncomplete)
	}

	order := perRank[0]
	seen := make(map[kernel.Kind]bool, len(order))
	for _, rec := range order {
		if seen[rec.Kernel] {
			return nil, fmt.Errorf("%w: rank 0 reports %s twice", ErrProtocol, rec.Kernel)
		}
		seen[rec.Kernel] = true
	}

	totals := make([]Total, len(order))
	clocks := make([][]float64, len(order))
	for i, rec := range order {
		totals[i].Kernel = rec.Kernel
		clocks[i] = make([]float64, 0, len(perRank))
	}
	for rank, records := range perRank {
		if len(records) < len(order) {
			return nil, fmt.Errorf("%w: rank %d reported %d of %d kernels", ErrIncomplete, rank, len(records), len(order))
		}
		if len(records) > len(order) {
			return nil, fmt.Errorf("%w: rank %d reported %d records, want %d", ErrProtocol, rank, len(records), len(order))
		}
		for i, rec := range records {
			if rec.Rank != rank {
				return nil, fmt.Errorf("%w: record of rank %d delivered as rank %d", ErrProtocol, rec.Rank, rank)
			}
			if rec.Kernel != totals[i].Kernel {
				return nil, fmt.Errorf("%w: rank %d record %d is %s, want %s", ErrProtocol, rank, i, rec.Kernel, totals[i].Kernel)
			}
			t := &totals[i]
			t.Ranks++
			t.TotalBandwidth += rec.Bandwidth
			t.MeanClockMS += rec.ClockMS
			clocks[i] = append(clocks[i], rec.ClockMS)
			t.Consume += rec.Consume
			t.StreamedBytes += rec.StreamedBytes
		}
	}
	for i := range totals {
		t := &totals[i]
		t.MeanClockMS /= float64(t.Ranks)
		spread := stats.Calculate(clocks[i])
		t.StdDevClockMS = spread.StdDev
		t.MinClockMS = spread.Min
		t.MaxClockMS = spread.Max
	}
	return totals, nil
}
