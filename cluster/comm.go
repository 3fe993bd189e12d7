package cluster

import "context"

// Communicator connects the ranks of one run.
type Communicator interface {
	// Rank returns the rank of this process, 0 being the coordinator.
	Rank() int
	// Size returns the number of ranks.
	Size() int
	// Barrier returns once every rank has called Barrier the same number
	// of times.
	Barrier(ctx context.Context) error
	// Gather delivers records to rank 0. Rank 0 receives the records of
	// all ranks indexed by rank; other ranks receive nil.
	Gather(ctx context.Context, records []Record) ([][]Record, error)
	// Close releases the connection.
	Close() error
}
