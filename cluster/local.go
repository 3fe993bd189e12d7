package cluster

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwbudde/mystream/engine"
)

type localHub struct {
	barrier *engine.Barrier

	mu    sync.Mutex
	slots [][]Record
}

type localComm struct {
	hub  *localHub
	rank int
}

// NewLocal returns size communicators that connect goroutines of one
// process. Element r has rank r.
func NewLocal(size int) []Communicator {
	hub := &localHub{
		barrier: engine.NewBarrier(size, nil),
		slots:   make([][]Record, size),
	}
	comms := make([]Communicator, size)
	for r := range comms {
		comms[r] = &localComm{hub: hub, rank: r}
	}
	return comms
}

func (c *localComm) Rank() int { return c.rank }
func (c *localComm) Size() int { return len(c.hub.slots) }

func (c *localComm) Barrier(ctx context.Context) error {
	if err := c.hub.barrier.Await(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrIncomplete, err)
	}
	return nil
}

func (c *localComm) Gather(ctx context.Context, records []Record) ([][]Record, error) {
	c.hub.mu.Lock()
	c.hub.slots[c.rank] = append([]Record(nil), records...)
	c.hub.mu.Unlock()

	if err := c.Barrier(ctx); err != nil {
		return nil, err
	}
	var out [][]Record
	if c.rank == 0 {
		c.hub.mu.Lock()
		out = make([][]Record, len(c.hub.slots))
		copy(out, c.hub.slots)
		c.hub.mu.Unlock()
	}
	// Slots may be reused once rank 0 has taken its copy.
	if err := c.Barrier(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// Close breaks the shared barrier so ranks still waiting for this one fail
// instead of blocking.
func (c *localComm) Close() error {
	c.hub.barrier.Break(fmt.Errorf("rank %d closed", c.rank))
	return nil
}
