package cluster

import (
	"context"
	"fmt"

	"github.com/cwbudde/mystream/config"
	"github.com/cwbudde/mystream/engine"
)

// Outcome is what one rank learns from a distributed run.
type Outcome struct {
	Rank     int
	World    int
	Elements int // elements per array over all ranks

	// Local is the engine report of this rank's shard.
	Local *engine.Report

	// Totals is set on rank 0 only.
	Totals []Total
}

// RunRank measures this rank's shard with one local worker and gathers the
// results at rank 0. cfg.Size is the requested size over all ranks; it is
// rounded up to a multiple of world*vector width and split evenly. Every
// local barrier generation is chained to comm.Barrier, so all ranks start
// and stop each timed repetition together.
func RunRank(ctx context.Context, comm Communicator, cfg config.Config, opts ...engine.Option) (*Outcome, error) {
	world := comm.Size()
	total := engine.RoundUp(cfg.Size, world, cfg.VectorWidth)
	if total == 0 {
		return nil, fmt.Errorf("cluster: rank %d: %w: %d elements over %d ranks", comm.Rank(), engine.ErrInsufficientMemory, cfg.Size, world)
	}

	local := cfg
	local.Mode = config.Shared
	local.Workers = 1
	local.Size = total / world

	opts = append(opts, engine.WithBarrierAction(comm.Barrier))
	driver, err := engine.New(local, opts...)
	if err != nil {
		return nil, err
	}
	report, err := driver.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("cluster: rank %d: %w", comm.Rank(), err)
	}

	perRank, err := comm.Gather(ctx, Records(comm.Rank(), report))
	if err != nil {
		return nil, fmt.Errorf("cluster: rank %d: gather: %w", comm.Rank(), err)
	}
	out := &Outcome{Rank: comm.Rank(), World: world, Elements: total, Local: report}
	if comm.Rank() != 0 {
		return out, nil
	}
	if out.Totals, err = Aggregate(perRank); err != nil {
		return nil, err
	}
	return out, nil
}
