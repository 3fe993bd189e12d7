package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/mystream/internal/clock"
	"github.com/cwbudde/mystream/kernel"
	"github.com/cwbudde/mystream/stream"
)

// job describes one kernel execution shared by all workers.
type job struct {
	kind        kernel.Kind
	run         kernel.Func
	params      kernel.Params
	drift       float64
	repetitions int
	pin         bool
}

// task is the state of one worker for one kernel.
type task struct {
	id   int
	view stream.Arrays

	// prepare, if set, produces view on the worker's own thread before the
	// first repetition. Private mode allocates and seeds here.
	prepare func() (stream.Arrays, error)

	samples []float64     // elapsed ms per repetition
	consume float64       // checksum of sampled elements
	last    kernel.Params // parameters of the final repetition
}

// runKernel runs j on every task concurrently and returns the first error.
// All workers share barrier; a failing worker breaks it so the others stop.
func runKernel(ctx context.Context, j job, tasks []*task, barrier *Barrier) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		g.Go(func() error {
			if err := t.run(ctx, j, barrier); err != nil {
				barrier.Break(err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func (t *task) run(ctx context.Context, j job, barrier *Barrier) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if j.pin {
		if err := pinThread(t.id % runtime.NumCPU()); err != nil {
			return err
		}
	}
	if t.prepare != nil {
		view, err := t.prepare()
		if err != nil {
			return err
		}
		t.view = view
	}

	t.samples = make([]float64, j.repetitions)
	gen := stream.NewGenerator(stream.InitialSeed + uint32(t.id))
	touches := j.kind.Touches()
	p := j.params

	for r := 0; r < j.repetitions; r++ {
		if err := barrier.Await(ctx); err != nil {
			return err
		}
		start, err := clock.Now()
		if err != nil {
			return err
		}
		j.run(t.view, p)
		end, err := clock.Now()
		if err != nil {
			return err
		}
		if err := barrier.Await(ctx); err != nil {
			return err
		}

		t.samples[r] = clock.Milliseconds(start, end)
		t.consume += consume(t.view, touches, gen)
		t.last = p
		p.Alpha *= j.drift
	}
	return nil
}

// consume reads one generator-chosen element of every array in touches so
// the kernel results are observed and cannot be elided.
func consume(v stream.Arrays, touches kernel.Touch, gen *stream.Generator) float64 {
	n := v.Len()
	if n == 0 {
		return 0
	}
	var sum float64
	if touches&kernel.TouchA != 0 {
		sum += v.A[gen.Index(n)]
	}
	if touches&kernel.TouchB != 0 {
		sum += v.B[gen.Index(n)]
	}
	if touches&kernel.TouchC != 0 {
		sum += v.C[gen.Index(n)]
	}
	if touches&kernel.TouchD != 0 {
		sum += v.D[gen.Index(n)]
	}
	return sum
}
