package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"runtime"

	"github.com/cwbudde/mystream/config"
	"github.com/cwbudde/mystream/internal/clock"
	"github.com/cwbudde/mystream/internal/cpu"
	"github.com/cwbudde/mystream/internal/sysmem"
	"github.com/cwbudde/mystream/kernel"
	"github.com/cwbudde/mystream/stream"
)

var (
	// ErrInsufficientMemory reports a working set larger than physical
	// memory.
	ErrInsufficientMemory = errors.New("engine: insufficient memory")

	// ErrValidation reports kernel output that disagrees with the kernel
	// definition.
	ErrValidation = errors.New("engine: validation failed")
)

// maxElements is the largest array length whose four arrays can be sized in
// an int byte count.
const maxElements = math.MaxInt / (4 * stream.ElementSize)

// releaseMemory returns unreachable private arrays to the runtime between
// kernels.
var releaseMemory = runtime.GC

// Driver runs a configured sequence of kernels.
type Driver struct {
	cfg      config.Config
	workers  int
	elements int

	logger *log.Logger
	action func(context.Context) error
	retain bool
	arrays stream.Arrays
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets a logger for progress messages. Nil disables logging.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithBarrierAction runs fn once per barrier generation, after the last
// local worker arrived and before any is released. A failing fn aborts the
// run.
func WithBarrierAction(fn func(context.Context) error) Option {
	return func(d *Driver) { d.action = fn }
}

// WithRetainArrays keeps the shared arrays after Run for inspection through
// Arrays.
func WithRetainArrays() Option {
	return func(d *Driver) { d.retain = true }
}

// New validates cfg and prepares a driver for it. The requested size is
// rounded up to a multiple of workers*vector width. Distributed runs go
// through the cluster package, which drives one shared-mode Driver per rank.
func New(cfg config.Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == config.Distributed {
		return nil, fmt.Errorf("%w: the engine runs shared or private mode, got %s", config.ErrInvalid, cfg.Mode)
	}

	d := &Driver{
		cfg:      cfg,
		workers:  cfg.Workers,
		elements: RoundUp(cfg.Size, cfg.Workers, cfg.VectorWidth),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Elements returns the rounded array length.
func (d *Driver) Elements() int {
	return d.elements
}

// Arrays returns the shared arrays of the last run when WithRetainArrays was
// given. The zero Arrays is returned otherwise.
func (d *Driver) Arrays() stream.Arrays {
	return d.arrays
}

func (d *Driver) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

// Run executes every configured kernel in order and returns their results.
// The context bounds the whole run; cancelling it breaks the current
// barrier and Run returns the cause.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	cfg := d.cfg
	n := d.elements

	if err := clock.Check(); err != nil {
		return nil, err
	}
	if n <= 0 || n > maxElements {
		return nil, fmt.Errorf("%w: %d elements per array exceed the address space", ErrInsufficientMemory, cfg.Size)
	}
	need := stream.Bytes(n) * 4
	if !sysmem.Fits(uint64(need)) {
		total, _ := sysmem.Total()
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientMemory, need, total)
	}
	ranges, err := Partition(n, d.workers, cfg.VectorWidth)
	if err != nil {
		return nil, err
	}

	features := cpu.DetectFeatures()
	report := &Report{
		Mode:           cfg.Mode,
		Workers:        d.workers,
		Requested:      cfg.Size,
		Elements:       n,
		VectorWidth:    cfg.VectorWidth,
		Repetitions:    cfg.Repetitions,
		SIMD:           features.Best(),
		Backend:        cfg.Backend,
		LogicalCPUs:    features.LogicalCPUs,
		AllocatedBytes: need,
	}
	if cfg.Backend == kernel.Generic {
		report.SIMD = cpu.SIMDNone
	}

	var shared stream.Arrays
	if cfg.Mode == config.Shared {
		if shared, err = stream.AllocArrays(n, cfg.VectorWidth); err != nil {
			return nil, err
		}
		stream.Seed(shared, stream.InitialSeed)
	}

	for i, k := range cfg.Kernels {
		impl, err := kernel.Select(k, cfg.Backend)
		if err != nil {
			return nil, err
		}
		if cfg.Mode == config.Shared && i > 0 && cfg.Kernels[i-1].WritesC() {
			stream.ReseedC(shared, stream.InitialSeed)
		}

		tasks := d.tasks(ranges, shared)
		j := job{
			kind:        k,
			run:         impl.Run,
			params:      cfg.Params(),
			drift:       cfg.Drift,
			repetitions: cfg.Repetitions,
			pin:         cfg.Pin,
		}
		d.logf("running %s (%s) on %d workers, %d repetitions", k, impl.Backend, d.workers, cfg.Repetitions)
		if err := runKernel(ctx, j, tasks, NewBarrier(d.workers, d.action)); err != nil {
			return nil, fmt.Errorf("engine: %s: %w", k, err)
		}

		if cfg.Verify {
			for _, t := range tasks {
				if err := kernel.Verify(k, t.view, t.last); err != nil {
					return nil, fmt.Errorf("%w: worker %d: %w", ErrValidation, t.id, err)
				}
			}
		}

		res := collect(impl, tasks, n, cfg.Repetitions)
		d.logf("%s: mean %.3f ms, %.2f GB/s", k, res.MeanMS, res.Bandwidth/1e9)
		report.Results = append(report.Results, res)

		// Collect this kernel's private arrays before the next kernel's
		// workers allocate theirs, so the heap never holds two working
		// sets at once.
		if cfg.Mode == config.Private {
			clear(tasks)
			releaseMemory()
		}
	}

	if d.retain {
		d.arrays = shared
	}
	return report, nil
}

// tasks builds one task per range. With shared arrays each task views its
// range; otherwise each task allocates and seeds private arrays of the same
// length on its own thread.
func (d *Driver) tasks(ranges []stream.Range, shared stream.Arrays) []*task {
	tasks := make([]*task, len(ranges))
	for w, r := range ranges {
		t := &task{id: w}
		if d.cfg.Mode == config.Shared {
			t.view = shared.Slice(r)
		} else {
			length, vw := r.Len(), d.cfg.VectorWidth
			t.prepare = func() (stream.Arrays, error) {
				arr, err := stream.AllocArrays(length, vw)
				if err != nil {
					return stream.Arrays{}, err
				}
				stream.Seed(arr, stream.InitialSeed)
				return arr, nil
			}
		}
		tasks[w] = t
	}
	return tasks
}
