package engine

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/mystream/config"
	"github.com/cwbudde/mystream/internal/clock"
	"github.com/cwbudde/mystream/internal/sysmem"
	"github.com/cwbudde/mystream/internal/testutil"
	"github.com/cwbudde/mystream/kernel"
	"github.com/cwbudde/mystream/stream"
)

func smallConfig(opts ...config.Option) config.Config {
	base := []config.Option{
		config.WithSize(8192),
		config.WithRepetitions(3),
		config.WithWorkers(4),
		config.WithVectorWidth(4),
	}
	return config.New(append(base, opts...)...)
}

func TestRunCopyEndToEnd(t *testing.T) {
	cfg := smallConfig(config.WithKernels(kernel.Copy))
	d, err := New(cfg, WithRetainArrays())
	if err != nil {
		t.Fatal(err)
	}
	if d.Elements() != 8192 {
		t.Fatalf("Elements = %d, want 8192", d.Elements())
	}

	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("%d results", len(report.Results))
	}

	arr := d.Arrays()
	testutil.RequireBitwiseEqual(t, arr.D, arr.A)

	res := report.Results[0]
	if res.Kernel != kernel.Copy || res.Streams != 2 || len(res.Samples) != 3 {
		t.Fatalf("result %+v", res)
	}
	want := 2 * 8192 * 8 / (res.MeanMS / 1000)
	if res.Bandwidth != want {
		t.Fatalf("bandwidth = %v, want %v", res.Bandwidth, want)
	}
	if res.StreamedBytes != 2*8192*8*3 {
		t.Fatalf("streamed bytes = %v", res.StreamedBytes)
	}
	if res.Summary.Min > res.Summary.Mean || res.Summary.Mean > res.Summary.Max {
		t.Fatalf("summary out of order: %+v", res.Summary)
	}
	if report.AllocatedBytes != 4*8192*8 || report.Elements != 8192 || report.Workers != 4 {
		t.Fatalf("report header %+v", report)
	}
}

func TestRunAllKernelsValidated(t *testing.T) {
	for _, mode := range []config.Mode{config.Shared, config.Private} {
		for _, backend := range []kernel.Backend{kernel.Auto, kernel.Generic} {
			t.Run(mode.String()+"/"+backend.String(), func(t *testing.T) {
				cfg := smallConfig(
					config.WithMode(mode),
					config.WithBackend(backend),
					config.WithValidate(true),
					config.WithDrift(1.01),
					config.WithSwapFMA(true),
				)
				d, err := New(cfg)
				if err != nil {
					t.Fatal(err)
				}
				report, err := d.Run(context.Background())
				if err != nil {
					t.Fatal(err)
				}
				if len(report.Results) != 4 {
					t.Fatalf("%d results", len(report.Results))
				}
				for i, k := range kernel.All() {
					res := report.Results[i]
					if res.Kernel != k {
						t.Fatalf("result %d is %s, want %s", i, res.Kernel, k)
					}
					if math.IsNaN(res.Bandwidth) || res.Bandwidth <= 0 {
						t.Fatalf("%s bandwidth %v", k, res.Bandwidth)
					}
					testutil.RequireFinite(t, res.Samples)
				}
				if report.Consume() == 0 {
					t.Fatal("consume checksum is zero")
				}
			})
		}
	}
}

func TestRunReseedsCAfterAddMul(t *testing.T) {
	cfg := smallConfig(config.WithKernels(kernel.AddMul, kernel.FMA), config.WithValidate(true))
	d, err := New(cfg, WithRetainArrays())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	fresh := testutil.SeededArrays(t, d.Elements())
	arr := d.Arrays()
	testutil.RequireBitwiseEqual(t, arr.C, fresh.C)

	want := make([]float64, len(fresh.A))
	for i := range want {
		want[i] = fresh.A[i]*fresh.B[i] + fresh.C[i]
	}
	testutil.RequireRelNearlyEqual(t, arr.D, want, kernel.RelTolerance)
}

func TestRunBarrierAction(t *testing.T) {
	var calls atomic.Int64
	cfg := smallConfig(config.WithKernels(kernel.Copy, kernel.Axpy))
	d, err := New(cfg, WithBarrierAction(func(context.Context) error {
		calls.Add(1)
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Two fences per repetition, three repetitions, two kernels.
	if got := calls.Load(); got != 12 {
		t.Fatalf("barrier action ran %d times, want 12", got)
	}
}

func TestRunBarrierActionFailure(t *testing.T) {
	fence := errors.New("peer lost")
	d, err := New(smallConfig(), WithBarrierAction(func(context.Context) error { return fence }))
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Run(context.Background())
	if !errors.Is(err, ErrBrokenBarrier) || !errors.Is(err, fence) {
		t.Fatalf("Run = %v, want broken barrier caused by fence error", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, err := New(smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}

func TestRunInsufficientMemory(t *testing.T) {
	if _, ok := sysmem.Total(); !ok {
		t.Skip("physical memory size unknown")
	}
	d, err := New(smallConfig(config.WithSize(1 << 50)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(context.Background()); !errors.Is(err, ErrInsufficientMemory) {
		t.Fatalf("Run = %v, want ErrInsufficientMemory", err)
	}
}

func TestRunSizeOverflow(t *testing.T) {
	for _, size := range []int{1 << 59, math.MaxInt - 3, math.MaxInt} {
		d, err := New(smallConfig(config.WithSize(size), config.WithKernels(kernel.Copy)))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.Run(context.Background()); !errors.Is(err, ErrInsufficientMemory) {
			t.Fatalf("size %d: Run = %v, want ErrInsufficientMemory", size, err)
		}
	}
}

func TestRunPrivateReleasesArraysBetweenKernels(t *testing.T) {
	const size = 1 << 20
	workingSet := uint64(4 * size * stream.ElementSize)

	var heaps []uint64
	saved := releaseMemory
	releaseMemory = func() {
		saved()
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		heaps = append(heaps, ms.HeapAlloc)
	}
	t.Cleanup(func() { releaseMemory = saved })

	cfg := smallConfig(
		config.WithSize(size),
		config.WithRepetitions(1),
		config.WithMode(config.Private),
		config.WithKernels(kernel.Copy, kernel.Axpy, kernel.FMA),
	)
	d, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(heaps) != 3 {
		t.Fatalf("memory released %d times, want 3", len(heaps))
	}
	for i, h := range heaps {
		if h >= workingSet/2 {
			t.Fatalf("after kernel %d heap holds %d bytes, working set is %d", i, h, workingSet)
		}
	}
}

func TestRunLogs(t *testing.T) {
	var buf bytes.Buffer
	d, err := New(smallConfig(config.WithKernels(kernel.FMA)), WithLogger(log.New(&buf, "", 0)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "running fma") {
		t.Fatalf("log output %q", buf.String())
	}
}

func TestNewRejects(t *testing.T) {
	if _, err := New(smallConfig(config.WithWorkers(0))); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("New = %v", err)
	}
	if _, err := New(smallConfig(config.WithDistributed(2, 0, "localhost:1"))); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("New = %v", err)
	}
}

func TestRoundsRequestedSize(t *testing.T) {
	d, err := New(smallConfig(config.WithSize(1000), config.WithWorkers(3), config.WithVectorWidth(8)))
	if err != nil {
		t.Fatal(err)
	}
	if d.Elements() != 1008 {
		t.Fatalf("Elements = %d, want 1008", d.Elements())
	}
}

func TestWorkerValidatesAgainstLastParams(t *testing.T) {
	arr := testutil.SeededArrays(t, 64)
	impl, err := kernel.Select(kernel.Axpy, kernel.Generic)
	if err != nil {
		t.Fatal(err)
	}
	tk := &task{id: 0, view: arr}
	j := job{kind: kernel.Axpy, run: impl.Run, params: kernel.DefaultParams(), drift: 2, repetitions: 4}
	if err := runKernel(context.Background(), j, []*task{tk}, NewBarrier(1, nil)); err != nil {
		t.Fatal(err)
	}
	if want := kernel.DefaultAlpha * 8; tk.last.Alpha != want {
		t.Fatalf("last alpha = %v, want %v", tk.last.Alpha, want)
	}
	if err := kernel.Verify(kernel.Axpy, arr, tk.last); err != nil {
		t.Fatal(err)
	}
}

func TestConsumeTouchesOnlyKernelArrays(t *testing.T) {
	arr := stream.Arrays{
		A: []float64{1, 1},
		B: []float64{10, 10},
		C: []float64{100, 100},
		D: []float64{1000, 1000},
	}
	gen := stream.NewGenerator(stream.InitialSeed)
	if got := consume(arr, kernel.Copy.Touches(), gen); got != 1001 {
		t.Fatalf("copy consume = %v, want 1001", got)
	}
	if got := consume(arr, kernel.AddMul.Touches(), gen); got != 1111 {
		t.Fatalf("addmul consume = %v, want 1111", got)
	}
	if got := consume(stream.Arrays{}, kernel.Copy.Touches(), gen); got != 0 {
		t.Fatalf("empty consume = %v", got)
	}
}

func TestClockAvailable(t *testing.T) {
	if err := clock.Check(); err != nil {
		t.Fatal(err)
	}
}
