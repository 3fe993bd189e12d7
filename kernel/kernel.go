package kernel

import (
	"fmt"
	"strings"

	"github.com/cwbudde/mystream/internal/cpu"
	"github.com/cwbudde/mystream/internal/kernels/registry"
	"github.com/cwbudde/mystream/stream"
)

// DefaultAlpha is the axpy scalar.
const DefaultAlpha = 2.55

// Params carries the per-repetition kernel arguments.
type Params struct {
	// Alpha scales a in axpy.
	Alpha float64

	// SwapFMA computes d = a*c + b instead of d = a*b + c.
	SwapFMA bool
}

// DefaultParams returns the fixed-scalar, canonical-order parameters.
func DefaultParams() Params {
	return Params{Alpha: DefaultAlpha}
}

// Backend chooses how implementations are selected.
type Backend int

const (
	// Auto picks the best implementation the CPU supports.
	Auto Backend = iota
	// Generic forces the pure Go loops.
	Generic
)

// String returns the backend name.
func (b Backend) String() string {
	if b == Generic {
		return "generic"
	}
	return "auto"
}

// ParseBackend parses "auto" or "generic".
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "generic":
		return Generic, nil
	default:
		return 0, fmt.Errorf("%w: backend %q", ErrUnknown, s)
	}
}

// Func runs one kernel over a set of equal-length views.
type Func func(v stream.Arrays, p Params)

// Impl is a selected kernel implementation.
type Impl struct {
	Kind    Kind
	Backend string // registry entry name
	Run     Func
}

// Select returns the implementation of k for the current CPU.
func Select(k Kind, b Backend) (Impl, error) {
	features := cpu.DetectFeatures()
	if b == Generic {
		features.ForceGeneric = true
	}
	return selectFor(k, features)
}

func selectFor(k Kind, features cpu.Features) (Impl, error) {
	op, err := opOf(k)
	if err != nil {
		return Impl{}, err
	}
	entry := registry.Global.Lookup(features, op)
	if entry == nil {
		return Impl{}, fmt.Errorf("kernel: no implementation registered for %s", k)
	}

	var run Func
	switch k {
	case Copy:
		fn := entry.Copy
		run = func(v stream.Arrays, _ Params) { fn(v.D, v.A) }
	case Axpy:
		fn := entry.Axpy
		run = func(v stream.Arrays, p Params) { fn(v.D, v.A, v.B, p.Alpha) }
	case FMA:
		fn := entry.MulAdd
		run = func(v stream.Arrays, p Params) {
			if p.SwapFMA {
				fn(v.D, v.A, v.C, v.B)
				return
			}
			fn(v.D, v.A, v.B, v.C)
		}
	case AddMul:
		fn := entry.AddMul
		run = func(v stream.Arrays, _ Params) { fn(v.D, v.C, v.A, v.B) }
	}
	return Impl{Kind: k, Backend: entry.Name, Run: run}, nil
}

func opOf(k Kind) (registry.Op, error) {
	switch k {
	case Copy:
		return registry.OpCopy, nil
	case Axpy:
		return registry.OpAxpy, nil
	case FMA:
		return registry.OpMulAdd, nil
	case AddMul:
		return registry.OpAddMul, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknown, k)
	}
}
