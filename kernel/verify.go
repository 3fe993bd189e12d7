package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/mystream/stream"
)

// RelTolerance bounds the relative error accepted for arithmetic kernels.
// Copy must match bit for bit.
const RelTolerance = 1e-12

// ErrMismatch reports an output element that disagrees with the kernel
// definition.
var ErrMismatch = errors.New("kernel: output does not match definition")

// Verify checks every output element of v against the definition of k
// evaluated with p. For addmul, v.C must hold the products the kernel wrote.
func Verify(k Kind, v stream.Arrays, p Params) error {
	for i := range v.D {
		switch k {
		case Copy:
			if math.Float64bits(v.D[i]) != math.Float64bits(v.A[i]) {
				return mismatch(k, "d", i, v.D[i], v.A[i])
			}
		case Axpy:
			if want := p.Alpha*v.A[i] + v.B[i]; !near(v.D[i], want) {
				return mismatch(k, "d", i, v.D[i], want)
			}
		case FMA:
			want := v.A[i]*v.B[i] + v.C[i]
			if p.SwapFMA {
				want = v.A[i]*v.C[i] + v.B[i]
			}
			if !near(v.D[i], want) {
				return mismatch(k, "d", i, v.D[i], want)
			}
		case AddMul:
			if want := v.A[i] + v.B[i]; !near(v.D[i], want) {
				return mismatch(k, "d", i, v.D[i], want)
			}
			if want := v.A[i] * v.B[i]; !near(v.C[i], want) {
				return mismatch(k, "c", i, v.C[i], want)
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknown, k)
		}
	}
	return nil
}

func near(got, want float64) bool {
	if got == want {
		return true
	}
	return math.Abs(got-want) <= RelTolerance*math.Abs(want)
}

func mismatch(k Kind, array string, i int, got, want float64) error {
	return fmt.Errorf("%w: %s %s[%d] = %v, want %v", ErrMismatch, k, array, i, got, want)
}
