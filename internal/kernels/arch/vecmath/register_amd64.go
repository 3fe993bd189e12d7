//go:build amd64 && !purego

package vecmath

import (
	"github.com/cwbudde/mystream/internal/cpu"
	"github.com/cwbudde/mystream/internal/kernels/registry"
)

// init registers the vecmath kernels for AVX2 machines, where algo-vecmath
// dispatches to its 256-bit routines.
func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "vecmath-avx2",
		SIMDLevel: cpu.SIMDAVX2,
		Priority:  20,

		Copy:   Copy,
		MulAdd: MulAdd,
	})
}
