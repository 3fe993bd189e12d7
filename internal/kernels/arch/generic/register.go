package generic

import (
	"github.com/cwbudde/mystream/internal/cpu"
	"github.com/cwbudde/mystream/internal/kernels/registry"
)

// init registers the pure Go kernels. They implement every operation and are
// the fallback when no SIMD backend applies or ForceGeneric is set.
func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "generic",
		SIMDLevel: cpu.SIMDNone,
		Priority:  0,

		Copy:   Copy,
		Axpy:   Axpy,
		MulAdd: MulAdd,
		AddMul: AddMul,
	})
}
