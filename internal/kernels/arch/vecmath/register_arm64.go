//go:build arm64 && !purego

package vecmath

import (
	"github.com/cwbudde/mystream/internal/cpu"
	"github.com/cwbudde/mystream/internal/kernels/registry"
)

// init registers the vecmath kernels for NEON.
func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "vecmath-neon",
		SIMDLevel: cpu.SIMDNEON,
		Priority:  15,

		Copy:   Copy,
		MulAdd: MulAdd,
	})
}
