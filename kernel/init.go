package kernel

// Backends register themselves with the kernel registry on import.
import (
	_ "github.com/cwbudde/mystream/internal/kernels/arch/generic"
	_ "github.com/cwbudde/mystream/internal/kernels/arch/vecmath"
)
