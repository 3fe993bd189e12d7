// Package cpu detects the processor capabilities used to pick stream kernel
// backends and to describe the host in benchmark reports.
//
// Detection runs once, on the first call to DetectFeatures, and the result is
// cached. Tests may override it with SetForcedFeatures.
package cpu

import (
	"runtime"
	"sync"
)

// SIMDLevel names a SIMD instruction set extension. Levels are only ordered
// within one architecture.
type SIMDLevel int

const (
	// SIMDNone selects the pure Go kernels.
	SIMDNone SIMDLevel = iota
	SIMDSSE2
	SIMDAVX
	SIMDAVX2
	SIMDAVX512
	SIMDNEON
)

// String returns the conventional name of the level.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX:
		return "AVX"
	case SIMDAVX2:
		return "AVX2"
	case SIMDAVX512:
		return "AVX-512"
	case SIMDNEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// Lanes returns how many float64 values one register of the level holds.
func (s SIMDLevel) Lanes() int {
	switch s {
	case SIMDSSE2, SIMDNEON:
		return 2
	case SIMDAVX, SIMDAVX2:
		return 4
	case SIMDAVX512:
		return 8
	default:
		return 1
	}
}

// Features describes the host processor.
type Features struct {
	HasSSE2   bool
	HasAVX    bool
	HasAVX2   bool
	HasAVX512 bool
	HasNEON   bool

	// ForceGeneric restricts kernel selection to SIMDNone.
	ForceGeneric bool

	Architecture string // runtime.GOARCH
	LogicalCPUs  int    // runtime.NumCPU at detection time
}

// Best returns the most capable level the features support.
func (f Features) Best() SIMDLevel {
	for _, level := range []SIMDLevel{SIMDAVX512, SIMDAVX2, SIMDAVX, SIMDNEON, SIMDSSE2} {
		if Supports(f, level) {
			return level
		}
	}
	return SIMDNone
}

var (
	detected   Features
	detectOnce sync.Once
	detectMu   sync.Mutex

	forced   *Features
	forcedMu sync.RWMutex
)

// DetectFeatures returns the cached features of the current system.
// It is safe for concurrent use.
func DetectFeatures() Features {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()
	if f != nil {
		return *f
	}

	detectMu.Lock()
	defer detectMu.Unlock()
	detectOnce.Do(func() {
		detected = detectFeaturesImpl()
		detected.LogicalCPUs = runtime.NumCPU()
	})
	return detected
}

// SetForcedFeatures overrides detection. Intended for tests.
func SetForcedFeatures(f Features) {
	forcedMu.Lock()
	defer forcedMu.Unlock()
	forced = &f
}

// ResetDetection drops forced features and the detection cache.
func ResetDetection() {
	forcedMu.Lock()
	forced = nil
	forcedMu.Unlock()

	detectMu.Lock()
	detectOnce = sync.Once{}
	detected = Features{}
	detectMu.Unlock()
}

// Supports reports whether features can run code written for level.
func Supports(features Features, level SIMDLevel) bool {
	if features.ForceGeneric {
		return level == SIMDNone
	}

	switch level {
	case SIMDNone:
		return true
	case SIMDSSE2:
		return features.HasSSE2
	case SIMDAVX:
		return features.HasAVX
	case SIMDAVX2:
		return features.HasAVX2
	case SIMDAVX512:
		return features.HasAVX512
	case SIMDNEON:
		return features.HasNEON
	default:
		return false
	}
}
