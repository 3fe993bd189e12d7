// Package registry holds the stream kernel implementations available to the
// kernel package.
//
// Backend packages register an OpEntry from init(). Selection is per
// operation: Lookup returns the highest-priority entry that the CPU supports
// and that implements the requested operation, so a backend may provide only
// the kernels it accelerates.
package registry

import (
	"sync"

	"github.com/cwbudde/mystream/internal/cpu"
)

// Op identifies one stream kernel operation.
type Op int

const (
	OpCopy Op = iota
	OpAxpy
	OpMulAdd
	OpAddMul
)

// OpEntry is one backend's set of kernel implementations. Nil fields mean
// the backend does not provide that operation.
//
// Every function requires slices of equal length and panics otherwise.
type OpEntry struct {
	// Name identifies the backend in reports (e.g. "generic", "vecmath").
	Name string

	// SIMDLevel is the instruction set the backend needs.
	SIMDLevel cpu.SIMDLevel

	// Priority orders compatible entries; higher wins.
	//   generic: 0, SSE2: 10, NEON: 15, AVX2: 20
	Priority int

	// Copy: dst[i] = src[i].
	Copy func(dst, src []float64)

	// Axpy: dst[i] = alpha*x[i] + y[i].
	Axpy func(dst, x, y []float64, alpha float64)

	// MulAdd: dst[i] = a[i]*b[i] + c[i].
	MulAdd func(dst, a, b, c []float64)

	// AddMul: sum[i] = a[i] + b[i]; prod[i] = a[i] * b[i].
	AddMul func(sum, prod, a, b []float64)
}

// Has reports whether the entry implements op.
func (e *OpEntry) Has(op Op) bool {
	switch op {
	case OpCopy:
		return e.Copy != nil
	case OpAxpy:
		return e.Axpy != nil
	case OpMulAdd:
		return e.MulAdd != nil
	case OpAddMul:
		return e.AddMul != nil
	default:
		return false
	}
}

// OpRegistry is a priority-ordered set of OpEntry values.
type OpRegistry struct {
	mu      sync.RWMutex
	entries []OpEntry
	sorted  bool
}

// Global is the registry backends register with.
var Global = &OpRegistry{}

// Register adds an entry. Registration is expected to finish (in init)
// before the first Lookup.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	r.sorted = false
}

// Lookup returns the highest-priority entry compatible with features that
// implements op, or nil when none does.
func (r *OpRegistry) Lookup(features cpu.Features, op Op) *OpEntry {
	r.mu.Lock()
	if !r.sorted {
		r.sortByPriority()
		r.sorted = true
	}
	r.mu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		entry := &r.entries[i]
		if cpu.Supports(features, entry.SIMDLevel) && entry.Has(op) {
			return entry
		}
	}
	return nil
}

// sortByPriority orders entries by descending priority; stable for equal
// priorities. Caller holds the write lock.
func (r *OpRegistry) sortByPriority() {
	for i := 1; i < len(r.entries); i++ {
		key := r.entries[i]
		j := i - 1
		for j >= 0 && r.entries[j].Priority < key.Priority {
			r.entries[j+1] = r.entries[j]
			j--
		}
		r.entries[j+1] = key
	}
}

// ListEntries returns a copy of the registered entries.
func (r *OpRegistry) ListEntries() []OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]OpEntry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Reset removes all entries. For tests.
func (r *OpRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.sorted = false
}
