// Package sysmem reports how much physical memory the host has, so a run can
// refuse a working set that cannot fit before it starts allocating.
package sysmem

// Total returns the physical memory in bytes. ok is false when the platform
// does not expose it; callers then skip the preflight check.
func Total() (bytes uint64, ok bool) {
	return totalImpl()
}

// Fits reports whether need bytes fit into physical memory. It is optimistic
// when the total is unknown.
func Fits(need uint64) bool {
	total, ok := Total()
	if !ok {
		return true
	}
	return need <= total
}
