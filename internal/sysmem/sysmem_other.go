//go:build !linux

package sysmem

func totalImpl() (uint64, bool) {
	return 0, false
}
