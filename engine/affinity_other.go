//go:build !linux

package engine

// pinThread is a no-op where thread affinity is not exposed.
func pinThread(int) error {
	return nil
}
