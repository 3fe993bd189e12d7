package stats

// Byte multiples used by reports.
const (
	MiB = 1024.0 * 1024.0
	GiB = 1024.0 * 1024.0 * 1024.0
)

// Bandwidth converts a mean repetition time into bytes per second.
//
// Each of the streams arrays a kernel touches moves
// elementsPerWorker*workers*elementSize bytes per repetition:
//
//	streams * elementsPerWorker * workers * elementSize / (meanMS / 1000)
//
// A zero mean yields +Inf.
func Bandwidth(workers, streams, elementsPerWorker int, meanMS float64, elementSize int) float64 {
	return float64(streams) * float64(elementsPerWorker) * float64(workers) *
		float64(elementSize) / (meanMS / 1000.0)
}

// StreamedBytes returns the bytes moved by repetitions passes of a kernel
// touching streams arrays of n elements each.
func StreamedBytes(streams, n, elementSize, repetitions int) float64 {
	return float64(streams) * float64(n) * float64(elementSize) * float64(repetitions)
}
