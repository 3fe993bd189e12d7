package kernel

import (
	"testing"

	"github.com/cwbudde/mystream/stream"
)

func benchmarkKernel(b *testing.B, k Kind, backend Backend) {
	const n = 1 << 16
	impl, err := Select(k, backend)
	if err != nil {
		b.Fatal(err)
	}
	arr, err := stream.AllocArrays(n, stream.DefaultVectorWidth)
	if err != nil {
		b.Fatal(err)
	}
	stream.Seed(arr, stream.InitialSeed)
	p := DefaultParams()

	b.SetBytes(int64(k.Streams()) * stream.Bytes(n))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		impl.Run(arr, p)
	}
}

func BenchmarkCopyAuto(b *testing.B)      { benchmarkKernel(b, Copy, Auto) }
func BenchmarkCopyGeneric(b *testing.B)   { benchmarkKernel(b, Copy, Generic) }
func BenchmarkAxpyGeneric(b *testing.B)   { benchmarkKernel(b, Axpy, Generic) }
func BenchmarkFMAAuto(b *testing.B)       { benchmarkKernel(b, FMA, Auto) }
func BenchmarkFMAGeneric(b *testing.B)    { benchmarkKernel(b, FMA, Generic) }
func BenchmarkAddMulGeneric(b *testing.B) { benchmarkKernel(b, AddMul, Generic) }
