package vecmath

import (
	"math"
	"testing"

	"github.com/cwbudde/mystream/internal/kernels/arch/generic"
)

func TestMulAddMatchesGeneric(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 7, 16, 33, 1000} {
		a := make([]float64, n)
		b := make([]float64, n)
		c := make([]float64, n)
		for i := range a {
			a[i] = 1 + float64(i%300)/200
			b[i] = 1 + float64(i%400)/300
			c[i] = 1 + float64(i%500)/300
		}
		got := make([]float64, n)
		want := make([]float64, n)
		MulAdd(got, a, b, c)
		generic.MulAdd(want, a, b, c)
		for i := range got {
			if math.Abs(got[i]-want[i]) > 1e-12*math.Abs(want[i]) {
				t.Fatalf("n=%d index %d: got %v, want %v", n, i, got[i], want[i])
			}
		}
	}
}

func TestCopy(t *testing.T) {
	src := []float64{1.5, -2, math.Pi, 0, 1e300}
	dst := make([]float64, len(src))
	Copy(dst, src)
	for i := range src {
		if math.Float64bits(dst[i]) != math.Float64bits(src[i]) {
			t.Fatalf("index %d: got %v, want %v", i, dst[i], src[i])
		}
	}
}

func TestCopyLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Copy(make([]float64, 1), make([]float64, 2))
}
