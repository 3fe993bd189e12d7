package sysmem

import (
	"math"
	"runtime"
	"testing"
)

func TestTotal(t *testing.T) {
	total, ok := Total()
	if runtime.GOOS == "linux" && !ok {
		t.Fatal("Total unavailable on linux")
	}
	if ok && total == 0 {
		t.Fatal("Total reported zero bytes")
	}
}

func TestFits(t *testing.T) {
	if !Fits(1) {
		t.Fatal("one byte must fit")
	}
	if _, ok := Total(); ok && Fits(math.MaxUint64) {
		t.Fatal("MaxUint64 bytes must not fit")
	}
}
