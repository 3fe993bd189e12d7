package kernel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown reports an unrecognised kernel or backend name.
var ErrUnknown = errors.New("kernel: unknown name")

// Kind identifies one stream kernel.
type Kind int

const (
	Copy Kind = iota
	Axpy
	FMA
	AddMul
)

// All returns the kernels in their default run order.
func All() []Kind {
	return []Kind{Copy, Axpy, FMA, AddMul}
}

// String returns the lower-case name used on the command line.
func (k Kind) String() string {
	switch k {
	case Copy:
		return "copy"
	case Axpy:
		return "axpy"
	case FMA:
		return "fma"
	case AddMul:
		return "addmul"
	default:
		return fmt.Sprintf("kernel(%d)", int(k))
	}
}

// Label returns the name printed in reports.
func (k Kind) Label() string {
	switch k {
	case Copy:
		return "Copy"
	case Axpy:
		return "AXPY"
	case FMA:
		return "FMA"
	case AddMul:
		return "Add Mul"
	default:
		return k.String()
	}
}

// Streams returns how many arrays the kernel moves per element.
func (k Kind) Streams() int {
	switch k {
	case Copy:
		return 2
	case Axpy:
		return 3
	case FMA, AddMul:
		return 4
	default:
		return 0
	}
}

// Touch is a set of stream arrays.
type Touch uint8

const (
	TouchA Touch = 1 << iota
	TouchB
	TouchC
	TouchD
)

// Touches returns the arrays the kernel reads or writes.
func (k Kind) Touches() Touch {
	switch k {
	case Copy:
		return TouchA | TouchD
	case Axpy:
		return TouchA | TouchB | TouchD
	case FMA, AddMul:
		return TouchA | TouchB | TouchC | TouchD
	default:
		return 0
	}
}

// WritesC reports whether the kernel overwrites the c input.
func (k Kind) WritesC() bool {
	return k == AddMul
}

// ParseKind parses a kernel name, ignoring case. "triad" is accepted for axpy.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "copy":
		return Copy, nil
	case "axpy", "triad":
		return Axpy, nil
	case "fma":
		return FMA, nil
	case "addmul", "add-mul", "add_mul":
		return AddMul, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknown, s)
	}
}

// ParseList parses a comma-separated kernel list. Order is preserved and
// duplicates are rejected.
func ParseList(s string) ([]Kind, error) {
	var kinds []Kind
	seen := make(map[Kind]bool)
	for _, field := range strings.Split(s, ",") {
		if strings.TrimSpace(field) == "" {
			continue
		}
		k, err := ParseKind(field)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			return nil, fmt.Errorf("kernel: %s listed twice", k)
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: empty kernel list", ErrUnknown)
	}
	return kinds, nil
}
