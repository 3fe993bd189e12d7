package stream

// InitialSeed is the first generator state of every run.
const InitialSeed uint32 = 1

const (
	lcgMultiplier = 16807
	lcgIncrement  = 214013
	lcgModulus    = 1 << 31
)

// Generator is the linear congruential generator used to seed arrays and to
// pick consume indices: seed = (seed*16807 + 214013) mod 2^31.
// It is chosen for reproducibility across runs and implementations, not for
// statistical quality. The zero value starts from state 0.
type Generator struct {
	state uint32
}

// NewGenerator returns a generator whose first Next derives from seed.
func NewGenerator(seed uint32) *Generator {
	return &Generator{state: seed}
}

// Next advances the generator and returns the new state.
// The product wraps at 2^32 before the reduction, as unsigned 32-bit
// arithmetic does.
func (g *Generator) Next() uint32 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return g.state
}

// Index returns a pseudo-random index in [0, n). n must be positive.
func (g *Generator) Index(n int) int {
	return int(g.Next() % uint32(n))
}

// Values derives the three input values from one generator state.
func Values(r uint32) (a, b, c float64) {
	a = 1.0 + float64(r%300)/200.0
	b = 1.0 + float64(r%400)/300.0
	c = 1.0 + float64(r%500)/300.0
	return a, b, c
}

// Seed fills A, B and C sequentially from a generator started at seed and
// zeroes D.
func Seed(arr Arrays, seed uint32) {
	g := NewGenerator(seed)
	for i := range arr.D {
		a, b, c := Values(g.Next())
		arr.A[i] = a
		arr.B[i] = b
		arr.C[i] = c
		arr.D[i] = 0
	}
}

// ReseedC restores C to the values Seed would write, leaving the other
// arrays untouched.
func ReseedC(arr Arrays, seed uint32) {
	g := NewGenerator(seed)
	for i := range arr.C {
		_, _, c := Values(g.Next())
		arr.C[i] = c
	}
}
