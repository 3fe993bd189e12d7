// Package config holds the settings of a benchmark run and loads them from
// defaults, a .env file, MYSTREAM_* environment variables and command-line
// flags, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/cwbudde/mystream/kernel"
	"github.com/cwbudde/mystream/stream"
)

// ErrInvalid reports a rejected configuration value.
var ErrInvalid = errors.New("config: invalid value")

const (
	// DefaultSize is the requested element count per array.
	DefaultSize = 50_000_000
	// DefaultRepetitions is the number of timed runs per kernel.
	DefaultRepetitions = 50
	// DefaultDrift keeps alpha fixed.
	DefaultDrift = 1.0
)

// Mode selects how workers obtain their arrays.
type Mode int

const (
	// Shared workers operate on disjoint ranges of one set of arrays.
	Shared Mode = iota
	// Private workers allocate and seed their own arrays.
	Private
	// Distributed runs one worker per process and aggregates over TCP.
	Distributed
)

// String returns the mode name used on the command line.
func (m Mode) String() string {
	switch m {
	case Shared:
		return "shared"
	case Private:
		return "private"
	case Distributed:
		return "distributed"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shared":
		return Shared, nil
	case "private":
		return Private, nil
	case "distributed":
		return Distributed, nil
	default:
		return 0, fmt.Errorf("%w: mode %q", ErrInvalid, s)
	}
}

// Config is the complete description of one benchmark run.
type Config struct {
	Size        int // requested elements per array, before rounding
	Repetitions int
	Workers     int
	Mode        Mode
	Kernels     []kernel.Kind
	VectorWidth int

	Alpha   float64
	Drift   float64 // alpha is multiplied by Drift after every repetition
	SwapFMA bool
	Verify  bool // check kernel output after the last repetition
	Pin     bool
	Backend kernel.Backend
	Timeout time.Duration // zero means no bound
	CSVPath string

	// Distributed mode.
	World int
	Rank  int
	Coord string
	Spawn bool
}

// Option mutates a Config.
type Option func(*Config)

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Size:        DefaultSize,
		Repetitions: DefaultRepetitions,
		Workers:     runtime.NumCPU(),
		Mode:        Shared,
		Kernels:     kernel.All(),
		VectorWidth: stream.DefaultVectorWidth,
		Alpha:       kernel.DefaultAlpha,
		Drift:       DefaultDrift,
		Backend:     kernel.Auto,
		World:       1,
		Coord:       "127.0.0.1:7070",
	}
}

// New applies opts to the default configuration.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithSize sets the requested element count.
func WithSize(n int) Option {
	return func(cfg *Config) { cfg.Size = n }
}

// WithRepetitions sets the number of timed runs per kernel.
func WithRepetitions(r int) Option {
	return func(cfg *Config) { cfg.Repetitions = r }
}

// WithWorkers sets the number of local workers.
func WithWorkers(w int) Option {
	return func(cfg *Config) { cfg.Workers = w }
}

// WithMode sets the memory mode.
func WithMode(m Mode) Option {
	return func(cfg *Config) { cfg.Mode = m }
}

// WithKernels sets the kernels and their order.
func WithKernels(kinds ...kernel.Kind) Option {
	return func(cfg *Config) { cfg.Kernels = append([]kernel.Kind(nil), kinds...) }
}

// WithVectorWidth sets the alignment and partition granularity in elements.
func WithVectorWidth(vw int) Option {
	return func(cfg *Config) { cfg.VectorWidth = vw }
}

// WithDrift sets the per-repetition alpha multiplier.
func WithDrift(f float64) Option {
	return func(cfg *Config) { cfg.Drift = f }
}

// WithSwapFMA selects the a*c+b operand order.
func WithSwapFMA(swap bool) Option {
	return func(cfg *Config) { cfg.SwapFMA = swap }
}

// WithValidate enables output validation after the last repetition.
func WithValidate(v bool) Option {
	return func(cfg *Config) { cfg.Verify = v }
}

// WithBackend sets the kernel backend.
func WithBackend(b kernel.Backend) Option {
	return func(cfg *Config) { cfg.Backend = b }
}

// WithDistributed configures the rank of a distributed run.
func WithDistributed(world, rank int, coord string) Option {
	return func(cfg *Config) {
		cfg.Mode = Distributed
		cfg.World = world
		cfg.Rank = rank
		cfg.Coord = coord
	}
}

// Params returns the kernel parameters of the first repetition.
func (c Config) Params() kernel.Params {
	return kernel.Params{Alpha: c.Alpha, SwapFMA: c.SwapFMA}
}

// Validate checks every field and returns an error wrapping ErrInvalid that
// names the first offending setting.
func (c Config) Validate() error {
	switch {
	case c.Size <= 0:
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalid, c.Size)
	case c.Repetitions <= 0:
		return fmt.Errorf("%w: repetitions must be positive, got %d", ErrInvalid, c.Repetitions)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Workers)
	case c.VectorWidth <= 0:
		return fmt.Errorf("%w: vector width must be positive, got %d", ErrInvalid, c.VectorWidth)
	case len(c.Kernels) == 0:
		return fmt.Errorf("%w: no kernels selected", ErrInvalid)
	case !(c.Drift > 0):
		return fmt.Errorf("%w: drift must be positive, got %v", ErrInvalid, c.Drift)
	case c.Timeout < 0:
		return fmt.Errorf("%w: timeout must not be negative, got %v", ErrInvalid, c.Timeout)
	}
	if c.Mode < Shared || c.Mode > Distributed {
		return fmt.Errorf("%w: %s", ErrInvalid, c.Mode)
	}
	if c.Mode == Distributed {
		if c.World <= 0 {
			return fmt.Errorf("%w: world must be positive, got %d", ErrInvalid, c.World)
		}
		if c.Rank < 0 || c.Rank >= c.World {
			return fmt.Errorf("%w: rank %d outside world of %d", ErrInvalid, c.Rank, c.World)
		}
		if c.World > 1 && c.Coord == "" {
			return fmt.Errorf("%w: coordinator address required", ErrInvalid)
		}
	}
	return nil
}
