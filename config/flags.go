package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/cwbudde/mystream/kernel"
)

// Description is printed above the flag list by -h.
const Description = `Measures sustainable memory bandwidth with four simple vector kernels
(copy, axpy, fma, addmul) run by parallel workers over large arrays.
Every kernel is timed for a number of repetitions and reported as mean time
and bytes moved per second.`

// parseCount accepts a non-empty string of decimal digits with a positive
// value. Signs, spaces, exponents and trailing garbage are rejected.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty count", ErrInvalid)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q is not a decimal count", ErrInvalid, s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalid, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: count must be positive, got %d", ErrInvalid, n)
	}
	return n, nil
}

type countValue struct{ p *int }

func (v countValue) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.Itoa(*v.p)
}

func (v countValue) Set(s string) error {
	n, err := parseCount(s)
	if err != nil {
		return err
	}
	*v.p = n
	return nil
}

type modeValue struct{ p *Mode }

func (v modeValue) String() string {
	if v.p == nil {
		return Shared.String()
	}
	return v.p.String()
}

func (v modeValue) Set(s string) error {
	m, err := ParseMode(s)
	if err != nil {
		return err
	}
	*v.p = m
	return nil
}

type kernelsValue struct{ p *[]kernel.Kind }

func (v kernelsValue) String() string {
	if v.p == nil {
		return ""
	}
	out := ""
	for i, k := range *v.p {
		if i > 0 {
			out += ","
		}
		out += k.String()
	}
	return out
}

func (v kernelsValue) Set(s string) error {
	kinds, err := kernel.ParseList(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	*v.p = kinds
	return nil
}

// ParseFlags parses args (without the program name) into cfg. Values not
// named in args keep what cfg already holds. Usage goes to output. When -h
// or --help is given the returned error is flag.ErrHelp; any other failure
// wraps ErrInvalid.
func ParseFlags(name string, args []string, cfg *Config, output io.Writer) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.Var(countValue{&cfg.Size}, "s", "elements per array, rounded up to a multiple of workers*vector width")
	fs.Var(countValue{&cfg.Repetitions}, "r", "timed repetitions per kernel")
	fs.Var(countValue{&cfg.Workers}, "w", "local workers (ignored in distributed mode)")
	fs.Var(modeValue{&cfg.Mode}, "mode", "memory mode: shared, private or distributed")
	fs.Var(kernelsValue{&cfg.Kernels}, "kernels", "comma-separated kernels in run order")
	fs.Float64Var(&cfg.Drift, "drift", cfg.Drift, "multiply the axpy scalar by this factor after every repetition")
	fs.BoolVar(&cfg.SwapFMA, "swap-fma", cfg.SwapFMA, "compute a*c+b in the fma kernel")
	fs.BoolVar(&cfg.Verify, "validate", cfg.Verify, "check kernel output after the last repetition")
	fs.BoolVar(&cfg.Pin, "pin", cfg.Pin, "pin worker w to CPU w")
	generic := fs.Bool("generic", cfg.Backend == kernel.Generic, "use the pure Go kernels only")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "abort the run after this duration (0 disables)")
	fs.StringVar(&cfg.CSVPath, "csv", cfg.CSVPath, "also write per-kernel results as CSV to this file")
	fs.IntVar(&cfg.World, "world", cfg.World, "number of processes in distributed mode")
	fs.IntVar(&cfg.Rank, "rank", cfg.Rank, "rank of this process in distributed mode")
	fs.StringVar(&cfg.Coord, "coord", cfg.Coord, "coordinator address host:port in distributed mode")
	fs.BoolVar(&cfg.Spawn, "spawn", cfg.Spawn, "rank 0 starts ranks 1..world-1 as child processes")

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s [flags]\n\n%s\n\nFlags:\n", name, Description)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrInvalid, fs.Arg(0))
	}
	if *generic {
		cfg.Backend = kernel.Generic
	}
	return nil
}
