package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/mystream/kernel"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Size != 50_000_000 || cfg.Repetitions != 50 {
		t.Fatalf("size/repetitions = %d/%d", cfg.Size, cfg.Repetitions)
	}
	if cfg.Workers <= 0 || cfg.Mode != Shared || cfg.Drift != 1 || cfg.Alpha != 2.55 {
		t.Fatalf("unexpected default %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestOptions(t *testing.T) {
	cfg := New(
		WithSize(8192),
		WithRepetitions(3),
		WithWorkers(4),
		WithVectorWidth(4),
		WithKernels(kernel.Copy),
		WithSwapFMA(true),
		nil,
	)
	if cfg.Size != 8192 || cfg.Repetitions != 3 || cfg.Workers != 4 || cfg.VectorWidth != 4 {
		t.Fatalf("options not applied: %+v", cfg)
	}
	if len(cfg.Kernels) != 1 || cfg.Kernels[0] != kernel.Copy {
		t.Fatalf("kernels = %v", cfg.Kernels)
	}
	if p := cfg.Params(); !p.SwapFMA || p.Alpha != kernel.DefaultAlpha {
		t.Fatalf("params = %+v", p)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"size", WithSize(0)},
		{"repetitions", WithRepetitions(-1)},
		{"workers", WithWorkers(0)},
		{"vector width", WithVectorWidth(0)},
		{"kernels", WithKernels()},
		{"drift", WithDrift(0)},
		{"rank", WithDistributed(2, 2, "localhost:1")},
		{"world", WithDistributed(0, 0, "localhost:1")},
		{"coord", WithDistributed(2, 1, "")},
		{"timeout", func(c *Config) { c.Timeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.opt).Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Shared, Private, Distributed} {
		got, err := ParseMode(strings.ToUpper(m.String()))
		if err != nil || got != m {
			t.Fatalf("ParseMode(%s) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseMode("numa"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("ParseMode(numa) = %v", err)
	}
}

func TestParseFlags(t *testing.T) {
	cfg := Default()
	args := []string{
		"-s", "1000", "-r", "7", "-w", "3",
		"-mode", "private", "-kernels", "axpy,copy",
		"-drift", "1.01", "-swap-fma", "-validate", "-generic",
		"-timeout", "2s", "-csv", "out.csv",
	}
	if err := ParseFlags("mystream", args, &cfg, io.Discard); err != nil {
		t.Fatal(err)
	}
	if cfg.Size != 1000 || cfg.Repetitions != 7 || cfg.Workers != 3 || cfg.Mode != Private {
		t.Fatalf("parsed %+v", cfg)
	}
	if len(cfg.Kernels) != 2 || cfg.Kernels[0] != kernel.Axpy || cfg.Kernels[1] != kernel.Copy {
		t.Fatalf("kernels = %v", cfg.Kernels)
	}
	if cfg.Drift != 1.01 || !cfg.SwapFMA || !cfg.Verify || cfg.Backend != kernel.Generic {
		t.Fatalf("parsed %+v", cfg)
	}
	if cfg.Timeout != 2*time.Second || cfg.CSVPath != "out.csv" {
		t.Fatalf("parsed %+v", cfg)
	}
}

func TestParseFlagsDistributed(t *testing.T) {
	cfg := Default()
	args := []string{"-mode", "distributed", "-world", "4", "-rank", "2", "-coord", "10.0.0.1:9000", "-spawn"}
	if err := ParseFlags("mystream", args, &cfg, io.Discard); err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != Distributed || cfg.World != 4 || cfg.Rank != 2 || cfg.Coord != "10.0.0.1:9000" || !cfg.Spawn {
		t.Fatalf("parsed %+v", cfg)
	}
}

func TestParseFlagsRejectsCounts(t *testing.T) {
	for _, bad := range []string{"0", "-5", "+5", "1e6", "12abc", " 12", "", "99999999999999999999999"} {
		for _, name := range []string{"-s", "-r"} {
			cfg := Default()
			err := ParseFlags("mystream", []string{name, bad}, &cfg, io.Discard)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("%s %q: err = %v, want ErrInvalid", name, bad, err)
			}
		}
	}
}

func TestParseFlagsHelp(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		var out strings.Builder
		cfg := Default()
		err := ParseFlags("mystream", []string{arg}, &cfg, &out)
		if !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("%s: err = %v, want flag.ErrHelp", arg, err)
		}
		if !strings.Contains(out.String(), "memory bandwidth") || !strings.Contains(out.String(), "-s") {
			t.Fatalf("%s: usage missing description or flags:\n%s", arg, out.String())
		}
	}
}

func TestParseFlagsRejectsPositional(t *testing.T) {
	cfg := Default()
	if err := ParseFlags("mystream", []string{"extra"}, &cfg, io.Discard); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvSize:        "4096",
		EnvRepetitions: "9",
		EnvWorkers:     "2",
		EnvMode:        "distributed",
		EnvCoord:       "example.org:1234",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	if err := ApplyEnv(&cfg, lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.Size != 4096 || cfg.Repetitions != 9 || cfg.Workers != 2 || cfg.Mode != Distributed || cfg.Coord != "example.org:1234" {
		t.Fatalf("env not applied: %+v", cfg)
	}

	env[EnvSize] = "4k"
	if err := ApplyEnv(&cfg, lookup); !errors.Is(err, ErrInvalid) {
		t.Fatalf("ApplyEnv = %v, want ErrInvalid", err)
	}
}

func TestLoadEnvSearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("MYSTREAM_TEST_LOADENV=42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("MYSTREAM_TEST_LOADENV") })

	path, err := LoadEnv(nested)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(root, ".env") {
		t.Fatalf("loaded %q", path)
	}
	if got := os.Getenv("MYSTREAM_TEST_LOADENV"); got != "42" {
		t.Fatalf("variable = %q", got)
	}
}

func TestLoadEnvMissing(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "a", "b", "c", "d", "e")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, err := LoadEnv(nested)
	if err != nil || path != "" {
		t.Fatalf("LoadEnv = %q, %v", path, err)
	}
}

func TestVerifyOptionAndValidate(t *testing.T) {
	cfg := New(WithValidate(true))
	if !cfg.Verify {
		t.Fatal("WithValidate did not enable output verification")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate = %v", err)
	}

	cfg = Default()
	if err := ParseFlags("mystream", []string{"-validate"}, &cfg, io.Discard); err != nil {
		t.Fatal(err)
	}
	if !cfg.Verify {
		t.Fatal("-validate did not enable output verification")
	}
}
