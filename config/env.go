package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvSize        = "MYSTREAM_SIZE"
	EnvRepetitions = "MYSTREAM_REPETITIONS"
	EnvWorkers     = "MYSTREAM_WORKERS"
	EnvMode        = "MYSTREAM_MODE"
	EnvCoord       = "MYSTREAM_COORD"
)

// envSearchDepth bounds how many parent directories LoadEnv visits.
const envSearchDepth = 5

// LoadEnv looks for a .env file in dir and its parents and loads the first
// one found into the process environment. Variables that are already set
// keep their values. A missing file is not an error.
func LoadEnv(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for i := 0; i < envSearchDepth; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return path, fmt.Errorf("config: load %s: %w", path, err)
			}
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

// ApplyEnv overrides cfg with the MYSTREAM_* variables lookup reports.
// os.LookupEnv is the usual lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSize); ok {
		n, err := parseCount(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSize, err)
		}
		cfg.Size = n
	}
	if v, ok := lookup(EnvRepetitions); ok {
		n, err := parseCount(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRepetitions, err)
		}
		cfg.Repetitions = n
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := parseCount(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Workers = n
	}
	if v, ok := lookup(EnvMode); ok {
		m, err := ParseMode(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMode, err)
		}
		cfg.Mode = m
	}
	if v, ok := lookup(EnvCoord); ok && v != "" {
		cfg.Coord = v
	}
	return nil
}
