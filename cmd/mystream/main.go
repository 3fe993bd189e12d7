// Command mystream measures sustainable memory bandwidth.
//
// Usage:
//
//	mystream [flags]
//
// It runs the copy, axpy, fma and addmul kernels over large arrays with one
// worker per CPU and prints bandwidth and mean time per kernel.
//
// Examples:
//
//	mystream
//	mystream -s 100000000 -r 20
//	mystream -mode private -w 8 -kernels axpy,copy
//	mystream -mode distributed -world 4 -spawn -csv results.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tebeka/atexit"

	"github.com/cwbudde/mystream/cluster"
	"github.com/cwbudde/mystream/config"
	"github.com/cwbudde/mystream/engine"
	"github.com/cwbudde/mystream/report"
)

// Exit codes.
const (
	exitOK      = 0
	exitConfig  = 1
	exitRuntime = 2
)

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns its exit code.
func run(args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "mystream: ", 0)

	cfg, err := loadConfig(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		logger.Print(err)
		return exitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if cfg.Mode == config.Distributed {
		err = runDistributed(ctx, cfg, args, stdout, logger)
	} else {
		err = runLocal(ctx, cfg, stdout, logger)
	}
	if err != nil {
		logger.Print(err)
		return exitRuntime
	}
	return exitOK
}

// loadConfig layers defaults, .env, environment and flags.
func loadConfig(args []string, stderr io.Writer) (config.Config, error) {
	cfg := config.Default()
	if _, err := config.LoadEnv("."); err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := config.ParseFlags("mystream", args, &cfg, stderr); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func runLocal(ctx context.Context, cfg config.Config, stdout io.Writer, logger *log.Logger) error {
	driver, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Printf("%s mode, %d workers, %d elements per array", cfg.Mode, cfg.Workers, driver.Elements())

	rep, err := driver.Run(ctx)
	if err != nil {
		return err
	}
	if err := report.WriteHeader(stdout, report.HeaderOf(rep)); err != nil {
		return err
	}
	if err := report.WriteResults(stdout, rep); err != nil {
		return err
	}
	return writeCSV(cfg.CSVPath, report.Rows(rep))
}

func runDistributed(ctx context.Context, cfg config.Config, args []string, stdout io.Writer, logger *log.Logger) error {
	comm, wait, err := connect(ctx, cfg, args, logger)
	if err != nil {
		return err
	}
	defer comm.Close()

	out, err := cluster.RunRank(ctx, comm, cfg, engine.WithLogger(logger))
	if err != nil {
		_ = comm.Close()
		_ = wait()
		return err
	}
	if err := wait(); err != nil {
		return err
	}
	if out.Rank != 0 {
		logger.Printf("rank %d finished", out.Rank)
		return nil
	}

	if err := report.WriteHeader(stdout, report.ClusterHeaderOf(out, cfg.Size)); err != nil {
		return err
	}
	if err := report.WriteClusterResults(stdout, out.Totals); err != nil {
		return err
	}
	return writeCSV(cfg.CSVPath, report.ClusterRows(out.Totals))
}

// connect joins the run as cfg.Rank. Rank 0 listens, optionally spawns the
// other ranks, and waits for all of them. The returned wait reaps spawned
// children.
func connect(ctx context.Context, cfg config.Config, args []string, logger *log.Logger) (cluster.Communicator, func() error, error) {
	noWait := func() error { return nil }
	if cfg.Rank != 0 {
		peer, err := cluster.Dial(ctx, cfg.Coord, cfg.Rank, cfg.World)
		return peer, noWait, err
	}

	coord, err := cluster.Listen(cfg.Coord, cfg.World)
	if err != nil {
		return nil, nil, err
	}
	atexit.Register(func() { _ = coord.Close() })

	// A spawned rank that dies before joining would leave Accept waiting
	// forever; its exit cancels the accept instead.
	acceptCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	wait := noWait
	var spawned *children
	if cfg.Spawn && cfg.World > 1 {
		spawned, err = spawn(ctx, coord.Addr().String(), cfg.World, args, cancel)
		if err != nil {
			_ = coord.Close()
			return nil, nil, err
		}
		wait = spawned.wait
		logger.Printf("spawned ranks 1..%d", cfg.World-1)
	}

	logger.Printf("waiting for %d ranks on %s", cfg.World-1, coord.Addr())
	if err := coord.Accept(acceptCtx); err != nil {
		_ = coord.Close()
		if spawned != nil {
			spawned.kill()
		}
		_ = wait()
		return nil, nil, err
	}
	return coord, wait, nil
}

func writeCSV(path string, rows []report.Row) (err error) {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return report.WriteCSV(f, rows)
}
