package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/tebeka/atexit"

	"github.com/cwbudde/mystream/cluster"
)

// executable locates the binary spawned for the other ranks.
var executable = os.Executable

// children tracks spawned ranks. Each child is reaped by its own goroutine
// as soon as it exits.
type children struct {
	cmds []*exec.Cmd
	errs []error
	wg   sync.WaitGroup
}

// spawn starts ranks 1..world-1 as copies of this executable with the same
// arguments, minus -spawn, pointed at coord. A child that exits calls
// exited with an error wrapping cluster.ErrIncomplete.
func spawn(ctx context.Context, coord string, world int, args []string, exited func(error)) (*children, error) {
	exe, err := executable()
	if err != nil {
		return nil, fmt.Errorf("spawn: %w", err)
	}

	cs := &children{}
	atexit.Register(cs.kill)
	for rank := 1; rank < world; rank++ {
		cmd := exec.CommandContext(ctx, exe, rankArgs(args, rank, coord)...)
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			cs.kill()
			for _, c := range cs.cmds {
				_ = c.Wait()
			}
			return nil, fmt.Errorf("spawn rank %d: %w", rank, err)
		}
		cs.cmds = append(cs.cmds, cmd)
	}

	cs.errs = make([]error, len(cs.cmds))
	for i, cmd := range cs.cmds {
		cs.wg.Add(1)
		go func() {
			defer cs.wg.Done()
			err := cmd.Wait()
			cs.errs[i] = err
			if err == nil {
				err = errors.New("exit status 0")
			}
			exited(fmt.Errorf("%w: rank %d exited: %w", cluster.ErrIncomplete, i+1, err))
		}()
	}
	return cs, nil
}

// rankArgs returns args without -spawn and with -rank and -coord appended;
// later flags override earlier ones.
func rankArgs(args []string, rank int, coord string) []string {
	out := make([]string, 0, len(args)+4)
	for _, a := range args {
		name, _, _ := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if strings.HasPrefix(a, "-") && name == "spawn" {
			continue
		}
		out = append(out, a)
	}
	return append(out, "-rank", strconv.Itoa(rank), "-coord", coord)
}

func (cs *children) kill() {
	for _, c := range cs.cmds {
		if c.Process != nil {
			_ = c.Process.Kill()
		}
	}
}

// wait blocks until every child has been reaped and reports the failures.
func (cs *children) wait() error {
	cs.wg.Wait()
	var errs []error
	for i, err := range cs.errs {
		if err != nil {
			errs = append(errs, fmt.Errorf("rank %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}
