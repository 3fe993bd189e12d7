package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBrokenBarrier is returned by Await once the barrier has been broken.
var ErrBrokenBarrier = errors.New("engine: broken barrier")

// Barrier is a reusable rendezvous point for a fixed number of parties.
// Each call to Await blocks until all parties have called it; then all are
// released together and the barrier resets for the next generation.
//
// An optional action runs once per generation on the goroutine of the last
// party to arrive, before any party is released. If the action fails, a
// context is cancelled while waiting, or Break is called, the barrier is
// broken: every waiting and every future Await returns an error wrapping
// ErrBrokenBarrier.
type Barrier struct {
	parties int
	action  func(context.Context) error

	mu      sync.Mutex
	arrived int
	gen     *generation
	err     error
}

type generation struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newGeneration() *generation {
	return &generation{done: make(chan struct{})}
}

func (g *generation) release(err error) {
	g.once.Do(func() {
		g.err = err
		close(g.done)
	})
}

// NewBarrier returns a barrier for parties goroutines. action may be nil.
// It panics if parties is less than one.
func NewBarrier(parties int, action func(context.Context) error) *Barrier {
	if parties < 1 {
		panic("engine: barrier needs at least one party")
	}
	return &Barrier{parties: parties, action: action, gen: newGeneration()}
}

// Parties returns the number of parties the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}

// Await blocks until all parties have arrived, the barrier is broken, or ctx
// is done. Cancelling ctx breaks the barrier for everyone.
func (b *Barrier) Await(ctx context.Context) error {
	if ctx.Err() != nil {
		b.Break(context.Cause(ctx))
	}

	b.mu.Lock()
	if b.err != nil {
		err := b.err
		b.mu.Unlock()
		return err
	}
	g := b.gen
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.gen = newGeneration()
		b.mu.Unlock()

		if b.action != nil {
			if err := b.action(ctx); err != nil {
				return b.breakWith(g, fmt.Errorf("%w: barrier action: %w", ErrBrokenBarrier, err))
			}
		}
		g.release(nil)
		return nil
	}
	b.mu.Unlock()

	select {
	case <-g.done:
		return g.err
	case <-ctx.Done():
		select {
		case <-g.done:
			return g.err
		default:
		}
		return b.breakWith(g, fmt.Errorf("%w: %w", ErrBrokenBarrier, context.Cause(ctx)))
	}
}

// Break breaks the barrier with cause, releasing all waiting parties.
func (b *Barrier) Break(cause error) {
	b.mu.Lock()
	g := b.gen
	b.mu.Unlock()
	b.breakWith(g, fmt.Errorf("%w: %w", ErrBrokenBarrier, cause))
}

// Err returns the error that broke the barrier, or nil.
func (b *Barrier) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Barrier) breakWith(g *generation, err error) error {
	b.mu.Lock()
	if b.err == nil {
		b.err = err
	}
	err = b.err
	current := b.gen
	b.mu.Unlock()

	g.release(err)
	current.release(err)
	return err
}
