package cluster

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
)

// Coordinator is the rank 0 end of a TCP run.
type Coordinator struct {
	ln    net.Listener
	size  int
	peers []*wire // indexed by rank; peers[0] is nil
	seq   uint64
}

// Listen binds addr for a run of size ranks. Call Accept before using the
// coordinator as a Communicator.
func Listen(addr string, size int) (*Coordinator, error) {
	if size < 1 {
		return nil, fmt.Errorf("cluster: world size must be positive, got %d", size)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cluster: listen %s: %w", addr, err)
	}
	return &Coordinator{ln: ln, size: size, peers: make([]*wire, size)}, nil
}

// Addr returns the bound address.
func (c *Coordinator) Addr() net.Addr {
	return c.ln.Addr()
}

// Accept waits until ranks 1..size-1 have connected and introduced
// themselves. A peer announcing a different world size, an out-of-range
// rank or a rank already taken fails the run with ErrProtocol.
func (c *Coordinator) Accept(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.ln.Close() })
	defer stop()

	for joined := 1; joined < c.size; joined++ {
		conn, err := c.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: waiting for %d ranks: %w", ErrIncomplete, c.size-joined, context.Cause(ctx))
			}
			return fmt.Errorf("%w: accept: %w", ErrIncomplete, err)
		}
		w := newWire(conn)
		m, err := w.recv(ctx)
		if err != nil {
			_ = w.close()
			return err
		}
		switch {
		case m.Kind != msgHello:
			err = fmt.Errorf("%w: expected hello, got %s", ErrProtocol, m.Kind)
		case m.Size != c.size:
			err = fmt.Errorf("%w: rank %d expects world size %d, coordinator has %d", ErrProtocol, m.Rank, m.Size, c.size)
		case m.Rank < 1 || m.Rank >= c.size:
			err = fmt.Errorf("%w: rank %d out of range", ErrProtocol, m.Rank)
		case c.peers[m.Rank] != nil:
			err = fmt.Errorf("%w: rank %d connected twice", ErrProtocol, m.Rank)
		}
		if err != nil {
			_ = w.close()
			return err
		}
		c.peers[m.Rank] = w
	}
	return nil
}

func (c *Coordinator) Rank() int { return 0 }
func (c *Coordinator) Size() int { return c.size }

// Barrier waits for an arrival from every peer, then releases them all.
func (c *Coordinator) Barrier(ctx context.Context) error {
	c.seq++
	seq := c.seq

	g, gctx := errgroup.WithContext(ctx)
	for rank, w := range c.peers[1:] {
		g.Go(func() error {
			_, err := w.expect(gctx, msgArrive, rank+1, seq)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	g, gctx = errgroup.WithContext(ctx)
	for _, w := range c.peers[1:] {
		g.Go(func() error {
			return w.send(gctx, message{Kind: msgRelease, Seq: seq})
		})
	}
	return g.Wait()
}

// Gather collects one record batch from every peer.
func (c *Coordinator) Gather(ctx context.Context, records []Record) ([][]Record, error) {
	out := make([][]Record, c.size)
	out[0] = records

	g, gctx := errgroup.WithContext(ctx)
	for i, w := range c.peers[1:] {
		rank := i + 1
		g.Go(func() error {
			m, err := w.expect(gctx, msgGather, rank, 0)
			if err != nil {
				return err
			}
			out[rank] = m.Records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes every peer connection and the listener.
func (c *Coordinator) Close() error {
	var errs []error
	for _, w := range c.peers[1:] {
		if w != nil {
			errs = append(errs, w.close())
		}
	}
	if err := c.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
