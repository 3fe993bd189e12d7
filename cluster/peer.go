package cluster

import (
	"context"
	"fmt"
	"net"
	"time"
)

// dialRetry is the pause between connection attempts while the coordinator
// is not yet listening.
const dialRetry = 50 * time.Millisecond

// Peer is the rank 1..size-1 end of a TCP run.
type Peer struct {
	w    *wire
	rank int
	size int
	seq  uint64
}

// Dial connects rank to the coordinator at addr, retrying until ctx is done.
func Dial(ctx context.Context, addr string, rank, size int) (*Peer, error) {
	if rank < 1 || rank >= size {
		return nil, fmt.Errorf("cluster: rank %d outside 1..%d", rank, size-1)
	}

	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			p := &Peer{w: newWire(conn), rank: rank, size: size}
			if err := p.w.send(ctx, message{Kind: msgHello, Rank: rank, Size: size}); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return p, nil
		}

		t := time.NewTimer(dialRetry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("%w: dial %s: %w", ErrIncomplete, addr, err)
		case <-t.C:
		}
	}
}

func (p *Peer) Rank() int { return p.rank }
func (p *Peer) Size() int { return p.size }

// Barrier announces arrival and waits for the coordinator's release.
func (p *Peer) Barrier(ctx context.Context) error {
	p.seq++
	if err := p.w.send(ctx, message{Kind: msgArrive, Rank: p.rank, Seq: p.seq}); err != nil {
		return err
	}
	_, err := p.w.expect(ctx, msgRelease, 0, p.seq)
	return err
}

// Gather sends records to the coordinator and returns nil.
func (p *Peer) Gather(ctx context.Context, records []Record) ([][]Record, error) {
	return nil, p.w.send(ctx, message{Kind: msgGather, Rank: p.rank, Records: records})
}

// Close closes the connection.
func (p *Peer) Close() error {
	return p.w.close()
}
