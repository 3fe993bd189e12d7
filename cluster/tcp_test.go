package cluster

import (
	"context"
	"encoding/gob"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/cwbudde/mystream/kernel"
)

// startTCP returns a coordinator and size-1 peers, all connected.
func startTCP(t *testing.T, size int) []Communicator {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coord, err := Listen("127.0.0.1:0", size)
	if err != nil {
		t.Fatal(err)
	}
	accepted := make(chan error, 1)
	go func() { accepted <- coord.Accept(ctx) }()

	comms := []Communicator{coord}
	for rank := 1; rank < size; rank++ {
		p, err := Dial(ctx, coord.Addr().String(), rank, size)
		if err != nil {
			t.Fatal(err)
		}
		comms = append(comms, p)
	}
	if err := <-accepted; err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		for _, c := range comms {
			_ = c.Close()
		}
	})
	return comms
}

func TestRunRankTCP(t *testing.T) {
	comms := startTCP(t, 2)
	outcomes := runAll(t, comms, rankConfig())
	checkDistributed(t, outcomes)
}

func TestTCPBarrierAndGather(t *testing.T) {
	comms := startTCP(t, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errs := make(chan error, 3)
	gathered := make(chan [][]Record, 1)
	for _, c := range comms {
		go func() {
			for i := 0; i < 5; i++ {
				if err := c.Barrier(ctx); err != nil {
					errs <- err
					return
				}
			}
			out, err := c.Gather(ctx, []Record{{Rank: c.Rank(), Kernel: kernel.Axpy, Bandwidth: float64(c.Rank())}})
			if c.Rank() == 0 {
				gathered <- out
			}
			errs <- err
		}()
	}
	for range comms {
		if err := <-errs; err != nil {
			t.Fatal(err)
		}
	}
	out := <-gathered
	if len(out) != 3 {
		t.Fatalf("gathered %d ranks", len(out))
	}
	for r, recs := range out {
		if len(recs) != 1 || recs[0].Rank != r || recs[0].Bandwidth != float64(r) {
			t.Fatalf("rank %d records %+v", r, recs)
		}
	}
}

func TestAcceptRejectsBadHello(t *testing.T) {
	tests := []struct {
		name  string
		hello message
	}{
		{"wrong size", message{Kind: msgHello, Rank: 1, Size: 3}},
		{"rank zero", message{Kind: msgHello, Rank: 0, Size: 2}},
		{"rank too large", message{Kind: msgHello, Rank: 2, Size: 2}},
		{"not hello", message{Kind: msgArrive, Rank: 1, Size: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			coord, err := Listen("127.0.0.1:0", 2)
			if err != nil {
				t.Fatal(err)
			}
			defer coord.Close()

			conn, err := net.Dial("tcp", coord.Addr().String())
			if err != nil {
				t.Fatal(err)
			}
			defer conn.Close()
			if err := gob.NewEncoder(conn).Encode(tt.hello); err != nil {
				t.Fatal(err)
			}

			if err := coord.Accept(ctx); !errors.Is(err, ErrProtocol) {
				t.Fatalf("Accept = %v, want ErrProtocol", err)
			}
		})
	}
}

func TestAcceptRejectsDuplicateRank(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coord, err := Listen("127.0.0.1:0", 3)
	if err != nil {
		t.Fatal(err)
	}
	defer coord.Close()

	accepted := make(chan error, 1)
	go func() { accepted <- coord.Accept(ctx) }()

	for i := 0; i < 2; i++ {
		p, err := Dial(ctx, coord.Addr().String(), 1, 3)
		if err != nil {
			t.Fatal(err)
		}
		defer p.Close()
	}
	if err := <-accepted; !errors.Is(err, ErrProtocol) {
		t.Fatalf("Accept = %v, want ErrProtocol", err)
	}
}

func TestAcceptTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	coord, err := Listen("127.0.0.1:0", 2)
	if err != nil {
		t.Fatal(err)
	}
	defer coord.Close()

	if err := coord.Accept(ctx); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Accept = %v, want ErrIncomplete", err)
	}
}

func TestBarrierPeerDisconnect(t *testing.T) {
	comms := startTCP(t, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := comms[1].Close(); err != nil {
		t.Fatal(err)
	}
	if err := comms[0].Barrier(ctx); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Barrier = %v, want ErrIncomplete", err)
	}
}

func TestDialRejectsRank(t *testing.T) {
	if _, err := Dial(context.Background(), "127.0.0.1:1", 0, 2); err == nil {
		t.Fatal("Dial accepted rank 0")
	}
}

func TestDialGivesUp(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	if _, err := Dial(ctx, addr, 1, 2); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Dial = %v, want ErrIncomplete", err)
	}
}
