package cluster

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

type msgKind uint8

const (
	msgHello msgKind = iota + 1
	msgArrive
	msgRelease
	msgGather
)

func (k msgKind) String() string {
	switch k {
	case msgHello:
		return "hello"
	case msgArrive:
		return "arrive"
	case msgRelease:
		return "release"
	case msgGather:
		return "gather"
	default:
		return fmt.Sprintf("message(%d)", uint8(k))
	}
}

// message is the only frame exchanged between ranks.
type message struct {
	Kind    msgKind
	Rank    int
	Size    int
	Seq     uint64
	Records []Record
}

// wire is one gob-framed TCP connection.
type wire struct {
	conn net.Conn
	enc  *gob.Encoder
	dec  *gob.Decoder
}

func newWire(conn net.Conn) *wire {
	return &wire{conn: conn, enc: gob.NewEncoder(conn), dec: gob.NewDecoder(conn)}
}

func (w *wire) send(ctx context.Context, m message) error {
	return w.withContext(ctx, func() error { return w.enc.Encode(m) })
}

func (w *wire) recv(ctx context.Context) (message, error) {
	var m message
	err := w.withContext(ctx, func() error { return w.dec.Decode(&m) })
	return m, err
}

// expect receives one message and checks its kind, rank and sequence.
func (w *wire) expect(ctx context.Context, kind msgKind, rank int, seq uint64) (message, error) {
	m, err := w.recv(ctx)
	if err != nil {
		return m, err
	}
	if m.Kind != kind || m.Rank != rank || m.Seq != seq {
		return m, fmt.Errorf("%w: got %s rank %d seq %d, want %s rank %d seq %d",
			ErrProtocol, m.Kind, m.Rank, m.Seq, kind, rank, seq)
	}
	return m, nil
}

// withContext runs fn with the connection deadline tied to ctx and maps
// failures onto ErrIncomplete or ErrProtocol.
func (w *wire) withContext(ctx context.Context, fn func() error) error {
	stop := context.AfterFunc(ctx, func() {
		_ = w.conn.SetDeadline(time.Unix(1, 0))
	})
	err := fn()
	stop()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrIncomplete, context.Cause(ctx))
	}
	var netErr net.Error
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrIncomplete, err)
	}
	return fmt.Errorf("%w: %w", ErrProtocol, err)
}

func (w *wire) close() error {
	return w.conn.Close()
}
