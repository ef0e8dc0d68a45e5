// Package transport provides the point-to-point message delivery the
// council runs on: a background accept loop paired with a dial-per-message
// sender. Delivery is reliable, ordered per-connection, and best-effort
// across connections — there is no retry and no persistent channel between
// peers.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	obserrors "github.com/paxos-council/council/internal/obs/errors"
	"github.com/paxos-council/council/internal/paxos"
	"github.com/paxos-council/council/internal/paxos/wire"
)

// Handler processes one inbound message. It runs on the accept goroutine for
// that connection; the connection is closed once Handler returns.
type Handler func(msg paxos.Message)

// AddressBook maps a peer id to its "host:port" endpoint. The same mapping
// is configured on every peer (spec.md §6).
type AddressBook map[int]string

type Transport struct {
	addr    string
	book    AddressBook
	handler Handler
	log     *slog.Logger
	dialTO  time.Duration

	listener net.Listener
}

func New(addr string, book AddressBook, handler Handler, log *slog.Logger) *Transport {
	return &Transport{
		addr:    addr,
		book:    book,
		handler: handler,
		log:     log,
		dialTO:  2 * time.Second,
	}
}

// Listen binds addr and accepts connections in the background until ctx is
// done or Shutdown closes the listener. A bind failure is returned
// synchronously to the caller (spec.md §7: the one fatal construction-time
// error).
func (t *Transport) Listen(ctx context.Context) error {
	l, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("transport: listen %s: %w", t.addr, err)
	}
	t.listener = l

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	go t.acceptLoop(ctx, l)
	return nil
}

func (t *Transport) acceptLoop(ctx context.Context, l net.Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return // shutdown requested, exit cleanly
			}
			t.log.Warn("transport accept error", "error", err)
			continue
		}
		go t.handleConn(conn)
	}
}

func (t *Transport) handleConn(conn net.Conn) {
	defer conn.Close()

	msg, err := wire.ReadMessage(conn)
	if err != nil {
		t.log.Debug("transport decode failed, connection abandoned", "error", obserrors.Decode("", err))
		return
	}
	t.handler(msg)
}

// Send dials toID's endpoint, writes one framed message, and closes the
// connection. A dial or write failure is logged and swallowed — from the
// protocol's perspective it is indistinguishable from network loss.
func (t *Transport) Send(toID int, msg paxos.Message) {
	endpoint, ok := t.book[toID]
	if !ok {
		t.log.Warn("transport send: unknown peer", "to", toID)
		return
	}

	conn, err := net.DialTimeout("tcp", endpoint, t.dialTO)
	if err != nil {
		t.log.Warn("transport send failed", "to", toID, "type", msg.Type, "error", obserrors.Dropped("", err))
		return
	}
	defer conn.Close()

	if err := wire.WriteMessage(conn, msg); err != nil {
		t.log.Warn("transport write failed", "to", toID, "type", msg.Type, "error", obserrors.Dropped("", err))
	}
}

// Shutdown closes the listening endpoint. Idempotent: closing twice is safe
// to call, later calls simply observe an already-closed listener.
func (t *Transport) Shutdown() {
	if t.listener != nil {
		t.listener.Close()
	}
}
