package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Office/internal/client/negotiation"
	"github.com/dkeye/Office/internal/client/peer"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	in   chan []byte
	sent chan []byte

	mu     sync.Mutex
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 32), sent: make(chan []byte, 256)}
}

func (c *fakeConn) Send(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.sent <- b
	return nil
}

func (c *fakeConn) Incoming() <-chan []byte { return c.in }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) deliver(t *testing.T, msg any) {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	c.in <- b
}

// expect skips sent messages until one of type typ arrives.
func (c *fakeConn) expect(t *testing.T, typ protocol.Type) []byte {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case b := <-c.sent:
			got, err := protocol.PeekType(b)
			require.NoError(t, err)
			if got == typ {
				return b
			}
		case <-deadline:
			t.Fatalf("no %s message sent", typ)
			return nil
		}
	}
}

type fakeStream struct{ id string }

func (s fakeStream) ID() string { return s.id }
func (s fakeStream) Close()     {}

type fakeCapturer struct{ id string }

func (c fakeCapturer) Capture(context.Context) (peer.Stream, error) {
	return fakeStream{id: c.id}, nil
}

type failingCapturer struct{}

func (failingCapturer) Capture(context.Context) (peer.Stream, error) {
	return nil, errors.New("no camera")
}

// noticeUI records notices and ignores dialogs.
type noticeUI struct{ notices chan string }

func (noticeUI) OpenHostDialog(domain.SeatID, map[domain.UserID]domain.AccessType) {}
func (noticeUI) OpenViewerDialog(domain.SeatID, domain.UserID)                     {}
func (noticeUI) AccessRequested(domain.SeatID, domain.UserID, domain.AccessType)   {}
func (noticeUI) RequestWithdrawn(domain.SeatID, domain.UserID)                     {}
func (noticeUI) StateChanged(domain.SeatID, negotiation.State)                     {}
func (u noticeUI) Notice(text string)                                              { u.notices <- text }

type nopCall struct{ peerID string }

func (c nopCall) PeerID() string             { return c.peerID }
func (c nopCall) Answer(peer.Stream) error   { return nil }
func (c nopCall) OnStream(func(peer.Stream)) {}
func (c nopCall) OnClose(func())             {}
func (c nopCall) Close()                     {}

type nopChannel struct{ peerID string }

func (c nopChannel) PeerID() string      { return c.peerID }
func (c nopChannel) Label() string       { return protocol.ControlLabel }
func (c nopChannel) Send([]byte) error   { return nil }
func (c nopChannel) OnData(func([]byte)) {}
func (c nopChannel) OnClose(func())      {}
func (c nopChannel) Close()              {}

type fakeTransport struct {
	id    string
	send  func(protocol.PeerSignal) error
	calls chan string
	sigs  chan protocol.PeerSignal
}

func (t *fakeTransport) Listen(peer.InboundHandler) {}
func (t *fakeTransport) Call(peerID string, _ peer.Stream) (peer.Call, error) {
	t.calls <- peerID
	return nopCall{peerID: peerID}, nil
}
func (t *fakeTransport) Connect(peerID, _ string) (peer.Channel, error) {
	return nopChannel{peerID: peerID}, nil
}
func (t *fakeTransport) Close() error                         { return nil }
func (t *fakeTransport) HandleSignal(sig protocol.PeerSignal) { t.sigs <- sig }

type transports struct {
	mu  sync.Mutex
	all map[string]*fakeTransport
}

func (ts *transports) factory(localID string, send func(protocol.PeerSignal) error) SignalTransport {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t := &fakeTransport{id: localID, send: send, calls: make(chan string, 16), sigs: make(chan protocol.PeerSignal, 16)}
	ts.all[localID] = t
	return t
}

func (ts *transports) get(t *testing.T, id string) *fakeTransport {
	t.Helper()
	var ft *fakeTransport
	require.Eventually(t, func() bool {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		ft = ts.all[id]
		return ft != nil
	}, 2*time.Second, 5*time.Millisecond)
	return ft
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	var zero T
	return zero
}
