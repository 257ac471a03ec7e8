// Package rtc carries peer links over pion WebRTC, signalled through the
// room's peer-signal relay.
package rtc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/Office/internal/client/peer"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrTransportClosed = errors.New("transport closed")
	ErrForeignStream   = errors.New("stream was not captured by this transport")
	ErrChannelNotOpen  = errors.New("data channel not open")
)

// Sender relays a peer-signal to the room.
type Sender func(protocol.PeerSignal) error

// Transport is the pion implementation of peer.Transport for one local
// identity. Every call and every data channel is its own peer connection.
type Transport struct {
	localID string
	cfg     webrtc.Configuration
	send    Sender
	logger  zerolog.Logger

	mu      sync.Mutex
	handler peer.InboundHandler
	links   map[string]*link
	closed  bool
}

func NewTransport(localID string, cfg webrtc.Configuration, send Sender) *Transport {
	return &Transport{
		localID: localID,
		cfg:     cfg,
		send:    send,
		links:   make(map[string]*link),
		logger:  log.With().Str("module", "rtc").Str("peer_id", localID).Logger(),
	}
}

func (t *Transport) Listen(h peer.InboundHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Call offers local to peerID. It returns at once; the answer arrives
// through HandleSignal.
func (t *Transport) Call(peerID string, local peer.Stream) (peer.Call, error) {
	ls, ok := local.(*LocalStream)
	if !ok {
		return nil, ErrForeignStream
	}
	l, err := t.newLink(uuid.NewString(), peerID, "")
	if err != nil {
		return nil, err
	}
	ot, err := ls.Attach(l.id)
	if err != nil {
		l.shutdown(false)
		return nil, err
	}
	l.attach(ls, ot)
	if err := l.conn.AddLocalTrack(ot.Track); err != nil {
		l.shutdown(false)
		return nil, err
	}
	go l.offer()
	return l, nil
}

// Connect opens a data channel to peerID.
func (t *Transport) Connect(peerID, label string) (peer.Channel, error) {
	l, err := t.newLink(uuid.NewString(), peerID, label)
	if err != nil {
		return nil, err
	}
	dc, err := l.conn.CreateDataChannel(label)
	if err != nil {
		l.shutdown(false)
		return nil, err
	}
	l.wireChannel(dc)
	go l.offer()
	return l, nil
}

// HandleSignal applies a peer-signal addressed to this identity.
func (t *Transport) HandleSignal(sig protocol.PeerSignal) {
	switch sig.Kind {
	case protocol.SignalOffer:
		t.onOffer(sig)
	case protocol.SignalAnswer:
		l := t.link(sig.LinkID, sig.From)
		if l == nil {
			t.logger.Debug().Str("link", sig.LinkID).Msg("answer for unknown link")
			return
		}
		if err := l.conn.ApplyAnswer(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sig.SDP}); err != nil {
			t.logger.Warn().Err(err).Str("link", sig.LinkID).Msg("bad answer")
			l.shutdown(true)
		}
	case protocol.SignalBye:
		if l := t.link(sig.LinkID, sig.From); l != nil {
			l.shutdown(false)
		}
	}
}

func (t *Transport) onOffer(sig protocol.PeerSignal) {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h == nil {
		t.logger.Warn().Str("from", sig.From).Msg("offer before listen")
		return
	}
	l, err := t.newLink(sig.LinkID, sig.From, sig.Label)
	if err != nil {
		t.logger.Warn().Err(err).Str("from", sig.From).Msg("cannot accept offer")
		return
	}
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sig.SDP}

	if sig.Label != "" {
		l.conn.OnDataChannel(func(dc *webrtc.DataChannel) {
			l.wireChannel(dc)
			dc.OnOpen(func() { h.OnChannel(l) })
		})
		go l.answer(offer, nil)
		return
	}
	l.offerSDP = &offer
	h.OnCall(l)
}

func (t *Transport) newLink(id, peerID, label string) (*link, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	if _, dup := t.links[id]; dup {
		t.mu.Unlock()
		return nil, fmt.Errorf("duplicate link %s", id)
	}
	t.mu.Unlock()

	conn, err := NewConnection(t.cfg, id, peerID)
	if err != nil {
		return nil, err
	}
	l := &link{t: t, id: id, peerID: peerID, label: label, conn: conn}
	conn.OnTrack(l.onTrack)
	conn.OnConnected(l.onConnected)
	conn.OnClosed(func() { l.shutdown(false) })

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		conn.Close()
		return nil, ErrTransportClosed
	}
	t.links[id] = l
	return l, nil
}

// link returns the link id shared with from.
func (t *Transport) link(id, from string) *link {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.links[id]
	if !ok || l.peerID != from {
		return nil
	}
	return l
}

func (t *Transport) forget(l *link) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.links[l.id] == l {
		delete(t.links, l.id)
	}
}

// Links returns the number of live links.
func (t *Transport) Links() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.links)
}

func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	links := make([]*link, 0, len(t.links))
	for _, l := range t.links {
		links = append(links, l)
	}
	t.mu.Unlock()
	for _, l := range links {
		l.shutdown(true)
	}
	return nil
}

func (t *Transport) signal(l *link, kind, sdp string) {
	err := t.send(protocol.PeerSignal{
		To:     l.peerID,
		From:   t.localID,
		Kind:   kind,
		LinkID: l.id,
		Label:  l.label,
		SDP:    sdp,
	})
	if err != nil {
		t.logger.Warn().Err(err).Str("link", l.id).Str("kind", kind).Msg("signal failed")
	}
}
