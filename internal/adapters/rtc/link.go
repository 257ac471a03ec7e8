package rtc

import (
	"sync"

	"github.com/dkeye/Office/internal/client/peer"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/pion/webrtc/v4"
)

// link is one peer connection. It serves as a peer.Call when it carries
// media and as a peer.Channel when it carries a data channel.
type link struct {
	t      *Transport
	id     string
	peerID string
	label  string
	conn   *Connection

	// offerSDP is the remote offer of an inbound call, applied on Answer.
	offerSDP *webrtc.SessionDescription

	mu       sync.Mutex
	stream   *LocalStream
	out      *OutTrack
	dc       *webrtc.DataChannel
	onStream func(peer.Stream)
	onData   func([]byte)
	onClose  func()
	remote   peer.Stream
	done     bool
}

func (l *link) PeerID() string { return l.peerID }
func (l *link) Label() string  { return l.label }

// Answer accepts an inbound call. A nil local makes it receive-only.
func (l *link) Answer(local peer.Stream) error {
	if l.offerSDP == nil {
		return nil
	}
	var track *webrtc.TrackLocalStaticRTP
	if local != nil {
		ls, ok := local.(*LocalStream)
		if !ok {
			return ErrForeignStream
		}
		ot, err := ls.Attach(l.id)
		if err != nil {
			return err
		}
		l.attach(ls, ot)
		track = ot.Track
	}
	go l.answer(*l.offerSDP, track)
	return nil
}

func (l *link) OnStream(fn func(peer.Stream)) {
	l.mu.Lock()
	remote := l.remote
	l.onStream = fn
	l.mu.Unlock()
	if remote != nil && fn != nil {
		fn(remote)
	}
}

func (l *link) OnData(fn func([]byte)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onData = fn
}

func (l *link) OnClose(fn func()) {
	l.mu.Lock()
	done := l.done
	if !done {
		l.onClose = fn
	}
	l.mu.Unlock()
	if done && fn != nil {
		fn()
	}
}

func (l *link) Send(data []byte) error {
	l.mu.Lock()
	dc := l.dc
	l.mu.Unlock()
	if dc == nil || dc.ReadyState() != webrtc.DataChannelStateOpen {
		return ErrChannelNotOpen
	}
	return dc.Send(data)
}

// Close hangs up and tells the remote side.
func (l *link) Close() { l.shutdown(true) }

func (l *link) attach(ls *LocalStream, ot *OutTrack) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stream, l.out = ls, ot
}

func (l *link) wireChannel(dc *webrtc.DataChannel) {
	l.mu.Lock()
	l.dc = dc
	l.mu.Unlock()
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		l.mu.Lock()
		fn := l.onData
		l.mu.Unlock()
		if fn != nil {
			fn(msg.Data)
		}
	})
	dc.OnClose(func() { l.shutdown(false) })
}

func (l *link) offer() {
	desc, err := l.conn.Offer()
	if err != nil {
		l.t.logger.Warn().Err(err).Str("link", l.id).Msg("offer failed")
		l.shutdown(false)
		return
	}
	l.t.signal(l, protocol.SignalOffer, desc.SDP)
}

func (l *link) answer(offer webrtc.SessionDescription, track *webrtc.TrackLocalStaticRTP) {
	desc, err := l.conn.Answer(offer, track)
	if err != nil {
		l.t.logger.Warn().Err(err).Str("link", l.id).Msg("answer failed")
		l.shutdown(true)
		return
	}
	l.t.signal(l, protocol.SignalAnswer, desc.SDP)
}

func (l *link) onTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
	rs := &RemoteStream{Track: track, receiver: receiver}
	l.mu.Lock()
	l.remote = rs
	fn := l.onStream
	l.mu.Unlock()
	if fn != nil {
		fn(rs)
	}
}

func (l *link) onConnected() {
	l.mu.Lock()
	ot := l.out
	l.mu.Unlock()
	if ot != nil {
		ot.MarkOk()
	}
}

// shutdown releases the link once. bye tells the remote side.
func (l *link) shutdown(bye bool) {
	l.mu.Lock()
	if l.done {
		l.mu.Unlock()
		return
	}
	l.done = true
	stream, dc, onClose := l.stream, l.dc, l.onClose
	l.mu.Unlock()

	l.t.forget(l)
	if bye {
		l.t.signal(l, protocol.SignalBye, "")
	}
	if stream != nil {
		stream.Detach(l.id)
	}
	if dc != nil {
		_ = dc.Close()
	}
	l.conn.Close()
	if onClose != nil {
		onClose()
	}
}
