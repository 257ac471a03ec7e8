package peer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrClosed    = errors.New("peer session closed")
	ErrNoChannel = errors.New("no data channel")
)

// Link pairs a remote peer with its media call and optional data channel.
type Link struct {
	Peer    domain.UserID
	Call    Call
	Channel Channel

	outbound   bool
	connecting bool
}

// deferredAnswer is an inbound call waiting for the local stream.
type deferredAnswer struct {
	link *Link
}

type Option func(*Session)

// WithReceiveOnly answers inbound calls at once without a local stream.
func WithReceiveOnly() Option {
	return func(s *Session) { s.receiveOnly = true }
}

// WithAcceptFrom closes inbound links from peers fn rejects. fn may be
// called from any goroutine.
func WithAcceptFrom(fn func(domain.UserID) bool) Option {
	return func(s *Session) { s.accept = fn }
}

// Session owns the signalling identity of one local user for one purpose
// and every link made under it.
type Session struct {
	self        domain.UserID
	purpose     protocol.Purpose
	id          string
	transport   Transport
	capturer    Capturer
	listener    Listener
	receiveOnly bool
	accept      func(domain.UserID) bool
	logger      zerolog.Logger

	mu            sync.Mutex
	local         Stream
	capturing     bool
	gen           uint64
	cancelCapture context.CancelFunc
	links         map[domain.UserID]*Link
	queue         []deferredAnswer
	closed        bool
}

// NewSession registers the session as the inbound handler of t. capturer
// may be nil for sessions that never send media.
func NewSession(
	self domain.UserID,
	purpose protocol.Purpose,
	t Transport,
	capturer Capturer,
	l Listener,
	opts ...Option,
) *Session {
	if l == nil {
		l = NopListener{}
	}
	s := &Session{
		self:      self,
		purpose:   purpose,
		id:        protocol.EncodePeerID(self, purpose),
		transport: t,
		capturer:  capturer,
		listener:  l,
		links:     make(map[domain.UserID]*Link),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.With().
		Str("module", "peer").
		Str("peer_id", s.id).
		Logger()
	t.Listen(s)
	return s
}

// ID is the signalling identity remote peers address.
func (s *Session) ID() string { return s.id }

func (s *Session) peerOf(peerID string) (domain.UserID, bool) {
	uid, purpose, err := protocol.DecodePeerID(peerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote", peerID).Msg("rejecting link")
		return "", false
	}
	if purpose != s.purpose || uid == s.self {
		s.logger.Warn().Str("remote", peerID).Msg("rejecting link for another identity")
		return "", false
	}
	if s.accept != nil && !s.accept(uid) {
		s.logger.Warn().Str("remote", peerID).Msg("rejecting link from unexpected peer")
		return "", false
	}
	return uid, true
}

// OnCall accepts an inbound media call. It is answered at once when a
// local stream exists or the session is receive-only, and queued otherwise.
func (s *Session) OnCall(c Call) {
	peer, ok := s.peerOf(c.PeerID())
	if !ok {
		c.Close()
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		c.Close()
		return
	}
	link := s.links[peer]
	var replaced *Link
	switch {
	case link != nil && link.outbound && s.self < peer:
		// Both sides dialled; the lower id keeps its own call.
		s.mu.Unlock()
		s.logger.Debug().Str("remote", string(peer)).Msg("dropping crossed inbound call")
		c.Close()
		return
	case link != nil && link.Call == nil && !link.outbound:
		link.Call = c
	default:
		replaced = link
		link = &Link{Peer: peer, Call: c}
		s.links[peer] = link
		s.dropQueued(peer)
	}

	local := s.local
	queued := local == nil && !s.receiveOnly
	if queued {
		s.queue = append(s.queue, deferredAnswer{link: link})
	}
	s.mu.Unlock()

	if replaced != nil {
		s.release(replaced)
	}
	c.OnStream(func(st Stream) { s.listener.OnRemoteStream(peer, st) })
	c.OnClose(func() { s.callClosed(link, c) })

	if queued {
		s.logger.Debug().Str("remote", string(peer)).Msg("call queued until local stream is ready")
		return
	}
	s.answer(link, c, local)
}

// OnChannel accepts an inbound data channel.
func (s *Session) OnChannel(ch Channel) {
	peer, ok := s.peerOf(ch.PeerID())
	if !ok {
		ch.Close()
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ch.Close()
		return
	}
	link := s.links[peer]
	if link == nil {
		link = &Link{Peer: peer}
		s.links[peer] = link
	}
	old := link.Channel
	link.Channel = ch
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.wireChannel(link, ch)
}

func (s *Session) wireChannel(link *Link, ch Channel) {
	peer := link.Peer
	ch.OnData(func(b []byte) { s.listener.OnData(peer, b) })
	ch.OnClose(func() { s.channelClosed(link, ch) })
}

func (s *Session) answer(link *Link, c Call, local Stream) {
	if err := c.Answer(local); err != nil {
		s.fail(link, fmt.Errorf("%w: answer %s: %v", ErrTransport, link.Peer, err))
	}
}

// StartCapture begins capturing the local stream in the background. It is
// a no-op while a capture is running or a stream already exists.
func (s *Session) StartCapture(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.local != nil || s.capturing {
		s.mu.Unlock()
		return
	}
	if s.capturer == nil {
		s.mu.Unlock()
		s.listener.OnTransportFailure(fmt.Errorf("%w: %w: no capturer", ErrTransport, ErrCapture))
		return
	}
	s.capturing = true
	s.gen++
	gen := s.gen
	cctx, cancel := context.WithCancel(ctx)
	s.cancelCapture = cancel
	s.mu.Unlock()

	go s.capture(cctx, gen)
}

func (s *Session) capture(ctx context.Context, gen uint64) {
	st, err := s.capturer.Capture(ctx)

	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		if st != nil {
			st.Close()
		}
		return
	}
	s.capturing = false
	if s.cancelCapture != nil {
		s.cancelCapture()
		s.cancelCapture = nil
	}
	if err != nil {
		s.mu.Unlock()
		err = fmt.Errorf("%w: %w: %v", ErrTransport, ErrCapture, err)
		s.logger.Warn().Err(err).Msg("capture failed")
		s.listener.OnTransportFailure(err)
		return
	}
	s.local = st
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	s.logger.Info().Str("stream", st.ID()).Int("queued", len(pending)).Msg("local stream ready")
	for _, d := range pending {
		s.answer(d.link, d.link.Call, st)
	}
	s.listener.OnLocalStream(st)
}

// StopCapture releases the local stream and every link, cancelling a
// capture still in flight.
func (s *Session) StopCapture() {
	s.mu.Lock()
	s.gen++
	if s.cancelCapture != nil {
		s.cancelCapture()
		s.cancelCapture = nil
	}
	s.capturing = false
	local := s.local
	s.local = nil
	links := s.takeLinks()
	s.mu.Unlock()

	for _, l := range links {
		s.release(l)
	}
	if local != nil {
		local.Close()
	}
}

// CallPeer opens a media call to peer, plus a control channel when t is
// control. An existing link is reused.
func (s *Session) CallPeer(peer domain.UserID, t domain.AccessType) error {
	wantChannel := t == domain.AccessControl

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	local := s.local
	if local == nil {
		s.mu.Unlock()
		return ErrNoLocalStream
	}
	if link, ok := s.links[peer]; ok {
		if !wantChannel || link.Channel != nil || link.connecting {
			s.mu.Unlock()
			return nil
		}
		link.connecting = true
		s.mu.Unlock()
		return s.connect(link)
	}
	link := &Link{Peer: peer, outbound: true, connecting: wantChannel}
	s.links[peer] = link
	s.mu.Unlock()

	call, err := s.transport.Call(protocol.EncodePeerID(peer, s.purpose), local)
	if err != nil {
		err = fmt.Errorf("%w: call %s: %v", ErrTransport, peer, err)
		s.fail(link, err)
		return err
	}

	s.mu.Lock()
	if s.links[peer] != link {
		s.mu.Unlock()
		call.Close()
		return nil
	}
	link.Call = call
	s.mu.Unlock()

	call.OnStream(func(st Stream) { s.listener.OnRemoteStream(peer, st) })
	call.OnClose(func() { s.callClosed(link, call) })
	s.logger.Info().Str("remote", string(peer)).Str("access", string(t)).Msg("calling peer")

	if wantChannel {
		return s.connect(link)
	}
	return nil
}

func (s *Session) connect(link *Link) error {
	ch, err := s.transport.Connect(protocol.EncodePeerID(link.Peer, s.purpose), protocol.ControlLabel)

	s.mu.Lock()
	link.connecting = false
	if err != nil {
		s.mu.Unlock()
		err = fmt.Errorf("%w: channel %s: %v", ErrTransport, link.Peer, err)
		s.logger.Warn().Err(err).Msg("control channel failed")
		s.listener.OnTransportFailure(err)
		return err
	}
	if s.links[link.Peer] != link || link.Channel != nil {
		s.mu.Unlock()
		ch.Close()
		return nil
	}
	link.Channel = ch
	s.mu.Unlock()

	s.wireChannel(link, ch)
	return nil
}

// Hangup closes the link to peer, if any.
func (s *Session) Hangup(peer domain.UserID) {
	s.mu.Lock()
	link, ok := s.links[peer]
	if ok {
		delete(s.links, peer)
		s.dropQueued(peer)
	}
	s.mu.Unlock()
	if ok {
		s.release(link)
	}
}

// Send writes data on the data channel to peer.
func (s *Session) Send(peer domain.UserID, data []byte) error {
	s.mu.Lock()
	var ch Channel
	if link, ok := s.links[peer]; ok {
		ch = link.Channel
	}
	s.mu.Unlock()
	if ch == nil {
		return ErrNoChannel
	}
	return ch.Send(data)
}

// Close releases everything and the transport. The session is unusable
// afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	s.StopCapture()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.transport.Close()
}

// Local returns the local stream, nil before a capture finished.
func (s *Session) Local() Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

// Linked reports whether a link to peer exists.
func (s *Session) Linked(peer domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.links[peer]
	return ok
}

// Peers returns the linked peers, sorted.
func (s *Session) Peers() []domain.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserID, 0, len(s.links))
	for p := range s.links {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.UserID) int { return cmp.Compare(a, b) })
	return out
}

// Queued returns the number of calls waiting for the local stream.
func (s *Session) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Session) callClosed(link *Link, c Call) {
	s.mu.Lock()
	if s.links[link.Peer] != link || link.Call != c {
		s.mu.Unlock()
		return
	}
	s.unlinkLocked(link)
	s.mu.Unlock()
	s.release(link)
}

func (s *Session) channelClosed(link *Link, ch Channel) {
	s.mu.Lock()
	if s.links[link.Peer] != link || link.Channel != ch {
		s.mu.Unlock()
		return
	}
	s.unlinkLocked(link)
	s.mu.Unlock()
	s.release(link)
}

func (s *Session) fail(link *Link, err error) {
	s.mu.Lock()
	current := s.links[link.Peer] == link
	if current {
		s.unlinkLocked(link)
	}
	s.mu.Unlock()
	if current {
		s.release(link)
	}
	s.logger.Warn().Err(err).Str("remote", string(link.Peer)).Msg("link failed")
	s.listener.OnTransportFailure(err)
}

func (s *Session) unlinkLocked(link *Link) {
	delete(s.links, link.Peer)
	s.dropQueued(link.Peer)
}

func (s *Session) dropQueued(peer domain.UserID) {
	s.queue = slices.DeleteFunc(s.queue, func(d deferredAnswer) bool { return d.link.Peer == peer })
}

func (s *Session) takeLinks() []*Link {
	out := make([]*Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	s.links = make(map[domain.UserID]*Link)
	s.queue = nil
	return out
}

// release closes a link already removed from the map. Each link reaches
// release at most once.
func (s *Session) release(link *Link) {
	if link.Call != nil {
		link.Call.Close()
	}
	if link.Channel != nil {
		link.Channel.Close()
	}
	if link.Call != nil {
		s.listener.OnRemoteStreamClosed(link.Peer)
	}
	s.logger.Debug().Str("remote", string(link.Peer)).Msg("link closed")
}
