package rtc

import (
	"errors"
	"maps"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrStreamClosed = errors.New("stream closed")

// VideoCodec is the codec every local stream is sent with.
var VideoCodec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}

// LocalStream fans the RTP packets of one source out to the links it is
// attached to.
type LocalStream struct {
	id      string
	release func()
	logger  zerolog.Logger

	mu     sync.RWMutex
	outs   map[string]*OutTrack
	closed bool
}

// NewLocalStream creates a stream. release runs once on Close.
func NewLocalStream(id string, release func()) *LocalStream {
	return &LocalStream{
		id:      id,
		release: release,
		outs:    make(map[string]*OutTrack),
		logger:  log.With().Str("module", "stream").Str("stream", id).Logger(),
	}
}

func (s *LocalStream) ID() string { return s.id }

// Attach creates the out track of a link.
func (s *LocalStream) Attach(linkID string) (*OutTrack, error) {
	track, err := webrtc.NewTrackLocalStaticRTP(VideoCodec, "video", s.id)
	if err != nil {
		return nil, err
	}
	ot := NewOutTrack(linkID, track)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamClosed
	}
	if old, ok := s.outs[linkID]; ok {
		old.MarkDelete()
	}
	s.outs[linkID] = ot
	return ot, nil
}

// Detach stops sending to a link.
func (s *LocalStream) Detach(linkID string) {
	s.mu.RLock()
	ot, ok := s.outs[linkID]
	s.mu.RUnlock()
	if ok {
		ot.MarkDelete()
	}
}

// WriteRTP forwards pkt to every open out track.
func (s *LocalStream) WriteRTP(pkt *rtp.Packet) {
	s.mu.RLock()
	snapshot := make(map[string]*OutTrack, len(s.outs))
	maps.Copy(snapshot, s.outs)
	s.mu.RUnlock()

	dirty := make([]string, 0, len(snapshot))
	for link, ot := range snapshot {
		alive, err := ot.Forward(pkt)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("link", link).
				Msg("write RTP error, dropping out track")
		}
		if !alive {
			dirty = append(dirty, link)
		}
	}

	if len(dirty) > 0 {
		s.cleanupDeleted(dirty)
	}
}

func (s *LocalStream) cleanupDeleted(dirty []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, link := range dirty {
		if ot, ok := s.outs[link]; ok && ot.State() == TrackStateDelete {
			delete(s.outs, link)
		}
	}
}

// Links returns the number of attached links.
func (s *LocalStream) Links() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outs)
}

func (s *LocalStream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, ot := range s.outs {
		ot.MarkDelete()
	}
	s.mu.Unlock()
	if s.release != nil {
		s.release()
	}
	s.logger.Info().Msg("stream closed")
}

// RemoteStream is a track received on a link.
type RemoteStream struct {
	Track    *webrtc.TrackRemote
	receiver *webrtc.RTPReceiver
}

func (s *RemoteStream) ID() string { return s.Track.StreamID() }

// ReadRTP blocks for the next packet.
func (s *RemoteStream) ReadRTP() (*rtp.Packet, error) {
	pkt, _, err := s.Track.ReadRTP()
	return pkt, err
}

func (s *RemoteStream) Close() {
	if s.receiver != nil {
		_ = s.receiver.Stop()
	}
}
