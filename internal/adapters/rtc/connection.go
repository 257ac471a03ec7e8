package rtc

import (
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Connection is one pion peer connection carrying a single link. ICE is not
// trickled: descriptions are exchanged once gathering completed.
type Connection struct {
	pc     *webrtc.PeerConnection
	logger zerolog.Logger

	mu            sync.Mutex
	onTrack       func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)
	onDataChannel func(dc *webrtc.DataChannel)
	onConnected   func()
	onClosed      func()
	closed        atomic.Bool
}

// ICEConfig builds a configuration from STUN urls.
func ICEConfig(stun []string) webrtc.Configuration {
	if len(stun) == 0 {
		return webrtc.Configuration{}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: stun}},
	}
}

func NewConnection(cfg webrtc.Configuration, linkID, peerID string) (*Connection, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	c := &Connection{
		pc: pc,
		logger: log.With().
			Str("module", "webrtc").
			Str("link", linkID).
			Str("remote", peerID).
			Logger(),
	}
	c.start()
	return c, nil
}

func (c *Connection) start() {
	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		c.logger.Debug().Str("ice_state", s.String()).Msg("ICE state")
	})

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		c.logger.Info().Str("peer_connection_state", s.String()).Msg("Peer state")
		switch s {
		case webrtc.PeerConnectionStateConnected:
			if fn := c.callback(func() func() { return c.onConnected }); fn != nil {
				fn()
			}
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
			c.Close()
		}
	})

	c.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		c.logger.Info().
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")
		c.mu.Lock()
		fn := c.onTrack
		c.mu.Unlock()
		if fn != nil {
			fn(track, receiver)
		}
	})

	c.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		c.mu.Lock()
		fn := c.onDataChannel
		c.mu.Unlock()
		if fn != nil {
			fn(dc)
			return
		}
		_ = dc.Close()
	})
}

func (c *Connection) callback(get func() func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	return get()
}

// Offer creates the local offer and waits for candidate gathering.
func (c *Connection) Offer() (*webrtc.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	gatherComplete := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return nil, err
	}
	<-gatherComplete
	return c.pc.LocalDescription(), nil
}

// Answer applies a remote offer, attaches track when set and returns the
// gathered answer.
func (c *Connection) Answer(offer webrtc.SessionDescription, track *webrtc.TrackLocalStaticRTP) (*webrtc.SessionDescription, error) {
	if err := c.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	if track != nil {
		if err := c.AddLocalTrack(track); err != nil {
			return nil, err
		}
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}

	gatherComplete := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	<-gatherComplete

	return c.pc.LocalDescription(), nil
}

func (c *Connection) ApplyAnswer(answer webrtc.SessionDescription) error {
	return c.pc.SetRemoteDescription(answer)
}

// AddLocalTrack attaches a local static RTP track and drains its RTCP.
func (c *Connection) AddLocalTrack(track *webrtc.TrackLocalStaticRTP) error {
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return err
	}
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return nil
}

func (c *Connection) CreateDataChannel(label string) (*webrtc.DataChannel, error) {
	return c.pc.CreateDataChannel(label, nil)
}

// OnTrack sets application-level callback for remote tracks.
func (c *Connection) OnTrack(fn func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTrack = fn
}

// OnDataChannel sets the callback for channels the remote side opened.
func (c *Connection) OnDataChannel(fn func(dc *webrtc.DataChannel)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDataChannel = fn
}

func (c *Connection) OnConnected(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnected = fn
}

// OnClosed sets the callback run once when the connection ends.
func (c *Connection) OnClosed(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClosed = fn
}

func (c *Connection) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	if err := c.pc.Close(); err != nil {
		c.logger.Error().Err(err).Msg("close error")
	} else {
		c.logger.Info().Msg("closed")
	}
	if fn := c.callback(func() func() { return c.onClosed }); fn != nil {
		fn()
	}
}
