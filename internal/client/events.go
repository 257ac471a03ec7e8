package client

import (
	"errors"

	"github.com/dkeye/Office/internal/client/peer"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog/log"
)

// sessionEvents routes the events of one peer session. Loop state is only
// touched through post.
type sessionEvents struct {
	c       *Client
	purpose protocol.Purpose
}

func (e sessionEvents) OnRemoteStream(from domain.UserID, s peer.Stream) {
	e.c.opts.Hooks.OnRemoteStream(e.purpose, from, s)
}

func (e sessionEvents) OnRemoteStreamClosed(from domain.UserID) {
	e.c.opts.Hooks.OnRemoteStreamClosed(e.purpose, from)
}

func (e sessionEvents) OnData(from domain.UserID, data []byte) {
	msg, err := protocol.UnmarshalControl(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "client").Str("from", string(from)).Msg("bad control frame")
		return
	}
	e.c.opts.Hooks.OnControl(from, msg)
}

func (e sessionEvents) OnLocalStream(peer.Stream) {
	if e.purpose == protocol.PurposeScreenShare {
		e.c.post(func() { e.c.seats.LocalReady() })
		return
	}
	e.c.post(func() { e.c.tracker.LocalReady() })
}

// OnTransportFailure rolls back a failed capture and reports failed links.
func (e sessionEvents) OnTransportFailure(err error) {
	log.Warn().Err(err).Str("module", "client").Str("purpose", string(e.purpose)).Msg("transport failure")
	switch {
	case !errors.Is(err, peer.ErrCapture):
		e.c.post(func() { e.c.opts.UI.Notice("connection failed: " + err.Error()) })
	case e.purpose == protocol.PurposeScreenShare:
		e.c.post(func() { e.c.seats.CaptureFailed() })
	default:
		e.c.post(func() {
			if e.c.tracker.CaptureFailed() {
				e.c.opts.UI.Notice("camera capture failed")
			}
		})
	}
}

// logHooks is the default MediaHooks.
type logHooks struct{}

func (logHooks) OnRemoteStream(p protocol.Purpose, from domain.UserID, s peer.Stream) {
	log.Info().Str("module", "media").Str("purpose", string(p)).Str("from", string(from)).Str("stream", s.ID()).Msg("remote stream")
}

func (logHooks) OnRemoteStreamClosed(p protocol.Purpose, from domain.UserID) {
	log.Info().Str("module", "media").Str("purpose", string(p)).Str("from", string(from)).Msg("remote stream closed")
}

func (logHooks) OnControl(from domain.UserID, msg protocol.ControlMessage) {
	log.Info().Str("module", "media").Str("from", string(from)).Str("control", msg.Type).Msg("control input")
}
