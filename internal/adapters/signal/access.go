package signal

import (
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog/log"
)

// handleRequestAccess throttles access requests before they reach the room.
func (ctl *SignalWSController) handleRequestAccess(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	if rl := ctl.opts.Requests; rl != nil && !rl.Allow(sid.UserID()) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("request-access rate limited")
		ctl.sendJSON(conn, protocol.NewError("rate_limited"))
		return
	}
	ctl.forward(sid, conn, data)
}

// handlePeerSignal checks the relay envelope; the room resolves the target.
func (ctl *SignalWSController) handlePeerSignal(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.PeerSignal
	if err := protocol.Decode(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad peer-signal payload")
		return
	}
	switch p.Kind {
	case protocol.SignalOffer, protocol.SignalAnswer, protocol.SignalBye:
	default:
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("kind", p.Kind).Msg("unknown peer-signal kind")
		return
	}
	if p.LinkID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("peer-signal without link id")
		return
	}
	ctl.forward(sid, conn, data)
}
