package office

import (
	"errors"

	"github.com/dkeye/Office/internal/app/broker"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
)

func (o *Office) handleFrame(sid core.SessionID, data []byte) {
	if _, ok := o.players[sid.UserID()]; !ok {
		o.logger.Warn().Str("sid", string(sid)).Msg("frame from non-member")
		return
	}
	typ, err := protocol.PeekType(data)
	if err != nil {
		o.logger.Error().Err(err).Str("sid", string(sid)).Msg("bad frame")
		return
	}

	switch typ {
	case protocol.TypeUpdatePlayer:
		o.updatePlayer(sid, data)
	case protocol.TypeReadyToConnect:
		o.setReady(sid)
	case protocol.TypeVideoConnected:
		o.setVideoConnected(sid, true)
	case protocol.TypeVideoDisconnected:
		o.setVideoConnected(sid, false)
	case protocol.TypeConnectSeat:
		o.withSeat(sid, data, o.connectSeat)
	case protocol.TypeDisconnectSeat:
		o.withSeat(sid, data, o.disconnectSeat)
	case protocol.TypeStartShare:
		o.withSeat(sid, data, o.startShare)
	case protocol.TypeStopShare:
		o.withSeat(sid, data, o.stopShare)
	case protocol.TypeRequestAccess:
		o.requestAccess(sid, data)
	case protocol.TypeRespondAccess:
		o.respondAccess(sid, data)
	case protocol.TypePeerSignal:
		o.relayPeerSignal(sid, data)
	default:
		o.logger.Warn().Str("sid", string(sid)).Str("type", string(typ)).Msg("unknown room message")
	}
}

func (o *Office) withSeat(sid core.SessionID, data []byte, fn func(core.SessionID, *domain.Seat)) {
	var msg protocol.SeatMessage
	if err := protocol.Decode(data, &msg); err != nil {
		o.logger.Error().Err(err).Str("sid", string(sid)).Msg("bad seat payload")
		o.sendError(sid, "bad_payload")
		return
	}
	seat, ok := o.seats[msg.SeatID]
	if !ok {
		o.sendError(sid, "unknown_seat")
		return
	}
	fn(sid, seat)
}

func (o *Office) connectSeat(sid core.SessionID, seat *domain.Seat) {
	uid := sid.UserID()
	if seat.AddUser(uid) {
		o.Broadcast(protocol.SeatMember{Type: protocol.TypeSeatMemberAdd, SeatID: seat.ID, UserID: uid})
	}
}

// disconnectSeat removes the user from the seat; a host leaving stops its share.
func (o *Office) disconnectSeat(sid core.SessionID, seat *domain.Seat) {
	uid := sid.UserID()
	if host, ok := o.broker.SharerOf(seat.ID); ok && host == uid {
		if err := o.broker.StopShare(seat.ID, uid); err != nil {
			o.logger.Error().Err(err).Msg("stop share on seat leave")
		}
	}
	if seat.RemoveUser(uid) {
		o.Broadcast(protocol.SeatMember{Type: protocol.TypeSeatMemberDel, SeatID: seat.ID, UserID: uid})
	}
}

func (o *Office) startShare(sid core.SessionID, seat *domain.Seat) {
	uid := sid.UserID()
	if host, ok := o.broker.SharerOf(seat.ID); ok && host != uid {
		o.logger.Info().Str("sid", string(sid)).Str("seat", string(seat.ID)).Str("host", string(host)).Msg("claim of hosted seat rejected")
		o.sendError(sid, "seat_taken")
		return
	}
	o.connectSeat(sid, seat)
	if err := o.broker.StartShare(seat.ID, uid); err != nil {
		o.logger.Error().Err(err).Msg("start share")
		o.sendError(sid, "seat_taken")
		return
	}
	if err := seat.SetHost(uid); err != nil {
		o.logger.Error().Err(err).Str("seat", string(seat.ID)).Msg("seat host out of sync")
	}
}

func (o *Office) stopShare(sid core.SessionID, seat *domain.Seat) {
	if err := o.broker.StopShare(seat.ID, sid.UserID()); err != nil {
		o.logger.Info().Err(err).Msg("stop share ignored")
		return
	}
	seat.ClearHost()
}

// requestAccess never answers the requester on failure; it simply stays idle.
func (o *Office) requestAccess(sid core.SessionID, data []byte) {
	var msg protocol.RequestAccess
	if err := protocol.Decode(data, &msg); err != nil {
		o.logger.Error().Err(err).Str("sid", string(sid)).Msg("bad request-access payload")
		return
	}
	if err := o.broker.RequestAccess(msg.SeatID, sid.UserID(), msg.AccessType); err != nil {
		o.logger.Info().Err(err).Msg("request-access ignored")
	}
}

func (o *Office) respondAccess(sid core.SessionID, data []byte) {
	var msg protocol.RespondAccess
	if err := protocol.Decode(data, &msg); err != nil {
		o.logger.Error().Err(err).Str("sid", string(sid)).Msg("bad respond-access payload")
		return
	}
	err := o.broker.Respond(msg.SeatID, msg.RequesterID, sid.UserID(), msg.Approved, msg.AccessType)
	switch {
	case err == nil:
	case errors.Is(err, broker.ErrNotAuthorized):
		o.logger.Warn().Err(err).Str("sid", string(sid)).Msg("unauthorized respond-access dropped")
	default:
		o.logger.Info().Err(err).Msg("respond-access ignored")
	}
}

// relayPeerSignal forwards a peer transport message to another player of the
// room, stamping it with the sender's real identity.
func (o *Office) relayPeerSignal(sid core.SessionID, data []byte) {
	var msg protocol.PeerSignal
	if err := protocol.Decode(data, &msg); err != nil {
		o.logger.Error().Err(err).Str("sid", string(sid)).Msg("bad peer-signal payload")
		return
	}
	target, purpose, err := protocol.DecodePeerID(msg.To)
	if err != nil {
		o.logger.Warn().Err(err).Str("sid", string(sid)).Msg("peer-signal to bad address")
		return
	}
	if _, ok := o.players[target]; !ok {
		o.sendError(sid, "peer_unavailable")
		return
	}
	if _, fromPurpose, err := protocol.DecodePeerID(msg.From); err == nil {
		purpose = fromPurpose
	}
	msg.Type = protocol.TypePeerSignal
	msg.From = protocol.EncodePeerID(sid.UserID(), purpose)
	o.sendTo(core.SessionID(target), msg)
}
