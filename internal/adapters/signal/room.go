package signal

import (
	"errors"

	"github.com/dkeye/Office/internal/app/orch"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) createRoom(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.CreateRoom
	if err := protocol.Decode(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create-room payload")
		ctl.sendJSON(conn, protocol.NewError("bad_payload"))
		return
	}

	room, err := ctl.Orch.CreateRoom(p.Name)
	if err != nil {
		ctl.sendJSON(conn, protocol.NewError("invalid_room_name"))
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room_id", string(room.Room().ID)).Msg("room created")
	ctl.sendJSON(conn, protocol.RoomCreated{Type: protocol.TypeRoomCreated, Room: room.Room().ID})
}

// handleJoin enters a room; the room itself answers with its state.
func (ctl *SignalWSController) handleJoin(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Join
	if err := protocol.Decode(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendJSON(conn, protocol.NewError("bad_payload"))
		return
	}
	roomID := domain.RoomID(p.Room)
	if roomID == "" {
		roomID = ctl.opts.PublicRoom
	}

	if p.Name != "" {
		if _, err := ctl.Orch.Rename(sid, p.Name); err != nil {
			ctl.sendJSON(conn, protocol.NewError("invalid_name"))
			return
		}
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", p.Name).Msg("rename on join")
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room_id", string(roomID)).Msg("join")
	if _, err := ctl.Orch.Join(sid, roomID); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room_id", string(roomID)).Msg("join failed")
		reason := "join_failed"
		if errors.Is(err, orch.ErrRoomNotFound) {
			reason = "room_not_found"
		}
		ctl.sendJSON(conn, protocol.NewError(reason))
	}
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Orch.KickBySID(sid)
	ctl.sendJSON(conn, protocol.Simple{Type: protocol.TypeLeft})
}
