package signal

import (
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleRename(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Rename
	if err := protocol.Decode(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad rename payload")
		ctl.sendJSON(conn, protocol.NewError("bad_payload"))
		return
	}

	if _, err := ctl.Orch.Rename(sid, p.Name); err != nil {
		ctl.sendJSON(conn, protocol.NewError("invalid_name"))
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", p.Name).Msg("rename")
	ctl.handleWhoAmI(sid, conn)
}

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	user := ctl.Orch.Registry.GetOrCreateUser(sid)

	resp := protocol.WhoAmI{
		Type:     protocol.TypeWhoAmI,
		ID:       user.ID,
		Username: user.Username,
	}
	if room, ok := ctl.Orch.CurrentRoom(sid); ok {
		resp.Room = room.ID
		resp.RoomName = room.Name
	}
	ctl.sendJSON(conn, resp)
}
