// Package orch routes signal sessions to the room loops they belong to.
package orch

import (
	"errors"

	"github.com/dkeye/Office/internal/app"
	"github.com/dkeye/Office/internal/app/office"
	"github.com/dkeye/Office/internal/core"
	"github.com/rs/zerolog/log"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNoSession    = errors.New("no signal session")
	ErrNotInRoom    = errors.New("not in a room")
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
}

// Connect binds a new signal session. A previous session with the same
// token is kicked from its room and cancelled.
func (o *Orchestrator) Connect(sid core.SessionID, sess core.MemberSession, cancel func()) {
	if _, _, ok := o.Registry.RoomOf(sid); ok {
		o.KickBySID(sid)
	}
	o.Registry.BindSignal(sid, sess, cancel)
}

// Disconnect runs the leave cascade for sess unless a newer session took over sid.
func (o *Orchestrator) Disconnect(sid core.SessionID, sess core.MemberSession) {
	if cur, ok := o.Registry.GetSession(sid); !ok || cur != sess {
		return
	}
	o.KickBySID(sid)
	o.Registry.Unbind(sid, sess)
}

// OnFrame hands a room-scoped message to the room loop of sid.
func (o *Orchestrator) OnFrame(sid core.SessionID, data core.Frame) error {
	room, ok := o.officeOf(sid)
	if !ok {
		return ErrNotInRoom
	}
	return room.Submit(office.Command{Kind: office.CmdFrame, SID: sid, Data: data})
}

func (o *Orchestrator) officeOf(sid core.SessionID) (*office.Office, bool) {
	roomID, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return nil, false
	}
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("session bound to a stopped room")
		o.Registry.RemoveRoom(sid)
		return nil, false
	}
	return room, true
}
