package orch

import (
	"github.com/dkeye/Office/internal/app/office"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) CreateRoom(name string) (*office.Office, error) {
	return o.Rooms.CreateRoom(name)
}

// Join moves sid into roomID, leaving its current room first.
func (o *Orchestrator) Join(sid core.SessionID, roomID domain.RoomID) (*office.Office, error) {
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	session, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, ErrNoSession
	}
	if from, _, ok := o.Registry.RoomOf(sid); ok {
		o.KickBySID(sid)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(from)).Msg("kicked from room")
	}

	if err := room.Submit(office.Command{
		Kind:    office.CmdJoin,
		SID:     sid,
		Session: session,
		Name:    o.Registry.GetOrCreateUser(sid).Username,
	}); err != nil {
		return nil, err
	}
	o.Registry.UpdateRoom(sid, roomID)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("added to room")
	return room, nil
}

func (o *Orchestrator) KickBySID(sid core.SessionID) {
	room, ok := o.officeOf(sid)
	if !ok {
		return
	}
	if err := room.Submit(office.Command{Kind: office.CmdLeave, SID: sid}); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("leave not delivered")
	}
	o.Registry.RemoveRoom(sid)
}

// Rename stores the new name and tells the current room about it.
func (o *Orchestrator) Rename(sid core.SessionID, name string) (*domain.User, error) {
	user, err := o.Registry.UpdateUsername(sid, name)
	if err != nil {
		return nil, err
	}
	if room, ok := o.officeOf(sid); ok {
		_ = room.Submit(office.Command{Kind: office.CmdRename, SID: sid, Name: user.Username})
	}
	return user, nil
}

// CurrentRoom returns the room sid is in.
func (o *Orchestrator) CurrentRoom(sid core.SessionID) (*domain.Room, bool) {
	room, ok := o.officeOf(sid)
	if !ok {
		return nil, false
	}
	return room.Room(), true
}
