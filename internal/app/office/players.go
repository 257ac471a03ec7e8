package office

import (
	"cmp"
	"slices"

	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
)

// join adds ms as a player; a non-empty name overrides the session's user name.
func (o *Office) join(ms core.MemberSession, name string) {
	if ms == nil {
		return
	}
	sid := ms.ID()
	uid := sid.UserID()
	if _, ok := o.players[uid]; ok {
		o.leave(sid)
	}

	o.members.AddMember(ms)
	p := domain.NewPlayer(*ms.User())
	if name != "" {
		p.Name = name
	}
	o.players[uid] = p
	o.logger.Info().Str("sid", string(sid)).Str("name", p.Name).Msg("player joined")

	o.sendTo(sid, o.state(uid))
	o.broadcastExcept(sid, protocol.PlayerEvent{Type: protocol.TypePlayerJoined, Player: protocol.PlayerStateOf(p)})
}

// leave removes a player and runs the disconnect cascade. It is idempotent.
func (o *Office) leave(sid core.SessionID) {
	uid := sid.UserID()
	if _, ok := o.players[uid]; !ok {
		o.members.RemoveMember(sid)
		return
	}

	if stopped := o.broker.OnDisconnect(uid); len(stopped) > 0 {
		o.logger.Info().Str("sid", string(sid)).Int("seats", len(stopped)).Msg("host left, shares stopped")
	}
	for _, id := range o.seatIDs {
		if o.seats[id].RemoveUser(uid) {
			o.Broadcast(protocol.SeatMember{Type: protocol.TypeSeatMemberDel, SeatID: id, UserID: uid})
		}
	}

	o.members.RemoveMember(sid)
	delete(o.players, uid)
	o.logger.Info().Str("sid", string(sid)).Msg("player left")
	o.Broadcast(protocol.PlayerLeft{Type: protocol.TypePlayerLeft, ID: uid})
	if o.members.MemberCount() == 0 && o.opts.Idle != nil {
		go o.opts.Idle(o.room.ID)
	}
}

func (o *Office) rename(sid core.SessionID, name string) {
	p, ok := o.players[sid.UserID()]
	if !ok {
		return
	}
	p.Name = name
	o.broadcastExcept(sid, protocol.PlayerEvent{Type: protocol.TypePlayerUpdated, Player: protocol.PlayerStateOf(p)})
}

func (o *Office) updatePlayer(sid core.SessionID, data []byte) {
	p := o.players[sid.UserID()]
	var msg protocol.UpdatePlayer
	if err := protocol.Decode(data, &msg); err != nil {
		o.logger.Error().Err(err).Str("sid", string(sid)).Msg("bad update-player payload")
		return
	}
	p.X, p.Y, p.Anim = msg.X, msg.Y, msg.Anim
	o.broadcastExcept(sid, protocol.PlayerEvent{Type: protocol.TypePlayerUpdated, Player: protocol.PlayerStateOf(p)})
}

func (o *Office) setReady(sid core.SessionID) {
	p := o.players[sid.UserID()]
	if p.ReadyToConnect {
		return
	}
	p.ReadyToConnect = true
	o.Broadcast(protocol.PlayerEvent{Type: protocol.TypePlayerUpdated, Player: protocol.PlayerStateOf(p)})
}

// setVideoConnected flips the shared conference flag. The change is echoed to
// the player too; clients set up or tear down media only on that echo.
func (o *Office) setVideoConnected(sid core.SessionID, connected bool) {
	p := o.players[sid.UserID()]
	if p.VideoConnected == connected {
		o.sendTo(sid, protocol.PlayerEvent{Type: protocol.TypePlayerUpdated, Player: protocol.PlayerStateOf(p)})
		return
	}
	p.VideoConnected = connected
	o.logger.Debug().Str("sid", string(sid)).Bool("video", connected).Msg("video flag changed")
	o.Broadcast(protocol.PlayerEvent{Type: protocol.TypePlayerUpdated, Player: protocol.PlayerStateOf(p)})
}

func (o *Office) state(you domain.UserID) protocol.RoomState {
	st := protocol.RoomState{
		Type:     protocol.TypeRoomState,
		Room:     o.room.ID,
		RoomName: o.room.Name,
		You:      you,
		Players:  make([]protocol.PlayerState, 0, len(o.players)),
		Seats:    make([]protocol.SeatState, 0, len(o.seatIDs)),
	}
	for _, p := range o.players {
		st.Players = append(st.Players, protocol.PlayerStateOf(p))
	}
	slices.SortFunc(st.Players, func(a, b protocol.PlayerState) int { return cmp.Compare(a.ID, b.ID) })
	for _, id := range o.seatIDs {
		st.Seats = append(st.Seats, protocol.SeatStateOf(o.seats[id]))
	}
	return st
}
