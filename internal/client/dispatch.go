package client

import (
	"context"
	"slices"

	"github.com/dkeye/Office/internal/client/seat"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
)

// dispatch applies one room message. It runs on the loop.
func (c *Client) dispatch(ctx context.Context, data []byte) {
	typ, err := protocol.PeekType(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping undecodable frame")
		return
	}

	switch typ {
	case protocol.TypeRoomState:
		var m protocol.RoomState
		if err := protocol.Decode(data, &m); err != nil {
			c.logger.Warn().Err(err).Msg("bad room-state")
			return
		}
		c.onRoomState(ctx, m, data)
	case protocol.TypePlayerJoined, protocol.TypePlayerUpdated:
		var m protocol.PlayerEvent
		if err := protocol.Decode(data, &m); err != nil {
			c.logger.Warn().Err(err).Str("type", string(typ)).Msg("bad player event")
			return
		}
		c.onPlayer(ctx, m.Player)
	case protocol.TypePlayerLeft:
		var m protocol.PlayerLeft
		if err := protocol.Decode(data, &m); err != nil {
			c.logger.Warn().Err(err).Msg("bad player-left")
			return
		}
		c.onPlayerLeft(m.ID)
	case protocol.TypePeerSignal:
		var m protocol.PeerSignal
		if err := protocol.Decode(data, &m); err != nil {
			c.logger.Warn().Err(err).Msg("bad peer-signal")
			return
		}
		if t, ok := c.transports[m.To]; ok {
			t.HandleSignal(m)
		} else {
			c.logger.Debug().Str("to", m.To).Msg("peer-signal for unknown identity")
		}
	case protocol.TypeError:
		var m protocol.Error
		_ = protocol.Decode(data, &m)
		c.logger.Warn().Str("error", m.Error).Msg("room error")
		c.opts.UI.Notice("error: " + m.Error)
	case protocol.TypeLeft, protocol.TypePong:
	default:
		if !seat.Handles(typ) {
			c.logger.Debug().Str("type", string(typ)).Msg("ignoring message")
			return
		}
		if err := c.joined(); err != nil {
			return
		}
		if err := c.seats.Handle(typ, data); err != nil {
			c.logger.Warn().Err(err).Str("type", string(typ)).Msg("seat message failed")
		}
	}
}

func (c *Client) onRoomState(ctx context.Context, m protocol.RoomState, data []byte) {
	if c.seats == nil {
		c.setup(ctx, m.You)
		if err := c.conn.Send(protocol.Simple{Type: protocol.TypeReadyToConnect}); err != nil {
			c.logger.Warn().Err(err).Msg("ready-to-connect failed")
		}
	}
	c.room = m.Room
	c.logger.Info().Str("room", string(m.Room)).Str("room_name", string(m.RoomName)).Int("players", len(m.Players)).Msg("joined room")

	c.players = make(map[domain.UserID]*domain.Player, len(m.Players))
	for _, ps := range m.Players {
		c.onPlayer(ctx, ps)
	}
	if err := c.seats.Handle(protocol.TypeRoomState, data); err != nil {
		c.logger.Warn().Err(err).Msg("seat reset failed")
	}
}

func (c *Client) onPlayer(ctx context.Context, ps protocol.PlayerState) {
	if c.seats == nil {
		return
	}
	p, ok := c.players[ps.ID]
	if !ok {
		p = &domain.Player{ID: ps.ID}
		c.players[ps.ID] = p
	}
	p.Name, p.X, p.Y, p.Anim = ps.Name, ps.X, ps.Y, ps.Anim
	p.ReadyToConnect = ps.ReadyToConnect
	p.VideoConnected = ps.VideoConnected

	if ps.ID == c.self {
		c.tracker.Confirmed(ctx, ps.VideoConnected)
		return
	}
	c.tracker.PeerVideo(ps.ID, ps.VideoConnected)
}

func (c *Client) onPlayerLeft(uid domain.UserID) {
	if c.seats == nil {
		return
	}
	delete(c.players, uid)
	c.tracker.PeerLeft(uid)
	c.screen.Hangup(uid)
}

func (c *Client) tick() {
	if c.seats == nil {
		return
	}
	me, ok := c.players[c.self]
	if !ok {
		return
	}
	others := make([]domain.Point, 0, len(c.players))
	for id, p := range c.players {
		if id != c.self {
			others = append(others, p.Position())
		}
	}
	c.tracker.Tick(me.Position(), others)
}

func (c *Client) playerIDs() []domain.UserID {
	ids := make([]domain.UserID, 0, len(c.players))
	for id := range c.players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
