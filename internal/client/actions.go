package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Office/internal/client/negotiation"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
)

var ErrNoControl = errors.New("no control grant on seat")

// SeatView is the local view of one seat.
type SeatView struct {
	ID       domain.SeatID
	Host     domain.UserID
	Users    []domain.UserID
	State    negotiation.State
	Requests map[domain.UserID]domain.AccessType
}

// View is a snapshot of what the client knows about its room.
type View struct {
	Self       domain.UserID
	Room       domain.RoomID
	Players    []domain.Player
	Seats      []SeatView
	Conference bool
	Peers      []domain.UserID
}

// Snapshot copies the client state.
func (c *Client) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := c.Exec(ctx, func() error {
		if err := c.joined(); err != nil {
			return err
		}
		v.Self, v.Room = c.self, c.room
		for _, id := range c.playerIDs() {
			v.Players = append(v.Players, *c.players[id])
		}
		for _, id := range c.seats.IDs() {
			s, _ := c.seats.Seat(id)
			v.Seats = append(v.Seats, SeatView{
				ID:       id,
				Host:     s.HostID,
				Users:    s.Users(),
				State:    c.seats.State(id),
				Requests: c.seats.Requests(id),
			})
		}
		v.Conference = c.tracker.Connected()
		v.Peers = c.conference.Peers()
		return nil
	})
	return v, err
}

// Move sets the local avatar position.
func (c *Client) Move(ctx context.Context, x, y float64, anim string) error {
	return c.Exec(ctx, func() error {
		if err := c.joined(); err != nil {
			return err
		}
		if me, ok := c.players[c.self]; ok {
			me.X, me.Y, me.Anim = x, y, anim
		}
		return c.conn.Send(protocol.UpdatePlayer{Type: protocol.TypeUpdatePlayer, X: x, Y: y, Anim: anim})
	})
}

func (c *Client) Interact(ctx context.Context, id domain.SeatID) error {
	return c.onSeats(ctx, func() error { return c.seats.Interact(id) })
}

func (c *Client) Claim(ctx context.Context, id domain.SeatID) error {
	return c.onSeats(ctx, func() error { return c.seats.Claim(id) })
}

func (c *Client) StartShare(ctx context.Context, id domain.SeatID) error {
	return c.onSeats(ctx, func() error { return c.seats.StartShare(id) })
}

func (c *Client) StopShare(ctx context.Context, id domain.SeatID) error {
	return c.onSeats(ctx, func() error { return c.seats.StopShare(id) })
}

func (c *Client) RequestAccess(ctx context.Context, id domain.SeatID, t domain.AccessType) error {
	return c.onSeats(ctx, func() error { return c.seats.RequestAccess(id, t) })
}

// Respond answers a pending request. An empty t grants what was asked for.
func (c *Client) Respond(ctx context.Context, id domain.SeatID, requester domain.UserID, approved bool, t domain.AccessType) error {
	return c.onSeats(ctx, func() error { return c.seats.Respond(id, requester, approved, t) })
}

func (c *Client) Leave(ctx context.Context, id domain.SeatID) error {
	return c.onSeats(ctx, func() error { return c.seats.Leave(id) })
}

// SendInput writes one control message to the sharer of a seat we were
// granted control of.
func (c *Client) SendInput(ctx context.Context, id domain.SeatID, typ string, payload any) error {
	return c.onSeats(ctx, func() error {
		g, ok := c.seats.State(id).(negotiation.ViewingGranted)
		if !ok || g.Type != domain.AccessControl {
			return fmt.Errorf("%w %s", ErrNoControl, id)
		}
		data, err := protocol.MarshalControl(typ, payload)
		if err != nil {
			return err
		}
		return c.screen.Send(g.Sharer, data)
	})
}

func (c *Client) onSeats(ctx context.Context, fn func() error) error {
	return c.Exec(ctx, func() error {
		if err := c.joined(); err != nil {
			return err
		}
		return fn()
	})
}
