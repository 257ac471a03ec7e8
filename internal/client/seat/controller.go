// Package seat drives the negotiation state machine of every seat in the
// room, mirrors the seats' membership and carries out transition effects.
package seat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dkeye/Office/internal/client/negotiation"
	"github.com/dkeye/Office/internal/client/peer"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrUnknownSeat = errors.New("unknown seat")

// Sender delivers messages to the room.
type Sender interface {
	Send(msg any) error
}

// Media is the screen share side of a peer session.
type Media interface {
	StartCapture(ctx context.Context)
	StopCapture()
	CallPeer(peer domain.UserID, t domain.AccessType) error
	Hangup(peer domain.UserID)
}

// UI is the dialog layer. Every method is a notification; none may block.
type UI interface {
	OpenHostDialog(seat domain.SeatID, requests map[domain.UserID]domain.AccessType)
	OpenViewerDialog(seat domain.SeatID, host domain.UserID)
	AccessRequested(seat domain.SeatID, requester domain.UserID, t domain.AccessType)
	RequestWithdrawn(seat domain.SeatID, requester domain.UserID)
	StateChanged(seat domain.SeatID, s negotiation.State)
	Notice(text string)
}

type entry struct {
	seat  *domain.Seat
	state negotiation.State
	// incoming requests, kept while hosting
	requests map[domain.UserID]domain.AccessType
	// approved viewers waiting for the local stream
	pending map[domain.UserID]domain.AccessType
	// every viewer approved while hosting
	viewers map[domain.UserID]domain.AccessType
	// stop-share messages sent and not yet seen back
	stops int
}

func newEntry(s *domain.Seat) *entry {
	return &entry{
		seat:     s,
		state:    negotiation.Idle{},
		requests: make(map[domain.UserID]domain.AccessType),
		pending:  make(map[domain.UserID]domain.AccessType),
		viewers:  make(map[domain.UserID]domain.AccessType),
	}
}

// Controller is owned by the client loop and is not safe for concurrent
// use, except for Accepts.
type Controller struct {
	ctx    context.Context
	self   domain.UserID
	send   Sender
	media  Media
	ui     UI
	seats  map[domain.SeatID]*entry
	logger zerolog.Logger

	mu      sync.RWMutex
	sharers map[domain.UserID]struct{}
}

func NewController(ctx context.Context, self domain.UserID, send Sender, media Media, ui UI) *Controller {
	return &Controller{
		ctx:     ctx,
		self:    self,
		send:    send,
		media:   media,
		ui:      ui,
		seats:   make(map[domain.SeatID]*entry),
		sharers: make(map[domain.UserID]struct{}),
		logger: log.With().
			Str("module", "seat").
			Str("uid", string(self)).
			Logger(),
	}
}

func (c *Controller) entry(id domain.SeatID) (*entry, error) {
	e, ok := c.seats[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeat, id)
	}
	return e, nil
}

// State returns the local negotiation state of a seat.
func (c *Controller) State(id domain.SeatID) negotiation.State {
	if e, ok := c.seats[id]; ok {
		return e.state
	}
	return negotiation.Idle{}
}

// Seat returns the mirrored seat.
func (c *Controller) Seat(id domain.SeatID) (*domain.Seat, bool) {
	e, ok := c.seats[id]
	if !ok {
		return nil, false
	}
	return e.seat, true
}

// IDs returns the mirrored seat ids in numeric order.
func (c *Controller) IDs() []domain.SeatID {
	ids := make([]domain.SeatID, 0, len(c.seats))
	for id := range c.seats {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b domain.SeatID) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(string(a), string(b))
	})
	return ids
}

// Requests returns the requests waiting for an answer on a hosted seat.
func (c *Controller) Requests(id domain.SeatID) map[domain.UserID]domain.AccessType {
	e, ok := c.seats[id]
	if !ok {
		return nil
	}
	out := make(map[domain.UserID]domain.AccessType, len(e.requests))
	for k, v := range e.requests {
		out[k] = v
	}
	return out
}

// Interact is the press-to-use action on a seat: claim a free seat, or
// open the dialog matching the local role.
func (c *Controller) Interact(id domain.SeatID) error {
	e, err := c.entry(id)
	if err != nil {
		return err
	}
	switch e.state.(type) {
	case negotiation.Hosting:
		c.ui.OpenHostDialog(id, c.Requests(id))
		return nil
	case negotiation.Idle:
		if !e.seat.HasHost() || e.seat.IsHost(c.self) {
			return c.Claim(id)
		}
	}
	c.ui.OpenViewerDialog(id, e.seat.HostID)
	return nil
}

// Claim takes a free seat. A seat still recorded as hosted by the local
// user counts as free; its stop may not have come back yet.
func (c *Controller) Claim(id domain.SeatID) error {
	return c.fire(id, func(e *entry) negotiation.Event {
		host := e.seat.HostID
		if host == c.self {
			host = ""
		}
		return negotiation.Claim{Host: host}
	})
}

func (c *Controller) StartShare(id domain.SeatID) error {
	return c.fire(id, func(*entry) negotiation.Event { return negotiation.StartShare{} })
}

func (c *Controller) StopShare(id domain.SeatID) error {
	return c.fire(id, func(*entry) negotiation.Event { return negotiation.StopShare{} })
}

func (c *Controller) RequestAccess(id domain.SeatID, t domain.AccessType) error {
	return c.fire(id, func(e *entry) negotiation.Event {
		return negotiation.RequestAccess{Type: t, Host: e.seat.HostID}
	})
}

// Respond answers a request on a hosted seat. An empty t grants what was
// asked for.
func (c *Controller) Respond(id domain.SeatID, requester domain.UserID, approved bool, t domain.AccessType) error {
	var asked domain.AccessType
	err := c.fire(id, func(e *entry) negotiation.Event {
		asked = e.requests[requester]
		if t == "" {
			t = asked
		}
		return negotiation.Respond{Requester: requester, Approved: approved, Type: t}
	})
	if err != nil {
		return err
	}
	if e, ok := c.seats[id]; ok {
		delete(e.requests, requester)
	}
	return nil
}

func (c *Controller) Leave(id domain.SeatID) error {
	return c.fire(id, func(*entry) negotiation.Event { return negotiation.Leave{} })
}

// Accepts reports whether uid hosts a seat the local user asked to view
// or was granted. It is safe for concurrent use.
func (c *Controller) Accepts(uid domain.UserID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.sharers[uid]
	return ok
}

func (c *Controller) syncSharers() {
	sharers := make(map[domain.UserID]struct{})
	for _, e := range c.seats {
		switch st := e.state.(type) {
		case negotiation.ViewingPending:
			if e.seat.HasHost() {
				sharers[e.seat.HostID] = struct{}{}
			}
		case negotiation.ViewingGranted:
			sharers[st.Sharer] = struct{}{}
		}
	}
	c.mu.Lock()
	c.sharers = sharers
	c.mu.Unlock()
}

// linkedElsewhere reports whether another seat still uses the link to uid.
func (c *Controller) linkedElsewhere(id domain.SeatID, uid domain.UserID) bool {
	for other, e := range c.seats {
		if other == id {
			continue
		}
		switch st := e.state.(type) {
		case negotiation.ViewingGranted:
			if st.Sharer == uid {
				return true
			}
		case negotiation.Hosting:
			if _, ok := e.viewers[uid]; ok {
				return true
			}
		}
	}
	return false
}

func (c *Controller) liveElsewhere(id domain.SeatID) bool {
	for other, e := range c.seats {
		if h, ok := e.state.(negotiation.Hosting); ok && h.Live && other != id {
			return true
		}
	}
	return false
}

func (c *Controller) hangup(id domain.SeatID, uid domain.UserID) {
	if c.linkedElsewhere(id, uid) {
		c.logger.Debug().Str("seat", string(id)).Str("peer", string(uid)).Msg("link kept for another seat")
		return
	}
	c.media.Hangup(uid)
}

// LocalReady calls the viewers approved before the local stream existed.
func (c *Controller) LocalReady() {
	for _, id := range c.IDs() {
		e := c.seats[id]
		for uid, t := range e.pending {
			delete(e.pending, uid)
			if err := c.media.CallPeer(uid, t); err != nil {
				c.logger.Warn().Err(err).Str("seat", string(id)).Str("peer", string(uid)).Msg("call to viewer failed")
			}
		}
	}
}

// CaptureFailed rolls back the share of every live hosted seat.
func (c *Controller) CaptureFailed() {
	for id, e := range c.seats {
		if h, ok := e.state.(negotiation.Hosting); ok && h.Live {
			_ = c.fire(id, func(*entry) negotiation.Event { return negotiation.CaptureFailed{} })
		}
	}
}

func (c *Controller) fire(id domain.SeatID, mk func(*entry) negotiation.Event) error {
	e, err := c.entry(id)
	if err != nil {
		return err
	}
	ev := mk(e)
	next, effects, err := negotiation.Step(e.state, ev)
	if err != nil {
		c.logger.Debug().Err(err).Str("seat", string(id)).Msg("transition rejected")
		return err
	}
	prev := e.state
	e.state = next
	if next != prev {
		c.logger.Info().Str("seat", string(id)).Str("from", prev.String()).Str("to", next.String()).Msg("seat state")
		c.ui.StateChanged(id, next)
	}
	err = c.run(id, effects)
	if _, hosting := next.(negotiation.Hosting); !hosting {
		clear(e.requests)
		clear(e.pending)
		clear(e.viewers)
	}
	c.syncSharers()
	return err
}

func (c *Controller) run(id domain.SeatID, effects []negotiation.Effect) error {
	var errs []error
	for _, eff := range effects {
		if err := c.apply(id, eff); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) apply(id domain.SeatID, eff negotiation.Effect) error {
	switch e := eff.(type) {
	case negotiation.SendConnectSeat:
		return c.send.Send(protocol.SeatMessage{Type: protocol.TypeConnectSeat, SeatID: id})
	case negotiation.SendDisconnectSeat:
		return c.send.Send(protocol.SeatMessage{Type: protocol.TypeDisconnectSeat, SeatID: id})
	case negotiation.SendStartShare:
		return c.send.Send(protocol.SeatMessage{Type: protocol.TypeStartShare, SeatID: id})
	case negotiation.SendStopShare:
		if err := c.send.Send(protocol.SeatMessage{Type: protocol.TypeStopShare, SeatID: id}); err != nil {
			return err
		}
		c.seats[id].stops++
	case negotiation.SendRequest:
		return c.send.Send(protocol.RequestAccess{Type: protocol.TypeRequestAccess, SeatID: id, AccessType: e.Type})
	case negotiation.SendResponse:
		return c.send.Send(protocol.RespondAccess{
			Type:        protocol.TypeRespondAccess,
			SeatID:      id,
			RequesterID: e.Requester,
			Approved:    e.Approved,
			AccessType:  e.Type,
		})
	case negotiation.StartCapture:
		c.media.StartCapture(c.ctx)
	case negotiation.StopCapture:
		if c.liveElsewhere(id) {
			c.logger.Debug().Str("seat", string(id)).Msg("capture kept for another hosted seat")
			return nil
		}
		c.media.StopCapture()
	case negotiation.CallPeer:
		c.seats[id].viewers[e.Peer] = e.Type
		err := c.media.CallPeer(e.Peer, e.Type)
		if errors.Is(err, peer.ErrNoLocalStream) {
			c.seats[id].pending[e.Peer] = e.Type
			return nil
		}
		if err != nil {
			c.logger.Warn().Err(err).Str("seat", string(id)).Str("peer", string(e.Peer)).Msg("call to viewer failed")
		}
	case negotiation.CloseLinks:
		for _, uid := range e.Peers {
			c.hangup(id, uid)
		}
	case negotiation.CloseViewers:
		viewers := make([]domain.UserID, 0, len(c.seats[id].viewers))
		for uid := range c.seats[id].viewers {
			viewers = append(viewers, uid)
		}
		slices.Sort(viewers)
		for _, uid := range viewers {
			c.hangup(id, uid)
		}
	case negotiation.Notice:
		c.ui.Notice(e.Text)
	default:
		return fmt.Errorf("seat: unhandled effect %T", eff)
	}
	return nil
}
