package seat

import (
	"github.com/dkeye/Office/internal/client/negotiation"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
)

// Handles reports whether typ is a message the controller consumes.
func Handles(typ protocol.Type) bool {
	switch typ {
	case protocol.TypeRoomState,
		protocol.TypeStartShare,
		protocol.TypeStopShare,
		protocol.TypeSeatMemberAdd,
		protocol.TypeSeatMemberDel,
		protocol.TypeAccessRequested,
		protocol.TypeAccessRequestCancelled,
		protocol.TypeAccessApproved,
		protocol.TypeAccessDenied:
		return true
	}
	return false
}

// Handle applies one room message.
func (c *Controller) Handle(typ protocol.Type, data []byte) error {
	switch typ {
	case protocol.TypeRoomState:
		var m protocol.RoomState
		if err := protocol.Decode(data, &m); err != nil {
			return err
		}
		c.reset(m.Seats)
	case protocol.TypeStartShare:
		var m protocol.SeatMessage
		if err := protocol.Decode(data, &m); err != nil {
			return err
		}
		c.onStartShare(m.SeatID, m.HostID)
	case protocol.TypeStopShare:
		var m protocol.SeatMessage
		if err := protocol.Decode(data, &m); err != nil {
			return err
		}
		c.onStopShare(m.SeatID)
	case protocol.TypeSeatMemberAdd:
		var m protocol.SeatMember
		if err := protocol.Decode(data, &m); err != nil {
			return err
		}
		if e, ok := c.seats[m.SeatID]; ok {
			e.seat.AddUser(m.UserID)
		}
	case protocol.TypeSeatMemberDel:
		var m protocol.SeatMember
		if err := protocol.Decode(data, &m); err != nil {
			return err
		}
		c.onMemberRemoved(m.SeatID, m.UserID)
	case protocol.TypeAccessRequested:
		var m protocol.AccessRequested
		if err := protocol.Decode(data, &m); err != nil {
			return err
		}
		c.onAccessRequested(m.SeatID, m.RequesterID, m.AccessType)
	case protocol.TypeAccessRequestCancelled:
		var m protocol.AccessRequestCancelled
		if err := protocol.Decode(data, &m); err != nil {
			return err
		}
		c.withdraw(m.SeatID, m.RequesterID)
	case protocol.TypeAccessApproved:
		var m protocol.AccessApproved
		if err := protocol.Decode(data, &m); err != nil {
			return err
		}
		return c.fire(m.SeatID, func(*entry) negotiation.Event {
			return negotiation.Approved{Sharer: m.SharerID, Type: m.AccessType}
		})
	case protocol.TypeAccessDenied:
		var m protocol.AccessDenied
		if err := protocol.Decode(data, &m); err != nil {
			return err
		}
		return c.fire(m.SeatID, func(*entry) negotiation.Event {
			return negotiation.Denied{Reason: m.Reason}
		})
	}
	return nil
}

// reset rebuilds the mirror from a room snapshot. Local roles do not
// survive a new snapshot.
func (c *Controller) reset(seats []protocol.SeatState) {
	for id, e := range c.seats {
		if _, idle := e.state.(negotiation.Idle); !idle {
			_ = c.fire(id, func(*entry) negotiation.Event { return negotiation.ShareStopped{} })
		}
	}
	c.seats = make(map[domain.SeatID]*entry, len(seats))
	for _, st := range seats {
		s := domain.NewSeat(st.ID)
		for _, uid := range st.ConnectedUsers {
			s.AddUser(uid)
		}
		if st.HostID != "" {
			_ = s.SetHost(st.HostID)
		}
		c.seats[st.ID] = newEntry(s)
	}
	c.syncSharers()
}

func (c *Controller) onStartShare(id domain.SeatID, host domain.UserID) {
	e, ok := c.seats[id]
	if !ok || host == "" {
		return
	}
	e.seat.ClearHost()
	_ = e.seat.SetHost(host)
	if _, hosting := e.state.(negotiation.Hosting); hosting && host != c.self {
		// Another claim won the race.
		c.ui.Notice("seat " + string(id) + " was taken")
		_ = c.fire(id, func(*entry) negotiation.Event { return negotiation.ShareStopped{} })
		return
	}
	c.syncSharers()
}

// onStopShare collapses the seat. The echo of a stop this client sent is
// skipped when the seat has been claimed again in the meantime.
func (c *Controller) onStopShare(id domain.SeatID) {
	e, ok := c.seats[id]
	if !ok {
		return
	}
	e.seat.ClearHost()
	own := e.stops > 0
	if own {
		e.stops--
	}
	if _, hosting := e.state.(negotiation.Hosting); hosting && own {
		c.logger.Debug().Str("seat", string(id)).Msg("skipping echo of an earlier stop-share")
		return
	}
	_ = c.fire(id, func(*entry) negotiation.Event { return negotiation.ShareStopped{} })
}

func (c *Controller) onMemberRemoved(id domain.SeatID, uid domain.UserID) {
	e, ok := c.seats[id]
	if !ok {
		return
	}
	e.seat.RemoveUser(uid)
	delete(e.pending, uid)
	if _, ok := e.viewers[uid]; ok && uid != c.self {
		delete(e.viewers, uid)
		c.hangup(id, uid)
	}
	c.withdraw(id, uid)
}

func (c *Controller) onAccessRequested(id domain.SeatID, requester domain.UserID, t domain.AccessType) {
	e, ok := c.seats[id]
	if !ok {
		return
	}
	if _, hosting := e.state.(negotiation.Hosting); !hosting {
		c.logger.Warn().Str("seat", string(id)).Str("requester", string(requester)).Msg("access request for a seat not hosted here")
		return
	}
	e.requests[requester] = t
	c.ui.AccessRequested(id, requester, t)
}

func (c *Controller) withdraw(id domain.SeatID, requester domain.UserID) {
	e, ok := c.seats[id]
	if !ok {
		return
	}
	if _, ok := e.requests[requester]; !ok {
		return
	}
	delete(e.requests, requester)
	c.ui.RequestWithdrawn(id, requester)
}
