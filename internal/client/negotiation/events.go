package negotiation

import "github.com/dkeye/Office/internal/domain"

// Event is an input to Step: a local action or a message from the room.
type Event interface{ isEvent() }

// Claim takes the seat; Host is the host currently known for it.
type Claim struct {
	Host domain.UserID
}

// StartShare asks for the local capture of a claimed seat.
type StartShare struct{}

// CaptureFailed rolls a StartShare back.
type CaptureFailed struct{}

type StopShare struct{}

// RequestAccess asks the seat's host for a grant; Host is the host
// currently known for the seat.
type RequestAccess struct {
	Type domain.AccessType
	Host domain.UserID
}

// Respond is the host answering one pending request.
type Respond struct {
	Requester domain.UserID
	Approved  bool
	Type      domain.AccessType
}

type Approved struct {
	Sharer domain.UserID
	Type   domain.AccessType
}

type Denied struct {
	Reason string
}

// ShareStopped is the room announcing the end of the seat's share.
type ShareStopped struct{}

// Leave walks away from the seat.
type Leave struct{}

func (Claim) isEvent()         {}
func (StartShare) isEvent()    {}
func (CaptureFailed) isEvent() {}
func (StopShare) isEvent()     {}
func (RequestAccess) isEvent() {}
func (Respond) isEvent()       {}
func (Approved) isEvent()      {}
func (Denied) isEvent()        {}
func (ShareStopped) isEvent()  {}
func (Leave) isEvent()         {}
