package negotiation

import "github.com/dkeye/Office/internal/domain"

// Effect is a side effect requested by a transition.
type Effect interface{ isEffect() }

type (
	SendConnectSeat    struct{}
	SendDisconnectSeat struct{}
	SendStartShare     struct{}
	SendStopShare      struct{}
	SendRequest        struct{ Type domain.AccessType }
	SendResponse       struct {
		Requester domain.UserID
		Approved  bool
		Type      domain.AccessType
	}
	StartCapture struct{}
	StopCapture  struct{}
	// CallPeer opens the media link, plus a control channel for control grants.
	CallPeer struct {
		Peer domain.UserID
		Type domain.AccessType
	}
	// CloseLinks hangs up the listed peers.
	CloseLinks struct{ Peers []domain.UserID }
	// CloseViewers hangs up every viewer approved on the seat.
	CloseViewers struct{}
	Notice       struct{ Text string }
)

func (SendConnectSeat) isEffect()    {}
func (SendDisconnectSeat) isEffect() {}
func (SendStartShare) isEffect()     {}
func (SendStopShare) isEffect()      {}
func (SendRequest) isEffect()        {}
func (SendResponse) isEffect()       {}
func (StartCapture) isEffect()       {}
func (StopCapture) isEffect()        {}
func (CallPeer) isEffect()           {}
func (CloseLinks) isEffect()         {}
func (CloseViewers) isEffect()       {}
func (Notice) isEffect()             {}
