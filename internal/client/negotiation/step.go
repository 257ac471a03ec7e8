package negotiation

import (
	"errors"
	"fmt"

	"github.com/dkeye/Office/internal/domain"
)

var ErrInvalidTransition = errors.New("invalid transition")

// Step applies e to s. On error the returned state is s and no effects run.
func Step(s State, e Event) (State, []Effect, error) {
	next, effects, ok := step(s, e)
	if !ok {
		return s, nil, fmt.Errorf("%w: %T in %s", ErrInvalidTransition, e, s)
	}
	return next, effects, nil
}

func step(s State, e Event) (State, []Effect, bool) {
	switch st := s.(type) {
	case Idle:
		return fromIdle(st, e)
	case Hosting:
		return fromHosting(st, e)
	case ViewingPending:
		return fromPending(st, e)
	case ViewingGranted:
		return fromGranted(st, e)
	default:
		panic(fmt.Sprintf("negotiation: unknown state %T", s))
	}
}

func fromIdle(s Idle, e Event) (State, []Effect, bool) {
	switch ev := e.(type) {
	case Claim:
		if ev.Host != "" {
			return s, nil, false
		}
		return Hosting{}, []Effect{SendConnectSeat{}, SendStartShare{}}, true
	case RequestAccess:
		return request(s, ev, SendConnectSeat{})
	case ShareStopped:
		return s, nil, true
	case Leave:
		return s, []Effect{SendDisconnectSeat{}}, true
	}
	return s, nil, false
}

func fromHosting(s Hosting, e Event) (State, []Effect, bool) {
	switch ev := e.(type) {
	case StartShare:
		if s.Live {
			return s, nil, true
		}
		return Hosting{Live: true}, []Effect{StartCapture{}}, true
	case CaptureFailed:
		return Hosting{}, []Effect{Notice{Text: "screen capture failed"}}, true
	case Respond:
		if !ev.Approved {
			return s, []Effect{SendResponse{Requester: ev.Requester, Type: ev.Type}}, true
		}
		if !s.Live {
			return s, nil, false
		}
		return s, []Effect{
			SendResponse{Requester: ev.Requester, Approved: true, Type: ev.Type},
			CallPeer{Peer: ev.Requester, Type: ev.Type},
		}, true
	case StopShare:
		return Idle{}, []Effect{CloseViewers{}, StopCapture{}, SendStopShare{}}, true
	case ShareStopped:
		return Idle{}, []Effect{CloseViewers{}, StopCapture{}}, true
	case Leave:
		return Idle{}, []Effect{CloseViewers{}, StopCapture{}, SendStopShare{}, SendDisconnectSeat{}}, true
	}
	return s, nil, false
}

func fromPending(s ViewingPending, e Event) (State, []Effect, bool) {
	switch ev := e.(type) {
	case RequestAccess:
		return request(s, ev)
	case Approved:
		t := ev.Type
		if t == "" {
			t = s.Type
		}
		return ViewingGranted{Sharer: ev.Sharer, Type: t}, nil, true
	case Denied:
		text := "access denied"
		if ev.Reason != "" {
			text += ": " + ev.Reason
		}
		return Idle{}, []Effect{Notice{Text: text}}, true
	case ShareStopped:
		return Idle{}, nil, true
	case Leave:
		return Idle{}, []Effect{SendDisconnectSeat{}}, true
	}
	return s, nil, false
}

func fromGranted(s ViewingGranted, e Event) (State, []Effect, bool) {
	switch ev := e.(type) {
	case RequestAccess:
		return request(s, ev)
	case ShareStopped:
		return Idle{}, []Effect{CloseLinks{Peers: []domain.UserID{s.Sharer}}}, true
	case Leave:
		return Idle{}, []Effect{CloseLinks{Peers: []domain.UserID{s.Sharer}}, SendDisconnectSeat{}}, true
	}
	return s, nil, false
}

// request without a known host is a silent no-op.
func request(s State, ev RequestAccess, before ...Effect) (State, []Effect, bool) {
	if !ev.Type.Valid() {
		return s, nil, false
	}
	if ev.Host == "" {
		return s, nil, true
	}
	return ViewingPending{Type: ev.Type}, append(before, SendRequest{Type: ev.Type}), true
}
