package peer

import "github.com/dkeye/Office/internal/domain"

//go:generate mockgen -source=listener.go -destination=mock_listener_test.go -package=peer

// Listener receives session events. Calls are made without the session lock
// held, from transport goroutines.
type Listener interface {
	OnRemoteStream(peer domain.UserID, s Stream)
	OnRemoteStreamClosed(peer domain.UserID)
	OnData(peer domain.UserID, data []byte)
	OnLocalStream(s Stream)
	OnTransportFailure(err error)
}

// NopListener ignores every event.
type NopListener struct{}

func (NopListener) OnRemoteStream(domain.UserID, Stream) {}
func (NopListener) OnRemoteStreamClosed(domain.UserID)   {}
func (NopListener) OnData(domain.UserID, []byte)         {}
func (NopListener) OnLocalStream(Stream)                 {}
func (NopListener) OnTransportFailure(error)             {}
