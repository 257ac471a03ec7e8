// Package peer manages the media calls and data channels of one local
// signalling identity.
package peer

import (
	"context"
	"errors"
)

//go:generate mockgen -source=transport.go -destination=mock_transport_test.go -package=peer

// ErrTransport wraps every capture or link setup failure.
var ErrTransport = errors.New("peer transport failure")

// ErrCapture marks failures of the local capture.
var ErrCapture = errors.New("capture failed")

// ErrNoLocalStream is returned when calling out before a capture finished.
var ErrNoLocalStream = errors.New("no local stream")

// Stream is a local or remote media stream.
type Stream interface {
	ID() string
	Close()
}

// Call is one media link to a remote peer.
type Call interface {
	PeerID() string
	// Answer accepts an inbound call; a nil stream answers receive-only.
	Answer(local Stream) error
	OnStream(fn func(Stream))
	OnClose(fn func())
	Close()
}

// Channel is an auxiliary data link to a remote peer.
type Channel interface {
	PeerID() string
	Label() string
	Send(data []byte) error
	OnData(fn func([]byte))
	OnClose(fn func())
	Close()
}

// InboundHandler receives links opened by remote peers.
type InboundHandler interface {
	OnCall(c Call)
	OnChannel(ch Channel)
}

// Transport is the media and data library boundary.
type Transport interface {
	Listen(h InboundHandler)
	Call(peerID string, local Stream) (Call, error)
	Connect(peerID, label string) (Channel, error)
	Close() error
}

// Capturer produces the local stream. Capture may block; it is always run
// off the caller's goroutine.
type Capturer interface {
	Capture(ctx context.Context) (Stream, error)
}
