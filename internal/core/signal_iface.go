package core

import "errors"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is one encoded room channel message.
type Frame []byte

// SignalConnection is the outbound side of a client's room channel.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend never blocks. It returns ErrBackpressure when the queue is full
	// and ErrConnClosed after Close.
	TrySend(Frame) error
	Close()
}
