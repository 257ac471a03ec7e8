package broker

import (
	"errors"
	"fmt"

	"github.com/dkeye/Office/internal/domain"
)

var (
	// ErrNotAuthorized is a respond-access from anyone but the recorded sharer.
	ErrNotAuthorized = errors.New("responder is not the sharer")
	ErrNoActiveHost  = errors.New("seat has no active host")
	ErrStaleRequest  = errors.New("no pending request")
	ErrSeatTaken     = errors.New("seat hosted by another user")
	ErrNotHost       = errors.New("not the host of the seat")
	ErrSelfRequest   = errors.New("host cannot request its own seat")
)

// Error adds the operation and the seat to a broker failure.
type Error struct {
	Op   string
	Seat domain.SeatID
	User domain.UserID
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s seat=%s user=%s: %v", e.Op, e.Seat, e.User, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op string, seat domain.SeatID, user domain.UserID, err error) *Error {
	return &Error{Op: op, Seat: seat, User: user, Err: err}
}
