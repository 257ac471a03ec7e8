package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var (
	ErrSeatHosted        = errors.New("seat already hosted")
	ErrInvalidAccessType = errors.New("invalid access type")
)

type SeatID string

// AccessType is what a viewer is allowed to do with a host's screen.
type AccessType string

const (
	AccessView    AccessType = "view"
	AccessControl AccessType = "control"
)

func ParseAccessType(s string) (AccessType, error) {
	switch AccessType(s) {
	case AccessView, AccessControl:
		return AccessType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAccessType, s)
}

func (t AccessType) Valid() bool {
	return t == AccessView || t == AccessControl
}

// Seat is a shareable terminal. HostID is empty when nobody shares from it.
// Whenever HostID is set it is also a member of the connected users.
type Seat struct {
	ID     SeatID
	HostID UserID

	connected map[UserID]struct{}
}

func NewSeat(id SeatID) *Seat {
	return &Seat{ID: id, connected: make(map[UserID]struct{})}
}

// SeatIDs returns the ids "0".."n-1" used for a room with n seats.
func SeatIDs(n int) []SeatID {
	out := make([]SeatID, 0, n)
	for i := range n {
		out = append(out, SeatID(strconv.Itoa(i)))
	}
	return out
}

// AddUser reports whether uid was newly added.
func (s *Seat) AddUser(uid UserID) bool {
	if _, ok := s.connected[uid]; ok {
		return false
	}
	s.connected[uid] = struct{}{}
	return true
}

// RemoveUser drops uid from the seat. Removing the host clears HostID.
// It reports whether uid was connected.
func (s *Seat) RemoveUser(uid UserID) bool {
	if _, ok := s.connected[uid]; !ok {
		return false
	}
	delete(s.connected, uid)
	if s.HostID == uid {
		s.HostID = ""
	}
	return true
}

// SetHost records uid as the host and connects it to the seat.
func (s *Seat) SetHost(uid UserID) error {
	if s.HostID != "" && s.HostID != uid {
		return ErrSeatHosted
	}
	s.HostID = uid
	s.connected[uid] = struct{}{}
	return nil
}

func (s *Seat) ClearHost() { s.HostID = "" }

func (s *Seat) HasHost() bool { return s.HostID != "" }

func (s *Seat) IsHost(uid UserID) bool { return uid != "" && s.HostID == uid }

func (s *Seat) Has(uid UserID) bool {
	_, ok := s.connected[uid]
	return ok
}

// Users returns the connected users in a stable order.
func (s *Seat) Users() []UserID {
	out := make([]UserID, 0, len(s.connected))
	for uid := range s.connected {
		out = append(out, uid)
	}
	slices.Sort(out)
	return out
}
