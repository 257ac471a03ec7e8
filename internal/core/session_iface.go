package core

import "github.com/dkeye/Office/internal/domain"

type SessionID string

// UserID maps a session to the participant identity used by rooms.
func (s SessionID) UserID() domain.UserID { return domain.UserID(s) }

// MemberSession binds a user and its signal transport.
// This is what a room stores and fans out to.
type MemberSession interface {
	ID() SessionID
	User() *domain.User
	Signal() SignalConnection
}
