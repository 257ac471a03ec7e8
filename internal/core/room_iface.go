package core

import (
	"github.com/dkeye/Office/internal/domain"
)

// PublishResult reports delivery stats and backpressure to the room owner.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}

// RoomService is the delivery side of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO
	Member(sid SessionID) (MemberSession, bool)

	AddMember(ms MemberSession)
	RemoveMember(sid SessionID) bool
	// SendTo delivers to one member.
	SendTo(sid SessionID, data Frame) error
	// Broadcast delivers to every member except from; an empty from reaches all.
	Broadcast(from SessionID, data Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	Name        domain.RoomName `json:"name"`
	Public      bool            `json:"public"`
	MemberCount int             `json:"client_count"`
}
