package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const MaxRoomNameLen = 36

var ErrRoomNameEmpty = errors.New("room name empty")

type (
	RoomName string
	RoomID   string
)

type Room struct {
	ID     RoomID   `json:"id"`
	Name   RoomName `json:"name"`
	Public bool     `json:"public"`
}

// NewRoom mints a fresh id; over-long names are cut to MaxRoomNameLen.
func NewRoom(name string) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		name = name[:MaxRoomNameLen]
	}
	return &Room{ID: RoomID(uuid.NewString()), Name: RoomName(name)}, nil
}
