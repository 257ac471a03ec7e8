// Package protocol defines the room channel messages exchanged between the
// office server and its clients. Every message is a JSON object carrying a
// "type" discriminator next to its payload fields.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Office/internal/domain"
)

type Type string

// Session and world messages.
const (
	TypeCreateRoom  Type = "create-room"
	TypeRoomCreated Type = "room-created"
	TypeJoin        Type = "join"
	TypeRoomState   Type = "room-state"
	TypeLeave       Type = "leave"
	TypeLeft        Type = "left"
	TypePing        Type = "ping"
	TypePong        Type = "pong"
	TypeRename      Type = "rename"
	TypeWhoAmI      Type = "whoami"
	TypeError       Type = "error"

	TypeUpdatePlayer      Type = "update-player"
	TypePlayerJoined      Type = "player-joined"
	TypePlayerLeft        Type = "player-left"
	TypePlayerUpdated     Type = "player-updated"
	TypeReadyToConnect    Type = "ready-to-connect"
	TypeVideoConnected    Type = "video-connected"
	TypeVideoDisconnected Type = "video-disconnected"

	TypePeerSignal Type = "peer-signal"
)

// Seat and access negotiation messages.
const (
	TypeConnectSeat    Type = "connect-seat"
	TypeDisconnectSeat Type = "disconnect-seat"
	TypeSeatMemberAdd  Type = "seat-member-added"
	TypeSeatMemberDel  Type = "seat-member-removed"

	TypeStartShare             Type = "start-share"
	TypeStopShare              Type = "stop-share"
	TypeRequestAccess          Type = "request-access"
	TypeAccessRequested        Type = "access-requested"
	TypeAccessRequestCancelled Type = "access-request-cancelled"
	TypeRespondAccess          Type = "respond-access"
	TypeAccessApproved         Type = "access-approved"
	TypeAccessDenied           Type = "access-denied"
)

// DeniedExpired is the access-denied reason for requests nobody answered in time.
const DeniedExpired = "expired"

type Envelope struct {
	Type Type `json:"type"`
}

// PeekType returns the discriminator of a raw message.
func PeekType(data []byte) (Type, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("decode envelope: missing type")
	}
	return env.Type, nil
}

func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type Simple struct {
	Type Type `json:"type"`
}

type Error struct {
	Type  Type   `json:"type"`
	Error string `json:"error"`
}

func NewError(reason string) Error { return Error{Type: TypeError, Error: reason} }

type CreateRoom struct {
	Type Type   `json:"type"`
	Name string `json:"name"`
}

type RoomCreated struct {
	Type Type          `json:"type"`
	Room domain.RoomID `json:"room"`
}

type Join struct {
	Type Type   `json:"type"`
	Room string `json:"room"`
	Name string `json:"name,omitempty"`
}

type Rename struct {
	Type Type   `json:"type"`
	Name string `json:"name"`
}

type WhoAmI struct {
	Type     Type            `json:"type"`
	ID       domain.UserID   `json:"id"`
	Username string          `json:"username"`
	Room     domain.RoomID   `json:"room,omitempty"`
	RoomName domain.RoomName `json:"roomName,omitempty"`
}

type PlayerState struct {
	ID             domain.UserID `json:"id"`
	Name           string        `json:"name"`
	X              float64       `json:"x"`
	Y              float64       `json:"y"`
	Anim           string        `json:"anim,omitempty"`
	ReadyToConnect bool          `json:"readyToConnect"`
	VideoConnected bool          `json:"videoConnected"`
}

func PlayerStateOf(p *domain.Player) PlayerState {
	return PlayerState{
		ID:             p.ID,
		Name:           p.Name,
		X:              p.X,
		Y:              p.Y,
		Anim:           p.Anim,
		ReadyToConnect: p.ReadyToConnect,
		VideoConnected: p.VideoConnected,
	}
}

type SeatState struct {
	ID             domain.SeatID   `json:"id"`
	HostID         domain.UserID   `json:"hostId,omitempty"`
	ConnectedUsers []domain.UserID `json:"connectedUsers"`
}

func SeatStateOf(s *domain.Seat) SeatState {
	return SeatState{ID: s.ID, HostID: s.HostID, ConnectedUsers: s.Users()}
}

type RoomState struct {
	Type     Type            `json:"type"`
	Room     domain.RoomID   `json:"room"`
	RoomName domain.RoomName `json:"roomName"`
	You      domain.UserID   `json:"you"`
	Players  []PlayerState   `json:"players"`
	Seats    []SeatState     `json:"seats"`
}

type UpdatePlayer struct {
	Type Type    `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Anim string  `json:"anim,omitempty"`
}

type PlayerEvent struct {
	Type   Type        `json:"type"`
	Player PlayerState `json:"player"`
}

type PlayerLeft struct {
	Type Type          `json:"type"`
	ID   domain.UserID `json:"id"`
}

// SeatMessage carries start-share, stop-share, connect-seat and disconnect-seat.
// HostID is only set on the start-share the server broadcasts.
type SeatMessage struct {
	Type   Type          `json:"type"`
	SeatID domain.SeatID `json:"seatId"`
	HostID domain.UserID `json:"hostId,omitempty"`
}

type SeatMember struct {
	Type   Type          `json:"type"`
	SeatID domain.SeatID `json:"seatId"`
	UserID domain.UserID `json:"userId"`
}

type RequestAccess struct {
	Type       Type              `json:"type"`
	SeatID     domain.SeatID     `json:"seatId"`
	AccessType domain.AccessType `json:"accessType"`
}

// AccessRequested is forwarded to the host of the seat only.
type AccessRequested struct {
	Type        Type              `json:"type"`
	SeatID      domain.SeatID     `json:"seatId"`
	RequesterID domain.UserID     `json:"requesterId"`
	AccessType  domain.AccessType `json:"accessType"`
}

type AccessRequestCancelled struct {
	Type        Type          `json:"type"`
	SeatID      domain.SeatID `json:"seatId"`
	RequesterID domain.UserID `json:"requesterId"`
}

type RespondAccess struct {
	Type        Type              `json:"type"`
	SeatID      domain.SeatID     `json:"seatId"`
	RequesterID domain.UserID     `json:"requesterId"`
	Approved    bool              `json:"approved"`
	AccessType  domain.AccessType `json:"accessType,omitempty"`
}

type AccessApproved struct {
	Type       Type              `json:"type"`
	SeatID     domain.SeatID     `json:"seatId"`
	SharerID   domain.UserID     `json:"sharerId"`
	AccessType domain.AccessType `json:"accessType"`
}

type AccessDenied struct {
	Type   Type          `json:"type"`
	SeatID domain.SeatID `json:"seatId"`
	Reason string        `json:"reason,omitempty"`
}

// Peer signal kinds.
const (
	SignalOffer  = "offer"
	SignalAnswer = "answer"
	SignalBye    = "bye"
)

// PeerSignal is relayed by the server to the peer addressed in To.
// From is always overwritten by the server with the sender's identity.
type PeerSignal struct {
	Type   Type   `json:"type"`
	To     string `json:"to"`
	From   string `json:"from,omitempty"`
	Kind   string `json:"kind"`
	LinkID string `json:"linkId"`
	Label  string `json:"label,omitempty"`
	SDP    string `json:"sdp,omitempty"`
}
