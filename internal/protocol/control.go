package protocol

import "github.com/vmihailenco/msgpack/v5"

// ControlLabel names the auxiliary data channel opened for control grants.
const ControlLabel = "control"

// Control channel message types.
const (
	ControlPointer = "pointer"
	ControlKey     = "key"
	ControlWheel   = "wheel"
)

// ControlMessage is the msgpack frame sent over a control channel.
type ControlMessage struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// PointerPayload carries a pointer position normalised to [0,1] plus buttons.
type PointerPayload struct {
	X       float64 `msgpack:"x"`
	Y       float64 `msgpack:"y"`
	Buttons uint8   `msgpack:"buttons"`
}

type KeyPayload struct {
	Code string `msgpack:"code"`
	Down bool   `msgpack:"down"`
}

type WheelPayload struct {
	DX float64 `msgpack:"dx"`
	DY float64 `msgpack:"dy"`
}

// DecodePayload decodes the message payload into v.
func (m ControlMessage) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

func NewControlMessage(t string, payload any) (ControlMessage, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return ControlMessage{}, err
	}
	return ControlMessage{Type: t, Payload: b}, nil
}

// MarshalControl encodes a control message into a single channel frame.
func MarshalControl(t string, payload any) ([]byte, error) {
	m, err := NewControlMessage(t, payload)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(m)
}

func UnmarshalControl(data []byte) (ControlMessage, error) {
	var m ControlMessage
	err := msgpack.Unmarshal(data, &m)
	return m, err
}
