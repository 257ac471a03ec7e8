package cli

import (
	"sync"

	"github.com/dkeye/Office/internal/adapters/rtc"
	"github.com/dkeye/Office/internal/client/peer"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog/log"
)

// mediaLog drains remote RTP and reports the packet count when a stream
// ends. Control input is only logged; the CLI drives no local desktop.
type mediaLog struct {
	mu      sync.Mutex
	packets map[string]int
}

func newMediaLog() *mediaLog {
	return &mediaLog{packets: make(map[string]int)}
}

func key(p protocol.Purpose, from domain.UserID) string {
	return protocol.EncodePeerID(from, p)
}

func (m *mediaLog) OnRemoteStream(p protocol.Purpose, from domain.UserID, s peer.Stream) {
	log.Info().Str("module", "media").Str("purpose", string(p)).Str("from", string(from)).Str("stream", s.ID()).Msg("receiving stream")
	rs, ok := s.(*rtc.RemoteStream)
	if !ok {
		return
	}
	k := key(p, from)
	go func() {
		for {
			if _, err := rs.ReadRTP(); err != nil {
				return
			}
			m.mu.Lock()
			m.packets[k]++
			m.mu.Unlock()
		}
	}()
}

func (m *mediaLog) OnRemoteStreamClosed(p protocol.Purpose, from domain.UserID) {
	k := key(p, from)
	m.mu.Lock()
	n := m.packets[k]
	delete(m.packets, k)
	m.mu.Unlock()
	log.Info().Str("module", "media").Str("purpose", string(p)).Str("from", string(from)).Int("packets", n).Msg("stream ended")
}

func (m *mediaLog) OnControl(from domain.UserID, msg protocol.ControlMessage) {
	ev := log.Info().Str("module", "media").Str("from", string(from)).Str("control", msg.Type)
	switch msg.Type {
	case protocol.ControlKey:
		var k protocol.KeyPayload
		if err := msg.DecodePayload(&k); err == nil {
			ev = ev.Str("code", k.Code).Bool("down", k.Down)
		}
	case protocol.ControlPointer:
		var p protocol.PointerPayload
		if err := msg.DecodePayload(&p); err == nil {
			ev = ev.Float64("x", p.X).Float64("y", p.Y).Uint8("buttons", p.Buttons)
		}
	case protocol.ControlWheel:
		var w protocol.WheelPayload
		if err := msg.DecodePayload(&w); err == nil {
			ev = ev.Float64("dx", w.DX).Float64("dy", w.DY)
		}
	}
	ev.Msg("control input")
}
