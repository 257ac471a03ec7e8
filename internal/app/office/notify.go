package office

import (
	"errors"

	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/metrics"
	"github.com/dkeye/Office/internal/protocol"
)

// SendTo implements broker.Notifier.
func (o *Office) SendTo(uid domain.UserID, msg any) {
	o.sendTo(core.SessionID(uid), msg)
}

// Broadcast implements broker.Notifier.
func (o *Office) Broadcast(msg any) {
	o.broadcastExcept("", msg)
}

func (o *Office) sendTo(sid core.SessionID, msg any) {
	frame, err := protocol.Encode(msg)
	if err != nil {
		o.logger.Error().Err(err).Msg("encode message")
		return
	}
	if err := o.members.SendTo(sid, frame); err != nil {
		if errors.Is(err, core.ErrBackpressure) {
			metrics.DroppedFrames.Inc()
			if ms, ok := o.members.Member(sid); ok {
				o.slow = append(o.slow, ms)
			}
		}
		o.logger.Debug().Err(err).Str("sid", string(sid)).Msg("send failed")
	}
}

func (o *Office) broadcastExcept(from core.SessionID, msg any) {
	frame, err := protocol.Encode(msg)
	if err != nil {
		o.logger.Error().Err(err).Msg("encode message")
		return
	}
	res := o.members.Broadcast(from, frame)
	if len(res.Dropped) > 0 {
		metrics.DroppedFrames.Add(float64(len(res.Dropped)))
		o.slow = append(o.slow, res.Dropped...)
	}
}

func (o *Office) sendError(sid core.SessionID, reason string) {
	o.sendTo(sid, protocol.NewError(reason))
}
