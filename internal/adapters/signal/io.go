package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Office/internal/app/orch"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/metrics"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sess core.MemberSession, c *WsSignalConn) {
	sid := sess.ID()
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Orch.Disconnect(sid, sess)
		metrics.Sessions.Dec()
		if ctl.opts.Requests != nil {
			ctl.opts.Requests.Prune()
		}
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	if ctl.opts.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.opts.ReadLimit)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(sid core.SessionID, c *WsSignalConn, data []byte) {
	typ, err := protocol.PeekType(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch typ {
	case protocol.TypeCreateRoom:
		ctl.createRoom(sid, c, data)
	case protocol.TypeJoin:
		ctl.handleJoin(sid, c, data)
	case protocol.TypeLeave:
		ctl.handleLeave(sid, c)
	case protocol.TypePing:
		ctl.handlePing(c)
	case protocol.TypeRename:
		ctl.handleRename(sid, c, data)
	case protocol.TypeWhoAmI:
		ctl.handleWhoAmI(sid, c)
	case protocol.TypeRequestAccess:
		ctl.handleRequestAccess(sid, c, data)
	case protocol.TypePeerSignal:
		ctl.handlePeerSignal(sid, c, data)
	case protocol.TypeUpdatePlayer,
		protocol.TypeReadyToConnect,
		protocol.TypeVideoConnected,
		protocol.TypeVideoDisconnected,
		protocol.TypeConnectSeat,
		protocol.TypeDisconnectSeat,
		protocol.TypeStartShare,
		protocol.TypeStopShare,
		protocol.TypeRespondAccess:
		ctl.forward(sid, c, data)
	default:
		log.Warn().Str("module", "signal").Str("type", string(typ)).Msg("unknown signal")
	}
}

// forward hands a room-scoped message to the room loop.
func (ctl *SignalWSController) forward(sid core.SessionID, c *WsSignalConn, data []byte) {
	if err := ctl.Orch.OnFrame(sid, data); err != nil {
		if errors.Is(err, orch.ErrNotInRoom) {
			ctl.sendJSON(c, protocol.NewError("not_in_room"))
			return
		}
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("forward to room")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
