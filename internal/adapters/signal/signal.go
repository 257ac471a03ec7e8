package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Office/internal/app/orch"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendQueue  int
	PublicRoom domain.RoomID
	// Requests throttles request-access per user.
	Requests *RoomRateLimiter
}

type SignalWSController struct {
	Orch *orch.Orchestrator
	opts Options
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	if opts.SendQueue <= 0 {
		opts.SendQueue = 32
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	return &SignalWSController{Orch: o, opts: opts}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, queue int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, queue)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	if sid == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	conn := newWsSignalConn(ws, ctl.opts.SendQueue)
	user := ctl.Orch.Registry.GetOrCreateUser(sid)
	sess := core.NewMemberSession(sid, user, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(sid, sess, cancel)
	metrics.Sessions.Inc()

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}
