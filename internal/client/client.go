package client

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Office/internal/client/peer"
	"github.com/dkeye/Office/internal/client/proximity"
	"github.com/dkeye/Office/internal/client/seat"
	"github.com/dkeye/Office/internal/config"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotJoined    = errors.New("not in a room yet")
	ErrDisconnected = errors.New("disconnected from room")
	ErrStopped      = errors.New("client stopped")
)

// SignalTransport is a peer transport fed with peer-signal messages.
type SignalTransport interface {
	peer.Transport
	HandleSignal(sig protocol.PeerSignal)
}

// TransportFactory builds the transport of one local identity. send relays
// peer-signal messages through the room.
type TransportFactory func(localID string, send func(protocol.PeerSignal) error) SignalTransport

// MediaHooks receive media events. They run on transport goroutines.
type MediaHooks interface {
	OnRemoteStream(p protocol.Purpose, from domain.UserID, s peer.Stream)
	OnRemoteStreamClosed(p protocol.Purpose, from domain.UserID)
	OnControl(from domain.UserID, msg protocol.ControlMessage)
}

type Options struct {
	Transports TransportFactory
	Screen     peer.Capturer
	Camera     peer.Capturer
	// UI defaults to a LogUI.
	UI    seat.UI
	Hooks MediaHooks
}

// Client is one participant. All state below is owned by the Run loop.
type Client struct {
	cfg     *config.Client
	opts    Options
	conn    RoomConn
	actions chan func()
	done    chan struct{}
	logger  zerolog.Logger

	self       domain.UserID
	room       domain.RoomID
	players    map[domain.UserID]*domain.Player
	seats      *seat.Controller
	tracker    *proximity.Tracker
	screen     *peer.Session
	conference *peer.Session
	transports map[string]SignalTransport
}

func New(cfg *config.Client, opts Options) *Client {
	c := &Client{
		cfg:     cfg,
		opts:    opts,
		actions: make(chan func(), 64),
		done:    make(chan struct{}),
		logger:  log.With().Str("module", "client").Logger(),
		players: make(map[domain.UserID]*domain.Player),
	}
	if c.opts.UI == nil {
		c.opts.UI = &LogUI{AutoApprove: cfg.AutoApprove, client: c}
	}
	if c.opts.Hooks == nil {
		c.opts.Hooks = logHooks{}
	}
	return c
}

// Run joins the configured room over conn and serves it until ctx ends or
// the connection drops.
func (c *Client) Run(ctx context.Context, conn RoomConn) error {
	c.conn = conn
	defer close(c.done)
	defer c.shutdown()

	if err := conn.Send(protocol.Join{Type: protocol.TypeJoin, Room: c.cfg.Room, Name: c.cfg.Name}); err != nil {
		return err
	}

	ticker := time.NewTicker(c.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Send(protocol.Simple{Type: protocol.TypeLeave})
			return ctx.Err()
		case data, ok := <-conn.Incoming():
			if !ok {
				return ErrDisconnected
			}
			c.dispatch(ctx, data)
		case fn := <-c.actions:
			fn()
		case <-ticker.C:
			c.tick()
		}
	}
}

// Exec runs fn on the loop and waits for its result.
func (c *Client) Exec(ctx context.Context, fn func() error) error {
	res := make(chan error, 1)
	select {
	case c.actions <- func() { res <- fn() }:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-res:
		return err
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post schedules fn on the loop without waiting. It may be called from the
// loop itself.
func (c *Client) post(fn func()) {
	select {
	case c.actions <- fn:
		return
	case <-c.done:
		return
	default:
	}
	go func() {
		select {
		case c.actions <- fn:
		case <-c.done:
		}
	}()
}

func (c *Client) joined() error {
	if c.seats == nil {
		return ErrNotJoined
	}
	return nil
}

// setup builds the per-identity parts once the room told us who we are.
func (c *Client) setup(ctx context.Context, self domain.UserID) {
	c.self = self
	c.logger = c.logger.With().Str("uid", string(self)).Logger()
	c.transports = make(map[string]SignalTransport, 2)

	// Screen links are only taken from hosts a seat asked to view.
	var seats *seat.Controller
	c.screen = peer.NewSession(self, protocol.PurposeScreenShare,
		c.transport(self, protocol.PurposeScreenShare), c.opts.Screen,
		sessionEvents{c: c, purpose: protocol.PurposeScreenShare},
		peer.WithReceiveOnly(),
		peer.WithAcceptFrom(func(uid domain.UserID) bool { return seats.Accepts(uid) }))
	c.conference = peer.NewSession(self, protocol.PurposeConference,
		c.transport(self, protocol.PurposeConference), c.opts.Camera,
		sessionEvents{c: c, purpose: protocol.PurposeConference})

	seats = seat.NewController(ctx, self, c.conn, c.screen, c.opts.UI)
	c.seats = seats
	c.tracker = proximity.NewTracker(proximity.Config{
		ConnectDistance:    c.cfg.ConnectDistance,
		DisconnectDistance: c.cfg.DisconnectDistance,
		Zone:               c.cfg.Zone,
	}, roomRequests{c.conn}, c.conference)
	c.logger.Info().Str("ss", c.screen.ID()).Str("av", c.conference.ID()).Msg("peer identities ready")
}

func (c *Client) transport(self domain.UserID, p protocol.Purpose) SignalTransport {
	id := protocol.EncodePeerID(self, p)
	t := c.opts.Transports(id, func(sig protocol.PeerSignal) error {
		sig.Type = protocol.TypePeerSignal
		sig.From = id
		return c.conn.Send(sig)
	})
	c.transports[id] = t
	return t
}

func (c *Client) shutdown() {
	if c.screen != nil {
		_ = c.screen.Close()
	}
	if c.conference != nil {
		_ = c.conference.Close()
	}
	_ = c.conn.Close()
}

// roomRequests sends conference membership requests.
type roomRequests struct{ conn RoomConn }

func (r roomRequests) RequestVideo(connected bool) error {
	typ := protocol.TypeVideoDisconnected
	if connected {
		typ = protocol.TypeVideoConnected
	}
	return r.conn.Send(protocol.Simple{Type: typ})
}
