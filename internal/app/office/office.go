// Package office runs one room: its players, its seats and the access broker
// that arbitrates screen sharing between them. Every inbound message of the
// room is handled to completion on a single goroutine.
package office

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Office/internal/app/broker"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("office closed")

const (
	DefaultSeats     = 5
	defaultSweep     = time.Second
	commandQueueSize = 64
)

type Kind int

const (
	CmdJoin Kind = iota
	CmdLeave
	CmdFrame
	CmdRename
	CmdSnapshot
)

type Command struct {
	Kind    Kind
	SID     core.SessionID
	Session core.MemberSession // CmdJoin
	Data    core.Frame         // CmdFrame
	Name    string             // CmdRename, CmdJoin
	Reply   chan<- protocol.RoomState
}

type Options struct {
	Seats      int
	RequestTTL time.Duration
	// Sweep is how often expired access requests are collected.
	Sweep time.Duration
	// Evict decides whether a member with a full outbound queue is removed.
	Evict func(room core.RoomService, ms core.MemberSession) bool
	// Evicted is called after an evicted member has left the room.
	Evicted func(sid core.SessionID)
	// Idle is called, off the room loop, when the last member has left.
	Idle  func(id domain.RoomID)
	Clock func() time.Time
}

type Office struct {
	room    *domain.Room
	members core.RoomService
	broker  *broker.Broker
	opts    Options
	logger  zerolog.Logger

	players map[domain.UserID]*domain.Player
	seats   map[domain.SeatID]*domain.Seat
	seatIDs []domain.SeatID

	// slow collects members that could not keep up during the current command.
	slow []core.MemberSession

	cmds chan Command
	done chan struct{}
}

func New(room *domain.Room, opts Options) *Office {
	if opts.Seats <= 0 {
		opts.Seats = DefaultSeats
	}
	if opts.Sweep <= 0 {
		opts.Sweep = defaultSweep
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	o := &Office{
		room:    room,
		members: core.NewRoomService(room),
		opts:    opts,
		logger:  log.With().Str("module", "office").Str("room", string(room.ID)).Logger(),
		players: make(map[domain.UserID]*domain.Player),
		seats:   make(map[domain.SeatID]*domain.Seat),
		seatIDs: domain.SeatIDs(opts.Seats),
		cmds:    make(chan Command, commandQueueSize),
		done:    make(chan struct{}),
	}
	for _, id := range o.seatIDs {
		o.seats[id] = domain.NewSeat(id)
	}
	o.broker = broker.New(room.ID, o,
		broker.WithRequestTTL(opts.RequestTTL),
		broker.WithClock(opts.Clock),
	)
	return o
}

func (o *Office) Room() *domain.Room        { return o.room }
func (o *Office) Members() core.RoomService { return o.members }
func (o *Office) Done() <-chan struct{}     { return o.done }

func (o *Office) Info() core.RoomInfo {
	return core.RoomInfo{
		ID:          o.room.ID,
		Name:        o.room.Name,
		Public:      o.room.Public,
		MemberCount: o.members.MemberCount(),
	}
}

// Run serves commands until ctx is cancelled.
func (o *Office) Run(ctx context.Context) {
	defer close(o.done)
	o.logger.Info().Int("seats", len(o.seatIDs)).Msg("room loop started")

	ticker := time.NewTicker(o.opts.Sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info().Msg("room loop stopped")
			return
		case cmd := <-o.cmds:
			o.Handle(cmd)
		case <-ticker.C:
			o.Sweep(o.opts.Clock())
		}
	}
}

// Submit queues cmd for the room loop.
func (o *Office) Submit(cmd Command) error {
	select {
	case <-o.done:
		return ErrClosed
	default:
	}
	select {
	case o.cmds <- cmd:
		return nil
	case <-o.done:
		return ErrClosed
	}
}

// Snapshot returns the room state as seen by a fresh observer.
func (o *Office) Snapshot(ctx context.Context) (protocol.RoomState, error) {
	reply := make(chan protocol.RoomState, 1)
	if err := o.Submit(Command{Kind: CmdSnapshot, Reply: reply}); err != nil {
		return protocol.RoomState{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-o.done:
		return protocol.RoomState{}, ErrClosed
	case <-ctx.Done():
		return protocol.RoomState{}, ctx.Err()
	}
}

// Handle applies one command. It must only be called from the room loop,
// or directly when no loop is running.
func (o *Office) Handle(cmd Command) {
	switch cmd.Kind {
	case CmdJoin:
		o.join(cmd.Session, cmd.Name)
	case CmdLeave:
		o.leave(cmd.SID)
	case CmdRename:
		o.rename(cmd.SID, cmd.Name)
	case CmdFrame:
		o.handleFrame(cmd.SID, cmd.Data)
	case CmdSnapshot:
		cmd.Reply <- o.state("")
	}
	o.flushSlow()
}

// Sweep expires unanswered access requests.
func (o *Office) Sweep(now time.Time) {
	if n := o.broker.Expire(now); n > 0 {
		o.logger.Debug().Int("expired", n).Msg("swept access requests")
	}
	o.flushSlow()
}

func (o *Office) flushSlow() {
	seen := make(map[core.SessionID]bool)
	for len(o.slow) > 0 {
		ms := o.slow[0]
		o.slow = o.slow[1:]
		if seen[ms.ID()] {
			continue
		}
		seen[ms.ID()] = true
		if o.opts.Evict == nil || !o.opts.Evict(o.members, ms) {
			continue
		}
		o.logger.Warn().Str("sid", string(ms.ID())).Msg("evicting slow member")
		o.leave(ms.ID())
		if o.opts.Evicted != nil {
			o.opts.Evicted(ms.ID())
		}
	}
}
