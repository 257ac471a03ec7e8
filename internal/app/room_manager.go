package app

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/dkeye/Office/internal/app/office"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

type runningRoom struct {
	office *office.Office
	cancel context.CancelFunc
}

// RoomManager starts one office loop per room and stops them on shutdown.
type RoomManager struct {
	ctx  context.Context
	opts office.Options

	mu    sync.RWMutex
	rooms map[domain.RoomID]*runningRoom
	wg    conc.WaitGroup
}

func NewRoomManager(ctx context.Context, opts office.Options) *RoomManager {
	return &RoomManager{
		ctx:   ctx,
		opts:  opts,
		rooms: make(map[domain.RoomID]*runningRoom),
	}
}

// CreateRoom starts a room with a freshly minted id.
func (m *RoomManager) CreateRoom(name string) (*office.Office, error) {
	room, err := domain.NewRoom(name)
	if err != nil {
		return nil, err
	}
	return m.start(room), nil
}

// EnsurePublicRoom starts the room everybody can join by its well-known id.
func (m *RoomManager) EnsurePublicRoom(id domain.RoomID, name string) *office.Office {
	if o, ok := m.GetRoom(id); ok {
		return o
	}
	return m.start(&domain.Room{ID: id, Name: domain.RoomName(name), Public: true})
}

func (m *RoomManager) start(room *domain.Room) *office.Office {
	ctx, cancel := context.WithCancel(m.ctx)
	opts := m.opts
	if !room.Public {
		opts.Idle = m.stopIdle
	}
	o := office.New(room, opts)

	m.mu.Lock()
	if cur, ok := m.rooms[room.ID]; ok {
		m.mu.Unlock()
		cancel()
		return cur.office
	}
	m.rooms[room.ID] = &runningRoom{office: o, cancel: cancel}
	m.mu.Unlock()

	metrics.Rooms.Inc()
	m.wg.Go(func() {
		defer metrics.Rooms.Dec()
		o.Run(ctx)
	})
	log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Str("name", string(room.Name)).Msg("room started")
	return o
}

func (m *RoomManager) GetRoom(id domain.RoomID) (*office.Office, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, false
	}
	return r.office, true
}

func (m *RoomManager) List() []core.RoomInfo {
	m.mu.RLock()
	out := make([]core.RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r.office.Info())
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (m *RoomManager) StopRoom(id domain.RoomID) {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()
	if ok {
		r.cancel()
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room stopped")
	}
}

// stopIdle stops a created room once nobody is left in it. A member that
// joined after the room went idle keeps it running.
func (m *RoomManager) stopIdle(id domain.RoomID) {
	m.mu.RLock()
	r, ok := m.rooms[id]
	m.mu.RUnlock()
	if !ok || r.office.Info().MemberCount > 0 {
		return
	}
	m.StopRoom(id)
}

// Wait blocks until every room loop has returned.
func (m *RoomManager) Wait() {
	m.wg.Wait()
}
