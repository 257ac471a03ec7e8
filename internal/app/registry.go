package app

import (
	"context"
	"sync"

	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	RoomID  domain.RoomID
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry tracks every signal session and the room it is in.
// Users outlive sessions so a reconnect keeps its name.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	users    map[core.SessionID]*domain.User
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		users:    make(map[core.SessionID]*domain.User),
	}
}

// GetOrCreateUser returns the user of sid. The returned value is never
// mutated afterwards; renames install a fresh copy.
func (r *Registry) GetOrCreateUser(sid core.SessionID) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[sid]; ok {
		return u
	}
	u := domain.NewUser(sid.UserID())
	r.users[sid] = u
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("created new user")
	return u
}

func (r *Registry) UpdateUsername(sid core.SessionID, name string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[sid]
	if !ok {
		u = domain.NewUser(sid.UserID())
	}
	next := *u
	if err := next.SetUsername(name); err != nil {
		return nil, err
	}
	r.users[sid] = &next
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("username", next.Username).Msg("updated username")
	return &next, nil
}

func (r *Registry) BindSignal(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	old, had := r.sessions[sid]
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	r.mu.Unlock()
	if had && old.Cancel != nil {
		// A second tab with the same token replaces the first connection.
		old.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Bool("replaced", had).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind forgets sess if it is still the one bound to sid.
func (r *Registry) Unbind(sid core.SessionID, sess core.MemberSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.Session != sess {
		return false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return true
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.RoomID == "" {
		return "", nil, false
	}
	return entry.RoomID, entry.Session, true
}

func (r *Registry) UpdateRoom(sid core.SessionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.RoomID = room
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("updated room")
	return true
}

func (r *Registry) RemoveRoom(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[sid]; ok {
		entry.RoomID = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed room association")
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
