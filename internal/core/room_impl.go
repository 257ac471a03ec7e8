package core

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory member set.
// It never closes adapter-owned resources.
type roomImpl struct {
	room  *domain.Room
	mu    sync.RWMutex
	bySID map[SessionID]MemberSession
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:  room,
		bySID: make(map[SessionID]MemberSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) Member(sid SessionID) (MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.bySID[sid]
	return ms, ok
}

func (r *roomImpl) AddMember(ms MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySID[ms.ID()] = ms
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(ms.ID())).Msg("member added")
}

func (r *roomImpl) RemoveMember(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySID[sid]; !ok {
		return false
	}
	delete(r.bySID, sid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Msg("member removed")
	return true
}

func (r *roomImpl) SendTo(sid SessionID, data Frame) error {
	r.mu.RLock()
	ms, ok := r.bySID[sid]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("send to %s: not a member", sid)
	}
	return ms.Signal().TrySend(data)
}

func (r *roomImpl) Broadcast(from SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, m := range r.bySID {
		if from != "" && sid == from {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	out := make([]MemberDTO, 0, len(r.bySID))
	for _, ms := range r.bySID {
		u := ms.User()
		out = append(out, MemberDTO{ID: u.ID, Username: u.Username})
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b MemberDTO) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
