package app

import (
	"github.com/dkeye/Office/internal/app/office"
	"github.com/dkeye/Office/internal/config"
	"github.com/dkeye/Office/internal/core"
)

// OfficeOptions builds the room loop settings from config, routing
// backpressure through policy and forgetting evicted members in reg.
func OfficeOptions(cfg *config.Config, policy Policy, reg *Registry) office.Options {
	return office.Options{
		Seats:      cfg.SeatsPerRoom,
		RequestTTL: cfg.AccessRequestTTL,
		Sweep:      cfg.SweepPeriod,
		Evict: func(room core.RoomService, ms core.MemberSession) bool {
			if policy == nil {
				return false
			}
			return policy.OnBackPressure(room, ms) == KickMember
		},
		Evicted: func(sid core.SessionID) {
			reg.RemoveRoom(sid)
		},
	}
}
