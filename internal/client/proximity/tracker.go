package proximity

import (
	"cmp"
	"context"
	"slices"

	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
)

//go:generate mockgen -source=tracker.go -destination=mock_tracker_test.go -package=proximity

// Room carries membership requests to the authoritative room.
type Room interface {
	RequestVideo(connected bool) error
}

// Media is the conference side of a peer session.
type Media interface {
	StartCapture(ctx context.Context)
	StopCapture()
	CallPeer(peer domain.UserID, t domain.AccessType) error
	Hangup(peer domain.UserID)
}

// Tracker turns tick decisions into room requests and confirmed flag
// changes into media actions. It is not safe for concurrent use.
type Tracker struct {
	cfg   Config
	room  Room
	media Media

	inFlight   bool
	connected  bool
	localReady bool
	// set after a failed capture until the player leaves proximity
	held   bool
	others map[domain.UserID]bool
}

func NewTracker(cfg Config, room Room, media Media) *Tracker {
	return &Tracker{
		cfg:    cfg,
		room:   room,
		media:  media,
		others: make(map[domain.UserID]bool),
	}
}

// Tick evaluates one simulation step. Nothing is requested while an
// earlier request is unconfirmed.
func (t *Tracker) Tick(self domain.Point, others []domain.Point) Decision {
	if t.inFlight {
		return None
	}
	d := Evaluate(t.cfg, Input{Self: self, Others: others, Connected: t.connected})
	if t.held {
		if d == Connect {
			return None
		}
		t.held = false
	}
	if d == None {
		return None
	}
	if err := t.room.RequestVideo(d == Connect); err != nil {
		log.Warn().Err(err).Str("module", "proximity").Str("decision", d.String()).Msg("membership request failed")
		return None
	}
	t.inFlight = true
	return d
}

// Confirmed applies the videoConnected flag the room holds for the local
// player.
func (t *Tracker) Confirmed(ctx context.Context, connected bool) {
	if connected && t.held {
		return
	}
	t.inFlight = false
	if connected == t.connected {
		return
	}
	t.connected = connected
	log.Info().Str("module", "proximity").Bool("connected", connected).Msg("conference membership changed")
	if connected {
		t.media.StartCapture(ctx)
		return
	}
	t.localReady = false
	t.media.StopCapture()
}

// CaptureFailed rolls a confirmed membership back after the local capture
// failed and asks the room to clear the flag. It reports whether there was
// anything to roll back.
func (t *Tracker) CaptureFailed() bool {
	if !t.connected {
		return false
	}
	t.connected = false
	t.localReady = false
	t.held = true
	t.media.StopCapture()
	if err := t.room.RequestVideo(false); err != nil {
		log.Warn().Err(err).Str("module", "proximity").Msg("membership rollback failed")
		return true
	}
	t.inFlight = true
	return true
}

// LocalReady calls every connected player once the local stream exists.
// Players that connect later call in themselves.
func (t *Tracker) LocalReady() {
	if !t.connected || t.localReady {
		return
	}
	t.localReady = true
	for _, uid := range t.connectedPeers() {
		if err := t.media.CallPeer(uid, ""); err != nil {
			log.Warn().Err(err).Str("module", "proximity").Str("peer", string(uid)).Msg("conference call failed")
		}
	}
}

// PeerVideo records the videoConnected flag of another player.
func (t *Tracker) PeerVideo(uid domain.UserID, on bool) {
	was := t.others[uid]
	t.others[uid] = on
	if was && !on {
		t.media.Hangup(uid)
	}
}

func (t *Tracker) PeerLeft(uid domain.UserID) {
	if _, ok := t.others[uid]; !ok {
		return
	}
	delete(t.others, uid)
	t.media.Hangup(uid)
}

func (t *Tracker) Connected() bool { return t.connected }
func (t *Tracker) Pending() bool   { return t.inFlight }

func (t *Tracker) connectedPeers() []domain.UserID {
	out := make([]domain.UserID, 0, len(t.others))
	for uid, on := range t.others {
		if on {
			out = append(out, uid)
		}
	}
	slices.SortFunc(out, func(a, b domain.UserID) int { return cmp.Compare(a, b) })
	return out
}
