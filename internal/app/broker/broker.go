// Package broker holds the authoritative screen share state of one room:
// which user hosts which seat and which access requests wait for an answer.
//
// A Broker is not safe for concurrent use. It is owned by a single room loop
// that feeds it one request at a time.
package broker

import (
	"cmp"
	"slices"
	"time"

	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/metrics"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notifier delivers broker notifications. The broker never touches a transport.
type Notifier interface {
	SendTo(uid domain.UserID, msg any)
	Broadcast(msg any)
}

type PendingRequest struct {
	SeatID      domain.SeatID
	RequesterID domain.UserID
	SharerID    domain.UserID
	Type        domain.AccessType
	CreatedAt   time.Time
}

type requestKey struct {
	seat      domain.SeatID
	requester domain.UserID
}

type Broker struct {
	notify Notifier
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	sharers map[domain.SeatID]domain.UserID
	pending map[requestKey]*PendingRequest
}

type Option func(*Broker)

// WithRequestTTL expires unanswered requests after ttl. Zero disables expiry.
func WithRequestTTL(ttl time.Duration) Option {
	return func(b *Broker) { b.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(b *Broker) { b.now = now }
}

func New(room domain.RoomID, n Notifier, opts ...Option) *Broker {
	b := &Broker{
		notify:  n,
		now:     time.Now,
		logger:  log.With().Str("module", "broker").Str("room", string(room)).Logger(),
		sharers: make(map[domain.SeatID]domain.UserID),
		pending: make(map[requestKey]*PendingRequest),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// StartShare records host as the sharer of seat. Repeating it for the same
// host is a no-op; a seat hosted by someone else is rejected.
func (b *Broker) StartShare(seat domain.SeatID, host domain.UserID) error {
	if cur, ok := b.sharers[seat]; ok {
		if cur == host {
			return nil
		}
		return opError("start-share", seat, host, ErrSeatTaken)
	}
	b.sharers[seat] = host
	metrics.ActiveShares.Inc()
	b.logger.Info().Str("seat", string(seat)).Str("host", string(host)).Msg("share started")
	b.notify.Broadcast(protocol.SeatMessage{Type: protocol.TypeStartShare, SeatID: seat, HostID: host})
	return nil
}

// StopShare clears the assignment when host is the recorded sharer.
func (b *Broker) StopShare(seat domain.SeatID, host domain.UserID) error {
	if cur, ok := b.sharers[seat]; !ok || cur != host {
		return opError("stop-share", seat, host, ErrNotHost)
	}
	b.clearSeat(seat)
	return nil
}

// RequestAccess records a request and forwards it to the host only.
// A newer request from the same requester replaces the older one.
func (b *Broker) RequestAccess(seat domain.SeatID, requester domain.UserID, typ domain.AccessType) error {
	if !typ.Valid() {
		return opError("request-access", seat, requester, domain.ErrInvalidAccessType)
	}
	sharer, ok := b.sharers[seat]
	if !ok {
		return opError("request-access", seat, requester, ErrNoActiveHost)
	}
	if sharer == requester {
		return opError("request-access", seat, requester, ErrSelfRequest)
	}

	b.pending[requestKey{seat, requester}] = &PendingRequest{
		SeatID:      seat,
		RequesterID: requester,
		SharerID:    sharer,
		Type:        typ,
		CreatedAt:   b.now(),
	}
	metrics.AccessRequests.WithLabelValues(string(typ)).Inc()
	b.logger.Info().Str("seat", string(seat)).Str("requester", string(requester)).Str("access", string(typ)).Msg("access requested")

	b.notify.SendTo(sharer, protocol.AccessRequested{
		Type:        protocol.TypeAccessRequested,
		SeatID:      seat,
		RequesterID: requester,
		AccessType:  typ,
	})
	return nil
}

// Respond answers the pending request of requester. Only the sharer recorded
// in that request may answer; any other responder leaves all state untouched.
// An approval without a type grants the originally requested one.
func (b *Broker) Respond(seat domain.SeatID, requester, responder domain.UserID, approved bool, typ domain.AccessType) error {
	key := requestKey{seat, requester}
	req, ok := b.pending[key]
	if !ok {
		metrics.AccessDecisions.WithLabelValues(metrics.DecisionStale).Inc()
		return opError("respond-access", seat, responder, ErrStaleRequest)
	}
	if req.SharerID != responder {
		metrics.AccessDecisions.WithLabelValues(metrics.DecisionUnauthorized).Inc()
		return opError("respond-access", seat, responder, ErrNotAuthorized)
	}

	if !approved {
		delete(b.pending, key)
		metrics.AccessDecisions.WithLabelValues(metrics.DecisionDenied).Inc()
		b.logger.Info().Str("seat", string(seat)).Str("requester", string(requester)).Msg("access denied")
		b.notify.SendTo(requester, protocol.AccessDenied{Type: protocol.TypeAccessDenied, SeatID: seat})
		return nil
	}

	granted := typ
	if granted == "" {
		granted = req.Type
	}
	if !granted.Valid() {
		return opError("respond-access", seat, responder, domain.ErrInvalidAccessType)
	}
	delete(b.pending, key)
	metrics.AccessDecisions.WithLabelValues(metrics.DecisionApproved).Inc()
	b.logger.Info().Str("seat", string(seat)).Str("requester", string(requester)).Str("access", string(granted)).Msg("access approved")
	b.notify.SendTo(requester, protocol.AccessApproved{
		Type:       protocol.TypeAccessApproved,
		SeatID:     seat,
		SharerID:   req.SharerID,
		AccessType: granted,
	})
	return nil
}

// OnDisconnect drops every share hosted by uid and every request naming it.
// It returns the seats whose share was stopped. Calling it again is a no-op.
func (b *Broker) OnDisconnect(uid domain.UserID) []domain.SeatID {
	var stopped []domain.SeatID
	for seat, host := range b.sharers {
		if host == uid {
			stopped = append(stopped, seat)
		}
	}
	slices.Sort(stopped)
	for _, seat := range stopped {
		b.clearSeat(seat)
	}

	for key, req := range b.pending {
		if req.RequesterID == uid || req.SharerID == uid {
			delete(b.pending, key)
		}
	}
	return stopped
}

// Expire drops requests older than the configured ttl, telling the requester
// it was denied and the host that the request is gone.
func (b *Broker) Expire(now time.Time) int {
	if b.ttl <= 0 {
		return 0
	}
	var expired []*PendingRequest
	for _, req := range b.pending {
		if now.Sub(req.CreatedAt) >= b.ttl {
			expired = append(expired, req)
		}
	}
	slices.SortFunc(expired, func(a, c *PendingRequest) int {
		if n := a.CreatedAt.Compare(c.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.RequesterID, c.RequesterID)
	})

	for _, req := range expired {
		delete(b.pending, requestKey{req.SeatID, req.RequesterID})
		metrics.AccessDecisions.WithLabelValues(metrics.DecisionExpired).Inc()
		b.logger.Info().Str("seat", string(req.SeatID)).Str("requester", string(req.RequesterID)).Msg("access request expired")
		b.notify.SendTo(req.RequesterID, protocol.AccessDenied{
			Type:   protocol.TypeAccessDenied,
			SeatID: req.SeatID,
			Reason: protocol.DeniedExpired,
		})
		b.notify.SendTo(req.SharerID, protocol.AccessRequestCancelled{
			Type:        protocol.TypeAccessRequestCancelled,
			SeatID:      req.SeatID,
			RequesterID: req.RequesterID,
		})
	}
	return len(expired)
}

func (b *Broker) SharerOf(seat domain.SeatID) (domain.UserID, bool) {
	host, ok := b.sharers[seat]
	return host, ok
}

func (b *Broker) Pending(seat domain.SeatID, requester domain.UserID) (PendingRequest, bool) {
	req, ok := b.pending[requestKey{seat, requester}]
	if !ok {
		return PendingRequest{}, false
	}
	return *req, true
}

func (b *Broker) PendingCount() int { return len(b.pending) }

// clearSeat removes the assignment, purges the seat's requests and tells the room.
func (b *Broker) clearSeat(seat domain.SeatID) {
	delete(b.sharers, seat)
	for key := range b.pending {
		if key.seat == seat {
			delete(b.pending, key)
		}
	}
	metrics.ActiveShares.Dec()
	b.logger.Info().Str("seat", string(seat)).Msg("share stopped")
	b.notify.Broadcast(protocol.SeatMessage{Type: protocol.TypeStopShare, SeatID: seat})
}
