package client

import (
	"github.com/dkeye/Office/internal/client/negotiation"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
)

// LogUI reports dialogs in the log. With AutoApprove every incoming request
// is granted as asked.
type LogUI struct {
	AutoApprove bool

	client *Client
}

func (u *LogUI) OpenHostDialog(seat domain.SeatID, requests map[domain.UserID]domain.AccessType) {
	log.Info().Str("module", "ui").Str("seat", string(seat)).Int("requests", len(requests)).Msg("host dialog")
}

func (u *LogUI) OpenViewerDialog(seat domain.SeatID, host domain.UserID) {
	log.Info().Str("module", "ui").Str("seat", string(seat)).Str("host", string(host)).Msg("viewer dialog")
}

func (u *LogUI) AccessRequested(seat domain.SeatID, requester domain.UserID, t domain.AccessType) {
	log.Info().Str("module", "ui").Str("seat", string(seat)).Str("requester", string(requester)).Str("access", string(t)).Msg("access requested")
	if !u.AutoApprove || u.client == nil {
		return
	}
	c := u.client
	c.post(func() {
		if err := c.seats.Respond(seat, requester, true, ""); err != nil {
			c.logger.Warn().Err(err).Str("seat", string(seat)).Msg("auto approve failed")
		}
	})
}

func (u *LogUI) RequestWithdrawn(seat domain.SeatID, requester domain.UserID) {
	log.Info().Str("module", "ui").Str("seat", string(seat)).Str("requester", string(requester)).Msg("request withdrawn")
}

func (u *LogUI) StateChanged(seat domain.SeatID, s negotiation.State) {
	log.Info().Str("module", "ui").Str("seat", string(seat)).Stringer("state", s).Msg("seat state")
}

func (u *LogUI) Notice(text string) {
	log.Warn().Str("module", "ui").Msg(text)
}
