// Package negotiation is the per-seat screen share state machine of one
// participant. Step is pure; effects are returned as data and executed by
// the seat controller.
package negotiation

import (
	"fmt"

	"github.com/dkeye/Office/internal/domain"
)

// State is one of Idle, Hosting, ViewingPending or ViewingGranted.
type State interface {
	isState()
	fmt.Stringer
}

type Idle struct{}

// Hosting means the local user is the seat's host. Live is set once a
// capture was requested and has not failed.
type Hosting struct {
	Live bool
}

type ViewingPending struct {
	Type domain.AccessType
}

type ViewingGranted struct {
	Sharer domain.UserID
	Type   domain.AccessType
}

func (Idle) isState()           {}
func (Hosting) isState()        {}
func (ViewingPending) isState() {}
func (ViewingGranted) isState() {}

func (Idle) String() string { return "idle" }
func (s Hosting) String() string {
	if s.Live {
		return "hosting(live)"
	}
	return "hosting"
}
func (s ViewingPending) String() string { return "viewing-pending(" + string(s.Type) + ")" }
func (s ViewingGranted) String() string {
	return "viewing-granted(" + string(s.Type) + " from " + string(s.Sharer) + ")"
}
