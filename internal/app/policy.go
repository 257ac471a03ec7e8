package app

import "github.com/dkeye/Office/internal/core"

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a member whose outbound queue is full.
type Policy interface {
	OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction
}

// SimplePolicy kicks every member that cannot keep up.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.RoomService, core.MemberSession) BackpressureAction {
	return KickMember
}

// LenientPolicy only drops the frame; the member keeps its place.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(core.RoomService, core.MemberSession) BackpressureAction {
	return DropFrame
}

// PolicyFor picks a policy by its config name.
func PolicyFor(name string) Policy {
	if name == "lenient" {
		return LenientPolicy{}
	}
	return SimplePolicy{}
}
