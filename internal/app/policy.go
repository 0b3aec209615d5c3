package app

import (
	"github.com/dkeye/beatroom/internal/core"
	"github.com/dkeye/beatroom/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send buffer is full when a
// room broadcast is fanned out.
type Policy interface {
	OnBackPressure(room domain.RoomID, sid core.SessionID) BackpressureAction
}

// SimplePolicy kicks slow members. A kicked connection is closed and goes
// through regular disconnect cleanup, so it never silently diverges from the
// room state.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, core.SessionID) BackpressureAction {
	return KickMember
}

// TolerantPolicy drops the frame and keeps the member.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(domain.RoomID, core.SessionID) BackpressureAction {
	return DropFrame
}
