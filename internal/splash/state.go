package splash

import (
	"github.com/jmylchreest/splash/internal/options"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// Phase is the externally visible lifecycle state.
type Phase int

const (
	// Hidden means no splash is attached.
	Hidden Phase = iota
	// Showing means the splash is attached and fading in.
	Showing
	// Visible means the splash is fully shown.
	Visible
	// Hiding means the splash is being torn down by a fade or an animation delegate.
	Hiding
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case Hidden:
		return "hidden"
	case Showing:
		return "showing"
	case Visible:
		return "visible"
	case Hiding:
		return "hiding"
	default:
		return "unknown"
	}
}

// state is one of hidden, *showing, *visible or *hiding. Completions compare
// the current state with the one they were started for, by identity, and
// are dropped when it has changed.
type state interface {
	phase() Phase
}

type hidden struct{}

func (hidden) phase() Phase { return Hidden }

type showing struct {
	view plugin.ViewHandle
	opts options.Show

	// call is nil for the launch splash.
	call *Call
}

func (*showing) phase() Phase { return Showing }

type visible struct {
	view     plugin.ViewHandle
	opts     options.Show
	autoHide Timer
}

func (*visible) phase() Phase { return Visible }

type hiding struct {
	view plugin.ViewHandle

	// owner started the teardown and receives its outcome. It is nil for auto-hide.
	owner *Call

	// joined are hide and animate calls that arrived during the teardown.
	joined []*Call

	// timer is the animate delay, stopped on close.
	timer Timer
}

func (*hiding) phase() Phase { return Hiding }

// Status is a snapshot of the lifecycle.
type Status struct {
	Phase           Phase
	IsLaunchSplash  bool
	HasView         bool
	View            plugin.ViewHandle
	AutoHidePending bool
	PendingCalls    int

	// InFlight counts host fades and delegate animations that have not yet
	// reported back to the loop.
	InFlight int
}
