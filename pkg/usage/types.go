package usage

import (
	"time"
)

// WindowID identifies one of the tracked rate limit windows.
type WindowID string

const (
	WindowSession      WindowID = "five_hour"
	WindowWeekly       WindowID = "seven_day"
	WindowWeeklySonnet WindowID = "seven_day_sonnet"
)

// Windows lists the tracked windows in display order.
var Windows = []WindowID{WindowSession, WindowWeekly, WindowWeeklySonnet}

// Label returns the human-facing name for a window.
func (w WindowID) Label() string {
	switch w {
	case WindowSession:
		return "Session"
	case WindowWeekly:
		return "Weekly"
	case WindowWeeklySonnet:
		return "Sonnet"
	default:
		return string(w)
	}
}

// Window is a single limit observation: how much of the quota is consumed
// and when the window resets. PercentUsed is passed through from the API
// unmodified (the source guarantees the 0-100 domain).
type Window struct {
	PercentUsed float64
	ResetsAt    time.Time
}

// Snapshot holds the three limit windows from one successful poll.
// Immutable once constructed; replaced wholesale on the next poll.
type Snapshot struct {
	Session      Window
	Weekly       Window
	WeeklySonnet Window
	FetchedAt    time.Time
}

// Window returns the observation for the given window id.
func (s Snapshot) Window(id WindowID) Window {
	switch id {
	case WindowSession:
		return s.Session
	case WindowWeekly:
		return s.Weekly
	case WindowWeeklySonnet:
		return s.WeeklySonnet
	default:
		return Window{}
	}
}

// Equal reports whether two snapshots carry the same observations,
// ignoring FetchedAt.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Session == other.Session &&
		s.Weekly == other.Weekly &&
		s.WeeklySonnet == other.WeeklySonnet
}

// Phase enumerates the top-level poll states driving the renderer.
type Phase int

const (
	PhaseUnconfigured Phase = iota
	PhaseOk
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconfigured:
		return "unconfigured"
	case PhaseOk:
		return "ok"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the single value handed from the poll loop to the renderer.
// On PhaseError the last good Snapshot (if any) is retained so the UI can
// show stale values behind an error badge; it is never presented as
// current without one.
type State struct {
	Phase    Phase
	Snapshot *Snapshot
	Err      *PollError
}

// Unconfigured is the state before credentials exist.
func Unconfigured() State {
	return State{Phase: PhaseUnconfigured}
}

// Ok wraps a fresh snapshot.
func Ok(snap Snapshot) State {
	return State{Phase: PhaseOk, Snapshot: &snap}
}

// Errored wraps a poll failure, retaining the previous snapshot if one
// exists.
func Errored(err *PollError, last *Snapshot) State {
	return State{Phase: PhaseError, Snapshot: last, Err: err}
}
