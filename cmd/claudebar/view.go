package main

import (
	"fmt"
	"time"

	"github.com/claudebar/claudebar/pkg/usage"
)

// The render step is a pure function from usage.State to strings; the tea
// model applies styles on top but never stores render state of its own.

// MenuRow is one dropdown line for a limit window.
type MenuRow struct {
	Label   string
	Percent string
	Resets  string
	Stale   bool
}

// StatusLabel produces the short status-bar text.
func StatusLabel(st usage.State) string {
	switch st.Phase {
	case usage.PhaseUnconfigured:
		return "Claude: Setup"
	case usage.PhaseError:
		return "Claude: Error"
	default:
		if st.Snapshot == nil {
			return "Claude: --%"
		}
		return fmt.Sprintf("Claude: %s", usage.Percent(st.Snapshot.Session.PercentUsed))
	}
}

// MenuRows produces the three limit rows for the current state. Countdowns
// are computed against now at render time so they stay accurate between
// polls. On error states the last known snapshot is shown stale, never as
// current.
func MenuRows(st usage.State, now time.Time) []MenuRow {
	rows := make([]MenuRow, 0, len(usage.Windows))
	for _, id := range usage.Windows {
		row := MenuRow{Label: id.Label()}
		switch {
		case st.Phase == usage.PhaseUnconfigured || st.Snapshot == nil:
			row.Percent = "not configured"
			if st.Phase == usage.PhaseError {
				row.Percent = "unavailable"
			}
		default:
			w := st.Snapshot.Window(id)
			row.Percent = usage.Percent(w.PercentUsed)
			if countdown := usage.TimeUntil(w.ResetsAt, now); countdown == "now" {
				row.Resets = "resets now"
			} else {
				row.Resets = fmt.Sprintf("resets in %s", countdown)
			}
			row.Stale = st.Phase == usage.PhaseError
		}
		rows = append(rows, row)
	}
	return rows
}

// String renders a row the way the dropdown shows it.
func (r MenuRow) String() string {
	if r.Resets == "" {
		return fmt.Sprintf("%s: %s", r.Label, r.Percent)
	}
	s := fmt.Sprintf("%s: %s (%s)", r.Label, r.Percent, r.Resets)
	if r.Stale {
		s += " [stale]"
	}
	return s
}
