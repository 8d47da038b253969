package usage

import (
	"fmt"
	"time"
)

// TimeUntil formats the countdown from now to the reset instant as a short
// human string: "3h 12m", "45m", or "now" once the instant has passed.
// A zero instant renders "?" (the API omitted or mangled the timestamp).
func TimeUntil(resetsAt time.Time, now time.Time) string {
	if resetsAt.IsZero() {
		return "?"
	}
	diff := resetsAt.Sub(now)
	if diff <= 0 {
		return "now"
	}
	total := int(diff.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Percent formats a percent-used value the way the menu shows it: whole
// percent, no clamping.
func Percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
