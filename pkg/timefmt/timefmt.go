// Package timefmt renders the relative timestamps shown next to comments and
// notifications.
package timefmt

import (
	"time"

	"github.com/dustin/go-humanize"
)

const (
	day = 24 * time.Hour
	// AbsoluteAfter is the age from which an absolute date is shown instead.
	AbsoluteAfter = 7 * day
	// AbsoluteLayout renders e.g. "March 04, 2026".
	AbsoluteLayout = "January 02, 2006"
)

var magnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "just now", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: time.Minute},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: time.Hour},
	{D: day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * day, Format: "1 day %s", DivBy: day},
	{D: AbsoluteAfter, Format: "%d days %s", DivBy: day},
}

// Relative formats t as seen at now. Timestamps in the future (clock skew)
// read as "just now".
func Relative(t, now time.Time) string {
	if t.After(now) {
		return "just now"
	}
	if now.Sub(t) >= AbsoluteAfter {
		return t.Format(AbsoluteLayout)
	}
	return humanize.CustomRelTime(t, now, "ago", "from now", magnitudes)
}

// Since is Relative against the current UTC time.
func Since(t time.Time) string {
	return Relative(t, time.Now().UTC())
}
