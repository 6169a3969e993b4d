// Package timeutil holds the calendar arithmetic for the Monday–Sunday
// training week. Every function operates in the location already
// attached to its arguments; callers are expected to pass times in the
// configured home zone, which is the single source of truth for "today"
// throughout the app.
package timeutil

import "time"

// WeekdayNames are the full day names Monday-first, matching the
// training week's Monday=0 … Sunday=6 convention.
var WeekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayOffset returns the Monday-based weekday index for t
// (Monday=0 … Sunday=6).
func WeekdayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekBounds returns the Monday 00:00:00 and Sunday 23:59:59 of the
// week containing now, in now's location.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	monday := midnight.AddDate(0, 0, -WeekdayOffset(now))
	sunday := monday.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return monday, sunday
}

// RemainingDays returns the weekday names from now's day through
// Sunday, inclusive. Always non-empty.
func RemainingDays(now time.Time) []string {
	return WeekdayNames[WeekdayOffset(now):]
}

// SameDay reports whether a and b fall on the same calendar date.
// Both times must already be in the same location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
