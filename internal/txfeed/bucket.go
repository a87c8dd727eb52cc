package txfeed

import (
	"fmt"
	"time"
)

// Bucket derives the coarse human time label for a transfer timestamp
// relative to now. It is a pure function over its two arguments; callers
// inject the clock.
//
// Rules are evaluated in order, first match wins:
//
//  1. same calendar day as now            -> "Today"
//  2. same calendar day as now - 1 day    -> "Yesterday"
//  3. same calendar week as now           -> weekday name ("Monday", ...)
//  4. same calendar week as now - 1 week  -> "Last Week"
//  5. same calendar month as now          -> "This Month"
//  6. same calendar year as now           -> month name ("March", ...)
//  7. otherwise                           -> "March, 2019" style
//
// "Same calendar X" follows the viewer's local calendar (now's location),
// never elapsed-duration math: a transfer 20 hours old is "Yesterday" once
// it crossed local midnight. Weeks start on Sunday.
func Bucket(ts time.Time, now time.Time) string {
	ts = ts.In(now.Location())

	switch {
	case sameDay(ts, now):
		return "Today"
	case sameDay(ts, now.AddDate(0, 0, -1)):
		return "Yesterday"
	case sameWeek(ts, now):
		return ts.Weekday().String()
	case sameWeek(ts, now.AddDate(0, 0, -7)):
		return "Last Week"
	case sameMonth(ts, now):
		return "This Month"
	case ts.Year() == now.Year():
		return ts.Month().String()
	default:
		return fmt.Sprintf("%s, %d", ts.Month().String(), ts.Year())
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func sameWeek(a, b time.Time) bool {
	return startOfWeek(a).Equal(startOfWeek(b))
}

// startOfWeek truncates to midnight of the most recent Sunday.
func startOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}
