// Package streak holds the pure treatment-streak update rule so it can be
// unit-tested apart from the storage transaction that applies it.
package streak

import "time"

// Next derives the streak counter that a login at `now` produces from the
// previous state. The returned bool reports a clock-skew anomaly: a last
// login on a later calendar day than `now`. That case keeps the counter
// unchanged, same as a repeat login on one day; it never decrements.
//
// Rule, in whole calendar days between lastLogin and now:
//
//	no previous login -> 1
//	same day          -> unchanged
//	next day          -> +1
//	gap > 1 day       -> reset to 1
func Next(current int, lastLogin *time.Time, now time.Time) (int, bool) {
	if lastLogin == nil {
		return 1, false
	}
	days := calendarDays(*lastLogin, now)
	switch {
	case days < 0:
		return current, true
	case days == 0:
		return current, false
	case days == 1:
		return current + 1, false
	default:
		return 1, false
	}
}

// calendarDays counts whole calendar days from a to b, evaluated in b's
// location so a login is compared against the clock the server is using now.
// The civil dates are re-anchored at UTC midnights before subtracting:
// in UTC every day is exactly 24h, so a DST-shortened local day cannot
// truncate the difference.
func calendarDays(a, b time.Time) int {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
