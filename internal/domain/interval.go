package domain

import "time"

// DateOf truncates t to midnight UTC. All interval endpoints in the
// engine are dates, not instants.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IntervalsOverlap reports whether [aStart, aEnd) and [bStart, bEnd)
// overlap. Half-open, so a reservation ending on a day does not collide
// with one starting that same day.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
