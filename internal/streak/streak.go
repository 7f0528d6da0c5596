// Package streak computes consecutive-day run lengths from completion dates.
// All functions are pure: callers pass the completion timestamps and get an
// integer back, nothing is read from or written to storage.
package streak

import (
	"sort"
	"time"
)

// Longest returns the length of the longest run of consecutive calendar days
// in dates. Time-of-day is discarded; duplicate dates neither extend nor
// break a run. Empty input returns 0, a single date returns 1.
func Longest(dates []time.Time) int {
	days := normalize(dates)
	if len(days) == 0 {
		return 0
	}

	longest := 1
	run := 1
	for i := 1; i < len(days); i++ {
		switch gapDays(days[i-1], days[i]) {
		case 0:
			// duplicate day, no-op
		case 1:
			run++
			if run > longest {
				longest = run
			}
		default:
			run = 1
		}
	}
	return longest
}

// Current returns the length of the trailing run ending at the most recent
// date. A gap of more than one day anywhere before the last date cuts the
// run there, so non-contiguous histories report 1.
func Current(dates []time.Time) int {
	days := normalize(dates)
	if len(days) == 0 {
		return 0
	}

	run := 1
	for i := len(days) - 1; i > 0; i-- {
		switch gapDays(days[i-1], days[i]) {
		case 0:
			// duplicate day, no-op
		case 1:
			run++
		default:
			return run
		}
	}
	return run
}

// normalize truncates timestamps to midnight and returns them sorted ascending.
func normalize(dates []time.Time) []time.Time {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		days = append(days, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// gapDays returns the number of calendar days between two normalized dates.
func gapDays(prev, next time.Time) int {
	return int(next.Sub(prev).Hours() / 24)
}
