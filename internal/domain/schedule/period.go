// Package schedule maps wall-clock timestamps to the two half-day booking
// periods and produces the concrete time windows used for capacity
// aggregation and block lookups. All times are local wall clock; no timezone
// conversion happens here or anywhere else in the system.
package schedule

import "time"

type Period string

const (
	PeriodAfternoon Period = "AFTERNOON"
	PeriodNight     Period = "NIGHT"
)

const nightStartMinute = 17*60 + 30 // 17:30

// Classify returns the period a timestamp falls into. Anything before 17:30
// is AFTERNOON (mornings fold into the afternoon period); 17:30 onward is
// NIGHT.
func Classify(t time.Time) Period {
	if t.Hour()*60+t.Minute() >= nightStartMinute {
		return PeriodNight
	}
	return PeriodAfternoon
}

// Window returns the inclusive [from, to] bounds for a period on the calendar
// day of the given timestamp:
//
//	AFTERNOON: 12:00:00.000 - 17:29:59.999
//	NIGHT:     17:30:00.000 - 23:59:59.999
//
// Usage aggregation must query with these exact bounds; querying with raw
// day bounds would count night demand against afternoon capacity.
func Window(day time.Time, p Period) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	if p == PeriodNight {
		return time.Date(y, m, d, 17, 30, 0, 0, loc),
			time.Date(y, m, d, 23, 59, 59, 999_000_000, loc)
	}
	return time.Date(y, m, d, 12, 0, 0, 0, loc),
		time.Date(y, m, d, 17, 29, 59, 999_000_000, loc)
}

// DayBounds returns the inclusive [00:00:00.000, 23:59:59.999] bounds of the
// calendar day. Block lookups and the whole-day availability view use these.
func DayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	return time.Date(y, m, d, 0, 0, 0, 0, loc),
		time.Date(y, m, d, 23, 59, 59, 999_000_000, loc)
}

// Midnight truncates a timestamp to the start of its calendar day. Block rows
// store their date normalized this way.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
