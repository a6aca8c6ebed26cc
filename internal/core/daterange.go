package core

import "time"

// RangePreset names a relative date window computed from "today".
type RangePreset string

const (
	RangeToday     RangePreset = "today"
	RangeWeek      RangePreset = "week"
	RangeMonth     RangePreset = "month"
	RangeLastMonth RangePreset = "last_month"
	RangeYear      RangePreset = "year"
	RangeAll       RangePreset = "all"
)

// ParseRangePreset maps a query value to a preset. Anything unrecognized
// falls back to RangeAll, the default filter.
func ParseRangePreset(s string) RangePreset {
	switch RangePreset(s) {
	case RangeToday, RangeWeek, RangeMonth, RangeLastMonth, RangeYear:
		return RangePreset(s)
	default:
		return RangeAll
	}
}

// RangePresets lists every preset, RangeAll included.
func RangePresets() []RangePreset {
	return []RangePreset{RangeToday, RangeWeek, RangeMonth, RangeLastMonth, RangeYear, RangeAll}
}

// DateRange is a closed [Start, End] calendar window.
type DateRange struct {
	Start Date
	End   Date
}

// Resolve computes the concrete window for a preset relative to today.
// RangeAll returns ok=false: the caller should list without a range filter.
func (p RangePreset) Resolve(today Date) (DateRange, bool) {
	switch p {
	case RangeToday:
		return DateRange{Start: today, End: today}, true
	case RangeWeek:
		// Monday through Sunday of the current week.
		offset := int(today.Weekday()) - int(time.Monday)
		if offset < 0 {
			offset = 6 // Sunday belongs to the week that started the previous Monday
		}
		start := DateOf(today.AddDate(0, 0, -offset))
		return DateRange{Start: start, End: DateOf(start.AddDate(0, 0, 6))}, true
	case RangeMonth:
		start := NewDate(today.Year(), int(today.Month()), 1)
		end := DateOf(start.AddDate(0, 1, -1))
		return DateRange{Start: start, End: end}, true
	case RangeLastMonth:
		firstOfThis := NewDate(today.Year(), int(today.Month()), 1)
		end := DateOf(firstOfThis.AddDate(0, 0, -1))
		start := NewDate(end.Year(), int(end.Month()), 1)
		return DateRange{Start: start, End: end}, true
	case RangeYear:
		return DateRange{
			Start: NewDate(today.Year(), 1, 1),
			End:   NewDate(today.Year(), 12, 31),
		}, true
	default:
		return DateRange{}, false
	}
}

// Contains reports whether d falls inside the closed range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}
