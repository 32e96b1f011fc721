package reschedule

import (
	"math"
	"time"

	"postplanner/internal/calendar"
)

// SnapMinute maps the fractional part of an hour to a quarter-hour minute.
// Cut points sit halfway between quarters.
func SnapMinute(frac float64) int {
	switch {
	case frac < 0.125:
		return 0
	case frac < 0.375:
		return 15
	case frac < 0.625:
		return 30
	default:
		return 45
	}
}

// Quantize splits a fractional hour of the day into a snapped hour and minute.
func Quantize(hour float64) (int, int) {
	if hour < 0 {
		hour = 0
	}
	if hour >= 24 {
		hour = 23.75
	}
	h := math.Floor(hour)
	return int(h), SnapMinute(hour - h)
}

// Bucket is the quarter-hour slot t falls into on its own date.
func Bucket(t time.Time) time.Time {
	frac := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	h, m := Quantize(frac)
	y, mo, d := t.Date()
	return time.Date(y, mo, d, h, m, 0, 0, t.Location())
}

// Target is the droppable cell under the pointer.
type Target struct {
	View calendar.View `json:"view"`
	Date time.Time     `json:"date"`
	Hour float64       `json:"hour"` // fractional hour, ignored by the month view
}

// Resolve computes where ev lands on target. The duration is preserved.
// changed is false when the drop lands in the event's current slot: the same
// date in the month view, or the same date and quarter hour elsewhere.
// The cell's calendar date is taken as written, whatever zone it carries.
func Resolve(ev calendar.Event, target Target) (start, end time.Time, changed bool) {
	loc := ev.Start.Location()
	y, mo, d := target.Date.Date()

	if target.View == calendar.ViewMonth {
		start = time.Date(y, mo, d, ev.Start.Hour(), ev.Start.Minute(), ev.Start.Second(), ev.Start.Nanosecond(), loc)
		y0, mo0, d0 := ev.Start.Date()
		changed = y != y0 || mo != mo0 || d != d0
	} else {
		h, m := Quantize(target.Hour)
		start = time.Date(y, mo, d, h, m, 0, 0, loc)
		changed = !start.Equal(Bucket(ev.Start))
	}

	return start, start.Add(ev.Duration()), changed
}
