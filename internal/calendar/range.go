package calendar

import (
	"fmt"
	"strings"
	"time"
)

type View string

const (
	ViewDay    View = "day"
	ViewWeek   View = "week"
	ViewMonth  View = "month"
	ViewAgenda View = "agenda"
)

// AgendaDays is how far the agenda view looks ahead of its anchor.
const AgendaDays = 30

func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewDay, ViewWeek, ViewMonth, ViewAgenda:
		return v, nil
	case "":
		return ViewWeek, nil
	default:
		return "", fmt.Errorf("unknown calendar view %q", s)
	}
}

func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// VisibleRange returns the half-open interval [from, to) a view covers.
// Month views cover whole weeks, so leading and trailing days of the
// neighbouring months are included.
func VisibleRange(view View, anchor time.Time, weekStart time.Weekday) (from, to time.Time) {
	switch view {
	case ViewDay:
		from = startOfDay(anchor)
		return from, from.AddDate(0, 0, 1)
	case ViewMonth:
		y, m, _ := anchor.Date()
		first := time.Date(y, m, 1, 0, 0, 0, 0, anchor.Location())
		last := first.AddDate(0, 1, -1)
		return StartOfWeek(first, weekStart), StartOfWeek(last, weekStart).AddDate(0, 0, 7)
	case ViewAgenda:
		from = startOfDay(anchor)
		return from, from.AddDate(0, 0, AgendaDays)
	default:
		from = StartOfWeek(anchor, weekStart)
		return from, from.AddDate(0, 0, 7)
	}
}
