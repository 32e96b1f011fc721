package calendar

import "time"

type AgendaDay struct {
	Date   time.Time `json:"date"`
	Events []Event   `json:"events"`
}

// LayoutAgenda groups events by day over [from, to), skipping empty days.
func LayoutAgenda(events []Event, from, to time.Time) []AgendaDay {
	days := []AgendaDay{}
	for day := startOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)
		var dayEvents []Event
		for _, ev := range events {
			if !ev.Valid() {
				continue
			}
			if (ev.IsMultiDay() && ev.Touches(day, next)) || sameDay(ev.Start, day) {
				dayEvents = append(dayEvents, ev)
			}
		}
		if len(dayEvents) == 0 {
			continue
		}
		sortByStart(dayEvents)
		days = append(days, AgendaDay{Date: day, Events: dayEvents})
	}
	return days
}
