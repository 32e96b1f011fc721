package calendar

import (
	"math"
	"sort"
	"time"
)

// MonthOptions carries the measurements of one reference cell.
type MonthOptions struct {
	WeekStartsOn time.Weekday `json:"week_starts_on"`
	CellHeight   float64      `json:"cell_height"`
	HeaderHeight float64      `json:"header_height"`
	RowHeight    float64      `json:"row_height"`
}

func DefaultMonthOptions() MonthOptions {
	return MonthOptions{CellHeight: 120, HeaderHeight: 24, RowHeight: 22}
}

// Capacity is the number of entry rows a cell can show, never less than one.
func (o MonthOptions) Capacity() int {
	if o.RowHeight <= 0 {
		return 1
	}
	c := int(math.Floor((o.CellHeight - o.HeaderHeight) / o.RowHeight))
	if c < 1 {
		return 1
	}
	return c
}

// MonthEntry is one row inside a day cell. Placeholders keep a multi-day
// event's row aligned on the days after its label was drawn.
type MonthEntry struct {
	Event       Event  `json:"event"`
	Label       string `json:"label,omitempty"`
	ShowLabel   bool   `json:"show_label"`
	Placeholder bool   `json:"placeholder"`
}

type MonthCell struct {
	Date    time.Time    `json:"date"`
	InMonth bool         `json:"in_month"`
	Entries []MonthEntry `json:"entries"`
	More    int          `json:"more"`
	Total   int          `json:"total"`
}

type MonthLayout struct {
	Anchor   time.Time     `json:"anchor"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Capacity int           `json:"capacity"`
	Weeks    [][]MonthCell `json:"weeks"`

	byDay map[string][]Event
}

// LayoutMonth buckets events into the cells of anchor's month grid.
func LayoutMonth(events []Event, anchor time.Time, opts MonthOptions) *MonthLayout {
	from, to := VisibleRange(ViewMonth, anchor, opts.WeekStartsOn)
	capacity := opts.Capacity()

	layout := &MonthLayout{
		Anchor:   startOfDay(anchor),
		Start:    from,
		End:      to,
		Capacity: capacity,
		byDay:    make(map[string][]Event),
	}

	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)
		var dayEvents []Event
		for _, ev := range events {
			if !ev.Valid() {
				continue
			}
			if ev.IsMultiDay() {
				if ev.Touches(day, next) {
					dayEvents = append(dayEvents, ev)
				}
				continue
			}
			if sameDay(ev.Start, day) {
				dayEvents = append(dayEvents, ev)
			}
		}
		sortMonthEntries(dayEvents)
		layout.byDay[dayKey(day)] = dayEvents

		cell := MonthCell{
			Date:    day,
			InMonth: day.Month() == anchor.Month(),
			Entries: []MonthEntry{},
			Total:   len(dayEvents),
		}

		shown := dayEvents
		if len(dayEvents) > capacity {
			shown = dayEvents[:capacity-1]
			cell.More = len(dayEvents) - (capacity - 1)
		}
		for _, ev := range shown {
			cell.Entries = append(cell.Entries, monthEntry(ev, day, from))
		}

		if len(layout.Weeks) == 0 || len(layout.Weeks[len(layout.Weeks)-1]) == 7 {
			layout.Weeks = append(layout.Weeks, make([]MonthCell, 0, 7))
		}
		w := len(layout.Weeks) - 1
		layout.Weeks[w] = append(layout.Weeks[w], cell)
	}

	return layout
}

// Popover lists every event of the given day, hidden ones included.
func (m *MonthLayout) Popover(date time.Time) []Event {
	events := m.byDay[dayKey(date.In(m.Start.Location()))]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

func monthEntry(ev Event, day, gridStart time.Time) MonthEntry {
	if !ev.IsMultiDay() {
		return MonthEntry{Event: ev, Label: TimeLabel(ev), ShowLabel: true}
	}
	first := sameDay(ev.Start, day) || (ev.Start.Before(gridStart) && sameDay(day, gridStart))
	if first {
		return MonthEntry{Event: ev, Label: ev.Title, ShowLabel: true}
	}
	return MonthEntry{Event: ev, Placeholder: true}
}

// Multi-day events come first so their rows line up across the week.
func sortMonthEntries(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.IsMultiDay() != b.IsMultiDay() {
			return a.IsMultiDay()
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Duration() != b.Duration() {
			return a.Duration() > b.Duration()
		}
		return a.PostID < b.PostID
	})
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
