package calendar

import (
	"time"

	"postplanner/internal/config"
)

// Grid describes the visible hours of the day and week time grids.
type Grid struct {
	StartHour int     `json:"start_hour"`
	EndHour   int     `json:"end_hour"`
	RowHeight float64 `json:"row_height"` // pixels per hour
	MinHeight float64 `json:"min_height"`
}

func DefaultGrid() Grid {
	return Grid{StartHour: 0, EndHour: 24, RowHeight: 60, MinHeight: 20}
}

func GridFromConfig(cfg config.CalendarConfig) Grid {
	return Grid{
		StartHour: cfg.StartHour,
		EndHour:   cfg.EndHour,
		RowHeight: cfg.RowHeight,
		MinHeight: cfg.MinEventHeight,
	}
}

// PositionedEvent is one rendered block on a time grid. Left and Width are
// percentages of the day column.
type PositionedEvent struct {
	Event  Event   `json:"event"`
	Label  string  `json:"label"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	ZIndex int     `json:"z_index"`
	Column int     `json:"column"`
}

type DayLayout struct {
	Date    time.Time         `json:"date"`
	AllDay  []Event           `json:"all_day"`
	Timed   []PositionedEvent `json:"timed"`
	Columns int               `json:"columns"`
}

// LayoutDay positions the events that fall on day. Multi-day events go to
// the all-day row; timed events are clipped to the grid hours and packed
// into columns so that no two overlapping events share one.
func LayoutDay(events []Event, day time.Time, grid Grid) DayLayout {
	dayStart := startOfDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1)
	visStart := dayStart.Add(time.Duration(grid.StartHour) * time.Hour)
	visEnd := dayStart.Add(time.Duration(grid.EndHour) * time.Hour)

	layout := DayLayout{
		Date:   dayStart,
		AllDay: []Event{},
		Timed:  []PositionedEvent{},
	}

	timed := make([]Event, 0, len(events))
	for _, ev := range events {
		if !ev.Valid() {
			continue
		}
		if ev.IsMultiDay() {
			if ev.Touches(dayStart, dayEnd) {
				layout.AllDay = append(layout.AllDay, ev)
			}
			continue
		}
		if ev.Start.Before(dayStart) || !ev.Start.Before(dayEnd) {
			continue
		}
		if !ev.Touches(visStart, visEnd) {
			continue
		}
		timed = append(timed, ev)
	}
	sortByStart(layout.AllDay)
	sortByStart(timed)

	var columns []time.Time
	for _, ev := range timed {
		col := -1
		for i, lastEnd := range columns {
			if !ev.Start.Before(lastEnd) {
				col = i
				break
			}
		}
		if col == -1 {
			columns = append(columns, ev.End)
			col = len(columns) - 1
		} else {
			columns[col] = ev.End
		}

		top, height := verticalPlacement(ev, visStart, visEnd, grid)
		left, width := horizontalPlacement(col)
		layout.Timed = append(layout.Timed, PositionedEvent{
			Event:  ev,
			Label:  TimeLabel(ev),
			Top:    top,
			Height: height,
			Left:   left,
			Width:  width,
			ZIndex: 1 + col,
			Column: col,
		})
	}
	layout.Columns = len(columns)

	return layout
}

func verticalPlacement(ev Event, visStart, visEnd time.Time, grid Grid) (top, height float64) {
	start, end := ev.Start, ev.End
	if start.Before(visStart) {
		start = visStart
	}
	if end.After(visEnd) {
		end = visEnd
	}

	top = start.Sub(visStart).Hours() * grid.RowHeight
	height = end.Sub(start).Hours() * grid.RowHeight
	if height < grid.MinHeight {
		height = grid.MinHeight
	}
	return top, height
}

// Column 0 spans the full width; later columns are inset by 10% per index
// and drawn above the earlier column's tail.
func horizontalPlacement(col int) (left, width float64) {
	if col == 0 {
		return 0, 100
	}
	return float64(col) * 10, 90
}

type WeekLayout struct {
	Start time.Time   `json:"start"`
	Days  []DayLayout `json:"days"`
}

// LayoutWeek lays out the seven days of the week containing anchor.
func LayoutWeek(events []Event, anchor time.Time, weekStart time.Weekday, grid Grid) WeekLayout {
	start := StartOfWeek(anchor, weekStart)
	week := WeekLayout{Start: start, Days: make([]DayLayout, 0, 7)}
	for i := 0; i < 7; i++ {
		week.Days = append(week.Days, LayoutDay(events, start.AddDate(0, 0, i), grid))
	}
	return week
}

// TimeLabel renders only the start for events under 45 minutes, and
// "start - end" otherwise.
func TimeLabel(ev Event) string {
	const layout = "3:04pm"
	if ev.Duration() < 45*time.Minute {
		return ev.Start.Format(layout)
	}
	return ev.Start.Format(layout) + " - " + ev.End.Format(layout)
}
