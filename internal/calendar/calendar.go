package calendar

import (
	"time"

	"postplanner/internal/config"
)

type Options struct {
	Grid  Grid
	Month MonthOptions
}

func OptionsFromConfig(cfg config.CalendarConfig) Options {
	month := DefaultMonthOptions()
	month.WeekStartsOn = time.Weekday(cfg.WeekStartsOn % 7)
	return Options{Grid: GridFromConfig(cfg), Month: month}
}

// Layout is the rendered form of one view; only the field matching View is set.
type Layout struct {
	View   View         `json:"view"`
	From   time.Time    `json:"from"`
	To     time.Time    `json:"to"`
	Days   []DayLayout  `json:"days,omitempty"`
	Month  *MonthLayout `json:"month,omitempty"`
	Agenda []AgendaDay  `json:"agenda,omitempty"`
}

// Build lays out events for the given view around anchor.
func Build(view View, anchor time.Time, events []Event, opts Options) Layout {
	from, to := VisibleRange(view, anchor, opts.Month.WeekStartsOn)
	layout := Layout{View: view, From: from, To: to}

	switch view {
	case ViewDay:
		layout.Days = []DayLayout{LayoutDay(events, anchor, opts.Grid)}
	case ViewMonth:
		layout.Month = LayoutMonth(events, anchor, opts.Month)
	case ViewAgenda:
		layout.Agenda = LayoutAgenda(events, from, to)
	default:
		layout.Days = LayoutWeek(events, anchor, opts.Month.WeekStartsOn, opts.Grid).Days
	}
	return layout
}
