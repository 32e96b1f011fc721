package calendar

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellFor(t *testing.T, m *MonthLayout, date time.Time) MonthCell {
	t.Helper()
	for _, week := range m.Weeks {
		for _, cell := range week {
			if sameDay(cell.Date, date) {
				return cell
			}
		}
	}
	t.Fatalf("no cell for %s", date.Format("2006-01-02"))
	return MonthCell{}
}

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthOptions_Capacity(t *testing.T) {
	tests := []struct {
		name string
		opts MonthOptions
		want int
	}{
		{"defaults", DefaultMonthOptions(), 4},
		{"exact fit", MonthOptions{CellHeight: 100, HeaderHeight: 20, RowHeight: 20}, 4},
		{"tiny cell", MonthOptions{CellHeight: 30, HeaderHeight: 24, RowHeight: 22}, 1},
		{"zero row height", MonthOptions{CellHeight: 100}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Capacity())
		})
	}
}

func TestLayoutMonth_GridCoversWholeWeeks(t *testing.T) {
	m := LayoutMonth(nil, day(time.March, 12), DefaultMonthOptions())

	assert.Equal(t, day(time.February, 23), m.Start)
	assert.Equal(t, day(time.April, 6), m.End)
	require.Len(t, m.Weeks, 6)
	for _, week := range m.Weeks {
		assert.Len(t, week, 7)
	}
	assert.False(t, m.Weeks[0][0].InMonth)
	assert.True(t, cellFor(t, m, day(time.March, 1)).InMonth)
}

func TestLayoutMonth_Overflow(t *testing.T) {
	var events []Event
	for i := 0; i < 6; i++ {
		events = append(events, ev(fmt.Sprintf("p%d", i), at(day(time.March, 12), 8+i, 0), 20*time.Minute))
	}
	events = append(events, ev("other", at(day(time.March, 13), 9, 0), 20*time.Minute))

	m := LayoutMonth(events, day(time.March, 12), DefaultMonthOptions())
	cell := cellFor(t, m, day(time.March, 12))

	assert.Equal(t, 4, m.Capacity)
	assert.Len(t, cell.Entries, 3)
	assert.Equal(t, 3, cell.More)
	assert.Equal(t, 6, cell.Total)
	assert.Equal(t, "8:00am", cell.Entries[0].Label)

	popover := m.Popover(day(time.March, 12))
	require.Len(t, popover, 6)
	assert.Equal(t, "p5", popover[5].PostID)

	next := cellFor(t, m, day(time.March, 13))
	assert.Len(t, next.Entries, 1)
	assert.Zero(t, next.More)
}

func TestLayoutMonth_FullCellHasNoMoreControl(t *testing.T) {
	var events []Event
	for i := 0; i < 4; i++ {
		events = append(events, ev(fmt.Sprintf("p%d", i), at(day(time.March, 12), 8+i, 0), 20*time.Minute))
	}

	m := LayoutMonth(events, day(time.March, 12), DefaultMonthOptions())
	cell := cellFor(t, m, day(time.March, 12))

	assert.Len(t, cell.Entries, 4)
	assert.Zero(t, cell.More)
}

func TestLayoutMonth_MultiDayLabelsAndPlaceholders(t *testing.T) {
	campaign := Event{PostID: "campaign", Title: "Spring sale", Start: day(time.March, 10), End: day(time.March, 13), AllDay: true}
	single := ev("single", at(day(time.March, 11), 7, 0), 20*time.Minute)

	m := LayoutMonth([]Event{single, campaign}, day(time.March, 12), DefaultMonthOptions())

	first := cellFor(t, m, day(time.March, 10))
	require.Len(t, first.Entries, 1)
	assert.True(t, first.Entries[0].ShowLabel)
	assert.Equal(t, "Spring sale", first.Entries[0].Label)

	second := cellFor(t, m, day(time.March, 11))
	require.Len(t, second.Entries, 2)
	assert.Equal(t, "campaign", second.Entries[0].Event.PostID, "multi-day sorts first")
	assert.True(t, second.Entries[0].Placeholder)
	assert.False(t, second.Entries[0].ShowLabel)
	assert.True(t, second.Entries[1].ShowLabel)

	assert.True(t, cellFor(t, m, day(time.March, 12)).Entries[0].Placeholder)
	assert.Empty(t, cellFor(t, m, day(time.March, 13)).Entries, "end is exclusive")
}

func TestLayoutMonth_SpanStartingBeforeGridLabelsFirstVisibleDay(t *testing.T) {
	span := Event{PostID: "span", Title: "Carry-over", Start: day(time.February, 20), End: day(time.February, 26), AllDay: true}

	m := LayoutMonth([]Event{span}, day(time.March, 12), DefaultMonthOptions())

	firstVisible := cellFor(t, m, day(time.February, 23))
	require.Len(t, firstVisible.Entries, 1)
	assert.True(t, firstVisible.Entries[0].ShowLabel)

	after := cellFor(t, m, day(time.February, 24))
	require.Len(t, after.Entries, 1)
	assert.True(t, after.Entries[0].Placeholder)
}

func TestLayoutAgenda(t *testing.T) {
	from := day(time.March, 12)
	to := from.AddDate(0, 0, AgendaDays)
	events := []Event{
		ev("later", at(day(time.March, 14), 15, 0), time.Hour),
		ev("early", at(day(time.March, 14), 9, 0), time.Hour),
		ev("outside", at(day(time.April, 20), 9, 0), time.Hour),
		{PostID: "span", Start: day(time.March, 12), End: day(time.March, 14), AllDay: true},
	}

	days := LayoutAgenda(events, from, to)

	require.Len(t, days, 3)
	assert.Equal(t, day(time.March, 12), days[0].Date)
	assert.Equal(t, day(time.March, 13), days[1].Date)
	require.Len(t, days[2].Events, 2)
	assert.Equal(t, "early", days[2].Events[0].PostID)
}
