package calendar

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var wed = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func ev(id string, start time.Time, d time.Duration) Event {
	return Event{PostID: id, Title: id, Start: start, End: start.Add(d)}
}

type placement struct {
	ID     string
	Column int
	Left   float64
	Width  float64
	ZIndex int
}

func placements(layout DayLayout) []placement {
	out := make([]placement, 0, len(layout.Timed))
	for _, p := range layout.Timed {
		out = append(out, placement{p.Event.PostID, p.Column, p.Left, p.Width, p.ZIndex})
	}
	return out
}

func TestLayoutDay_ColumnPacking(t *testing.T) {
	events := []Event{
		ev("c", at(wed, 10, 0), time.Hour),
		ev("a", at(wed, 9, 0), time.Hour),
		ev("b", at(wed, 9, 30), time.Hour),
		ev("d", at(wed, 9, 45), 30*time.Minute),
	}

	layout := LayoutDay(events, wed, DefaultGrid())

	want := []placement{
		{"a", 0, 0, 100, 1},
		{"b", 1, 10, 90, 2},
		{"d", 2, 20, 90, 3},
		{"c", 0, 0, 100, 1},
	}
	if diff := cmp.Diff(want, placements(layout)); diff != "" {
		t.Errorf("placements mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, layout.Columns)
}

func TestLayoutDay_TiesPlaceLongerFirst(t *testing.T) {
	events := []Event{
		ev("short", at(wed, 14, 0), 30*time.Minute),
		ev("long", at(wed, 14, 0), 2*time.Hour),
	}

	layout := LayoutDay(events, wed, DefaultGrid())

	require.Len(t, layout.Timed, 2)
	assert.Equal(t, "long", layout.Timed[0].Event.PostID)
	assert.Equal(t, 0, layout.Timed[0].Column)
	assert.Equal(t, 1, layout.Timed[1].Column)
}

func TestLayoutDay_VerticalPlacement(t *testing.T) {
	grid := Grid{StartHour: 8, EndHour: 20, RowHeight: 60, MinHeight: 20}

	tests := []struct {
		name       string
		event      Event
		wantTop    float64
		wantHeight float64
	}{
		{"inside grid", ev("x", at(wed, 9, 0), time.Hour), 60, 60},
		{"quarter hour", ev("x", at(wed, 10, 15), 45*time.Minute), 135, 45},
		{"clamped to min height", ev("x", at(wed, 12, 0), 5*time.Minute), 240, 20},
		{"clipped at grid start", ev("x", at(wed, 7, 30), time.Hour), 0, 30},
		{"clipped at grid end", ev("x", at(wed, 19, 30), time.Hour), 690, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := LayoutDay([]Event{tt.event}, wed, grid)
			require.Len(t, layout.Timed, 1)
			assert.InDelta(t, tt.wantTop, layout.Timed[0].Top, 0.001)
			assert.InDelta(t, tt.wantHeight, layout.Timed[0].Height, 0.001)
		})
	}
}

func TestLayoutDay_Exclusions(t *testing.T) {
	grid := Grid{StartHour: 8, EndHour: 20, RowHeight: 60, MinHeight: 20}
	events := []Event{
		{PostID: "zero", Start: at(wed, 9, 0), End: at(wed, 9, 0)},
		{PostID: "negative", Start: at(wed, 9, 0), End: at(wed, 8, 0)},
		{PostID: "unscheduled", End: at(wed, 9, 0)},
		ev("before-hours", at(wed, 6, 0), time.Hour),
		ev("after-hours", at(wed, 21, 0), time.Hour),
		ev("other-day", at(wed.AddDate(0, 0, 1), 9, 0), time.Hour),
		ev("kept", at(wed, 9, 0), time.Hour),
	}

	layout := LayoutDay(events, wed, grid)

	require.Len(t, layout.Timed, 1)
	assert.Equal(t, "kept", layout.Timed[0].Event.PostID)
	assert.Empty(t, layout.AllDay)
}

func TestLayoutDay_MultiDayGoesToAllDayRow(t *testing.T) {
	events := []Event{
		{PostID: "campaign", Start: wed.AddDate(0, 0, -1), End: wed.AddDate(0, 0, 2), AllDay: true},
		ev("long-run", at(wed, 6, 0), 30*time.Hour),
		ev("timed", at(wed, 9, 0), time.Hour),
	}

	layout := LayoutDay(events, wed, DefaultGrid())

	require.Len(t, layout.AllDay, 2)
	assert.Equal(t, "campaign", layout.AllDay[0].PostID)
	assert.Equal(t, "long-run", layout.AllDay[1].PostID)
	require.Len(t, layout.Timed, 1)
	assert.Equal(t, "timed", layout.Timed[0].Event.PostID)
}

func TestLayoutDay_OverlappingEventsNeverShareColumn(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(12)
		events := make([]Event, 0, n)
		for i := 0; i < n; i++ {
			start := at(wed, rng.Intn(23), rng.Intn(4)*15)
			d := time.Duration(5+rng.Intn(180)) * time.Minute
			events = append(events, ev(fmt.Sprintf("p%d", i), start, d))
		}

		layout := LayoutDay(events, wed, DefaultGrid())

		for i := range layout.Timed {
			for j := i + 1; j < len(layout.Timed); j++ {
				a, b := layout.Timed[i], layout.Timed[j]
				if a.Column != b.Column {
					continue
				}
				overlap := a.Event.Start.Before(b.Event.End) && b.Event.Start.Before(a.Event.End)
				require.False(t, overlap, "round %d: %s and %s overlap in column %d",
					round, a.Event.PostID, b.Event.PostID, a.Column)
			}
		}
	}
}

func TestLayoutWeek(t *testing.T) {
	events := []Event{
		ev("mon", at(wed.AddDate(0, 0, -2), 9, 0), time.Hour),
		ev("wed", at(wed, 12, 10), 20*time.Minute),
		ev("next-week", at(wed.AddDate(0, 0, 7), 9, 0), time.Hour),
	}

	week := LayoutWeek(events, wed, time.Monday, DefaultGrid())

	require.Len(t, week.Days, 7)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), week.Start)
	assert.Len(t, week.Days[0].Timed, 1)
	assert.Len(t, week.Days[2].Timed, 1)
	assert.Equal(t, "12:10pm", week.Days[2].Timed[0].Label)
	for _, i := range []int{1, 3, 4, 5, 6} {
		assert.Empty(t, week.Days[i].Timed, "day %d", i)
	}
}

func TestTimeLabel(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"twenty minutes shows start only", 20 * time.Minute, "12:10pm"},
		{"just under threshold", 44 * time.Minute, "12:10pm"},
		{"threshold shows both", 45 * time.Minute, "12:10pm - 12:55pm"},
		{"hour long", time.Hour, "12:10pm - 1:10pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeLabel(ev("x", at(wed, 12, 10), tt.d)))
		})
	}
}
