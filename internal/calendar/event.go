// Package calendar turns scheduled posts into positioned entries for the
// day, week, month and agenda views.
package calendar

import (
	"sort"
	"time"

	"postplanner/internal/common"
	"postplanner/internal/dbmysql"
)

// DefaultDuration applies to posts that carry no explicit end.
const DefaultDuration = 30 * time.Minute

var statusColors = map[common.PostStatus]string{
	common.PostStatusDraft:           "#9CA3AF",
	common.PostStatusScheduled:       "#3B82F6",
	common.PostStatusPublished:       "#10B981",
	common.PostStatusFailed:          "#EF4444",
	common.PostStatusPendingApproval: "#F59E0B",
}

// Event is the calendar projection of a post.
type Event struct {
	PostID    string            `json:"post_id"`
	Title     string            `json:"title"`
	Status    common.PostStatus `json:"status"`
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	AllDay    bool              `json:"all_day"`
	Color     string            `json:"color"`
	Accounts  []string          `json:"social_account_ids,omitempty"`
	MediaURLs []string          `json:"media_urls,omitempty"`
}

func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Valid reports whether the event can be placed on a grid at all.
func (e Event) Valid() bool {
	return !e.Start.IsZero() && e.End.After(e.Start)
}

// IsMultiDay is true for all-day events and anything lasting a day or more.
func (e Event) IsMultiDay() bool {
	return e.AllDay || e.Duration() >= 24*time.Hour
}

// Touches reports whether the event overlaps [from, to).
func (e Event) Touches(from, to time.Time) bool {
	return e.Start.Before(to) && e.End.After(from)
}

// FromPost projects a stored post into loc. Posts without a schedule are
// reported as not placeable.
func FromPost(p *dbmysql.Post, loc *time.Location, defaultDuration time.Duration) (Event, bool) {
	if p == nil || p.ScheduledAt == nil {
		return Event{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	if defaultDuration <= 0 {
		defaultDuration = DefaultDuration
	}

	start := p.ScheduledAt.In(loc)
	end := start.Add(defaultDuration)
	if p.EndAt != nil {
		end = p.EndAt.In(loc)
	}

	ev := Event{
		PostID:    p.ID,
		Title:     titleOf(p.Content),
		Status:    p.Status,
		Start:     start,
		End:       end,
		Color:     ColorFor(p.Status),
		Accounts:  []string(p.SocialAccountIDs),
		MediaURLs: []string(p.MediaURLs),
	}
	return ev, ev.Valid()
}

// FromPosts projects every placeable post and drops the rest.
func FromPosts(posts []dbmysql.Post, loc *time.Location, defaultDuration time.Duration) []Event {
	events := make([]Event, 0, len(posts))
	for i := range posts {
		if ev, ok := FromPost(&posts[i], loc, defaultDuration); ok {
			events = append(events, ev)
		}
	}
	return events
}

func ColorFor(status common.PostStatus) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return statusColors[common.PostStatusDraft]
}

func titleOf(content string) string {
	const maxTitle = 60
	runes := []rune(content)
	if len(runes) <= maxTitle {
		return content
	}
	return string(runes[:maxTitle-1]) + "…"
}

// sortByStart orders ascending by start; on ties the longer event comes first.
func sortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Duration() != b.Duration() {
			return a.Duration() > b.Duration()
		}
		return a.PostID < b.PostID
	})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
