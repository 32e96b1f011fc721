package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"postplanner/internal/calendar"
	"postplanner/internal/common"
)

func (h *Handler) calendarView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	view, err := calendar.ParseView(q.Get("view"))
	if err != nil {
		h.writeError(w, r, common.NewValidationError("view", "must be day, week, month or agenda"))
		return
	}
	loc, err := loadLocation(q.Get("tz"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	anchor := time.Now().In(loc)
	if d := q.Get("date"); d != "" {
		if anchor, err = parseDate("date", d, loc); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	events, err := h.eventsFor(r, view, anchor, loc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, calendar.Build(view, anchor, events, h.opts))
}

type popoverResponse struct {
	Date   string           `json:"date"`
	Events []calendar.Event `json:"events"`
}

// dayMore backs the "+N more" control of a month cell.
func (h *Handler) dayMore(w http.ResponseWriter, r *http.Request) {
	loc, err := loadLocation(r.URL.Query().Get("tz"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	date, err := parseDate("date", mux.Vars(r)["date"], loc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	events, err := h.eventsFor(r, calendar.ViewMonth, date, loc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	month := calendar.LayoutMonth(events, date, h.opts.Month)
	writeJSON(w, http.StatusOK, popoverResponse{Date: date.Format(dateLayout), Events: month.Popover(date)})
}

func (h *Handler) eventsFor(r *http.Request, view calendar.View, anchor time.Time, loc *time.Location) ([]calendar.Event, error) {
	from, to := calendar.VisibleRange(view, anchor, h.opts.Month.WeekStartsOn)
	posts, err := h.posts.ListRange(r.Context(), common.TeamIDFromContext(r.Context()), from, to)
	if err != nil {
		return nil, err
	}
	return calendar.FromPosts(posts, loc, h.defaultDuration), nil
}
