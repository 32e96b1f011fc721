package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"postplanner/internal/calendar"
	"postplanner/internal/common"
	"postplanner/internal/reschedule"
)

type dragStartRequest struct {
	PostID   string             `json:"post_id"`
	View     string             `json:"view"`
	TZ       string             `json:"tz"`
	Offset   reschedule.Offset  `json:"offset"`
	Pointer  reschedule.Pointer `json:"pointer"`
	Distance float64            `json:"distance"`
	HeldMS   int64              `json:"held_ms"`
}

type dropRequest struct {
	Target *targetRequest `json:"target"`
}

func (h *Handler) dragStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in dragStartRequest
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := calendar.ParseView(in.View)
	if err != nil {
		h.writeError(w, r, common.NewValidationError("view", "must be day, week or month"))
		return
	}
	loc, err := loadLocation(in.TZ)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.ownedPost(ctx, in.PostID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if post.Status.IsTerminal() {
		h.writeError(w, r, common.ErrInvalidTransition)
		return
	}
	ev, ok := calendar.FromPost(post, loc, h.defaultDuration)
	if !ok {
		h.writeError(w, r, common.NewValidationError("scheduled_at", "post is not on the calendar"))
		return
	}

	pointer := in.Pointer
	if pointer == "" {
		pointer = reschedule.PointerMouse
	}
	act := reschedule.Activation{
		Pointer:  pointer,
		Distance: in.Distance,
		Held:     time.Duration(in.HeldMS) * time.Millisecond,
	}

	controller := h.sessions.For(common.UserIDFromContext(ctx))
	if err := controller.Start(ev, view, in.Offset, act); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, controller.Active())
}

func (h *Handler) dragHover(w http.ResponseWriter, r *http.Request) {
	var in targetRequest
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	target, _, err := in.toTarget()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	candidate, err := h.sessions.For(common.UserIDFromContext(r.Context())).Hover(target)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]time.Time{"candidate": candidate})
}

// dragDrop treats a missing or unusable target as a drop outside any cell,
// which cancels the gesture.
func (h *Handler) dragDrop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := common.UserIDFromContext(ctx)

	var in dropRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	var target *reschedule.Target
	if in.Target != nil {
		t, _, err := in.Target.toTarget()
		if err == nil {
			target = &t
		} else {
			h.log.Info("unusable drop target", zap.String("user_id", userID), zap.Error(err))
		}
	}

	outcome, err := h.sessions.For(userID).Drop(ctx, target)
	h.sessions.Forget(userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) dragCancel(w http.ResponseWriter, r *http.Request) {
	userID := common.UserIDFromContext(r.Context())
	outcome := h.sessions.For(userID).Cancel()
	h.sessions.Forget(userID)
	writeJSON(w, http.StatusOK, outcome)
}
