package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"postplanner/internal/calendar"
	"postplanner/internal/common"
	"postplanner/internal/reschedule"
	"postplanner/internal/submission"
)

type attachmentRequest struct {
	URL         string `json:"url,omitempty"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data,omitempty"` // base64 in JSON
}

type submitRequest struct {
	PostID           string              `json:"post_id,omitempty"`
	DraftKey         string              `json:"draft_key,omitempty"`
	Action           submission.Action   `json:"action"`
	Content          string              `json:"content"`
	ScheduledAt      *time.Time          `json:"scheduled_at,omitempty"`
	EndAt            *time.Time          `json:"end_at,omitempty"`
	Attachments      []attachmentRequest `json:"attachments,omitempty"`
	SocialAccountIDs []string            `json:"social_account_ids"`
}

func (in submitRequest) toRequest(teamID, authorID string) submission.Request {
	req := submission.Request{
		PostID:           in.PostID,
		DraftKey:         in.DraftKey,
		TeamID:           teamID,
		AuthorID:         authorID,
		Action:           in.Action,
		Content:          in.Content,
		ScheduledAt:      in.ScheduledAt,
		EndAt:            in.EndAt,
		SocialAccountIDs: in.SocialAccountIDs,
	}
	for _, a := range in.Attachments {
		if len(a.Data) == 0 {
			req.Attachments = append(req.Attachments, submission.Attachment{URL: a.URL})
			continue
		}
		req.Attachments = append(req.Attachments, submission.Attachment{Local: &common.LocalFile{
			Name:        a.Name,
			ContentType: a.ContentType,
			Data:        a.Data,
		}})
	}
	return req
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var in submitRequest
	// inline attachments arrive base64 encoded
	limit := int64(maxJSONBody)
	if h.maxUpload > 0 {
		limit += h.maxUpload * 2
	}
	if err := decodeJSON(w, r, limit, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if in.PostID != "" {
		if _, err := h.ownedPost(ctx, in.PostID); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	result, err := h.submitter.Submit(ctx, in.toRequest(common.TeamIDFromContext(ctx), common.UserIDFromContext(ctx)))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) actions(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	if _, err := h.ownedPost(r.Context(), postID); err != nil {
		h.writeError(w, r, err)
		return
	}

	actions, err := h.submitter.AvailableActions(r.Context(), postID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"post_id": postID, "actions": actions})
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	if _, err := h.ownedPost(r.Context(), postID); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.posts.Delete(r.Context(), postID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type targetRequest struct {
	View string  `json:"view"`
	Date string  `json:"date"`
	Hour float64 `json:"hour"`
	TZ   string  `json:"tz"`
}

func (t targetRequest) toTarget() (reschedule.Target, *time.Location, error) {
	view, err := calendar.ParseView(t.View)
	if err != nil {
		return reschedule.Target{}, nil, common.NewValidationError("view", "must be day, week or month")
	}
	loc, err := loadLocation(t.TZ)
	if err != nil {
		return reschedule.Target{}, nil, err
	}
	date, err := parseDate("date", t.Date, loc)
	if err != nil {
		return reschedule.Target{}, nil, err
	}
	if t.Hour < 0 || t.Hour >= 24 {
		return reschedule.Target{}, nil, common.NewValidationError("hour", "must be within [0, 24)")
	}
	return reschedule.Target{View: view, Date: date, Hour: t.Hour}, loc, nil
}

// reschedulePost is the stateless drop: one request carries the whole gesture.
func (h *Handler) reschedulePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := mux.Vars(r)["id"]

	var in targetRequest
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	target, loc, err := in.toTarget()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.ownedPost(ctx, postID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ev, ok := calendar.FromPost(post, loc, h.defaultDuration)
	if !ok {
		h.writeError(w, r, common.NewValidationError("scheduled_at", "post is not on the calendar"))
		return
	}

	start, end, changed := reschedule.Resolve(ev, target)
	if changed {
		if err := h.posts.Reschedule(ctx, postID, start, end); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, reschedule.Outcome{
		State:   reschedule.Committed,
		Changed: changed,
		PostID:  postID,
		Start:   start,
		End:     end,
	})
}

func (h *Handler) quota(w http.ResponseWriter, r *http.Request) {
	q, err := h.posts.Quota(r.Context(), common.TeamIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"used":      q.Used,
		"limit":     q.Limit,
		"unlimited": q.Unlimited,
		"remaining": q.Remaining(),
	})
}

func (h *Handler) accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.posts.Accounts(r.Context(), common.TeamIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

func (h *Handler) listMedia(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), defaultLimit)
	offset := queryInt(q.Get("offset"), 0)

	refs, err := h.library.List(r.Context(), common.TeamIDFromContext(r.Context()), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"media": refs, "limit": limit, "offset": offset})
}

func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	maxSize := h.maxUpload
	if maxSize <= 0 {
		maxSize = 64 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, r, common.NewValidationError("file", "multipart upload too large or malformed"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, common.NewValidationError("file", "is required"))
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.writeError(w, r, common.NewValidationError("file", "could not be read"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(buf.Bytes())
	}

	ctx := r.Context()
	url, err := h.library.Upload(ctx, common.TeamIDFromContext(ctx), common.UserIDFromContext(ctx), common.LocalFile{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        buf.Bytes(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

type decisionRequest struct {
	Decision common.Decision `json:"decision" validate:"required,decision"`
	Comment  string          `json:"comment" validate:"max=2000"`
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := mux.Vars(r)["postId"]

	var in decisionRequest
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := common.ValidateStruct(in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.ownedPost(ctx, postID); err != nil {
		h.writeError(w, r, err)
		return
	}

	instance, err := h.reviewer.Decide(ctx, postID, common.UserIDFromContext(ctx), in.Decision, in.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instance)
}

func queryInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
