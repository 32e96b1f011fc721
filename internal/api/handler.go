// Package api exposes the scheduling engine over HTTP and gRPC.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"postplanner/internal/calendar"
	"postplanner/internal/common"
	"postplanner/internal/config"
	"postplanner/internal/dbmysql"
	"postplanner/internal/reschedule"
	"postplanner/internal/submission"
)

const (
	dateLayout   = "2006-01-02"
	maxJSONBody  = 1 << 20
	defaultLimit = 50
)

// PostBackend is satisfied by post.PostService.
type PostBackend interface {
	Get(ctx context.Context, postID string) (*dbmysql.Post, error)
	Delete(ctx context.Context, postID string) error
	Reschedule(ctx context.Context, postID string, start, end time.Time) error
	ListRange(ctx context.Context, teamID string, from, to time.Time) ([]dbmysql.Post, error)
	Quota(ctx context.Context, teamID string) (common.Quota, error)
	Accounts(ctx context.Context, teamID string) ([]dbmysql.SocialAccount, error)
}

// Submitter is satisfied by *submission.Machine.
type Submitter interface {
	Submit(ctx context.Context, req submission.Request) (*submission.Result, error)
	AvailableActions(ctx context.Context, postID string) ([]submission.Action, error)
}

// Reviewer is satisfied by approval.ApprovalService.
type Reviewer interface {
	Decide(ctx context.Context, postID, reviewerID string, decision common.Decision, comment string) (*dbmysql.ApprovalInstance, error)
}

// Library is satisfied by media.MediaService.
type Library interface {
	Upload(ctx context.Context, teamID, uploaderID string, file common.LocalFile) (string, error)
	List(ctx context.Context, teamID string, limit, offset int) ([]dbmysql.MediaRef, error)
}

type Handler struct {
	posts           PostBackend
	submitter       Submitter
	reviewer        Reviewer
	library         Library
	sessions        *reschedule.Sessions
	stream          http.Handler
	opts            calendar.Options
	defaultDuration time.Duration
	maxUpload       int64
	log             *zap.Logger
}

func NewHandler(
	posts PostBackend,
	submitter Submitter,
	reviewer Reviewer,
	library Library,
	sessions *reschedule.Sessions,
	stream http.Handler,
	cfg *config.Config,
	log *zap.Logger,
) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		posts:           posts,
		submitter:       submitter,
		reviewer:        reviewer,
		library:         library,
		sessions:        sessions,
		stream:          stream,
		opts:            calendar.OptionsFromConfig(cfg.Calendar),
		defaultDuration: cfg.Calendar.DefaultDuration,
		maxUpload:       cfg.Media.MaxUploadSize,
		log:             log,
	}
}

// NewRouter mounts every endpoint under /api/v1 behind bearer auth; only
// the health check is public.
func NewRouter(h *Handler, jwtManager *common.JWTManager) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(h.logRequests)
	api.Use(common.HTTPAuthMiddleware(jwtManager, "/api/v1/health"))

	api.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api.HandleFunc("/calendar", h.calendarView).Methods(http.MethodGet)
	api.HandleFunc("/calendar/day/{date}/more", h.dayMore).Methods(http.MethodGet)

	api.HandleFunc("/posts/submit", h.submit).Methods(http.MethodPost)
	api.HandleFunc("/posts/quota", h.quota).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/actions", h.actions).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/reschedule", h.reschedulePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.deletePost).Methods(http.MethodDelete)

	api.HandleFunc("/drag/start", h.dragStart).Methods(http.MethodPost)
	api.HandleFunc("/drag/hover", h.dragHover).Methods(http.MethodPost)
	api.HandleFunc("/drag/drop", h.dragDrop).Methods(http.MethodPost)
	api.HandleFunc("/drag/cancel", h.dragCancel).Methods(http.MethodPost)

	api.HandleFunc("/accounts", h.accounts).Methods(http.MethodGet)
	api.HandleFunc("/media", h.listMedia).Methods(http.MethodGet)
	api.HandleFunc("/media", h.uploadMedia).Methods(http.MethodPost)
	api.HandleFunc("/approvals/{postId}/decision", h.decide).Methods(http.MethodPost)

	if h.stream != nil {
		api.Handle("/events", h.stream).Methods(http.MethodGet)
	}

	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownedPost hides posts of other teams behind ErrNotFound.
func (h *Handler) ownedPost(ctx context.Context, postID string) (*dbmysql.Post, error) {
	post, err := h.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.TeamID != common.TeamIDFromContext(ctx) {
		return nil, fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
	}
	return post, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: empty body", errMalformedBody)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, common.NewValidationError("tz", "unknown time zone %q", name)
	}
	return loc, nil
}

func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, common.NewValidationError(field, "must be a YYYY-MM-DD date")
	}
	return d, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps Server-Sent Events working through the logger.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
