package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"postplanner/internal/common"
	"postplanner/internal/config"
	"postplanner/internal/dbmysql"
)

type transitionKey struct {
	action Action
	mode   Mode
}

//go:generate mockgen -destination=mocks/mocks.go -package=mocks postplanner/internal/submission PostAPI,ApprovalAPI,MediaUploader

// handler runs the backend calls of one (action, mode) pair. Steps run in
// order and the first failure abandons the rest.
type handler func(ctx context.Context, s *submission) (*Result, error)

// submission is the resolved state handed to a handler.
type submission struct {
	req     Request
	action  Action
	mode    Mode
	current *dbmysql.Post
	input   common.PostInput
}

type Machine struct {
	posts     PostAPI
	approvals ApprovalAPI
	media     MediaUploader
	cfg       config.SchedulingConfig
	busy      *busyTracker
	log       *zap.Logger
	now       func() time.Time

	transitions map[transitionKey]handler
}

func NewMachine(posts PostAPI, approvals ApprovalAPI, media MediaUploader, cfg config.SchedulingConfig, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Machine{
		posts:     posts,
		approvals: approvals,
		media:     media,
		cfg:       cfg,
		busy:      newBusyTracker(),
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	m.transitions = map[transitionKey]handler{
		{ActionPublishNow, ModeCreate}:    m.createAndPublish,
		{ActionSchedule, ModeCreate}:      m.createWithStatus(common.PostStatusScheduled, ResultScheduled),
		{ActionSaveAsDraft, ModeCreate}:   m.createWithStatus(common.PostStatusDraft, ResultDraftSaved),
		{ActionRequestReview, ModeCreate}: m.createAndSubmit,

		{ActionPublishNow, ModeEdit}:    m.updateAndPublish,
		{ActionSchedule, ModeEdit}:      m.updateWithStatus(common.PostStatusScheduled, ResultScheduled),
		{ActionSaveAsDraft, ModeEdit}:   m.updateWithStatus(common.PostStatusDraft, ResultDraftSaved),
		{ActionRequestReview, ModeEdit}: m.updateAndSubmit,

		{ActionPublishNow, ModeEditRejected}:  m.updateAndPublish,
		{ActionSchedule, ModeEditRejected}:    m.updateWithStatus(common.PostStatusScheduled, ResultScheduled),
		{ActionSaveAsDraft, ModeEditRejected}: m.updateWithStatus(common.PostStatusDraft, ResultDraftSaved),
		{ActionResubmit, ModeEditRejected}:    m.updateAndResubmit,
	}
	return m
}

// Busy reports whether a submission for the post or draft key is running.
func (m *Machine) Busy(key string) bool {
	return m.busy.busy(key)
}

// Submit validates the request, uploads local attachments and runs the
// transition for the chosen action in the post's current mode.
func (m *Machine) Submit(ctx context.Context, req Request) (*Result, error) {
	if err := m.validate(req); err != nil {
		return nil, err
	}

	scheduledAt, err := m.resolveTime(req.Action, req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	key := busyKey(req)
	if !m.busy.acquire(key) {
		return nil, common.ErrBusy
	}
	defer m.busy.release(key)

	s := &submission{req: req, action: req.Action, mode: ModeCreate}
	if req.PostID != "" {
		if err := m.loadCurrent(ctx, s); err != nil {
			return nil, err
		}
	}

	if s.mode == ModeEditRejected && s.action == ActionRequestReview {
		s.action = ActionResubmit
	}

	h, ok := m.transitions[transitionKey{s.action, s.mode}]
	if !ok {
		return nil, fmt.Errorf("%s while in %s mode: %w", s.action, s.mode, common.ErrInvalidTransition)
	}

	mediaURLs, err := m.uploadAttachments(ctx, req)
	if err != nil {
		m.log.Warn("attachment upload failed, submission aborted",
			zap.String("team_id", req.TeamID),
			zap.Error(err))
		return nil, err
	}

	s.input = common.PostInput{
		TeamID:           req.TeamID,
		AuthorID:         req.AuthorID,
		Content:          req.Content,
		ScheduledAt:      &scheduledAt,
		EndAt:            endFor(req, scheduledAt),
		MediaURLs:        mediaURLs,
		SocialAccountIDs: req.SocialAccountIDs,
	}

	res, err := h(ctx, s)
	if err != nil {
		m.log.Error("submission failed",
			zap.String("action", string(s.action)),
			zap.Stringer("mode", s.mode),
			zap.String("post_id", req.PostID),
			zap.Error(err))
		return nil, err
	}

	res.Action = s.action
	res.Mode = s.mode
	m.log.Info("submission completed",
		zap.String("action", string(s.action)),
		zap.Stringer("mode", s.mode),
		zap.String("post_id", res.Post.ID),
		zap.String("result", string(res.Kind)))
	return res, nil
}

// AvailableActions lists what the submit control offers for an existing post.
func (m *Machine) AvailableActions(ctx context.Context, postID string) ([]Action, error) {
	s := &submission{req: Request{PostID: postID}}
	if err := m.loadCurrent(ctx, s); err != nil {
		return nil, err
	}

	review := ActionRequestReview
	if s.mode == ModeEditRejected {
		review = ActionResubmit
	}
	return []Action{ActionPublishNow, ActionSchedule, ActionSaveAsDraft, review}, nil
}

func (m *Machine) validate(req Request) error {
	if err := common.ValidateStruct(req); err != nil {
		return err
	}
	if req.ScheduledAt != nil && req.EndAt != nil && !req.EndAt.After(*req.ScheduledAt) {
		return common.NewValidationError("end_at", "must be after scheduled_at")
	}
	if req.Action != ActionSaveAsDraft && len(req.SocialAccountIDs) == 0 {
		return common.NewValidationError("social_account_ids", "select at least one account")
	}
	if req.Action == ActionResubmit && req.PostID == "" {
		return common.NewValidationError("post_id", "is required to resubmit")
	}
	for _, a := range req.Attachments {
		switch {
		case a.IsLocal():
			if !common.IsSupportedUpload(a.Local.ContentType) {
				return common.NewValidationError("attachments", "%s has unsupported type %q", a.Local.Name, a.Local.ContentType)
			}
		case strings.TrimSpace(a.URL) == "":
			return common.NewValidationError("attachments", "attachment has neither a url nor a file")
		}
	}
	return nil
}

// resolveTime returns the effective schedule of the post for the action.
func (m *Machine) resolveTime(action Action, provided *time.Time) (time.Time, error) {
	now := m.now()

	switch action {
	case ActionPublishNow:
		return now, nil
	case ActionSaveAsDraft:
		if provided != nil {
			return provided.UTC(), nil
		}
		return now, nil
	default:
		if provided == nil {
			return now.Add(m.cfg.DefaultLead), nil
		}
		if provided.Before(now.Add(m.cfg.MinLead)) {
			return time.Time{}, common.NewValidationError("scheduled_at", "must be at least %s in the future", m.cfg.MinLead)
		}
		return provided.UTC(), nil
	}
}

func (m *Machine) loadCurrent(ctx context.Context, s *submission) error {
	post, err := m.posts.Get(ctx, s.req.PostID)
	if err != nil {
		return err
	}
	if post.Status.IsTerminal() {
		return fmt.Errorf("post %s is already %s: %w", post.ID, post.Status, common.ErrInvalidTransition)
	}
	if s.req.TeamID != "" && post.TeamID != s.req.TeamID {
		return common.ErrForbidden
	}
	s.current = post
	s.mode = ModeEdit

	instance, err := m.posts.ApprovalInstance(ctx, post.ID)
	switch {
	case errors.Is(err, common.ErrNotFound):
	case err != nil:
		return err
	case instance != nil && instance.Status == common.ApprovalRejected:
		s.mode = ModeEditRejected
	}
	return nil
}

// uploadAttachments uploads local files concurrently and returns the final
// URL list in the original order. Any failure aborts with an UploadError.
func (m *Machine) uploadAttachments(ctx context.Context, req Request) ([]string, error) {
	urls := make([]string, len(req.Attachments))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range req.Attachments {
		if !a.IsLocal() {
			urls[i] = a.URL
			continue
		}
		g.Go(func() error {
			url, err := m.media.Upload(gctx, req.TeamID, req.AuthorID, *a.Local)
			if err != nil {
				return &common.UploadError{File: a.Local.Name, Err: err}
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var upErr *common.UploadError
		if errors.As(err, &upErr) {
			return nil, upErr
		}
		return nil, &common.UploadError{Err: err}
	}
	return urls, nil
}

func busyKey(req Request) string {
	switch {
	case req.PostID != "":
		return "post:" + req.PostID
	case req.DraftKey != "":
		return "draft:" + req.DraftKey
	default:
		return "author:" + req.TeamID + "/" + req.AuthorID
	}
}

// endFor keeps the requested duration when the start moved.
func endFor(req Request, start time.Time) *time.Time {
	if req.EndAt == nil {
		return nil
	}
	if req.ScheduledAt == nil {
		if !req.EndAt.After(start) {
			return nil
		}
		end := req.EndAt.UTC()
		return &end
	}
	end := start.Add(req.EndAt.Sub(*req.ScheduledAt))
	return &end
}
