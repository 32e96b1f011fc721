package post

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"postplanner/internal/common"
	"postplanner/internal/config"
	"postplanner/internal/dbmysql"
)

// Repository is satisfied by *dbmysql.PostRepository.
type Repository interface {
	Create(ctx context.Context, post *dbmysql.Post) error
	ByID(ctx context.Context, id string) (*dbmysql.Post, error)
	Save(ctx context.Context, post *dbmysql.Post) error
	UpdateSchedule(ctx context.Context, id string, start time.Time, end *time.Time) error
	UpdateStatus(ctx context.Context, id string, status common.PostStatus) error
	Delete(ctx context.Context, id string) error
	ListRange(ctx context.Context, teamID string, from, to time.Time) ([]dbmysql.Post, error)
	CountCreatedSince(ctx context.Context, teamID string, since time.Time) (int64, error)
	RecordAttempts(ctx context.Context, attempts []dbmysql.PublishAttempt) error
}

type AccountRepository interface {
	ByTeam(ctx context.Context, teamID string) ([]dbmysql.SocialAccount, error)
	ByIDs(ctx context.Context, teamID string, ids []string) ([]dbmysql.SocialAccount, error)
}

type ApprovalReader interface {
	InstanceByPostID(ctx context.Context, postID string) (*dbmysql.ApprovalInstance, error)
}

// PostService is the post backend used by the submission machine, the drag
// controller and the HTTP API.
type PostService interface {
	Get(ctx context.Context, postID string) (*dbmysql.Post, error)
	Create(ctx context.Context, in common.PostInput) (*dbmysql.Post, error)
	Update(ctx context.Context, postID string, in common.PostInput) (*dbmysql.Post, error)
	Delete(ctx context.Context, postID string) error
	PublishNow(ctx context.Context, postID string) ([]common.PublishResult, error)
	ApprovalInstance(ctx context.Context, postID string) (*dbmysql.ApprovalInstance, error)
	Reschedule(ctx context.Context, postID string, start, end time.Time) error
	ListRange(ctx context.Context, teamID string, from, to time.Time) ([]dbmysql.Post, error)
	Quota(ctx context.Context, teamID string) (common.Quota, error)
	Accounts(ctx context.Context, teamID string) ([]dbmysql.SocialAccount, error)
}

type postService struct {
	repo       Repository
	accounts   AccountRepository
	approvals  ApprovalReader
	notifier   common.Subject
	publishers map[string]Publisher
	fallback   Publisher
	quota      int
	log        *zap.Logger
	now        func() time.Time
}

func NewPostService(repo Repository, accounts AccountRepository, approvals ApprovalReader, notifier common.Subject, cfg *config.Config, log *zap.Logger, publishers ...Publisher) PostService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &postService{
		repo:       repo,
		accounts:   accounts,
		approvals:  approvals,
		notifier:   notifier,
		publishers: make(map[string]Publisher),
		fallback:   NewLogPublisher(log),
		quota:      cfg.Scheduling.MonthlyPostQuota,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, p := range publishers {
		s.publishers[p.Platform()] = p
	}
	return s
}

func (s *postService) Get(ctx context.Context, postID string) (*dbmysql.Post, error) {
	if postID == "" {
		return nil, common.NewValidationError("post_id", "is required")
	}
	return s.repo.ByID(ctx, postID)
}

func (s *postService) Create(ctx context.Context, in common.PostInput) (*dbmysql.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if s.quota > 0 {
		used, err := s.repo.CountCreatedSince(ctx, in.TeamID, monthStart(s.now()))
		if err != nil {
			return nil, err
		}
		if used >= int64(s.quota) {
			return nil, common.ErrQuotaExceeded
		}
	}

	status := in.Status
	if status == "" {
		status = common.PostStatusDraft
	}

	post := &dbmysql.Post{
		ID:                 uuid.NewString(),
		TeamID:             in.TeamID,
		AuthorID:           in.AuthorID,
		Content:            in.Content,
		ScheduledAt:        utcPtr(in.ScheduledAt),
		EndAt:              utcPtr(in.EndAt),
		Status:             status,
		MediaURLs:          common.StringList(in.MediaURLs),
		SocialAccountIDs:   common.StringList(in.SocialAccountIDs),
		ApprovalWorkflowID: in.ApprovalWorkflowID,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.log.Info("post created",
		zap.String("post_id", post.ID),
		zap.String("team_id", post.TeamID),
		zap.String("status", string(post.Status)))
	s.emit(common.PostCreatedEvent, post)
	return post, nil
}

func (s *postService) Update(ctx context.Context, postID string, in common.PostInput) (*dbmysql.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Status.IsTerminal() {
		return nil, fmt.Errorf("post %s is %s: %w", postID, post.Status, common.ErrInvalidTransition)
	}
	if in.Status != "" && !in.Status.IsValid() {
		return nil, common.NewValidationError("status", "unknown status %q", in.Status)
	}

	post.Content = in.Content
	post.ScheduledAt = utcPtr(in.ScheduledAt)
	post.EndAt = utcPtr(in.EndAt)
	post.MediaURLs = common.StringList(in.MediaURLs)
	post.SocialAccountIDs = common.StringList(in.SocialAccountIDs)
	if in.Status != "" {
		post.Status = in.Status
	}
	if in.ApprovalWorkflowID != nil {
		post.ApprovalWorkflowID = in.ApprovalWorkflowID
	}

	if err := s.repo.Save(ctx, post); err != nil {
		return nil, err
	}

	s.emit(common.PostUpdatedEvent, post)
	return post, nil
}

func (s *postService) Delete(ctx context.Context, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}

	s.log.Info("post deleted", zap.String("post_id", postID))
	s.emit(common.PostDeletedEvent, post)
	return nil
}

// PublishNow publishes to every target account concurrently and records one
// attempt per target. The post is PUBLISHED when at least one target
// succeeded and FAILED when none did.
func (s *postService) PublishNow(ctx context.Context, postID string) ([]common.PublishResult, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Status.IsTerminal() {
		return nil, fmt.Errorf("post %s is already %s: %w", postID, post.Status, common.ErrInvalidTransition)
	}
	if len(post.SocialAccountIDs) == 0 {
		return nil, common.NewValidationError("social_account_ids", "post has no target accounts")
	}

	accounts, err := s.accounts.ByIDs(ctx, post.TeamID, post.SocialAccountIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]dbmysql.SocialAccount, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	results := make([]common.PublishResult, len(post.SocialAccountIDs))
	var g errgroup.Group
	for i, accountID := range post.SocialAccountIDs {
		account, ok := byID[accountID]
		if !ok {
			results[i] = common.PublishResult{SocialAccountID: accountID, Error: "account is not connected"}
			continue
		}
		g.Go(func() error {
			results[i] = s.publishOne(ctx, post, account)
			return nil
		})
	}
	_ = g.Wait()

	attempts := make([]dbmysql.PublishAttempt, 0, len(results))
	succeeded := false
	for _, r := range results {
		succeeded = succeeded || r.Success
		attempts = append(attempts, dbmysql.PublishAttempt{
			PostID:          post.ID,
			SocialAccountID: r.SocialAccountID,
			Platform:        r.Platform,
			Success:         r.Success,
			ExternalID:      r.ExternalID,
			Error:           r.Error,
		})
	}
	if err := s.repo.RecordAttempts(ctx, attempts); err != nil {
		return nil, err
	}

	status := common.PostStatusFailed
	if succeeded {
		status = common.PostStatusPublished
	}
	if err := s.repo.UpdateStatus(ctx, post.ID, status); err != nil {
		return nil, err
	}
	post.Status = status

	s.log.Info("post published",
		zap.String("post_id", post.ID),
		zap.String("status", string(status)),
		zap.Int("targets", len(results)))
	s.emit(common.PostPublishedEvent, post)
	return results, nil
}

func (s *postService) publishOne(ctx context.Context, post *dbmysql.Post, account dbmysql.SocialAccount) common.PublishResult {
	res := common.PublishResult{SocialAccountID: account.ID, Platform: account.Platform}

	publisher, ok := s.publishers[account.Platform]
	if !ok {
		publisher = s.fallback
	}

	externalID, err := publisher.Publish(ctx, post, account)
	if err != nil {
		s.log.Warn("publish to platform failed",
			zap.String("post_id", post.ID),
			zap.String("platform", account.Platform),
			zap.Error(err))
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.ExternalID = externalID
	return res
}

func (s *postService) ApprovalInstance(ctx context.Context, postID string) (*dbmysql.ApprovalInstance, error) {
	return s.approvals.InstanceByPostID(ctx, postID)
}

func (s *postService) Reschedule(ctx context.Context, postID string, start, end time.Time) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.Status.IsTerminal() {
		return fmt.Errorf("post %s is %s: %w", postID, post.Status, common.ErrInvalidTransition)
	}
	if !end.After(start) {
		return common.NewValidationError("end", "must be after start")
	}

	start, end = start.UTC(), end.UTC()
	if err := s.repo.UpdateSchedule(ctx, postID, start, &end); err != nil {
		return err
	}

	post.ScheduledAt = &start
	post.EndAt = &end
	s.emit(common.PostRescheduledEvent, post)
	return nil
}

func (s *postService) ListRange(ctx context.Context, teamID string, from, to time.Time) ([]dbmysql.Post, error) {
	if teamID == "" {
		return nil, common.NewValidationError("team_id", "is required")
	}
	if !to.After(from) {
		return nil, common.NewValidationError("range", "end must be after start")
	}
	return s.repo.ListRange(ctx, teamID, from.UTC(), to.UTC())
}

func (s *postService) Quota(ctx context.Context, teamID string) (common.Quota, error) {
	used, err := s.repo.CountCreatedSince(ctx, teamID, monthStart(s.now()))
	if err != nil {
		return common.Quota{}, err
	}
	return common.Quota{Used: used, Limit: s.quota, Unlimited: s.quota <= 0}, nil
}

func (s *postService) Accounts(ctx context.Context, teamID string) ([]dbmysql.SocialAccount, error) {
	return s.accounts.ByTeam(ctx, teamID)
}

func (s *postService) emit(eventType common.EventType, post *dbmysql.Post) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyAsync(common.ChangeEvent{
		Type:       eventType,
		TeamID:     post.TeamID,
		PostID:     post.ID,
		Status:     string(post.Status),
		OccurredAt: s.now(),
	})
}

func validateInput(in common.PostInput) error {
	if in.TeamID == "" {
		return common.NewValidationError("team_id", "is required")
	}
	if in.Status != "" && !in.Status.IsValid() {
		return common.NewValidationError("status", "unknown status %q", in.Status)
	}
	if utf8.RuneCountInString(in.Content) > common.MaxContentLength {
		return common.NewValidationError("content", "must be at most %d characters", common.MaxContentLength)
	}
	if in.ScheduledAt != nil && in.EndAt != nil && !in.EndAt.After(*in.ScheduledAt) {
		return common.NewValidationError("end_at", "must be after scheduled_at")
	}
	return nil
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
