package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"postplanner/internal/common"
	"postplanner/internal/config"
	"postplanner/internal/dbmysql"
)

// Repository is satisfied by *dbmysql.ApprovalRepository.
type Repository interface {
	InstanceByPostID(ctx context.Context, postID string) (*dbmysql.ApprovalInstance, error)
	SaveInstance(ctx context.Context, instance *dbmysql.ApprovalInstance) error
	AddAssignment(ctx context.Context, assignment *dbmysql.ApprovalAssignment) error
	WorkflowByID(ctx context.Context, id string) (*dbmysql.ApprovalWorkflow, error)
	EnsureWorkflow(ctx context.Context, workflow *dbmysql.ApprovalWorkflow) error
}

// PostStore is the slice of the post repository approvals need.
type PostStore interface {
	ByID(ctx context.Context, id string) (*dbmysql.Post, error)
	UpdateStatus(ctx context.Context, id string, status common.PostStatus) error
}

type ApprovalService interface {
	SubmitForApproval(ctx context.Context, postID, workflowID string) (*dbmysql.ApprovalInstance, error)
	ResubmitPost(ctx context.Context, postID string, restartFromBeginning bool) (*dbmysql.ApprovalInstance, error)
	Decide(ctx context.Context, postID, reviewerID string, decision common.Decision, comment string) (*dbmysql.ApprovalInstance, error)
	Instance(ctx context.Context, postID string) (*dbmysql.ApprovalInstance, error)
	EnsureDefaultWorkflow(ctx context.Context) error
}

type approvalService struct {
	repo              Repository
	posts             PostStore
	notifier          common.Subject
	defaultWorkflowID string
	log               *zap.Logger
	now               func() time.Time
}

func NewApprovalService(repo Repository, posts PostStore, notifier common.Subject, cfg *config.Config, log *zap.Logger) ApprovalService {
	if log == nil {
		log = zap.NewNop()
	}
	return &approvalService{
		repo:              repo,
		posts:             posts,
		notifier:          notifier,
		defaultWorkflowID: cfg.Scheduling.DefaultApprovalWorkflowID,
		log:               log,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

func (s *approvalService) EnsureDefaultWorkflow(ctx context.Context) error {
	return s.repo.EnsureWorkflow(ctx, &dbmysql.ApprovalWorkflow{
		ID:        s.defaultWorkflowID,
		Name:      "Default review",
		StepCount: 1,
	})
}

func (s *approvalService) Instance(ctx context.Context, postID string) (*dbmysql.ApprovalInstance, error) {
	return s.repo.InstanceByPostID(ctx, postID)
}

// SubmitForApproval starts a fresh review at step one. A post already under
// review cannot be submitted again.
func (s *approvalService) SubmitForApproval(ctx context.Context, postID, workflowID string) (*dbmysql.ApprovalInstance, error) {
	if workflowID == "" {
		workflowID = s.defaultWorkflowID
	}

	post, err := s.posts.ByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	workflow, err := s.repo.WorkflowByID(ctx, workflowID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewValidationError("approval_workflow_id", "workflow %s does not exist", workflowID)
		}
		return nil, err
	}

	instance, err := s.repo.InstanceByPostID(ctx, postID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		instance = &dbmysql.ApprovalInstance{ID: uuid.NewString(), PostID: postID}
	case err != nil:
		return nil, err
	case isOpen(instance.Status):
		return nil, fmt.Errorf("post %s is already under review: %w", postID, common.ErrInvalidTransition)
	}

	instance.WorkflowID = workflow.ID
	instance.Workflow = *workflow
	instance.Status = common.ApprovalPending
	instance.CurrentStepOrder = 1
	if err := s.repo.SaveInstance(ctx, instance); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateStatus(ctx, postID, common.PostStatusPendingApproval); err != nil {
		return nil, err
	}

	s.log.Info("post submitted for approval",
		zap.String("post_id", postID),
		zap.String("workflow_id", workflow.ID))
	s.emit(post.TeamID, instance)
	return instance, nil
}

// ResubmitPost reopens a rejected review. Unless restartFromBeginning is set
// the review resumes at the step that rejected it.
func (s *approvalService) ResubmitPost(ctx context.Context, postID string, restartFromBeginning bool) (*dbmysql.ApprovalInstance, error) {
	post, err := s.posts.ByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	instance, err := s.repo.InstanceByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if instance.Status != common.ApprovalRejected {
		return nil, fmt.Errorf("post %s review is %s, not rejected: %w", postID, instance.Status, common.ErrInvalidTransition)
	}

	if restartFromBeginning || instance.CurrentStepOrder < 1 {
		instance.CurrentStepOrder = 1
	}
	instance.Status = common.ApprovalInProgress
	if instance.CurrentStepOrder == 1 {
		instance.Status = common.ApprovalPending
	}

	if err := s.repo.SaveInstance(ctx, instance); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateStatus(ctx, postID, common.PostStatusPendingApproval); err != nil {
		return nil, err
	}

	s.log.Info("post resubmitted for approval",
		zap.String("post_id", postID),
		zap.Int("step", instance.CurrentStepOrder),
		zap.Bool("restart", restartFromBeginning))
	s.emit(post.TeamID, instance)
	return instance, nil
}

// Decide records a reviewer decision on the current step. Approving the last
// step schedules the post; any rejection ends the review.
func (s *approvalService) Decide(ctx context.Context, postID, reviewerID string, decision common.Decision, comment string) (*dbmysql.ApprovalInstance, error) {
	if decision != common.DecisionApprove && decision != common.DecisionReject {
		return nil, common.NewValidationError("decision", "must be APPROVE or REJECT")
	}

	post, err := s.posts.ByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	instance, err := s.repo.InstanceByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !isOpen(instance.Status) {
		return nil, fmt.Errorf("post %s review is %s: %w", postID, instance.Status, common.ErrInvalidTransition)
	}

	steps := instance.Workflow.StepCount
	if steps == 0 {
		workflow, err := s.repo.WorkflowByID(ctx, instance.WorkflowID)
		if err != nil {
			return nil, err
		}
		steps = workflow.StepCount
	}

	assignment := &dbmysql.ApprovalAssignment{
		InstanceID: instance.ID,
		StepOrder:  instance.CurrentStepOrder,
		ReviewerID: reviewerID,
		Decision:   decision,
		Comment:    comment,
		DecidedAt:  s.now(),
	}
	if err := s.repo.AddAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	instance.Assignments = append(instance.Assignments, *assignment)

	postStatus := common.PostStatusPendingApproval
	switch {
	case decision == common.DecisionReject:
		instance.Status = common.ApprovalRejected
		postStatus = common.PostStatusDraft
	case instance.CurrentStepOrder >= steps:
		instance.Status = common.ApprovalApproved
		postStatus = common.PostStatusScheduled
	default:
		instance.CurrentStepOrder++
		instance.Status = common.ApprovalInProgress
	}

	if err := s.repo.SaveInstance(ctx, instance); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateStatus(ctx, postID, postStatus); err != nil {
		return nil, err
	}

	s.log.Info("approval decision recorded",
		zap.String("post_id", postID),
		zap.String("reviewer_id", reviewerID),
		zap.String("decision", string(decision)),
		zap.String("status", string(instance.Status)))
	s.emit(post.TeamID, instance)
	return instance, nil
}

func (s *approvalService) emit(teamID string, instance *dbmysql.ApprovalInstance) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyAsync(common.ChangeEvent{
		Type:       common.ApprovalChangedEvent,
		TeamID:     teamID,
		PostID:     instance.PostID,
		Status:     string(instance.Status),
		OccurredAt: s.now(),
		Data:       map[string]string{"step": fmt.Sprint(instance.CurrentStepOrder)},
	})
}

func isOpen(status common.ApprovalStatus) bool {
	return status == common.ApprovalPending || status == common.ApprovalInProgress
}
