package submission

import (
	"context"
	"fmt"
	"strings"

	"postplanner/internal/common"
	"postplanner/internal/dbmysql"
)

// PublishError lists the platforms a publish-now call failed on.
type PublishError struct {
	Platforms []string
}

func (e *PublishError) Error() string {
	return "publishing failed on " + strings.Join(e.Platforms, ", ")
}

func (m *Machine) createWithStatus(status common.PostStatus, kind ResultKind) handler {
	return func(ctx context.Context, s *submission) (*Result, error) {
		in := s.input
		in.Status = status

		post, err := m.posts.Create(ctx, in)
		if err != nil {
			return nil, &common.MutationError{Step: "post.create", Err: err}
		}
		return &Result{Kind: kind, Post: post}, nil
	}
}

func (m *Machine) updateWithStatus(status common.PostStatus, kind ResultKind) handler {
	return func(ctx context.Context, s *submission) (*Result, error) {
		post, err := m.update(ctx, s, status)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: kind, Post: post}, nil
	}
}

// createAndPublish writes the post as a draft first so a failed publish
// leaves a consistent record behind.
func (m *Machine) createAndPublish(ctx context.Context, s *submission) (*Result, error) {
	in := s.input
	in.Status = common.PostStatusDraft

	post, err := m.posts.Create(ctx, in)
	if err != nil {
		return nil, &common.MutationError{Step: "post.create", Err: err}
	}
	return m.publish(ctx, post)
}

func (m *Machine) updateAndPublish(ctx context.Context, s *submission) (*Result, error) {
	post, err := m.update(ctx, s, common.PostStatusDraft)
	if err != nil {
		return nil, err
	}
	return m.publish(ctx, post)
}

func (m *Machine) createAndSubmit(ctx context.Context, s *submission) (*Result, error) {
	workflowID := m.cfg.DefaultApprovalWorkflowID
	in := s.input
	in.Status = common.PostStatusDraft
	in.ApprovalWorkflowID = &workflowID

	post, err := m.posts.Create(ctx, in)
	if err != nil {
		return nil, &common.MutationError{Step: "post.create", Err: err}
	}

	instance, err := m.approvals.SubmitForApproval(ctx, post.ID, workflowID)
	if err != nil {
		return nil, &common.MutationError{Step: "approvalRequest.submitForApproval", Err: err}
	}
	return &Result{Kind: ResultSubmittedForReview, Post: post, Approval: instance}, nil
}

func (m *Machine) updateAndSubmit(ctx context.Context, s *submission) (*Result, error) {
	workflowID := m.cfg.DefaultApprovalWorkflowID
	if s.current.ApprovalWorkflowID != nil && *s.current.ApprovalWorkflowID != "" {
		workflowID = *s.current.ApprovalWorkflowID
	}
	s.input.ApprovalWorkflowID = &workflowID

	post, err := m.update(ctx, s, common.PostStatusDraft)
	if err != nil {
		return nil, err
	}

	instance, err := m.approvals.SubmitForApproval(ctx, post.ID, workflowID)
	if err != nil {
		return nil, &common.MutationError{Step: "approvalRequest.submitForApproval", Err: err}
	}
	return &Result{Kind: ResultSubmittedForReview, Post: post, Approval: instance}, nil
}

// updateAndResubmit resumes a rejected review at the step that rejected it.
func (m *Machine) updateAndResubmit(ctx context.Context, s *submission) (*Result, error) {
	post, err := m.update(ctx, s, common.PostStatusDraft)
	if err != nil {
		return nil, err
	}

	instance, err := m.approvals.ResubmitPost(ctx, post.ID, false)
	if err != nil {
		return nil, &common.MutationError{Step: "approvalRequest.resubmitPost", Err: err}
	}
	return &Result{Kind: ResultResubmitted, Post: post, Approval: instance}, nil
}

func (m *Machine) update(ctx context.Context, s *submission, status common.PostStatus) (*dbmysql.Post, error) {
	in := s.input
	in.Status = status

	post, err := m.posts.Update(ctx, s.current.ID, in)
	if err != nil {
		return nil, &common.MutationError{Step: "post.update", Err: err}
	}
	return post, nil
}

// publish evaluates per-platform results. A partial failure is a warning
// naming the failed platforms; a total failure is an error.
func (m *Machine) publish(ctx context.Context, post *dbmysql.Post) (*Result, error) {
	results, err := m.posts.PublishNow(ctx, post.ID)
	if err != nil {
		return nil, &common.MutationError{Step: "post.publishNow", Err: err}
	}

	failed := failedPlatforms(results)
	res := &Result{Kind: ResultPublished, Post: post, Publish: results}

	switch {
	case len(results) == 0:
		return nil, &common.MutationError{Step: "post.publishNow", Err: fmt.Errorf("no target accounts")}
	case len(failed) == 0:
		post.Status = common.PostStatusPublished
	case allFailed(results):
		post.Status = common.PostStatusFailed
		return nil, &common.MutationError{Step: "post.publishNow", Err: &PublishError{Platforms: failed}}
	default:
		post.Status = common.PostStatusPublished
		res.Kind = ResultPartiallyPublished
		res.FailedPlatforms = failed
		res.Warning = "Published, but failed on: " + strings.Join(failed, ", ")
	}
	return res, nil
}

func failedPlatforms(results []common.PublishResult) []string {
	seen := make(map[string]bool)
	var failed []string
	for _, r := range results {
		if r.Success {
			continue
		}
		name := r.Platform
		if name == "" {
			name = r.SocialAccountID
		}
		if !seen[name] {
			seen[name] = true
			failed = append(failed, name)
		}
	}
	return failed
}

func allFailed(results []common.PublishResult) bool {
	for _, r := range results {
		if r.Success {
			return false
		}
	}
	return true
}
