package submission

import (
	"context"
	"time"

	"postplanner/internal/common"
	"postplanner/internal/dbmysql"
)

type Action string

const (
	ActionPublishNow    Action = "PUBLISH_NOW"
	ActionSchedule      Action = "SCHEDULE"
	ActionSaveAsDraft   Action = "SAVE_AS_DRAFT"
	ActionRequestReview Action = "REQUEST_REVIEW"
	// ActionResubmit is only offered while the post's approval is REJECTED.
	ActionResubmit Action = "RESUBMIT"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeEditRejected
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	case ModeEditRejected:
		return "edit-rejected"
	}
	return "unknown"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Attachment is either an already persisted URL or a local file that must
// be uploaded before the post is written.
type Attachment struct {
	URL   string            `json:"url,omitempty"`
	Local *common.LocalFile `json:"-"`
}

func (a Attachment) IsLocal() bool {
	return a.Local != nil
}

// Request is one press of the compose dialog's submit control.
type Request struct {
	PostID           string       `json:"post_id,omitempty"`
	DraftKey         string       `json:"draft_key,omitempty" validate:"max=128"`
	TeamID           string       `json:"team_id" validate:"required"`
	AuthorID         string       `json:"author_id" validate:"required"`
	Action           Action       `json:"action" validate:"required,oneof=PUBLISH_NOW SCHEDULE SAVE_AS_DRAFT REQUEST_REVIEW RESUBMIT"`
	Content          string       `json:"content" validate:"max=63206"`
	ScheduledAt      *time.Time   `json:"scheduled_at,omitempty"`
	EndAt            *time.Time   `json:"end_at,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty" validate:"max=20"`
	SocialAccountIDs []string     `json:"social_account_ids" validate:"dive,required"`
}

type ResultKind string

const (
	ResultPublished          ResultKind = "published"
	ResultPartiallyPublished ResultKind = "partially_published"
	ResultScheduled          ResultKind = "scheduled"
	ResultDraftSaved         ResultKind = "draft_saved"
	ResultSubmittedForReview ResultKind = "submitted_for_review"
	ResultResubmitted        ResultKind = "resubmitted"
)

// Result is what a transition hands back to the caller.
type Result struct {
	Kind            ResultKind                `json:"kind"`
	Action          Action                    `json:"action"`
	Mode            Mode                      `json:"mode"`
	Post            *dbmysql.Post             `json:"post"`
	Approval        *dbmysql.ApprovalInstance `json:"approval,omitempty"`
	Publish         []common.PublishResult    `json:"publish,omitempty"`
	FailedPlatforms []string                  `json:"failed_platforms,omitempty"`
	Warning         string                    `json:"warning,omitempty"`
}

// PostAPI is the post backend (post.create, post.update, post.publishNow,
// post.getApprovalInstances).
type PostAPI interface {
	Get(ctx context.Context, postID string) (*dbmysql.Post, error)
	Create(ctx context.Context, in common.PostInput) (*dbmysql.Post, error)
	Update(ctx context.Context, postID string, in common.PostInput) (*dbmysql.Post, error)
	PublishNow(ctx context.Context, postID string) ([]common.PublishResult, error)
	ApprovalInstance(ctx context.Context, postID string) (*dbmysql.ApprovalInstance, error)
}

type ApprovalAPI interface {
	SubmitForApproval(ctx context.Context, postID, workflowID string) (*dbmysql.ApprovalInstance, error)
	ResubmitPost(ctx context.Context, postID string, restartFromBeginning bool) (*dbmysql.ApprovalInstance, error)
}

// MediaUploader stores one file for a team and returns its permanent URL.
type MediaUploader interface {
	Upload(ctx context.Context, teamID, uploaderID string, file common.LocalFile) (string, error)
}
