package common

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type PostStatus string

const (
	PostStatusDraft           PostStatus = "DRAFT"
	PostStatusScheduled       PostStatus = "SCHEDULED"
	PostStatusPublished       PostStatus = "PUBLISHED"
	PostStatusFailed          PostStatus = "FAILED"
	PostStatusPendingApproval PostStatus = "PENDING_APPROVAL"
)

func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublished, PostStatusFailed, PostStatusPendingApproval:
		return true
	}
	return false
}

// IsTerminal reports whether the post can no longer be edited or moved.
func (s PostStatus) IsTerminal() bool {
	return s == PostStatusPublished
}

type ApprovalStatus string

const (
	ApprovalPending    ApprovalStatus = "PENDING"
	ApprovalInProgress ApprovalStatus = "IN_PROGRESS"
	ApprovalApproved   ApprovalStatus = "APPROVED"
	ApprovalRejected   ApprovalStatus = "REJECTED"
)

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// PostInput is the payload of post.create and post.update.
type PostInput struct {
	TeamID             string
	AuthorID           string
	Content            string
	ScheduledAt        *time.Time
	EndAt              *time.Time
	Status             PostStatus
	MediaURLs          []string
	SocialAccountIDs   []string
	ApprovalWorkflowID *string
}

// PublishResult is the outcome of publishing one post to one target account.
type PublishResult struct {
	SocialAccountID string `json:"social_account_id"`
	Platform        string `json:"platform"`
	Success         bool   `json:"success"`
	ExternalID      string `json:"external_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

// LocalFile is an attachment that has not been uploaded yet.
type LocalFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Quota is the result of post.getPostQuota.
type Quota struct {
	Used      int64 `json:"used"`
	Limit     int   `json:"limit"`
	Unlimited bool  `json:"unlimited"`
}

func (q Quota) Remaining() int64 {
	if q.Unlimited {
		return -1
	}
	if left := int64(q.Limit) - q.Used; left > 0 {
		return left
	}
	return 0
}

// StringList is stored as a JSON array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}
