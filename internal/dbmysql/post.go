package dbmysql

import (
	"time"

	"postplanner/internal/common"
)

type Post struct {
	ID                 string            `gorm:"primaryKey;size:36" json:"id"`
	TeamID             string            `gorm:"not null;index:idx_posts_team_schedule,priority:1;size:36" json:"team_id"`
	AuthorID           string            `gorm:"size:36" json:"author_id"`
	Content            string            `gorm:"type:text" json:"content"`
	ScheduledAt        *time.Time        `gorm:"index:idx_posts_team_schedule,priority:2" json:"scheduled_at"`
	EndAt              *time.Time        `json:"end_at,omitempty"`
	Status             common.PostStatus `gorm:"not null;size:32;default:'DRAFT'" json:"status"`
	MediaURLs          common.StringList `gorm:"type:json" json:"media_urls"`
	SocialAccountIDs   common.StringList `gorm:"type:json" json:"social_account_ids"`
	ApprovalWorkflowID *string           `gorm:"size:64" json:"approval_workflow_id,omitempty"`
	PublishedAt        *time.Time        `json:"published_at,omitempty"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// PublishAttempt records one publish-now call against one target account.
type PublishAttempt struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID          string    `gorm:"not null;index;size:36" json:"post_id"`
	SocialAccountID string    `gorm:"not null;size:36" json:"social_account_id"`
	Platform        string    `gorm:"size:32" json:"platform"`
	Success         bool      `json:"success"`
	ExternalID      string    `gorm:"size:255" json:"external_id,omitempty"`
	Error           string    `gorm:"type:text" json:"error,omitempty"`
	AttemptedAt     time.Time `gorm:"autoCreateTime" json:"attempted_at"`
}

func (PublishAttempt) TableName() string {
	return "publish_attempts"
}
