package dbmysql

import (
	"time"

	"postplanner/internal/common"
)

type ApprovalWorkflow struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	TeamID    string    `gorm:"index;size:36" json:"team_id"`
	Name      string    `gorm:"size:255" json:"name"`
	StepCount int       `gorm:"not null;default:1" json:"step_count"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ApprovalWorkflow) TableName() string {
	return "approval_workflows"
}

type ApprovalInstance struct {
	ID               string                `gorm:"primaryKey;size:36" json:"id"`
	PostID           string                `gorm:"not null;uniqueIndex;size:36" json:"post_id"`
	WorkflowID       string                `gorm:"not null;size:64" json:"workflow_id"`
	Status           common.ApprovalStatus `gorm:"not null;size:32" json:"status"`
	CurrentStepOrder int                   `gorm:"not null;default:1" json:"current_step_order"`
	CreatedAt        time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time             `gorm:"autoUpdateTime" json:"updated_at"`

	Workflow    ApprovalWorkflow     `gorm:"foreignKey:WorkflowID" json:"workflow"`
	Assignments []ApprovalAssignment `gorm:"foreignKey:InstanceID" json:"assignments"`
}

func (ApprovalInstance) TableName() string {
	return "approval_instances"
}

type ApprovalAssignment struct {
	ID         uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	InstanceID string          `gorm:"not null;index;size:36" json:"instance_id"`
	StepOrder  int             `gorm:"not null" json:"step_order"`
	ReviewerID string          `gorm:"size:36" json:"reviewer_id"`
	Decision   common.Decision `gorm:"size:16" json:"decision"`
	Comment    string          `gorm:"type:text" json:"comment,omitempty"`
	DecidedAt  time.Time       `json:"decided_at"`
}

func (ApprovalAssignment) TableName() string {
	return "approval_assignments"
}
