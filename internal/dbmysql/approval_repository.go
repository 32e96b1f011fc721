package dbmysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"postplanner/internal/common"
)

type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) InstanceByPostID(ctx context.Context, postID string) (*ApprovalInstance, error) {
	var instance ApprovalInstance

	err := r.db.WithContext(ctx).
		Preload("Workflow").
		Preload("Assignments").
		Where("post_id = ?", postID).
		First(&instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("approval instance for post %s: %w", postID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get approval instance: %w", err)
	}

	return &instance, nil
}

// SaveInstance inserts the instance or overwrites the row for the same post.
func (r *ApprovalRepository) SaveInstance(ctx context.Context, instance *ApprovalInstance) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"workflow_id", "status", "current_step_order", "updated_at"}),
		}).
		Create(instance).Error
	if err != nil {
		return fmt.Errorf("failed to save approval instance: %w", err)
	}
	return nil
}

func (r *ApprovalRepository) AddAssignment(ctx context.Context, assignment *ApprovalAssignment) error {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to record approval decision: %w", err)
	}
	return nil
}

func (r *ApprovalRepository) WorkflowByID(ctx context.Context, id string) (*ApprovalWorkflow, error) {
	var workflow ApprovalWorkflow

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&workflow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("approval workflow %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get approval workflow: %w", err)
	}

	return &workflow, nil
}

// EnsureWorkflow creates the workflow when no row with its id exists yet.
func (r *ApprovalRepository) EnsureWorkflow(ctx context.Context, workflow *ApprovalWorkflow) error {
	err := r.db.WithContext(ctx).
		Where("id = ?", workflow.ID).
		FirstOrCreate(workflow).Error
	if err != nil {
		return fmt.Errorf("failed to ensure approval workflow: %w", err)
	}
	return nil
}
