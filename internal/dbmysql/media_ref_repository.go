package dbmysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"postplanner/internal/common"
)

type MediaRefRepository struct {
	db *gorm.DB
}

func NewMediaRefRepository(db *gorm.DB) *MediaRefRepository {
	return &MediaRefRepository{db: db}
}

func (r *MediaRefRepository) Create(ctx context.Context, ref *MediaRef) error {
	if err := r.db.WithContext(ctx).Create(ref).Error; err != nil {
		return fmt.Errorf("failed to create media ref: %w", err)
	}
	return nil
}

func (r *MediaRefRepository) ByDigest(ctx context.Context, teamID, digest string) (*MediaRef, error) {
	var ref MediaRef

	err := r.db.WithContext(ctx).
		Where("team_id = ? AND digest = ?", teamID, digest).
		First(&ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get media ref: %w", err)
	}

	return &ref, nil
}

func (r *MediaRefRepository) ByTeam(ctx context.Context, teamID string, limit, offset int) ([]MediaRef, error) {
	var refs []MediaRef

	query := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}

	return refs, nil
}
