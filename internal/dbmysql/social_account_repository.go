package dbmysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type SocialAccountRepository struct {
	db *gorm.DB
}

func NewSocialAccountRepository(db *gorm.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

func (r *SocialAccountRepository) ByTeam(ctx context.Context, teamID string) ([]SocialAccount, error) {
	var accounts []SocialAccount

	err := r.db.WithContext(ctx).
		Where("team_id = ? AND active = ?", teamID, true).
		Order("platform ASC, name ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get social accounts: %w", err)
	}

	return accounts, nil
}

func (r *SocialAccountRepository) ByIDs(ctx context.Context, teamID string, ids []string) ([]SocialAccount, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var accounts []SocialAccount
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND id IN ?", teamID, ids).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get social accounts: %w", err)
	}

	return accounts, nil
}
