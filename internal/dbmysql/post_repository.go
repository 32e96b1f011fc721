package dbmysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"postplanner/internal/common"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) ByID(ctx context.Context, id string) (*Post, error) {
	var post Post

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

// Save writes every column of an existing post.
func (r *PostRepository) Save(ctx context.Context, post *Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (r *PostRepository) UpdateSchedule(ctx context.Context, id string, start time.Time, end *time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"scheduled_at": start,
			"end_at":       end,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to reschedule post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("post %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *PostRepository) UpdateStatus(ctx context.Context, id string, status common.PostStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == common.PostStatusPublished {
		updates["published_at"] = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&Post{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update post status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("post %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Post{}, "id = ?", id)

	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("post %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// ListRange returns the team's posts that start in [from, to) or that started
// earlier and are still running at from.
func (r *PostRepository) ListRange(ctx context.Context, teamID string, from, to time.Time) ([]Post, error) {
	var posts []Post

	err := r.db.WithContext(ctx).
		Where("team_id = ? AND scheduled_at IS NOT NULL AND scheduled_at < ? AND (scheduled_at >= ? OR end_at > ?)",
			teamID, to, from, from).
		Order("scheduled_at ASC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (r *PostRepository) CountCreatedSince(ctx context.Context, teamID string, since time.Time) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&Post{}).
		Where("team_id = ? AND created_at >= ?", teamID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

func (r *PostRepository) RecordAttempts(ctx context.Context, attempts []PublishAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&attempts).Error; err != nil {
		return fmt.Errorf("failed to record publish attempts: %w", err)
	}
	return nil
}
