package post

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"postplanner/internal/dbmysql"
)

// Publisher pushes a post to one social platform.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, post *dbmysql.Post, account dbmysql.SocialAccount) (externalID string, err error)
}

// LogPublisher accepts every post without contacting a platform. It is the
// fallback for platforms that have no registered publisher.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Platform() string { return "*" }

func (p *LogPublisher) Publish(ctx context.Context, post *dbmysql.Post, account dbmysql.SocialAccount) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := "dry-" + uuid.NewString()
	p.log.Info("publish (dry run)",
		zap.String("post_id", post.ID),
		zap.String("platform", account.Platform),
		zap.String("account", account.Handle),
		zap.String("external_id", id))
	return id, nil
}
