package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"postplanner/internal/common"
	"postplanner/internal/config"
)

const channelPrefix = "planner:team:"

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ConnectRedis pings before handing the client out so startup fails fast.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := NewRedisClient(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func ChannelFor(teamID string) string {
	return channelPrefix + teamID
}

// RedisObserver publishes every hub event on the team channel.
type RedisObserver struct {
	client  redis.UniversalClient
	timeout time.Duration
}

func NewRedisObserver(client redis.UniversalClient) *RedisObserver {
	return &RedisObserver{client: client, timeout: 3 * time.Second}
}

func (o *RedisObserver) Name() string {
	return "redis_publisher"
}

func (o *RedisObserver) Update(event common.ChangeEvent) error {
	if event.TeamID == "" {
		return fmt.Errorf("event %s has no team", event.Type)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	if err := o.client.Publish(ctx, ChannelFor(event.TeamID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Watcher delivers a team's events until ctx is cancelled, then closes the channel.
type Watcher interface {
	Watch(ctx context.Context, teamID string) (<-chan common.ChangeEvent, error)
}

type RedisWatcher struct {
	client redis.UniversalClient
	log    *zap.Logger
}

func NewRedisWatcher(client redis.UniversalClient, log *zap.Logger) *RedisWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisWatcher{client: client, log: log}
}

func (w *RedisWatcher) Watch(ctx context.Context, teamID string) (<-chan common.ChangeEvent, error) {
	if teamID == "" {
		return nil, common.NewValidationError("team_id", "is required")
	}

	sub := w.client.Subscribe(ctx, ChannelFor(teamID))
	// Receive blocks until the subscription is confirmed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to team %s: %w", teamID, err)
	}

	out := make(chan common.ChangeEvent, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event common.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					w.log.Warn("dropping malformed event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
