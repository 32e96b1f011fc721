package events

import (
	"context"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"postplanner/internal/common"
	"postplanner/internal/dbmysql"
)

// SnapshotFunc returns a fingerprint of a team's data; any change in it is
// reported as one event.
type SnapshotFunc func(ctx context.Context, teamID string) (string, error)

// PollingWatcher is the fallback used when Redis is disabled.
type PollingWatcher struct {
	snapshot SnapshotFunc
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewPollingWatcher(snapshot SnapshotFunc, interval time.Duration, log *zap.Logger) *PollingWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PollingWatcher{
		snapshot: snapshot,
		interval: interval,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (w *PollingWatcher) Watch(ctx context.Context, teamID string) (<-chan common.ChangeEvent, error) {
	if teamID == "" {
		return nil, common.NewValidationError("team_id", "is required")
	}

	last, err := w.snapshot(ctx, teamID)
	if err != nil {
		return nil, err
	}

	out := make(chan common.ChangeEvent, 1)
	go func() {
		defer close(out)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			current, err := w.snapshot(ctx, teamID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.log.Warn("status poll failed", zap.String("team_id", teamID), zap.Error(err))
				continue
			}
			if current == last {
				continue
			}
			last = current

			event := common.ChangeEvent{
				Type:       common.CollectionStatusEvent,
				TeamID:     teamID,
				OccurredAt: w.now(),
				Data:       map[string]string{"fingerprint": current},
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// PostLister is satisfied by post.PostService.
type PostLister interface {
	ListRange(ctx context.Context, teamID string, from, to time.Time) ([]dbmysql.Post, error)
}

// PostsFingerprint hashes id, status, schedule and update time of the posts
// in [now-back, now+ahead).
func PostsFingerprint(posts PostLister, back, ahead time.Duration) SnapshotFunc {
	return func(ctx context.Context, teamID string) (string, error) {
		now := time.Now().UTC()
		list, err := posts.ListRange(ctx, teamID, now.Add(-back), now.Add(ahead))
		if err != nil {
			return "", err
		}
		return fingerprint(list), nil
	}
}

func fingerprint(posts []dbmysql.Post) string {
	h, _ := blake2b.New256(nil)
	for _, p := range posts {
		h.Write([]byte(p.ID))
		h.Write([]byte{0})
		h.Write([]byte(p.Status))
		h.Write([]byte{0})
		if p.ScheduledAt != nil {
			h.Write([]byte(p.ScheduledAt.UTC().Format(time.RFC3339)))
		}
		h.Write([]byte{0})
		h.Write([]byte(p.UpdatedAt.UTC().Format(time.RFC3339Nano)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
