package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postplanner/internal/common"
	"postplanner/internal/config"
)

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	return mr, client
}

func receive(t *testing.T, ch <-chan common.ChangeEvent) common.ChangeEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed early")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return common.ChangeEvent{}
}

func TestRedisObserver_PublishesToWatcher(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := NewRedisWatcher(client, nil).Watch(ctx, "team-1")
	require.NoError(t, err)

	observer := NewRedisObserver(client)
	at := time.Date(2024, 3, 6, 12, 10, 0, 0, time.UTC)
	sent := common.ChangeEvent{
		Type:       common.PostRescheduledEvent,
		TeamID:     "team-1",
		PostID:     "p1",
		Status:     "SCHEDULED",
		OccurredAt: at,
		Data:       map[string]string{"start": at.Format(time.RFC3339)},
	}

	require.NoError(t, observer.Update(common.ChangeEvent{Type: common.PostCreatedEvent, TeamID: "team-2"}))
	require.NoError(t, observer.Update(sent))

	got := receive(t, events)
	assert.Equal(t, sent, got)
}

func TestRedisWatcher_SkipsMalformedPayloads(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := NewRedisWatcher(client, nil).Watch(ctx, "team-1")
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, ChannelFor("team-1"), "not json").Err())
	require.NoError(t, NewRedisObserver(client).Update(common.ChangeEvent{Type: common.PostDeletedEvent, TeamID: "team-1", PostID: "p9"}))

	got := receive(t, events)
	assert.Equal(t, "p9", got.PostID)
}

func TestRedisWatcher_ClosesOnCancel(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := NewRedisWatcher(client, nil).Watch(ctx, "team-1")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not close its channel")
	}
}

func TestRedisWatcher_RequiresTeam(t *testing.T) {
	_, err := NewRedisWatcher(nil, nil).Watch(context.Background(), "")
	assert.True(t, common.IsValidation(err))
}

func TestRedisObserver_RejectsEventWithoutTeam(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	err := NewRedisObserver(client).Update(common.ChangeEvent{Type: common.PostCreatedEvent})
	assert.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := ConnectRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = ConnectRedis(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
