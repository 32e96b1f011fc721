// Package di assembles the planner process. wire.go declares the injector;
// wire_gen.go is its generated body.
package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"postplanner/internal/api"
	"postplanner/internal/approval"
	"postplanner/internal/common"
	"postplanner/internal/config"
	"postplanner/internal/dbmysql"
	"postplanner/internal/events"
	"postplanner/internal/logging"
	"postplanner/internal/media"
	"postplanner/internal/post"
	"postplanner/internal/reschedule"
	"postplanner/internal/submission"
)

const (
	hubWorkers      = 4
	streamHeartbeat = 25 * time.Second
	// polling fingerprints cover the visible month on either side of today
	pollWindowBack  = 45 * 24 * time.Hour
	pollWindowAhead = 75 * 24 * time.Hour
)

// Application is everything `planner serve` runs.
type Application struct {
	Config    *config.Config
	Log       *zap.Logger
	DB        *gorm.DB
	Router    *mux.Router
	GRPC      *grpc.Server
	Hub       *events.Hub
	Approvals approval.ApprovalService
}

// Infra is the subset used by one-shot commands such as `planner migrate`.
type Infra struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
}

func ProvideConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	log = log.With(zap.String("env", cfg.Server.Environment))
	return log, func() { _ = log.Sync() }, nil
}

func ProvideDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := dbmysql.NewMySQL(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

func ProvideJWTManager(cfg *config.Config) *common.JWTManager {
	return common.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
}

func ProvideHub(log *zap.Logger) (*events.Hub, func()) {
	hub := events.NewHub(hubWorkers, log)
	return hub, hub.Shutdown
}

func ProvideNotifier(hub *events.Hub) common.Subject {
	return hub
}

// ProvideWatcher prefers Redis pub/sub. When Redis is disabled or
// unreachable, clients fall back to fingerprint polling of their team's posts.
func ProvideWatcher(ctx context.Context, cfg *config.Config, hub *events.Hub, posts post.PostService, log *zap.Logger) (events.Watcher, func(), error) {
	polling := func() events.Watcher {
		snapshot := events.PostsFingerprint(posts, pollWindowBack, pollWindowAhead)
		return events.NewPollingWatcher(snapshot, cfg.Scheduling.StatusPollInterval, log)
	}

	if !cfg.Redis.Enabled {
		log.Info("redis disabled, change stream uses polling",
			zap.Duration("interval", cfg.Scheduling.StatusPollInterval))
		return polling(), func() {}, nil
	}

	client, err := events.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, change stream falls back to polling",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err))
		return polling(), func() {}, nil
	}

	observer := events.NewRedisObserver(client)
	hub.Subscribe(observer)
	cleanup := func() {
		hub.Unsubscribe(observer)
		_ = client.Close()
	}
	return events.NewRedisWatcher(client, log), cleanup, nil
}

func ProvideStreamHandler(watcher events.Watcher, log *zap.Logger) http.Handler {
	return events.NewStreamHandler(watcher, streamHeartbeat, log)
}

func ProvideBlobStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (media.BlobStore, func(), error) {
	return media.OpenStore(ctx, cfg, log)
}

func ProvideMediaService(store media.BlobStore, refs *dbmysql.MediaRefRepository, cfg *config.Config, log *zap.Logger) media.MediaService {
	return media.NewMediaService(store, refs, cfg, log)
}

func ProvidePostService(
	repo *dbmysql.PostRepository,
	accounts *dbmysql.SocialAccountRepository,
	approvals *dbmysql.ApprovalRepository,
	notifier common.Subject,
	cfg *config.Config,
	log *zap.Logger,
) post.PostService {
	return post.NewPostService(repo, accounts, approvals, notifier, cfg, log, post.NewLogPublisher(log))
}

func ProvideApprovalService(
	repo *dbmysql.ApprovalRepository,
	posts *dbmysql.PostRepository,
	notifier common.Subject,
	cfg *config.Config,
	log *zap.Logger,
) approval.ApprovalService {
	return approval.NewApprovalService(repo, posts, notifier, cfg, log)
}

func ProvideMachine(posts post.PostService, approvals approval.ApprovalService, library media.MediaService, cfg *config.Config, log *zap.Logger) *submission.Machine {
	return submission.NewMachine(posts, approvals, library, cfg.Scheduling, log)
}

func ProvideSessions(posts post.PostService, log *zap.Logger) *reschedule.Sessions {
	return reschedule.NewSessions(posts, log)
}

func ProvideHandler(
	posts post.PostService,
	machine *submission.Machine,
	approvals approval.ApprovalService,
	library media.MediaService,
	sessions *reschedule.Sessions,
	stream http.Handler,
	cfg *config.Config,
	log *zap.Logger,
) *api.Handler {
	return api.NewHandler(posts, machine, approvals, library, sessions, stream, cfg, log)
}

func ProvideGRPCHandler(posts post.PostService, cfg *config.Config, log *zap.Logger) *api.GRPCHandler {
	return api.NewGRPCHandler(posts, cfg, log)
}
