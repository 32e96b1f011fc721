//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"postplanner/internal/api"
	"postplanner/internal/dbmysql"
)

var infraSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideDatabase,
)

var repositorySet = wire.NewSet(
	dbmysql.NewPostRepository,
	dbmysql.NewApprovalRepository,
	dbmysql.NewSocialAccountRepository,
	dbmysql.NewMediaRefRepository,
)

var serviceSet = wire.NewSet(
	ProvideHub,
	ProvideNotifier,
	ProvideWatcher,
	ProvideStreamHandler,
	ProvideBlobStore,
	ProvideMediaService,
	ProvidePostService,
	ProvideApprovalService,
	ProvideMachine,
	ProvideSessions,
)

var transportSet = wire.NewSet(
	ProvideJWTManager,
	ProvideHandler,
	api.NewRouter,
	ProvideGRPCHandler,
	api.NewGRPCServer,
)

func InitializeApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		infraSet,
		repositorySet,
		serviceSet,
		transportSet,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}

func InitializeInfra() (*Infra, func(), error) {
	wire.Build(
		infraSet,
		wire.Struct(new(Infra), "*"),
	)
	return nil, nil, nil
}
