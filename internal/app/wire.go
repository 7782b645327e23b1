//go:build wireinject
// +build wireinject

package app

import (
	"net/http"

	"github.com/google/wire"

	"github.com/eslsoft/wordladder/internal/adapter/httpapi"
	"github.com/eslsoft/wordladder/internal/adapter/repository"
	"github.com/eslsoft/wordladder/internal/infrastructure/config"
	"github.com/eslsoft/wordladder/internal/infrastructure/database"
	"github.com/eslsoft/wordladder/internal/infrastructure/scheduler"
	"github.com/eslsoft/wordladder/internal/infrastructure/server"
	"github.com/eslsoft/wordladder/internal/usecase"
	"github.com/eslsoft/wordladder/internal/usecase/backup"
)

var configSet = wire.NewSet(
	config.Load,
	provideLearningSettings,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
)

var repositorySet = wire.NewSet(
	repository.NewStateRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewTrainerUsecase,
	backup.NewService,
)

var serviceSet = wire.NewSet(
	httpapi.NewHandler,
	wire.Bind(new(http.Handler), new(*httpapi.Handler)),
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewServer,
	provideSnapshotter,
	scheduler.New,
)

// Initialize builds the application container using Wire. An empty
// configPath searches the default locations.
func Initialize(configPath string) (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
