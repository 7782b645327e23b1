package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordladder/internal/infrastructure/config"
	"github.com/eslsoft/wordladder/internal/infrastructure/scheduler"
	"github.com/eslsoft/wordladder/internal/infrastructure/server"
	"github.com/eslsoft/wordladder/internal/usecase"
	"github.com/eslsoft/wordladder/internal/usecase/backup"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Trainer   usecase.TrainerUsecase
	Backup    *backup.Service
	Server    *server.Server
	Scheduler *scheduler.Scheduler
}

func provideLearningSettings(cfg *config.Config) usecase.LearningSettings {
	return usecase.LearningSettings{
		Ladder:    cfg.Learning.Ladder,
		DayOffset: cfg.DayOffset(),
		Targets:   usecase.Targets{Repeat: cfg.Learning.RepeatTarget, New: cfg.Learning.NewTarget},
		Seed:      cfg.Learning.Seed,
	}
}

func provideSnapshotter(uc usecase.TrainerUsecase) scheduler.Snapshotter {
	return uc
}
