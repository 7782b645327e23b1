package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/eslsoft/wordladder/internal/infrastructure/config"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewConnection opens the configured database and makes sure the schema
// exists.
func NewConnection(cfg *config.Config, logger *logrus.Logger) (*sqlx.DB, func(), error) {
	driver := cfg.DatabaseDriver()
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case "sqlite3", "sqlite":
		db, err = sqlx.Open(driver, cfg.Database.DSN)
		if err == nil {
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)
		}
	case "postgres":
		db, err = sqlx.Open("postgres", cfg.Database.DSN)
	case "pgx":
		db, err = openPgx(cfg, logger)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s db: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, func() {
		_ = db.Close()
	}, nil
}

func openPgx(cfg *config.Config, logger *logrus.Logger) (*sqlx.DB, error) {
	connCfg, err := pgx.ParseConfig(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	if cfg.Database.LogSQL && logger != nil {
		entry := logger.WithField("component", "pgx")
		connCfg.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
				entry.WithFields(logrus.Fields(data)).WithField("pgx_level", lvl.String()).Debug(msg)
			}),
			LogLevel: tracelog.LogLevelTrace,
		}
	}
	return sqlx.NewDb(stdlib.OpenDB(*connCfg), "pgx"), nil
}
