package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Table names shared with the state repository.
const (
	TableLadderRungs = "ladder_rungs"
	TableWords       = "words"
	TableDayStats    = "day_stats"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ladder_rungs (
		position       INTEGER PRIMARY KEY,
		wait_days      INTEGER NOT NULL,
		required_count INTEGER NOT NULL,
		reveal_prompt  BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS words (
		word    TEXT PRIMARY KEY,
		records TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS day_stats (
		day   BIGINT PRIMARY KEY,
		stats TEXT NOT NULL
	)`,
}

// EnsureSchema creates the tables when they are missing. The DDL is portable
// between SQLite and PostgreSQL.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
