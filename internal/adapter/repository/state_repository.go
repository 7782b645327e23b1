package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/infrastructure/database/types"
	"github.com/eslsoft/wordladder/internal/repository"
)

// insertChunk keeps batched inserts under SQLite's bound-parameter limit.
const insertChunk = 500

type StateRepository struct {
	db *sqlx.DB
}

// NewStateRepository constructs a sqlx-backed repository.
func NewStateRepository(db *sqlx.DB) repository.StateRepository {
	return &StateRepository{db: db}
}

type rungRow struct {
	Position      int  `db:"position"`
	WaitDays      int  `db:"wait_days"`
	RequiredCount int  `db:"required_count"`
	RevealPrompt  bool `db:"reveal_prompt"`
}

type wordRow struct {
	Word    string        `db:"word"`
	Records types.Records `db:"records"`
}

type dayRow struct {
	Day   int64          `db:"day"`
	Stats types.DayStats `db:"stats"`
}

func (r *StateRepository) Load(ctx context.Context) (*entity.State, error) {
	var rungs []rungRow
	if err := r.db.SelectContext(ctx, &rungs, "SELECT position, wait_days, required_count, reveal_prompt FROM ladder_rungs ORDER BY position"); err != nil {
		return nil, fmt.Errorf("select ladder: %w", err)
	}
	var words []wordRow
	if err := r.db.SelectContext(ctx, &words, "SELECT word, records FROM words ORDER BY word"); err != nil {
		return nil, fmt.Errorf("select words: %w", err)
	}
	var days []dayRow
	if err := r.db.SelectContext(ctx, &days, "SELECT day, stats FROM day_stats ORDER BY day"); err != nil {
		return nil, fmt.Errorf("select day stats: %w", err)
	}
	if len(rungs) == 0 && len(words) == 0 && len(days) == 0 {
		return nil, nil
	}

	st := entity.NewState(lo.Map(rungs, func(row rungRow, _ int) entity.Rung {
		return entity.Rung{
			WaitDays:      uint8(row.WaitDays),
			RequiredCount: uint8(row.RequiredCount),
			RevealPrompt:  row.RevealPrompt,
		}
	}))
	for _, row := range words {
		st.Words.Restore(row.Word, row.Records)
	}
	for _, row := range days {
		*st.Statistics.Day(entity.Day(row.Day)) = entity.DayStatistics(row.Stats)
	}
	return st, nil
}

// Save replaces everything stored with state in one transaction.
func (r *StateRepository) Save(ctx context.Context, state *entity.State) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"ladder_rungs", "words", "day_stats"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	rungs := lo.Map(state.Ladder, func(rung entity.Rung, i int) rungRow {
		return rungRow{Position: i, WaitDays: int(rung.WaitDays), RequiredCount: int(rung.RequiredCount), RevealPrompt: rung.RevealPrompt}
	})
	if err := insertRows(ctx, tx, "INSERT INTO ladder_rungs (position, wait_days, required_count, reveal_prompt) VALUES (:position, :wait_days, :required_count, :reveal_prompt)", rungs); err != nil {
		return fmt.Errorf("insert ladder: %w", err)
	}

	words := lo.Map(state.Words.Words(), func(word string, _ int) wordRow {
		records, _ := state.Words.Records(word)
		return wordRow{Word: word, Records: records}
	})
	if err := insertRows(ctx, tx, "INSERT INTO words (word, records) VALUES (:word, :records)", words); err != nil {
		return fmt.Errorf("insert words: %w", err)
	}

	days := lo.Map(state.Statistics.Days(), func(d entity.Day, _ int) dayRow {
		stats, _ := state.Statistics.Lookup(d)
		return dayRow{Day: int64(d), Stats: types.DayStats(stats)}
	})
	if err := insertRows(ctx, tx, "INSERT INTO day_stats (day, stats) VALUES (:day, :stats)", days); err != nil {
		return fmt.Errorf("insert day stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	commit = true
	return nil
}

func insertRows[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	for _, chunk := range lo.Chunk(rows, insertChunk) {
		if _, err := tx.NamedExecContext(ctx, query, chunk); err != nil {
			return err
		}
	}
	return nil
}
