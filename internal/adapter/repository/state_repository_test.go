package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/infrastructure/database"
)

func requireSQLite(t *testing.T) {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		t.Skipf("sqlite driver not available: %v", err)
		return
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("skipping sqlite-dependent tests: %v", err)
	}
}

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	requireSQLite(t)
	db, err := sqlx.Connect("sqlite3", filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func TestStateRepositoryEmptyLoad(t *testing.T) {
	repo := NewStateRepository(openTestDB(t))
	st, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st != nil {
		t.Fatalf("expected nil state from empty database, got %+v", st)
	}
}

func TestStateRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepository(openTestDB(t))

	st := entity.NewState(entity.DefaultLadder())
	day := st.Statistics.Day(20100)
	if err := st.Words.Add("cat", entity.DispositionLearn([]string{"kot"}, []string{"koshka"}), 20100, day); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.Words.Add("the", entity.DispositionKnown(), 20100, day); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.Words.RegisterAttempt("cat", "kot", false, 20100, st.Ladder, day); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	day.CountsByState = entity.StateCounts{entity.LevelBucket(0): 2, entity.BucketLearned: 2, entity.BucketKnown: 1}

	if err := repo.Save(ctx, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, st) {
		t.Fatalf("state mismatch:\nwant %+v\ngot  %+v", st, got)
	}

	// A second save replaces rather than appends.
	if err := st.Words.Remove("the"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.Save(ctx, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = repo.Load(ctx)
	if got.Words.Has("the") || got.Words.Len() != 3 {
		t.Fatalf("unexpected words after resave: %v", got.Words.Words())
	}
}

func TestStateRepositoryChunkedInsert(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepository(openTestDB(t))
	st := entity.NewState(entity.DefaultLadder())
	for i := 0; i < insertChunk+7; i++ {
		if err := st.Words.Add(fmt.Sprintf("w%04d", i), entity.DispositionTrash(), 0, nil); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := repo.Save(ctx, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Words.Len() != insertChunk+7 {
		t.Fatalf("expected %d words, got %d", insertChunk+7, got.Words.Len())
	}
}
