package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/repository"
)

type fakeStateRepo struct {
	mu    sync.RWMutex
	blob  []byte
	saves int
	err   error
}

func (r *fakeStateRepo) Load(ctx context.Context) (*entity.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.blob == nil {
		return nil, nil
	}
	var st entity.State
	if err := json.Unmarshal(r.blob, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *fakeStateRepo) Save(ctx context.Context, st *entity.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, err := json.Marshal(st)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blob = blob
	r.saves++
	return nil
}

func (r *fakeStateRepo) stored(t *testing.T) *entity.State {
	t.Helper()
	st, err := r.Load(context.Background())
	if err != nil || st == nil {
		t.Fatalf("expected stored state, got %v %v", st, err)
	}
	return st
}

var trainerEpoch = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestTrainer(repo repository.StateRepository, ladder entity.Ladder) *trainerUsecase {
	logger, _ := test.NewNullLogger()
	u := NewTrainerUsecase(repo, LearningSettings{Ladder: ladder}, logger).(*trainerUsecase)
	u.clock = func() time.Time { return trainerEpoch }
	return u
}

func TestTrainerAddWordPersists(t *testing.T) {
	repo := &fakeStateRepo{}
	u := newTestTrainer(repo, instantLadder)
	ctx := context.Background()

	if err := u.AddWord(ctx, "cat", entity.DispositionLearn([]string{"kot"}, nil)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := u.AddWord(ctx, "the", entity.DispositionTrash()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := u.AddWord(ctx, "", entity.DispositionKnown()); !errors.Is(err, entity.ErrInvalidWord) {
		t.Fatalf("expected ErrInvalidWord, got %v", err)
	}
	if repo.saves != 2 {
		t.Fatalf("expected 2 saves, got %d", repo.saves)
	}

	st := repo.stored(t)
	if !st.Words.Has("kot") || !st.Words.Has("the") {
		t.Fatalf("stored words missing: %v", st.Words.Words())
	}
	today := u.Today()
	if day, ok := st.Statistics.Lookup(today); !ok || day.NewWords != 1 {
		t.Fatalf("expected 1 new word today, got %+v", day)
	}

	report, err := u.Report(ctx)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.CountsByState[entity.LevelBucket(0)] != 2 || report.CountsByState[entity.BucketTrash] != 1 {
		t.Fatalf("unexpected counts %+v", report.CountsByState)
	}
	if report.DueNew != 2 || report.DueRepeat != 0 || report.Words != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestTrainerReconcilesChangedLadder(t *testing.T) {
	repo := &fakeStateRepo{}
	long := entity.Ladder{entity.ShowRung(0, 1), entity.GuessRung(0, 1), entity.GuessRung(3, 2)}
	first := newTestTrainer(repo, long)
	ctx := context.Background()
	if err := first.AddWord(ctx, "cat", entity.DispositionLearn([]string{"kot"}, nil)); err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := first.RegisterAttempt(ctx, "cat", "kot", true); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	second := newTestTrainer(repo, instantLadder)
	records, err := second.Records(ctx, "cat")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if records[0].State != entity.StateLearned {
		t.Fatalf("record past the shorter ladder should be learned, got %+v", records[0])
	}
	ladder, _ := second.Ladder(ctx)
	if len(ladder) != 2 {
		t.Fatalf("configured ladder should win, got %v", ladder)
	}
}

func TestTrainerLoadError(t *testing.T) {
	repo := &fakeStateRepo{err: errors.New("disk on fire")}
	u := newTestTrainer(repo, instantLadder)
	if _, err := u.Due(context.Background()); err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestTrainerSessionAndSnapshot(t *testing.T) {
	repo := &fakeStateRepo{}
	u := newTestTrainer(repo, instantLadder)
	ctx := context.Background()
	if err := u.AddWord(ctx, "cat", entity.DispositionLearn([]string{"kot"}, nil)); err != nil {
		t.Fatalf("add: %v", err)
	}

	s, err := u.StartSession(ctx)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := s.Choose(Targets{New: 2}); err != nil {
		t.Fatalf("choose: %v", err)
	}
	p, _ := s.Prompt()
	if _, err := s.Check([]string{map[string]string{"cat": "kot", "kot": "cat"}[p.Word]}, nil); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := u.AddWorkingTime(ctx, 90*time.Second); err != nil {
		t.Fatalf("working time: %v", err)
	}
	if err := u.Snapshot(ctx); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	day, _ := repo.stored(t).Statistics.Lookup(u.Today())
	if day.Attempts.Correct != 1 || day.WorkingSeconds != 90 {
		t.Fatalf("unexpected day statistics %+v", day)
	}
	if day.CountsByState[entity.LevelBucket(1)] != 1 || day.CountsByState[entity.LevelBucket(0)] != 1 {
		t.Fatalf("unexpected snapshot counts %+v", day.CountsByState)
	}
}

func TestTrainerSnapshotKeepsWritesFromAnotherTrainer(t *testing.T) {
	repo := &fakeStateRepo{}
	server := newTestTrainer(repo, instantLadder)
	cli := newTestTrainer(repo, instantLadder)
	ctx := context.Background()

	if _, err := server.Due(ctx); err != nil {
		t.Fatalf("warm up: %v", err)
	}
	if err := cli.AddWord(ctx, "cat", entity.DispositionLearn([]string{"kot"}, nil)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := server.Snapshot(ctx); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	st := repo.stored(t)
	if !st.Words.Has("cat") || !st.Words.Has("kot") {
		t.Fatalf("snapshot dropped words written elsewhere: %v", st.Words.Words())
	}
	day, _ := st.Statistics.Lookup(server.Today())
	if day.NewWords != 1 || day.CountsByState[entity.LevelBucket(0)] != 2 {
		t.Fatalf("unexpected day statistics %+v", day)
	}
	if _, err := server.Records(ctx, "kot"); err != nil {
		t.Fatalf("server should see the new word: %v", err)
	}
}

func TestTrainerSessionKeepsItsState(t *testing.T) {
	repo := &fakeStateRepo{}
	u := newTestTrainer(repo, instantLadder)
	ctx := context.Background()
	if err := u.AddWord(ctx, "cat", entity.DispositionLearn([]string{"kot"}, nil)); err != nil {
		t.Fatalf("add: %v", err)
	}
	s, err := u.StartSession(ctx)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := s.Choose(Targets{New: 2}); err != nil {
		t.Fatalf("choose: %v", err)
	}
	p, _ := s.Prompt()
	if _, err := s.Check([]string{map[string]string{"cat": "kot", "kot": "cat"}[p.Word]}, nil); err != nil {
		t.Fatalf("check: %v", err)
	}

	// Unsaved session progress must survive later reads.
	records, err := u.Records(ctx, p.Word)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if records[0].Stats.Correct != 1 {
		t.Fatalf("session progress lost, got %+v", records[0])
	}
}

func TestTrainerListWords(t *testing.T) {
	u := newTestTrainer(&fakeStateRepo{}, instantLadder)
	ctx := context.Background()
	for word, d := range map[string]entity.Disposition{
		"apple":  entity.DispositionLearn([]string{"yabloko"}, nil),
		"banana": entity.DispositionLearn(nil, []string{"banan"}),
		"the":    entity.DispositionTrash(),
	} {
		if err := u.AddWord(ctx, word, d); err != nil {
			t.Fatalf("add %q: %v", word, err)
		}
	}

	rows, total, err := u.ListWords(ctx, &repository.ListWordsQuery{
		FilterOrder: repository.FilterOrder{Filter: "state == 'to_learn'", OrderBy: "word desc"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || rows[0].Word != "yabloko" || rows[1].Word != "apple" {
		t.Fatalf("unexpected listing %d %+v", total, rows)
	}
	if rows[1].Level != 0 || !rows[1].Due {
		t.Fatalf("unexpected summary %+v", rows[1])
	}

	rows, total, err = u.ListWords(ctx, &repository.ListWordsQuery{Pagination: repository.Pagination{PageNo: 2, PageSize: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(rows) != 2 || rows[0].Word != "banana" || rows[1].Word != "the" {
		t.Fatalf("unexpected page %d %+v", total, rows)
	}

	rows, total, err = u.ListWords(ctx, &repository.ListWordsQuery{Pagination: repository.Pagination{PageNo: math.MaxInt32, PageSize: 1000}})
	if err != nil || total != 5 || len(rows) != 0 {
		t.Fatalf("page past the end should be empty, got %d %+v %v", total, rows, err)
	}

	if _, _, err := u.ListWords(ctx, &repository.ListWordsQuery{FilterOrder: repository.FilterOrder{Filter: "colour == 'red'"}}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected invalid query error, got %v", err)
	}
}
