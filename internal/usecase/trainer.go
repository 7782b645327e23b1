package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/repository"
	"github.com/eslsoft/wordladder/pkg/textscan"
)

// LearningSettings are the scheduling knobs read from configuration.
type LearningSettings struct {
	Ladder entity.Ladder
	// DayOffset is added to the clock before it is cut into days.
	DayOffset time.Duration
	Targets   Targets
	// Seed makes session shuffling reproducible when non-zero.
	Seed uint64
}

// TrainerUsecase is the application surface over the persisted state. Every
// mutation is saved before it returns.
type TrainerUsecase interface {
	Today() entity.Day
	Ladder(ctx context.Context) (entity.Ladder, error)

	AddWord(ctx context.Context, word string, d entity.Disposition) error
	RemoveWord(ctx context.Context, word string) error
	RenameWord(ctx context.Context, word, newWord string) error
	RenameTranslation(ctx context.Context, word, translation, newTranslation string) error
	DeleteRecord(ctx context.Context, word, translation string) error
	EditRecord(ctx context.Context, word, translation string, edit entity.RecordEdit) error
	RegisterAttempt(ctx context.Context, word, translation string, correct bool) error

	Records(ctx context.Context, word string) ([]entity.Record, error)
	Plan(ctx context.Context, word string) (WordPlan, error)
	Due(ctx context.Context) (Queues, error)
	Report(ctx context.Context) (Report, error)
	ListWords(ctx context.Context, query *repository.ListWordsQuery) ([]WordSummary, int64, error)
	History(ctx context.Context) (entity.Statistics, error)

	Ingest(ctx context.Context, res textscan.Result) (IngestReport, error)
	ImportTable(ctx context.Context, rows []TableRow) (TableImportReport, error)

	StartSession(ctx context.Context) (*Session, error)
	AddWorkingTime(ctx context.Context, d time.Duration) error
	Snapshot(ctx context.Context) error
	Persist(ctx context.Context) error
}

// NewTrainerUsecase wires the repository with the learning settings.
func NewTrainerUsecase(repo repository.StateRepository, settings LearningSettings, logger *logrus.Logger) TrainerUsecase {
	if len(settings.Ladder) == 0 {
		settings.Ladder = entity.DefaultLadder()
	}
	if settings.Targets == (Targets{}) {
		settings.Targets = DefaultTargets
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &trainerUsecase{
		repo:     repo,
		settings: settings,
		log:      logger.WithField("component", "trainer"),
		clock:    time.Now,
	}
}

type trainerUsecase struct {
	repo     repository.StateRepository
	settings LearningSettings
	log      logrus.FieldLogger
	clock    func() time.Time

	mu    sync.Mutex
	state *entity.State
	// pinned is set once a session holds the state.
	pinned       bool
	ladderWarned bool
}

func (u *trainerUsecase) Today() entity.Day {
	return entity.DayOf(u.clock(), u.settings.DayOffset)
}

// loadLocked reads the stored state on every call so that writes made by
// other processes are picked up. Once a session is open the in-memory state
// it works on is kept instead. A stored ladder that differs from the
// configured one is replaced and the records are fitted to the new ladder.
func (u *trainerUsecase) loadLocked(ctx context.Context) (*entity.State, error) {
	if u.pinned {
		return u.state, nil
	}
	st, err := u.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if st == nil {
		st = entity.NewState(u.settings.Ladder)
	}
	if !slices.Equal(st.Ladder, u.settings.Ladder) {
		st.Ladder = u.settings.Ladder.Clone()
		n := st.Words.Reconcile(st.Ladder)
		entry := u.log.WithField("adjusted", n)
		if u.ladderWarned {
			entry.Debug("ladder changed, records reconciled")
		} else {
			entry.Warn("ladder changed, records reconciled")
			u.ladderWarned = true
		}
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("saved state: %w", err)
	}
	u.state = st
	return st, nil
}

// mutate runs fn on the state and saves it when fn succeeds.
func (u *trainerUsecase) mutate(ctx context.Context, fn func(st *entity.State, today entity.Day) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	st, err := u.loadLocked(ctx)
	if err != nil {
		return err
	}
	if err := fn(st, u.Today()); err != nil {
		return err
	}
	return u.repo.Save(ctx, st)
}

// read runs fn on the state without saving.
func (u *trainerUsecase) read(ctx context.Context, fn func(st *entity.State, today entity.Day) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	st, err := u.loadLocked(ctx)
	if err != nil {
		return err
	}
	return fn(st, u.Today())
}

func (u *trainerUsecase) Ladder(ctx context.Context) (entity.Ladder, error) {
	var out entity.Ladder
	err := u.read(ctx, func(st *entity.State, _ entity.Day) error {
		out = st.Ladder.Clone()
		return nil
	})
	return out, err
}

func (u *trainerUsecase) AddWord(ctx context.Context, word string, d entity.Disposition) error {
	return u.mutate(ctx, func(st *entity.State, today entity.Day) error {
		return st.Words.Add(word, d, today, st.Statistics.Day(today))
	})
}

func (u *trainerUsecase) RemoveWord(ctx context.Context, word string) error {
	return u.mutate(ctx, func(st *entity.State, _ entity.Day) error {
		return st.Words.Remove(word)
	})
}

func (u *trainerUsecase) RenameWord(ctx context.Context, word, newWord string) error {
	return u.mutate(ctx, func(st *entity.State, _ entity.Day) error {
		return st.Words.Rename(word, newWord)
	})
}

func (u *trainerUsecase) RenameTranslation(ctx context.Context, word, translation, newTranslation string) error {
	return u.mutate(ctx, func(st *entity.State, _ entity.Day) error {
		return st.Words.RenameTranslation(word, translation, newTranslation)
	})
}

func (u *trainerUsecase) DeleteRecord(ctx context.Context, word, translation string) error {
	return u.mutate(ctx, func(st *entity.State, _ entity.Day) error {
		return st.Words.DeleteRecord(word, translation)
	})
}

func (u *trainerUsecase) EditRecord(ctx context.Context, word, translation string, edit entity.RecordEdit) error {
	return u.mutate(ctx, func(st *entity.State, today entity.Day) error {
		return st.Words.EditRecord(word, translation, edit, today, st.Ladder)
	})
}

func (u *trainerUsecase) RegisterAttempt(ctx context.Context, word, translation string, correct bool) error {
	return u.mutate(ctx, func(st *entity.State, today entity.Day) error {
		return st.Words.RegisterAttempt(word, translation, correct, today, st.Ladder, st.Statistics.Day(today))
	})
}

func (u *trainerUsecase) Records(ctx context.Context, word string) ([]entity.Record, error) {
	var out []entity.Record
	err := u.read(ctx, func(st *entity.State, _ entity.Day) (err error) {
		out, err = st.Words.Records(word)
		return err
	})
	return out, err
}

// WordPlan is the practice plan for one word plus its scheduling figures.
type WordPlan struct {
	entity.Plan
	AttemptsRemaining uint64
	OverdueDays       uint64
}

func (u *trainerUsecase) Plan(ctx context.Context, word string) (WordPlan, error) {
	var out WordPlan
	err := u.read(ctx, func(st *entity.State, today entity.Day) (err error) {
		out.Plan, err = st.Words.PlanForWord(word, today, st.Ladder)
		if err != nil {
			return err
		}
		out.AttemptsRemaining = st.Words.RemainingAttempts(word, today, st.Ladder)
		out.OverdueDays = st.Words.OverdueDays(word, today, st.Ladder)
		return nil
	})
	return out, err
}

func (u *trainerUsecase) Due(ctx context.Context) (Queues, error) {
	var out Queues
	err := u.read(ctx, func(st *entity.State, today entity.Day) error {
		out = RankDueWords(st.Words, today, st.Ladder)
		return nil
	})
	return out, err
}

func (u *trainerUsecase) Report(ctx context.Context) (Report, error) {
	var out Report
	err := u.read(ctx, func(st *entity.State, today entity.Day) error {
		out = BuildReport(st, today)
		return nil
	})
	return out, err
}

func (u *trainerUsecase) ListWords(ctx context.Context, query *repository.ListWordsQuery) ([]WordSummary, int64, error) {
	var (
		rows  []WordSummary
		total int64
	)
	err := u.read(ctx, func(st *entity.State, today entity.Day) (err error) {
		rows, total, err = ListWords(st.Words, today, st.Ladder, query)
		return err
	})
	return rows, total, err
}

func (u *trainerUsecase) History(ctx context.Context) (entity.Statistics, error) {
	var out entity.Statistics
	err := u.read(ctx, func(st *entity.State, _ entity.Day) error {
		out = st.Statistics.Clone()
		return nil
	})
	return out, err
}

func (u *trainerUsecase) Ingest(ctx context.Context, res textscan.Result) (IngestReport, error) {
	var out IngestReport
	err := u.read(ctx, func(st *entity.State, _ entity.Day) error {
		out = ClassifyScan(st.Words, res)
		return nil
	})
	return out, err
}

func (u *trainerUsecase) ImportTable(ctx context.Context, rows []TableRow) (TableImportReport, error) {
	var out TableImportReport
	err := u.mutate(ctx, func(st *entity.State, today entity.Day) error {
		out = ImportRows(st.Words, rows, today, st.Statistics.Day(today))
		return nil
	})
	if err == nil {
		u.log.WithFields(logrus.Fields{"rows": out.Rows, "added": out.Added, "errors": len(out.Errors)}).Info("table imported")
	}
	return out, err
}

// StartSession opens a practice session on the live state. From here on the
// trainer keeps working on that state instead of reloading it. The session
// locks the trainer while it mutates records; call Persist to save its
// progress.
func (u *trainerUsecase) StartSession(ctx context.Context) (*Session, error) {
	u.mu.Lock()
	st, err := u.loadLocked(ctx)
	if err != nil {
		u.mu.Unlock()
		return nil, err
	}
	u.pinned = true
	today := u.Today()
	day := st.Statistics.Day(today)
	u.mu.Unlock()

	opts := SessionOptions{
		Targets: u.settings.Targets,
		Logger:  u.log,
		Lock:    &u.mu,
	}
	if u.settings.Seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(u.settings.Seed, u.settings.Seed^0x9e3779b97f4a7c15))
	}
	return NewSession(st.Words, st.Ladder, today, day, opts), nil
}

func (u *trainerUsecase) AddWorkingTime(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return u.mutate(ctx, func(st *entity.State, today entity.Day) error {
		st.Statistics.Day(today).WorkingSeconds += d.Seconds()
		return nil
	})
}

// Snapshot records today's counts by state.
func (u *trainerUsecase) Snapshot(ctx context.Context) error {
	return u.mutate(ctx, func(st *entity.State, today entity.Day) error {
		st.Statistics.Day(today).CountsByState = CountsByState(st.Words)
		return nil
	})
}

func (u *trainerUsecase) Persist(ctx context.Context) error {
	return u.mutate(ctx, func(*entity.State, entity.Day) error { return nil })
}
