package usecase

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordladder/internal/entity"
)

var (
	// ErrSessionState is returned when an operation is not valid in the
	// session's current state.
	ErrSessionState = errors.New("operation not allowed in current session state")
	// ErrAnswerCount is returned when the number of answers does not match the prompt.
	ErrAnswerCount = errors.New("answer count does not match prompt")
)

// SessionState is the phase of a practice session.
type SessionState int

const (
	// SessionIdle means nothing is due.
	SessionIdle SessionState = iota
	// SessionChoosing waits for batch targets.
	SessionChoosing
	// SessionTyping shows a prompt and waits for answers.
	SessionTyping
	// SessionChecked shows verdicts after a prompt with mistakes.
	SessionChecked
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionChoosing:
		return "choosing"
	case SessionTyping:
		return "typing"
	case SessionChecked:
		return "checked"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Prompt is what the learner sees while typing.
type Prompt struct {
	Word string `json:"word"`
	// Known translations are shown for reference and need no answer.
	Known []string `json:"known"`
	// ToType translations are revealed and must be retyped in order.
	ToType []string `json:"to_type"`
	// GuessCount is the number of hidden translations to recall.
	GuessCount        int    `json:"guess_count"`
	AttemptsRemaining uint64 `json:"attempts_remaining"`
	WordsRemaining    int    `json:"words_remaining"`
}

// CheckResult reports the verdicts for one prompt.
type CheckResult struct {
	Word    string   `json:"word"`
	Answers []Answer `json:"answers"`
}

// AllCorrect reports whether every answer matched.
func (r CheckResult) AllCorrect() bool {
	return !lo.ContainsBy(r.Answers, func(a Answer) bool { return !a.Correct })
}

// SessionOptions configures NewSession.
type SessionOptions struct {
	Targets Targets
	// Rand drives batch shuffling. A seeded generator makes sessions reproducible.
	Rand   *rand.Rand
	Logger logrus.FieldLogger
	// Lock guards the word store while the session mutates it.
	Lock sync.Locker
}

// Session walks the learner through today's due words. It mutates the store
// it was created with; a Session itself is not safe for concurrent use.
type Session struct {
	ID string

	store    *entity.WordStore
	ladder   entity.Ladder
	today    entity.Day
	day      *entity.DayStatistics
	targets  Targets
	rng      *rand.Rand
	log      logrus.FieldLogger
	lock     sync.Locker
	state    SessionState
	queues   Queues
	pool     []string
	batch    []string
	word     string
	plan     entity.Plan
	checked  *CheckResult
	finished int
}

// NewSession starts a session in the chooser, or idle when nothing is due.
func NewSession(store *entity.WordStore, ladder entity.Ladder, today entity.Day, day *entity.DayStatistics, opts SessionOptions) *Session {
	if opts.Targets == (Targets{}) {
		opts.Targets = DefaultTargets
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Lock == nil {
		opts.Lock = &sync.Mutex{}
	}
	if day == nil {
		day = &entity.DayStatistics{}
	}
	id := uuid.NewString()
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Session{
		ID:      id,
		store:   store,
		ladder:  ladder,
		today:   today,
		day:     day,
		targets: opts.Targets,
		rng:     opts.Rand,
		log:     log.WithField("session_id", id),
		lock:    opts.Lock,
	}
	s.lock.Lock()
	s.enterChooser()
	s.lock.Unlock()
	return s
}

// State returns the current phase.
func (s *Session) State() SessionState { return s.state }

// Queues returns what the chooser offers.
func (s *Session) Queues() Queues { return s.queues }

// DefaultTargets returns the chooser defaults clamped to the queues.
func (s *Session) DefaultTargets() Targets { return s.targets.Clamp(s.queues) }

// Finished returns how many words left the pool so far.
func (s *Session) Finished() int { return s.finished }

// Prompt returns the current prompt while typing or checked.
func (s *Session) Prompt() (Prompt, bool) {
	if s.state != SessionTyping && s.state != SessionChecked {
		return Prompt{}, false
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return Prompt{
		Word:              s.word,
		Known:             s.plan.Known,
		ToType:            s.plan.ToType,
		GuessCount:        len(s.plan.ToGuess),
		AttemptsRemaining: s.store.RemainingAttempts(s.word, s.today, s.ladder),
		WordsRemaining:    len(s.pool),
	}, true
}

// Checked returns the verdicts while in the checked state.
func (s *Session) Checked() (CheckResult, bool) {
	if s.state != SessionChecked || s.checked == nil {
		return CheckResult{}, false
	}
	return *s.checked, true
}

// Choose builds the batch pool and moves to the first prompt.
func (s *Session) Choose(targets Targets) error {
	if s.state != SessionChoosing {
		return fmt.Errorf("%w: choose in %s", ErrSessionState, s.state)
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	s.pool = BuildBatch(s.store, &s.queues, targets, s.today, s.ladder)
	s.batch = nil
	s.log.WithFields(logrus.Fields{"repeat": targets.Repeat, "new": targets.New, "pool": len(s.pool)}).Info("session batch chosen")
	s.pickNext()
	return nil
}

// Check grades the answers for the current prompt. Answers must match
// exactly; callers trim input if they want to. Typed answers are compared
// positionally with the revealed translations; guesses are matched
// in any order. Every answer is registered right away. When everything is
// correct the session moves on to the next word, otherwise it stays on the
// checked screen until Next.
func (s *Session) Check(typed, guesses []string) (CheckResult, error) {
	if s.state != SessionTyping {
		return CheckResult{}, fmt.Errorf("%w: check in %s", ErrSessionState, s.state)
	}
	if len(typed) != len(s.plan.ToType) || len(guesses) != len(s.plan.ToGuess) {
		return CheckResult{}, fmt.Errorf("%w: want %d typed and %d guessed, got %d and %d",
			ErrAnswerCount, len(s.plan.ToType), len(s.plan.ToGuess), len(typed), len(guesses))
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	answers := make([]Answer, 0, len(typed)+len(guesses))
	for i, expected := range s.plan.ToType {
		answers = append(answers, Answer{Expected: expected, Given: typed[i], Correct: typed[i] == expected})
	}
	answers = append(answers, MatchGuesses(s.plan.ToGuess, guesses)...)

	for _, a := range answers {
		if a.Expected == "" {
			continue
		}
		if err := s.store.RegisterAttempt(s.word, a.Expected, a.Correct, s.today, s.ladder, s.day); err != nil {
			return CheckResult{}, err
		}
	}

	result := CheckResult{Word: s.word, Answers: answers}
	s.log.WithFields(logrus.Fields{"word": s.word, "correct": result.AllCorrect()}).Debug("answers checked")
	if result.AllCorrect() {
		s.pickNext()
		return result, nil
	}
	s.checked = &result
	s.state = SessionChecked
	return result, nil
}

// Retype compares a correction for answer i against its expected value. It
// is a drill only and never registers an attempt.
func (s *Session) Retype(i int, text string) (bool, error) {
	if s.state != SessionChecked || s.checked == nil {
		return false, fmt.Errorf("%w: retype in %s", ErrSessionState, s.state)
	}
	if i < 0 || i >= len(s.checked.Answers) {
		return false, fmt.Errorf("%w: answer %d of %d", ErrAnswerCount, i, len(s.checked.Answers))
	}
	return text == s.checked.Answers[i].Expected, nil
}

// Next leaves the checked screen.
func (s *Session) Next() error {
	if s.state != SessionChecked {
		return fmt.Errorf("%w: next in %s", ErrSessionState, s.state)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pickNext()
	return nil
}

// Cancel abandons the batch and returns to the chooser with fresh queues.
func (s *Session) Cancel() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.log.Info("session batch cancelled")
	s.enterChooser()
}

func (s *Session) enterChooser() {
	s.pool, s.batch, s.word, s.plan, s.checked = nil, nil, "", entity.Plan{}, nil
	s.queues = RankDueWords(s.store, s.today, s.ladder)
	if s.queues.Empty() {
		s.state = SessionIdle
		return
	}
	s.state = SessionChoosing
}

// pickNext advances to the next word that still needs practice. Words that
// are no longer due leave the pool. A new batch is drawn from the pool when
// the current one runs out, preferring words that still show a hint.
func (s *Session) pickNext() {
	s.checked = nil
	for {
		before := len(s.pool)
		s.pool = lo.Filter(s.pool, func(w string, _ int) bool { return s.store.IsWordDue(w, s.today, s.ladder) })
		s.finished += before - len(s.pool)
		s.batch = lo.Filter(s.batch, func(w string, _ int) bool { return lo.Contains(s.pool, w) })

		if len(s.batch) == 0 {
			if len(s.pool) == 0 {
				s.log.WithField("finished", s.finished).Info("session pool exhausted")
				s.enterChooser()
				return
			}
			group := lo.Filter(s.pool, func(w string, _ int) bool { return s.store.HasHint(w, s.ladder) })
			if len(group) == 0 {
				group = s.pool
			}
			s.batch = append([]string(nil), group...)
			s.rng.Shuffle(len(s.batch), func(i, j int) { s.batch[i], s.batch[j] = s.batch[j], s.batch[i] })
		}

		word := s.batch[len(s.batch)-1]
		s.batch = s.batch[:len(s.batch)-1]

		learned, err := s.store.IsFullyLearned(word)
		if err != nil || learned {
			s.drop(word)
			continue
		}
		plan, err := s.store.PlanForWord(word, s.today, s.ladder)
		if err != nil || plan.Empty() {
			s.drop(word)
			continue
		}
		s.word, s.plan = word, plan
		s.state = SessionTyping
		return
	}
}

func (s *Session) drop(word string) {
	s.pool = lo.Without(s.pool, word)
	s.finished++
}
