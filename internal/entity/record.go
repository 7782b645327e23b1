package entity

import (
	"encoding"
	"fmt"
)

// RecordState discriminates the four lifecycle states of a directional pair.
type RecordState uint8

const (
	// StateKnownPreviously marks a word the learner already knew. Inert.
	StateKnownPreviously RecordState = iota + 1
	// StateTrashWord marks noise picked up by ingestion. Inert.
	StateTrashWord
	// StateToLearn is the only state the scheduler acts on.
	StateToLearn
	// StateLearned is reached once the ladder is exhausted.
	StateLearned
)

var (
	recordStateNames = [...]string{
		StateKnownPreviously: "known",
		StateTrashWord:       "trash",
		StateToLearn:         "to_learn",
		StateLearned:         "learned",
	}
	recordStateByName = map[string]RecordState{
		"known":    StateKnownPreviously,
		"trash":    StateTrashWord,
		"to_learn": StateToLearn,
		"learned":  StateLearned,
	}
)

var (
	_ fmt.Stringer             = RecordState(0)
	_ encoding.TextMarshaler   = RecordState(0)
	_ encoding.TextUnmarshaler = (*RecordState)(nil)
)

// Valid reports whether s is one of the declared states.
func (s RecordState) Valid() bool {
	return s >= StateKnownPreviously && s <= StateLearned
}

func (s RecordState) String() string {
	if s.Valid() {
		return recordStateNames[s]
	}
	return fmt.Sprintf("RecordState(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s RecordState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, uint8(s))
	}
	return []byte(recordStateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RecordState) UnmarshalText(text []byte) error {
	v, ok := recordStateByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, text)
	}
	*s = v
	return nil
}

// ParseRecordState parses the textual form used in filters and flags.
func ParseRecordState(name string) (RecordState, error) {
	var s RecordState
	err := s.UnmarshalText([]byte(name))
	return s, err
}

// AttemptStats counts answers. Counters only grow.
type AttemptStats struct {
	Correct   uint64 `json:"correct" yaml:"correct"`
	Incorrect uint64 `json:"incorrect" yaml:"incorrect"`
}

// Total returns the number of attempts.
func (s AttemptStats) Total() uint64 { return s.Correct + s.Incorrect }

// Add accumulates other into s.
func (s *AttemptStats) Add(other AttemptStats) {
	s.Correct += other.Correct
	s.Incorrect += other.Incorrect
}

func (s *AttemptStats) count(correct bool) {
	if correct {
		s.Correct++
	} else {
		s.Incorrect++
	}
}

// Record is the learning state of one word→translation direction. State
// selects which of the remaining fields are meaningful: inert states carry
// nothing, Learned carries Translation and Stats, ToLearn carries everything.
type Record struct {
	State         RecordState  `json:"state"`
	Translation   string       `json:"translation,omitempty"`
	LastPracticed Day          `json:"last_practiced,omitempty"`
	LadderIndex   uint8        `json:"ladder_index,omitempty"`
	RungProgress  uint8        `json:"rung_progress,omitempty"`
	Stats         AttemptStats `json:"stats"`
}

// KnownRecord returns an inert marker for a previously known word.
func KnownRecord() Record { return Record{State: StateKnownPreviously} }

// TrashRecord returns an inert marker for a noise word.
func TrashRecord() Record { return Record{State: StateTrashWord} }

// NewToLearnRecord starts a pair at the bottom of the ladder.
func NewToLearnRecord(translation string, today Day) Record {
	return Record{State: StateToLearn, Translation: translation, LastPracticed: today}
}

// NewLearnedRecord returns a terminal pair.
func NewLearnedRecord(translation string, stats AttemptStats) Record {
	return Record{State: StateLearned, Translation: translation, Stats: stats}
}

// HasTranslation reports whether the record links to another word.
func (r Record) HasTranslation() bool {
	return r.State == StateToLearn || r.State == StateLearned
}

// Points reports whether the record links to translation.
func (r Record) Points(translation string) bool {
	return r.HasTranslation() && r.Translation == translation
}

// Level returns the ladder index of a ToLearn record.
func (r Record) Level() (uint8, bool) {
	if r.State != StateToLearn {
		return 0, false
	}
	return r.LadderIndex, true
}

// CurrentRung returns the rung a ToLearn record sits on.
func (r Record) CurrentRung(ladder Ladder) (Rung, bool) {
	if r.State != StateToLearn {
		return Rung{}, false
	}
	return ladder.Rung(r.LadderIndex)
}

// IsDue reports whether the current rung's waiting period has elapsed. Only
// the current rung is consulted.
func (r Record) IsDue(today Day, ladder Ladder) bool {
	rung, ok := r.CurrentRung(ladder)
	if !ok {
		return false
	}
	elapsed, ok := today.DaysSince(r.LastPracticed)
	return ok && elapsed >= uint64(rung.WaitDays)
}

// RevealsPrompt reports whether the current rung is a typing rung.
func (r Record) RevealsPrompt(ladder Ladder) bool {
	rung, ok := r.CurrentRung(ladder)
	return ok && rung.RevealPrompt
}

// OverdueDays returns how many days a due record is past its threshold.
func (r Record) OverdueDays(today Day, ladder Ladder) uint64 {
	if !r.IsDue(today, ladder) {
		return 0
	}
	elapsed, _ := today.DaysSince(r.LastPracticed)
	return elapsed - uint64(ladder[r.LadderIndex].WaitDays)
}

// RemainingAttempts returns the correct answers still needed to clear the
// current rung, or zero when the record is not due.
func (r Record) RemainingAttempts(today Day, ladder Ladder) uint64 {
	if !r.IsDue(today, ladder) {
		return 0
	}
	return uint64(ladder[r.LadderIndex].RequiredCount - r.RungProgress)
}

// RegisterAttempt applies one answer. Wrong answers only bump the incorrect
// counter; the ladder never regresses. Correct answers on a due rung advance
// progress and, once the rung is cleared, the ladder index. Clearing the last
// rung turns the record into Learned.
//
// Routing an attempt to anything but a ToLearn record is a caller bug and panics.
func (r *Record) RegisterAttempt(correct bool, today Day, ladder Ladder) {
	if r.State != StateToLearn {
		panic(fmt.Sprintf("entity: attempt registered on %s record %q", r.State, r.Translation))
	}
	r.Stats.count(correct)
	if !correct || !r.IsDue(today, ladder) {
		return
	}

	rung := ladder[r.LadderIndex]
	if r.RungProgress+1 != rung.RequiredCount {
		r.RungProgress++
		return
	}
	r.RungProgress = 0
	r.LastPracticed = today
	r.LadderIndex++
	if int(r.LadderIndex) == len(ladder) {
		*r = NewLearnedRecord(r.Translation, r.Stats)
	}
}

// CheckInvariants validates the record against the ladder.
func (r Record) CheckInvariants(ladder Ladder) error {
	switch r.State {
	case StateKnownPreviously, StateTrashWord:
		if r.Translation != "" {
			return fmt.Errorf("%w: inert %s record carries translation %q", ErrInconsistentStore, r.State, r.Translation)
		}
	case StateLearned:
		if r.Translation == "" {
			return fmt.Errorf("%w: learned record without translation", ErrInconsistentStore)
		}
	case StateToLearn:
		if r.Translation == "" {
			return fmt.Errorf("%w: to_learn record without translation", ErrInconsistentStore)
		}
		if int(r.LadderIndex) > len(ladder) {
			return fmt.Errorf("%w: ladder index %d outside ladder of %d rungs", ErrInconsistentStore, r.LadderIndex, len(ladder))
		}
		if rung, ok := ladder.Rung(r.LadderIndex); ok && r.RungProgress >= rung.RequiredCount {
			return fmt.Errorf("%w: progress %d reaches required count %d", ErrInconsistentStore, r.RungProgress, rung.RequiredCount)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownState, uint8(r.State))
	}
	return nil
}
