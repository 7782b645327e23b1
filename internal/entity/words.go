package entity

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Disposition tells Add what kind of records to create for a word.
type Disposition struct {
	State RecordState
	// ToLearn lists translations that start at the bottom of the ladder.
	ToLearn []string
	// Learned lists translations the learner already masters.
	Learned []string
}

// DispositionKnown marks the word as previously known.
func DispositionKnown() Disposition { return Disposition{State: StateKnownPreviously} }

// DispositionTrash marks the word as noise.
func DispositionTrash() Disposition { return Disposition{State: StateTrashWord} }

// DispositionLearn links the word to translations.
func DispositionLearn(toLearn, learned []string) Disposition {
	return Disposition{State: StateToLearn, ToLearn: toLearn, Learned: learned}
}

// WordStore maps each word to its records. Every ToLearn or Learned record
// W→T has a mirror T→W; all mutations go through WordStore methods so that
// both sides always change together.
type WordStore struct {
	words map[string][]Record
}

// NewWordStore returns an empty store.
func NewWordStore() *WordStore {
	return &WordStore{words: make(map[string][]Record)}
}

// Len returns the number of words.
func (s *WordStore) Len() int { return len(s.words) }

// Has reports whether word is a key of the store.
func (s *WordStore) Has(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Words returns all words in ascending order.
func (s *WordStore) Words() []string {
	words := lo.Keys(s.words)
	sort.Strings(words)
	return words
}

// Records returns a copy of the records stored under word.
func (s *WordStore) Records(word string) ([]Record, error) {
	records, ok := s.words[word]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	return append([]Record(nil), records...), nil
}

// Each visits every record, words in ascending order.
func (s *WordStore) Each(fn func(word string, r Record)) {
	for _, word := range s.Words() {
		for _, r := range s.words[word] {
			fn(word, r)
		}
	}
}

// Clone returns a deep copy.
func (s *WordStore) Clone() *WordStore {
	out := &WordStore{words: make(map[string][]Record, len(s.words))}
	for word, records := range s.words {
		out.words[word] = append([]Record(nil), records...)
	}
	return out
}

// Add creates the records for word. Inert dispositions append a marker;
// learn dispositions create one record per translation plus its mirror. Each
// forward translation record counts as a new word in day, which may be nil.
// Translations already linked to word are skipped.
func (s *WordStore) Add(word string, d Disposition, today Day, day *DayStatistics) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ErrInvalidWord
	}

	switch d.State {
	case StateKnownPreviously, StateTrashWord:
		if lo.ContainsBy(s.words[word], func(r Record) bool { return r.State == d.State }) {
			return nil
		}
		s.words[word] = append(s.words[word], Record{State: d.State})
		return nil
	case StateToLearn:
	default:
		return fmt.Errorf("%w: state %s", ErrInvalidDisposition, d.State)
	}

	toLearn, err := s.cleanTranslations(word, d.ToLearn)
	if err != nil {
		return err
	}
	learned, err := s.cleanTranslations(word, d.Learned)
	if err != nil {
		return err
	}
	learned = lo.Without(learned, toLearn...)
	supplied := lo.Filter(append(append([]string(nil), d.ToLearn...), d.Learned...), func(t string, _ int) bool {
		return strings.TrimSpace(t) != ""
	})
	if len(supplied) == 0 {
		return fmt.Errorf("%w: no translations for %q", ErrInvalidDisposition, word)
	}

	for _, t := range toLearn {
		s.link(word, t, NewToLearnRecord(t, today), NewToLearnRecord(word, today))
		if day != nil {
			day.NewWords++
		}
	}
	for _, t := range learned {
		s.link(word, t, NewLearnedRecord(t, AttemptStats{}), NewLearnedRecord(word, AttemptStats{}))
		if day != nil {
			day.NewWords++
		}
	}
	return nil
}

func (s *WordStore) cleanTranslations(word string, translations []string) ([]string, error) {
	out := make([]string, 0, len(translations))
	for _, t := range translations {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if t == word {
			return nil, fmt.Errorf("%w: %q cannot translate itself", ErrInvalidDisposition, word)
		}
		if s.linked(word, t) {
			continue
		}
		out = append(out, t)
	}
	return lo.Uniq(out), nil
}

func (s *WordStore) linked(word, translation string) bool {
	return lo.ContainsBy(s.words[word], func(r Record) bool { return r.Points(translation) })
}

func (s *WordStore) link(word, translation string, forward, mirror Record) {
	s.words[word] = append(s.words[word], forward)
	s.words[translation] = append(s.words[translation], mirror)
}

// Remove deletes word together with every mirror pointing back at it.
// Translations left without records disappear from the store.
func (s *WordStore) Remove(word string) error {
	records, ok := s.words[word]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	delete(s.words, word)

	for _, t := range translationsOf(records) {
		remaining := lo.Reject(s.words[t], func(r Record, _ int) bool { return r.Points(word) })
		s.setOrPrune(t, remaining)
	}
	return nil
}

// Rename moves word's records to newWord and retargets every mirror.
func (s *WordStore) Rename(word, newWord string) error {
	newWord = strings.TrimSpace(newWord)
	if newWord == "" {
		return ErrInvalidWord
	}
	records, ok := s.words[word]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	if newWord == word {
		return nil
	}
	if s.Has(newWord) {
		return fmt.Errorf("%w: %q", ErrWordAlreadyExists, newWord)
	}

	delete(s.words, word)
	s.words[newWord] = records
	for _, t := range translationsOf(records) {
		mirrors := s.words[t]
		for i := range mirrors {
			if mirrors[i].Points(word) {
				mirrors[i].Translation = newWord
			}
		}
	}
	return nil
}

// RenameTranslation renames the translation key linked from word. The
// translation is a word of its own, so every record pointing at it follows.
func (s *WordStore) RenameTranslation(word, translation, newTranslation string) error {
	if !s.Has(word) {
		return fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	if !s.linked(word, translation) {
		return fmt.Errorf("%w: %q → %q", ErrTranslationNotFound, word, translation)
	}
	if strings.TrimSpace(newTranslation) == word {
		return fmt.Errorf("%w: %q cannot translate itself", ErrInvalidDisposition, word)
	}
	return s.Rename(translation, newTranslation)
}

// DeleteRecord removes the word→translation record and its mirror.
func (s *WordStore) DeleteRecord(word, translation string) error {
	records, ok := s.words[word]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	idx := lo.IndexOf(lo.Map(records, func(r Record, _ int) bool { return r.Points(translation) }), true)
	if idx < 0 {
		return fmt.Errorf("%w: %q → %q", ErrTranslationNotFound, word, translation)
	}
	s.setOrPrune(word, append(records[:idx:idx], records[idx+1:]...))

	mirrors := s.words[translation]
	if m := lo.IndexOf(lo.Map(mirrors, func(r Record, _ int) bool { return r.Points(word) }), true); m >= 0 {
		s.setOrPrune(translation, append(mirrors[:m:m], mirrors[m+1:]...))
	}
	return nil
}

func (s *WordStore) setOrPrune(word string, records []Record) {
	if len(records) == 0 {
		delete(s.words, word)
		return
	}
	s.words[word] = records
}

// RecordEdit is a manual adjustment of one record. Nil fields are left alone.
type RecordEdit struct {
	State         *RecordState
	Stats         *AttemptStats
	LastPracticed *Day
	LadderIndex   *uint8
	RungProgress  *uint8
}

// EditRecord applies edit to the word→translation record. Only ToLearn and
// Learned may be forced into each other; a record forced back to ToLearn
// restarts from the bottom of the ladder on today unless the edit says
// otherwise. The mirror is not touched.
func (s *WordStore) EditRecord(word, translation string, edit RecordEdit, today Day, ladder Ladder) error {
	records, ok := s.words[word]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	idx := lo.IndexOf(lo.Map(records, func(r Record, _ int) bool { return r.Points(translation) }), true)
	if idx < 0 {
		return fmt.Errorf("%w: %q → %q", ErrTranslationNotFound, word, translation)
	}

	r := records[idx]
	if edit.State != nil && *edit.State != r.State {
		switch *edit.State {
		case StateLearned:
			r = NewLearnedRecord(r.Translation, r.Stats)
		case StateToLearn:
			r = Record{State: StateToLearn, Translation: r.Translation, LastPracticed: today, Stats: r.Stats}
		default:
			return fmt.Errorf("%w: cannot force %s into %s", ErrInvalidRecordEdit, r.State, *edit.State)
		}
	}
	if edit.Stats != nil {
		r.Stats = *edit.Stats
	}
	if edit.LastPracticed != nil || edit.LadderIndex != nil || edit.RungProgress != nil {
		if r.State != StateToLearn {
			return fmt.Errorf("%w: %s record has no ladder position", ErrInvalidRecordEdit, r.State)
		}
		if edit.LastPracticed != nil {
			r.LastPracticed = *edit.LastPracticed
		}
		if edit.LadderIndex != nil {
			r.LadderIndex = *edit.LadderIndex
		}
		if edit.RungProgress != nil {
			r.RungProgress = *edit.RungProgress
		}
	}
	if r.State == StateToLearn && int(r.LadderIndex) >= len(ladder) {
		return fmt.Errorf("%w: ladder index %d outside ladder of %d rungs", ErrInvalidRecordEdit, r.LadderIndex, len(ladder))
	}
	if err := r.CheckInvariants(ladder); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecordEdit, err)
	}
	records[idx] = r
	return nil
}

// RegisterAttempt routes one answer to the word→translation record. A missing
// word or translation is reported as a lookup miss. The attempt also counts
// toward day, which may be nil.
func (s *WordStore) RegisterAttempt(word, translation string, correct bool, today Day, ladder Ladder, day *DayStatistics) error {
	records, ok := s.words[word]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	for i := range records {
		if !records[i].Points(translation) {
			continue
		}
		if records[i].State != StateToLearn {
			return fmt.Errorf("%w: %q → %q is %s", ErrRecordNotPractisable, word, translation, records[i].State)
		}
		records[i].RegisterAttempt(correct, today, ladder)
		if day != nil {
			day.Attempts.count(correct)
		}
		return nil
	}
	return fmt.Errorf("%w: %q → %q", ErrTranslationNotFound, word, translation)
}

// IsFullyLearned reports whether no record under word is still being learned.
func (s *WordStore) IsFullyLearned(word string) (bool, error) {
	records, ok := s.words[word]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	return !lo.ContainsBy(records, func(r Record) bool { return r.State == StateToLearn }), nil
}

// CheckSymmetry verifies that every linked record has a mirror.
func (s *WordStore) CheckSymmetry() error {
	for _, word := range s.Words() {
		forward := make(map[string]int)
		for _, t := range translationsOf(s.words[word]) {
			forward[t]++
		}
		for t, n := range forward {
			back := lo.CountBy(s.words[t], func(r Record) bool { return r.Points(word) })
			if back != n {
				return fmt.Errorf("%w: %d record(s) %q → %q but %d mirror(s)", ErrInconsistentStore, n, word, t, back)
			}
		}
	}
	return nil
}

// Validate checks symmetry and every record's invariants.
func (s *WordStore) Validate(ladder Ladder) error {
	for _, word := range s.Words() {
		if len(s.words[word]) == 0 {
			return fmt.Errorf("%w: %q has no records", ErrInconsistentStore, word)
		}
		for _, r := range s.words[word] {
			if err := r.CheckInvariants(ladder); err != nil {
				return fmt.Errorf("word %q: %w", word, err)
			}
		}
	}
	return s.CheckSymmetry()
}

// MarshalJSON encodes the store as an object keyed by word.
func (s *WordStore) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.words)
}

// UnmarshalJSON decodes an object keyed by word. Validation is left to the caller.
func (s *WordStore) UnmarshalJSON(data []byte) error {
	words := make(map[string][]Record)
	if err := json.Unmarshal(data, &words); err != nil {
		return err
	}
	s.words = words
	return nil
}

// Restore puts records back under word, replacing any present. It is meant
// for storage adapters rebuilding a saved store; run Validate afterwards.
func (s *WordStore) Restore(word string, records []Record) {
	if s.words == nil {
		s.words = make(map[string][]Record)
	}
	s.setOrPrune(word, append([]Record(nil), records...))
}

func translationsOf(records []Record) []string {
	return lo.FilterMap(records, func(r Record, _ int) (string, bool) {
		return r.Translation, r.HasTranslation()
	})
}

// Reconcile fits stored records to ladder after the ladder changed. Records
// past the last rung become Learned and progress beyond a rung's count is
// capped. It returns how many records were adjusted.
func (s *WordStore) Reconcile(ladder Ladder) int {
	adjusted := 0
	for _, records := range s.words {
		for i := range records {
			r := &records[i]
			if r.State != StateToLearn {
				continue
			}
			rung, ok := ladder.Rung(r.LadderIndex)
			switch {
			case !ok:
				*r = NewLearnedRecord(r.Translation, r.Stats)
				adjusted++
			case r.RungProgress >= rung.RequiredCount:
				r.RungProgress = rung.RequiredCount - 1
				adjusted++
			}
		}
	}
	return adjusted
}
