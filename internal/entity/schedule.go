package entity

import (
	"fmt"

	"github.com/samber/lo"
)

// Plan describes one practice prompt for a word.
type Plan struct {
	// Known lists translations shown as already satisfied: learned pairs and
	// pairs whose current rung is not due.
	Known []string
	// ToType lists due translations on a reveal rung.
	ToType []string
	// ToGuess lists due translations on a hidden rung.
	ToGuess []string
}

// Empty reports whether nothing has to be practiced.
func (p Plan) Empty() bool { return len(p.ToType) == 0 && len(p.ToGuess) == 0 }

// DueWords returns the words with at least one due record, split into repeat
// words and new words. A word is new while any of its records is still on
// the first rung. Both lists are sorted.
func (s *WordStore) DueWords(today Day, ladder Ladder) (repeat, fresh []string) {
	for _, word := range s.Words() {
		records := s.words[word]
		if !anyDue(records, today, ladder) {
			continue
		}
		onFirstRung := lo.ContainsBy(records, func(r Record) bool {
			level, ok := r.Level()
			return ok && level == 0
		})
		if onFirstRung {
			fresh = append(fresh, word)
		} else {
			repeat = append(repeat, word)
		}
	}
	return repeat, fresh
}

// IsWordDue reports whether any record under word is due. Unknown words are
// never due.
func (s *WordStore) IsWordDue(word string, today Day, ladder Ladder) bool {
	return anyDue(s.words[word], today, ladder)
}

func anyDue(records []Record, today Day, ladder Ladder) bool {
	return lo.ContainsBy(records, func(r Record) bool { return r.IsDue(today, ladder) })
}

// DueTranslations lists the translations of word whose records are due.
func (s *WordStore) DueTranslations(word string, today Day, ladder Ladder) []string {
	return lo.FilterMap(s.words[word], func(r Record, _ int) (string, bool) {
		return r.Translation, r.IsDue(today, ladder)
	})
}

// HasHint reports whether any record of word sits on a reveal rung.
func (s *WordStore) HasHint(word string, ladder Ladder) bool {
	return lo.ContainsBy(s.words[word], func(r Record) bool { return r.RevealsPrompt(ladder) })
}

// PlanForWord classifies the records of word for one prompt. The due check
// is the same IsDue used everywhere else.
func (s *WordStore) PlanForWord(word string, today Day, ladder Ladder) (Plan, error) {
	records, ok := s.words[word]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	var plan Plan
	for _, r := range records {
		switch {
		case r.State == StateLearned:
			plan.Known = append(plan.Known, r.Translation)
		case r.State != StateToLearn:
		case !r.IsDue(today, ladder):
			plan.Known = append(plan.Known, r.Translation)
		case r.RevealsPrompt(ladder):
			plan.ToType = append(plan.ToType, r.Translation)
		default:
			plan.ToGuess = append(plan.ToGuess, r.Translation)
		}
	}
	return plan, nil
}

// OverdueDays returns the largest overdue count among word's due records.
func (s *WordStore) OverdueDays(word string, today Day, ladder Ladder) uint64 {
	return maxOver(s.words[word], func(r Record) uint64 { return r.OverdueDays(today, ladder) })
}

// RemainingAttempts returns the largest number of correct answers still needed
// on the current rung among word's due records.
func (s *WordStore) RemainingAttempts(word string, today Day, ladder Ladder) uint64 {
	return maxOver(s.words[word], func(r Record) uint64 { return r.RemainingAttempts(today, ladder) })
}

func maxOver(records []Record, fn func(Record) uint64) uint64 {
	var out uint64
	for _, r := range records {
		out = max(out, fn(r))
	}
	return out
}
