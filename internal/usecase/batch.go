package usecase

import (
	"sort"

	"github.com/samber/lo"

	"github.com/eslsoft/wordladder/internal/entity"
)

// RankedWord is a due word with its overdue count.
type RankedWord struct {
	Word        string `json:"word" yaml:"word"`
	OverdueDays uint64 `json:"overdue_days" yaml:"overdue_days"`
}

// Queues holds today's due words, most overdue first.
type Queues struct {
	Repeat []RankedWord `json:"repeat" yaml:"repeat"`
	New    []RankedWord `json:"new" yaml:"new"`
}

// Targets is how many repeat and new words a session should take.
type Targets struct {
	Repeat int `json:"repeat" yaml:"repeat"`
	New    int `json:"new" yaml:"new"`
}

// DefaultTargets matches the chooser defaults.
var DefaultTargets = Targets{Repeat: 30, New: 15}

// Empty reports whether nothing is due.
func (q Queues) Empty() bool { return len(q.Repeat) == 0 && len(q.New) == 0 }

// RankDueWords builds both queues for today. Ties keep word order.
func RankDueWords(store *entity.WordStore, today entity.Day, ladder entity.Ladder) Queues {
	repeat, fresh := store.DueWords(today, ladder)
	rank := func(words []string) []RankedWord {
		ranked := lo.Map(words, func(w string, _ int) RankedWord {
			return RankedWord{Word: w, OverdueDays: store.OverdueDays(w, today, ladder)}
		})
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].OverdueDays > ranked[j].OverdueDays })
		return ranked
	}
	return Queues{Repeat: rank(repeat), New: rank(fresh)}
}

// Clamp limits targets to what the queues can provide.
func (t Targets) Clamp(q Queues) Targets {
	return Targets{
		Repeat: max(0, min(t.Repeat, len(q.Repeat))),
		New:    max(0, min(t.New, len(q.New))),
	}
}

// BuildBatch pulls words off the front of the queues until the targets are
// met. Every pulled word brings along its due translations, and everything
// pulled leaves both queues. The new-word target counts on top of the repeat
// words actually pulled. A target covering a whole queue drains it. The
// returned pool is sorted.
func BuildBatch(store *entity.WordStore, q *Queues, targets Targets, today entity.Day, ladder entity.Ladder) []string {
	pool := make(map[string]struct{})
	pull := func(word string) {
		for _, w := range append([]string{word}, store.DueTranslations(word, today, ladder)...) {
			pool[w] = struct{}{}
			q.Repeat = lo.Reject(q.Repeat, func(r RankedWord, _ int) bool { return r.Word == w })
			q.New = lo.Reject(q.New, func(r RankedWord, _ int) bool { return r.Word == w })
		}
	}

	allRepeat := targets.Repeat >= len(q.Repeat)
	allNew := targets.New >= len(q.New)

	for len(q.Repeat) > 0 && (allRepeat || len(pool) < targets.Repeat) {
		pull(q.Repeat[0].Word)
	}
	pulledRepeat := len(pool)
	for len(q.New) > 0 && (allNew || len(pool) < pulledRepeat+targets.New) {
		pull(q.New[0].Word)
	}

	words := lo.Keys(pool)
	sort.Strings(words)
	return words
}
