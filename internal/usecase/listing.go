package usecase

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/repository"
	"github.com/eslsoft/wordladder/pkg/filterexpr"
)

// ErrInvalidQuery wraps filter and order_by parse failures.
var ErrInvalidQuery = errors.New("invalid word query")

// WordSummary is one row of the word listing.
type WordSummary struct {
	Word string `json:"word" yaml:"word"`

	// State is the most active state among the word's records.
	State        entity.RecordState  `json:"state" yaml:"state"`
	Translations []string            `json:"translations,omitempty" yaml:"translations,omitempty"`
	Level        int                 `json:"level" yaml:"level"`
	OverdueDays  uint64              `json:"overdue_days" yaml:"overdue_days"`
	Due          bool                `json:"due" yaml:"due"`
	Stats        entity.AttemptStats `json:"stats" yaml:"stats"`
}

func (s WordSummary) field(name string) any {
	switch name {
	case "word":
		return s.Word
	case "state":
		return s.State.String()
	case "level":
		return s.Level
	case "overdue":
		return s.OverdueDays
	case "attempts":
		return s.Stats.Total()
	default:
		return nil
	}
}

var wordListSchema = filterexpr.Schema{
	Filter: map[string]filterexpr.Field{
		"word":     {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpSW, filterexpr.OpIN}},
		"state":    {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpNE, filterexpr.OpIN}},
		"level":    {Kind: filterexpr.KindNumber, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpGT, filterexpr.OpGTE, filterexpr.OpLT, filterexpr.OpLTE}},
		"overdue":  {Kind: filterexpr.KindNumber, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpGT, filterexpr.OpGTE, filterexpr.OpLT, filterexpr.OpLTE}},
		"attempts": {Kind: filterexpr.KindNumber, Ops: []filterexpr.Op{filterexpr.OpGTE, filterexpr.OpLTE}},
	},
	Order: filterexpr.OrderSchema{
		Default:  filterexpr.OrderKey{Field: "word"},
		Fallback: filterexpr.OrderKey{Field: "word"},
		Fields:   []string{"word", "state", "level", "overdue", "attempts"},
	},
}

// statePriority ranks states for a word's summary state.
var statePriority = map[entity.RecordState]int{
	entity.StateToLearn:         4,
	entity.StateLearned:         3,
	entity.StateKnownPreviously: 2,
	entity.StateTrashWord:       1,
}

// Summarize folds a word's records into one listing row.
func Summarize(word string, records []entity.Record, today entity.Day, ladder entity.Ladder) WordSummary {
	sum := WordSummary{Word: word, Level: -1}
	for _, r := range records {
		if statePriority[r.State] > statePriority[sum.State] {
			sum.State = r.State
		}
		if r.HasTranslation() {
			sum.Translations = append(sum.Translations, r.Translation)
			sum.Stats.Add(r.Stats)
		}
		if level, ok := r.Level(); ok && (sum.Level < 0 || int(level) < sum.Level) {
			sum.Level = int(level)
		}
		sum.OverdueDays = max(sum.OverdueDays, r.OverdueDays(today, ladder))
		sum.Due = sum.Due || r.IsDue(today, ladder)
	}
	return sum
}

// ListWords filters, orders and pages the store. The total is the number of
// rows matching the filter.
func ListWords(store *entity.WordStore, today entity.Day, ladder entity.Ladder, query *repository.ListWordsQuery) ([]WordSummary, int64, error) {
	if query == nil {
		query = &repository.ListWordsQuery{}
	}
	query.Normalize()
	q, err := filterexpr.Parse(&query.FilterOrder, wordListSchema)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var rows []WordSummary
	for _, word := range store.Words() {
		records, err := store.Records(word)
		if err != nil {
			return nil, 0, err
		}
		sum := Summarize(word, records, today, ladder)
		if q.Match(sum.field) {
			rows = append(rows, sum)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return q.Less(rows[i].field, rows[j].field) })

	total := int64(len(rows))
	offset := query.Offset()
	if offset >= total {
		return []WordSummary{}, total, nil
	}
	return lo.Subset(rows, int(offset), uint(query.PageSize)), total, nil
}
