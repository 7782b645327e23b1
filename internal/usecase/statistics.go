package usecase

import "github.com/eslsoft/wordladder/internal/entity"

// Report summarizes the store and today's activity.
type Report struct {
	Day           entity.Day           `json:"day" yaml:"day"`
	CountsByState entity.StateCounts   `json:"counts_by_state" yaml:"counts_by_state"`
	AttemptTotals entity.AttemptStats  `json:"attempt_totals" yaml:"attempt_totals"`
	Today         entity.DayStatistics `json:"today" yaml:"today"`
	DueRepeat     int                  `json:"due_repeat" yaml:"due_repeat"`
	DueNew        int                  `json:"due_new" yaml:"due_new"`
	Words         int                  `json:"words" yaml:"words"`
}

// CountsByState counts every record by bucket: inert states, learned, and
// one bucket per ladder level.
func CountsByState(store *entity.WordStore) entity.StateCounts {
	counts := make(entity.StateCounts)
	store.Each(func(_ string, r entity.Record) {
		counts[entity.BucketOf(r)]++
	})
	return counts
}

// AttemptTotals sums the attempt counters of records still being learned.
func AttemptTotals(store *entity.WordStore) entity.AttemptStats {
	var total entity.AttemptStats
	store.Each(func(_ string, r entity.Record) {
		if r.State == entity.StateToLearn {
			total.Add(r.Stats)
		}
	})
	return total
}

// BuildReport assembles a Report for today.
func BuildReport(state *entity.State, today entity.Day) Report {
	repeat, fresh := state.Words.DueWords(today, state.Ladder)
	todayStats, _ := state.Statistics.Lookup(today)
	return Report{
		Day:           today,
		CountsByState: CountsByState(state.Words),
		AttemptTotals: AttemptTotals(state.Words),
		Today:         todayStats,
		DueRepeat:     len(repeat),
		DueNew:        len(fresh),
		Words:         state.Words.Len(),
	}
}
