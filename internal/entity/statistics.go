package entity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Bucket groups records for counts-by-state reporting: known, trash, one
// bucket per ladder level, and learned.
type Bucket string

const (
	BucketKnown   Bucket = "known"
	BucketTrash   Bucket = "trash"
	BucketLearned Bucket = "learned"

	levelBucketPrefix = "level_"
)

// LevelBucket returns the bucket of ToLearn records sitting on rung n.
func LevelBucket(n uint8) Bucket {
	return Bucket(levelBucketPrefix + strconv.Itoa(int(n)))
}

// BucketOf classifies a record.
func BucketOf(r Record) Bucket {
	switch r.State {
	case StateKnownPreviously:
		return BucketKnown
	case StateTrashWord:
		return BucketTrash
	case StateLearned:
		return BucketLearned
	default:
		return LevelBucket(r.LadderIndex)
	}
}

// Level extracts the ladder level of a level bucket.
func (b Bucket) Level() (uint8, bool) {
	rest, ok := strings.CutPrefix(string(b), levelBucketPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(rest, 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(n), true
}

// rank orders buckets as known, trash, level_0..level_n, learned.
func (b Bucket) rank() int {
	switch b {
	case BucketKnown:
		return 0
	case BucketTrash:
		return 1
	case BucketLearned:
		return 1 << 10
	}
	if n, ok := b.Level(); ok {
		return 2 + int(n)
	}
	return 1 << 11
}

// StateCounts maps buckets to record counts.
type StateCounts map[Bucket]uint64

// Buckets returns the populated buckets in display order.
func (c StateCounts) Buckets() []Bucket {
	out := make([]Bucket, 0, len(c))
	for b := range c {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].rank() != out[j].rank() {
			return out[i].rank() < out[j].rank()
		}
		return out[i] < out[j]
	})
	return out
}

// Total sums all buckets.
func (c StateCounts) Total() uint64 {
	var total uint64
	for _, n := range c {
		total += n
	}
	return total
}

// DayStatistics is the activity recorded for one day.
type DayStatistics struct {
	Attempts       AttemptStats `json:"attempts" yaml:"attempts"`
	NewWords       uint64       `json:"new_words" yaml:"new_words"`
	CountsByState  StateCounts  `json:"counts_by_state,omitempty" yaml:"counts_by_state,omitempty"`
	WorkingSeconds float64      `json:"working_seconds" yaml:"working_seconds"`
}

// Statistics holds the per-day activity history.
type Statistics struct {
	ByDay map[Day]*DayStatistics `json:"by_day"`
}

// NewStatistics returns an empty history.
func NewStatistics() Statistics {
	return Statistics{ByDay: make(map[Day]*DayStatistics)}
}

// Day returns the entry for d, creating it on first use.
func (s *Statistics) Day(d Day) *DayStatistics {
	if s.ByDay == nil {
		s.ByDay = make(map[Day]*DayStatistics)
	}
	entry, ok := s.ByDay[d]
	if !ok {
		entry = &DayStatistics{}
		s.ByDay[d] = entry
	}
	return entry
}

// Lookup returns the entry for d without creating it.
func (s Statistics) Lookup(d Day) (DayStatistics, bool) {
	entry, ok := s.ByDay[d]
	if !ok || entry == nil {
		return DayStatistics{}, false
	}
	return *entry, true
}

// Days returns the recorded days in ascending order.
func (s Statistics) Days() []Day {
	days := make([]Day, 0, len(s.ByDay))
	for d := range s.ByDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// Clone deep-copies the history.
func (s Statistics) Clone() Statistics {
	out := NewStatistics()
	for d, entry := range s.ByDay {
		if entry == nil {
			continue
		}
		c := *entry
		if entry.CountsByState != nil {
			c.CountsByState = make(StateCounts, len(entry.CountsByState))
			for k, v := range entry.CountsByState {
				c.CountsByState[k] = v
			}
		}
		out.ByDay[d] = &c
	}
	return out
}

func (s DayStatistics) String() string {
	return fmt.Sprintf("attempts=%d/%d new=%d working=%.0fs", s.Attempts.Correct, s.Attempts.Total(), s.NewWords, s.WorkingSeconds)
}
