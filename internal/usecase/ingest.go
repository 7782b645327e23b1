package usecase

import (
	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/pkg/textscan"
)

// IngestReport splits scanned words by what the store already knows about
// them. Every list keeps the scan's frequency order.
type IngestReport struct {
	WordsCount  int                   `json:"words_count" yaml:"words_count"`
	UniqueCount int                   `json:"unique_count" yaml:"unique_count"`
	Unknown     []textscan.Occurrence `json:"unknown" yaml:"unknown"`
	Learning    []string              `json:"learning" yaml:"learning"`
	Settled     []string              `json:"settled" yaml:"settled"`
}

// ClassifyScan sorts scanned words into unknown, still learning, and settled
// (known, trash or fully learned).
func ClassifyScan(store *entity.WordStore, res textscan.Result) IngestReport {
	report := IngestReport{WordsCount: res.WordsCount, UniqueCount: res.UniqueCount}
	for _, occ := range res.Words {
		if !store.Has(occ.Word) {
			report.Unknown = append(report.Unknown, occ)
			continue
		}
		learned, err := store.IsFullyLearned(occ.Word)
		if err == nil && learned {
			report.Settled = append(report.Settled, occ.Word)
		} else {
			report.Learning = append(report.Learning, occ.Word)
		}
	}
	return report
}
