// Package backup streams the trainer state to and from newline-delimited JSON.
package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/repository"
)

const formatVersion = 1

// Sections of a backup file.
const (
	SectionLadder     = "ladder"
	SectionWords      = "words"
	SectionStatistics = "statistics"
)

// AllSections lists every section in export order.
var AllSections = []string{SectionLadder, SectionWords, SectionStatistics}

type ProgressReporter interface {
	StartSection(section string, total int)
	Increment(section string, delta int)
	FinishSection(section string)
}

type noopProgress struct{}

func (noopProgress) StartSection(string, int) {}
func (noopProgress) Increment(string, int)    {}
func (noopProgress) FinishSection(string)     {}

// Service exports and imports the state held by a repository.
type Service struct {
	repo  repository.StateRepository
	clock func() time.Time
}

// NewService constructs a backup service bound to the state repository.
func NewService(repo repository.StateRepository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	sections []string
	reporter ProgressReporter
}

// WithSections restricts export to the given sections.
func WithSections(sections []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(sections) == 0 {
			return
		}
		cfg.sections = append([]string{}, sections...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	sections []string
}

// WithImportSections restricts import to the given sections. Sections not
// imported keep their current content.
func WithImportSections(sections []string) ImportOption {
	return func(cfg *importConfig) {
		if len(sections) == 0 {
			return
		}
		cfg.sections = append([]string{}, sections...)
	}
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	LadderHash string         `json:"ladder_hash,omitempty"`
	Sections   []string       `json:"sections,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	LadderHash string          `json:"ladder_hash"`
	Sections   []string        `json:"sections"`
	Counts     map[string]int  `json:"counts"`
	Payload    json.RawMessage `json:"payload"`
}

type rungPayload struct {
	Position int         `json:"position"`
	Rung     entity.Rung `json:"rung"`
}

type wordPayload struct {
	Word    string          `json:"word"`
	Records []entity.Record `json:"records"`
}

type dayPayload struct {
	Day   entity.Day           `json:"day"`
	Stats entity.DayStatistics `json:"stats"`
}

// Record types per section.
var sectionRecordType = map[string]string{
	SectionLadder:     "rung",
	SectionWords:      "word",
	SectionStatistics: "day",
}

// Export writes a meta record followed by one record per rung, word and day.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	sections, err := selectSections(cfg.sections)
	if err != nil {
		return err
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	st, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if st == nil {
		st = entity.NewState(entity.DefaultLadder())
	}

	payloads := map[string][]any{
		SectionLadder: lo.Map(st.Ladder, func(r entity.Rung, i int) any {
			return rungPayload{Position: i, Rung: r}
		}),
		SectionWords: lo.Map(st.Words.Words(), func(word string, _ int) any {
			records, _ := st.Words.Records(word)
			return wordPayload{Word: word, Records: records}
		}),
		SectionStatistics: lo.Map(st.Statistics.Days(), func(d entity.Day, _ int) any {
			stats, _ := st.Statistics.Lookup(d)
			return dayPayload{Day: d, Stats: stats}
		}),
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := s.clock().UTC()
	meta := record{
		Type:       "meta",
		Version:    formatVersion,
		ExportedAt: &now,
		LadderHash: ladderHash(st.Ladder),
		Sections:   sections,
		Counts: lo.SliceToMap(sections, func(sec string) (string, int) {
			return sec, len(payloads[sec])
		}),
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, sec := range sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		reporter.StartSection(sec, len(payloads[sec]))
		for _, p := range payloads[sec] {
			if err := writeRecord(writer, record{Type: sectionRecordType[sec], Payload: p}); err != nil {
				return err
			}
			reporter.Increment(sec, 1)
		}
		reporter.FinishSection(sec)
	}
	return writer.Flush()
}

// Import reads a backup and saves it. The imported sections replace the
// current ones; the resulting state is validated before anything is saved.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) error {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	sections, err := selectSections(cfg.sections)
	if err != nil {
		return err
	}
	wanted := lo.SliceToMap(sections, func(sec string) (string, bool) {
		return sectionRecordType[sec], true
	})

	current, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if current == nil {
		current = entity.NewState(entity.DefaultLadder())
	}
	next := current.Clone()
	if wanted["rung"] {
		next.Ladder = nil
	}
	if wanted["word"] {
		next.Words = entity.NewWordStore()
	}
	if wanted["day"] {
		next.Statistics = entity.NewStatistics()
	}

	br := bufio.NewReader(r)
	var (
		metaSeen bool
		meta     rawRecord
		rungs    []rungPayload
	)
	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			if rec.Type != "meta" && !metaSeen {
				return errors.New("backup: meta record must come first")
			}
			switch {
			case rec.Type == "meta":
				metaSeen = true
				meta = rec
			case !wanted[rec.Type]:
				// Skip records for sections not requested.
			case len(rec.Payload) == 0:
				return fmt.Errorf("backup: missing payload for %s record", rec.Type)
			default:
				if err := applyRecord(next, rec, &rungs); err != nil {
					return err
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if !metaSeen {
		return errors.New("backup: missing meta record")
	}
	if meta.Version != formatVersion {
		return fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}
	if wanted["rung"] {
		slices.SortFunc(rungs, func(a, b rungPayload) int { return a.Position - b.Position })
		next.Ladder = lo.Map(rungs, func(p rungPayload, _ int) entity.Rung { return p.Rung })
		if meta.LadderHash != "" && meta.LadderHash != ladderHash(next.Ladder) {
			return errors.New("backup: ladder does not match meta checksum")
		}
	}

	if err := next.Validate(); err != nil {
		return fmt.Errorf("backup: imported state is invalid: %w", err)
	}
	return s.repo.Save(ctx, next)
}

func applyRecord(st *entity.State, rec rawRecord, rungs *[]rungPayload) error {
	switch rec.Type {
	case "rung":
		var p rungPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode rung: %w", err)
		}
		*rungs = append(*rungs, p)
	case "word":
		var p wordPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode word: %w", err)
		}
		if p.Word == "" || len(p.Records) == 0 {
			return fmt.Errorf("backup: empty word record %q", p.Word)
		}
		st.Words.Restore(p.Word, p.Records)
	case "day":
		var p dayPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode day: %w", err)
		}
		*st.Statistics.Day(p.Day) = p.Stats
	default:
		return fmt.Errorf("backup: unknown record type %q", rec.Type)
	}
	return nil
}

func selectSections(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return append([]string{}, AllSections...), nil
	}
	for _, sec := range requested {
		if !slices.Contains(AllSections, sec) {
			return nil, fmt.Errorf("backup: unknown section %q", sec)
		}
	}
	return lo.Filter(AllSections, func(sec string, _ int) bool { return slices.Contains(requested, sec) }), nil
}

func ladderHash(ladder entity.Ladder) string {
	data, _ := json.Marshal(ladder)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:])
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return err
	}
	return nil
}
