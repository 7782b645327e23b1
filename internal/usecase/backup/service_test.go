package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eslsoft/wordladder/internal/entity"
)

type memoryRepo struct {
	mu   sync.RWMutex
	blob []byte
}

func (r *memoryRepo) Load(context.Context) (*entity.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.blob == nil {
		return nil, nil
	}
	var st entity.State
	if err := json.Unmarshal(r.blob, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *memoryRepo) Save(_ context.Context, st *entity.State) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blob = blob
	return nil
}

type countingProgress struct {
	totals map[string]int
	done   map[string]int
}

func (p *countingProgress) StartSection(section string, total int) { p.totals[section] = total }
func (p *countingProgress) Increment(section string, delta int)    { p.done[section] += delta }
func (p *countingProgress) FinishSection(string)                   {}

func seedState(t *testing.T) *entity.State {
	t.Helper()
	st := entity.NewState(entity.DefaultLadder())
	day := st.Statistics.Day(20000)
	if err := st.Words.Add("cat", entity.DispositionLearn([]string{"kot", "koshka"}, nil), 20000, day); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.Words.Add("the", entity.DispositionTrash(), 20000, day); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.Words.RegisterAttempt("cat", "kot", true, 20000, st.Ladder, day); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	day.WorkingSeconds = 42
	return st
}

func newSeededService(t *testing.T) (*Service, *memoryRepo, *entity.State) {
	t.Helper()
	repo := &memoryRepo{}
	st := seedState(t)
	if err := repo.Save(context.Background(), st); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, repo, st
}

func TestServiceExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _, want := newSeededService(t)

	progress := &countingProgress{totals: map[string]int{}, done: map[string]int{}}
	var buf bytes.Buffer
	if err := src.Export(ctx, &buf, WithProgressReporter(progress)); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if progress.totals[SectionWords] != 4 || progress.done[SectionLadder] != 5 || progress.done[SectionStatistics] != 1 {
		t.Fatalf("unexpected progress %+v", progress)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1+5+4+1 {
		t.Fatalf("expected 11 records, got %d", len(lines))
	}

	dstRepo := &memoryRepo{}
	if err := NewService(dstRepo).Import(ctx, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	got, err := dstRepo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		wantJSON, _ := json.Marshal(want)
		gotJSON, _ := json.Marshal(got)
		t.Fatalf("state mismatch after import:\nwant %s\ngot  %s", wantJSON, gotJSON)
	}
}

func TestServiceImportSectionsKeepsRest(t *testing.T) {
	ctx := context.Background()
	src, _, want := newSeededService(t)
	var buf bytes.Buffer
	if err := src.Export(ctx, &buf, WithSections([]string{SectionWords})); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	dstRepo := &memoryRepo{}
	existing := entity.NewState(entity.DefaultLadder())
	existing.Statistics.Day(1).NewWords = 9
	if err := dstRepo.Save(ctx, existing); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := NewService(dstRepo).Import(ctx, bytes.NewReader(buf.Bytes()), WithImportSections([]string{SectionWords})); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	got, _ := dstRepo.Load(ctx)
	if !reflect.DeepEqual(got.Words.Words(), want.Words.Words()) {
		t.Fatalf("words not imported: %v", got.Words.Words())
	}
	if day, ok := got.Statistics.Lookup(1); !ok || day.NewWords != 9 {
		t.Fatalf("statistics should be untouched, got %+v", got.Statistics)
	}
}

func TestServiceImportRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"no meta":       `{"type":"word","payload":{"word":"cat","records":[{"state":"known"}]}}` + "\n",
		"bad version":   `{"type":"meta","version":7}` + "\n",
		"bad json":      `{"type":"meta","version":1}` + "\n{oops\n",
		"missing payld": `{"type":"meta","version":1}` + "\n" + `{"type":"word"}` + "\n",
		"asymmetric": `{"type":"meta","version":1}` + "\n" +
			`{"type":"rung","payload":{"position":0,"rung":{"wait_days":0,"required_count":1,"reveal_prompt":true}}}` + "\n" +
			`{"type":"word","payload":{"word":"cat","records":[{"state":"to_learn","translation":"kot"}]}}` + "\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &memoryRepo{}
			if err := NewService(repo).Import(ctx, strings.NewReader(input)); err == nil {
				t.Fatalf("expected import error")
			}
			if repo.blob != nil {
				t.Fatalf("failed import must not save")
			}
		})
	}
}

func TestServiceUnknownSection(t *testing.T) {
	svc, _, _ := newSeededService(t)
	if err := svc.Export(context.Background(), &bytes.Buffer{}, WithSections([]string{"users"})); err == nil {
		t.Fatalf("expected unknown section error")
	}
}
