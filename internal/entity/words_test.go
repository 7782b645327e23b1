package entity

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustAdd(t *testing.T, s *WordStore, word string, d Disposition, today Day) {
	t.Helper()
	if err := s.Add(word, d, today, nil); err != nil {
		t.Fatalf("add %q: %v", word, err)
	}
}

func translationsUnder(t *testing.T, s *WordStore, word string) []string {
	t.Helper()
	records, err := s.Records(word)
	if err != nil {
		t.Fatalf("records %q: %v", word, err)
	}
	return translationsOf(records)
}

func TestWordStoreAddCreatesMirrors(t *testing.T) {
	s := NewWordStore()
	var day DayStatistics
	if err := s.Add("apple", DispositionLearn([]string{"yabloko", "yablonya"}, []string{"frukt"}), 7, &day); err != nil {
		t.Fatalf("add: %v", err)
	}

	if got := translationsUnder(t, s, "apple"); !reflect.DeepEqual(got, []string{"yabloko", "yablonya", "frukt"}) {
		t.Fatalf("unexpected forward translations %v", got)
	}
	for _, tr := range []string{"yabloko", "yablonya", "frukt"} {
		if got := translationsUnder(t, s, tr); !reflect.DeepEqual(got, []string{"apple"}) {
			t.Fatalf("mirror under %q = %v", tr, got)
		}
	}
	records, _ := s.Records("frukt")
	if records[0].State != StateLearned {
		t.Fatalf("expected learned mirror, got %+v", records[0])
	}
	records, _ = s.Records("yabloko")
	if records[0] != NewToLearnRecord("apple", 7) {
		t.Fatalf("unexpected mirror record %+v", records[0])
	}
	if day.NewWords != 3 {
		t.Fatalf("expected 3 new words counted, got %d", day.NewWords)
	}
	if err := s.CheckSymmetry(); err != nil {
		t.Fatalf("symmetry: %v", err)
	}
}

func TestWordStoreAddSkipsExistingLinks(t *testing.T) {
	s := NewWordStore()
	mustAdd(t, s, "cat", DispositionLearn([]string{"koshka"}, nil), 0)
	mustAdd(t, s, "cat", DispositionLearn([]string{"koshka", "kot"}, nil), 1)

	if got := translationsUnder(t, s, "cat"); !reflect.DeepEqual(got, []string{"koshka", "kot"}) {
		t.Fatalf("duplicate link created: %v", got)
	}
	if err := s.CheckSymmetry(); err != nil {
		t.Fatalf("symmetry: %v", err)
	}
}

func TestWordStoreAddRejectsBadInput(t *testing.T) {
	s := NewWordStore()
	if err := s.Add("  ", DispositionKnown(), 0, nil); !errors.Is(err, ErrInvalidWord) {
		t.Fatalf("expected ErrInvalidWord, got %v", err)
	}
	if err := s.Add("cat", DispositionLearn(nil, []string{" "}), 0, nil); !errors.Is(err, ErrInvalidDisposition) {
		t.Fatalf("expected ErrInvalidDisposition, got %v", err)
	}
	if err := s.Add("cat", DispositionLearn([]string{"cat"}, nil), 0, nil); !errors.Is(err, ErrInvalidDisposition) {
		t.Fatalf("expected self translation to be rejected, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("failed adds left words behind: %v", s.Words())
	}
}

func TestWordStoreInertDispositions(t *testing.T) {
	s := NewWordStore()
	mustAdd(t, s, "the", DispositionKnown(), 0)
	mustAdd(t, s, "the", DispositionKnown(), 0)
	mustAdd(t, s, "xqz", DispositionTrash(), 0)

	records, _ := s.Records("the")
	if len(records) != 1 || records[0].State != StateKnownPreviously {
		t.Fatalf("unexpected records %+v", records)
	}
	learned, err := s.IsFullyLearned("xqz")
	if err != nil || !learned {
		t.Fatalf("inert word should count as learned: %v %v", learned, err)
	}
	if err := s.CheckSymmetry(); err != nil {
		t.Fatalf("symmetry: %v", err)
	}
}

func TestWordStoreRemovePrunesMirrors(t *testing.T) {
	s := NewWordStore()
	mustAdd(t, s, "apple", DispositionLearn([]string{"yablokoo"}, nil), 0)
	mustAdd(t, s, "pear", DispositionLearn([]string{"grusha"}, nil), 0)
	mustAdd(t, s, "grusha", DispositionKnown(), 0)

	if err := s.Remove("apple"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Has("apple") || s.Has("yablokoo") {
		t.Fatalf("expected apple and its only translation gone, have %v", s.Words())
	}

	if err := s.Remove("pear"); err != nil {
		t.Fatalf("remove pear: %v", err)
	}
	records, err := s.Records("grusha")
	if err != nil {
		t.Fatalf("grusha should survive with its known marker: %v", err)
	}
	if len(records) != 1 || records[0].State != StateKnownPreviously {
		t.Fatalf("unexpected grusha records %+v", records)
	}
	if err := s.Remove("pear"); !errors.Is(err, ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}
	if err := s.CheckSymmetry(); err != nil {
		t.Fatalf("symmetry: %v", err)
	}
}

func TestWordStoreRemoveKeepsOtherLinks(t *testing.T) {
	s := NewWordStore()
	mustAdd(t, s, "cat", DispositionLearn([]string{"koshka"}, nil), 0)
	mustAdd(t, s, "kitty", DispositionLearn([]string{"koshka"}, nil), 0)

	if err := s.Remove("cat"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := translationsUnder(t, s, "koshka"); !reflect.DeepEqual(got, []string{"kitty"}) {
		t.Fatalf("koshka should keep only kitty, got %v", got)
	}
	if err := s.CheckSymmetry(); err != nil {
		t.Fatalf("symmetry: %v", err)
	}
}

func TestWordStoreRenameRetargetsMirrors(t *testing.T) {
	s := NewWordStore()
	mustAdd(t, s, "colour", DispositionLearn([]string{"tsvet", "okraska"}, nil), 0)

	if err := s.Rename("colour", "color"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if s.Has("colour") {
		t.Fatal("old key still present")
	}
	for _, tr := range []string{"tsvet", "okraska"} {
		if got := translationsUnder(t, s, tr); !reflect.DeepEqual(got, []string{"color"}) {
			t.Fatalf("mirror under %q = %v", tr, got)
		}
	}
	if err := s.CheckSymmetry(); err != nil {
		t.Fatalf("symmetry: %v", err)
	}

	mustAdd(t, s, "hue", DispositionKnown(), 0)
	if err := s.Rename("color", "hue"); !errors.Is(err, ErrWordAlreadyExists) {
		t.Fatalf("expected ErrWordAlreadyExists, got %v", err)
	}
}

func TestWordStoreRenameTranslation(t *testing.T) {
	s := NewWordStore()
	mustAdd(t, s, "cat", DispositionLearn([]string{"koshak"}, nil), 0)
	mustAdd(t, s, "tomcat", DispositionLearn([]string{"koshak"}, nil), 0)

	if err := s.RenameTranslation("cat", "koshak", "kot"); err != nil {
		t.Fatalf("rename translation: %v", err)
	}
	if got := translationsUnder(t, s, "cat"); !reflect.DeepEqual(got, []string{"kot"}) {
		t.Fatalf("cat translations = %v", got)
	}
	if got := translationsUnder(t, s, "tomcat"); !reflect.DeepEqual(got, []string{"kot"}) {
		t.Fatalf("tomcat translations = %v", got)
	}
	if err := s.RenameTranslation("cat", "missing", "x"); !errors.Is(err, ErrTranslationNotFound) {
		t.Fatalf("expected ErrTranslationNotFound, got %v", err)
	}
	if err := s.CheckSymmetry(); err != nil {
		t.Fatalf("symmetry: %v", err)
	}
}

func TestWordStoreDeleteRecord(t *testing.T) {
	s := NewWordStore()
	mustAdd(t, s, "cat", DispositionLearn([]string{"koshka", "kot"}, nil), 0)

	if err := s.DeleteRecord("cat", "kot"); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if s.Has("kot") {
		t.Fatal("mirror key should be pruned")
	}
	if got := translationsUnder(t, s, "cat"); !reflect.DeepEqual(got, []string{"koshka"}) {
		t.Fatalf("cat translations = %v", got)
	}
	if err := s.DeleteRecord("cat", "koshka"); err != nil {
		t.Fatalf("delete last record: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %v", s.Words())
	}
}

func TestWordStoreEditRecord(t *testing.T) {
	ladder := twoRungLadder()
	s := NewWordStore()
	mustAdd(t, s, "cat", DispositionLearn([]string{"koshka"}, nil), 0)

	learned := StateLearned
	if err := s.EditRecord("cat", "koshka", RecordEdit{State: &learned}, 4, ladder); err != nil {
		t.Fatalf("force learned: %v", err)
	}
	records, _ := s.Records("cat")
	if records[0].State != StateLearned {
		t.Fatalf("expected learned, got %+v", records[0])
	}

	toLearn := StateToLearn
	index := uint8(1)
	if err := s.EditRecord("cat", "koshka", RecordEdit{State: &toLearn, LadderIndex: &index}, 4, ladder); err != nil {
		t.Fatalf("force to_learn: %v", err)
	}
	records, _ = s.Records("cat")
	if records[0].State != StateToLearn || records[0].LadderIndex != 1 || records[0].LastPracticed != 4 {
		t.Fatalf("unexpected record %+v", records[0])
	}

	progress := uint8(3)
	if err := s.EditRecord("cat", "koshka", RecordEdit{RungProgress: &progress}, 4, ladder); !errors.Is(err, ErrInvalidRecordEdit) {
		t.Fatalf("expected progress past rung count to fail, got %v", err)
	}
	outside := uint8(2)
	if err := s.EditRecord("cat", "koshka", RecordEdit{LadderIndex: &outside}, 4, ladder); !errors.Is(err, ErrInvalidRecordEdit) {
		t.Fatalf("expected index outside ladder to fail, got %v", err)
	}
	known := StateKnownPreviously
	if err := s.EditRecord("cat", "koshka", RecordEdit{State: &known}, 4, ladder); !errors.Is(err, ErrInvalidRecordEdit) {
		t.Fatalf("expected forcing inert state to fail, got %v", err)
	}
	stats := AttemptStats{Correct: 9, Incorrect: 1}
	if err := s.EditRecord("cat", "koshka", RecordEdit{Stats: &stats}, 4, ladder); err != nil {
		t.Fatalf("edit stats: %v", err)
	}
	records, _ = s.Records("cat")
	if records[0].Stats != stats || records[0].LadderIndex != 1 {
		t.Fatalf("unexpected record after edits %+v", records[0])
	}
	if err := s.Validate(ladder); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestWordStoreRegisterAttemptLookupMisses(t *testing.T) {
	ladder := twoRungLadder()
	s := NewWordStore()
	mustAdd(t, s, "cat", DispositionLearn([]string{"koshka"}, []string{"kot"}), 0)

	if err := s.RegisterAttempt("dog", "sobaka", true, 0, ladder, nil); !errors.Is(err, ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}
	if err := s.RegisterAttempt("cat", "sobaka", true, 0, ladder, nil); !errors.Is(err, ErrTranslationNotFound) {
		t.Fatalf("expected ErrTranslationNotFound, got %v", err)
	}
	if err := s.RegisterAttempt("cat", "kot", true, 0, ladder, nil); !errors.Is(err, ErrRecordNotPractisable) {
		t.Fatalf("expected ErrRecordNotPractisable, got %v", err)
	}
	var day DayStatistics
	if err := s.RegisterAttempt("cat", "koshka", false, 0, ladder, &day); err != nil {
		t.Fatalf("register: %v", err)
	}
	if day.Attempts.Incorrect != 1 {
		t.Fatalf("day attempts not counted: %+v", day)
	}
	if _, err := s.IsFullyLearned("dog"); !errors.Is(err, ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}
}

func TestWordStoreSymmetryDetectsBrokenMirror(t *testing.T) {
	s := NewWordStore()
	s.Restore("cat", []Record{NewToLearnRecord("koshka", 0)})
	if err := s.CheckSymmetry(); !errors.Is(err, ErrInconsistentStore) {
		t.Fatalf("expected ErrInconsistentStore, got %v", err)
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	st := NewState(DefaultLadder())
	mustAdd(t, st.Words, "the", DispositionKnown(), 0)
	mustAdd(t, st.Words, "zzkx", DispositionTrash(), 0)
	mustAdd(t, st.Words, "apple", DispositionLearn([]string{"yabloko"}, []string{"frukt"}), 3)
	if err := st.Words.RegisterAttempt("apple", "yabloko", true, 3, st.Ladder, st.Statistics.Day(3)); err != nil {
		t.Fatalf("register: %v", err)
	}
	st.Statistics.Day(3).CountsByState = StateCounts{BucketKnown: 1, LevelBucket(0): 2}

	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded := &State{}
	if err := json.Unmarshal(raw, decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := decoded.Validate(); err != nil {
		t.Fatalf("decoded state invalid: %v", err)
	}
	if !reflect.DeepEqual(st, decoded) {
		t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", st, decoded)
	}
}

func TestWordStoreReconcileShorterLadder(t *testing.T) {
	s := NewWordStore()
	s.Restore("cat", []Record{{State: StateToLearn, Translation: "koshka", LadderIndex: 2}})
	s.Restore("koshka", []Record{{State: StateToLearn, Translation: "cat", LadderIndex: 1, RungProgress: 4}})

	ladder := Ladder{ShowRung(0, 2), GuessRung(0, 3)}
	if n := s.Reconcile(ladder); n != 2 {
		t.Fatalf("expected 2 adjusted records, got %d", n)
	}
	if err := s.Validate(ladder); err != nil {
		t.Fatalf("validate after reconcile: %v", err)
	}
	records, _ := s.Records("cat")
	if records[0].State != StateLearned {
		t.Fatalf("record past the ladder should be learned: %+v", records[0])
	}
	records, _ = s.Records("koshka")
	if records[0].RungProgress != 2 {
		t.Fatalf("progress should be capped at 2: %+v", records[0])
	}
}
