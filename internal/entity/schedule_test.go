package entity

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/samber/lo"
)

func TestDueWordsSplitsNewAndRepeat(t *testing.T) {
	ladder := Ladder{ShowRung(0, 1), GuessRung(1, 1), GuessRung(5, 1)}
	s := NewWordStore()
	mustAdd(t, s, "cat", DispositionLearn([]string{"koshka"}, nil), 0)
	mustAdd(t, s, "dog", DispositionLearn([]string{"sobaka"}, nil), 0)
	mustAdd(t, s, "the", DispositionKnown(), 0)

	// dog and its mirror leave the first rung on day 0
	for _, pair := range [][2]string{{"dog", "sobaka"}, {"sobaka", "dog"}} {
		if err := s.RegisterAttempt(pair[0], pair[1], true, 0, ladder, nil); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	repeat, fresh := s.DueWords(0, ladder)
	if len(repeat) != 0 {
		t.Fatalf("nothing should repeat on day 0, got %v", repeat)
	}
	if !reflect.DeepEqual(fresh, []string{"cat", "koshka"}) {
		t.Fatalf("unexpected new words %v", fresh)
	}

	repeat, fresh = s.DueWords(1, ladder)
	if !reflect.DeepEqual(repeat, []string{"dog", "sobaka"}) {
		t.Fatalf("unexpected repeat words %v", repeat)
	}
	if !reflect.DeepEqual(fresh, []string{"cat", "koshka"}) {
		t.Fatalf("unexpected new words %v", fresh)
	}
}

func TestPlanForWordClassifiesRecords(t *testing.T) {
	ladder := Ladder{ShowRung(0, 1), GuessRung(0, 1), GuessRung(3, 1)}
	s := NewWordStore()
	s.Restore("cat", []Record{
		NewToLearnRecord("koshka", 0),
		{State: StateToLearn, Translation: "kot", LadderIndex: 1},
		{State: StateToLearn, Translation: "kotik", LadderIndex: 2, LastPracticed: 2},
		NewLearnedRecord("koshak", AttemptStats{}),
	})

	plan, err := s.PlanForWord("cat", 3, ladder)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	want := Plan{Known: []string{"kotik", "koshak"}, ToType: []string{"koshka"}, ToGuess: []string{"kot"}}
	if !reflect.DeepEqual(plan, want) {
		t.Fatalf("plan = %+v, want %+v", plan, want)
	}
	if _, err := s.PlanForWord("dog", 3, ladder); !errors.Is(err, ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}
}

func TestPlanForWordAgreesWithIsDue(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	ladder := DefaultLadder()
	for i := 0; i < 500; i++ {
		level := uint8(rng.IntN(len(ladder)))
		r := Record{
			State:         StateToLearn,
			Translation:   "t",
			LadderIndex:   level,
			RungProgress:  uint8(rng.IntN(int(ladder[level].RequiredCount))),
			LastPracticed: Day(rng.IntN(40)),
		}
		today := Day(rng.IntN(60))

		s := NewWordStore()
		s.Restore("w", []Record{r})
		plan, err := s.PlanForWord("w", today, ladder)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		due := r.IsDue(today, ladder)
		practiced := len(plan.ToType)+len(plan.ToGuess) == 1
		known := len(plan.Known) == 1
		if due != practiced || due == known {
			t.Fatalf("record %+v on day %d: IsDue=%v plan=%+v", r, today, due, plan)
		}
		if due && (len(plan.ToType) == 1) != ladder[level].RevealPrompt {
			t.Fatalf("record %+v on day %d classified into the wrong list: %+v", r, today, plan)
		}
	}
}

func TestWordLevelOverdueAndRemaining(t *testing.T) {
	ladder := Ladder{ShowRung(0, 3), GuessRung(4, 2)}
	s := NewWordStore()
	s.Restore("cat", []Record{
		{State: StateToLearn, Translation: "koshka", RungProgress: 2},
		{State: StateToLearn, Translation: "kot", LadderIndex: 1, LastPracticed: 1},
		KnownRecord(),
	})

	if got := s.OverdueDays("cat", 10, ladder); got != 10 {
		t.Fatalf("overdue = %d, want 10", got)
	}
	if got := s.RemainingAttempts("cat", 10, ladder); got != 2 {
		t.Fatalf("remaining = %d, want 2", got)
	}
	if got := s.RemainingAttempts("cat", 3, ladder); got != 1 {
		t.Fatalf("remaining on day 3 = %d, want 1", got)
	}
	if got := s.OverdueDays("missing", 10, ladder); got != 0 {
		t.Fatalf("unknown word overdue = %d", got)
	}
	due := s.DueTranslations("cat", 3, ladder)
	if !lo.Contains(due, "koshka") || lo.Contains(due, "kot") {
		t.Fatalf("unexpected due translations %v", due)
	}
	if !s.HasHint("cat", ladder) {
		t.Fatal("cat has a record on a reveal rung")
	}
}
