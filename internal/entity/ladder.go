package entity

import "fmt"

// Rung is one step of the repetition ladder.
type Rung struct {
	// WaitDays is the pause since the last advance before the rung may be practiced.
	WaitDays uint8 `json:"wait_days" yaml:"wait_days" mapstructure:"wait_days"`
	// RequiredCount is how many correct answers clear the rung.
	RequiredCount uint8 `json:"required_count" yaml:"required_count" mapstructure:"required_count"`
	// RevealPrompt shows the expected answer next to the input (typing mode).
	// When false the learner has to recall the translation unaided.
	RevealPrompt bool `json:"reveal_prompt" yaml:"reveal_prompt" mapstructure:"reveal_prompt"`
}

// ShowRung builds a rung that reveals the answer.
func ShowRung(waitDays, count uint8) Rung {
	return Rung{WaitDays: waitDays, RequiredCount: count, RevealPrompt: true}
}

// GuessRung builds a rung that hides the answer.
func GuessRung(waitDays, count uint8) Rung {
	return Rung{WaitDays: waitDays, RequiredCount: count}
}

func (r Rung) String() string {
	mode := "guess"
	if r.RevealPrompt {
		mode = "show"
	}
	return fmt.Sprintf("(wait %d, count %d, %s)", r.WaitDays, r.RequiredCount, mode)
}

// Ladder is the ordered list of rungs shared by every record. Index order is
// the only progression order.
type Ladder []Rung

// DefaultLadder returns the ladder used when configuration supplies none.
func DefaultLadder() Ladder {
	return Ladder{
		ShowRung(0, 2),
		GuessRung(0, 3),
		GuessRung(2, 3),
		GuessRung(7, 2),
		GuessRung(20, 2),
	}
}

// Rung returns the rung at index, or false past the end of the ladder.
func (l Ladder) Rung(index uint8) (Rung, bool) {
	if int(index) >= len(l) {
		return Rung{}, false
	}
	return l[index], true
}

// Validate checks that the ladder can drive the state machine.
func (l Ladder) Validate() error {
	if len(l) == 0 {
		return ErrEmptyLadder
	}
	if len(l) > 255 {
		return fmt.Errorf("%w: %d rungs exceed the maximum of 255", ErrInvalidLadder, len(l))
	}
	for i, rung := range l {
		if rung.RequiredCount == 0 {
			return fmt.Errorf("%w: rung %d requires zero repetitions", ErrInvalidLadder, i)
		}
	}
	return nil
}

// Clone returns an independent copy.
func (l Ladder) Clone() Ladder {
	if l == nil {
		return nil
	}
	out := make(Ladder, len(l))
	copy(out, l)
	return out
}
