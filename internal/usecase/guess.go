package usecase

import "slices"

// Answer is the verdict on one input field.
type Answer struct {
	Expected string `json:"expected"`
	Given    string `json:"given"`
	Correct  bool   `json:"correct"`
	// Guess marks answers from hidden-prompt fields.
	Guess bool `json:"guess"`
}

// MatchGuesses pairs guesses with expected translations regardless of order.
// Exact matches are paired first; every remaining guess is then paired with
// the next unmatched expected translation and marked incorrect. Both slices
// are expected to have the same length.
func MatchGuesses(expected, given []string) []Answer {
	remaining := slices.Clone(expected)
	var matched []string
	for _, g := range given {
		if i := slices.Index(remaining, g); i >= 0 {
			matched = append(matched, remaining[i])
			remaining = slices.Delete(remaining, i, i+1)
		}
	}

	out := make([]Answer, 0, len(given))
	for _, g := range given {
		if i := slices.Index(matched, g); i >= 0 {
			matched = slices.Delete(matched, i, i+1)
			out = append(out, Answer{Expected: g, Given: g, Correct: true, Guess: true})
			continue
		}
		var exp string
		if len(remaining) > 0 {
			exp, remaining = remaining[0], remaining[1:]
		}
		out = append(out, Answer{Expected: exp, Given: g, Guess: true})
	}
	return out
}
