package entity

// State is everything the trainer persists: the word store, the ladder it was
// practiced against, and the activity history.
type State struct {
	Words      *WordStore `json:"words"`
	Ladder     Ladder     `json:"ladder"`
	Statistics Statistics `json:"statistics"`
}

// NewState returns an empty state for ladder.
func NewState(ladder Ladder) *State {
	return &State{
		Words:      NewWordStore(),
		Ladder:     ladder.Clone(),
		Statistics: NewStatistics(),
	}
}

// Validate checks the ladder and the store against it.
func (s *State) Validate() error {
	if err := s.Ladder.Validate(); err != nil {
		return err
	}
	if s.Words == nil {
		return nil
	}
	return s.Words.Validate(s.Ladder)
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	out := &State{
		Ladder:     s.Ladder.Clone(),
		Statistics: s.Statistics.Clone(),
	}
	if s.Words != nil {
		out.Words = s.Words.Clone()
	} else {
		out.Words = NewWordStore()
	}
	return out
}
