package input

// ScriptedBackend replays predefined event batches, one batch per Poll
// call. It drives the keypad deterministically in tests.
type ScriptedBackend struct {
	batches [][]Event
}

// NewScripted creates a backend that returns one batch per Poll call,
// in order, then empty results.
func NewScripted(batches ...[]Event) *ScriptedBackend {
	return &ScriptedBackend{batches: batches}
}

// Poll returns the next scripted batch.
func (s *ScriptedBackend) Poll() ([]Event, error) {
	if len(s.batches) == 0 {
		return nil, nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch, nil
}

var _ Backend = (*ScriptedBackend)(nil)
