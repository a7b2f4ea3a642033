package translit

// noTarget marks trie states which do not terminate a spelling.
// NUL is never a meaningful transliteration target.
const noTarget rune = 0

// targetStore keeps the target character of every complete spelling,
// directly indexed by frozen trie state.
type targetStore struct {
	targets []rune // will grow with demand
	count   int
}

func newTargetStore(states int) *targetStore {
	return &targetStore{
		targets: make([]rune, states),
	}
}

func (s *targetStore) ensure(state uint32) {
	if int(state) < len(s.targets) {
		return
	}
	s.targets = append(s.targets, make([]rune, int(state)+1-len(s.targets))...)
}

// Put registers target for state. The first registration wins: Put reports
// false and leaves the store untouched if state already carries a target.
func (s *targetStore) Put(state uint32, target rune) bool {
	if state == 0 || target == noTarget {
		return false
	}
	s.ensure(state)
	if s.targets[state] != noTarget {
		return false
	}
	s.targets[state] = target
	s.count++
	return true
}

// Target returns the target character for state, if state ends a spelling.
func (s *targetStore) Target(state uint32) (rune, bool) {
	if int(state) >= len(s.targets) {
		return noTarget, false
	}
	t := s.targets[state]
	return t, t != noTarget
}

// Len returns the number of states carrying a target.
func (s *targetStore) Len() int { return s.count }
