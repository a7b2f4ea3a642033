/*
Package dat implements a frozen double-array trie over a dense rune alphabet.

It is the read-only lookup structure behind transliteration tables: every
spelling of a table is a path from Root, and the state reached after consuming
a spelling identifies it for payload lookup in the owning table.
*/
package dat

// DAT is a frozen double-array trie for transliteration spellings.
//   - Nodes/states are indices into Base/Check (0 is unused; Root is typically 1).
//   - Transition: t := Base[s] + c; valid if Check[t] == s; next state is t.
//   - c is a dense alphabet ID in [1..Sigma]. c==0 means "not in alphabet".
//
// A state with Base[s] == 0 has no outgoing transitions, i.e. no spelling
// continues beyond it.
type DAT struct {
	// Root state index (commonly 1).
	Root uint32

	// Sigma is the size of the dense alphabet (maximum dense ID).
	Sigma uint16

	// Base and Check are the classic double-array.
	Base  []int32 // len == N
	Check []int32 // len == N

	// Alphabet maps runes of the spelling alphabet to dense IDs [1..Sigma].
	Alphabet RuneMap
}

// NStates returns number of allocated slots/states in the arrays.
func (d *DAT) NStates() int { return len(d.Base) }

// Transition returns (nextState, ok). dense must be in [1..Sigma].
func (d *DAT) Transition(state uint32, dense uint16) (uint32, bool) {
	if dense == 0 || int(state) >= len(d.Base) || int(state) >= len(d.Check) {
		return 0, false
	}
	t := d.Base[state] + int32(dense)
	if d.Base[state] == 0 || t <= 0 || int(t) >= len(d.Check) {
		return 0, false
	}
	if d.Check[t] != int32(state) {
		return 0, false
	}
	return uint32(t), true
}

// Step maps r to its dense ID and follows the transition from state.
func (d *DAT) Step(state uint32, r rune) (uint32, bool) {
	return d.Transition(state, d.Alphabet.Dense(r))
}

// Walk follows key from Root and returns the state reached.
// An empty key yields Root.
func (d *DAT) Walk(key []rune) (uint32, bool) {
	state := d.Root
	for _, r := range key {
		next, ok := d.Step(state, r)
		if !ok {
			return 0, false
		}
		state = next
	}
	return state, true
}

// HasChildren reports whether at least one transition leaves state.
func (d *DAT) HasChildren(state uint32) bool {
	return int(state) < len(d.Base) && d.Base[state] != 0
}

// Dense maps a rune to a dense alphabet ID.
// Returns 0 if the rune is not in the alphabet.
func (d *DAT) Dense(r rune) uint16 { return d.Alphabet.Dense(r) }
