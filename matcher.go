package translit

// Matcher is the incremental transliteration engine for one composition.
//
// Typed characters are appended one at a time. The output of a matcher has two
// regions: a completed prefix, which will never change regardless of further
// input, and a tentative tail rendered from the pending input, which may still
// be extended or rewritten.
//
// Pending input is held back only while it is a strict prefix of a longer
// spelling. As soon as a character cannot extend the pending input, the longest
// complete spelling at its start is committed (or, if there is none, its first
// character is passed through unchanged) and the remainder is matched anew.
//
// A Matcher must not be used from more than one goroutine at a time.
type Matcher struct {
	table     *Table
	pending   []rune // input not yet resolved, a live trie path
	state     uint32 // trie state reached by pending
	completed []rune // final output
	tentative []rune // rendering of pending
	matched   bool
}

// NewMatcher creates a matcher bound to table. A nil table is treated as the
// null table.
func NewMatcher(table *Table) *Matcher {
	if table == nil {
		table = NullTable()
	}
	return &Matcher{
		table: table,
		state: table.automaton.Root,
	}
}

// Table returns the table the matcher is bound to.
func (m *Matcher) Table() *Table {
	return m.table
}

// Append feeds text, one character at a time. Appending nothing changes no
// state and leaves MatchedSomething false.
func (m *Matcher) Append(text string) {
	m.matched = false
	for _, r := range text {
		m.push(r)
	}
	m.render()
}

// AppendRune feeds a single character.
func (m *Matcher) AppendRune(r rune) {
	m.matched = false
	m.push(r)
	m.render()
}

// MatchedSomething reports whether the most recent append touched any mapping
// state at all. If it is false, the appended characters have been passed
// through unchanged and the caller may commit them as typed.
func (m *Matcher) MatchedSomething() bool {
	return m.matched
}

// CompletedSize returns the number of final output characters (runes) at the
// start of Result.
func (m *Matcher) CompletedSize() int {
	return len(m.completed)
}

// Result returns the complete output: final characters followed by the
// tentative rendering of pending input.
func (m *Matcher) Result() string {
	if len(m.tentative) == 0 {
		return string(m.completed)
	}
	out := make([]rune, 0, len(m.completed)+len(m.tentative))
	out = append(out, m.completed...)
	out = append(out, m.tentative...)
	return string(out)
}

// Completed returns the final part of Result.
func (m *Matcher) Completed() string {
	return string(m.completed)
}

// Tentative returns the revisable part of Result.
func (m *Matcher) Tentative() string {
	return string(m.tentative)
}

// Pending returns the input characters which are not resolved yet.
func (m *Matcher) Pending() string {
	return string(m.pending)
}

// ClearCompleted drops the final part of the output, after the caller has
// transferred it to its destination. Pending input is kept.
func (m *Matcher) ClearCompleted() {
	m.completed = m.completed[:0]
}

// Clear resets the matcher completely, discarding pending input and all output.
func (m *Matcher) Clear() {
	m.pending = m.pending[:0]
	m.completed = m.completed[:0]
	m.tentative = m.tentative[:0]
	m.state = m.table.automaton.Root
	m.matched = false
}

// Flush makes the tentative output final, as currently rendered.
func (m *Matcher) Flush() {
	m.completed = append(m.completed, m.tentative...)
	m.pending = m.pending[:0]
	m.tentative = m.tentative[:0]
	m.state = m.table.automaton.Root
}

// Backspace removes the most recently typed pending character. It returns
// false if there is no pending input; final output is never edited.
func (m *Matcher) Backspace() bool {
	if len(m.pending) == 0 {
		return false
	}
	m.pending = m.pending[:len(m.pending)-1]
	state, ok := m.table.automaton.Walk(m.pending)
	assert(ok, "prefix of pending input is not a trie path")
	m.state = state
	m.render()
	return true
}

func (m *Matcher) push(r rune) {
	if next, ok := m.table.automaton.Step(m.state, r); ok {
		m.matched = true
		m.pending = append(m.pending, r)
		m.state = next
		m.settle()
		return
	}
	if len(m.pending) == 0 { // r does not start any spelling
		tracer().Debugf("pass through %q", r)
		m.completed = append(m.completed, r)
		return
	}
	m.matched = true
	m.pending = append(m.pending, r)
	m.backoff()
}

// settle commits pending input which has reached a trie leaf: no longer
// spelling can follow, so the match is final.
func (m *Matcher) settle() {
	if m.table.automaton.HasChildren(m.state) {
		return
	}
	target, ok := m.table.targets.Target(m.state)
	assert(ok, "trie leaf without target")
	tracer().Debugf("commit %q -> %q", string(m.pending), target)
	m.completed = append(m.completed, target)
	m.pending = m.pending[:0]
	m.state = m.table.automaton.Root
}

// backoff resolves pending input whose last character broke the trie path.
func (m *Matcher) backoff() {
	rest := append([]rune(nil), m.pending...)
	m.pending = m.pending[:0]
	m.state = m.table.automaton.Root
	for len(rest) > 0 {
		exact, target, live, state := m.table.match(rest)
		if live == len(rest) {
			m.pending = append(m.pending, rest...)
			m.state = state
			m.settle()
			return
		}
		if exact > 0 {
			tracer().Debugf("commit %q -> %q on dead end", string(rest[:exact]), target)
			m.completed = append(m.completed, target)
			rest = rest[exact:]
		} else {
			tracer().Debugf("pass through %q on dead end", rest[0])
			m.completed = append(m.completed, rest[0])
			rest = rest[1:]
		}
	}
}

// render computes the tentative output: pending input segmented by longest
// complete spellings, with unmatched characters passed through.
func (m *Matcher) render() {
	m.tentative = m.tentative[:0]
	rest := m.pending
	for len(rest) > 0 {
		exact, target, _, _ := m.table.match(rest)
		if exact > 0 {
			m.tentative = append(m.tentative, target)
			rest = rest[exact:]
		} else {
			m.tentative = append(m.tentative, rest[0])
			rest = rest[1:]
		}
	}
}
