/*
Package session connects a Matcher to a text input host.

The host is whatever owns the document being typed into: an editor widget, a
terminal line, an input method framework. It is told to commit final text and
to show, update or end an inline composition holding the tentative text.

A Session is driven by key events:

	KeyText     for keys producing characters
	Finish      for any other key (arrows, Enter, function keys)
	Terminated  when the host itself ended the composition
	Backspace   to edit the composition

Per key, final output is committed first; the tentative tail, if any, then
becomes the composition. Characters the mapping does not know are committed
as typed.
*/
package session

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/translit"
)

// tracer writes to trace with key 'translit.session'
func tracer() tracing.Trace {
	return tracing.Select("translit.session")
}

// Host receives the output of a session.
type Host interface {
	// Commit replaces the composition, if there is one, with text and ends
	// the composition. Without a composition text is inserted at the cursor.
	Commit(text string) error
	// SetComposition starts a composition or replaces its text.
	SetComposition(text string) error
	// EndComposition ends the composition, keeping its text.
	EndComposition() error
}

// Session is the per-document transliteration state.
// A Session must not be used from more than one goroutine at a time.
type Session struct {
	host      Host
	matcher   *translit.Matcher
	composing bool
	disabled  bool
}

// New creates an enabled session. A nil table passes all input through.
func New(host Host, table *translit.Table) *Session {
	return &Session{
		host:    host,
		matcher: translit.NewMatcher(table),
	}
}

// Table returns the active mapping table.
func (s *Session) Table() *translit.Table {
	return s.matcher.Table()
}

// Composing reports whether the host currently shows a composition.
func (s *Session) Composing() bool {
	return s.composing
}

// Enabled reports whether keys are transliterated.
func (s *Session) Enabled() bool {
	return !s.disabled
}

// SetEnabled switches transliteration on or off. Switching off finishes the
// current composition.
func (s *Session) SetEnabled(enabled bool) error {
	if enabled == !s.disabled {
		return nil
	}
	tracer().Debugf("session enabled=%v", enabled)
	if !enabled {
		if err := s.Finish(); err != nil {
			return err
		}
	}
	s.disabled = !enabled
	return nil
}

// SetTable switches to another mapping. The current composition is finished
// first. Switching to the active table does nothing.
func (s *Session) SetTable(table *translit.Table) error {
	if table == nil {
		table = translit.NullTable()
	}
	if table == s.matcher.Table() {
		return nil
	}
	tracer().Infof("session switches to %s", table.Identifier)
	if err := s.Finish(); err != nil {
		return err
	}
	s.matcher = translit.NewMatcher(table)
	return nil
}

// KeyText handles a key producing chars. An empty chars is treated like a
// key without text and finishes the composition.
func (s *Session) KeyText(chars string) error {
	if chars == "" {
		return s.Finish()
	}
	if s.disabled {
		return s.fail(s.host.Commit(chars))
	}
	s.matcher.Append(chars)
	if !s.matcher.MatchedSomething() {
		tracer().Debugf("passing through %q", chars)
		return s.commit(chars)
	}
	if s.matcher.CompletedSize() > 0 {
		if err := s.commit(s.matcher.Completed()); err != nil {
			return err
		}
	}
	if tail := s.matcher.Tentative(); tail != "" {
		tracer().Debugf("composing %q", tail)
		s.composing = true
		return s.fail(s.host.SetComposition(tail))
	}
	return nil
}

// Finish ends the composition as displayed and forgets pending input.
func (s *Session) Finish() error {
	var err error
	if s.composing {
		err = s.host.EndComposition()
		s.composing = false
	}
	s.matcher.Clear()
	return s.fail(err)
}

// Terminated tells the session that the host has ended the composition on
// its own. The host is not called.
func (s *Session) Terminated() {
	s.composing = false
	s.matcher.Clear()
}

// Backspace removes the last pending character and updates the composition.
// It returns false if there was nothing to remove; the host should then
// handle the key itself.
func (s *Session) Backspace() (bool, error) {
	if s.disabled || !s.matcher.Backspace() {
		return false, nil
	}
	tail := s.matcher.Tentative()
	if tail == "" {
		return true, s.commit("")
	}
	return true, s.fail(s.host.SetComposition(tail))
}

func (s *Session) commit(text string) error {
	s.composing = false
	s.matcher.ClearCompleted()
	tracer().Debugf("commit %q", text)
	return s.fail(s.host.Commit(text))
}

// fail resets the session after a host error.
func (s *Session) fail(err error) error {
	if err == nil {
		return nil
	}
	tracer().Errorf("host failed: %v", err)
	s.composing = false
	s.matcher.Clear()
	return fmt.Errorf("session: %w", err)
}
