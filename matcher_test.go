package translit

import (
	"testing"
	"unicode/utf8"
)

type step struct {
	input     string
	result    string
	completed int
	matched   bool
}

func runSteps(t *testing.T, matcher *Matcher, steps []step) {
	t.Helper()
	for i, s := range steps {
		matcher.Append(s.input)
		if got := matcher.Result(); got != s.result {
			t.Fatalf("step %d (%q): result = %q, want %q", i, s.input, got, s.result)
		}
		if got := matcher.CompletedSize(); got != s.completed {
			t.Fatalf("step %d (%q): completed size = %d, want %d", i, s.input, got, s.completed)
		}
		if got := matcher.MatchedSomething(); got != s.matched {
			t.Fatalf("step %d (%q): matched = %v, want %v", i, s.input, got, s.matched)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	matcher := NewMatcher(mustTable(t, []Mapping{entry('А', "A"), entry('Б', "B")}))
	runSteps(t, matcher, []step{
		{"A", "А", 1, true},
		{"B", "АБ", 2, true},
	})
}

func TestLongestMatch(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	runSteps(t, matcher, []step{
		{"S", "С", 0, true},
		{"h", "Ш", 0, true},
		{"h", "Щ", 1, true},
	})
}

func TestCommitOnDeadEnd(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	runSteps(t, matcher, []step{
		{"S", "С", 0, true},
		{"h", "Ш", 0, true},
		{"x", "Шх", 2, true},
	})
}

func TestExactMatchHeldWhileExtendable(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	runSteps(t, matcher, []step{
		{"z", "з", 0, true},
		{"h", "ж", 1, true},
		{"x", "жх", 2, true},
	})
}

func TestBackoffPassesThroughOrphans(t *testing.T) {
	matcher := NewMatcher(mustTable(t, []Mapping{entry('ж', "zh")}))
	runSteps(t, matcher, []step{
		{"z", "z", 0, true},
		{"x", "zx", 2, true},
	})
}

func TestBackoffRetriesRemainder(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	runSteps(t, matcher, []step{
		{"t", "т", 0, true},
		{"v", "тв", 0, true},
		{"q", "твq", 3, true},
	})
	matcher.Clear()
	runSteps(t, matcher, []step{
		{"t", "т", 0, true},
		{"v", "тв", 0, true},
		{"z", "ъ", 1, true},
	})
	matcher.Clear()
	runSteps(t, matcher, []step{
		{"tv", "тв", 0, true},
		{"S", "твС", 2, true},
	})
	if matcher.Pending() != "S" {
		t.Fatalf("expected S to stay pending after backoff, got %q", matcher.Pending())
	}
}

func TestIdentityPassThrough(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	runSteps(t, matcher, []step{
		{"1", "1", 1, false},
		{"!", "1!", 2, false},
		{"z", "1!з", 2, true},
		{" ", "1!з ", 4, true},
		{"?", "1!з ?", 5, false},
	})
}

func TestNullMatcherPassesEverything(t *testing.T) {
	matcher := NewMatcher(nil)
	runSteps(t, matcher, []step{
		{"Shh", "Shh", 3, false},
		{"ж", "Shhж", 4, false},
	})
}

func TestClearCompleted(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	matcher.Append("xS")
	if matcher.CompletedSize() != 1 || matcher.Result() != "хС" {
		t.Fatalf("unexpected state before clear: %q/%d", matcher.Result(), matcher.CompletedSize())
	}
	matcher.ClearCompleted()
	if matcher.CompletedSize() != 0 || matcher.Result() != "С" {
		t.Fatalf("expected only tentative С after ClearCompleted, got %q/%d", matcher.Result(), matcher.CompletedSize())
	}
	matcher.ClearCompleted()
	if matcher.CompletedSize() != 0 || matcher.Result() != "С" {
		t.Fatalf("second ClearCompleted should be a no-op, got %q/%d", matcher.Result(), matcher.CompletedSize())
	}
	matcher.Append("hh")
	if matcher.Result() != "Щ" || matcher.CompletedSize() != 1 {
		t.Fatalf("expected pending state to survive ClearCompleted, got %q/%d", matcher.Result(), matcher.CompletedSize())
	}
}

func TestClear(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	matcher.Append("xSh")
	matcher.Clear()
	if matcher.Result() != "" || matcher.CompletedSize() != 0 || matcher.Pending() != "" || matcher.MatchedSomething() {
		t.Fatalf("expected pristine matcher after Clear, got %q/%d", matcher.Result(), matcher.CompletedSize())
	}
	matcher.Append("h")
	if matcher.Result() != "х" {
		t.Fatalf("expected fresh matching after Clear, got %q", matcher.Result())
	}
}

func TestDeterminism(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	input := "Shhtvzz, ZhShx tvq zhh"
	var first []string
	for _, r := range input {
		matcher.AppendRune(r)
		first = append(first, matcher.Result())
	}
	matcher.Clear()
	for i, r := range []rune(input) {
		matcher.AppendRune(r)
		if matcher.Result() != first[i] {
			t.Fatalf("run differs at %d: %q vs %q", i, matcher.Result(), first[i])
		}
	}
}

func TestFlush(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	matcher.Append("tv")
	matcher.Flush()
	if matcher.Result() != "тв" || matcher.CompletedSize() != 2 || matcher.Pending() != "" {
		t.Fatalf("expected flushed тв, got %q/%d pending %q", matcher.Result(), matcher.CompletedSize(), matcher.Pending())
	}
	matcher.Append("z")
	if matcher.Result() != "твз" {
		t.Fatalf("expected z to start a new match after Flush, got %q", matcher.Result())
	}
}

func TestBackspace(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	matcher.Append("xSh")
	if !matcher.Backspace() {
		t.Fatalf("expected Backspace to remove pending h")
	}
	if matcher.Result() != "хС" || matcher.Pending() != "S" {
		t.Fatalf("unexpected state after Backspace: %q pending %q", matcher.Result(), matcher.Pending())
	}
	if !matcher.Backspace() {
		t.Fatalf("expected Backspace to remove pending S")
	}
	if matcher.Backspace() {
		t.Fatalf("Backspace must not edit completed output")
	}
	if matcher.Result() != "х" {
		t.Fatalf("expected completed х to survive, got %q", matcher.Result())
	}
	matcher.Append("hh")
	if matcher.Result() != "ххх" {
		t.Fatalf("expected matching to continue after Backspace, got %q", matcher.Result())
	}
}

func TestPrefixClosure(t *testing.T) {
	table := mustTable(t, demoMappings)
	matcher := NewMatcher(table)
	for _, mapping := range demoMappings {
		for n := 1; n < len(mapping.Spelling); n++ {
			prefix := string(mapping.Spelling[:n])
			matcher.Clear()
			matcher.Append(prefix)
			if !matcher.MatchedSomething() || matcher.CompletedSize() != 0 {
				t.Fatalf("prefix %q of %q: matched=%v completed=%d", prefix, string(mapping.Spelling),
					matcher.MatchedSomething(), matcher.CompletedSize())
			}
		}
		spelling := string(mapping.Spelling)
		if table.HasLongerContinuation(spelling) {
			continue
		}
		matcher.Clear()
		matcher.Append(spelling)
		target, _ := table.LookupExact(spelling)
		if matcher.CompletedSize() != 1 || matcher.Result() != string(target) {
			t.Fatalf("unambiguous %q should commit %q at once, got %q/%d", spelling, target,
				matcher.Result(), matcher.CompletedSize())
		}
	}
}

func TestPendingBoundedByLongestSpelling(t *testing.T) {
	table := mustTable(t, demoMappings)
	matcher := NewMatcher(table)
	for _, r := range "SSSShShhhtvtvtvzZZZhZhzzzh" {
		matcher.AppendRune(r)
		if n := utf8.RuneCountInString(matcher.Pending()); n >= table.MaxSpellingLen() {
			t.Fatalf("pending input %q exceeds look-ahead bound %d", matcher.Pending(), table.MaxSpellingLen())
		}
	}
}

func TestEmptyAppendMatchesNothing(t *testing.T) {
	matcher := NewMatcher(mustTable(t, demoMappings))
	runSteps(t, matcher, []step{
		{"S", "С", 0, true},
		{"", "С", 0, false},
		{"h", "Ш", 0, true},
		{"x", "Шх", 2, true},
		{"", "Шх", 2, false},
	})
	matcher.AppendRune('?')
	if matcher.MatchedSomething() || matcher.Result() != "Шх?" {
		t.Fatalf("expected ? to pass through unmatched, got %q matched=%v", matcher.Result(), matcher.MatchedSomething())
	}
}
