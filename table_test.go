package translit

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

func entry(target rune, spelling string) Mapping {
	return Mapping{Target: target, Spelling: []rune(spelling)}
}

var demoMappings = []Mapping{
	entry('З', "Z"), entry('Ж', "Zh"), entry('Ж', "ZH"),
	entry('з', "z"), entry('ж', "zh"),
	entry('С', "S"), entry('Ш', "Sh"), entry('Щ', "Shh"),
	entry('х', "h"), entry('х', "x"),
	entry('т', "t"), entry('в', "v"), entry('ъ', "tvz"),
}

func mustTable(t *testing.T, mappings []Mapping) *Table {
	t.Helper()
	table, err := NewTable(t.Name(), mappings)
	if err != nil {
		t.Fatalf("cannot build table: %v", err)
	}
	return table
}

func TestLookupExact(t *testing.T) {
	table := mustTable(t, demoMappings)
	tests := []struct {
		spelling string
		target   rune
		found    bool
	}{
		{"Z", 'З', true},
		{"Zh", 'Ж', true},
		{"ZH", 'Ж', true},
		{"zH", 0, false},
		{"Shh", 'Щ', true},
		{"tv", 0, false},
		{"tvz", 'ъ', true},
		{"q", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		target, found := table.LookupExact(tt.spelling)
		if found != tt.found || target != tt.target {
			t.Fatalf("LookupExact(%q) = %q,%v; want %q,%v", tt.spelling, target, found, tt.target, tt.found)
		}
	}
}

func TestHasLongerContinuation(t *testing.T) {
	table := mustTable(t, demoMappings)
	tests := []struct {
		spelling string
		want     bool
	}{
		{"", true},
		{"Z", true},
		{"Zh", false},
		{"S", true},
		{"Sh", true},
		{"Shh", false},
		{"t", true},
		{"tv", true},
		{"tvz", false},
		{"x", false},
		{"q", false},
	}
	for _, tt := range tests {
		if got := table.HasLongerContinuation(tt.spelling); got != tt.want {
			t.Fatalf("HasLongerContinuation(%q) = %v, want %v", tt.spelling, got, tt.want)
		}
	}
}

func TestFirstRegistrationWins(t *testing.T) {
	table := mustTable(t, []Mapping{entry('Я', "Q"), entry('Ь', "Q"), entry('я', "q")})
	if target, _ := table.LookupExact("Q"); target != 'Я' {
		t.Fatalf("expected first registered target Я for Q, got %q", target)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 distinct spellings, got %d", table.Len())
	}
}

func TestInvalidSpellingsAreSkipped(t *testing.T) {
	table := mustTable(t, []Mapping{entry('а', ""), entry('б', "b"), entry('в', "v\U0001F600"), entry(0, "x")})
	if table.Len() != 1 {
		t.Fatalf("expected only 'b' to survive, got %d spellings", table.Len())
	}
	if table.MaxSpellingLen() != 1 {
		t.Fatalf("expected max spelling length 1, got %d", table.MaxSpellingLen())
	}
}

func TestMaxSpellingLen(t *testing.T) {
	table := mustTable(t, demoMappings)
	if table.MaxSpellingLen() != 3 {
		t.Fatalf("expected max spelling length 3, got %d", table.MaxSpellingLen())
	}
}

func TestNullTable(t *testing.T) {
	null := NullTable()
	if !null.IsNull() {
		t.Fatalf("null table should be empty, has %d spellings", null.Len())
	}
	if null.HasLongerContinuation("") {
		t.Fatalf("null table should not continue the empty spelling")
	}
	if NullTable() != null {
		t.Fatalf("null table should be shared")
	}
}

func TestCompletions(t *testing.T) {
	table := mustTable(t, demoMappings)
	got := table.Completions("Z")
	want := []Completion{{"Z", 'З'}, {"ZH", 'Ж'}, {"Zh", 'Ж'}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Completions(Z) = %v, want %v", got, want)
	}
	if all := table.Completions(""); len(all) != table.Len() {
		t.Fatalf("expected %d completions for empty prefix, got %d", table.Len(), len(all))
	}
	if none := table.Completions("q"); len(none) != 0 {
		t.Fatalf("expected no completions for q, got %v", none)
	}
}

func TestTableTrieStats(t *testing.T) {
	table := mustTable(t, demoMappings)
	backend, used, total, maxStateID, fill := table.TrieStats()
	if backend != "dat" {
		t.Fatalf("expected dat backend, got %s", backend)
	}
	if used <= 0 || total <= 0 {
		t.Fatalf("expected positive slot counts, got used=%d total=%d", used, total)
	}
	if maxStateID <= 0 {
		t.Fatalf("expected positive maxStateID, got %d", maxStateID)
	}
	if fill <= 0 || fill > 1 {
		t.Fatalf("expected fill ratio in (0,1], got %f", fill)
	}
}

type failingReader struct{ err error }

func (r failingReader) Next() (rune, []rune, error) { return 0, nil, r.err }

func TestLoadMappingsReaderError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := LoadMappings("failing", failingReader{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected reader error to propagate, got %v", err)
	}
	if _, err := LoadMappings("empty", failingReader{err: io.EOF}); err != nil {
		t.Fatalf("expected empty table, got error %v", err)
	}
}

// bufferReader hands out every spelling in one shared buffer, overwriting it
// on each call.
type bufferReader struct {
	entries []Mapping
	buf     []rune
}

func (r *bufferReader) Next() (rune, []rune, error) {
	if len(r.entries) == 0 {
		return noTarget, nil, io.EOF
	}
	entry := r.entries[0]
	r.entries = r.entries[1:]
	r.buf = append(r.buf[:0], entry.Spelling...)
	return entry.Target, r.buf, nil
}

func TestLoadMappingsReusedBuffer(t *testing.T) {
	tests := []struct {
		name     string
		mappings []Mapping
		want     []Completion
		maxLen   int
	}{
		{
			name:     "shrinking",
			mappings: []Mapping{entry('Ш', "Sh"), entry('С', "S"), entry('х', "x")},
			want:     []Completion{{"S", 'С'}, {"Sh", 'Ш'}, {"x", 'х'}},
			maxLen:   2,
		},
		{
			name:     "growing",
			mappings: []Mapping{entry('з', "z"), entry('ж', "zh"), entry('Щ', "Shh")},
			want:     []Completion{{"Shh", 'Щ'}, {"z", 'з'}, {"zh", 'ж'}},
			maxLen:   3,
		},
		{
			name:     "duplicate",
			mappings: []Mapping{entry('х', "h"), entry('Х', "h"), entry('т', "t")},
			want:     []Completion{{"h", 'х'}, {"t", 'т'}},
			maxLen:   1,
		},
	}
	for _, tt := range tests {
		table, err := LoadMappings(tt.name, &bufferReader{entries: tt.mappings})
		if err != nil {
			t.Fatalf("%s: cannot load table: %v", tt.name, err)
		}
		if got := table.Completions(""); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: Completions() = %v, want %v", tt.name, got, tt.want)
		}
		if got := table.MaxSpellingLen(); got != tt.maxLen {
			t.Fatalf("%s: MaxSpellingLen() = %d, want %d", tt.name, got, tt.maxLen)
		}
	}
}
