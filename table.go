package translit

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"

	"github.com/derekparker/trie"
	"github.com/npillmayer/translit/dat"
)

// Mapping is a single transliteration table entry.
//
// Spelling is the rune sequence to type (for example: "Zh", "shh") and Target
// is the character it produces ('Ж', 'щ'). Several mappings may share a Target.
type Mapping struct {
	Target   rune
	Spelling []rune
}

// MappingReader yields table entries one-by-one, in declaration order.
// It should return io.EOF when the stream is exhausted. The returned spelling
// may be overwritten by the next call; LoadMappings copies it.
type MappingReader interface {
	Next() (target rune, spelling []rune, err error)
}

// Completion is a spelling of a table together with its target character.
type Completion struct {
	Spelling string
	Target   rune
}

// Table is a compiled, read-only transliteration table.
//
// A table contains:
//   - the spellings, compiled into a frozen trie backend
//   - the target character per complete spelling, indexed by trie state
//   - a spelling index for prefix enumeration (hints, listings).
//
// Tables are never mutated after construction and may be shared by any number
// of matchers.
type Table struct {
	index      spellingTrie
	automaton  *dat.DAT
	targets    *targetStore
	spellings  *trie.Trie
	maxLen     int
	name       string
	Identifier string // Identifies the table
}

// LoadMappings compiles a table from a streaming, format-agnostic source.
//
// If the same spelling is registered more than once, the first registration
// wins and later ones are ignored. Empty spellings and spellings containing
// runes outside the BMP are skipped.
//
// File format parsing is intentionally outside the base package. Use adapters
// like package mapfile to parse concrete formats and feed this API.
func LoadMappings(name string, reader MappingReader) (table *Table, err error) {
	backend := mustNewDATBackend()
	type pendingTarget struct {
		pos      int
		target   rune
		spelling []rune
	}
	pending := make([]pendingTarget, 0, 128)
	table = &Table{
		index:      backend,
		spellings:  trie.New(),
		name:       name,
		Identifier: fmt.Sprintf("mappings: %s", name),
	}
	var target rune
	var spelling []rune
	for {
		target, spelling, err = reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if target == noTarget || len(spelling) == 0 {
			tracer().Debugf("skipping empty mapping %q -> %q", string(spelling), target)
			continue
		}
		key, ok := backend.EncodeKey(spelling)
		if !ok {
			tracer().Debugf("skipping unencodable spelling %q", string(spelling))
			continue // simply skip invalid spellings
		}
		pos := backend.AllocPositionForWord(key)
		if pos == 0 {
			return nil, fmt.Errorf("could not allocate trie position for spelling %q", string(spelling))
		}
		pending = append(pending, pendingTarget{pos: pos, target: target, spelling: slices.Clone(spelling)})
	}
	backend.Freeze()
	table.automaton = backend.Automaton()
	table.targets = newTargetStore(table.automaton.NStates())
	for _, p := range pending {
		state := backend.ResolvePosition(p.pos)
		if state == 0 {
			return nil, fmt.Errorf("could not resolve trie position after freeze for temporary position %d", p.pos)
		}
		if !table.targets.Put(state, p.target) {
			first, _ := table.targets.Target(state)
			tracer().Infof("%s: spelling %q already maps to %q, ignoring %q",
				table.Identifier, string(p.spelling), first, p.target)
			continue
		}
		table.spellings.Add(string(p.spelling), p.target)
		table.maxLen = max(table.maxLen, len(p.spelling))
	}
	backendName, used, total, maxStateID, fill := table.TrieStats()
	tracer().Infof("%s: %d spellings, trie stats backend=%s used=%d total=%d fill=%.2f maxStateID=%d",
		table.Identifier, table.Len(), backendName, used, total, fill, maxStateID)
	return table, nil
}

// NewTable compiles a table from an in-memory list of mappings.
func NewTable(name string, mappings []Mapping) (*Table, error) {
	return LoadMappings(name, &sliceReader{entries: mappings})
}

type sliceReader struct {
	entries []Mapping
	index   int
}

func (r *sliceReader) Next() (rune, []rune, error) {
	if r.index >= len(r.entries) {
		return noTarget, nil, io.EOF
	}
	entry := r.entries[r.index]
	r.index++
	return entry.Target, entry.Spelling, nil
}

var nullTable struct {
	once  sync.Once
	table *Table
}

// NullTable returns the shared table without any mappings. A matcher using it
// passes all input through unchanged. It is used when no profile is active.
func NullTable() *Table {
	nullTable.once.Do(func() {
		t, err := NewTable("null", nil)
		assert(err == nil, "cannot build null table")
		nullTable.table = t
	})
	return nullTable.table
}

// TrieStats reports density metrics for the underlying spelling trie.
func (t *Table) TrieStats() (backend string, usedSlots, totalSlots, maxStateID int, fillRatio float64) {
	if t == nil || t.index == nil {
		return "", 0, 0, 0, 0
	}
	stats := t.index.Stats()
	return stats.Backend, stats.UsedSlots, stats.TotalSlots, stats.MaxStateID, stats.FillRatio()
}

// Name returns the name the table was loaded with.
func (t *Table) Name() string {
	return t.name
}

// Len returns the number of distinct spellings in the table.
func (t *Table) Len() int {
	if t == nil || t.targets == nil {
		return 0
	}
	return t.targets.Len()
}

// IsNull reports whether the table matches nothing at all.
func (t *Table) IsNull() bool {
	return t.Len() == 0
}

// MaxSpellingLen returns the length (in runes) of the longest spelling.
// A matcher never holds more pending input than this.
func (t *Table) MaxSpellingLen() int {
	if t == nil {
		return 0
	}
	return t.maxLen
}

// LookupExact returns the target character of spelling, if spelling is a
// complete spelling of the table.
func (t *Table) LookupExact(spelling string) (rune, bool) {
	state, ok := t.walk([]rune(spelling))
	if !ok || state == t.automaton.Root {
		return noTarget, false
	}
	return t.targets.Target(state)
}

// HasLongerContinuation is true if any spelling of the table has spelling
// as a strict prefix. For the empty string this is true for every non-empty
// table.
func (t *Table) HasLongerContinuation(spelling string) bool {
	state, ok := t.walk([]rune(spelling))
	return ok && t.automaton.HasChildren(state)
}

// Completions lists every spelling starting with prefix (including prefix
// itself, if it is a complete spelling), ordered by spelling.
func (t *Table) Completions(prefix string) []Completion {
	if t == nil || t.spellings == nil {
		return nil
	}
	keys := t.spellings.PrefixSearch(prefix)
	sort.Strings(keys)
	completions := make([]Completion, 0, len(keys))
	for _, key := range keys {
		node, ok := t.spellings.Find(key)
		if !ok {
			continue
		}
		target, _ := node.Meta().(rune)
		completions = append(completions, Completion{Spelling: key, Target: target})
	}
	return completions
}

func (t *Table) walk(spelling []rune) (uint32, bool) {
	if t == nil || t.automaton == nil {
		return 0, false
	}
	return t.automaton.Walk(spelling)
}

// match determines the longest complete spelling at the start of input.
// It returns the length and target of that spelling (0 if there is none),
// how many runes of input are a live trie path, and the state at the end
// of that path.
func (t *Table) match(input []rune) (exact int, target rune, live int, state uint32) {
	state = t.automaton.Root
	for live < len(input) {
		next, ok := t.automaton.Step(state, input[live])
		if !ok {
			break
		}
		state = next
		live++
		if tgt, ok := t.targets.Target(state); ok {
			exact, target = live, tgt
		}
	}
	return
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%s, %d spellings, %v)", t.Identifier, t.Len(), t.index)
}
