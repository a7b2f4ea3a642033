package dat

import "testing"

// buildAB returns a hand-made automaton for the spellings "a" and "ab":
// state 1 is the root, 'a' has dense ID 1 and 'b' dense ID 2.
func buildAB() *DAT {
	d := &DAT{
		Root:  1,
		Sigma: 2,
		Base:  []int32{0, 1, 2, 0, 0},
		Check: []int32{0, 0, 1, 0, 2},
	}
	d.Alphabet.Set('a', 1)
	d.Alphabet.Set('b', 2)
	return d
}

func TestWalk(t *testing.T) {
	d := buildAB()
	tests := []struct {
		key   string
		state uint32
		ok    bool
	}{
		{"", 1, true},
		{"a", 2, true},
		{"ab", 4, true},
		{"b", 0, false},
		{"abb", 0, false},
		{"x", 0, false},
	}
	for _, tt := range tests {
		state, ok := d.Walk([]rune(tt.key))
		if state != tt.state || ok != tt.ok {
			t.Fatalf("Walk(%q) = %d,%v; want %d,%v", tt.key, state, ok, tt.state, tt.ok)
		}
	}
}

func TestHasChildren(t *testing.T) {
	d := buildAB()
	if !d.HasChildren(1) || !d.HasChildren(2) {
		t.Fatalf("root and 'a' should have children")
	}
	if d.HasChildren(4) || d.HasChildren(99) {
		t.Fatalf("'ab' and out-of-range states should not have children")
	}
}

func TestRuneMap(t *testing.T) {
	var m RuneMap
	if !m.Set('ж', 7) || m.Dense('ж') != 7 {
		t.Fatalf("expected ж to map to 7")
	}
	if m.Set('\U0001F600', 8) {
		t.Fatalf("runes outside the BMP must be rejected")
	}
	if m.Dense('\U0001F600') != 0 || m.Dense('z') != 0 {
		t.Fatalf("unmapped runes must yield 0")
	}
	m.Set('z', 3)
	if m.Len() != 2 || m.NumPages() != 2 {
		t.Fatalf("expected 2 runes on 2 pages, got %d on %d", m.Len(), m.NumPages())
	}
	m.Set('z', 0)
	if m.Len() != 1 || m.Dense('z') != 0 {
		t.Fatalf("expected z to be cleared")
	}
}
