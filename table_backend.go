package translit

import "github.com/npillmayer/translit/dat"

type spellingTrieStats struct {
	Backend    string
	UsedSlots  int
	TotalSlots int
	MaxStateID int
}

func (s spellingTrieStats) FillRatio() float64 {
	if s.TotalSlots == 0 {
		return 0
	}
	return float64(s.UsedSlots) / float64(s.TotalSlots)
}

// spellingTrie is the internal backend abstraction for spelling-key storage.
// Positions handed out before Freeze are temporary and must be resolved to
// frozen state IDs afterwards.
type spellingTrie interface {
	EncodeKey(spelling []rune) ([]uint16, bool)
	AllocPositionForWord(key []uint16) int
	ResolvePosition(pos int) uint32
	Freeze()
	Automaton() *dat.DAT
	Stats() spellingTrieStats
}
