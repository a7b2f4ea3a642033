package translit

import (
	"fmt"
	"sort"

	"github.com/npillmayer/translit/dat"
)

type datBuildNode struct {
	tmpID    int
	state    uint32
	children map[uint16]*datBuildNode
}

type datBackend struct {
	frozen      bool
	root        *datBuildNode
	nextNodeID  int
	nextDenseID uint16
	resolved    map[int]uint32 // temporary position => frozen state
	compiled    *dat.DAT
}

func newDATBackend() *datBackend {
	return &datBackend{
		root:       &datBuildNode{tmpID: 1, children: make(map[uint16]*datBuildNode)},
		nextNodeID: 2,
		compiled: &dat.DAT{
			Root: 1,
		},
	}
}

func mustNewDATBackend() spellingTrie {
	return newDATBackend()
}

// EncodeKey maps a spelling to dense alphabet IDs. Before Freeze, unseen runes
// are added to the alphabet. Runes outside the BMP cannot be encoded.
func (db *datBackend) EncodeKey(spelling []rune) ([]uint16, bool) {
	key := make([]uint16, 0, len(spelling))
	if db.frozen {
		for _, r := range spelling {
			dense := db.compiled.Dense(r)
			if dense == 0 {
				return nil, false
			}
			key = append(key, dense)
		}
		return key, true
	}
	for _, r := range spelling {
		if r > 0xFFFF {
			return nil, false
		}
		dense := db.compiled.Alphabet.Dense(r)
		if dense == 0 {
			if db.nextDenseID == ^uint16(0) {
				return nil, false
			}
			db.nextDenseID++
			dense = db.nextDenseID
			db.compiled.Alphabet.Set(r, dense)
		}
		key = append(key, dense)
	}
	return key, true
}

func (db *datBackend) AllocPositionForWord(key []uint16) int {
	if len(key) == 0 || db.frozen {
		return 0
	}
	n := db.root
	for _, c := range key {
		if c == 0 {
			return 0
		}
		child := n.children[c]
		if child == nil {
			child = &datBuildNode{
				tmpID:    db.nextNodeID,
				children: make(map[uint16]*datBuildNode),
			}
			db.nextNodeID++
			n.children[c] = child
		}
		n = child
	}
	return n.tmpID
}

func (db *datBackend) ResolvePosition(pos int) uint32 {
	if !db.frozen {
		return 0
	}
	return db.resolved[pos]
}

func (db *datBackend) Freeze() {
	if db.frozen {
		return
	}
	db.compiled.Sigma = db.nextDenseID
	db.compiled.Base = make([]int32, int(db.compiled.Root)+1)
	db.compiled.Check = make([]int32, int(db.compiled.Root)+1)
	db.resolved = make(map[int]uint32, db.nextNodeID)
	db.root.state = db.compiled.Root
	queue := []*datBuildNode{db.root}
	for q := 0; q < len(queue); q++ {
		n := queue[q]
		db.resolved[n.tmpID] = n.state
		if len(n.children) == 0 {
			continue
		}
		labels := sortedLabels(n.children)
		base := findDATBase(db.compiled.Check, labels, db.compiled.Root)
		ensureDATIndex(db.compiled, base+int(labels[len(labels)-1]))
		db.compiled.Base[n.state] = int32(base)
		for _, label := range labels {
			t := base + int(label)
			child := n.children[label]
			child.state = uint32(t)
			db.compiled.Check[t] = int32(n.state)
			queue = append(queue, child)
		}
	}
	db.root = nil
	db.frozen = true
}

func (db *datBackend) Automaton() *dat.DAT {
	if !db.frozen {
		return nil
	}
	return db.compiled
}

func sortedLabels(children map[uint16]*datBuildNode) []uint16 {
	labels := make([]uint16, 0, len(children))
	for label := range children {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return labels[i] < labels[j]
	})
	return labels
}

// findDATBase finds the smallest base such that all base+label slots are free.
// The root slot is never handed out to a child.
func findDATBase(check []int32, labels []uint16, root uint32) int {
	for base := 1; ; base++ {
		ok := true
		for _, label := range labels {
			t := base + int(label)
			if t == int(root) || (t < len(check) && check[t] != 0) {
				ok = false
				break
			}
		}
		if ok {
			return base
		}
	}
}

func ensureDATIndex(d *dat.DAT, idx int) {
	if idx < len(d.Base) {
		return
	}
	grow := idx + 1 - len(d.Base)
	d.Base = append(d.Base, make([]int32, grow)...)
	d.Check = append(d.Check, make([]int32, grow)...)
}

func (db *datBackend) String() string {
	return fmt.Sprintf("DAT(states=%d,sigma=%d,frozen=%v)", db.compiled.NStates(), db.compiled.Sigma, db.frozen)
}

func (db *datBackend) Stats() spellingTrieStats {
	stats := spellingTrieStats{
		Backend:    "dat",
		TotalSlots: db.compiled.NStates(),
		MaxStateID: int(db.compiled.Root),
	}
	if stats.TotalSlots == 0 {
		return stats
	}
	used := 0
	maxID := int(db.compiled.Root)
	for i := range db.compiled.Check {
		if i == int(db.compiled.Root) || db.compiled.Check[i] != 0 {
			used++
			if i > maxID {
				maxID = i
			}
		}
	}
	stats.UsedSlots = used
	stats.MaxStateID = maxID
	return stats
}
