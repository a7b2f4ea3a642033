package dat

// RuneMap maps BMP runes (0..65535) to dense alphabet IDs (uint16).
// It's a two-level page table:
//   - Top[hi] = page index (1..NumPages), or 0 meaning "page absent".
//   - Pages is a flat array of NumPages*256 entries.
//
// Spelling alphabets are tiny and clustered (Basic Latin plus a handful of
// Latin-1 letters), so usually one or two pages are populated.
// Runes outside the BMP never map to an ID.
type RuneMap struct {
	Top   [256]uint16 // page index (1-based); 0 means none
	Pages []uint16    // flat: NumPages*256
	size  int
}

// Dense returns the dense alphabet ID for r, or 0 if absent.
func (m *RuneMap) Dense(r rune) uint16 {
	if r < 0 || r > 0xFFFF {
		return 0
	}
	pi := m.Top[r>>8]
	if pi == 0 {
		return 0
	}
	base := int(pi-1) << 8 // *256
	return m.Pages[base+int(r&0xFF)]
}

// NumPages returns the number of allocated pages.
func (m *RuneMap) NumPages() int { return len(m.Pages) >> 8 }

// Len returns the number of runes with a dense ID.
func (m *RuneMap) Len() int { return m.size }

func (m *RuneMap) ensurePage(hi rune) uint16 {
	pi := m.Top[hi]
	if pi != 0 {
		return pi
	}
	m.Pages = append(m.Pages, make([]uint16, 256)...)
	pi = uint16(len(m.Pages) >> 8) // number of pages, 1-based index
	m.Top[hi] = pi
	return pi
}

// Set maps r to dense (dense may be 0 to clear). It reports false for runes
// outside the BMP.
func (m *RuneMap) Set(r rune, dense uint16) bool {
	if r < 0 || r > 0xFFFF {
		return false
	}
	hi := r >> 8
	pi := m.Top[hi]
	if pi == 0 {
		if dense == 0 {
			return true
		}
		pi = m.ensurePage(hi)
	}
	slot := int(pi-1)<<8 + int(r&0xFF)
	switch old := m.Pages[slot]; {
	case old == 0 && dense != 0:
		m.size++
	case old != 0 && dense == 0:
		m.size--
	}
	m.Pages[slot] = dense
	return true
}
