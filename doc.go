/*
Package translit implements the matching engine of a transliteration input method.

A transliteration table maps Latin spellings of one to a few characters onto
single characters of a target script (Cyrillic, Hebrew, ...). Each table entry
pairs one target character with one spelling; a target character usually has
several alternative spellings ("Zh", "ZH" for "Ж").

Tables are compiled into a frozen double-array trie (DAT) keyed by spelling
runes. Target characters are stored separately, indexed by trie state ID.

A Matcher consumes typed characters one at a time and decides incrementally
which part of its output is final ("completed") and which part is still a
pending composition that further keystrokes may extend or rewrite. It follows
a longest-match policy: output is held back only while the pending input is a
strict prefix of some longer spelling.

	table, _ := translit.NewTable("demo", []translit.Mapping{
	    {Target: 'Ш', Spelling: []rune("Sh")},
	    {Target: 'Щ', Spelling: []rune("Shh")},
	})
	m := translit.NewMatcher(table)
	m.Append("Sh")   // Result() == "Ш", CompletedSize() == 0
	m.Append("h")    // Result() == "Щ", CompletedSize() == 1

Further Reading

	https://en.wikipedia.org/wiki/Double-array_trie
	https://translit.net
	https://translit.ru

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package translit

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'translit'
func tracer() tracing.Trace {
	return tracing.Select("translit")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
