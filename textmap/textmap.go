package textmap

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/translit"
	"golang.org/x/text/unicode/norm"
)

// LoadTable parses a plain-text mapping list and returns a ready-to-use table.
//
// Every line holds a target character followed by its spellings, separated
// by white space:
//
//	!name ru/default
//	# comment
//	Ж Zh ZH
//	ж zh
//	Щ W Shh SHh SHH
//
// An optional line starting with '!' names the list. Spellings cannot
// contain white space; use a mapping document (package mapfile) for those.
func LoadTable(name string, reader io.Reader) (*translit.Table, error) {
	r := NewReader(reader)
	return translit.LoadMappings(name, r)
}

// Reader streams mappings from a plain-text mapping list.
type Reader struct {
	scanner    *bufio.Scanner
	identifier string
	line       int
	target     rune
	spellings  []string
	spelling   []rune
}

func NewReader(reader io.Reader) *Reader {
	return &Reader{
		scanner:  bufio.NewScanner(reader),
		spelling: make([]rune, 0, 8),
	}
}

// Identifier returns the name given by a '!name' line, if any has been read.
func (r *Reader) Identifier() string {
	return r.identifier
}

// Next returns the next mapping as (target, spelling).
// It returns io.EOF when exhausted.
// The returned spelling is reused by subsequent calls.
func (r *Reader) Next() (rune, []rune, error) {
	for len(r.spellings) == 0 {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return 0, nil, err
			}
			return 0, nil, io.EOF
		}
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if strings.HasPrefix(line, "!name") {
			r.identifier = strings.TrimSpace(line[len("!name"):])
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := r.decodeLine(line); err != nil {
			return 0, nil, err
		}
	}
	r.spelling = append(r.spelling[:0], []rune(r.spellings[0])...)
	r.spellings = r.spellings[1:]
	return r.target, r.spelling, nil
}

func (r *Reader) decodeLine(line string) error {
	fields := strings.Fields(norm.NFC.String(line))
	if utf8.RuneCountInString(fields[0]) != 1 {
		return fmt.Errorf("line %d: target %q is not a single character", r.line, fields[0])
	}
	if len(fields) < 2 {
		return fmt.Errorf("line %d: no spelling for %q", r.line, fields[0])
	}
	r.target, _ = utf8.DecodeRuneInString(fields[0])
	r.spellings = fields[1:]
	return nil
}

// Write lists the spellings of a table in the format read by Reader, one
// line per target character, ordered by target.
func Write(w io.Writer, table *translit.Table) error {
	bw := bufio.NewWriter(w)
	byTarget := make(map[rune][]string)
	var targets []rune
	for _, c := range table.Completions("") {
		if _, ok := byTarget[c.Target]; !ok {
			targets = append(targets, c.Target)
		}
		byTarget[c.Target] = append(byTarget[c.Target], c.Spelling)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	fmt.Fprintf(bw, "!name %s\n", table.Name())
	for _, t := range targets {
		fmt.Fprintf(bw, "%c %s\n", t, strings.Join(byTarget[t], " "))
	}
	return bw.Flush()
}
