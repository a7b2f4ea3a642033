/*
Package mapfile reads transliteration mapping documents.

A mapping document describes one language: its display name, writing
direction, the named variants (mappings) offered for it, and an ordered list of
entries. Each entry maps one target character onto one or more spellings and
may be restricted to some of the variants. Declaration order is significant:
if two entries share a spelling, the earlier one wins.

Documents are written in TOML or YAML:

	language = "ru"
	name = "Russian"

	[[variant]]
	id = "default"

	[[variant]]
	id = "translit-ru"
	display = "translit.ru"

	[[mapping]]
	to = "Ж"
	from = ["Zh", "ZH"]

	[[mapping]]
	to = "Ъ"
	from = ["##"]
	only = ["translit-ru"]

Before use, a document is checked against a JSON schema, its strings are
normalized to NFC and its language tag is validated.
*/
package mapfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/translit"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// tracer writes to trace with key 'translit.mapfile'
func tracer() tracing.Trace {
	return tracing.Select("translit.mapfile")
}

// DefaultVariant is the ID of the variant implied by a document without
// explicit variants.
const DefaultVariant = "default"

var (
	// ErrInvalidDocument is returned for documents violating the schema or
	// the semantic rules of mapping documents.
	ErrInvalidDocument = errors.New("invalid mapping document")
	// ErrUnknownVariant is returned when a variant ID is not declared.
	ErrUnknownVariant = errors.New("unknown mapping variant")
)

// Format is the serialization format of a document.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFor derives the format from a file name extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("unsupported mapping file %q", path)
}

// Variant is one named mapping of a language.
type Variant struct {
	ID      string `toml:"id" yaml:"id"`
	Display string `toml:"display" yaml:"display"`
}

// Entry maps a target character onto its spellings.
// Only, if not empty, lists the variants the entry belongs to.
type Entry struct {
	To   string   `toml:"to" yaml:"to"`
	From []string `toml:"from" yaml:"from"`
	Only []string `toml:"only" yaml:"only"`
}

// Document is a parsed and validated mapping document.
type Document struct {
	Language    string    `toml:"language" yaml:"language"`
	Name        string    `toml:"name" yaml:"name"`
	Description string    `toml:"description" yaml:"description"`
	RTL         bool      `toml:"rtl" yaml:"rtl"`
	Variants    []Variant `toml:"variant" yaml:"variant"`
	Mappings    []Entry   `toml:"mapping" yaml:"mapping"`

	tag language.Tag
}

// Load reads a document from a file, choosing the format by extension.
func Load(path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	defer f.Close()
	doc, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse reads a document in the given format.
func Parse(reader io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if err := validate(data, format); err != nil {
		return nil, err
	}
	doc := &Document{}
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), doc); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %v", format)
	}
	if err := doc.normalize(); err != nil {
		return nil, err
	}
	tracer().Debugf("parsed %s mapping document for %s: %d entries, %d variants",
		format, doc.Language, len(doc.Mappings), len(doc.Variants))
	return doc, nil
}

func (d *Document) normalize() error {
	tag, err := language.Parse(d.Language)
	if err != nil {
		return fmt.Errorf("%w: language %q: %v", ErrInvalidDocument, d.Language, err)
	}
	d.tag = tag
	d.Language = tag.String()
	if d.Name == "" {
		d.Name = display.English.Languages().Name(tag)
	}
	if len(d.Variants) == 0 {
		d.Variants = []Variant{{ID: DefaultVariant}}
	}
	seen := make(map[string]bool, len(d.Variants))
	for i := range d.Variants {
		v := &d.Variants[i]
		if seen[v.ID] {
			return fmt.Errorf("%w: duplicate variant %q", ErrInvalidDocument, v.ID)
		}
		seen[v.ID] = true
		if v.Display == "" {
			v.Display = v.ID
		}
	}
	for i := range d.Mappings {
		e := &d.Mappings[i]
		e.To = norm.NFC.String(e.To)
		if utf8.RuneCountInString(e.To) != 1 {
			return fmt.Errorf("%w: target %q is not a single character", ErrInvalidDocument, e.To)
		}
		for j, s := range e.From {
			e.From[j] = norm.NFC.String(s)
		}
		for _, id := range e.Only {
			if !seen[id] {
				return fmt.Errorf("%w: entry for %q names %w %q", ErrInvalidDocument, e.To, ErrUnknownVariant, id)
			}
		}
	}
	return nil
}

// Tag returns the language of the document.
func (d *Document) Tag() language.Tag {
	return d.tag
}

// Variant looks up a variant by ID.
func (d *Document) Variant(id string) (Variant, bool) {
	for _, v := range d.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Reader returns a mapping reader streaming the entries of one variant.
func (d *Document) Reader(variantID string) (*Reader, error) {
	if _, ok := d.Variant(variantID); !ok {
		return nil, fmt.Errorf("%w %q for %s", ErrUnknownVariant, variantID, d.Language)
	}
	return &Reader{entries: d.Mappings, variant: variantID}, nil
}

// Table compiles the mappings of one variant.
func (d *Document) Table(variantID string) (*translit.Table, error) {
	r, err := d.Reader(variantID)
	if err != nil {
		return nil, err
	}
	return translit.LoadMappings(d.Language+"/"+variantID, r)
}

// Reader streams the (target, spelling) pairs of one variant in declaration
// order. It implements translit.MappingReader.
type Reader struct {
	entries []Entry
	variant string
	entry   int
	from    int
}

// Next returns the next mapping, or io.EOF when exhausted.
func (r *Reader) Next() (rune, []rune, error) {
	for r.entry < len(r.entries) {
		e := r.entries[r.entry]
		if len(e.Only) > 0 && !slices.Contains(e.Only, r.variant) {
			r.entry++
			continue
		}
		if r.from >= len(e.From) {
			r.entry++
			r.from = 0
			continue
		}
		spelling := e.From[r.from]
		r.from++
		target, _ := utf8.DecodeRuneInString(e.To)
		return target, []rune(spelling), nil
	}
	return 0, nil, io.EOF
}

var _ translit.MappingReader = (*Reader)(nil)

// --- Schema validation -----------------------------------------------------

//go:embed mapping.schema.json
var schemaSource []byte

const schemaURL = "mapping.schema.json"

var documentSchema struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

func schema() (*jsonschema.Schema, error) {
	documentSchema.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			documentSchema.err = fmt.Errorf("add schema resource: %w", err)
			return
		}
		documentSchema.schema, documentSchema.err = compiler.Compile(schemaURL)
	})
	return documentSchema.schema, documentSchema.err
}

// validate checks raw document data against the mapping schema. The data is
// decoded generically and brought into the shape of decoded JSON first.
func validate(data []byte, format Format) error {
	var generic any
	switch format {
	case FormatTOML:
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
		generic = m
	case FormatYAML:
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %v", format)
	}
	js, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	var instance any
	if err := json.Unmarshal(js, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	sch, err := schema()
	if err != nil {
		tracer().Errorf("mapping schema unusable: %v", err)
		return err
	}
	if err := sch.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}
