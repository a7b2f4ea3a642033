/*
Package profiles holds the language profiles offered for transliteration.

A profile is one target language together with the mappings (variants of its
mapping table) a user may choose between. The first mapping of a profile is
its default. Profiles are read from mapping documents (see package mapfile);
the documents for Belarusian, Hebrew, Russian and Ukrainian are compiled
into the binary.

Tables are built on first use and cached, as building a table compiles its
spelling trie.
*/
package profiles

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/translit"
	"github.com/npillmayer/translit/mapfile"
	"golang.org/x/text/language"
)

// tracer writes to trace with key 'translit.profiles'
func tracer() tracing.Trace {
	return tracing.Select("translit.profiles")
}

// ErrUnknownProfile is returned for language IDs without a profile.
var ErrUnknownProfile = errors.New("unknown profile")

//go:embed data/*.toml
var builtin embed.FS

// MappingInfo describes one selectable mapping of a profile.
type MappingInfo struct {
	ID      string
	Display string
}

// Profile is a target language with its mappings.
type Profile struct {
	ID          language.Tag
	Name        string
	Description string
	RTL         bool // right-to-left script
	Mappings    []MappingInfo
	doc         *mapfile.Document
}

// MappingIndex returns the index of the mapping with the given ID.
func (p *Profile) MappingIndex(id string) (int, bool) {
	for i, m := range p.Mappings {
		if m.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (p *Profile) String() string {
	return fmt.Sprintf("%s (%s)", p.ID, p.Name)
}

type tableKey struct {
	profile string
	mapping int
}

// Registry is a set of profiles. It is safe for concurrent use.
type Registry struct {
	profiles []*Profile
	tags     []language.Tag
	matcher  language.Matcher
	mu       sync.Mutex
	tables   map[tableKey]*translit.Table
}

var builtinRegistry struct {
	once     sync.Once
	registry *Registry
	err      error
}

// Default returns the registry of the compiled-in profiles.
func Default() (*Registry, error) {
	builtinRegistry.once.Do(func() {
		data, err := fs.Sub(builtin, "data")
		if err != nil {
			builtinRegistry.err = err
			return
		}
		builtinRegistry.registry, builtinRegistry.err = NewRegistry(data)
	})
	return builtinRegistry.registry, builtinRegistry.err
}

// NewRegistry loads every mapping document (*.toml, *.yaml, *.yml) found in
// the top-level directory of fsys. Other files are ignored. Each language may
// be described by one document only.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read profile directory: %w", err)
	}
	r := &Registry{tables: make(map[tableKey]*translit.Table)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := mapfile.FormatFor(entry.Name())
		if err != nil {
			tracer().Debugf("ignoring %s", entry.Name())
			continue
		}
		p, err := loadProfile(fsys, entry.Name(), format)
		if err != nil {
			return nil, err
		}
		if _, dup := r.find(p.ID); dup {
			return nil, fmt.Errorf("%s: duplicate profile for %s", entry.Name(), p.ID)
		}
		r.profiles = append(r.profiles, p)
	}
	sort.Slice(r.profiles, func(i, j int) bool {
		return r.profiles[i].ID.String() < r.profiles[j].ID.String()
	})
	r.tags = make([]language.Tag, len(r.profiles))
	for i, p := range r.profiles {
		r.tags[i] = p.ID
	}
	r.matcher = language.NewMatcher(r.tags)
	tracer().Infof("loaded %d profiles", len(r.profiles))
	return r, nil
}

func loadProfile(fsys fs.FS, name string, format mapfile.Format) (*Profile, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := mapfile.Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path.Base(name), err)
	}
	p := &Profile{
		ID:          doc.Tag(),
		Name:        doc.Name,
		Description: doc.Description,
		RTL:         doc.RTL,
		doc:         doc,
	}
	if p.Description == "" {
		p.Description = p.Name + " Translit"
	}
	for _, v := range doc.Variants {
		p.Mappings = append(p.Mappings, MappingInfo{ID: v.ID, Display: v.Display})
	}
	return p, nil
}

func (r *Registry) find(tag language.Tag) (*Profile, bool) {
	for _, p := range r.profiles {
		if p.ID == tag {
			return p, true
		}
	}
	return nil, false
}

// Profiles returns all profiles, ordered by language ID.
func (r *Registry) Profiles() []*Profile {
	return append([]*Profile(nil), r.profiles...)
}

// Profile looks up a profile by its language ID, e.g. "ru".
func (r *Registry) Profile(id string) (*Profile, error) {
	tag, err := language.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownProfile, id, err)
	}
	p, ok := r.find(tag)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownProfile, id)
	}
	return p, nil
}

// Match selects the profile best serving a list of preferred languages, for
// example derived from the user's locale. It returns false if no profile fits.
func (r *Registry) Match(preferred ...language.Tag) (*Profile, bool) {
	if len(r.profiles) == 0 || len(preferred) == 0 {
		return nil, false
	}
	_, index, confidence := r.matcher.Match(preferred...)
	if confidence == language.No {
		return nil, false
	}
	return r.profiles[index], true
}

// Table returns the compiled table for a mapping of a profile. An index out
// of range selects the default mapping.
func (r *Registry) Table(profileID string, mapping int) (*translit.Table, error) {
	p, err := r.Profile(profileID)
	if err != nil {
		return nil, err
	}
	if mapping < 0 || mapping >= len(p.Mappings) {
		tracer().Infof("profile %s has no mapping #%d, using default", p.ID, mapping)
		mapping = 0
	}
	key := tableKey{profile: p.ID.String(), mapping: mapping}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[key]; ok {
		return t, nil
	}
	t, err := p.doc.Table(p.Mappings[mapping].ID)
	if err != nil {
		return nil, fmt.Errorf("build table for %s: %w", p.ID, err)
	}
	r.tables[key] = t
	return t, nil
}
