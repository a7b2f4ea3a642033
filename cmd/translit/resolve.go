package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/translit"
	"github.com/npillmayer/translit/mapfile"
	"github.com/npillmayer/translit/profiles"
	"github.com/npillmayer/translit/settings"
	"github.com/npillmayer/translit/textmap"
	"golang.org/x/text/language"
)

const fallbackProfile = "ru"

// selection is the outcome of resolving flags and settings.
type selection struct {
	profile *profiles.Profile // nil for a custom mapping file
	mapping int
	table   *translit.Table
}

func (s selection) String() string {
	if s.profile == nil {
		return s.table.Name()
	}
	m := s.profile.Mappings[s.mapping]
	return fmt.Sprintf("%s: %s", s.profile.Name, m.Display)
}

// choices are the user's explicit requests from the command line.
type choices struct {
	profile string
	mapping string
	mapFile string
}

// resolve determines the active table. Explicit choices win over settings;
// without either the user's locale selects the profile.
func resolve(reg *profiles.Registry, s *settings.Settings, c choices) (selection, error) {
	if c.mapFile != "" {
		table, err := loadMapFile(c.mapFile, c.mapping)
		if err != nil {
			return selection{}, err
		}
		return selection{table: table}, nil
	}
	profileID := c.profile
	if profileID == "" {
		profileID = s.Profile()
	}
	if profileID == "" {
		profileID = fallbackProfile
		if p, ok := reg.Match(localeTags()...); ok {
			profileID = p.ID.String()
		}
	}
	p, err := reg.Profile(profileID)
	if err != nil {
		return selection{}, err
	}
	idx := s.MappingIndex(p.ID.String())
	if c.mapping != "" {
		var ok bool
		if idx, ok = p.MappingIndex(c.mapping); !ok {
			return selection{}, fmt.Errorf("%w %q for %s", mapfile.ErrUnknownVariant, c.mapping, p.ID)
		}
	}
	if idx >= len(p.Mappings) {
		idx = 0
	}
	table, err := reg.Table(p.ID.String(), idx)
	if err != nil {
		return selection{}, err
	}
	return selection{profile: p, mapping: idx, table: table}, nil
}

func loadMapFile(path, variant string) (*translit.Table, error) {
	if strings.HasSuffix(path, ".txt") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return textmap.LoadTable(path, f)
	}
	doc, err := mapfile.Load(path)
	if err != nil {
		return nil, err
	}
	if variant == "" {
		variant = doc.Variants[0].ID
	}
	return doc.Table(variant)
}

// localeTags derives preferred languages from the POSIX locale variables.
func localeTags() []language.Tag {
	var tags []language.Tag
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(env)
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
