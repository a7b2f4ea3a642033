/*
Package settings stores the user's choices between profiles and mappings.

Settings live in a small INI file:

	[general]
	profile = ru

	[mapping]
	ru = 1
	uk = 0

The mapping section records, per language, the index of the selected
mapping of that language's profile. A missing file means default settings;
a missing or malformed index means the default mapping (0).

A Watcher observes the settings file and hands reloaded settings to its
subscribers, so a running session can follow changes made elsewhere.
*/
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-ini/ini"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'translit.settings'
func tracer() tracing.Trace {
	return tracing.Select("translit.settings")
}

// EnvPath names the environment variable overriding the settings location.
const EnvPath = "TRANSLIT_SETTINGS"

const (
	sectionGeneral = "general"
	sectionMapping = "mapping"
	keyProfile     = "profile"
)

// Settings is a snapshot of the user settings. It is safe for concurrent use.
type Settings struct {
	mu   sync.RWMutex
	file *ini.File
}

// Default returns empty settings: no preferred profile and the default
// mapping for every language.
func Default() *Settings {
	return &Settings{file: ini.Empty()}
}

// DefaultPath returns the location of the settings file: $TRANSLIT_SETTINGS
// if set, otherwise translit/settings.ini below the user's config directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate settings: %w", err)
	}
	return filepath.Join(dir, "translit", "settings.ini"), nil
}

// Load reads settings from path. A file which does not exist yields default
// settings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		tracer().Debugf("no settings at %s, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return Parse(data)
}

// Parse reads settings from INI data.
func Parse(data []byte) (*Settings, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &Settings{file: file}, nil
}

// Save writes the settings to path, creating its directory if necessary.
func (s *Settings) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := s.file.SaveTo(path); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	tracer().Debugf("settings saved to %s", path)
	return nil
}

// Profile returns the ID of the preferred profile, or "" if none is set.
func (s *Settings) Profile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.lookup(sectionGeneral, keyProfile)
	if !ok {
		return ""
	}
	return key.String()
}

// SetProfile sets the preferred profile.
func (s *Settings) SetProfile(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.Section(sectionGeneral).Key(keyProfile).SetValue(id)
}

// MappingIndex returns the index of the selected mapping for a language.
func (s *Settings) MappingIndex(lang string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.lookup(sectionMapping, lang)
	if !ok {
		return 0
	}
	idx, err := key.Int()
	if err != nil || idx < 0 {
		tracer().Errorf("settings: bad mapping index for %s: %q", lang, key.String())
		return 0
	}
	return idx
}

// SetMappingIndex selects a mapping for a language.
func (s *Settings) SetMappingIndex(lang string, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.Section(sectionMapping).Key(lang).SetValue(fmt.Sprint(idx))
}

// Languages returns the languages with a recorded mapping selection, sorted.
func (s *Settings) Languages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	section, err := s.file.GetSection(sectionMapping)
	if err != nil {
		return nil
	}
	langs := section.KeyStrings()
	sort.Strings(langs)
	return langs
}

// lookup finds an existing key without creating it.
func (s *Settings) lookup(section, key string) (*ini.Key, bool) {
	sec, err := s.file.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return nil, false
	}
	return sec.Key(key), true
}
