package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// Store owns the persisted settings file. It serializes every mutation and
// writes the file back immediately, mirroring how the settings were managed
// before runtime state was split out of them.
//
// The vault uses Store to keep the entries index in step with the files on
// disk; everything else treats the settings as read-mostly.
type Store struct {
	mu       sync.RWMutex
	settings *Settings
}

// NewStore wraps the already merged settings and persists them once, which
// creates the settings file (and clears FirstRun) on the first launch.
func NewStore(settings *Settings) (*Store, error) {
	s := &Store{settings: settings}

	if err := s.save(); err != nil {
		return nil, fmt.Errorf("persist settings: %w", err)
	}
	return s, nil
}

// Settings returns a copy of the current settings. The Entries slice is
// cloned so callers cannot mutate the index behind the store's back.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := *s.settings
	cp.Entries = append([]models.ManifestEntry(nil), s.settings.Entries...)
	return cp
}

// Update applies fn to the settings under the store lock and persists the
// result. fn must not retain the *Settings it receives.
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.settings)
	return s.save()
}

// Entry returns the index entry for accountName, if one exists.
func (s *Store) Entry(accountName string) (models.ManifestEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.settings.Entries {
		if e.AccountName == accountName {
			return e, true
		}
	}
	return models.ManifestEntry{}, false
}

// UpsertEntry inserts or replaces the index entry for entry.AccountName and
// persists the settings file.
func (s *Store) UpsertEntry(entry models.ManifestEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, e := range s.settings.Entries {
		if e.AccountName == entry.AccountName {
			s.settings.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		s.settings.Entries = append(s.settings.Entries, entry)
	}

	return s.save()
}

// RemoveEntry deletes the index entry for accountName, if present, and
// persists the settings file. Removing a missing entry is a no-op.
func (s *Store) RemoveEntry(accountName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.settings.Entries {
		if e.AccountName == accountName {
			s.settings.Entries = append(s.settings.Entries[:i], s.settings.Entries[i+1:]...)
			return s.save()
		}
	}
	return nil
}

// save must be called with the store lock held.
func (s *Store) save() error {
	s.settings.FirstRun = false

	dir := filepath.Dir(s.settings.SettingsPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.WriteFile(s.settings.SettingsPath, data, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
