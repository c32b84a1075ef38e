package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/book-expert/voicevox-service/internal/prefs"
	"github.com/pelletier/go-toml/v2"
)

// Settings defaults.
const (
	DefaultBaseURL = "https://deprecatedapis.tts.quest/v2/voicevox/audio/"
	DefaultCommand = "#vv"
)

const (
	settingsFilePermissions = 0o600
	settingsDirPermissions  = 0o750
)

// Settings is the mutable settings document: the API key, the endpoint, the
// command prefix and the global voice defaults.
type Settings struct {
	APIKey          string   `toml:"apiKey"`
	BaseURL         string   `toml:"baseUrl"`
	Command         string   `toml:"command"`
	Speaker         *int     `toml:"speaker,omitempty"`
	Pitch           *float64 `toml:"pitch,omitempty"`
	Speed           *float64 `toml:"speed,omitempty"`
	IntonationScale *float64 `toml:"intonationScale,omitempty"`
	AddSpaces       bool     `toml:"addSpaces"`
}

// Defaults returns the configured voice defaults as a preference tier.
func (s Settings) Defaults() prefs.Record {
	return prefs.Record{
		Speaker:         s.Speaker,
		Pitch:           s.Pitch,
		Speed:           s.Speed,
		IntonationScale: s.IntonationScale,
	}
}

func (s *Settings) applyDefaults() {
	setDefault(&s.BaseURL, DefaultBaseURL)
	setDefault(&s.Command, DefaultCommand)
}

// SettingsStore owns the settings document on disk. Every mutation re-reads
// the file first, so concurrent writers are last-writer-wins per field set.
// Edits made to the file by hand are picked up on the next read.
type SettingsStore struct {
	path string

	mu      sync.RWMutex
	current Settings
	stamp   fileStamp
}

// fileStamp identifies one version of the settings file.
type fileStamp struct {
	exists  bool
	size    int64
	modTime time.Time
}

func (f fileStamp) same(other fileStamp) bool {
	return f.exists == other.exists && f.size == other.size && f.modTime.Equal(other.modTime)
}

func statSettings(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}

	return fileStamp{exists: true, size: info.Size(), modTime: info.ModTime()}
}

// LoadSettings reads the document at path. A missing file yields defaults.
func LoadSettings(path string) (*SettingsStore, error) {
	stamp := statSettings(path)

	current, err := readSettings(path)
	if err != nil {
		return nil, err
	}

	return &SettingsStore{path: path, current: current, stamp: stamp}, nil
}

// Settings returns a snapshot of the document, re-reading the file when it
// changed on disk. A file that no longer parses leaves the last good
// snapshot in place.
func (s *SettingsStore) Settings() Settings {
	stamp := statSettings(s.path)

	s.mu.RLock()
	if stamp.same(s.stamp) {
		current := s.current
		s.mu.RUnlock()

		return current
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !stamp.same(s.stamp) {
		next, err := readSettings(s.path)
		if err == nil {
			s.current = next
			s.stamp = stamp
		}
	}

	return s.current
}

// SetAPIKey persists a new API key.
func (s *SettingsStore) SetAPIKey(apiKey string) error {
	return s.update(func(settings *Settings) { settings.APIKey = apiKey })
}

// SetAddSpaces persists the separator flag used by the Chinese speech command.
func (s *SettingsStore) SetAddSpaces(enabled bool) error {
	return s.update(func(settings *Settings) { settings.AddSpaces = enabled })
}

func (s *SettingsStore) update(mutate func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := readSettings(s.path)
	if err != nil {
		return err
	}

	mutate(&next)

	err = writeSettings(s.path, next)
	if err != nil {
		return err
	}

	s.current = next
	s.stamp = statSettings(s.path)

	return nil
}

func readSettings(path string) (Settings, error) {
	var settings Settings

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to read settings '%s': %w", path, err)
	}

	if err == nil {
		err = toml.Unmarshal(data, &settings)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings '%s': %w", path, err)
		}
	}

	settings.applyDefaults()

	return settings, nil
}

// writeSettings replaces the document atomically through a sibling temp file.
func writeSettings(path string, settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(path)

	err = os.MkdirAll(dir, settingsDirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()

	if writeErr != nil {
		return fmt.Errorf("failed to write settings: %w", writeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close settings: %w", closeErr)
	}

	err = os.Chmod(tmpName, settingsFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to set settings permissions: %w", err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		return fmt.Errorf("failed to replace settings '%s': %w", path, err)
	}

	return nil
}
