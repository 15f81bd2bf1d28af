package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const preferencesFile = "preferences.json"

// Store persists the last submitted preferences so the form reopens with them.
type Store struct {
	Dir string
}

// NewStore returns a store rooted in the user config dir.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{Dir: filepath.Join(dir, "frontfrend")}, nil
}

func (s *Store) path() (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, preferencesFile), nil
}

func (s *Store) Save(p Preferences) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the saved preferences, or Default when nothing valid was saved.
func (s *Store) Load() (Preferences, error) {
	path, err := s.path()
	if err != nil {
		return Default(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), err
	}
	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), err
	}
	if p.Validate() != nil {
		return Default(), nil
	}
	return p, nil
}
