package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1CEs/xams-sub001/domain/navigation"
)

// Profile is the per-user bankctl configuration
type Profile struct {
	APIURL  string        `yaml:"api_url"`
	Owner   string        `yaml:"owner"`
	Timeout time.Duration `yaml:"timeout"`
	// State is where the cursor is kept between invocations
	State string `yaml:"state"`
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xams"
	}
	return filepath.Join(home, ".xams")
}

// DefaultProfile is written on first run
func DefaultProfile() Profile {
	return Profile{
		APIURL:  "http://localhost:8080/api/v1",
		Timeout: 10 * time.Second,
		State:   filepath.Join(defaultDir(), "cursor.yaml"),
	}
}

// loadProfile reads path, creating it with defaults when missing.
// Fields left empty in the file keep their default.
func loadProfile(path string) (Profile, error) {
	profile := DefaultProfile()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := writeYAML(path, profile); err != nil {
			return profile, fmt.Errorf("failed to create the profile: %w", err)
		}
		return profile, nil
	}
	if err != nil {
		return profile, fmt.Errorf("failed to read the profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse the profile %s: %w", path, err)
	}
	return profile, nil
}

// loadSnapshot restores the persisted cursor. A missing file is a fresh
// cursor at the root.
func loadSnapshot(path string) (*navigation.Cursor, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return navigation.NewCursor(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read the cursor state: %w", err)
	}

	var snap navigation.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse the cursor state %s: %w", path, err)
	}
	return navigation.Restore(snap)
}

func saveSnapshot(path string, snap navigation.Snapshot) error {
	return writeYAML(path, snap)
}

func writeYAML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
