package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Durable state is deliberately tiny: the session identity subset and the
// theme flag. Each namespace is its own JSON file under the config dir, with
// an explicit serialize/deserialize boundary per store; nothing else survives
// a restart (filters, overlays, notifications, and loaded collections are
// rebuilt each session).

const (
	authStateFileName = "auth.json"
	uiStateFileName   = "ui.json"
)

// ConfigDir returns the directory durable state lives in.
// CREWDECK_CONFIG_DIR overrides it (keeps unit tests from touching ~/.crewdeck).
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("CREWDECK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".crewdeck"), nil
}

// stateFile reads and writes one durable namespace. An empty dir disables
// persistence entirely (used by tests and one-shot CLI invocations that must
// not write identity to disk).
type stateFile struct {
	dir  string
	name string
}

// load fills v from disk. A missing or corrupted file leaves v untouched and
// returns nil: durable state is best effort, callers always start from
// defaults.
func (f stateFile) load(v any) error {
	if strings.TrimSpace(f.dir) == "" {
		return nil
	}
	b, err := os.ReadFile(filepath.Join(f.dir, f.name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		// Corrupted file => treat as missing.
		return nil
	}
	return nil
}

func (f stateFile) save(v any) error {
	if strings.TrimSpace(f.dir) == "" {
		return nil
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	// Unique temp file + atomic rename so concurrent processes never observe
	// a partial write.
	tmp, err := os.CreateTemp(f.dir, f.name+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmpPath, 0o600)
	return os.Rename(tmpPath, filepath.Join(f.dir, f.name))
}
