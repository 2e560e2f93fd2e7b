package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Persistence is a pass-through key-value adapter for the store state.
// The core never depends on it being available; read-only deployments
// simply skip saving.
type Persistence interface {
	Load() (*Snapshot, error)
	Save(snap *Snapshot) error
}

// FilePersistence stores the snapshot as a single JSON document.
type FilePersistence struct {
	Path string
}

// NewFilePersistence creates a JSON file adapter at the given path.
func NewFilePersistence(path string) *FilePersistence {
	return &FilePersistence{Path: path}
}

// Load reads the store state. A missing file yields a nil snapshot and
// no error, so callers can fall back to defaults.
func (fp *FilePersistence) Load() (*Snapshot, error) {
	data, err := os.ReadFile(fp.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", fp.Path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", fp.Path, err)
	}
	if snap.Suppliers == nil {
		snap.Suppliers = make(map[string]Patch)
	}
	if snap.Items == nil {
		snap.Items = make(map[string]Patch)
	}

	return &snap, nil
}

// Save writes the store state atomically via a temp file rename.
func (fp *FilePersistence) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(fp.Path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}

	if err := os.Rename(tmp.Name(), fp.Path); err != nil {
		return fmt.Errorf("failed to replace settings file %s: %w", fp.Path, err)
	}

	return nil
}
