package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

const (
	dirPerms  = 0o700
	filePerms = 0o600
)

// FileStore keeps the session as a JSON file, replaced atomically on save.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the saved state. A missing file yields an empty state.
func (f *FileStore) Load() (State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read session: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode session %s: %w", f.path, err)
	}
	return st, nil
}

// Save writes st atomically with owner-only permissions.
func (f *FileStore) Save(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), dirPerms); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	if err := atomic.WriteFile(f.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	// atomic.WriteFile does not set permissions on new files.
	if err := os.Chmod(f.path, filePerms); err != nil {
		return fmt.Errorf("set session permissions: %w", err)
	}
	return nil
}

// Clear removes the file. A missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
