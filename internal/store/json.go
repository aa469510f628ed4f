package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile stores the snapshot as one JSON object:
// {"<owner>": [[hours, image, message|null], ...]}.
// Writes overwrite the file in place; a crash mid-write can leave it truncated.
type JSONFile struct {
	mu   sync.Mutex
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load reads the file. A missing file is an empty snapshot.
func (f *JSONFile) Load(_ context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	snap := Snapshot{}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return snap, nil
}

// Save overwrites the file with s.
func (f *JSONFile) Save(_ context.Context, s Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s == nil {
		s = Snapshot{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (f *JSONFile) Close() error { return nil }
