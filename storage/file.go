package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"medboard-api/domain"
)

// File persists the whole board as a single JSON document, replaced
// atomically on every save so readers never observe a partial write.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed store at path, creating parent directories
// as needed. The file itself is created on first save.
func NewFile(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &File{path: path}, nil
}

// LoadAll reads the stored items. A missing file is an empty board, not an
// error.
func (f *File) LoadAll(ctx context.Context) ([]domain.BoardItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.BoardItem{}, nil
		}
		return nil, err
	}
	var items []domain.BoardItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveAll writes the collection via an atomic replace.
func (f *File) SaveAll(ctx context.Context, items []domain.BoardItem) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return atomic.WriteFile(f.path, bytes.NewReader(data))
}
