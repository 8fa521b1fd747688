package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage persists one value. Load reports ok=false when nothing was saved yet.
type Storage[T any] interface {
	Load() (value T, ok bool, err error)
	Save(value T) error
}

// FileStorage keeps the value as a JSON file, replaced atomically on save.
type FileStorage[T any] struct {
	Path string
}

func (f FileStorage[T]) Load() (T, bool, error) {
	var v T
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("read %s: %w", f.Path, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return v, true, nil
}

func (f FileStorage[T]) Save(v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.Path, err)
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	return nil
}

// MemoryStorage keeps the value in memory. SaveErr, when set, fails every Save.
type MemoryStorage[T any] struct {
	mu      sync.Mutex
	value   T
	saved   bool
	saves   int
	SaveErr error
}

func (m *MemoryStorage[T]) Load() (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.saved, nil
}

func (m *MemoryStorage[T]) Save(v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.value, m.saved = v, true
	return nil
}

// Saves counts Save calls, failed ones included.
func (m *MemoryStorage[T]) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
