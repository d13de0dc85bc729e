package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend is a durable-tier backend storing keys in a single JSON file.
// The file is created with 0600 permissions and replaced atomically via a
// temp-file rename. A corrupt or unreadable file reads as empty.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	values := b.loadLocked()
	value, ok := values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (b *FileBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values := b.loadLocked()
	values[key] = value
	return b.saveLocked(values)
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values := b.loadLocked()
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return b.saveLocked(values)
}

// loadLocked reads the backing file. Absence and corruption both read as
// an empty map: durable storage is best-effort.
func (b *FileBackend) loadLocked() map[string]string {
	values := make(map[string]string)

	data, err := os.ReadFile(b.path)
	if err != nil || len(data) == 0 {
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string)
	}
	return values
}

func (b *FileBackend) saveLocked(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := os.Rename(tmpPath, b.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// DefaultFilePath returns the conventional credentials file location under
// the user's home directory.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("credential: cannot resolve home directory")
	}
	return filepath.Join(home, ".seatrans", "credentials.json"), nil
}
