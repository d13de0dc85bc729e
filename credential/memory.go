package credential

import (
	"context"
	"sync"
)

// MemoryBackend is the session-tier backend: values live for the current
// process only. It never fails.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string]string),
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.values[key] = value
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.values, key)
	return nil
}
