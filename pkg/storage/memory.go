package storage

import (
	"context"
	"fmt"
	"sync"
)

type memory struct {
	mu      sync.RWMutex
	values  map[string][]byte
	maxSize int64
}

// NewMemory creates an in-process store. A maxSize of zero disables the quota.
func NewMemory(maxSize int64) System {
	return &memory{
		values:  make(map[string][]byte),
		maxSize: maxSize,
	}
}

func (m *memory) Store(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSize > 0 {
		var used int64
		for k, v := range m.values {
			if k != key {
				used += int64(len(v))
			}
		}
		if used+int64(len(data)) > m.maxSize {
			return fmt.Errorf("%w: %d of %d bytes used, write needs %d", ErrQuotaExceeded, used, m.maxSize, len(data))
		}
	}

	m.values[key] = append([]byte(nil), data...)
	return nil
}

func (m *memory) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memory) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memory) Validate(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrInvalidKey
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.values[key]
	return ok, nil
}
