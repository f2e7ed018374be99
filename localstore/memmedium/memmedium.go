package memmedium

import (
	"errors"
	"sync"

	"github.com/jrsteele09/go-session-guard/localstore"
)

var _ localstore.Medium = (*Medium)(nil)

// ErrQuotaExceeded is returned by Set when a write would take the medium over its quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Medium is an in-memory localstore.Medium, optionally bounded by a byte quota the
// way browser storage is.
type Medium struct {
	mu     sync.RWMutex
	values map[string]string
	quota  int // bytes of keys+values, 0 means unbounded
	used   int
}

// New creates an empty, unbounded medium.
func New() *Medium {
	return &Medium{values: make(map[string]string)}
}

// NewWithQuota creates a medium that refuses writes beyond quota bytes.
func NewWithQuota(quota int) *Medium {
	m := New()
	m.quota = quota
	return m
}

func (m *Medium) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", localstore.ErrNotFound
	}
	return value, nil
}

func (m *Medium) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + len(key) + len(value)
	if old, ok := m.values[key]; ok {
		used -= len(key) + len(old)
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}
	m.values[key] = value
	m.used = used
	return nil
}

func (m *Medium) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.values[key]
	if !ok {
		return nil // Already doesn't exist, no error
	}
	delete(m.values, key)
	m.used -= len(key) + len(old)
	return nil
}

// Len returns the number of stored keys.
func (m *Medium) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
