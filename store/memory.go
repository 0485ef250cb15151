package store

import (
	"context"
	"sync"

	"github.com/opd-ai/leveler/settings"
)

// MemoryStore keeps the record in memory. It is used by tests and by
// sessions that run without a settings file.
type MemoryStore struct {
	mu      sync.Mutex
	initial settings.Partial
	saved   *settings.Settings
	saves   int
}

// NewMemoryStore creates a store whose first Load returns initial.
func NewMemoryStore(initial settings.Partial) *MemoryStore {
	return &MemoryStore{initial: initial}
}

// Load returns the last saved record, or the initial partial.
func (m *MemoryStore) Load(ctx context.Context) (settings.Partial, error) {
	if err := ctx.Err(); err != nil {
		return settings.Partial{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saved != nil {
		return settings.PartialOf(*m.saved), nil
	}
	return m.initial, nil
}

// Save records s.
func (m *MemoryStore) Save(ctx context.Context, s settings.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saved = &s
	m.saves++
	return nil
}

// Saved returns the last saved record and whether one exists.
func (m *MemoryStore) Saved() (settings.Settings, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saved == nil {
		return settings.Settings{}, false
	}
	return *m.saved, true
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
