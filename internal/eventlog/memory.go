package eventlog

import (
	"context"
	"sync"
)

// MemoryStore keeps the event log in process memory. Contents are lost when
// the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record // oldest first
}

// NewMemoryStore creates an empty in-memory event log
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a record to the front of the log
func (m *MemoryStore) Append(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record.clone())
	return nil
}

// List returns all records, newest first
func (m *MemoryStore) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return newestFirst(m.records), nil
}

// Count returns the number of records
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records), nil
}

// Close is a no-op for the memory store
func (m *MemoryStore) Close() error {
	return nil
}
