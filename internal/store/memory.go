package store

import (
	"context"
	"sync"
	"time"

	"github.com/theirongolddev/scalelog/internal/model"
)

// Memory keeps the journal in an ordered slice for the life of the process.
type Memory struct {
	mu      sync.RWMutex
	records []model.DailyRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// List implements Store.
func (m *Memory) List(_ context.Context) ([]model.DailyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.DailyRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, day time.Time) (model.DailyRecord, error) {
	day = model.Day(day)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.Date.Equal(day) {
			return r, nil
		}
	}
	return model.DailyRecord{}, ErrNotFound
}

// Upsert implements Store.
func (m *Memory) Upsert(_ context.Context, r model.DailyRecord) error {
	r, err := prepare(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records = Merge(m.records, r)
	m.mu.Unlock()
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, day time.Time) error {
	day = model.Day(day)
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.Date.Equal(day) {
			m.records = append(m.records[:i:i], m.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
