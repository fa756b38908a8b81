package service

import (
	"context"
	"sync"

	"daily_trader/internal/models"
)

// Memory журнал без базы: живёт до конца процесса.
type Memory struct {
	mu     sync.Mutex
	opens  map[string][]models.OpenRecord
	closes map[string][]models.CloseRecord
}

func NewMemory() *Memory {
	return &Memory{
		opens:  make(map[string][]models.OpenRecord),
		closes: make(map[string][]models.CloseRecord),
	}
}

func (m *Memory) SaveOpen(_ context.Context, runID string, rec models.OpenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens[runID] = append(m.opens[runID], rec)
	return nil
}

func (m *Memory) SaveClose(_ context.Context, runID string, rec models.CloseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes[runID] = append(m.closes[runID], rec)
	return nil
}

func (m *Memory) Opens(runID string) []models.OpenRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.OpenRecord(nil), m.opens[runID]...)
}

func (m *Memory) Closes(runID string) []models.CloseRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CloseRecord(nil), m.closes[runID]...)
}

func (m *Memory) Close() {}
