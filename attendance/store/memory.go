// Package store provides in-memory Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements attendance.Store without any durability. Visits are
// keyed by id; settings are a single slot.
type Memory struct {
	mu       sync.RWMutex
	visits   map[string]attendance.Visit
	settings *attendance.Settings
}

func NewMemory() *Memory {
	return &Memory{visits: make(map[string]attendance.Visit)}
}

// SaveVisit inserts or replaces the visit by id.
func (m *Memory) SaveVisit(_ context.Context, v attendance.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits[v.ID] = v.Clone()
	return nil
}

// LoadVisits returns all visits ordered by date.
func (m *Memory) LoadVisits(_ context.Context) ([]attendance.Visit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]attendance.Visit, 0, len(m.visits))
	for _, v := range m.visits {
		out = append(out, v.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// DeleteVisit removes the visit by id. Deleting a missing id is not an
// error; consolidation may race a save that never happened.
func (m *Memory) DeleteVisit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.visits, id)
	return nil
}

// SaveSettings replaces the stored settings.
func (m *Memory) SaveSettings(_ context.Context, s attendance.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := s.Clone()
	m.settings = &snapshot
	return nil
}

// LoadSettings returns the stored settings, or nil when none were saved.
func (m *Memory) LoadSettings(_ context.Context) (*attendance.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return nil, nil
	}
	snapshot := m.settings.Clone()
	return &snapshot, nil
}
