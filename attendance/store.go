/*
store.go - Persistence interfaces for visits and settings

PURPOSE:
  Defines the boundary between the engine and durable storage. The engine
  loads a snapshot once at startup and writes after every mutation; writes
  are best-effort and never block signal handling.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - attendance/store: in-memory store for tests and dev
*/
package attendance

import "context"

// VisitStore persists the visit collection. SaveVisit upserts by id, so a
// visit mutated repeatedly over a day overwrites its own row.
type VisitStore interface {
	// SaveVisit inserts or replaces a visit by id.
	SaveVisit(ctx context.Context, v Visit) error

	// LoadVisits returns the full collection, ordered by date.
	LoadVisits(ctx context.Context) ([]Visit, error)

	// DeleteVisit removes a visit by id. Only duplicate-day consolidation
	// deletes; normal operation never does.
	DeleteVisit(ctx context.Context, id string) error
}

// SettingsStore persists the single settings snapshot.
type SettingsStore interface {
	// SaveSettings replaces the stored settings.
	SaveSettings(ctx context.Context, s Settings) error

	// LoadSettings returns the stored settings, or (nil, nil) when none
	// have been saved yet.
	LoadSettings(ctx context.Context) (*Settings, error)
}

// Store is the full persistence surface the server wires up.
type Store interface {
	VisitStore
	SettingsStore
}
