/*
Package sqlite provides the SQLite-backed implementation of the attendance
storage interfaces.

PURPOSE:
  Durable storage for the visit collection and the settings snapshot.
  The engine loads once at startup and writes after every mutation, so
  the store optimizes for whole-collection reads and single-visit upserts.

INTERFACES IMPLEMENTED:
  attendance.VisitStore:    visit persistence (upsert, load-all, delete)
  attendance.SettingsStore: single-row settings snapshot

IDENTITY CONTRACT:
  The visit id column is written verbatim and restored verbatim. Identity
  is minted exactly once, by the engine at visit creation; the store never
  generates ids. External systems (calendar-event mirrors) key on visit
  ids, so a reload that minted fresh ids would orphan every reference.

KEY TABLES:
  visits:         one row per visit (id, date, coordinate)
  visit_sessions: entry/exit intervals, ordered by seq within a visit
  settings:       single-row JSON snapshot of attendance.Settings

WAL MODE:
  Opened with WAL for better concurrency: readers don't block the single
  writer, and crash recovery is cleaner.

USAGE:
  st, err := sqlite.New("./attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - attendance/store.go: interface definitions
  - attendance/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/attendance-engine/attendance"
)

const dayFormat = "2006-01-02"

// Store implements attendance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Visits (one row per calendar day with any presence)
	CREATE TABLE IF NOT EXISTS visits (
		id TEXT PRIMARY KEY,
		visit_date TEXT NOT NULL,
		lat REAL,
		lng REAL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visits_date ON visits(visit_date);

	-- Sessions (entry/exit intervals within a visit)
	CREATE TABLE IF NOT EXISTS visit_sessions (
		visit_id TEXT NOT NULL REFERENCES visits(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		entry_time TEXT NOT NULL,
		exit_time TEXT,
		PRIMARY KEY (visit_id, seq)
	);

	-- Settings (single-row JSON snapshot)
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// VISIT STORE (attendance.VisitStore interface)
// =============================================================================

// SaveVisit inserts or replaces a visit and its sessions atomically.
func (s *Store) SaveVisit(ctx context.Context, v attendance.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lat, lng sql.NullFloat64
	if v.Coordinate != nil {
		lat = sql.NullFloat64{Float64: v.Coordinate.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: v.Coordinate.Longitude, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO visits (id, visit_date, lat, lng, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			visit_date = excluded.visit_date,
			lat = excluded.lat,
			lng = excluded.lng,
			updated_at = excluded.updated_at`,
		v.ID,
		// Date is already day-normalized; format it in its own location.
		// Shifting to UTC first would move a local midnight in a
		// UTC-positive zone back to the previous calendar day.
		v.Date.Format(dayFormat),
		lat,
		lng,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save visit: %w", err)
	}

	// Sessions are rewritten wholesale; the set is small (a handful of
	// intervals per day) and the visit row is the unit of persistence.
	if _, err := tx.ExecContext(ctx, `DELETE FROM visit_sessions WHERE visit_id = ?`, v.ID); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	for i, sess := range v.Sessions {
		var exit sql.NullString
		if sess.ExitTime != nil {
			exit = sql.NullString{String: sess.ExitTime.UTC().Format(time.RFC3339), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO visit_sessions (visit_id, seq, entry_time, exit_time)
			VALUES (?, ?, ?, ?)`,
			v.ID, i, sess.EntryTime.UTC().Format(time.RFC3339), exit,
		)
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	return tx.Commit()
}

// LoadVisits returns the full collection ordered by date.
func (s *Store) LoadVisits(ctx context.Context) ([]attendance.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, visit_date, lat, lng FROM visits ORDER BY visit_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}
	defer rows.Close()

	var visits []attendance.Visit
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, date string
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&id, &date, &lat, &lng); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}

		v := attendance.Visit{ID: id}
		if v.ID == "" {
			// Legacy rows persisted before ids were part of the record.
			v.ID = uuid.NewString()
		}
		if day, err := time.Parse(dayFormat, date); err == nil {
			v.Date = day
		}
		if lat.Valid && lng.Valid {
			v.Coordinate = &attendance.GeoPoint{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		index[id] = len(visits)
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadSessions(ctx, visits, index); err != nil {
		return nil, err
	}
	return visits, nil
}

func (s *Store) loadSessions(ctx context.Context, visits []attendance.Visit, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT visit_id, entry_time, exit_time
		FROM visit_sessions ORDER BY visit_id, seq`)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			visitID, entry string
			exit           sql.NullString
		)
		if err := rows.Scan(&visitID, &entry, &exit); err != nil {
			return fmt.Errorf("failed to scan session: %w", err)
		}
		i, ok := index[visitID]
		if !ok {
			continue // orphan row; ignore rather than fail the load
		}

		var sess attendance.Session
		t, err := time.Parse(time.RFC3339, entry)
		if err != nil {
			continue // malformed legacy row; skip, don't fail the load
		}
		sess.EntryTime = t
		if exit.Valid {
			if et, err := time.Parse(time.RFC3339, exit.String); err == nil {
				sess.ExitTime = &et
			}
		}
		visits[i].Sessions = append(visits[i].Sessions, sess)
	}
	return rows.Err()
}

// DeleteVisit removes a visit and its sessions. Used only by duplicate-day
// consolidation.
func (s *Store) DeleteVisit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM visit_sessions WHERE visit_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}
	return nil
}

// =============================================================================
// SETTINGS STORE (attendance.SettingsStore interface)
// =============================================================================

// SaveSettings replaces the single settings row.
func (s *Store) SaveSettings(ctx context.Context, settings attendance.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, config_json, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at`,
		string(config), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// LoadSettings returns the stored settings, or (nil, nil) when none exist.
func (s *Store) LoadSettings(ctx context.Context) (*attendance.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var config string
	err := s.db.QueryRowContext(ctx, `SELECT config_json FROM settings WHERE id = 1`).Scan(&config)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var settings attendance.Settings
	if err := json.Unmarshal([]byte(config), &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &settings, nil
}
