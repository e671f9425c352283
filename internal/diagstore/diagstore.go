// Package diagstore persists operational diagnostics for one sensor's
// run: mesh session identity, sequence-gap events, device-table
// evictions, and KNN harvest events (supplemented feature: an audit
// trail the original source only ever logged to stdout). This is
// deliberately separate from internal/patchmodel's JSONL recording
// store, which holds training data, not diagnostics.
package diagstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps a single sqlite connection, kept to one open connection
// like the teacher's internal/db.Store since sqlite is effectively
// single-writer.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates/opens the diagnostics database at dbPath and ensures its
// schema exists.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec(`PRAGMA foreign_keys = ON;`)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.initialize(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT UNIQUE,
			host_name TEXT,
			started_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS sequence_gaps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER,
			client_id TEXT,
			gap INTEGER,
			observed_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sequence_gaps_session ON sequence_gaps(session_id);`,
		`CREATE TABLE IF NOT EXISTS evictions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER,
			mac TEXT,
			reason TEXT,
			evicted_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_evictions_session ON evictions(session_id);`,
		`CREATE TABLE IF NOT EXISTS knn_harvests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER,
			device_name TEXT,
			best_distance REAL,
			harvested_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_knn_harvests_session ON knn_harvests(session_id);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("diagstore: init: %w", err)
		}
	}
	return nil
}

// Session identifies one mesh run for correlating its diagnostic rows.
type Session struct {
	ID   int64
	UUID string
}

// CreateSession opens a new diagnostics session, stamping it with a
// fresh random correlation id so restarts don't collide when multiple
// access points log to a shared database.
func (s *Store) CreateSession(ctx context.Context, hostName string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	startedAt := time.Now().Format("2006-01-02 15:04:05")
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (uuid, host_name, started_at) VALUES (?, ?, ?)`,
		id, hostName, startedAt)
	if err != nil {
		return Session{}, err
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return Session{}, err
	}
	return Session{ID: rowID, UUID: id}, nil
}

// RecordSequenceGap logs a mesh peer's sequence-gap event (§4.F
// supplemented feature 1 — the original source only logged these to
// stdout).
func (s *Store) RecordSequenceGap(ctx context.Context, sessionID int64, clientID string, gap int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sequence_gaps (session_id, client_id, gap, observed_at) VALUES (?, ?, ?, ?)`,
		sessionID, clientID, gap, time.Now().Format("2006-01-02 15:04:05"))
	return err
}

// RecordEviction logs a device eviction with a caller-supplied reason
// (cmd/occusensor records device-table stage-2 removals as "stage2").
func (s *Store) RecordEviction(ctx context.Context, sessionID int64, mac, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evictions (session_id, mac, reason, evicted_at) VALUES (?, ?, ?, ?)`,
		sessionID, mac, reason, time.Now().Format("2006-01-02 15:04:05"))
	return err
}

// RecordHarvest logs a KNN poor-match harvest event (§4.K feedback),
// mirroring the sample internal/patchmodel.Harvest appends to disk.
func (s *Store) RecordHarvest(ctx context.Context, sessionID int64, deviceName string, bestDistance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO knn_harvests (session_id, device_name, best_distance, harvested_at) VALUES (?, ?, ?, ?)`,
		sessionID, deviceName, bestDistance, time.Now().Format("2006-01-02 15:04:05"))
	return err
}
