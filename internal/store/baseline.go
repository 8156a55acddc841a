// Package store persists the finding baseline in SQLite. Baselined
// fingerprints are findings the team has accepted; lint runs report only
// what is not in the baseline.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"ichthus/internal/logging"
	"ichthus/internal/rule"
)

// BaselineStore wraps the SQLite database holding baselined fingerprints
// and run history.
type BaselineStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Run is one recorded lint run.
type Run struct {
	ID         string
	StartedAt  time.Time
	Findings   int
	Suppressed int
}

// NewBaselineStore initializes the SQLite database at the given path.
func NewBaselineStore(path string) (*BaselineStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewBaselineStore")
	defer timer.Stop()

	logging.Store("Initializing BaselineStore at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	// synchronous=NORMAL is safe under WAL and much faster than FULL.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &BaselineStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *BaselineStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS baseline (
		fingerprint TEXT PRIMARY KEY,
		rule_id     TEXT NOT NULL,
		file        TEXT NOT NULL,
		subject     TEXT NOT NULL,
		added_at    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_baseline_rule ON baseline(rule_id);

	CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		started_at       INTEGER NOT NULL,
		finding_count    INTEGER NOT NULL,
		suppressed_count INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Close closes the database.
func (s *BaselineStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// RecordRun stores one run's counts and returns the run ID.
func (s *BaselineStore) RecordRun(findings, suppressed int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO runs (id, started_at, finding_count, suppressed_count) VALUES (?, ?, ?, ?)",
		id, time.Now().UnixMilli(), findings, suppressed,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	logging.StoreDebug("Recorded run %s (%d findings, %d suppressed)", id, findings, suppressed)
	return id, nil
}

// Runs returns the most recent runs, newest first.
func (s *BaselineStore) Runs(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id, started_at, finding_count, suppressed_count FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.Findings, &r.Suppressed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(ts)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// UpdateBaseline replaces the baseline with the given findings' fingerprints.
func (s *BaselineStore) UpdateBaseline(findings []rule.Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM baseline"); err != nil {
		return fmt.Errorf("failed to clear baseline: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO baseline (fingerprint, rule_id, file, subject, added_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, f := range findings {
		if _, err := stmt.Exec(f.Fingerprint(), f.RuleID, f.File, f.Subject, now); err != nil {
			return fmt.Errorf("failed to insert fingerprint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit baseline: %w", err)
	}
	logging.Store("Baseline updated with %d fingerprints", len(findings))
	return nil
}

// Clear removes every baselined fingerprint.
func (s *BaselineStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM baseline"); err != nil {
		return fmt.Errorf("failed to clear baseline: %w", err)
	}
	logging.Store("Baseline cleared")
	return nil
}

// Fingerprints returns the set of baselined fingerprints.
func (s *BaselineStore) Fingerprints() (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT fingerprint FROM baseline")
	if err != nil {
		return nil, fmt.Errorf("failed to query baseline: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		set[fp] = true
	}
	return set, rows.Err()
}

// Count returns the number of baselined fingerprints.
func (s *BaselineStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM baseline").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count baseline: %w", err)
	}
	return n, nil
}

// Filter splits findings into those not covered by the baseline and the
// count of suppressed ones.
func (s *BaselineStore) Filter(findings []rule.Finding) ([]rule.Finding, int, error) {
	baselined, err := s.Fingerprints()
	if err != nil {
		return nil, 0, err
	}

	var fresh []rule.Finding
	suppressed := 0
	for _, f := range findings {
		if baselined[f.Fingerprint()] {
			suppressed++
			continue
		}
		fresh = append(fresh, f)
	}
	return fresh, suppressed, nil
}
