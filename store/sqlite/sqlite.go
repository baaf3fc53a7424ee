/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Keeps the canonical incentive State as a single JSON document and
  appends payout snapshots next to it. The document is re-sanitized on
  every load, so a row written by an older build still yields a valid
  State.

KEY TABLES:
  states:           one row per document (id 'current'), JSON + updated_at
  payout_snapshots: immutable payout runs, results JSON + total payout

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./data/incentive.db", defaults)
  if err != nil {
      return err
  }
  defer st.Close()

  state, err := st.LoadState(ctx)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - store/store.go:        interface definition
  - store/memory/memory.go: in-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store"
)

// currentStateID keys the single live state document.
const currentStateID = "current"

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements store.Store using SQLite.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	codec *factory.Codec
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database. A nil defaults uses the
// standard defaults.
func New(dbPath string, defaults *incentive.Defaults) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, eris.Wrap(err, "failed to open database")
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	st := &Store{db: db, codec: factory.NewCodec(defaults)}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to migrate database")
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Current state document
	CREATE TABLE IF NOT EXISTS states (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Frozen payout runs (append-only)
	CREATE TABLE IF NOT EXISTS payout_snapshots (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL DEFAULT '',
		results_json TEXT NOT NULL,
		total_payout TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payout_snapshots_created_at
		ON payout_snapshots(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STATE
// =============================================================================

// LoadState returns the sanitized current state, or the default state
// when none has been saved.
func (s *Store) LoadState(ctx context.Context) (incentive.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM states WHERE id = ?`, currentStateID,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return s.codec.Defaults().State(), nil
	}
	if err != nil {
		return incentive.State{}, eris.Wrap(err, "failed to load state")
	}
	return s.codec.ParseState([]byte(data)), nil
}

// SaveState replaces the current state document.
func (s *Store) SaveState(ctx context.Context, state incentive.State) error {
	data, err := s.codec.MarshalState(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO states (id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		currentStateID, string(data), time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return eris.Wrap(err, "failed to save state")
	}
	return nil
}

// =============================================================================
// PAYOUT SNAPSHOTS
// =============================================================================

// SaveSnapshot stores a payout run.
func (s *Store) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payout_snapshots (id, label, results_json, total_payout, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.Label, string(snap.Results),
		snap.TotalPayout.String(),
		snap.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return eris.Wrapf(err, "failed to save snapshot %s", snap.ID)
	}
	return nil
}

// ListSnapshots returns all snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context) ([]store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, results_json, total_payout, created_at
		FROM payout_snapshots
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list snapshots")
	}
	defer rows.Close()

	snaps := []store.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// GetSnapshot returns one snapshot or store.ErrSnapshotNotFound.
func (s *Store) GetSnapshot(ctx context.Context, id string) (*store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, label, results_json, total_payout, created_at
		FROM payout_snapshots WHERE id = ?`, id)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (store.Snapshot, error) {
	var snap store.Snapshot
	var results, total, createdAt string

	if err := row.Scan(&snap.ID, &snap.Label, &results, &total, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, err
		}
		return snap, eris.Wrap(err, "failed to scan snapshot")
	}

	snap.Results = []byte(results)
	snap.TotalPayout, _ = decimal.NewFromString(total)
	snap.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return snap, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"states", "payout_snapshots"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return eris.Wrapf(err, "failed to clear %s", table)
		}
	}
	return nil
}
