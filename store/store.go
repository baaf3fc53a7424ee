/*
Package store defines persistence for incentive state and payout snapshots.

PURPOSE:
  The engine is pure; the host keeps the canonical State as one JSON
  document and reloads it through the sanitizer on every start. Payout
  runs can be frozen into snapshots so a paid bonus can be audited later
  even after goals, fulfillment or settings have moved on.

KEY TYPES:
  Store:    state document plus payout snapshots
  Snapshot: a frozen payout run (per-employee results and the total)

LOAD CONTRACT:
  LoadState never returns a half-valid State. A missing document yields
  the default state; a stored document always passes through the
  sanitizer before it is returned.

IMPLEMENTATIONS:
  - store/sqlite: SQLite (mattn/go-sqlite3), WAL mode
  - store/memory: in-memory for tests and demos

SEE ALSO:
  - factory/state.go: JSON codec used by both implementations
  - api/handlers.go:  the only writer
*/
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/incentive"
)

// ErrSnapshotNotFound is returned when a snapshot ID is unknown.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store persists the current State and payout snapshots.
type Store interface {
	// LoadState returns the sanitized current state, or the default state
	// when nothing has been saved yet.
	LoadState(ctx context.Context) (incentive.State, error)

	// SaveState replaces the current state.
	SaveState(ctx context.Context, s incentive.State) error

	// SaveSnapshot stores a payout run. Snapshots are never updated.
	SaveSnapshot(ctx context.Context, snap Snapshot) error

	// ListSnapshots returns all snapshots, newest first.
	ListSnapshots(ctx context.Context) ([]Snapshot, error)

	// GetSnapshot returns one snapshot or ErrSnapshotNotFound.
	GetSnapshot(ctx context.Context, id string) (*Snapshot, error)

	// Reset clears all data (for testing/demo).
	Reset(ctx context.Context) error

	Close() error
}

// Snapshot is a frozen payout run.
type Snapshot struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	CreatedAt   time.Time       `json:"createdAt"`
	Results     json.RawMessage `json:"results"`
	TotalPayout decimal.Decimal `json:"totalPayout"`
}

// NewSnapshot freezes results under a fresh ID.
func NewSnapshot(label string, results []incentive.Result, now time.Time) (Snapshot, error) {
	data, err := json.Marshal(results)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "failed to marshal payout results")
	}
	return Snapshot{
		ID:          uuid.NewString(),
		Label:       label,
		CreatedAt:   now.UTC(),
		Results:     data,
		TotalPayout: incentive.Totals(results).Payout,
	}, nil
}

// DecodeResults unmarshals the frozen results.
func (s Snapshot) DecodeResults() ([]incentive.Result, error) {
	var out []incentive.Result
	if err := json.Unmarshal(s.Results, &out); err != nil {
		return nil, eris.Wrapf(err, "failed to decode snapshot %s", s.ID)
	}
	return out, nil
}
