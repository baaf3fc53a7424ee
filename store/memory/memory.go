// Package memory provides an in-memory store.Store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the state document as JSON so loads behave exactly like the
// SQLite store: every load re-sanitizes and callers never share slices.
type Memory struct {
	mu        sync.RWMutex
	codec     *factory.Codec
	state     []byte
	snapshots map[string]store.Snapshot
}

var _ store.Store = (*Memory)(nil)

// New creates an empty store. A nil defaults uses the standard defaults.
func New(defaults *incentive.Defaults) *Memory {
	return &Memory{
		codec:     factory.NewCodec(defaults),
		snapshots: make(map[string]store.Snapshot),
	}
}

func (m *Memory) LoadState(_ context.Context) (incentive.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == nil {
		return m.codec.Defaults().State(), nil
	}
	return m.codec.ParseState(m.state), nil
}

func (m *Memory) SaveState(_ context.Context, s incentive.State) error {
	data, err := m.codec.MarshalState(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = data
	return nil
}

func (m *Memory) SaveSnapshot(_ context.Context, snap store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	snap.Results = append([]byte(nil), snap.Results...)
	m.snapshots[snap.ID] = snap
	return nil
}

// ListSnapshots returns all snapshots, newest first.
func (m *Memory) ListSnapshots(_ context.Context) ([]store.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]store.Snapshot, 0, len(m.snapshots))
	for _, snap := range m.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetSnapshot(_ context.Context, id string) (*store.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snapshots[id]
	if !ok {
		return nil, store.ErrSnapshotNotFound
	}
	return &snap, nil
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = nil
	m.snapshots = make(map[string]store.Snapshot)
	return nil
}

func (m *Memory) Close() error { return nil }
