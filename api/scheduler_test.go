package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotScheduler_RunNow(t *testing.T) {
	h, router := newTestAPI(t)
	ss := NewSnapshotScheduler(h, time.Hour)
	ctx := context.Background()

	t.Run("empty roster is skipped", func(t *testing.T) {
		_, ok := ss.RunNow(ctx)
		assert.False(t, ok)
	})

	t.Run("stores a labelled snapshot", func(t *testing.T) {
		loadScenario(t, router, "all-pillars")

		snap, ok := ss.RunNow(ctx)
		require.True(t, ok)
		assert.Equal(t, "Scheduled run 2026-03-31 18:00", snap.Label)
		assert.Equal(t, "5478.00", snap.TotalPayout.StringFixed(2))

		stored, err := h.Store.GetSnapshot(ctx, snap.ID)
		require.NoError(t, err)
		assert.Equal(t, snap.Label, stored.Label)
	})

	assert.Equal(t, fixedNow.Add(time.Hour), ss.NextRunTime())
}

func TestSnapshotScheduler_StartStop(t *testing.T) {
	h, router := newTestAPI(t)
	loadScenario(t, router, "restaurant-team")

	ss := NewSnapshotScheduler(h, 10*time.Millisecond)
	ss.Start()
	ss.Start() // second start is a no-op

	require.Eventually(t, func() bool {
		snaps, err := h.Store.ListSnapshots(context.Background())
		return err == nil && len(snaps) > 0
	}, 2*time.Second, 10*time.Millisecond)

	ss.Stop()
	ss.Stop()

	rec := do(t, router, http.MethodGet, "/api/payouts/snapshots", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSnapshotScheduler_Disabled(t *testing.T) {
	h, _ := newTestAPI(t)

	ss := NewSnapshotScheduler(h, 0)
	assert.False(t, ss.Enabled)

	ss.Start()
	ss.Stop()
	assert.Nil(t, ss.ticker)
}
