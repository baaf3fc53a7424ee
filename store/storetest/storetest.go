// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store"
)

// Run exercises a fresh store produced by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("empty store loads defaults", func(t *testing.T) {
		st := open(t)
		s, err := st.LoadState(context.Background())
		require.NoError(t, err)
		assert.Equal(t, incentive.StandardDefaults().State(), s)
	})

	t.Run("save then load", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)

		s := sampleState(t)
		require.NoError(t, st.SaveState(ctx, s))

		loaded, err := st.LoadState(ctx)
		require.NoError(t, err)
		assert.Equal(t, s, loaded)

		// A second save replaces the first.
		require.NoError(t, incentive.RemoveEmployee(&s, "emp-2"))
		require.NoError(t, st.SaveState(ctx, s))
		loaded, err = st.LoadState(ctx)
		require.NoError(t, err)
		assert.Len(t, loaded.Employees, 1)
	})

	t.Run("loaded state is independent of the saved value", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)

		s := sampleState(t)
		require.NoError(t, st.SaveState(ctx, s))
		s.Employees[0].Fulfillment.Fin[0] = 1

		loaded, err := st.LoadState(ctx)
		require.NoError(t, err)
		assert.Equal(t, 100.0, loaded.Employees[0].Fulfillment.Fin[0])
	})

	t.Run("snapshots", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)

		s := sampleState(t)
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		first, err := store.NewSnapshot("march", incentive.Roster(s), base)
		require.NoError(t, err)
		second, err := store.NewSnapshot("april", incentive.Roster(s), base.Add(time.Hour))
		require.NoError(t, err)

		require.NoError(t, st.SaveSnapshot(ctx, first))
		require.NoError(t, st.SaveSnapshot(ctx, second))

		list, err := st.ListSnapshots(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "april", list[0].Label)
		assert.Equal(t, "march", list[1].Label)

		got, err := st.GetSnapshot(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.True(t, first.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, first.TotalPayout.Equal(got.TotalPayout))

		results, err := got.DecodeResults()
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "emp-1", results[0].EmployeeID)

		_, err = st.GetSnapshot(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
	})

	t.Run("reset", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)

		require.NoError(t, st.SaveState(ctx, sampleState(t)))
		snap, err := store.NewSnapshot("x", nil, time.Now())
		require.NoError(t, err)
		require.NoError(t, st.SaveSnapshot(ctx, snap))
		assert.True(t, snap.TotalPayout.Equal(decimal.Zero))

		require.NoError(t, st.Reset(ctx))

		s, err := st.LoadState(ctx)
		require.NoError(t, err)
		assert.Empty(t, s.Employees)
		list, err := st.ListSnapshots(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func sampleState(t *testing.T) incentive.State {
	t.Helper()
	s := incentive.StandardDefaults().State()
	for _, e := range []incentive.Employee{
		{ID: "emp-1", Name: "Alex", Department: incentive.DeptGeneralManager, Salary: 2000},
		{ID: "emp-2", Name: "Robin", Department: incentive.DeptOffice, Salary: 3500},
	} {
		_, err := incentive.AddEmployee(&s, e)
		require.NoError(t, err)
	}
	require.NoError(t, incentive.SetFulfillment(&s, "emp-1", incentive.PillarFin, 1, 85))
	return s
}
