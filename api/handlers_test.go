/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Whole-state access (GET/PUT /api/state) and settings
- Employee lifecycle, fulfillment and factors
- Overrides and pillar/goal edits on both target kinds
- Payout runs and snapshots
- Error mapping (400/404/500) and the failed-save guarantee
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store/memory"
)

func TestHealth(t *testing.T) {
	_, router := newTestAPI(t)

	rec := do(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// =============================================================================
// STATE & SETTINGS
// =============================================================================

func TestGetState_DefaultsWhenEmpty(t *testing.T) {
	_, router := newTestAPI(t)

	rec := do(t, router, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	s := decode[incentive.State](t, rec)
	assert.Empty(t, s.Employees)
	assert.Len(t, s.Departments, 3)
	assert.Equal(t, incentive.DefaultSettings(), s.Settings)
}

func TestPutState_SanitizesAndPersists(t *testing.T) {
	// GIVEN: A state document with a legacy department label and a string salary
	h, router := newTestAPI(t)
	body := `{"employees":[{"id":"a","department":"hq","salary":"3000"}],"settings":{"capPct":100}}`

	// WHEN: It replaces the state
	rec := do(t, router, http.MethodPut, "/api/state", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The response and the store both hold the repaired state
	s := decode[incentive.State](t, rec)
	require.Len(t, s.Employees, 1)
	assert.Equal(t, incentive.DeptOffice, s.Employees[0].Department)
	assert.Equal(t, 3000.0, s.Employees[0].Salary)
	assert.Equal(t, 100.0, s.Settings.CapPct)
	assert.Equal(t, "a", s.Selected)

	stored, err := h.Store.LoadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s, stored)
}

func TestPutState_RejectsInvalidJSON(t *testing.T) {
	_, router := newTestAPI(t)

	rec := do(t, router, http.MethodPut, "/api/state", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Invalid request body", resp.Error)
}

func TestUpdateSettings(t *testing.T) {
	_, router := newTestAPI(t)

	rec := do(t, router, http.MethodPut, "/api/settings", map[string]any{
		"capPct":     100,
		"factorMode": " Average ",
		"baseMonths": -4,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	settings := decode[incentive.Settings](t, rec)
	assert.Equal(t, incentive.Settings{
		BaseMonths: 0,
		CapPct:     100,
		FactorMode: incentive.FactorAverage,
		CapFactor:  true,
	}, settings)

	rec = do(t, router, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, settings, decode[incentive.Settings](t, rec))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestCreateEmployee(t *testing.T) {
	_, router := newTestAPI(t)

	t.Run("defaults and payout", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{
			ID:     "gm-1",
			Name:   "  Robin ",
			Salary: 3000,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		got := decode[EmployeeDetailDTO](t, rec)
		assert.Equal(t, "gm-1", got.ID)
		assert.Equal(t, "Robin", got.Name)
		assert.Equal(t, incentive.DeptGeneralManager, got.Department)
		assert.False(t, got.HasOverride)
		assert.Equal(t, incentive.SourceDefault, got.Pillars.Source)
		assert.Equal(t, []float64{100, 100}, got.Fulfillment.Fin)

		// Every goal met, neutral factors: payout is the base.
		assert.Equal(t, 9000.0, got.Payout.Base)
		assert.Equal(t, 9000.0, got.Payout.Payout)
		assert.Equal(t, 10800.0, got.Payout.Cap)
		assert.False(t, got.Payout.Capped)
	})

	t.Run("legacy office label", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{Name: "Kim", Department: "HQ"})
		require.Equal(t, http.StatusCreated, rec.Code)
		got := decode[EmployeeDetailDTO](t, rec)
		assert.Equal(t, incentive.DeptOffice, got.Department)
		assert.NotEmpty(t, got.ID)
	})

	t.Run("duplicate id", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{ID: "gm-1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown department", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{Department: "kitchen"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/employees", `{"salary":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	rec := do(t, router, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]EmployeeDTO](t, rec), 2)
}

func TestUpdateEmployee(t *testing.T) {
	_, router := newTestAPI(t)
	loadScenario(t, router, "restaurant-team")

	t.Run("department change resyncs fulfillment", func(t *testing.T) {
		// GIVEN: The office employee with one financial goal
		// WHEN: They move to shift management
		dept := "shift_manager"
		rec := do(t, router, http.MethodPut, "/api/employees/emp-003", UpdateEmployeeRequest{Department: &dept})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// THEN: Fulfillment follows the shift manager goal structure
		got := decode[EmployeeDetailDTO](t, rec)
		assert.Equal(t, incentive.DeptShiftManager, got.Department)
		assert.Equal(t, []float64{97, 100}, got.Fulfillment.Fin)
		assert.Equal(t, []float64{100, 130}, got.Fulfillment.Ops)
	})

	t.Run("compensation", func(t *testing.T) {
		salary, months := 5000.0, 2.0
		rec := do(t, router, http.MethodPut, "/api/employees/emp-001", UpdateEmployeeRequest{Salary: &salary, BaseMonths: &months})
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[EmployeeDetailDTO](t, rec)
		assert.Equal(t, 5000.0, got.Salary)
		require.NotNil(t, got.BaseMonths)
		assert.Equal(t, 10000.0, got.Payout.Base)

		rec = do(t, router, http.MethodPut, "/api/employees/emp-001", UpdateEmployeeRequest{ClearBaseMonths: true})
		require.Equal(t, http.StatusOK, rec.Code)
		got = decode[EmployeeDetailDTO](t, rec)
		assert.Nil(t, got.BaseMonths)
		assert.Equal(t, 15000.0, got.Payout.Base)
	})

	t.Run("unknown employee", func(t *testing.T) {
		rec := do(t, router, http.MethodPut, "/api/employees/ghost", UpdateEmployeeRequest{})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown department", func(t *testing.T) {
		dept := "bar"
		rec := do(t, router, http.MethodPut, "/api/employees/emp-001", UpdateEmployeeRequest{Department: &dept})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteEmployee(t *testing.T) {
	_, router := newTestAPI(t)
	loadScenario(t, router, "override-capped")

	rec := do(t, router, http.MethodDelete, "/api/employees/emp-001", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/state", nil)
	s := decode[incentive.State](t, rec)
	assert.Empty(t, s.Employees)
	assert.Empty(t, s.Overrides, "override goes with the employee")

	rec = do(t, router, http.MethodDelete, "/api/employees/emp-001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/employees/emp-001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetFulfillment(t *testing.T) {
	_, router := newTestAPI(t)
	loadScenario(t, router, "all-pillars")

	t.Run("records value and rescores", func(t *testing.T) {
		rec := do(t, router, http.MethodPut, "/api/employees/emp-001/fulfillment/fin/0", `{"value":100}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[EmployeeDetailDTO](t, rec)
		assert.Equal(t, []float64{100}, got.Fulfillment.Fin)
		assert.InDelta(t, 0.88, got.Payout.Scores.Total, 1e-9)
	})

	cases := []struct {
		name string
		path string
		code int
	}{
		{"unknown pillar", "/api/employees/emp-001/fulfillment/bonus/0", http.StatusBadRequest},
		{"index not a number", "/api/employees/emp-001/fulfillment/fin/first", http.StatusBadRequest},
		{"index out of range", "/api/employees/emp-001/fulfillment/fin/3", http.StatusBadRequest},
		{"unknown employee", "/api/employees/ghost/fulfillment/fin/0", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, tc.path, `{"value":50}`)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}

	t.Run("missing value leaves fulfillment unchanged", func(t *testing.T) {
		for _, body := range []string{"", "{}", `{"valeu":5}`, `{"value":null}`} {
			rec := do(t, router, http.MethodPut, "/api/employees/emp-001/fulfillment/fin/0", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		}

		rec := do(t, router, http.MethodGet, "/api/employees/emp-001", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []float64{100}, decode[EmployeeDetailDTO](t, rec).Fulfillment.Fin)
	})
}

func TestSetFactorsAndScore(t *testing.T) {
	_, router := newTestAPI(t)
	loadScenario(t, router, "all-pillars")

	rec := do(t, router, http.MethodPut, "/api/employees/emp-001/factors", incentive.Factors{Tenure: 2, Size: 0.5})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[EmployeeDetailDTO](t, rec)
	assert.Equal(t, incentive.Factors{Tenure: 1.2, Size: 0.8, Office: 1}, got.Factors)
	assert.InDelta(t, 0.96, got.Payout.Factor, 1e-9)

	rec = do(t, router, http.MethodGet, "/api/employees/emp-001/score", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	score := decode[incentive.Score](t, rec)
	assert.InDelta(t, 0.83, score.Total, 1e-9)
	assert.InDelta(t, 0.5, score.Eff.Fin, 1e-9)

	rec = do(t, router, http.MethodPut, "/api/employees/ghost/factors", incentive.Factors{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// OVERRIDES & PILLARS
// =============================================================================

func TestOverrideLifecycle(t *testing.T) {
	_, router := newTestAPI(t)
	loadScenario(t, router, "all-pillars")
	base := "/api/employees/emp-001"

	// GIVEN: No override yet, so override pillar edits have nothing to edit
	rec := do(t, router, http.MethodPost, base+"/override/pillars/fin/goals", incentive.Goal{Name: "Own"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// WHEN: An override is installed from the department default
	rec = do(t, router, http.MethodPut, base+"/override", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, incentive.SourceOverride, decode[PillarsDTO](t, rec).Source)

	// AND: It gains a goal of its own
	rec = do(t, router, http.MethodPost, base+"/override/pillars/fin/goals", incentive.Goal{Name: "Own", Weight: 20})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[PillarsDTO](t, rec).Pillars.Fin.Goals, 2)

	// THEN: The department default is untouched
	rec = do(t, router, http.MethodGet, "/api/departments", nil)
	depts := decode[[]DepartmentDTO](t, rec)
	require.Len(t, depts, 3)
	assert.Equal(t, incentive.DeptGeneralManager, depts[0].Department)
	assert.Len(t, depts[0].Pillars.Fin.Goals, 1)
	assert.Equal(t, 1, depts[0].Employees)

	rec = do(t, router, http.MethodGet, base, nil)
	got := decode[EmployeeDetailDTO](t, rec)
	assert.True(t, got.HasOverride)
	assert.Equal(t, []float64{90, 100}, got.Fulfillment.Fin)

	// WHEN: The override is cleared
	rec = do(t, router, http.MethodDelete, base+"/override", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, incentive.SourceDefault, decode[PillarsDTO](t, rec).Source)

	// THEN: Fulfillment is truncated back and a second clear is a 404
	rec = do(t, router, http.MethodGet, base+"/pillars", nil)
	assert.Equal(t, incentive.SourceDefault, decode[PillarsDTO](t, rec).Source)
	rec = do(t, router, http.MethodGet, base, nil)
	assert.Equal(t, []float64{90}, decode[EmployeeDetailDTO](t, rec).Fulfillment.Fin)

	rec = do(t, router, http.MethodDelete, base+"/override", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetOverride_FromBody(t *testing.T) {
	_, router := newTestAPI(t)
	loadScenario(t, router, "all-pillars")

	t.Run("sanitized pillar set", func(t *testing.T) {
		rec := do(t, router, http.MethodPut, "/api/employees/emp-001/override", map[string]any{
			"fin": map[string]any{"weight": 3, "goals": []any{map[string]any{"name": "Own", "weight": 100}}},
			"ops": map[string]any{"enabled": false},
			"ind": map[string]any{"enabled": false},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[PillarsDTO](t, rec)
		assert.Equal(t, 1.0, got.Pillars.Fin.Weight)
		assert.Equal(t, 1.0, got.Effective.Fin)
		assert.Zero(t, got.Effective.Ops)
	})

	t.Run("incomplete set", func(t *testing.T) {
		rec := do(t, router, http.MethodPut, "/api/employees/emp-001/override", `{"fin":{}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown employee", func(t *testing.T) {
		rec := do(t, router, http.MethodPut, "/api/employees/ghost/override", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDepartmentPillarEdits(t *testing.T) {
	_, router := newTestAPI(t)
	loadScenario(t, router, "all-pillars")
	prefix := "/api/departments/general_manager/pillars"

	t.Run("disable renormalises", func(t *testing.T) {
		enabled := false
		rec := do(t, router, http.MethodPut, prefix+"/ind", UpdatePillarRequest{Enabled: &enabled})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[DepartmentDTO](t, rec)
		assert.False(t, got.Pillars.Ind.Enabled)
		assert.InDelta(t, 0.625, got.Effective.Fin, 1e-9)
		assert.InDelta(t, 0.375, got.Effective.Ops, 1e-9)

		rec = do(t, router, http.MethodGet, "/api/employees/emp-001/payout", nil)
		assert.InDelta(t, 5692.5, decode[PayoutDTO](t, rec).Payout, 0.01)
	})

	t.Run("weight is clamped", func(t *testing.T) {
		weight := 4.0
		rec := do(t, router, http.MethodPut, prefix+"/ops", UpdatePillarRequest{Weight: &weight})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1.0, decode[DepartmentDTO](t, rec).Pillars.Ops.Weight)
	})

	t.Run("add and remove goal", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, prefix+"/fin/goals", incentive.Goal{Weight: 30})
		require.Equal(t, http.StatusOK, rec.Code)
		goals := decode[DepartmentDTO](t, rec).Pillars.Fin.Goals
		require.Len(t, goals, 2)
		assert.Equal(t, "Goal 2", goals[1].Name)

		rec = do(t, router, http.MethodDelete, prefix+"/fin/goals/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[DepartmentDTO](t, rec).Pillars.Fin.Goals, 1)
	})

	t.Run("legacy office label addresses office", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/departments/hq/pillars/ind/goals", incentive.Goal{Name: "Audit"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, incentive.DeptOffice, decode[DepartmentDTO](t, rec).Department)
	})

	cases := []struct {
		name   string
		method string
		path   string
		code   int
	}{
		{"unknown department", http.MethodPut, "/api/departments/bar/pillars/fin", http.StatusBadRequest},
		{"unknown pillar", http.MethodPut, prefix + "/bonus", http.StatusBadRequest},
		{"goal index out of range", http.MethodDelete, prefix + "/fin/goals/5", http.StatusBadRequest},
		{"goal index not a number", http.MethodDelete, prefix + "/fin/goals/x", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, tc.method, tc.path, nil)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

// =============================================================================
// PAYOUTS & SNAPSHOTS
// =============================================================================

func TestListPayouts(t *testing.T) {
	_, router := newTestAPI(t)
	loadScenario(t, router, "restaurant-team")

	rec := do(t, router, http.MethodGet, "/api/payouts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	run := decode[PayoutRunDTO](t, rec)
	require.Len(t, run.Results, 3)
	assert.Equal(t, 3, run.Totals.Employees)
	assert.Equal(t, "Alex Martin", run.Results[0].Name)
	assert.Equal(t, "office", run.Results[2].Department)

	var sum float64
	for _, p := range run.Results {
		assert.LessOrEqual(t, p.Payout, p.Cap)
		sum += p.Payout
	}
	assert.InDelta(t, sum, run.Totals.Payout, 0.05)
}

func TestSnapshots(t *testing.T) {
	_, router := newTestAPI(t)
	loadScenario(t, router, "all-pillars")

	// GIVEN: A frozen payout run
	rec := do(t, router, http.MethodPost, "/api/payouts/snapshots", CreateSnapshotRequest{Label: " March "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[SnapshotDTO](t, rec)
	assert.Equal(t, "March", created.Label)
	assert.InDelta(t, 5478.0, created.TotalPayout, 0.01)
	assert.Equal(t, "2026-03-31T18:00:00Z", created.CreatedAt)

	// WHEN: Fulfillment changes afterwards
	rec = do(t, router, http.MethodPut, "/api/employees/emp-001/fulfillment/fin/0", `{"value":0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: The snapshot still holds the original run
	rec = do(t, router, http.MethodGet, "/api/payouts/snapshots/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[SnapshotDTO](t, rec)
	assert.InDelta(t, 5478.0, got.TotalPayout, 0.01)
	assert.Contains(t, string(got.Results), `"employeeId":"emp-001"`)

	// AND: An unlabelled snapshot gets a dated label
	rec = do(t, router, http.MethodPost, "/api/payouts/snapshots", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Payout run 2026-03-31 18:00", decode[SnapshotDTO](t, rec).Label)

	rec = do(t, router, http.MethodGet, "/api/payouts/snapshots", nil)
	list := decode[[]SnapshotDTO](t, rec)
	require.Len(t, list, 2)
	for _, s := range list {
		assert.Empty(t, s.Results, "listings omit results")
	}

	rec = do(t, router, http.MethodGet, "/api/payouts/snapshots/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// FAILURES & RESET
// =============================================================================

func TestFailedSave_KeepsLiveState(t *testing.T) {
	// GIVEN: A handler whose store rejects every save
	st := memory.New(nil)
	h := NewHandler(failingStore{Store: st}, nil)
	router := NewRouter(h)

	// WHEN: An employee is added
	rec := do(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{Name: "Lost"})

	// THEN: The request fails and nothing changed in memory
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, h.State().Employees)
}

func TestResetDatabase(t *testing.T) {
	h, router := newTestAPI(t)
	loadScenario(t, router, "restaurant-team")
	rec := do(t, router, http.MethodPost, "/api/payouts/snapshots", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, h.State().Employees)
	snaps, err := h.Store.ListSnapshots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snaps)

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

