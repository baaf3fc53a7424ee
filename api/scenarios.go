/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built states that demonstrate specific engine behaviour.
	The first four are the reference calculations every change to the
	engine must keep; the last is a small restaurant team for demos.

AVAILABLE SCENARIOS:

	all-pillars:      .9/.8/.7 on .5/.3/.2, factor 1.1 -> 5478 of a 7200 cap
	disabled-pillar:  individual pillar off -> weights .625/.375, total .8625
	all-disabled:     every pillar off -> no payout
	override-capped:  override goal fulfilled at 150% -> contribution capped at 1.2
	restaurant-team:  one employee per department on the standard defaults

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Build a State through the engine's edit operations
 3. Persist it as the live state

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "disabled-pillar"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/warp/incentive-engine/incentive"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "all-pillars",
		Name:        "All Pillars",
		Description: "Restaurant manager with three weighted pillars and a 1.1 tenure factor",
	},
	{
		ID:          "disabled-pillar",
		Name:        "Disabled Pillar",
		Description: "Individual pillar switched off; remaining weights are renormalised",
	},
	{
		ID:          "all-disabled",
		Name:        "All Pillars Disabled",
		Description: "No enabled pillar means no effective weight and no payout",
	},
	{
		ID:          "override-capped",
		Name:        "Capped Override",
		Description: "Employee override with one goal fulfilled at 150%, capped at 120%",
	},
	{
		ID:          "restaurant-team",
		Name:        "Restaurant Team",
		Description: "General manager, shift manager and back office on the standard defaults",
	},
}

// Scenarios lists the available demo scenarios.
func Scenarios() []ScenarioDTO {
	return append([]ScenarioDTO(nil), scenarios...)
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, err := BuildScenario(h.Defaults, req.ScenarioID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown scenario", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.reset(ctx); err != nil {
		writeFailure(w, "Failed to reset database", err)
		return
	}
	if err := h.replace(ctx, s); err != nil {
		writeFailure(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// BuildScenario builds the state of a demo scenario on top of d.
func BuildScenario(d *incentive.Defaults, id string) (incentive.State, error) {
	if d == nil {
		d = incentive.StandardDefaults()
	}

	var build func(s *incentive.State) error
	switch id {
	case "all-pillars":
		build = buildReferenceManager
	case "disabled-pillar":
		build = func(s *incentive.State) error {
			if err := buildReferenceManager(s); err != nil {
				return err
			}
			return incentive.TogglePillar(s, referenceTarget, incentive.PillarInd, false)
		}
	case "all-disabled":
		build = func(s *incentive.State) error {
			if err := buildReferenceManager(s); err != nil {
				return err
			}
			for _, key := range incentive.PillarKeys {
				if err := incentive.TogglePillar(s, referenceTarget, key, false); err != nil {
					return err
				}
			}
			return nil
		}
	case "override-capped":
		build = buildCappedOverride
	case "restaurant-team":
		build = buildRestaurantTeam
	default:
		return incentive.State{}, fmt.Errorf("unknown scenario %q", id)
	}

	s := d.State()
	if err := build(&s); err != nil {
		return incentive.State{}, fmt.Errorf("scenario %s: %w", id, err)
	}
	return s, nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

var referenceTarget = incentive.DepartmentTarget(incentive.DeptGeneralManager)

func singleGoalPillar(name string, weight float64) incentive.Pillar {
	return incentive.Pillar{
		Name:    name,
		Weight:  weight,
		Enabled: true,
		Goals:   []incentive.Goal{{Name: name + " target", Weight: 100}},
	}
}

// buildReferenceManager: salary 2000, three base months, single-goal
// pillars .5/.3/.2 fulfilled at 90/80/70, tenure 1.1, size 1.0.
func buildReferenceManager(s *incentive.State) error {
	s.Settings = incentive.DefaultSettings()
	s.Departments[incentive.DeptGeneralManager] = incentive.PillarSet{
		Fin: singleGoalPillar("Financial", 0.5),
		Ops: singleGoalPillar("Operational", 0.3),
		Ind: singleGoalPillar("Individual", 0.2),
	}

	e, err := incentive.AddEmployee(s, incentive.Employee{
		ID:         "emp-001",
		Name:       "Alex Martin",
		Department: incentive.DeptGeneralManager,
		Salary:     2000,
		Factors:    incentive.Factors{Tenure: 1.1, Size: 1.0, Office: 1.0},
	})
	if err != nil {
		return err
	}
	return setFulfillment(s, e.ID, map[incentive.PillarKey][]float64{
		incentive.PillarFin: {90},
		incentive.PillarOps: {80},
		incentive.PillarInd: {70},
	})
}

func buildCappedOverride(s *incentive.State) error {
	if err := buildReferenceManager(s); err != nil {
		return err
	}
	incentive.SetOverride("emp-001", incentive.PillarSet{
		Fin: singleGoalPillar("Financial", 1),
		Ops: incentive.Pillar{Name: "Operational", Enabled: false, Goals: []incentive.Goal{}},
		Ind: incentive.Pillar{Name: "Individual", Enabled: false, Goals: []incentive.Goal{}},
	}, s)
	return incentive.SetFulfillment(s, "emp-001", incentive.PillarFin, 0, 150)
}

func buildRestaurantTeam(s *incentive.State) error {
	team := []struct {
		employee    incentive.Employee
		fulfillment map[incentive.PillarKey][]float64
	}{
		{
			employee: incentive.Employee{
				ID: "emp-001", Name: "Alex Martin", Department: incentive.DeptGeneralManager,
				Salary: 4200, Factors: incentive.Factors{Tenure: 1.1, Size: 1.2},
			},
			fulfillment: map[incentive.PillarKey][]float64{
				incentive.PillarFin: {104, 96},
				incentive.PillarOps: {110, 90},
				incentive.PillarInd: {100},
			},
		},
		{
			employee: incentive.Employee{
				ID: "emp-002", Name: "Sam Rivera", Department: incentive.DeptShiftManager,
				Salary: 2900, Factors: incentive.Factors{Tenure: 0.9, Size: 1.2},
			},
			fulfillment: map[incentive.PillarKey][]float64{
				incentive.PillarFin: {88, 101},
				incentive.PillarOps: {95, 120},
				incentive.PillarInd: {80},
			},
		},
		{
			employee: incentive.Employee{
				ID: "emp-003", Name: "Jordan Lee", Department: incentive.DeptOffice,
				Salary: 3600, Factors: incentive.Factors{Office: 1.05},
			},
			fulfillment: map[incentive.PillarKey][]float64{
				incentive.PillarFin: {97},
				incentive.PillarOps: {100, 130},
				incentive.PillarInd: {115},
			},
		},
	}

	for _, member := range team {
		e, err := incentive.AddEmployee(s, member.employee)
		if err != nil {
			return err
		}
		if err := setFulfillment(s, e.ID, member.fulfillment); err != nil {
			return err
		}
	}
	return nil
}

func setFulfillment(s *incentive.State, id string, values map[incentive.PillarKey][]float64) error {
	for _, key := range incentive.PillarKeys {
		for i, v := range values[key] {
			if err := incentive.SetFulfillment(s, id, key, i, v); err != nil {
				return err
			}
		}
	}
	return nil
}
