/*
handlers.go - HTTP API handlers for the incentive engine

PURPOSE:
  Exposes the incentive engine via REST API. Handles HTTP request/response
  and JSON serialization, and delegates every calculation and edit to the
  incentive package.

ENDPOINTS:
  State:
    GET    /api/state                          Full canonical state
    PUT    /api/state                          Replace state (sanitized)
    GET    /api/settings                       Global settings
    PUT    /api/settings                       Update global settings

  Employees:
    GET    /api/employees                      Roster
    POST   /api/employees                      Add employee
    GET    /api/employees/{id}                 Employee with pillars and payout
    PUT    /api/employees/{id}                 Update name/department/salary
    DELETE /api/employees/{id}                 Remove employee
    PUT    /api/employees/{id}/factors         Set tenure/size/office factors
    PUT    /api/employees/{id}/fulfillment/{pillar}/{index}
    GET    /api/employees/{id}/pillars         Resolved structure + source
    GET    /api/employees/{id}/score           Pillar and total scores
    GET    /api/employees/{id}/payout          Payout breakdown
    PUT    /api/employees/{id}/override        Install override
    DELETE /api/employees/{id}/override        Revert to department default

  Pillars (department default or override):
    GET    /api/departments
    PUT    .../pillars/{pillar}                Toggle / weight
    POST   .../pillars/{pillar}/goals          Add goal
    DELETE .../pillars/{pillar}/goals/{index}  Remove goal

  Payouts:
    GET    /api/payouts                        Roster payouts + totals
    POST   /api/payouts/snapshots              Freeze current run
    GET    /api/payouts/snapshots              List runs
    GET    /api/payouts/snapshots/{id}         One run with results

  Scenarios (scenarios.go):
    GET    /api/scenarios                      Demo scenarios
    GET    /api/scenarios/current              Loaded scenario or null
    POST   /api/scenarios/load                 Reset and load a scenario
    POST   /api/reset                          Clear all data

ARCHITECTURE:
  Handler holds the store, the engine defaults and the live State. The
  State has a single writer: every mutation takes the mutex, edits a clone,
  persists it and only then swaps it in. A failed save leaves the live
  State untouched.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (unknown pillar, goal index, duplicate id, bad JSON)
  - 404: Unknown employee, override or snapshot
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store"
)

// maxBodyBytes bounds request bodies; a full state document is the largest.
const maxBodyBytes = 4 << 20

// errBadRequest marks request parsing failures.
var errBadRequest = errors.New("bad request")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    store.Store
	Defaults *incentive.Defaults

	mu    sync.Mutex
	state incentive.State

	// Track currently loaded scenario
	currentScenario string

	now func() time.Time
}

// NewHandler creates a new handler. A nil defaults uses the standard defaults.
func NewHandler(st store.Store, defaults *incentive.Defaults) *Handler {
	if defaults == nil {
		defaults = incentive.StandardDefaults()
	}
	return &Handler{
		Store:    st,
		Defaults: defaults,
		state:    defaults.State(),
		now:      time.Now,
	}
}

// LoadState reads the persisted state into memory.
func (h *Handler) LoadState(ctx context.Context) error {
	s, err := h.Store.LoadState(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = s
	zap.L().Info("state loaded",
		zap.Int("employees", len(s.Employees)),
		zap.Int("overrides", len(s.Overrides)),
	)
	return nil
}

// State returns a copy of the live state.
func (h *Handler) State() incentive.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Clone()
}

// mutate applies fn to a clone of the live state, persists the result and
// swaps it in.
func (h *Handler) mutate(ctx context.Context, fn func(s *incentive.State) error) (incentive.State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.state.Clone()
	if err := fn(&next); err != nil {
		return incentive.State{}, err
	}
	if err := h.Store.SaveState(ctx, next); err != nil {
		return incentive.State{}, err
	}
	h.state = next
	return next.Clone(), nil
}

// replace persists s as the new live state.
func (h *Handler) replace(ctx context.Context, s incentive.State) error {
	_, err := h.mutate(ctx, func(next *incentive.State) error {
		*next = s
		return nil
	})
	return err
}

// =============================================================================
// STATE & SETTINGS HANDLERS
// =============================================================================

// GetState returns the full state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.State())
}

// PutState replaces the state. The body passes through the sanitizer, so
// malformed fields are repaired rather than rejected.
func (h *Handler) PutState(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "Invalid request body", errors.New("body is not valid JSON"))
		return
	}

	s := h.Defaults.Sanitize(body)
	if err := h.replace(r.Context(), s); err != nil {
		writeFailure(w, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetSettings returns the global settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.State().Settings)
}

// UpdateSettings changes global settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, err := h.mutate(r.Context(), func(s *incentive.State) error {
		next := s.Settings
		if req.BaseMonths != nil {
			next.BaseMonths = *req.BaseMonths
		}
		if req.CapPct != nil {
			next.CapPct = *req.CapPct
		}
		if req.FactorMode != nil {
			next.FactorMode = incentive.FactorMode(strings.ToLower(strings.TrimSpace(*req.FactorMode)))
		}
		if req.CapFactor != nil {
			next.CapFactor = *req.CapFactor
		}
		incentive.UpdateSettings(s, next)
		return nil
	})
	if err != nil {
		writeFailure(w, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Settings)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the roster.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	s := h.State()
	dtos := make([]EmployeeDTO, len(s.Employees))
	for i, e := range s.Employees {
		dtos[i] = EmployeeDTO{Employee: e, HasOverride: incentive.HasOverride(e.ID, s)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one employee with its resolved pillars and payout.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	s := h.State()
	e, ok := employeeOr404(w, s, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, employeeDetail(*e, s))
}

// CreateEmployee adds an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	dept := incentive.DeptGeneralManager
	if req.Department != "" {
		var err error
		if dept, err = parseDepartment(req.Department); err != nil {
			writeFailure(w, "Invalid department", err)
			return
		}
	}

	e := incentive.Employee{
		ID:         req.ID,
		Name:       strings.TrimSpace(req.Name),
		Department: dept,
		Salary:     req.Salary,
		BaseMonths: req.BaseMonths,
	}
	if req.Factors != nil {
		e.Factors = *req.Factors
	}

	var created incentive.Employee
	s, err := h.mutate(r.Context(), func(s *incentive.State) error {
		var err error
		created, err = incentive.AddEmployee(s, e)
		return err
	})
	if err != nil {
		writeFailure(w, "Failed to create employee", err)
		return
	}

	zap.L().Info("employee created",
		zap.String("employee_id", created.ID),
		zap.String("department", string(created.Department)),
	)
	writeJSON(w, http.StatusCreated, employeeDetail(created, s))
}

// UpdateEmployee changes name, department and compensation.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, err := h.mutate(r.Context(), func(s *incentive.State) error {
		e := s.Employee(id)
		if e == nil {
			return fmt.Errorf("%w: %s", incentive.ErrEmployeeNotFound, id)
		}
		if req.Name != nil {
			e.Name = strings.TrimSpace(*req.Name)
		}
		if req.Department != nil {
			dept, err := parseDepartment(*req.Department)
			if err != nil {
				return err
			}
			if err := incentive.SetDepartment(s, id, dept); err != nil {
				return err
			}
		}
		salary := e.Salary
		if req.Salary != nil {
			salary = *req.Salary
		}
		months := e.BaseMonths
		if req.BaseMonths != nil {
			months = req.BaseMonths
		}
		if req.ClearBaseMonths {
			months = nil
		}
		return incentive.SetCompensation(s, id, salary, months)
	})
	if err != nil {
		writeFailure(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, employeeDetail(*s.Employee(id), s))
}

// DeleteEmployee removes an employee and any override they had.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, err := h.mutate(r.Context(), func(s *incentive.State) error {
		return incentive.RemoveEmployee(s, id)
	})
	if err != nil {
		writeFailure(w, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// SetFactors replaces the adjustment factors of an employee.
func (h *Handler) SetFactors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var f incentive.Factors
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, err := h.mutate(r.Context(), func(s *incentive.State) error {
		return incentive.SetFactors(s, id, f)
	})
	if err != nil {
		writeFailure(w, "Failed to set factors", err)
		return
	}
	writeJSON(w, http.StatusOK, employeeDetail(*s.Employee(id), s))
}

// SetFulfillment records achievement against one goal.
func (h *Handler) SetFulfillment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key, index, err := pillarAndIndex(r)
	if err != nil {
		writeFailure(w, "Invalid goal reference", err)
		return
	}
	var req FulfillmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", fmt.Errorf("%w: value is required", errBadRequest))
		return
	}

	s, err := h.mutate(r.Context(), func(s *incentive.State) error {
		return incentive.SetFulfillment(s, id, key, index, *req.Value)
	})
	if err != nil {
		writeFailure(w, "Failed to set fulfillment", err)
		return
	}
	writeJSON(w, http.StatusOK, employeeDetail(*s.Employee(id), s))
}

// GetPillars returns the resolved goal structure of an employee.
func (h *Handler) GetPillars(w http.ResponseWriter, r *http.Request) {
	s := h.State()
	e, ok := employeeOr404(w, s, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPillarsDTO(incentive.Resolve(*e, s)))
}

// GetScore returns pillar scores, effective weights and the total score.
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	s := h.State()
	e, ok := employeeOr404(w, s, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, incentive.TotalScore(*e, s))
}

// GetPayout returns the payout breakdown of an employee.
func (h *Handler) GetPayout(w http.ResponseWriter, r *http.Request) {
	s := h.State()
	e, ok := employeeOr404(w, s, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPayoutDTO(incentive.Payout(*e, s), e))
}

// =============================================================================
// OVERRIDE HANDLERS
// =============================================================================

// SetOverride installs an override. An empty body copies the employee's
// department default; otherwise the body is a pillar set and is sanitized.
func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var set *incentive.PillarSet
	if len(strings.TrimSpace(string(body))) > 0 {
		parsed, err := h.parsePillarSet(id, body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid pillar set", err)
			return
		}
		set = &parsed
	}

	s, err := h.mutate(r.Context(), func(s *incentive.State) error {
		e := s.Employee(id)
		if e == nil {
			return fmt.Errorf("%w: %s", incentive.ErrEmployeeNotFound, id)
		}
		if set == nil {
			copied := s.Departments[incentive.NormalizeDepartment(string(e.Department))]
			set = &copied
		}
		incentive.SetOverride(id, *set, s)
		return nil
	})
	if err != nil {
		writeFailure(w, "Failed to set override", err)
		return
	}
	writeJSON(w, http.StatusOK, toPillarsDTO(incentive.Resolve(*s.Employee(id), s)))
}

// ClearOverride reverts an employee to the department default.
func (h *Handler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.mutate(r.Context(), func(s *incentive.State) error {
		if s.Employee(id) == nil {
			return fmt.Errorf("%w: %s", incentive.ErrEmployeeNotFound, id)
		}
		if !incentive.HasOverride(id, *s) {
			return fmt.Errorf("%w: %s", incentive.ErrOverrideNotFound, id)
		}
		incentive.ClearOverride(id, s)
		return nil
	})
	if err != nil {
		writeFailure(w, "Failed to clear override", err)
		return
	}
	writeJSON(w, http.StatusOK, toPillarsDTO(incentive.Resolve(*s.Employee(id), s)))
}

// parsePillarSet runs a raw pillar set through the sanitizer's override rules.
func (h *Handler) parsePillarSet(id string, body []byte) (incentive.PillarSet, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return incentive.PillarSet{}, err
	}
	s := h.Defaults.Sanitize(map[string]any{
		"overrides": map[string]any{id: raw},
	})
	set, ok := s.Overrides[id]
	if !ok {
		return incentive.PillarSet{}, errors.New("a pillar set needs fin, ops and ind objects")
	}
	return set, nil
}

// =============================================================================
// DEPARTMENT & PILLAR HANDLERS
// =============================================================================

// ListDepartments returns every department default structure.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	s := h.State()
	counts := make(map[incentive.Department]int)
	for _, e := range s.Employees {
		counts[incentive.NormalizeDepartment(string(e.Department))]++
	}

	dtos := make([]DepartmentDTO, 0, len(incentive.Departments))
	for _, dept := range incentive.Departments {
		ps := s.Departments[dept]
		dtos = append(dtos, DepartmentDTO{
			Department: dept,
			Pillars:    ps,
			Effective:  incentive.EffectiveWeights(ps),
			Employees:  counts[dept],
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpdatePillar toggles a pillar and/or sets its weight.
func (h *Handler) UpdatePillar(target targetFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := target(r)
		if err != nil {
			writeFailure(w, "Invalid target", err)
			return
		}
		key := incentive.PillarKey(chi.URLParam(r, "pillar"))
		var req UpdatePillarRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		h.editPillar(w, r, t, func(s *incentive.State) error {
			if req.Enabled != nil {
				if err := incentive.TogglePillar(s, t, key, *req.Enabled); err != nil {
					return err
				}
			}
			if req.Weight != nil {
				return incentive.SetPillarWeight(s, t, key, *req.Weight)
			}
			if !key.Valid() {
				return fmt.Errorf("%w: %q", incentive.ErrUnknownPillar, key)
			}
			return nil
		})
	}
}

// AddGoal appends a goal to a pillar.
func (h *Handler) AddGoal(target targetFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := target(r)
		if err != nil {
			writeFailure(w, "Invalid target", err)
			return
		}
		key := incentive.PillarKey(chi.URLParam(r, "pillar"))
		var g incentive.Goal
		if err := decodeJSON(r, &g); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		h.editPillar(w, r, t, func(s *incentive.State) error {
			return incentive.AddGoal(s, t, key, g)
		})
	}
}

// RemoveGoal deletes a goal from a pillar.
func (h *Handler) RemoveGoal(target targetFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := target(r)
		if err != nil {
			writeFailure(w, "Invalid target", err)
			return
		}
		key, index, err := pillarAndIndex(r)
		if err != nil {
			writeFailure(w, "Invalid goal reference", err)
			return
		}

		h.editPillar(w, r, t, func(s *incentive.State) error {
			return incentive.RemoveGoal(s, t, key, index)
		})
	}
}

// editPillar applies a pillar edit and responds with the edited structure.
func (h *Handler) editPillar(w http.ResponseWriter, r *http.Request, t incentive.Target, fn func(s *incentive.State) error) {
	s, err := h.mutate(r.Context(), func(s *incentive.State) error {
		if t.EmployeeID != "" && s.Employee(t.EmployeeID) == nil {
			return fmt.Errorf("%w: %s", incentive.ErrEmployeeNotFound, t.EmployeeID)
		}
		return fn(s)
	})
	if err != nil {
		writeFailure(w, "Failed to edit pillar", err)
		return
	}

	if t.EmployeeID != "" {
		writeJSON(w, http.StatusOK, toPillarsDTO(incentive.Resolve(*s.Employee(t.EmployeeID), s)))
		return
	}
	ps := s.Departments[t.Department]
	writeJSON(w, http.StatusOK, DepartmentDTO{
		Department: t.Department,
		Pillars:    ps,
		Effective:  incentive.EffectiveWeights(ps),
	})
}

// targetFunc extracts the goal structure a pillar route addresses.
type targetFunc func(r *http.Request) (incentive.Target, error)

func departmentTarget(r *http.Request) (incentive.Target, error) {
	dept, err := parseDepartment(chi.URLParam(r, "dept"))
	if err != nil {
		return incentive.Target{}, err
	}
	return incentive.DepartmentTarget(dept), nil
}

func overrideTarget(r *http.Request) (incentive.Target, error) {
	return incentive.OverrideTarget(chi.URLParam(r, "id")), nil
}

// =============================================================================
// PAYOUT HANDLERS
// =============================================================================

// ListPayouts computes the payout of the whole roster.
func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	s := h.State()
	results := incentive.Roster(s)
	writeJSON(w, http.StatusOK, payoutRun(s, results))
}

// CreateSnapshot freezes the current payout run.
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req CreateSnapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	snap, err := h.snapshot(r.Context(), strings.TrimSpace(req.Label))
	if err != nil {
		writeFailure(w, "Failed to create snapshot", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSnapshotDTO(snap, true))
}

// snapshot computes and stores a payout run of the live state.
func (h *Handler) snapshot(ctx context.Context, label string) (store.Snapshot, error) {
	now := h.now()
	if label == "" {
		label = "Payout run " + now.UTC().Format("2006-01-02 15:04")
	}

	snap, err := store.NewSnapshot(label, incentive.Roster(h.State()), now)
	if err != nil {
		return store.Snapshot{}, err
	}
	if err := h.Store.SaveSnapshot(ctx, snap); err != nil {
		return store.Snapshot{}, err
	}

	zap.L().Info("payout snapshot saved",
		zap.String("snapshot_id", snap.ID),
		zap.String("label", snap.Label),
		zap.String("total_payout", snap.TotalPayout.StringFixed(2)),
	)
	return snap, nil
}

// ListSnapshots returns stored payout runs without their results.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.Store.ListSnapshots(r.Context())
	if err != nil {
		writeFailure(w, "Failed to list snapshots", err)
		return
	}
	dtos := make([]SnapshotDTO, len(snaps))
	for i, snap := range snaps {
		dtos[i] = toSnapshotDTO(snap, false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSnapshot returns one stored payout run.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.GetSnapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "Failed to get snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(*snap, true))
}

// ResetDatabase clears all data and reverts to the default state.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeFailure(w, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.state = h.Defaults.State()
	h.currentScenario = ""
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func employeeDetail(e incentive.Employee, s incentive.State) EmployeeDetailDTO {
	return EmployeeDetailDTO{
		EmployeeDTO: EmployeeDTO{Employee: e, HasOverride: incentive.HasOverride(e.ID, s)},
		Pillars:     toPillarsDTO(incentive.Resolve(e, s)),
		Payout:      toPayoutDTO(incentive.Payout(e, s), &e),
	}
}

func payoutRun(s incentive.State, results []incentive.Result) PayoutRunDTO {
	dtos := make([]PayoutDTO, len(results))
	for i, res := range results {
		dtos[i] = toPayoutDTO(res, s.Employee(res.EmployeeID))
	}
	return PayoutRunDTO{Results: dtos, Totals: toTotalsDTO(incentive.Totals(results))}
}

func employeeOr404(w http.ResponseWriter, s incentive.State, id string) (*incentive.Employee, bool) {
	e := s.Employee(id)
	if e == nil {
		writeError(w, http.StatusNotFound, "Employee not found", fmt.Errorf("%w: %s", incentive.ErrEmployeeNotFound, id))
		return nil, false
	}
	return e, true
}

// parseDepartment accepts the closed set plus the legacy back office label.
// Unlike NormalizeDepartment it rejects unknown labels.
func parseDepartment(raw string) (incentive.Department, error) {
	label := strings.ToLower(strings.TrimSpace(raw))
	for _, dept := range incentive.Departments {
		if label == string(dept) {
			return dept, nil
		}
	}
	if incentive.NormalizeDepartment(label) == incentive.DeptOffice {
		return incentive.DeptOffice, nil
	}
	return "", fmt.Errorf("%w: unknown department %q", errBadRequest, raw)
}

func pillarAndIndex(r *http.Request) (incentive.PillarKey, int, error) {
	key := incentive.PillarKey(chi.URLParam(r, "pillar"))
	if !key.Valid() {
		return "", 0, fmt.Errorf("%w: %q", incentive.ErrUnknownPillar, key)
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return "", 0, fmt.Errorf("%w: index %q is not a number", errBadRequest, chi.URLParam(r, "index"))
	}
	return key, index, nil
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func decodeJSON(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeFailure maps err onto an HTTP status.
func writeFailure(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.L().Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case incentive.IsNotFound(err), errors.Is(err, store.ErrSnapshotNotFound):
		return http.StatusNotFound
	case incentive.IsClientError(err), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
