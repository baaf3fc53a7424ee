/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine types that
  already have a stable JSON shape (State, PillarSet, Settings, Score) are
  returned as-is; payout amounts are decimals internally and are rounded
  to cents here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Employees:  EmployeeDTO, EmployeeDetailDTO, CreateEmployeeRequest,
              UpdateEmployeeRequest, FulfillmentRequest
  Pillars:    PillarsDTO, DepartmentDTO, UpdatePillarRequest
  Payouts:    PayoutDTO, PayoutRunDTO, TotalsDTO, SnapshotDTO,
              CreateSnapshotRequest
  Settings:   UpdateSettingsRequest
  Scenarios:  ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO is a roster entry.
type EmployeeDTO struct {
	incentive.Employee
	HasOverride bool `json:"hasOverride"`
}

// EmployeeDetailDTO is a roster entry with its resolved structure and payout.
type EmployeeDetailDTO struct {
	EmployeeDTO
	Pillars PillarsDTO `json:"pillars"`
	Payout  PayoutDTO  `json:"payout"`
}

// CreateEmployeeRequest is the request to add an employee.
type CreateEmployeeRequest struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Department string             `json:"department"`
	Salary     float64            `json:"salary"`
	BaseMonths *float64           `json:"baseMonths,omitempty"`
	Factors    *incentive.Factors `json:"factors,omitempty"`
}

// UpdateEmployeeRequest changes the master data of an employee. Omitted
// fields are left unchanged; ClearBaseMonths reverts to the global setting.
type UpdateEmployeeRequest struct {
	Name            *string  `json:"name,omitempty"`
	Department      *string  `json:"department,omitempty"`
	Salary          *float64 `json:"salary,omitempty"`
	BaseMonths      *float64 `json:"baseMonths,omitempty"`
	ClearBaseMonths bool     `json:"clearBaseMonths,omitempty"`
}

// FulfillmentRequest records achievement in percent. Value is required.
type FulfillmentRequest struct {
	Value *float64 `json:"value"`
}

// =============================================================================
// PILLARS
// =============================================================================

// PillarsDTO is a resolved goal structure with its effective weights.
type PillarsDTO struct {
	Source     incentive.SourceKind `json:"source"`
	Department incentive.Department `json:"department"`
	Pillars    incentive.PillarSet  `json:"pillars"`
	Effective  incentive.Weights    `json:"effective"`
}

// DepartmentDTO is a department default structure.
type DepartmentDTO struct {
	Department incentive.Department `json:"department"`
	Pillars    incentive.PillarSet  `json:"pillars"`
	Effective  incentive.Weights    `json:"effective"`
	Employees  int                  `json:"employees"`
}

// UpdatePillarRequest toggles a pillar and/or sets its nominal weight.
type UpdatePillarRequest struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Weight  *float64 `json:"weight,omitempty"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// UpdateSettingsRequest changes global settings. Omitted fields are kept.
type UpdateSettingsRequest struct {
	BaseMonths *float64 `json:"baseMonths,omitempty"`
	CapPct     *float64 `json:"capPct,omitempty"`
	FactorMode *string  `json:"factorMode,omitempty"`
	CapFactor  *bool    `json:"capFactor,omitempty"`
}

// =============================================================================
// PAYOUTS
// =============================================================================

// PayoutDTO is a payout breakdown with money rounded to cents.
type PayoutDTO struct {
	EmployeeID string          `json:"employeeId"`
	Name       string          `json:"name,omitempty"`
	Department string          `json:"department,omitempty"`
	Scores     incentive.Score `json:"scores"`
	Factor     float64         `json:"factor"`
	Base       float64         `json:"base"`
	Cap        float64         `json:"cap"`
	Raw        float64         `json:"raw"`
	Payout     float64         `json:"payout"`
	Capped     bool            `json:"capped"`
}

// TotalsDTO aggregates a payout run.
type TotalsDTO struct {
	Employees int     `json:"employees"`
	Base      float64 `json:"base"`
	Raw       float64 `json:"raw"`
	Payout    float64 `json:"payout"`
	Capped    int     `json:"capped"`
}

// PayoutRunDTO is the payout of the whole roster.
type PayoutRunDTO struct {
	Results []PayoutDTO `json:"results"`
	Totals  TotalsDTO   `json:"totals"`
}

// CreateSnapshotRequest freezes the current payout run.
type CreateSnapshotRequest struct {
	Label string `json:"label"`
}

// SnapshotDTO is a stored payout run. Results is omitted in listings.
type SnapshotDTO struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	CreatedAt   string          `json:"createdAt"`
	TotalPayout float64         `json:"totalPayout"`
	Results     json.RawMessage `json:"results,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toPayoutDTO(r incentive.Result, e *incentive.Employee) PayoutDTO {
	dto := PayoutDTO{
		EmployeeID: r.EmployeeID,
		Scores:     r.Score,
		Factor:     r.Factor,
		Base:       cents(r.Base),
		Cap:        cents(r.Cap),
		Raw:        cents(r.Raw),
		Payout:     cents(r.Payout),
		Capped:     r.Capped(),
	}
	if e != nil {
		dto.Name = e.Name
		dto.Department = string(e.Department)
	}
	return dto
}

func toTotalsDTO(sum incentive.Summary) TotalsDTO {
	return TotalsDTO{
		Employees: sum.Employees,
		Base:      cents(sum.Base),
		Raw:       cents(sum.Raw),
		Payout:    cents(sum.Payout),
		Capped:    sum.Capped,
	}
}

func toPillarsDTO(src incentive.PillarSource) PillarsDTO {
	return PillarsDTO{
		Source:     src.Kind,
		Department: src.Department,
		Pillars:    src.Set,
		Effective:  incentive.EffectiveWeights(src.Set),
	}
}

func toSnapshotDTO(snap store.Snapshot, withResults bool) SnapshotDTO {
	dto := SnapshotDTO{
		ID:          snap.ID,
		Label:       snap.Label,
		CreatedAt:   snap.CreatedAt.UTC().Format(time.RFC3339),
		TotalPayout: cents(snap.TotalPayout),
	}
	if withResults {
		dto.Results = snap.Results
	}
	return dto
}
