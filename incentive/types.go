/*
Package incentive computes performance bonuses for restaurant staff.

PURPOSE:
  Turns weighted performance goals, department default structures,
  per-employee overrides and adjustment factors into a bounded payout per
  employee. The package is a pure function space: it reads a State snapshot
  and returns derived numbers. It owns no storage and performs no I/O.

KEY CONCEPTS IN THIS FILE (types.go):
  - Goal:      a named target weighted in percentage points within a pillar
  - Pillar:    one of three weighted categories (fin, ops, ind)
  - PillarSet: the three pillars that make up a goal structure
  - Employee:  salary, factors and per-goal fulfillment
  - Settings:  global payout rules (base months, cap, factor combination)
  - State:     aggregate root holding all of the above

CALCULATION FLOW:
  Sanitize (once per load)
    -> Resolve (override or department default)
    -> EffectiveWeights
    -> TotalScore
    -> FactorFor
    -> Payout

  SyncAll runs after every structural edit so fulfillment vectors always
  match the resolved goal lists before a score is computed.

CONCURRENCY:
  Nothing in this package locks. A State has a single writer; the hosting
  application serialises access (see api.Handler).

SEE ALSO:
  - sanitize.go: builds a well-formed State from arbitrary input
  - payout.go:   the end of the calculation chain
  - edit.go:     administrative edits that keep the invariants
*/
package incentive

// =============================================================================
// PILLARS AND GOALS
// =============================================================================

// PillarKey names one of the three pillars.
type PillarKey string

const (
	PillarFin PillarKey = "fin" // financial
	PillarOps PillarKey = "ops" // operational
	PillarInd PillarKey = "ind" // individual
)

// PillarKeys lists the pillars in display order.
var PillarKeys = []PillarKey{PillarFin, PillarOps, PillarInd}

// Valid reports whether k is one of the three pillar keys.
func (k PillarKey) Valid() bool {
	switch k {
	case PillarFin, PillarOps, PillarInd:
		return true
	}
	return false
}

// Goal is a performance target. Weight is in percentage points (0-100)
// relative to its parent pillar.
type Goal struct {
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Pillar groups goals. Weight is a fraction (0-1) of the combined score.
// A disabled pillar keeps its goals but takes no part in weighting.
type Pillar struct {
	Name    string  `json:"name" yaml:"name"`
	Weight  float64 `json:"weight" yaml:"weight"`
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Goals   []Goal  `json:"goals" yaml:"goals"`
}

// PillarSet is a complete goal structure: exactly three pillars.
type PillarSet struct {
	Fin Pillar `json:"fin" yaml:"fin"`
	Ops Pillar `json:"ops" yaml:"ops"`
	Ind Pillar `json:"ind" yaml:"ind"`
}

// Pillar returns the pillar stored under key. Unknown keys yield a zero Pillar.
func (ps PillarSet) Pillar(key PillarKey) Pillar {
	if p := ps.ref(key); p != nil {
		return *p
	}
	return Pillar{}
}

func (ps *PillarSet) ref(key PillarKey) *Pillar {
	switch key {
	case PillarFin:
		return &ps.Fin
	case PillarOps:
		return &ps.Ops
	case PillarInd:
		return &ps.Ind
	}
	return nil
}

// Clone returns a deep copy so edits never alias another set's goal slices.
func (ps PillarSet) Clone() PillarSet {
	out := ps
	for _, key := range PillarKeys {
		p := out.ref(key)
		p.Goals = append(make([]Goal, 0, len(p.Goals)), p.Goals...)
	}
	return out
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// Factors are per-employee multipliers, each meant to stay in [0.8, 1.2].
// Tenure and Size apply to restaurant leadership, Office to back office.
type Factors struct {
	Tenure float64 `json:"tenure"`
	Size   float64 `json:"size"`
	Office float64 `json:"office"`
}

// Fulfillment holds achievement percentages per pillar, aligned by index
// with the goals of the employee's resolved PillarSet.
type Fulfillment struct {
	Fin []float64 `json:"fin"`
	Ops []float64 `json:"ops"`
	Ind []float64 `json:"ind"`
}

// Values returns the vector for key.
func (f Fulfillment) Values(key PillarKey) []float64 {
	switch key {
	case PillarFin:
		return f.Fin
	case PillarOps:
		return f.Ops
	case PillarInd:
		return f.Ind
	}
	return nil
}

// SetValues replaces the vector for key.
func (f *Fulfillment) SetValues(key PillarKey, values []float64) {
	switch key {
	case PillarFin:
		f.Fin = values
	case PillarOps:
		f.Ops = values
	case PillarInd:
		f.Ind = values
	}
}

// Employee is a bonus-eligible member of staff.
// BaseMonths overrides Settings.BaseMonths when set.
type Employee struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Department  Department  `json:"department"`
	Salary      float64     `json:"salary"`
	BaseMonths  *float64    `json:"baseMonths,omitempty"`
	Factors     Factors     `json:"factors"`
	Fulfillment Fulfillment `json:"fulfillment"`
}

// =============================================================================
// SETTINGS AND STATE
// =============================================================================

// FactorMode selects how tenure and size factors combine.
type FactorMode string

const (
	FactorMultiply FactorMode = "multiply"
	FactorAverage  FactorMode = "average"
)

// Settings are the global payout rules.
type Settings struct {
	BaseMonths float64    `json:"baseMonths" yaml:"baseMonths"`
	CapPct     float64    `json:"capPct" yaml:"capPct"`
	FactorMode FactorMode `json:"factorMode" yaml:"factorMode"`
	CapFactor  bool       `json:"capFactor" yaml:"capFactor"`
}

// State is the aggregate root: everything the engine needs to compute payouts.
// Selected is host view state; calculations never read it.
type State struct {
	Settings    Settings                 `json:"settings"`
	Departments map[Department]PillarSet `json:"departments"`
	Overrides   map[string]PillarSet     `json:"overrides"`
	Employees   []Employee               `json:"employees"`
	Selected    string                   `json:"selectedId,omitempty"`
}

// Employee returns a pointer into the roster, or nil.
func (s *State) Employee(id string) *Employee {
	for i := range s.Employees {
		if s.Employees[i].ID == id {
			return &s.Employees[i]
		}
	}
	return nil
}

// Clone returns a deep copy. Hosts edit a clone and swap it in only after
// it has been persisted.
func (s State) Clone() State {
	out := s
	out.Departments = make(map[Department]PillarSet, len(s.Departments))
	for dept, ps := range s.Departments {
		out.Departments[dept] = ps.Clone()
	}
	out.Overrides = make(map[string]PillarSet, len(s.Overrides))
	for id, ps := range s.Overrides {
		out.Overrides[id] = ps.Clone()
	}
	out.Employees = make([]Employee, len(s.Employees))
	for i, e := range s.Employees {
		if e.BaseMonths != nil {
			months := *e.BaseMonths
			e.BaseMonths = &months
		}
		for _, key := range PillarKeys {
			e.Fulfillment.SetValues(key, append([]float64{}, e.Fulfillment.Values(key)...))
		}
		out.Employees[i] = e
	}
	return out
}
