/*
edit.go - Administrative edits on a State

PURPOSE:
  The edit operations the hosting application performs on behalf of
  administrators: adding and removing employees and goals, toggling
  pillars, recording fulfillment. Every edit that can change a goal
  structure resynchronises fulfillment vectors before returning, so a
  score computed right after an edit always sees aligned vectors.

TARGETS:
  Goal and pillar edits address either a department default or an
  employee override:

    incentive.DepartmentTarget(incentive.DeptOffice)
    incentive.OverrideTarget("emp-7")

SEE ALSO:
  - resolve.go: SetOverride / ClearOverride
  - sync.go:    the synchronizer every edit calls
*/
package incentive

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Target addresses a goal structure. A non-empty EmployeeID selects that
// employee's override; otherwise the Department default is edited.
type Target struct {
	Department Department `json:"department,omitempty"`
	EmployeeID string     `json:"employeeId,omitempty"`
}

// DepartmentTarget addresses the default structure of dept.
func DepartmentTarget(dept Department) Target { return Target{Department: dept} }

// OverrideTarget addresses the override of employeeID.
func OverrideTarget(employeeID string) Target { return Target{EmployeeID: employeeID} }

// =============================================================================
// PILLAR AND GOAL EDITS
// =============================================================================

// AddGoal appends a goal to a pillar of t.
func AddGoal(s *State, t Target, key PillarKey, g Goal) error {
	return editPillar(s, t, key, func(p *Pillar) error {
		g.Name = strings.TrimSpace(g.Name)
		if g.Name == "" {
			g.Name = fmt.Sprintf("Goal %d", len(p.Goals)+1)
		}
		g.Weight = Clamp(g.Weight, 0, 100)
		p.Goals = append(p.Goals, g)
		return nil
	})
}

// RemoveGoal deletes the goal at index from a pillar of t. The matching
// fulfillment entry is dropped from every employee resolving to t, so the
// entries after it stay on their goals.
func RemoveGoal(s *State, t Target, key PillarKey, index int) error {
	return editPillar(s, t, key, func(p *Pillar) error {
		if index < 0 || index >= len(p.Goals) {
			return &GoalIndexError{Pillar: key, Index: index, Count: len(p.Goals)}
		}
		p.Goals = append(p.Goals[:index], p.Goals[index+1:]...)
		dropFulfillment(s, t, key, index)
		return nil
	})
}

func dropFulfillment(s *State, t Target, key PillarKey, index int) {
	dept := NormalizeDepartment(string(t.Department))
	for i := range s.Employees {
		e := &s.Employees[i]
		if t.EmployeeID != "" {
			if e.ID != t.EmployeeID {
				continue
			}
		} else if HasOverride(e.ID, *s) || NormalizeDepartment(string(e.Department)) != dept {
			continue
		}
		values := e.Fulfillment.Values(key)
		if index >= len(values) {
			continue
		}
		out := make([]float64, 0, len(values)-1)
		out = append(out, values[:index]...)
		out = append(out, values[index+1:]...)
		e.Fulfillment.SetValues(key, out)
	}
}

// TogglePillar enables or disables a pillar of t. Goals are kept.
func TogglePillar(s *State, t Target, key PillarKey, enabled bool) error {
	return editPillar(s, t, key, func(p *Pillar) error {
		p.Enabled = enabled
		return nil
	})
}

// SetPillarWeight sets the nominal weight of a pillar of t, clamped to [0, 1].
func SetPillarWeight(s *State, t Target, key PillarKey, weight float64) error {
	return editPillar(s, t, key, func(p *Pillar) error {
		p.Weight = Clamp(Num(weight, 0), 0, 1)
		return nil
	})
}

func editPillar(s *State, t Target, key PillarKey, fn func(p *Pillar) error) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPillar, key)
	}

	var set PillarSet
	if t.EmployeeID != "" {
		existing, ok := s.Overrides[t.EmployeeID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrOverrideNotFound, t.EmployeeID)
		}
		set = existing.Clone()
	} else {
		set = s.Departments[NormalizeDepartment(string(t.Department))].Clone()
	}

	if err := fn(set.ref(key)); err != nil {
		return err
	}

	if t.EmployeeID != "" {
		s.Overrides[t.EmployeeID] = set
	} else {
		if s.Departments == nil {
			s.Departments = map[Department]PillarSet{}
		}
		s.Departments[NormalizeDepartment(string(t.Department))] = set
	}
	SyncAll(s)
	return nil
}

// =============================================================================
// EMPLOYEE EDITS
// =============================================================================

// AddEmployee appends e to the roster and returns the stored record.
// An empty ID gets a generated one; zero factors default to 1.
func AddEmployee(s *State, e Employee) (Employee, error) {
	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if s.Employee(e.ID) != nil {
		return Employee{}, fmt.Errorf("%w: %s", ErrDuplicateEmployee, e.ID)
	}

	e.Department = NormalizeDepartment(string(e.Department))
	e.Salary = math.Max(0, Num(e.Salary, 0))
	if e.BaseMonths != nil {
		months := math.Max(0, Num(*e.BaseMonths, 0))
		e.BaseMonths = &months
	}
	e.Factors = normalizeFactors(e.Factors)
	SyncEmployee(&e, *s)

	s.Employees = append(s.Employees, e)
	if s.Selected == "" {
		s.Selected = e.ID
	}
	return e, nil
}

// RemoveEmployee deletes an employee and any override they had.
func RemoveEmployee(s *State, id string) error {
	for i := range s.Employees {
		if s.Employees[i].ID != id {
			continue
		}
		s.Employees = append(s.Employees[:i], s.Employees[i+1:]...)
		delete(s.Overrides, id)
		s.Selected = deriveSelected(s.Selected, s.Employees)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
}

// SetDepartment moves an employee to another department.
func SetDepartment(s *State, id string, dept Department) error {
	e := s.Employee(id)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
	}
	e.Department = NormalizeDepartment(string(dept))
	SyncEmployee(e, *s)
	return nil
}

// SetCompensation updates salary and the optional base-month override.
func SetCompensation(s *State, id string, salary float64, baseMonths *float64) error {
	e := s.Employee(id)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
	}
	e.Salary = math.Max(0, Num(salary, 0))
	e.BaseMonths = nil
	if baseMonths != nil {
		months := math.Max(0, Num(*baseMonths, 0))
		e.BaseMonths = &months
	}
	return nil
}

// SetFactors replaces an employee's factors, clamped to the factor band.
func SetFactors(s *State, id string, f Factors) error {
	e := s.Employee(id)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
	}
	e.Factors = normalizeFactors(f)
	return nil
}

// SetFulfillment records achievement (percent) against goal index of a
// pillar in the employee's resolved structure.
func SetFulfillment(s *State, id string, key PillarKey, index int, value float64) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPillar, key)
	}
	e := s.Employee(id)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
	}
	SyncEmployee(e, *s)

	values := e.Fulfillment.Values(key)
	if index < 0 || index >= len(values) {
		return &GoalIndexError{Pillar: key, Index: index, Count: len(values)}
	}
	values[index] = math.Max(0, Num(value, DefaultFulfillment))
	return nil
}

// UpdateSettings replaces the global settings. Negative amounts are floored
// at zero and an unknown factor mode keeps the current one.
func UpdateSettings(s *State, next Settings) {
	if next.FactorMode != FactorMultiply && next.FactorMode != FactorAverage {
		next.FactorMode = s.Settings.FactorMode
	}
	next.BaseMonths = math.Max(0, Num(next.BaseMonths, s.Settings.BaseMonths))
	next.CapPct = math.Max(0, Num(next.CapPct, s.Settings.CapPct))
	s.Settings = next
}

func normalizeFactors(f Factors) Factors {
	norm := func(v float64) float64 {
		if v == 0 {
			return 1
		}
		return ClampFactor(Num(v, 1))
	}
	return Factors{Tenure: norm(f.Tenure), Size: norm(f.Size), Office: norm(f.Office)}
}
