package incentive_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/incentive-engine/incentive"
)

func TestSanitize_GarbageYieldsDefaultState(t *testing.T) {
	want := incentive.StandardDefaults().State()

	for _, raw := range []any{nil, "not json", []byte("{"), 42, []any{1, 2}, true} {
		assert.Equal(t, want, incentive.Sanitize(raw), "input %#v", raw)
	}
}

func TestSanitize_Settings(t *testing.T) {
	s := incentive.Sanitize(map[string]any{
		"settings": map[string]any{
			"baseMonths": -2,
			"capPct":     "150",
			"factorMode": "geometric",
			"capFactor":  "yes",
		},
	})

	assert.Equal(t, incentive.Settings{
		BaseMonths: 0,
		CapPct:     150,
		FactorMode: incentive.FactorMultiply,
		CapFactor:  true,
	}, s.Settings)
}

func TestSanitize_PillarShapes(t *testing.T) {
	// GIVEN: A department pillar with out-of-range weights, a missing name,
	// a non-boolean enabled flag and a malformed goal entry
	s := incentive.Sanitize(map[string]any{
		"departments": map[string]any{
			"shift_manager": map[string]any{
				"fin": map[string]any{
					"weight":  1.7,
					"enabled": "false",
					"goals": []any{
						map[string]any{"name": "Revenue", "weight": 140},
						"broken",
						map[string]any{"weight": -5},
					},
				},
				"ops": map[string]any{"weight": 0.4, "enabled": false},
			},
		},
	})

	ps := s.Departments[incentive.DeptShiftManager]

	// THEN: Weights are clamped, only literal false disables, goals are repaired
	assert.Equal(t, "Financial", ps.Fin.Name)
	assert.Equal(t, 1.0, ps.Fin.Weight)
	assert.True(t, ps.Fin.Enabled)
	assert.Equal(t, []incentive.Goal{{Name: "Revenue", Weight: 100}, {Name: "Goal 2", Weight: 0}}, ps.Fin.Goals)

	assert.False(t, ps.Ops.Enabled)
	defaults := incentive.StandardDefaults().PillarSet(incentive.DeptShiftManager)
	assert.Equal(t, defaults.Ops.Goals, ps.Ops.Goals, "missing goals fall back to the department default")
	assert.Equal(t, defaults.Ind, ps.Ind, "missing pillar falls back to the department default")
}

func TestSanitize_LegacyOfficeKey(t *testing.T) {
	s := incentive.Sanitize(map[string]any{
		"departments": map[string]any{
			"hq": map[string]any{
				"fin": map[string]any{"name": "Group result", "weight": 1, "goals": []any{}},
			},
		},
		"employees": []any{
			map[string]any{"id": "e1", "department": "HQ"},
		},
	})

	assert.Equal(t, "Group result", s.Departments[incentive.DeptOffice].Fin.Name)
	assert.Equal(t, incentive.DeptOffice, s.Employees[0].Department)
}

func TestSanitize_OverrideShapeCheck(t *testing.T) {
	good := map[string]any{
		"fin": map[string]any{"weight": 1, "goals": []any{map[string]any{"name": "Own goal", "weight": 100}}},
		"ops": map[string]any{"weight": 0},
		"ind": map[string]any{"weight": 0},
	}
	s := incentive.Sanitize(map[string]any{
		"overrides": map[string]any{
			"e1": good,
			"e2": map[string]any{"fin": map[string]any{}},
			"e3": "nope",
			"  ": good,
		},
		"employees": []any{
			map[string]any{"id": "e1"},
			map[string]any{"id": "e2"},
		},
	})

	require.Len(t, s.Overrides, 1)
	assert.True(t, incentive.HasOverride("e1", s))
	assert.False(t, incentive.HasOverride("e2", s))
	assert.Equal(t, []incentive.Goal{}, s.Overrides["e1"].Ops.Goals)

	assert.Len(t, s.Employees[0].Fulfillment.Fin, 1, "override goal count drives sync")
}

func TestSanitize_OverrideKeysTrimToSameID(t *testing.T) {
	named := func(goal string) map[string]any {
		return map[string]any{
			"fin": map[string]any{"weight": 1, "goals": []any{map[string]any{"name": goal, "weight": 100}}},
			"ops": map[string]any{"weight": 0},
			"ind": map[string]any{"weight": 0},
		}
	}
	raw := map[string]any{
		"overrides": map[string]any{
			" e1": named("Leading space"),
			"e1 ": named("Trailing space"),
			"e1":  named("Exact"),
			" e2": named("Leading space"),
			"e2 ": named("Trailing space"),
		},
	}

	for i := 0; i < 20; i++ {
		s := incentive.Sanitize(raw)
		require.Len(t, s.Overrides, 2)
		assert.Equal(t, "Exact", s.Overrides["e1"].Fin.Goals[0].Name)
		assert.Equal(t, "Leading space", s.Overrides["e2"].Fin.Goals[0].Name)
	}
}

func TestSanitize_Employees(t *testing.T) {
	s := incentive.Sanitize(map[string]any{
		"employees": []any{
			map[string]any{
				"id":         7,
				"name":       "  Jo  ",
				"department": "kitchen",
				"salary":     -100,
				"baseMonths": "2",
				"factors":    map[string]any{"tenure": 5, "size": "x"},
				"fulfillment": map[string]any{
					"fin": []any{50, "bad", -10, 80, 90, 95},
				},
			},
			map[string]any{"name": "no id"},
			map[string]any{"id": "7", "name": "duplicate"},
			"not an employee",
		},
		"selectedId": "ghost",
	})

	require.Len(t, s.Employees, 2)
	e := s.Employees[0]
	assert.Equal(t, "7", e.ID)
	assert.Equal(t, "Jo", e.Name)
	assert.Equal(t, incentive.DeptGeneralManager, e.Department)
	assert.Zero(t, e.Salary)
	require.NotNil(t, e.BaseMonths)
	assert.Equal(t, 2.0, *e.BaseMonths)
	assert.Equal(t, incentive.Factors{Tenure: 1.2, Size: 1, Office: 1}, e.Factors)

	// general_manager default fin pillar has two goals
	assert.Equal(t, []float64{50, 100}, e.Fulfillment.Fin)
	assert.Equal(t, []float64{100, 100}, e.Fulfillment.Ops)
	assert.Equal(t, []float64{100}, e.Fulfillment.Ind)

	assert.Equal(t, "emp-2", s.Employees[1].ID)
	assert.Nil(t, s.Employees[1].BaseMonths)
	assert.Equal(t, "7", s.Selected, "unknown selection falls back to the first employee")
}

func TestSanitize_AcceptsJSONAndTypedState(t *testing.T) {
	original := scenarioState()
	original.Selected = "emp-1"

	data, err := json.Marshal(original)
	require.NoError(t, err)

	fromBytes := incentive.Sanitize(data)
	fromString := incentive.Sanitize(string(data))
	fromTyped := incentive.Sanitize(&original)

	assert.Equal(t, fromBytes, fromString)
	assert.Equal(t, fromBytes, fromTyped)
	assert.Equal(t, "emp-1", fromBytes.Selected)
	assert.InDelta(t, 0.83, incentive.TotalScore(fromBytes.Employees[0], fromBytes).Total, tolerance)
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []any{
		nil,
		map[string]any{},
		map[string]any{"employees": []any{map[string]any{"department": "hq", "salary": "3000"}}},
		map[string]any{
			"settings":    map[string]any{"factorMode": "average", "capFactor": false},
			"departments": map[string]any{"office": map[string]any{"fin": map[string]any{"goals": []any{map[string]any{}}}}},
			"overrides":   map[string]any{"a": map[string]any{"fin": map[string]any{}, "ops": map[string]any{}, "ind": map[string]any{}}},
			"employees":   []any{map[string]any{"id": "a", "fulfillment": map[string]any{"ops": []any{1, 2, 3, 4}}}},
		},
	}
	for _, raw := range inputs {
		once := incentive.Sanitize(raw)
		twice := incentive.Sanitize(once)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeDepartment(t *testing.T) {
	cases := map[string]incentive.Department{
		"general_manager": incentive.DeptGeneralManager,
		"Shift_Manager ":  incentive.DeptShiftManager,
		"office":          incentive.DeptOffice,
		"hq":              incentive.DeptOffice,
		"HQ":              incentive.DeptOffice,
		"":                incentive.DeptGeneralManager,
		"dishwasher":      incentive.DeptGeneralManager,
	}
	for raw, want := range cases {
		assert.Equal(t, want, incentive.NormalizeDepartment(raw), raw)
	}
}

func TestNum(t *testing.T) {
	assert.Equal(t, 3.5, incentive.Num(3.5, 0))
	assert.Equal(t, 3.0, incentive.Num(3, 0))
	assert.Equal(t, 2.5, incentive.Num(" 2.5 ", 0))
	assert.Equal(t, 9.0, incentive.Num(json.Number("9"), 0))
	assert.Equal(t, 1.0, incentive.Num("abc", 1))
	assert.Equal(t, 1.0, incentive.Num(nil, 1))
	assert.Equal(t, 1.0, incentive.Num("NaN", 1))
	assert.Equal(t, 1.0, incentive.Num("+Inf", 1))
}
