/*
sanitize.go - Defensive reconstruction of a State from arbitrary input

PURPOSE:
  Whatever was persisted last (possibly nothing, possibly an older schema,
  possibly hand-edited JSON) becomes a canonical State. Every field goes
  through one normalisation step with a documented fallback; nothing is
  rejected and nothing panics. The worst case is the default state.

ACCEPTED INPUT:
  nil                      -> default state
  map[string]any, []any    -> decoded JSON
  []byte, json.RawMessage,
  string                   -> JSON text (invalid text -> default state)
  State, *State, others    -> round-tripped through encoding/json

FIELD RULES:
  settings.baseMonths, capPct   finite, >= 0, else default
  settings.factorMode           "multiply" | "average", else default
  settings.capFactor            bool, else default
  departments.<dept>            object, else department default
                                (legacy "hq" key accepted for office)
  pillar.name                   non-empty string, else default name
  pillar.enabled                false only when literally false
  pillar.weight                 clamped to [0, 1]
  goal.weight                   clamped to [0, 100]
  overrides.<id>                object with fin/ops/ind objects, else dropped
  employees[i].id               string or number, else "emp-<i+1>";
                                later duplicates dropped
  employees[i].department       NormalizeDepartment
  employees[i].salary           >= 0
  employees[i].baseMonths       >= 0, or absent
  employees[i].factors.*        clamped to [0.8, 1.2], default 1
  employees[i].fulfillment.*    numbers >= 0, default 100
  selectedId                    must name an employee, else first employee

  SyncAll runs last, so fulfillment vectors always match goal counts.

IDEMPOTENCE:
  Sanitize(Sanitize(x)) equals Sanitize(x). Every rule maps its own output
  onto itself.
*/
package incentive

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Sanitize builds a canonical State from raw using the standard defaults.
func Sanitize(raw any) State {
	return StandardDefaults().Sanitize(raw)
}

// Sanitize builds a canonical State from raw, degrading to d.
func (d *Defaults) Sanitize(raw any) (out State) {
	defer func() {
		if r := recover(); r != nil {
			out = d.State()
		}
	}()

	root, ok := decodeInput(raw).(map[string]any)
	if !ok {
		return d.State()
	}

	s := State{
		Settings:    d.sanitizeSettings(root["settings"]),
		Departments: d.sanitizeDepartments(root["departments"]),
		Overrides:   sanitizeOverrides(root["overrides"]),
		Employees:   sanitizeEmployees(root["employees"]),
	}
	s.Selected = deriveSelected(asString(root["selectedId"]), s.Employees)
	SyncAll(&s)
	return s
}

// decodeInput turns raw into the generic shape encoding/json produces.
func decodeInput(raw any) any {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	case string:
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		data = b
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// =============================================================================
// SETTINGS
// =============================================================================

func (d *Defaults) sanitizeSettings(raw any) Settings {
	obj, _ := raw.(map[string]any)
	def := d.Settings

	mode := FactorMode(asString(obj["factorMode"]))
	if mode != FactorMultiply && mode != FactorAverage {
		mode = def.FactorMode
	}
	if mode != FactorMultiply && mode != FactorAverage {
		mode = FactorMultiply
	}

	capFactor := def.CapFactor
	if b, ok := obj["capFactor"].(bool); ok {
		capFactor = b
	}

	return Settings{
		BaseMonths: math.Max(0, Num(obj["baseMonths"], def.BaseMonths)),
		CapPct:     math.Max(0, Num(obj["capPct"], def.CapPct)),
		FactorMode: mode,
		CapFactor:  capFactor,
	}
}

// =============================================================================
// PILLARS
// =============================================================================

func (d *Defaults) sanitizeDepartments(raw any) map[Department]PillarSet {
	obj, _ := raw.(map[string]any)
	out := make(map[Department]PillarSet, len(Departments))
	for _, dept := range Departments {
		entry := obj[string(dept)]
		if entry == nil && dept == DeptOffice {
			entry = obj[legacyOfficeLabel]
		}
		fallback := d.PillarSet(dept)
		if _, ok := entry.(map[string]any); !ok {
			out[dept] = fallback
			continue
		}
		out[dept] = sanitizePillarSet(entry, fallback)
	}
	return out
}

// sanitizeOverrides keys overrides by trimmed employee ID. When two keys
// trim to the same ID, the one already in trimmed form wins, then the first
// in sorted order.
func sanitizeOverrides(raw any) map[string]PillarSet {
	obj, _ := raw.(map[string]any)
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		iExact := keys[i] == strings.TrimSpace(keys[i])
		jExact := keys[j] == strings.TrimSpace(keys[j])
		if iExact != jExact {
			return iExact
		}
		return keys[i] < keys[j]
	})

	out := make(map[string]PillarSet, len(obj))
	for _, key := range keys {
		id, entry := strings.TrimSpace(key), obj[key]
		if _, taken := out[id]; taken || id == "" || !isPillarSetShape(entry) {
			continue
		}
		out[id] = sanitizePillarSet(entry, PillarSet{})
	}
	return out
}

// isPillarSetShape is the minimum an override must satisfy to be kept.
func isPillarSetShape(raw any) bool {
	obj, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	for _, key := range PillarKeys {
		if _, ok := obj[string(key)].(map[string]any); !ok {
			return false
		}
	}
	return true
}

func sanitizePillarSet(raw any, fallback PillarSet) PillarSet {
	obj, _ := raw.(map[string]any)
	var ps PillarSet
	for _, key := range PillarKeys {
		*ps.ref(key) = sanitizePillar(obj[string(key)], key, fallback.Pillar(key))
	}
	return ps
}

func sanitizePillar(raw any, key PillarKey, fallback Pillar) Pillar {
	if fallback.Name == "" {
		fallback.Name = defaultPillarNames[key]
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		fallback.Goals = append([]Goal{}, fallback.Goals...)
		return fallback
	}

	p := Pillar{
		Name:    asString(obj["name"]),
		Weight:  Clamp(Num(obj["weight"], fallback.Weight), 0, 1),
		Enabled: obj["enabled"] != false,
		Goals:   []Goal{},
	}
	if p.Name == "" {
		p.Name = fallback.Name
	}

	goals, ok := obj["goals"].([]any)
	if !ok {
		p.Goals = append(p.Goals, fallback.Goals...)
		return p
	}
	for _, g := range goals {
		gobj, ok := g.(map[string]any)
		if !ok {
			continue
		}
		goal := Goal{
			Name:   asString(gobj["name"]),
			Weight: Clamp(Num(gobj["weight"], 0), 0, 100),
		}
		if goal.Name == "" {
			goal.Name = fmt.Sprintf("Goal %d", len(p.Goals)+1)
		}
		p.Goals = append(p.Goals, goal)
	}
	return p
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func sanitizeEmployees(raw any) []Employee {
	list, _ := raw.([]any)
	out := make([]Employee, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		e := sanitizeEmployee(obj, i)
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

func sanitizeEmployee(obj map[string]any, index int) Employee {
	e := Employee{
		ID:         employeeID(obj["id"], index),
		Name:       asString(obj["name"]),
		Department: NormalizeDepartment(asString(obj["department"])),
		Salary:     math.Max(0, Num(obj["salary"], 0)),
	}
	if months, ok := toFloat(obj["baseMonths"]); ok {
		months = math.Max(0, months)
		e.BaseMonths = &months
	}

	factors, _ := obj["factors"].(map[string]any)
	e.Factors = Factors{
		Tenure: ClampFactor(Num(factors["tenure"], 1)),
		Size:   ClampFactor(Num(factors["size"], 1)),
		Office: ClampFactor(Num(factors["office"], 1)),
	}

	fulfillment, _ := obj["fulfillment"].(map[string]any)
	for _, key := range PillarKeys {
		list, _ := fulfillment[string(key)].([]any)
		values := make([]float64, len(list))
		for i, v := range list {
			values[i] = math.Max(0, Num(v, DefaultFulfillment))
		}
		e.Fulfillment.SetValues(key, values)
	}
	return e
}

func employeeID(raw any, index int) string {
	switch v := raw.(type) {
	case string:
		if id := strings.TrimSpace(v); id != "" {
			return id
		}
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return fmt.Sprintf("emp-%d", index+1)
}

func deriveSelected(selected string, employees []Employee) string {
	for _, e := range employees {
		if e.ID == selected {
			return selected
		}
	}
	if len(employees) > 0 {
		return employees[0].ID
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
