/*
defaults.go - Default settings and department goal structures

PURPOSE:
  The fallback configuration the sanitizer degrades to. Defaults is a plain
  value built once and handed to the sanitizer by pointer; nothing in the
  package reads global tables during a calculation.

STANDARD DEFAULTS:
  Settings: 3 base months, cap 120% of base, multiply factors, cap factor.

  general_manager  fin 0.5 / ops 0.3 / ind 0.2
  shift_manager    fin 0.4 / ops 0.4 / ind 0.2
  office           fin 0.3 / ops 0.3 / ind 0.4

SEE ALSO:
  - sanitize.go:        consumes Defaults
  - factory/presets.go: loads Defaults from a YAML preset file
*/
package incentive

// Defaults is the immutable fallback configuration.
type Defaults struct {
	Settings    Settings                 `yaml:"settings"`
	Departments map[Department]PillarSet `yaml:"departments"`
}

// DefaultSettings returns the standard payout rules.
func DefaultSettings() Settings {
	return Settings{
		BaseMonths: 3,
		CapPct:     120,
		FactorMode: FactorMultiply,
		CapFactor:  true,
	}
}

// defaultPillarNames label pillars that arrive without a name.
var defaultPillarNames = map[PillarKey]string{
	PillarFin: "Financial",
	PillarOps: "Operational",
	PillarInd: "Individual",
}

// StandardDefaults builds the hard-coded defaults.
func StandardDefaults() *Defaults {
	return &Defaults{
		Settings: DefaultSettings(),
		Departments: map[Department]PillarSet{
			DeptGeneralManager: {
				Fin: pillar(PillarFin, 0.5, Goal{"Restaurant revenue vs plan", 60}, Goal{"Food cost", 40}),
				Ops: pillar(PillarOps, 0.3, Goal{"Hygiene audit", 50}, Goal{"Mystery guest", 50}),
				Ind: pillar(PillarInd, 0.2, Goal{"Team development", 100}),
			},
			DeptShiftManager: {
				Fin: pillar(PillarFin, 0.4, Goal{"Shift revenue vs plan", 50}, Goal{"Labor cost", 50}),
				Ops: pillar(PillarOps, 0.4, Goal{"Speed of service", 50}, Goal{"Hygiene audit", 50}),
				Ind: pillar(PillarInd, 0.2, Goal{"Training completed", 100}),
			},
			DeptOffice: {
				Fin: pillar(PillarFin, 0.3, Goal{"Company EBITDA", 100}),
				Ops: pillar(PillarOps, 0.3, Goal{"Process deadlines", 50}, Goal{"Internal customer rating", 50}),
				Ind: pillar(PillarInd, 0.4, Goal{"Personal objectives", 100}),
			},
		},
	}
}

func pillar(key PillarKey, weight float64, goals ...Goal) Pillar {
	return Pillar{Name: defaultPillarNames[key], Weight: weight, Enabled: true, Goals: goals}
}

// PillarSet returns a copy of the default set for d.
func (d *Defaults) PillarSet(dept Department) PillarSet {
	if ps, ok := d.Departments[NormalizeDepartment(string(dept))]; ok {
		return ps.Clone()
	}
	return PillarSet{
		Fin: pillar(PillarFin, 0),
		Ops: pillar(PillarOps, 0),
		Ind: pillar(PillarInd, 0),
	}
}

// State returns a fresh default state with an empty roster.
func (d *Defaults) State() State {
	s := State{
		Settings:    d.Settings,
		Departments: make(map[Department]PillarSet, len(Departments)),
		Overrides:   map[string]PillarSet{},
		Employees:   []Employee{},
	}
	for _, dept := range Departments {
		s.Departments[dept] = d.PillarSet(dept)
	}
	return s
}
