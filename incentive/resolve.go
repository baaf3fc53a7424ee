package incentive

// SourceKind tells where an employee's goal structure came from.
type SourceKind string

const (
	SourceDefault  SourceKind = "default"
	SourceOverride SourceKind = "override"
)

// PillarSource is the result of pillar resolution: either the department
// default or an employee override, never a blend of the two.
type PillarSource struct {
	Kind       SourceKind `json:"kind"`
	Department Department `json:"department"`
	Set        PillarSet  `json:"set"`
}

// Resolve selects the goal structure for e. An override replaces the
// department default entirely.
func Resolve(e Employee, s State) PillarSource {
	dept := NormalizeDepartment(string(e.Department))
	if set, ok := s.Overrides[e.ID]; ok {
		return PillarSource{Kind: SourceOverride, Department: dept, Set: set}
	}
	return PillarSource{Kind: SourceDefault, Department: dept, Set: s.Departments[dept]}
}

// PillarsFor returns the resolved PillarSet for e.
func PillarsFor(e Employee, s State) PillarSet {
	return Resolve(e, s).Set
}

// HasOverride reports whether employeeID has its own goal structure.
func HasOverride(employeeID string, s State) bool {
	_, ok := s.Overrides[employeeID]
	return ok
}

// SetOverride installs set as the goal structure for employeeID and
// resynchronises fulfillment vectors.
func SetOverride(employeeID string, set PillarSet, s *State) {
	if s.Overrides == nil {
		s.Overrides = map[string]PillarSet{}
	}
	s.Overrides[employeeID] = set.Clone()
	SyncAll(s)
}

// ClearOverride reverts employeeID to the department default.
func ClearOverride(employeeID string, s *State) {
	delete(s.Overrides, employeeID)
	SyncAll(s)
}
