package incentive

import "strings"

// Department is the normalized category used to pick default pillars and
// factor logic.
type Department string

const (
	DeptGeneralManager Department = "general_manager" // primary restaurant leadership
	DeptShiftManager   Department = "shift_manager"   // secondary restaurant leadership
	DeptOffice         Department = "office"          // back office
)

// legacyOfficeLabel is the label older records used for back office staff.
const legacyOfficeLabel = "hq"

// Departments lists the closed set in display order.
var Departments = []Department{DeptGeneralManager, DeptShiftManager, DeptOffice}

// NormalizeDepartment maps a raw label onto the closed set. The legacy
// back office label collapses onto DeptOffice and unknown labels fall back
// to DeptGeneralManager.
func NormalizeDepartment(raw string) Department {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == legacyOfficeLabel {
		return DeptOffice
	}
	switch d := Department(label); d {
	case DeptGeneralManager, DeptShiftManager, DeptOffice:
		return d
	}
	return DeptGeneralManager
}

// IsBackOffice reports whether factor logic uses the office factor.
func (d Department) IsBackOffice() bool {
	return NormalizeDepartment(string(d)) == DeptOffice
}
