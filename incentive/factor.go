package incentive

// FactorFor returns the payout multiplier for e.
//
// Back office staff use the office factor alone. Restaurant leadership
// combines tenure and size, multiplied or averaged per Settings.FactorMode.
// The combined value is pulled back into [0.8, 1.2] only when
// Settings.CapFactor is set; otherwise a multiplied factor may reach
// 0.64..1.44.
func FactorFor(e Employee, s State) float64 {
	if e.Department.IsBackOffice() {
		return ClampFactor(Num(e.Factors.Office, 1))
	}
	f1 := ClampFactor(Num(e.Factors.Tenure, 1))
	f2 := ClampFactor(Num(e.Factors.Size, 1))

	var combined float64
	switch s.Settings.FactorMode {
	case FactorAverage:
		combined = (f1 + f2) / 2
	default:
		combined = f1 * f2
	}
	if s.Settings.CapFactor {
		combined = ClampFactor(combined)
	}
	return combined
}
