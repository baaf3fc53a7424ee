package incentive

// SyncEmployee resizes e's fulfillment vectors to the goal counts of its
// resolved pillars: short vectors are padded with DefaultFulfillment, long
// ones truncated.
//
// Alignment is positional. Reordering goals moves previously entered
// fulfillment onto whichever goal now sits at that index.
func SyncEmployee(e *Employee, s State) {
	ps := PillarsFor(*e, s)
	for _, key := range PillarKeys {
		n := len(ps.Pillar(key).Goals)
		e.Fulfillment.SetValues(key, fitLength(e.Fulfillment.Values(key), n))
	}
}

// SyncAll resynchronises every employee in the roster.
func SyncAll(s *State) {
	for i := range s.Employees {
		SyncEmployee(&s.Employees[i], *s)
	}
}

func fitLength(values []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(values) {
			out[i] = values[i]
		} else {
			out[i] = DefaultFulfillment
		}
	}
	return out
}
