package incentive

// Weights are effective pillar weights after disabled pillars are removed.
// BaseSum is the sum of enabled nominal weights, kept for display.
type Weights struct {
	Fin     float64 `json:"fin"`
	Ops     float64 `json:"ops"`
	Ind     float64 `json:"ind"`
	BaseSum float64 `json:"baseSum"`
}

// EffectiveWeights redistributes nominal weights across enabled pillars so
// they sum to 1. When nothing is enabled, or enabled weights sum to zero or
// less, every weight is 0.
func EffectiveWeights(ps PillarSet) Weights {
	var w Weights
	for _, key := range PillarKeys {
		if p := ps.Pillar(key); p.Enabled {
			w.BaseSum += pillarWeight(p)
		}
	}
	if w.BaseSum <= 0 {
		return w
	}
	share := func(p Pillar) float64 {
		if !p.Enabled {
			return 0
		}
		return pillarWeight(p) / w.BaseSum
	}
	w.Fin = share(ps.Fin)
	w.Ops = share(ps.Ops)
	w.Ind = share(ps.Ind)
	return w
}

func pillarWeight(p Pillar) float64 {
	return Clamp(Num(p.Weight, 0), 0, 1)
}
