package incentive

// Score is the achievement breakdown for one employee.
type Score struct {
	Fin   float64 `json:"fin"`
	Ops   float64 `json:"ops"`
	Ind   float64 `json:"ind"`
	Total float64 `json:"total"`
	Eff   Weights `json:"eff"`
}

// PillarScore sums weighted goal achievement for one pillar of e's resolved
// structure. Each goal contributes weight/100 times its fulfillment ratio
// capped at 1.2; the pillar total is capped at 1.2 as well. A goal without a
// recorded fulfillment counts as met.
func PillarScore(e Employee, key PillarKey, s State) float64 {
	return pillarScore(PillarsFor(e, s).Pillar(key), e.Fulfillment.Values(key))
}

func pillarScore(p Pillar, fulfillment []float64) float64 {
	var sum float64
	for i, g := range p.Goals {
		f := DefaultFulfillment
		if i < len(fulfillment) {
			f = Num(fulfillment[i], DefaultFulfillment)
		}
		sum += Pct(Num(g.Weight, 0)) * Clamp(Pct(f), 0, ScoreCeiling)
	}
	return Clamp(sum, 0, ScoreCeiling)
}

// TotalScore blends the pillar scores with effective weights.
func TotalScore(e Employee, s State) Score {
	ps := PillarsFor(e, s)
	sc := Score{
		Fin: pillarScore(ps.Fin, e.Fulfillment.Fin),
		Ops: pillarScore(ps.Ops, e.Fulfillment.Ops),
		Ind: pillarScore(ps.Ind, e.Fulfillment.Ind),
		Eff: EffectiveWeights(ps),
	}
	total := sc.Fin*sc.Eff.Fin + sc.Ops*sc.Eff.Ops + sc.Ind*sc.Eff.Ind
	sc.Total = Clamp(total, 0, ScoreCeiling)
	return sc
}
