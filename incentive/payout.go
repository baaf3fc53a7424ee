package incentive

import (
	"math"

	"github.com/shopspring/decimal"
)

// Result is a full payout breakdown. Raw is what the employee earned before
// the cap; Payout is what is paid.
type Result struct {
	EmployeeID string `json:"employeeId"`
	Score
	Base   decimal.Decimal `json:"base"`
	Factor float64         `json:"factor"`
	Cap    decimal.Decimal `json:"cap"`
	Raw    decimal.Decimal `json:"raw"`
	Payout decimal.Decimal `json:"payout"`
}

// Capped reports whether the cap reduced the payout.
func (r Result) Capped() bool {
	return r.Raw.GreaterThan(r.Payout)
}

// Payout computes the capped bonus for e:
//
//	base   = salary * (e.BaseMonths or Settings.BaseMonths)
//	raw    = base * total score * factor
//	cap    = base * CapPct / 100
//	payout = clamp(raw, 0, cap)
func Payout(e Employee, s State) Result {
	months := math.Max(0, Num(s.Settings.BaseMonths, 0))
	if e.BaseMonths != nil {
		months = math.Max(0, Num(*e.BaseMonths, months))
	}
	salary := math.Max(0, Num(e.Salary, 0))
	capPct := math.Max(0, Num(s.Settings.CapPct, 0))

	score := TotalScore(e, s)
	factor := FactorFor(e, s)

	base := money(salary).Mul(money(months))
	raw := base.Mul(money(score.Total)).Mul(money(factor))
	limit := base.Mul(money(capPct)).Div(decimal.NewFromInt(100))
	if limit.IsNegative() {
		limit = decimal.Zero
	}

	return Result{
		EmployeeID: e.ID,
		Score:      score,
		Base:       base,
		Factor:     factor,
		Cap:        limit,
		Raw:        raw,
		Payout:     clampMoney(raw, decimal.Zero, limit),
	}
}

// Roster computes a Result for every employee in roster order.
func Roster(s State) []Result {
	results := make([]Result, 0, len(s.Employees))
	for _, e := range s.Employees {
		results = append(results, Payout(e, s))
	}
	return results
}

// Summary aggregates a payout run.
type Summary struct {
	Employees int             `json:"employees"`
	Base      decimal.Decimal `json:"base"`
	Raw       decimal.Decimal `json:"raw"`
	Payout    decimal.Decimal `json:"payout"`
	Capped    int             `json:"capped"`
}

// Totals sums a set of results.
func Totals(results []Result) Summary {
	sum := Summary{Base: decimal.Zero, Raw: decimal.Zero, Payout: decimal.Zero}
	for _, r := range results {
		sum.Employees++
		sum.Base = sum.Base.Add(r.Base)
		sum.Raw = sum.Raw.Add(r.Raw)
		sum.Payout = sum.Payout.Add(r.Payout)
		if r.Capped() {
			sum.Capped++
		}
	}
	return sum
}
