package incentive

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds shared by the calculators.
const (
	FactorMin = 0.8
	FactorMax = 1.2

	// ScoreCeiling caps any single goal contribution, a pillar score and the
	// blended total at 120% of target.
	ScoreCeiling = 1.2

	// DefaultFulfillment is assumed for goals nobody has scored yet.
	DefaultFulfillment = 100.0
)

// Num coerces v to a finite float64, falling back to def.
// Accepts the shapes encoding/json produces plus plain Go numbers and
// numeric strings.
func Num(v any, def float64) float64 {
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Pct converts a percentage to a fraction.
func Pct(v float64) float64 { return v / 100 }

// ClampFactor bounds a factor to the [FactorMin, FactorMax] band.
func ClampFactor(v float64) float64 { return Clamp(v, FactorMin, FactorMax) }

// =============================================================================
// MONEY
// =============================================================================

// money converts a float to a decimal for payout arithmetic.
func money(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// clampMoney bounds v to [lo, hi].
func clampMoney(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
