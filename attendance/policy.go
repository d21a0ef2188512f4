/*
policy.go - Company attendance policy

PURPOSE:
  A Policy states what fraction of working days must be spent in-office.
  The auto-calculated monthly goal is floor(workingDays * percentage).

PRECISION:
  Percentages are decimal.Decimal. floor(21 * 0.5) must be 10 for every
  input, and binary floats make "x * 0.6" land a hair under an integer
  often enough to shave a day off somebody's goal.
*/
package attendance

import "github.com/shopspring/decimal"

// Policy is the percentage-of-working-days-required-in-office rule.
type Policy struct {
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"` // 0.0 .. 1.0
}

// Fixed presets matching the standard hybrid schedules.
var (
	PolicyFullTime = Policy{Name: "full_time", Percentage: decimal.NewFromInt(1)}
	PolicyHybrid60 = Policy{Name: "hybrid_60", Percentage: decimal.RequireFromString("0.6")}
	PolicyHybrid50 = Policy{Name: "hybrid_50", Percentage: decimal.RequireFromString("0.5")}
	PolicyHybrid40 = Policy{Name: "hybrid_40", Percentage: decimal.RequireFromString("0.4")}
	PolicyRemote   = Policy{Name: "remote", Percentage: decimal.Zero}
)

// CustomPolicy builds a policy from an arbitrary percentage in [0, 1].
// Out-of-range values are clamped.
func CustomPolicy(percentage float64) Policy {
	p := decimal.NewFromFloat(percentage)
	if p.IsNegative() {
		p = decimal.Zero
	}
	if p.GreaterThan(decimal.NewFromInt(1)) {
		p = decimal.NewFromInt(1)
	}
	return Policy{Name: "custom", Percentage: p}
}

// RequiredDays returns floor(workingDays * percentage), never negative.
func (p Policy) RequiredDays(workingDays int) int {
	if workingDays <= 0 {
		return 0
	}
	required := decimal.NewFromInt(int64(workingDays)).Mul(p.Percentage)
	if required.IsNegative() {
		return 0
	}
	return int(required.IntPart())
}
