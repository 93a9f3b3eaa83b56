package allocation

import "github.com/shopspring/decimal"

// StrategyNameWeight identifies weight-based allocation
const StrategyNameWeight = "WEIGHT"

// WeightStrategy allocates charges in proportion to total line weight. It is
// the preferred strategy for sea and air freight, where cost tracks mass, and
// applies as long as every product has a recorded weight. Lines whose weight
// is recorded as zero ride along with a zero share.
type WeightStrategy struct{}

// Name returns the strategy identifier
func (s *WeightStrategy) Name() string {
	return StrategyNameWeight
}

// Applicable requires a recorded weight on every line and a positive total
func (s *WeightStrategy) Applicable(lines []Line) bool {
	total := decimal.Zero
	for _, line := range lines {
		if line.WeightKg == nil {
			return false
		}
		total = total.Add(line.LineWeight())
	}
	return total.IsPositive()
}

// Weights returns the total weight of each line
func (s *WeightStrategy) Weights(lines []Line) []decimal.Decimal {
	weights := make([]decimal.Decimal, len(lines))
	for idx, line := range lines {
		weights[idx] = line.LineWeight()
	}
	return weights
}
