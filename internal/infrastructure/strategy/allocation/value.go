package allocation

import "github.com/shopspring/decimal"

// StrategyNameValue identifies value-based allocation
const StrategyNameValue = "VALUE"

// ValueStrategy allocates charges in proportion to line purchase value. It is
// the fallback when weights are incomplete, and matches how ad valorem
// customs duty is actually assessed.
type ValueStrategy struct{}

// Name returns the strategy identifier
func (s *ValueStrategy) Name() string {
	return StrategyNameValue
}

// Applicable requires a positive total purchase value
func (s *ValueStrategy) Applicable(lines []Line) bool {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineValue())
	}
	return total.IsPositive()
}

// Weights returns the purchase value of each line
func (s *ValueStrategy) Weights(lines []Line) []decimal.Decimal {
	weights := make([]decimal.Decimal, len(lines))
	for idx, line := range lines {
		weights[idx] = line.LineValue()
	}
	return weights
}
