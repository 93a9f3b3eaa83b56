package allocation

import "github.com/shopspring/decimal"

// StrategyNameEqual identifies equal per-line allocation
const StrategyNameEqual = "EQUAL"

// EqualStrategy splits charges evenly across the lines, regardless of their
// quantities. It is the last resort when neither weights nor values are
// usable, for example free samples with zero unit cost.
type EqualStrategy struct{}

// Name returns the strategy identifier
func (s *EqualStrategy) Name() string {
	return StrategyNameEqual
}

// Applicable requires at least one unit across the lines
func (s *EqualStrategy) Applicable(lines []Line) bool {
	for _, line := range lines {
		if line.Quantity > 0 {
			return true
		}
	}
	return false
}

// Weights returns an identical weight for each line
func (s *EqualStrategy) Weights(lines []Line) []decimal.Decimal {
	weights := make([]decimal.Decimal, len(lines))
	for idx := range lines {
		weights[idx] = decimal.NewFromInt(1)
	}
	return weights
}
