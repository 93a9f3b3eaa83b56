// Package allocation spreads shipment-level charges (freight, customs duty,
// fees) across the received purchase order lines to produce per-unit landed
// costs. Strategies are tried in a fixed priority order and the first
// applicable one wins, so callers never pick a strategy by hand.
package allocation

import (
	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Line is one received purchase order line entering allocation
type Line struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitCost  decimal.Decimal
	WeightKg  *decimal.Decimal // Per-unit weight; nil when the product has none recorded
}

// LineWeight returns the total weight of the line, or zero when unknown
func (l Line) LineWeight() decimal.Decimal {
	if l.WeightKg == nil {
		return decimal.Zero
	}
	return l.WeightKg.Mul(decimal.NewFromInt(l.Quantity))
}

// LineValue returns the purchase value of the line
func (l Line) LineValue() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(l.Quantity))
}

// AllocatedLine is a line with its share of the shipment charges applied
type AllocatedLine struct {
	ProductID       uuid.UUID
	Quantity        int64
	UnitCost        decimal.Decimal
	AllocatedCharge decimal.Decimal // This line's slice of the total charges
	LandedUnitCost  decimal.Decimal // UnitCost plus per-unit charge share, 2dp
}

// Result is the outcome of allocating one shipment's charges
type Result struct {
	Strategy string
	Lines    []AllocatedLine
}

// Strategy computes proportional weights for charge allocation. Weights are
// relative; the allocator normalizes them and fixes rounding drift so the
// allocated charges always sum exactly to the total.
type Strategy interface {
	// Name identifies the strategy on the shipment record
	Name() string

	// Applicable reports whether the strategy can run on the given lines
	Applicable(lines []Line) bool

	// Weights returns one proportional weight per line, index-aligned
	Weights(lines []Line) []decimal.Decimal
}

// Allocator runs the strategy chain over a set of lines
type Allocator struct {
	strategies []Strategy
}

// NewAllocator creates an allocator with the default strategy priority:
// weight first, then value, then equal split.
func NewAllocator() *Allocator {
	return &Allocator{
		strategies: []Strategy{
			&WeightStrategy{},
			&ValueStrategy{},
			&EqualStrategy{},
		},
	}
}

// Allocate distributes totalCharges across the lines using the first
// applicable strategy. Lines with zero quantity are dropped before selection.
// The last line absorbs rounding drift so the per-line charges sum exactly to
// totalCharges.
func (a *Allocator) Allocate(lines []Line, totalCharges decimal.Decimal) (*Result, error) {
	if totalCharges.IsNegative() {
		return nil, shared.NewDomainError("INVALID_CHARGES", "Total charges cannot be negative")
	}

	active := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.Quantity > 0 {
			active = append(active, line)
		}
	}
	if len(active) == 0 {
		return nil, shared.ErrAllocationDegenerate
	}

	var selected Strategy
	for _, s := range a.strategies {
		if s.Applicable(active) {
			selected = s
			break
		}
	}
	if selected == nil {
		return nil, shared.ErrAllocationDegenerate
	}

	weights := selected.Weights(active)
	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}
	if totalWeight.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrAllocationDegenerate
	}

	result := &Result{
		Strategy: selected.Name(),
		Lines:    make([]AllocatedLine, len(active)),
	}

	remaining := totalCharges
	for idx, line := range active {
		var charge decimal.Decimal
		if idx == len(active)-1 {
			charge = remaining
		} else {
			charge = totalCharges.Mul(weights[idx]).Div(totalWeight).Round(2)
			remaining = remaining.Sub(charge)
		}

		qty := decimal.NewFromInt(line.Quantity)
		result.Lines[idx] = AllocatedLine{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitCost:        line.UnitCost,
			AllocatedCharge: charge,
			LandedUnitCost:  line.UnitCost.Add(charge.Div(qty)).Round(2),
		}
	}

	return result, nil
}
