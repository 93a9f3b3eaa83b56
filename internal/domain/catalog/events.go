package catalog

import (
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the catalog context
const (
	EventTypeProductBelowReorderLevel = "catalog.product.below_reorder_level"
	EventTypeProductCostChanged       = "catalog.product.cost_changed"
)

// ProductBelowReorderLevelEvent is emitted when a debit takes stock below the
// reorder threshold. Informational only; nothing in the ledger acts on it.
type ProductBelowReorderLevelEvent struct {
	shared.BaseDomainEvent
	SKU          string `json:"sku"`
	CurrentStock int64  `json:"current_stock"`
	ReorderLevel int64  `json:"reorder_level"`
}

// NewProductBelowReorderLevelEvent creates a new below-reorder-level event
func NewProductBelowReorderLevelEvent(p *Product) *ProductBelowReorderLevelEvent {
	return &ProductBelowReorderLevelEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductBelowReorderLevel, "Product", p.ID),
		SKU:             p.SKU,
		CurrentStock:    p.CurrentStock,
		ReorderLevel:    p.ReorderLevel,
	}
}

// ProductCostChangedEvent is emitted when a receipt changes the
// weighted-average landed cost.
type ProductCostChangedEvent struct {
	shared.BaseDomainEvent
	SKU     string           `json:"sku"`
	OldCost *decimal.Decimal `json:"old_cost"`
	NewCost decimal.Decimal  `json:"new_cost"`
}

// NewProductCostChangedEvent creates a new cost-changed event
func NewProductCostChangedEvent(p *Product, oldCost *decimal.Decimal, newCost decimal.Decimal) *ProductCostChangedEvent {
	return &ProductCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCostChanged, "Product", p.ID),
		SKU:             p.SKU,
		OldCost:         oldCost,
		NewCost:         newCost,
	}
}
