package catalog

import (
	"time"

	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a sellable merchandise item and is the aggregate root
// for stock bookkeeping. CurrentStock and LandedCost are owned by the stock
// ledger: state machines never write them directly, every change flows
// through ApplyQuantityChange / ApplyReceipt / ReverseQuantity so the running
// balance always matches the movement history.
type Product struct {
	shared.BaseAggregateRoot
	SKU          string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string           `gorm:"type:varchar(255);not null"`
	SellingPrice decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	WeightKg     *decimal.Decimal `gorm:"type:decimal(10,3)"` // Per-unit weight, used for charge allocation
	CurrentStock int64            `gorm:"not null;default:0"`
	ReorderLevel int64            `gorm:"not null;default:0"`
	LandedCost   *decimal.Decimal `gorm:"type:decimal(18,2)"` // Weighted-average unit cost; nil until first receipt
	Location     string           `gorm:"type:varchar(100)"`  // Warehouse location label (single warehouse)
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with zero stock
func NewProduct(sku, name string, sellingPrice decimal.Decimal) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		SellingPrice:      sellingPrice,
	}, nil
}

// SetWeight sets the per-unit weight in kilograms
func (p *Product) SetWeight(weightKg decimal.Decimal) error {
	if weightKg.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	p.WeightKg = &weightKg
	p.UpdatedAt = time.Now()
	return nil
}

// SetReorderLevel sets the replenishment threshold
func (p *Product) SetReorderLevel(level int64) error {
	if level < 0 {
		return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	p.ReorderLevel = level
	p.UpdatedAt = time.Now()
	return nil
}

// ApplyQuantityChange applies a signed stock change and returns the balance
// before and after. A change that would drive stock negative is rejected with
// ErrInsufficientStock and leaves the product untouched.
func (p *Product) ApplyQuantityChange(delta int64) (before, after int64, err error) {
	before = p.CurrentStock
	after = before + delta
	if after < 0 {
		return before, before, shared.ErrInsufficientStock
	}

	p.CurrentStock = after
	p.UpdatedAt = time.Now()

	if delta < 0 && p.ReorderLevel > 0 && after < p.ReorderLevel {
		p.AddDomainEvent(NewProductBelowReorderLevelEvent(p))
	}

	return before, after, nil
}

// ApplyReceipt increases stock by a received quantity and folds the incoming
// landed cost into the weighted-average landed cost:
//
//	newCost = round2((before*oldCost + qty*incomingCost) / after)
//
// On the first-ever receipt the incoming cost becomes the cost basis.
// This is the only operation that writes LandedCost.
func (p *Product) ApplyReceipt(quantity int64, incomingLandedCost decimal.Decimal) (before, after int64, err error) {
	if quantity <= 0 {
		return p.CurrentStock, p.CurrentStock, shared.NewDomainError("INVALID_QUANTITY", "Receipt quantity must be positive")
	}
	if incomingLandedCost.IsNegative() {
		return p.CurrentStock, p.CurrentStock, shared.NewDomainError("INVALID_COST", "Landed cost cannot be negative")
	}

	before = p.CurrentStock
	after = before + quantity

	oldCost := incomingLandedCost
	if p.LandedCost != nil {
		oldCost = *p.LandedCost
	}

	totalValue := decimal.NewFromInt(before).Mul(oldCost).
		Add(decimal.NewFromInt(quantity).Mul(incomingLandedCost))
	newCost := totalValue.Div(decimal.NewFromInt(after)).Round(2)

	if p.LandedCost == nil || !p.LandedCost.Equal(newCost) {
		prev := p.LandedCost
		p.AddDomainEvent(NewProductCostChangedEvent(p, prev, newCost))
	}

	p.CurrentStock = after
	p.LandedCost = &newCost
	p.UpdatedAt = time.Now()

	return before, after, nil
}

// ReverseQuantity removes a previously applied movement quantity from the
// running balance. Used only by movement deletion; rejects with
// ErrWouldGoNegative if the reversal would corrupt the non-negative invariant.
func (p *Product) ReverseQuantity(movementQuantity int64) (after int64, err error) {
	reversed := p.CurrentStock - movementQuantity
	if reversed < 0 {
		return p.CurrentStock, shared.ErrWouldGoNegative
	}

	p.CurrentStock = reversed
	p.UpdatedAt = time.Now()

	return reversed, nil
}

// IsBelowReorderLevel returns true if current stock is below the threshold
func (p *Product) IsBelowReorderLevel() bool {
	return p.ReorderLevel > 0 && p.CurrentStock < p.ReorderLevel
}

// HasCostBasis returns true if the product has received stock at least once
func (p *Product) HasCostBasis() bool {
	return p.LandedCost != nil
}

// StockValue returns the total value of stock on hand at landed cost
func (p *Product) StockValue() decimal.Decimal {
	if p.LandedCost == nil {
		return decimal.Zero
	}
	return p.LandedCost.Mul(decimal.NewFromInt(p.CurrentStock))
}
