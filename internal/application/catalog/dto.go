package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest is the input for creating a product
type CreateProductRequest struct {
	SKU          string
	Name         string
	SellingPrice decimal.Decimal
	WeightKg     *decimal.Decimal
	ReorderLevel int64
	Location     string
}

// UpdateProductRequest is the input for updating product master data.
// Stock and landed cost are owned by the ledger and cannot be set here.
type UpdateProductRequest struct {
	Name         *string
	SellingPrice *decimal.Decimal
	WeightKg     *decimal.Decimal
	ReorderLevel *int64
	Location     *string
}

// ProductDTO is the transport representation of a product
type ProductDTO struct {
	ID           uuid.UUID        `json:"id"`
	SKU          string           `json:"sku"`
	Name         string           `json:"name"`
	SellingPrice decimal.Decimal  `json:"selling_price"`
	WeightKg     *decimal.Decimal `json:"weight_kg,omitempty"`
	CurrentStock int64            `json:"current_stock"`
	ReorderLevel int64            `json:"reorder_level"`
	LandedCost   *decimal.Decimal `json:"landed_cost,omitempty"`
	StockValue   decimal.Decimal  `json:"stock_value"`
	BelowReorder bool             `json:"below_reorder"`
	Location     string           `json:"location,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ToProductDTO converts a domain product to its DTO
func ToProductDTO(p *catalog.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		SellingPrice: p.SellingPrice,
		WeightKg:     p.WeightKg,
		CurrentStock: p.CurrentStock,
		ReorderLevel: p.ReorderLevel,
		LandedCost:   p.LandedCost,
		StockValue:   p.StockValue(),
		BelowReorder: p.IsBelowReorderLevel(),
		Location:     p.Location,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
