package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// PostMovementRequest is the input for posting a single stock movement
type PostMovementRequest struct {
	ProductID uuid.UUID
	Quantity  int64 // Signed: positive credits stock, negative debits it
	Reason    ledger.MovementReason
	Reference ledger.MovementRef
	Notes     string
}

// ReceiveLine is one product line of a bulk receive
type ReceiveLine struct {
	ProductID      uuid.UUID
	Quantity       int64
	UnitCost       decimal.Decimal
	LandedUnitCost decimal.Decimal
}

// BulkReceiveRequest is the input for receiving a shipment into stock
type BulkReceiveRequest struct {
	ShipmentID uuid.UUID
	Lines      []ReceiveLine
}

// BulkReceiveResult reports the outcome of a bulk receive
type BulkReceiveResult struct {
	Movements []MovementDTO
	Replayed  bool // True when the shipment was already received and nothing was posted
}

// AdjustStockRequest is the input for a manual stock adjustment
type AdjustStockRequest struct {
	ProductID uuid.UUID
	Quantity  int64 // Signed
	Reason    ledger.MovementReason
	Notes     string
}

// ListMovementsRequest filters the movement history
type ListMovementsRequest struct {
	ProductID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// MovementDTO is the transport representation of a stock movement
type MovementDTO struct {
	ID            uuid.UUID        `json:"id"`
	ProductID     uuid.UUID        `json:"product_id"`
	Type          string           `json:"type"`
	Reason        string           `json:"reason"`
	Quantity      int64            `json:"quantity"`
	StockBefore   int64            `json:"stock_before"`
	StockAfter    int64            `json:"stock_after"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	LandedCost    *decimal.Decimal `json:"landed_cost,omitempty"`
	ReferenceType string           `json:"reference_type"`
	ReferenceID   *uuid.UUID       `json:"reference_id,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ToMovementDTO converts a domain movement to its DTO
func ToMovementDTO(m *ledger.StockMovement) MovementDTO {
	return MovementDTO{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          m.Type.String(),
		Reason:        m.Reason.String(),
		Quantity:      m.Quantity,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		UnitCost:      m.UnitCost,
		LandedCost:    m.LandedCost,
		ReferenceType: string(m.Reference.Type),
		ReferenceID:   m.Reference.ID,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
	}
}

// StockSnapshot is a cacheable view of a product's current stock position
type StockSnapshot struct {
	ProductID    uuid.UUID        `json:"product_id"`
	SKU          string           `json:"sku"`
	CurrentStock int64            `json:"current_stock"`
	ReorderLevel int64            `json:"reorder_level"`
	LandedCost   *decimal.Decimal `json:"landed_cost,omitempty"`
	StockValue   decimal.Decimal  `json:"stock_value"`
	BelowReorder bool             `json:"below_reorder"`
	AsOf         time.Time        `json:"as_of"`
}
