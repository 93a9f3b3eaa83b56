package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType represents the direction classification of a stock movement
type MovementType string

const (
	// MovementTypeIn represents stock entering inventory
	MovementTypeIn MovementType = "IN"
	// MovementTypeOut represents stock leaving inventory
	MovementTypeOut MovementType = "OUT"
	// MovementTypeAdjustment represents a manual correction, either sign
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// MovementReason classifies why a movement happened
type MovementReason string

const (
	ReasonShipmentReceived MovementReason = "SHIPMENT_RECEIVED"
	ReasonSale             MovementReason = "SALE"
	ReasonDamage           MovementReason = "DAMAGE"
	ReasonLoss             MovementReason = "LOSS"
	ReasonFound            MovementReason = "FOUND"
	ReasonCorrection       MovementReason = "CORRECTION"
	ReasonReturn           MovementReason = "RETURN"
	ReasonOther            MovementReason = "OTHER"
)

// String returns the string representation of MovementReason
func (r MovementReason) String() string {
	return string(r)
}

// IsValid returns true if the reason is valid
func (r MovementReason) IsValid() bool {
	switch r {
	case ReasonShipmentReceived, ReasonSale, ReasonDamage, ReasonLoss,
		ReasonFound, ReasonCorrection, ReasonReturn, ReasonOther:
		return true
	}
	return false
}

// IsManualReason returns true if the reason is selectable for manual adjustments
func (r MovementReason) IsManualReason() bool {
	switch r {
	case ReasonDamage, ReasonLoss, ReasonFound, ReasonCorrection, ReasonOther:
		return true
	}
	return false
}

// ReferenceType identifies the kind of document a movement originated from
type ReferenceType string

const (
	ReferenceTypeOrder    ReferenceType = "ORDER"
	ReferenceTypeShipment ReferenceType = "SHIPMENT"
	ReferenceTypeManual   ReferenceType = "MANUAL"
)

// IsValid returns true if the reference type is valid
func (t ReferenceType) IsValid() bool {
	switch t {
	case ReferenceTypeOrder, ReferenceTypeShipment, ReferenceTypeManual:
		return true
	}
	return false
}

// MovementRef is a weak back-reference to the document that caused a
// movement. It supports lookup but implies no ownership: deleting the source
// document never cascades into the ledger.
type MovementRef struct {
	Type ReferenceType `gorm:"column:reference_type;type:varchar(20);not null;index:idx_stock_movement_ref"`
	ID   *uuid.UUID    `gorm:"column:reference_id;type:uuid;index:idx_stock_movement_ref"`
}

// OrderRef creates a reference to a customer order
func OrderRef(orderID uuid.UUID) MovementRef {
	return MovementRef{Type: ReferenceTypeOrder, ID: &orderID}
}

// ShipmentRef creates a reference to an inbound shipment
func ShipmentRef(shipmentID uuid.UUID) MovementRef {
	return MovementRef{Type: ReferenceTypeShipment, ID: &shipmentID}
}

// ManualRef creates a reference for a manual adjustment
func ManualRef() MovementRef {
	return MovementRef{Type: ReferenceTypeManual}
}

// IsValid returns true if the reference is structurally valid
func (r MovementRef) IsValid() bool {
	if !r.Type.IsValid() {
		return false
	}
	if r.Type == ReferenceTypeManual {
		return r.ID == nil
	}
	return r.ID != nil && *r.ID != uuid.Nil
}

// StockMovement is an immutable, append-only record of a single stock change
// with before/after balance snapshots. The ledger never edits a movement;
// administrative deletion reverse-applies the quantity and is the only
// permitted mutation.
type StockMovement struct {
	shared.BaseEntity
	ProductID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_stock_movement_product"`
	Type        MovementType     `gorm:"type:varchar(20);not null;index"`
	Reason      MovementReason   `gorm:"type:varchar(30);not null"`
	Quantity    int64            `gorm:"not null"` // Signed: positive in, negative out
	StockBefore int64            `gorm:"not null"`
	StockAfter  int64            `gorm:"not null"`
	UnitCost    *decimal.Decimal `gorm:"type:decimal(18,2)"` // Purchase unit cost, receiving only
	LandedCost  *decimal.Decimal `gorm:"type:decimal(18,2)"` // Allocated landed cost, receiving only
	Reference   MovementRef      `gorm:"embedded"`
	Notes       string           `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement record. The quantity is signed and must
// be consistent with the type; the after balance must equal before+quantity
// and must not be negative.
func NewStockMovement(
	productID uuid.UUID,
	movementType MovementType,
	reason MovementReason,
	quantity int64,
	stockBefore int64,
	reference MovementRef,
) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Invalid movement reason")
	}
	if quantity == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity cannot be zero")
	}
	if movementType == MovementTypeIn && quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Inbound movement quantity must be positive")
	}
	if movementType == MovementTypeOut && quantity > 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Outbound movement quantity must be negative")
	}
	if !reference.IsValid() {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Movement reference is invalid")
	}

	stockAfter := stockBefore + quantity
	if stockAfter < 0 {
		return nil, shared.ErrInsufficientStock
	}

	return &StockMovement{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		Type:        movementType,
		Reason:      reason,
		Quantity:    quantity,
		StockBefore: stockBefore,
		StockAfter:  stockAfter,
		Reference:   reference,
	}, nil
}

// WithCosts records the receiving costs on the movement
func (m *StockMovement) WithCosts(unitCost, landedCost decimal.Decimal) *StockMovement {
	m.UnitCost = &unitCost
	m.LandedCost = &landedCost
	return m
}

// WithNotes records a free-text justification on the movement
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// TypeForQuantity derives the movement type from the sign of a manual
// adjustment quantity.
func TypeForQuantity(quantity int64) MovementType {
	if quantity >= 0 {
		return MovementTypeIn
	}
	return MovementTypeOut
}

// IsReceiving returns true if this movement carries cost information
func (m *StockMovement) IsReceiving() bool {
	return m.Type == MovementTypeIn && m.Reason == ReasonShipmentReceived
}

// AppliedAt returns when the movement was posted
func (m *StockMovement) AppliedAt() time.Time {
	return m.CreatedAt
}
