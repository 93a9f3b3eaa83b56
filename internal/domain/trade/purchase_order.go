package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusSent      PurchaseOrderStatus = "SENT"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusProducing PurchaseOrderStatus = "PRODUCING"
	PurchaseOrderStatusShipped   PurchaseOrderStatus = "SHIPPED"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSent, PurchaseOrderStatusConfirmed,
		PurchaseOrderStatusProducing, PurchaseOrderStatusShipped, PurchaseOrderStatusReceived:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// The early states move back and forth one step at a time while the supplier
// negotiation settles; once shipped the path is forward-only.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusSent
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusDraft || target == PurchaseOrderStatusConfirmed
	case PurchaseOrderStatusConfirmed:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusProducing
	case PurchaseOrderStatusProducing:
		return target == PurchaseOrderStatusConfirmed || target == PurchaseOrderStatusShipped
	case PurchaseOrderStatusShipped:
		return target == PurchaseOrderStatusReceived
	case PurchaseOrderStatusReceived:
		return false
	}
	return false
}

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName     string          `gorm:"type:varchar(255);not null"`
	Quantity        int64           `gorm:"not null"`
	ReceivedQty     int64           `gorm:"not null;default:0"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(purchaseOrderID, productID uuid.UUID, productName string, quantity int64, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:              uuid.New(),
		PurchaseOrderID: purchaseOrderID,
		ProductID:       productID,
		ProductName:     productName,
		Quantity:        quantity,
		ReceivedQty:     0,
		UnitCost:        unitCost,
		TotalCost:       unitCost.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Outstanding returns the quantity not yet received for this line
func (i *PurchaseOrderItem) Outstanding() int64 {
	return i.Quantity - i.ReceivedQty
}

// PurchaseOrder represents a supplier purchase order aggregate root
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber         string                    `gorm:"type:varchar(30);not null;uniqueIndex"`
	SupplierName     string                    `gorm:"type:varchar(255);not null"`
	Status           PurchaseOrderStatus       `gorm:"type:varchar(20);not null;index"`
	PaymentStatus    valueobject.PaymentStatus `gorm:"type:varchar(20);not null"`
	Items            []PurchaseOrderItem       `gorm:"foreignKey:PurchaseOrderID;references:ID"`
	Subtotal         decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingEstimate decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	TotalCost        decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount       decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	ExpectedDate     *time.Time
	SentAt           *time.Time
	ConfirmedAt      *time.Time
	ShippedAt        *time.Time
	ReceivedAt       *time.Time
	Notes            string `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in draft status
func NewPurchaseOrder(poNumber, supplierName string) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier name cannot be empty")
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          poNumber,
		SupplierName:      supplierName,
		Status:            PurchaseOrderStatusDraft,
		PaymentStatus:     valueobject.PaymentStatusPending,
		Items:             make([]PurchaseOrderItem, 0),
		Subtotal:          decimal.Zero,
		ShippingEstimate:  decimal.Zero,
		TotalCost:         decimal.Zero,
		PaidAmount:        decimal.Zero,
	}, nil
}

// AddItem adds a line to the purchase order. Only allowed while drafting.
func (po *PurchaseOrder) AddItem(productID uuid.UUID, productName string, quantity int64, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
	if po.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Can only modify items of a draft purchase order")
	}

	for _, item := range po.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in purchase order")
		}
	}

	item, err := NewPurchaseOrderItem(po.ID, productID, productName, quantity, unitCost)
	if err != nil {
		return nil, err
	}

	po.Items = append(po.Items, *item)
	po.recalculateTotals()
	po.UpdatedAt = time.Now()

	return item, nil
}

// RemoveItem removes a line from the purchase order. Only allowed while drafting.
func (po *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if po.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Can only modify items of a draft purchase order")
	}

	for idx, item := range po.Items {
		if item.ID == itemID {
			po.Items = append(po.Items[:idx], po.Items[idx+1:]...)
			po.recalculateTotals()
			po.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Purchase order item not found")
}

// ClearItems removes all lines so they can be replaced. Only allowed while drafting.
func (po *PurchaseOrder) ClearItems() error {
	if po.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Can only modify items of a draft purchase order")
	}
	po.Items = po.Items[:0]
	po.recalculateTotals()
	po.UpdatedAt = time.Now()
	return nil
}

// SetShippingEstimate sets the estimated inbound shipping cost. Only allowed
// while drafting.
func (po *PurchaseOrder) SetShippingEstimate(estimate decimal.Decimal) error {
	if po.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Can only modify a draft purchase order")
	}
	if estimate.IsNegative() {
		return shared.NewDomainError("INVALID_ESTIMATE", "Shipping estimate cannot be negative")
	}
	po.ShippingEstimate = estimate
	po.recalculateTotals()
	po.UpdatedAt = time.Now()
	return nil
}

// SetExpectedDate records when the goods are expected to arrive
func (po *PurchaseOrder) SetExpectedDate(date *time.Time) {
	po.ExpectedDate = date
	po.UpdatedAt = time.Now()
}

// TransitionTo moves the purchase order along the negotiation path. The
// shipped and received states have dedicated methods because they carry side
// effects owned by the logistics flow.
func (po *PurchaseOrder) TransitionTo(target PurchaseOrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid purchase order status")
	}
	if !po.Status.CanTransitionTo(target) {
		return poTransitionError(po.Status, target)
	}
	if target == PurchaseOrderStatusSent && po.Status == PurchaseOrderStatusDraft && len(po.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send purchase order without items")
	}

	now := time.Now()
	switch target {
	case PurchaseOrderStatusSent:
		if po.Status == PurchaseOrderStatusDraft {
			po.SentAt = &now
		}
	case PurchaseOrderStatusConfirmed:
		po.ConfirmedAt = &now
	case PurchaseOrderStatusShipped:
		po.ShippedAt = &now
	case PurchaseOrderStatusReceived:
		po.ReceivedAt = &now
	}
	po.Status = target
	po.UpdatedAt = now
	return nil
}

// MarkShipped is the forced transition triggered by shipment creation. It is
// allowed from confirmed as well as producing, unlike the public status API.
func (po *PurchaseOrder) MarkShipped() error {
	if po.Status != PurchaseOrderStatusConfirmed && po.Status != PurchaseOrderStatusProducing {
		return poTransitionError(po.Status, PurchaseOrderStatusShipped)
	}
	now := time.Now()
	po.Status = PurchaseOrderStatusShipped
	po.ShippedAt = &now
	po.UpdatedAt = now
	return nil
}

// MarkReceived is the forced transition triggered by shipment delivery
func (po *PurchaseOrder) MarkReceived() error {
	if po.Status != PurchaseOrderStatusShipped {
		return poTransitionError(po.Status, PurchaseOrderStatusReceived)
	}
	now := time.Now()
	po.Status = PurchaseOrderStatusReceived
	po.ReceivedAt = &now
	po.UpdatedAt = now
	return nil
}

// OutstandingItems returns the lines that still have quantity to receive
func (po *PurchaseOrder) OutstandingItems() []PurchaseOrderItem {
	outstanding := make([]PurchaseOrderItem, 0, len(po.Items))
	for _, item := range po.Items {
		if item.Outstanding() > 0 {
			outstanding = append(outstanding, item)
		}
	}
	return outstanding
}

// ReceiveItem records received quantity against a line. The received total
// can never exceed the ordered quantity, which is what makes a replayed
// delivery a no-op.
func (po *PurchaseOrder) ReceiveItem(itemID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	for idx := range po.Items {
		if po.Items[idx].ID == itemID {
			item := &po.Items[idx]
			if item.ReceivedQty+quantity > item.Quantity {
				return shared.NewDomainError("RECEIVE_EXCEEDS_ORDERED",
					"Received quantity cannot exceed ordered quantity")
			}
			item.ReceivedQty += quantity
			item.UpdatedAt = time.Now()
			po.UpdatedAt = item.UpdatedAt
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Purchase order item not found")
}

// IsFullyReceived returns true once every line is received in full
func (po *PurchaseOrder) IsFullyReceived() bool {
	for _, item := range po.Items {
		if item.Outstanding() > 0 {
			return false
		}
	}
	return true
}

// CanAttachShipment returns true while a shipment may be created for this order
func (po *PurchaseOrder) CanAttachShipment() bool {
	return po.Status == PurchaseOrderStatusConfirmed || po.Status == PurchaseOrderStatusProducing
}

// RecordPayment adds a supplier payment to the purchase order
func (po *PurchaseOrder) RecordPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}
	newPaid := po.PaidAmount.Add(amount)
	if newPaid.GreaterThan(po.TotalCost) {
		return shared.NewDomainError("PAYMENT_EXCEEDS_TOTAL", "Paid amount cannot exceed purchase order total")
	}

	po.PaidAmount = newPaid
	po.PaymentStatus = valueobject.DerivePaymentStatus(newPaid, po.TotalCost)
	po.UpdatedAt = time.Now()
	return nil
}

// CanDelete returns true if the purchase order may be deleted
func (po *PurchaseOrder) CanDelete() bool {
	return po.Status == PurchaseOrderStatusDraft
}

// recalculateTotals recalculates the purchase order totals from the items
func (po *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range po.Items {
		subtotal = subtotal.Add(item.TotalCost)
	}
	po.Subtotal = subtotal
	po.TotalCost = po.Subtotal.Add(po.ShippingEstimate)
	po.PaymentStatus = valueobject.DerivePaymentStatus(po.PaidAmount, po.TotalCost)
}

func poTransitionError(from, to PurchaseOrderStatus) error {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition purchase order from %s to %s", from, to))
}
