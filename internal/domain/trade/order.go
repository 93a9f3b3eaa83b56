package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPacked    OrderStatus = "PACKED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPacked,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states with no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// The forward path is strictly linear; cancellation is reachable from every
// non-terminal state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPacked || target == OrderStatusCancelled
	case OrderStatusPacked:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusCancelled
	case OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return false
}

// OrderItem represents a line item in a customer order
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrderItem creates a new order item
func NewOrderItem(orderID, productID uuid.UUID, productName string, quantity int64, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  unitPrice.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Order represents a customer order aggregate root. Stock side effects of its
// transitions (debit on confirm, credit on cancel) are posted through the
// stock ledger by the application layer in the same transaction.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string                    `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerName  string                    `gorm:"type:varchar(255);not null"`
	Status        OrderStatus               `gorm:"type:varchar(20);not null;index"`
	PaymentStatus valueobject.PaymentStatus `gorm:"type:varchar(20);not null"`
	Items         []OrderItem               `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal      decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingFee   decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Discount      decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Total         decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount    decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	ConfirmedAt   *time.Time
	PackedAt      *time.Time
	ShippedAt     *time.Time
	DeliveredAt   *time.Time
	CancelledAt   *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new customer order in pending status
func NewOrder(orderNumber, customerName string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerName:      customerName,
		Status:            OrderStatusPending,
		PaymentStatus:     valueobject.PaymentStatusPending,
		Items:             make([]OrderItem, 0),
		Subtotal:          decimal.Zero,
		ShippingFee:       decimal.Zero,
		Discount:          decimal.Zero,
		Total:             decimal.Zero,
		PaidAmount:        decimal.Zero,
	}, nil
}

// AddItem adds a new item to the order. Only allowed while pending.
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity int64, unitPrice decimal.Decimal) (*OrderItem, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot modify items of confirmed order")
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order")
		}
	}

	item, err := NewOrderItem(o.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return item, nil
}

// RemoveItem removes an item from the order. Only allowed while pending.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify items of confirmed order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// ClearItems removes all items so they can be replaced. Only allowed while pending.
func (o *Order) ClearItems() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify items of confirmed order")
	}
	o.Items = o.Items[:0]
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	return nil
}

// SetShippingFee sets the shipping fee. Only allowed while pending.
func (o *Order) SetShippingFee(fee decimal.Decimal) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot change fees of confirmed order")
	}
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Shipping fee cannot be negative")
	}
	o.ShippingFee = fee
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	return nil
}

// SetDiscount sets the order-level discount. Only allowed while pending.
func (o *Order) SetDiscount(discount decimal.Decimal) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot change discount of confirmed order")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.GreaterThan(o.Subtotal.Add(o.ShippingFee)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed order value")
	}
	o.Discount = discount
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm transitions the order from pending to confirmed. The caller posts
// one outbound sale movement per item in the same transaction.
func (o *Order) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return transitionError(o.Status, OrderStatusConfirmed)
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm order without items")
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	return nil
}

// Pack marks the order as packed
func (o *Order) Pack() error {
	if !o.Status.CanTransitionTo(OrderStatusPacked) {
		return transitionError(o.Status, OrderStatusPacked)
	}
	now := time.Now()
	o.Status = OrderStatusPacked
	o.PackedAt = &now
	o.UpdatedAt = now
	return nil
}

// Ship marks the order as shipped
func (o *Order) Ship() error {
	if !o.Status.CanTransitionTo(OrderStatusShipped) {
		return transitionError(o.Status, OrderStatusShipped)
	}
	now := time.Now()
	o.Status = OrderStatusShipped
	o.ShippedAt = &now
	o.UpdatedAt = now
	return nil
}

// Deliver marks the order as delivered (terminal)
func (o *Order) Deliver() error {
	if !o.Status.CanTransitionTo(OrderStatusDelivered) {
		return transitionError(o.Status, OrderStatusDelivered)
	}
	now := time.Now()
	o.Status = OrderStatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now
	return nil
}

// Cancel cancels the order. The returned restock flag tells the caller
// whether stock was already deducted (any status past pending) and must be
// credited back through the ledger.
func (o *Order) Cancel() (restock bool, err error) {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return false, transitionError(o.Status, OrderStatusCancelled)
	}

	restock = o.Status != OrderStatusPending
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	return restock, nil
}

// RecordPayment adds a payment to the order. Payments only accumulate and
// can never exceed the order total.
func (o *Order) RecordPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}
	newPaid := o.PaidAmount.Add(amount)
	if newPaid.GreaterThan(o.Total) {
		return shared.NewDomainError("PAYMENT_EXCEEDS_TOTAL", "Paid amount cannot exceed order total")
	}

	o.PaidAmount = newPaid
	o.PaymentStatus = valueobject.DerivePaymentStatus(newPaid, o.Total)
	o.UpdatedAt = time.Now()
	return nil
}

// CanModifyItems returns true while item replacement is allowed
func (o *Order) CanModifyItems() bool {
	return o.Status == OrderStatusPending
}

// CanDelete returns true if the order may be deleted. Confirmed and later
// in-flight orders must be cancelled first; delivered orders are permanent.
func (o *Order) CanDelete() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusCancelled
}

// recalculateTotals recalculates the order totals from the items
func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	o.Subtotal = subtotal
	o.Total = o.Subtotal.Add(o.ShippingFee).Sub(o.Discount)
	if o.Total.IsNegative() {
		o.Discount = o.Subtotal.Add(o.ShippingFee)
		o.Total = decimal.Zero
	}
	o.PaymentStatus = valueobject.DerivePaymentStatus(o.PaidAmount, o.Total)
}

func transitionError(from, to OrderStatus) error {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition order from %s to %s", from, to))
}
