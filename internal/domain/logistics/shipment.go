package logistics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ShipmentStatus represents the status of an inbound shipment
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "PENDING"
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusCustoms   ShipmentStatus = "CUSTOMS"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
)

// IsValid checks if the status is a valid ShipmentStatus
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusPending, ShipmentStatusInTransit, ShipmentStatusCustoms, ShipmentStatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// The shipment path is strictly linear with no skips and no way back.
func (s ShipmentStatus) CanTransitionTo(target ShipmentStatus) bool {
	switch s {
	case ShipmentStatusPending:
		return target == ShipmentStatusInTransit
	case ShipmentStatusInTransit:
		return target == ShipmentStatusCustoms
	case ShipmentStatusCustoms:
		return target == ShipmentStatusDelivered
	case ShipmentStatusDelivered:
		return false
	}
	return false
}

// ShipmentMethod represents how the goods travel
type ShipmentMethod string

const (
	ShipmentMethodSea     ShipmentMethod = "SEA"
	ShipmentMethodAir     ShipmentMethod = "AIR"
	ShipmentMethodCourier ShipmentMethod = "COURIER"
)

// IsValid checks if the method is a valid ShipmentMethod
func (m ShipmentMethod) IsValid() bool {
	switch m {
	case ShipmentMethodSea, ShipmentMethodAir, ShipmentMethodCourier:
		return true
	}
	return false
}

// String returns the string representation of ShipmentMethod
func (m ShipmentMethod) String() string {
	return string(m)
}

// Shipment represents an inbound freight shipment for exactly one purchase
// order. Its charges are the input to landed-cost allocation when the
// shipment is delivered.
type Shipment struct {
	shared.BaseAggregateRoot
	ShipmentNumber   string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Status           ShipmentStatus  `gorm:"type:varchar(20);not null;index"`
	Method           ShipmentMethod  `gorm:"type:varchar(20);not null"`
	Carrier          string          `gorm:"type:varchar(255)"`
	TrackingNumber   string          `gorm:"type:varchar(100)"`
	ShippingCost     decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	CustomsDuty      decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	OtherFees        decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentStatus    valueobject.PaymentStatus `gorm:"type:varchar(20);not null"`
	PaidAmount       decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	TotalWeight      *decimal.Decimal          `gorm:"type:decimal(12,3)"` // Gross weight in kg, optional
	TotalVolume      *decimal.Decimal          `gorm:"type:decimal(12,3)"` // Volume in cbm, optional
	AllocationMethod string                    `gorm:"type:varchar(20)"`   // Set when delivered
	EstimatedArrival *time.Time
	ActualArrival    *time.Time
	DepartedAt       *time.Time
	Notes            string `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (Shipment) TableName() string {
	return "shipments"
}

// NewShipment creates a new shipment in pending status
func NewShipment(shipmentNumber string, purchaseOrderID uuid.UUID, method ShipmentMethod) (*Shipment, error) {
	if shipmentNumber == "" {
		return nil, shared.NewDomainError("INVALID_SHIPMENT_NUMBER", "Shipment number cannot be empty")
	}
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PURCHASE_ORDER", "Purchase order ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Invalid shipment method")
	}

	return &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShipmentNumber:    shipmentNumber,
		PurchaseOrderID:   purchaseOrderID,
		Status:            ShipmentStatusPending,
		Method:            method,
		ShippingCost:      decimal.Zero,
		CustomsDuty:       decimal.Zero,
		OtherFees:         decimal.Zero,
		PaymentStatus:     valueobject.PaymentStatusPending,
		PaidAmount:        decimal.Zero,
	}, nil
}

// SetCharges sets the freight charges. Charges are editable until the
// shipment is delivered and the costs have been allocated into inventory.
func (s *Shipment) SetCharges(shippingCost, customsDuty, otherFees decimal.Decimal) error {
	if s.Status == ShipmentStatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Cannot change charges of a delivered shipment")
	}
	if shippingCost.IsNegative() || customsDuty.IsNegative() || otherFees.IsNegative() {
		return shared.NewDomainError("INVALID_CHARGES", "Shipment charges cannot be negative")
	}
	s.ShippingCost = shippingCost
	s.CustomsDuty = customsDuty
	s.OtherFees = otherFees
	s.PaymentStatus = valueobject.DerivePaymentStatus(s.PaidAmount, s.TotalCharges())
	s.UpdatedAt = time.Now()
	return nil
}

// SetMeasurements records the optional gross weight and volume
func (s *Shipment) SetMeasurements(totalWeight, totalVolume *decimal.Decimal) error {
	if totalWeight != nil && totalWeight.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Total weight cannot be negative")
	}
	if totalVolume != nil && totalVolume.IsNegative() {
		return shared.NewDomainError("INVALID_VOLUME", "Total volume cannot be negative")
	}
	s.TotalWeight = totalWeight
	s.TotalVolume = totalVolume
	s.UpdatedAt = time.Now()
	return nil
}

// RecordPayment adds a payment against the freight charges. Payments only
// accumulate and can never exceed the total charges.
func (s *Shipment) RecordPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}
	newPaid := s.PaidAmount.Add(amount)
	if newPaid.GreaterThan(s.TotalCharges()) {
		return shared.NewDomainError("PAYMENT_EXCEEDS_TOTAL", "Paid amount cannot exceed total charges")
	}

	s.PaidAmount = newPaid
	s.PaymentStatus = valueobject.DerivePaymentStatus(newPaid, s.TotalCharges())
	s.UpdatedAt = time.Now()
	return nil
}

// TotalCharges returns the sum of all freight charges on the shipment
func (s *Shipment) TotalCharges() decimal.Decimal {
	return s.ShippingCost.Add(s.CustomsDuty).Add(s.OtherFees)
}

// SetTracking records carrier and tracking details
func (s *Shipment) SetTracking(carrier, trackingNumber string) {
	s.Carrier = carrier
	s.TrackingNumber = trackingNumber
	s.UpdatedAt = time.Now()
}

// SetEstimatedArrival records the expected arrival date
func (s *Shipment) SetEstimatedArrival(eta *time.Time) {
	s.EstimatedArrival = eta
	s.UpdatedAt = time.Now()
}

// Depart transitions the shipment from pending to in transit
func (s *Shipment) Depart() error {
	if !s.Status.CanTransitionTo(ShipmentStatusInTransit) {
		return shipmentTransitionError(s.Status, ShipmentStatusInTransit)
	}
	now := time.Now()
	s.Status = ShipmentStatusInTransit
	s.DepartedAt = &now
	s.UpdatedAt = now
	return nil
}

// EnterCustoms transitions the shipment from in transit to customs clearance
func (s *Shipment) EnterCustoms() error {
	if !s.Status.CanTransitionTo(ShipmentStatusCustoms) {
		return shipmentTransitionError(s.Status, ShipmentStatusCustoms)
	}
	s.Status = ShipmentStatusCustoms
	s.UpdatedAt = time.Now()
	return nil
}

// MarkDelivered completes the shipment, recording the arrival time and the
// allocation method used to spread the charges.
func (s *Shipment) MarkDelivered(allocationMethod string) error {
	if !s.Status.CanTransitionTo(ShipmentStatusDelivered) {
		return shipmentTransitionError(s.Status, ShipmentStatusDelivered)
	}
	now := time.Now()
	s.Status = ShipmentStatusDelivered
	s.AllocationMethod = allocationMethod
	s.ActualArrival = &now
	s.UpdatedAt = now
	return nil
}

// IsDelivered returns true once the shipment has reached its terminal state
func (s *Shipment) IsDelivered() bool {
	return s.Status == ShipmentStatusDelivered
}

func shipmentTransitionError(from, to ShipmentStatus) error {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition shipment from %s to %s", from, to))
}
