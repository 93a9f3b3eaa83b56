package logistics

import (
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/logistics"
	"github.com/shopspring/decimal"
)

// CreateShipmentRequest is the input for creating a shipment
type CreateShipmentRequest struct {
	PurchaseOrderID  uuid.UUID
	Method           logistics.ShipmentMethod
	Carrier          string
	TrackingNumber   string
	ShippingCost     decimal.Decimal
	CustomsDuty      decimal.Decimal
	OtherFees        decimal.Decimal
	TotalWeight      *decimal.Decimal
	TotalVolume      *decimal.Decimal
	EstimatedArrival *time.Time
	Notes            string
}

// UpdateChargesRequest is the input for revising shipment charges
type UpdateChargesRequest struct {
	ShippingCost decimal.Decimal
	CustomsDuty  decimal.Decimal
	OtherFees    decimal.Decimal
}

// ShipmentDTO is the transport representation of a shipment
type ShipmentDTO struct {
	ID               uuid.UUID        `json:"id"`
	ShipmentNumber   string           `json:"shipment_number"`
	PurchaseOrderID  uuid.UUID        `json:"purchase_order_id"`
	Status           string           `json:"status"`
	Method           string           `json:"method"`
	Carrier          string           `json:"carrier,omitempty"`
	TrackingNumber   string           `json:"tracking_number,omitempty"`
	ShippingCost     decimal.Decimal  `json:"shipping_cost"`
	CustomsDuty      decimal.Decimal  `json:"customs_duty"`
	OtherFees        decimal.Decimal  `json:"other_fees"`
	TotalCharges     decimal.Decimal  `json:"total_charges"`
	PaymentStatus    string           `json:"payment_status"`
	PaidAmount       decimal.Decimal  `json:"paid_amount"`
	TotalWeight      *decimal.Decimal `json:"total_weight,omitempty"`
	TotalVolume      *decimal.Decimal `json:"total_volume,omitempty"`
	AllocationMethod string           `json:"allocation_method,omitempty"`
	EstimatedArrival *time.Time       `json:"estimated_arrival,omitempty"`
	ActualArrival    *time.Time       `json:"actual_arrival,omitempty"`
	DepartedAt       *time.Time       `json:"departed_at,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ToShipmentDTO converts a domain shipment to its DTO
func ToShipmentDTO(s *logistics.Shipment) ShipmentDTO {
	return ShipmentDTO{
		ID:               s.ID,
		ShipmentNumber:   s.ShipmentNumber,
		PurchaseOrderID:  s.PurchaseOrderID,
		Status:           s.Status.String(),
		Method:           s.Method.String(),
		Carrier:          s.Carrier,
		TrackingNumber:   s.TrackingNumber,
		ShippingCost:     s.ShippingCost,
		CustomsDuty:      s.CustomsDuty,
		OtherFees:        s.OtherFees,
		TotalCharges:     s.TotalCharges(),
		PaymentStatus:    s.PaymentStatus.String(),
		PaidAmount:       s.PaidAmount,
		TotalWeight:      s.TotalWeight,
		TotalVolume:      s.TotalVolume,
		AllocationMethod: s.AllocationMethod,
		EstimatedArrival: s.EstimatedArrival,
		ActualArrival:    s.ActualArrival,
		DepartedAt:       s.DepartedAt,
		Notes:            s.Notes,
		CreatedAt:        s.CreatedAt,
	}
}
