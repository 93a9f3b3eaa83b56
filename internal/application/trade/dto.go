package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderItemInput is one requested line when creating or replacing order items
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int64
}

// CreateOrderRequest is the input for creating a customer order
type CreateOrderRequest struct {
	CustomerName string
	Items        []OrderItemInput
	ShippingFee  decimal.Decimal
	Discount     decimal.Decimal
}

// POItemInput is one requested line when creating a purchase order
type POItemInput struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitCost  decimal.Decimal
}

// CreatePurchaseOrderRequest is the input for creating a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierName     string
	Items            []POItemInput
	ShippingEstimate decimal.Decimal
	ExpectedDate     *time.Time
	Notes            string
}

// OrderItemDTO is the transport representation of an order line
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderDTO is the transport representation of a customer order
type OrderDTO struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Items         []OrderItemDTO  `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	ShippedAt     *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToOrderDTO converts a domain order to its DTO
func ToOrderDTO(o *trade.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return OrderDTO{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		Status:        o.Status.String(),
		PaymentStatus: string(o.PaymentStatus),
		Items:         items,
		Subtotal:      o.Subtotal,
		ShippingFee:   o.ShippingFee,
		Discount:      o.Discount,
		Total:         o.Total,
		PaidAmount:    o.PaidAmount,
		ConfirmedAt:   o.ConfirmedAt,
		ShippedAt:     o.ShippedAt,
		DeliveredAt:   o.DeliveredAt,
		CancelledAt:   o.CancelledAt,
		CreatedAt:     o.CreatedAt,
	}
}

// POItemDTO is the transport representation of a purchase order line
type POItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	ReceivedQty int64           `json:"received_qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// PurchaseOrderDTO is the transport representation of a purchase order
type PurchaseOrderDTO struct {
	ID               uuid.UUID       `json:"id"`
	PONumber         string          `json:"po_number"`
	SupplierName     string          `json:"supplier_name"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	Items            []POItemDTO     `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingEstimate decimal.Decimal `json:"shipping_estimate"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	ExpectedDate     *time.Time      `json:"expected_date,omitempty"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	ShippedAt        *time.Time      `json:"shipped_at,omitempty"`
	ReceivedAt       *time.Time      `json:"received_at,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ToPurchaseOrderDTO converts a domain purchase order to its DTO
func ToPurchaseOrderDTO(po *trade.PurchaseOrder) PurchaseOrderDTO {
	items := make([]POItemDTO, 0, len(po.Items))
	for _, item := range po.Items {
		items = append(items, POItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			ReceivedQty: item.ReceivedQty,
			UnitCost:    item.UnitCost,
			TotalCost:   item.TotalCost,
		})
	}
	return PurchaseOrderDTO{
		ID:               po.ID,
		PONumber:         po.PONumber,
		SupplierName:     po.SupplierName,
		Status:           po.Status.String(),
		PaymentStatus:    string(po.PaymentStatus),
		Items:            items,
		Subtotal:         po.Subtotal,
		ShippingEstimate: po.ShippingEstimate,
		TotalCost:        po.TotalCost,
		PaidAmount:       po.PaidAmount,
		ExpectedDate:     po.ExpectedDate,
		ConfirmedAt:      po.ConfirmedAt,
		ShippedAt:        po.ShippedAt,
		ReceivedAt:       po.ReceivedAt,
		Notes:            po.Notes,
		CreatedAt:        po.CreatedAt,
	}
}

// StatusSummaryDTO reports order counts per status
type StatusSummaryDTO struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}
