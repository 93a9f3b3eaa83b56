package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logisticsapp "github.com/merchstock/backend/internal/application/logistics"
	"github.com/merchstock/backend/internal/domain/logistics"
)

// ShipmentHandler handles inbound shipment endpoints
type ShipmentHandler struct {
	BaseHandler
	shipments *logisticsapp.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipments *logisticsapp.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipments: shipments}
}

// CreateShipmentRequest is the request body for creating a shipment
type CreateShipmentRequest struct {
	PurchaseOrderID  string   `json:"purchase_order_id" binding:"required,uuid"`
	Method           string   `json:"method" binding:"required,oneof=SEA AIR COURIER"`
	Carrier          string   `json:"carrier" binding:"max=255"`
	TrackingNumber   string   `json:"tracking_number" binding:"max=255"`
	ShippingCost     float64  `json:"shipping_cost" binding:"gte=0"`
	CustomsDuty      float64  `json:"customs_duty" binding:"gte=0"`
	OtherFees        float64  `json:"other_fees" binding:"gte=0"`
	TotalWeight      *float64 `json:"total_weight" binding:"omitempty,gte=0"`
	TotalVolume      *float64 `json:"total_volume" binding:"omitempty,gte=0"`
	EstimatedArrival string   `json:"estimated_arrival" binding:"omitempty"`
	Notes            string   `json:"notes" binding:"max=500"`
}

// UpdateChargesRequest is the request body for revising shipment charges
type UpdateChargesRequest struct {
	ShippingCost float64 `json:"shipping_cost" binding:"gte=0"`
	CustomsDuty  float64 `json:"customs_duty" binding:"gte=0"`
	OtherFees    float64 `json:"other_fees" binding:"gte=0"`
}

// UpdateShipmentStatusRequest is the request body for a status change
type UpdateShipmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Create handles POST /logistics/shipments
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	poID, err := uuid.Parse(req.PurchaseOrderID)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	appReq := logisticsapp.CreateShipmentRequest{
		PurchaseOrderID: poID,
		Method:          logistics.ShipmentMethod(req.Method),
		Carrier:         req.Carrier,
		TrackingNumber:  req.TrackingNumber,
		ShippingCost:    toDecimal(req.ShippingCost),
		CustomsDuty:     toDecimal(req.CustomsDuty),
		OtherFees:       toDecimal(req.OtherFees),
		TotalWeight:     toDecimalPtr(req.TotalWeight),
		TotalVolume:     toDecimalPtr(req.TotalVolume),
		Notes:           req.Notes,
	}
	if req.EstimatedArrival != "" {
		eta, err := parseDateTime(req.EstimatedArrival)
		if err != nil {
			h.BadRequest(c, "Invalid estimated arrival format")
			return
		}
		appReq.EstimatedArrival = &eta
	}

	shipment, err := h.shipments.CreateShipment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, shipment)
}

// List handles GET /logistics/shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	var status *logistics.ShipmentStatus
	if raw := c.Query("status"); raw != "" {
		s := logistics.ShipmentStatus(raw)
		if !s.IsValid() {
			h.BadRequest(c, "Invalid shipment status")
			return
		}
		status = &s
	}

	shipments, err := h.shipments.ListShipments(c.Request.Context(), status, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipments)
}

// GetByID handles GET /logistics/shipments/:id
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	shipmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	shipment, err := h.shipments.GetShipment(c.Request.Context(), shipmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// UpdateCharges handles PUT /logistics/shipments/:id/charges
func (h *ShipmentHandler) UpdateCharges(c *gin.Context) {
	shipmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	var req UpdateChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	shipment, err := h.shipments.UpdateCharges(c.Request.Context(), shipmentID, logisticsapp.UpdateChargesRequest{
		ShippingCost: toDecimal(req.ShippingCost),
		CustomsDuty:  toDecimal(req.CustomsDuty),
		OtherFees:    toDecimal(req.OtherFees),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// UpdateStatus handles PUT /logistics/shipments/:id/status. Advancing to
// delivered triggers the receiving flow.
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	shipmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	var req UpdateShipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	shipment, err := h.shipments.UpdateStatus(c.Request.Context(), shipmentID, logistics.ShipmentStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// RecordPayment handles POST /logistics/shipments/:id/payments
func (h *ShipmentHandler) RecordPayment(c *gin.Context) {
	shipmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	shipment, err := h.shipments.RecordPayment(c.Request.Context(), shipmentID, toDecimal(req.Amount))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}
