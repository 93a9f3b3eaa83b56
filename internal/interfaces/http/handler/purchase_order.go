package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/merchstock/backend/internal/application/trade"
	"github.com/merchstock/backend/internal/domain/trade"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	purchaseOrders *tradeapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(purchaseOrders *tradeapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{purchaseOrders: purchaseOrders}
}

// POItemRequest is one requested line in a purchase order body
type POItemRequest struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Quantity  int64   `json:"quantity" binding:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" binding:"gte=0"`
}

// CreatePurchaseOrderRequest is the request body for creating a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierName     string          `json:"supplier_name" binding:"required,max=255"`
	Items            []POItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingEstimate float64         `json:"shipping_estimate" binding:"gte=0"`
	ExpectedDate     string          `json:"expected_date" binding:"omitempty"`
	Notes            string          `json:"notes" binding:"max=500"`
}

// ReplacePOItemsRequest is the request body for replacing purchase order lines
type ReplacePOItemsRequest struct {
	Items []POItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdatePOStatusRequest is the request body for a status change
type UpdatePOStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func toPOItemInputs(items []POItemRequest) ([]tradeapp.POItemInput, error) {
	inputs := make([]tradeapp.POItemInput, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, tradeapp.POItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitCost:  toDecimal(item.UnitCost),
		})
	}
	return inputs, nil
}

// Create handles POST /trade/purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	items, err := toPOItemInputs(req.Items)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	appReq := tradeapp.CreatePurchaseOrderRequest{
		SupplierName:     req.SupplierName,
		Items:            items,
		ShippingEstimate: toDecimal(req.ShippingEstimate),
		Notes:            req.Notes,
	}
	if req.ExpectedDate != "" {
		expected, err := parseDateTime(req.ExpectedDate)
		if err != nil {
			h.BadRequest(c, "Invalid expected date format")
			return
		}
		appReq.ExpectedDate = &expected
	}

	po, err := h.purchaseOrders.CreatePurchaseOrder(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, po)
}

// List handles GET /trade/purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	var status *trade.PurchaseOrderStatus
	if raw := c.Query("status"); raw != "" {
		s := trade.PurchaseOrderStatus(raw)
		if !s.IsValid() {
			h.BadRequest(c, "Invalid purchase order status")
			return
		}
		status = &s
	}

	pos, err := h.purchaseOrders.ListPurchaseOrders(c.Request.Context(), status, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pos)
}

// GetByID handles GET /trade/purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	poID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	po, err := h.purchaseOrders.GetPurchaseOrder(c.Request.Context(), poID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, po)
}

// UpdateStatus handles PUT /trade/purchase-orders/:id/status
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	poID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	var req UpdatePOStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	po, err := h.purchaseOrders.UpdateStatus(c.Request.Context(), poID, trade.PurchaseOrderStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, po)
}

// ReplaceItems handles PUT /trade/purchase-orders/:id/items
func (h *PurchaseOrderHandler) ReplaceItems(c *gin.Context) {
	poID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	var req ReplacePOItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	items, err := toPOItemInputs(req.Items)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	po, err := h.purchaseOrders.ReplaceItems(c.Request.Context(), poID, items)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, po)
}

// RecordPayment handles POST /trade/purchase-orders/:id/payments
func (h *PurchaseOrderHandler) RecordPayment(c *gin.Context) {
	poID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	po, err := h.purchaseOrders.RecordPayment(c.Request.Context(), poID, toDecimal(req.Amount))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, po)
}

// Delete handles DELETE /trade/purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	poID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	if err := h.purchaseOrders.DeletePurchaseOrder(c.Request.Context(), poID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
