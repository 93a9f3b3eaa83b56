package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/merchstock/backend/internal/application/trade"
	"github.com/merchstock/backend/internal/domain/trade"
)

// OrderHandler handles customer order endpoints
type OrderHandler struct {
	BaseHandler
	orders *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// OrderItemRequest is one requested line in an order body
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest is the request body for creating an order
type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" binding:"required,max=255"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingFee  float64            `json:"shipping_fee" binding:"gte=0"`
	Discount     float64            `json:"discount" binding:"gte=0"`
}

// ReplaceOrderItemsRequest is the request body for replacing order lines
type ReplaceOrderItemsRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest is the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RecordPaymentRequest is the request body for recording a payment
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

func toOrderItemInputs(items []OrderItemRequest) ([]tradeapp.OrderItemInput, error) {
	inputs := make([]tradeapp.OrderItemInput, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, tradeapp.OrderItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}
	return inputs, nil
}

// Create handles POST /trade/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	items, err := toOrderItemInputs(req.Items)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), tradeapp.CreateOrderRequest{
		CustomerName: req.CustomerName,
		Items:        items,
		ShippingFee:  toDecimal(req.ShippingFee),
		Discount:     toDecimal(req.Discount),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// List handles GET /trade/orders
func (h *OrderHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	var status *trade.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := trade.OrderStatus(raw)
		if !s.IsValid() {
			h.BadRequest(c, "Invalid order status")
			return
		}
		status = &s
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), status, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders)
}

// GetByID handles GET /trade/orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateStatus handles PUT /trade/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, trade.OrderStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// ReplaceItems handles PUT /trade/orders/:id/items
func (h *OrderHandler) ReplaceItems(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req ReplaceOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	items, err := toOrderItemInputs(req.Items)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	order, err := h.orders.ReplaceItems(c.Request.Context(), orderID, items)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RecordPayment handles POST /trade/orders/:id/payments
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orders.RecordPayment(c.Request.Context(), orderID, toDecimal(req.Amount))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete handles DELETE /trade/orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orders.DeleteOrder(c.Request.Context(), orderID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// StatusSummary handles GET /trade/orders/stats/summary
func (h *OrderHandler) StatusSummary(c *gin.Context) {
	summary, err := h.orders.StatusSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
