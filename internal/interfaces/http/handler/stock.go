package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/domain/ledger"
)

// parseDateTime parses a datetime string in RFC3339 or ISO date form
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// StockHandler handles stock ledger endpoints
type StockHandler struct {
	BaseHandler
	ledger *ledgerapp.StockLedgerService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledgerService *ledgerapp.StockLedgerService) *StockHandler {
	return &StockHandler{ledger: ledgerService}
}

// PostMovementRequest is the request body for posting a stock movement
type PostMovementRequest struct {
	ProductID     string `json:"product_id" binding:"required,uuid"`
	Quantity      int64  `json:"quantity" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	ReferenceType string `json:"reference_type" binding:"required,oneof=ORDER SHIPMENT MANUAL"`
	ReferenceID   string `json:"reference_id" binding:"omitempty,uuid"`
	Notes         string `json:"notes" binding:"max=500"`
}

// ReceiveLineRequest is one product line of a bulk receive
type ReceiveLineRequest struct {
	ProductID      string  `json:"product_id" binding:"required,uuid"`
	Quantity       int64   `json:"quantity" binding:"required,gt=0"`
	UnitCost       float64 `json:"unit_cost" binding:"gte=0"`
	LandedUnitCost float64 `json:"landed_unit_cost" binding:"gte=0"`
}

// BulkReceiveRequest is the request body for receiving a shipment into stock
type BulkReceiveRequest struct {
	ShipmentID string               `json:"shipment_id" binding:"required,uuid"`
	Lines      []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// AdjustStockRequest is the request body for a manual stock adjustment
type AdjustStockRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
	Notes     string `json:"notes" binding:"required,min=10,max=500"`
}

// PostMovement handles POST /ledger/movements
func (h *StockHandler) PostMovement(c *gin.Context) {
	var req PostMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	reference := ledger.MovementRef{Type: ledger.ReferenceType(req.ReferenceType)}
	if req.ReferenceID != "" {
		refID, err := uuid.Parse(req.ReferenceID)
		if err != nil {
			h.BadRequest(c, "Invalid reference ID format")
			return
		}
		reference.ID = &refID
	}

	movement, err := h.ledger.PostMovement(c.Request.Context(), ledgerapp.PostMovementRequest{
		ProductID: productID,
		Quantity:  req.Quantity,
		Reason:    ledger.MovementReason(req.Reason),
		Reference: reference,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movement)
}

// BulkReceive handles POST /ledger/receive
func (h *StockHandler) BulkReceive(c *gin.Context) {
	var req BulkReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	shipmentID, err := uuid.Parse(req.ShipmentID)
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	lines := make([]ledgerapp.ReceiveLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		lines = append(lines, ledgerapp.ReceiveLine{
			ProductID:      productID,
			Quantity:       line.Quantity,
			UnitCost:       toDecimal(line.UnitCost),
			LandedUnitCost: toDecimal(line.LandedUnitCost),
		})
	}

	result, err := h.ledger.PostBulkReceive(c.Request.Context(), ledgerapp.BulkReceiveRequest{
		ShipmentID: shipmentID,
		Lines:      lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AdjustStock handles POST /ledger/adjustments
func (h *StockHandler) AdjustStock(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	movement, err := h.ledger.AdjustStock(c.Request.Context(), ledgerapp.AdjustStockRequest{
		ProductID: productID,
		Quantity:  req.Quantity,
		Reason:    ledger.MovementReason(req.Reason),
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movement)
}

// ListMovements handles GET /ledger/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	req := ledgerapp.ListMovementsRequest{Page: 1, PageSize: 20}

	if pid := c.Query("product_id"); pid != "" {
		productID, err := uuid.Parse(pid)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		req.ProductID = &productID
	}
	if start := c.Query("start_date"); start != "" {
		t, err := parseDateTime(start)
		if err != nil {
			h.BadRequest(c, "Invalid start date format")
			return
		}
		req.StartDate = &t
	}
	if end := c.Query("end_date"); end != "" {
		t, err := parseDateTime(end)
		if err != nil {
			h.BadRequest(c, "Invalid end date format")
			return
		}
		req.EndDate = &t
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}
	req.Page = filter.Page
	req.PageSize = filter.PageSize

	movements, err := h.ledger.ListMovements(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}

// GetMovement handles GET /ledger/movements/:id
func (h *StockHandler) GetMovement(c *gin.Context) {
	movementID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid movement ID format")
		return
	}

	movement, err := h.ledger.GetMovement(c.Request.Context(), movementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// DeleteMovement handles DELETE /ledger/movements/:id
func (h *StockHandler) DeleteMovement(c *gin.Context) {
	movementID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid movement ID format")
		return
	}

	if err := h.ledger.DeleteMovement(c.Request.Context(), movementID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetSnapshot handles GET /ledger/products/:product_id/snapshot
func (h *StockHandler) GetSnapshot(c *gin.Context) {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	snapshot, err := h.ledger.GetStockSnapshot(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshot)
}
