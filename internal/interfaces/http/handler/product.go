package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/merchstock/backend/internal/application/catalog"
)

// ProductHandler handles product master data endpoints
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	SKU          string   `json:"sku" binding:"required,max=64"`
	Name         string   `json:"name" binding:"required,max=255"`
	SellingPrice float64  `json:"selling_price" binding:"gte=0"`
	WeightKg     *float64 `json:"weight_kg" binding:"omitempty,gte=0"`
	ReorderLevel int64    `json:"reorder_level" binding:"gte=0"`
	Location     string   `json:"location" binding:"max=255"`
}

// UpdateProductRequest is the request body for updating product master data.
// Only fields present in the body are changed.
type UpdateProductRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=255"`
	SellingPrice *float64 `json:"selling_price" binding:"omitempty,gte=0"`
	WeightKg     *float64 `json:"weight_kg" binding:"omitempty,gte=0"`
	ReorderLevel *int64   `json:"reorder_level" binding:"omitempty,gte=0"`
	Location     *string  `json:"location" binding:"omitempty,max=255"`
}

// Create handles POST /catalog/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), catalogapp.CreateProductRequest{
		SKU:          req.SKU,
		Name:         req.Name,
		SellingPrice: toDecimal(req.SellingPrice),
		WeightKg:     toDecimalPtr(req.WeightKg),
		ReorderLevel: req.ReorderLevel,
		Location:     req.Location,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// List handles GET /catalog/products
func (h *ProductHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	products, total, err := h.products.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// ListBelowReorderLevel handles GET /catalog/products/alerts/below-reorder
func (h *ProductHandler) ListBelowReorderLevel(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	products, err := h.products.ListBelowReorderLevel(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// GetByID handles GET /catalog/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetBySKU handles GET /catalog/products/sku/:sku
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		h.BadRequest(c, "SKU is required")
		return
	}

	product, err := h.products.GetProductBySKU(c.Request.Context(), sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Update handles PUT /catalog/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), productID, catalogapp.UpdateProductRequest{
		Name:         req.Name,
		SellingPrice: toDecimalPtr(req.SellingPrice),
		WeightKg:     toDecimalPtr(req.WeightKg),
		ReorderLevel: req.ReorderLevel,
		Location:     req.Location,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete handles DELETE /catalog/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
