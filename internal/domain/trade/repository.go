package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
)

// OrderRepository defines the interface for customer order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its document number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds all orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders in a given status
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order with its items
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, order *Order) error

	// Delete deletes an order
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus returns the number of orders per status
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)

	// NextOrderNumber generates the next ORD-{year}-{seq} document number
	NextOrderNumber(ctx context.Context) (string, error)
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order by its ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByPONumber finds a purchase order by its document number
	FindByPONumber(ctx context.Context, poNumber string) (*PurchaseOrder, error)

	// FindAll finds all purchase orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// FindByStatus finds purchase orders in a given status
	FindByStatus(ctx context.Context, status PurchaseOrderStatus, filter shared.Filter) ([]PurchaseOrder, error)

	// Save creates or updates a purchase order with its items
	Save(ctx context.Context, po *PurchaseOrder) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, po *PurchaseOrder) error

	// Delete deletes a purchase order
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts purchase orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// NextPONumber generates the next PO-{year}-{seq} document number
	NextPONumber(ctx context.Context) (string, error)
}
