package logistics

import (
	"context"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
)

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	// FindByID finds a shipment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByShipmentNumber finds a shipment by its document number
	FindByShipmentNumber(ctx context.Context, shipmentNumber string) (*Shipment, error)

	// FindByPurchaseOrder finds the shipment attached to a purchase order
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (*Shipment, error)

	// ExistsForPurchaseOrder checks whether a purchase order already has a shipment
	ExistsForPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (bool, error)

	// FindAll finds all shipments matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Shipment, error)

	// FindByStatus finds shipments in a given status
	FindByStatus(ctx context.Context, status ShipmentStatus, filter shared.Filter) ([]Shipment, error)

	// Save creates or updates a shipment
	Save(ctx context.Context, shipment *Shipment) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, shipment *Shipment) error

	// Delete deletes a shipment
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts shipments matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// NextShipmentNumber generates the next SHIP-{year}-{seq} document number
	NextShipmentNumber(ctx context.Context) (string, error)
}
