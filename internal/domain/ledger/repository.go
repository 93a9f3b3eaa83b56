package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
)

// StockMovementRepository defines the interface for movement persistence.
// The store is append-only: movements are created, never updated. Delete
// exists solely for the administrative reversal path.
type StockMovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByProduct finds movements for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByReference finds movements originating from a document
	FindByReference(ctx context.Context, ref MovementRef) ([]StockMovement, error)

	// FindByDateRange finds movements within a date range
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]StockMovement, error)

	// Create appends a new movement (no update allowed)
	Create(ctx context.Context, movement *StockMovement) error

	// CreateBatch appends multiple movements
	CreateBatch(ctx context.Context, movements []*StockMovement) error

	// Delete removes a movement; used only for administrative reversal
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByProduct counts movements for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)

	// SumQuantityByProduct sums signed movement quantities for a product
	SumQuantityByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

// MovementFilter extends shared.Filter with movement-specific filters
type MovementFilter struct {
	shared.Filter
	ProductID     *uuid.UUID
	Type          *MovementType
	Reason        *MovementReason
	ReferenceType *ReferenceType
	StartDate     *time.Time
	EndDate       *time.Time
}
