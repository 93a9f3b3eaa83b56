package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/ledger"
	"github.com/merchstock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// The table is append-only; no update path exists.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.StockMovement, error) {
	var movement ledger.StockMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByProduct finds movements for a product, newest first
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]ledger.StockMovement, error) {
	var movements []ledger.StockMovement
	query := r.db.WithContext(ctx).Model(&ledger.StockMovement{}).
		Where("product_id = ?", productID)
	query = applyFilter(query, filter, "created_at")

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference finds movements originating from a document
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, ref ledger.MovementRef) ([]ledger.StockMovement, error) {
	var movements []ledger.StockMovement
	query := r.db.WithContext(ctx).Where("reference_type = ?", ref.Type)
	if ref.ID != nil {
		query = query.Where("reference_id = ?", *ref.ID)
	} else {
		query = query.Where("reference_id IS NULL")
	}

	if err := query.Order("created_at ASC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByDateRange finds movements within a date range
func (r *GormStockMovementRepository) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]ledger.StockMovement, error) {
	var movements []ledger.StockMovement
	query := r.db.WithContext(ctx).Model(&ledger.StockMovement{}).
		Where("created_at >= ? AND created_at <= ?", start, end)
	query = applyFilter(query, filter, "created_at")

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Create appends a new movement
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *ledger.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// CreateBatch appends multiple movements
func (r *GormStockMovementRepository) CreateBatch(ctx context.Context, movements []*ledger.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// Delete removes a movement; used only for administrative reversal
func (r *GormStockMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ledger.StockMovement{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByProduct counts movements for a product
func (r *GormStockMovementRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.StockMovement{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityByProduct sums signed movement quantities for a product
func (r *GormStockMovementRepository) SumQuantityByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.StockMovement{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("product_id = ?", productID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ ledger.StockMovementRepository = (*GormStockMovementRepository)(nil)
