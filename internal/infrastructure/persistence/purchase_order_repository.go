package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID, items included
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var po trade.PurchaseOrder
	if err := r.db.WithContext(ctx).Preload("Items").First(&po, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindByPONumber finds a purchase order by its document number
func (r *GormPurchaseOrderRepository) FindByPONumber(ctx context.Context, poNumber string) (*trade.PurchaseOrder, error) {
	var po trade.PurchaseOrder
	if err := r.db.WithContext(ctx).Preload("Items").First(&po, "po_number = ?", poNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindAll finds all purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	var orders []trade.PurchaseOrder
	query := r.db.WithContext(ctx).Model(&trade.PurchaseOrder{}).Preload("Items")
	query = r.applySearch(query, filter)
	query = applyFilter(query, filter, "po_number", "status", "total_cost", "created_at")

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds purchase orders in a given status
func (r *GormPurchaseOrderRepository) FindByStatus(ctx context.Context, status trade.PurchaseOrderStatus, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	var orders []trade.PurchaseOrder
	query := r.db.WithContext(ctx).Model(&trade.PurchaseOrder{}).Preload("Items").
		Where("status = ?", status)
	query = applyFilter(query, filter, "po_number", "total_cost", "created_at")

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a purchase order with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *trade.PurchaseOrder) error {
	if err := r.db.WithContext(ctx).Omit("Items").Save(po).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return r.syncItems(ctx, po)
}

// SaveWithLock saves with optimistic locking. The stored row must still carry
// the version the aggregate was loaded at; on success the version advances.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *trade.PurchaseOrder) error {
	result := r.db.WithContext(ctx).
		Model(&trade.PurchaseOrder{}).
		Where("id = ? AND version = ?", po.ID, po.Version).
		Updates(map[string]interface{}{
			"supplier_name":     po.SupplierName,
			"status":            po.Status,
			"payment_status":    po.PaymentStatus,
			"subtotal":          po.Subtotal,
			"shipping_estimate": po.ShippingEstimate,
			"total_cost":        po.TotalCost,
			"paid_amount":       po.PaidAmount,
			"expected_date":     po.ExpectedDate,
			"sent_at":           po.SentAt,
			"confirmed_at":      po.ConfirmedAt,
			"shipped_at":        po.ShippedAt,
			"received_at":       po.ReceivedAt,
			"notes":             po.Notes,
			"version":           po.Version + 1,
			"updated_at":        po.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	po.Version++
	return r.syncItems(ctx, po)
}

// Delete deletes a purchase order and its items
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&trade.PurchaseOrderItem{}, "purchase_order_id = ?", id).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&trade.PurchaseOrder{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&trade.PurchaseOrder{})
	query = r.applySearch(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextPONumber generates the next PO-{year}-{seq} document number
func (r *GormPurchaseOrderRepository) NextPONumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, trade.PurchaseOrder{}.TableName(), "po_number", "PO")
}

// syncItems replaces the stored item rows with the aggregate's current items
func (r *GormPurchaseOrderRepository) syncItems(ctx context.Context, po *trade.PurchaseOrder) error {
	keep := make([]uuid.UUID, 0, len(po.Items))
	for idx := range po.Items {
		keep = append(keep, po.Items[idx].ID)
	}

	stale := r.db.WithContext(ctx).Where("purchase_order_id = ?", po.ID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&trade.PurchaseOrderItem{}).Error; err != nil {
		return err
	}

	if len(po.Items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&po.Items).Error
}

func (r *GormPurchaseOrderRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("po_number ILIKE ? OR supplier_name ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
