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

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID, items included
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an order by its document number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds all orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, error) {
	var orders []trade.Order
	query := r.db.WithContext(ctx).Model(&trade.Order{}).Preload("Items")
	query = r.applySearch(query, filter)
	query = applyFilter(query, filter, "order_number", "status", "total", "created_at")

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds orders in a given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status trade.OrderStatus, filter shared.Filter) ([]trade.Order, error) {
	var orders []trade.Order
	query := r.db.WithContext(ctx).Model(&trade.Order{}).Preload("Items").
		Where("status = ?", status)
	query = applyFilter(query, filter, "order_number", "total", "created_at")

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates an order with its items. A unique index violation
// on the order number surfaces as ErrAlreadyExists so the caller can retry
// with a fresh number.
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	if err := r.db.WithContext(ctx).Omit("Items").Save(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return r.syncItems(ctx, order)
}

// SaveWithLock saves with optimistic locking. The stored row must still carry
// the version the aggregate was loaded at; on success the version advances.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	result := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]interface{}{
			"customer_name":  order.CustomerName,
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"subtotal":       order.Subtotal,
			"shipping_fee":   order.ShippingFee,
			"discount":       order.Discount,
			"total":          order.Total,
			"paid_amount":    order.PaidAmount,
			"confirmed_at":   order.ConfirmedAt,
			"packed_at":      order.PackedAt,
			"shipped_at":     order.ShippedAt,
			"delivered_at":   order.DeliveredAt,
			"cancelled_at":   order.CancelledAt,
			"version":        order.Version + 1,
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	order.Version++
	return r.syncItems(ctx, order)
}

// Delete deletes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&trade.OrderItem{}, "order_id = ?", id).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&trade.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&trade.Order{})
	query = r.applySearch(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus returns the number of orders per status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[trade.OrderStatus]int64, error) {
	var rows []struct {
		Status trade.OrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[trade.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// NextOrderNumber generates the next ORD-{year}-{seq} document number
func (r *GormOrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, trade.Order{}.TableName(), "order_number", "ORD")
}

// syncItems replaces the stored item rows with the aggregate's current items.
// Rows no longer present are deleted, the rest are upserted.
func (r *GormOrderRepository) syncItems(ctx context.Context, order *trade.Order) error {
	keep := make([]uuid.UUID, 0, len(order.Items))
	for idx := range order.Items {
		keep = append(keep, order.Items[idx].ID)
	}

	stale := r.db.WithContext(ctx).Where("order_id = ?", order.ID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&trade.OrderItem{}).Error; err != nil {
		return err
	}

	if len(order.Items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&order.Items).Error
}

func (r *GormOrderRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
