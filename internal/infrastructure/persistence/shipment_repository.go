package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/logistics"
	"github.com/merchstock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment by its ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*logistics.Shipment, error) {
	var shipment logistics.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByShipmentNumber finds a shipment by its document number
func (r *GormShipmentRepository) FindByShipmentNumber(ctx context.Context, shipmentNumber string) (*logistics.Shipment, error) {
	var shipment logistics.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "shipment_number = ?", shipmentNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByPurchaseOrder finds the shipment attached to a purchase order
func (r *GormShipmentRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (*logistics.Shipment, error) {
	var shipment logistics.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "purchase_order_id = ?", purchaseOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// ExistsForPurchaseOrder checks whether a purchase order already has a shipment
func (r *GormShipmentRepository) ExistsForPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&logistics.Shipment{}).
		Where("purchase_order_id = ?", purchaseOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds all shipments matching the filter
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]logistics.Shipment, error) {
	var shipments []logistics.Shipment
	query := r.db.WithContext(ctx).Model(&logistics.Shipment{})
	query = r.applySearch(query, filter)
	query = applyFilter(query, filter, "shipment_number", "status", "created_at")

	if err := query.Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// FindByStatus finds shipments in a given status
func (r *GormShipmentRepository) FindByStatus(ctx context.Context, status logistics.ShipmentStatus, filter shared.Filter) ([]logistics.Shipment, error) {
	var shipments []logistics.Shipment
	query := r.db.WithContext(ctx).Model(&logistics.Shipment{}).
		Where("status = ?", status)
	query = applyFilter(query, filter, "shipment_number", "created_at")

	if err := query.Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// Save creates or updates a shipment
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *logistics.Shipment) error {
	if err := r.db.WithContext(ctx).Save(shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking. The stored row must still carry
// the version the aggregate was loaded at; on success the version advances.
func (r *GormShipmentRepository) SaveWithLock(ctx context.Context, shipment *logistics.Shipment) error {
	result := r.db.WithContext(ctx).
		Model(&logistics.Shipment{}).
		Where("id = ? AND version = ?", shipment.ID, shipment.Version).
		Updates(map[string]interface{}{
			"status":            shipment.Status,
			"method":            shipment.Method,
			"carrier":           shipment.Carrier,
			"tracking_number":   shipment.TrackingNumber,
			"shipping_cost":     shipment.ShippingCost,
			"customs_duty":      shipment.CustomsDuty,
			"other_fees":        shipment.OtherFees,
			"payment_status":    shipment.PaymentStatus,
			"paid_amount":       shipment.PaidAmount,
			"total_weight":      shipment.TotalWeight,
			"total_volume":      shipment.TotalVolume,
			"allocation_method": shipment.AllocationMethod,
			"estimated_arrival": shipment.EstimatedArrival,
			"actual_arrival":    shipment.ActualArrival,
			"departed_at":       shipment.DepartedAt,
			"notes":             shipment.Notes,
			"version":           shipment.Version + 1,
			"updated_at":        shipment.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	shipment.Version++
	return nil
}

// Delete deletes a shipment
func (r *GormShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&logistics.Shipment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&logistics.Shipment{})
	query = r.applySearch(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextShipmentNumber generates the next SHIP-{year}-{seq} document number
func (r *GormShipmentRepository) NextShipmentNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, logistics.Shipment{}.TableName(), "shipment_number", "SHIP")
}

func (r *GormShipmentRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("shipment_number ILIKE ? OR carrier ILIKE ? OR tracking_number ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

// Ensure GormShipmentRepository implements ShipmentRepository
var _ logistics.ShipmentRepository = (*GormShipmentRepository)(nil)
