package trade

import (
	"context"

	"github.com/google/uuid"
	appledger "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService drives supplier purchase orders through negotiation.
// The shipped and received states are owned by the logistics flow: the public
// status API only reaches shipped when a shipment already exists, and
// received is reachable solely through shipment delivery.
type PurchaseOrderService struct {
	scope  appledger.TransactionScope
	logger *zap.Logger
}

// NewPurchaseOrderService creates a new purchase order service
func NewPurchaseOrderService(scope appledger.TransactionScope, logger *zap.Logger) *PurchaseOrderService {
	return &PurchaseOrderService{
		scope:  scope,
		logger: logger,
	}
}

// CreatePurchaseOrder creates a draft purchase order
func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderDTO, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Purchase order requires at least one item")
	}

	var dto PurchaseOrderDTO
	err := appledger.RetryOnDuplicateNumber(func() error {
		return s.scope.Execute(ctx, func(repos appledger.Repositories) error {
			poNumber, err := repos.PurchaseOrders().NextPONumber(ctx)
			if err != nil {
				return err
			}

			po, err := trade.NewPurchaseOrder(poNumber, req.SupplierName)
			if err != nil {
				return err
			}

			for _, input := range req.Items {
				product, err := repos.Products().FindByID(ctx, input.ProductID)
				if err != nil {
					return err
				}
				if _, err := po.AddItem(product.ID, product.Name, input.Quantity, input.UnitCost); err != nil {
					return err
				}
			}

			if !req.ShippingEstimate.IsZero() {
				if err := po.SetShippingEstimate(req.ShippingEstimate); err != nil {
					return err
				}
			}
			po.SetExpectedDate(req.ExpectedDate)
			po.Notes = req.Notes

			if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
				return err
			}
			dto = ToPurchaseOrderDTO(po)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.String("po_number", dto.PONumber),
		zap.String("supplier", dto.SupplierName))

	return &dto, nil
}

// GetPurchaseOrder fetches a single purchase order
func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, poID uuid.UUID) (*PurchaseOrderDTO, error) {
	var dto *PurchaseOrderDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, poID)
		if err != nil {
			return err
		}
		d := ToPurchaseOrderDTO(po)
		dto = &d
		return nil
	})
	return dto, err
}

// ListPurchaseOrders returns purchase orders matching the filter
func (s *PurchaseOrderService) ListPurchaseOrders(ctx context.Context, status *trade.PurchaseOrderStatus, filter shared.Filter) ([]PurchaseOrderDTO, error) {
	var dtos []PurchaseOrderDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		var pos []trade.PurchaseOrder
		var err error
		if status != nil {
			pos, err = repos.PurchaseOrders().FindByStatus(ctx, *status, filter)
		} else {
			pos, err = repos.PurchaseOrders().FindAll(ctx, filter)
		}
		if err != nil {
			return err
		}
		dtos = make([]PurchaseOrderDTO, 0, len(pos))
		for idx := range pos {
			dtos = append(dtos, ToPurchaseOrderDTO(&pos[idx]))
		}
		return nil
	})
	return dtos, err
}

// UpdateStatus transitions a purchase order along the negotiation path. A
// request for shipped is only honored when a shipment is already linked;
// otherwise the caller must create one, which transitions the order itself.
// Received cannot be requested at all, delivery drives it.
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, poID uuid.UUID, target trade.PurchaseOrderStatus) (*PurchaseOrderDTO, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid purchase order status")
	}
	if target == trade.PurchaseOrderStatusReceived {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Received is set by shipment delivery, not directly")
	}

	var dto PurchaseOrderDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, poID)
		if err != nil {
			return err
		}

		if target == trade.PurchaseOrderStatusShipped {
			exists, err := repos.Shipments().ExistsForPurchaseOrder(ctx, po.ID)
			if err != nil {
				return err
			}
			if !exists {
				return shared.ErrMissingShipment
			}
		}

		if err := po.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
			return err
		}
		dto = ToPurchaseOrderDTO(po)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order status changed",
		zap.String("po_id", poID.String()),
		zap.String("status", target.String()))

	return &dto, nil
}

// ReplaceItems swaps the full item list of a draft purchase order
func (s *PurchaseOrderService) ReplaceItems(ctx context.Context, poID uuid.UUID, items []POItemInput) (*PurchaseOrderDTO, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Purchase order requires at least one item")
	}

	var dto PurchaseOrderDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, poID)
		if err != nil {
			return err
		}
		if err := po.ClearItems(); err != nil {
			return err
		}
		for _, input := range items {
			product, err := repos.Products().FindByID(ctx, input.ProductID)
			if err != nil {
				return err
			}
			if _, err := po.AddItem(product.ID, product.Name, input.Quantity, input.UnitCost); err != nil {
				return err
			}
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
			return err
		}
		dto = ToPurchaseOrderDTO(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// RecordPayment records a supplier payment against a purchase order
func (s *PurchaseOrderService) RecordPayment(ctx context.Context, poID uuid.UUID, amount decimal.Decimal) (*PurchaseOrderDTO, error) {
	var dto PurchaseOrderDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, poID)
		if err != nil {
			return err
		}
		if err := po.RecordPayment(amount); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
			return err
		}
		dto = ToPurchaseOrderDTO(po)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order payment recorded",
		zap.String("po_id", poID.String()),
		zap.String("amount", amount.String()))

	return &dto, nil
}

// DeletePurchaseOrder deletes a draft purchase order
func (s *PurchaseOrderService) DeletePurchaseOrder(ctx context.Context, poID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, poID)
		if err != nil {
			return err
		}
		if !po.CanDelete() {
			return shared.NewDomainError("INVALID_STATE", "Only draft purchase orders can be deleted")
		}
		return repos.PurchaseOrders().Delete(ctx, poID)
	})
}
