package logistics

import (
	"context"

	"github.com/google/uuid"
	appledger "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/domain/ledger"
	"github.com/merchstock/backend/internal/domain/logistics"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/infrastructure/strategy/allocation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ShipmentService manages inbound shipments. Creating a shipment forces its
// purchase order to shipped; delivering one runs the receiving flow: allocate
// charges, post receiving movements, mark the purchase order received. All of
// it in one transaction.
type ShipmentService struct {
	scope     appledger.TransactionScope
	ledger    *appledger.StockLedgerService
	allocator *allocation.Allocator
	logger    *zap.Logger
}

// NewShipmentService creates a new shipment service
func NewShipmentService(scope appledger.TransactionScope, ledgerService *appledger.StockLedgerService, allocator *allocation.Allocator, logger *zap.Logger) *ShipmentService {
	return &ShipmentService{
		scope:     scope,
		ledger:    ledgerService,
		allocator: allocator,
		logger:    logger,
	}
}

// CreateShipment creates a shipment for a confirmed or producing purchase
// order and force-transitions the order to shipped. A purchase order carries
// at most one shipment, ever.
func (s *ShipmentService) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*ShipmentDTO, error) {
	var dto ShipmentDTO
	err := appledger.RetryOnDuplicateNumber(func() error {
		return s.scope.Execute(ctx, func(repos appledger.Repositories) error {
			po, err := repos.PurchaseOrders().FindByID(ctx, req.PurchaseOrderID)
			if err != nil {
				return err
			}
			if !po.CanAttachShipment() {
				return shared.NewDomainError("INVALID_STATE",
					"Shipments can only be created for confirmed or producing purchase orders")
			}

			exists, err := repos.Shipments().ExistsForPurchaseOrder(ctx, po.ID)
			if err != nil {
				return err
			}
			if exists {
				return shared.ErrDuplicateShipment
			}

			shipmentNumber, err := repos.Shipments().NextShipmentNumber(ctx)
			if err != nil {
				return err
			}

			shipment, err := logistics.NewShipment(shipmentNumber, po.ID, req.Method)
			if err != nil {
				return err
			}
			if err := shipment.SetCharges(req.ShippingCost, req.CustomsDuty, req.OtherFees); err != nil {
				return err
			}
			if err := shipment.SetMeasurements(req.TotalWeight, req.TotalVolume); err != nil {
				return err
			}
			shipment.SetTracking(req.Carrier, req.TrackingNumber)
			shipment.SetEstimatedArrival(req.EstimatedArrival)
			shipment.Notes = req.Notes

			if err := po.MarkShipped(); err != nil {
				return err
			}

			if err := repos.Shipments().Save(ctx, shipment); err != nil {
				return err
			}
			if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
				return err
			}
			dto = ToShipmentDTO(shipment)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shipment created",
		zap.String("shipment_number", dto.ShipmentNumber),
		zap.String("purchase_order_id", dto.PurchaseOrderID.String()))

	return &dto, nil
}

// GetShipment fetches a single shipment
func (s *ShipmentService) GetShipment(ctx context.Context, shipmentID uuid.UUID) (*ShipmentDTO, error) {
	var dto *ShipmentDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		shipment, err := repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		d := ToShipmentDTO(shipment)
		dto = &d
		return nil
	})
	return dto, err
}

// ListShipments returns shipments matching the filter
func (s *ShipmentService) ListShipments(ctx context.Context, status *logistics.ShipmentStatus, filter shared.Filter) ([]ShipmentDTO, error) {
	var dtos []ShipmentDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		var shipments []logistics.Shipment
		var err error
		if status != nil {
			shipments, err = repos.Shipments().FindByStatus(ctx, *status, filter)
		} else {
			shipments, err = repos.Shipments().FindAll(ctx, filter)
		}
		if err != nil {
			return err
		}
		dtos = make([]ShipmentDTO, 0, len(shipments))
		for idx := range shipments {
			dtos = append(dtos, ToShipmentDTO(&shipments[idx]))
		}
		return nil
	})
	return dtos, err
}

// UpdateCharges revises the freight charges of an undelivered shipment
func (s *ShipmentService) UpdateCharges(ctx context.Context, shipmentID uuid.UUID, req UpdateChargesRequest) (*ShipmentDTO, error) {
	var dto ShipmentDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		shipment, err := repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := shipment.SetCharges(req.ShippingCost, req.CustomsDuty, req.OtherFees); err != nil {
			return err
		}
		if err := repos.Shipments().SaveWithLock(ctx, shipment); err != nil {
			return err
		}
		dto = ToShipmentDTO(shipment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// RecordPayment adds a payment against the shipment's freight charges
func (s *ShipmentService) RecordPayment(ctx context.Context, shipmentID uuid.UUID, amount decimal.Decimal) (*ShipmentDTO, error) {
	var dto ShipmentDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		shipment, err := repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := shipment.RecordPayment(amount); err != nil {
			return err
		}
		if err := repos.Shipments().SaveWithLock(ctx, shipment); err != nil {
			return err
		}
		dto = ToShipmentDTO(shipment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// UpdateStatus advances a shipment along its linear path. Reaching delivered
// triggers the receiving flow.
func (s *ShipmentService) UpdateStatus(ctx context.Context, shipmentID uuid.UUID, target logistics.ShipmentStatus) (*ShipmentDTO, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid shipment status")
	}
	if target == logistics.ShipmentStatusDelivered {
		return s.Deliver(ctx, shipmentID)
	}

	var dto ShipmentDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		shipment, err := repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}

		switch target {
		case logistics.ShipmentStatusInTransit:
			err = shipment.Depart()
		case logistics.ShipmentStatusCustoms:
			err = shipment.EnterCustoms()
		default:
			err = shared.NewDomainError("INVALID_TRANSITION", "Shipments cannot move back to pending")
		}
		if err != nil {
			return err
		}

		if err := repos.Shipments().SaveWithLock(ctx, shipment); err != nil {
			return err
		}
		dto = ToShipmentDTO(shipment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shipment status changed",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("status", target.String()))

	return &dto, nil
}

// Deliver completes a shipment: the outstanding purchase order lines are
// received into stock at their allocated landed cost, the purchase order is
// marked received and the shipment delivered, all atomically. Lines already
// received in full are skipped, which makes a retried delivery a no-op for
// stock.
func (s *ShipmentService) Deliver(ctx context.Context, shipmentID uuid.UUID) (*ShipmentDTO, error) {
	var dto ShipmentDTO
	var touched []uuid.UUID
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		shipment, err := repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if !shipment.Status.CanTransitionTo(logistics.ShipmentStatusDelivered) {
			return shared.NewDomainError("INVALID_TRANSITION",
				"Shipment can only be delivered from customs clearance")
		}
		po, err := repos.PurchaseOrders().FindByID(ctx, shipment.PurchaseOrderID)
		if err != nil {
			return err
		}

		outstanding := po.OutstandingItems()
		strategyName := shipment.AllocationMethod

		if len(outstanding) > 0 {
			lines := make([]allocation.Line, 0, len(outstanding))
			for _, item := range outstanding {
				product, err := repos.Products().FindByID(ctx, item.ProductID)
				if err != nil {
					return err
				}
				lines = append(lines, allocation.Line{
					ProductID: item.ProductID,
					Quantity:  item.Outstanding(),
					UnitCost:  item.UnitCost,
					WeightKg:  product.WeightKg,
				})
			}

			result, err := s.allocator.Allocate(lines, shipment.TotalCharges())
			if err != nil {
				return err
			}
			strategyName = result.Strategy

			// Guard against replays that died between posting and commit.
			existing, err := repos.Movements().FindByReference(ctx, ledger.ShipmentRef(shipment.ID))
			if err != nil {
				return err
			}
			if len(existing) == 0 {
				for _, line := range result.Lines {
					_, pending, err := s.ledger.ReceiveWithin(ctx, repos, shipment.ID, appledger.ReceiveLine{
						ProductID:      line.ProductID,
						Quantity:       line.Quantity,
						UnitCost:       line.UnitCost,
						LandedUnitCost: line.LandedUnitCost,
					})
					if err != nil {
						return err
					}
					touched = append(touched, line.ProductID)
					events = append(events, pending...)
				}
			}

			for _, item := range outstanding {
				if err := po.ReceiveItem(item.ID, item.Outstanding()); err != nil {
					return err
				}
			}
		}

		if err := po.MarkReceived(); err != nil {
			return err
		}
		if err := shipment.MarkDelivered(strategyName); err != nil {
			return err
		}

		if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
			return err
		}
		if err := repos.Shipments().SaveWithLock(ctx, shipment); err != nil {
			return err
		}
		dto = ToShipmentDTO(shipment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, productID := range touched {
		s.ledger.AfterStockChange(ctx, productID, nil)
	}
	s.ledger.PublishEvents(ctx, events)

	s.logger.Info("shipment delivered",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("allocation", dto.AllocationMethod),
		zap.Int("lines_received", len(touched)))

	return &dto, nil
}
