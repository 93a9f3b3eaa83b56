package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/merchstock/backend/internal/domain/ledger"
	"github.com/merchstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// minAdjustmentNotes is the minimum length of the free-text justification
// required on manual adjustments.
const minAdjustmentNotes = 10

// SnapshotCache caches per-product stock snapshots for read endpoints. A nil
// snapshot with a nil error means a cache miss. Every posted movement
// invalidates the product's entry.
type SnapshotCache interface {
	Get(ctx context.Context, productID uuid.UUID) (*StockSnapshot, error)
	Set(ctx context.Context, snapshot *StockSnapshot) error
	Invalidate(ctx context.Context, productID uuid.UUID) error
}

// StockLedgerService is the single entry point for stock changes. Every
// quantity mutation in the system flows through it so the movement log and
// the product balance always agree.
type StockLedgerService struct {
	scope     TransactionScope
	publisher shared.EventPublisher
	cache     SnapshotCache
	logger    *zap.Logger
}

// NewStockLedgerService creates a new stock ledger service. Publisher and
// cache are optional.
func NewStockLedgerService(scope TransactionScope, publisher shared.EventPublisher, cache SnapshotCache, logger *zap.Logger) *StockLedgerService {
	return &StockLedgerService{
		scope:     scope,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// PostWithin posts a single movement inside an existing transaction. It loads
// the product, applies the signed quantity, appends the movement record and
// saves the product under its optimistic lock. Callers running their own
// scope (order confirm, shipment delivery) compose stock changes through
// this. The returned events must be published only after the surrounding
// transaction commits.
func (s *StockLedgerService) PostWithin(ctx context.Context, repos Repositories, req PostMovementRequest) (*ledger.StockMovement, []shared.DomainEvent, error) {
	product, err := repos.Products().FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, nil, err
	}

	before, _, err := product.ApplyQuantityChange(req.Quantity)
	if err != nil {
		return nil, nil, err
	}

	movement, err := ledger.NewStockMovement(
		product.ID,
		ledger.TypeForQuantity(req.Quantity),
		req.Reason,
		req.Quantity,
		before,
		req.Reference,
	)
	if err != nil {
		return nil, nil, err
	}
	if req.Notes != "" {
		movement.WithNotes(req.Notes)
	}

	if err := repos.Movements().Create(ctx, movement); err != nil {
		return nil, nil, err
	}
	if err := repos.Products().SaveWithLock(ctx, product); err != nil {
		return nil, nil, err
	}

	return movement, product.GetDomainEvents(), nil
}

// ReceiveWithin posts a receiving movement with cost information inside an
// existing transaction. Unlike PostWithin it folds the landed unit cost into
// the product's weighted average.
func (s *StockLedgerService) ReceiveWithin(ctx context.Context, repos Repositories, shipmentID uuid.UUID, line ReceiveLine) (*ledger.StockMovement, []shared.DomainEvent, error) {
	product, err := repos.Products().FindByID(ctx, line.ProductID)
	if err != nil {
		return nil, nil, err
	}

	before, _, err := product.ApplyReceipt(line.Quantity, line.LandedUnitCost)
	if err != nil {
		return nil, nil, err
	}

	movement, err := ledger.NewStockMovement(
		product.ID,
		ledger.MovementTypeIn,
		ledger.ReasonShipmentReceived,
		line.Quantity,
		before,
		ledger.ShipmentRef(shipmentID),
	)
	if err != nil {
		return nil, nil, err
	}
	movement.WithCosts(line.UnitCost, line.LandedUnitCost)

	if err := repos.Movements().Create(ctx, movement); err != nil {
		return nil, nil, err
	}
	if err := repos.Products().SaveWithLock(ctx, product); err != nil {
		return nil, nil, err
	}

	return movement, product.GetDomainEvents(), nil
}

// PostMovement posts a single movement in its own transaction
func (s *StockLedgerService) PostMovement(ctx context.Context, req PostMovementRequest) (*MovementDTO, error) {
	var movement *ledger.StockMovement
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos Repositories) error {
		m, pending, err := s.PostWithin(ctx, repos, req)
		if err != nil {
			return err
		}
		movement = m
		events = pending
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.AfterStockChange(ctx, req.ProductID, events)

	dto := ToMovementDTO(movement)
	return &dto, nil
}

// PostBulkReceive receives a shipment's lines into stock atomically. If the
// shipment already has movements in the ledger the call is a replay and
// returns the existing movements without posting anything.
func (s *StockLedgerService) PostBulkReceive(ctx context.Context, req BulkReceiveRequest) (*BulkReceiveResult, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bulk receive requires at least one line")
	}

	result := &BulkReceiveResult{}
	touched := make([]uuid.UUID, 0, len(req.Lines))
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos Repositories) error {
		existing, err := repos.Movements().FindByReference(ctx, ledger.ShipmentRef(req.ShipmentID))
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			result.Replayed = true
			for idx := range existing {
				result.Movements = append(result.Movements, ToMovementDTO(&existing[idx]))
			}
			return nil
		}

		for _, line := range req.Lines {
			movement, pending, err := s.ReceiveWithin(ctx, repos, req.ShipmentID, line)
			if err != nil {
				return err
			}
			result.Movements = append(result.Movements, ToMovementDTO(movement))
			touched = append(touched, line.ProductID)
			events = append(events, pending...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, productID := range touched {
		s.invalidateSnapshot(ctx, productID)
	}
	s.PublishEvents(ctx, events)

	s.logger.Info("shipment received into stock",
		zap.String("shipment_id", req.ShipmentID.String()),
		zap.Int("lines", len(result.Movements)),
		zap.Bool("replayed", result.Replayed))

	return result, nil
}

// AdjustStock posts a manual adjustment. The reason must come from the manual
// subset and the justification must carry enough text to be useful later.
func (s *StockLedgerService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*MovementDTO, error) {
	if req.Quantity == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment quantity cannot be zero")
	}
	if !req.Reason.IsManualReason() {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason is not valid for manual adjustments")
	}
	if len(strings.TrimSpace(req.Notes)) < minAdjustmentNotes {
		return nil, shared.NewDomainError("NOTES_TOO_SHORT", "Adjustment justification is too short")
	}

	dto, err := s.PostMovement(ctx, PostMovementRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Reference: ledger.ManualRef(),
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("manual stock adjustment",
		zap.String("product_id", req.ProductID.String()),
		zap.Int64("quantity", req.Quantity),
		zap.String("reason", req.Reason.String()))

	return dto, nil
}

// DeleteMovement removes a movement and reverse-applies its quantity to the
// product balance. The weighted-average landed cost is not rewound; deleting
// a receiving movement only corrects the quantity.
func (s *StockLedgerService) DeleteMovement(ctx context.Context, movementID uuid.UUID) error {
	var productID uuid.UUID

	err := s.scope.Execute(ctx, func(repos Repositories) error {
		movement, err := repos.Movements().FindByID(ctx, movementID)
		if err != nil {
			return err
		}

		product, err := repos.Products().FindByID(ctx, movement.ProductID)
		if err != nil {
			return err
		}
		productID = product.ID

		if _, err := product.ReverseQuantity(movement.Quantity); err != nil {
			return err
		}

		if err := repos.Movements().Delete(ctx, movementID); err != nil {
			return err
		}
		return repos.Products().SaveWithLock(ctx, product)
	})
	if err != nil {
		return err
	}

	s.AfterStockChange(ctx, productID, nil)

	s.logger.Info("stock movement deleted",
		zap.String("movement_id", movementID.String()),
		zap.String("product_id", productID.String()))

	return nil
}

// GetMovement fetches a single movement
func (s *StockLedgerService) GetMovement(ctx context.Context, movementID uuid.UUID) (*MovementDTO, error) {
	var dto *MovementDTO
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		movement, err := repos.Movements().FindByID(ctx, movementID)
		if err != nil {
			return err
		}
		d := ToMovementDTO(movement)
		dto = &d
		return nil
	})
	return dto, err
}

// ListMovements returns movement history for a product, newest first
func (s *StockLedgerService) ListMovements(ctx context.Context, req ListMovementsRequest) ([]MovementDTO, error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	var dtos []MovementDTO
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var movements []ledger.StockMovement
		var err error

		switch {
		case req.StartDate != nil && req.EndDate != nil:
			movements, err = repos.Movements().FindByDateRange(ctx, *req.StartDate, *req.EndDate, filter)
		case req.ProductID != nil:
			movements, err = repos.Movements().FindByProduct(ctx, *req.ProductID, filter)
		default:
			return shared.NewDomainError("INVALID_INPUT", "Movement listing requires a product or a date range")
		}
		if err != nil {
			return err
		}

		dtos = make([]MovementDTO, 0, len(movements))
		for idx := range movements {
			dtos = append(dtos, ToMovementDTO(&movements[idx]))
		}
		return nil
	})
	return dtos, err
}

// GetStockSnapshot returns the current stock position of a product, served
// from cache when possible.
func (s *StockLedgerService) GetStockSnapshot(ctx context.Context, productID uuid.UUID) (*StockSnapshot, error) {
	if s.cache != nil {
		snapshot, err := s.cache.Get(ctx, productID)
		if err != nil {
			s.logger.Warn("stock snapshot cache read failed", zap.Error(err))
		} else if snapshot != nil {
			return snapshot, nil
		}
	}

	var snapshot *StockSnapshot
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		snapshot = snapshotOf(product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshot); err != nil {
			s.logger.Warn("stock snapshot cache write failed", zap.Error(err))
		}
	}
	return snapshot, nil
}

// AfterStockChange publishes pending domain events and drops the product's
// cached snapshot. Both are best effort and never fail the operation. Callers
// composing stock changes through PostWithin or ReceiveWithin invoke this
// once their transaction has committed.
func (s *StockLedgerService) AfterStockChange(ctx context.Context, productID uuid.UUID, events []shared.DomainEvent) {
	s.invalidateSnapshot(ctx, productID)
	s.PublishEvents(ctx, events)
}

func (s *StockLedgerService) invalidateSnapshot(ctx context.Context, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn("stock snapshot cache invalidation failed",
			zap.String("product_id", productID.String()), zap.Error(err))
	}
}

// PublishEvents publishes domain events collected during a transaction.
// Best effort: failures are logged, never returned.
func (s *StockLedgerService) PublishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	for _, event := range events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("domain event publish failed",
				zap.String("event_type", event.EventType()), zap.Error(err))
		}
	}
}

func snapshotOf(product *catalog.Product) *StockSnapshot {
	return &StockSnapshot{
		ProductID:    product.ID,
		SKU:          product.SKU,
		CurrentStock: product.CurrentStock,
		ReorderLevel: product.ReorderLevel,
		LandedCost:   product.LandedCost,
		StockValue:   product.StockValue(),
		BelowReorder: product.IsBelowReorderLevel(),
		AsOf:         time.Now(),
	}
}
