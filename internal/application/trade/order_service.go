package trade

import (
	"context"

	"github.com/google/uuid"
	appledger "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/domain/ledger"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService drives customer orders through their lifecycle. Transitions
// with stock side effects (confirm, cancel) post their movements through the
// stock ledger inside the same transaction as the status change.
type OrderService struct {
	scope  appledger.TransactionScope
	ledger *appledger.StockLedgerService
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(scope appledger.TransactionScope, ledgerService *appledger.StockLedgerService, logger *zap.Logger) *OrderService {
	return &OrderService{
		scope:  scope,
		ledger: ledgerService,
		logger: logger,
	}
}

// CreateOrder creates a pending order. Prices and product names are
// snapshotted from the catalog at creation time so later product edits do not
// rewrite history. No stock is touched until the order is confirmed.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order requires at least one item")
	}

	var dto OrderDTO
	err := appledger.RetryOnDuplicateNumber(func() error {
		return s.scope.Execute(ctx, func(repos appledger.Repositories) error {
			orderNumber, err := repos.Orders().NextOrderNumber(ctx)
			if err != nil {
				return err
			}

			order, err := trade.NewOrder(orderNumber, req.CustomerName)
			if err != nil {
				return err
			}

			for _, input := range req.Items {
				product, err := repos.Products().FindByID(ctx, input.ProductID)
				if err != nil {
					return err
				}
				if _, err := order.AddItem(product.ID, product.Name, input.Quantity, product.SellingPrice); err != nil {
					return err
				}
			}

			if !req.ShippingFee.IsZero() {
				if err := order.SetShippingFee(req.ShippingFee); err != nil {
					return err
				}
			}
			if !req.Discount.IsZero() {
				if err := order.SetDiscount(req.Discount); err != nil {
					return err
				}
			}

			if err := repos.Orders().Save(ctx, order); err != nil {
				return err
			}
			dto = ToOrderDTO(order)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_number", dto.OrderNumber),
		zap.Int("items", len(dto.Items)))

	return &dto, nil
}

// GetOrder fetches a single order
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	var dto *OrderDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		d := ToOrderDTO(order)
		dto = &d
		return nil
	})
	return dto, err
}

// ListOrders returns orders matching the filter, optionally by status
func (s *OrderService) ListOrders(ctx context.Context, status *trade.OrderStatus, filter shared.Filter) ([]OrderDTO, error) {
	var dtos []OrderDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		var orders []trade.Order
		var err error
		if status != nil {
			orders, err = repos.Orders().FindByStatus(ctx, *status, filter)
		} else {
			orders, err = repos.Orders().FindAll(ctx, filter)
		}
		if err != nil {
			return err
		}
		dtos = make([]OrderDTO, 0, len(orders))
		for idx := range orders {
			dtos = append(dtos, ToOrderDTO(&orders[idx]))
		}
		return nil
	})
	return dtos, err
}

// UpdateStatus transitions an order to the target status, posting any stock
// side effects of the transition atomically with the status change.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target trade.OrderStatus) (*OrderDTO, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid order status")
	}

	var dto OrderDTO
	var touched []uuid.UUID
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		switch target {
		case trade.OrderStatusConfirmed:
			touched, events, err = s.confirm(ctx, repos, order)
		case trade.OrderStatusCancelled:
			touched, events, err = s.cancel(ctx, repos, order)
		case trade.OrderStatusPacked:
			err = order.Pack()
		case trade.OrderStatusShipped:
			err = order.Ship()
		case trade.OrderStatusDelivered:
			err = order.Deliver()
		default:
			err = shared.NewDomainError("INVALID_TRANSITION", "Orders cannot be reset to pending")
		}
		if err != nil {
			return err
		}

		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		dto = ToOrderDTO(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, productID := range touched {
		s.ledger.AfterStockChange(ctx, productID, nil)
	}
	s.ledger.PublishEvents(ctx, events)

	s.logger.Info("order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("status", target.String()))

	return &dto, nil
}

// confirm validates stock for every line before posting anything, so a
// multi-line order either debits all lines or none and the error names the
// problem instead of leaving a half-confirmed order behind.
func (s *OrderService) confirm(ctx context.Context, repos appledger.Repositories, order *trade.Order) ([]uuid.UUID, []shared.DomainEvent, error) {
	for _, item := range order.Items {
		product, err := repos.Products().FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if product.CurrentStock < item.Quantity {
			return nil, nil, shared.ErrInsufficientStock
		}
	}

	if err := order.Confirm(); err != nil {
		return nil, nil, err
	}

	var touched []uuid.UUID
	var events []shared.DomainEvent
	for _, item := range order.Items {
		_, pending, err := s.ledger.PostWithin(ctx, repos, appledger.PostMovementRequest{
			ProductID: item.ProductID,
			Quantity:  -item.Quantity,
			Reason:    ledger.ReasonSale,
			Reference: ledger.OrderRef(order.ID),
		})
		if err != nil {
			return nil, nil, err
		}
		touched = append(touched, item.ProductID)
		events = append(events, pending...)
	}
	return touched, events, nil
}

// cancel credits stock back for every line when the order had already been
// confirmed. A pending order never debited stock, so there is nothing to
// return.
func (s *OrderService) cancel(ctx context.Context, repos appledger.Repositories, order *trade.Order) ([]uuid.UUID, []shared.DomainEvent, error) {
	restock, err := order.Cancel()
	if err != nil {
		return nil, nil, err
	}
	if !restock {
		return nil, nil, nil
	}

	var touched []uuid.UUID
	var events []shared.DomainEvent
	for _, item := range order.Items {
		_, pending, err := s.ledger.PostWithin(ctx, repos, appledger.PostMovementRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Reason:    ledger.ReasonReturn,
			Reference: ledger.OrderRef(order.ID),
		})
		if err != nil {
			return nil, nil, err
		}
		touched = append(touched, item.ProductID)
		events = append(events, pending...)
	}
	return touched, events, nil
}

// ReplaceItems swaps the full item list of a pending order
func (s *OrderService) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []OrderItemInput) (*OrderDTO, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order requires at least one item")
	}

	var dto OrderDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.ClearItems(); err != nil {
			return err
		}
		for _, input := range items {
			product, err := repos.Products().FindByID(ctx, input.ProductID)
			if err != nil {
				return err
			}
			if _, err := order.AddItem(product.ID, product.Name, input.Quantity, product.SellingPrice); err != nil {
				return err
			}
		}
		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		dto = ToOrderDTO(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// RecordPayment records a customer payment against an order
func (s *OrderService) RecordPayment(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (*OrderDTO, error) {
	var dto OrderDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.RecordPayment(amount); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		dto = ToOrderDTO(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order payment recorded",
		zap.String("order_id", orderID.String()),
		zap.String("amount", amount.String()))

	return &dto, nil
}

// DeleteOrder deletes a pending or cancelled order. In-flight orders must be
// cancelled first and delivered orders are permanent records.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.CanDelete() {
			return shared.NewDomainError("INVALID_STATE", "Only pending or cancelled orders can be deleted")
		}
		return repos.Orders().Delete(ctx, orderID)
	})
}

// StatusSummary reports how many orders sit in each status
func (s *OrderService) StatusSummary(ctx context.Context) (*StatusSummaryDTO, error) {
	var summary StatusSummaryDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		counts, err := repos.Orders().CountByStatus(ctx)
		if err != nil {
			return err
		}
		summary.Counts = make(map[string]int64, len(counts))
		for status, count := range counts {
			summary.Counts[status.String()] = count
			summary.Total += count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
