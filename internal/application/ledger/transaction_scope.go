package ledger

import (
	"context"

	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/merchstock/backend/internal/domain/ledger"
	"github.com/merchstock/backend/internal/domain/logistics"
	"github.com/merchstock/backend/internal/domain/trade"
)

// Repositories bundles every repository participating in a transaction.
// Stock changes always touch at least the product and the movement log, and
// the fulfillment flows add their own aggregate, so one scope covers all of
// them rather than one per bounded context.
type Repositories interface {
	Products() catalog.ProductRepository
	Movements() ledger.StockMovementRepository
	Orders() trade.OrderRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	Shipments() logistics.ShipmentRepository
}

// TransactionScope executes a function within a database transaction. If the
// function returns an error the transaction is rolled back, otherwise it is
// committed. Optimistic lock conflicts surface as ErrConcurrencyConflict from
// the repositories inside the scope.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// NoOpRepositories is a plain repository bundle without transaction
// semantics, used by NoOpTransactionScope.
type NoOpRepositories struct {
	ProductRepo       catalog.ProductRepository
	MovementRepo      ledger.StockMovementRepository
	OrderRepo         trade.OrderRepository
	PurchaseOrderRepo trade.PurchaseOrderRepository
	ShipmentRepo      logistics.ShipmentRepository
}

func (r *NoOpRepositories) Products() catalog.ProductRepository           { return r.ProductRepo }
func (r *NoOpRepositories) Movements() ledger.StockMovementRepository     { return r.MovementRepo }
func (r *NoOpRepositories) Orders() trade.OrderRepository                 { return r.OrderRepo }
func (r *NoOpRepositories) PurchaseOrders() trade.PurchaseOrderRepository { return r.PurchaseOrderRepo }
func (r *NoOpRepositories) Shipments() logistics.ShipmentRepository       { return r.ShipmentRepo }

// NoOpTransactionScope runs the function directly against the given
// repositories without a real transaction. For tests.
type NoOpTransactionScope struct {
	Repos Repositories
}

// NewNoOpTransactionScope creates a no-op scope over the given repositories
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{Repos: repos}
}

// Execute runs the function without transaction semantics
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.Repos)
}
