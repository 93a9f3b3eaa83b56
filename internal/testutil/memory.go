// Package testutil provides in-memory repository implementations for
// application service tests. They honor the optimistic locking contract and
// the unique document number indexes of the real repositories but hold
// everything in maps.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	appledger "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/merchstock/backend/internal/domain/ledger"
	"github.com/merchstock/backend/internal/domain/logistics"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/trade"
)

// Bundle wires all in-memory repositories together with a no-op scope
type Bundle struct {
	Products       *MemoryProducts
	Movements      *MemoryMovements
	Orders         *MemoryOrders
	PurchaseOrders *MemoryPurchaseOrders
	Shipments      *MemoryShipments
}

// NewBundle creates a fresh set of empty in-memory repositories
func NewBundle() *Bundle {
	return &Bundle{
		Products:       NewMemoryProducts(),
		Movements:      NewMemoryMovements(),
		Orders:         NewMemoryOrders(),
		PurchaseOrders: NewMemoryPurchaseOrders(),
		Shipments:      NewMemoryShipments(),
	}
}

// Scope returns a no-op transaction scope over the bundle
func (b *Bundle) Scope() appledger.TransactionScope {
	return appledger.NewNoOpTransactionScope(&appledger.NoOpRepositories{
		ProductRepo:       b.Products,
		MovementRepo:      b.Movements,
		OrderRepo:         b.Orders,
		PurchaseOrderRepo: b.PurchaseOrders,
		ShipmentRepo:      b.Shipments,
	})
}

// MemoryProducts is an in-memory catalog.ProductRepository
type MemoryProducts struct {
	mu    sync.Mutex
	items map[uuid.UUID]catalog.Product
}

// NewMemoryProducts creates an empty product repository
func NewMemoryProducts() *MemoryProducts {
	return &MemoryProducts{items: make(map[uuid.UUID]catalog.Product)}
}

func (r *MemoryProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.items[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *MemoryProducts) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *MemoryProducts) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]catalog.Product, 0, len(r.items))
	for _, p := range r.items {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *MemoryProducts) FindBelowReorderLevel(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]catalog.Product, 0)
	for _, p := range r.items {
		if p.IsBelowReorderLevel() {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *MemoryProducts) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[product.ID] = *product
	return nil
}

func (r *MemoryProducts) SaveWithLock(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != product.Version {
		return shared.ErrConcurrencyConflict
	}
	product.Version++
	r.items[product.ID] = *product
	return nil
}

func (r *MemoryProducts) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryProducts) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *MemoryProducts) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

// MemoryMovements is an in-memory ledger.StockMovementRepository
type MemoryMovements struct {
	mu    sync.Mutex
	items []ledger.StockMovement
}

// NewMemoryMovements creates an empty movement repository
func NewMemoryMovements() *MemoryMovements {
	return &MemoryMovements{}
}

func (r *MemoryMovements) FindByID(_ context.Context, id uuid.UUID) (*ledger.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.items {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *MemoryMovements) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]ledger.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]ledger.StockMovement, 0)
	for idx := len(r.items) - 1; idx >= 0; idx-- {
		if r.items[idx].ProductID == productID {
			result = append(result, r.items[idx])
		}
	}
	return result, nil
}

func (r *MemoryMovements) FindByReference(_ context.Context, ref ledger.MovementRef) ([]ledger.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]ledger.StockMovement, 0)
	for _, m := range r.items {
		if m.Reference.Type != ref.Type {
			continue
		}
		if ref.ID != nil && (m.Reference.ID == nil || *m.Reference.ID != *ref.ID) {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

func (r *MemoryMovements) FindByDateRange(_ context.Context, start, end time.Time, _ shared.Filter) ([]ledger.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]ledger.StockMovement, 0)
	for _, m := range r.items {
		if !m.CreatedAt.Before(start) && !m.CreatedAt.After(end) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *MemoryMovements) Create(_ context.Context, movement *ledger.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *movement)
	return nil
}

func (r *MemoryMovements) CreateBatch(ctx context.Context, movements []*ledger.StockMovement) error {
	for _, m := range movements {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryMovements) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for idx, m := range r.items {
		if m.ID == id {
			r.items = append(r.items[:idx], r.items[idx+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *MemoryMovements) CountByProduct(_ context.Context, productID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.items {
		if m.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryMovements) SumQuantityByProduct(_ context.Context, productID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, m := range r.items {
		if m.ProductID == productID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

// MemoryOrders is an in-memory trade.OrderRepository
type MemoryOrders struct {
	mu    sync.Mutex
	items map[uuid.UUID]trade.Order
	seq   int
}

// NewMemoryOrders creates an empty order repository
func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{items: make(map[uuid.UUID]trade.Order)}
}

func (r *MemoryOrders) FindByID(_ context.Context, id uuid.UUID) (*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func (r *MemoryOrders) FindByOrderNumber(_ context.Context, orderNumber string) (*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.items {
		if o.OrderNumber == orderNumber {
			return &o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *MemoryOrders) FindAll(_ context.Context, _ shared.Filter) ([]trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]trade.Order, 0, len(r.items))
	for _, o := range r.items {
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *MemoryOrders) FindByStatus(_ context.Context, status trade.OrderStatus, _ shared.Filter) ([]trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]trade.Order, 0)
	for _, o := range r.items {
		if o.Status == status {
			result = append(result, o)
		}
	}
	return result, nil
}

func (r *MemoryOrders) Save(_ context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.items {
		if id != order.ID && existing.OrderNumber == order.OrderNumber {
			return shared.ErrAlreadyExists
		}
	}
	r.items[order.ID] = *order
	return nil
}

func (r *MemoryOrders) SaveWithLock(_ context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[order.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != order.Version {
		return shared.ErrConcurrencyConflict
	}
	order.Version++
	r.items[order.ID] = *order
	return nil
}

func (r *MemoryOrders) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryOrders) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *MemoryOrders) CountByStatus(_ context.Context) (map[trade.OrderStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[trade.OrderStatus]int64)
	for _, o := range r.items {
		result[o.Status]++
	}
	return result, nil
}

func (r *MemoryOrders) NextOrderNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("ORD-%d-%04d", time.Now().Year(), r.seq), nil
}

// MemoryPurchaseOrders is an in-memory trade.PurchaseOrderRepository
type MemoryPurchaseOrders struct {
	mu    sync.Mutex
	items map[uuid.UUID]trade.PurchaseOrder
	seq   int
}

// NewMemoryPurchaseOrders creates an empty purchase order repository
func NewMemoryPurchaseOrders() *MemoryPurchaseOrders {
	return &MemoryPurchaseOrders{items: make(map[uuid.UUID]trade.PurchaseOrder)}
}

func (r *MemoryPurchaseOrders) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &po, nil
}

func (r *MemoryPurchaseOrders) FindByPONumber(_ context.Context, poNumber string) (*trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, po := range r.items {
		if po.PONumber == poNumber {
			return &po, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *MemoryPurchaseOrders) FindAll(_ context.Context, _ shared.Filter) ([]trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]trade.PurchaseOrder, 0, len(r.items))
	for _, po := range r.items {
		result = append(result, po)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *MemoryPurchaseOrders) FindByStatus(_ context.Context, status trade.PurchaseOrderStatus, _ shared.Filter) ([]trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]trade.PurchaseOrder, 0)
	for _, po := range r.items {
		if po.Status == status {
			result = append(result, po)
		}
	}
	return result, nil
}

func (r *MemoryPurchaseOrders) Save(_ context.Context, po *trade.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.items {
		if id != po.ID && existing.PONumber == po.PONumber {
			return shared.ErrAlreadyExists
		}
	}
	r.items[po.ID] = *po
	return nil
}

func (r *MemoryPurchaseOrders) SaveWithLock(_ context.Context, po *trade.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[po.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != po.Version {
		return shared.ErrConcurrencyConflict
	}
	po.Version++
	r.items[po.ID] = *po
	return nil
}

func (r *MemoryPurchaseOrders) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryPurchaseOrders) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *MemoryPurchaseOrders) NextPONumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("PO-%d-%04d", time.Now().Year(), r.seq), nil
}

// MemoryShipments is an in-memory logistics.ShipmentRepository
type MemoryShipments struct {
	mu    sync.Mutex
	items map[uuid.UUID]logistics.Shipment
	seq   int
}

// NewMemoryShipments creates an empty shipment repository
func NewMemoryShipments() *MemoryShipments {
	return &MemoryShipments{items: make(map[uuid.UUID]logistics.Shipment)}
}

func (r *MemoryShipments) FindByID(_ context.Context, id uuid.UUID) (*logistics.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (r *MemoryShipments) FindByShipmentNumber(_ context.Context, shipmentNumber string) (*logistics.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.ShipmentNumber == shipmentNumber {
			return &s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *MemoryShipments) FindByPurchaseOrder(_ context.Context, purchaseOrderID uuid.UUID) (*logistics.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.PurchaseOrderID == purchaseOrderID {
			return &s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *MemoryShipments) ExistsForPurchaseOrder(_ context.Context, purchaseOrderID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.PurchaseOrderID == purchaseOrderID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryShipments) FindAll(_ context.Context, _ shared.Filter) ([]logistics.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]logistics.Shipment, 0, len(r.items))
	for _, s := range r.items {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *MemoryShipments) FindByStatus(_ context.Context, status logistics.ShipmentStatus, _ shared.Filter) ([]logistics.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]logistics.Shipment, 0)
	for _, s := range r.items {
		if s.Status == status {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *MemoryShipments) Save(_ context.Context, shipment *logistics.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.items {
		if id != shipment.ID && existing.ShipmentNumber == shipment.ShipmentNumber {
			return shared.ErrAlreadyExists
		}
	}
	r.items[shipment.ID] = *shipment
	return nil
}

func (r *MemoryShipments) SaveWithLock(_ context.Context, shipment *logistics.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[shipment.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != shipment.Version {
		return shared.ErrConcurrencyConflict
	}
	shipment.Version++
	r.items[shipment.ID] = *shipment
	return nil
}

func (r *MemoryShipments) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryShipments) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *MemoryShipments) NextShipmentNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("SHIP-%d-%04d", time.Now().Year(), r.seq), nil
}
