package trade_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	appledger "github.com/merchstock/backend/internal/application/ledger"
	apptrade "github.com/merchstock/backend/internal/application/trade"
	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/trade"
	"github.com/merchstock/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderFixture struct {
	bundle *testutil.Bundle
	ledger *appledger.StockLedgerService
	orders *apptrade.OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	bundle := testutil.NewBundle()
	scope := bundle.Scope()
	ledgerSvc := appledger.NewStockLedgerService(scope, nil, nil, zap.NewNop())
	return &orderFixture{
		bundle: bundle,
		ledger: ledgerSvc,
		orders: apptrade.NewOrderService(scope, ledgerSvc, zap.NewNop()),
	}
}

func (f *orderFixture) addProduct(t *testing.T, sku string, price decimal.Decimal, stock int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(sku, "Product "+sku, price)
	require.NoError(t, err)
	require.NoError(t, f.bundle.Products.Save(context.Background(), product))
	if stock > 0 {
		_, err = f.ledger.PostBulkReceive(context.Background(), appledger.BulkReceiveRequest{
			ShipmentID: uuid.New(),
			Lines: []appledger.ReceiveLine{
				{ProductID: product.ID, Quantity: stock, UnitCost: decimal.NewFromInt(5), LandedUnitCost: decimal.NewFromInt(6)},
			},
		})
		require.NoError(t, err)
	}
	return product
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.addProduct(t, "TEE-1", decimal.NewFromFloat(29.90), 0)

	dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
		CustomerName: "Alex Chen",
		Items:        []apptrade.OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingFee:  decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", dto.Status)
	assert.Contains(t, dto.OrderNumber, "ORD-")
	assert.True(t, dto.Total.Equal(decimal.NewFromFloat(64.80)), "got %s", dto.Total)

	t.Run("price is snapshotted from the catalog", func(t *testing.T) {
		assert.True(t, dto.Items[0].UnitPrice.Equal(decimal.NewFromFloat(29.90)))
	})

	t.Run("no stock touched before confirm", func(t *testing.T) {
		p, err := f.bundle.Products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), p.CurrentStock)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{CustomerName: "X"})
		assert.Error(t, err)
	})
}

func TestOrderService_CreateOrder_NumberCollision(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.addProduct(t, "TEE-1", decimal.NewFromFloat(10.00), 0)

	// Occupy the number the generator will hand out next, the way a
	// concurrent insert would between generation and save.
	year := time.Now().Year()
	taken, err := trade.NewOrder(fmt.Sprintf("ORD-%d-0001", year), "Rival")
	require.NoError(t, err)
	require.NoError(t, f.bundle.Orders.Save(ctx, taken))

	dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
		CustomerName: "Alex Chen",
		Items:        []apptrade.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ORD-%d-0002", year), dto.OrderNumber)
}

func TestOrderService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm debits every line", func(t *testing.T) {
		f := newOrderFixture(t)
		p1 := f.addProduct(t, "TEE-1", decimal.NewFromInt(30), 10)
		p2 := f.addProduct(t, "TEE-2", decimal.NewFromInt(40), 5)

		dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
			CustomerName: "Alex Chen",
			Items: []apptrade.OrderItemInput{
				{ProductID: p1.ID, Quantity: 3},
				{ProductID: p2.ID, Quantity: 2},
			},
		})
		require.NoError(t, err)

		updated, err := f.orders.UpdateStatus(ctx, dto.ID, trade.OrderStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", updated.Status)

		s1, _ := f.bundle.Products.FindByID(ctx, p1.ID)
		s2, _ := f.bundle.Products.FindByID(ctx, p2.ID)
		assert.Equal(t, int64(7), s1.CurrentStock)
		assert.Equal(t, int64(3), s2.CurrentStock)

		count, err := f.bundle.Movements.CountByProduct(ctx, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count) // seed receipt plus sale
	})

	t.Run("one short line blocks the whole confirm", func(t *testing.T) {
		f := newOrderFixture(t)
		p1 := f.addProduct(t, "TEE-1", decimal.NewFromInt(30), 10)
		p2 := f.addProduct(t, "TEE-2", decimal.NewFromInt(40), 1)

		dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
			CustomerName: "Alex Chen",
			Items: []apptrade.OrderItemInput{
				{ProductID: p1.ID, Quantity: 3},
				{ProductID: p2.ID, Quantity: 2},
			},
		})
		require.NoError(t, err)

		_, err = f.orders.UpdateStatus(ctx, dto.ID, trade.OrderStatusConfirmed)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		// Nothing was debited, not even the line that had stock.
		s1, _ := f.bundle.Products.FindByID(ctx, p1.ID)
		assert.Equal(t, int64(10), s1.CurrentStock)

		order, err := f.orders.GetOrder(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", order.Status)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel of pending leaves stock alone", func(t *testing.T) {
		f := newOrderFixture(t)
		p := f.addProduct(t, "TEE-1", decimal.NewFromInt(30), 10)

		dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
			CustomerName: "Alex Chen",
			Items:        []apptrade.OrderItemInput{{ProductID: p.ID, Quantity: 4}},
		})
		require.NoError(t, err)

		_, err = f.orders.UpdateStatus(ctx, dto.ID, trade.OrderStatusCancelled)
		require.NoError(t, err)

		stock, _ := f.bundle.Products.FindByID(ctx, p.ID)
		assert.Equal(t, int64(10), stock.CurrentStock)

		count, _ := f.bundle.Movements.CountByProduct(ctx, p.ID)
		assert.Equal(t, int64(1), count) // only the seed receipt
	})

	t.Run("cancel after confirm credits stock back", func(t *testing.T) {
		f := newOrderFixture(t)
		p := f.addProduct(t, "TEE-1", decimal.NewFromInt(30), 10)

		dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
			CustomerName: "Alex Chen",
			Items:        []apptrade.OrderItemInput{{ProductID: p.ID, Quantity: 4}},
		})
		require.NoError(t, err)

		_, err = f.orders.UpdateStatus(ctx, dto.ID, trade.OrderStatusConfirmed)
		require.NoError(t, err)
		stock, _ := f.bundle.Products.FindByID(ctx, p.ID)
		require.Equal(t, int64(6), stock.CurrentStock)

		_, err = f.orders.UpdateStatus(ctx, dto.ID, trade.OrderStatusCancelled)
		require.NoError(t, err)

		stock, _ = f.bundle.Products.FindByID(ctx, p.ID)
		assert.Equal(t, int64(10), stock.CurrentStock)
	})

	t.Run("cancel after ship still credits stock back", func(t *testing.T) {
		f := newOrderFixture(t)
		p := f.addProduct(t, "TEE-1", decimal.NewFromInt(30), 10)

		dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
			CustomerName: "Alex Chen",
			Items:        []apptrade.OrderItemInput{{ProductID: p.ID, Quantity: 4}},
		})
		require.NoError(t, err)

		for _, target := range []trade.OrderStatus{trade.OrderStatusConfirmed, trade.OrderStatusPacked, trade.OrderStatusShipped} {
			_, err = f.orders.UpdateStatus(ctx, dto.ID, target)
			require.NoError(t, err)
		}

		_, err = f.orders.UpdateStatus(ctx, dto.ID, trade.OrderStatusCancelled)
		require.NoError(t, err)

		stock, _ := f.bundle.Products.FindByID(ctx, p.ID)
		assert.Equal(t, int64(10), stock.CurrentStock)
	})
}

func TestOrderService_ReplaceItems(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p1 := f.addProduct(t, "TEE-1", decimal.NewFromInt(30), 10)
	p2 := f.addProduct(t, "TEE-2", decimal.NewFromInt(50), 10)

	dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
		CustomerName: "Alex Chen",
		Items:        []apptrade.OrderItemInput{{ProductID: p1.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	replaced, err := f.orders.ReplaceItems(ctx, dto.ID, []apptrade.OrderItemInput{{ProductID: p2.ID, Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, replaced.Items, 1)
	assert.Equal(t, p2.ID, replaced.Items[0].ProductID)
	assert.True(t, replaced.Total.Equal(decimal.NewFromInt(100)))

	t.Run("rejected once confirmed", func(t *testing.T) {
		_, err := f.orders.UpdateStatus(ctx, dto.ID, trade.OrderStatusConfirmed)
		require.NoError(t, err)
		_, err = f.orders.ReplaceItems(ctx, dto.ID, []apptrade.OrderItemInput{{ProductID: p1.ID, Quantity: 1}})
		assert.Error(t, err)
	})
}

func TestOrderService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "TEE-1", decimal.NewFromInt(50), 10)

	dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
		CustomerName: "Alex Chen",
		Items:        []apptrade.OrderItemInput{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	paid, err := f.orders.RecordPayment(ctx, dto.ID, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", paid.PaymentStatus)

	paid, err = f.orders.RecordPayment(ctx, dto.ID, decimal.NewFromInt(60))
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.PaymentStatus)

	_, err = f.orders.RecordPayment(ctx, dto.ID, decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "TEE-1", decimal.NewFromInt(50), 10)

	dto, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
		CustomerName: "Alex Chen",
		Items:        []apptrade.OrderItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	t.Run("confirmed order cannot be deleted", func(t *testing.T) {
		_, err := f.orders.UpdateStatus(ctx, dto.ID, trade.OrderStatusConfirmed)
		require.NoError(t, err)
		assert.Error(t, f.orders.DeleteOrder(ctx, dto.ID))
	})

	t.Run("cancelled order can be deleted", func(t *testing.T) {
		_, err := f.orders.UpdateStatus(ctx, dto.ID, trade.OrderStatusCancelled)
		require.NoError(t, err)
		require.NoError(t, f.orders.DeleteOrder(ctx, dto.ID))
		_, err = f.orders.GetOrder(ctx, dto.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_StatusSummary(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "TEE-1", decimal.NewFromInt(50), 100)

	for range 3 {
		_, err := f.orders.CreateOrder(ctx, apptrade.CreateOrderRequest{
			CustomerName: "Alex Chen",
			Items:        []apptrade.OrderItemInput{{ProductID: p.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	summary, err := f.orders.StatusSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, int64(3), summary.Counts["PENDING"])
}
