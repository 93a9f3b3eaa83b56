package trade_test

import (
	"context"
	"testing"

	apptrade "github.com/merchstock/backend/internal/application/trade"
	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/merchstock/backend/internal/domain/logistics"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/trade"
	"github.com/merchstock/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type poFixture struct {
	bundle *testutil.Bundle
	pos    *apptrade.PurchaseOrderService
}

func newPOFixture(t *testing.T) *poFixture {
	t.Helper()
	bundle := testutil.NewBundle()
	return &poFixture{
		bundle: bundle,
		pos:    apptrade.NewPurchaseOrderService(bundle.Scope(), zap.NewNop()),
	}
}

func (f *poFixture) addProduct(t *testing.T, sku string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(sku, "Product "+sku, decimal.NewFromInt(30))
	require.NoError(t, err)
	require.NoError(t, f.bundle.Products.Save(context.Background(), product))
	return product
}

func (f *poFixture) createPO(t *testing.T) *apptrade.PurchaseOrderDTO {
	t.Helper()
	product := f.addProduct(t, "TEE-BLK-M")
	dto, err := f.pos.CreatePurchaseOrder(context.Background(), apptrade.CreatePurchaseOrderRequest{
		SupplierName:     "Shenzhen Textiles Co",
		Items:            []apptrade.POItemInput{{ProductID: product.ID, Quantity: 100, UnitCost: decimal.NewFromInt(5)}},
		ShippingEstimate: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	return dto
}

func TestPurchaseOrderService_Create(t *testing.T) {
	f := newPOFixture(t)
	dto := f.createPO(t)

	assert.Equal(t, "DRAFT", dto.Status)
	assert.Contains(t, dto.PONumber, "PO-")
	assert.True(t, dto.TotalCost.Equal(decimal.NewFromInt(550)))
	assert.Equal(t, int64(0), dto.Items[0].ReceivedQty)
}

func TestPurchaseOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("walks the negotiation path both ways", func(t *testing.T) {
		f := newPOFixture(t)
		dto := f.createPO(t)

		updated, err := f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusSent)
		require.NoError(t, err)
		assert.Equal(t, "SENT", updated.Status)

		updated, err = f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", updated.Status)

		updated, err = f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusSent)
		require.NoError(t, err)
		assert.Equal(t, "SENT", updated.Status)
	})

	t.Run("shipped without a shipment is blocked", func(t *testing.T) {
		f := newPOFixture(t)
		dto := f.createPO(t)
		_, err := f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusSent)
		require.NoError(t, err)
		_, err = f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusConfirmed)
		require.NoError(t, err)
		_, err = f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusProducing)
		require.NoError(t, err)

		_, err = f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusShipped)
		assert.ErrorIs(t, err, shared.ErrMissingShipment)
	})

	t.Run("shipped with a linked shipment passes", func(t *testing.T) {
		f := newPOFixture(t)
		dto := f.createPO(t)
		for _, target := range []trade.PurchaseOrderStatus{
			trade.PurchaseOrderStatusSent,
			trade.PurchaseOrderStatusConfirmed,
			trade.PurchaseOrderStatusProducing,
		} {
			_, err := f.pos.UpdateStatus(ctx, dto.ID, target)
			require.NoError(t, err)
		}

		shipment, err := logistics.NewShipment("SHIP-2026-0001", dto.ID, logistics.ShipmentMethodSea)
		require.NoError(t, err)
		require.NoError(t, f.bundle.Shipments.Save(ctx, shipment))

		updated, err := f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusShipped)
		require.NoError(t, err)
		assert.Equal(t, "SHIPPED", updated.Status)
	})

	t.Run("received cannot be requested directly", func(t *testing.T) {
		f := newPOFixture(t)
		dto := f.createPO(t)
		_, err := f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusReceived)
		assert.Error(t, err)
	})
}

func TestPurchaseOrderService_ReplaceItems(t *testing.T) {
	ctx := context.Background()
	f := newPOFixture(t)
	dto := f.createPO(t)
	other := f.addProduct(t, "HOD-1")

	replaced, err := f.pos.ReplaceItems(ctx, dto.ID, []apptrade.POItemInput{
		{ProductID: other.ID, Quantity: 20, UnitCost: decimal.NewFromInt(12)},
	})
	require.NoError(t, err)
	require.Len(t, replaced.Items, 1)
	assert.True(t, replaced.Subtotal.Equal(decimal.NewFromInt(240)))

	t.Run("rejected once sent", func(t *testing.T) {
		_, err := f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusSent)
		require.NoError(t, err)
		_, err = f.pos.ReplaceItems(ctx, dto.ID, []apptrade.POItemInput{
			{ProductID: other.ID, Quantity: 5, UnitCost: decimal.NewFromInt(12)},
		})
		assert.Error(t, err)
	})
}

func TestPurchaseOrderService_Payments(t *testing.T) {
	ctx := context.Background()
	f := newPOFixture(t)
	dto := f.createPO(t) // total 550

	paid, err := f.pos.RecordPayment(ctx, dto.ID, decimal.NewFromInt(550))
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.PaymentStatus)
}

func TestPurchaseOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newPOFixture(t)
	dto := f.createPO(t)

	t.Run("draft can be deleted", func(t *testing.T) {
		require.NoError(t, f.pos.DeletePurchaseOrder(ctx, dto.ID))
		_, err := f.pos.GetPurchaseOrder(ctx, dto.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sent cannot be deleted", func(t *testing.T) {
		dto := f.createPO(t)
		_, err := f.pos.UpdateStatus(ctx, dto.ID, trade.PurchaseOrderStatusSent)
		require.NoError(t, err)
		assert.Error(t, f.pos.DeletePurchaseOrder(ctx, dto.ID))
	})
}
