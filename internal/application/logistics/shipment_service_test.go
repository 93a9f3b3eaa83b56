package logistics_test

import (
	"context"
	"testing"

	appledger "github.com/merchstock/backend/internal/application/ledger"
	applogistics "github.com/merchstock/backend/internal/application/logistics"
	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/merchstock/backend/internal/domain/logistics"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/domain/trade"
	"github.com/merchstock/backend/internal/infrastructure/strategy/allocation"
	"github.com/merchstock/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type shipmentFixture struct {
	bundle    *testutil.Bundle
	shipments *applogistics.ShipmentService
}

func newShipmentFixture(t *testing.T) *shipmentFixture {
	t.Helper()
	bundle := testutil.NewBundle()
	scope := bundle.Scope()
	ledgerSvc := appledger.NewStockLedgerService(scope, nil, nil, zap.NewNop())
	return &shipmentFixture{
		bundle:    bundle,
		shipments: applogistics.NewShipmentService(scope, ledgerSvc, allocation.NewAllocator(), zap.NewNop()),
	}
}

// confirmedPO seeds a confirmed purchase order with two weighted lines:
// 100 tees at 5.00 (0.2 kg) and 50 hoodies at 12.00 (0.6 kg).
func (f *shipmentFixture) confirmedPO(t *testing.T) (*trade.PurchaseOrder, *catalog.Product, *catalog.Product) {
	t.Helper()
	ctx := context.Background()

	tee, err := catalog.NewProduct("TEE-BLK-M", "Black Tee M", decimal.NewFromInt(30))
	require.NoError(t, err)
	require.NoError(t, tee.SetWeight(decimal.NewFromFloat(0.2)))
	require.NoError(t, f.bundle.Products.Save(ctx, tee))

	hoodie, err := catalog.NewProduct("HOD-GRY-L", "Grey Hoodie L", decimal.NewFromInt(60))
	require.NoError(t, err)
	require.NoError(t, hoodie.SetWeight(decimal.NewFromFloat(0.6)))
	require.NoError(t, f.bundle.Products.Save(ctx, hoodie))

	po, err := trade.NewPurchaseOrder("PO-2026-0001", "Shenzhen Textiles Co")
	require.NoError(t, err)
	_, err = po.AddItem(tee.ID, tee.Name, 100, decimal.NewFromInt(5))
	require.NoError(t, err)
	_, err = po.AddItem(hoodie.ID, hoodie.Name, 50, decimal.NewFromInt(12))
	require.NoError(t, err)
	require.NoError(t, po.TransitionTo(trade.PurchaseOrderStatusSent))
	require.NoError(t, po.TransitionTo(trade.PurchaseOrderStatusConfirmed))
	require.NoError(t, f.bundle.PurchaseOrders.Save(ctx, po))

	return po, tee, hoodie
}

func (f *shipmentFixture) createShipment(t *testing.T, po *trade.PurchaseOrder) *applogistics.ShipmentDTO {
	t.Helper()
	dto, err := f.shipments.CreateShipment(context.Background(), applogistics.CreateShipmentRequest{
		PurchaseOrderID: po.ID,
		Method:          logistics.ShipmentMethodSea,
		Carrier:         "Maersk",
		ShippingCost:    decimal.NewFromInt(300),
		CustomsDuty:     decimal.NewFromInt(120),
		OtherFees:       decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	return dto
}

func (f *shipmentFixture) deliver(t *testing.T, dto *applogistics.ShipmentDTO) *applogistics.ShipmentDTO {
	t.Helper()
	ctx := context.Background()
	_, err := f.shipments.UpdateStatus(ctx, dto.ID, logistics.ShipmentStatusInTransit)
	require.NoError(t, err)
	_, err = f.shipments.UpdateStatus(ctx, dto.ID, logistics.ShipmentStatusCustoms)
	require.NoError(t, err)
	delivered, err := f.shipments.UpdateStatus(ctx, dto.ID, logistics.ShipmentStatusDelivered)
	require.NoError(t, err)
	return delivered
}

func TestShipmentService_CreateShipment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates shipment and forces the purchase order to shipped", func(t *testing.T) {
		f := newShipmentFixture(t)
		po, _, _ := f.confirmedPO(t)

		dto := f.createShipment(t, po)
		assert.Equal(t, "PENDING", dto.Status)
		assert.Contains(t, dto.ShipmentNumber, "SHIP-")
		assert.True(t, dto.TotalCharges.Equal(decimal.NewFromInt(450)))

		updated, err := f.bundle.PurchaseOrders.FindByID(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.PurchaseOrderStatusShipped, updated.Status)
	})

	t.Run("second shipment for the same order is rejected", func(t *testing.T) {
		f := newShipmentFixture(t)
		po, _, _ := f.confirmedPO(t)
		f.createShipment(t, po)

		_, err := f.shipments.CreateShipment(ctx, applogistics.CreateShipmentRequest{
			PurchaseOrderID: po.ID,
			Method:          logistics.ShipmentMethodAir,
		})
		assert.ErrorIs(t, err, shared.ErrDuplicateShipment)
	})

	t.Run("rejected for a draft purchase order", func(t *testing.T) {
		f := newShipmentFixture(t)
		po, err := trade.NewPurchaseOrder("PO-2026-0002", "Supplier")
		require.NoError(t, err)
		require.NoError(t, f.bundle.PurchaseOrders.Save(ctx, po))

		_, err = f.shipments.CreateShipment(ctx, applogistics.CreateShipmentRequest{
			PurchaseOrderID: po.ID,
			Method:          logistics.ShipmentMethodSea,
		})
		assert.Error(t, err)
	})
}

func TestShipmentService_Deliver(t *testing.T) {
	ctx := context.Background()

	t.Run("receives stock at allocated landed cost", func(t *testing.T) {
		f := newShipmentFixture(t)
		po, tee, hoodie := f.confirmedPO(t)
		dto := f.createShipment(t, po)

		delivered := f.deliver(t, dto)
		assert.Equal(t, "DELIVERED", delivered.Status)
		assert.Equal(t, "WEIGHT", delivered.AllocationMethod)
		assert.NotNil(t, delivered.ActualArrival)

		// Weight shares: tees 20kg, hoodies 30kg of 50kg total.
		// 450 * 0.4 = 180 over 100 units -> 5.00 + 1.80 = 6.80
		// 450 * 0.6 = 270 over 50 units -> 12.00 + 5.40 = 17.40
		teeStock, err := f.bundle.Products.FindByID(ctx, tee.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), teeStock.CurrentStock)
		require.NotNil(t, teeStock.LandedCost)
		assert.True(t, teeStock.LandedCost.Equal(decimal.NewFromFloat(6.80)), "got %s", teeStock.LandedCost)

		hoodieStock, err := f.bundle.Products.FindByID(ctx, hoodie.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), hoodieStock.CurrentStock)
		assert.True(t, hoodieStock.LandedCost.Equal(decimal.NewFromFloat(17.40)), "got %s", hoodieStock.LandedCost)

		updatedPO, err := f.bundle.PurchaseOrders.FindByID(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.PurchaseOrderStatusReceived, updatedPO.Status)
		assert.True(t, updatedPO.IsFullyReceived())
	})

	t.Run("movement log carries both receipts", func(t *testing.T) {
		f := newShipmentFixture(t)
		po, tee, _ := f.confirmedPO(t)
		dto := f.createShipment(t, po)
		f.deliver(t, dto)

		count, err := f.bundle.Movements.CountByProduct(ctx, tee.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("cannot deliver before customs", func(t *testing.T) {
		f := newShipmentFixture(t)
		po, _, _ := f.confirmedPO(t)
		dto := f.createShipment(t, po)

		_, err := f.shipments.UpdateStatus(ctx, dto.ID, logistics.ShipmentStatusDelivered)
		assert.Error(t, err)
	})
}

func TestShipmentService_UpdateCharges(t *testing.T) {
	ctx := context.Background()
	f := newShipmentFixture(t)
	po, _, _ := f.confirmedPO(t)
	dto := f.createShipment(t, po)

	updated, err := f.shipments.UpdateCharges(ctx, dto.ID, applogistics.UpdateChargesRequest{
		ShippingCost: decimal.NewFromInt(500),
		CustomsDuty:  decimal.NewFromInt(100),
		OtherFees:    decimal.Zero,
	})
	require.NoError(t, err)
	assert.True(t, updated.TotalCharges.Equal(decimal.NewFromInt(600)))

	t.Run("frozen after delivery", func(t *testing.T) {
		f.deliver(t, dto)
		_, err := f.shipments.UpdateCharges(ctx, dto.ID, applogistics.UpdateChargesRequest{
			ShippingCost: decimal.NewFromInt(1),
		})
		assert.Error(t, err)
	})
}

func TestShipmentService_Payments(t *testing.T) {
	ctx := context.Background()
	f := newShipmentFixture(t)
	po, _, _ := f.confirmedPO(t)
	dto := f.createShipment(t, po) // charges 450

	paid, err := f.shipments.RecordPayment(ctx, dto.ID, decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", paid.PaymentStatus)

	paid, err = f.shipments.RecordPayment(ctx, dto.ID, decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.PaymentStatus)
	assert.True(t, paid.PaidAmount.Equal(decimal.NewFromInt(450)))

	_, err = f.shipments.RecordPayment(ctx, dto.ID, decimal.NewFromInt(1))
	assert.Error(t, err)
}
