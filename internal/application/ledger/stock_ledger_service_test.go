package ledger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	appledger "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/merchstock/backend/internal/domain/ledger"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupLedger(t *testing.T) (*appledger.StockLedgerService, *testutil.Bundle, *catalog.Product) {
	t.Helper()
	bundle := testutil.NewBundle()
	svc := appledger.NewStockLedgerService(bundle.Scope(), nil, nil, zap.NewNop())

	product, err := catalog.NewProduct("TEE-BLK-M", "Black Tee M", decimal.NewFromFloat(29.90))
	require.NoError(t, err)
	require.NoError(t, bundle.Products.Save(context.Background(), product))

	return svc, bundle, product
}

func seedStock(t *testing.T, svc *appledger.StockLedgerService, productID uuid.UUID, qty int64) {
	t.Helper()
	_, err := svc.PostBulkReceive(context.Background(), appledger.BulkReceiveRequest{
		ShipmentID: uuid.New(),
		Lines: []appledger.ReceiveLine{
			{ProductID: productID, Quantity: qty, UnitCost: decimal.NewFromInt(5), LandedUnitCost: decimal.NewFromInt(6)},
		},
	})
	require.NoError(t, err)
}

func TestStockLedgerService_PostMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("debit records movement and updates balance", func(t *testing.T) {
		svc, bundle, product := setupLedger(t)
		seedStock(t, svc, product.ID, 10)

		dto, err := svc.PostMovement(ctx, appledger.PostMovementRequest{
			ProductID: product.ID,
			Quantity:  -3,
			Reason:    ledger.ReasonSale,
			Reference: ledger.OrderRef(uuid.New()),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), dto.StockBefore)
		assert.Equal(t, int64(7), dto.StockAfter)
		assert.Equal(t, "OUT", dto.Type)

		updated, err := bundle.Products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), updated.CurrentStock)
	})

	t.Run("debit beyond stock is rejected and leaves no trace", func(t *testing.T) {
		svc, bundle, product := setupLedger(t)
		seedStock(t, svc, product.ID, 2)

		_, err := svc.PostMovement(ctx, appledger.PostMovementRequest{
			ProductID: product.ID,
			Quantity:  -5,
			Reason:    ledger.ReasonSale,
			Reference: ledger.OrderRef(uuid.New()),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		count, err := bundle.Movements.CountByProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count) // only the seed receipt

		updated, err := bundle.Products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated.CurrentStock)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _, _ := setupLedger(t)
		_, err := svc.PostMovement(ctx, appledger.PostMovementRequest{
			ProductID: uuid.New(),
			Quantity:  1,
			Reason:    ledger.ReasonFound,
			Reference: ledger.ManualRef(),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestStockLedgerService_PostBulkReceive(t *testing.T) {
	ctx := context.Background()

	t.Run("posts one movement per line with costs", func(t *testing.T) {
		svc, bundle, product := setupLedger(t)
		shipmentID := uuid.New()

		result, err := svc.PostBulkReceive(ctx, appledger.BulkReceiveRequest{
			ShipmentID: shipmentID,
			Lines: []appledger.ReceiveLine{
				{ProductID: product.ID, Quantity: 100, UnitCost: decimal.NewFromInt(5), LandedUnitCost: decimal.NewFromFloat(6.80)},
			},
		})
		require.NoError(t, err)
		assert.False(t, result.Replayed)
		require.Len(t, result.Movements, 1)
		assert.Equal(t, "SHIPMENT_RECEIVED", result.Movements[0].Reason)
		require.NotNil(t, result.Movements[0].LandedCost)
		assert.True(t, result.Movements[0].LandedCost.Equal(decimal.NewFromFloat(6.80)))

		updated, err := bundle.Products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), updated.CurrentStock)
		require.NotNil(t, updated.LandedCost)
		assert.True(t, updated.LandedCost.Equal(decimal.NewFromFloat(6.80)))
	})

	t.Run("replay is a no-op returning the original movements", func(t *testing.T) {
		svc, bundle, product := setupLedger(t)
		shipmentID := uuid.New()
		req := appledger.BulkReceiveRequest{
			ShipmentID: shipmentID,
			Lines: []appledger.ReceiveLine{
				{ProductID: product.ID, Quantity: 50, UnitCost: decimal.NewFromInt(5), LandedUnitCost: decimal.NewFromInt(6)},
			},
		}

		first, err := svc.PostBulkReceive(ctx, req)
		require.NoError(t, err)

		second, err := svc.PostBulkReceive(ctx, req)
		require.NoError(t, err)
		assert.True(t, second.Replayed)
		require.Len(t, second.Movements, 1)
		assert.Equal(t, first.Movements[0].ID, second.Movements[0].ID)

		updated, err := bundle.Products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), updated.CurrentStock)
	})

	t.Run("rejects empty lines", func(t *testing.T) {
		svc, _, _ := setupLedger(t)
		_, err := svc.PostBulkReceive(ctx, appledger.BulkReceiveRequest{ShipmentID: uuid.New()})
		assert.Error(t, err)
	})
}

func TestStockLedgerService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("posts manual adjustment with derived type", func(t *testing.T) {
		svc, _, product := setupLedger(t)
		seedStock(t, svc, product.ID, 10)

		dto, err := svc.AdjustStock(ctx, appledger.AdjustStockRequest{
			ProductID: product.ID,
			Quantity:  -2,
			Reason:    ledger.ReasonDamage,
			Notes:     "two units crushed in the warehouse",
		})
		require.NoError(t, err)
		assert.Equal(t, "OUT", dto.Type)
		assert.Equal(t, "DAMAGE", dto.Reason)
		assert.Equal(t, "MANUAL", dto.ReferenceType)
		assert.Equal(t, int64(8), dto.StockAfter)
	})

	t.Run("rejects non-manual reason", func(t *testing.T) {
		svc, _, product := setupLedger(t)
		_, err := svc.AdjustStock(ctx, appledger.AdjustStockRequest{
			ProductID: product.ID,
			Quantity:  1,
			Reason:    ledger.ReasonSale,
			Notes:     "long enough justification text",
		})
		assert.Error(t, err)
	})

	t.Run("rejects short justification", func(t *testing.T) {
		svc, _, product := setupLedger(t)
		_, err := svc.AdjustStock(ctx, appledger.AdjustStockRequest{
			ProductID: product.ID,
			Quantity:  1,
			Reason:    ledger.ReasonFound,
			Notes:     "found",
		})
		assert.Error(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		svc, _, product := setupLedger(t)
		_, err := svc.AdjustStock(ctx, appledger.AdjustStockRequest{
			ProductID: product.ID,
			Quantity:  0,
			Reason:    ledger.ReasonCorrection,
			Notes:     "long enough justification text",
		})
		assert.Error(t, err)
	})
}

func TestStockLedgerService_DeleteMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("reverses the movement quantity", func(t *testing.T) {
		svc, bundle, product := setupLedger(t)
		seedStock(t, svc, product.ID, 10)

		dto, err := svc.AdjustStock(ctx, appledger.AdjustStockRequest{
			ProductID: product.ID,
			Quantity:  5,
			Reason:    ledger.ReasonFound,
			Notes:     "recount found five extra units",
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteMovement(ctx, dto.ID))

		updated, err := bundle.Products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), updated.CurrentStock)

		_, err = svc.GetMovement(ctx, dto.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects reversal that would go negative", func(t *testing.T) {
		svc, bundle, product := setupLedger(t)
		seedStock(t, svc, product.ID, 10)

		movements, err := bundle.Movements.FindByProduct(ctx, product.ID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, movements, 1)
		receipt := movements[0]

		_, err = svc.PostMovement(ctx, appledger.PostMovementRequest{
			ProductID: product.ID,
			Quantity:  -8,
			Reason:    ledger.ReasonSale,
			Reference: ledger.OrderRef(uuid.New()),
		})
		require.NoError(t, err)

		// Stock is 2; deleting the +10 receipt would leave -8.
		err = svc.DeleteMovement(ctx, receipt.ID)
		assert.ErrorIs(t, err, shared.ErrWouldGoNegative)
	})
}

func TestStockLedgerService_GetStockSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _, product := setupLedger(t)
	seedStock(t, svc, product.ID, 20)

	snapshot, err := svc.GetStockSnapshot(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.SKU, snapshot.SKU)
	assert.Equal(t, int64(20), snapshot.CurrentStock)
	assert.True(t, snapshot.StockValue.Equal(decimal.NewFromInt(120)))
}
