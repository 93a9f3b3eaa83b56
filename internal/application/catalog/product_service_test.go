package catalog_test

import (
	"context"
	"testing"

	appcatalog "github.com/merchstock/backend/internal/application/catalog"
	appledger "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/domain/ledger"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type productFixture struct {
	bundle   *testutil.Bundle
	products *appcatalog.ProductService
	ledger   *appledger.StockLedgerService
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	bundle := testutil.NewBundle()
	scope := bundle.Scope()
	return &productFixture{
		bundle:   bundle,
		products: appcatalog.NewProductService(scope, zap.NewNop()),
		ledger:   appledger.NewStockLedgerService(scope, nil, nil, zap.NewNop()),
	}
}

func (f *productFixture) createProduct(t *testing.T, sku string) *appcatalog.ProductDTO {
	t.Helper()
	weight := decimal.NewFromFloat(0.2)
	dto, err := f.products.CreateProduct(context.Background(), appcatalog.CreateProductRequest{
		SKU:          sku,
		Name:         "Product " + sku,
		SellingPrice: decimal.NewFromInt(30),
		WeightKg:     &weight,
		ReorderLevel: 10,
	})
	require.NoError(t, err)
	return dto
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)

	dto := f.createProduct(t, "TEE-BLK-M")
	assert.Equal(t, int64(0), dto.CurrentStock)
	assert.Nil(t, dto.LandedCost)
	assert.Equal(t, int64(10), dto.ReorderLevel)

	t.Run("duplicate SKU rejected", func(t *testing.T) {
		_, err := f.products.CreateProduct(ctx, appcatalog.CreateProductRequest{
			SKU:          "TEE-BLK-M",
			Name:         "Another",
			SellingPrice: decimal.NewFromInt(25),
		})
		assert.Error(t, err)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	dto := f.createProduct(t, "TEE-BLK-M")

	name := "Black Tee Medium"
	price := decimal.NewFromInt(35)
	updated, err := f.products.UpdateProduct(ctx, dto.ID, appcatalog.UpdateProductRequest{
		Name:         &name,
		SellingPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "Black Tee Medium", updated.Name)
	assert.True(t, updated.SellingPrice.Equal(price))

	t.Run("empty name rejected", func(t *testing.T) {
		empty := ""
		_, err := f.products.UpdateProduct(ctx, dto.ID, appcatalog.UpdateProductRequest{Name: &empty})
		assert.Error(t, err)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes product without history", func(t *testing.T) {
		f := newProductFixture(t)
		dto := f.createProduct(t, "TEE-BLK-M")

		require.NoError(t, f.products.DeleteProduct(ctx, dto.ID))
		_, err := f.products.GetProduct(ctx, dto.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("protected once movements exist", func(t *testing.T) {
		f := newProductFixture(t)
		dto := f.createProduct(t, "TEE-BLK-M")

		_, err := f.ledger.AdjustStock(ctx, appledger.AdjustStockRequest{
			ProductID: dto.ID,
			Quantity:  5,
			Reason:    ledger.ReasonCorrection,
			Notes:     "initial stock count",
		})
		require.NoError(t, err)

		assert.Error(t, f.products.DeleteProduct(ctx, dto.ID))
	})
}

func TestProductService_ListBelowReorderLevel(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	low := f.createProduct(t, "TEE-BLK-M") // reorder level 10, stock 0

	_, err := f.products.CreateProduct(ctx, appcatalog.CreateProductRequest{
		SKU:          "HOD-GRY-L",
		Name:         "Grey Hoodie L",
		SellingPrice: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	dtos, err := f.products.ListBelowReorderLevel(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, low.ID, dtos[0].ID)
}
