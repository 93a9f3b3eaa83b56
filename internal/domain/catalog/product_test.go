package catalog

import (
	"testing"

	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("TEE-BLK-M", "Black Tee M", decimal.NewFromFloat(29.90))
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with zero stock", func(t *testing.T) {
		p := newTestProduct(t)
		assert.Equal(t, "TEE-BLK-M", p.SKU)
		assert.Equal(t, int64(0), p.CurrentStock)
		assert.Nil(t, p.LandedCost)
		assert.False(t, p.HasCostBasis())
	})

	t.Run("rejects empty sku", func(t *testing.T) {
		_, err := NewProduct("", "Name", decimal.NewFromInt(1))
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("SKU-1", "Name", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestProduct_ApplyQuantityChange(t *testing.T) {
	t.Run("applies positive delta", func(t *testing.T) {
		p := newTestProduct(t)
		before, after, err := p.ApplyQuantityChange(10)
		require.NoError(t, err)
		assert.Equal(t, int64(0), before)
		assert.Equal(t, int64(10), after)
		assert.Equal(t, int64(10), p.CurrentStock)
	})

	t.Run("applies negative delta", func(t *testing.T) {
		p := newTestProduct(t)
		p.CurrentStock = 10
		before, after, err := p.ApplyQuantityChange(-4)
		require.NoError(t, err)
		assert.Equal(t, int64(10), before)
		assert.Equal(t, int64(6), after)
	})

	t.Run("rejects change that would go negative", func(t *testing.T) {
		p := newTestProduct(t)
		p.CurrentStock = 3
		_, _, err := p.ApplyQuantityChange(-4)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(3), p.CurrentStock)
	})

	t.Run("emits event when debit crosses reorder level", func(t *testing.T) {
		p := newTestProduct(t)
		p.CurrentStock = 10
		require.NoError(t, p.SetReorderLevel(8))

		_, _, err := p.ApplyQuantityChange(-5)
		require.NoError(t, err)

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductBelowReorderLevel, events[0].EventType())
	})

	t.Run("no event on credit even below reorder level", func(t *testing.T) {
		p := newTestProduct(t)
		require.NoError(t, p.SetReorderLevel(100))

		_, _, err := p.ApplyQuantityChange(5)
		require.NoError(t, err)
		assert.Empty(t, p.GetDomainEvents())
	})
}

func TestProduct_ApplyReceipt(t *testing.T) {
	t.Run("first receipt sets cost basis", func(t *testing.T) {
		p := newTestProduct(t)
		before, after, err := p.ApplyReceipt(100, decimal.NewFromFloat(5.50))
		require.NoError(t, err)
		assert.Equal(t, int64(0), before)
		assert.Equal(t, int64(100), after)
		require.NotNil(t, p.LandedCost)
		assert.True(t, p.LandedCost.Equal(decimal.NewFromFloat(5.50)))
	})

	t.Run("second receipt computes weighted average", func(t *testing.T) {
		p := newTestProduct(t)
		_, _, err := p.ApplyReceipt(100, decimal.NewFromInt(5))
		require.NoError(t, err)

		// (100*5 + 50*8) / 150 = 6
		_, after, err := p.ApplyReceipt(50, decimal.NewFromInt(8))
		require.NoError(t, err)
		assert.Equal(t, int64(150), after)
		assert.True(t, p.LandedCost.Equal(decimal.NewFromInt(6)), "got %s", p.LandedCost)
	})

	t.Run("average rounds to two decimals", func(t *testing.T) {
		p := newTestProduct(t)
		_, _, err := p.ApplyReceipt(3, decimal.NewFromInt(10))
		require.NoError(t, err)
		_, _, err = p.ApplyReceipt(3, decimal.NewFromInt(11))
		require.NoError(t, err)
		// (3*10 + 3*11) / 6 = 10.5
		assert.True(t, p.LandedCost.Equal(decimal.NewFromFloat(10.5)), "got %s", p.LandedCost)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		p := newTestProduct(t)
		_, _, err := p.ApplyReceipt(0, decimal.NewFromInt(5))
		assert.Error(t, err)
	})

	t.Run("emits cost changed event", func(t *testing.T) {
		p := newTestProduct(t)
		_, _, err := p.ApplyReceipt(10, decimal.NewFromInt(4))
		require.NoError(t, err)

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCostChanged, events[0].EventType())
	})
}

func TestProduct_ReverseQuantity(t *testing.T) {
	t.Run("reverses an inbound movement", func(t *testing.T) {
		p := newTestProduct(t)
		p.CurrentStock = 10
		after, err := p.ReverseQuantity(4)
		require.NoError(t, err)
		assert.Equal(t, int64(6), after)
	})

	t.Run("reverses an outbound movement", func(t *testing.T) {
		p := newTestProduct(t)
		p.CurrentStock = 10
		after, err := p.ReverseQuantity(-4)
		require.NoError(t, err)
		assert.Equal(t, int64(14), after)
	})

	t.Run("rejects reversal that would go negative", func(t *testing.T) {
		p := newTestProduct(t)
		p.CurrentStock = 3
		_, err := p.ReverseQuantity(5)
		assert.ErrorIs(t, err, shared.ErrWouldGoNegative)
		assert.Equal(t, int64(3), p.CurrentStock)
	})
}

func TestProduct_StockValue(t *testing.T) {
	p := newTestProduct(t)
	assert.True(t, p.StockValue().IsZero())

	_, _, err := p.ApplyReceipt(20, decimal.NewFromFloat(2.50))
	require.NoError(t, err)
	assert.True(t, p.StockValue().Equal(decimal.NewFromInt(50)))
}
