package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockMovement(t *testing.T) {
	productID := uuid.New()

	t.Run("creates inbound movement with balance snapshot", func(t *testing.T) {
		m, err := NewStockMovement(productID, MovementTypeIn, ReasonShipmentReceived, 50, 10, ShipmentRef(uuid.New()))
		require.NoError(t, err)
		assert.Equal(t, int64(10), m.StockBefore)
		assert.Equal(t, int64(60), m.StockAfter)
		assert.Equal(t, MovementTypeIn, m.Type)
	})

	t.Run("creates outbound movement with negative quantity", func(t *testing.T) {
		m, err := NewStockMovement(productID, MovementTypeOut, ReasonSale, -3, 10, OrderRef(uuid.New()))
		require.NoError(t, err)
		assert.Equal(t, int64(7), m.StockAfter)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewStockMovement(productID, MovementTypeIn, ReasonOther, 0, 10, ManualRef())
		assert.Error(t, err)
	})

	t.Run("rejects sign mismatch with type", func(t *testing.T) {
		_, err := NewStockMovement(productID, MovementTypeIn, ReasonSale, -5, 10, OrderRef(uuid.New()))
		assert.Error(t, err)

		_, err = NewStockMovement(productID, MovementTypeOut, ReasonSale, 5, 10, OrderRef(uuid.New()))
		assert.Error(t, err)
	})

	t.Run("rejects movement driving stock negative", func(t *testing.T) {
		_, err := NewStockMovement(productID, MovementTypeOut, ReasonSale, -11, 10, OrderRef(uuid.New()))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("rejects document reference without id", func(t *testing.T) {
		_, err := NewStockMovement(productID, MovementTypeIn, ReasonReturn, 1, 0, MovementRef{Type: ReferenceTypeOrder})
		assert.Error(t, err)
	})

	t.Run("rejects manual reference with id", func(t *testing.T) {
		id := uuid.New()
		_, err := NewStockMovement(productID, MovementTypeIn, ReasonFound, 1, 0, MovementRef{Type: ReferenceTypeManual, ID: &id})
		assert.Error(t, err)
	})
}

func TestStockMovement_WithCosts(t *testing.T) {
	m, err := NewStockMovement(uuid.New(), MovementTypeIn, ReasonShipmentReceived, 10, 0, ShipmentRef(uuid.New()))
	require.NoError(t, err)

	m.WithCosts(decimal.NewFromInt(5), decimal.NewFromFloat(6.20))
	require.NotNil(t, m.UnitCost)
	require.NotNil(t, m.LandedCost)
	assert.True(t, m.LandedCost.Equal(decimal.NewFromFloat(6.20)))
	assert.True(t, m.IsReceiving())
}

func TestTypeForQuantity(t *testing.T) {
	assert.Equal(t, MovementTypeIn, TypeForQuantity(5))
	assert.Equal(t, MovementTypeOut, TypeForQuantity(-5))
}

func TestMovementReason_IsManualReason(t *testing.T) {
	manual := []MovementReason{ReasonDamage, ReasonLoss, ReasonFound, ReasonCorrection, ReasonOther}
	for _, r := range manual {
		assert.True(t, r.IsManualReason(), "%s should be manual", r)
	}
	assert.False(t, ReasonSale.IsManualReason())
	assert.False(t, ReasonShipmentReceived.IsManualReason())
}
