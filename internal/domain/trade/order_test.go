package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/merchstock/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("ORD-2026-0001", "Alex Chen")
	require.NoError(t, err)
	return o
}

func newTestOrderWithItem(t *testing.T) *Order {
	t.Helper()
	o := newTestOrder(t)
	_, err := o.AddItem(uuid.New(), "Black Tee M", 2, decimal.NewFromFloat(29.90))
	require.NoError(t, err)
	return o
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusPacked, false},
		{OrderStatusConfirmed, OrderStatusPacked, true},
		{OrderStatusConfirmed, OrderStatusShipped, false},
		{OrderStatusPacked, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusConfirmed, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrder_AddItem(t *testing.T) {
	t.Run("adds item and recalculates totals", func(t *testing.T) {
		o := newTestOrder(t)
		item, err := o.AddItem(uuid.New(), "Black Tee M", 2, decimal.NewFromFloat(29.90))
		require.NoError(t, err)
		assert.True(t, item.TotalPrice.Equal(decimal.NewFromFloat(59.80)))
		assert.True(t, o.Subtotal.Equal(decimal.NewFromFloat(59.80)))
		assert.True(t, o.Total.Equal(decimal.NewFromFloat(59.80)))
	})

	t.Run("rejects duplicate product", func(t *testing.T) {
		o := newTestOrder(t)
		productID := uuid.New()
		_, err := o.AddItem(productID, "Tee", 1, decimal.NewFromInt(10))
		require.NoError(t, err)
		_, err = o.AddItem(productID, "Tee", 2, decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("rejects modification after confirm", func(t *testing.T) {
		o := newTestOrderWithItem(t)
		require.NoError(t, o.Confirm())
		_, err := o.AddItem(uuid.New(), "Hoodie", 1, decimal.NewFromInt(50))
		assert.Error(t, err)
	})
}

func TestOrder_Totals(t *testing.T) {
	o := newTestOrderWithItem(t) // subtotal 59.80
	require.NoError(t, o.SetShippingFee(decimal.NewFromFloat(5.00)))
	require.NoError(t, o.SetDiscount(decimal.NewFromFloat(10.00)))
	assert.True(t, o.Total.Equal(decimal.NewFromFloat(54.80)), "got %s", o.Total)

	t.Run("discount cannot exceed order value", func(t *testing.T) {
		err := o.SetDiscount(decimal.NewFromInt(100))
		assert.Error(t, err)
	})
}

func TestOrder_Confirm(t *testing.T) {
	t.Run("confirms pending order with items", func(t *testing.T) {
		o := newTestOrderWithItem(t)
		require.NoError(t, o.Confirm())
		assert.Equal(t, OrderStatusConfirmed, o.Status)
		assert.NotNil(t, o.ConfirmedAt)
	})

	t.Run("rejects empty order", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Error(t, o.Confirm())
	})

	t.Run("rejects double confirm", func(t *testing.T) {
		o := newTestOrderWithItem(t)
		require.NoError(t, o.Confirm())
		assert.Error(t, o.Confirm())
	})
}

func TestOrder_ForwardPath(t *testing.T) {
	o := newTestOrderWithItem(t)
	require.NoError(t, o.Confirm())
	require.NoError(t, o.Pack())
	require.NoError(t, o.Ship())
	require.NoError(t, o.Deliver())
	assert.Equal(t, OrderStatusDelivered, o.Status)
	assert.NotNil(t, o.DeliveredAt)

	t.Run("delivered is terminal", func(t *testing.T) {
		_, err := o.Cancel()
		assert.Error(t, err)
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("cancel of pending needs no restock", func(t *testing.T) {
		o := newTestOrderWithItem(t)
		restock, err := o.Cancel()
		require.NoError(t, err)
		assert.False(t, restock)
		assert.Equal(t, OrderStatusCancelled, o.Status)
	})

	t.Run("cancel after confirm requires restock", func(t *testing.T) {
		o := newTestOrderWithItem(t)
		require.NoError(t, o.Confirm())
		restock, err := o.Cancel()
		require.NoError(t, err)
		assert.True(t, restock)
	})

	t.Run("cancel after ship requires restock", func(t *testing.T) {
		o := newTestOrderWithItem(t)
		require.NoError(t, o.Confirm())
		require.NoError(t, o.Pack())
		require.NoError(t, o.Ship())
		restock, err := o.Cancel()
		require.NoError(t, err)
		assert.True(t, restock)
	})
}

func TestOrder_RecordPayment(t *testing.T) {
	o := newTestOrderWithItem(t) // total 59.80

	t.Run("partial payment", func(t *testing.T) {
		require.NoError(t, o.RecordPayment(decimal.NewFromInt(30)))
		assert.Equal(t, valueobject.PaymentStatusPartial, o.PaymentStatus)
	})

	t.Run("full payment", func(t *testing.T) {
		require.NoError(t, o.RecordPayment(decimal.NewFromFloat(29.80)))
		assert.Equal(t, valueobject.PaymentStatusPaid, o.PaymentStatus)
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		err := o.RecordPayment(decimal.NewFromFloat(0.01))
		assert.Error(t, err)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		err := o.RecordPayment(decimal.Zero)
		assert.Error(t, err)
	})
}

func TestOrder_CanDelete(t *testing.T) {
	o := newTestOrderWithItem(t)
	assert.True(t, o.CanDelete())

	require.NoError(t, o.Confirm())
	assert.False(t, o.CanDelete())

	_, err := o.Cancel()
	require.NoError(t, err)
	assert.True(t, o.CanDelete())
}
