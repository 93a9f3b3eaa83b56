package logistics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShipment(t *testing.T) *Shipment {
	t.Helper()
	s, err := NewShipment("SHIP-2026-0001", uuid.New(), ShipmentMethodSea)
	require.NoError(t, err)
	return s
}

func TestShipmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    ShipmentStatus
		to      ShipmentStatus
		allowed bool
	}{
		{ShipmentStatusPending, ShipmentStatusInTransit, true},
		{ShipmentStatusPending, ShipmentStatusCustoms, false},
		{ShipmentStatusInTransit, ShipmentStatusCustoms, true},
		{ShipmentStatusInTransit, ShipmentStatusPending, false},
		{ShipmentStatusCustoms, ShipmentStatusDelivered, true},
		{ShipmentStatusCustoms, ShipmentStatusInTransit, false},
		{ShipmentStatusDelivered, ShipmentStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestNewShipment(t *testing.T) {
	t.Run("creates pending shipment", func(t *testing.T) {
		s := newTestShipment(t)
		assert.Equal(t, ShipmentStatusPending, s.Status)
		assert.True(t, s.TotalCharges().IsZero())
	})

	t.Run("rejects invalid method", func(t *testing.T) {
		_, err := NewShipment("SHIP-2026-0002", uuid.New(), ShipmentMethod("TRUCK"))
		assert.Error(t, err)
	})

	t.Run("rejects empty purchase order", func(t *testing.T) {
		_, err := NewShipment("SHIP-2026-0003", uuid.Nil, ShipmentMethodAir)
		assert.Error(t, err)
	})
}

func TestShipment_SetCharges(t *testing.T) {
	s := newTestShipment(t)
	require.NoError(t, s.SetCharges(
		decimal.NewFromInt(300),
		decimal.NewFromInt(120),
		decimal.NewFromInt(30),
	))
	assert.True(t, s.TotalCharges().Equal(decimal.NewFromInt(450)))

	t.Run("rejects negative charges", func(t *testing.T) {
		err := s.SetCharges(decimal.NewFromInt(-1), decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})
}

func TestShipment_Lifecycle(t *testing.T) {
	s := newTestShipment(t)

	require.NoError(t, s.Depart())
	assert.Equal(t, ShipmentStatusInTransit, s.Status)
	assert.NotNil(t, s.DepartedAt)

	require.NoError(t, s.EnterCustoms())
	assert.Equal(t, ShipmentStatusCustoms, s.Status)

	require.NoError(t, s.MarkDelivered("WEIGHT"))
	assert.True(t, s.IsDelivered())
	assert.NotNil(t, s.ActualArrival)
	assert.Equal(t, "WEIGHT", s.AllocationMethod)

	t.Run("delivered is terminal", func(t *testing.T) {
		assert.Error(t, s.Depart())
		assert.Error(t, s.MarkDelivered("VALUE"))
	})

	t.Run("charges frozen after delivery", func(t *testing.T) {
		err := s.SetCharges(decimal.NewFromInt(1), decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})
}

func TestShipment_CannotSkipStates(t *testing.T) {
	s := newTestShipment(t)
	assert.Error(t, s.EnterCustoms())
	assert.Error(t, s.MarkDelivered("EQUAL"))
}

func TestShipment_RecordPayment(t *testing.T) {
	s := newTestShipment(t)
	require.NoError(t, s.SetCharges(decimal.NewFromInt(400), decimal.NewFromInt(80), decimal.NewFromInt(20)))

	require.NoError(t, s.RecordPayment(decimal.NewFromInt(100)))
	assert.Equal(t, "PARTIAL", s.PaymentStatus.String())

	require.NoError(t, s.RecordPayment(decimal.NewFromInt(400)))
	assert.Equal(t, "PAID", s.PaymentStatus.String())

	t.Run("overpayment rejected", func(t *testing.T) {
		assert.Error(t, s.RecordPayment(decimal.NewFromInt(1)))
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		assert.Error(t, s.RecordPayment(decimal.Zero))
	})
}

func TestShipment_SetMeasurements(t *testing.T) {
	s := newTestShipment(t)
	weight := decimal.NewFromInt(50)
	volume := decimal.NewFromFloat(1.2)

	require.NoError(t, s.SetMeasurements(&weight, &volume))
	assert.True(t, s.TotalWeight.Equal(weight))

	negative := decimal.NewFromInt(-1)
	assert.Error(t, s.SetMeasurements(&negative, nil))
}
