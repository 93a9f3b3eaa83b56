package valueobject

import "github.com/shopspring/decimal"

// PaymentStatus represents the payment state of a payable document
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// DerivePaymentStatus derives the payment status from paid vs total amounts.
// Total of zero with nothing paid is considered pending.
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	if paid.IsZero() {
		return PaymentStatusPending
	}
	if paid.GreaterThanOrEqual(total) && total.IsPositive() {
		return PaymentStatusPaid
	}
	return PaymentStatusPartial
}
