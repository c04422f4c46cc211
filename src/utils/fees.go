package utils

import (
	"github.com/shopspring/decimal"
)

var (
	customerServiceFeeRate = decimal.NewFromFloat(0.10)
	platformFeeRate        = decimal.NewFromFloat(0.20)
)

// FeeBreakdown carries every server-derived money field for a booking or an
// editing request. Client-submitted amounts are never accepted anywhere.
type FeeBreakdown struct {
	BaseAmount         decimal.Decimal `json:"base_amount"`
	CustomerServiceFee decimal.Decimal `json:"customer_service_fee"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PlatformFee        decimal.Decimal `json:"platform_fee"`
	PayeeEarnings      decimal.Decimal `json:"payee_earnings"`
}

// ComputeFees derives all money fields from a unit rate and a quantity
// (hours for bookings, photos or 1 for editing requests). Each component is
// rounded to 2 decimal places before any summation so the invariants
// total-serviceFee == base and base-platformFee == earnings hold exactly.
func ComputeFees(rate decimal.Decimal, quantity int64) FeeBreakdown {
	base := rate.Mul(decimal.NewFromInt(quantity)).Round(2)
	serviceFee := base.Mul(customerServiceFeeRate).Round(2)
	platformFee := base.Mul(platformFeeRate).Round(2)
	return FeeBreakdown{
		BaseAmount:         base,
		CustomerServiceFee: serviceFee,
		TotalAmount:        base.Add(serviceFee).Round(2),
		PlatformFee:        platformFee,
		PayeeEarnings:      base.Sub(platformFee).Round(2),
	}
}

// MinorUnits converts a 2dp decimal amount into gateway minor units (cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}
