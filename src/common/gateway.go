package common

import (
	"context"
	"pbs/src/lib"
)

// PaymentGateway is the hold/capture/cancel contract the lifecycle managers
// drive. Cancel must tolerate holds that are already resolved: the loser of
// an accept/expire race will always try to touch a hold the winner owns.
type PaymentGateway interface {
	Authorize(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (string, error)
	Capture(ctx context.Context, reference string) error
	Cancel(ctx context.Context, reference string) error
}

type stripeGateway struct{}

func (stripeGateway) Authorize(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	return lib.StripeAuthorizePayment(ctx, amount, currency, metadata)
}

func (stripeGateway) Capture(ctx context.Context, reference string) error {
	return lib.StripeCapturePayment(ctx, reference)
}

func (stripeGateway) Cancel(ctx context.Context, reference string) error {
	return lib.StripeCancelPayment(ctx, reference)
}

var gateway PaymentGateway = stripeGateway{}

// UseGateway Replace gateway instance with custom implementation
func UseGateway(g PaymentGateway) {
	gateway = g
}
