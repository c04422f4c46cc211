package lib

import (
	"context"
	"errors"
	"log"
	"os"
	"pbs/src/types"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// StripeAuthorizePayment places a manual-capture hold for the given amount in
// minor units and returns the PaymentIntent id as the opaque reference.
func StripeAuthorizePayment(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	sc := GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := sc.V1PaymentIntents.Create(ctx, &params)
	if err != nil {
		log.Printf("[Stripe] Error authorizing payment: %s\n", err.Error())
		return "", err
	}
	return pi.ID, nil
}

// StripeCapturePayment captures a previously authorized hold. A hold that
// Stripe has already released is reported as ErrPaymentCaptureExpired so the
// caller can keep the booking pending and tell the customer to rebook.
func StripeCapturePayment(ctx context.Context, reference string) error {
	sc := GetStripeClient()
	_, err := sc.V1PaymentIntents.Capture(ctx, reference, &stripe.PaymentIntentCaptureParams{})
	if err == nil {
		return nil
	}
	var serr *stripe.Error
	if errors.As(err, &serr) {
		log.Printf("[Stripe] Capture failed for %s: code=%s\n", reference, serr.Code)
		if serr.Code == stripe.ErrorCodePaymentIntentUnexpectedState ||
			serr.Code == stripe.ErrorCodeExpiredCard {
			return types.ErrPaymentCaptureExpired
		}
	}
	return types.ErrPaymentCaptureFailed
}

// StripeCancelPayment releases a hold. Cancelling an intent that is already
// canceled, captured or expired is not an error: a losing transition in the
// accept/expire race is expected to land here after the winner resolved the
// hold.
func StripeCancelPayment(ctx context.Context, reference string) error {
	sc := GetStripeClient()
	_, err := sc.V1PaymentIntents.Cancel(ctx, reference, &stripe.PaymentIntentCancelParams{})
	if err == nil {
		return nil
	}
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Code == stripe.ErrorCodePaymentIntentUnexpectedState {
		log.Printf("[Stripe] Hold %s already resolved, nothing to cancel\n", reference)
		return nil
	}
	return err
}
