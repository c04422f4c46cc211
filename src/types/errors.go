package types

import "errors"

// Precondition and payment errors surfaced by the lifecycle managers. Handlers
// map these onto HTTP categories so clients can tell "retry" from "rebook".
var (
	ErrPayeeNotFound    = errors.New("photographer not found")
	ErrPayeeUnavailable = errors.New("photographer is not accepting bookings")
	ErrWrongSourceState = errors.New("action not allowed for current status")
	ErrDuplicateRequest = errors.New("an editing request already exists for this booking")
	ErrNotOwner         = errors.New("record does not belong to the requesting party")

	ErrPaymentAuthorizationFailed = errors.New("payment authorization failed")
	ErrPaymentCaptureFailed       = errors.New("payment capture failed")
	// ErrPaymentCaptureExpired means the hold lapsed before the photographer
	// accepted. The booking stays pending; the customer has to rebook.
	ErrPaymentCaptureExpired = errors.New("payment hold has expired")

	ErrEditingDisabled = errors.New("photographer does not offer editing")
	ErrPhotoCountRequired = errors.New("photo_count is required for per_photo pricing")
)
