package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"pbs/src/config"
	"pbs/src/db"
	"pbs/src/lib"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"
	"time"

	"gorm.io/gorm"
)

// CreateBooking runs the full creation flow: server-side rate lookup, fee
// derivation, payment hold, then the pending record. The hold is authorized
// before anything is persisted, so a failed authorize never leaves an
// orphaned booking; a failed store write triggers a compensating cancel of
// the hold just placed.
func CreateBooking(ctx context.Context, customerId uint, body *types.CreateBookingRequestBody) (*models.Booking, error) {
	d := db.GetDb()
	var payee models.User
	err := d.
		Model(&models.User{}).
		Where(&models.User{ID: body.PhotographerID, Role: models.ROLE_PHOTOGRAPHER}).
		First(&payee).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrPayeeNotFound
		}
		return nil, err
	}
	if !payee.IsAvailable {
		return nil, types.ErrPayeeUnavailable
	}

	sessionStart, _, err := utils.SessionWindow(body.ScheduledDate, body.ScheduledTime, body.Duration)
	if err != nil {
		return nil, err
	}

	fees := utils.ComputeFees(payee.HourlyRate, int64(body.Duration))
	now := time.Now()
	expiresAt := utils.ResponseDeadline(now, sessionStart)

	go func() {
		if _, err := lib.GeocodeLocation(context.Background(), body.Location); err != nil {
			log.Printf("Could not geocode location %q: %s\n", body.Location, err.Error())
		}
	}()

	reference, err := gateway.Authorize(ctx, utils.MinorUnits(fees.TotalAmount), "usd", map[string]string{
		"customerId": fmt.Sprint(customerId),
		"payeeId":    fmt.Sprint(payee.ID),
	})
	if err != nil {
		log.Printf("Payment authorization failed for customer %d: %s\n", customerId, err.Error())
		return nil, types.ErrPaymentAuthorizationFailed
	}

	booking := models.Booking{
		CustomerID:         customerId,
		PayeeID:            payee.ID,
		ScheduledDate:      body.ScheduledDate,
		ScheduledTime:      body.ScheduledTime,
		Duration:           body.Duration,
		Location:           body.Location,
		Notes:              body.Notes,
		BaseAmount:         fees.BaseAmount,
		CustomerServiceFee: fees.CustomerServiceFee,
		TotalAmount:        fees.TotalAmount,
		PlatformFee:        fees.PlatformFee,
		PayeeEarnings:      fees.PayeeEarnings,
		Currency:           "usd",
		PaymentReference:   &reference,
		Status:             types.BOOKING_PENDING,
		ExpiresAt:          expiresAt,
	}
	err = d.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return createBookingEarning(tx, &booking)
	})
	if err != nil {
		// Money is already on hold for a booking that does not exist. Release
		// it before reporting failure.
		log.Printf("Booking store write failed after authorize, cancelling hold %s: %s\n", reference, err.Error())
		if cerr := gateway.Cancel(ctx, reference); cerr != nil {
			log.Printf("Compensating cancel of hold %s failed: %s\n", reference, cerr.Error())
		}
		return nil, err
	}

	PublishTransition("bookings", "booking.created", types.JSONB{
		"id":          booking.ID,
		"customer_id": booking.CustomerID,
		"payee_id":    booking.PayeeID,
		"expires_at":  booking.ExpiresAt,
	})
	NotifyUser(payee.UID, payee.Email, "New booking request",
		fmt.Sprintf("You have a new session request for %s %s. Respond before %s.",
			booking.ScheduledDate, booking.ScheduledTime, booking.ExpiresAt.Format(time.RFC1123)))

	go func() {
		if _, err := lib.CreateOneTimeCronJob(booking.ExpiresAt.Add(time.Minute), func(id uint) {
			if _, err := ExpireDueBookings(context.Background(), 0, 0); err != nil {
				log.Printf("Error sweeping after booking %d deadline: %s\n", id, err.Error())
			}
		}, booking.ID); err != nil {
			log.Printf("Error scheduling expiry check for booking %d: %s\n", booking.ID, err.Error())
		}
	}()

	return &booking, nil
}

// AcceptBooking flips pending to confirmed and captures the hold. The status
// compare-and-set decides the accept/expire race; if the capture then fails
// the flip is reverted so the booking stays pending and the failure kind is
// surfaced distinctly.
func AcceptBooking(ctx context.Context, payeeId uint, bookingId uint) (*models.Booking, error) {
	d := db.GetDb()
	var booking models.Booking
	if err := d.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingId}).
		First(&booking).
		Error; err != nil {
		return nil, err
	}
	if booking.PayeeID != payeeId {
		return nil, types.ErrNotOwner
	}
	if booking.PaymentReference == nil {
		return nil, fmt.Errorf("no payment hold recorded for booking [%d]", bookingId)
	}

	res := d.
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingId, types.BOOKING_PENDING).
		Update("status", types.BOOKING_CONFIRMED)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, types.ErrWrongSourceState
	}

	if err := gateway.Capture(ctx, *booking.PaymentReference); err != nil {
		revert := d.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", bookingId, types.BOOKING_CONFIRMED).
			Update("status", types.BOOKING_PENDING)
		if revert.Error != nil {
			log.Printf("Could not revert booking %d after failed capture: %s\n", bookingId, revert.Error.Error())
		}
		return nil, err
	}

	booking.Status = types.BOOKING_CONFIRMED
	PublishTransition("bookings", "booking.confirmed", types.JSONB{
		"id":          booking.ID,
		"customer_id": booking.CustomerID,
		"payee_id":    booking.PayeeID,
	})
	notifyBookingCustomer(&booking, "Booking confirmed",
		fmt.Sprintf("Your session on %s %s is confirmed.", booking.ScheduledDate, booking.ScheduledTime))
	return &booking, nil
}

// DeclineBooking flips pending to declined and releases the hold. Cancel
// failures are swallowed: the transition stands even when the gateway has
// already auto-released.
func DeclineBooking(ctx context.Context, payeeId uint, bookingId uint) error {
	return resolvePending(ctx, bookingId, types.BOOKING_DECLINED, func(b *models.Booking) error {
		if b.PayeeID != payeeId {
			return types.ErrNotOwner
		}
		return nil
	})
}

// CancelBooking is available to either party. Customers may always cancel a
// pending booking; cancelling a confirmed one is policy-gated. Photographers
// may cancel pending or confirmed bookings.
func CancelBooking(ctx context.Context, actorId uint, bookingId uint) error {
	d := db.GetDb()
	var booking models.Booking
	if err := d.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingId}).
		First(&booking).
		Error; err != nil {
		return err
	}
	if actorId != booking.CustomerID && actorId != booking.PayeeID {
		return types.ErrNotOwner
	}
	switch booking.Status {
	case types.BOOKING_PENDING:
	case types.BOOKING_CONFIRMED:
		if actorId == booking.CustomerID && !config.CustomerCancelConfirmed() {
			return types.ErrWrongSourceState
		}
	default:
		return types.ErrWrongSourceState
	}

	res := d.
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingId, booking.Status).
		Update("status", types.BOOKING_CANCELED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrWrongSourceState
	}

	if booking.PaymentReference != nil {
		if err := gateway.Cancel(ctx, *booking.PaymentReference); err != nil {
			log.Printf("Error releasing hold %s for cancelled booking %d: %s\n", *booking.PaymentReference, bookingId, err.Error())
		}
	}
	PublishTransition("bookings", "booking.cancelled", types.JSONB{
		"id":          booking.ID,
		"customer_id": booking.CustomerID,
		"payee_id":    booking.PayeeID,
	})
	return nil
}

// DismissBooking soft-hides a terminally statused booking from the acting
// party's list. The other party's view is unaffected.
func DismissBooking(actorId uint, bookingId uint) error {
	d := db.GetDb()
	var booking models.Booking
	if err := d.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingId}).
		First(&booking).
		Error; err != nil {
		return err
	}
	if actorId != booking.CustomerID && actorId != booking.PayeeID {
		return types.ErrNotOwner
	}
	switch booking.Status {
	case types.BOOKING_DECLINED, types.BOOKING_CANCELED, types.BOOKING_EXPIRED, types.BOOKING_COMPLETED:
	default:
		return types.ErrWrongSourceState
	}
	column := "customer_dismissed_at"
	if actorId == booking.PayeeID {
		column = "payee_dismissed_at"
	}
	now := time.Now()
	return d.
		Model(&models.Booking{}).
		Where("id = ?", bookingId).
		Update(column, &now).
		Error
}

// ExpireDueBookings transitions every pending booking past its deadline to
// expired and releases each hold best effort. Scope by customer or payee id
// (0 means unscoped). Invoked on list reads and by the periodic sweep job.
func ExpireDueBookings(ctx context.Context, customerId uint, payeeId uint) (int, error) {
	d := db.GetDb()
	var due []models.Booking
	q := d.
		Model(&models.Booking{}).
		Where("status = ?", types.BOOKING_PENDING).
		Where("expires_at < ?", time.Now())
	if customerId != 0 {
		q = q.Where("customer_id = ?", customerId)
	}
	if payeeId != 0 {
		q = q.Where("payee_id = ?", payeeId)
	}
	if err := q.Find(&due).Error; err != nil {
		return 0, err
	}

	expired := 0
	for _, booking := range due {
		res := d.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, types.BOOKING_PENDING).
			Update("status", types.BOOKING_EXPIRED)
		if res.Error != nil {
			log.Printf("[sweep] Error expiring booking %d: %s\n", booking.ID, res.Error.Error())
			continue
		}
		if res.RowsAffected == 0 {
			// Lost the race to an accept/decline. Theirs to resolve.
			continue
		}
		expired++
		if booking.PaymentReference != nil {
			if err := gateway.Cancel(ctx, *booking.PaymentReference); err != nil {
				log.Printf("[sweep] Error releasing hold %s for booking %d: %s\n", *booking.PaymentReference, booking.ID, err.Error())
			}
		}
		PublishTransition("bookings", "booking.expired", types.JSONB{
			"id":          booking.ID,
			"customer_id": booking.CustomerID,
			"payee_id":    booking.PayeeID,
		})
	}
	return expired, nil
}

// ListCustomerBookings sweeps the customer's due bookings, then returns the
// list with fresh session phases.
func ListCustomerBookings(ctx context.Context, customerId uint) ([]models.Booking, error) {
	if _, err := ExpireDueBookings(ctx, customerId, 0); err != nil {
		log.Printf("[sweep] Error on customer %d list: %s\n", customerId, err.Error())
	}
	d := db.GetDb()
	var bookings []models.Booking
	err := d.
		Model(&models.Booking{}).
		Where(&models.Booking{CustomerID: customerId}).
		Where("customer_dismissed_at IS NULL").
		Preload("Payee").
		Order("created_at DESC").
		Find(&bookings).
		Error
	return bookings, err
}

// ListPayeeBookings is the photographer-side counterpart of
// ListCustomerBookings.
func ListPayeeBookings(ctx context.Context, payeeId uint) ([]models.Booking, error) {
	if _, err := ExpireDueBookings(ctx, 0, payeeId); err != nil {
		log.Printf("[sweep] Error on payee %d list: %s\n", payeeId, err.Error())
	}
	d := db.GetDb()
	var bookings []models.Booking
	err := d.
		Model(&models.Booking{}).
		Where(&models.Booking{PayeeID: payeeId}).
		Where("payee_dismissed_at IS NULL").
		Preload("Customer").
		Order("created_at DESC").
		Find(&bookings).
		Error
	return bookings, err
}

func resolvePending(ctx context.Context, bookingId uint, target types.BookingStatus, guard func(*models.Booking) error) error {
	d := db.GetDb()
	var booking models.Booking
	if err := d.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingId}).
		First(&booking).
		Error; err != nil {
		return err
	}
	if err := guard(&booking); err != nil {
		return err
	}

	res := d.
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingId, types.BOOKING_PENDING).
		Update("status", target)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrWrongSourceState
	}

	if booking.PaymentReference != nil {
		if err := gateway.Cancel(ctx, *booking.PaymentReference); err != nil {
			log.Printf("Error releasing hold %s for booking %d: %s\n", *booking.PaymentReference, bookingId, err.Error())
		}
	}
	PublishTransition("bookings", fmt.Sprintf("booking.%s", target), types.JSONB{
		"id":          booking.ID,
		"customer_id": booking.CustomerID,
		"payee_id":    booking.PayeeID,
	})
	notifyBookingCustomer(&booking, "Booking update",
		fmt.Sprintf("Your session request for %s %s is %s.", booking.ScheduledDate, booking.ScheduledTime, target))
	return nil
}

func notifyBookingCustomer(booking *models.Booking, title string, bodyText string) {
	d := db.GetDb()
	var customer models.User
	if err := d.
		Model(&models.User{}).
		Where(&models.User{ID: booking.CustomerID}).
		First(&customer).
		Error; err != nil {
		log.Printf("Could not load customer %d for notification: %s\n", booking.CustomerID, err.Error())
		return
	}
	NotifyUser(customer.UID, customer.Email, title, bodyText)
}
