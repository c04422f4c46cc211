package common

import (
	"log"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"gorm.io/gorm"
)

func createBookingEarning(tx *gorm.DB, booking *models.Booking) error {
	earning := models.Earning{
		PayeeID:     booking.PayeeID,
		BookingID:   &booking.ID,
		GrossAmount: booking.BaseAmount,
		PlatformFee: booking.PlatformFee,
		NetAmount:   booking.PayeeEarnings,
		Status:      types.EARNING_PENDING,
	}
	return tx.Create(&earning).Error
}

func createEditingEarning(tx *gorm.DB, req *models.EditingRequest) error {
	earning := models.Earning{
		PayeeID:          req.PayeeID,
		EditingRequestID: &req.ID,
		GrossAmount:      req.BaseAmount,
		PlatformFee:      req.PlatformFee,
		NetAmount:        req.PayeeEarnings,
		Status:           types.EARNING_PENDING,
	}
	return tx.Create(&earning).Error
}

// ReleaseBookingEarning moves the booking's ledger entry from pending to
// released. The conditional update makes repeat calls no-ops.
func ReleaseBookingEarning(bookingId uint) error {
	d := db.GetDb()
	res := d.
		Model(&models.Earning{}).
		Where("booking_id = ? AND status = ?", bookingId, types.EARNING_PENDING).
		Update("status", types.EARNING_RELEASED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("Released earning for booking %d\n", bookingId)
	}
	return nil
}

// ReleaseEditingEarning is the editing-side counterpart of
// ReleaseBookingEarning.
func ReleaseEditingEarning(editingRequestId uint) error {
	d := db.GetDb()
	res := d.
		Model(&models.Earning{}).
		Where("editing_request_id = ? AND status = ?", editingRequestId, types.EARNING_PENDING).
		Update("status", types.EARNING_RELEASED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("Released earning for editing request %d\n", editingRequestId)
	}
	return nil
}

// ListEarnings returns the photographer's ledger, optionally filtered by
// status.
func ListEarnings(payeeId uint, status types.EarningStatus) ([]models.Earning, error) {
	d := db.GetDb()
	var earnings []models.Earning
	q := d.
		Model(&models.Earning{}).
		Where(&models.Earning{PayeeID: payeeId}).
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&earnings).Error
	return earnings, err
}
