package common

import (
	"context"
	"fmt"
	"log"
	"pbs/src/db"
	"pbs/src/lib"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"
	"time"

	"github.com/tidwall/gjson"
)

// RecordPhotoDelivery registers an upload-completion batch against a booking.
// The first batch against a confirmed booking flips it to completed and
// releases the photographer's earning; later batches only append.
func RecordPhotoDelivery(payeeId uint, bookingId uint, photoUrls []string) (*models.PhotoDelivery, error) {
	d := db.GetDb()
	var booking models.Booking
	if err := d.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingId}).
		First(&booking).
		Error; err != nil {
		return nil, err
	}
	if payeeId != 0 && booking.PayeeID != payeeId {
		return nil, types.ErrNotOwner
	}
	switch booking.Status {
	case types.BOOKING_CONFIRMED, types.BOOKING_COMPLETED:
	default:
		return nil, types.ErrWrongSourceState
	}

	res := d.
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingId, types.BOOKING_CONFIRMED).
		Update("status", types.BOOKING_COMPLETED)
	if res.Error != nil {
		return nil, res.Error
	}
	first := res.RowsAffected > 0

	var payee models.User
	if err := d.
		Model(&models.User{}).
		Where(&models.User{ID: booking.PayeeID}).
		First(&payee).
		Error; err != nil {
		return nil, err
	}

	delivery := models.PhotoDelivery{
		BookingID: bookingId,
		PhotoUrls: photoUrls,
		ShareSlug: utils.GalleryShareSlug(payee.Name, bookingId),
	}
	if err := d.Create(&delivery).Error; err != nil {
		return nil, err
	}

	if first {
		if err := ReleaseBookingEarning(bookingId); err != nil {
			log.Printf("Error releasing earning for booking %d: %s\n", bookingId, err.Error())
		}
		PublishTransition("bookings", "booking.completed", types.JSONB{
			"id":          booking.ID,
			"customer_id": booking.CustomerID,
			"payee_id":    booking.PayeeID,
		})
		notifyBookingCustomer(&booking, "Photos delivered",
			fmt.Sprintf("Your photos from %s are ready to view.", booking.ScheduledDate))
	}
	return &delivery, nil
}

// PhotoGalleryLinks presigns the stored object keys of a booking's deliveries
// for time-limited viewing.
func PhotoGalleryLinks(ctx context.Context, bookingId uint) ([]string, error) {
	d := db.GetDb()
	var deliveries []models.PhotoDelivery
	if err := d.
		Model(&models.PhotoDelivery{}).
		Where(&models.PhotoDelivery{BookingID: bookingId}).
		Order("created_at ASC").
		Find(&deliveries).
		Error; err != nil {
		return nil, err
	}
	links := []string{}
	for _, delivery := range deliveries {
		for _, key := range delivery.PhotoUrls {
			url, err := lib.S3PresignPhotoURL(ctx, key, 24*time.Hour)
			if err != nil {
				log.Printf("Error presigning %s: %s\n", key, err.Error())
				continue
			}
			links = append(links, url)
		}
	}
	return links, nil
}

// PhotoUploadsConsumer drains upload-completion events from the broker into
// the same delivery path the HTTP handler uses.
func PhotoUploadsConsumer() {
	lib.KafkaConsumeTopic("pbs-api", "photo-uploads", func(body string) {
		bookingId := gjson.Get(body, "booking_id").Uint()
		if bookingId == 0 {
			log.Printf("[uploads] Skipping event without booking_id: %s\n", body)
			return
		}
		urls := []string{}
		for _, v := range gjson.Get(body, "photo_urls").Array() {
			urls = append(urls, v.String())
		}
		if len(urls) == 0 {
			log.Printf("[uploads] Skipping event without photo_urls for booking %d\n", bookingId)
			return
		}
		if _, err := RecordPhotoDelivery(0, uint(bookingId), urls); err != nil {
			log.Printf("[uploads] Error recording delivery for booking %d: %s\n", bookingId, err.Error())
		}
	})
}
