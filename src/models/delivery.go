package models

import (
	"pbs/src/types"
)

// PhotoDelivery records one upload-completion batch against a booking. The
// first batch is what flips the booking to completed; later batches only add
// photos.
type PhotoDelivery struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	BookingID uint             `json:"booking_id,omitempty"`
	PhotoUrls types.StringList `gorm:"type:jsonb" json:"photo_urls,omitempty"`
	ShareSlug string           `json:"share_slug,omitempty"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"-"`

	types.Timestamps
}
