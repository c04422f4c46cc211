package models

import (
	"pbs/src/types"
	"time"

	"github.com/shopspring/decimal"
)

type EditingRequest struct {
	ID         uint `gorm:"primarykey" json:"id"`
	BookingID  uint `gorm:"uniqueIndex" json:"booking_id,omitempty"`
	CustomerID uint `json:"customer_id,omitempty"`
	PayeeID    uint `json:"payee_id,omitempty"`

	PricingModel types.PricingModel `json:"pricing_model,omitempty"`
	PhotoCount   *uint              `json:"photo_count,omitempty"`

	BaseAmount         decimal.Decimal `gorm:"type:numeric(10,2)" json:"base_amount"`
	CustomerServiceFee decimal.Decimal `gorm:"type:numeric(10,2)" json:"customer_service_fee"`
	TotalAmount        decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_amount"`
	PlatformFee        decimal.Decimal `gorm:"type:numeric(10,2)" json:"platform_fee"`
	PayeeEarnings      decimal.Decimal `gorm:"type:numeric(10,2)" json:"payee_earnings"`

	Status        types.EditingStatus `gorm:"default:'requested'" json:"status,omitempty"`
	RevisionCount uint                `json:"revision_count"`

	RequestedPhotoUrls types.StringList `gorm:"type:jsonb" json:"requested_photo_urls,omitempty"`
	// EditedPhotos holds the latest delivered set; replaced wholesale on each
	// delivery, kept through a revision request for reference.
	EditedPhotos      types.StringList `gorm:"type:jsonb" json:"edited_photos,omitempty"`
	CustomerNotes     string           `json:"customer_notes,omitempty"`
	PhotographerNotes string           `json:"photographer_notes,omitempty"`
	RevisionNotes     string           `json:"revision_notes,omitempty"`

	CustomerDismissedAt *time.Time `json:"customer_dismissed_at,omitempty"`
	PayeeDismissedAt    *time.Time `json:"payee_dismissed_at,omitempty"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`

	types.Timestamps
}
