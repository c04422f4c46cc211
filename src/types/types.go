package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type StringList []string

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return errors.New("type assertion to []byte failed")
}

func (a StringList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *StringList) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return errors.New("type assertion to []byte failed")
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_DECLINED  BookingStatus = "declined"
	BOOKING_CANCELED  BookingStatus = "cancelled"
	BOOKING_EXPIRED   BookingStatus = "expired"
	BOOKING_COMPLETED BookingStatus = "completed"
)

// SessionPhase is a read-time projection of where a booking sits relative to
// its session window. Never persisted.
type SessionPhase string

const (
	SESSION_UPCOMING    SessionPhase = "upcoming"
	SESSION_IN_PROGRESS SessionPhase = "in_progress"
	SESSION_COMPLETED   SessionPhase = "completed"
)

type EarningStatus string

const (
	EARNING_PENDING  EarningStatus = "pending"
	EARNING_RELEASED EarningStatus = "released"
	EARNING_PAID     EarningStatus = "paid"
)

type EditingStatus string

const (
	EDITING_REQUESTED          EditingStatus = "requested"
	EDITING_ACCEPTED           EditingStatus = "accepted"
	EDITING_DECLINED           EditingStatus = "declined"
	EDITING_IN_PROGRESS        EditingStatus = "in_progress"
	EDITING_DELIVERED          EditingStatus = "delivered"
	EDITING_COMPLETED          EditingStatus = "completed"
	EDITING_REVISION_REQUESTED EditingStatus = "revision_requested"
)

type PricingModel string

const (
	PRICING_FLAT      PricingModel = "flat"
	PRICING_PER_PHOTO PricingModel = "per_photo"
)

type CreateBookingRequestBody struct {
	PhotographerID uint   `json:"photographer_id" binding:"required"`
	Duration       uint   `json:"duration" binding:"required,min=1,max=12"`
	Location       string `json:"location" binding:"required"`
	ScheduledDate  string `json:"scheduled_date" binding:"required,bookabledate"`
	ScheduledTime  string `json:"scheduled_time" binding:"required,clocktime"`
	Notes          string `json:"notes,omitempty"`
}

type CreateEditingRequestBody struct {
	BookingID         uint     `json:"booking_id" binding:"required"`
	PhotoCount        *uint    `json:"photo_count,omitempty"`
	RequestedPhotoUrls []string `json:"requested_photo_urls,omitempty"`
	CustomerNotes     string   `json:"customer_notes,omitempty"`
}

type UpdateEditingStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=accepted declined in_progress"`
}

type DeliverEditsRequestBody struct {
	EditedPhotos      []string `json:"edited_photos" binding:"required,min=1"`
	PhotographerNotes string   `json:"photographer_notes,omitempty"`
}

type RequestRevisionRequestBody struct {
	RevisionNotes string `json:"revision_notes" binding:"required"`
}

type PhotoDeliveryRequestBody struct {
	PhotoUrls []string `json:"photo_urls" binding:"required,min=1"`
}

type UpdateRatesRequestBody struct {
	HourlyRate          string  `json:"hourly_rate" binding:"required"`
	IsAvailable         *bool   `json:"is_available,omitempty"`
	EditingEnabled      *bool   `json:"editing_enabled,omitempty"`
	EditingPricingModel *string `json:"editing_pricing_model,omitempty" binding:"omitempty,oneof=flat per_photo"`
	EditingFlatRate     *string `json:"editing_flat_rate,omitempty"`
	EditingPerPhotoRate *string `json:"editing_per_photo_rate,omitempty"`
}

type HandoffRedeemRequestBody struct {
	Token string `json:"token" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	UID      string `json:"uid"`
	jwt.RegisteredClaims
}
