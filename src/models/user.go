package models

import (
	"pbs/src/types"

	"github.com/shopspring/decimal"
)

const (
	ROLE_CUSTOMER     = "customer"
	ROLE_PHOTOGRAPHER = "photographer"
)

// User doubles as the rate-lookup profile for photographers. Every money
// computation starts from the rates stored here, never from request bodies.
type User struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `gorm:"default:'customer'" json:"role,omitempty"`
	UID           string `json:"uid,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`

	HourlyRate          decimal.Decimal `gorm:"type:numeric(10,2)" json:"hourly_rate,omitempty"`
	IsAvailable         bool            `gorm:"default:false" json:"is_available"`
	EditingEnabled      bool            `gorm:"default:false" json:"editing_enabled"`
	EditingPricingModel types.PricingModel `gorm:"default:'flat'" json:"editing_pricing_model,omitempty"`
	EditingFlatRate     decimal.Decimal `gorm:"type:numeric(10,2)" json:"editing_flat_rate,omitempty"`
	EditingPerPhotoRate decimal.Decimal `gorm:"type:numeric(10,2)" json:"editing_per_photo_rate,omitempty"`

	StripeAccountId  string `json:"-"`
	StripeCustomerId string `json:"-"`
	PushToken        string `json:"-"`

	Bookings []Booking `gorm:"foreignKey:CustomerID" json:"bookings,omitempty"`
	Earnings []Earning `gorm:"foreignKey:PayeeID" json:"earnings,omitempty"`

	types.Timestamps
}
