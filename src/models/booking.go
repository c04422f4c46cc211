package models

import (
	"pbs/src/types"
	"pbs/src/utils"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Booking struct {
	ID         uint `gorm:"primarykey" json:"id"`
	CustomerID uint `json:"customer_id,omitempty"`
	PayeeID    uint `json:"payee_id,omitempty"`

	ScheduledDate string `json:"scheduled_date,omitempty"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
	Duration      uint   `json:"duration,omitempty"`
	Location      string `json:"location,omitempty"`
	Notes         string `json:"notes,omitempty"`

	// Money fields are derived once at creation from the photographer's
	// stored rate and are immutable afterwards.
	BaseAmount         decimal.Decimal `gorm:"type:numeric(10,2)" json:"base_amount"`
	CustomerServiceFee decimal.Decimal `gorm:"type:numeric(10,2)" json:"customer_service_fee"`
	TotalAmount        decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_amount"`
	PlatformFee        decimal.Decimal `gorm:"type:numeric(10,2)" json:"platform_fee"`
	PayeeEarnings      decimal.Decimal `gorm:"type:numeric(10,2)" json:"payee_earnings"`
	Currency           string          `gorm:"default:'usd'" json:"currency,omitempty"`

	PaymentReference *string             `json:"-"`
	Status           types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	ExpiresAt        time.Time           `json:"expires_at,omitempty"`

	// Dismissal hides a terminal booking from one party's list without
	// touching the other party's view.
	CustomerDismissedAt *time.Time `json:"customer_dismissed_at,omitempty"`
	PayeeDismissedAt    *time.Time `json:"payee_dismissed_at,omitempty"`

	SessionPhase types.SessionPhase `gorm:"-" json:"session_phase,omitempty"`

	Customer *User `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Payee    *User `gorm:"foreignKey:PayeeID" json:"payee,omitempty"`

	types.Timestamps
}

// SessionWindow returns the derived start/end instants of the session.
func (b *Booking) SessionWindow() (time.Time, time.Time, error) {
	return utils.SessionWindow(b.ScheduledDate, b.ScheduledTime, b.Duration)
}

// Phase projects the booking onto a display phase. Authoritative state lives
// in Status; this only answers "where is the session relative to now".
func (b *Booking) Phase(now time.Time) types.SessionPhase {
	switch b.Status {
	case types.BOOKING_PENDING:
		return types.SESSION_UPCOMING
	case types.BOOKING_CONFIRMED:
		start, end, err := b.SessionWindow()
		if err != nil {
			return types.SESSION_COMPLETED
		}
		if now.Before(start) {
			return types.SESSION_UPCOMING
		}
		if now.Before(end) {
			return types.SESSION_IN_PROGRESS
		}
		return types.SESSION_COMPLETED
	default:
		return types.SESSION_COMPLETED
	}
}

func (b *Booking) AfterFind(tx *gorm.DB) error {
	b.SessionPhase = b.Phase(time.Now())
	return nil
}
