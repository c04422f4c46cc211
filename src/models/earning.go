package models

import (
	"pbs/src/types"

	"github.com/shopspring/decimal"
)

// Earning is the payout ledger entry mirroring a booking or an editing
// request. Exactly one row per source record; released in place, never
// duplicated.
type Earning struct {
	ID               uint  `gorm:"primarykey" json:"id"`
	PayeeID          uint  `json:"payee_id,omitempty"`
	BookingID        *uint `gorm:"uniqueIndex" json:"booking_id,omitempty"`
	EditingRequestID *uint `gorm:"uniqueIndex" json:"editing_request_id,omitempty"`

	GrossAmount decimal.Decimal     `gorm:"type:numeric(10,2)" json:"gross_amount"`
	PlatformFee decimal.Decimal     `gorm:"type:numeric(10,2)" json:"platform_fee"`
	NetAmount   decimal.Decimal     `gorm:"type:numeric(10,2)" json:"net_amount"`
	Status      types.EarningStatus `gorm:"default:'pending'" json:"status,omitempty"`

	Payee *User `gorm:"foreignKey:PayeeID" json:"-"`

	types.Timestamps
}
