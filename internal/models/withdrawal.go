package models

import (
	"time"

	"gorm.io/gorm"
)

// Withdrawal is an affiliate's payout request. Balance is debited on
// admin completion, not at request time; pending rows count as
// reserved when new requests are validated.
type Withdrawal struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AffiliateID uint           `gorm:"not null;index" json:"affiliate_id"`
	OrderID     string         `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	PhoneNumber string         `gorm:"size:20;not null" json:"phone_number"`
	MpesaName   string         `gorm:"size:120" json:"mpesa_name"`
	Status      string         `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	ProviderRef string         `gorm:"size:128" json:"provider_ref"`
	ProcessedAt *time.Time     `json:"processed_at"`
	CreatedAt   time.Time      `json:"requested_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"-"`
}

func (Withdrawal) TableName() string { return "withdrawals" }
