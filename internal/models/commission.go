package models

import (
	"time"

	"gorm.io/gorm"
)

// Commission is a credit owed to an affiliate for a converted
// referral's successful payment. The composite unique index makes
// settlement retries safe: at most one commission can ever exist per
// (affiliate, payment) pair.
type Commission struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	AffiliateID           uint           `gorm:"not null;index;uniqueIndex:idx_commission_affiliate_payment" json:"affiliate_id"`
	PaymentID             uint           `gorm:"not null;uniqueIndex:idx_commission_affiliate_payment" json:"payment_id"`
	ReferralID            uint           `gorm:"not null;index" json:"referral_id"`
	CommissionAmountCents int64          `gorm:"not null" json:"commission_amount_cents"`
	Status                string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"` // PENDING | PAID
	PaidAt                *time.Time     `json:"paid_at"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"-"`
	Payment   Payment   `gorm:"foreignKey:PaymentID" json:"-"`
}

func (Commission) TableName() string { return "commissions" }
