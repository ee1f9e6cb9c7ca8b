package models

import (
	"time"

	"gorm.io/gorm"
)

// Affiliate is the commission account for a user with the AFFILIATE
// role. AvailableBalanceCents and TotalEarnedCents are only mutated by
// commission approval and withdrawal completion, so at any point
// available balance == sum(PAID commissions) - completed withdrawals.
type Affiliate struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	UserID                uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	CommissionRate        float64        `gorm:"not null;default:0.1" json:"commission_rate"`
	AvailableBalanceCents int64          `gorm:"not null;default:0" json:"available_balance_cents"`
	TotalEarnedCents      int64          `gorm:"not null;default:0" json:"total_earned_cents"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Affiliate) TableName() string { return "affiliates" }
