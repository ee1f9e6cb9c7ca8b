package models

import (
	"time"

	"gorm.io/gorm"
)

// ReferralCode is a unique invite code belonging to an affiliate.
// Each affiliate has at most one code.
type ReferralCode struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Code      string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ReferralCode) TableName() string { return "referral_codes" }

// Referral links an affiliate to a user they referred. A user can only
// be referred once. Status moves ACTIVE -> CONVERTED when the referred
// user's first payment succeeds; ConvertedAt is set exactly once.
type Referral struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AffiliateID    uint           `gorm:"not null;index" json:"affiliate_id"`
	ReferredUserID uint           `gorm:"uniqueIndex;not null" json:"referred_user_id"`
	Status         string         `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"` // ACTIVE | CONVERTED
	ClickedAt      time.Time      `json:"clicked_at"`
	ConvertedAt    *time.Time     `json:"converted_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Affiliate    Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"`
	ReferredUser User      `gorm:"foreignKey:ReferredUserID" json:"referred_user,omitempty"`
}

func (Referral) TableName() string { return "referrals" }
