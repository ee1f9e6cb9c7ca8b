package models

import (
	"time"

	"clintonstack/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:120;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // CLIENT | AFFILIATE | ADMIN
	HasPaid      bool           `gorm:"default:false" json:"has_paid"`
	PlanType     string         `gorm:"size:20" json:"plan_type"`
	GoogleID     *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Site      *Site      `gorm:"foreignKey:OwnerID" json:"site,omitempty"`
	Affiliate *Affiliate `gorm:"foreignKey:UserID" json:"affiliate,omitempty"`
}

func (u *User) IsAdmin() bool     { return u.Role == domain.RoleAdmin }
func (u *User) IsAffiliate() bool { return u.Role == domain.RoleAffiliate }
func (u *User) IsClient() bool    { return u.Role == domain.RoleClient }

func (User) TableName() string { return "users" }
