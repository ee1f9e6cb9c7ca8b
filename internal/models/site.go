package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Site is a tenant's website. Draft holds in-progress edits; Published
// is the live snapshot and is only ever overwritten by an explicit
// publish, never by editor saves.
type Site struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	OwnerID      uint              `gorm:"uniqueIndex;not null" json:"owner_id"` // one site per tenant
	Slug         string            `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	Draft        datatypes.JSON    `gorm:"type:json" json:"draft"`
	Published    datatypes.JSON    `gorm:"type:json" json:"published"`
	Integrations datatypes.JSONMap `gorm:"type:json" json:"integrations"` // opaque third-party keys (analytics, chat, maps)
	PublishedAt  *time.Time        `json:"published_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Site) TableName() string { return "sites" }
