package repository

import (
	"time"

	"clintonstack/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SiteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

func (r *SiteRepository) Create(s *models.Site) error {
	return r.db.Create(s).Error
}

func (r *SiteRepository) GetByID(id uint) (*models.Site, error) {
	var s models.Site
	err := r.db.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SiteRepository) GetByOwnerID(ownerID uint) (*models.Site, error) {
	var s models.Site
	err := r.db.Where("owner_id = ?", ownerID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SiteRepository) GetBySlug(slug string) (*models.Site, error) {
	var s models.Site
	err := r.db.Where("slug = ?", slug).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SiteRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Site{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// UpdateDraft writes only the draft column; published is never touched
// by editor saves.
func (r *SiteRepository) UpdateDraft(id uint, draft datatypes.JSON) error {
	return r.db.Model(&models.Site{}).Where("id = ?", id).
		Update("draft", draft).Error
}

// UpdatePublished replaces the published snapshot and stamps the
// publish time.
func (r *SiteRepository) UpdatePublished(id uint, published datatypes.JSON, at time.Time) error {
	return r.db.Model(&models.Site{}).Where("id = ?", id).
		Updates(map[string]interface{}{"published": published, "published_at": at}).Error
}

func (r *SiteRepository) UpdateIntegrations(id uint, integrations datatypes.JSONMap) error {
	return r.db.Model(&models.Site{}).Where("id = ?", id).
		Update("integrations", integrations).Error
}
