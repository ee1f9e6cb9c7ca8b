package repository

import (
	"clintonstack/internal/models"

	"gorm.io/gorm"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) Create(c *models.Commission) error {
	return r.db.Create(c).Error
}

func (r *CommissionRepository) GetByID(id uint) (*models.Commission, error) {
	var c models.Commission
	err := r.db.First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommissionRepository) GetByPaymentID(paymentID uint) (*models.Commission, error) {
	var c models.Commission
	err := r.db.Where("payment_id = ?", paymentID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommissionRepository) ListByAffiliateID(affiliateID uint, limit, offset int) ([]models.Commission, error) {
	var list []models.Commission
	err := r.db.Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *CommissionRepository) ListByStatus(status string, limit, offset int) ([]models.Commission, error) {
	var list []models.Commission
	err := r.db.Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
