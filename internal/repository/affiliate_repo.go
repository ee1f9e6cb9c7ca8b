package repository

import (
	"clintonstack/internal/domain"
	"clintonstack/internal/models"

	"gorm.io/gorm"
)

type AffiliateRepository struct {
	db *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) *AffiliateRepository {
	return &AffiliateRepository{db: db}
}

func (r *AffiliateRepository) Create(a *models.Affiliate) error {
	return r.db.Create(a).Error
}

func (r *AffiliateRepository) GetByID(id uint) (*models.Affiliate, error) {
	var a models.Affiliate
	err := r.db.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AffiliateRepository) GetByUserID(userID uint) (*models.Affiliate, error) {
	var a models.Affiliate
	err := r.db.Where("user_id = ?", userID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreditEarnings adds a paid commission to both running totals.
func (r *AffiliateRepository) CreditEarnings(id uint, amountCents int64) error {
	return r.db.Model(&models.Affiliate{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"available_balance_cents": gorm.Expr("available_balance_cents + ?", amountCents),
			"total_earned_cents":      gorm.Expr("total_earned_cents + ?", amountCents),
		}).Error
}

// CreditBalance returns funds to the available balance without
// touching lifetime earnings, e.g. when a payout bounces after the
// withdrawal was debited.
func (r *AffiliateRepository) CreditBalance(id uint, amountCents int64) error {
	return r.db.Model(&models.Affiliate{}).Where("id = ?", id).
		Update("available_balance_cents", gorm.Expr("available_balance_cents + ?", amountCents)).Error
}

// DebitBalance deducts a completed withdrawal from the available
// balance with a compare-and-set predicate, so the balance can never
// go negative under concurrent withdrawals.
func (r *AffiliateRepository) DebitBalance(id uint, amountCents int64) error {
	res := r.db.Model(&models.Affiliate{}).
		Where("id = ? AND available_balance_cents >= ?", id, amountCents).
		Update("available_balance_cents", gorm.Expr("available_balance_cents - ?", amountCents))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}
