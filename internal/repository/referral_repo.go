package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"clintonstack/internal/domain"
	"clintonstack/internal/models"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// generateReferralCode returns an 8-character lowercase hex code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil // 8 hex chars, e.g. "a3f2c1b0"
}

// GetOrCreateCode returns the existing referral code for an affiliate
// user, or creates a new unique one.
func (r *ReferralRepository) GetOrCreateCode(userID uint) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	if err := r.db.Where("user_id = ?", userID).First(&rc).Error; err == nil {
		return &rc, nil
	}
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		rc = models.ReferralCode{UserID: userID, Code: code, IsActive: true}
		if err := r.db.Create(&rc).Error; err == nil {
			return &rc, nil
		}
		// Collision: retry with new code
	}
	return nil, fmt.Errorf("failed to generate a unique referral code after retries")
}

// GetByCode returns an active ReferralCode record matching the given code string.
func (r *ReferralRepository) GetByCode(code string) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	err := r.db.Where("code = ? AND is_active = ?", code, true).First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *ReferralRepository) Create(referral *models.Referral) error {
	return r.db.Create(referral).Error
}

func (r *ReferralRepository) GetByID(id uint) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.First(&ref, id).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// GetByReferredUserID returns the Referral record for a user that was
// referred by an affiliate. Users are referred at most once.
func (r *ReferralRepository) GetByReferredUserID(userID uint) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.Where("referred_user_id = ?", userID).First(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// MarkConverted flips an ACTIVE referral to CONVERTED, stamping the
// conversion time exactly once. Already-converted rows are untouched.
func (r *ReferralRepository) MarkConverted(id uint, at time.Time) error {
	return r.db.Model(&models.Referral{}).
		Where("id = ? AND status = ?", id, domain.ReferralStatusActive).
		Updates(map[string]interface{}{
			"status":       domain.ReferralStatusConverted,
			"converted_at": at,
		}).Error
}

// ListByAffiliateID returns all referrals recorded for the given
// affiliate, newest first, with the referred user preloaded.
func (r *ReferralRepository) ListByAffiliateID(affiliateID uint, limit, offset int) ([]models.Referral, error) {
	var list []models.Referral
	err := r.db.Where("affiliate_id = ?", affiliateID).
		Preload("ReferredUser").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
