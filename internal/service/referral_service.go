package service

import (
	"errors"
	"log"
	"strconv"
	"time"

	"clintonstack/config"
	"clintonstack/internal/domain"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"

	"gorm.io/gorm"
)

// ReferralService is the ledger of affiliate -> referred-user
// relationships and their conversion state.
type ReferralService struct {
	cfg           *config.Config
	referralRepo  *repository.ReferralRepository
	affiliateRepo *repository.AffiliateRepository
	settingRepo   *repository.SettingRepository
}

func NewReferralService(
	cfg *config.Config,
	referralRepo *repository.ReferralRepository,
	affiliateRepo *repository.AffiliateRepository,
	settingRepo *repository.SettingRepository,
) *ReferralService {
	return &ReferralService{
		cfg:           cfg,
		referralRepo:  referralRepo,
		affiliateRepo: affiliateRepo,
		settingRepo:   settingRepo,
	}
}

// EnsureAffiliate returns the commission account for an affiliate
// user, creating it with the configured default rate on first need.
func (s *ReferralService) EnsureAffiliate(userID uint) (*models.Affiliate, error) {
	if a, err := s.affiliateRepo.GetByUserID(userID); err == nil {
		return a, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	a := &models.Affiliate{
		UserID:         userID,
		CommissionRate: s.defaultRate(),
	}
	if err := s.affiliateRepo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

// CodeFor returns the affiliate's referral code, creating one if the
// account predates code generation.
func (s *ReferralService) CodeFor(userID uint) (*models.ReferralCode, error) {
	return s.referralRepo.GetOrCreateCode(userID)
}

// RecordReferral records that an affiliate referred a user. Recording
// the same pair again is an idempotent no-op returning the existing
// row; a user already referred by someone else, or an affiliate
// referring themselves, is ErrDuplicateReferral.
func (s *ReferralService) RecordReferral(affiliateID, referredUserID uint) (*models.Referral, error) {
	aff, err := s.affiliateRepo.GetByID(affiliateID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if aff.UserID == referredUserID {
		return nil, domain.ErrDuplicateReferral
	}
	if existing, err := s.referralRepo.GetByReferredUserID(referredUserID); err == nil {
		if existing.AffiliateID == affiliateID {
			return existing, nil
		}
		return nil, domain.ErrDuplicateReferral
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	ref := &models.Referral{
		AffiliateID:    affiliateID,
		ReferredUserID: referredUserID,
		Status:         domain.ReferralStatusActive,
		ClickedAt:      time.Now(),
	}
	if err := s.referralRepo.Create(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// Convert marks a referral CONVERTED. Already-converted referrals are
// a no-op; the conversion timestamp is set exactly once.
func (s *ReferralService) Convert(referralID uint) error {
	if _, err := s.referralRepo.GetByID(referralID); err != nil {
		return asNotFound(err)
	}
	return s.referralRepo.MarkConverted(referralID, time.Now())
}

// ProcessSignup links a new tenant to the affiliate whose code they
// signed up with. Best-effort: a bad code never fails registration.
func (s *ReferralService) ProcessSignup(referralCode string, newUser *models.User) {
	if referralCode == "" {
		return
	}
	rc, err := s.referralRepo.GetByCode(referralCode)
	if err != nil || rc.UserID == newUser.ID {
		return
	}
	aff, err := s.affiliateRepo.GetByUserID(rc.UserID)
	if err != nil {
		log.Printf("[Referral] code %s has no affiliate account: %v", referralCode, err)
		return
	}
	if _, err := s.RecordReferral(aff.ID, newUser.ID); err != nil {
		log.Printf("[Referral] failed to record referral for user %d: %v", newUser.ID, err)
	}
}

// ListReferrals returns an affiliate's referrals, newest first.
func (s *ReferralService) ListReferrals(affiliateID uint, limit, offset int) ([]models.Referral, error) {
	return s.referralRepo.ListByAffiliateID(affiliateID, limit, offset)
}

func (s *ReferralService) defaultRate() float64 {
	fallback := s.cfg.Affiliate.DefaultCommissionRate
	val, err := s.settingRepo.Get(domain.SettingCommissionRateDefault)
	if err != nil || val == "" {
		return fallback
	}
	rate, err := strconv.ParseFloat(val, 64)
	if err != nil || rate <= 0 || rate >= 1 {
		return fallback
	}
	return rate
}
