package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"clintonstack/config"
	"clintonstack/internal/domain"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"
	"clintonstack/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithdrawalService lets an affiliate request a payout of available
// balance and an admin settle the request. Balance is debited on
// completion only; pending requests count as reserved so concurrent
// requests cannot overdraw.
type WithdrawalService struct {
	db             *gorm.DB
	cfg            *config.Config
	withdrawalRepo *repository.WithdrawalRepository
	affiliateRepo  *repository.AffiliateRepository
	settingRepo    *repository.SettingRepository
	auditRepo      *repository.AuditLogRepository
	mpesa          *payment.LiberecMpesaProvider // nil when payouts are manual
}

func NewWithdrawalService(
	db *gorm.DB,
	cfg *config.Config,
	withdrawalRepo *repository.WithdrawalRepository,
	affiliateRepo *repository.AffiliateRepository,
	settingRepo *repository.SettingRepository,
	auditRepo *repository.AuditLogRepository,
	mpesa *payment.LiberecMpesaProvider,
) *WithdrawalService {
	return &WithdrawalService{
		db:             db,
		cfg:            cfg,
		withdrawalRepo: withdrawalRepo,
		affiliateRepo:  affiliateRepo,
		settingRepo:    settingRepo,
		auditRepo:      auditRepo,
		mpesa:          mpesa,
	}
}

// Request creates a PENDING withdrawal for the affiliate user. The
// amount must clear the minimum threshold and, together with other
// pending requests, fit in the available balance.
func (s *WithdrawalService) Request(affiliateUserID uint, amountCents int64, phone, mpesaName string) (*models.Withdrawal, error) {
	aff, err := s.affiliateRepo.GetByUserID(affiliateUserID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if amountCents < s.minWithdrawal() {
		return nil, domain.ErrBelowMinimum
	}
	pending, err := s.withdrawalRepo.PendingTotal(aff.ID)
	if err != nil {
		return nil, err
	}
	if amountCents+pending > aff.AvailableBalanceCents {
		return nil, domain.ErrInsufficientBalance
	}
	w := &models.Withdrawal{
		AffiliateID: aff.ID,
		OrderID:     fmt.Sprintf("wd-%s", uuid.New().String()),
		AmountCents: amountCents,
		PhoneNumber: phone,
		MpesaName:   mpesaName,
		Status:      domain.WithdrawalStatusPending,
	}
	if err := s.withdrawalRepo.Create(w); err != nil {
		return nil, err
	}
	return w, nil
}

// Complete is the admin decision on a pending withdrawal. Completion
// debits the balance with a compare-and-set guard; failure leaves the
// balance untouched. Terminal rows are a no-op.
func (s *WithdrawalService) Complete(withdrawalID uint, adminID uint, succeeded bool) error {
	var completed *models.Withdrawal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var w models.Withdrawal
		if err := tx.First(&w, withdrawalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if w.Status != domain.WithdrawalStatusPending {
			return nil
		}
		now := time.Now()
		w.ProcessedAt = &now
		if !succeeded {
			w.Status = domain.WithdrawalStatusFailed
			return tx.Save(&w).Error
		}
		res := tx.Model(&models.Affiliate{}).
			Where("id = ? AND available_balance_cents >= ?", w.AffiliateID, w.AmountCents).
			Update("available_balance_cents", gorm.Expr("available_balance_cents - ?", w.AmountCents))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInsufficientBalance
		}
		w.Status = domain.WithdrawalStatusCompleted
		if err := tx.Save(&w).Error; err != nil {
			return err
		}
		completed = &w
		return nil
	})
	if err != nil {
		return err
	}
	if completed == nil {
		return nil
	}
	if s.auditRepo != nil {
		_ = s.auditRepo.Create(&models.AuditLog{
			UserID:     &adminID,
			Action:     "withdrawal_completed",
			Resource:   "withdrawal",
			ResourceID: completed.OrderID,
		})
	}
	s.payOut(completed)
	return nil
}

// payOut sends the approved amount over M-Pesa B2C when a provider is
// configured. The bookkeeping is already final; a provider failure is
// an operational problem for the admin, not a rollback.
func (s *WithdrawalService) payOut(w *models.Withdrawal) {
	if s.mpesa == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	resp, err := s.mpesa.InitiateB2C(ctx, payment.B2CRequest{
		Amount:      w.AmountCents / 100,
		PhoneNumber: w.PhoneNumber,
		Description: "ClintonStack affiliate payout",
		Remarks:     "Commission withdrawal",
		OrderID:     w.OrderID,
	})
	if err != nil {
		log.Printf("[Withdrawal] B2C payout failed for %s: %v", w.OrderID, err)
		return
	}
	w.ProviderRef = resp.UUID
	if err := s.withdrawalRepo.Update(w); err != nil {
		log.Printf("[Withdrawal] failed to store provider ref for %s: %v", w.OrderID, err)
	}
}

// ListForAffiliate returns the affiliate user's withdrawal history.
func (s *WithdrawalService) ListForAffiliate(affiliateUserID uint, limit, offset int) ([]models.Withdrawal, error) {
	aff, err := s.affiliateRepo.GetByUserID(affiliateUserID)
	if err != nil {
		return nil, asNotFound(err)
	}
	return s.withdrawalRepo.ListByAffiliateID(aff.ID, limit, offset)
}

func (s *WithdrawalService) minWithdrawal() int64 {
	fallback := s.cfg.Affiliate.MinWithdrawalCents
	val, err := s.settingRepo.Get(domain.SettingMinWithdrawalCents)
	if err != nil || val == "" {
		return fallback
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
