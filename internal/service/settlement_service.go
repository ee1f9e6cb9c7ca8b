package service

import (
	"errors"
	"log"
	"math"
	"time"

	"clintonstack/internal/domain"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"

	"gorm.io/gorm"
)

// SettlementService transitions payments to SUCCESS and credits the
// referring affiliate. The payment-success write is the primary
// effect; the commission side is best-effort relative to it.
type SettlementService struct {
	db        *gorm.DB
	auditRepo *repository.AuditLogRepository
}

func NewSettlementService(db *gorm.DB, auditRepo *repository.AuditLogRepository) *SettlementService {
	return &SettlementService{db: db, auditRepo: auditRepo}
}

// MarkSuccessful settles a payment inside a single transaction:
// payment -> SUCCESS, payer gains publish rights, and if the payer was
// referred, exactly one PENDING commission is created and the referral
// converted. Calling it again on an already-successful payment is a
// no-op, so webhook retries can never double-credit an affiliate.
func (s *SettlementService) MarkSuccessful(paymentID uint) error {
	var settled *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.First(&p, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if p.Status == domain.PaymentStatusSuccess {
			return nil
		}
		now := time.Now()
		p.Status = domain.PaymentStatusSuccess
		p.CompletedAt = &now
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", p.UserID).
			Updates(map[string]interface{}{"has_paid": true, "plan_type": p.PlanType}).Error; err != nil {
			return err
		}
		// Commission in a savepoint: an affiliate-side failure is
		// logged and released without losing the payment-success
		// write above.
		if err := tx.Transaction(func(tx2 *gorm.DB) error {
			return settleCommission(tx2, &p, now)
		}); err != nil {
			log.Printf("[Settlement] commission skipped for payment %d: %v", p.ID, err)
		}
		settled = &p
		return nil
	})
	if err != nil {
		return err
	}
	if settled != nil && s.auditRepo != nil {
		_ = s.auditRepo.Create(&models.AuditLog{
			UserID:   &settled.UserID,
			Action:   "payment_settled",
			Resource: "payment",
		})
	}
	return nil
}

// settleCommission creates the affiliate's commission for a settled
// payment and converts the referral, atomically. No referral on the
// payer is the common case and not an error.
func settleCommission(tx *gorm.DB, p *models.Payment, now time.Time) error {
	var ref models.Referral
	if err := tx.Where("referred_user_id = ?", p.UserID).First(&ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	var aff models.Affiliate
	if err := tx.First(&aff, ref.AffiliateID).Error; err != nil {
		return err
	}
	// Existence check backs up the unique (affiliate, payment) index.
	var count int64
	if err := tx.Model(&models.Commission{}).
		Where("affiliate_id = ? AND payment_id = ?", aff.ID, p.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	amount := int64(math.Round(float64(p.AmountCents) * aff.CommissionRate))
	comm := models.Commission{
		AffiliateID:           aff.ID,
		PaymentID:             p.ID,
		ReferralID:            ref.ID,
		CommissionAmountCents: amount,
		Status:                domain.CommissionStatusPending,
	}
	if err := tx.Create(&comm).Error; err != nil {
		return err
	}
	if ref.Status != domain.ReferralStatusConverted {
		if err := tx.Model(&models.Referral{}).
			Where("id = ? AND status = ?", ref.ID, domain.ReferralStatusActive).
			Updates(map[string]interface{}{
				"status":       domain.ReferralStatusConverted,
				"converted_at": now,
			}).Error; err != nil {
			return err
		}
	}
	log.Printf("[Settlement] commission %d cents for affiliate %d on payment %d", amount, aff.ID, p.ID)
	return nil
}

// ApproveCommission is the admin action moving a commission PENDING ->
// PAID and crediting the affiliate's balance and lifetime earnings.
// Approving twice credits once.
func (s *SettlementService) ApproveCommission(commissionID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var comm models.Commission
		if err := tx.First(&comm, commissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if comm.Status == domain.CommissionStatusPaid {
			return nil
		}
		now := time.Now()
		comm.Status = domain.CommissionStatusPaid
		comm.PaidAt = &now
		if err := tx.Save(&comm).Error; err != nil {
			return err
		}
		return tx.Model(&models.Affiliate{}).Where("id = ?", comm.AffiliateID).
			Updates(map[string]interface{}{
				"available_balance_cents": gorm.Expr("available_balance_cents + ?", comm.CommissionAmountCents),
				"total_earned_cents":      gorm.Expr("total_earned_cents + ?", comm.CommissionAmountCents),
			}).Error
	})
}
