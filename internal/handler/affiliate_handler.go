package handler

import (
	"net/http"
	"regexp"
	"strings"

	"clintonstack/internal/middleware"
	"clintonstack/internal/repository"
	"clintonstack/internal/service"

	"github.com/gin-gonic/gin"
)

type AffiliateHandler struct {
	referralSvc    *service.ReferralService
	withdrawalSvc  *service.WithdrawalService
	affiliateRepo  *repository.AffiliateRepository
	commissionRepo *repository.CommissionRepository
}

func NewAffiliateHandler(
	referralSvc *service.ReferralService,
	withdrawalSvc *service.WithdrawalService,
	affiliateRepo *repository.AffiliateRepository,
	commissionRepo *repository.CommissionRepository,
) *AffiliateHandler {
	return &AffiliateHandler{
		referralSvc:    referralSvc,
		withdrawalSvc:  withdrawalSvc,
		affiliateRepo:  affiliateRepo,
		commissionRepo: commissionRepo,
	}
}

// Dashboard returns the affiliate's account, referral code and totals.
func (h *AffiliateHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	aff, err := h.referralSvc.EnsureAffiliate(userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	code, err := h.referralSvc.CodeFor(userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"affiliate":     aff,
		"referral_code": code.Code,
	})
}

func (h *AffiliateHandler) Referrals(c *gin.Context) {
	aff, err := h.affiliateRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no affiliate account"})
		return
	}
	limit, offset := pagination(c)
	list, err := h.referralSvc.ListReferrals(aff.ID, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": list})
}

func (h *AffiliateHandler) Commissions(c *gin.Context) {
	aff, err := h.affiliateRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no affiliate account"})
		return
	}
	limit, offset := pagination(c)
	list, err := h.commissionRepo.ListByAffiliateID(aff.ID, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": list})
}

// RequestWithdrawal creates a pending payout request for admin review.
func (h *AffiliateHandler) RequestWithdrawal(c *gin.Context) {
	var req struct {
		AmountKES   int64  `json:"amount_kes" binding:"required,min=1"`
		PhoneNumber string `json:"phone_number" binding:"required"`
		MpesaName   string `json:"mpesa_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phone := normalizePhone(req.PhoneNumber)
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	w, err := h.withdrawalSvc.Request(middleware.GetUserID(c), req.AmountKES*100, phone, req.MpesaName)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *AffiliateHandler) Withdrawals(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.withdrawalSvc.ListForAffiliate(middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

var phoneDigits = regexp.MustCompile(`^\d{9,12}$`)

// normalizePhone converts Kenyan numbers to 254XXXXXXXXX form.
func normalizePhone(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.TrimPrefix(p, "+")
	p = strings.ReplaceAll(p, " ", "")
	if strings.HasPrefix(p, "0") {
		p = "254" + p[1:]
	}
	if !strings.HasPrefix(p, "254") || !phoneDigits.MatchString(p) {
		return ""
	}
	return p
}
