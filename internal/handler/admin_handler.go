package handler

import (
	"net/http"
	"strconv"

	"clintonstack/internal/domain"
	"clintonstack/internal/middleware"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"
	"clintonstack/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userRepo       *repository.UserRepository
	paymentRepo    *repository.PaymentRepository
	commissionRepo *repository.CommissionRepository
	withdrawalRepo *repository.WithdrawalRepository
	settingRepo    *repository.SettingRepository
	auditRepo      *repository.AuditLogRepository
	settlementSvc  *service.SettlementService
	withdrawalSvc  *service.WithdrawalService
}

func NewAdminHandler(
	userRepo *repository.UserRepository,
	paymentRepo *repository.PaymentRepository,
	commissionRepo *repository.CommissionRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	settingRepo *repository.SettingRepository,
	auditRepo *repository.AuditLogRepository,
	settlementSvc *service.SettlementService,
	withdrawalSvc *service.WithdrawalService,
) *AdminHandler {
	return &AdminHandler{
		userRepo:       userRepo,
		paymentRepo:    paymentRepo,
		commissionRepo: commissionRepo,
		withdrawalRepo: withdrawalRepo,
		settingRepo:    settingRepo,
		auditRepo:      auditRepo,
		settlementSvc:  settlementSvc,
		withdrawalSvc:  withdrawalSvc,
	}
}

// CreateManualPayment records an offline payment (bank transfer, cash)
// so it can be settled like any other.
func (h *AdminHandler) CreateManualPayment(c *gin.Context) {
	var req struct {
		UserID      uint   `json:"user_id" binding:"required"`
		AmountCents int64  `json:"amount_cents" binding:"required,min=1"`
		PlanType    string `json:"plan_type" binding:"required"`
		Reference   string `json:"reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.userRepo.GetByID(req.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	p := &models.Payment{
		UserID:      req.UserID,
		AmountCents: req.AmountCents,
		Currency:    "KES",
		PlanType:    req.PlanType,
		Provider:    domain.PaymentProviderManual,
		ProviderRef: "man-" + req.Reference,
		Status:      domain.PaymentStatusPending,
	}
	if err := h.paymentRepo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// SettlePayment marks a payment successful (the manual flow's webhook
// equivalent). Safe to call twice.
func (h *AdminHandler) SettlePayment(c *gin.Context) {
	id := paramID(c)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.settlementSvc.MarkSuccessful(id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settled": true})
}

// ApproveCommission moves a commission PENDING -> PAID, crediting the
// affiliate's available balance.
func (h *AdminHandler) ApproveCommission(c *gin.Context) {
	id := paramID(c)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.settlementSvc.ApproveCommission(id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": true})
}

func (h *AdminHandler) ListCommissions(c *gin.Context) {
	limit, offset := pagination(c)
	status := c.DefaultQuery("status", domain.CommissionStatusPending)
	list, err := h.commissionRepo.ListByStatus(status, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": list})
}

func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	limit, offset := pagination(c)
	status := c.DefaultQuery("status", domain.WithdrawalStatusPending)
	list, err := h.withdrawalRepo.ListByStatus(status, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

// CompleteWithdrawal approves a pending withdrawal and debits the
// affiliate balance.
func (h *AdminHandler) CompleteWithdrawal(c *gin.Context) {
	id := paramID(c)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.withdrawalSvc.Complete(id, middleware.GetUserID(c), true); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": true})
}

// FailWithdrawal rejects a pending withdrawal; the balance is untouched.
func (h *AdminHandler) FailWithdrawal(c *gin.Context) {
	id := paramID(c)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.withdrawalSvc.Complete(id, middleware.GetUserID(c), false); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"failed": true})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	list, err := h.settingRepo.GetAll()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

func (h *AdminHandler) SetSetting(c *gin.Context) {
	var req struct {
		Key   string `json:"key" binding:"required"`
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settingRepo.Set(req.Key, req.Value); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *AdminHandler) AuditLogs(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.auditRepo.List(limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": list})
}

func paramID(c *gin.Context) uint {
	n, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}
