package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"clintonstack/config"
	"clintonstack/internal/domain"
	"clintonstack/internal/middleware"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"
	"clintonstack/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MpesaHandler struct {
	cfg         *config.Config
	paymentRepo *repository.PaymentRepository
	userRepo    *repository.UserRepository
	provider    *payment.LiberecMpesaProvider
}

func NewMpesaHandler(
	cfg *config.Config,
	paymentRepo *repository.PaymentRepository,
	userRepo *repository.UserRepository,
	provider *payment.LiberecMpesaProvider,
) *MpesaHandler {
	return &MpesaHandler{
		cfg:         cfg,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		provider:    provider,
	}
}

// Initiate starts an STK push for a subscription plan. The payment is
// recorded PENDING and settled by the webhook callback.
func (h *MpesaHandler) Initiate(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "M-Pesa payments not configured"})
		return
	}
	var req struct {
		PlanType    string `json:"plan_type" binding:"required"`
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, ok := h.cfg.Payment.PlanPricesCents[req.PlanType]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plan type"})
		return
	}
	phone := normalizePhone(req.PhoneNumber)
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}
	// Client retries with the same Idempotency-Key get the original
	// payment back instead of a second STK push.
	var idemKey *string
	if k := c.GetHeader("Idempotency-Key"); k != "" {
		if existing, err := h.paymentRepo.GetByIdempotencyKey(k); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"payment_id": existing.ID,
				"order_id":   existing.ProviderRef,
				"status":     existing.Status,
			})
			return
		}
		idemKey = &k
	}
	orderID := fmt.Sprintf("sub-%s", uuid.New().String())
	expiresAt := time.Now().Add(h.cfg.Payment.PaymentExpiry)
	p := &models.Payment{
		UserID:         userID,
		AmountCents:    price,
		Currency:       "KES",
		PlanType:       req.PlanType,
		Provider:       domain.PaymentProviderMpesa,
		ProviderRef:    orderID,
		Status:         domain.PaymentStatusPending,
		IdempotencyKey: idemKey,
		ExpiresAt:      &expiresAt,
	}
	if err := h.paymentRepo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment"})
		return
	}
	resp, err := h.provider.InitiatePayment(c.Request.Context(), payment.PaymentRequest{
		UserID:        userID,
		AmountCents:   price,
		Currency:      "KES",
		Description:   fmt.Sprintf("ClintonStack %s subscription", req.PlanType),
		OrderID:       orderID,
		CustomerPhone: phone,
		CustomerEmail: user.Email,
	})
	if err != nil {
		log.Printf("[MPESA] STK init failed for payment %d: %v", p.ID, err)
		p.Status = domain.PaymentStatusFailed
		_ = h.paymentRepo.Update(p)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment initiation failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"payment_id":          p.ID,
		"order_id":            orderID,
		"checkout_request_id": resp.CheckoutRequestID,
		"status":              p.Status,
	})
}
