package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"clintonstack/internal/domain"
	"clintonstack/internal/repository"
	"clintonstack/internal/service"

	"github.com/gin-gonic/gin"
)

// LiberecMpesaCallback is the webhook payload from TheLiberec after an
// M-Pesa transaction.
type LiberecMpesaCallback struct {
	Amount            string `json:"amount"`
	CheckoutRequestID string `json:"checkout_request_id"`
	Currency          string `json:"currency"`
	CustomerPhone     string `json:"customer_phone"`
	MerchantOrderID   string `json:"merchant_order_id"`
	OrderID           string `json:"order_id"`
	ReceiptNumber     string `json:"receipt_number"`
	ReferenceOrderID  string `json:"reference_order_id"`
	Status            string `json:"status"`
	StatusCode        string `json:"status_code"`
	StatusDescription string `json:"status_description"`
	TransactionDate   string `json:"transaction_date"`
	TransactionUUID   string `json:"transaction_uuid"`
}

type MpesaWebhookHandler struct {
	paymentRepo   *repository.PaymentRepository
	settlementSvc *service.SettlementService
}

func NewMpesaWebhookHandler(
	paymentRepo *repository.PaymentRepository,
	settlementSvc *service.SettlementService,
) *MpesaWebhookHandler {
	return &MpesaWebhookHandler{
		paymentRepo:   paymentRepo,
		settlementSvc: settlementSvc,
	}
}

// Handle processes TheLiberec M-Pesa callback. On status=COMPLETED the
// payment is settled (publish rights + affiliate commission); other
// statuses fail a still-pending payment. Callbacks are always
// acknowledged so the provider stops retrying.
func (h *MpesaWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	var payload LiberecMpesaCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[MPESA callback] json unmarshal error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	orderID := payload.MerchantOrderID
	if orderID == "" {
		orderID = payload.OrderID
	}
	if orderID == "" {
		orderID = payload.ReferenceOrderID
	}
	if orderID == "" {
		log.Printf("[MPESA callback] no order_id in payload, acknowledging")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	p, err := h.paymentRepo.GetByProviderRef(orderID)
	if err != nil {
		log.Printf("[MPESA callback] payment not found for order_id=%s", orderID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if payload.Status != "COMPLETED" {
		log.Printf("[MPESA callback] status=%s status_code=%s for order_id=%s", payload.Status, payload.StatusCode, orderID)
		if p.Status == domain.PaymentStatusPending {
			p.Status = domain.PaymentStatusFailed
			_ = h.paymentRepo.Update(p)
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err := h.settlementSvc.MarkSuccessful(p.ID); err != nil {
		log.Printf("[MPESA callback] settlement failed for payment %d: %v", p.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
