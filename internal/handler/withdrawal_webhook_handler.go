package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"clintonstack/internal/domain"
	"clintonstack/internal/repository"

	"github.com/gin-gonic/gin"
)

// B2CCallback is the webhook payload from M-Pesa B2C payouts.
type B2CCallback struct {
	Amount                   string `json:"amount"`
	ConversationID           string `json:"conversation_id"`
	Currency                 string `json:"currency"`
	CustomerPhone            string `json:"customer_phone"`
	MerchantOrderID          string `json:"merchant_order_id"`
	OrderID                  string `json:"order_id"`
	OriginatorConversationID string `json:"originator_conversation_id"`
	ReceiptNumber            string `json:"receipt_number"`
	ReferenceOrderID         string `json:"reference_order_id"`
	Status                   string `json:"status"`
	StatusCode               string `json:"status_code"`
	StatusDescription        string `json:"status_description"`
	TransactionDate          string `json:"transaction_date"`
	TransactionUUID          string `json:"transaction_uuid"`
}

type WithdrawalWebhookHandler struct {
	withdrawalRepo *repository.WithdrawalRepository
	affiliateRepo  *repository.AffiliateRepository
}

func NewWithdrawalWebhookHandler(
	withdrawalRepo *repository.WithdrawalRepository,
	affiliateRepo *repository.AffiliateRepository,
) *WithdrawalWebhookHandler {
	return &WithdrawalWebhookHandler{
		withdrawalRepo: withdrawalRepo,
		affiliateRepo:  affiliateRepo,
	}
}

// Handle processes the B2C payout callback. The withdrawal was already
// completed and debited when the admin approved it; on COMPLETED this
// just records the provider receipt, on failure it refunds the balance
// and flips the row to FAILED. Callbacks are always acknowledged.
func (h *WithdrawalWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	var payload B2CCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[Withdrawal callback] json unmarshal error: %v", err)
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
		log.Printf("[Withdrawal callback] no order_id in payload, acknowledging")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	w, err := h.withdrawalRepo.GetByOrderID(orderID)
	if err != nil {
		log.Printf("[Withdrawal callback] withdrawal not found for order_id=%s", orderID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if w.Status != domain.WithdrawalStatusCompleted {
		log.Printf("[Withdrawal callback] withdrawal %d is %s, ignoring callback for order_id=%s", w.ID, w.Status, orderID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if payload.Status == "COMPLETED" {
		if payload.TransactionUUID != "" {
			w.ProviderRef = payload.TransactionUUID
		}
		if err := h.withdrawalRepo.Update(w); err != nil {
			log.Printf("[Withdrawal callback] update failed for %s: %v", orderID, err)
		}
	} else {
		w.Status = domain.WithdrawalStatusFailed
		if err := h.withdrawalRepo.Update(w); err != nil {
			log.Printf("[Withdrawal callback] update failed for %s: %v", orderID, err)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if err := h.affiliateRepo.CreditBalance(w.AffiliateID, w.AmountCents); err != nil {
			log.Printf("[Withdrawal callback] refund failed for affiliate %d: %v", w.AffiliateID, err)
		}
		log.Printf("[Withdrawal callback] payout %s failed (%s), refunded %d cents to affiliate %d",
			orderID, payload.StatusDescription, w.AmountCents, w.AffiliateID)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
