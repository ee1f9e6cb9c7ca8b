package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clintonstack/internal/domain"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWithdrawalWebhookRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewWithdrawalWebhookHandler(
		repository.NewWithdrawalRepository(db),
		repository.NewAffiliateRepository(db),
	)
	r.POST("/api/v1/webhooks/withdrawal", h.Handle)
	return r
}

func postB2CCallback(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/withdrawal", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func seedCompletedWithdrawal(t *testing.T, db *gorm.DB) (*models.Affiliate, *models.Withdrawal) {
	t.Helper()
	aff := &models.Affiliate{UserID: 1, CommissionRate: 0.10, AvailableBalanceCents: 10000}
	require.NoError(t, db.Create(aff).Error)
	w := &models.Withdrawal{
		AffiliateID: aff.ID,
		OrderID:     "wd-order-1",
		AmountCents: 60000,
		PhoneNumber: "254712345678",
		Status:      domain.WithdrawalStatusCompleted,
	}
	require.NoError(t, db.Create(w).Error)
	return aff, w
}

func TestB2CCallbackRecordsReceipt(t *testing.T) {
	db := newTestDB(t)
	r := newWithdrawalWebhookRouter(db)
	aff, w := seedCompletedWithdrawal(t, db)

	body := `{"merchant_order_id":"wd-order-1","status":"COMPLETED","transaction_uuid":"tx-uuid-9"}`
	assert.Equal(t, http.StatusOK, postB2CCallback(r, body).Code)

	var got models.Withdrawal
	require.NoError(t, db.First(&got, w.ID).Error)
	assert.Equal(t, domain.WithdrawalStatusCompleted, got.Status)
	assert.Equal(t, "tx-uuid-9", got.ProviderRef)

	// Balance untouched on success.
	var gotAff models.Affiliate
	require.NoError(t, db.First(&gotAff, aff.ID).Error)
	assert.Equal(t, int64(10000), gotAff.AvailableBalanceCents)
}

func TestB2CCallbackFailureRefundsBalance(t *testing.T) {
	db := newTestDB(t)
	r := newWithdrawalWebhookRouter(db)
	aff, w := seedCompletedWithdrawal(t, db)

	body := `{"order_id":"wd-order-1","status":"FAILED","status_description":"insufficient float"}`
	assert.Equal(t, http.StatusOK, postB2CCallback(r, body).Code)

	var got models.Withdrawal
	require.NoError(t, db.First(&got, w.ID).Error)
	assert.Equal(t, domain.WithdrawalStatusFailed, got.Status)

	var gotAff models.Affiliate
	require.NoError(t, db.First(&gotAff, aff.ID).Error)
	assert.Equal(t, int64(70000), gotAff.AvailableBalanceCents)

	// Retry of the failure callback must not refund twice.
	assert.Equal(t, http.StatusOK, postB2CCallback(r, body).Code)
	require.NoError(t, db.First(&gotAff, aff.ID).Error)
	assert.Equal(t, int64(70000), gotAff.AvailableBalanceCents)
}

func TestB2CCallbackUnknownOrderAcknowledged(t *testing.T) {
	db := newTestDB(t)
	r := newWithdrawalWebhookRouter(db)
	assert.Equal(t, http.StatusOK, postB2CCallback(r, `{"order_id":"wd-nope","status":"COMPLETED"}`).Code)
	assert.Equal(t, http.StatusOK, postB2CCallback(r, `{"status":"COMPLETED"}`).Code)
}
