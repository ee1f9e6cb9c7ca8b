package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"clintonstack/internal/database"
	"clintonstack/internal/domain"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"
	"clintonstack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newWebhookRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMpesaWebhookHandler(
		repository.NewPaymentRepository(db),
		service.NewSettlementService(db, repository.NewAuditLogRepository(db)),
	)
	r.POST("/api/v1/webhooks/mpesa", h.Handle)
	return r
}

func postCallback(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func seedWebhookFixtures(t *testing.T, db *gorm.DB) *models.Payment {
	t.Helper()
	payer := &models.User{Name: "Jane", Email: "jane@example.com", Role: domain.RoleClient}
	require.NoError(t, db.Create(payer).Error)
	affUser := &models.User{Name: "Bob", Email: "bob@example.com", Role: domain.RoleAffiliate}
	require.NoError(t, db.Create(affUser).Error)
	aff := &models.Affiliate{UserID: affUser.ID, CommissionRate: 0.10}
	require.NoError(t, db.Create(aff).Error)
	require.NoError(t, db.Create(&models.Referral{
		AffiliateID:    aff.ID,
		ReferredUserID: payer.ID,
		Status:         domain.ReferralStatusActive,
		ClickedAt:      time.Now(),
	}).Error)
	p := &models.Payment{
		UserID:      payer.ID,
		AmountCents: 100000,
		Currency:    "KES",
		PlanType:    "monthly",
		Provider:    domain.PaymentProviderMpesa,
		ProviderRef: "sub-abc123",
		Status:      domain.PaymentStatusPending,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestWebhookCompletedSettlesOnce(t *testing.T) {
	db := newTestDB(t)
	r := newWebhookRouter(db)
	p := seedWebhookFixtures(t, db)

	body := `{"merchant_order_id":"sub-abc123","status":"COMPLETED","receipt_number":"QC12345"}`
	assert.Equal(t, http.StatusOK, postCallback(r, body).Code)
	// Provider retry delivers the same callback again.
	assert.Equal(t, http.StatusOK, postCallback(r, body).Code)

	var got models.Payment
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, domain.PaymentStatusSuccess, got.Status)

	var commissions int64
	require.NoError(t, db.Model(&models.Commission{}).Count(&commissions).Error)
	assert.Equal(t, int64(1), commissions)

	var user models.User
	require.NoError(t, db.First(&user, got.UserID).Error)
	assert.True(t, user.HasPaid)
}

func TestWebhookFailedStatusFailsPendingPayment(t *testing.T) {
	db := newTestDB(t)
	r := newWebhookRouter(db)
	p := seedWebhookFixtures(t, db)

	body := `{"order_id":"sub-abc123","status":"CANCELLED","status_code":"1032"}`
	assert.Equal(t, http.StatusOK, postCallback(r, body).Code)

	var got models.Payment
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, domain.PaymentStatusFailed, got.Status)

	var commissions int64
	require.NoError(t, db.Model(&models.Commission{}).Count(&commissions).Error)
	assert.Zero(t, commissions)
}

func TestWebhookFailureAfterSuccessDoesNotRegress(t *testing.T) {
	db := newTestDB(t)
	r := newWebhookRouter(db)
	p := seedWebhookFixtures(t, db)

	postCallback(r, `{"merchant_order_id":"sub-abc123","status":"COMPLETED"}`)
	postCallback(r, `{"merchant_order_id":"sub-abc123","status":"FAILED"}`)

	var got models.Payment
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, domain.PaymentStatusSuccess, got.Status)
}

func TestWebhookUnknownOrderAcknowledged(t *testing.T) {
	db := newTestDB(t)
	r := newWebhookRouter(db)

	w := postCallback(r, `{"merchant_order_id":"sub-nope","status":"COMPLETED"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postCallback(r, `{"status":"COMPLETED"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	db := newTestDB(t)
	r := newWebhookRouter(db)
	assert.Equal(t, http.StatusBadRequest, postCallback(r, `{not json`).Code)
}
