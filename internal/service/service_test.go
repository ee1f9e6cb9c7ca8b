package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"clintonstack/config"
	"clintonstack/internal/database"
	"clintonstack/internal/domain"
	"clintonstack/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory database. Each test gets its own
// named shared-cache DSN so gorm's connection pool sees one database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Affiliate: config.AffiliateConfig{
			DefaultCommissionRate: 0.10,
			MinWithdrawalCents:    30000,
		},
		Payment: config.PaymentConfig{
			PaymentExpiry:   15 * time.Minute,
			PlanPricesCents: map[string]int64{"monthly": 100000, "yearly": 1000000},
		},
	}
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: "Test " + role, Email: email, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createAffiliate(t *testing.T, db *gorm.DB, email string, rate float64) (*models.User, *models.Affiliate) {
	t.Helper()
	u := createUser(t, db, email, domain.RoleAffiliate)
	a := &models.Affiliate{UserID: u.ID, CommissionRate: rate}
	require.NoError(t, db.Create(a).Error)
	return u, a
}

func createPendingPayment(t *testing.T, db *gorm.DB, userID uint, amountCents int64) *models.Payment {
	t.Helper()
	p := &models.Payment{
		UserID:      userID,
		AmountCents: amountCents,
		Currency:    "KES",
		PlanType:    "monthly",
		Provider:    domain.PaymentProviderMpesa,
		ProviderRef: fmt.Sprintf("sub-test-%d", testDBSeq.Add(1)),
		Status:      domain.PaymentStatusPending,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createReferral(t *testing.T, db *gorm.DB, affiliateID, referredUserID uint) *models.Referral {
	t.Helper()
	ref := &models.Referral{
		AffiliateID:    affiliateID,
		ReferredUserID: referredUserID,
		Status:         domain.ReferralStatusActive,
		ClickedAt:      time.Now(),
	}
	require.NoError(t, db.Create(ref).Error)
	return ref
}
