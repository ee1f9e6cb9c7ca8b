package service

import (
	"testing"

	"clintonstack/internal/domain"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWithdrawalService(db *gorm.DB) *WithdrawalService {
	return NewWithdrawalService(
		db,
		testConfig(),
		repository.NewWithdrawalRepository(db),
		repository.NewAffiliateRepository(db),
		repository.NewSettingRepository(db),
		repository.NewAuditLogRepository(db),
		nil, // manual payouts in tests
	)
}

func fundAffiliate(t *testing.T, db *gorm.DB, affiliateID uint, cents int64) {
	t.Helper()
	require.NoError(t, db.Model(&models.Affiliate{}).Where("id = ?", affiliateID).
		Update("available_balance_cents", cents).Error)
}

func TestRequestBelowMinimum(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	user, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	fundAffiliate(t, db, aff.ID, 100000)

	_, err := svc.Request(user.ID, 25000, "254712345678", "Jane")
	assert.ErrorIs(t, err, domain.ErrBelowMinimum)
}

func TestRequestBelowMinimumEvenWithNoBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	user, _ := createAffiliate(t, db, "aff@example.com", 0.10)

	// The threshold check comes before the balance check.
	_, err := svc.Request(user.ID, 25000, "254712345678", "Jane")
	assert.ErrorIs(t, err, domain.ErrBelowMinimum)
}

func TestRequestInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	user, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	fundAffiliate(t, db, aff.ID, 40000)

	_, err := svc.Request(user.ID, 50000, "254712345678", "Jane")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestRequestDoesNotDebitBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	user, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	fundAffiliate(t, db, aff.ID, 100000)

	w, err := svc.Request(user.ID, 50000, "254712345678", "Jane")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusPending, w.Status)
	assert.NotEmpty(t, w.OrderID)

	var got models.Affiliate
	require.NoError(t, db.First(&got, aff.ID).Error)
	assert.Equal(t, int64(100000), got.AvailableBalanceCents)
}

func TestRequestCountsPendingAsReserved(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	user, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	fundAffiliate(t, db, aff.ID, 100000)

	_, err := svc.Request(user.ID, 60000, "254712345678", "Jane")
	require.NoError(t, err)

	// 60000 reserved; another 60000 would overdraw the 100000 balance.
	_, err = svc.Request(user.ID, 60000, "254712345678", "Jane")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// 40000 still fits.
	_, err = svc.Request(user.ID, 40000, "254712345678", "Jane")
	assert.NoError(t, err)
}

func TestCompleteDebitsBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	user, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	fundAffiliate(t, db, aff.ID, 100000)

	w, err := svc.Request(user.ID, 60000, "254712345678", "Jane")
	require.NoError(t, err)
	require.NoError(t, svc.Complete(w.ID, 1, true))

	var got models.Affiliate
	require.NoError(t, db.First(&got, aff.ID).Error)
	assert.Equal(t, int64(40000), got.AvailableBalanceCents)

	var gotW models.Withdrawal
	require.NoError(t, db.First(&gotW, w.ID).Error)
	assert.Equal(t, domain.WithdrawalStatusCompleted, gotW.Status)
	require.NotNil(t, gotW.ProcessedAt)

	// Terminal rows are a no-op: no second debit.
	require.NoError(t, svc.Complete(w.ID, 1, true))
	require.NoError(t, db.First(&got, aff.ID).Error)
	assert.Equal(t, int64(40000), got.AvailableBalanceCents)
}

func TestCompleteFailureLeavesBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	user, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	fundAffiliate(t, db, aff.ID, 100000)

	w, err := svc.Request(user.ID, 60000, "254712345678", "Jane")
	require.NoError(t, err)
	require.NoError(t, svc.Complete(w.ID, 1, false))

	var got models.Affiliate
	require.NoError(t, db.First(&got, aff.ID).Error)
	assert.Equal(t, int64(100000), got.AvailableBalanceCents)

	var gotW models.Withdrawal
	require.NoError(t, db.First(&gotW, w.ID).Error)
	assert.Equal(t, domain.WithdrawalStatusFailed, gotW.Status)
}

func TestCompleteGuardsAgainstDrainedBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	user, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	fundAffiliate(t, db, aff.ID, 60000)

	w, err := svc.Request(user.ID, 60000, "254712345678", "Jane")
	require.NoError(t, err)

	// Balance drained between request and approval.
	fundAffiliate(t, db, aff.ID, 10000)
	assert.ErrorIs(t, svc.Complete(w.ID, 1, true), domain.ErrInsufficientBalance)

	var gotW models.Withdrawal
	require.NoError(t, db.First(&gotW, w.ID).Error)
	assert.Equal(t, domain.WithdrawalStatusPending, gotW.Status)
}

func TestCompleteUnknownWithdrawal(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	assert.ErrorIs(t, svc.Complete(999, 1, true), domain.ErrNotFound)
}

func TestMinWithdrawalFromSettings(t *testing.T) {
	db := newTestDB(t)
	svc := newWithdrawalService(db)
	user, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	fundAffiliate(t, db, aff.ID, 100000)

	require.NoError(t, repository.NewSettingRepository(db).Set(domain.SettingMinWithdrawalCents, "50000"))

	_, err := svc.Request(user.ID, 40000, "254712345678", "Jane")
	assert.ErrorIs(t, err, domain.ErrBelowMinimum)
	_, err = svc.Request(user.ID, 50000, "254712345678", "Jane")
	assert.NoError(t, err)
}
