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

func newReferralService(db *gorm.DB) *ReferralService {
	return NewReferralService(
		testConfig(),
		repository.NewReferralRepository(db),
		repository.NewAffiliateRepository(db),
		repository.NewSettingRepository(db),
	)
}

func TestEnsureAffiliateCreatesWithDefaultRate(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	user := createUser(t, db, "aff@example.com", domain.RoleAffiliate)

	aff, err := svc.EnsureAffiliate(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.10, aff.CommissionRate)
	assert.Zero(t, aff.AvailableBalanceCents)

	again, err := svc.EnsureAffiliate(user.ID)
	require.NoError(t, err)
	assert.Equal(t, aff.ID, again.ID)
}

func TestEnsureAffiliateRateFromSettings(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	require.NoError(t, repository.NewSettingRepository(db).Set(domain.SettingCommissionRateDefault, "0.2"))

	user := createUser(t, db, "aff@example.com", domain.RoleAffiliate)
	aff, err := svc.EnsureAffiliate(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.2, aff.CommissionRate)
}

func TestCodeForIsStable(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	user := createUser(t, db, "aff@example.com", domain.RoleAffiliate)

	first, err := svc.CodeFor(user.ID)
	require.NoError(t, err)
	assert.Len(t, first.Code, 8)

	second, err := svc.CodeFor(user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
}

func TestRecordReferralIdempotentForSamePair(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	_, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	referred := createUser(t, db, "new@example.com", domain.RoleClient)

	first, err := svc.RecordReferral(aff.ID, referred.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralStatusActive, first.Status)

	again, err := svc.RecordReferral(aff.ID, referred.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.Referral{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordReferralRejectsSecondAffiliate(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	_, first := createAffiliate(t, db, "a1@example.com", 0.10)
	_, second := createAffiliate(t, db, "a2@example.com", 0.10)
	referred := createUser(t, db, "new@example.com", domain.RoleClient)

	_, err := svc.RecordReferral(first.ID, referred.ID)
	require.NoError(t, err)
	_, err = svc.RecordReferral(second.ID, referred.ID)
	assert.ErrorIs(t, err, domain.ErrDuplicateReferral)
}

func TestRecordReferralRejectsSelfReferral(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	user, aff := createAffiliate(t, db, "aff@example.com", 0.10)

	_, err := svc.RecordReferral(aff.ID, user.ID)
	assert.ErrorIs(t, err, domain.ErrDuplicateReferral)
}

func TestConvertSetsTimestampOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	_, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	referred := createUser(t, db, "new@example.com", domain.RoleClient)
	ref := createReferral(t, db, aff.ID, referred.ID)

	require.NoError(t, svc.Convert(ref.ID))

	var got models.Referral
	require.NoError(t, db.First(&got, ref.ID).Error)
	require.NotNil(t, got.ConvertedAt)
	firstAt := *got.ConvertedAt

	require.NoError(t, svc.Convert(ref.ID))
	require.NoError(t, db.First(&got, ref.ID).Error)
	assert.Equal(t, firstAt.Unix(), got.ConvertedAt.Unix())
	assert.Equal(t, domain.ReferralStatusConverted, got.Status)
}

func TestConvertUnknownReferral(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	assert.ErrorIs(t, svc.Convert(999), domain.ErrNotFound)
}

func TestProcessSignupLinksByCode(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	affUser, aff := createAffiliate(t, db, "aff@example.com", 0.10)
	code, err := svc.CodeFor(affUser.ID)
	require.NoError(t, err)

	newUser := createUser(t, db, "new@example.com", domain.RoleClient)
	svc.ProcessSignup(code.Code, newUser)

	var ref models.Referral
	require.NoError(t, db.Where("referred_user_id = ?", newUser.ID).First(&ref).Error)
	assert.Equal(t, aff.ID, ref.AffiliateID)
}

func TestProcessSignupIgnoresBadCode(t *testing.T) {
	db := newTestDB(t)
	svc := newReferralService(db)
	newUser := createUser(t, db, "new@example.com", domain.RoleClient)

	svc.ProcessSignup("nosuchcode", newUser)
	svc.ProcessSignup("", newUser)

	var count int64
	require.NoError(t, db.Model(&models.Referral{}).Count(&count).Error)
	assert.Zero(t, count)
}
