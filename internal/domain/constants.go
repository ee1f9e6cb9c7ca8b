package domain

const (
	RoleClient    = "CLIENT"
	RoleAffiliate = "AFFILIATE"
	RoleAdmin     = "ADMIN"
)

const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
	PaymentStatusExpired = "EXPIRED"
)

const (
	PaymentProviderManual = "MANUAL"
	PaymentProviderMpesa  = "MPESA"
)

const (
	ReferralStatusActive    = "ACTIVE"
	ReferralStatusConverted = "CONVERTED"
)

const (
	CommissionStatusPending = "PENDING"
	CommissionStatusPaid    = "PAID"
)

const (
	WithdrawalStatusPending   = "PENDING"
	WithdrawalStatusCompleted = "COMPLETED"
	WithdrawalStatusFailed    = "FAILED"
)

// Admin-tunable setting keys; defaults come from config.AffiliateConfig.
const (
	SettingCommissionRateDefault = "commission_rate_default"
	SettingMinWithdrawalCents    = "min_withdrawal_cents"
)
