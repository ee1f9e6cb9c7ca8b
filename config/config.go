package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	OAuth        OAuthConfig
	Redis        RedisConfig
	Publish      PublishConfig
	Payment      PaymentConfig
	Affiliate    AffiliateConfig
	LiberecMpesa LiberecMpesaConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type RedisConfig struct {
	Addr     string // empty disables the published-content cache
	Password string
	TTL      time.Duration
}

// PublishConfig controls who may publish a draft besides paid owners and admins.
type PublishConfig struct {
	AllowlistEmails []string
}

type PaymentConfig struct {
	PaymentExpiry time.Duration
	// Plan prices in cents, keyed by plan type.
	PlanPricesCents map[string]int64
	SweepInterval   string // cron spec for the pending-payment sweeper
}

type AffiliateConfig struct {
	DefaultCommissionRate float64
	MinWithdrawalCents    int64
}

// LiberecMpesaConfig for M-Pesa STK/B2C via TheLiberec Card API
type LiberecMpesaConfig struct {
	BaseURL        string
	Email          string
	Password       string
	WebhookBaseURL string // e.g. https://yourdomain.com - callback will be WebhookBaseURL + /api/v1/webhooks/mpesa
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envStr("PORT", "8088"),
			Env:          envStr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envStr("DATABASE_DSN", "clintonstack:clintonstack@tcp(localhost:3306)/clintonstack?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envStr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envStr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "clintonstack",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     envStr("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: envStr("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  envStr("GOOGLE_REDIRECT_URL", "https://app.clintonstack.com/api/v1/auth/google/callback"),
		},
		Redis: RedisConfig{
			Addr:     envStr("REDIS_ADDR", ""),
			Password: envStr("REDIS_PASSWORD", ""),
			TTL:      15 * time.Minute,
		},
		Publish: PublishConfig{
			AllowlistEmails: envList("PUBLISH_ALLOWLIST", nil),
		},
		Payment: PaymentConfig{
			PaymentExpiry: 30 * time.Minute,
			PlanPricesCents: map[string]int64{
				"monthly": 100000,  // KES 1,000
				"yearly":  1000000, // KES 10,000
			},
			SweepInterval: "@every 10m",
		},
		Affiliate: AffiliateConfig{
			DefaultCommissionRate: 0.10,
			MinWithdrawalCents:    30000, // KES 300
		},
		LiberecMpesa: LiberecMpesaConfig{
			BaseURL:        envStr("MPESA_BASE_URL", "https://card-api.theliberec.com"),
			Email:          envStr("MPESA_MERCHANT_EMAIL", ""),
			Password:       envStr("MPESA_MERCHANT_PASSWORD", ""),
			WebhookBaseURL: envStr("MPESA_WEBHOOK_BASE_URL", "https://app.clintonstack.com"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
