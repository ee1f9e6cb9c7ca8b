package router

import (
	"log"
	"time"

	"clintonstack/config"
	"clintonstack/internal/cache"
	"clintonstack/internal/handler"
	"clintonstack/internal/middleware"
	"clintonstack/internal/repository"
	"clintonstack/internal/service"
	"clintonstack/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, published *cache.PublishedCache) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	affiliateRepo := repository.NewAffiliateRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	var mpesa *payment.LiberecMpesaProvider
	if cfg.LiberecMpesa.Email != "" {
		mpesa = payment.NewLiberecMpesaProvider(
			cfg.LiberecMpesa.BaseURL,
			cfg.LiberecMpesa.Email,
			cfg.LiberecMpesa.Password,
			cfg.LiberecMpesa.WebhookBaseURL,
		)
	} else {
		log.Printf("[Mpesa] STK/B2C disabled: set MPESA_MERCHANT_EMAIL to enable")
	}

	// Services
	siteSvc := service.NewSiteService(cfg, siteRepo, auditRepo, published)
	referralSvc := service.NewReferralService(cfg, referralRepo, affiliateRepo, settingRepo)
	authSvc := service.NewAuthService(cfg, userRepo, siteSvc, referralSvc)
	settlementSvc := service.NewSettlementService(db, auditRepo)
	withdrawalSvc := service.NewWithdrawalService(db, cfg, withdrawalRepo, affiliateRepo, settingRepo, auditRepo, mpesa)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	siteHandler := handler.NewSiteHandler(siteSvc, userRepo)
	publicHandler := handler.NewPublicHandler(siteSvc)
	affiliateHandler := handler.NewAffiliateHandler(referralSvc, withdrawalSvc, affiliateRepo, commissionRepo)
	mpesaHandler := handler.NewMpesaHandler(cfg, paymentRepo, userRepo, mpesa)
	mpesaWebhookHandler := handler.NewMpesaWebhookHandler(paymentRepo, settlementSvc)
	withdrawalWebhookHandler := handler.NewWithdrawalWebhookHandler(withdrawalRepo, affiliateRepo)
	adminHandler := handler.NewAdminHandler(userRepo, paymentRepo, commissionRepo, withdrawalRepo, settingRepo, auditRepo, settlementSvc, withdrawalSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
		}

		site := api.Group("/me/site")
		site.Use(authMw)
		{
			site.GET("", siteHandler.Get)
			site.PATCH("/draft", siteHandler.SaveDraft)
			site.POST("/publish", siteHandler.Publish)
			site.PUT("/integrations", siteHandler.UpdateIntegrations)
			site.POST("/properties", siteHandler.UpsertProperty)
			site.PUT("/properties/:id", siteHandler.UpsertProperty)
			site.DELETE("/properties/:id", siteHandler.DeleteProperty)
		}

		affiliate := api.Group("/me/affiliate")
		affiliate.Use(authMw, middleware.RequireRole("AFFILIATE"))
		{
			affiliate.GET("/dashboard", affiliateHandler.Dashboard)
			affiliate.GET("/referrals", affiliateHandler.Referrals)
			affiliate.GET("/commissions", affiliateHandler.Commissions)
			affiliate.GET("/withdrawals", affiliateHandler.Withdrawals)
			affiliate.POST("/withdrawals", affiliateHandler.RequestWithdrawal)
		}

		api.POST("/payments/mpesa/initiate", authMw, mpesaHandler.Initiate)
		api.POST("/webhooks/mpesa", mpesaWebhookHandler.Handle)
		api.POST("/webhooks/withdrawal", withdrawalWebhookHandler.Handle)

		api.GET("/public/sites/:slug", publicHandler.GetSite)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.POST("/payments", adminHandler.CreateManualPayment)
			admin.POST("/payments/:id/settle", adminHandler.SettlePayment)
			admin.GET("/commissions", adminHandler.ListCommissions)
			admin.POST("/commissions/:id/approve", adminHandler.ApproveCommission)
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.POST("/withdrawals/:id/complete", adminHandler.CompleteWithdrawal)
			admin.POST("/withdrawals/:id/fail", adminHandler.FailWithdrawal)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.SetSetting)
			admin.GET("/audit-logs", adminHandler.AuditLogs)
		}
	}

	return r
}
