package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"clintonstack/config"
	"clintonstack/internal/cache"
	"clintonstack/internal/database"
	"clintonstack/internal/domain"
	"clintonstack/internal/repository"
	"clintonstack/internal/router"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] no .env file, using environment")
	}
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)

	settingRepo := repository.NewSettingRepository(db)
	if err := settingRepo.SeedDefaults(map[string]string{
		domain.SettingCommissionRateDefault: strconv.FormatFloat(cfg.Affiliate.DefaultCommissionRate, 'f', -1, 64),
		domain.SettingMinWithdrawalCents:    strconv.FormatInt(cfg.Affiliate.MinWithdrawalCents, 10),
	}); err != nil {
		log.Printf("[Settings] seed defaults: %v", err)
	}

	published := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.TTL)
	if published != nil {
		defer published.Close()
	}

	// Sweep pending payments past their expiry so abandoned STK pushes
	// don't linger as PENDING forever.
	paymentRepo := repository.NewPaymentRepository(db)
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Payment.SweepInterval, func() {
		n, err := paymentRepo.ExpireStale(time.Now())
		if err != nil {
			log.Printf("[Payments] expiry sweep: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[Payments] expired %d stale pending payments", n)
		}
	}); err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	engine := router.Setup(cfg, db, published)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
