package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "consultly-backend/internal/api/http"
	"consultly-backend/internal/config"
	"consultly-backend/internal/gateway"
	"consultly-backend/internal/jobs"
	"consultly-backend/internal/logger"
	"consultly-backend/internal/repository/postgres"
	"consultly-backend/internal/security"
	"consultly-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Consultly Payments Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Payment Gateways
	cardpay := gateway.NewCardPayClient(cfg.Payments.CardPay.BaseURL, cfg.Payments.CardPay.APIKey,
		time.Duration(cfg.Payments.CardPay.TimeoutSeconds)*time.Second)
	redirectpay := gateway.NewRedirectPayClient(cfg.Payments.RedirectPay.BaseURL, cfg.Payments.RedirectPay.MerchantID,
		cfg.Payments.RedirectPay.APIKey, cfg.Server.BaseURL+"/payments/return/redirectpay",
		time.Duration(cfg.Payments.RedirectPay.TimeoutSeconds)*time.Second)
	gateways := gateway.NewRegistry(cardpay, cardpay, redirectpay)

	// Initialize Services
	emailService := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	bookingService := service.NewBookingService(
		store.BookingRepository,
		store.TransactionRepository,
		store.UserRepository,
		gateways,
	)

	reconcilerService := service.NewReconcilerService(
		store.TransactionRepository,
		store.BookingRepository,
		store.UserRepository,
		gateways,
		emailService,
		cfg.Server.BaseURL,
		time.Duration(cfg.Payments.DeadlineLeadMinutes)*time.Minute,
	)

	earningsService := service.NewEarningsService(
		store.EarningsRepository,
		store.BookingRepository,
		store.UserRepository,
		cfg.Earnings.CommissionRateBps,
		time.Duration(cfg.Earnings.DisputeWindowHours)*time.Hour,
	)

	payoutService := service.NewPayoutService(
		store.PayoutRepository,
		store.PayoutLogRepository,
		store.BankAccountRepository,
		store.UserRepository,
		gateways,
		emailService,
		cfg.Payouts.MinCents,
		cfg.Payouts.MaxCents,
	)

	bankAccountService := service.NewBankAccountService(
		store.BankAccountRepository,
		store.PayoutRepository,
		store.UserRepository,
		gateways,
		emailService,
	)

	disputeService := service.NewDisputeService(
		store.DisputeRepository,
		store.BookingRepository,
		store.EarningsRepository,
		store.TransactionRepository,
		gateways,
	)

	reminderService := service.NewReminderService(
		store.BookingRepository,
		store.UserRepository,
		emailService,
		time.Duration(cfg.Reminders.LeadHours)*time.Hour,
	)

	// Job runner backs the HTTP cron triggers; the scheduler itself lives
	// in the cronjob binary.
	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Reconciler: reconcilerService,
		Earnings:   earningsService,
		Payout:     payoutService,
		Reminder:   reminderService,
	}, cfg)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Payment:    httpapi.NewPaymentHandler(reconcilerService, payoutService, cfg.Server.BaseURL),
		Booking:    httpapi.NewBookingHandler(bookingService, earningsService, disputeService),
		Provider:   httpapi.NewProviderHandler(earningsService, payoutService, bankAccountService),
		Staff:      httpapi.NewStaffHandler(payoutService, bankAccountService, disputeService),
		Cron:       httpapi.NewCronHandler(jobRunner),
		Tokens:     tokenManager,
		CronSecret: cfg.Cron.Secret,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
