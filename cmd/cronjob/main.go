package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"consultly-backend/internal/config"
	"consultly-backend/internal/gateway"
	"consultly-backend/internal/jobs"
	"consultly-backend/internal/logger"
	"consultly-backend/internal/repository/postgres"
	"consultly-backend/internal/scheduler"
	"consultly-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'sweep-dispute-windows', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Consultly Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	reminderService := service.NewReminderService(
		store.BookingRepository,
		store.UserRepository,
		emailService,
		time.Duration(cfg.Reminders.LeadHours)*time.Hour,
	)

	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Reconciler: reconcilerService,
		Earnings:   earningsService,
		Payout:     payoutService,
		Reminder:   reminderService,
	}, cfg)

	// Run-once mode for manual execution and external schedulers
	if *runOnce != "" {
		runSingleJob(jobRunner, *runOnce)
		return
	}

	// Scheduled mode
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	logger.Info("Cronjob runner started, waiting for scheduled jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down cronjob runner...")
	sched.Stop()
	logger.Info("Cronjob runner stopped")
}

func runSingleJob(jobRunner *jobs.JobRunner, jobName string) {
	logger.Info("Running single job", "job", jobName)

	switch jobName {
	case "sweep-dispute-windows":
		jobRunner.SweepDisputeWindows()
	case "expire-unpaid-bookings":
		jobRunner.ExpireUnpaidBookings()
	case "auto-complete-sessions":
		jobRunner.AutoCompleteSessions()
	case "poll-transfer-statuses":
		jobRunner.PollTransferStatuses()
	case "send-session-reminders":
		jobRunner.SendSessionReminders()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		os.Exit(1)
	}
}
