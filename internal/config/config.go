package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Earnings  EarningsConfig  `yaml:"earnings"`
	Payouts   PayoutsConfig   `yaml:"payouts"`
	Reminders RemindersConfig `yaml:"reminders"`
	Cron      CronConfig      `yaml:"cron"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"` // public base URL used in redirect return links
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// GatewayConfig holds one payment provider's credentials
type GatewayConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	MerchantID     string `yaml:"merchant_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PaymentsConfig contains gateway and payment deadline settings
type PaymentsConfig struct {
	CardPay     GatewayConfig `yaml:"cardpay"`
	RedirectPay GatewayConfig `yaml:"redirectpay"`
	// DeadlineLeadMinutes: an unpaid booking starting within this lead time
	// is expired and purged.
	DeadlineLeadMinutes int `yaml:"deadline_lead_minutes"`
}

// EarningsConfig contains commission and dispute window settings
type EarningsConfig struct {
	CommissionRateBps  int32 `yaml:"commission_rate_bps"`
	DisputeWindowHours int   `yaml:"dispute_window_hours"`
}

// PayoutsConfig bounds withdrawal requests
type PayoutsConfig struct {
	MinCents int64 `yaml:"min_cents"`
	MaxCents int64 `yaml:"max_cents"`
}

// RemindersConfig controls session reminder emails
type RemindersConfig struct {
	LeadHours int `yaml:"lead_hours"`
}

// CronConfig authenticates the HTTP cron triggers
type CronConfig struct {
	Secret string `yaml:"secret"`
}

// SchedulerConfig contains cron schedule settings (robfig/cron format with seconds)
type SchedulerConfig struct {
	SweepDisputeWindows   string `yaml:"sweep_dispute_windows"`
	ExpireUnpaidBookings  string `yaml:"expire_unpaid_bookings"`
	AutoCompleteSessions  string `yaml:"auto_complete_sessions"`
	PollTransferStatuses  string `yaml:"poll_transfer_statuses"`
	SendSessionReminders  string `yaml:"send_session_reminders"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// SMTP
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.SMTP.Password = val
	}
	if val := os.Getenv("SMTP_FROM"); val != "" {
		c.SMTP.From = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("SERVER_BASE_URL"); val != "" {
		c.Server.BaseURL = val
	}

	// Gateways
	if val := os.Getenv("CARDPAY_API_KEY"); val != "" {
		c.Payments.CardPay.APIKey = val
	}
	if val := os.Getenv("CARDPAY_BASE_URL"); val != "" {
		c.Payments.CardPay.BaseURL = val
	}
	if val := os.Getenv("REDIRECTPAY_API_KEY"); val != "" {
		c.Payments.RedirectPay.APIKey = val
	}
	if val := os.Getenv("REDIRECTPAY_BASE_URL"); val != "" {
		c.Payments.RedirectPay.BaseURL = val
	}

	// Cron
	if val := os.Getenv("CRON_SECRET"); val != "" {
		c.Cron.Secret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// SMTP validation
	if c.SMTP.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Gateway validation
	if c.Payments.CardPay.BaseURL == "" {
		return fmt.Errorf("cardpay base URL is required")
	}
	if c.Payments.RedirectPay.BaseURL == "" {
		return fmt.Errorf("redirectpay base URL is required")
	}

	// Cron validation
	if c.Cron.Secret == "" {
		return fmt.Errorf("cron secret is required")
	}

	// Payment defaults
	if c.Payments.DeadlineLeadMinutes == 0 {
		c.Payments.DeadlineLeadMinutes = 60
	}

	// Earnings defaults
	if c.Earnings.CommissionRateBps == 0 {
		c.Earnings.CommissionRateBps = 1500 // 15%
	}
	if c.Earnings.CommissionRateBps < 0 || c.Earnings.CommissionRateBps > 10000 {
		return fmt.Errorf("commission rate must be between 0 and 10000 bps")
	}
	if c.Earnings.DisputeWindowHours == 0 {
		c.Earnings.DisputeWindowHours = 24
	}

	// Payout defaults
	if c.Payouts.MinCents == 0 {
		c.Payouts.MinCents = 1000 // $10.00
	}
	if c.Payouts.MaxCents == 0 {
		c.Payouts.MaxCents = 500000 // $5,000.00
	}
	if c.Payouts.MinCents >= c.Payouts.MaxCents {
		return fmt.Errorf("payout minimum must be below maximum")
	}

	// Reminder defaults
	if c.Reminders.LeadHours == 0 {
		c.Reminders.LeadHours = 24
	}

	// Scheduler defaults
	if c.Scheduler.SweepDisputeWindows == "" {
		c.Scheduler.SweepDisputeWindows = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.ExpireUnpaidBookings == "" {
		c.Scheduler.ExpireUnpaidBookings = "0 */10 * * * *" // every 10 minutes
	}
	if c.Scheduler.AutoCompleteSessions == "" {
		c.Scheduler.AutoCompleteSessions = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.PollTransferStatuses == "" {
		c.Scheduler.PollTransferStatuses = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.SendSessionReminders == "" {
		c.Scheduler.SendSessionReminders = "0 0 * * * *" // hourly
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
