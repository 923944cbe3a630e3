package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"subtrack/internal/analytics"
)

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	DashboardCacheTTL  time.Duration

	// Logging
	LogLevel string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// AMQP
	AMQPURL          string
	AMQPExchange     string
	AMQPChangesQueue string
	AMQPAlertsQueue  string

	// Alert worker
	AlertSchedule string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Analytics thresholds, kept as text until Thresholds parses them.
	HighCategorySpend    string
	HighYearlyProjection string
	OverspendWarning     string
	UpcomingWindowDays   int
	TrendMonths          int
	CurrencySymbol       string
}

var defaults = map[string]any{
	"PORT":                        "8081",
	"CORS_ALLOWED_ORIGINS":        "*",
	"RATE_LIMIT_PER_MINUTE":       120,
	"DASHBOARD_CACHE_TTL":         "30s",
	"LOG_LEVEL":                   "info",
	"DATA_BACKEND":                "memory",
	"SQLITE_DB_PATH":              "./data/subtrack.db",
	"AMQP_URL":                    "",
	"AMQP_EXCHANGE":               "subtrack",
	"AMQP_CHANGES_QUEUE":          "record_changes",
	"AMQP_ALERTS_QUEUE":           "budget_alerts",
	"ALERT_SCHEDULE":              "@every 1h",
	"GOOGLE_SPREADSHEET_ID":       "",
	"GOOGLE_SERVICE_ACCOUNT_JSON": "",
	"GOOGLE_SERVICE_ACCOUNT_FILE": "",
	"HIGH_CATEGORY_SPEND":         "5000",
	"HIGH_YEARLY_PROJECTION":      "100000",
	"OVERSPEND_WARNING":           "1000",
	"UPCOMING_WINDOW_DAYS":        7,
	"TREND_MONTHS":                6,
	"CURRENCY_SYMBOL":             "₹",
}

// Load reads the configuration from the environment. Unset keys take
// their defaults.
func Load() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		Port:               v.GetString("PORT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		DashboardCacheTTL:  v.GetDuration("DASHBOARD_CACHE_TTL"),

		LogLevel: v.GetString("LOG_LEVEL"),

		DataBackend:  strings.ToLower(v.GetString("DATA_BACKEND")),
		SQLiteDBPath: v.GetString("SQLITE_DB_PATH"),

		AMQPURL:          v.GetString("AMQP_URL"),
		AMQPExchange:     v.GetString("AMQP_EXCHANGE"),
		AMQPChangesQueue: v.GetString("AMQP_CHANGES_QUEUE"),
		AMQPAlertsQueue:  v.GetString("AMQP_ALERTS_QUEUE"),

		AlertSchedule: v.GetString("ALERT_SCHEDULE"),

		GoogleSpreadsheetID:      v.GetString("GOOGLE_SPREADSHEET_ID"),
		GoogleServiceAccountJSON: v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
		GoogleServiceAccountFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),

		HighCategorySpend:    v.GetString("HIGH_CATEGORY_SPEND"),
		HighYearlyProjection: v.GetString("HIGH_YEARLY_PROJECTION"),
		OverspendWarning:     v.GetString("OVERSPEND_WARNING"),
		UpcomingWindowDays:   v.GetInt("UPCOMING_WINDOW_DAYS"),
		TrendMonths:          v.GetInt("TREND_MONTHS"),
		CurrencySymbol:       v.GetString("CURRENCY_SYMBOL"),
	}
}

// Thresholds converts the analytics settings.
func (c *Config) Thresholds() (analytics.Thresholds, error) {
	th := analytics.DefaultThresholds()

	var err error
	if th.HighCategorySpend, err = positiveAmount("HIGH_CATEGORY_SPEND", c.HighCategorySpend); err != nil {
		return analytics.Thresholds{}, err
	}
	if th.HighYearlyProjection, err = positiveAmount("HIGH_YEARLY_PROJECTION", c.HighYearlyProjection); err != nil {
		return analytics.Thresholds{}, err
	}
	if th.OverspendWarning, err = positiveAmount("OVERSPEND_WARNING", c.OverspendWarning); err != nil {
		return analytics.Thresholds{}, err
	}
	if c.UpcomingWindowDays > 0 {
		th.UpcomingWindow = time.Duration(c.UpcomingWindowDays) * 24 * time.Hour
	}
	if c.TrendMonths > 0 {
		th.TrendMonths = c.TrendMonths
	}
	if c.CurrencySymbol != "" {
		th.CurrencySymbol = c.CurrencySymbol
	}
	return th, nil
}

// SheetsConfigured reports whether an export target and credentials are set.
func (c *Config) SheetsConfigured() bool {
	return c.GoogleSpreadsheetID != "" && (c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPChangesQueue == "" || c.AMQPAlertsQueue == "" {
			errors = append(errors, "AMQP queue names cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := cron.ParseStandard(c.AlertSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid alert schedule '%s': %v", c.AlertSchedule, err))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	if c.DashboardCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid dashboard cache TTL %v: must not be negative", c.DashboardCacheTTL))
	}

	// Service account file must exist when named
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if _, err := c.Thresholds(); err != nil {
		errors = append(errors, err.Error())
	}
	if c.UpcomingWindowDays < 0 || c.TrendMonths < 0 {
		errors = append(errors, "UPCOMING_WINDOW_DAYS and TREND_MONTHS must not be negative")
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func positiveAmount(key, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s '%s': must be a number", key, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid %s '%s': must be positive", key, s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
