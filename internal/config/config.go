package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the service.
type Config struct {
	TelegramToken    string
	DatabaseURL      string
	DispatchInterval time.Duration
	DigestTime       string
	Location         *time.Location
	NotifyRate       float64
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DispatchInterval: parseMinutes(strings.TrimSpace(os.Getenv("DISPATCH_INTERVAL_MINUTES"))),
		DigestTime:       strings.TrimSpace(os.Getenv("DIGEST_TIME")),
		NotifyRate:       parseRate(strings.TrimSpace(os.Getenv("NOTIFY_RATE_PER_SECOND"))),
		Location:         time.Local,
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskbit.db"
	}

	if cfg.DispatchInterval == 0 {
		cfg.DispatchInterval = time.Minute
	}

	if cfg.NotifyRate == 0 {
		cfg.NotifyRate = 20
	}

	if tz := strings.TrimSpace(os.Getenv("TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

// RequireTelegram reports an error when no bot token is configured.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

func parseMinutes(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	minutes, err := time.ParseDuration(raw + "m")
	if err != nil || minutes <= 0 {
		return 0
	}
	return minutes
}

func parseRate(raw string) float64 {
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 0
	}
	return value
}
