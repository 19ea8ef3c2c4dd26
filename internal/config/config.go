// Package config defines the top-level configuration for the weather alert
// bot and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by WEATHERBOT_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Telegram   TelegramConfig   `toml:"telegram"`
	Tracker    TrackerConfig    `toml:"tracker"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds the market data API endpoint.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
}

// TelegramConfig holds the bot credentials and the destination chat for
// scheduled alerts. Both fields are required.
type TelegramConfig struct {
	Token  string `toml:"token"`
	ChatID int64  `toml:"chat_id"`
}

// TrackerConfig holds the polling and refresh schedule.
type TrackerConfig struct {
	// PollInterval is the fixed period of the per-station check cycle.
	PollInterval duration `toml:"poll_interval"`
	// RefreshTime is the daily slug refresh wall-clock time, "HH:MM".
	RefreshTime string `toml:"refresh_time"`
	// Timezone names the location RefreshTime is evaluated in. Empty
	// means the process-local timezone.
	Timezone string `toml:"timezone"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// NotifyConfig selects which alert event types are delivered. Empty means
// all.
type NotifyConfig struct {
	Events []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "30s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validNotifyEvents = map[string]bool{
	"price_change": true,
	"resolution":   true,
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
		},
		Tracker: TrackerConfig{
			PollInterval: duration{30 * time.Second},
			RefreshTime:  "00:05",
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8000,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for missing or inconsistent values and
// returns an error describing every problem found. The bot refuses to start
// on any validation failure.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}

	if c.Telegram.Token == "" {
		errs = append(errs, "telegram: token is required")
	}
	if c.Telegram.ChatID == 0 {
		errs = append(errs, "telegram: chat_id is required")
	}

	if c.Tracker.PollInterval.Duration <= 0 {
		errs = append(errs, "tracker: poll_interval must be positive")
	}
	if _, _, err := c.Tracker.RefreshClock(); err != nil {
		errs = append(errs, fmt.Sprintf("tracker: invalid refresh_time %q (want HH:MM)", c.Tracker.RefreshTime))
	}
	if _, err := c.Tracker.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("tracker: unknown timezone %q", c.Tracker.Timezone))
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: port %d out of range", c.Server.Port))
	}

	for _, e := range c.Notify.Events {
		if !validNotifyEvents[strings.TrimSpace(e)] {
			errs = append(errs, fmt.Sprintf("notify: unknown event type %q (valid: price_change, resolution)", e))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RefreshClock parses RefreshTime into an hour and minute.
func (t *TrackerConfig) RefreshClock() (hour, min int, err error) {
	parsed, err := time.Parse("15:04", t.RefreshTime)
	if err != nil {
		return 0, 0, err
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// Location resolves the configured timezone, defaulting to the process-local
// one when unset.
func (t *TrackerConfig) Location() (*time.Location, error) {
	if t.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(t.Timezone)
}
