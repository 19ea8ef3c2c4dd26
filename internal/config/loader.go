package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies WEATHERBOT_* environment variable overrides, and
// returns the final Config. A missing file is not an error so env-only
// deployments work; any other read or decode failure is. The returned Config
// has NOT been validated; the caller should invoke Config.Validate() after
// Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known WEATHERBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "WEATHERBOT_POLYMARKET_GAMMA_HOST")

	// ── Telegram ──
	setStr(&cfg.Telegram.Token, "WEATHERBOT_TELEGRAM_TOKEN")
	setStr(&cfg.Telegram.Token, "TELEGRAM_BOT_TOKEN") // compatibility alias
	setInt64(&cfg.Telegram.ChatID, "WEATHERBOT_TELEGRAM_CHAT_ID")
	setInt64(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID") // compatibility alias

	// ── Tracker ──
	setDuration(&cfg.Tracker.PollInterval, "WEATHERBOT_TRACKER_POLL_INTERVAL")
	setStr(&cfg.Tracker.RefreshTime, "WEATHERBOT_TRACKER_REFRESH_TIME")
	setStr(&cfg.Tracker.Timezone, "WEATHERBOT_TRACKER_TIMEZONE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "WEATHERBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "WEATHERBOT_SERVER_PORT")

	// ── Misc ──
	setStr(&cfg.LogLevel, "WEATHERBOT_LOG_LEVEL")
}

// setStr overwrites dst with the value of the environment variable when set.
func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		_ = dst.UnmarshalText([]byte(v))
	}
}
