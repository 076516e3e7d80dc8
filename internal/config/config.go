// Package config defines the top-level configuration for the spread scanner
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SPREADBOT_* environment variables.
type Config struct {
	Venues   VenuesConfig `toml:"venues"`
	MEXC     VenueConfig  `toml:"mexc"`
	Gate     VenueConfig  `toml:"gate"`
	Scan     ScanConfig   `toml:"scan"`
	Poller   PollerConfig `toml:"poller"`
	Redis    RedisConfig  `toml:"redis"`
	Server   ServerConfig `toml:"server"`
	Notify   NotifyConfig `toml:"notify"`
	Mode     string       `toml:"mode"`
	LogLevel string       `toml:"log_level"`
}

// VenuesConfig picks which registered venue is side A and which is side B.
// Direction labels follow this order.
type VenuesConfig struct {
	A string `toml:"a"`
	B string `toml:"b"`
}

// VenueConfig holds the REST endpoint of one exchange.
type VenueConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
}

// ScanConfig holds detection parameters.
type ScanConfig struct {
	// Settlement is the quote asset listings are restricted to.
	Settlement string  `toml:"settlement"`
	MinPct     float64 `toml:"min_pct"`
	// MaxPct <= 0 disables the upper cap.
	MaxPct float64 `toml:"max_pct"`
}

// PollerConfig holds the background poll loop parameters.
type PollerConfig struct {
	Interval       duration `toml:"interval"`
	LeaderElection bool     `toml:"leader_election"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr        string   `toml:"addr"`
	Password    string   `toml:"password"`
	DB          int      `toml:"db"`
	PoolSize    int      `toml:"pool_size"`
	MaxRetries  int      `toml:"max_retries"`
	DialTimeout duration `toml:"dial_timeout"`
	TLSEnabled  bool     `toml:"tls_enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey protects every route except health and metrics. Empty disables it.
	APIKey string `toml:"api_key"`
	// ScanRateLimit caps on-demand scans per client per ScanRateWindow.
	ScanRateLimit  int      `toml:"scan_rate_limit"`
	ScanRateWindow duration `toml:"scan_rate_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	TelegramAPIBase   string   `toml:"telegram_api_base"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Venues: VenuesConfig{A: "mexc", B: "gate"},
		MEXC: VenueConfig{
			BaseURL: "https://api.mexc.com",
			Timeout: duration{10 * time.Second},
		},
		Gate: VenueConfig{
			BaseURL: "https://api.gateio.ws",
			Timeout: duration{10 * time.Second},
		},
		Scan: ScanConfig{
			Settlement: "USDT",
			MinPct:     4,
			MaxPct:     1000,
		},
		Poller: PollerConfig{
			Interval: duration{60 * time.Second},
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DB:          0,
			PoolSize:    10,
			MaxRetries:  3,
			DialTimeout: duration{5 * time.Second},
		},
		Server: ServerConfig{
			Port:           8000,
			CORSOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
			ScanRateLimit:  6,
			ScanRateWindow: duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"opportunity_new", "startup"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"full":    true,
	"monitor": true,
	"server":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Venue returns the endpoint settings for the named venue.
func (c *Config) Venue(name string) VenueConfig {
	switch strings.ToLower(name) {
	case "mexc":
		return c.MEXC
	case "gate":
		return c.Gate
	}
	return VenueConfig{}
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found. knownVenues lists the venue
// names the registry can build.
func (c *Config) Validate(knownVenues ...string) error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: full, monitor, server)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Venues
	known := make(map[string]bool, len(knownVenues))
	for _, v := range knownVenues {
		known[strings.ToLower(v)] = true
	}
	for _, side := range []struct{ key, name string }{{"a", c.Venues.A}, {"b", c.Venues.B}} {
		switch {
		case side.name == "":
			errs = append(errs, fmt.Sprintf("venues: %s must not be empty", side.key))
		case len(known) > 0 && !known[strings.ToLower(side.name)]:
			errs = append(errs, fmt.Sprintf("venues: unknown venue %q for side %s", side.name, side.key))
		}
	}
	if c.Venues.A != "" && strings.EqualFold(c.Venues.A, c.Venues.B) {
		errs = append(errs, "venues: a and b must be different venues")
	}
	for _, v := range []struct {
		name string
		cfg  VenueConfig
	}{{"mexc", c.MEXC}, {"gate", c.Gate}} {
		if v.cfg.BaseURL == "" {
			errs = append(errs, v.name+": base_url must not be empty")
		}
		if v.cfg.Timeout.Duration <= 0 {
			errs = append(errs, v.name+": timeout must be > 0")
		}
	}

	// Scan
	if strings.TrimSpace(c.Scan.Settlement) == "" {
		errs = append(errs, "scan: settlement must not be empty")
	}
	if c.Scan.MinPct < 0 {
		errs = append(errs, "scan: min_pct must be >= 0")
	}
	if c.Scan.MaxPct > 0 && c.Scan.MaxPct < c.Scan.MinPct {
		errs = append(errs, "scan: max_pct must not be below min_pct (set max_pct <= 0 to disable the cap)")
	}

	// Poller
	if c.Poller.Interval.Duration <= 0 {
		errs = append(errs, "poller: interval must be > 0")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Server
	if !strings.EqualFold(c.Mode, "monitor") {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.ScanRateLimit < 0 {
			errs = append(errs, "server: scan_rate_limit must be >= 0")
		}
		if c.Server.ScanRateLimit > 0 && c.Server.ScanRateWindow.Duration <= 0 {
			errs = append(errs, "server: scan_rate_window must be > 0 when scan_rate_limit is set")
		}
	}

	// Notify: Telegram needs both token and chat.
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
