package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/spreadbot/internal/cache/redis"
	"github.com/alanyoungcy/spreadbot/internal/config"
	"github.com/alanyoungcy/spreadbot/internal/domain"
	"github.com/alanyoungcy/spreadbot/internal/metrics"
	"github.com/alanyoungcy/spreadbot/internal/notify"
	"github.com/alanyoungcy/spreadbot/internal/platform"
	"github.com/alanyoungcy/spreadbot/internal/spread"
)

// Dependencies bundles every dependency that the application modes need to
// operate. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	Scanner *spread.Scanner

	// Redis
	Redis       *redis.Client
	RateLimiter domain.RateLimiter
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{Metrics: metrics.New()}

	// --- Venues ---
	scanner, err := newScanner(cfg, platform.DefaultRegistry(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: %w", err)
	}
	deps.Scanner = scanner

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		PoolSize:    cfg.Redis.PoolSize,
		MaxRetries:  cfg.Redis.MaxRetries,
		DialTimeout: cfg.Redis.DialTimeout.Duration,
		TLSEnabled:  cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.Redis = redisClient
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- Notifications ---
	deps.Notifier = newNotifier(cfg.Notify, logger)

	return deps, cleanup, nil
}

// newScanner builds both venue clients through the registry and the scanner
// over them.
func newScanner(cfg *config.Config, reg *platform.Registry, logger *slog.Logger) (*spread.Scanner, error) {
	venue := func(name string) (spread.Venue, error) {
		vc := cfg.Venue(name)
		v, err := reg.New(name, platform.VenueOptions{
			BaseURL: vc.BaseURL,
			Timeout: vc.Timeout.Duration,
		})
		if err != nil {
			return nil, fmt.Errorf("venue %q: %w", name, err)
		}
		return v, nil
	}

	a, err := venue(cfg.Venues.A)
	if err != nil {
		return nil, err
	}
	b, err := venue(cfg.Venues.B)
	if err != nil {
		return nil, err
	}
	return spread.NewScanner(a, b, spread.Config{
		Settlement: cfg.Scan.Settlement,
		Band:       spread.Band{MinPct: cfg.Scan.MinPct, MaxPct: cfg.Scan.MaxPct},
	}, logger), nil
}

// newNotifier builds the configured senders. With none configured,
// notifications go to the log so new opportunities stay visible.
func newNotifier(cfg config.NotifyConfig, logger *slog.Logger) *notify.Notifier {
	var senders []notify.Sender
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.TelegramAPIBase,
			cfg.TelegramToken,
			cfg.TelegramChatID,
		))
	}
	if cfg.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.DiscordWebhookURL))
	}
	if len(senders) == 0 {
		senders = append(senders, notify.NewLogSender(logger))
	}
	return notify.NewNotifier(senders, cfg.Events, logger)
}
