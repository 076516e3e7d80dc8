package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/spreadbot/internal/notify"
	"github.com/alanyoungcy/spreadbot/internal/server"
	"github.com/alanyoungcy/spreadbot/internal/server/handler"
	"github.com/alanyoungcy/spreadbot/internal/server/ws"
	"github.com/alanyoungcy/spreadbot/internal/service"
)

// shutdownTimeout bounds how long in-flight HTTP requests get on shutdown.
const shutdownTimeout = 5 * time.Second

// FullMode runs the background poller and the HTTP server.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	poller := a.newPoller(deps)
	g.Go(func() error {
		return poller.Run(ctx)
	})

	a.startHTTPServer(ctx, g, deps, poller)

	return g.Wait()
}

// MonitorMode runs the background poller only: alerts and bus publishing,
// no HTTP surface.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)

	poller := a.newPoller(deps)
	g.Go(func() error {
		return poller.Run(ctx)
	})

	return g.Wait()
}

// ServerMode serves on-demand scans only. No tracker runs, so no alerts are
// sent.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startHTTPServer(ctx, g, deps, nil)

	return g.Wait()
}

func (a *App) newPoller(deps *Dependencies) *service.Poller {
	return service.NewPoller(
		deps.Scanner,
		nil,
		deps.SignalBus,
		deps.LockManager,
		deps.Notifier,
		deps.Metrics,
		service.PollerConfig{
			Interval:       a.cfg.Poller.Interval.Duration,
			LeaderElection: a.cfg.Poller.LeaderElection,
		},
		a.logger,
	)
}

// startHTTPServer launches the WebSocket hub, the HTTP server, and a goroutine
// that shuts the server down when ctx is cancelled. poller is nil in server
// mode.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, poller *service.Poller) {
	labels := deps.Scanner.Labels()
	startedAt := time.Now().UTC()

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:           a.cfg.Mode,
		VenueA:         labels.A,
		VenueB:         labels.B,
		AllowedOrigins: a.cfg.Server.CORSOrigins,
		StartedAt:      startedAt,
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	info := handler.StatusInfo{
		Mode:       a.cfg.Mode,
		Labels:     labels,
		Settlement: deps.Scanner.Settlement(),
		Band:       deps.Scanner.Band(),
		StartedAt:  startedAt,
	}
	var cycles handler.CycleSource
	if poller != nil {
		info.PollInterval = poller.Interval()
		cycles = poller
	}

	srv := server.NewServer(
		server.Config{
			Addr:           fmt.Sprintf(":%d", a.cfg.Server.Port),
			CORSOrigins:    a.cfg.Server.CORSOrigins,
			APIKey:         a.cfg.Server.APIKey,
			ScanRateLimit:  a.cfg.Server.ScanRateLimit,
			ScanRateWindow: a.cfg.Server.ScanRateWindow.Duration,
		},
		server.Handlers{
			Health:        handler.NewHealthHandler(deps.Redis, a.logger),
			Status:        handler.NewStatusHandler(info, cycles),
			Opportunities: handler.NewOpportunitiesHandler(deps.Scanner, deps.SignalBus, deps.Metrics, a.logger),
			Metrics:       deps.Metrics.Handler(),
		},
		hub,
		deps.RateLimiter,
		a.logger,
	)

	g.Go(func() error {
		a.logger.InfoContext(ctx, "HTTP server listening",
			slog.Int("port", a.cfg.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)))
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// announce sends the startup notification. Failures are logged only.
func (a *App) announce(ctx context.Context, deps *Dependencies) {
	labels := deps.Scanner.Labels()
	band := deps.Scanner.Band()
	upper := "uncapped"
	if band.MaxPct > 0 {
		upper = fmt.Sprintf("%g%%", band.MaxPct)
	}
	msg := strings.Join([]string{
		fmt.Sprintf("mode: %s", a.cfg.Mode),
		fmt.Sprintf("venues: %s / %s (%s)", labels.A, labels.B, deps.Scanner.Settlement()),
		fmt.Sprintf("band: %g%% .. %s", band.MinPct, upper),
	}, "\n")

	if err := deps.Notifier.Notify(ctx, notify.EventStartup, "Spread scanner started", msg); err != nil {
		a.logger.WarnContext(ctx, "startup notification failed",
			slog.String("error", err.Error()),
		)
	}
}
