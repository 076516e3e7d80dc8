package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/spreadbot/internal/domain"
	"github.com/alanyoungcy/spreadbot/internal/metrics"
	"github.com/alanyoungcy/spreadbot/internal/notify"
	"github.com/alanyoungcy/spreadbot/internal/spread"
)

// NotificationTitle heads every new-opportunity alert.
const NotificationTitle = "New arbitrage opportunities"

// LeaderKey is the lease key contended for by poller replicas.
const LeaderKey = "spreadbot:poller"

// Scanner runs one detection pass.
type Scanner interface {
	Scan(ctx context.Context) spread.Report
	Labels() spread.Labels
}

// Alerter delivers operator notifications.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// PollerConfig holds the poll loop parameters.
type PollerConfig struct {
	Interval       time.Duration
	LeaderElection bool
}

// CycleSummary describes the most recent poll cycle.
type CycleSummary struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	Duration      string    `json:"duration"`
	Outcome       string    `json:"outcome"`
	Opportunities int       `json:"opportunities"`
	New           int       `json:"new"`
	CommonPairs   int       `json:"common_pairs"`
	Failures      []string  `json:"failures,omitempty"`
}

// opportunitiesEvent is published on domain.ChannelOpportunities after every
// cycle that ran a scan.
type opportunitiesEvent struct {
	CycleID   string       `json:"cycle_id"`
	ScannedAt time.Time    `json:"scanned_at"`
	Rows      []spread.Row `json:"rows"`
}

// newOpportunitiesEvent carries only the newly appeared opportunities.
type newOpportunitiesEvent struct {
	CycleID   string       `json:"cycle_id"`
	ScannedAt time.Time    `json:"scanned_at"`
	Lines     []string     `json:"lines"`
	Rows      []spread.Row `json:"rows"`
}

// Poller drives the scanner on a fixed interval, tracks which opportunities
// are new, and fans them out to the signal bus and the notifier. It is the
// only writer of its ChangeTracker.
type Poller struct {
	scanner Scanner
	tracker *spread.ChangeTracker
	bus     domain.SignalBus
	locks   domain.LockManager
	alerter Alerter
	metrics *metrics.Metrics
	cfg     PollerConfig
	owner   string
	logger  *slog.Logger

	mu   sync.RWMutex
	last *CycleSummary
}

// NewPoller creates a Poller. bus and locks may be nil; leader election is
// only used when cfg.LeaderElection is set and locks is non-nil.
func NewPoller(
	scanner Scanner,
	tracker *spread.ChangeTracker,
	bus domain.SignalBus,
	locks domain.LockManager,
	alerter Alerter,
	m *metrics.Metrics,
	cfg PollerConfig,
	logger *slog.Logger,
) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if tracker == nil {
		tracker = spread.NewChangeTracker()
	}
	return &Poller{
		scanner: scanner,
		tracker: tracker,
		bus:     bus,
		locks:   locks,
		alerter: alerter,
		metrics: m,
		cfg:     cfg,
		owner:   uuid.NewString(),
		logger:  logger.With(slog.String("component", "poller")),
	}
}

// Run executes a cycle immediately and then waits interval after each cycle
// finishes before starting the next, until ctx is cancelled. A cycle in
// flight when ctx is cancelled runs to completion.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "poller started",
		slog.Duration("interval", p.cfg.Interval),
		slog.Bool("leader_election", p.electing()),
	)
	defer p.resign()

	// The interval is measured from the end of one cycle to the start of the next.
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "poller stopped")
			return nil
		case <-timer.C:
			p.RunOnce(context.WithoutCancel(ctx))
			timer.Reset(p.cfg.Interval)
		}
	}
}

// RunOnce runs a single cycle and returns the identities that appeared since
// the previous one. Failures inside the cycle never escape: a panicking scan
// counts as a cycle with no opportunities.
func (p *Poller) RunOnce(ctx context.Context) []domain.Identity {
	start := time.Now()
	cycleID := uuid.NewString()
	log := p.logger.With(slog.String("cycle_id", cycleID))

	if !p.lead(ctx, log) {
		p.metrics.ObserveCycle(metrics.OutcomeSkipped, 0)
		return nil
	}

	report, outcome := p.scan(ctx, log)
	fresh := p.tracker.Advance(report.Opportunities)

	p.record(report, fresh)
	p.deliver(ctx, log, cycleID, report, fresh)

	elapsed := time.Since(start)
	p.metrics.ObserveCycle(outcome, elapsed)
	p.setLast(&CycleSummary{
		ID:            cycleID,
		StartedAt:     start.UTC(),
		Duration:      elapsed.Round(time.Millisecond).String(),
		Outcome:       outcome,
		Opportunities: len(report.Opportunities),
		New:           len(fresh),
		CommonPairs:   report.CommonPairs,
		Failures:      failureStrings(report.Failures),
	})

	log.InfoContext(ctx, "poll cycle complete",
		slog.String("outcome", outcome),
		slog.Int("opportunities", len(report.Opportunities)),
		slog.Int("new", len(fresh)),
		slog.Int("common_pairs", report.CommonPairs),
		slog.Duration("duration", elapsed),
	)
	return fresh
}

// LastCycle returns a copy of the latest cycle summary, or nil before the
// first cycle has finished.
func (p *Poller) LastCycle() *CycleSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return nil
	}
	c := *p.last
	return &c
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration {
	return p.cfg.Interval
}

func (p *Poller) setLast(c *CycleSummary) {
	p.mu.Lock()
	p.last = c
	p.mu.Unlock()
}

func (p *Poller) electing() bool {
	return p.cfg.LeaderElection && p.locks != nil
}

// lead reports whether this replica should run the cycle.
func (p *Poller) lead(ctx context.Context, log *slog.Logger) bool {
	if !p.electing() {
		return true
	}
	err := p.locks.Lead(ctx, LeaderKey, p.owner, 2*p.cfg.Interval)
	switch {
	case err == nil:
		return true
	case errors.Is(err, domain.ErrLockHeld):
		log.DebugContext(ctx, "another replica leads, skipping cycle")
		return false
	default:
		log.WarnContext(ctx, "leader election unavailable, running cycle anyway",
			slog.String("error", err.Error()),
		)
		return true
	}
}

func (p *Poller) resign() {
	if !p.electing() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.locks.Resign(ctx, LeaderKey, p.owner); err != nil {
		p.logger.Warn("resign leadership failed", slog.String("error", err.Error()))
	}
}

// scan runs the scanner, recovering a panic into an empty report.
func (p *Poller) scan(ctx context.Context, log *slog.Logger) (report spread.Report, outcome string) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "poll cycle panicked, treating as empty",
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
			report = spread.Report{ScannedAt: time.Now().UTC()}
			outcome = metrics.OutcomePanic
		}
	}()

	report = p.scanner.Scan(ctx)
	if len(report.Failures) > 0 {
		return report, metrics.OutcomeDegraded
	}
	return report, metrics.OutcomeOK
}

func (p *Poller) record(report spread.Report, fresh []domain.Identity) {
	p.metrics.ObserveScan(metrics.PathPoller, report.CommonPairs)
	p.metrics.SetOpportunities(len(report.Opportunities))
	p.metrics.AddNewOpportunities(len(fresh))
	for _, f := range report.Failures {
		p.metrics.FetchFailure(f.Venue, string(f.Kind))
	}
}

// deliver publishes the cycle to the signal bus and alerts operators about
// new opportunities. Delivery failures are logged and dropped.
func (p *Poller) deliver(ctx context.Context, log *slog.Logger, cycleID string, report spread.Report, fresh []domain.Identity) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "delivery panicked", slog.String("panic", fmt.Sprint(r)))
		}
	}()

	labels := p.scanner.Labels()
	p.publish(ctx, log, domain.ChannelOpportunities, "", opportunitiesEvent{
		CycleID:   cycleID,
		ScannedAt: report.ScannedAt,
		Rows:      spread.Rows(report.Opportunities, labels),
	})

	if len(fresh) == 0 {
		return
	}

	lines := spread.NotificationLines(fresh, labels)
	p.publish(ctx, log, domain.ChannelOpportunityNew, domain.StreamOpportunityNew, newOpportunitiesEvent{
		CycleID:   cycleID,
		ScannedAt: report.ScannedAt,
		Lines:     lines,
		Rows:      spread.Rows(selectFresh(report.Opportunities, fresh), labels),
	})

	if p.alerter == nil {
		return
	}
	err := p.alerter.Notify(ctx, notify.EventOpportunityNew, NotificationTitle, strings.Join(lines, "\n"))
	if err != nil {
		log.WarnContext(ctx, "notification failed", slog.String("error", err.Error()))
	}
}

// publish sends v to channel and, when stream is set, appends it there too.
func (p *Poller) publish(ctx context.Context, log *slog.Logger, channel, stream string, v any) {
	if p.bus == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.ErrorContext(ctx, "marshal event failed", slog.String("channel", channel), slog.String("error", err.Error()))
		return
	}
	if err := p.bus.Publish(ctx, channel, payload); err != nil {
		log.WarnContext(ctx, "publish failed", slog.String("channel", channel), slog.String("error", err.Error()))
	}
	if stream == "" {
		return
	}
	if err := p.bus.StreamAppend(ctx, stream, payload); err != nil {
		log.WarnContext(ctx, "stream append failed", slog.String("stream", stream), slog.String("error", err.Error()))
	}
}

// selectFresh returns the ranked opportunities whose identity is in fresh,
// keeping rank order.
func selectFresh(ranked []domain.Opportunity, fresh []domain.Identity) []domain.Opportunity {
	want := make(map[domain.Identity]struct{}, len(fresh))
	for _, id := range fresh {
		want[id] = struct{}{}
	}
	out := make([]domain.Opportunity, 0, len(fresh))
	for _, o := range ranked {
		if _, ok := want[o.Identity()]; ok {
			out = append(out, o)
		}
	}
	return out
}

func failureStrings(failures []*spread.VenueError) []string {
	if len(failures) == 0 {
		return nil
	}
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		out = append(out, f.Error())
	}
	return out
}
