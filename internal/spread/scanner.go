package spread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

// Config holds the scan parameters.
type Config struct {
	// Settlement is the quote asset instruments must be priced in, e.g. "USDT".
	Settlement string
	Band       Band
}

// Report is the result of one scan. Opportunities is always ranked; the
// remaining fields are diagnostics and never change it.
type Report struct {
	Opportunities []domain.Opportunity
	CatalogA      int
	CatalogB      int
	CommonPairs   int
	PricesA       int
	PricesB       int
	Failures      []*VenueError
	ScannedAt     time.Time
	Duration      time.Duration
}

// Scanner runs the full detection pipeline against two venues. It holds no
// state between scans and may be called concurrently.
type Scanner struct {
	a, b       Venue
	settlement string
	band       Band
	logger     *slog.Logger
}

// NewScanner creates a Scanner comparing venue a against venue b.
func NewScanner(a, b Venue, cfg Config, logger *slog.Logger) *Scanner {
	return &Scanner{
		a:          a,
		b:          b,
		settlement: strings.ToUpper(strings.TrimSpace(cfg.Settlement)),
		band:       cfg.Band,
		logger:     logger.With(slog.String("component", "scanner")),
	}
}

// Labels returns the display names of both venues.
func (s *Scanner) Labels() Labels {
	return Labels{A: s.a.Name(), B: s.b.Name()}
}

// Band returns the configured threshold band.
func (s *Scanner) Band() Band {
	return s.band
}

// Settlement returns the settlement asset the catalogs are restricted to.
func (s *Scanner) Settlement() string {
	return s.settlement
}

// Scan fetches both venues' listings and prices concurrently, reconciles the
// catalogs, detects opportunities, and ranks them. Fetch failures shrink the
// result instead of failing the scan.
func (s *Scanner) Scan(ctx context.Context) Report {
	start := time.Now()

	var (
		catA, catB         SymbolMapping
		skippedA, skippedB int
		errA, errB         error
		failA, failB       error
		pricesA, pricesB   FetchResult
	)

	var g errgroup.Group
	g.Go(func() error {
		errA = guard(s.a.Name(), FailureCatalog, func() (err error) {
			catA, skippedA, err = LoadCatalog(ctx, s.a, s.settlement)
			return err
		})
		return nil
	})
	g.Go(func() error {
		errB = guard(s.b.Name(), FailureCatalog, func() (err error) {
			catB, skippedB, err = LoadCatalog(ctx, s.b, s.settlement)
			return err
		})
		return nil
	})
	g.Go(func() error {
		failA = guard(s.a.Name(), FailurePrices, func() error {
			pricesA = FetchPrices(ctx, s.a)
			return pricesA.Failure
		})
		return nil
	})
	g.Go(func() error {
		failB = guard(s.b.Name(), FailurePrices, func() error {
			pricesB = FetchPrices(ctx, s.b)
			return pricesB.Failure
		})
		return nil
	})
	_ = g.Wait()

	report := Report{ScannedAt: start.UTC()}
	for _, err := range []error{errA, errB, failA, failB} {
		ve, ok := asVenueError(err)
		if !ok {
			continue
		}
		report.Failures = append(report.Failures, ve)
		s.logger.WarnContext(ctx, "venue fetch failed, continuing with empty data",
			slog.String("venue", ve.Venue),
			slog.String("kind", string(ve.Kind)),
			slog.String("error", ve.Err.Error()),
		)
	}

	a := Market{Catalog: orEmptyCatalog(catA), Prices: orEmptyPrices(pricesA.Prices)}
	b := Market{Catalog: orEmptyCatalog(catB), Prices: orEmptyPrices(pricesB.Prices)}

	common := Reconcile(a.Catalog, b.Catalog)
	report.Opportunities = Rank(Detect(common, a, b, s.band))
	report.CatalogA = len(a.Catalog)
	report.CatalogB = len(b.Catalog)
	report.CommonPairs = len(common)
	report.PricesA = len(a.Prices)
	report.PricesB = len(b.Prices)
	report.Duration = time.Since(start)

	s.logger.DebugContext(ctx, "scan complete",
		slog.Int("catalog_a", report.CatalogA),
		slog.Int("catalog_b", report.CatalogB),
		slog.Int("skipped_a", skippedA),
		slog.Int("skipped_b", skippedB),
		slog.Int("common_pairs", report.CommonPairs),
		slog.Int("opportunities", len(report.Opportunities)),
		slog.Duration("duration", report.Duration),
	)
	return report
}

// guard runs fn, converting a panic into a VenueError.
func guard(venue string, kind FailureKind, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &VenueError{Venue: venue, Kind: kind, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return fn()
}

func asVenueError(err error) (*VenueError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *VenueError
	if errors.As(err, &ve) {
		return ve, true
	}
	return &VenueError{Venue: "unknown", Kind: FailurePrices, Err: err}, true
}

func orEmptyCatalog(m SymbolMapping) SymbolMapping {
	if m == nil {
		return SymbolMapping{}
	}
	return m
}

func orEmptyPrices(p PriceSnapshot) PriceSnapshot {
	if p == nil {
		return PriceSnapshot{}
	}
	return p
}
