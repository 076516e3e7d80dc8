package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/spreadbot/internal/domain"
	"github.com/alanyoungcy/spreadbot/internal/metrics"
	"github.com/alanyoungcy/spreadbot/internal/spread"
)

// Scanner runs a fresh detection pass.
type Scanner interface {
	Scan(ctx context.Context) spread.Report
	Labels() spread.Labels
}

// StreamReader reads the bounded new-opportunity stream.
type StreamReader interface {
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]domain.StreamMessage, error)
}

// OpportunitiesHandler serves the on-demand scan and the new-opportunity feed.
type OpportunitiesHandler struct {
	scanner Scanner
	stream  StreamReader
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewOpportunitiesHandler creates an OpportunitiesHandler. stream may be nil,
// which disables the feed endpoint.
func NewOpportunitiesHandler(scanner Scanner, stream StreamReader, m *metrics.Metrics, logger *slog.Logger) *OpportunitiesHandler {
	return &OpportunitiesHandler{
		scanner: scanner,
		stream:  stream,
		metrics: m,
		logger:  logHandler(logger, "opportunities"),
	}
}

type opportunitiesResponse struct {
	Rows        []spread.Row `json:"rows"`
	Count       int          `json:"count"`
	ScannedAt   time.Time    `json:"scanned_at"`
	CommonPairs int          `json:"common_pairs"`
	Failures    []string     `json:"failures"`
}

// ListOpportunities runs a fresh scan and returns the ranked rows. It never
// touches the poller's change tracker. Venue failures shrink the result and
// are listed in failures; they never fail the request.
// GET /api/opportunities
func (h *OpportunitiesHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	report := h.scanner.Scan(r.Context())

	h.metrics.ObserveScan(metrics.PathOnDemand, report.CommonPairs)
	failures := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		h.metrics.FetchFailure(f.Venue, string(f.Kind))
		failures = append(failures, f.Error())
	}

	rows := spread.Rows(report.Opportunities, h.scanner.Labels())
	writeJSON(w, http.StatusOK, opportunitiesResponse{
		Rows:        rows,
		Count:       len(rows),
		ScannedAt:   report.ScannedAt,
		CommonPairs: report.CommonPairs,
		Failures:    failures,
	})
}

type feedEntry struct {
	ID    string          `json:"id"`
	Event json.RawMessage `json:"event"`
}

// ListNew returns entries of the new-opportunity stream after the given id,
// oldest first.
// GET /api/opportunities/new?after=<id>&count=<n>
func (h *OpportunitiesHandler) ListNew(w http.ResponseWriter, r *http.Request) {
	if h.stream == nil {
		writeError(w, http.StatusServiceUnavailable, "feed unavailable")
		return
	}

	after := r.URL.Query().Get("after")
	if after == "" {
		after = "0"
	}
	count := queryInt(r, "count", 50, 500)

	msgs, err := h.stream.StreamRead(r.Context(), domain.StreamOpportunityNew, after, count)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "stream read failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "feed read failed")
		return
	}

	entries := make([]feedEntry, 0, len(msgs))
	lastID := after
	for _, m := range msgs {
		if !json.Valid(m.Payload) {
			continue
		}
		entries = append(entries, feedEntry{ID: m.ID, Event: m.Payload})
		lastID = m.ID
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"last_id": lastID,
	})
}
