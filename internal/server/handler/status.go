package handler

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/spreadbot/internal/service"
	"github.com/alanyoungcy/spreadbot/internal/spread"
)

// CycleSource exposes the poller's latest cycle.
type CycleSource interface {
	LastCycle() *service.CycleSummary
}

// StatusInfo is the static part of the status payload.
type StatusInfo struct {
	Mode         string
	Labels       spread.Labels
	Settlement   string
	Band         spread.Band
	PollInterval time.Duration
	StartedAt    time.Time
}

// StatusHandler serves the backend status for the dashboard.
type StatusHandler struct {
	info   StatusInfo
	cycles CycleSource
}

// NewStatusHandler creates a StatusHandler. cycles is nil when no poller runs.
func NewStatusHandler(info StatusInfo, cycles CycleSource) *StatusHandler {
	return &StatusHandler{info: info, cycles: cycles}
}

// GetStatus responds with the mode, venues, band, and last poll cycle.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"mode":       h.info.Mode,
		"venue_a":    h.info.Labels.A,
		"venue_b":    h.info.Labels.B,
		"settlement": h.info.Settlement,
		"band": map[string]any{
			"min_pct": h.info.Band.MinPct,
			"max_pct": h.info.Band.MaxPct,
		},
		"uptime_seconds": int64(time.Since(h.info.StartedAt).Seconds()),
	}

	if h.cycles != nil {
		resp["poll_interval"] = h.info.PollInterval.String()
		resp["last_cycle"] = h.cycles.LastCycle()
	}

	writeJSON(w, http.StatusOK, resp)
}
