package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveCycle(OutcomeOK, 120*time.Millisecond)
	m.ObserveCycle(OutcomeOK, 80*time.Millisecond)
	m.ObserveCycle(OutcomeSkipped, 0)
	m.ObserveScan(PathPoller, 42)
	m.SetOpportunities(3)
	m.AddNewOpportunities(2)
	m.FetchFailure("Gate", "prices")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pollCycles.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pollCycles.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.commonPairs))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.opportunities))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.newOpportunities))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchFailures.WithLabelValues("Gate", "prices")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scans.WithLabelValues(PathPoller)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.pollDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SetOpportunities(5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "spreadbot_opportunities 5"))
}
