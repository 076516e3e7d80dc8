package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadbot/internal/config"
	"github.com/alanyoungcy/spreadbot/internal/domain"
	"github.com/alanyoungcy/spreadbot/internal/platform"
	"github.com/alanyoungcy/spreadbot/internal/spread"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// venueServers serves one ABC/USDT market per venue, 10% apart.
func venueServers(t *testing.T) (mexcURL, gateURL string) {
	t.Helper()
	mexcSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v3/exchangeInfo":
			_, _ = io.WriteString(w, `{"serverTime":1,"symbols":[{"symbol":"ABCUSDT","status":"1","baseAsset":"ABC","quoteAsset":"USDT"}]}`)
		case "/api/v3/ticker/price":
			_, _ = io.WriteString(w, `[{"symbol":"ABCUSDT","price":"1.00"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(mexcSrv.Close)

	gateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"currency_pair":"ABC_USDT","last":"1.10"}]`)
	}))
	t.Cleanup(gateSrv.Close)

	return mexcSrv.URL, gateSrv.URL
}

func testConfig(t *testing.T, mr *miniredis.Miniredis) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Redis.Addr = mr.Addr()
	cfg.MEXC.BaseURL, cfg.Gate.BaseURL = venueServers(t)
	return &cfg
}

func TestWire(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr)

	deps, cleanup, err := Wire(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, spread.Labels{A: "MEXC", B: "Gate"}, deps.Scanner.Labels())
	assert.Equal(t, "USDT", deps.Scanner.Settlement())
	assert.Equal(t, spread.Band{MinPct: 4, MaxPct: 1000}, deps.Scanner.Band())
	require.NoError(t, deps.Redis.Ping(context.Background()))
	assert.Equal(t, []string{"log"}, deps.Notifier.Senders())
}

func TestWire_SwappedVenues(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr)
	cfg.Venues.A, cfg.Venues.B = "gate", "mexc"

	deps, cleanup, err := Wire(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, spread.Labels{A: "Gate", B: "MEXC"}, deps.Scanner.Labels())
}

func TestWire_UnknownVenue(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr)
	cfg.Venues.B = "kraken"

	_, _, err := Wire(context.Background(), cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `venue "kraken"`)
}

func TestWire_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr)
	mr.Close()

	_, _, err := Wire(context.Background(), cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wire: redis")
}

func TestNewScanner_UsesRegistry(t *testing.T) {
	cfg := config.Defaults()
	reg := platform.NewRegistry()
	_, err := newScanner(&cfg, reg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `venue "mexc"`)
}

func TestNewNotifier(t *testing.T) {
	n := newNotifier(config.NotifyConfig{
		TelegramToken:     "123:abc",
		TelegramChatID:    "42",
		DiscordWebhookURL: "https://discord.example/webhook",
	}, discardLogger())
	assert.Equal(t, []string{"telegram", "discord"}, n.Senders())

	n = newNotifier(config.NotifyConfig{TelegramToken: "123:abc"}, discardLogger())
	assert.Equal(t, []string{"log"}, n.Senders())
}

func TestRun_MonitorModePublishesNewOpportunities(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr)
	cfg.Mode = "monitor"

	application := New(cfg, discardLogger())
	defer application.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	require.Eventually(t, func() bool {
		n, err := rdb.XLen(context.Background(), domain.StreamOpportunityNew).Result()
		return err == nil && n == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_UnsupportedMode(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr)
	cfg.Mode = "backtest"

	application := New(cfg, discardLogger())
	defer application.Close()

	err := application.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mode")
}
