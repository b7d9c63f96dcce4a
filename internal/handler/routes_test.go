package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"microburbs-dashboard-go/internal/client"
	"microburbs-dashboard-go/internal/config"
	"microburbs-dashboard-go/internal/metrics"
	"microburbs-dashboard-go/internal/service"
)

// newTestRouter wires the full route table against the given upstream.
func newTestRouter(t *testing.T, upstreamURL string) *echo.Echo {
	t.Helper()
	cfg := &config.Config{
		Microburbs: config.MicroburbsConfig{APIKey: "test-key"},
		Upstream: config.UpstreamConfig{
			BaseURLs:        []string{upstreamURL},
			TimeoutSeconds:  10,
			IdleConnections: 10,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mc := client.NewMicroburbsClient(cfg, logger, nil)
	svc := service.NewMarketServiceForTest(mc, cfg, logger)

	market := NewMarketHandler(svc, logger)
	health := NewHealthHandler(cfg, "test")
	dash, err := NewDashboardHandler()
	if err != nil {
		t.Fatalf("NewDashboardHandler: %v", err)
	}

	e := echo.New()
	RegisterRoutes(e, cfg, metrics.New(), market, health, dash)
	return e
}

func TestRegisterRoutes_Wiring(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	e := newTestRouter(t, upstream.URL)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"GET / serves dashboard", http.MethodGet, "/", http.StatusOK},
		{"GET /healthz", http.MethodGet, "/healthz", http.StatusOK},
		{"GET /status", http.MethodGet, "/status", http.StatusOK},
		{"GET suburb endpoint", http.MethodGet, "/api/suburb/market?suburb=Belmont+North", http.StatusOK},
		{"GET suburb endpoint missing param", http.MethodGet, "/api/suburb/market", http.StatusBadRequest},
		{"GET property endpoint", http.MethodGet, "/api/property/market?id=GANSW704074813", http.StatusOK},
		{"GET property endpoint missing param", http.MethodGet, "/api/property/market", http.StatusBadRequest},
		{"GET /metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"GET /unknown returns 404", http.MethodGet, "/unknown", http.StatusNotFound},
		{"POST suburb endpoint not allowed", http.MethodPost, "/api/suburb/market", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRegisterRoutes_MetricsDisabled(t *testing.T) {
	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			BaseURLs:        []string{"https://www.microburbs.com.au/report_generator/api"},
			TimeoutSeconds:  10,
			IdleConnections: 10,
		},
		Metrics: config.MetricsConfig{Enabled: false, Path: "/metrics"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mc := client.NewMicroburbsClient(cfg, logger, nil)
	svc := service.NewMarketServiceForTest(mc, cfg, logger)

	market := NewMarketHandler(svc, logger)
	health := NewHealthHandler(cfg, "test")
	dash, err := NewDashboardHandler()
	if err != nil {
		t.Fatalf("NewDashboardHandler: %v", err)
	}

	e := echo.New()
	RegisterRoutes(e, cfg, metrics.New(), market, health, dash)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /metrics with metrics disabled: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRegisterRoutes_MetricsExposition(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	e := newTestRouter(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected Go runtime metrics in exposition output")
	}
}
