package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"microburbs-dashboard-go/internal/config"
	"microburbs-dashboard-go/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, m *metrics.Metrics, market *MarketHandler, health *HealthHandler, dash *DashboardHandler) {
	e.GET("/", dash.Index)
	e.GET("/healthz", health.Healthz)
	e.GET("/status", health.Status)

	e.GET("/api/suburb/market", market.SuburbMarket)
	e.GET("/api/property/market", market.PropertyMarket)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
}
