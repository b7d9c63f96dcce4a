package handler

import (
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"microburbs-dashboard-go/internal/model"
	"microburbs-dashboard-go/internal/service"
)

// emptyObject is the __data payload when no candidate produced usable JSON.
var emptyObject = json.RawMessage("{}")

// MarketHandler serves the suburb and property market endpoints.
type MarketHandler struct {
	service *service.MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(svc *service.MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		service: svc,
		logger:  logger.With("component", "market_handler"),
	}
}

// SuburbMarket handles GET /api/suburb/market. The bare suburb variant is
// tried first; when a state is given, suburb+state and suburb+state_code
// variants follow, since the upstream has accepted different spellings of
// that parameter over time.
func (h *MarketHandler) SuburbMarket(c echo.Context) error {
	suburb := strings.TrimSpace(c.QueryParam("suburb"))
	if suburb == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "suburb is required"})
	}
	state := strings.TrimSpace(c.QueryParam("state"))

	variants := []model.Variant{{"suburb": suburb}}
	if state != "" {
		variants = append(variants,
			model.Variant{"suburb": suburb, "state": state},
			model.Variant{"suburb": suburb, "state_code": state},
		)
	}

	res := h.service.FirstJSON(c.Request().Context(), "/suburb/market", variants)
	return h.respond(c, res)
}

// PropertyMarket handles GET /api/property/market.
func (h *MarketHandler) PropertyMarket(c echo.Context) error {
	id := strings.TrimSpace(c.QueryParam("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id is required"})
	}

	res := h.service.FirstJSON(c.Request().Context(), "/property/market",
		[]model.Variant{{"id": id}})
	return h.respond(c, res)
}

// respond writes the fixed envelope. Total upstream failure still yields a
// 200 with an empty data object so the dashboard always has something to
// render; the trace tells the debug strip what happened.
func (h *MarketHandler) respond(c echo.Context, res model.Result) error {
	data := res.Data
	if !res.OK {
		h.logger.Warn("no candidate produced usable JSON",
			"path", c.Request().URL.Path,
			"last_url", res.Trace.URL,
		)
		data = emptyObject
	}
	return c.JSON(http.StatusOK, model.Envelope{Data: data, Trace: res.Trace})
}
