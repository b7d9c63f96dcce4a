package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"microburbs-dashboard-go/web"
)

// DashboardHandler serves the embedded dashboard page.
type DashboardHandler struct {
	page []byte
}

// NewDashboardHandler loads the embedded page once at startup.
func NewDashboardHandler() (*DashboardHandler, error) {
	page, err := web.FS.ReadFile("index.html")
	if err != nil {
		return nil, fmt.Errorf("read embedded dashboard: %w", err)
	}
	return &DashboardHandler{page: page}, nil
}

// Index handles GET /.
func (h *DashboardHandler) Index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, h.page)
}
