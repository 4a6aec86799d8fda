package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mini-ecommerce/internal/service"
)

type AdminHandler struct {
	reportService service.ReportService
}

func NewAdminHandler(reportService service.ReportService) *AdminHandler {
	return &AdminHandler{
		reportService: reportService,
	}
}

func (h *AdminHandler) SalesReport(c echo.Context) error {
	ctx := c.Request().Context()

	mode := service.SalesMode(c.QueryParam("mode"))
	if mode == "" {
		mode = service.ModeLive
	}
	if mode != service.ModeLive && mode != service.ModePrecomputed {
		return echo.NewHTTPError(http.StatusBadRequest, "mode must be htap or olap")
	}

	report, err := h.reportService.GetSalesSummary(ctx, mode)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) RefreshSummary(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.reportService.RefreshSummary(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "summary refresh failed")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "refreshed"})
}
