package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/internal/service"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

// DashboardStats handles the overview counts
func (h *Handler) DashboardStats(c echo.Context) error {
	stats, err := h.reports.Dashboard(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to compute dashboard statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) StockSummary(c echo.Context) error {
	r, err := h.dateRange(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}
	summary, err := h.reports.StockSummary(logger.RequestContext(c), r)
	if err != nil {
		return respondError(c, err, "Failed to compute stock summary")
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) ReorderLevel(c echo.Context) error {
	r, err := h.dateRange(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}
	summary, err := h.reports.ReorderLevel(logger.RequestContext(c), r)
	if err != nil {
		return respondError(c, err, "Failed to compute reorder level")
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) InventorySummary(c echo.Context) error {
	summary, err := h.reports.InventorySummary(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to compute inventory summary")
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) Tally(c echo.Context) error {
	tally, err := h.reports.Tally(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to compute tally")
	}
	return c.JSON(http.StatusOK, tally)
}

// Ledger handles the movement history of a single asset
func (h *Handler) Ledger(c echo.Context) error {
	ledger, err := h.reports.Ledger(logger.RequestContext(c), c.Param("asset_code"))
	if err != nil {
		return respondError(c, err, "Failed to build asset ledger")
	}
	return c.JSON(http.StatusOK, ledger)
}

type exportFunc func(ctx context.Context, r service.DateRange) ([]byte, error)

func (h *Handler) DownloadStockSummary(c echo.Context) error {
	return h.download(c, "stock_summary", h.reports.StockSummaryXLSX)
}

func (h *Handler) DownloadReorderLevel(c echo.Context) error {
	return h.download(c, "reorder_level", h.reports.ReorderLevelXLSX)
}

func (h *Handler) DownloadLotLedger(c echo.Context) error {
	return h.download(c, "lot_ledger", h.reports.LotLedgerXLSX)
}

func (h *Handler) DownloadAgeAnalysis(c echo.Context) error {
	return h.download(c, "age_analysis", h.reports.AgeAnalysisXLSX)
}

// download streams a spreadsheet named after the report and today's date
func (h *Handler) download(c echo.Context, name string, export exportFunc) error {
	log := logger.FromEcho(c)

	r, err := h.dateRange(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}

	data, err := export(logger.RequestContext(c), r)
	if err != nil {
		return respondError(c, err, "Failed to export "+name)
	}

	filename := fmt.Sprintf("%s_%s.xlsx", name, model.NewDate(h.now().In(h.loc)).String())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	log.Info("Report exported", zap.String("report", name), zap.Int("bytes", len(data)))
	return c.Blob(http.StatusOK, service.XLSXContentType, data)
}

// dateRange reads the optional fromDate and toDate query parameters
func (h *Handler) dateRange(c echo.Context) (service.DateRange, error) {
	var r service.DateRange
	from, err := model.ParseOptionalDate(c.QueryParam("fromDate"), h.loc)
	if err != nil {
		return r, apperror.Validation("Invalid fromDate: %v", err)
	}
	to, err := model.ParseOptionalDate(c.QueryParam("toDate"), h.loc)
	if err != nil {
		return r, apperror.Validation("Invalid toDate: %v", err)
	}
	if from != nil && to != nil && to.Before(*from) {
		return r, apperror.Validation("toDate must not precede fromDate")
	}
	r.From, r.To = from, to
	return r, nil
}
