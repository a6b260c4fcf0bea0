package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Shreehari27/Asset-Management/internal/middleware"
	"github.com/Shreehari27/Asset-Management/internal/service"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

// ScrapAsset moves an available asset to scrapped or retired
func (h *Handler) ScrapAsset(c echo.Context) error {
	var req service.ScrapInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, validationErr(err), "Invalid scrap request")
	}

	record, err := h.scrap.Scrap(logger.RequestContext(c), req, middleware.Actor(c))
	if err != nil {
		return respondError(c, err, "Failed to scrap asset")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Asset scrapped successfully",
		"record":  record,
	})
}

func (h *Handler) ListScrapped(c echo.Context) error {
	rows, err := h.scrap.List(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to list scrapped assets")
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) ScrapStats(c echo.Context) error {
	stats, err := h.scrap.Stats(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to compute scrap statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) ScrapDetails(c echo.Context) error {
	record, err := h.scrap.Details(logger.RequestContext(c), c.Param("asset_code"))
	if err != nil {
		return respondError(c, err, "Failed to get scrap details")
	}
	return c.JSON(http.StatusOK, record)
}
