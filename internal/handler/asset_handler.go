package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shreehari27/Asset-Management/internal/middleware"
	"github.com/Shreehari27/Asset-Management/internal/service"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

// ListAssets handles retrieving every asset
func (h *Handler) ListAssets(c echo.Context) error {
	log := logger.FromEcho(c)

	assets, err := h.assets.List(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to list assets")
	}

	log.Info("Assets retrieved successfully", zap.Int("count", len(assets)))
	return c.JSON(http.StatusOK, assets)
}

// GetAsset answers with the asset, or JSON null when the code is unknown
func (h *Handler) GetAsset(c echo.Context) error {
	code := c.Param("code")

	asset, err := h.assets.Get(logger.RequestContext(c), code)
	if err != nil {
		return respondError(c, err, "Failed to get asset")
	}
	if asset == nil {
		logger.FromEcho(c).Debug("Asset not found", zap.String("asset_code", code))
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, asset)
}

// AddAssets creates one or many assets. Failed items are reported under
// skipped and never fail the request.
func (h *Handler) AddAssets(c echo.Context) error {
	log := logger.FromEcho(c)

	items, err := bindList[service.AddAssetInput](c)
	if err != nil {
		return respondError(c, err, "Invalid add request")
	}

	result := h.assets.Add(logger.RequestContext(c), items)
	log.Info("Add request processed",
		zap.Int("requested", len(items)),
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", len(result.Skipped)))
	return c.JSON(http.StatusOK, result)
}

// UpdateAsset edits the descriptive fields of an asset
func (h *Handler) UpdateAsset(c echo.Context) error {
	code := c.Param("code")

	var req service.AssetUpdate
	if err := c.Bind(&req); err != nil {
		return respondError(c, validationErr(err), "Invalid update request")
	}

	asset, err := h.assets.Update(logger.RequestContext(c), code, req, middleware.Actor(c))
	if err != nil {
		return respondError(c, err, "Failed to update asset")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Asset updated successfully",
		"asset":   asset,
	})
}

// AddModification appends a free text entry to an asset's audit trail
func (h *Handler) AddModification(c echo.Context) error {
	var req service.ModificationInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, validationErr(err), "Invalid modification request")
	}

	entry, err := h.assets.AppendModification(logger.RequestContext(c), req, middleware.Actor(c))
	if err != nil {
		return respondError(c, err, "Failed to record modification")
	}
	return c.JSON(http.StatusCreated, entry)
}

// ListModifications handles retrieving an asset's audit trail
func (h *Handler) ListModifications(c echo.Context) error {
	rows, err := h.assets.Modifications(logger.RequestContext(c), c.Param("asset_code"))
	if err != nil {
		return respondError(c, err, "Failed to list modifications")
	}
	return c.JSON(http.StatusOK, rows)
}
