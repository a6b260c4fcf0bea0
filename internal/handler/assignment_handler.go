package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shreehari27/Asset-Management/internal/middleware"
	"github.com/Shreehari27/Asset-Management/internal/service"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

// AssignAssets processes a bulk assign request and always answers 200 with
// one result per item
func (h *Handler) AssignAssets(c echo.Context) error {
	log := logger.FromEcho(c)

	reqs, err := bindList[service.AssignRequest](c)
	if err != nil {
		return respondError(c, err, "Invalid assign request")
	}

	results := h.assignments.Assign(logger.RequestContext(c), reqs, middleware.Actor(c))

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	log.Info("Assign request processed",
		zap.Int("requested", len(reqs)),
		zap.Int("results", len(results)),
		zap.Int("failed", failed))
	return c.JSON(http.StatusOK, results)
}

// ReturnAsset closes the active assignment of an asset
func (h *Handler) ReturnAsset(c echo.Context) error {
	code := c.Param("asset_code")

	var req service.ReturnInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, validationErr(err), "Invalid return request")
	}

	history, err := h.assignments.Return(logger.RequestContext(c), code, req, middleware.Actor(c))
	if err != nil {
		return respondError(c, err, "Failed to return asset")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Asset returned successfully",
		"history": history,
	})
}

// LiveAssignments lists every asset currently out with an employee
func (h *Handler) LiveAssignments(c echo.Context) error {
	rows, err := h.assignments.Live(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to list live assignments")
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) LiveAssignmentsForEmployee(c echo.Context) error {
	rows, err := h.assignments.LiveForEmployee(logger.RequestContext(c), c.Param("emp_code"))
	if err != nil {
		return respondError(c, err, "Failed to list live assignments")
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) AssignmentHistory(c echo.Context) error {
	rows, err := h.assignments.History(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to list assignment history")
	}
	return c.JSON(http.StatusOK, rows)
}
