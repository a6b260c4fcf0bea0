package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shreehari27/Asset-Management/pkg/database"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

// HealthCheck reports whether the service can reach its database
func (h *Handler) HealthCheck(c echo.Context) error {
	log := logger.FromEcho(c)

	health, dbStatus, status := "healthy", "up", http.StatusOK
	if err := database.Ping(h.db); err != nil {
		log.Error("Database health check failed", zap.Error(err))
		health, dbStatus, status = "unhealthy", "down", http.StatusServiceUnavailable
	}

	return c.JSON(status, echo.Map{
		"status":    health,
		"service":   h.serviceName,
		"database":  dbStatus,
		"timestamp": h.now().In(h.loc).Format(time.RFC3339),
	})
}
