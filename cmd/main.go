package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Shreehari27/Asset-Management/internal/handler"
	"github.com/Shreehari27/Asset-Management/internal/middleware"
	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/internal/service"
	"github.com/Shreehari27/Asset-Management/pkg/config"
	"github.com/Shreehari27/Asset-Management/pkg/database"
	"github.com/Shreehari27/Asset-Management/pkg/jwtutil"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
	"github.com/Shreehari27/Asset-Management/prometheus"
)

const (
	serviceName     = "asset-service"
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting asset service...", cfg.LogFields()...)

	db, err := database.InitDB(&cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(db, model.All()...); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database migrations completed")

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
		Issuer:          cfg.ServiceName,
	})

	h := handler.NewHandler(db, handler.Options{
		ServiceName: cfg.ServiceName,
		Location:    cfg.Server.Location(),
		JWT:         jwtUtil,
		OTP:         cfg.OTP,
		Notifier:    service.LogNotifier{},
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
	}))
	e.Use(echomiddleware.BodyLimit("2M"))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(logger.Middleware())
	e.Use(echomiddleware.ContextTimeout(cfg.DB.QueryTimeout))

	h.RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
