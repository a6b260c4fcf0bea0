package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Shreehari27/Asset-Management/internal/middleware"
	"github.com/Shreehari27/Asset-Management/internal/service"
	"github.com/Shreehari27/Asset-Management/pkg/config"
	"github.com/Shreehari27/Asset-Management/pkg/jwtutil"
	"github.com/Shreehari27/Asset-Management/prometheus"
)

// Handler serves the HTTP API on top of the services
type Handler struct {
	db          *gorm.DB
	loc         *time.Location
	now         func() time.Time
	serviceName string
	assets      *service.AssetService
	assignments *service.AssignmentService
	scrap       *service.ScrapService
	employees   *service.EmployeeService
	auth        *service.AuthService
	reports     *service.ReportService
	jwt         *jwtutil.JWTUtil
}

// Options configures NewHandler
type Options struct {
	ServiceName string
	Location    *time.Location
	JWT         *jwtutil.JWTUtil
	OTP         config.OTPConfig
	Notifier    service.Notifier
}

func NewHandler(db *gorm.DB, opts Options) *Handler {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		db:          db,
		loc:         loc,
		now:         time.Now,
		serviceName: opts.ServiceName,
		assets:      service.NewAssetService(db, loc),
		assignments: service.NewAssignmentService(db, loc),
		scrap:       service.NewScrapService(db, loc),
		employees:   service.NewEmployeeService(db),
		auth:        service.NewAuthService(db, opts.JWT, opts.OTP, opts.Notifier),
		reports:     service.NewReportService(db, loc),
		jwt:         opts.JWT,
	}
}

// RegisterRoutes mounts every route on e
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Public routes
	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	auth := e.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
	auth.POST("/send-reset-otp", h.SendResetOTP)
	auth.POST("/verify-reset-otp", h.VerifyResetOTP)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(h.jwt))
	itOnly := middleware.RequireIT()

	assets := api.Group("/assets")
	assets.GET("", h.ListAssets)
	assets.GET("/modifications/:asset_code", h.ListModifications)
	assets.GET("/:code", h.GetAsset)
	assets.POST("/add", h.AddAssets, itOnly)
	assets.POST("/assign", h.AssignAssets, itOnly)
	assets.POST("/modify", h.AddModification, itOnly)
	assets.PUT("/:code", h.UpdateAsset, itOnly)

	assignments := api.Group("/assignments")
	assignments.POST("", h.AssignAssets, itOnly)
	assignments.GET("/live", h.LiveAssignments)
	assignments.GET("/live/:emp_code", h.LiveAssignmentsForEmployee)
	assignments.GET("/history", h.AssignmentHistory)
	assignments.PATCH("/:asset_code/return", h.ReturnAsset, itOnly)

	scrap := api.Group("/scrap")
	scrap.POST("", h.ScrapAsset, itOnly)
	scrap.GET("", h.ListScrapped)
	scrap.GET("/stats", h.ScrapStats)
	scrap.GET("/details/:asset_code", h.ScrapDetails)

	employees := api.Group("/employees")
	employees.GET("", h.ListEmployees)
	employees.GET("/ITR", h.ListITStaff)
	employees.GET("/:emp_code", h.GetEmployee)
	employees.POST("", h.CreateEmployee, itOnly)
	employees.PATCH("/:emp_code", h.UpdateEmployee, itOnly)

	api.GET("/dashboard/stats", h.DashboardStats)

	reports := api.Group("/reports")
	reports.GET("/stock-summary", h.StockSummary)
	reports.GET("/reorder-level", h.ReorderLevel)
	reports.GET("/inventory-summary", h.InventorySummary)
	reports.GET("/tally", h.Tally)
	reports.GET("/ledger/:asset_code", h.Ledger)
	reports.GET("/download/stock-summary", h.DownloadStockSummary)
	reports.GET("/download/reorder-level", h.DownloadReorderLevel)
	reports.GET("/download/lot-ledger", h.DownloadLotLedger)
	reports.GET("/download/age-analysis", h.DownloadAgeAnalysis)
}
