package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/agrienergy/connect/docs"
	"github.com/agrienergy/connect/internal/api/handler"
	"github.com/agrienergy/connect/internal/api/middleware"
	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
	"github.com/agrienergy/connect/internal/infrastructure/http/handlers"
	"github.com/agrienergy/connect/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth       ports.AuthService
	Accounts   ports.AccountService
	Products   ports.ProductService
	Categories ports.CategoryService
	Verifier   middleware.TokenVerifier
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Check
	Logger zerolog.Logger
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(logger.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "agrienergy",
		Registerer: registerer,
	}))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(d.Auth, d.Accounts)
	accountHandler := handler.NewAccountHandler(d.Accounts)
	productHandler := handler.NewProductHandler(d.Products)
	categoryHandler := handler.NewCategoryHandler(d.Categories)

	employee := middleware.RBAC(domain.RoleEmployee)
	farmer := middleware.RBAC(domain.RoleFarmer)
	anyRole := middleware.RBAC(domain.RoleEmployee, domain.RoleFarmer)

	api := e.Group("/api")
	api.POST("/Auth/login", authHandler.Login)

	secured := api.Group("", middleware.Auth(d.Verifier))

	// --- Accounts ---
	secured.POST("/Auth/register/farmer", authHandler.RegisterFarmer, employee)
	secured.POST("/Auth/register/employee", authHandler.RegisterEmployee, employee)
	secured.GET("/FarmerAccount/farmer/all", accountHandler.ListFarmers, employee)
	secured.GET("/FarmerAccount/farmer/:id", accountHandler.GetFarmer, anyRole)
	secured.PUT("/FarmerAccount/farmer/:id", accountHandler.UpdateFarmer, employee)
	secured.DELETE("/FarmerAccount/farmer/:id", accountHandler.DeleteFarmer, employee)
	secured.GET("/FarmerAccount/me", accountHandler.Me, anyRole)

	// --- Products ---
	secured.GET("/Product", productHandler.List, anyRole)
	secured.GET("/Product/:id", productHandler.Get, anyRole)
	secured.GET("/Product/category/:categoryId", productHandler.ByCategory, anyRole)
	secured.GET("/Product/farmer/:farmerId", productHandler.ByFarmer, anyRole)
	secured.POST("/Product", productHandler.Create, farmer)
	secured.PUT("/Product/:id", productHandler.Update, anyRole)
	secured.DELETE("/Product/:id", productHandler.Delete, anyRole)

	// --- Categories ---
	secured.GET("/Category", categoryHandler.List, anyRole)
	secured.GET("/Category/:id", categoryHandler.Get, anyRole)
	secured.POST("/Category", categoryHandler.Create, anyRole)
	secured.PUT("/Category/:id", categoryHandler.Rename, employee)
	secured.DELETE("/Category/:id", categoryHandler.Delete, employee)

	return e
}
