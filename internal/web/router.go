// Package web assembles the browser-facing tier: cookie session, CSRF,
// server-rendered pages and the outbound API client behind them.
package web

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/infrastructure/http/handlers"
	"github.com/agrienergy/connect/internal/web/handler"
	"github.com/agrienergy/connect/internal/web/session"
	"github.com/agrienergy/connect/pkg/logger"
)

// Deps carries everything the web router wires into handlers.
type Deps struct {
	API  handler.API
	Auth session.Authenticator
	// SessionKey signs the session cookie.
	SessionKey []byte
	// SecureCookies marks every cookie Secure. Disable only for local HTTP.
	SecureCookies bool
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks   map[string]handlers.Check
	Logger   zerolog.Logger
	Registry *prometheus.Registry
}

// NewRouter builds the web tier's Echo instance.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(d.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	bridge := session.NewBridge(d.Auth, d.SecureCookies, d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(logger.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "agrienergy_web",
		Registerer: registerer,
	}))
	e.Use(echomiddleware.Secure())
	e.Use(echosession.Middleware(session.NewStore(d.SessionKey, d.SecureCookies)))
	e.Use(bridge.Middleware())
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:_csrf",
		ContextKey:     handler.CSRFContextKey,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   d.SecureCookies,
		CookieSameSite: http.SameSiteStrictMode,
	}))

	// --- Operational endpoints ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewHealthDependenciesHandler(d.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	home := handler.NewHomeHandler(bridge, d.API, d.API, d.API)
	account := handler.NewAccountHandler(bridge, d.Logger)
	farmers := handler.NewFarmerHandler(bridge, d.API, d.API)
	employees := handler.NewEmployeeHandler(bridge, d.API)
	products := handler.NewProductHandler(bridge, d.API, d.API, d.API)
	categories := handler.NewCategoryHandler(bridge, d.API)

	signedIn := session.RequireRole()
	farmer := session.RequireRole(domain.RoleFarmer)
	employee := session.RequireRole(domain.RoleEmployee)

	e.GET("/", home.Index)
	e.GET("/Farmer", home.Farmer, farmer)
	e.GET("/Employee", home.Employee, employee)

	// --- Account ---
	e.GET(session.LoginPath, account.LoginForm)
	e.POST(session.LoginPath, account.Login)
	e.POST("/Account/Logout", account.Logout)
	e.GET(session.AccessDeniedPath, account.AccessDenied)

	// --- Farmer accounts (employees only) ---
	fg := e.Group("/Farmers", employee)
	fg.GET("", farmers.List)
	fg.GET("/Details/:id", farmers.Details)
	fg.GET("/Create", farmers.CreateForm)
	fg.POST("/Create", farmers.Create)
	fg.GET("/Edit/:id", farmers.EditForm)
	fg.POST("/Edit/:id", farmers.Edit)
	fg.GET("/Delete/:id", farmers.DeleteForm)
	fg.POST("/Delete/:id", farmers.Delete)

	e.GET("/Employees/Register", employees.RegisterForm, employee)
	e.POST("/Employees/Register", employees.Register, employee)

	// --- Products ---
	pg := e.Group("/Products", signedIn)
	pg.GET("", products.List)
	pg.GET("/Mine", products.Mine, farmer)
	pg.GET("/Details/:id", products.Details)
	pg.GET("/Create", products.CreateForm, farmer)
	pg.POST("/Create", products.Create, farmer)
	pg.GET("/Edit/:id", products.EditForm)
	pg.POST("/Edit/:id", products.Edit)
	pg.GET("/Delete/:id", products.DeleteForm)
	pg.POST("/Delete/:id", products.Delete)

	// --- Categories ---
	cg := e.Group("/Categories", signedIn)
	cg.GET("", categories.List)
	cg.POST("/Create", categories.Create)
	cg.POST("/Delete/:id", categories.Delete, employee)

	return e, nil
}
